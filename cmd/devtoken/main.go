// Command devtoken prints an access token for a user id, signed with
// JWT_SECRET, for calling the API locally.
//
//	go run ./cmd/devtoken -user 5 -ttl 1h
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/iliyamo/watch-rotation-scheduler/internal/utils"
)

func main() {
	user := flag.Uint64("user", 0, "user id placed in the token subject")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" || *user == 0 {
		fmt.Fprintln(os.Stderr, "usage: JWT_SECRET=... devtoken -user <id> [-ttl 1h]")
		os.Exit(2)
	}
	tok, err := utils.NewAccessToken(secret, *user, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, "sign token:", err)
		os.Exit(1)
	}
	fmt.Println(tok.Token)
}
