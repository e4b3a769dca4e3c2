package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"time"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Required values are enforced at load time, the
// rest fall back to defaults suited for local development.
type Config struct {
	Env       string // application environment (e.g. "dev", "prod")
	Port      string // HTTP port to listen on
	DBUser    string // database username
	DBPass    string // database password (optional)
	DBHost    string // database host address
	DBPort    string // database port number
	DBName    string // database name
	JWTSecret string // secret used to verify access tokens

	LogLevel string // zerolog level name
	LogFile  string // optional rotated log file, empty means stdout only

	AMQPURL        string // RabbitMQ connection string, empty disables events
	MigrateOnStart bool   // run goose migrations before serving

	Generation GenerationConfig
}

// GenerationConfig bounds a single schedule generation run.
type GenerationConfig struct {
	Timeout           time.Duration // caller deadline applied to each request
	MaxDays           int           // widest accepted date range
	CatalogWorkers    int           // concurrent inventory lookups
	CatalogAttempts   uint          // attempts per inventory lookup
	CatalogRetryDelay time.Duration // base delay between attempts
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file in the working directory is applied first when it
// exists.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.
func Load() Config {
	_ = godotenv.Load() // a missing .env is fine, real env vars win anyway

	amqpURL := envStr("RABBITMQ_URL", "")
	if amqpURL == "" {
		amqpURL = envStr("AMQP_URL", "")
	}
	return Config{
		Env:            must("APP_ENV"),      // environment (dev/test/prod)
		Port:           must("APP_PORT"),     // port to bind the HTTP server
		DBUser:         must("DB_USER"),      // database user
		DBPass:         os.Getenv("DB_PASS"), // database password (empty allowed)
		DBHost:         must("DB_HOST"),      // database host
		DBPort:         must("DB_PORT"),      // database port
		DBName:         must("DB_NAME"),      // database name
		JWTSecret:      must("JWT_SECRET"),   // secret used for verifying JWTs
		LogLevel:       envStr("LOG_LEVEL", "info"),
		LogFile:        os.Getenv("LOG_FILE"),
		AMQPURL:        amqpURL,
		MigrateOnStart: envBool("MIGRATE_ON_START", true),
		Generation:     LoadGenerationConfig(),
	}
}

// LoadGenerationConfig reads the generator limits.  Values below their
// minimum are raised to it.
func LoadGenerationConfig() GenerationConfig {
	attempts := envInt("CATALOG_RETRY_ATTEMPTS", 3)
	if attempts < 1 {
		attempts = 1
	}
	g := GenerationConfig{
		Timeout:           envDur("GENERATION_TIMEOUT", 15*time.Second),
		MaxDays:           envInt("GENERATION_MAX_DAYS", 62),
		CatalogWorkers:    envInt("CATALOG_CONCURRENCY", 4),
		CatalogAttempts:   uint(attempts),
		CatalogRetryDelay: envDur("CATALOG_RETRY_DELAY", 100*time.Millisecond),
	}
	if g.Timeout <= 0 {
		g.Timeout = 15 * time.Second
	}
	if g.MaxDays < 1 {
		g.MaxDays = 1
	}
	if g.CatalogWorkers < 1 {
		g.CatalogWorkers = 1
	}
	return g
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
