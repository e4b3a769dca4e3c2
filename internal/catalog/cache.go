package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Cached puts a redis JSON cache in front of a Source.  Only successful
// lookups are cached.  Redis failures are logged and fall through to the
// wrapped source.
type Cached struct {
	src    Source
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
	log    zerolog.Logger
}

// NewCached wraps src.  A nil client disables caching entirely and src is
// returned unchanged.
func NewCached(src Source, rdb *redis.Client, ttl time.Duration, prefix string, log zerolog.Logger) Source {
	if rdb == nil {
		return src
	}
	if prefix == "" {
		prefix = "catalog"
	}
	return &Cached{src: src, rdb: rdb, ttl: ttl, prefix: prefix, log: log}
}

func (c *Cached) key(contentID uint64) string {
	return fmt.Sprintf("%s:inventory:%d", c.prefix, contentID)
}

// GetEpisodeInventory serves from redis when possible and populates the
// cache on a miss.
func (c *Cached) GetEpisodeInventory(ctx context.Context, contentID uint64) (Inventory, error) {
	key := c.key(contentID)
	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var inv Inventory
		if jerr := json.Unmarshal(raw, &inv); jerr == nil {
			return inv, nil
		}
		c.log.Warn().Str("key", key).Msg("dropping undecodable inventory cache entry")
		_ = c.rdb.Del(ctx, key).Err()
	case err != redis.Nil:
		c.log.Debug().Err(err).Str("key", key).Msg("inventory cache unavailable")
	}

	inv, err := c.src.GetEpisodeInventory(ctx, contentID)
	if err != nil {
		return Inventory{}, err
	}
	if b, err := json.Marshal(inv); err == nil {
		if err := c.rdb.SetEx(ctx, key, b, c.ttl).Err(); err != nil {
			c.log.Debug().Err(err).Str("key", key).Msg("inventory cache write failed")
		}
	}
	return inv, nil
}
