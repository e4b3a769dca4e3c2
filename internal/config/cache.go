package config

import "time"

// CatalogCacheConfig defines settings for the redis cache in front of the
// episode inventory lookups.  When Enabled is false or no Redis client is
// configured, every lookup goes straight to the database.  Inventories
// change rarely, so the default TTL is generous.
type CatalogCacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCatalogCacheConfig reads environment variables to build a
// CatalogCacheConfig.  Defaults are used when variables are not set.
func LoadCatalogCacheConfig() CatalogCacheConfig {
	c := CatalogCacheConfig{
		Enabled: envBool("CATALOG_CACHE_ENABLED", true),
		TTL:     envDur("CATALOG_CACHE_TTL", 10*time.Minute),
		Prefix:  envStr("CATALOG_CACHE_PREFIX", "catalog"),
	}
	if c.TTL <= 0 {
		c.TTL = time.Minute
	}
	return c
}
