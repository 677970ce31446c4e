package config

import "time"

// CacheConfig controls the Redis response cache in front of
// GET /dashboard/stats.  Every signed-in user sees the same numbers, so one
// entry per route and query string serves them all.
type CacheConfig struct {
	Enabled      bool          // CACHE_ENABLED
	TTL          time.Duration // CACHE_TTL, how long the dashboard may lag behind the board
	Prefix       string        // CACHE_PREFIX, Redis key namespace
	MaxBodyBytes int           // CACHE_MAX_BODY_BYTES, larger responses are not stored
}

// LoadCacheConfig reads CACHE_* variables.  Stats go stale quickly once an
// operator moves a card on the board, so the default TTL is short.  A
// non-positive TTL turns the cache off.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled:      envBool("CACHE_ENABLED", true),
		TTL:          envDur("CACHE_TTL", 15*time.Second),
		Prefix:       envStr("CACHE_PREFIX", "crm:cache"),
		MaxBodyBytes: envInt("CACHE_MAX_BODY_BYTES", 256<<10),
	}
}
