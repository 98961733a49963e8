package config

import "time"

// CacheConfig controls the Redis cache in front of the dashboard and
// country statistics queries. These aggregates scan the whole ticket
// table, so a short TTL takes the pressure off MySQL without showing
// agents stale numbers for long.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
	Prefix  string
}

// LoadCacheConfig reads cache settings from the environment.
func LoadCacheConfig() CacheConfig {
	return CacheConfig{
		Enabled: envBool("STATS_CACHE_ENABLED", true),
		TTL:     envDur("STATS_CACHE_TTL", 30*time.Second),
		Prefix:  envStr("STATS_CACHE_PREFIX", "stats"),
	}
}
