package config

import "time"

// LineupCacheConfig controls the Redis snapshot cache in front of the
// public lineup endpoint.  When Enabled is false or Redis is unreachable
// every read goes to the store.  Each committed lineup change drops the
// entry and advances a per-show generation; a snapshot is only stored
// under the generation its read started from, so a read that overlaps a
// commit cannot re-populate the cache with the older lineup.  TTL bounds
// staleness only when an invalidation is lost, e.g. Redis is unreachable
// right after a commit.
type LineupCacheConfig struct {
	Enabled bool          `env:"LINEUP_CACHE_ENABLED" envDefault:"true"`
	TTL     time.Duration `env:"LINEUP_CACHE_TTL" envDefault:"30s"`
	Prefix  string        `env:"LINEUP_CACHE_PREFIX" envDefault:"liveshow"`
}
