// Package cache keeps rendered lineup snapshots in Redis so that the
// public lineup endpoint does not hit MySQL on every poll.  All methods
// degrade to a miss when Redis is unavailable or disabled.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/live-show-lineup/internal/config"
	"github.com/iliyamo/live-show-lineup/internal/lineup"
)

// LineupCache implements lineup.SnapshotCache on top of Redis.
type LineupCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

var _ lineup.SnapshotCache = (*LineupCache)(nil)

// NewLineupCache returns a cache bound to rdb.  A nil client or a
// disabled config yields a cache that never hits.
func NewLineupCache(cfg config.LineupCacheConfig, rdb *redis.Client, logger *zap.Logger) *LineupCache {
	if !cfg.Enabled {
		rdb = nil
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LineupCache{rdb: rdb, prefix: cfg.Prefix, ttl: ttl, logger: logger}
}

// genTTL keeps a show's generation counter well beyond the life of any
// snapshot; a counter that expires restarts at zero, which is safe once
// no reader holds a generation from before the expiry.
const genTTL = 7 * 24 * time.Hour

// The braces are a Redis Cluster hash tag so a show's snapshot and
// generation live in the same slot and the scripts can touch both.
func (c *LineupCache) key(showID string) string {
	return c.prefix + ":lineup:{" + showID + "}"
}

func (c *LineupCache) genKey(showID string) string {
	return c.key(showID) + ":gen"
}

// setIfCurrent stores the snapshot only when the generation has not
// moved since the reader's miss.
var setIfCurrent = redis.NewScript(`
	local gen = redis.call('GET', KEYS[2]) or '0'
	if gen ~= ARGV[1] then
		return 0
	end
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
	return 1
`)

// bumpAndDrop advances the generation and deletes the snapshot in one
// step, so no snapshot survives under a newer generation.
var bumpAndDrop = redis.NewScript(`
	local gen = redis.call('INCR', KEYS[2])
	redis.call('PEXPIRE', KEYS[2], ARGV[1])
	redis.call('DEL', KEYS[1])
	return gen
`)

// Get returns the cached lineup for showID.  On a miss it returns the
// show's current generation for the following Set.
func (c *LineupCache) Get(ctx context.Context, showID string) (*lineup.Lineup, int64, bool) {
	if c.rdb == nil {
		return nil, 0, false
	}
	vals, err := c.rdb.MGet(ctx, c.key(showID), c.genKey(showID)).Result()
	if err != nil {
		c.logger.Warn("lineup cache get failed", zap.String("show_id", showID), zap.Error(err))
		return nil, -1, false
	}
	var gen int64
	if raw, ok := vals[1].(string); ok {
		if gen, err = strconv.ParseInt(raw, 10, 64); err != nil {
			return nil, -1, false
		}
	}
	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, false
	}
	var l lineup.Lineup
	if err := json.Unmarshal([]byte(raw), &l); err != nil {
		c.logger.Warn("lineup cache entry corrupt", zap.String("show_id", showID), zap.Error(err))
		return nil, gen, false
	}
	return &l, gen, true
}

// Set stores l for the configured TTL unless the show changed since the
// miss that produced gen.  A negative gen means the lookup failed and
// nothing is stored.
func (c *LineupCache) Set(ctx context.Context, showID string, gen int64, l *lineup.Lineup) {
	if c.rdb == nil || l == nil || gen < 0 {
		return
	}
	bs, err := json.Marshal(l)
	if err != nil {
		return
	}
	keys := []string{c.key(showID), c.genKey(showID)}
	err = setIfCurrent.Run(ctx, c.rdb, keys, strconv.FormatInt(gen, 10), bs, c.ttl.Milliseconds()).Err()
	if err != nil {
		c.logger.Warn("lineup cache set failed", zap.String("show_id", showID), zap.Error(err))
	}
}

// Invalidate drops the snapshot after a committed change.
func (c *LineupCache) Invalidate(ctx context.Context, showID string) {
	if c.rdb == nil {
		return
	}
	keys := []string{c.key(showID), c.genKey(showID)}
	if err := bumpAndDrop.Run(ctx, c.rdb, keys, genTTL.Milliseconds()).Err(); err != nil {
		c.logger.Warn("lineup cache invalidate failed", zap.String("show_id", showID), zap.Error(err))
	}
}
