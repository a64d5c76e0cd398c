package middleware

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/iliyamo/live-show-lineup/internal/config"
)

// tokenBucket tops the bucket up for every whole refill interval since
// the last top-up, then spends one token if any are left.  The bucket is
// a hash of {tokens, refilled_at}; a missing hash is a full bucket.
// Returns {allowed, remaining, retry_after_ms}.
var tokenBucket = redis.NewScript(`
	local now, burst = tonumber(ARGV[1]), tonumber(ARGV[2])
	local per_tick, tick = tonumber(ARGV[3]), tonumber(ARGV[4])

	local tokens = tonumber(redis.call('HGET', KEYS[1], 'tokens'))
	local refilled_at = tonumber(redis.call('HGET', KEYS[1], 'refilled_at'))
	if not tokens or not refilled_at then
		tokens, refilled_at = burst, now
	end

	if tick > 0 and per_tick > 0 and now > refilled_at then
		local ticks = math.floor((now - refilled_at) / tick)
		tokens = math.min(burst, tokens + ticks * per_tick)
		refilled_at = refilled_at + ticks * tick
	end

	local allowed, wait = 0, 0
	if tokens >= 1 then
		allowed, tokens = 1, tokens - 1
	else
		wait = math.max(0, tick - (now - refilled_at))
	end

	redis.call('HSET', KEYS[1], 'tokens', tokens, 'refilled_at', refilled_at)
	if tonumber(ARGV[5]) > 0 then
		redis.call('PEXPIRE', KEYS[1], ARGV[5])
	end
	return {allowed, tokens, wait}
`)

// NewTokenBucket throttles performer confirm and cancel calls so a
// client cannot hammer the per-show lock.  Redis failures fail open.
func NewTokenBucket(cfg config.RateLimitConfig, rdb *redis.Client, logger *zap.Logger) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := buildRateKey(cfg, c)
			args := []interface{}{
				time.Now().UnixMilli(),
				cfg.Capacity,
				cfg.RefillTokens,
				cfg.RefillInterval.Milliseconds(),
				cfg.TTL.Milliseconds(),
			}

			vals, err := tokenBucket.Run(c.Request().Context(), rdb, []string{key}, args...).Result()
			if err != nil {
				if cfg.Debug {
					logger.Warn("ratelimit: redis error", zap.String("key", key), zap.Error(err))
				}
				return next(c)
			}
			arr, ok := vals.([]interface{})
			if !ok || len(arr) != 3 {
				if cfg.Debug {
					logger.Warn("ratelimit: unexpected script result", zap.String("key", key), zap.Any("result", vals))
				}
				return next(c)
			}
			allowed := fmt.Sprint(arr[0]) == "1"
			remaining := asInt64(arr[1])
			retryMs := asInt64(arr[2])

			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Capacity))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if !allowed {
				secs := int(math.Ceil(float64(retryMs) / 1000.0))
				if secs < 0 {
					secs = 0
				}
				h.Set("Retry-After", strconv.Itoa(secs))
				if cfg.Debug {
					logger.Info("ratelimit: blocked", zap.String("key", key), zap.Int64("retry_ms", retryMs))
				}
				return deny(c, http.StatusTooManyRequests, "RATE_LIMITED", "rate limit exceeded")
			}
			if cfg.Debug {
				h.Set("X-RateLimit-Key", key)
			}
			return next(c)
		}
	}
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}

func buildRateKey(cfg config.RateLimitConfig, c echo.Context) string {
	ip := c.RealIP()
	if ip == "" {
		ip = "unknown"
	}
	uid := rateSubject(c)
	route := c.Request().Method + " " + c.Path()

	parts := []string{cfg.Prefix}
	switch strings.ToLower(cfg.KeyStrategy) {
	case "ip":
		parts = append(parts, "ip", ip)
	case "user":
		parts = append(parts, "user", uid)
	case "route":
		parts = append(parts, "route", route)
	case "ip_user":
		parts = append(parts, "ip", ip, "user", uid)
	case "ip_route":
		parts = append(parts, "ip", ip, "route", route)
	case "user_route":
		parts = append(parts, "user", uid, "route", route)
	default:
		parts = append(parts, "ip", ip, "user", uid, "route", route)
	}
	return strings.Join(parts, ":")
}
