package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/bigdrops/admin-portal/internal/config"
)

// fixedWindowScript counts a hit in a per-key window.  The first hit sets
// the expiry; the reply is {count, ttl_ms} so the middleware can compute
// remaining quota and Retry-After without a second round trip.
var fixedWindowScript = redis.NewScript(`
	local key = KEYS[1]
	local window_ms = tonumber(ARGV[1])

	local count = redis.call('INCR', key)
	if count == 1 then
		redis.call('PEXPIRE', key, window_ms)
	end
	local ttl = redis.call('PTTL', key)
	if ttl < 0 then
		redis.call('PEXPIRE', key, window_ms)
		ttl = window_ms
	end
	return { count, ttl }
`)

// NewFixedWindow returns a per-IP fixed-window rate-limit middleware.  With
// a Redis client the window is shared across instances; without one it
// falls back to an in-process counter.  Redis errors fail open so a broker
// outage never blocks traffic.
func NewFixedWindow(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	mem := newMemoryWindow()

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			if ip == "" {
				ip = "unknown"
			}
			key := cfg.Prefix + ":" + ip + ":" + c.Request().Method + " " + c.Path()

			var (
				allowed    bool
				remaining  int64
				retryAfter time.Duration
			)

			if rdb != nil {
				ctx := c.Request().Context()
				vals, err := fixedWindowScript.Run(ctx, rdb, []string{key}, cfg.Window.Milliseconds()).Result()
				if err != nil {
					if cfg.Debug {
						c.Logger().Warnf("[ratelimit] redis error for key=%s: %v", key, err)
					}
					return next(c)
				}
				arr, ok := vals.([]interface{})
				if !ok || len(arr) != 2 {
					return next(c)
				}
				count := asInt64(arr[0])
				ttlMs := asInt64(arr[1])
				allowed = count <= int64(cfg.Max)
				remaining = int64(cfg.Max) - count
				if remaining < 0 {
					remaining = 0
				}
				retryAfter = time.Duration(ttlMs) * time.Millisecond
			} else {
				ok, rem, retry := mem.Allow(key, cfg.Max, cfg.Window)
				allowed, remaining, retryAfter = ok, int64(rem), retry
			}

			c.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(cfg.Max))
			c.Response().Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if !allowed {
				secs := int(math.Ceil(retryAfter.Seconds()))
				if secs < 0 {
					secs = 0
				}
				c.Response().Header().Set("Retry-After", strconv.Itoa(secs))
				if cfg.Debug {
					c.Logger().Infof("[ratelimit] block key=%s retry=%ds", key, secs)
				}
				return c.JSON(http.StatusTooManyRequests, map[string]any{
					"error":       "too_many_requests",
					"message":     "rate limit exceeded",
					"retry_after": secs,
				})
			}
			return next(c)
		}
	}
}

func asInt64(v interface{}) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int32:
		return int64(t)
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
