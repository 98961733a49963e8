package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/bdticketpro/backoffice/internal/config"
)

// limiterKey buckets a request into its fixed window. Authenticated
// traffic is keyed per user, anything else per remote IP.
func limiterKey(cfg config.RateLimitConfig, c echo.Context, at time.Time) string {
	ident := c.RealIP()
	if user := CurrentUser(c); user != nil {
		ident = user.ID
	}
	window := at.Unix() / int64(cfg.Window/time.Second)
	return fmt.Sprintf("%s:%s:%d", cfg.Prefix, ident, window)
}

// RateLimit applies a fixed-window counter per client. It must be
// registered after JWTAuth on authenticated routes so the counter is
// keyed by user ID; on open routes it keys by remote IP. INCR followed
// by EXPIRE on the first hit keeps the whole check to two round trips;
// the limiter fails open when Redis is down so the API stays usable.
func RateLimit(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := limiterKey(cfg, c, time.Now())

			ctx := c.Request().Context()
			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				return next(c)
			}
			if n == 1 {
				rdb.Expire(ctx, key, cfg.Window)
			}

			remaining := int64(cfg.Limit) - n
			if remaining < 0 {
				remaining = 0
			}
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if n > int64(cfg.Limit) {
				h.Set("Retry-After", strconv.Itoa(int(cfg.Window/time.Second)))
				return c.JSON(http.StatusTooManyRequests, echo.Map{
					"success": false, "message": "Too many requests.",
				})
			}
			return next(c)
		}
	}
}
