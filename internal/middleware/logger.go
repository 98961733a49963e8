package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one structured line per request with method,
// path, status, latency and the acting user when known.
func RequestLogger(log *logrus.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			fields := logrus.Fields{
				"method":  c.Request().Method,
				"path":    c.Request().URL.Path,
				"status":  c.Response().Status,
				"latency": time.Since(start).String(),
				"ip":      c.RealIP(),
			}
			if user := CurrentUser(c); user != nil {
				fields["user"] = user.Username
			}

			entry := log.WithFields(fields)
			if c.Response().Status >= 500 {
				entry.Error("request failed")
			} else {
				entry.Info("request")
			}
			return nil
		}
	}
}
