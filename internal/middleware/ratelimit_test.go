package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/bdticketpro/backoffice/internal/config"
	"github.com/bdticketpro/backoffice/internal/model"
)

func limiterContext(user *model.User) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "203.0.113.9:4711"
	c := e.NewContext(req, httptest.NewRecorder())
	if user != nil {
		c.Set(userContextKey, user)
	}
	return c
}

func TestLimiterKey(t *testing.T) {
	cfg := config.RateLimitConfig{Prefix: "rl", Limit: 120, Window: time.Minute}
	at := time.Unix(600, 0) // window 10

	key := limiterKey(cfg, limiterContext(&model.User{ID: "u1", Role: model.RoleStaff}), at)
	assert.Equal(t, "rl:u1:10", key)

	key = limiterKey(cfg, limiterContext(nil), at)
	assert.Equal(t, "rl:203.0.113.9:10", key)

	// Same client, next window.
	key = limiterKey(cfg, limiterContext(&model.User{ID: "u1"}), at.Add(time.Minute))
	assert.Equal(t, "rl:u1:11", key)
}

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	called := false
	h := RateLimit(config.RateLimitConfig{}, nil)(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})
	assert.NoError(t, h(limiterContext(nil)))
	assert.True(t, called)
}
