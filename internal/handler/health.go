package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Ping answers the unauthenticated health check.
func Ping(c echo.Context) error {
	return respond(c, http.StatusOK, "pong", echo.Map{
		"time": time.Now().UTC().Format(time.RFC3339),
	})
}
