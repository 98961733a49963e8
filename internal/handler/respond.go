// Package handler implements the HTTP endpoints of the back office.
// Every response uses the same envelope: {success, message, data?,
// errors?} so clients handle success and failure uniformly.
package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope is the wire format shared by all endpoints.
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

func respond(c echo.Context, status int, message string, data any) error {
	return c.JSON(status, Envelope{Success: true, Message: message, Data: data})
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{Success: false, Message: message})
}

func failValidation(c echo.Context, message string, errs any) error {
	return c.JSON(http.StatusBadRequest, Envelope{Success: false, Message: message, Errors: errs})
}
