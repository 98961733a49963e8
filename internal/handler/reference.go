package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/bdticketpro/backoffice/internal/repository"
)

// ReferenceHandler serves the seeded country and airline lists used by
// batch and booking forms.
type ReferenceHandler struct {
	Countries *repository.CountryRepo
	Airlines  *repository.AirlineRepo
}

// NewReferenceHandler constructs a ReferenceHandler.
func NewReferenceHandler(countries *repository.CountryRepo, airlines *repository.AirlineRepo) *ReferenceHandler {
	return &ReferenceHandler{Countries: countries, Airlines: airlines}
}

// ListCountries handles GET /api/countries.
func (h *ReferenceHandler) ListCountries(c echo.Context) error {
	countries, err := h.Countries.List(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
	return respond(c, http.StatusOK, "Countries retrieved successfully", echo.Map{
		"countries": countries,
	})
}

// ListAirlines handles GET /api/airlines.
func (h *ReferenceHandler) ListAirlines(c echo.Context) error {
	airlines, err := h.Airlines.List(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
	return respond(c, http.StatusOK, "Airlines retrieved successfully", echo.Map{
		"airlines": airlines,
	})
}
