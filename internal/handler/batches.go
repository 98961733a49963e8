package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/bdticketpro/backoffice/internal/middleware"
	"github.com/bdticketpro/backoffice/internal/model"
	"github.com/bdticketpro/backoffice/internal/repository"
)

// BatchHandler serves the ticket batch (inventory acquisition)
// endpoints. All routes are gated by batch permissions in the router.
type BatchHandler struct {
	Batches   *repository.BatchRepo
	Tickets   *repository.TicketRepo
	Airlines  *repository.AirlineRepo
	Countries *repository.CountryRepo
	Activity  *repository.ActivityRepo
	Log       *logrus.Logger
}

// NewBatchHandler constructs a BatchHandler.
func NewBatchHandler(batches *repository.BatchRepo, tickets *repository.TicketRepo,
	airlines *repository.AirlineRepo, countries *repository.CountryRepo,
	activity *repository.ActivityRepo, log *logrus.Logger) *BatchHandler {
	return &BatchHandler{
		Batches: batches, Tickets: tickets, Airlines: airlines,
		Countries: countries, Activity: activity, Log: log,
	}
}

// List handles GET /api/ticket-batches.
func (h *BatchHandler) List(c echo.Context) error {
	batches, err := h.Batches.ListWithStats(c.Request().Context(), repository.BatchFilter{
		Country:  c.QueryParam("country"),
		Airline:  c.QueryParam("airline"),
		DateFrom: c.QueryParam("dateFrom"),
		DateTo:   c.QueryParam("dateTo"),
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
	return respond(c, http.StatusOK, "Ticket batches retrieved successfully", echo.Map{
		"batches": batches,
		"total":   len(batches),
	})
}

// Get handles GET /api/ticket-batches/:id, returning the batch with
// all of its tickets.
func (h *BatchHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	batch, err := h.Batches.Get(ctx, c.Param("id"))
	if err == repository.ErrNotFound {
		return fail(c, http.StatusNotFound, "Ticket batch not found")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
	tickets, err := h.Tickets.ListByBatch(ctx, batch.ID)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
	return respond(c, http.StatusOK, "Ticket batch retrieved successfully", echo.Map{
		"batch":   batch,
		"tickets": tickets,
	})
}

type createBatchRequest struct {
	Country      string  `json:"country"`
	Airline      string  `json:"airline"`
	FlightDate   string  `json:"flightDate"`
	FlightTime   string  `json:"flightTime"`
	BuyingPrice  int64   `json:"buyingPrice"`
	Quantity     int     `json:"quantity"`
	AgentName    string  `json:"agentName"`
	AgentContact *string `json:"agentContact"`
	AgentAddress *string `json:"agentAddress"`
	Remarks      *string `json:"remarks"`
	DocumentURL  *string `json:"documentUrl"`
}

func (r *createBatchRequest) validate() map[string]string {
	errs := map[string]string{}
	if r.Country == "" {
		errs["country"] = "Country is required"
	}
	if r.Airline == "" {
		errs["airline"] = "Airline is required"
	}
	if r.FlightDate == "" {
		errs["flightDate"] = "Flight date is required"
	}
	if r.FlightTime == "" {
		errs["flightTime"] = "Flight time is required"
	}
	if r.BuyingPrice < 0 {
		errs["buyingPrice"] = "Buying price must be positive"
	}
	if r.Quantity < 1 {
		errs["quantity"] = "Quantity must be at least 1"
	}
	if r.AgentName == "" {
		errs["agentName"] = "Agent name is required"
	}
	return errs
}

// Create handles POST /api/ticket-batches. The batch and its tickets
// are created in one transaction; the flight number prefix comes from
// the airline's IATA code when the airline is known.
func (h *BatchHandler) Create(c echo.Context) error {
	var body createBatchRequest
	if err := c.Bind(&body); err != nil {
		return failValidation(c, "Validation error", echo.Map{"body": "invalid JSON"})
	}
	if errs := body.validate(); len(errs) > 0 {
		return failValidation(c, "Validation error", errs)
	}

	ctx := c.Request().Context()
	countryCode := strings.ToUpper(body.Country)
	if _, err := h.Countries.Get(ctx, countryCode); err == repository.ErrNotFound {
		return failValidation(c, "Validation error", echo.Map{"country": "Unknown country"})
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	airlineCode := ""
	if airline, err := h.Airlines.GetByName(ctx, body.Airline); err == nil && airline.Code != nil {
		airlineCode = *airline.Code
	}

	user := middleware.CurrentUser(c)
	batch := model.TicketBatch{
		CountryCode:  countryCode,
		AirlineName:  body.Airline,
		FlightDate:   body.FlightDate,
		FlightTime:   body.FlightTime,
		BuyingPrice:  body.BuyingPrice,
		Quantity:     body.Quantity,
		AgentName:    body.AgentName,
		AgentContact: body.AgentContact,
		AgentAddress: body.AgentAddress,
		Remarks:      body.Remarks,
		DocumentURL:  body.DocumentURL,
		CreatedBy:    user.ID,
	}
	created, err := h.Batches.CreateWithTickets(ctx, &batch, airlineCode)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	logActivity(c, h.Activity, h.Log, user.ID, "create_ticket_batch", "ticket_batch", batch.ID, map[string]any{
		"airline":      body.Airline,
		"country":      countryCode,
		"quantity":     body.Quantity,
		"buying_price": body.BuyingPrice,
	})
	return respond(c, http.StatusCreated, "Ticket batch created successfully", echo.Map{
		"batch":          batch,
		"ticketsCreated": created,
	})
}

// Update handles PUT /api/ticket-batches/:id; only supplier and note
// fields can change after creation.
func (h *BatchHandler) Update(c echo.Context) error {
	var body struct {
		AgentName    string  `json:"agentName"`
		AgentContact *string `json:"agentContact"`
		AgentAddress *string `json:"agentAddress"`
		Remarks      *string `json:"remarks"`
		DocumentURL  *string `json:"documentUrl"`
	}
	if err := c.Bind(&body); err != nil {
		return failValidation(c, "Validation error", echo.Map{"body": "invalid JSON"})
	}
	if body.AgentName == "" {
		return failValidation(c, "Validation error", echo.Map{"agentName": "Agent name is required"})
	}

	id := c.Param("id")
	err := h.Batches.Update(c.Request().Context(), id, body.AgentName,
		body.AgentContact, body.AgentAddress, body.Remarks, body.DocumentURL)
	if err == repository.ErrNotFound {
		return fail(c, http.StatusNotFound, "Ticket batch not found")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	user := middleware.CurrentUser(c)
	logActivity(c, h.Activity, h.Log, user.ID, "update_ticket_batch", "ticket_batch", id, nil)
	return respond(c, http.StatusOK, "Ticket batch updated successfully", nil)
}

// Delete handles DELETE /api/ticket-batches/:id. Batches with sold
// tickets are refused; otherwise tickets and booking records go with
// the batch in one transaction.
func (h *BatchHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	err := h.Batches.Delete(c.Request().Context(), id)
	if err == repository.ErrNotFound {
		return fail(c, http.StatusNotFound, "Ticket batch not found")
	}
	if err == repository.ErrConflict {
		return fail(c, http.StatusBadRequest, "Cannot delete a batch with sold tickets")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	user := middleware.CurrentUser(c)
	logActivity(c, h.Activity, h.Log, user.ID, "delete_ticket_batch", "ticket_batch", id, nil)
	return respond(c, http.StatusOK, "Ticket batch deleted successfully", nil)
}
