package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/bdticketpro/backoffice/internal/auth"
	"github.com/bdticketpro/backoffice/internal/config"
	"github.com/bdticketpro/backoffice/internal/middleware"
	"github.com/bdticketpro/backoffice/internal/model"
	"github.com/bdticketpro/backoffice/internal/repository"
)

// TicketHandler serves ticket browsing, the direct status path and the
// statistics endpoints. Dashboard and country aggregates are cached in
// Redis for a short TTL since they scan the whole ticket table.
type TicketHandler struct {
	Tickets  *repository.TicketRepo
	Activity *repository.ActivityRepo
	Log      *logrus.Logger
	Redis    *redis.Client
	Cache    config.CacheConfig
}

// NewTicketHandler constructs a TicketHandler. rdb may be nil, which
// disables caching.
func NewTicketHandler(tickets *repository.TicketRepo, activity *repository.ActivityRepo,
	log *logrus.Logger, rdb *redis.Client, cache config.CacheConfig) *TicketHandler {
	return &TicketHandler{Tickets: tickets, Activity: activity, Log: log, Redis: rdb, Cache: cache}
}

// stripBuyingPrices zeroes the batch buying price on every ticket when
// the caller lacks view_buying_price; omitempty then drops the field.
func stripBuyingPrices(c echo.Context, tickets []model.TicketDetail) {
	user := middleware.CurrentUser(c)
	if user != nil && auth.HasPermission(user.Role, auth.PermViewBuyingPrice) {
		return
	}
	for i := range tickets {
		tickets[i].Batch.BuyingPrice = 0
	}
}

func ticketFilterFrom(c echo.Context) repository.TicketFilter {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	return repository.TicketFilter{
		Country: c.QueryParam("country"),
		Status:  c.QueryParam("status"),
		Airline: c.QueryParam("airline"),
		Limit:   limit,
		Offset:  offset,
	}
}

// List handles GET /api/tickets.
func (h *TicketHandler) List(c echo.Context) error {
	tickets, err := h.Tickets.List(c.Request().Context(), ticketFilterFrom(c))
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
	stripBuyingPrices(c, tickets)
	return respond(c, http.StatusOK, "Tickets retrieved successfully", echo.Map{
		"tickets": tickets,
		"total":   len(tickets),
	})
}

// ListByCountry handles GET /api/tickets/country/:countryCode.
func (h *TicketHandler) ListByCountry(c echo.Context) error {
	f := ticketFilterFrom(c)
	f.Country = c.Param("countryCode")
	tickets, err := h.Tickets.List(c.Request().Context(), f)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
	stripBuyingPrices(c, tickets)
	return respond(c, http.StatusOK, "Tickets retrieved successfully", echo.Map{
		"tickets": tickets,
		"total":   len(tickets),
	})
}

// Get handles GET /api/tickets/:id.
func (h *TicketHandler) Get(c echo.Context) error {
	ticket, err := h.Tickets.Get(c.Request().Context(), c.Param("id"))
	if err == repository.ErrNotFound {
		return fail(c, http.StatusNotFound, "Ticket not found")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
	one := []model.TicketDetail{*ticket}
	stripBuyingPrices(c, one)
	return respond(c, http.StatusOK, "Ticket retrieved successfully", echo.Map{"ticket": one[0]})
}

// UpdateStatus handles PATCH /api/tickets/:id/status, the direct admin
// path around the booking flow. Marking a ticket sold requires the
// confirm_sales capability.
func (h *TicketHandler) UpdateStatus(c echo.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil || !model.ValidTicketStatus(body.Status) {
		return fail(c, http.StatusBadRequest, "Invalid status")
	}

	user := middleware.CurrentUser(c)
	if body.Status == model.TicketSold && !auth.HasPermission(user.Role, auth.PermConfirmSales) {
		return fail(c, http.StatusForbidden, "Permission required to mark tickets as sold")
	}

	ctx := c.Request().Context()
	id := c.Param("id")
	before, err := h.Tickets.Get(ctx, id)
	if err == repository.ErrNotFound {
		return fail(c, http.StatusNotFound, "Ticket not found")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	soldBy := ""
	if body.Status == model.TicketSold {
		soldBy = user.ID
	}
	if err := h.Tickets.UpdateStatus(ctx, id, body.Status, soldBy); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to update ticket status")
	}

	logActivity(c, h.Activity, h.Log, user.ID, "update_ticket_status", "ticket", id, map[string]any{
		"old_status": before.Status,
		"new_status": body.Status,
	})
	return respond(c, http.StatusOK, "Ticket status updated successfully", nil)
}

// cachedJSON serves the payload from Redis when fresh, otherwise calls
// compute and stores the result.
func cachedJSON[T any](h *TicketHandler, c echo.Context, key string, compute func() (T, error)) (T, error) {
	var zero T
	ctx := c.Request().Context()
	if h.Redis != nil && h.Cache.Enabled {
		if raw, err := h.Redis.Get(ctx, h.Cache.Prefix+":"+key).Result(); err == nil {
			var v T
			if json.Unmarshal([]byte(raw), &v) == nil {
				return v, nil
			}
		}
	}
	v, err := compute()
	if err != nil {
		return zero, err
	}
	if h.Redis != nil && h.Cache.Enabled {
		if b, err := json.Marshal(v); err == nil {
			h.Redis.Set(ctx, h.Cache.Prefix+":"+key, b, h.Cache.TTL)
		}
	}
	return v, nil
}

// DashboardStats handles GET /api/tickets/dashboard/stats. The
// estimated profit is withheld from callers without view_profit.
func (h *TicketHandler) DashboardStats(c echo.Context) error {
	stats, err := cachedJSON(h, c, "dashboard", func() (*repository.DashboardStats, error) {
		return h.Tickets.GetDashboardStats(c.Request().Context())
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	user := middleware.CurrentUser(c)
	data := echo.Map{
		"todaysSales": echo.Map{
			"count":  stats.TodaysSalesCount,
			"amount": stats.TodaysSalesAmount,
		},
		"totalBookings":  stats.ConfirmedBookings,
		"lockedTickets":  stats.LockedTickets,
		"totalInventory": stats.TotalInventory,
	}
	if auth.HasPermission(user.Role, auth.PermViewProfit) {
		data["estimatedProfit"] = stats.EstimatedProfit
	}
	return respond(c, http.StatusOK, "Dashboard statistics retrieved successfully", data)
}

// CountryStats handles GET /api/tickets/countries/stats.
func (h *TicketHandler) CountryStats(c echo.Context) error {
	stats, err := cachedJSON(h, c, "countries", func() ([]repository.CountryStats, error) {
		return h.Tickets.GetCountryStats(c.Request().Context())
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
	return respond(c, http.StatusOK, "Countries with statistics retrieved successfully", echo.Map{
		"countries": stats,
	})
}
