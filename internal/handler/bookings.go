package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/bdticketpro/backoffice/internal/auth"
	"github.com/bdticketpro/backoffice/internal/middleware"
	"github.com/bdticketpro/backoffice/internal/model"
	"github.com/bdticketpro/backoffice/internal/queue"
	"github.com/bdticketpro/backoffice/internal/repository"
)

// BookingHandler serves the booking lifecycle: creation with full or
// partial payment, status changes with ticket cascade, and listing
// scoped to the caller unless they can view all bookings.
type BookingHandler struct {
	Bookings *repository.BookingRepo
	Tickets  *repository.TicketRepo
	Activity *repository.ActivityRepo
	Events   *queue.Publisher
	Log      *logrus.Logger
}

// NewBookingHandler constructs a BookingHandler. events may be nil.
func NewBookingHandler(bookings *repository.BookingRepo, tickets *repository.TicketRepo,
	activity *repository.ActivityRepo, events *queue.Publisher, log *logrus.Logger) *BookingHandler {
	return &BookingHandler{Bookings: bookings, Tickets: tickets, Activity: activity, Events: events, Log: log}
}

func canViewAll(c echo.Context) bool {
	user := middleware.CurrentUser(c)
	return user != nil && auth.HasPermission(user.Role, auth.PermViewAllBookings)
}

// List handles GET /api/bookings. Staff see only their own bookings.
func (h *BookingHandler) List(c echo.Context) error {
	user := middleware.CurrentUser(c)
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	f := repository.BookingFilter{
		Status: c.QueryParam("status"),
		Limit:  limit,
		Offset: offset,
	}
	if !canViewAll(c) {
		f.CreatedBy = user.ID
	}

	bookings, err := h.Bookings.List(c.Request().Context(), f)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
	return respond(c, http.StatusOK, "Bookings retrieved successfully", echo.Map{
		"bookings": bookings,
		"total":    len(bookings),
	})
}

// Get handles GET /api/bookings/:id, including the linked ticket.
func (h *BookingHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()
	booking, err := h.Bookings.Get(ctx, c.Param("id"))
	if err == repository.ErrNotFound {
		return fail(c, http.StatusNotFound, "Booking not found")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	user := middleware.CurrentUser(c)
	if !canViewAll(c) && booking.CreatedBy != user.ID {
		return fail(c, http.StatusForbidden, "Access denied")
	}

	ticket, err := h.Tickets.Get(ctx, booking.TicketID)
	if err != nil && err != repository.ErrNotFound {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
	data := echo.Map{"booking": booking}
	if ticket != nil {
		one := []model.TicketDetail{*ticket}
		stripBuyingPrices(c, one)
		data["ticket"] = one[0]
	}
	return respond(c, http.StatusOK, "Booking retrieved successfully", data)
}

type createBookingRequest struct {
	TicketID  string `json:"ticketId"`
	AgentInfo struct {
		Name  string  `json:"name"`
		Phone *string `json:"phone"`
		Email *string `json:"email"`
	} `json:"agentInfo"`
	PassengerInfo struct {
		Name       string  `json:"name"`
		PassportNo string  `json:"passportNo"`
		Phone      string  `json:"phone"`
		PaxCount   int     `json:"paxCount"`
		Email      *string `json:"email"`
	} `json:"passengerInfo"`
	SellingPrice   int64   `json:"sellingPrice"`
	PaymentType    string  `json:"paymentType"`
	PartialAmount  *int64  `json:"partialAmount"`
	PaymentMethod  string  `json:"paymentMethod"`
	PaymentDetails *string `json:"paymentDetails"`
	Comments       *string `json:"comments"`
}

func (r *createBookingRequest) validate() map[string]string {
	errs := map[string]string{}
	if r.TicketID == "" {
		errs["ticketId"] = "Ticket ID is required"
	}
	if r.AgentInfo.Name == "" {
		errs["agentInfo.name"] = "Agent name is required"
	}
	if r.PassengerInfo.Name == "" {
		errs["passengerInfo.name"] = "Passenger name is required"
	}
	if r.PassengerInfo.PassportNo == "" {
		errs["passengerInfo.passportNo"] = "Passport number is required"
	}
	if r.PassengerInfo.Phone == "" {
		errs["passengerInfo.phone"] = "Passenger phone is required"
	}
	if r.PassengerInfo.PaxCount < 1 {
		errs["passengerInfo.paxCount"] = "Passenger count must be at least 1"
	}
	if r.SellingPrice < 0 {
		errs["sellingPrice"] = "Selling price must be positive"
	}
	if !model.ValidPaymentType(r.PaymentType) {
		errs["paymentType"] = "Payment type must be full or partial"
	}
	return errs
}

// Create handles POST /api/bookings. The ticket claim and booking
// insert happen atomically in the repository, so a ticket can never be
// double booked.
func (h *BookingHandler) Create(c echo.Context) error {
	var body createBookingRequest
	if err := c.Bind(&body); err != nil {
		return failValidation(c, "Validation error", echo.Map{"body": "invalid JSON"})
	}
	if errs := body.validate(); len(errs) > 0 {
		return failValidation(c, "Validation error", errs)
	}

	if err := model.ValidatePartialAmount(body.PaymentType, body.PartialAmount,
		body.SellingPrice, body.PassengerInfo.PaxCount); err != nil {
		switch err {
		case model.ErrPartialAmountRequired:
			return fail(c, http.StatusBadRequest, "Partial amount is required for partial payments")
		case model.ErrPartialAmountTooHigh:
			return fail(c, http.StatusBadRequest, "Partial amount cannot be greater than or equal to total amount")
		default:
			return fail(c, http.StatusBadRequest, err.Error())
		}
	}

	user := middleware.CurrentUser(c)
	paymentMethod := body.PaymentMethod
	if paymentMethod == "" {
		paymentMethod = "cash"
	}
	booking := model.Booking{
		TicketID:          body.TicketID,
		AgentName:         body.AgentInfo.Name,
		AgentPhone:        body.AgentInfo.Phone,
		AgentEmail:        body.AgentInfo.Email,
		PassengerName:     body.PassengerInfo.Name,
		PassengerPassport: body.PassengerInfo.PassportNo,
		PassengerPhone:    body.PassengerInfo.Phone,
		PassengerEmail:    body.PassengerInfo.Email,
		PaxCount:          body.PassengerInfo.PaxCount,
		SellingPrice:      body.SellingPrice,
		PaymentType:       body.PaymentType,
		PartialAmount:     body.PartialAmount,
		PaymentMethod:     paymentMethod,
		PaymentDetails:    body.PaymentDetails,
		Comments:          body.Comments,
		CreatedBy:         user.ID,
	}

	ctx := c.Request().Context()
	err := h.Bookings.CreateWithTicket(ctx, &booking)
	if err == repository.ErrNotFound {
		return fail(c, http.StatusNotFound, "Ticket not found")
	}
	if err == repository.ErrTicketUnavailable {
		return fail(c, http.StatusBadRequest, "Ticket is not available for booking")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	collected := model.CollectedAmount(body.PaymentType, body.PartialAmount,
		body.SellingPrice, body.PassengerInfo.PaxCount)
	logActivity(c, h.Activity, h.Log, user.ID, "create_booking", "booking", booking.ID, map[string]any{
		"ticket_id":    booking.TicketID,
		"payment_type": booking.PaymentType,
		"collected":    collected,
		"status":       booking.Status,
	})
	h.Events.Publish(ctx, queue.BookingEvent{
		Action:        "created",
		BookingID:     booking.ID,
		TicketID:      booking.TicketID,
		PassengerName: booking.PassengerName,
		PaymentType:   booking.PaymentType,
		Status:        booking.Status,
		Amount:        collected,
		ActorID:       user.ID,
		ActorName:     user.Name,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	})

	return respond(c, http.StatusCreated, "Booking created successfully", echo.Map{
		"booking": booking,
	})
}

// UpdateStatus handles PATCH /api/bookings/:id/status. Confirmation
// requires the confirm_sales capability; the ticket cascades in the
// same transaction as the booking change.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil || !model.ValidBookingStatus(body.Status) {
		return fail(c, http.StatusBadRequest, "Invalid status")
	}

	ctx := c.Request().Context()
	id := c.Param("id")
	booking, err := h.Bookings.Get(ctx, id)
	if err == repository.ErrNotFound {
		return fail(c, http.StatusNotFound, "Booking not found")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	user := middleware.CurrentUser(c)
	if !canViewAll(c) && booking.CreatedBy != user.ID {
		return fail(c, http.StatusForbidden, "Access denied")
	}
	if body.Status == model.BookingConfirmed && !auth.HasPermission(user.Role, auth.PermConfirmSales) {
		return fail(c, http.StatusForbidden, "Permission required to confirm bookings")
	}

	if err := h.Bookings.UpdateStatusWithTicket(ctx, id, body.Status, user.ID); err != nil {
		if err == repository.ErrNotFound {
			return fail(c, http.StatusNotFound, "Booking not found")
		}
		return fail(c, http.StatusInternalServerError, "Database error updating booking status")
	}

	logActivity(c, h.Activity, h.Log, user.ID, "update_booking_status", "booking", id, map[string]any{
		"old_status": booking.Status,
		"new_status": body.Status,
	})
	h.Events.Publish(ctx, queue.BookingEvent{
		Action:        body.Status,
		BookingID:     id,
		TicketID:      booking.TicketID,
		PassengerName: booking.PassengerName,
		PaymentType:   booking.PaymentType,
		Status:        body.Status,
		Amount:        booking.SellingPrice * int64(booking.PaxCount),
		ActorID:       user.ID,
		ActorName:     user.Name,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	})

	return respond(c, http.StatusOK, "Booking status updated successfully", nil)
}

// Cancel handles DELETE /api/bookings/:id. Cancelling a confirmed
// booking needs override_locks on top of ownership or view-all.
func (h *BookingHandler) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	booking, err := h.Bookings.Get(ctx, id)
	if err == repository.ErrNotFound {
		return fail(c, http.StatusNotFound, "Booking not found")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	user := middleware.CurrentUser(c)
	if !canViewAll(c) && booking.CreatedBy != user.ID {
		return fail(c, http.StatusForbidden, "Access denied")
	}
	if booking.Status == model.BookingConfirmed && !auth.HasPermission(user.Role, auth.PermOverrideLocks) {
		return fail(c, http.StatusBadRequest, "Cannot cancel confirmed booking without override permission")
	}

	if err := h.Bookings.UpdateStatusWithTicket(ctx, id, model.BookingCancelled, user.ID); err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	logActivity(c, h.Activity, h.Log, user.ID, "cancel_booking", "booking", id, map[string]any{
		"reason": "manual_cancellation",
	})
	h.Events.Publish(ctx, queue.BookingEvent{
		Action:        "cancelled",
		BookingID:     id,
		TicketID:      booking.TicketID,
		PassengerName: booking.PassengerName,
		PaymentType:   booking.PaymentType,
		Status:        model.BookingCancelled,
		ActorID:       user.ID,
		ActorName:     user.Name,
		OccurredAt:    time.Now().UTC().Format(time.RFC3339),
	})

	return respond(c, http.StatusOK, "Booking cancelled successfully", nil)
}
