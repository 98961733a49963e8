package model

import (
	"errors"
	"time"
)

// Booking statuses.
const (
	BookingPending   = "pending"
	BookingConfirmed = "confirmed"
	BookingCancelled = "cancelled"
	BookingExpired   = "expired"
)

// Payment types.
const (
	PaymentFull    = "full"
	PaymentPartial = "partial"
)

var (
	// ErrPartialAmountRequired is returned when a partial-payment booking
	// is submitted without a positive partial amount.
	ErrPartialAmountRequired = errors.New("partial amount is required for partial payments")
	// ErrPartialAmountTooHigh is returned when the partial amount equals
	// or exceeds the total (sellingPrice * paxCount); such a payment is
	// a full payment, not a partial one.
	ErrPartialAmountTooHigh = errors.New("partial amount cannot be greater than or equal to total amount")
)

// Booking mirrors the `bookings` table.
type Booking struct {
	ID                string     `json:"id"`
	TicketID          string     `json:"ticket_id"`
	AgentName         string     `json:"agent_name"`
	AgentPhone        *string    `json:"agent_phone,omitempty"`
	AgentEmail        *string    `json:"agent_email,omitempty"`
	PassengerName     string     `json:"passenger_name"`
	PassengerPassport string     `json:"passenger_passport"`
	PassengerPhone    string     `json:"passenger_phone"`
	PassengerEmail    *string    `json:"passenger_email,omitempty"`
	PaxCount          int        `json:"pax_count"`
	SellingPrice      int64      `json:"selling_price"`
	PaymentType       string     `json:"payment_type"`
	PartialAmount     *int64     `json:"partial_amount,omitempty"`
	PaymentMethod     string     `json:"payment_method"`
	PaymentDetails    *string    `json:"payment_details,omitempty"`
	Comments          *string    `json:"comments,omitempty"`
	Status            string     `json:"status"`
	CreatedBy         string     `json:"created_by"`
	ConfirmedAt       *time.Time `json:"confirmed_at,omitempty"`
	ExpiresAt         *time.Time `json:"expires_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

// ValidBookingStatus reports whether s is one of the four booking statuses.
func ValidBookingStatus(s string) bool {
	switch s {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingExpired:
		return true
	}
	return false
}

// ValidPaymentType reports whether s is "full" or "partial".
func ValidPaymentType(s string) bool {
	return s == PaymentFull || s == PaymentPartial
}

// ValidatePartialAmount enforces the partial-payment rule: for partial
// bookings the amount must be present, positive and strictly less than
// sellingPrice * paxCount. Full payments carry no partial amount and
// always pass.
func ValidatePartialAmount(paymentType string, partialAmount *int64, sellingPrice int64, paxCount int) error {
	if paymentType != PaymentPartial {
		return nil
	}
	if partialAmount == nil || *partialAmount <= 0 {
		return ErrPartialAmountRequired
	}
	if *partialAmount >= sellingPrice*int64(paxCount) {
		return ErrPartialAmountTooHigh
	}
	return nil
}

// InitialBookingStatus returns the booking status a new booking starts
// in: confirmed for full payments, pending for partial ones.
func InitialBookingStatus(paymentType string) string {
	if paymentType == PaymentFull {
		return BookingConfirmed
	}
	return BookingPending
}

// TicketStatusOnCreate returns the ticket status a newly claimed ticket
// moves to: sold for full payments, locked for partial ones.
func TicketStatusOnCreate(paymentType string) string {
	if paymentType == PaymentFull {
		return TicketSold
	}
	return TicketLocked
}

// CascadeTicketStatus maps a booking status change to the ticket status
// the linked ticket must take: sold on confirmation, available when the
// booking is cancelled or expires. For `pending` the ticket stays
// untouched and the second return is false.
func CascadeTicketStatus(bookingStatus string) (string, bool) {
	switch bookingStatus {
	case BookingConfirmed:
		return TicketSold, true
	case BookingCancelled, BookingExpired:
		return TicketAvailable, true
	}
	return "", false
}

// CollectedAmount returns the money taken at booking creation: the full
// total for full payments, the partial amount otherwise.
func CollectedAmount(paymentType string, partialAmount *int64, sellingPrice int64, paxCount int) int64 {
	if paymentType == PaymentFull {
		return sellingPrice * int64(paxCount)
	}
	if partialAmount != nil {
		return *partialAmount
	}
	return 0
}
