package model

import "time"

// Ticket statuses form a closed enum. `booked` exists in the schema for
// historical reasons but only `available`, `locked` and `sold` take part
// in the booking lifecycle.
const (
	TicketAvailable = "available"
	TicketBooked    = "booked"
	TicketLocked    = "locked"
	TicketSold      = "sold"
)

// LockDuration is how long a partial-payment booking keeps its ticket
// locked before the expiry worker releases it. The seeded
// booking_timeout setting mirrors this value in hours.
const LockDuration = 24 * time.Hour

// Ticket mirrors the `tickets` table. Each ticket represents a single
// seat within a batch (AvailableSeats and TotalSeats are fixed at 1).
type Ticket struct {
	ID             string     `json:"id"`
	BatchID        string     `json:"batch_id"`
	FlightNumber   string     `json:"flight_number"`
	Status         string     `json:"status"`
	SellingPrice   int64      `json:"selling_price"`
	Aircraft       *string    `json:"aircraft,omitempty"`
	Terminal       *string    `json:"terminal,omitempty"`
	ArrivalTime    *string    `json:"arrival_time,omitempty"`
	Duration       *string    `json:"duration,omitempty"`
	AvailableSeats int        `json:"available_seats"`
	TotalSeats     int        `json:"total_seats"`
	LockedUntil    *time.Time `json:"locked_until,omitempty"`
	SoldBy         *string    `json:"sold_by,omitempty"`
	SoldAt         *time.Time `json:"sold_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// TicketDetail joins a ticket with its batch and country for list and
// detail endpoints. Batch.BuyingPrice is zeroed for callers without the
// view_buying_price permission before serialization.
type TicketDetail struct {
	Ticket
	Batch   TicketBatch `json:"batch"`
	Country Country     `json:"country"`
}

// ValidTicketStatus reports whether s is one of the four ticket statuses.
func ValidTicketStatus(s string) bool {
	switch s {
	case TicketAvailable, TicketBooked, TicketLocked, TicketSold:
		return true
	}
	return false
}
