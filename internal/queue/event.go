// Package queue defines the booking event payloads exchanged over
// RabbitMQ and the consumer that turns them into an audit log file.
package queue

// BookingEvent is published whenever a booking is created or changes
// status. It carries enough context for downstream consumers to log or
// notify without querying the database.
type BookingEvent struct {
	Action        string `json:"action"` // created, confirmed, cancelled, expired
	BookingID     string `json:"booking_id"`
	TicketID      string `json:"ticket_id"`
	PassengerName string `json:"passenger_name"`
	PaymentType   string `json:"payment_type"`
	Status        string `json:"status"`
	Amount        int64  `json:"amount"` // money collected or outstanding, in BDT
	ActorID       string `json:"actor_id"`
	ActorName     string `json:"actor_name"`
	OccurredAt    string `json:"occurred_at"` // RFC 3339
}
