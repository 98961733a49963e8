// Package worker runs the booking expiry sweep: pending bookings whose
// payment window has lapsed are expired and their tickets returned to
// the available pool.
package worker

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/bdticketpro/backoffice/internal/model"
	"github.com/bdticketpro/backoffice/internal/queue"
)

// BookingStore is the slice of the booking repository the sweep needs.
type BookingStore interface {
	ListOverdue(ctx context.Context, now time.Time, limit int) ([]model.Booking, error)
	UpdateStatusWithTicket(ctx context.Context, id, status, actorID string) error
}

// TicketStore releases orphaned ticket locks after the booking sweep.
type TicketStore interface {
	ClearLapsedLocks(ctx context.Context, now time.Time) (int64, error)
}

// AuditStore records each expiry in the activity log.
type AuditStore interface {
	Insert(ctx context.Context, l *model.ActivityLog) error
}

// EventPublisher emits booking events for downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent)
}

// Expiry sweeps overdue bookings on a fixed interval.
type Expiry struct {
	Bookings  BookingStore
	Tickets   TicketStore
	Audit     AuditStore
	Events    EventPublisher
	Log       *logrus.Logger
	BatchSize int
}

// NewExpiry constructs the sweep worker. events may be nil.
func NewExpiry(bookings BookingStore, tickets TicketStore, audit AuditStore,
	events EventPublisher, log *logrus.Logger) *Expiry {
	return &Expiry{
		Bookings:  bookings,
		Tickets:   tickets,
		Audit:     audit,
		Events:    events,
		Log:       log,
		BatchSize: 100,
	}
}

// Run sweeps once per interval until the context is cancelled.
func (w *Expiry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			w.Sweep(ctx, now.UTC())
		}
	}
}

// Sweep expires every overdue pending booking, each in its own
// transaction, then releases ticket locks with no live booking behind
// them. A failure on one booking does not stop the rest.
func (w *Expiry) Sweep(ctx context.Context, now time.Time) {
	overdue, err := w.Bookings.ListOverdue(ctx, now, w.BatchSize)
	if err != nil {
		w.Log.WithError(err).Error("expiry sweep: listing overdue bookings failed")
		return
	}

	expired := 0
	for _, b := range overdue {
		if err := w.Bookings.UpdateStatusWithTicket(ctx, b.ID, model.BookingExpired, b.CreatedBy); err != nil {
			w.Log.WithError(err).WithField("booking_id", b.ID).Error("expiry sweep: expire failed")
			continue
		}
		expired++

		entry := model.ActivityLog{
			UserID:     b.CreatedBy,
			Action:     "expire_booking",
			EntityType: "booking",
			EntityID:   &b.ID,
		}
		if err := w.Audit.Insert(ctx, &entry); err != nil {
			w.Log.WithError(err).WithField("booking_id", b.ID).Warn("expiry sweep: audit insert failed")
		}
		if w.Events != nil {
			w.Events.Publish(ctx, queue.BookingEvent{
				Action:        "expired",
				BookingID:     b.ID,
				TicketID:      b.TicketID,
				PassengerName: b.PassengerName,
				PaymentType:   b.PaymentType,
				Status:        model.BookingExpired,
				ActorID:       b.CreatedBy,
				OccurredAt:    now.Format(time.RFC3339),
			})
		}
	}

	released, err := w.Tickets.ClearLapsedLocks(ctx, now)
	if err != nil {
		w.Log.WithError(err).Error("expiry sweep: clearing lapsed locks failed")
	}

	if expired > 0 || released > 0 {
		w.Log.WithFields(logrus.Fields{
			"expired":  expired,
			"released": released,
		}).Info("expiry sweep completed")
	}
}
