package worker

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"github.com/bdticketpro/backoffice/internal/model"
	"github.com/bdticketpro/backoffice/internal/queue"
)

type mockBookings struct{ mock.Mock }

func (m *mockBookings) ListOverdue(ctx context.Context, now time.Time, limit int) ([]model.Booking, error) {
	args := m.Called(ctx, now, limit)
	return args.Get(0).([]model.Booking), args.Error(1)
}

func (m *mockBookings) UpdateStatusWithTicket(ctx context.Context, id, status, actorID string) error {
	args := m.Called(ctx, id, status, actorID)
	return args.Error(0)
}

type mockTickets struct{ mock.Mock }

func (m *mockTickets) ClearLapsedLocks(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type mockAudit struct{ mock.Mock }

func (m *mockAudit) Insert(ctx context.Context, l *model.ActivityLog) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

type mockEvents struct{ mock.Mock }

func (m *mockEvents) Publish(ctx context.Context, ev queue.BookingEvent) {
	m.Called(ctx, ev)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func overdueBooking(id string) model.Booking {
	exp := time.Now().UTC().Add(-time.Hour)
	return model.Booking{
		ID:            id,
		TicketID:      "t-" + id,
		PassengerName: "Karim",
		PaymentType:   model.PaymentPartial,
		Status:        model.BookingPending,
		CreatedBy:     "u-1",
		ExpiresAt:     &exp,
	}
}

func TestSweepExpiresOverdueBookings(t *testing.T) {
	bookings := new(mockBookings)
	tickets := new(mockTickets)
	audit := new(mockAudit)
	events := new(mockEvents)

	now := time.Now().UTC()
	overdue := []model.Booking{overdueBooking("b-1"), overdueBooking("b-2")}

	bookings.On("ListOverdue", mock.Anything, now, 100).Return(overdue, nil)
	bookings.On("UpdateStatusWithTicket", mock.Anything, "b-1", model.BookingExpired, "u-1").Return(nil)
	bookings.On("UpdateStatusWithTicket", mock.Anything, "b-2", model.BookingExpired, "u-1").Return(nil)
	audit.On("Insert", mock.Anything, mock.MatchedBy(func(l *model.ActivityLog) bool {
		return l.Action == "expire_booking" && l.EntityType == "booking"
	})).Return(nil)
	events.On("Publish", mock.Anything, mock.MatchedBy(func(ev queue.BookingEvent) bool {
		return ev.Action == "expired" && ev.Status == model.BookingExpired
	})).Return()
	tickets.On("ClearLapsedLocks", mock.Anything, now).Return(int64(1), nil)

	w := NewExpiry(bookings, tickets, audit, events, quietLogger())
	w.Sweep(context.Background(), now)

	bookings.AssertExpectations(t)
	tickets.AssertExpectations(t)
	audit.AssertNumberOfCalls(t, "Insert", 2)
	events.AssertNumberOfCalls(t, "Publish", 2)
}

func TestSweepContinuesAfterFailure(t *testing.T) {
	bookings := new(mockBookings)
	tickets := new(mockTickets)
	audit := new(mockAudit)

	now := time.Now().UTC()
	overdue := []model.Booking{overdueBooking("b-1"), overdueBooking("b-2")}

	bookings.On("ListOverdue", mock.Anything, now, 100).Return(overdue, nil)
	bookings.On("UpdateStatusWithTicket", mock.Anything, "b-1", model.BookingExpired, "u-1").
		Return(errors.New("deadlock"))
	bookings.On("UpdateStatusWithTicket", mock.Anything, "b-2", model.BookingExpired, "u-1").Return(nil)
	audit.On("Insert", mock.Anything, mock.Anything).Return(nil)
	tickets.On("ClearLapsedLocks", mock.Anything, now).Return(int64(0), nil)

	w := NewExpiry(bookings, tickets, audit, nil, quietLogger())
	w.Sweep(context.Background(), now)

	bookings.AssertExpectations(t)
	// Only the booking that expired successfully is audited.
	audit.AssertNumberOfCalls(t, "Insert", 1)
}

func TestSweepStopsWhenListingFails(t *testing.T) {
	bookings := new(mockBookings)
	tickets := new(mockTickets)
	audit := new(mockAudit)

	now := time.Now().UTC()
	bookings.On("ListOverdue", mock.Anything, now, 100).
		Return([]model.Booking{}, errors.New("db down"))

	w := NewExpiry(bookings, tickets, audit, nil, quietLogger())
	w.Sweep(context.Background(), now)

	bookings.AssertExpectations(t)
	tickets.AssertNotCalled(t, "ClearLapsedLocks", mock.Anything, mock.Anything)
}
