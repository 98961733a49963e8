package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdticketpro/backoffice/internal/model"
)

func newBookingRepoMock(t *testing.T) (*BookingRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewBookingRepo(db), mock
}

func bookingFor(paymentType string) *model.Booking {
	partial := int64(8000)
	phone := "01700000000"
	b := &model.Booking{
		TicketID:          "t1",
		AgentName:         "Sky Travels",
		AgentPhone:        &phone,
		PassengerName:     "Rahim Uddin",
		PassengerPassport: "BX1234567",
		PassengerPhone:    "01800000000",
		PaxCount:          1,
		SellingPrice:      21600,
		PaymentType:       paymentType,
		PaymentMethod:     "cash",
		CreatedBy:         "u1",
	}
	if paymentType == model.PaymentPartial {
		b.PartialAmount = &partial
	}
	return b
}

func TestCreateWithTicketFullPayment(t *testing.T) {
	repo, mock := newBookingRepoMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE tickets SET status = 'sold'.+WHERE id = \? AND status = 'available'`).
		WithArgs("u1", sqlmock.AnyArg(), "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO bookings`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b := bookingFor(model.PaymentFull)
	require.NoError(t, repo.CreateWithTicket(context.Background(), b))
	assert.Equal(t, model.BookingConfirmed, b.Status)
	assert.NotNil(t, b.ConfirmedAt)
	assert.Nil(t, b.ExpiresAt)
	assert.NotEmpty(t, b.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithTicketPartialPayment(t *testing.T) {
	repo, mock := newBookingRepoMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE tickets SET status = 'locked'.+WHERE id = \? AND status = 'available'`).
		WithArgs(sqlmock.AnyArg(), "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO bookings`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	b := bookingFor(model.PaymentPartial)
	require.NoError(t, repo.CreateWithTicket(context.Background(), b))
	assert.Equal(t, model.BookingPending, b.Status)
	assert.Nil(t, b.ConfirmedAt)
	require.NotNil(t, b.ExpiresAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithTicketMissingTicket(t *testing.T) {
	repo, mock := newBookingRepoMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE tickets SET status = 'sold'`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectRollback()

	err := repo.CreateWithTicket(context.Background(), bookingFor(model.PaymentFull))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithTicketAlreadyClaimed(t *testing.T) {
	repo, mock := newBookingRepoMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE tickets SET status = 'locked'`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := repo.CreateWithTicket(context.Background(), bookingFor(model.PaymentPartial))
	assert.ErrorIs(t, err, ErrTicketUnavailable)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithTicketRollsBackOnInsertFailure(t *testing.T) {
	repo, mock := newBookingRepoMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE tickets SET status = 'sold'`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO bookings`).
		WillReturnError(errors.New("connection reset"))
	mock.ExpectRollback()

	err := repo.CreateWithTicket(context.Background(), bookingFor(model.PaymentFull))
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusWithTicketConfirm(t *testing.T) {
	repo, mock := newBookingRepoMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT ticket_id FROM bookings`).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"ticket_id"}).AddRow("t1"))
	mock.ExpectExec(`UPDATE bookings SET status = .+, confirmed_at`).
		WithArgs(model.BookingConfirmed, sqlmock.AnyArg(), "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE tickets SET status = 'sold'`).
		WithArgs("actor", sqlmock.AnyArg(), "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateStatusWithTicket(context.Background(), "b1", model.BookingConfirmed, "actor")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusWithTicketCancelReleasesTicket(t *testing.T) {
	repo, mock := newBookingRepoMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT ticket_id FROM bookings`).
		WithArgs("b1").
		WillReturnRows(sqlmock.NewRows([]string{"ticket_id"}).AddRow("t1"))
	mock.ExpectExec(`UPDATE bookings SET status = `).
		WithArgs(model.BookingCancelled, "b1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`UPDATE tickets SET status = 'available', locked_until = NULL`).
		WithArgs("t1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.UpdateStatusWithTicket(context.Background(), "b1", model.BookingCancelled, "actor")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusWithTicketUnknownBooking(t *testing.T) {
	repo, mock := newBookingRepoMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT ticket_id FROM bookings`).
		WithArgs("nope").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	err := repo.UpdateStatusWithTicket(context.Background(), "nope", model.BookingCancelled, "actor")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
