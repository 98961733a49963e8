package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdticketpro/backoffice/internal/model"
)

func newTicketRepoMock(t *testing.T) (*TicketRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTicketRepo(db), mock
}

// Force-selling a locked ticket must drop the stale lock along with the
// status change.
func TestUpdateStatusSoldClearsLock(t *testing.T) {
	repo, mock := newTicketRepoMock(t)
	mock.ExpectExec(`UPDATE tickets SET status = \?, sold_by = \?, sold_at = \?, locked_until = NULL WHERE id = \?`).
		WithArgs(model.TicketSold, "u1", sqlmock.AnyArg(), "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "t1", model.TicketSold, "u1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusAvailableClearsLock(t *testing.T) {
	repo, mock := newTicketRepoMock(t)
	mock.ExpectExec(`UPDATE tickets SET status = \?, locked_until = NULL WHERE id = \?`).
		WithArgs(model.TicketAvailable, "t1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateStatus(context.Background(), "t1", model.TicketAvailable, ""))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusUnknownTicket(t *testing.T) {
	repo, mock := newTicketRepoMock(t)
	mock.ExpectExec(`UPDATE tickets SET status = \?, locked_until = NULL WHERE id = \?`).
		WithArgs(model.TicketAvailable, "nope").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`SELECT COUNT`).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	err := repo.UpdateStatus(context.Background(), "nope", model.TicketAvailable, "")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
