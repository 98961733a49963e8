package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bdticketpro/backoffice/internal/config"
	"github.com/bdticketpro/backoffice/internal/handler"
	"github.com/bdticketpro/backoffice/internal/model"
	"github.com/bdticketpro/backoffice/internal/repository"
	"github.com/bdticketpro/backoffice/internal/utils"
)

const testSecret = "router-test-secret"

func newTestAPI(t *testing.T) (*echo.Echo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	log := logrus.New()
	log.SetOutput(io.Discard)

	e := echo.New()
	h := Handlers{
		Auth:      &handler.AuthHandler{},
		Tickets:   &handler.TicketHandler{},
		Batches:   &handler.BatchHandler{},
		Bookings:  &handler.BookingHandler{},
		Users:     &handler.UserHandler{},
		Settings:  &handler.SettingsHandler{},
		Reference: &handler.ReferenceHandler{},
	}
	Register(e, h, repository.NewUserRepo(db), testSecret, log, config.RateLimitConfig{}, nil)
	return e, mock
}

func expectUserLookup(mock sqlmock.Sqlmock, id, role string) {
	now := time.Now()
	mock.ExpectQuery(`SELECT .+ FROM users WHERE id = \?`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "username", "password_hash", "name", "email", "phone",
			"role", "status", "last_login", "created_at", "updated_at",
		}).AddRow(id, role, "hash", "Tester", nil, nil, role, model.UserActive, nil, now, now))
}

func doAs(t *testing.T, e *echo.Echo, mock sqlmock.Sqlmock, role, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	expectUserLookup(mock, "u-"+role, role)
	token, err := utils.NewToken(testSecret, "u-"+role, role, role, time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

// Booking creation is gated by authentication alone, so the admin role,
// which carries no create_bookings capability, must still get past the
// route and into request validation.
func TestBookingCreateOpenToAllRoles(t *testing.T) {
	for _, role := range []string{model.RoleAdmin, model.RoleManager, model.RoleStaff} {
		t.Run(role, func(t *testing.T) {
			e, mock := newTestAPI(t)
			rec := doAs(t, e, mock, role, http.MethodPost, "/api/bookings", `{}`)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), "Validation error")
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestBatchCreateStaysGated(t *testing.T) {
	e, mock := newTestAPI(t)
	rec := doAs(t, e, mock, model.RoleStaff, http.MethodPost, "/api/ticket-batches", `{}`)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "Insufficient permissions.")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMissingTokenRejected(t *testing.T) {
	e, _ := newTestAPI(t)
	req := httptest.NewRequest(http.MethodGet, "/api/tickets", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "No token provided.")
}
