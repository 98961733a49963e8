package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/bdticketpro/backoffice/internal/model"
)

// BookingRepo manages bookings together with the ticket state they
// drive. Every write that touches both a booking and its ticket runs in
// a single transaction so a crash can never leave a confirmed booking
// on an available ticket or the reverse.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// BookingFilter narrows List. CreatedBy set means only that user's
// bookings are returned.
type BookingFilter struct {
	Status    string
	CreatedBy string
	Limit     int
	Offset    int
}

const bookingColumns = `id, ticket_id, agent_name, agent_phone, agent_email,
passenger_name, passenger_passport, passenger_phone, passenger_email,
pax_count, selling_price, payment_type, partial_amount, payment_method,
payment_details, comments, status, created_by, confirmed_at, expires_at,
created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*model.Booking, error) {
	var b model.Booking
	var agentPhone, agentEmail, passengerEmail sql.NullString
	var partialAmount sql.NullInt64
	var paymentDetails, comments sql.NullString
	var confirmedAt, expiresAt sql.NullTime
	err := row.Scan(&b.ID, &b.TicketID, &b.AgentName, &agentPhone, &agentEmail,
		&b.PassengerName, &b.PassengerPassport, &b.PassengerPhone, &passengerEmail,
		&b.PaxCount, &b.SellingPrice, &b.PaymentType, &partialAmount, &b.PaymentMethod,
		&paymentDetails, &comments, &b.Status, &b.CreatedBy, &confirmedAt, &expiresAt,
		&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if agentPhone.Valid {
		b.AgentPhone = &agentPhone.String
	}
	if agentEmail.Valid {
		b.AgentEmail = &agentEmail.String
	}
	if passengerEmail.Valid {
		b.PassengerEmail = &passengerEmail.String
	}
	if partialAmount.Valid {
		b.PartialAmount = &partialAmount.Int64
	}
	if paymentDetails.Valid {
		b.PaymentDetails = &paymentDetails.String
	}
	if comments.Valid {
		b.Comments = &comments.String
	}
	if confirmedAt.Valid {
		b.ConfirmedAt = &confirmedAt.Time
	}
	if expiresAt.Valid {
		b.ExpiresAt = &expiresAt.Time
	}
	return &b, nil
}

// List returns bookings matching the filter, newest first.
func (r *BookingRepo) List(ctx context.Context, f BookingFilter) ([]model.Booking, error) {
	q := `SELECT ` + bookingColumns + ` FROM bookings WHERE 1=1`
	args := []any{}
	if f.Status != "" {
		q += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.CreatedBy != "" {
		q += ` AND created_by = ?`
		args = append(args, f.CreatedBy)
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	q += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// Get fetches a booking by ID.
func (r *BookingRepo) Get(ctx context.Context, id string) (*model.Booking, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id)
	b, err := scanBooking(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return b, err
}

// CreateWithTicket inserts the booking and claims its ticket in one
// transaction. The ticket is claimed with a conditional UPDATE that
// only matches the available state, so two concurrent bookings for the
// same ticket cannot both succeed; the loser gets ErrTicketUnavailable.
// Full payments confirm immediately and mark the ticket sold, partial
// payments leave the booking pending with a 24h expiry and a matching
// ticket lock.
func (r *BookingRepo) CreateWithTicket(ctx context.Context, b *model.Booking) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	now := time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	ticketStatus := model.TicketStatusOnCreate(b.PaymentType)
	var res sql.Result
	if ticketStatus == model.TicketSold {
		res, err = tx.ExecContext(ctx,
			`UPDATE tickets SET status = 'sold', sold_by = ?, sold_at = ?, locked_until = NULL
			 WHERE id = ? AND status = 'available'`,
			b.CreatedBy, now, b.TicketID)
	} else {
		res, err = tx.ExecContext(ctx,
			`UPDATE tickets SET status = 'locked', locked_until = ?
			 WHERE id = ? AND status = 'available'`,
			now.Add(model.LockDuration), b.TicketID)
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM tickets WHERE id = ?`, b.TicketID).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}
		return ErrTicketUnavailable
	}

	b.Status = model.InitialBookingStatus(b.PaymentType)
	if b.Status == model.BookingConfirmed {
		b.ConfirmedAt = &now
		b.ExpiresAt = nil
	} else {
		exp := now.Add(model.LockDuration)
		b.ExpiresAt = &exp
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO bookings (id, ticket_id, agent_name, agent_phone, agent_email,
			passenger_name, passenger_passport, passenger_phone, passenger_email,
			pax_count, selling_price, payment_type, partial_amount, payment_method,
			payment_details, comments, status, created_by, confirmed_at, expires_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.TicketID, b.AgentName, b.AgentPhone, b.AgentEmail,
		b.PassengerName, b.PassengerPassport, b.PassengerPhone, b.PassengerEmail,
		b.PaxCount, b.SellingPrice, b.PaymentType, b.PartialAmount, b.PaymentMethod,
		b.PaymentDetails, b.Comments, b.Status, b.CreatedBy, b.ConfirmedAt, b.ExpiresAt)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	b.CreatedAt = now
	b.UpdatedAt = now
	return nil
}

// UpdateStatusWithTicket moves a booking to the given status and
// cascades the linked ticket in the same transaction: confirmation
// marks the ticket sold and stamps confirmed_at, cancellation or expiry
// returns it to available.
func (r *BookingRepo) UpdateStatusWithTicket(ctx context.Context, id, status, actorID string) error {
	now := time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var ticketID string
	err = tx.QueryRowContext(ctx,
		`SELECT ticket_id FROM bookings WHERE id = ?`, id).Scan(&ticketID)
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if status == model.BookingConfirmed {
		_, err = tx.ExecContext(ctx,
			`UPDATE bookings SET status = ?, confirmed_at = ? WHERE id = ?`, status, now, id)
	} else {
		_, err = tx.ExecContext(ctx,
			`UPDATE bookings SET status = ? WHERE id = ?`, status, id)
	}
	if err != nil {
		return err
	}

	if ticketStatus, ok := model.CascadeTicketStatus(status); ok {
		if ticketStatus == model.TicketSold {
			_, err = tx.ExecContext(ctx,
				`UPDATE tickets SET status = 'sold', sold_by = ?, sold_at = ?, locked_until = NULL
				 WHERE id = ?`, actorID, now, ticketID)
		} else {
			_, err = tx.ExecContext(ctx,
				`UPDATE tickets SET status = 'available', locked_until = NULL, sold_by = NULL, sold_at = NULL
				 WHERE id = ?`, ticketID)
		}
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListOverdue returns pending bookings whose expiry has passed, oldest
// first, capped so a single sweep stays bounded.
func (r *BookingRepo) ListOverdue(ctx context.Context, now time.Time, limit int) ([]model.Booking, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE status = 'pending' AND expires_at IS NOT NULL AND expires_at <= ?
		 ORDER BY expires_at LIMIT ?`, now.UTC(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}
