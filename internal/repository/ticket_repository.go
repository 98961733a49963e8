package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/bdticketpro/backoffice/internal/model"
)

// TicketRepo reads and mutates individual tickets. Booking-driven
// status changes live in BookingRepo so they share a transaction with
// the booking row; this repo covers listing, detail views, the direct
// admin status path and the aggregate statistics.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

// TicketFilter narrows List. Zero values mean no filtering; Limit of
// zero falls back to 50.
type TicketFilter struct {
	Country string
	Status  string
	Airline string // substring match, case-insensitive
	Limit   int
	Offset  int
}

const ticketSelect = `SELECT t.id, t.batch_id, t.flight_number, t.status, t.selling_price,
	t.aircraft, t.terminal, t.arrival_time, t.duration, t.available_seats, t.total_seats,
	t.locked_until, t.sold_by, t.sold_at, t.created_at, t.updated_at,
	b.id, b.country_code, b.airline_name, b.flight_date, b.flight_time,
	b.buying_price, b.quantity, b.agent_name, b.agent_contact, b.agent_address,
	b.remarks, b.document_url, b.created_by, b.created_at,
	c.code, c.name, c.flag, c.created_at
FROM tickets t
JOIN ticket_batches b ON t.batch_id = b.id
JOIN countries c ON b.country_code = c.code`

func scanTicketDetail(row interface{ Scan(...any) error }) (*model.TicketDetail, error) {
	var d model.TicketDetail
	var aircraft, terminal, arrival, duration sql.NullString
	var lockedUntil, soldAt sql.NullTime
	var soldBy sql.NullString
	var contact, address, remarks, docURL sql.NullString
	err := row.Scan(
		&d.ID, &d.BatchID, &d.FlightNumber, &d.Status, &d.SellingPrice,
		&aircraft, &terminal, &arrival, &duration, &d.AvailableSeats, &d.TotalSeats,
		&lockedUntil, &soldBy, &soldAt, &d.CreatedAt, &d.UpdatedAt,
		&d.Batch.ID, &d.Batch.CountryCode, &d.Batch.AirlineName, &d.Batch.FlightDate, &d.Batch.FlightTime,
		&d.Batch.BuyingPrice, &d.Batch.Quantity, &d.Batch.AgentName, &contact, &address,
		&remarks, &docURL, &d.Batch.CreatedBy, &d.Batch.CreatedAt,
		&d.Country.Code, &d.Country.Name, &d.Country.Flag, &d.Country.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if aircraft.Valid {
		d.Aircraft = &aircraft.String
	}
	if terminal.Valid {
		d.Terminal = &terminal.String
	}
	if arrival.Valid {
		d.ArrivalTime = &arrival.String
	}
	if duration.Valid {
		d.Duration = &duration.String
	}
	if lockedUntil.Valid {
		d.LockedUntil = &lockedUntil.Time
	}
	if soldBy.Valid {
		d.SoldBy = &soldBy.String
	}
	if soldAt.Valid {
		d.SoldAt = &soldAt.Time
	}
	if contact.Valid {
		d.Batch.AgentContact = &contact.String
	}
	if address.Valid {
		d.Batch.AgentAddress = &address.String
	}
	if remarks.Valid {
		d.Batch.Remarks = &remarks.String
	}
	if docURL.Valid {
		d.Batch.DocumentURL = &docURL.String
	}
	return &d, nil
}

// List returns tickets with batch and country detail, filtered and
// paginated, newest batches first.
func (r *TicketRepo) List(ctx context.Context, f TicketFilter) ([]model.TicketDetail, error) {
	q := ticketSelect + ` WHERE 1=1`
	args := []any{}
	if f.Country != "" {
		q += ` AND b.country_code = ?`
		args = append(args, f.Country)
	}
	if f.Status != "" {
		q += ` AND t.status = ?`
		args = append(args, f.Status)
	}
	if f.Airline != "" {
		q += ` AND LOWER(b.airline_name) LIKE ?`
		args = append(args, "%"+strings.ToLower(f.Airline)+"%")
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 50
	}
	q += ` ORDER BY b.created_at DESC, t.created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, f.Offset)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.TicketDetail{}
	for rows.Next() {
		d, err := scanTicketDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// Get fetches a single ticket with its batch and country.
func (r *TicketRepo) Get(ctx context.Context, id string) (*model.TicketDetail, error) {
	row := r.db.QueryRowContext(ctx, ticketSelect+` WHERE t.id = ?`, id)
	d, err := scanTicketDetail(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	return d, err
}

// ListByBatch returns the plain tickets of one batch.
func (r *TicketRepo) ListByBatch(ctx context.Context, batchID string) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, batch_id, flight_number, status, selling_price, aircraft, terminal,
			arrival_time, duration, available_seats, total_seats, locked_until, sold_by, sold_at,
			created_at, updated_at
		 FROM tickets WHERE batch_id = ? ORDER BY created_at`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Ticket{}
	for rows.Next() {
		var t model.Ticket
		var aircraft, terminal, arrival, duration, soldBy sql.NullString
		var lockedUntil, soldAt sql.NullTime
		err := rows.Scan(&t.ID, &t.BatchID, &t.FlightNumber, &t.Status, &t.SellingPrice,
			&aircraft, &terminal, &arrival, &duration, &t.AvailableSeats, &t.TotalSeats,
			&lockedUntil, &soldBy, &soldAt, &t.CreatedAt, &t.UpdatedAt)
		if err != nil {
			return nil, err
		}
		if aircraft.Valid {
			t.Aircraft = &aircraft.String
		}
		if terminal.Valid {
			t.Terminal = &terminal.String
		}
		if arrival.Valid {
			t.ArrivalTime = &arrival.String
		}
		if duration.Valid {
			t.Duration = &duration.String
		}
		if lockedUntil.Valid {
			t.LockedUntil = &lockedUntil.Time
		}
		if soldBy.Valid {
			t.SoldBy = &soldBy.String
		}
		if soldAt.Valid {
			t.SoldAt = &soldAt.Time
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// UpdateStatus is the direct admin path for forcing a ticket status.
// Selling stamps sold_by and sold_at, locking stamps a fresh
// locked_until, any other status clears the lock.
func (r *TicketRepo) UpdateStatus(ctx context.Context, id, status, soldBy string) error {
	now := time.Now().UTC()
	var res sql.Result
	var err error
	switch {
	case status == model.TicketSold && soldBy != "":
		res, err = r.db.ExecContext(ctx,
			`UPDATE tickets SET status = ?, sold_by = ?, sold_at = ?, locked_until = NULL WHERE id = ?`,
			status, soldBy, now, id)
	case status == model.TicketLocked:
		res, err = r.db.ExecContext(ctx,
			`UPDATE tickets SET status = ?, locked_until = ? WHERE id = ?`,
			status, now.Add(model.LockDuration), id)
	default:
		res, err = r.db.ExecContext(ctx,
			`UPDATE tickets SET status = ?, locked_until = NULL WHERE id = ?`,
			status, id)
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists int
		if err := r.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM tickets WHERE id = ?`, id).Scan(&exists); err != nil {
			return err
		}
		if exists == 0 {
			return ErrNotFound
		}
	}
	return nil
}

// DashboardStats is the aggregate block behind the landing page.
type DashboardStats struct {
	TodaysSalesCount  int   `json:"todaysSalesCount"`
	TodaysSalesAmount int64 `json:"todaysSalesAmount"`
	ConfirmedBookings int   `json:"confirmedBookings"`
	LockedTickets     int   `json:"lockedTickets"`
	TotalInventory    int   `json:"totalInventory"`
	EstimatedProfit   int64 `json:"estimatedProfit"`
}

// GetDashboardStats computes today's sales, live booking and inventory
// counts and the profit realized on all sold tickets.
func (r *TicketRepo) GetDashboardStats(ctx context.Context) (*DashboardStats, error) {
	var s DashboardStats
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(selling_price), 0)
		 FROM tickets WHERE status = 'sold' AND DATE(sold_at) = DATE(UTC_TIMESTAMP())`).
		Scan(&s.TodaysSalesCount, &s.TodaysSalesAmount)
	if err != nil {
		return nil, err
	}
	err = r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM bookings WHERE status = 'confirmed'`).Scan(&s.ConfirmedBookings)
	if err != nil {
		return nil, err
	}
	err = r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(status = 'locked'), 0), COALESCE(SUM(status IN ('available', 'locked')), 0)
		 FROM tickets`).Scan(&s.LockedTickets, &s.TotalInventory)
	if err != nil {
		return nil, err
	}
	err = r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(t.selling_price - b.buying_price), 0)
		 FROM tickets t JOIN ticket_batches b ON t.batch_id = b.id
		 WHERE t.status = 'sold'`).Scan(&s.EstimatedProfit)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// CountryStats extends a country with its ticket inventory counts.
type CountryStats struct {
	model.Country
	TotalTickets     int `json:"totalTickets"`
	AvailableTickets int `json:"availableTickets"`
}

// GetCountryStats merges per-country ticket counts over the full
// country list, so countries with no inventory still appear with zeros.
func (r *TicketRepo) GetCountryStats(ctx context.Context) ([]CountryStats, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT c.code, c.name, c.flag, c.created_at,
			COALESCE(COUNT(t.id), 0),
			COALESCE(SUM(t.status = 'available'), 0)
		 FROM countries c
		 LEFT JOIN ticket_batches b ON b.country_code = c.code
		 LEFT JOIN tickets t ON t.batch_id = b.id
		 GROUP BY c.code ORDER BY c.name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []CountryStats{}
	for rows.Next() {
		var cs CountryStats
		if err := rows.Scan(&cs.Code, &cs.Name, &cs.Flag, &cs.CreatedAt,
			&cs.TotalTickets, &cs.AvailableTickets); err != nil {
			return nil, err
		}
		out = append(out, cs)
	}
	return out, rows.Err()
}

// ClearLapsedLocks releases locked_until on locked tickets whose lock
// has passed without a live pending booking. The expiry worker calls
// this after sweeping overdue bookings.
func (r *TicketRepo) ClearLapsedLocks(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tickets SET status = 'available', locked_until = NULL
		 WHERE status = 'locked' AND locked_until IS NOT NULL AND locked_until <= ?
		 AND id NOT IN (SELECT ticket_id FROM bookings WHERE status = 'pending')`,
		now.UTC())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
