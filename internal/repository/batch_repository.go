package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"

	"github.com/bdticketpro/backoffice/internal/model"
)

// BatchRepo manages ticket batches and the tickets created with them.
type BatchRepo struct {
	db *sql.DB
}

// NewBatchRepo returns a BatchRepo bound to the given database.
func NewBatchRepo(db *sql.DB) *BatchRepo { return &BatchRepo{db: db} }

// BatchFilter narrows ListWithStats. Zero values mean no filtering.
type BatchFilter struct {
	Country  string
	Airline  string // substring match, case-insensitive
	DateFrom string // inclusive, YYYY-MM-DD
	DateTo   string // inclusive
}

const batchColumns = `b.id, b.country_code, b.airline_name, b.flight_date, b.flight_time,
b.buying_price, b.quantity, b.agent_name, b.agent_contact, b.agent_address,
b.remarks, b.document_url, b.created_by, b.created_at`

func scanBatch(row interface{ Scan(...any) error }, b *model.TicketBatch, extra ...any) error {
	var contact, address, remarks, docURL sql.NullString
	dest := []any{&b.ID, &b.CountryCode, &b.AirlineName, &b.FlightDate, &b.FlightTime,
		&b.BuyingPrice, &b.Quantity, &b.AgentName, &contact, &address,
		&remarks, &docURL, &b.CreatedBy, &b.CreatedAt}
	dest = append(dest, extra...)
	if err := row.Scan(dest...); err != nil {
		return err
	}
	if contact.Valid {
		b.AgentContact = &contact.String
	}
	if address.Valid {
		b.AgentAddress = &address.String
	}
	if remarks.Valid {
		b.Remarks = &remarks.String
	}
	if docURL.Valid {
		b.DocumentURL = &docURL.String
	}
	return nil
}

// ListWithStats returns batches matching the filter, each annotated with
// per-status ticket counts, the total acquisition cost and the profit
// realized from sold tickets so far.
func (r *BatchRepo) ListWithStats(ctx context.Context, f BatchFilter) ([]model.BatchStats, error) {
	q := `SELECT ` + batchColumns + `,
		COALESCE(SUM(t.status = 'sold'), 0),
		COALESCE(SUM(t.status = 'locked'), 0),
		COALESCE(SUM(t.status = 'available'), 0),
		COALESCE(SUM(CASE WHEN t.status = 'sold' THEN t.selling_price - b.buying_price ELSE 0 END), 0)
	FROM ticket_batches b
	LEFT JOIN tickets t ON t.batch_id = b.id
	WHERE 1=1`
	args := []any{}
	if f.Country != "" {
		q += ` AND b.country_code = ?`
		args = append(args, f.Country)
	}
	if f.Airline != "" {
		q += ` AND LOWER(b.airline_name) LIKE ?`
		args = append(args, "%"+strings.ToLower(f.Airline)+"%")
	}
	if f.DateFrom != "" {
		q += ` AND b.flight_date >= ?`
		args = append(args, f.DateFrom)
	}
	if f.DateTo != "" {
		q += ` AND b.flight_date <= ?`
		args = append(args, f.DateTo)
	}
	q += ` GROUP BY b.id ORDER BY b.created_at DESC`

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.BatchStats{}
	for rows.Next() {
		var bs model.BatchStats
		if err := scanBatch(rows, &bs.TicketBatch, &bs.Sold, &bs.Locked, &bs.Available, &bs.Profit); err != nil {
			return nil, err
		}
		bs.TotalCost = bs.BuyingPrice * int64(bs.Quantity)
		out = append(out, bs)
	}
	return out, rows.Err()
}

// Get fetches a single batch by ID.
func (r *BatchRepo) Get(ctx context.Context, id string) (*model.TicketBatch, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+batchColumns+` FROM ticket_batches b WHERE b.id = ?`, id)
	var b model.TicketBatch
	err := scanBatch(row, &b)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// aircraftFor picks the airframe recorded on new tickets. The mapping
// follows what the agencies actually fly on these routes.
func aircraftFor(airline string) string {
	switch airline {
	case "Air Arabia":
		return "Airbus A320"
	case "Emirates":
		return "Boeing 777"
	case "Qatar Airways":
		return "Boeing 787"
	default:
		return "Airbus A321"
	}
}

// CreateWithTickets inserts the batch and its full complement of
// tickets in one transaction. Each ticket starts available with
// selling_price = floor(buying_price * 1.2) and a flight number built
// from the airline's IATA code. Returns the number of tickets created.
func (r *BatchRepo) CreateWithTickets(ctx context.Context, b *model.TicketBatch, airlineCode string) (int, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if airlineCode == "" {
		airlineCode = "XX"
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO ticket_batches (id, country_code, airline_name, flight_date, flight_time,
			buying_price, quantity, agent_name, agent_contact, agent_address, remarks, document_url, created_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.CountryCode, b.AirlineName, b.FlightDate, b.FlightTime,
		b.BuyingPrice, b.Quantity, b.AgentName, b.AgentContact, b.AgentAddress,
		b.Remarks, b.DocumentURL, b.CreatedBy)
	if err != nil {
		return 0, err
	}

	sellingPrice := model.SellingPriceFor(b.BuyingPrice)
	aircraft := aircraftFor(b.AirlineName)
	for i := 0; i < b.Quantity; i++ {
		flightNumber := fmt.Sprintf("%s %d", airlineCode, rand.Intn(900)+100)
		terminal := fmt.Sprintf("Terminal %d", rand.Intn(3)+1)
		_, err = tx.ExecContext(ctx,
			`INSERT INTO tickets (id, batch_id, flight_number, status, selling_price,
				aircraft, terminal, arrival_time, duration, available_seats, total_seats)
			 VALUES (?, ?, ?, 'available', ?, ?, ?, '18:45', '4h 15m', 1, 1)`,
			uuid.NewString(), b.ID, flightNumber, sellingPrice, aircraft, terminal)
		if err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return b.Quantity, nil
}

// Update rewrites the supplier and note fields of a batch. Flight and
// pricing fields are immutable once tickets exist.
func (r *BatchRepo) Update(ctx context.Context, id, agentName string, agentContact, agentAddress, remarks, documentURL *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE ticket_batches SET agent_name = ?, agent_contact = ?, agent_address = ?, remarks = ?, document_url = ?
		 WHERE id = ?`,
		agentName, agentContact, agentAddress, remarks, documentURL, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, getErr := r.Get(ctx, id); getErr != nil {
			return getErr
		}
	}
	return nil
}

// Delete removes a batch with its tickets and their booking records in
// one transaction. Batches with any sold ticket are refused.
func (r *BatchRepo) Delete(ctx context.Context, id string) error {
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

	var total, sold int
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(status = 'sold'), 0) FROM tickets WHERE batch_id = ?`, id).
		Scan(&total, &sold)
	if err != nil {
		return err
	}
	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM ticket_batches WHERE id = ?`, id).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return ErrNotFound
	}
	if sold > 0 {
		return ErrConflict
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM bookings WHERE ticket_id IN (SELECT id FROM tickets WHERE batch_id = ?)`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tickets WHERE batch_id = ?`, id); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM ticket_batches WHERE id = ?`, id); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
