package repository

import (
	"context"
	"database/sql"

	"github.com/bdticketpro/backoffice/internal/model"
)

// AirlineRepo reads the seeded airline reference table.
type AirlineRepo struct {
	db *sql.DB
}

// NewAirlineRepo returns an AirlineRepo bound to the given database.
func NewAirlineRepo(db *sql.DB) *AirlineRepo { return &AirlineRepo{db: db} }

// List returns all airlines ordered by name.
func (r *AirlineRepo) List(ctx context.Context) ([]model.Airline, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, code, created_at FROM airlines ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Airline{}
	for rows.Next() {
		var a model.Airline
		var code sql.NullString
		if err := rows.Scan(&a.ID, &a.Name, &code, &a.CreatedAt); err != nil {
			return nil, err
		}
		if code.Valid {
			a.Code = &code.String
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetByName fetches an airline by its exact name. Batch creation uses
// this to derive flight numbers from the IATA code.
func (r *AirlineRepo) GetByName(ctx context.Context, name string) (*model.Airline, error) {
	var a model.Airline
	var code sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, code, created_at FROM airlines WHERE name = ?`, name).
		Scan(&a.ID, &a.Name, &code, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if code.Valid {
		a.Code = &code.String
	}
	return &a, nil
}
