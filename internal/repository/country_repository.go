package repository

import (
	"context"
	"database/sql"

	"github.com/bdticketpro/backoffice/internal/model"
)

// CountryRepo reads the seeded country reference table.
type CountryRepo struct {
	db *sql.DB
}

// NewCountryRepo returns a CountryRepo bound to the given database.
func NewCountryRepo(db *sql.DB) *CountryRepo { return &CountryRepo{db: db} }

// List returns all countries ordered by name.
func (r *CountryRepo) List(ctx context.Context) ([]model.Country, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT code, name, flag, created_at FROM countries ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Country{}
	for rows.Next() {
		var c model.Country
		if err := rows.Scan(&c.Code, &c.Name, &c.Flag, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Get fetches a country by its code.
func (r *CountryRepo) Get(ctx context.Context, code string) (*model.Country, error) {
	var c model.Country
	err := r.db.QueryRowContext(ctx,
		`SELECT code, name, flag, created_at FROM countries WHERE code = ?`, code).
		Scan(&c.Code, &c.Name, &c.Flag, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
