package repository

import (
	"context"
	"database/sql"
)

// SettingsRepo stores the system_settings key/value table.
type SettingsRepo struct {
	db *sql.DB
}

// NewSettingsRepo returns a SettingsRepo bound to the given database.
func NewSettingsRepo(db *sql.DB) *SettingsRepo { return &SettingsRepo{db: db} }

// GetAll returns every setting as a key/value map.
func (r *SettingsRepo) GetAll(ctx context.Context) (map[string]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT setting_key, setting_value FROM system_settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := map[string]string{}
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, rows.Err()
}

// Get returns one setting value.
func (r *SettingsRepo) Get(ctx context.Context, key string) (string, error) {
	var v string
	err := r.db.QueryRowContext(ctx,
		`SELECT setting_value FROM system_settings WHERE setting_key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", ErrNotFound
	}
	return v, err
}

// Set upserts a single setting.
func (r *SettingsRepo) Set(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO system_settings (setting_key, setting_value) VALUES (?, ?)
		 ON DUPLICATE KEY UPDATE setting_value = VALUES(setting_value)`, key, value)
	return err
}

// SetBatch upserts several settings in one transaction so a partial
// update can never be observed.
func (r *SettingsRepo) SetBatch(ctx context.Context, values map[string]string) error {
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
	for k, v := range values {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO system_settings (setting_key, setting_value) VALUES (?, ?)
			 ON DUPLICATE KEY UPDATE setting_value = VALUES(setting_value)`, k, v); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// EntityCounts holds table totals for the system-info and backup
// endpoints.
type EntityCounts struct {
	Users    int `json:"users"`
	Batches  int `json:"batches"`
	Tickets  int `json:"tickets"`
	Bookings int `json:"bookings"`
}

// Counts returns row totals for the main tables.
func (r *SettingsRepo) Counts(ctx context.Context) (*EntityCounts, error) {
	var c EntityCounts
	err := r.db.QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM ticket_batches),
			(SELECT COUNT(*) FROM tickets),
			(SELECT COUNT(*) FROM bookings)`).
		Scan(&c.Users, &c.Batches, &c.Tickets, &c.Bookings)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
