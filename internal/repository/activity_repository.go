package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/bdticketpro/backoffice/internal/model"
)

// ActivityRepo appends and reads the audit trail. Log failures are
// reported but callers treat them as non-fatal; an audit miss must not
// fail the business operation it describes.
type ActivityRepo struct {
	db *sql.DB
}

// NewActivityRepo returns an ActivityRepo bound to the given database.
func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{db: db} }

// Insert appends one activity log entry.
func (r *ActivityRepo) Insert(ctx context.Context, l *model.ActivityLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO activity_logs (id, user_id, action, entity_type, entity_id, details, ip_address, user_agent)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.UserID, l.Action, l.EntityType, l.EntityID, l.Details, l.IPAddress, l.UserAgent)
	return err
}

// ListRecent returns the newest entries, optionally filtered to one
// user.
func (r *ActivityRepo) ListRecent(ctx context.Context, userID string, limit int) ([]model.ActivityLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	q := `SELECT id, user_id, action, entity_type, entity_id, details, ip_address, user_agent, created_at
	      FROM activity_logs`
	args := []any{}
	if userID != "" {
		q += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	q += ` ORDER BY created_at DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ActivityLog{}
	for rows.Next() {
		var l model.ActivityLog
		var entityID, details, ip, ua sql.NullString
		if err := rows.Scan(&l.ID, &l.UserID, &l.Action, &l.EntityType,
			&entityID, &details, &ip, &ua, &l.CreatedAt); err != nil {
			return nil, err
		}
		if entityID.Valid {
			l.EntityID = &entityID.String
		}
		if details.Valid {
			l.Details = &details.String
		}
		if ip.Valid {
			l.IPAddress = &ip.String
		}
		if ua.Valid {
			l.UserAgent = &ua.String
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
