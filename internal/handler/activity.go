package handler

import (
	"encoding/json"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/bdticketpro/backoffice/internal/model"
	"github.com/bdticketpro/backoffice/internal/repository"
)

// logActivity appends an audit entry for the current request. Failures
// are logged and ignored; the audit trail never blocks the operation it
// records.
func logActivity(c echo.Context, repo *repository.ActivityRepo, log *logrus.Logger,
	userID, action, entityType string, entityID string, details map[string]any) {

	entry := model.ActivityLog{
		UserID:     userID,
		Action:     action,
		EntityType: entityType,
	}
	if entityID != "" {
		entry.EntityID = &entityID
	}
	if len(details) > 0 {
		if b, err := json.Marshal(details); err == nil {
			s := string(b)
			entry.Details = &s
		}
	}
	if ip := c.RealIP(); ip != "" {
		entry.IPAddress = &ip
	}
	if ua := c.Request().UserAgent(); ua != "" {
		entry.UserAgent = &ua
	}

	if err := repo.Insert(c.Request().Context(), &entry); err != nil {
		log.WithError(err).WithField("action", action).Warn("activity log insert failed")
	}
}
