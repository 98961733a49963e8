package handler

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/bdticketpro/backoffice/internal/auth"
	"github.com/bdticketpro/backoffice/internal/middleware"
	"github.com/bdticketpro/backoffice/internal/repository"
)

// publicSettings may be read by any authenticated user; everything else
// requires the system_settings capability.
var publicSettings = map[string]bool{
	"company_name":     true,
	"default_currency": true,
	"timezone":         true,
	"language":         true,
	"booking_timeout":  true,
}

// validSettingKeys is the whitelist for single-key updates.
var validSettingKeys = map[string]bool{
	"company_name":        true,
	"company_email":       true,
	"company_phone":       true,
	"company_address":     true,
	"default_currency":    true,
	"timezone":            true,
	"language":            true,
	"auto_backup":         true,
	"email_notifications": true,
	"sms_notifications":   true,
	"booking_timeout":     true,
}

// SettingsHandler serves system settings, the activity log, data export
// and the operational endpoints (system info, backup).
type SettingsHandler struct {
	Settings  *repository.SettingsRepo
	Activity  *repository.ActivityRepo
	Log       *logrus.Logger
	StartedAt time.Time
	BackupDir string
}

// NewSettingsHandler constructs a SettingsHandler.
func NewSettingsHandler(settings *repository.SettingsRepo, activity *repository.ActivityRepo,
	log *logrus.Logger) *SettingsHandler {
	return &SettingsHandler{
		Settings:  settings,
		Activity:  activity,
		Log:       log,
		StartedAt: time.Now(),
		BackupDir: "backups",
	}
}

func isSettingsAdmin(c echo.Context) bool {
	user := middleware.CurrentUser(c)
	return user != nil && auth.HasPermission(user.Role, auth.PermSystemSettings)
}

// GetAll handles GET /api/settings. Non-admins receive only the public
// company subset.
func (h *SettingsHandler) GetAll(c echo.Context) error {
	all, err := h.Settings.GetAll(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
	if !isSettingsAdmin(c) {
		filtered := map[string]string{}
		for k, v := range all {
			if publicSettings[k] {
				filtered[k] = v
			}
		}
		all = filtered
	}
	return respond(c, http.StatusOK, "Settings retrieved successfully", echo.Map{"settings": all})
}

// GetKey handles GET /api/settings/:key.
func (h *SettingsHandler) GetKey(c echo.Context) error {
	key := c.Param("key")
	if !publicSettings[key] && !isSettingsAdmin(c) {
		return fail(c, http.StatusForbidden, "Access denied")
	}
	value, err := h.Settings.Get(c.Request().Context(), key)
	if err == repository.ErrNotFound {
		return fail(c, http.StatusNotFound, "Setting not found")
	}
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
	return respond(c, http.StatusOK, "Setting retrieved successfully", echo.Map{
		"key": key, "value": value,
	})
}

// UpdateBatch handles PUT /api/settings, writing all supplied keys in
// one transaction.
func (h *SettingsHandler) UpdateBatch(c echo.Context) error {
	var body map[string]any
	if err := c.Bind(&body); err != nil || len(body) == 0 {
		return failValidation(c, "Validation error", echo.Map{"body": "settings object is required"})
	}

	values := map[string]string{}
	for k, v := range body {
		if !validSettingKeys[k] {
			return failValidation(c, "Validation error", echo.Map{k: "Invalid setting key"})
		}
		values[k] = fmt.Sprint(v)
	}
	if err := h.Settings.SetBatch(c.Request().Context(), values); err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	user := middleware.CurrentUser(c)
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	logActivity(c, h.Activity, h.Log, user.ID, "update_settings", "settings", "", map[string]any{
		"keys": strings.Join(keys, ","),
	})
	return respond(c, http.StatusOK, "Settings updated successfully", nil)
}

// UpdateKey handles PUT /api/settings/:key against the key whitelist.
func (h *SettingsHandler) UpdateKey(c echo.Context) error {
	key := c.Param("key")
	if !validSettingKeys[key] {
		return fail(c, http.StatusBadRequest, "Invalid setting key")
	}
	var body struct {
		Value any `json:"value"`
	}
	if err := c.Bind(&body); err != nil || body.Value == nil {
		return fail(c, http.StatusBadRequest, "Value is required")
	}

	if err := h.Settings.Set(c.Request().Context(), key, fmt.Sprint(body.Value)); err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	user := middleware.CurrentUser(c)
	logActivity(c, h.Activity, h.Log, user.ID, "update_setting", "settings", key, nil)
	return respond(c, http.StatusOK, "Setting updated successfully", nil)
}

// settingsCSV renders the settings map as a key,value CSV with a
// header row, keys sorted for stable output.
func settingsCSV(settings map[string]string) ([]byte, error) {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"key", "value"}); err != nil {
		return nil, err
	}
	for _, k := range keys {
		if err := w.Write([]string{k, settings[k]}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ExportData handles GET /api/settings/export/data in JSON (default)
// or CSV via ?format=csv, served as an attachment.
func (h *SettingsHandler) ExportData(c echo.Context) error {
	ctx := c.Request().Context()
	settings, err := h.Settings.GetAll(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	user := middleware.CurrentUser(c)
	logActivity(c, h.Activity, h.Log, user.ID, "export_data", "settings", "", map[string]any{
		"format": c.QueryParam("format"),
	})

	if c.QueryParam("format") == "csv" {
		out, err := settingsCSV(settings)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "Internal server error")
		}
		c.Response().Header().Set(echo.HeaderContentDisposition,
			`attachment; filename="bd-ticketpro-export.csv"`)
		return c.Blob(http.StatusOK, "text/csv", out)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition,
		`attachment; filename="bd-ticketpro-export.json"`)
	return c.JSON(http.StatusOK, echo.Map{
		"exported_at": time.Now().UTC().Format(time.RFC3339),
		"exported_by": user.Name,
		"data":        echo.Map{"settings": settings},
	})
}

// ActivityLogs handles GET /api/settings/logs/activity with optional
// userId and limit query parameters.
func (h *SettingsHandler) ActivityLogs(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	logs, err := h.Activity.ListRecent(c.Request().Context(), c.QueryParam("userId"), limit)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
	return respond(c, http.StatusOK, "Activity logs retrieved successfully", echo.Map{
		"logs":  logs,
		"total": len(logs),
	})
}

// SystemInfo handles GET /api/settings/system-info.
func (h *SettingsHandler) SystemInfo(c echo.Context) error {
	counts, err := h.Settings.Counts(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return respond(c, http.StatusOK, "System information retrieved successfully", echo.Map{
		"version":      "1.0.0",
		"uptime":       time.Since(h.StartedAt).Round(time.Second).String(),
		"go_version":   runtime.Version(),
		"goroutines":   runtime.NumGoroutine(),
		"memory_alloc": mem.Alloc,
		"counts":       counts,
		"last_backup":  h.lastBackupTime(),
	})
}

// lastBackupTime returns the modification time of the newest backup
// file, or "never".
func (h *SettingsHandler) lastBackupTime() string {
	entries, err := os.ReadDir(h.BackupDir)
	if err != nil {
		return "never"
	}
	var latest time.Time
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latest) {
			latest = info.ModTime()
		}
	}
	if latest.IsZero() {
		return "never"
	}
	return latest.UTC().Format(time.RFC3339)
}

// Backup handles POST /api/settings/backup. It writes a timestamped
// JSON snapshot of the settings and entity counts under the backup
// directory and returns the path and size.
func (h *SettingsHandler) Backup(c echo.Context) error {
	ctx := c.Request().Context()
	settings, err := h.Settings.GetAll(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}
	counts, err := h.Settings.Counts(ctx)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Internal server error")
	}

	if err := os.MkdirAll(h.BackupDir, 0o755); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to create backup")
	}
	snapshot, err := json.MarshalIndent(echo.Map{
		"created_at": time.Now().UTC().Format(time.RFC3339),
		"settings":   settings,
		"counts":     counts,
	}, "", "  ")
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to create backup")
	}

	name := fmt.Sprintf("backup-%s.json", time.Now().UTC().Format("2006-01-02T15-04-05"))
	path := filepath.Join(h.BackupDir, name)
	if err := os.WriteFile(path, snapshot, 0o644); err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to create backup")
	}

	user := middleware.CurrentUser(c)
	logActivity(c, h.Activity, h.Log, user.ID, "create_backup", "system", "", map[string]any{
		"file": name,
	})
	return respond(c, http.StatusOK, "Backup created successfully", echo.Map{
		"file": path,
		"size": len(snapshot),
	})
}
