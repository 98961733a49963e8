package database

import (
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/bdticketpro/backoffice/internal/model"
	"github.com/bdticketpro/backoffice/internal/utils"
)

const createUsersSQL = `
CREATE TABLE IF NOT EXISTS users (
    id CHAR(36) PRIMARY KEY,
    username VARCHAR(64) NOT NULL UNIQUE,
    password_hash VARCHAR(128) NOT NULL,
    name VARCHAR(128) NOT NULL,
    email VARCHAR(128),
    phone VARCHAR(32),
    role ENUM('admin', 'manager', 'staff') NOT NULL,
    status ENUM('active', 'inactive') NOT NULL DEFAULT 'active',
    last_login DATETIME,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB;`

const createCountriesSQL = `
CREATE TABLE IF NOT EXISTS countries (
    code VARCHAR(8) PRIMARY KEY,
    name VARCHAR(128) NOT NULL,
    flag VARCHAR(16) NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
) ENGINE=InnoDB;`

const createAirlinesSQL = `
CREATE TABLE IF NOT EXISTS airlines (
    id CHAR(36) PRIMARY KEY,
    name VARCHAR(128) NOT NULL UNIQUE,
    code VARCHAR(8) UNIQUE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
) ENGINE=InnoDB;`

const createTicketBatchesSQL = `
CREATE TABLE IF NOT EXISTS ticket_batches (
    id CHAR(36) PRIMARY KEY,
    country_code VARCHAR(8) NOT NULL,
    airline_name VARCHAR(128) NOT NULL,
    flight_date VARCHAR(10) NOT NULL,
    flight_time VARCHAR(5) NOT NULL,
    buying_price BIGINT NOT NULL,
    quantity INT NOT NULL,
    agent_name VARCHAR(128) NOT NULL,
    agent_contact VARCHAR(64),
    agent_address VARCHAR(255),
    remarks TEXT,
    document_url VARCHAR(255),
    created_by CHAR(36) NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (country_code) REFERENCES countries(code),
    FOREIGN KEY (created_by) REFERENCES users(id)
) ENGINE=InnoDB;`

const createTicketsSQL = `
CREATE TABLE IF NOT EXISTS tickets (
    id CHAR(36) PRIMARY KEY,
    batch_id CHAR(36) NOT NULL,
    flight_number VARCHAR(16) NOT NULL,
    status ENUM('available', 'booked', 'locked', 'sold') NOT NULL DEFAULT 'available',
    selling_price BIGINT NOT NULL,
    aircraft VARCHAR(64),
    terminal VARCHAR(32),
    arrival_time VARCHAR(5),
    duration VARCHAR(16),
    available_seats INT NOT NULL DEFAULT 1,
    total_seats INT NOT NULL DEFAULT 1,
    locked_until DATETIME,
    sold_by CHAR(36),
    sold_at DATETIME,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    INDEX idx_tickets_batch_id (batch_id),
    INDEX idx_tickets_status (status),
    FOREIGN KEY (batch_id) REFERENCES ticket_batches(id),
    FOREIGN KEY (sold_by) REFERENCES users(id)
) ENGINE=InnoDB;`

const createBookingsSQL = `
CREATE TABLE IF NOT EXISTS bookings (
    id CHAR(36) PRIMARY KEY,
    ticket_id CHAR(36) NOT NULL,
    agent_name VARCHAR(128) NOT NULL,
    agent_phone VARCHAR(32),
    agent_email VARCHAR(128),
    passenger_name VARCHAR(128) NOT NULL,
    passenger_passport VARCHAR(32) NOT NULL,
    passenger_phone VARCHAR(32) NOT NULL,
    passenger_email VARCHAR(128),
    pax_count INT NOT NULL DEFAULT 1,
    selling_price BIGINT NOT NULL,
    payment_type ENUM('full', 'partial') NOT NULL,
    partial_amount BIGINT,
    payment_method VARCHAR(32) NOT NULL DEFAULT 'cash',
    payment_details TEXT,
    comments TEXT,
    status ENUM('pending', 'confirmed', 'cancelled', 'expired') NOT NULL DEFAULT 'pending',
    created_by CHAR(36) NOT NULL,
    confirmed_at DATETIME,
    expires_at DATETIME,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
    INDEX idx_bookings_ticket_id (ticket_id),
    INDEX idx_bookings_status (status),
    INDEX idx_bookings_created_by (created_by),
    INDEX idx_bookings_expires_at (expires_at),
    FOREIGN KEY (ticket_id) REFERENCES tickets(id),
    FOREIGN KEY (created_by) REFERENCES users(id)
) ENGINE=InnoDB;`

const createSystemSettingsSQL = `
CREATE TABLE IF NOT EXISTS system_settings (
    setting_key VARCHAR(64) PRIMARY KEY,
    setting_value TEXT NOT NULL,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB;`

const createActivityLogsSQL = `
CREATE TABLE IF NOT EXISTS activity_logs (
    id CHAR(36) PRIMARY KEY,
    user_id CHAR(36) NOT NULL,
    action VARCHAR(64) NOT NULL,
    entity_type VARCHAR(32) NOT NULL,
    entity_id CHAR(36),
    details TEXT,
    ip_address VARCHAR(45),
    user_agent VARCHAR(255),
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    INDEX idx_activity_logs_user_id (user_id),
    INDEX idx_activity_logs_created_at (created_at),
    FOREIGN KEY (user_id) REFERENCES users(id)
) ENGINE=InnoDB;`

// Migrate creates all tables if they do not exist. Order matters since
// later tables reference earlier ones.
func Migrate(db *sql.DB) error {
	stmts := []string{
		createUsersSQL,
		createCountriesSQL,
		createAirlinesSQL,
		createTicketBatchesSQL,
		createTicketsSQL,
		createBookingsSQL,
		createSystemSettingsSQL,
		createActivityLogsSQL,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

// Seed inserts the reference data and default accounts on first run.
// It is a no-op when the users table already has rows.
func Seed(db *sql.DB, bcryptCost int) error {
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	countries := [][3]string{
		{"KSA", "Saudi Arabia", "\U0001F1F8\U0001F1E6"},
		{"UAE", "United Arab Emirates", "\U0001F1E6\U0001F1EA"},
		{"QAT", "Qatar", "\U0001F1F6\U0001F1E6"},
		{"KWT", "Kuwait", "\U0001F1F0\U0001F1FC"},
		{"OMN", "Oman", "\U0001F1F4\U0001F1F2"},
		{"BHR", "Bahrain", "\U0001F1E7\U0001F1ED"},
		{"JOR", "Jordan", "\U0001F1EF\U0001F1F4"},
		{"LBN", "Lebanon", "\U0001F1F1\U0001F1E7"},
	}
	for _, c := range countries {
		if _, err := db.Exec(
			`INSERT INTO countries (code, name, flag) VALUES (?, ?, ?)`,
			c[0], c[1], c[2],
		); err != nil && !isDuplicate(err) {
			return err
		}
	}

	airlines := [][2]string{
		{"Air Arabia", "G9"},
		{"Emirates", "EK"},
		{"Qatar Airways", "QR"},
		{"Saudi Airlines", "SV"},
		{"Flydubai", "FZ"},
		{"Kuwait Airways", "KU"},
		{"Oman Air", "WY"},
		{"Gulf Air", "GF"},
	}
	for _, a := range airlines {
		if _, err := db.Exec(
			`INSERT INTO airlines (id, name, code) VALUES (?, ?, ?)`,
			uuid.NewString(), a[0], a[1],
		); err != nil && !isDuplicate(err) {
			return err
		}
	}

	defaultUsers := []struct {
		username, password, name, email, phone, role string
	}{
		{"admin", "admin123", "Admin User", "admin@bdticketpro.com", "+8801234567890", model.RoleAdmin},
		{"manager", "manager123", "Manager User", "manager@bdticketpro.com", "+8801234567891", model.RoleManager},
		{"staff", "staff123", "Staff User", "staff@bdticketpro.com", "+8801234567892", model.RoleStaff},
	}
	for _, u := range defaultUsers {
		hash, err := utils.HashPassword(u.password, bcryptCost)
		if err != nil {
			return err
		}
		if _, err := db.Exec(
			`INSERT INTO users (id, username, password_hash, name, email, phone, role, status)
			 VALUES (?, ?, ?, ?, ?, ?, ?, 'active')`,
			uuid.NewString(), u.username, hash, u.name, u.email, u.phone, u.role,
		); err != nil {
			return err
		}
	}

	settings := [][2]string{
		{"company_name", "BD TicketPro"},
		{"company_email", "info@bdticketpro.com"},
		{"company_phone", "+880-123-456-7890"},
		{"company_address", "Dhanmondi, Dhaka, Bangladesh"},
		{"default_currency", "BDT"},
		{"timezone", "Asia/Dhaka"},
		{"language", "en"},
		{"auto_backup", "true"},
		{"email_notifications", "true"},
		{"sms_notifications", "false"},
		{"booking_timeout", "24"},
	}
	for _, s := range settings {
		if _, err := db.Exec(
			`INSERT INTO system_settings (setting_key, setting_value) VALUES (?, ?)
			 ON DUPLICATE KEY UPDATE setting_value = setting_value`,
			s[0], s[1],
		); err != nil {
			return err
		}
	}
	return nil
}

func isDuplicate(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Duplicate entry")
}
