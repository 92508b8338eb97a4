package database

import (
	"context"
	"database/sql"
)

// Idempotent DDL executed at startup. Dates and times of day are DATE
// and TIME columns so the conflict query compares them natively; the
// (venue_id, booking_date) index serves both the conflict check and
// the sweeper scan.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		first_name VARCHAR(100) NOT NULL DEFAULT '',
		last_name VARCHAR(100) NOT NULL DEFAULT '',
		email VARCHAR(255) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		role VARCHAR(20) NOT NULL,
		club_id VARCHAR(64) NULL,
		reset_token VARCHAR(64) NULL,
		reset_token_expires_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_users_reset_token (reset_token)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL UNIQUE,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL,
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		CONSTRAINT fk_refresh_user FOREIGN KEY (user_id) REFERENCES users(id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS venues (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(255) NOT NULL,
		type VARCHAR(32) NOT NULL,
		capacity INT NOT NULL,
		location VARCHAR(255) NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS venue_bookings (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		venue_id BIGINT UNSIGNED NOT NULL,
		booked_by_email VARCHAR(255) NOT NULL,
		booked_by_name VARCHAR(255) NOT NULL,
		booking_date DATE NOT NULL,
		start_time TIME NOT NULL,
		end_time TIME NOT NULL,
		purpose VARCHAR(32) NOT NULL,
		event_name VARCHAR(255) NULL,
		booking_type VARCHAR(16) NOT NULL,
		status VARCHAR(16) NOT NULL DEFAULT 'CONFIRMED',
		created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		KEY idx_bookings_venue_date (venue_id, booking_date),
		KEY idx_bookings_email (booked_by_email),
		CONSTRAINT fk_booking_venue FOREIGN KEY (venue_id) REFERENCES venues(id)
	) ENGINE=InnoDB`,

	`CREATE TABLE IF NOT EXISTS schedules (
		id BIGINT UNSIGNED AUTO_INCREMENT PRIMARY KEY,
		teacher_name VARCHAR(255) NOT NULL,
		subject VARCHAR(255) NOT NULL,
		room_no VARCHAR(64) NOT NULL,
		day_of_week VARCHAR(16) NOT NULL,
		start_time TIME NOT NULL,
		end_time TIME NOT NULL,
		sitting_cabin VARCHAR(64) NULL,
		KEY idx_schedules_teacher (teacher_name, day_of_week)
	) ENGINE=InnoDB`,
}

// EnsureSchema creates any missing tables. Safe to run on every start.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}
