package database

import (
	"fmt"

	"github.com/jmoiron/sqlx"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT NOT NULL UNIQUE,
		full_name TEXT NOT NULL DEFAULT '',
		password_hash TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS maintenance_requests (
		id SERIAL PRIMARY KEY,
		customer_name TEXT NOT NULL,
		contact_info TEXT NOT NULL,
		vehicle_info TEXT NOT NULL,
		vehicle_color TEXT,
		mileage INTEGER,
		description TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		is_urgent BOOLEAN NOT NULL DEFAULT FALSE,
		work_done TEXT,
		parts_used TEXT,
		checklist JSONB,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS invoices (
		id SERIAL PRIMARY KEY,
		request_id INTEGER NOT NULL,
		invoice_number TEXT NOT NULL UNIQUE,
		labor_description TEXT,
		labor_hours TEXT NOT NULL DEFAULT '',
		labor_rate TEXT NOT NULL DEFAULT '',
		labor_total TEXT NOT NULL DEFAULT '0.00',
		parts_details TEXT,
		parts_total TEXT NOT NULL DEFAULT '',
		misc_description TEXT,
		misc_total TEXT NOT NULL DEFAULT '0',
		subtotal TEXT NOT NULL DEFAULT '0.00',
		tax TEXT NOT NULL DEFAULT '0',
		total TEXT NOT NULL DEFAULT '0.00',
		notes TEXT,
		payment_status TEXT NOT NULL DEFAULT 'unpaid',
		payment_method TEXT,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_invoices_request_id ON invoices (request_id)`,
	`CREATE INDEX IF NOT EXISTS idx_requests_created_at ON maintenance_requests (created_at)`,
}

// Migrate applies the embedded schema. Statements are idempotent so running at
// every boot is safe. There is deliberately no FK from invoices to requests:
// deleting a request keeps its invoice for audit.
func Migrate(db *sqlx.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
	}
	return nil
}
