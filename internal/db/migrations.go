package db

import (
	"database/sql"
	"fmt"
)

// migrations is a list of SQL statements applied in order after schema creation.
// Each migration must be idempotent. Append new migrations at the end.
var migrations = []string{
	// Migration 1: inventory lookups by office for the per-office stock views.
	`CREATE INDEX IF NOT EXISTS idx_asset_inventory_office
	     ON asset_inventory(office_id)`,
	// Migration 2: log filters always combine type and status.
	`CREATE INDEX IF NOT EXISTS idx_transfer_logs_type_status
	     ON transfer_logs(transfer_type, status)`,
}

// Migrate creates the schema and runs the migrations.
func Migrate(db *sql.DB) error {
	if err := EnsureSchema(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	for i, m := range migrations {
		if _, err := db.Exec(m); err != nil {
			return fmt.Errorf("running migration %d: %w", i+1, err)
		}
	}

	return nil
}
