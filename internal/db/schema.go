package db

import (
	"database/sql"
	"fmt"
)

// schema is the full database schema.
const schema = `
CREATE TABLE IF NOT EXISTS departments (
    id         TEXT PRIMARY KEY,
    code       TEXT NOT NULL DEFAULT '',
    label      TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS teams (
    id            TEXT PRIMARY KEY,
    code          TEXT NOT NULL DEFAULT '',
    label         TEXT NOT NULL UNIQUE,
    department_id TEXT REFERENCES departments(id),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS offices (
    id            TEXT PRIMARY KEY,
    code          TEXT NOT NULL DEFAULT '',
    label         TEXT NOT NULL UNIQUE,
    department_id TEXT REFERENCES departments(id),
    team_id       TEXT REFERENCES teams(id),
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS accounts (
    id            TEXT PRIMARY KEY,
    phone         TEXT NOT NULL,
    name          TEXT NOT NULL DEFAULT '',
    email         TEXT NOT NULL DEFAULT '',
    position      TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL DEFAULT 'user' CHECK (role IN ('admin', 'manager', 'user')),
    office_id     TEXT REFERENCES offices(id),
    active        INTEGER NOT NULL DEFAULT 1,
    token_version INTEGER NOT NULL DEFAULT 0,
    date_of_birth DATETIME,
    created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    deleted_at    DATETIME
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_accounts_phone_active
    ON accounts(phone) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS asset_types (
    id         TEXT PRIMARY KEY,
    label      TEXT NOT NULL UNIQUE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS units (
    id         TEXT PRIMARY KEY,
    label      TEXT NOT NULL UNIQUE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS assets (
    id                   TEXT PRIMARY KEY,
    code                 TEXT NOT NULL,
    quantity             INTEGER NOT NULL DEFAULT 0 CHECK (quantity >= 0),
    unit_id              TEXT REFERENCES units(id),
    name                 TEXT NOT NULL DEFAULT '',
    model_or_series      TEXT NOT NULL DEFAULT '',
    asset_type_id        TEXT REFERENCES asset_types(id),
    date_of_purchase     DATETIME,
    warranty_months      INTEGER NOT NULL DEFAULT 0,
    expiration_date      DATETIME,
    price                TEXT NOT NULL DEFAULT '0',
    depreciation         TEXT NOT NULL DEFAULT '',
    supplier             TEXT NOT NULL DEFAULT '',
    supplier_address     TEXT NOT NULL DEFAULT '',
    supplier_phone       TEXT NOT NULL DEFAULT '',
    asset_location_id    TEXT REFERENCES offices(id),
    management_office_id TEXT REFERENCES offices(id),
    description          TEXT NOT NULL DEFAULT '',
    extra                TEXT NOT NULL DEFAULT '{}',
    created_at           DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    last_updated         DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_assets_office_code
    ON assets(management_office_id, code);

CREATE TABLE IF NOT EXISTS asset_inventory (
    asset_id     TEXT NOT NULL REFERENCES assets(id) ON DELETE CASCADE,
    office_id    TEXT NOT NULL REFERENCES offices(id),
    quantity     INTEGER NOT NULL DEFAULT 0,
    last_updated DATETIME NOT NULL,
    created_at   DATETIME NOT NULL,
    PRIMARY KEY (asset_id, office_id)
);

CREATE TABLE IF NOT EXISTS transfer_logs (
    id             TEXT PRIMARY KEY,
    asset_id       TEXT NOT NULL,
    from_office_id TEXT NOT NULL REFERENCES offices(id),
    to_office_id   TEXT NOT NULL REFERENCES offices(id),
    quantity       INTEGER NOT NULL CHECK (quantity > 0),
    transfer_type  TEXT NOT NULL CHECK (transfer_type IN ('IMPORT', 'EXPORT')),
    status         TEXT NOT NULL DEFAULT 'COMPLETED' CHECK (status IN ('PENDING', 'COMPLETED', 'CANCELLED')),
    reason         TEXT NOT NULL CHECK (reason IN ('NEW_IMPORT', 'TRANSFER', 'RETURN', 'MAINTENANCE')),
    note           TEXT NOT NULL DEFAULT '',
    transfer_by    TEXT NOT NULL REFERENCES accounts(id),
    transfer_date  DATETIME NOT NULL,
    created_at     DATETIME NOT NULL,
    updated_at     DATETIME NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transfer_logs_date
    ON transfer_logs(transfer_date DESC);

CREATE TABLE IF NOT EXISTS vehicles (
    id                    TEXT PRIMARY KEY,
    car_type              TEXT NOT NULL DEFAULT '',
    plate                 TEXT NOT NULL UNIQUE,
    team_id               TEXT REFERENCES teams(id),
    year_of_manufacture   DATETIME,
    registration_period   DATETIME,
    registration_name     TEXT NOT NULL DEFAULT '',
    valuation             TEXT NOT NULL DEFAULT '0',
    liability_ins_until   DATETIME,
    liability_ins_seller  TEXT NOT NULL DEFAULT '',
    hull_ins_until        DATETIME,
    hull_ins_seller       TEXT NOT NULL DEFAULT '',
    gps_until             DATETIME,
    gps_description       TEXT NOT NULL DEFAULT '',
    sim_until             DATETIME,
    sim_seller            TEXT NOT NULL DEFAULT '',
    description           TEXT NOT NULL DEFAULT '',
    created_at            DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(db *sql.DB) error {
	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
