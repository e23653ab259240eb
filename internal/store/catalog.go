package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vanminhgroup/qlts/internal/model"
)

// createLabel inserts into a table of (id, label, created_at) rows.
func createLabel(ctx context.Context, db DBTX, table, label string) (string, error) {
	id := NewID()
	_, err := db.ExecContext(ctx,
		`INSERT INTO `+table+` (id, label, created_at) VALUES (?, ?, ?)`,
		id, label, now(),
	)
	if err != nil {
		return "", err
	}
	return id, nil
}

// CreateAssetType creates an asset type. Duplicate labels yield ErrConflict.
func CreateAssetType(ctx context.Context, db DBTX, label string) (*model.AssetType, error) {
	id, err := createLabel(ctx, db, "asset_types", label)
	if err != nil {
		return nil, conflictOr(err, "creating asset type")
	}
	return &model.AssetType{ID: id, Label: label, CreatedAt: now()}, nil
}

// ListAssetTypes returns all asset types ordered by label.
func ListAssetTypes(ctx context.Context, db DBTX) ([]model.AssetType, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, label, created_at FROM asset_types ORDER BY label`)
	if err != nil {
		return nil, fmt.Errorf("listing asset types: %w", err)
	}
	defer rows.Close()

	var types []model.AssetType
	for rows.Next() {
		var t model.AssetType
		if err := rows.Scan(&t.ID, &t.Label, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning asset type: %w", err)
		}
		types = append(types, t)
	}
	return types, rows.Err()
}

// FindAssetType returns the asset type whose id or label equals ref.
func FindAssetType(ctx context.Context, db DBTX, ref string) (*model.AssetType, error) {
	t := &model.AssetType{}
	err := db.QueryRowContext(ctx,
		`SELECT id, label, created_at FROM asset_types WHERE id = ? OR label = ? LIMIT 1`, ref, ref,
	).Scan(&t.ID, &t.Label, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding asset type: %w", err)
	}
	return t, nil
}

// CreateUnit creates a unit of measure. Duplicate labels yield ErrConflict.
func CreateUnit(ctx context.Context, db DBTX, label string) (*model.Unit, error) {
	id, err := createLabel(ctx, db, "units", label)
	if err != nil {
		return nil, conflictOr(err, "creating unit")
	}
	return &model.Unit{ID: id, Label: label, CreatedAt: now()}, nil
}

// ListUnits returns all units ordered by label.
func ListUnits(ctx context.Context, db DBTX) ([]model.Unit, error) {
	rows, err := db.QueryContext(ctx, `SELECT id, label, created_at FROM units ORDER BY label`)
	if err != nil {
		return nil, fmt.Errorf("listing units: %w", err)
	}
	defer rows.Close()

	var units []model.Unit
	for rows.Next() {
		var u model.Unit
		if err := rows.Scan(&u.ID, &u.Label, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning unit: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// FindUnit returns the unit whose id or label equals ref.
func FindUnit(ctx context.Context, db DBTX, ref string) (*model.Unit, error) {
	u := &model.Unit{}
	err := db.QueryRowContext(ctx,
		`SELECT id, label, created_at FROM units WHERE id = ? OR label = ? LIMIT 1`, ref, ref,
	).Scan(&u.ID, &u.Label, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding unit: %w", err)
	}
	return u, nil
}
