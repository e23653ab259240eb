package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vanminhgroup/qlts/internal/model"
)

// AdjustInventory adds delta (which may be negative) to the ledger row of an
// asset at an office, creating the row when it does not exist. It returns the
// new quantity and whether the row was created.
func AdjustInventory(ctx context.Context, db DBTX, assetID, officeID string, delta int, at time.Time) (int, bool, error) {
	var current int
	err := db.QueryRowContext(ctx,
		`SELECT quantity FROM asset_inventory WHERE asset_id = ? AND office_id = ?`,
		assetID, officeID,
	).Scan(&current)
	created := err == sql.ErrNoRows
	if err != nil && !created {
		return 0, false, fmt.Errorf("reading inventory: %w", err)
	}

	var qty int
	err = db.QueryRowContext(ctx,
		`INSERT INTO asset_inventory (asset_id, office_id, quantity, last_updated, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (asset_id, office_id) DO UPDATE
		 SET quantity = asset_inventory.quantity + excluded.quantity,
		     last_updated = excluded.last_updated
		 RETURNING quantity`,
		assetID, officeID, delta, at, at,
	).Scan(&qty)
	if err != nil {
		return 0, false, fmt.Errorf("adjusting inventory: %w", err)
	}
	return qty, created, nil
}

// ListAssetInventory returns the ledger rows of an asset with office details,
// ordered by office label.
func ListAssetInventory(ctx context.Context, db DBTX, assetID string) ([]model.Inventory, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT inv.asset_id, inv.office_id, inv.quantity, inv.last_updated,
		        COALESCE(o.code, ''), COALESCE(o.label, '')
		 FROM asset_inventory inv
		 LEFT JOIN offices o ON o.id = inv.office_id
		 WHERE inv.asset_id = ?
		 ORDER BY o.label, inv.office_id`, assetID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing asset inventory: %w", err)
	}
	defer rows.Close()

	var items []model.Inventory
	for rows.Next() {
		var inv model.Inventory
		if err := rows.Scan(&inv.AssetID, &inv.OfficeID, &inv.Quantity, &inv.LastUpdated,
			&inv.OfficeCode, &inv.OfficeLabel); err != nil {
			return nil, fmt.Errorf("scanning inventory: %w", err)
		}
		items = append(items, inv)
	}
	return items, rows.Err()
}
