package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vanminhgroup/qlts/internal/model"
)

const assetSelect = `SELECT a.id, a.code, a.quantity, a.unit_id, a.name, a.model_or_series, a.asset_type_id,
	       a.date_of_purchase, a.warranty_months, a.expiration_date, a.price, a.depreciation,
	       a.supplier, a.supplier_address, a.supplier_phone, a.asset_location_id,
	       a.management_office_id, a.description, a.extra, a.created_at, a.last_updated,
	       COALESCE(u.label, ''), COALESCE(t.label, ''), COALESCE(l.label, ''),
	       COALESCE(m.label, ''), COALESCE(m.code, '')
	FROM assets a
	LEFT JOIN units u ON u.id = a.unit_id
	LEFT JOIN asset_types t ON t.id = a.asset_type_id
	LEFT JOIN offices l ON l.id = a.asset_location_id
	LEFT JOIN offices m ON m.id = a.management_office_id`

func scanAsset(s rowScanner) (*model.Asset, error) {
	a := &model.Asset{}
	err := s.Scan(&a.ID, &a.Code, &a.Quantity, &a.UnitID, &a.Name, &a.ModelOrSeries, &a.AssetTypeID,
		&a.DateOfPurchase, &a.WarrantyMonths, &a.ExpirationDate, &a.Price, &a.Depreciation,
		&a.Supplier, &a.SupplierAddress, &a.SupplierPhone, &a.AssetLocationID,
		&a.ManagementOfficeID, &a.Description, &a.Extra, &a.CreatedAt, &a.LastUpdated,
		&a.UnitLabel, &a.AssetTypeLabel, &a.AssetLocationLabel,
		&a.ManagementOfficeLabel, &a.ManagementOfficeCode)
	if err != nil {
		return nil, err
	}
	return a, nil
}

const assetInsert = `INSERT INTO assets (id, code, quantity, unit_id, name, model_or_series, asset_type_id,
	        date_of_purchase, warranty_months, expiration_date, price, depreciation,
	        supplier, supplier_address, supplier_phone, asset_location_id,
	        management_office_id, description, extra, created_at, last_updated)
	 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func assetArgs(id string, a *model.Asset, at time.Time) []any {
	return []any{
		id, a.Code, a.Quantity, a.UnitID, a.Name, a.ModelOrSeries, a.AssetTypeID,
		a.DateOfPurchase, a.WarrantyMonths, a.ExpirationDate, a.Price, a.Depreciation,
		a.Supplier, a.SupplierAddress, a.SupplierPhone, a.AssetLocationID,
		a.ManagementOfficeID, a.Description, a.Extra, at, at,
	}
}

// CreateAsset creates a new asset. The managing office's inventory row is
// seeded with the initial quantity. A second asset with the same code at the
// same managing office yields ErrConflict.
func CreateAsset(ctx context.Context, db DBTX, a *model.Asset) (*model.Asset, error) {
	id := NewID()
	at := now()
	if _, err := db.ExecContext(ctx, assetInsert, assetArgs(id, a, at)...); err != nil {
		return nil, conflictOr(err, "creating asset")
	}
	if a.ManagementOfficeID != nil && a.Quantity > 0 {
		if _, _, err := AdjustInventory(ctx, db, id, *a.ManagementOfficeID, a.Quantity, at); err != nil {
			return nil, fmt.Errorf("creating asset: %w", err)
		}
	}
	return GetAsset(ctx, db, id)
}

// GetAsset returns an asset by ID.
func GetAsset(ctx context.Context, db DBTX, id string) (*model.Asset, error) {
	a, err := scanAsset(db.QueryRowContext(ctx, assetSelect+` WHERE a.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting asset: %w", err)
	}
	return a, nil
}

// FindOfficeAsset returns the asset with the given code managed by officeID.
func FindOfficeAsset(ctx context.Context, db DBTX, officeID, code string) (*model.Asset, error) {
	a, err := scanAsset(db.QueryRowContext(ctx,
		assetSelect+` WHERE a.management_office_id = ? AND a.code = ?`, officeID, code,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding office asset: %w", err)
	}
	return a, nil
}

// AssetFilter selects assets for ListAssets. Code and Name match substrings.
type AssetFilter struct {
	Code               string
	Name               string
	ManagementOfficeID string
	Page               int
	Limit              int
}

// ListAssets returns one page of assets, most recently updated first, and the
// total number of matching assets.
func ListAssets(ctx context.Context, db DBTX, f AssetFilter) ([]model.Asset, int, error) {
	where := ` WHERE 1=1`
	var args []any
	if f.Code != "" {
		where += ` AND a.code LIKE ?`
		args = append(args, "%"+f.Code+"%")
	}
	if f.Name != "" {
		where += ` AND a.name LIKE ?`
		args = append(args, "%"+f.Name+"%")
	}
	if f.ManagementOfficeID != "" {
		where += ` AND a.management_office_id = ?`
		args = append(args, f.ManagementOfficeID)
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM assets a`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting assets: %w", err)
	}

	page, limit := Page(f.Page, f.Limit)
	query := assetSelect + where + ` ORDER BY a.last_updated DESC, a.id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, (page-1)*limit)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing assets: %w", err)
	}
	defer rows.Close()

	var assets []model.Asset
	for rows.Next() {
		a, err := scanAsset(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning asset: %w", err)
		}
		assets = append(assets, *a)
	}
	return assets, total, rows.Err()
}

// UpdateAsset replaces the catalog fields of an asset. Quantity and managing
// office are not touched; they change only through transfers.
func UpdateAsset(ctx context.Context, db DBTX, id string, a *model.Asset) (*model.Asset, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE assets SET code = ?, unit_id = ?, name = ?, model_or_series = ?, asset_type_id = ?,
		        date_of_purchase = ?, warranty_months = ?, expiration_date = ?, price = ?,
		        depreciation = ?, supplier = ?, supplier_address = ?, supplier_phone = ?,
		        asset_location_id = ?, description = ?, extra = ?, last_updated = ?
		 WHERE id = ?`,
		a.Code, a.UnitID, a.Name, a.ModelOrSeries, a.AssetTypeID,
		a.DateOfPurchase, a.WarrantyMonths, a.ExpirationDate, a.Price,
		a.Depreciation, a.Supplier, a.SupplierAddress, a.SupplierPhone,
		a.AssetLocationID, a.Description, a.Extra, now(), id,
	)
	if err != nil {
		return nil, conflictOr(err, "updating asset")
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("updating asset: %w", ErrNotFound)
	}
	return GetAsset(ctx, db, id)
}

// DeleteAssets deletes the given assets and their inventory rows. Transfer
// logs are kept. Returns the number of assets deleted.
func DeleteAssets(ctx context.Context, db DBTX, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := db.ExecContext(ctx,
		`DELETE FROM assets WHERE id IN (`+placeholders(len(ids))+`)`, stringArgs(ids)...,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting assets: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting assets: %w", err)
	}
	return n, nil
}

// AssetTotals returns the number of assets per managing office.
func AssetTotals(ctx context.Context, db DBTX) ([]model.AssetTotal, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT a.management_office_id, COALESCE(o.label, ''), COUNT(*)
		 FROM assets a
		 LEFT JOIN offices o ON o.id = a.management_office_id
		 GROUP BY a.management_office_id
		 ORDER BY COUNT(*) DESC, o.label`,
	)
	if err != nil {
		return nil, fmt.Errorf("counting assets per office: %w", err)
	}
	defer rows.Close()

	var totals []model.AssetTotal
	for rows.Next() {
		var t model.AssetTotal
		if err := rows.Scan(&t.OfficeID, &t.OfficeLabel, &t.TotalAsset); err != nil {
			return nil, fmt.Errorf("scanning asset total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// DecrementAssetQuantity subtracts q from an asset's quantity if at least q is
// available. It reports false, leaving the row unchanged, when the asset is
// missing or holds less than q.
func DecrementAssetQuantity(ctx context.Context, db DBTX, id string, q int, at time.Time) (bool, error) {
	result, err := db.ExecContext(ctx,
		`UPDATE assets SET quantity = quantity - ?, last_updated = ?
		 WHERE id = ? AND quantity >= ?`,
		q, at, id, q,
	)
	if err != nil {
		return false, fmt.Errorf("decrementing asset quantity: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("decrementing asset quantity: %w", err)
	}
	return n == 1, nil
}

// IncrementAssetQuantity adds q to an asset's quantity.
func IncrementAssetQuantity(ctx context.Context, db DBTX, id string, q int, at time.Time) error {
	result, err := db.ExecContext(ctx,
		`UPDATE assets SET quantity = quantity + ?, last_updated = ? WHERE id = ?`,
		q, at, id,
	)
	if err != nil {
		return fmt.Errorf("incrementing asset quantity: %w", err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return fmt.Errorf("incrementing asset quantity: %w", ErrNotFound)
	}
	return nil
}

// UpsertOfficeAsset adds a.Quantity to the asset with a.Code managed by
// a.ManagementOfficeID, creating it from a when it does not exist yet. The
// unique index on (management_office_id, code) makes this a single atomic
// statement. It returns the asset's id and whether a new row was created.
func UpsertOfficeAsset(ctx context.Context, db DBTX, a *model.Asset, at time.Time) (string, bool, error) {
	if a.ManagementOfficeID == nil {
		return "", false, fmt.Errorf("upserting office asset: missing managing office")
	}

	newID := NewID()
	var id string
	err := db.QueryRowContext(ctx,
		assetInsert+`
		 ON CONFLICT (management_office_id, code) DO UPDATE
		 SET quantity = assets.quantity + excluded.quantity,
		     last_updated = excluded.last_updated
		 RETURNING id`,
		assetArgs(newID, a, at)...,
	).Scan(&id)
	if err != nil {
		return "", false, fmt.Errorf("upserting office asset: %w", err)
	}
	return id, id == newID, nil
}

// ImportAssets inserts spreadsheet rows. References are resolved by id, code
// or label; unknown units and asset types are created, unknown offices make
// the row fail. Rows whose code already exists at the managing office are
// skipped. Run it inside a transaction to make the import all-or-nothing.
func ImportAssets(ctx context.Context, db DBTX, rows []model.AssetImport) (*model.ImportResult, error) {
	res := &model.ImportResult{}
	units := map[string]*string{}
	types := map[string]*string{}

	for _, row := range rows {
		a := row.Asset

		if row.ManagementOffice == "" {
			res.Errors = append(res.Errors, model.ImportError{Line: row.Line, Message: "missing management office"})
			continue
		}
		office, err := FindOffice(ctx, db, row.ManagementOffice)
		if err != nil {
			return nil, err
		}
		if office == nil {
			res.Errors = append(res.Errors, model.ImportError{Line: row.Line, Message: "unknown management office " + row.ManagementOffice})
			continue
		}
		a.ManagementOfficeID = &office.ID
		a.AssetLocationID = &office.ID

		existing, err := FindOfficeAsset(ctx, db, office.ID, a.Code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			res.Skipped++
			continue
		}

		if row.AssetLocation != "" {
			loc, err := FindOffice(ctx, db, row.AssetLocation)
			if err != nil {
				return nil, err
			}
			if loc == nil {
				res.Errors = append(res.Errors, model.ImportError{Line: row.Line, Message: "unknown asset location " + row.AssetLocation})
				continue
			}
			a.AssetLocationID = &loc.ID
		}

		if a.UnitID, err = resolveLabel(ctx, db, units, row.Unit, findUnitID, createUnitID); err != nil {
			return nil, err
		}
		if a.AssetTypeID, err = resolveLabel(ctx, db, types, row.AssetType, findAssetTypeID, createAssetTypeID); err != nil {
			return nil, err
		}

		id := NewID()
		at := now()
		if _, err := db.ExecContext(ctx, assetInsert, assetArgs(id, &a, at)...); err != nil {
			if isUniqueViolation(err) {
				res.Skipped++
				continue
			}
			return nil, fmt.Errorf("importing asset on line %d: %w", row.Line, err)
		}
		if a.Quantity > 0 {
			if _, _, err := AdjustInventory(ctx, db, id, office.ID, a.Quantity, at); err != nil {
				return nil, fmt.Errorf("importing asset on line %d: %w", row.Line, err)
			}
		}
		res.Inserted++
	}

	return res, nil
}

func findUnitID(ctx context.Context, db DBTX, ref string) (string, error) {
	u, err := FindUnit(ctx, db, ref)
	if err != nil || u == nil {
		return "", err
	}
	return u.ID, nil
}

func findAssetTypeID(ctx context.Context, db DBTX, ref string) (string, error) {
	t, err := FindAssetType(ctx, db, ref)
	if err != nil || t == nil {
		return "", err
	}
	return t.ID, nil
}

func createUnitID(ctx context.Context, db DBTX, label string) (string, error) {
	u, err := CreateUnit(ctx, db, label)
	if err != nil {
		return "", err
	}
	return u.ID, nil
}

func createAssetTypeID(ctx context.Context, db DBTX, label string) (string, error) {
	t, err := CreateAssetType(ctx, db, label)
	if err != nil {
		return "", err
	}
	return t.ID, nil
}

type lookupFunc func(ctx context.Context, db DBTX, ref string) (string, error)

// resolveLabel maps a catalog reference to an id, creating the entry when it
// does not exist. Results are memoised in cache for the rest of the import.
func resolveLabel(ctx context.Context, db DBTX, cache map[string]*string, ref string, find, create lookupFunc) (*string, error) {
	if ref == "" {
		return nil, nil
	}
	if id, ok := cache[ref]; ok {
		return id, nil
	}
	id, err := find(ctx, db, ref)
	if err != nil {
		return nil, err
	}
	if id == "" {
		if id, err = create(ctx, db, ref); err != nil {
			return nil, err
		}
	}
	cache[ref] = &id
	return &id, nil
}
