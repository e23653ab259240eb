package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/vanminhgroup/qlts/internal/model"
)

func mustOffice(t *testing.T, db *sql.DB, code, label string) *model.Office {
	t.Helper()
	o, err := CreateOffice(context.Background(), db, &model.Office{Code: code, Label: label})
	require.NoError(t, err)
	return o
}

func mustAccount(t *testing.T, db *sql.DB, phone string) *model.Account {
	t.Helper()
	a, err := CreateAccount(context.Background(), db, &model.Account{
		Phone:        phone,
		Name:         "Account " + phone,
		PasswordHash: "hash",
		Role:         model.RoleUser,
		Active:       true,
	})
	require.NoError(t, err)
	return a
}

func mustAsset(t *testing.T, db *sql.DB, code string, office *model.Office, qty int) *model.Asset {
	t.Helper()
	a, err := CreateAsset(context.Background(), db, &model.Asset{
		Code:               code,
		Name:               "Asset " + code,
		Quantity:           qty,
		Price:              decimal.RequireFromString("1500000"),
		ManagementOfficeID: &office.ID,
		AssetLocationID:    &office.ID,
	})
	require.NoError(t, err)
	return a
}

// inventoryQuantity returns the ledger quantity of an asset at an office, or 0
// when there is no row.
func inventoryQuantity(t *testing.T, db DBTX, assetID, officeID string) int {
	t.Helper()
	var qty int
	err := db.QueryRowContext(context.Background(),
		`SELECT quantity FROM asset_inventory WHERE asset_id = ? AND office_id = ?`,
		assetID, officeID,
	).Scan(&qty)
	if err == sql.ErrNoRows {
		return 0
	}
	require.NoError(t, err)
	return qty
}
