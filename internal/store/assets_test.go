package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanminhgroup/qlts/internal/db"
	"github.com/vanminhgroup/qlts/internal/model"
)

func TestCreateAndGetAsset(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	office := mustOffice(t, database, "HN", "Hà Nội")
	unit, err := CreateUnit(ctx, database, "Cái")
	require.NoError(t, err)

	created, err := CreateAsset(ctx, database, &model.Asset{
		Code:               "A1",
		Name:               "Bàn làm việc",
		Quantity:           10,
		UnitID:             &unit.ID,
		Price:              decimal.RequireFromString("2500000.50"),
		ManagementOfficeID: &office.ID,
		AssetLocationID:    &office.ID,
		Extra:              model.Extra{"color": "brown"},
	})
	require.NoError(t, err)
	assert.Equal(t, "A1", created.Code)
	assert.Equal(t, 10, created.Quantity)
	assert.True(t, created.Price.Equal(decimal.RequireFromString("2500000.5")))
	assert.Equal(t, "Cái", created.UnitLabel)
	assert.Equal(t, "Hà Nội", created.ManagementOfficeLabel)
	assert.Equal(t, "HN", created.ManagementOfficeCode)
	assert.Equal(t, "brown", created.Extra["color"])

	assert.Equal(t, 10, inventoryQuantity(t, database, created.ID, office.ID), "inventory is seeded with the initial quantity")

	_, err = CreateAsset(ctx, database, &model.Asset{Code: "A1", ManagementOfficeID: &office.ID})
	assert.ErrorIs(t, err, ErrConflict)

	missing, err := GetAsset(ctx, database, "missing")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListAssetsFiltersAndPages(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	hn := mustOffice(t, database, "HN", "Hà Nội")
	hcm := mustOffice(t, database, "HCM", "Hồ Chí Minh")
	for i := 0; i < 12; i++ {
		mustAsset(t, database, fmt.Sprintf("PC-%02d", i), hn, 1)
	}
	mustAsset(t, database, "CHAIR-01", hcm, 5)

	all, total, err := ListAssets(ctx, database, AssetFilter{})
	require.NoError(t, err)
	assert.Equal(t, 13, total)
	assert.Len(t, all, DefaultPageSize)

	second, _, err := ListAssets(ctx, database, AssetFilter{Page: 2, Limit: 10})
	require.NoError(t, err)
	assert.Len(t, second, 3)

	byCode, total, err := ListAssets(ctx, database, AssetFilter{Code: "CHAIR"})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, byCode, 1)
	assert.Equal(t, "CHAIR-01", byCode[0].Code)

	byOffice, total, err := ListAssets(ctx, database, AssetFilter{ManagementOfficeID: hn.ID, Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, 12, total)
	assert.Len(t, byOffice, 12)

	totals, err := AssetTotals(ctx, database)
	require.NoError(t, err)
	require.Len(t, totals, 2)
	assert.Equal(t, "Hà Nội", totals[0].OfficeLabel)
	assert.Equal(t, 12, totals[0].TotalAsset)
}

func TestUpdateAssetKeepsQuantity(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	office := mustOffice(t, database, "HN", "Hà Nội")
	a := mustAsset(t, database, "A1", office, 7)

	a.Name = "Renamed"
	a.Quantity = 999
	updated, err := UpdateAsset(ctx, database, a.ID, a)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Name)
	assert.Equal(t, 7, updated.Quantity)

	_, err = UpdateAsset(ctx, database, "missing", a)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDecrementAssetQuantityGuard(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	office := mustOffice(t, database, "HN", "Hà Nội")
	a := mustAsset(t, database, "A1", office, 5)

	ok, err := DecrementAssetQuantity(ctx, database, a.ID, 6, time.Now())
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = DecrementAssetQuantity(ctx, database, a.ID, 5, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)

	got, err := GetAsset(ctx, database, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Quantity)

	require.NoError(t, IncrementAssetQuantity(ctx, database, a.ID, 3, time.Now()))
	got, err = GetAsset(ctx, database, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.Quantity)

	assert.ErrorIs(t, IncrementAssetQuantity(ctx, database, "missing", 1, time.Now()), ErrNotFound)
}

func TestUpsertOfficeAsset(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	x := mustOffice(t, database, "X", "Office X")
	y := mustOffice(t, database, "Y", "Office Y")
	src := mustAsset(t, database, "A1", x, 10)

	clone := *src
	clone.Quantity = 4
	clone.ManagementOfficeID = &y.ID
	clone.AssetLocationID = &y.ID

	id, created, err := UpsertOfficeAsset(ctx, database, &clone, time.Now())
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, src.ID, id)

	clone.Quantity = 3
	id2, created, err := UpsertOfficeAsset(ctx, database, &clone, time.Now())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, id, id2)

	dest, err := FindOfficeAsset(ctx, database, y.ID, "A1")
	require.NoError(t, err)
	require.NotNil(t, dest)
	assert.Equal(t, 7, dest.Quantity)
	assert.Equal(t, src.Name, dest.Name)
}

func TestImportAssets(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	hn := mustOffice(t, database, "HN", "Hà Nội")
	mustAsset(t, database, "EXIST", hn, 1)

	rows := []model.AssetImport{
		{Line: 2, Asset: model.Asset{Code: "N1", Name: "Máy in", Quantity: 2}, Unit: "Cái", AssetType: "Thiết bị", ManagementOffice: "HN"},
		{Line: 3, Asset: model.Asset{Code: "N2", Name: "Ghế", Quantity: 0}, Unit: "Cái", ManagementOffice: "Hà Nội"},
		{Line: 4, Asset: model.Asset{Code: "EXIST", Name: "Dup"}, ManagementOffice: hn.ID},
		{Line: 5, Asset: model.Asset{Code: "N3"}, ManagementOffice: "Đà Nẵng"},
		{Line: 6, Asset: model.Asset{Code: "N4"}},
	}

	res, err := ImportAssets(ctx, database, rows)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Inserted)
	assert.Equal(t, 1, res.Skipped)
	require.Len(t, res.Errors, 2)
	assert.Equal(t, 5, res.Errors[0].Line)
	assert.Equal(t, 6, res.Errors[1].Line)

	units, err := ListUnits(ctx, database)
	require.NoError(t, err)
	assert.Len(t, units, 1, "unit labels are created once")

	n1, err := FindOfficeAsset(ctx, database, hn.ID, "N1")
	require.NoError(t, err)
	require.NotNil(t, n1)
	assert.Equal(t, "Cái", n1.UnitLabel)
	assert.Equal(t, "Thiết bị", n1.AssetTypeLabel)

	assert.Equal(t, 2, inventoryQuantity(t, database, n1.ID, hn.ID))
}

func TestDeleteAssetsCascadesInventory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	office := mustOffice(t, database, "HN", "Hà Nội")
	a := mustAsset(t, database, "A1", office, 3)

	n, err := DeleteAssets(ctx, database, []string{a.ID})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	inv, err := ListAssetInventory(ctx, database, a.ID)
	require.NoError(t, err)
	assert.Empty(t, inv)
}
