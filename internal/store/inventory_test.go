package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vanminhgroup/qlts/internal/db"
)

func TestAdjustInventory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	x := mustOffice(t, database, "X", "Office X")
	y := mustOffice(t, database, "Y", "Office Y")
	a := mustAsset(t, database, "A1", x, 0)

	qty, created, err := AdjustInventory(ctx, database, a.ID, y.ID, 4, time.Now())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, 4, qty)

	qty, created, err = AdjustInventory(ctx, database, a.ID, y.ID, -1, time.Now())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, 3, qty)

	// Ledger rows may go negative.
	qty, created, err = AdjustInventory(ctx, database, a.ID, x.ID, -2, time.Now())
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, -2, qty)

	rows, err := ListAssetInventory(ctx, database, a.ID)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Office X", rows[0].OfficeLabel)
	assert.Equal(t, -2, rows[0].Quantity)
	assert.Equal(t, "Y", rows[1].OfficeCode)
	assert.Equal(t, 3, rows[1].Quantity)

	assert.Equal(t, 0, inventoryQuantity(t, database, "missing", x.ID))
}
