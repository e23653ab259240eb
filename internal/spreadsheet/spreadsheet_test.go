package spreadsheet

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// workbook builds an .xlsx in memory with rows written from A1 down.
func workbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestParseAssets(t *testing.T) {
	purchased := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	buf := workbook(t,
		[]any{"code", "quantity", "unit", "name", "dateOfPurchase", "warranty", "expirationDate", "price", "addressNCC", "managementOffice", "seeMore"},
		[]any{"A1", 10, "Cái", "Bàn làm việc", purchased, "12 tháng", "2026-05-01", "2,500,000", "Hà Nội", "HN", "màu nâu"},
		[]any{"A2", "3", "Bộ", "Ghế", "", "", "", "", "", "HCM", ""},
		[]any{},
		[]any{"", "1", "", "Thiếu mã"},
		[]any{"A3", "abc", "", "Sai số lượng"},
		[]any{"A4", "-1", "", "Âm"},
	)

	rows, rowErrs, err := ParseAssets(buf)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Len(t, rowErrs, 3)

	a1 := rows[0]
	assert.Equal(t, 2, a1.Line)
	assert.Equal(t, "A1", a1.Asset.Code)
	assert.Equal(t, 10, a1.Asset.Quantity)
	assert.Equal(t, "Cái", a1.Unit)
	assert.Equal(t, "HN", a1.ManagementOffice)
	assert.Equal(t, 12, a1.Asset.WarrantyMonths)
	assert.True(t, a1.Asset.Price.Equal(decimal.NewFromInt(2500000)))
	assert.Equal(t, "Hà Nội", a1.Asset.SupplierAddress)
	require.NotNil(t, a1.Asset.DateOfPurchase)
	assert.Equal(t, "2024-05-01", a1.Asset.DateOfPurchase.Format("2006-01-02"))
	require.NotNil(t, a1.Asset.ExpirationDate)
	assert.Equal(t, 2026, a1.Asset.ExpirationDate.Year())
	assert.Equal(t, "màu nâu", a1.Asset.Extra["seeMore"])

	a2 := rows[1]
	assert.Equal(t, 3, a2.Line)
	assert.Equal(t, 3, a2.Asset.Quantity)
	assert.Nil(t, a2.Asset.DateOfPurchase)
	assert.True(t, a2.Asset.Price.IsZero())

	// Line 4 is blank and skipped silently.
	assert.Equal(t, 5, rowErrs[0].Line)
	assert.Contains(t, rowErrs[0].Message, "missing code")
	assert.Equal(t, 6, rowErrs[1].Line)
	assert.Equal(t, 7, rowErrs[2].Line)
}

func TestParseVehicles(t *testing.T) {
	buf := workbook(t,
		[]any{"carType", "bks", "team", "yearOfManufacture", "valuation", "insurancePeriodTNDS", "insuranceSeller4G"},
		[]any{"Toyota Vios", "29A-123.45", "Đội xe 1", "2019", "450000000", "15/08/2026", "Viettel"},
		[]any{"Ford Ranger", "", "Đội xe 2"},
		[]any{"Kia Morning", "30F-000.01", "", "", "", "not a date"},
	)

	rows, rowErrs, err := ParseVehicles(buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, rowErrs, 2)

	v := rows[0]
	assert.Equal(t, "29A-123.45", v.Vehicle.Plate)
	assert.Equal(t, "Đội xe 1", v.Team)
	require.NotNil(t, v.Vehicle.YearOfManufacture)
	assert.Equal(t, 2019, v.Vehicle.YearOfManufacture.Year())
	assert.True(t, v.Vehicle.Valuation.Equal(decimal.NewFromInt(450000000)))
	require.NotNil(t, v.Vehicle.LiabilityInsUntil)
	assert.Equal(t, time.August, v.Vehicle.LiabilityInsUntil.Month())
	assert.Equal(t, "Viettel", v.Vehicle.SIMSeller)

	assert.Equal(t, 3, rowErrs[0].Line)
	assert.Contains(t, rowErrs[0].Message, "missing bks")
	assert.Equal(t, 4, rowErrs[1].Line)
}

func TestParseEmpty(t *testing.T) {
	_, _, err := ParseAssets(workbook(t, []any{"code", "quantity"}))
	assert.ErrorIs(t, err, ErrEmpty)

	_, _, err = ParseAssets(bytes.NewBufferString("not a workbook"))
	assert.Error(t, err)
}

func TestParseHelpers(t *testing.T) {
	n, err := parseInt("1,200")
	require.NoError(t, err)
	assert.Equal(t, 1200, n)

	n, err = parseInt("4.0")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	_, err = parseInt("4.5")
	assert.Error(t, err)

	d, err := parseDate("45413")
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01", d.Format("2006-01-02"))

	d, err = parseDate("01/02/2025")
	require.NoError(t, err)
	assert.Equal(t, time.February, d.Month())

	m, err := parseMoney("1 500 000 ₫")
	require.NoError(t, err)
	assert.True(t, m.Equal(decimal.NewFromInt(1500000)))
}
