package spreadsheet

import (
	"io"

	"github.com/vanminhgroup/qlts/internal/model"
)

// Asset sheet columns.
const (
	colCode             = "code"
	colQuantity         = "quantity"
	colUnit             = "unit"
	colName             = "name"
	colModelOrSeries    = "modelOrSeries"
	colAssetType        = "assetType"
	colDateOfPurchase   = "dateOfPurchase"
	colWarranty         = "warranty"
	colExpirationDate   = "expirationDate"
	colPrice            = "price"
	colDepreciation     = "depreciation"
	colSupplier         = "supplier"
	colSupplierAddress  = "addressNCC"
	colSupplierPhone    = "phoneNCC"
	colAssetLocation    = "assetLocation"
	colManagementOffice = "managementOffice"
	colDescription      = "description"
)

var assetColumns = map[string]bool{
	colCode: true, colQuantity: true, colUnit: true, colName: true, colModelOrSeries: true,
	colAssetType: true, colDateOfPurchase: true, colWarranty: true, colExpirationDate: true,
	colPrice: true, colDepreciation: true, colSupplier: true, colSupplierAddress: true,
	colSupplierPhone: true, colAssetLocation: true, colManagementOffice: true, colDescription: true,
}

// ParseAssets reads asset rows. Rows with unreadable values are reported as
// import errors and left out; columns that are not asset fields end up in
// the asset's extra attributes.
func ParseAssets(r io.Reader) ([]model.AssetImport, []model.ImportError, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, nil, err
	}

	var rows []model.AssetImport
	var rowErrs []model.ImportError
	for _, rec := range records {
		row, err := assetFromRecord(rec)
		if err != nil {
			rowErrs = append(rowErrs, model.ImportError{Line: rec.line, Message: err.Error()})
			continue
		}
		rows = append(rows, row)
	}
	return rows, rowErrs, nil
}

func assetFromRecord(rec record) (model.AssetImport, error) {
	row := model.AssetImport{
		Line:             rec.line,
		Unit:             rec.get(colUnit),
		AssetType:        rec.get(colAssetType),
		AssetLocation:    rec.get(colAssetLocation),
		ManagementOffice: rec.get(colManagementOffice),
	}
	a := &row.Asset
	a.Code = rec.get(colCode)
	if a.Code == "" {
		return row, errMissing(colCode)
	}
	a.Name = rec.get(colName)
	a.ModelOrSeries = rec.get(colModelOrSeries)
	a.Depreciation = rec.get(colDepreciation)
	a.Supplier = rec.get(colSupplier)
	a.SupplierAddress = rec.get(colSupplierAddress)
	a.SupplierPhone = rec.get(colSupplierPhone)
	a.Description = rec.get(colDescription)

	var err error
	if a.Quantity, err = parseInt(rec.get(colQuantity)); err != nil {
		return row, err
	}
	if a.Quantity < 0 {
		return row, errNegative(colQuantity)
	}
	if a.WarrantyMonths, err = parseLeadingInt(rec.get(colWarranty)); err != nil {
		return row, err
	}
	if a.DateOfPurchase, err = parseDate(rec.get(colDateOfPurchase)); err != nil {
		return row, err
	}
	if a.ExpirationDate, err = parseDate(rec.get(colExpirationDate)); err != nil {
		return row, err
	}
	if a.Price, err = parseMoney(rec.get(colPrice)); err != nil {
		return row, err
	}

	a.Extra = model.Extra{}
	for key, value := range rec.values {
		if !assetColumns[key] && value != "" {
			a.Extra[key] = value
		}
	}
	return row, nil
}
