package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Asset is one office's holding of a logical asset. Several Asset rows may
// share a code, one per managing office.
type Asset struct {
	ID                 string          `json:"id"`
	Code               string          `json:"code"`
	Quantity           int             `json:"quantity"`
	UnitID             *string         `json:"unitId,omitempty"`
	Name               string          `json:"name"`
	ModelOrSeries      string          `json:"modelOrSeries,omitempty"`
	AssetTypeID        *string         `json:"assetTypeId,omitempty"`
	DateOfPurchase     *time.Time      `json:"dateOfPurchase,omitempty"`
	WarrantyMonths     int             `json:"warranty"`
	ExpirationDate     *time.Time      `json:"expirationDate,omitempty"`
	Price              decimal.Decimal `json:"price"`
	Depreciation       string          `json:"depreciation,omitempty"`
	Supplier           string          `json:"supplier,omitempty"`
	SupplierAddress    string          `json:"supplierAddress,omitempty"`
	SupplierPhone      string          `json:"supplierPhone,omitempty"`
	AssetLocationID    *string         `json:"assetLocationId,omitempty"`
	ManagementOfficeID *string         `json:"managementOfficeId,omitempty"`
	Description        string          `json:"description,omitempty"`
	Extra              Extra           `json:"extra"`
	CreatedAt          time.Time       `json:"createdAt"`
	LastUpdated        time.Time       `json:"lastUpdated"`

	// Joined fields (not always populated).
	UnitLabel             string `json:"unitLabel,omitempty"`
	AssetTypeLabel        string `json:"assetTypeLabel,omitempty"`
	AssetLocationLabel    string `json:"assetLocationLabel,omitempty"`
	ManagementOfficeLabel string `json:"managementOfficeLabel,omitempty"`
	ManagementOfficeCode  string `json:"managementOfficeCode,omitempty"`
}

// ManagedBy reports whether the asset's managing office is officeID.
func (a *Asset) ManagedBy(officeID string) bool {
	return a.ManagementOfficeID != nil && *a.ManagementOfficeID == officeID
}

// Extra holds free-form attributes attached to an asset.
type Extra map[string]any

// Value implements driver.Valuer.
func (e Extra) Value() (driver.Value, error) {
	if e == nil {
		return "{}", nil
	}
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encoding extra fields: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (e *Extra) Scan(src any) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*e = Extra{}
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return fmt.Errorf("unsupported extra fields type %T", src)
	}
	m := Extra{}
	if len(b) > 0 {
		if err := json.Unmarshal(b, &m); err != nil {
			return fmt.Errorf("decoding extra fields: %w", err)
		}
	}
	*e = m
	return nil
}

// AssetTotal is the number of asset rows an office manages.
type AssetTotal struct {
	OfficeID    *string `json:"officeId"`
	OfficeLabel string  `json:"officeLabel,omitempty"`
	TotalAsset  int     `json:"totalAsset"`
}

// AssetImport is an asset read from a spreadsheet row. References to other
// entities are given as written in the sheet: an id, a code or a label.
type AssetImport struct {
	Line             int
	Asset            Asset
	Unit             string
	AssetType        string
	AssetLocation    string
	ManagementOffice string
}

// ImportResult summarises a bulk import.
type ImportResult struct {
	Inserted int           `json:"inserted"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors,omitempty"`
}

// ImportError describes a spreadsheet row that could not be imported.
type ImportError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}
