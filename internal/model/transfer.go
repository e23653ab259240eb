package model

import "time"

// TransferType is the direction of a stock movement.
type TransferType string

// Transfer types.
const (
	TransferImport TransferType = "IMPORT"
	TransferExport TransferType = "EXPORT"
)

// TransferStatus is the lifecycle state of a transfer log entry.
type TransferStatus string

// Transfer statuses. The engine only ever writes StatusCompleted.
const (
	StatusPending   TransferStatus = "PENDING"
	StatusCompleted TransferStatus = "COMPLETED"
	StatusCancelled TransferStatus = "CANCELLED"
)

// TransferReason explains why stock moved.
type TransferReason string

// Transfer reasons.
const (
	ReasonNewImport   TransferReason = "NEW_IMPORT"
	ReasonTransfer    TransferReason = "TRANSFER"
	ReasonReturn      TransferReason = "RETURN"
	ReasonMaintenance TransferReason = "MAINTENANCE"
)

// Valid reports whether t is a known transfer type.
func (t TransferType) Valid() bool {
	return t == TransferImport || t == TransferExport
}

// Label returns the display text shown to users.
func (t TransferType) Label() string {
	if t == TransferImport {
		return "Nhập kho"
	}
	return "Xuất kho"
}

// Valid reports whether s is a known status.
func (s TransferStatus) Valid() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Label returns the display text shown to users.
func (s TransferStatus) Label() string {
	switch s {
	case StatusPending:
		return "Đang xử lý"
	case StatusCompleted:
		return "Hoàn thành"
	default:
		return "Đã hủy"
	}
}

// Valid reports whether r is a known reason.
func (r TransferReason) Valid() bool {
	switch r {
	case ReasonNewImport, ReasonTransfer, ReasonReturn, ReasonMaintenance:
		return true
	}
	return false
}

// Label returns the display text shown to users.
func (r TransferReason) Label() string {
	switch r {
	case ReasonNewImport:
		return "Nhập mới"
	case ReasonTransfer:
		return "Điều chuyển"
	case ReasonReturn:
		return "Trả về"
	default:
		return "Bảo trì"
	}
}

// TransferLog is an immutable record of one completed stock movement.
type TransferLog struct {
	ID           string         `json:"id"`
	AssetID      string         `json:"assetId"`
	FromOfficeID string         `json:"fromOffice"`
	ToOfficeID   string         `json:"toOffice"`
	Quantity     int            `json:"quantity"`
	TransferType TransferType   `json:"transferType"`
	Status       TransferStatus `json:"status"`
	Reason       TransferReason `json:"reason"`
	Note         string         `json:"note,omitempty"`
	TransferBy   string         `json:"transferBy"`
	TransferDate time.Time      `json:"transferDate"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`

	// Joined fields (not always populated).
	AssetName       string `json:"assetName,omitempty"`
	AssetCode       string `json:"assetCode,omitempty"`
	FromOfficeLabel string `json:"fromOfficeLabel,omitempty"`
	FromOfficeCode  string `json:"fromOfficeCode,omitempty"`
	ToOfficeLabel   string `json:"toOfficeLabel,omitempty"`
	ToOfficeCode    string `json:"toOfficeCode,omitempty"`
	TransferByName  string `json:"transferByName,omitempty"`
}

// TransferLogView is a log entry with display text for its enum fields.
type TransferLogView struct {
	TransferLog
	TransferTypeText string `json:"transferTypeText"`
	StatusText       string `json:"statusText"`
	ReasonText       string `json:"reasonText"`
}

// View attaches display text to a log entry.
func (l TransferLog) View() TransferLogView {
	return TransferLogView{
		TransferLog:      l,
		TransferTypeText: l.TransferType.Label(),
		StatusText:       l.Status.Label(),
		ReasonText:       l.Reason.Label(),
	}
}

// Inventory is the ledger quantity of an asset at one office.
type Inventory struct {
	AssetID     string    `json:"assetId"`
	OfficeID    string    `json:"officeId"`
	Quantity    int       `json:"quantity"`
	LastUpdated time.Time `json:"lastUpdated"`

	// Joined fields (not always populated).
	OfficeCode  string `json:"officeCode,omitempty"`
	OfficeLabel string `json:"officeLabel,omitempty"`
}
