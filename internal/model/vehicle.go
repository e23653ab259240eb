package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Vehicle is a company car. Plates are unique.
type Vehicle struct {
	ID                 string          `json:"id"`
	CarType            string          `json:"carType"`
	Plate              string          `json:"plate"`
	TeamID             *string         `json:"teamId,omitempty"`
	YearOfManufacture  *time.Time      `json:"yearOfManufacture,omitempty"`
	RegistrationPeriod *time.Time      `json:"registrationPeriod,omitempty"`
	RegistrationName   string          `json:"registrationName,omitempty"`
	Valuation          decimal.Decimal `json:"valuation"`
	LiabilityInsUntil  *time.Time      `json:"liabilityInsuranceUntil,omitempty"`
	LiabilityInsSeller string          `json:"liabilityInsuranceSeller,omitempty"`
	HullInsUntil       *time.Time      `json:"hullInsuranceUntil,omitempty"`
	HullInsSeller      string          `json:"hullInsuranceSeller,omitempty"`
	GPSUntil           *time.Time      `json:"gpsUntil,omitempty"`
	GPSDescription     string          `json:"gpsDescription,omitempty"`
	SIMUntil           *time.Time      `json:"simUntil,omitempty"`
	SIMSeller          string          `json:"simSeller,omitempty"`
	Description        string          `json:"description,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`

	// Joined fields (not always populated).
	TeamLabel string `json:"teamLabel,omitempty"`
}

// VehicleTotal is the number of vehicles assigned to a team.
type VehicleTotal struct {
	TeamID    *string `json:"teamId"`
	TeamLabel string  `json:"teamLabel,omitempty"`
	TotalCars int     `json:"totalCars"`
}

// VehicleImport is a vehicle read from a spreadsheet row. Team is an id, a
// code or a label.
type VehicleImport struct {
	Line    int
	Vehicle Vehicle
	Team    string
}
