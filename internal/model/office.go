package model

import "time"

// Department is a top-level organisational unit.
type Department struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"createdAt"`
}

// Team belongs to a department. Vehicles are assigned to teams.
type Team struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	Label        string    `json:"label"`
	DepartmentID *string   `json:"departmentId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Office is a location that can manage assets and hold stock.
type Office struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	Label        string    `json:"label"`
	DepartmentID *string   `json:"departmentId,omitempty"`
	TeamID       *string   `json:"teamId,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// AssetType classifies assets (furniture, IT equipment, ...).
type AssetType struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"createdAt"`
}

// Unit is the unit of measure an asset quantity is counted in.
type Unit struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	CreatedAt time.Time `json:"createdAt"`
}
