package models

import "time"

// Project statuses as stored in the projects table.
const (
	StatusPlanned   = "planned"
	StatusActive    = "active"
	StatusSuspended = "suspended"
	StatusCompleted = "completed"
)

// Health levels derived from earned-value metrics.
const (
	HealthGood     = "good"
	HealthWarning  = "warning"
	HealthCritical = "critical"
	HealthUnknown  = "unknown"
)

// Project is the read model of a construction project used by the map
// services. The map subsystem never writes project rows; it only derives
// rendering primitives from them.
type Project struct {
	ID             int64   `json:"id" db:"id"`
	OrganizationID int64   `json:"organization_id" db:"organization_id"`
	Name           string  `json:"name" db:"name"`
	Address        string  `json:"address" db:"address"`
	Description    string  `json:"description,omitempty" db:"description"`
	Status         string  `json:"status" db:"status"`
	BudgetAmount   float64 `json:"budget_amount" db:"budget_amount"`

	// Coordinates are pointers because rows without geocoding keep NULLs;
	// repositories exclude those rows from every spatial query.
	Latitude  *float64 `json:"latitude" db:"latitude"`
	Longitude *float64 `json:"longitude" db:"longitude"`

	// Earned-value accounting inputs for SPI/CPI.
	PlannedValue float64 `json:"planned_value" db:"planned_value"`
	EarnedValue  float64 `json:"earned_value" db:"earned_value"`
	ActualCost   float64 `json:"actual_cost" db:"actual_cost"`

	StartDate *time.Time `json:"start_date" db:"start_date"`
	EndDate   *time.Time `json:"end_date" db:"end_date"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// HasCoordinates reports whether the project has been geocoded.
func (p *Project) HasCoordinates() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// StatusColorForHealth maps a health level to a marker color.
func StatusColorForHealth(health string) string {
	switch health {
	case HealthCritical:
		return "red"
	case HealthWarning:
		return "yellow"
	case HealthGood:
		return "green"
	default:
		return "gray"
	}
}
