package models

// TileFilter represents filter parameters for tile requests
type TileFilter struct {
	Layer     string  `form:"layer"`     // projects (default)
	Status    string  `form:"status"`    // planned, active, suspended, completed
	BudgetMin float64 `form:"budgetMin"` // Minimum budget amount
	BudgetMax float64 `form:"budgetMax"` // Maximum budget amount
	Health    string  `form:"health"`    // good, warning, critical (applied after metrics are computed)
}

// HeatmapFilter represents filter parameters for heatmap generation
type HeatmapFilter struct {
	Metric    string  `form:"metric"` // budget, problems, activity
	Zoom      int     `form:"zoom"`
	Status    string  `form:"status"`
	StartDate string  `form:"startDate"` // YYYY-MM-DD, projects starting on or after
	EndDate   string  `form:"endDate"`   // YYYY-MM-DD, projects ending on or before
	North     float64 `form:"north"`
	South     float64 `form:"south"`
	East      float64 `form:"east"`
	West      float64 `form:"west"`
}

// HasBounds reports whether the request carries an explicit bounding box.
func (f HeatmapFilter) HasBounds() bool {
	return f.North != 0 || f.South != 0 || f.East != 0 || f.West != 0
}

// SearchFilter represents filter parameters for project search
type SearchFilter struct {
	Query    string  `form:"q"`
	Lat      float64 `form:"lat"`
	Lng      float64 `form:"lng"`
	RadiusKm float64 `form:"radiusKm"`
	Status   string  `form:"status"`
	City     string  `form:"city"`
	Street   string  `form:"street"`
	Limit    int     `form:"limit"`
}
