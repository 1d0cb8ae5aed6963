package models

// Heat zone labels. A project expands into one center point and eight outer
// points at 45-degree compass steps.
const (
	ZoneCenter = "center"
	ZoneOuter  = "outer"
)

// HeatPoint represents a single weighted point in the heatmap
type HeatPoint struct {
	Lat       float64 `json:"lat"`
	Lng       float64 `json:"lng"`
	Intensity float64 `json:"intensity"` // Normalized 0.1-1 after contrast enhancement
	Value     float64 `json:"value"`     // Raw metric value
	Zone      string  `json:"zone"`      // "center" or "outer"
	ProjectID int64   `json:"project_id"`
}

// HeatmapStats summarizes an emitted heatmap layer
type HeatmapStats struct {
	TotalPoints      int     `json:"total_points"`
	TotalProjects    int     `json:"total_projects"`
	DegradedProjects int     `json:"degraded_projects"` // Projects rendered with fallback metrics
	MinIntensity     float64 `json:"min_intensity"`
	MaxIntensity     float64 `json:"max_intensity"`
	MinValue         float64 `json:"min_value"`
	MaxValue         float64 `json:"max_value"`
}

// HeatmapResult represents the heatmap API response
type HeatmapResult struct {
	Type        string       `json:"type"` // "heatmap"
	Metric      string       `json:"metric"`
	Data        []HeatPoint  `json:"data"`
	Stats       HeatmapStats `json:"stats"`
	Bounds      interface{}  `json:"bounds,omitempty"`
	Zoom        int          `json:"zoom"`
	GeneratedAt string       `json:"generated_at"`
}

// DensityCell is one aggregated cell of the fixed-grid density map
type DensityCell struct {
	Lat         float64 `json:"lat"` // Cell center
	Lng         float64 `json:"lng"`
	Count       int     `json:"count"`
	TotalBudget float64 `json:"total_budget"`
	Density     float64 `json:"density"` // Count normalized by the densest cell
}

// DensityMap represents the density-map API response
type DensityMap struct {
	Type     string        `json:"type"` // "density"
	Data     []DensityCell `json:"data"`
	MaxCount int           `json:"max_count"`
}
