package service

import (
	"fmt"
	"log"
	"math"
	"sort"
	"time"

	"github.com/stroycontrol/geomap-backend/internal/cache"
	"github.com/stroycontrol/geomap-backend/internal/geo"
	"github.com/stroycontrol/geomap-backend/internal/models"
)

// Heatmap metrics.
const (
	MetricBudget   = "budget"
	MetricProblems = "problems"
	MetricActivity = "activity"
)

const (
	// MaxPoints caps the emitted point budget per heatmap. When the next
	// project would exceed it, remaining projects are dropped with a warning.
	MaxPoints = 1000

	// pointsPerProject: one center point plus eight compass-direction points.
	pointsPerProject = 9

	heatmapTTL = 600 * time.Second

	outerZoneMultiplier = 0.4
	contrastExponent    = 0.7
	floorIntensity      = 0.1

	// Activity metric tuning.
	recentWorksWindow     = 7 * 24 * time.Hour
	recentWorksSaturation = 20.0
	recentUpdateWindow    = 24 * time.Hour
	recentUpdateBoost     = 0.2

	// densityCellDeg is the fixed grid step of the density map.
	densityCellDeg = 0.1
)

// HeatmapService generates heat-zone layers and density maps from project
// coordinates. Each call is a pure compute-or-cache-fetch.
type HeatmapService struct {
	projects ProjectSource
	metrics  MetricsProvider
	cache    *cache.Store

	now func() time.Time
}

// NewHeatmapService creates a new heatmap service
func NewHeatmapService(projects ProjectSource, metrics MetricsProvider, store *cache.Store) *HeatmapService {
	return &HeatmapService{
		projects: projects,
		metrics:  metrics,
		cache:    store,
		now:      time.Now,
	}
}

// Generate computes the heatmap layer for a metric. Every project with a
// positive base intensity expands into one full-intensity center point and
// eight attenuated outer points at 45-degree compass steps, at a
// zoom-adaptive radius. Results are cached by the full request fingerprint.
func (s *HeatmapService) Generate(orgID int64, filter models.HeatmapFilter) (*models.HeatmapResult, error) {
	metric := filter.Metric
	if metric == "" {
		metric = MetricActivity
	}
	if metric != MetricBudget && metric != MetricProblems && metric != MetricActivity {
		return nil, fmt.Errorf("unknown heatmap metric %q", metric)
	}

	var bounds *geo.Bounds
	if filter.HasBounds() {
		b, err := geo.NewBounds(filter.North, filter.South, filter.East, filter.West)
		if err != nil {
			return nil, err
		}
		bounds = &b
	}

	key := cache.HeatmapKey(orgID, metric, filter.Zoom,
		cache.Hash(filter.North, filter.South, filter.East, filter.West),
		cache.Hash(filter.Status, filter.StartDate, filter.EndDate))
	if v, ok := s.cache.Get(key); ok {
		if result, ok := v.(*models.HeatmapResult); ok {
			return result, nil
		}
	}

	projects, err := s.projects.FindWithCoordinates(orgID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects for heatmap: %w", err)
	}

	maxValue := s.maxMetricValue(metric, projects)
	radius := zoneRadiusDeg(filter.Zoom)

	points := make([]models.HeatPoint, 0, len(projects)*pointsPerProject)
	stats := models.HeatmapStats{MinIntensity: 1, MinValue: math.MaxFloat64}
	for i, p := range projects {
		if len(points)+pointsPerProject > MaxPoints {
			log.Printf("heatmap point budget reached for org %d: dropping %d of %d projects",
				orgID, len(projects)-i, len(projects))
			break
		}

		base, value, degraded := s.baseIntensity(metric, p, maxValue)
		if degraded {
			stats.DegradedProjects++
		}
		if base <= 0 {
			continue
		}

		lat, lng := *p.Latitude, *p.Longitude
		points = append(points, heatPoint(p.ID, lat, lng, base, 1.0, value, models.ZoneCenter))
		for bearing := 0.0; bearing < 360; bearing += 45 {
			rad := bearing * math.Pi / 180
			points = append(points, heatPoint(p.ID,
				lat+radius*math.Cos(rad),
				lng+radius*math.Sin(rad),
				base, outerZoneMultiplier, value, models.ZoneOuter))
		}

		stats.TotalProjects++
		if value < stats.MinValue {
			stats.MinValue = value
		}
		if value > stats.MaxValue {
			stats.MaxValue = value
		}
	}

	stats.TotalPoints = len(points)
	for _, pt := range points {
		if pt.Intensity < stats.MinIntensity {
			stats.MinIntensity = pt.Intensity
		}
		if pt.Intensity > stats.MaxIntensity {
			stats.MaxIntensity = pt.Intensity
		}
	}
	if len(points) == 0 {
		stats.MinIntensity = 0
		stats.MinValue = 0
	}

	result := &models.HeatmapResult{
		Type:        "heatmap",
		Metric:      metric,
		Data:        points,
		Stats:       stats,
		Zoom:        filter.Zoom,
		GeneratedAt: s.now().UTC().Format(time.RFC3339),
	}
	if bounds != nil {
		result.Bounds = *bounds
	}

	s.cache.Put(key, result, heatmapTTL)
	return result, nil
}

// GenerateDensityMap buckets projects into a fixed 0.1-degree grid and
// reports per-cell counts and budget totals, normalized by the densest cell.
func (s *HeatmapService) GenerateDensityMap(orgID int64, filter models.HeatmapFilter) (*models.DensityMap, error) {
	if filter.HasBounds() {
		if _, err := geo.NewBounds(filter.North, filter.South, filter.East, filter.West); err != nil {
			return nil, err
		}
	}

	key := cache.DensityKey(orgID, cache.Hash(filter.North, filter.South, filter.East, filter.West))
	if v, ok := s.cache.Get(key); ok {
		if dm, ok := v.(*models.DensityMap); ok {
			return dm, nil
		}
	}

	filter.Metric = ""
	projects, err := s.projects.FindWithCoordinates(orgID, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects for density map: %w", err)
	}

	type cellKey struct{ x, y int }
	counts := make(map[cellKey]*models.DensityCell)
	for _, p := range projects {
		k := cellKey{
			x: int(math.Floor(*p.Longitude / densityCellDeg)),
			y: int(math.Floor(*p.Latitude / densityCellDeg)),
		}
		cell, ok := counts[k]
		if !ok {
			cell = &models.DensityCell{
				Lat: (float64(k.y) + 0.5) * densityCellDeg,
				Lng: (float64(k.x) + 0.5) * densityCellDeg,
			}
			counts[k] = cell
		}
		cell.Count++
		cell.TotalBudget += p.BudgetAmount
	}

	maxCount := 0
	cells := make([]models.DensityCell, 0, len(counts))
	for _, cell := range counts {
		if cell.Count > maxCount {
			maxCount = cell.Count
		}
		cells = append(cells, *cell)
	}
	for i := range cells {
		cells[i].Density = float64(cells[i].Count) / float64(maxCount)
	}
	sort.Slice(cells, func(a, b int) bool {
		if cells[a].Count != cells[b].Count {
			return cells[a].Count > cells[b].Count
		}
		if cells[a].Lat != cells[b].Lat {
			return cells[a].Lat < cells[b].Lat
		}
		return cells[a].Lng < cells[b].Lng
	})

	dm := &models.DensityMap{Type: "density", Data: cells, MaxCount: maxCount}
	s.cache.Put(key, dm, heatmapTTL)
	return dm, nil
}

// InvalidateCache evicts every cached heatmap and density map of an
// organization and returns the number of evicted entries.
func (s *HeatmapService) InvalidateCache(orgID int64) int {
	n := s.cache.DeletePrefix(cache.HeatmapKeyPrefix(orgID))
	if n > 0 {
		log.Printf("evicted %d heatmap cache entries for org %d", n, orgID)
	}
	return n
}

// maxMetricValue returns the normalization ceiling for a metric. Problems
// and activity scores are already in [0,1]; budget normalizes against the
// largest budget in the result set.
func (s *HeatmapService) maxMetricValue(metric string, projects []models.Project) float64 {
	if metric != MetricBudget {
		return 1.0
	}
	max := 0.0
	for _, p := range projects {
		if p.BudgetAmount > max {
			max = p.BudgetAmount
		}
	}
	if max <= 0 {
		return 1.0
	}
	return max
}

// baseIntensity computes the pre-contrast intensity and raw metric value for
// one project. degraded reports that a metrics lookup failed and the project
// was scored with a fallback.
func (s *HeatmapService) baseIntensity(metric string, p models.Project, maxValue float64) (intensity, value float64, degraded bool) {
	switch metric {
	case MetricBudget:
		// Logarithmic scale keeps a few huge budgets from flattening the rest.
		intensity = math.Log10(p.BudgetAmount+1) / math.Log10(maxValue+1)
		intensity = clamp01(intensity)
		return intensity, p.BudgetAmount, false

	case MetricProblems:
		m, err := s.metrics.Metrics(p)
		if err != nil {
			log.Printf("metrics unavailable for project %d, dropping from problems heatmap: %v", p.ID, err)
			return 0, 0, true
		}
		spiGap := math.Max(0, 1-m.SPI)
		cpiGap := math.Max(0, 1-m.CPI)
		problem := (spiGap + cpiGap) / 2
		return clamp01(problem), problem, false

	default: // MetricActivity
		now := s.now()
		if p.StartDate == nil || p.EndDate == nil || now.Before(*p.StartDate) || now.After(*p.EndDate) {
			return 0, 0, false
		}
		works, err := s.projects.CountRecentWorks(p.ID, now.Add(-recentWorksWindow))
		if err != nil {
			log.Printf("failed to count recent works for project %d: %v", p.ID, err)
			works = 0
			degraded = true
		}
		activity := math.Min(float64(works)/recentWorksSaturation, 1.0)
		if now.Sub(p.UpdatedAt) <= recentUpdateWindow {
			activity += recentUpdateBoost
		}
		activity = math.Min(activity, 1.0)
		return activity, activity, degraded
	}
}

// heatPoint applies the zone multiplier and contrast enhancement: a gamma
// curve lifts mid-range values and a floor keeps every point visible.
func heatPoint(projectID int64, lat, lng, base, zoneMultiplier, value float64, zone string) models.HeatPoint {
	intensity := base * zoneMultiplier
	intensity = math.Pow(intensity, contrastExponent)
	intensity = math.Max(intensity, floorIntensity)
	intensity = clamp01(intensity)

	return models.HeatPoint{
		Lat:       lat,
		Lng:       lng,
		Intensity: intensity,
		Value:     value,
		Zone:      zone,
		ProjectID: projectID,
	}
}

// zoneRadiusDeg is the outer-point offset radius in degrees, widening as the
// map zooms out so zones stay visible.
func zoneRadiusDeg(zoom int) float64 {
	switch {
	case zoom < 6:
		return 0.5
	case zoom < 10:
		return 0.1
	case zoom < 13:
		return 0.05
	default:
		return 0.02
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
