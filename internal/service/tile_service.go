package service

import (
	"fmt"
	"log"
	"time"

	"github.com/paulmach/orb/geojson"

	"github.com/stroycontrol/geomap-backend/internal/cache"
	"github.com/stroycontrol/geomap-backend/internal/cluster"
	"github.com/stroycontrol/geomap-backend/internal/evm"
	"github.com/stroycontrol/geomap-backend/internal/geo"
	"github.com/stroycontrol/geomap-backend/internal/models"
)

const (
	tileTTL = 900 * time.Second

	// Below this zoom, tiles with more than clusterMinFeatures markers are
	// collapsed into clusters.
	clusterZoomThreshold = 10
	clusterMinFeatures   = 5

	defaultLayer = "projects"
)

// TileService renders GeoJSON feature tiles from project coordinates, with
// per-tile caching and zoom-adaptive clustering.
type TileService struct {
	projects ProjectSource
	metrics  MetricsProvider
	cache    *cache.Store
}

// NewTileService creates a new tile service
func NewTileService(projects ProjectSource, metrics MetricsProvider, store *cache.Store) *TileService {
	return &TileService{projects: projects, metrics: metrics, cache: store}
}

// GetTile returns the feature collection for one slippy-map tile. Projects
// inside the tile bounds become point features carrying earned-value metrics;
// when metrics are unavailable the feature falls back to neutral values and
// is marked degraded. Low-zoom tiles with many markers are clustered.
func (s *TileService) GetTile(orgID int64, z, x, y int, filter models.TileFilter) (*geojson.FeatureCollection, error) {
	addr := geo.TileAddress{Z: z, X: x, Y: y}
	if err := addr.Validate(); err != nil {
		return nil, err
	}

	layer := filter.Layer
	if layer == "" {
		layer = defaultLayer
	}
	key := cache.TileKey(orgID, z, x, y, layer,
		cache.Hash(filter.Status, filter.BudgetMin, filter.BudgetMax, filter.Health))
	if v, ok := s.cache.Get(key); ok {
		if fc, ok := v.(*geojson.FeatureCollection); ok {
			return fc, nil
		}
	}

	bounds := geo.TileToBounds(addr)
	projects, err := s.projects.FindInBounds(orgID, bounds, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to load projects for tile %d/%d/%d: %w", z, x, y, err)
	}

	features := make([]*geojson.Feature, 0, len(projects))
	for _, p := range projects {
		f := s.projectFeature(p)
		// Health derives from metrics, so the filter applies after the
		// fetch rather than in SQL.
		if filter.Health != "" && f.Properties.MustString("health", "") != filter.Health {
			continue
		}
		features = append(features, f)
	}

	if z < clusterZoomThreshold && len(features) > clusterMinFeatures {
		features = cluster.Cluster(features, z, cluster.DefaultRadiusPixels)
	}

	fc := geo.NewFeatureCollection(features)
	s.cache.Put(key, fc, tileTTL)
	return fc, nil
}

// projectFeature converts one project record into a GeoJSON point feature.
func (s *TileService) projectFeature(p models.Project) *geojson.Feature {
	m, err := s.metrics.Metrics(p)
	degraded := false
	if err != nil {
		log.Printf("metrics unavailable for project %d, rendering degraded: %v", p.ID, err)
		m = evm.Neutral()
		degraded = true
	}

	return geo.NewPointFeature(*p.Latitude, *p.Longitude, map[string]interface{}{
		"id":           p.ID,
		"name":         p.Name,
		"address":      p.Address,
		"status":       p.Status,
		"budget":       p.BudgetAmount,
		"spi":          m.SPI,
		"cpi":          m.CPI,
		"health":       m.Health,
		"degraded":     degraded,
		"status_color": models.StatusColorForHealth(m.Health),
	})
}

// InvalidateTilesForOrg evicts every cached tile of an organization and
// returns the number of evicted entries.
func (s *TileService) InvalidateTilesForOrg(orgID int64) int {
	n := s.cache.DeletePrefix(cache.TileKeyPrefix(orgID))
	if n > 0 {
		log.Printf("evicted %d tile cache entries for org %d", n, orgID)
	}
	return n
}

// InvalidateTilesForProject drops the project's metrics cache and the
// organization's tiles. Tile keys do not record member projects, so eviction
// is organization-wide.
func (s *TileService) InvalidateTilesForProject(orgID, projectID int64) int {
	s.metrics.InvalidateCache(projectID)
	return s.InvalidateTilesForOrg(orgID)
}
