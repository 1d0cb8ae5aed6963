package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stroycontrol/geomap-backend/internal/cache"
	"github.com/stroycontrol/geomap-backend/internal/cluster"
	"github.com/stroycontrol/geomap-backend/internal/evm"
	"github.com/stroycontrol/geomap-backend/internal/geo"
	"github.com/stroycontrol/geomap-backend/internal/models"
)

func newTileService(src *fakeSource, m *fakeMetrics) *TileService {
	return NewTileService(src, m, cache.NewStore(time.Minute))
}

// tileProjects places n projects tightly around the center of the tile that
// contains the base coordinate at the given zoom.
func tileProjects(orgID int64, baseLat, baseLon float64, zoom, n int) (geo.TileAddress, []models.Project) {
	tile := geo.TileAt(baseLat, baseLon, zoom)
	b := geo.TileToBounds(tile)
	centerLat := (b.North + b.South) / 2
	centerLon := (b.East + b.West) / 2

	projects := make([]models.Project, 0, n)
	for i := 0; i < n; i++ {
		step := float64(i) * (b.North - b.South) / float64(20*n)
		projects = append(projects, project(int64(i+1), orgID, centerLat+step, centerLon+step, 1000))
	}
	return tile, projects
}

func TestGetTileRendersFeatures(t *testing.T) {
	tile, projects := tileProjects(1, 55.7558, 37.6173, 12, 3)
	src := &fakeSource{projects: projects}
	m := &fakeMetrics{metrics: map[int64]evm.Metrics{
		1: {SPI: 1.1, CPI: 1.0, Health: models.HealthGood},
		2: {SPI: 0.9, CPI: 0.85, Health: models.HealthWarning},
		3: {SPI: 0.5, CPI: 0.6, Health: models.HealthCritical},
	}}
	s := newTileService(src, m)

	fc, err := s.GetTile(1, tile.Z, tile.X, tile.Y, models.TileFilter{})
	require.NoError(t, err)
	require.Len(t, fc.Features, 3)

	colors := map[int64]string{}
	for _, f := range fc.Features {
		id := f.Properties["id"].(int64)
		colors[id] = f.Properties["status_color"].(string)
		assert.Equal(t, false, f.Properties["degraded"])
		assert.NotEmpty(t, f.Properties["name"])
	}
	assert.Equal(t, "green", colors[1])
	assert.Equal(t, "yellow", colors[2])
	assert.Equal(t, "red", colors[3])
}

func TestGetTileClustersAtLowZoom(t *testing.T) {
	tile, projects := tileProjects(1, 55.7558, 37.6173, 5, 6)
	src := &fakeSource{projects: projects}
	s := newTileService(src, &fakeMetrics{})

	fc, err := s.GetTile(1, tile.Z, tile.X, tile.Y, models.TileFilter{})
	require.NoError(t, err)

	// Six markers in one zoom-5 tile collapse into a single cluster.
	require.Len(t, fc.Features, 1)
	c := fc.Features[0]
	assert.Equal(t, true, c.Properties[cluster.PropCluster])
	assert.Equal(t, 6, c.Properties[cluster.PropPointCount])
}

func TestGetTileNoClusteringAtHighZoom(t *testing.T) {
	tile, projects := tileProjects(1, 55.7558, 37.6173, 12, 6)
	src := &fakeSource{projects: projects}
	s := newTileService(src, &fakeMetrics{})

	fc, err := s.GetTile(1, tile.Z, tile.X, tile.Y, models.TileFilter{})
	require.NoError(t, err)

	require.Len(t, fc.Features, 6)
	for _, f := range fc.Features {
		_, isCluster := f.Properties[cluster.PropCluster]
		assert.False(t, isCluster)
	}
}

func TestGetTileFewFeaturesStayUnclustered(t *testing.T) {
	// Below the marker threshold nothing clusters even at low zoom.
	tile, projects := tileProjects(1, 55.7558, 37.6173, 5, 5)
	src := &fakeSource{projects: projects}
	s := newTileService(src, &fakeMetrics{})

	fc, err := s.GetTile(1, tile.Z, tile.X, tile.Y, models.TileFilter{})
	require.NoError(t, err)
	assert.Len(t, fc.Features, 5)
}

func TestGetTileDegradedMetricsFallback(t *testing.T) {
	tile, projects := tileProjects(1, 55.7558, 37.6173, 14, 1)
	src := &fakeSource{projects: projects}
	m := &fakeMetrics{errs: map[int64]error{1: fmt.Errorf("metrics store down")}}
	s := newTileService(src, m)

	fc, err := s.GetTile(1, tile.Z, tile.X, tile.Y, models.TileFilter{})
	require.NoError(t, err, "metrics failure must not fail the tile")
	require.Len(t, fc.Features, 1)

	f := fc.Features[0]
	assert.Equal(t, true, f.Properties["degraded"])
	assert.Equal(t, models.HealthUnknown, f.Properties["health"])
	assert.InDelta(t, 1.0, f.Properties["spi"].(float64), 1e-9)
	assert.InDelta(t, 1.0, f.Properties["cpi"].(float64), 1e-9)
	assert.Equal(t, "gray", f.Properties["status_color"])
}

func TestGetTileHealthFilter(t *testing.T) {
	tile, projects := tileProjects(1, 55.7558, 37.6173, 12, 3)
	src := &fakeSource{projects: projects}
	m := &fakeMetrics{metrics: map[int64]evm.Metrics{
		1: {SPI: 1, CPI: 1, Health: models.HealthGood},
		2: {SPI: 0.6, CPI: 0.6, Health: models.HealthCritical},
		3: {SPI: 1, CPI: 1, Health: models.HealthGood},
	}}
	s := newTileService(src, m)

	fc, err := s.GetTile(1, tile.Z, tile.X, tile.Y, models.TileFilter{Health: models.HealthCritical})
	require.NoError(t, err)
	require.Len(t, fc.Features, 1)
	assert.Equal(t, int64(2), fc.Features[0].Properties["id"])
}

func TestGetTileRejectsInvalidAddress(t *testing.T) {
	s := newTileService(&fakeSource{}, &fakeMetrics{})

	_, err := s.GetTile(1, 5, 32, 0, models.TileFilter{})
	assert.Error(t, err)

	_, err = s.GetTile(1, -1, 0, 0, models.TileFilter{})
	assert.Error(t, err)

	_, err = s.GetTile(1, 40, 0, 0, models.TileFilter{})
	assert.Error(t, err)
}

func TestGetTileCacheHitAndInvalidation(t *testing.T) {
	tile, projects := tileProjects(1, 55.7558, 37.6173, 12, 2)
	src := &fakeSource{projects: projects}
	m := &fakeMetrics{}
	s := newTileService(src, m)

	first, err := s.GetTile(1, tile.Z, tile.X, tile.Y, models.TileFilter{})
	require.NoError(t, err)
	second, err := s.GetTile(1, tile.Z, tile.X, tile.Y, models.TileFilter{})
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, src.findCalls)

	// Different filters produce a different cache entry.
	_, err = s.GetTile(1, tile.Z, tile.X, tile.Y, models.TileFilter{Status: models.StatusActive})
	require.NoError(t, err)
	assert.Equal(t, 2, src.findCalls)

	// Project invalidation drops the metrics cache and the org's tiles.
	evicted := s.InvalidateTilesForProject(1, 42)
	assert.Equal(t, 2, evicted)
	assert.Equal(t, []int64{42}, m.invalidated)

	_, err = s.GetTile(1, tile.Z, tile.X, tile.Y, models.TileFilter{})
	require.NoError(t, err)
	assert.Equal(t, 3, src.findCalls, "eviction must force a recompute")
}
