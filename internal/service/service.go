// Package service orchestrates the map rendering pipeline: it turns stored
// project coordinates into tiles, heatmaps, clusters and search results.
// Services own no data; they read through a ProjectSource, score through a
// MetricsProvider and memoize results in an injected cache store.
package service

import (
	"time"

	"github.com/stroycontrol/geomap-backend/internal/evm"
	"github.com/stroycontrol/geomap-backend/internal/geo"
	"github.com/stroycontrol/geomap-backend/internal/models"
)

// ProjectSource is the read model the map services consume.
type ProjectSource interface {
	FindInBounds(orgID int64, b geo.Bounds, filter models.TileFilter) ([]models.Project, error)
	FindWithCoordinates(orgID int64, filter models.HeatmapFilter) ([]models.Project, error)
	CountRecentWorks(projectID int64, since time.Time) (int, error)
}

// MetricsProvider supplies earned-value metrics per project.
type MetricsProvider interface {
	Metrics(p models.Project) (evm.Metrics, error)
	InvalidateCache(projectID int64)
}
