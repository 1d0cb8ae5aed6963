package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stroycontrol/geomap-backend/internal/service"
	"github.com/stroycontrol/geomap-backend/pkg/response"
)

// CacheHandler exposes cache invalidation for the map layers.
type CacheHandler struct {
	tiles    *service.TileService
	heatmaps *service.HeatmapService
}

// NewCacheHandler creates a new cache handler
func NewCacheHandler(tiles *service.TileService, heatmaps *service.HeatmapService) *CacheHandler {
	return &CacheHandler{tiles: tiles, heatmaps: heatmaps}
}

// Invalidate handles POST /api/v1/orgs/:orgID/cache/invalidate.
// With a projectId query parameter the project's metrics cache is dropped
// too; tile and heatmap entries are always evicted organization-wide.
func (h *CacheHandler) Invalidate(c *gin.Context) {
	org, ok := orgID(c)
	if !ok {
		return
	}

	evicted := 0
	if raw := c.Query("projectId"); raw != "" {
		projectID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || projectID <= 0 {
			response.BadRequest(c, "invalid projectId parameter")
			return
		}
		evicted += h.tiles.InvalidateTilesForProject(org, projectID)
	} else {
		evicted += h.tiles.InvalidateTilesForOrg(org)
	}
	evicted += h.heatmaps.InvalidateCache(org)

	response.Success(c, gin.H{"evicted": evicted})
}
