package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/stroycontrol/geomap-backend/internal/models"
	"github.com/stroycontrol/geomap-backend/internal/service"
	"github.com/stroycontrol/geomap-backend/pkg/response"
)

// HeatmapHandler handles HTTP requests for heatmap layers
type HeatmapHandler struct {
	service *service.HeatmapService
}

// NewHeatmapHandler creates a new heatmap handler
func NewHeatmapHandler(service *service.HeatmapService) *HeatmapHandler {
	return &HeatmapHandler{service: service}
}

// GetHeatmap handles GET /api/v1/orgs/:orgID/heatmap
func (h *HeatmapHandler) GetHeatmap(c *gin.Context) {
	org, ok := orgID(c)
	if !ok {
		return
	}

	var filter models.HeatmapFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}

	result, err := h.service.Generate(org, filter)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, result)
}

// GetDensityMap handles GET /api/v1/orgs/:orgID/density-map
func (h *HeatmapHandler) GetDensityMap(c *gin.Context) {
	org, ok := orgID(c)
	if !ok {
		return
	}

	var filter models.HeatmapFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}

	dm, err := h.service.GenerateDensityMap(org, filter)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, dm)
}
