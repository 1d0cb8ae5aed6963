package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/stroycontrol/geomap-backend/internal/models"
	"github.com/stroycontrol/geomap-backend/internal/service"
	"github.com/stroycontrol/geomap-backend/pkg/response"
)

// SearchHandler handles HTTP requests for project search
type SearchHandler struct {
	service *service.SearchService
}

// NewSearchHandler creates a new search handler
func NewSearchHandler(service *service.SearchService) *SearchHandler {
	return &SearchHandler{service: service}
}

// Search handles GET /api/v1/orgs/:orgID/search
func (h *SearchHandler) Search(c *gin.Context) {
	org, ok := orgID(c)
	if !ok {
		return
	}

	var filter models.SearchFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}

	projects, err := h.service.Search(org, filter.Query, filter.Limit)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"data":  projects,
		"count": len(projects),
	})
}

// SearchNearby handles GET /api/v1/orgs/:orgID/search/nearby
func (h *SearchHandler) SearchNearby(c *gin.Context) {
	org, ok := orgID(c)
	if !ok {
		return
	}

	var filter models.SearchFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}

	projects, err := h.service.SearchNearby(org, filter.Lat, filter.Lng, filter.RadiusKm, filter.Limit)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"data":  projects,
		"count": len(projects),
	})
}

// SearchByComponents handles GET /api/v1/orgs/:orgID/search/components
func (h *SearchHandler) SearchByComponents(c *gin.Context) {
	org, ok := orgID(c)
	if !ok {
		return
	}

	var filter models.SearchFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}

	projects, err := h.service.SearchByComponents(org, filter)
	if err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, gin.H{
		"data":  projects,
		"count": len(projects),
	})
}

// Suggest handles GET /api/v1/orgs/:orgID/search/suggest
func (h *SearchHandler) Suggest(c *gin.Context) {
	org, ok := orgID(c)
	if !ok {
		return
	}

	var filter models.SearchFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}

	suggestions, err := h.service.Suggest(org, filter.Query, filter.Limit)
	if err != nil {
		response.InternalError(c, "failed to load suggestions")
		return
	}

	response.Success(c, gin.H{
		"data":  suggestions,
		"count": len(suggestions),
	})
}
