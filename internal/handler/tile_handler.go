package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/stroycontrol/geomap-backend/internal/geo"
	"github.com/stroycontrol/geomap-backend/internal/models"
	"github.com/stroycontrol/geomap-backend/internal/service"
	"github.com/stroycontrol/geomap-backend/pkg/response"
)

// TileHandler handles HTTP requests for map tiles
type TileHandler struct {
	service *service.TileService
}

// NewTileHandler creates a new tile handler
func NewTileHandler(service *service.TileService) *TileHandler {
	return &TileHandler{service: service}
}

// GetTile handles GET /api/v1/orgs/:orgID/tiles/:z/:x/:y
func (h *TileHandler) GetTile(c *gin.Context) {
	org, ok := orgID(c)
	if !ok {
		return
	}
	z, ok := pathInt(c, "z")
	if !ok {
		return
	}
	x, ok := pathInt(c, "x")
	if !ok {
		return
	}
	y, ok := pathInt(c, "y")
	if !ok {
		return
	}

	if err := (geo.TileAddress{Z: z, X: x, Y: y}).Validate(); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	var filter models.TileFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "invalid query parameters")
		return
	}

	fc, err := h.service.GetTile(org, z, x, y, filter)
	if err != nil {
		response.InternalError(c, "failed to render tile")
		return
	}

	c.JSON(http.StatusOK, fc)
}
