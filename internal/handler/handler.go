package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/stroycontrol/geomap-backend/pkg/response"
)

// orgID resolves the organization path parameter and checks it against the
// organization scope the auth middleware stored on the context. Returns
// false after writing the error response.
func orgID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("orgID"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid organization id")
		return 0, false
	}
	if scoped, ok := c.Get("org_id"); ok {
		if scopedID, ok := scoped.(int64); ok && scopedID != id {
			response.Error(c, http.StatusForbidden, "organization scope mismatch")
			return 0, false
		}
	}
	return id, true
}

// pathInt parses an integer path parameter.
func pathInt(c *gin.Context, name string) (int, bool) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		response.BadRequest(c, "invalid "+name+" parameter")
		return 0, false
	}
	return v, true
}
