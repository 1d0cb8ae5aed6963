package api

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stroycontrol/geomap-backend/internal/cache"
	"github.com/stroycontrol/geomap-backend/internal/config"
	"github.com/stroycontrol/geomap-backend/internal/evm"
	"github.com/stroycontrol/geomap-backend/internal/handler"
	"github.com/stroycontrol/geomap-backend/internal/middleware"
	"github.com/stroycontrol/geomap-backend/internal/repository"
	"github.com/stroycontrol/geomap-backend/internal/service"
)

// SetupRouter wires repositories, services and handlers onto a gin engine.
// The cache store is created here and injected into each service; nothing
// holds it as package state.
func SetupRouter(cfg *config.Config, db *sql.DB) *gin.Engine {
	store := cache.NewStore(time.Minute)

	projects := repository.NewProjectRepository(db)
	metrics := evm.NewService(store)

	tiles := service.NewTileService(projects, metrics, store)
	heatmaps := service.NewHeatmapService(projects, metrics, store)
	search := service.NewSearchService(projects)

	tileHandler := handler.NewTileHandler(tiles)
	heatmapHandler := handler.NewHeatmapHandler(heatmaps)
	searchHandler := handler.NewSearchHandler(search)
	cacheHandler := handler.NewCacheHandler(tiles, heatmaps)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())
	r.Use(corsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Geomap Backend API is running",
		})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.Auth(cfg.JWTSecret))
	{
		orgs := api.Group("/orgs/:orgID")
		{
			orgs.GET("/tiles/:z/:x/:y", tileHandler.GetTile)
			orgs.GET("/heatmap", heatmapHandler.GetHeatmap)
			orgs.GET("/density-map", heatmapHandler.GetDensityMap)

			searchRoutes := orgs.Group("/search")
			searchRoutes.Use(middleware.RateLimit(cfg.SearchRateLimit, cfg.SearchRateBurst))
			{
				searchRoutes.GET("", searchHandler.Search)
				searchRoutes.GET("/nearby", searchHandler.SearchNearby)
				searchRoutes.GET("/components", searchHandler.SearchByComponents)
				searchRoutes.GET("/suggest", searchHandler.Suggest)
			}

			orgs.POST("/cache/invalidate", cacheHandler.Invalidate)
		}
	}

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
