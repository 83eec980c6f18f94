package api

import (
	"net/http"

	"drawdown-service/internal/api/handlers"
	"drawdown-service/internal/api/middleware"
	"drawdown-service/internal/api/models"
	"drawdown-service/internal/config"
	"drawdown-service/internal/store"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires middleware and routes. Call gin.SetMode before it.
func NewRouter(cfg *config.Config, st store.Store) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.CORS(cfg.Server.CORSOrigins))

	drawdownHandler := handlers.NewDrawdownHandler(st, cfg)
	categoryHandler := handlers.NewCategoryHandler(cfg)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1")
	{
		api.GET("/categories", categoryHandler.ListCategories)
	}

	// The path segment is a route prefix; asset_type in the query picks the
	// category and the segment is only used when asset_type is absent.
	category := router.Group("/:category")
	{
		category.POST("/upload_csv", drawdownHandler.UploadCSV)
		category.GET("/data", drawdownHandler.GetData)
		category.GET("/summary", drawdownHandler.GetSummary)
		category.GET("/chart", drawdownHandler.GetChart)
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "NOT_FOUND",
				Message: "Not found",
			},
		})
	})

	return router
}
