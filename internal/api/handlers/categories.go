package handlers

import (
	"net/http"

	"drawdown-service/internal/api/models"
	"drawdown-service/internal/config"

	"github.com/gin-gonic/gin"
)

// CategoryHandler lists the asset categories uploads can be filed under
type CategoryHandler struct {
	cfg *config.Config
}

func NewCategoryHandler(cfg *config.Config) *CategoryHandler {
	return &CategoryHandler{cfg: cfg}
}

// ListCategories handles GET /api/v1/categories
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	categories := make([]models.CategoryInfo, len(h.cfg.Categories))
	for i, cat := range h.cfg.Categories {
		categories[i] = models.CategoryInfo{
			Name:        cat.Name,
			DateColumn:  cat.DateColumn,
			PriceColumn: cat.PriceColumn,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"categories": categories,
		"count":      len(categories),
	})
}
