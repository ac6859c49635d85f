package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/easymart/chat-backend/internal/application/catalog"
)

// CatalogExporter is the application-layer surface the catalog endpoints need
type CatalogExporter interface {
	Export(ctx context.Context) (*catalog.ExportResult, error)
	Stats(ctx context.Context) (*catalog.StatsResult, error)
}

// CatalogHandler serves the internal catalog feed consumed by the
// assistant's indexer
type CatalogHandler struct {
	BaseHandler
	exporter CatalogExporter
	logger   *zap.Logger
}

// NewCatalogHandler creates a new CatalogHandler
func NewCatalogHandler(exporter CatalogExporter, logger *zap.Logger) *CatalogHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CatalogHandler{
		exporter: exporter,
		logger:   logger,
	}
}

// Export godoc
// @ID           exportCatalog
// @Summary      Export the full catalog
// @Description  Returns every product as a bare JSON array. A failed export
// @Description  yields an empty array so the indexer never aborts mid-run.
// @Tags         catalog
// @Produce      json
// @Success      200 {array} catalog.ExportRecord
// @Router       /internal/catalog/export [get]
func (h *CatalogHandler) Export(c *gin.Context) {
	result, err := h.exporter.Export(c.Request.Context())
	if err != nil {
		h.logger.Error("catalog export failed", zap.Error(err))
		c.JSON(http.StatusOK, []catalog.ExportRecord{})
		return
	}

	c.JSON(http.StatusOK, result.Records)
}

// Stats godoc
// @ID           catalogStats
// @Summary      Probe catalog availability
// @Tags         catalog
// @Produce      json
// @Success      200 {object} catalog.StatsResult
// @Failure      500 {object} map[string]string
// @Router       /internal/catalog/stats [get]
func (h *CatalogHandler) Stats(c *gin.Context) {
	stats, err := h.exporter.Stats(c.Request.Context())
	if err != nil {
		h.logger.Error("catalog stats failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to get catalog stats",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, stats)
}
