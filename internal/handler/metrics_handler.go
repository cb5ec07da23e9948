package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mie-portal/portal-api/internal/service"
	"github.com/mie-portal/portal-api/pkg/response"
)

// MetricsHandler exposes runtime metric snapshots for admin dashboards.
type MetricsHandler struct {
	metrics *service.MetricsService
}

// NewMetricsHandler constructs a new MetricsHandler.
func NewMetricsHandler(metrics *service.MetricsService) *MetricsHandler {
	return &MetricsHandler{metrics: metrics}
}

// Snapshot godoc
// @Summary Aggregate request and cache metrics
// @Tags Metrics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope{data=models.SystemMetrics}
// @Router /metrics/snapshot [get]
func (h *MetricsHandler) Snapshot(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.metrics.Snapshot(), nil)
}
