package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gherbooks/internal/dashboard"
)

// dashboardHandler serves the gher dashboard.
type dashboardHandler struct {
	dashboardService *dashboard.Service
	logger           *zap.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(dashboardService *dashboard.Service, logger *zap.Logger) *dashboardHandler {
	return &dashboardHandler{dashboardService: dashboardService, logger: logger}
}

// handleStats handles GET /gher/dashboard/stats with optional
// start_date/end_date bounds.
func (h *dashboardHandler) handleStats(c *gin.Context) {
	from := parseTimeQuery(c, "start_date")
	to := parseTimeQuery(c, "end_date")

	stats, err := h.dashboardService.Stats(c.Request.Context(), currentUserID(c), from, to)
	if err != nil {
		h.logger.Error("failed to build dashboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
