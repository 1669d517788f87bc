package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AssessHub-IN/portal-service/internal/services"
	"github.com/AssessHub-IN/portal-service/internal/utils"
)

type StatsHandler struct {
	BaseHandler
	statsService services.StatsService
}

func NewStatsHandler(statsService services.StatsService, logger utils.Logger) *StatsHandler {
	return &StatsHandler{
		BaseHandler:  NewBaseHandler(logger),
		statsService: statsService,
	}
}

// GetPortalStats returns the admin dashboard counters
// @Summary Get portal stats
// @Tags stats
// @Produce json
// @Success 200 {object} repositories.PortalStats
// @Failure 403 {object} ErrorResponse
// @Router /admin/stats [get]
func (h *StatsHandler) GetPortalStats(c *gin.Context) {
	h.LogRequest(c, "Getting portal stats")

	stats, err := h.statsService.PortalStats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
