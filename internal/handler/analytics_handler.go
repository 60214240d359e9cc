package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Rahi-Raushan/stu-mag-api/internal/dto"
	"github.com/Rahi-Raushan/stu-mag-api/internal/middleware"
	"github.com/Rahi-Raushan/stu-mag-api/pkg/response"
)

type analyticsService interface {
	Overview(ctx context.Context) (*dto.OverviewResponse, bool, error)
}

// AnalyticsHandler exposes the admin analytics endpoints.
type AnalyticsHandler struct {
	analytics analyticsService
}

// NewAnalyticsHandler constructs AnalyticsHandler.
func NewAnalyticsHandler(analytics analyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// Overview godoc
// @Summary Enrollment overview rollup
// @Tags Analytics
// @Produce json
// @Success 200 {object} response.Envelope
// @Security BearerAuth
// @Router /analytics/overview [get]
func (h *AnalyticsHandler) Overview(c *gin.Context) {
	overview, cacheHit, err := h.analytics.Overview(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, overview, nil, middleware.ExtractMeta(c))
}
