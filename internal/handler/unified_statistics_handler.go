package handler

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/dto"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/models"
	appErrors "github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/errors"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/response"
)

type unifiedStatisticsService interface {
	StudentStatistics(ctx context.Context, learnerID, tenantID string, useCache bool) (*dto.StudentStatistics, bool, error)
	StudentsStatistics(ctx context.Context, learnerIDs []string, tenantID string) (map[string]dto.StudentStatistics, error)
	AttendanceRate(ctx context.Context, learnerID, tenantID string) (float64, error)
	AttendanceRateByKind(ctx context.Context, learnerID, tenantID string) (map[models.Kind]float64, error)
	DashboardOverview(ctx context.Context, learnerID, tenantID string) (*dto.DashboardOverview, bool, error)
	ClearCacheForLearner(ctx context.Context, learnerID, tenantID string) error
}

// UnifiedStatisticsHandler exposes learner statistics over HTTP.
type UnifiedStatisticsHandler struct {
	service unifiedStatisticsService
}

// NewUnifiedStatisticsHandler constructs the handler.
func NewUnifiedStatisticsHandler(service unifiedStatisticsService) *UnifiedStatisticsHandler {
	return &UnifiedStatisticsHandler{service: service}
}

func (h *UnifiedStatisticsHandler) learner(c *gin.Context) (string, string, bool) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return "", "", false
	}
	tenantID, ok := requireQuery(c, "tenantId")
	if !ok {
		return "", "", false
	}
	learnerID, ok := requireQuery(c, "learnerId")
	if !ok {
		return "", "", false
	}
	return learnerID, tenantID, true
}

// Student godoc
// @Summary Full statistics report for a learner
// @Tags Unified Statistics
// @Produce json
// @Param tenantId query string true "Tenant ID"
// @Param learnerId query string true "Learner ID"
// @Param cache query bool false "Use the cache (default true)"
// @Success 200 {object} response.Envelope
// @Router /api/v1/unified/statistics/student [get]
func (h *UnifiedStatisticsHandler) Student(c *gin.Context) {
	learnerID, tenantID, ok := h.learner(c)
	if !ok {
		return
	}
	start := time.Now()
	stats, cacheHit, err := h.service.StudentStatistics(c.Request.Context(), learnerID, tenantID, useCache(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, stats, cacheHit, start)
}

// Students godoc
// @Summary Statistics reports for several learners
// @Tags Unified Statistics
// @Produce json
// @Param tenantId query string true "Tenant ID"
// @Param learnerIds query string true "Comma separated learner IDs"
// @Success 200 {object} response.Envelope
// @Router /api/v1/unified/statistics/students [get]
func (h *UnifiedStatisticsHandler) Students(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	tenantID, ok := requireQuery(c, "tenantId")
	if !ok {
		return
	}
	start := time.Now()
	reports, err := h.service.StudentsStatistics(c.Request.Context(), splitQuery(c, "learnerIds"), tenantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, reports, start)
}

// Attendance godoc
// @Summary Attendance rate for a learner
// @Tags Unified Statistics
// @Produce json
// @Param tenantId query string true "Tenant ID"
// @Param learnerId query string true "Learner ID"
// @Param byKind query bool false "Break the rate down per kind"
// @Success 200 {object} response.Envelope
// @Router /api/v1/unified/statistics/attendance [get]
func (h *UnifiedStatisticsHandler) Attendance(c *gin.Context) {
	learnerID, tenantID, ok := h.learner(c)
	if !ok {
		return
	}
	byKind := false
	if raw := strings.TrimSpace(c.Query("byKind")); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "byKind must be a boolean"))
			return
		}
		byKind = parsed
	}
	start := time.Now()
	if byKind {
		rates, err := h.service.AttendanceRateByKind(c.Request.Context(), learnerID, tenantID)
		if err != nil {
			response.Error(c, err)
			return
		}
		respondWithMeta(c, rates, start)
		return
	}
	rate, err := h.service.AttendanceRate(c.Request.Context(), learnerID, tenantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, gin.H{"attendance_rate": rate}, start)
}

// Overview godoc
// @Summary Light dashboard overview for a learner
// @Tags Unified Statistics
// @Produce json
// @Param tenantId query string true "Tenant ID"
// @Param learnerId query string true "Learner ID"
// @Success 200 {object} response.Envelope
// @Router /api/v1/unified/statistics/overview [get]
func (h *UnifiedStatisticsHandler) Overview(c *gin.Context) {
	learnerID, tenantID, ok := h.learner(c)
	if !ok {
		return
	}
	start := time.Now()
	overview, cacheHit, err := h.service.DashboardOverview(c.Request.Context(), learnerID, tenantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, overview, cacheHit, start)
}

// ClearCache godoc
// @Summary Drop cached statistics for a learner
// @Tags Unified Statistics
// @Param tenantId query string true "Tenant ID"
// @Param learnerId query string true "Learner ID"
// @Success 204
// @Router /api/v1/unified/statistics/cache [delete]
func (h *UnifiedStatisticsHandler) ClearCache(c *gin.Context) {
	learnerID, tenantID, ok := h.learner(c)
	if !ok {
		return
	}
	if err := h.service.ClearCacheForLearner(c.Request.Context(), learnerID, tenantID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
