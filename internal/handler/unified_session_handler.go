package handler

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/dto"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/models"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/service"
	appErrors "github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/errors"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/response"
)

type unifiedSessionService interface {
	ForLearners(ctx context.Context, req service.SessionListRequest) ([]dto.NormalizedSession, bool, error)
	ForInstructor(ctx context.Context, req service.InstructorSessionRequest) ([]dto.NormalizedSession, error)
	Upcoming(ctx context.Context, learnerIDs []string, tenantID string, days int, kinds []models.Kind) ([]dto.NormalizedSession, bool, error)
	Today(ctx context.Context, learnerIDs []string, tenantID string, kinds []models.Kind) ([]dto.NormalizedSession, error)
	Ongoing(ctx context.Context, learnerIDs []string, tenantID string, kinds []models.Kind) ([]dto.NormalizedSession, error)
	NextSession(ctx context.Context, learnerID, tenantID string, kinds []models.Kind) (*dto.NormalizedSession, error)
	CalendarEvents(ctx context.Context, learnerIDs []string, tenantID string, start, end time.Time, kinds []models.Kind) ([]dto.CalendarEvent, bool, error)
	CountByStatus(ctx context.Context, learnerIDs []string, tenantID string, kinds []models.Kind) (map[models.SessionStatus]int, error)
	ClearCacheForLearner(ctx context.Context, learnerID, tenantID string) error
}

// UnifiedSessionHandler exposes the session aggregator over HTTP.
type UnifiedSessionHandler struct {
	service unifiedSessionService
}

// NewUnifiedSessionHandler constructs the handler.
func NewUnifiedSessionHandler(service unifiedSessionService) *UnifiedSessionHandler {
	return &UnifiedSessionHandler{service: service}
}

type learnerSessionScope struct {
	learnerIDs []string
	tenantID   string
	kinds      []models.Kind
}

func (h *UnifiedSessionHandler) scope(c *gin.Context) (learnerSessionScope, bool) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return learnerSessionScope{}, false
	}
	tenantID, ok := requireQuery(c, "tenantId")
	if !ok {
		return learnerSessionScope{}, false
	}
	kinds, err := parseKinds(c)
	if err != nil {
		response.Error(c, err)
		return learnerSessionScope{}, false
	}
	return learnerSessionScope{learnerIDs: splitQuery(c, "learnerIds"), tenantID: tenantID, kinds: kinds}, true
}

// List godoc
// @Summary Sessions of every kind for a set of learners
// @Tags Unified Sessions
// @Produce json
// @Param tenantId query string true "Tenant ID"
// @Param learnerIds query string false "Comma separated learner IDs"
// @Param kinds query string false "Comma separated kinds (quran, academic, course)"
// @Param status query string false "Session status"
// @Param from query string false "Window start (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "Window end (RFC3339 or YYYY-MM-DD)"
// @Param cache query bool false "Use the cache (default true)"
// @Success 200 {object} response.Envelope
// @Router /api/v1/unified/sessions [get]
func (h *UnifiedSessionHandler) List(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	status, err := parseSessionStatus(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	from, err := parseTime(c, "from")
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := parseTime(c, "to")
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	sessions, cacheHit, err := h.service.ForLearners(c.Request.Context(), service.SessionListRequest{
		LearnerIDs: scope.learnerIDs,
		TenantID:   scope.tenantID,
		Status:     status,
		Kinds:      scope.kinds,
		From:       from,
		To:         to,
		UseCache:   useCache(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, sessions, cacheHit, start)
}

// Instructor godoc
// @Summary Sessions of one kind taught by an instructor
// @Tags Unified Sessions
// @Produce json
// @Param tenantId query string true "Tenant ID"
// @Param instructorId query string true "Instructor ID"
// @Param kind query string true "Kind (quran, academic, course)"
// @Param status query string false "Session status"
// @Param from query string false "Window start (RFC3339 or YYYY-MM-DD)"
// @Param to query string false "Window end (RFC3339 or YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /api/v1/unified/sessions/instructor [get]
func (h *UnifiedSessionHandler) Instructor(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	tenantID, ok := requireQuery(c, "tenantId")
	if !ok {
		return
	}
	instructorID, ok := requireQuery(c, "instructorId")
	if !ok {
		return
	}
	rawKind, ok := requireQuery(c, "kind")
	if !ok {
		return
	}
	kind, valid := models.ParseKind(rawKind)
	if !valid {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown kind: "+rawKind))
		return
	}
	status, err := parseSessionStatus(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	from, err := parseTime(c, "from")
	if err != nil {
		response.Error(c, err)
		return
	}
	to, err := parseTime(c, "to")
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	sessions, err := h.service.ForInstructor(c.Request.Context(), service.InstructorSessionRequest{
		InstructorID: instructorID,
		TenantID:     tenantID,
		Kind:         kind,
		Status:       status,
		From:         from,
		To:           to,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, sessions, start)
}

// Upcoming godoc
// @Summary Scheduled sessions in the next few days
// @Tags Unified Sessions
// @Produce json
// @Param tenantId query string true "Tenant ID"
// @Param learnerIds query string false "Comma separated learner IDs"
// @Param kinds query string false "Comma separated kinds"
// @Param days query int false "Lookahead in days (default 7)"
// @Success 200 {object} response.Envelope
// @Router /api/v1/unified/sessions/upcoming [get]
func (h *UnifiedSessionHandler) Upcoming(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	days := 0
	if raw := strings.TrimSpace(c.Query("days")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "days must be a positive integer"))
			return
		}
		days = parsed
	}
	start := time.Now()
	sessions, cacheHit, err := h.service.Upcoming(c.Request.Context(), scope.learnerIDs, scope.tenantID, days, scope.kinds)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, sessions, cacheHit, start)
}

// Today godoc
// @Summary Sessions scheduled for the current UTC day
// @Tags Unified Sessions
// @Produce json
// @Param tenantId query string true "Tenant ID"
// @Param learnerIds query string false "Comma separated learner IDs"
// @Param kinds query string false "Comma separated kinds"
// @Success 200 {object} response.Envelope
// @Router /api/v1/unified/sessions/today [get]
func (h *UnifiedSessionHandler) Today(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	start := time.Now()
	sessions, err := h.service.Today(c.Request.Context(), scope.learnerIDs, scope.tenantID, scope.kinds)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, sessions, start)
}

// Ongoing godoc
// @Summary Sessions currently in progress
// @Tags Unified Sessions
// @Produce json
// @Param tenantId query string true "Tenant ID"
// @Param learnerIds query string false "Comma separated learner IDs"
// @Param kinds query string false "Comma separated kinds"
// @Success 200 {object} response.Envelope
// @Router /api/v1/unified/sessions/ongoing [get]
func (h *UnifiedSessionHandler) Ongoing(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	start := time.Now()
	sessions, err := h.service.Ongoing(c.Request.Context(), scope.learnerIDs, scope.tenantID, scope.kinds)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, sessions, start)
}

// Next godoc
// @Summary Earliest scheduled session for a learner
// @Tags Unified Sessions
// @Produce json
// @Param tenantId query string true "Tenant ID"
// @Param learnerId query string true "Learner ID"
// @Param kinds query string false "Comma separated kinds"
// @Success 200 {object} response.Envelope
// @Router /api/v1/unified/sessions/next [get]
func (h *UnifiedSessionHandler) Next(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	learnerID, ok := requireQuery(c, "learnerId")
	if !ok {
		return
	}
	start := time.Now()
	session, err := h.service.NextSession(c.Request.Context(), learnerID, scope.tenantID, scope.kinds)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, session, start)
}

// Calendar godoc
// @Summary Calendar events for a date range
// @Tags Unified Sessions
// @Produce json
// @Param tenantId query string true "Tenant ID"
// @Param learnerIds query string false "Comma separated learner IDs"
// @Param kinds query string false "Comma separated kinds"
// @Param start query string true "Range start (RFC3339 or YYYY-MM-DD)"
// @Param end query string true "Range end (RFC3339 or YYYY-MM-DD)"
// @Success 200 {object} response.Envelope
// @Router /api/v1/unified/sessions/calendar [get]
func (h *UnifiedSessionHandler) Calendar(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	rangeStart, err := parseTime(c, "start")
	if err != nil {
		response.Error(c, err)
		return
	}
	rangeEnd, err := parseTime(c, "end")
	if err != nil {
		response.Error(c, err)
		return
	}
	if rangeStart == nil || rangeEnd == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "start and end are required"))
		return
	}
	start := time.Now()
	events, cacheHit, err := h.service.CalendarEvents(c.Request.Context(), scope.learnerIDs, scope.tenantID, *rangeStart, *rangeEnd, scope.kinds)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, events, cacheHit, start)
}

// Counts godoc
// @Summary Session counts per status
// @Tags Unified Sessions
// @Produce json
// @Param tenantId query string true "Tenant ID"
// @Param learnerIds query string false "Comma separated learner IDs"
// @Param kinds query string false "Comma separated kinds"
// @Success 200 {object} response.Envelope
// @Router /api/v1/unified/sessions/counts [get]
func (h *UnifiedSessionHandler) Counts(c *gin.Context) {
	scope, ok := h.scope(c)
	if !ok {
		return
	}
	start := time.Now()
	counts, err := h.service.CountByStatus(c.Request.Context(), scope.learnerIDs, scope.tenantID, scope.kinds)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, counts, start)
}

// ClearCache godoc
// @Summary Drop cached session listings for a learner
// @Tags Unified Sessions
// @Param tenantId query string true "Tenant ID"
// @Param learnerId query string true "Learner ID"
// @Success 204
// @Router /api/v1/unified/sessions/cache [delete]
func (h *UnifiedSessionHandler) ClearCache(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	tenantID, ok := requireQuery(c, "tenantId")
	if !ok {
		return
	}
	learnerID, ok := requireQuery(c, "learnerId")
	if !ok {
		return
	}
	if err := h.service.ClearCacheForLearner(c.Request.Context(), learnerID, tenantID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
