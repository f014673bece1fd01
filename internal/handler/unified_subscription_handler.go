package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/dto"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/models"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/service"
	appErrors "github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/errors"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/response"
)

type unifiedSubscriptionService interface {
	ForLearner(ctx context.Context, req service.SubscriptionListRequest) ([]dto.NormalizedSubscription, bool, error)
	ForLearners(ctx context.Context, learnerIDs []string, tenantID string, status *models.SubscriptionStatus, kinds []models.Kind) ([]dto.NormalizedSubscription, error)
	Active(ctx context.Context, learnerID, tenantID string, kinds []models.Kind) ([]dto.NormalizedSubscription, bool, error)
	GroupedByKind(ctx context.Context, learnerID, tenantID string) (dto.GroupedSubscriptions, error)
	CountByStatus(ctx context.Context, learnerID, tenantID string, kinds []models.Kind) (map[models.SubscriptionStatus]int, error)
	Summary(ctx context.Context, learnerID, tenantID string) (dto.SubscriptionSummary, error)
	HasActiveSubscription(ctx context.Context, learnerID, tenantID string, kind *models.Kind) (bool, error)
	GetByID(ctx context.Context, id string, kind models.Kind) (*dto.NormalizedSubscription, error)
	ClearCacheForLearner(ctx context.Context, learnerID, tenantID string) error
}

// UnifiedSubscriptionHandler exposes the subscription aggregator over HTTP.
type UnifiedSubscriptionHandler struct {
	service unifiedSubscriptionService
}

// NewUnifiedSubscriptionHandler constructs the handler.
func NewUnifiedSubscriptionHandler(service unifiedSubscriptionService) *UnifiedSubscriptionHandler {
	return &UnifiedSubscriptionHandler{service: service}
}

// learner reads the tenantId and learnerId every learner-scoped endpoint needs.
func (h *UnifiedSubscriptionHandler) learner(c *gin.Context) (string, string, bool) {
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

// List godoc
// @Summary Subscriptions of every kind for a learner
// @Tags Unified Subscriptions
// @Produce json
// @Param tenantId query string true "Tenant ID"
// @Param learnerId query string true "Learner ID"
// @Param kinds query string false "Comma separated kinds (quran, academic, course)"
// @Param status query string false "Subscription status"
// @Param cache query bool false "Use the cache (default true)"
// @Success 200 {object} response.Envelope
// @Router /api/v1/unified/subscriptions [get]
func (h *UnifiedSubscriptionHandler) List(c *gin.Context) {
	learnerID, tenantID, ok := h.learner(c)
	if !ok {
		return
	}
	kinds, err := parseKinds(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	status, err := parseSubscriptionStatus(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	subscriptions, cacheHit, err := h.service.ForLearner(c.Request.Context(), service.SubscriptionListRequest{
		LearnerID: learnerID,
		TenantID:  tenantID,
		Status:    status,
		Kinds:     kinds,
		UseCache:  useCache(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, subscriptions, cacheHit, start)
}

// Batch godoc
// @Summary Subscriptions for several learners
// @Tags Unified Subscriptions
// @Produce json
// @Param tenantId query string true "Tenant ID"
// @Param learnerIds query string true "Comma separated learner IDs"
// @Param kinds query string false "Comma separated kinds"
// @Param status query string false "Subscription status"
// @Success 200 {object} response.Envelope
// @Router /api/v1/unified/subscriptions/batch [get]
func (h *UnifiedSubscriptionHandler) Batch(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	tenantID, ok := requireQuery(c, "tenantId")
	if !ok {
		return
	}
	kinds, err := parseKinds(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	status, err := parseSubscriptionStatus(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	subscriptions, err := h.service.ForLearners(c.Request.Context(), splitQuery(c, "learnerIds"), tenantID, status, kinds)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, subscriptions, start)
}

// Active godoc
// @Summary Active subscriptions for a learner
// @Tags Unified Subscriptions
// @Produce json
// @Param tenantId query string true "Tenant ID"
// @Param learnerId query string true "Learner ID"
// @Param kinds query string false "Comma separated kinds"
// @Success 200 {object} response.Envelope
// @Router /api/v1/unified/subscriptions/active [get]
func (h *UnifiedSubscriptionHandler) Active(c *gin.Context) {
	learnerID, tenantID, ok := h.learner(c)
	if !ok {
		return
	}
	kinds, err := parseKinds(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	subscriptions, cacheHit, err := h.service.Active(c.Request.Context(), learnerID, tenantID, kinds)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondCached(c, subscriptions, cacheHit, start)
}

// Grouped godoc
// @Summary Learner subscriptions grouped by kind
// @Tags Unified Subscriptions
// @Produce json
// @Param tenantId query string true "Tenant ID"
// @Param learnerId query string true "Learner ID"
// @Success 200 {object} response.Envelope
// @Router /api/v1/unified/subscriptions/grouped [get]
func (h *UnifiedSubscriptionHandler) Grouped(c *gin.Context) {
	learnerID, tenantID, ok := h.learner(c)
	if !ok {
		return
	}
	start := time.Now()
	grouped, err := h.service.GroupedByKind(c.Request.Context(), learnerID, tenantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, grouped, start)
}

// Counts godoc
// @Summary Subscription counts per status
// @Tags Unified Subscriptions
// @Produce json
// @Param tenantId query string true "Tenant ID"
// @Param learnerId query string true "Learner ID"
// @Param kinds query string false "Comma separated kinds"
// @Success 200 {object} response.Envelope
// @Router /api/v1/unified/subscriptions/counts [get]
func (h *UnifiedSubscriptionHandler) Counts(c *gin.Context) {
	learnerID, tenantID, ok := h.learner(c)
	if !ok {
		return
	}
	kinds, err := parseKinds(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	start := time.Now()
	counts, err := h.service.CountByStatus(c.Request.Context(), learnerID, tenantID, kinds)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, counts, start)
}

// Summary godoc
// @Summary Subscription rollup for the learner dashboard
// @Tags Unified Subscriptions
// @Produce json
// @Param tenantId query string true "Tenant ID"
// @Param learnerId query string true "Learner ID"
// @Success 200 {object} response.Envelope
// @Router /api/v1/unified/subscriptions/summary [get]
func (h *UnifiedSubscriptionHandler) Summary(c *gin.Context) {
	learnerID, tenantID, ok := h.learner(c)
	if !ok {
		return
	}
	start := time.Now()
	summary, err := h.service.Summary(c.Request.Context(), learnerID, tenantID)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, summary, start)
}

// HasActive godoc
// @Summary Whether the learner holds an active subscription
// @Tags Unified Subscriptions
// @Produce json
// @Param tenantId query string true "Tenant ID"
// @Param learnerId query string true "Learner ID"
// @Param kind query string false "Restrict to one kind"
// @Success 200 {object} response.Envelope
// @Router /api/v1/unified/subscriptions/has-active [get]
func (h *UnifiedSubscriptionHandler) HasActive(c *gin.Context) {
	learnerID, tenantID, ok := h.learner(c)
	if !ok {
		return
	}
	var kind *models.Kind
	if raw := strings.TrimSpace(c.Query("kind")); raw != "" {
		parsed, valid := models.ParseKind(raw)
		if !valid {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown kind: "+raw))
			return
		}
		kind = &parsed
	}
	start := time.Now()
	active, err := h.service.HasActiveSubscription(c.Request.Context(), learnerID, tenantID, kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	respondWithMeta(c, gin.H{"has_active": active}, start)
}

// Get godoc
// @Summary Load one subscription by kind and ID
// @Tags Unified Subscriptions
// @Produce json
// @Param kind path string true "Kind (quran, academic, course)"
// @Param id path string true "Subscription ID"
// @Success 200 {object} response.Envelope
// @Router /api/v1/unified/subscriptions/{kind}/{id} [get]
func (h *UnifiedSubscriptionHandler) Get(c *gin.Context) {
	if h.service == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	rawKind := strings.TrimSpace(c.Param("kind"))
	kind, valid := models.ParseKind(rawKind)
	if !valid {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "unknown kind: "+rawKind))
		return
	}
	start := time.Now()
	subscription, err := h.service.GetByID(c.Request.Context(), strings.TrimSpace(c.Param("id")), kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	if subscription == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "subscription not found"))
		return
	}
	respondWithMeta(c, subscription, start)
}

// ClearCache godoc
// @Summary Drop cached subscription listings for a learner
// @Tags Unified Subscriptions
// @Param tenantId query string true "Tenant ID"
// @Param learnerId query string true "Learner ID"
// @Success 204
// @Router /api/v1/unified/subscriptions/cache [delete]
func (h *UnifiedSubscriptionHandler) ClearCache(c *gin.Context) {
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
