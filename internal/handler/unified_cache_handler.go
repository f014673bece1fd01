package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	appErrors "github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/errors"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/response"
)

// cacheInvalidator is implemented by every unified service.
type cacheInvalidator interface {
	ClearCacheForLearner(ctx context.Context, learnerID, tenantID string) error
	ClearCacheForTenant(ctx context.Context, tenantID string)
	ClearAllCache(ctx context.Context)
}

// UnifiedCacheHandler fans invalidation out to every unified service.
type UnifiedCacheHandler struct {
	services []cacheInvalidator
}

// NewUnifiedCacheHandler constructs the handler.
func NewUnifiedCacheHandler(services ...cacheInvalidator) *UnifiedCacheHandler {
	return &UnifiedCacheHandler{services: services}
}

// Clear godoc
// @Summary Invalidate unified caches
// @Description With learnerId and tenantId the learner's entries are dropped. With only tenantId the tenant scope is cleared, and without either every entry is. Invalidation is best-effort and always answers 204.
// @Tags Unified Cache
// @Param tenantId query string false "Tenant ID"
// @Param learnerId query string false "Learner ID"
// @Success 204
// @Router /api/v1/unified/cache [delete]
func (h *UnifiedCacheHandler) Clear(c *gin.Context) {
	ctx := c.Request.Context()
	tenantID := strings.TrimSpace(c.Query("tenantId"))
	learnerID := strings.TrimSpace(c.Query("learnerId"))

	switch {
	case learnerID != "" && tenantID == "":
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "tenantId is required with learnerId"))
		return
	case learnerID != "":
		for _, svc := range h.services {
			if err := svc.ClearCacheForLearner(ctx, learnerID, tenantID); err != nil {
				_ = c.Error(err)
			}
		}
	case tenantID != "":
		for _, svc := range h.services {
			svc.ClearCacheForTenant(ctx, tenantID)
		}
	default:
		for _, svc := range h.services {
			svc.ClearAllCache(ctx)
		}
	}
	response.NoContent(c)
}
