package handler

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/middleware"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/models"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/service"
	appErrors "github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/errors"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/response"
)

const dateLayout = "2006-01-02"

// splitQuery reads a comma separated query parameter, accepting repeated keys too.
func splitQuery(c *gin.Context, key string) []string {
	var values []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				values = append(values, trimmed)
			}
		}
	}
	return values
}

func parseKinds(c *gin.Context) ([]models.Kind, error) {
	raw := splitQuery(c, "kinds")
	if len(raw) == 0 {
		return nil, nil
	}
	kinds := make([]models.Kind, 0, len(raw))
	for _, value := range raw {
		kind, ok := models.ParseKind(value)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown kind: "+value)
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func parseSessionStatus(c *gin.Context) (*models.SessionStatus, error) {
	raw := strings.TrimSpace(c.Query("status"))
	if raw == "" {
		return nil, nil
	}
	status, ok := service.SessionStatusOf(raw)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown session status: "+raw)
	}
	return &status, nil
}

func parseSubscriptionStatus(c *gin.Context) (*models.SubscriptionStatus, error) {
	raw := strings.TrimSpace(c.Query("status"))
	if raw == "" {
		return nil, nil
	}
	status, ok := service.SubscriptionStatusOf(raw)
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown subscription status: "+raw)
	}
	return &status, nil
}

// parseTime accepts RFC3339 timestamps or plain dates interpreted as UTC midnight.
func parseTime(c *gin.Context, key string) (*time.Time, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	if parsed, err := time.Parse(time.RFC3339, raw); err == nil {
		utc := parsed.UTC()
		return &utc, nil
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid "+key+", expected RFC3339 or YYYY-MM-DD")
	}
	return &parsed, nil
}

// useCache defaults to true unless the caller passes cache=false.
func useCache(c *gin.Context) bool {
	raw := strings.TrimSpace(c.Query("cache"))
	if raw == "" {
		return true
	}
	enabled, err := strconv.ParseBool(raw)
	if err != nil {
		return true
	}
	return enabled
}

func requireQuery(c *gin.Context, key string) (string, bool) {
	value := strings.TrimSpace(c.Query(key))
	if value == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, key+" is required"))
		return "", false
	}
	return value, true
}

func respondWithMeta(c *gin.Context, data interface{}, start time.Time) {
	middleware.SetProcessingTime(c, time.Since(start))
	response.JSON(c, http.StatusOK, data, middleware.ExtractMeta(c))
}

func respondCached(c *gin.Context, data interface{}, cacheHit bool, start time.Time) {
	middleware.SetCacheHit(c, cacheHit)
	respondWithMeta(c, data, start)
}
