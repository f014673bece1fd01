package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/models"
	appErrors "github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/errors"
)

const defaultStoreTimeout = 5 * time.Second

// scopeFields are the request fields whose absence is a scope error rather
// than a plain validation failure.
var scopeFields = map[string]struct{}{
	"TenantID":     {},
	"LearnerID":    {},
	"InstructorID": {},
}

// newUnifiedValidator registers the custom tags used by the unified request types.
func newUnifiedValidator(validate *validator.Validate) *validator.Validate {
	if validate == nil {
		validate = validator.New()
	}
	validate.RegisterValidation("kind", func(fl validator.FieldLevel) bool {
		return models.Kind(fl.Field().String()).Valid()
	})
	validate.RegisterValidation("session_status", func(fl validator.FieldLevel) bool {
		return models.SessionStatus(fl.Field().String()).Valid()
	})
	validate.RegisterValidation("subscription_status", func(fl validator.FieldLevel) bool {
		return models.SubscriptionStatus(fl.Field().String()).Valid()
	})
	return validate
}

// validationError converts validator output into the typed error taxonomy.
func validationError(err error) error {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return appErrors.Clone(appErrors.ErrValidation, err.Error())
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if _, ok := scopeFields[fe.Field()]; ok {
			return appErrors.Clone(appErrors.ErrInvalidScope, strings.ToLower(fe.Field()[:1])+fe.Field()[1:]+" is required")
		}
		fields = append(fields, fe.Field())
	}
	return appErrors.Clone(appErrors.ErrValidation, "invalid "+strings.Join(fields, ", "))
}

// withStoreTimeout bounds a store call when the caller did not set a deadline.
func withStoreTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}

// cacheReader wraps the read-through steps shared by the aggregators.
type cacheReader struct {
	cache   *CacheService
	metrics *MetricsService
	logger  *zap.Logger
}

// load reports a hit only when dest was filled. Cache failures are logged and
// treated as a miss.
func (r cacheReader) load(ctx context.Context, key string, dest interface{}) bool {
	if r.cache == nil {
		return false
	}
	hit, err := r.cache.Get(ctx, key, dest)
	if err != nil {
		r.metrics.RecordCacheFallback()
		r.logger.Warn("cache unavailable, reading from store", zap.String("key", key), zap.Error(err))
		return false
	}
	return hit
}

func (r cacheReader) save(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Set(ctx, key, value, ttl); err != nil {
		r.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// forget drops keys. Invalidation is best-effort: a failing cache is logged and
// counted, and the entries expire with their TTL.
func (r cacheReader) forget(ctx context.Context, keys ...string) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Forget(ctx, keys...); err != nil {
		r.metrics.RecordCacheFallback()
		r.logger.Warn("cache invalidation failed, entries left to expire", zap.Strings("keys", keys), zap.Error(err))
	}
}

func requireLearnerScope(learnerID, tenantID string) error {
	if strings.TrimSpace(tenantID) == "" {
		return appErrors.Clone(appErrors.ErrInvalidScope, "tenantId is required")
	}
	if strings.TrimSpace(learnerID) == "" {
		return appErrors.Clone(appErrors.ErrInvalidScope, "learnerId is required")
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// startOfWeek returns Monday 00:00 UTC of t's week.
func startOfWeek(t time.Time) time.Time {
	day := startOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

func startOfMonth(t time.Time) time.Time {
	y, m, _ := t.UTC().Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
}
