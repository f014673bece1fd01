package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	appErrors "github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/errors"
)

// CacheStore is the external key/value contract. Get returns
// appErrors.ErrCacheMiss when the key is absent or expired.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Forget(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
}

// CacheService orchestrates cache operations and related metrics.
type CacheService struct {
	store      CacheStore
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service.
func NewCacheService(store CacheStore, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{store: store, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.store != nil
}

// Get decodes a cached entry into dest and reports whether the cache was hit.
// Store failures come back as ErrCacheUnavailable.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	start := time.Now()
	payload, err := s.store.Get(ctx, key)
	duration := time.Since(start)
	if err != nil {
		s.metrics.RecordCacheLookup(key, false, duration)
		if errors.Is(err, appErrors.ErrCacheMiss) {
			return false, nil
		}
		return false, appErrors.CacheError(err, "cache read failed")
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		s.metrics.RecordCacheLookup(key, false, duration)
		s.logger.Warn("discarding undecodable cache entry", zap.String("key", key), zap.Error(err))
		return false, nil
	}
	s.metrics.RecordCacheLookup(key, true, duration)
	return true, nil
}

// Set encodes value and stores it. A non-positive ttl uses the default.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if !s.Enabled() {
		return nil
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cache value for %s: %w", key, err)
	}
	start := time.Now()
	err = s.store.Put(ctx, key, payload, ttl)
	s.metrics.ObserveCacheWrite(key, time.Since(start))
	if err != nil {
		return appErrors.CacheError(err, "cache write failed")
	}
	return nil
}

// Has reports whether key is currently cached.
func (s *CacheService) Has(ctx context.Context, key string) (bool, error) {
	if !s.Enabled() {
		return false, nil
	}
	ok, err := s.store.Has(ctx, key)
	if err != nil {
		return false, appErrors.CacheError(err, "cache lookup failed")
	}
	return ok, nil
}

// Forget removes the exact keys given.
func (s *CacheService) Forget(ctx context.Context, keys ...string) error {
	if !s.Enabled() {
		return nil
	}
	var errs []error
	for _, key := range keys {
		if err := s.store.Forget(ctx, key); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return appErrors.CacheError(errors.Join(errs...), "cache invalidation failed")
	}
	return nil
}
