package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/dto"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/models"
	appErrors "github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/errors"
)

type subscriptionStore interface {
	QuranSubscriptions(ctx context.Context, query models.SubscriptionQuery) ([]models.QuranSubscription, error)
	AcademicSubscriptions(ctx context.Context, query models.SubscriptionQuery) ([]models.AcademicSubscription, error)
	CourseSubscriptions(ctx context.Context, query models.SubscriptionQuery) ([]models.CourseSubscription, error)
	GetByID(ctx context.Context, kind models.Kind, id string) (models.SubscriptionRecord, error)
}

const subscriptionsForLearnerOp = "learner"

// SubscriptionAggregatorConfig tunes caching and store deadlines.
type SubscriptionAggregatorConfig struct {
	CacheTTL     time.Duration
	StoreTimeout time.Duration
}

// SubscriptionAggregatorParams groups constructor dependencies.
type SubscriptionAggregatorParams struct {
	Store      subscriptionStore
	Cache      *CacheService
	Classifier *RecordClassifier
	Metrics    *MetricsService
	Validator  *validator.Validate
	Logger     *zap.Logger
	Config     SubscriptionAggregatorConfig
}

// SubscriptionAggregator fetches subscriptions and course enrolments of every
// kind and returns them in the normalized view, newest first.
type SubscriptionAggregator struct {
	store      subscriptionStore
	cache      cacheReader
	classifier *RecordClassifier
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
	cfg        SubscriptionAggregatorConfig
}

// SubscriptionListRequest describes a single-learner subscription listing.
type SubscriptionListRequest struct {
	LearnerID string                     `validate:"required"`
	TenantID  string                     `validate:"required"`
	Status    *models.SubscriptionStatus `validate:"omitempty,subscription_status"`
	Kinds     []models.Kind              `validate:"omitempty,dive,kind"`
	UseCache  bool
}

type subscriptionScope struct {
	TenantID string                     `validate:"required"`
	Status   *models.SubscriptionStatus `validate:"omitempty,subscription_status"`
	Kinds    []models.Kind              `validate:"omitempty,dive,kind"`
}

// NewSubscriptionAggregator constructs a SubscriptionAggregator with sane defaults.
func NewSubscriptionAggregator(params SubscriptionAggregatorParams) *SubscriptionAggregator {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = defaultStoreTimeout
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	classifier := params.Classifier
	if classifier == nil {
		classifier = NewRecordClassifier(logger, params.Metrics, "", 0)
	}
	return &SubscriptionAggregator{
		store:      params.Store,
		cache:      cacheReader{cache: params.Cache, metrics: params.Metrics, logger: logger},
		classifier: classifier,
		metrics:    params.Metrics,
		validator:  newUnifiedValidator(params.Validator),
		logger:     logger,
		now:        time.Now,
		cfg:        cfg,
	}
}

// ForLearner lists one learner's subscriptions, newest first. The boolean
// reports a cache hit.
func (a *SubscriptionAggregator) ForLearner(ctx context.Context, req SubscriptionListRequest) ([]dto.NormalizedSubscription, bool, error) {
	if err := a.validator.Struct(req); err != nil {
		return nil, false, validationError(err)
	}
	kinds := models.NormalizeKinds(req.Kinds)
	now := a.now()

	key := buildCacheKey(subscriptionsNamespace, subscriptionsForLearnerOp, req.TenantID, []string{req.LearnerID}, subscriptionStatusKey(req.Status), kinds, nil, nil)
	if req.UseCache {
		var cached []dto.NormalizedSubscription
		if a.cache.load(ctx, key, &cached) {
			for i := range cached {
				cached[i].DaysRemaining = DaysRemaining(cached[i].EndDate, now)
				cached[i].IsExpiringSoon = IsExpiringSoon(cached[i].EndDate, now, a.classifier.expiryWindow)
			}
			return cached, true, nil
		}
	}

	subscriptions, err := a.fetch(ctx, models.SubscriptionQuery{
		TenantID:   req.TenantID,
		LearnerIDs: []string{req.LearnerID},
		Statuses:   subscriptionStatusFilter(req.Status),
	}, kinds, now)
	if err != nil {
		return nil, false, err
	}
	if req.UseCache {
		a.cache.save(ctx, key, subscriptions, a.cfg.CacheTTL)
	}
	return subscriptions, false, nil
}

// ForLearners lists the subscriptions of several learners without caching.
// An empty audience yields an empty result.
func (a *SubscriptionAggregator) ForLearners(ctx context.Context, learnerIDs []string, tenantID string, status *models.SubscriptionStatus, kinds []models.Kind) ([]dto.NormalizedSubscription, error) {
	if err := a.validator.Struct(subscriptionScope{TenantID: tenantID, Status: status, Kinds: kinds}); err != nil {
		return nil, validationError(err)
	}
	learners := canonicalIDs(learnerIDs)
	if len(learners) == 0 {
		return []dto.NormalizedSubscription{}, nil
	}
	return a.fetch(ctx, models.SubscriptionQuery{
		TenantID:   tenantID,
		LearnerIDs: learners,
		Statuses:   subscriptionStatusFilter(status),
	}, models.NormalizeKinds(kinds), a.now())
}

// Active lists the learner's active subscriptions.
func (a *SubscriptionAggregator) Active(ctx context.Context, learnerID, tenantID string, kinds []models.Kind) ([]dto.NormalizedSubscription, bool, error) {
	status := models.SubscriptionStatusActive
	return a.ForLearner(ctx, SubscriptionListRequest{
		LearnerID: learnerID,
		TenantID:  tenantID,
		Status:    &status,
		Kinds:     kinds,
		UseCache:  true,
	})
}

// GroupedByKind splits the learner's subscriptions by kind, preserving order.
func (a *SubscriptionAggregator) GroupedByKind(ctx context.Context, learnerID, tenantID string) (dto.GroupedSubscriptions, error) {
	subscriptions, _, err := a.ForLearner(ctx, SubscriptionListRequest{LearnerID: learnerID, TenantID: tenantID, UseCache: true})
	if err != nil {
		return dto.GroupedSubscriptions{}, err
	}
	grouped := dto.GroupedSubscriptions{
		Quran:    []dto.NormalizedSubscription{},
		Academic: []dto.NormalizedSubscription{},
		Course:   []dto.NormalizedSubscription{},
	}
	for _, sub := range subscriptions {
		switch sub.Kind {
		case models.KindQuran:
			grouped.Quran = append(grouped.Quran, sub)
		case models.KindAcademic:
			grouped.Academic = append(grouped.Academic, sub)
		case models.KindCourse:
			grouped.Course = append(grouped.Course, sub)
		}
	}
	return grouped, nil
}

// CountByStatus counts the learner's subscriptions per status. Every status is
// present in the result.
func (a *SubscriptionAggregator) CountByStatus(ctx context.Context, learnerID, tenantID string, kinds []models.Kind) (map[models.SubscriptionStatus]int, error) {
	subscriptions, _, err := a.ForLearner(ctx, SubscriptionListRequest{LearnerID: learnerID, TenantID: tenantID, Kinds: kinds, UseCache: true})
	if err != nil {
		return nil, err
	}
	counts := make(map[models.SubscriptionStatus]int, len(models.AllSubscriptionStatuses()))
	for _, status := range models.AllSubscriptionStatuses() {
		counts[status] = 0
	}
	for _, sub := range subscriptions {
		counts[sub.Status]++
	}
	return counts, nil
}

// Summary rolls the learner's subscriptions up from a single cached listing.
// Session totals and expiring counts only consider active subscriptions.
func (a *SubscriptionAggregator) Summary(ctx context.Context, learnerID, tenantID string) (dto.SubscriptionSummary, error) {
	subscriptions, _, err := a.ForLearner(ctx, SubscriptionListRequest{LearnerID: learnerID, TenantID: tenantID, UseCache: true})
	if err != nil {
		return dto.SubscriptionSummary{}, err
	}
	now := a.now()
	summary := dto.SubscriptionSummary{ByKind: make(map[models.Kind]dto.KindSubscriptionCount, len(models.AllKinds()))}
	for _, kind := range models.AllKinds() {
		summary.ByKind[kind] = dto.KindSubscriptionCount{}
	}
	for _, sub := range subscriptions {
		counts := summary.ByKind[sub.Kind]
		counts.Total++
		summary.TotalSubscriptions++
		if sub.IsActive {
			counts.Active++
			summary.ActiveSubscriptions++
			summary.TotalSessionsRemaining += sub.SessionsRemaining
			summary.TotalSessionsUsed += sub.SessionsUsed
			if IsExpiringSoon(sub.EndDate, now, a.classifier.expiryWindow) {
				summary.ExpiringSoon++
			}
		}
		summary.ByKind[sub.Kind] = counts
	}
	return summary, nil
}

// HasActiveSubscription reports whether the learner holds an active
// subscription, optionally of one kind.
func (a *SubscriptionAggregator) HasActiveSubscription(ctx context.Context, learnerID, tenantID string, kind *models.Kind) (bool, error) {
	var kinds []models.Kind
	if kind != nil {
		kinds = []models.Kind{*kind}
	}
	active, _, err := a.Active(ctx, learnerID, tenantID, kinds)
	if err != nil {
		return false, err
	}
	return len(active) > 0, nil
}

// GetByID loads one subscription, or nil when it does not exist.
func (a *SubscriptionAggregator) GetByID(ctx context.Context, id string, kind models.Kind) (*dto.NormalizedSubscription, error) {
	if id == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "id is required")
	}
	if !kind.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "invalid kind")
	}
	ctx, cancel := withStoreTimeout(ctx, a.cfg.StoreTimeout)
	defer cancel()

	start := time.Now()
	record, err := a.store.GetByID(ctx, kind, id)
	a.metrics.ObserveStoreQuery("subscription_by_id", kind, time.Since(start))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, appErrors.StoreError(err, "failed to load subscription")
	}
	view := a.classifier.NormalizeSubscription(record, a.now())
	return &view, nil
}

// ClearCacheForLearner forgets the learner's default-argument listing.
func (a *SubscriptionAggregator) ClearCacheForLearner(ctx context.Context, learnerID, tenantID string) error {
	if err := requireLearnerScope(learnerID, tenantID); err != nil {
		return err
	}
	key := buildCacheKey(subscriptionsNamespace, subscriptionsForLearnerOp, tenantID, []string{learnerID}, "", nil, nil, nil)
	active := buildCacheKey(subscriptionsNamespace, subscriptionsForLearnerOp, tenantID, []string{learnerID}, string(models.SubscriptionStatusActive), nil, nil, nil)
	a.cache.forget(ctx, key, active)
	return nil
}

// ClearCacheForTenant relies on TTL expiry.
func (a *SubscriptionAggregator) ClearCacheForTenant(_ context.Context, tenantID string) {
	a.logger.Debug("tenant subscription cache left to expire", zap.String("tenant_id", tenantID), zap.Duration("ttl", a.cfg.CacheTTL))
}

// ClearAllCache relies on TTL expiry.
func (a *SubscriptionAggregator) ClearAllCache(_ context.Context) {
	a.logger.Debug("subscription cache left to expire", zap.Duration("ttl", a.cfg.CacheTTL))
}

func (a *SubscriptionAggregator) fetch(ctx context.Context, query models.SubscriptionQuery, kinds []models.Kind, now time.Time) ([]dto.NormalizedSubscription, error) {
	ctx, cancel := withStoreTimeout(ctx, a.cfg.StoreTimeout)
	defer cancel()

	results := make([][]models.SubscriptionRecord, len(kinds))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		i, kind := i, kind
		group.Go(func() error {
			records, err := a.fetchKind(groupCtx, kind, query)
			if err != nil {
				return appErrors.StoreError(err, "failed to load "+string(kind)+" subscriptions")
			}
			results[i] = records
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	subscriptions := make([]dto.NormalizedSubscription, 0)
	for _, records := range results {
		for _, record := range records {
			view := a.classifier.NormalizeSubscription(record, now)
			id := string(view.Kind) + ":" + view.ID
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			subscriptions = append(subscriptions, view)
		}
	}
	sort.SliceStable(subscriptions, func(i, j int) bool {
		x, y := subscriptions[i], subscriptions[j]
		if !x.CreatedAt.Equal(y.CreatedAt) {
			return x.CreatedAt.After(y.CreatedAt)
		}
		if x.Kind != y.Kind {
			return kindRank(x.Kind) < kindRank(y.Kind)
		}
		return x.ID < y.ID
	})
	return subscriptions, nil
}

func (a *SubscriptionAggregator) fetchKind(ctx context.Context, kind models.Kind, query models.SubscriptionQuery) ([]models.SubscriptionRecord, error) {
	start := time.Now()
	defer func() {
		a.metrics.ObserveStoreQuery("subscriptions", kind, time.Since(start))
	}()
	switch kind {
	case models.KindQuran:
		rows, err := a.store.QuranSubscriptions(ctx, query)
		if err != nil {
			return nil, err
		}
		records := make([]models.SubscriptionRecord, len(rows))
		for i := range rows {
			records[i] = &rows[i]
		}
		return records, nil
	case models.KindAcademic:
		rows, err := a.store.AcademicSubscriptions(ctx, query)
		if err != nil {
			return nil, err
		}
		records := make([]models.SubscriptionRecord, len(rows))
		for i := range rows {
			records[i] = &rows[i]
		}
		return records, nil
	case models.KindCourse:
		rows, err := a.store.CourseSubscriptions(ctx, query)
		if err != nil {
			return nil, err
		}
		records := make([]models.SubscriptionRecord, len(rows))
		for i := range rows {
			records[i] = &rows[i]
		}
		return records, nil
	default:
		return nil, nil
	}
}

func subscriptionStatusKey(status *models.SubscriptionStatus) string {
	if status == nil {
		return ""
	}
	return string(*status)
}

func subscriptionStatusFilter(status *models.SubscriptionStatus) []string {
	if status == nil {
		return nil
	}
	return subscriptionStatusValues(*status)
}
