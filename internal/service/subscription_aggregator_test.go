package service

import (
	"context"
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/models"
	appErrors "github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/errors"
)

type fakeSubscriptionStore struct {
	mu       sync.Mutex
	quran    []models.QuranSubscription
	academic []models.AcademicSubscription
	course   []models.CourseSubscription
	byID     map[string]models.SubscriptionRecord
	errs     map[models.Kind]error
	queries  map[models.Kind][]models.SubscriptionQuery
}

func (f *fakeSubscriptionStore) record(kind models.Kind, query models.SubscriptionQuery) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queries == nil {
		f.queries = map[models.Kind][]models.SubscriptionQuery{}
	}
	f.queries[kind] = append(f.queries[kind], query)
	return f.errs[kind]
}

func (f *fakeSubscriptionStore) calls(kind models.Kind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries[kind])
}

func (f *fakeSubscriptionStore) QuranSubscriptions(_ context.Context, query models.SubscriptionQuery) ([]models.QuranSubscription, error) {
	if err := f.record(models.KindQuran, query); err != nil {
		return nil, err
	}
	return append([]models.QuranSubscription(nil), f.quran...), nil
}

func (f *fakeSubscriptionStore) AcademicSubscriptions(_ context.Context, query models.SubscriptionQuery) ([]models.AcademicSubscription, error) {
	if err := f.record(models.KindAcademic, query); err != nil {
		return nil, err
	}
	return append([]models.AcademicSubscription(nil), f.academic...), nil
}

func (f *fakeSubscriptionStore) CourseSubscriptions(_ context.Context, query models.SubscriptionQuery) ([]models.CourseSubscription, error) {
	if err := f.record(models.KindCourse, query); err != nil {
		return nil, err
	}
	return append([]models.CourseSubscription(nil), f.course...), nil
}

func (f *fakeSubscriptionStore) GetByID(_ context.Context, kind models.Kind, id string) (models.SubscriptionRecord, error) {
	if err := f.errs[kind]; err != nil {
		return nil, err
	}
	record, ok := f.byID[string(kind)+":"+id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return record, nil
}

var subscriptionTestNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func sampleSubscriptionStore() *fakeSubscriptionStore {
	return &fakeSubscriptionStore{
		quran: []models.QuranSubscription{
			{ID: "q1", StudentID: "L1", Status: "active", TotalSessions: intRef(10), SessionsUsed: intRef(4), EndDate: timeRef(subscriptionTestNow.AddDate(0, 0, 5)), CreatedAt: subscriptionTestNow.AddDate(0, -1, 0)},
			{ID: "q2", StudentID: "L1", Status: "expired", TotalSessions: intRef(8), SessionsUsed: intRef(8), CreatedAt: subscriptionTestNow.AddDate(0, -6, 0)},
		},
		academic: []models.AcademicSubscription{
			{ID: "a1", StudentID: "L1", Status: "active", SessionsPerWeek: intRef(2), WeeksTotal: intRef(4), TotalSessionsCompleted: intRef(3), EndDate: timeRef(subscriptionTestNow.AddDate(0, 1, 0)), CreatedAt: subscriptionTestNow.AddDate(0, 0, -3)},
		},
		course: []models.CourseSubscription{
			{ID: "c1", StudentID: "L1", Status: "enrolled", CourseType: models.CourseTypeRecorded, TotalLessons: intRef(20), CompletedLessons: intRef(10), CreatedAt: subscriptionTestNow.AddDate(0, 0, -1)},
		},
	}
}

func newTestSubscriptionAggregator(store *fakeSubscriptionStore, cache CacheStore) *SubscriptionAggregator {
	var cacheService *CacheService
	if cache != nil {
		cacheService = NewCacheService(cache, nil, time.Minute, nil, true)
	}
	agg := NewSubscriptionAggregator(SubscriptionAggregatorParams{Store: store, Cache: cacheService})
	agg.now = func() time.Time { return subscriptionTestNow }
	return agg
}

func TestSubscriptionAggregatorForLearnerNewestFirst(t *testing.T) {
	store := sampleSubscriptionStore()
	agg := newTestSubscriptionAggregator(store, newMemoryCacheStore())

	subs, hit, err := agg.ForLearner(context.Background(), SubscriptionListRequest{LearnerID: "L1", TenantID: "T1", UseCache: true})
	require.NoError(t, err)
	assert.False(t, hit)

	ids := make([]string, len(subs))
	for i, sub := range subs {
		ids[i] = sub.ID
	}
	assert.Equal(t, []string{"c1", "a1", "q1", "q2"}, ids)
	assert.Equal(t, 8, subs[1].SessionsTotal)
	assert.Equal(t, 37.5, subs[1].ProgressPercent)

	_, hit, err = agg.ForLearner(context.Background(), SubscriptionListRequest{LearnerID: "L1", TenantID: "T1", UseCache: true})
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, store.calls(models.KindQuran))
}

func TestSubscriptionAggregatorValidation(t *testing.T) {
	agg := newTestSubscriptionAggregator(sampleSubscriptionStore(), nil)

	_, _, err := agg.ForLearner(context.Background(), SubscriptionListRequest{TenantID: "T1"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidScope)

	_, _, err = agg.ForLearner(context.Background(), SubscriptionListRequest{LearnerID: "L1"})
	assert.ErrorIs(t, err, appErrors.ErrInvalidScope)
}

func TestSubscriptionAggregatorForLearnersUncached(t *testing.T) {
	store := sampleSubscriptionStore()
	cache := newMemoryCacheStore()
	agg := newTestSubscriptionAggregator(store, cache)

	subs, err := agg.ForLearners(context.Background(), []string{"L2", "L1"}, "T1", nil, []models.Kind{models.KindCourse})
	require.NoError(t, err)
	assert.Len(t, subs, 1)
	assert.Equal(t, []string{"L1", "L2"}, store.queries[models.KindCourse][0].LearnerIDs)
	assert.Zero(t, store.calls(models.KindQuran))
	assert.Zero(t, cache.puts)

	subs, err = agg.ForLearners(context.Background(), nil, "T1", nil, nil)
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestSubscriptionAggregatorActiveFiltersStatus(t *testing.T) {
	store := sampleSubscriptionStore()
	agg := newTestSubscriptionAggregator(store, nil)

	_, _, err := agg.Active(context.Background(), "L1", "T1", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"active"}, store.queries[models.KindAcademic][0].Statuses)
}

func TestSubscriptionAggregatorGroupedByKind(t *testing.T) {
	agg := newTestSubscriptionAggregator(sampleSubscriptionStore(), nil)

	grouped, err := agg.GroupedByKind(context.Background(), "L1", "T1")
	require.NoError(t, err)
	assert.Len(t, grouped.Quran, 2)
	assert.Len(t, grouped.Academic, 1)
	assert.Len(t, grouped.Course, 1)
	assert.Equal(t, "q1", grouped.Quran[0].ID)
}

func TestSubscriptionAggregatorCountByStatus(t *testing.T) {
	agg := newTestSubscriptionAggregator(sampleSubscriptionStore(), nil)

	counts, err := agg.CountByStatus(context.Background(), "L1", "T1", nil)
	require.NoError(t, err)
	assert.Len(t, counts, 6)
	assert.Equal(t, 2, counts[models.SubscriptionStatusActive])
	assert.Equal(t, 1, counts[models.SubscriptionStatusCancelled])
	assert.Equal(t, 1, counts[models.SubscriptionStatusEnrolled])
	assert.Zero(t, counts[models.SubscriptionStatusPaused])
}

func TestSubscriptionAggregatorSummaryUsesActiveOnly(t *testing.T) {
	store := sampleSubscriptionStore()
	agg := newTestSubscriptionAggregator(store, newMemoryCacheStore())

	summary, err := agg.Summary(context.Background(), "L1", "T1")
	require.NoError(t, err)

	assert.Equal(t, 4, summary.TotalSubscriptions)
	assert.Equal(t, 2, summary.ActiveSubscriptions)
	assert.Equal(t, 2, summary.ByKind[models.KindQuran].Total)
	assert.Equal(t, 1, summary.ByKind[models.KindQuran].Active)
	assert.Equal(t, 0, summary.ByKind[models.KindCourse].Active)
	assert.Equal(t, 6+5, summary.TotalSessionsRemaining)
	assert.Equal(t, 4+3, summary.TotalSessionsUsed)
	assert.Equal(t, 1, summary.ExpiringSoon)

	_, err = agg.Summary(context.Background(), "L1", "T1")
	require.NoError(t, err)
	assert.Equal(t, 1, store.calls(models.KindQuran))
}

func TestSubscriptionAggregatorSummaryEmpty(t *testing.T) {
	agg := newTestSubscriptionAggregator(&fakeSubscriptionStore{}, nil)

	summary, err := agg.Summary(context.Background(), "L1", "T1")
	require.NoError(t, err)
	assert.Zero(t, summary.TotalSubscriptions)
	assert.Len(t, summary.ByKind, 3)
}

func TestSubscriptionAggregatorHasActiveSubscription(t *testing.T) {
	store := &fakeSubscriptionStore{quran: []models.QuranSubscription{{ID: "q1", Status: "active"}}}
	agg := newTestSubscriptionAggregator(store, nil)

	ok, err := agg.HasActiveSubscription(context.Background(), "L1", "T1", nil)
	require.NoError(t, err)
	assert.True(t, ok)

	course := models.KindCourse
	ok, err = agg.HasActiveSubscription(context.Background(), "L1", "T1", &course)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSubscriptionAggregatorGetByID(t *testing.T) {
	store := &fakeSubscriptionStore{byID: map[string]models.SubscriptionRecord{
		"academic:a9": &models.AcademicSubscription{ID: "a9", Status: "paused", TotalSessions: intRef(10), TotalSessionsCompleted: intRef(10)},
	}}
	agg := newTestSubscriptionAggregator(store, nil)

	sub, err := agg.GetByID(context.Background(), "a9", models.KindAcademic)
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, models.SubscriptionStatusPaused, sub.Status)
	assert.Equal(t, 100.0, sub.ProgressPercent)

	sub, err = agg.GetByID(context.Background(), "missing", models.KindQuran)
	require.NoError(t, err)
	assert.Nil(t, sub)

	_, err = agg.GetByID(context.Background(), "a9", "video")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	store.errs = map[models.Kind]error{models.KindCourse: errors.New("boom")}
	_, err = agg.GetByID(context.Background(), "c1", models.KindCourse)
	assert.ErrorIs(t, err, appErrors.ErrStoreUnavailable)
}

func TestSubscriptionAggregatorPropagatesStoreFailure(t *testing.T) {
	store := sampleSubscriptionStore()
	store.errs = map[models.Kind]error{models.KindCourse: errors.New("too many connections")}
	agg := newTestSubscriptionAggregator(store, nil)

	subs, _, err := agg.ForLearner(context.Background(), SubscriptionListRequest{LearnerID: "L1", TenantID: "T1"})
	assert.Nil(t, subs)
	assert.ErrorIs(t, err, appErrors.ErrStoreUnavailable)
}

func TestSubscriptionAggregatorClearCacheForLearner(t *testing.T) {
	cache := newMemoryCacheStore()
	agg := newTestSubscriptionAggregator(sampleSubscriptionStore(), cache)

	_, err := agg.Summary(context.Background(), "L1", "T1")
	require.NoError(t, err)
	_, _, err = agg.Active(context.Background(), "L1", "T1", nil)
	require.NoError(t, err)
	require.Len(t, cache.keys(), 2)

	require.NoError(t, agg.ClearCacheForLearner(context.Background(), "L1", "T1"))
	assert.Empty(t, cache.keys())
}

func TestSubscriptionAggregatorRejectsUnknownStatus(t *testing.T) {
	store := sampleSubscriptionStore()
	cache := newMemoryCacheStore()
	agg := newTestSubscriptionAggregator(store, cache)
	bogus := models.SubscriptionStatus("bogus")

	subs, _, err := agg.ForLearner(context.Background(), SubscriptionListRequest{LearnerID: "L1", TenantID: "T1", Status: &bogus, UseCache: true})
	assert.Nil(t, subs)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = agg.ForLearners(context.Background(), []string{"L1", "L2"}, "T1", &bogus, nil)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	for _, kind := range models.AllKinds() {
		assert.Zero(t, store.calls(kind))
	}
	assert.Empty(t, cache.keys())
}

func TestSubscriptionAggregatorRefreshesExpiryOnHit(t *testing.T) {
	store := sampleSubscriptionStore()
	agg := newTestSubscriptionAggregator(store, newMemoryCacheStore())
	agg.now = func() time.Time { return subscriptionTestNow.AddDate(0, 0, -10) }
	req := SubscriptionListRequest{LearnerID: "L1", TenantID: "T1", Kinds: []models.Kind{models.KindQuran}, UseCache: true}

	subs, hit, err := agg.ForLearner(context.Background(), req)
	require.NoError(t, err)
	require.False(t, hit)
	require.Equal(t, "q1", subs[0].ID)
	require.NotNil(t, subs[0].DaysRemaining)
	assert.Equal(t, 15, *subs[0].DaysRemaining)
	assert.False(t, subs[0].IsExpiringSoon)

	agg.now = func() time.Time { return subscriptionTestNow }
	subs, hit, err = agg.ForLearner(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, store.calls(models.KindQuran))
	require.NotNil(t, subs[0].DaysRemaining)
	assert.Equal(t, 5, *subs[0].DaysRemaining)
	assert.True(t, subs[0].IsExpiringSoon)
}

func TestSubscriptionAggregatorClearCacheAbsorbsCacheFailure(t *testing.T) {
	cache := newMemoryCacheStore()
	cache.err = errors.New("redis down")
	agg := newTestSubscriptionAggregator(sampleSubscriptionStore(), cache)
	metrics := NewMetricsService()
	agg.cache.metrics = metrics

	require.NoError(t, agg.ClearCacheForLearner(context.Background(), "L1", "T1"))
	assert.Equal(t, uint64(1), metrics.Snapshot().CacheFallbacks)
}
