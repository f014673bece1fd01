package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/models"
	appErrors "github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/errors"
)

type fakeSessionStore struct {
	mu       sync.Mutex
	quran    []models.QuranSession
	academic []models.AcademicSession
	course   []models.CourseSession
	errs     map[models.Kind]error
	queries  map[models.Kind][]models.SessionQuery
}

func (f *fakeSessionStore) record(kind models.Kind, query models.SessionQuery) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.queries == nil {
		f.queries = map[models.Kind][]models.SessionQuery{}
	}
	f.queries[kind] = append(f.queries[kind], query)
	return f.errs[kind]
}

func (f *fakeSessionStore) calls(kind models.Kind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queries[kind])
}

func (f *fakeSessionStore) QuranSessions(_ context.Context, query models.SessionQuery) ([]models.QuranSession, error) {
	if err := f.record(models.KindQuran, query); err != nil {
		return nil, err
	}
	return append([]models.QuranSession(nil), f.quran...), nil
}

func (f *fakeSessionStore) AcademicSessions(_ context.Context, query models.SessionQuery) ([]models.AcademicSession, error) {
	if err := f.record(models.KindAcademic, query); err != nil {
		return nil, err
	}
	return append([]models.AcademicSession(nil), f.academic...), nil
}

func (f *fakeSessionStore) CourseSessions(_ context.Context, query models.SessionQuery) ([]models.CourseSession, error) {
	if err := f.record(models.KindCourse, query); err != nil {
		return nil, err
	}
	return append([]models.CourseSession(nil), f.course...), nil
}

func newTestSessionAggregator(store *fakeSessionStore, cache CacheStore, now time.Time) *SessionAggregator {
	var cacheService *CacheService
	if cache != nil {
		cacheService = NewCacheService(cache, nil, time.Minute, nil, true)
	}
	agg := NewSessionAggregator(SessionAggregatorParams{Store: store, Cache: cacheService})
	agg.now = func() time.Time { return now }
	return agg
}

func scenarioSessionStore() *fakeSessionStore {
	completedAt := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	scheduledAt := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	return &fakeSessionStore{
		quran:    []models.QuranSession{{ID: "1", AcademyID: "T1", Status: "completed", ScheduledAt: &completedAt, StudentID: strRef("L1")}},
		academic: []models.AcademicSession{{ID: "1", AcademyID: "T1", Status: "scheduled", ScheduledAt: &scheduledAt, StudentID: strRef("L1")}},
	}
}

func TestSessionAggregatorForLearnersScenario(t *testing.T) {
	store := scenarioSessionStore()
	agg := newTestSessionAggregator(store, nil, time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC))

	sessions, hit, err := agg.ForLearners(context.Background(), SessionListRequest{LearnerIDs: []string{"L1"}, TenantID: "T1"})
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, sessions, 2)
	assert.Equal(t, models.KindQuran, sessions[0].Kind)
	assert.Equal(t, models.KindAcademic, sessions[1].Kind)
	assert.False(t, sessions[0].CanJoin)
	assert.False(t, sessions[1].CanJoin)

	require.Len(t, store.queries[models.KindCourse], 1)
	query := store.queries[models.KindQuran][0]
	assert.Equal(t, "T1", query.TenantID)
	assert.Equal(t, []string{"L1"}, query.LearnerIDs)
	assert.Empty(t, query.Statuses)
}

func TestSessionAggregatorOrdersAcrossKindsWithNullsLast(t *testing.T) {
	base := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	store := &fakeSessionStore{
		quran: []models.QuranSession{
			{ID: "q-late", Status: "scheduled", ScheduledAt: timeRef(base.Add(5 * time.Hour))},
			{ID: "q-none", Status: "unscheduled"},
			{ID: "q-tie", Status: "scheduled", ScheduledAt: timeRef(base.Add(time.Hour))},
		},
		academic: []models.AcademicSession{
			{ID: "a-early", Status: "scheduled", ScheduledAt: timeRef(base)},
			{ID: "a-none", Status: "pending"},
		},
		course: []models.CourseSession{
			{ID: "c-tie", Status: "scheduled", ScheduledAt: timeRef(base.Add(time.Hour))},
			{ID: "c-mid", Status: "scheduled", ScheduledAt: timeRef(base.Add(3 * time.Hour))},
		},
	}
	agg := newTestSessionAggregator(store, nil, base.AddDate(0, 0, -1))

	sessions, _, err := agg.ForLearners(context.Background(), SessionListRequest{LearnerIDs: []string{"L1"}, TenantID: "T1"})
	require.NoError(t, err)

	ids := make([]string, len(sessions))
	for i, s := range sessions {
		ids[i] = s.ID
	}
	assert.Equal(t, []string{"a-early", "q-tie", "c-tie", "c-mid", "q-late", "q-none", "a-none"}, ids)

	for i := 1; i < len(sessions); i++ {
		prev, cur := sessions[i-1].ScheduledAt, sessions[i].ScheduledAt
		if prev != nil && cur != nil {
			assert.False(t, cur.Before(*prev))
		}
		if prev == nil {
			assert.Nil(t, cur)
		}
	}
}

func TestSessionAggregatorDeduplicatesByKindAndID(t *testing.T) {
	at := time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)
	store := &fakeSessionStore{
		quran:    []models.QuranSession{{ID: "7", Status: "scheduled", ScheduledAt: &at}, {ID: "7", Status: "scheduled", ScheduledAt: &at}},
		academic: []models.AcademicSession{{ID: "7", Status: "scheduled", ScheduledAt: &at}},
	}
	agg := newTestSessionAggregator(store, nil, at)

	sessions, _, err := agg.ForLearners(context.Background(), SessionListRequest{LearnerIDs: []string{"L1", "L2"}, TenantID: "T1"})
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
}

func TestSessionAggregatorEmptyAudienceShortCircuits(t *testing.T) {
	store := scenarioSessionStore()
	agg := newTestSessionAggregator(store, nil, time.Now())

	sessions, hit, err := agg.ForLearners(context.Background(), SessionListRequest{LearnerIDs: []string{" ", ""}, TenantID: "T1"})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.NotNil(t, sessions)
	assert.Empty(t, sessions)
	assert.Zero(t, store.calls(models.KindQuran))
}

func TestSessionAggregatorValidation(t *testing.T) {
	agg := newTestSessionAggregator(scenarioSessionStore(), nil, time.Now())

	_, _, err := agg.ForLearners(context.Background(), SessionListRequest{LearnerIDs: []string{"L1"}})
	assert.ErrorIs(t, err, appErrors.ErrInvalidScope)

	_, _, err = agg.ForLearners(context.Background(), SessionListRequest{LearnerIDs: []string{"L1"}, TenantID: "T1", Kinds: []models.Kind{"video"}})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = agg.ForInstructor(context.Background(), InstructorSessionRequest{TenantID: "T1", Kind: models.KindQuran})
	assert.ErrorIs(t, err, appErrors.ErrInvalidScope)
}

func TestSessionAggregatorPropagatesStoreFailure(t *testing.T) {
	store := scenarioSessionStore()
	store.errs = map[models.Kind]error{models.KindAcademic: errors.New("connection reset")}
	agg := newTestSessionAggregator(store, newMemoryCacheStore(), time.Now())

	sessions, _, err := agg.ForLearners(context.Background(), SessionListRequest{LearnerIDs: []string{"L1"}, TenantID: "T1", UseCache: true})
	assert.Nil(t, sessions)
	assert.ErrorIs(t, err, appErrors.ErrStoreUnavailable)
}

func TestSessionAggregatorMapsDeadline(t *testing.T) {
	store := scenarioSessionStore()
	store.errs = map[models.Kind]error{models.KindQuran: context.DeadlineExceeded}
	agg := newTestSessionAggregator(store, nil, time.Now())

	_, _, err := agg.ForLearners(context.Background(), SessionListRequest{LearnerIDs: []string{"L1"}, TenantID: "T1"})
	assert.ErrorIs(t, err, appErrors.ErrDeadlineExceeded)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSessionAggregatorCachedReadsAreIdentical(t *testing.T) {
	store := scenarioSessionStore()
	cache := newMemoryCacheStore()
	agg := newTestSessionAggregator(store, cache, time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC))
	req := SessionListRequest{LearnerIDs: []string{"L1"}, TenantID: "T1", UseCache: true}

	first, hit, err := agg.ForLearners(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, hit)

	second, hit, err := agg.ForLearners(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 1, store.calls(models.KindQuran))

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.JSONEq(t, string(firstJSON), string(secondJSON))
	assert.Equal(t, firstJSON, secondJSON)
}

func TestSessionAggregatorBypassesCacheWhenDisabled(t *testing.T) {
	store := scenarioSessionStore()
	cache := newMemoryCacheStore()
	agg := newTestSessionAggregator(store, cache, time.Now())
	req := SessionListRequest{LearnerIDs: []string{"L1"}, TenantID: "T1"}

	_, _, err := agg.ForLearners(context.Background(), req)
	require.NoError(t, err)
	_, hit, err := agg.ForLearners(context.Background(), req)
	require.NoError(t, err)

	assert.False(t, hit)
	assert.Zero(t, cache.puts)
	assert.Zero(t, cache.gets)
	assert.Equal(t, 2, store.calls(models.KindQuran))
}

func TestSessionAggregatorFallsBackWhenCacheFails(t *testing.T) {
	store := scenarioSessionStore()
	cache := newMemoryCacheStore()
	cache.err = errors.New("redis: connection refused")
	agg := newTestSessionAggregator(store, cache, time.Now())

	sessions, hit, err := agg.ForLearners(context.Background(), SessionListRequest{LearnerIDs: []string{"L1"}, TenantID: "T1", UseCache: true})
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Len(t, sessions, 2)
}

func TestSessionAggregatorRecomputesJoinabilityOnHit(t *testing.T) {
	start := time.Date(2024, 1, 10, 10, 0, 0, 0, time.UTC)
	store := &fakeSessionStore{academic: []models.AcademicSession{{ID: "a1", Status: "scheduled", ScheduledAt: &start}}}
	agg := newTestSessionAggregator(store, newMemoryCacheStore(), start.Add(-time.Hour))
	req := SessionListRequest{LearnerIDs: []string{"L1"}, TenantID: "T1", UseCache: true}

	sessions, _, err := agg.ForLearners(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, sessions[0].CanJoin)

	agg.now = func() time.Time { return start.Add(-10 * time.Minute) }
	sessions, hit, err := agg.ForLearners(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.True(t, sessions[0].CanJoin)
}

func TestSessionAggregatorStatusFilterUsesStoredSpellings(t *testing.T) {
	store := scenarioSessionStore()
	agg := newTestSessionAggregator(store, nil, time.Now())
	status := models.SessionStatusOngoing

	_, _, err := agg.ForLearners(context.Background(), SessionListRequest{LearnerIDs: []string{"L1"}, TenantID: "T1", Status: &status, Kinds: []models.Kind{models.KindQuran}})
	require.NoError(t, err)

	assert.Equal(t, []string{"in_progress", "live", "ongoing"}, store.queries[models.KindQuran][0].Statuses)
	assert.Zero(t, store.calls(models.KindAcademic))
}

func TestSessionAggregatorForInstructorSingleKindUncached(t *testing.T) {
	store := scenarioSessionStore()
	cache := newMemoryCacheStore()
	agg := newTestSessionAggregator(store, cache, time.Now())

	sessions, err := agg.ForInstructor(context.Background(), InstructorSessionRequest{InstructorID: "teacher-1", TenantID: "T1", Kind: models.KindAcademic})
	require.NoError(t, err)
	assert.Len(t, sessions, 1)
	assert.Equal(t, "teacher-1", store.queries[models.KindAcademic][0].InstructorID)
	assert.Empty(t, store.queries[models.KindAcademic][0].LearnerIDs)
	assert.Zero(t, store.calls(models.KindQuran))
	assert.Zero(t, cache.gets)
	assert.Zero(t, cache.puts)
}

func TestSessionAggregatorUpcomingWindow(t *testing.T) {
	now := time.Date(2024, 1, 5, 9, 30, 42, 0, time.UTC)
	store := scenarioSessionStore()
	agg := newTestSessionAggregator(store, newMemoryCacheStore(), now)

	_, _, err := agg.Upcoming(context.Background(), []string{"L1"}, "T1", 0, nil)
	require.NoError(t, err)

	query := store.queries[models.KindQuran][0]
	require.NotNil(t, query.From)
	require.NotNil(t, query.To)
	assert.Equal(t, time.Date(2024, 1, 5, 9, 30, 0, 0, time.UTC), *query.From)
	assert.Equal(t, time.Date(2024, 1, 12, 9, 30, 0, 0, time.UTC), *query.To)
	assert.Equal(t, []string{"scheduled"}, query.Statuses)
}

func TestSessionAggregatorTodayAndOngoingSkipCache(t *testing.T) {
	now := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	store := scenarioSessionStore()
	cache := newMemoryCacheStore()
	agg := newTestSessionAggregator(store, cache, now)

	_, err := agg.Today(context.Background(), []string{"L1"}, "T1", nil)
	require.NoError(t, err)
	_, err = agg.Ongoing(context.Background(), []string{"L1"}, "T1", nil)
	require.NoError(t, err)

	assert.Zero(t, cache.gets)
	assert.Zero(t, cache.puts)
	today := store.queries[models.KindQuran][0]
	assert.Equal(t, time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC), *today.From)
	assert.Equal(t, 5, today.To.Day())
}

func TestSessionAggregatorNextSession(t *testing.T) {
	now := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)
	store := scenarioSessionStore()
	store.quran = nil
	agg := newTestSessionAggregator(store, nil, now)

	next, err := agg.NextSession(context.Background(), "L1", "T1", nil)
	require.NoError(t, err)
	require.NotNil(t, next)
	assert.Equal(t, models.KindAcademic, next.Kind)
	assert.Equal(t, now.AddDate(0, 0, 30), *store.queries[models.KindAcademic][0].To)

	empty := newTestSessionAggregator(&fakeSessionStore{}, nil, now)
	next, err = empty.NextSession(context.Background(), "L1", "T1", nil)
	require.NoError(t, err)
	assert.Nil(t, next)

	_, err = empty.NextSession(context.Background(), "", "T1", nil)
	assert.ErrorIs(t, err, appErrors.ErrInvalidScope)
}

func TestSessionAggregatorCalendarEvents(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	agg := newTestSessionAggregator(scenarioSessionStore(), newMemoryCacheStore(), start)

	events, _, err := agg.CalendarEvents(context.Background(), []string{"L1"}, "T1", start, start.AddDate(0, 1, 0), nil)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "quran_1", events[0].ID)
	assert.Equal(t, "academic_1", events[1].ID)
	assert.Equal(t, events[0].Start.Add(30*time.Minute), *events[0].End)

	_, _, err = agg.CalendarEvents(context.Background(), []string{"L1"}, "T1", start, start.Add(-time.Hour), nil)
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestSessionAggregatorCountByStatus(t *testing.T) {
	agg := newTestSessionAggregator(scenarioSessionStore(), newMemoryCacheStore(), time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))

	counts, err := agg.CountByStatus(context.Background(), []string{"L1"}, "T1", nil)
	require.NoError(t, err)
	assert.Len(t, counts, 6)
	assert.Equal(t, 1, counts[models.SessionStatusCompleted])
	assert.Equal(t, 1, counts[models.SessionStatusScheduled])
	assert.Zero(t, counts[models.SessionStatusCancelled])
}

func TestSessionAggregatorClearCacheForLearner(t *testing.T) {
	store := scenarioSessionStore()
	cache := newMemoryCacheStore()
	agg := newTestSessionAggregator(store, cache, time.Now())
	req := SessionListRequest{LearnerIDs: []string{"L1"}, TenantID: "T1", UseCache: true}

	_, _, err := agg.ForLearners(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, cache.keys(), 1)

	require.NoError(t, agg.ClearCacheForLearner(context.Background(), "L1", "T1"))
	assert.Empty(t, cache.keys())

	agg.ClearCacheForTenant(context.Background(), "T1")
	agg.ClearAllCache(context.Background())
}

func TestSessionAggregatorRejectsUnknownStatus(t *testing.T) {
	store := scenarioSessionStore()
	cache := newMemoryCacheStore()
	agg := newTestSessionAggregator(store, cache, time.Now())
	bogus := models.SessionStatus("bogus")

	sessions, _, err := agg.ForLearners(context.Background(), SessionListRequest{LearnerIDs: []string{"L1"}, TenantID: "T1", Status: &bogus, UseCache: true})
	assert.Nil(t, sessions)
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	_, err = agg.ForInstructor(context.Background(), InstructorSessionRequest{InstructorID: "I1", TenantID: "T1", Kind: models.KindQuran, Status: &bogus})
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	for _, kind := range models.AllKinds() {
		assert.Zero(t, store.calls(kind))
	}
	assert.Empty(t, cache.keys())
}

func TestSessionAggregatorClearCacheAbsorbsCacheFailure(t *testing.T) {
	cache := newMemoryCacheStore()
	cache.err = errors.New("redis down")
	agg := newTestSessionAggregator(scenarioSessionStore(), cache, time.Now())
	metrics := NewMetricsService()
	agg.cache.metrics = metrics

	require.NoError(t, agg.ClearCacheForLearner(context.Background(), "L1", "T1"))
	assert.Equal(t, uint64(1), metrics.Snapshot().CacheFallbacks)

	assert.ErrorIs(t, agg.ClearCacheForLearner(context.Background(), "L1", ""), appErrors.ErrInvalidScope)
}
