package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/dto"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/models"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/service"
	appErrors "github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/errors"
)

type fakeUnifiedStatisticsSrv struct {
	stats        *dto.StudentStatistics
	reports      map[string]dto.StudentStatistics
	rate         float64
	rates        map[models.Kind]float64
	overview     *dto.DashboardOverview
	hit          bool
	err          error
	lastUseCache bool
	lastIDs      []string
	byKindCalled bool
	cleared      []string
}

func (f *fakeUnifiedStatisticsSrv) StudentStatistics(_ context.Context, _, _ string, useCache bool) (*dto.StudentStatistics, bool, error) {
	f.lastUseCache = useCache
	return f.stats, f.hit, f.err
}

func (f *fakeUnifiedStatisticsSrv) StudentsStatistics(_ context.Context, learnerIDs []string, _ string) (map[string]dto.StudentStatistics, error) {
	f.lastIDs = learnerIDs
	return f.reports, f.err
}

func (f *fakeUnifiedStatisticsSrv) AttendanceRate(context.Context, string, string) (float64, error) {
	return f.rate, f.err
}

func (f *fakeUnifiedStatisticsSrv) AttendanceRateByKind(context.Context, string, string) (map[models.Kind]float64, error) {
	f.byKindCalled = true
	return f.rates, f.err
}

func (f *fakeUnifiedStatisticsSrv) DashboardOverview(context.Context, string, string) (*dto.DashboardOverview, bool, error) {
	return f.overview, f.hit, f.err
}

func (f *fakeUnifiedStatisticsSrv) ClearCacheForLearner(_ context.Context, learnerID, tenantID string) error {
	f.cleared = append(f.cleared, tenantID+"/"+learnerID)
	return nil
}

func TestUnifiedStatisticsHandlerStudent(t *testing.T) {
	srv := &fakeUnifiedStatisticsSrv{
		stats: &dto.StudentStatistics{Attendance: dto.AttendanceStatistics{OverallRate: 75}},
		hit:   true,
	}
	handler := NewUnifiedStatisticsHandler(srv)
	c, rec := newUnifiedContext(http.MethodGet, "/unified/statistics/student?tenantId=t1&learnerId=l1&cache=false")

	handler.Student(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, srv.lastUseCache)
	envelope := decodeUnified(t, rec)
	assert.Equal(t, true, envelope.Meta["cache_hit"])
	var stats dto.StudentStatistics
	require.NoError(t, json.Unmarshal(envelope.Data, &stats))
	assert.Equal(t, 75.0, stats.Attendance.OverallRate)
}

func TestUnifiedStatisticsHandlerStudentRequiresScope(t *testing.T) {
	handler := NewUnifiedStatisticsHandler(&fakeUnifiedStatisticsSrv{})

	c, rec := newUnifiedContext(http.MethodGet, "/unified/statistics/student?learnerId=l1")
	handler.Student(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = newUnifiedContext(http.MethodGet, "/unified/statistics/student?tenantId=t1")
	handler.Student(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnifiedStatisticsHandlerStudentsBatch(t *testing.T) {
	srv := &fakeUnifiedStatisticsSrv{reports: map[string]dto.StudentStatistics{"l1": {}, "l2": {}}}
	handler := NewUnifiedStatisticsHandler(srv)
	c, rec := newUnifiedContext(http.MethodGet, "/unified/statistics/students?tenantId=t1&learnerIds=l1,l2")

	handler.Students(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"l1", "l2"}, srv.lastIDs)
	var reports map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(decodeUnified(t, rec).Data, &reports))
	assert.Len(t, reports, 2)
}

func TestUnifiedStatisticsHandlerAttendance(t *testing.T) {
	srv := &fakeUnifiedStatisticsSrv{rate: 66.7, rates: map[models.Kind]float64{models.KindQuran: 50}}
	handler := NewUnifiedStatisticsHandler(srv)

	c, rec := newUnifiedContext(http.MethodGet, "/unified/statistics/attendance?tenantId=t1&learnerId=l1")
	handler.Attendance(c)
	require.Equal(t, http.StatusOK, rec.Code)
	var overall map[string]float64
	require.NoError(t, json.Unmarshal(decodeUnified(t, rec).Data, &overall))
	assert.Equal(t, 66.7, overall["attendance_rate"])
	assert.False(t, srv.byKindCalled)

	c, rec = newUnifiedContext(http.MethodGet, "/unified/statistics/attendance?tenantId=t1&learnerId=l1&byKind=true")
	handler.Attendance(c)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, srv.byKindCalled)
	var byKind map[string]float64
	require.NoError(t, json.Unmarshal(decodeUnified(t, rec).Data, &byKind))
	assert.Equal(t, 50.0, byKind["quran"])

	c, rec = newUnifiedContext(http.MethodGet, "/unified/statistics/attendance?tenantId=t1&learnerId=l1&byKind=maybe")
	handler.Attendance(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnifiedStatisticsHandlerOverview(t *testing.T) {
	srv := &fakeUnifiedStatisticsSrv{overview: &dto.DashboardOverview{ActiveSubscriptions: 3, SessionsRemaining: 12}}
	handler := NewUnifiedStatisticsHandler(srv)
	c, rec := newUnifiedContext(http.MethodGet, "/unified/statistics/overview?tenantId=t1&learnerId=l1")

	handler.Overview(c)

	require.Equal(t, http.StatusOK, rec.Code)
	envelope := decodeUnified(t, rec)
	assert.Equal(t, false, envelope.Meta["cache_hit"])
	var overview dto.DashboardOverview
	require.NoError(t, json.Unmarshal(envelope.Data, &overview))
	assert.Equal(t, 12, overview.SessionsRemaining)
}

func TestUnifiedStatisticsHandlerDeadline(t *testing.T) {
	srv := &fakeUnifiedStatisticsSrv{err: appErrors.Clone(appErrors.ErrDeadlineExceeded, "statistics timed out")}
	handler := NewUnifiedStatisticsHandler(srv)
	c, rec := newUnifiedContext(http.MethodGet, "/unified/statistics/overview?tenantId=t1&learnerId=l1")

	handler.Overview(c)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

type fakeCacheInvalidator struct {
	learners []string
	tenants  []string
	all      int
	err      error
}

func (f *fakeCacheInvalidator) ClearCacheForLearner(_ context.Context, learnerID, tenantID string) error {
	f.learners = append(f.learners, tenantID+"/"+learnerID)
	return f.err
}

func (f *fakeCacheInvalidator) ClearCacheForTenant(_ context.Context, tenantID string) {
	f.tenants = append(f.tenants, tenantID)
}

func (f *fakeCacheInvalidator) ClearAllCache(context.Context) {
	f.all++
}

func TestUnifiedCacheHandlerScopes(t *testing.T) {
	first, second := &fakeCacheInvalidator{}, &fakeCacheInvalidator{}
	handler := NewUnifiedCacheHandler(first, second)

	c, _ := newUnifiedContext(http.MethodDelete, "/unified/cache?tenantId=t1&learnerId=l1")
	handler.Clear(c)
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())

	c, _ = newUnifiedContext(http.MethodDelete, "/unified/cache?tenantId=t1")
	handler.Clear(c)

	c, _ = newUnifiedContext(http.MethodDelete, "/unified/cache")
	handler.Clear(c)

	for _, inv := range []*fakeCacheInvalidator{first, second} {
		assert.Equal(t, []string{"t1/l1"}, inv.learners)
		assert.Equal(t, []string{"t1"}, inv.tenants)
		assert.Equal(t, 1, inv.all)
	}

	c, rec := newUnifiedContext(http.MethodDelete, "/unified/cache?learnerId=l1")
	handler.Clear(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnifiedCacheHandlerContinuesPastFailingService(t *testing.T) {
	failing := &fakeCacheInvalidator{err: appErrors.Clone(appErrors.ErrCacheUnavailable, "redis down")}
	later := &fakeCacheInvalidator{}
	handler := NewUnifiedCacheHandler(failing, later)

	c, _ := newUnifiedContext(http.MethodDelete, "/unified/cache?tenantId=t1&learnerId=l1")
	handler.Clear(c)

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, []string{"t1/l1"}, failing.learners)
	assert.Equal(t, []string{"t1/l1"}, later.learners)
	require.Len(t, c.Errors, 1)
	assert.ErrorIs(t, c.Errors[0].Err, appErrors.ErrCacheUnavailable)
}

func TestMetricsHandlerSystemSnapshot(t *testing.T) {
	metrics := service.NewMetricsService()
	metrics.RecordCacheLookup("unified_sessions:v1:learners:t1:abc", true, 0)
	metrics.RecordCacheLookup("unified_sessions:v1:learners:t1:abc", false, 0)
	handler := NewMetricsHandler(metrics)
	c, rec := newUnifiedContext(http.MethodGet, "/metrics/system")

	handler.System(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var snapshot models.SystemMetrics
	require.NoError(t, json.Unmarshal(decodeUnified(t, rec).Data, &snapshot))
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
	assert.Equal(t, 0.5, snapshot.CacheHitRatio)
}
