package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/dto"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/models"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/service"
)

type fakeUnifiedSubscriptionSrv struct {
	subscriptions []dto.NormalizedSubscription
	grouped       dto.GroupedSubscriptions
	counts        map[models.SubscriptionStatus]int
	summary       dto.SubscriptionSummary
	hasActive     bool
	byID          *dto.NormalizedSubscription
	hit           bool
	err           error
	lastList      service.SubscriptionListRequest
	lastIDs       []string
	lastStatus    *models.SubscriptionStatus
	lastKind      *models.Kind
	lastGet       [2]string
	cleared       []string
}

func (f *fakeUnifiedSubscriptionSrv) ForLearner(_ context.Context, req service.SubscriptionListRequest) ([]dto.NormalizedSubscription, bool, error) {
	f.lastList = req
	return f.subscriptions, f.hit, f.err
}

func (f *fakeUnifiedSubscriptionSrv) ForLearners(_ context.Context, learnerIDs []string, _ string, status *models.SubscriptionStatus, _ []models.Kind) ([]dto.NormalizedSubscription, error) {
	f.lastIDs = learnerIDs
	f.lastStatus = status
	return f.subscriptions, f.err
}

func (f *fakeUnifiedSubscriptionSrv) Active(_ context.Context, learnerID, _ string, _ []models.Kind) ([]dto.NormalizedSubscription, bool, error) {
	f.lastIDs = []string{learnerID}
	return f.subscriptions, f.hit, f.err
}

func (f *fakeUnifiedSubscriptionSrv) GroupedByKind(context.Context, string, string) (dto.GroupedSubscriptions, error) {
	return f.grouped, f.err
}

func (f *fakeUnifiedSubscriptionSrv) CountByStatus(context.Context, string, string, []models.Kind) (map[models.SubscriptionStatus]int, error) {
	return f.counts, f.err
}

func (f *fakeUnifiedSubscriptionSrv) Summary(context.Context, string, string) (dto.SubscriptionSummary, error) {
	return f.summary, f.err
}

func (f *fakeUnifiedSubscriptionSrv) HasActiveSubscription(_ context.Context, _, _ string, kind *models.Kind) (bool, error) {
	f.lastKind = kind
	return f.hasActive, f.err
}

func (f *fakeUnifiedSubscriptionSrv) GetByID(_ context.Context, id string, kind models.Kind) (*dto.NormalizedSubscription, error) {
	f.lastGet = [2]string{string(kind), id}
	return f.byID, f.err
}

func (f *fakeUnifiedSubscriptionSrv) ClearCacheForLearner(_ context.Context, learnerID, tenantID string) error {
	f.cleared = append(f.cleared, tenantID+"/"+learnerID)
	return nil
}

func TestUnifiedSubscriptionHandlerListRequiresLearner(t *testing.T) {
	handler := NewUnifiedSubscriptionHandler(&fakeUnifiedSubscriptionSrv{})
	c, rec := newUnifiedContext(http.MethodGet, "/unified/subscriptions?tenantId=t1")

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnifiedSubscriptionHandlerListParsesFilters(t *testing.T) {
	srv := &fakeUnifiedSubscriptionSrv{
		subscriptions: []dto.NormalizedSubscription{{ID: "q1", Kind: models.KindQuran}},
		hit:           true,
	}
	handler := NewUnifiedSubscriptionHandler(srv)
	c, rec := newUnifiedContext(http.MethodGet, "/unified/subscriptions?tenantId=t1&learnerId=l1&status=expired&kinds=a")

	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "l1", srv.lastList.LearnerID)
	require.NotNil(t, srv.lastList.Status)
	assert.Equal(t, models.SubscriptionStatusCancelled, *srv.lastList.Status)
	assert.Equal(t, []models.Kind{models.KindQuran}, srv.lastList.Kinds)
	assert.True(t, srv.lastList.UseCache)
	assert.Equal(t, true, decodeUnified(t, rec).Meta["cache_hit"])
}

func TestUnifiedSubscriptionHandlerListRejectsUnknownStatus(t *testing.T) {
	srv := &fakeUnifiedSubscriptionSrv{}
	handler := NewUnifiedSubscriptionHandler(srv)
	c, rec := newUnifiedContext(http.MethodGet, "/unified/subscriptions?tenantId=t1&learnerId=l1&status=frozen")

	handler.List(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, srv.lastList.LearnerID)
}

func TestUnifiedSubscriptionHandlerBatch(t *testing.T) {
	srv := &fakeUnifiedSubscriptionSrv{subscriptions: []dto.NormalizedSubscription{}}
	handler := NewUnifiedSubscriptionHandler(srv)
	c, rec := newUnifiedContext(http.MethodGet, "/unified/subscriptions/batch?tenantId=t1&learnerIds=l1,l2&status=active")

	handler.Batch(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"l1", "l2"}, srv.lastIDs)
	require.NotNil(t, srv.lastStatus)
	assert.Equal(t, models.SubscriptionStatusActive, *srv.lastStatus)
}

func TestUnifiedSubscriptionHandlerSummaryAndGrouping(t *testing.T) {
	srv := &fakeUnifiedSubscriptionSrv{
		summary: dto.SubscriptionSummary{TotalSubscriptions: 4, ActiveSubscriptions: 2},
		grouped: dto.GroupedSubscriptions{Quran: []dto.NormalizedSubscription{{ID: "q1"}}},
	}
	handler := NewUnifiedSubscriptionHandler(srv)

	c, rec := newUnifiedContext(http.MethodGet, "/unified/subscriptions/summary?tenantId=t1&learnerId=l1")
	handler.Summary(c)
	require.Equal(t, http.StatusOK, rec.Code)
	var summary dto.SubscriptionSummary
	require.NoError(t, json.Unmarshal(decodeUnified(t, rec).Data, &summary))
	assert.Equal(t, 4, summary.TotalSubscriptions)
	assert.Equal(t, 2, summary.ActiveSubscriptions)

	c, rec = newUnifiedContext(http.MethodGet, "/unified/subscriptions/grouped?tenantId=t1&learnerId=l1")
	handler.Grouped(c)
	require.Equal(t, http.StatusOK, rec.Code)
	var grouped dto.GroupedSubscriptions
	require.NoError(t, json.Unmarshal(decodeUnified(t, rec).Data, &grouped))
	require.Len(t, grouped.Quran, 1)
}

func TestUnifiedSubscriptionHandlerHasActive(t *testing.T) {
	srv := &fakeUnifiedSubscriptionSrv{hasActive: true}
	handler := NewUnifiedSubscriptionHandler(srv)

	c, rec := newUnifiedContext(http.MethodGet, "/unified/subscriptions/has-active?tenantId=t1&learnerId=l1&kind=course")
	handler.HasActive(c)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, srv.lastKind)
	assert.Equal(t, models.KindCourse, *srv.lastKind)
	var payload map[string]bool
	require.NoError(t, json.Unmarshal(decodeUnified(t, rec).Data, &payload))
	assert.True(t, payload["has_active"])

	c, rec = newUnifiedContext(http.MethodGet, "/unified/subscriptions/has-active?tenantId=t1&learnerId=l1&kind=video")
	handler.HasActive(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnifiedSubscriptionHandlerGet(t *testing.T) {
	srv := &fakeUnifiedSubscriptionSrv{}
	handler := NewUnifiedSubscriptionHandler(srv)

	c, rec := newUnifiedContext(http.MethodGet, "/unified/subscriptions/academic/a1")
	c.Params = gin.Params{{Key: "kind", Value: "academic"}, {Key: "id", Value: "a1"}}
	handler.Get(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, [2]string{"academic", "a1"}, srv.lastGet)

	srv.byID = &dto.NormalizedSubscription{ID: "a1", Kind: models.KindAcademic}
	c, rec = newUnifiedContext(http.MethodGet, "/unified/subscriptions/academic/a1")
	c.Params = gin.Params{{Key: "kind", Value: "academic"}, {Key: "id", Value: "a1"}}
	handler.Get(c)
	assert.Equal(t, http.StatusOK, rec.Code)

	c, rec = newUnifiedContext(http.MethodGet, "/unified/subscriptions/video/a1")
	c.Params = gin.Params{{Key: "kind", Value: "video"}, {Key: "id", Value: "a1"}}
	handler.Get(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnifiedSubscriptionHandlerClearCache(t *testing.T) {
	srv := &fakeUnifiedSubscriptionSrv{}
	handler := NewUnifiedSubscriptionHandler(srv)
	c, _ := newUnifiedContext(http.MethodDelete, "/unified/subscriptions/cache?tenantId=t1&learnerId=l1")

	handler.ClearCache(c)

	assert.Equal(t, http.StatusNoContent, c.Writer.Status())
	assert.Equal(t, []string{"t1/l1"}, srv.cleared)
}
