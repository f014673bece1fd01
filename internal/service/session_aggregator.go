package service

import (
	"context"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/dto"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/models"
	appErrors "github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/errors"
)

type sessionStore interface {
	QuranSessions(ctx context.Context, query models.SessionQuery) ([]models.QuranSession, error)
	AcademicSessions(ctx context.Context, query models.SessionQuery) ([]models.AcademicSession, error)
	CourseSessions(ctx context.Context, query models.SessionQuery) ([]models.CourseSession, error)
}

const (
	defaultUpcomingDays   = 7
	nextSessionLookahead  = 30
	sessionsForLearnersOp = "learners"
)

// SessionAggregatorConfig tunes caching and store deadlines.
type SessionAggregatorConfig struct {
	CacheTTL     time.Duration
	StoreTimeout time.Duration
}

// SessionAggregatorParams groups constructor dependencies.
type SessionAggregatorParams struct {
	Store      sessionStore
	Cache      *CacheService
	Classifier *RecordClassifier
	Metrics    *MetricsService
	Validator  *validator.Validate
	Logger     *zap.Logger
	Config     SessionAggregatorConfig
}

// SessionAggregator fetches sessions of every kind for an audience and returns
// them in the normalized view.
type SessionAggregator struct {
	store      sessionStore
	cache      cacheReader
	classifier *RecordClassifier
	metrics    *MetricsService
	validator  *validator.Validate
	logger     *zap.Logger
	now        func() time.Time
	cfg        SessionAggregatorConfig
}

// SessionListRequest describes a learner-scoped session listing.
type SessionListRequest struct {
	LearnerIDs []string
	TenantID   string                `validate:"required"`
	Status     *models.SessionStatus `validate:"omitempty,session_status"`
	Kinds      []models.Kind         `validate:"omitempty,dive,kind"`
	From       *time.Time
	To         *time.Time
	UseCache   bool
}

// InstructorSessionRequest describes an instructor-scoped listing of one kind.
type InstructorSessionRequest struct {
	InstructorID string                `validate:"required"`
	TenantID     string                `validate:"required"`
	Kind         models.Kind           `validate:"required,kind"`
	Status       *models.SessionStatus `validate:"omitempty,session_status"`
	From         *time.Time
	To           *time.Time
}

// NewSessionAggregator constructs a SessionAggregator with sane defaults.
func NewSessionAggregator(params SessionAggregatorParams) *SessionAggregator {
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
	return &SessionAggregator{
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

// ForLearners lists the sessions of the given learners, ascending by schedule
// time with unscheduled sessions last. An empty audience yields an empty
// result. The boolean reports a cache hit.
func (a *SessionAggregator) ForLearners(ctx context.Context, req SessionListRequest) ([]dto.NormalizedSession, bool, error) {
	if err := a.validator.Struct(req); err != nil {
		return nil, false, validationError(err)
	}
	learners := canonicalIDs(req.LearnerIDs)
	if len(learners) == 0 {
		return []dto.NormalizedSession{}, false, nil
	}
	kinds := models.NormalizeKinds(req.Kinds)
	now := a.now()

	key := buildCacheKey(sessionsNamespace, sessionsForLearnersOp, req.TenantID, learners, sessionStatusKey(req.Status), kinds, req.From, req.To)
	if req.UseCache {
		var cached []dto.NormalizedSession
		if a.cache.load(ctx, key, &cached) {
			for i := range cached {
				cached[i].CanJoin = CanJoin(cached[i].Status, cached[i].ScheduledAt, now)
			}
			return cached, true, nil
		}
	}

	query := models.SessionQuery{
		TenantID:   req.TenantID,
		LearnerIDs: learners,
		Statuses:   sessionStatusFilter(req.Status),
		From:       req.From,
		To:         req.To,
	}
	sessions, err := a.fetch(ctx, query, kinds, now)
	if err != nil {
		return nil, false, err
	}
	if req.UseCache {
		a.cache.save(ctx, key, sessions, a.cfg.CacheTTL)
	}
	return sessions, false, nil
}

// ForInstructor lists one kind's sessions taught by the instructor. It never
// reads or writes the cache.
func (a *SessionAggregator) ForInstructor(ctx context.Context, req InstructorSessionRequest) ([]dto.NormalizedSession, error) {
	if err := a.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	query := models.SessionQuery{
		TenantID:     req.TenantID,
		InstructorID: req.InstructorID,
		Statuses:     sessionStatusFilter(req.Status),
		From:         req.From,
		To:           req.To,
	}
	return a.fetch(ctx, query, []models.Kind{req.Kind}, a.now())
}

// Upcoming lists scheduled sessions starting within the next days (7 when days <= 0).
func (a *SessionAggregator) Upcoming(ctx context.Context, learnerIDs []string, tenantID string, days int, kinds []models.Kind) ([]dto.NormalizedSession, bool, error) {
	if days <= 0 {
		days = defaultUpcomingDays
	}
	from := a.now().UTC().Truncate(time.Minute)
	to := from.AddDate(0, 0, days)
	status := models.SessionStatusScheduled
	return a.ForLearners(ctx, SessionListRequest{
		LearnerIDs: learnerIDs,
		TenantID:   tenantID,
		Status:     &status,
		Kinds:      kinds,
		From:       &from,
		To:         &to,
		UseCache:   true,
	})
}

// Today lists every session scheduled for the current UTC day, bypassing the cache.
func (a *SessionAggregator) Today(ctx context.Context, learnerIDs []string, tenantID string, kinds []models.Kind) ([]dto.NormalizedSession, error) {
	from := startOfDay(a.now())
	to := from.Add(24*time.Hour - time.Nanosecond)
	sessions, _, err := a.ForLearners(ctx, SessionListRequest{
		LearnerIDs: learnerIDs,
		TenantID:   tenantID,
		Kinds:      kinds,
		From:       &from,
		To:         &to,
	})
	return sessions, err
}

// Ongoing lists sessions currently live, bypassing the cache.
func (a *SessionAggregator) Ongoing(ctx context.Context, learnerIDs []string, tenantID string, kinds []models.Kind) ([]dto.NormalizedSession, error) {
	status := models.SessionStatusOngoing
	sessions, _, err := a.ForLearners(ctx, SessionListRequest{
		LearnerIDs: learnerIDs,
		TenantID:   tenantID,
		Status:     &status,
		Kinds:      kinds,
	})
	return sessions, err
}

// NextSession returns the learner's first scheduled session within 30 days, or nil.
func (a *SessionAggregator) NextSession(ctx context.Context, learnerID, tenantID string, kinds []models.Kind) (*dto.NormalizedSession, error) {
	if learnerID == "" {
		return nil, appErrors.Clone(appErrors.ErrInvalidScope, "learnerId is required")
	}
	sessions, _, err := a.Upcoming(ctx, []string{learnerID}, tenantID, nextSessionLookahead, kinds)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	next := sessions[0]
	return &next, nil
}

// CalendarEvents projects the sessions inside [start, end] onto calendar events.
func (a *SessionAggregator) CalendarEvents(ctx context.Context, learnerIDs []string, tenantID string, start, end time.Time, kinds []models.Kind) ([]dto.CalendarEvent, bool, error) {
	if end.Before(start) {
		return nil, false, appErrors.Clone(appErrors.ErrValidation, "end must not be before start")
	}
	sessions, hit, err := a.ForLearners(ctx, SessionListRequest{
		LearnerIDs: learnerIDs,
		TenantID:   tenantID,
		Kinds:      kinds,
		From:       &start,
		To:         &end,
		UseCache:   true,
	})
	if err != nil {
		return nil, false, err
	}
	events := make([]dto.CalendarEvent, 0, len(sessions))
	for _, session := range sessions {
		events = append(events, ToCalendarEvent(session))
	}
	return events, hit, nil
}

// CountByStatus counts the learners' sessions per status from one cached
// listing. Every status is present in the result.
func (a *SessionAggregator) CountByStatus(ctx context.Context, learnerIDs []string, tenantID string, kinds []models.Kind) (map[models.SessionStatus]int, error) {
	sessions, _, err := a.ForLearners(ctx, SessionListRequest{
		LearnerIDs: learnerIDs,
		TenantID:   tenantID,
		Kinds:      kinds,
		UseCache:   true,
	})
	if err != nil {
		return nil, err
	}
	counts := make(map[models.SessionStatus]int, len(models.AllSessionStatuses()))
	for _, status := range models.AllSessionStatuses() {
		counts[status] = 0
	}
	for _, session := range sessions {
		counts[session.Status]++
	}
	return counts, nil
}

// ClearCacheForLearner forgets the learner's default-argument listing. Keys of
// filtered listings are not enumerable and expire with their TTL. Only a
// missing scope is reported; cache failures are logged.
func (a *SessionAggregator) ClearCacheForLearner(ctx context.Context, learnerID, tenantID string) error {
	if err := requireLearnerScope(learnerID, tenantID); err != nil {
		return err
	}
	a.cache.forget(ctx, buildCacheKey(sessionsNamespace, sessionsForLearnersOp, tenantID, []string{learnerID}, "", nil, nil, nil))
	return nil
}

// ClearCacheForTenant relies on TTL expiry; exact-key stores cannot enumerate
// a tenant's entries.
func (a *SessionAggregator) ClearCacheForTenant(_ context.Context, tenantID string) {
	a.logger.Debug("tenant session cache left to expire", zap.String("tenant_id", tenantID), zap.Duration("ttl", a.cfg.CacheTTL))
}

// ClearAllCache relies on TTL expiry.
func (a *SessionAggregator) ClearAllCache(_ context.Context) {
	a.logger.Debug("session cache left to expire", zap.Duration("ttl", a.cfg.CacheTTL))
}

func (a *SessionAggregator) fetch(ctx context.Context, query models.SessionQuery, kinds []models.Kind, now time.Time) ([]dto.NormalizedSession, error) {
	ctx, cancel := withStoreTimeout(ctx, a.cfg.StoreTimeout)
	defer cancel()

	results := make([][]models.SessionRecord, len(kinds))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		i, kind := i, kind
		group.Go(func() error {
			records, err := a.fetchKind(groupCtx, kind, query)
			if err != nil {
				return appErrors.StoreError(err, "failed to load "+string(kind)+" sessions")
			}
			results[i] = records
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	sessions := make([]dto.NormalizedSession, 0)
	for _, records := range results {
		for _, record := range records {
			view := a.classifier.NormalizeSession(record, now)
			id := string(view.Kind) + ":" + view.ID
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}
			sessions = append(sessions, view)
		}
	}
	sortSessions(sessions)
	return sessions, nil
}

func (a *SessionAggregator) fetchKind(ctx context.Context, kind models.Kind, query models.SessionQuery) ([]models.SessionRecord, error) {
	start := time.Now()
	defer func() {
		a.metrics.ObserveStoreQuery("sessions", kind, time.Since(start))
	}()
	switch kind {
	case models.KindQuran:
		rows, err := a.store.QuranSessions(ctx, query)
		if err != nil {
			return nil, err
		}
		records := make([]models.SessionRecord, len(rows))
		for i := range rows {
			records[i] = &rows[i]
		}
		return records, nil
	case models.KindAcademic:
		rows, err := a.store.AcademicSessions(ctx, query)
		if err != nil {
			return nil, err
		}
		records := make([]models.SessionRecord, len(rows))
		for i := range rows {
			records[i] = &rows[i]
		}
		return records, nil
	case models.KindCourse:
		rows, err := a.store.CourseSessions(ctx, query)
		if err != nil {
			return nil, err
		}
		records := make([]models.SessionRecord, len(rows))
		for i := range rows {
			records[i] = &rows[i]
		}
		return records, nil
	default:
		return nil, nil
	}
}

// sortSessions orders by scheduled time ascending, unscheduled last, then by
// kind and id so equal timestamps stay deterministic.
func sortSessions(sessions []dto.NormalizedSession) {
	sort.SliceStable(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		switch {
		case a.ScheduledAt == nil && b.ScheduledAt == nil:
		case a.ScheduledAt == nil:
			return false
		case b.ScheduledAt == nil:
			return true
		case !a.ScheduledAt.Equal(*b.ScheduledAt):
			return a.ScheduledAt.Before(*b.ScheduledAt)
		}
		if a.Kind != b.Kind {
			return kindRank(a.Kind) < kindRank(b.Kind)
		}
		return a.ID < b.ID
	})
}

func kindRank(kind models.Kind) int {
	for i, k := range models.AllKinds() {
		if k == kind {
			return i
		}
	}
	return len(models.AllKinds())
}

func sessionStatusKey(status *models.SessionStatus) string {
	if status == nil {
		return ""
	}
	return string(*status)
}

func sessionStatusFilter(status *models.SessionStatus) []string {
	if status == nil {
		return nil
	}
	return sessionStatusValues(*status)
}
