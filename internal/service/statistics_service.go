package service

import (
	"context"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/dto"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/models"
	appErrors "github.com/abdelrahman-hamdy/itqan-platform-sub033/pkg/errors"
)

type statisticsStore interface {
	SessionStatusCounts(ctx context.Context, kind models.Kind, query models.StatusCountQuery) ([]models.StatusCount, error)
	SubscriptionAggregates(ctx context.Context, kind models.Kind, tenantID, learnerID string) ([]models.SubscriptionAggregate, error)
	QuranProgress(ctx context.Context, tenantID, learnerID string) (*models.QuranProgress, error)
}

const (
	statisticsStudentOp  = "student"
	statisticsOverviewOp = "overview"
	overviewUpcomingDays = 7
	statisticsFanOut     = 4
)

// StatisticsConfig tunes statistics caching.
type StatisticsConfig struct {
	CacheTTL     time.Duration
	OverviewTTL  time.Duration
	StoreTimeout time.Duration
}

// StatisticsServiceParams groups constructor dependencies.
type StatisticsServiceParams struct {
	Store     statisticsStore
	Cache     *CacheService
	Metrics   *MetricsService
	Validator *validator.Validate
	Logger    *zap.Logger
	Config    StatisticsConfig
}

// StatisticsService computes learner statistics from grouped counting queries.
// It never reads the aggregators' listings.
type StatisticsService struct {
	store     statisticsStore
	cache     cacheReader
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
	cfg       StatisticsConfig
}

type learnerScope struct {
	LearnerID string `validate:"required"`
	TenantID  string `validate:"required"`
}

type kindStatusCounts map[models.Kind]map[models.SessionStatus]int

type kindAggregates map[models.Kind][]models.SubscriptionAggregate

// NewStatisticsService constructs a StatisticsService with sane defaults.
func NewStatisticsService(params StatisticsServiceParams) *StatisticsService {
	cfg := params.Config
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	if cfg.OverviewTTL <= 0 {
		cfg.OverviewTTL = 5 * time.Minute
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = defaultStoreTimeout
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatisticsService{
		store:     params.Store,
		cache:     cacheReader{cache: params.Cache, metrics: params.Metrics, logger: logger},
		metrics:   params.Metrics,
		validator: newUnifiedValidator(params.Validator),
		logger:    logger,
		now:       time.Now,
		cfg:       cfg,
	}
}

// StudentStatistics builds the full statistics report for one learner. Any
// failing sub-query fails the whole call.
func (s *StatisticsService) StudentStatistics(ctx context.Context, learnerID, tenantID string, useCache bool) (*dto.StudentStatistics, bool, error) {
	if err := s.validator.Struct(learnerScope{LearnerID: learnerID, TenantID: tenantID}); err != nil {
		return nil, false, validationError(err)
	}
	key := buildCacheKey(statisticsNamespace, statisticsStudentOp, tenantID, []string{learnerID}, "", nil, nil, nil)
	if useCache {
		var cached dto.StudentStatistics
		if s.cache.load(ctx, key, &cached) {
			return &cached, true, nil
		}
	}

	ctx, cancel := withStoreTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	now := s.now().UTC()
	weekStart, monthStart := startOfWeek(now), startOfMonth(now)
	var (
		allTime, week, month kindStatusCounts
		aggregates           kindAggregates
		quran                *models.QuranProgress
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		allTime, err = s.statusCounts(groupCtx, learnerID, tenantID, nil, nil)
		return err
	})
	group.Go(func() (err error) {
		week, err = s.statusCounts(groupCtx, learnerID, tenantID, &weekStart, &now)
		return err
	})
	group.Go(func() (err error) {
		month, err = s.statusCounts(groupCtx, learnerID, tenantID, &monthStart, &now)
		return err
	})
	group.Go(func() (err error) {
		aggregates, err = s.subscriptionAggregates(groupCtx, learnerID, tenantID)
		return err
	})
	group.Go(func() error {
		start := time.Now()
		progress, err := s.store.QuranProgress(groupCtx, tenantID, learnerID)
		s.metrics.ObserveStoreQuery("quran_progress", models.KindQuran, time.Since(start))
		if err != nil {
			return appErrors.StoreError(err, "failed to load quran progress")
		}
		quran = progress
		return nil
	})
	if err := group.Wait(); err != nil {
		return nil, false, err
	}

	stats := &dto.StudentStatistics{
		Sessions:      sessionStatistics(allTime),
		Subscriptions: subscriptionStatistics(aggregates),
		Attendance: dto.AttendanceStatistics{
			OverallRate: attendanceOf(allTime, models.AllKinds()...),
			ByKind:      attendanceByKind(allTime),
			ThisWeek:    attendanceOf(week, models.AllKinds()...),
			ThisMonth:   attendanceOf(month, models.AllKinds()...),
		},
		Progress:     progressStatistics(quran, aggregates),
		CalculatedAt: now,
	}
	if useCache {
		s.cache.save(ctx, key, stats, s.cfg.CacheTTL)
	}
	return stats, false, nil
}

// StudentsStatistics builds reports for several learners, keyed by learner id.
// An empty audience yields an empty map.
func (s *StatisticsService) StudentsStatistics(ctx context.Context, learnerIDs []string, tenantID string) (map[string]dto.StudentStatistics, error) {
	learners := canonicalIDs(learnerIDs)
	result := make(map[string]dto.StudentStatistics, len(learners))
	if len(learners) == 0 {
		return result, nil
	}
	var mu sync.Mutex
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(statisticsFanOut)
	for _, learnerID := range learners {
		learnerID := learnerID
		group.Go(func() error {
			stats, _, err := s.StudentStatistics(groupCtx, learnerID, tenantID, true)
			if err != nil {
				return err
			}
			mu.Lock()
			result[learnerID] = *stats
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// AttendanceRate returns completed / (completed + cancelled) across every kind
// in percent, one decimal.
func (s *StatisticsService) AttendanceRate(ctx context.Context, learnerID, tenantID string) (float64, error) {
	if err := s.validator.Struct(learnerScope{LearnerID: learnerID, TenantID: tenantID}); err != nil {
		return 0, validationError(err)
	}
	ctx, cancel := withStoreTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	counts, err := s.statusCounts(ctx, learnerID, tenantID, nil, nil)
	if err != nil {
		return 0, err
	}
	return attendanceOf(counts, models.AllKinds()...), nil
}

// AttendanceRateByKind returns the attendance rate of each kind.
func (s *StatisticsService) AttendanceRateByKind(ctx context.Context, learnerID, tenantID string) (map[models.Kind]float64, error) {
	if err := s.validator.Struct(learnerScope{LearnerID: learnerID, TenantID: tenantID}); err != nil {
		return nil, validationError(err)
	}
	ctx, cancel := withStoreTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	counts, err := s.statusCounts(ctx, learnerID, tenantID, nil, nil)
	if err != nil {
		return nil, err
	}
	return attendanceByKind(counts), nil
}

// DashboardOverview computes the light dashboard composite. It is cached under
// its own key and TTL.
func (s *StatisticsService) DashboardOverview(ctx context.Context, learnerID, tenantID string) (*dto.DashboardOverview, bool, error) {
	if err := s.validator.Struct(learnerScope{LearnerID: learnerID, TenantID: tenantID}); err != nil {
		return nil, false, validationError(err)
	}
	key := buildCacheKey(statisticsNamespace, statisticsOverviewOp, tenantID, []string{learnerID}, "", nil, nil, nil)
	var cached dto.DashboardOverview
	if s.cache.load(ctx, key, &cached) {
		return &cached, true, nil
	}

	ctx, cancel := withStoreTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()

	now := s.now().UTC()
	upcomingEnd := now.AddDate(0, 0, overviewUpcomingDays)
	monthStart := startOfMonth(now)
	var (
		allTime, upcoming, month kindStatusCounts
		aggregates               kindAggregates
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() (err error) {
		allTime, err = s.statusCounts(groupCtx, learnerID, tenantID, nil, nil)
		return err
	})
	group.Go(func() (err error) {
		upcoming, err = s.statusCounts(groupCtx, learnerID, tenantID, &now, &upcomingEnd)
		return err
	})
	group.Go(func() (err error) {
		month, err = s.statusCounts(groupCtx, learnerID, tenantID, &monthStart, &now)
		return err
	})
	group.Go(func() (err error) {
		aggregates, err = s.subscriptionAggregates(groupCtx, learnerID, tenantID)
		return err
	})
	if err := group.Wait(); err != nil {
		return nil, false, err
	}

	overview := &dto.DashboardOverview{
		UpcomingSessions:           statusTotal(upcoming, models.SessionStatusScheduled),
		CompletedSessionsThisMonth: statusTotal(month, models.SessionStatusCompleted),
		OverallAttendanceRate:      attendanceOf(allTime, models.AllKinds()...),
	}
	for kind, rows := range aggregates {
		for _, row := range rows {
			if !isActiveAggregate(row) {
				continue
			}
			overview.ActiveSubscriptions += row.Count
			if kind != models.KindCourse {
				overview.SessionsRemaining += row.SessionsRemaining
			}
		}
	}
	s.cache.save(ctx, key, overview, s.cfg.OverviewTTL)
	return overview, false, nil
}

// ClearCacheForLearner forgets the learner's report and overview.
func (s *StatisticsService) ClearCacheForLearner(ctx context.Context, learnerID, tenantID string) error {
	if err := requireLearnerScope(learnerID, tenantID); err != nil {
		return err
	}
	s.cache.forget(ctx,
		buildCacheKey(statisticsNamespace, statisticsStudentOp, tenantID, []string{learnerID}, "", nil, nil, nil),
		buildCacheKey(statisticsNamespace, statisticsOverviewOp, tenantID, []string{learnerID}, "", nil, nil, nil),
	)
	return nil
}

// ClearCacheForTenant relies on TTL expiry.
func (s *StatisticsService) ClearCacheForTenant(_ context.Context, tenantID string) {
	s.logger.Debug("tenant statistics cache left to expire", zap.String("tenant_id", tenantID), zap.Duration("ttl", s.cfg.CacheTTL))
}

// ClearAllCache relies on TTL expiry.
func (s *StatisticsService) ClearAllCache(_ context.Context) {
	s.logger.Debug("statistics cache left to expire", zap.Duration("ttl", s.cfg.CacheTTL))
}

func (s *StatisticsService) statusCounts(ctx context.Context, learnerID, tenantID string, from, to *time.Time) (kindStatusCounts, error) {
	kinds := models.AllKinds()
	rows := make([][]models.StatusCount, len(kinds))
	query := models.StatusCountQuery{TenantID: tenantID, LearnerID: learnerID, From: from, To: to}
	group, groupCtx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		i, kind := i, kind
		group.Go(func() error {
			start := time.Now()
			counts, err := s.store.SessionStatusCounts(groupCtx, kind, query)
			s.metrics.ObserveStoreQuery("session_counts", kind, time.Since(start))
			if err != nil {
				return appErrors.StoreError(err, "failed to count "+string(kind)+" sessions")
			}
			rows[i] = counts
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	result := make(kindStatusCounts, len(kinds))
	for i, kind := range kinds {
		byStatus := make(map[models.SessionStatus]int)
		for _, row := range rows[i] {
			status, ok := SessionStatusOf(row.Status)
			if !ok {
				s.metrics.RecordUnmappedStatus("session", string(kind))
				s.logger.Warn("unmapped session status in counts", zap.String("kind", string(kind)), zap.String("status", row.Status))
			}
			byStatus[status] += row.Count
		}
		result[kind] = byStatus
	}
	return result, nil
}

func (s *StatisticsService) subscriptionAggregates(ctx context.Context, learnerID, tenantID string) (kindAggregates, error) {
	kinds := models.AllKinds()
	rows := make([][]models.SubscriptionAggregate, len(kinds))
	group, groupCtx := errgroup.WithContext(ctx)
	for i, kind := range kinds {
		i, kind := i, kind
		group.Go(func() error {
			start := time.Now()
			aggregates, err := s.store.SubscriptionAggregates(groupCtx, kind, tenantID, learnerID)
			s.metrics.ObserveStoreQuery("subscription_aggregates", kind, time.Since(start))
			if err != nil {
				return appErrors.StoreError(err, "failed to aggregate "+string(kind)+" subscriptions")
			}
			rows[i] = aggregates
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	result := make(kindAggregates, len(kinds))
	for i, kind := range kinds {
		result[kind] = rows[i]
	}
	return result, nil
}

// sessionCountsOf folds ongoing into scheduled; total counts every status.
func sessionCountsOf(byStatus map[models.SessionStatus]int) dto.SessionCounts {
	counts := dto.SessionCounts{
		Scheduled: byStatus[models.SessionStatusScheduled] + byStatus[models.SessionStatusOngoing],
		Completed: byStatus[models.SessionStatusCompleted],
		Cancelled: byStatus[models.SessionStatusCancelled],
	}
	for _, n := range byStatus {
		counts.Total += n
	}
	return counts
}

func sessionStatistics(counts kindStatusCounts) dto.SessionStatistics {
	stats := dto.SessionStatistics{
		Quran:    sessionCountsOf(counts[models.KindQuran]),
		Academic: sessionCountsOf(counts[models.KindAcademic]),
		Course:   sessionCountsOf(counts[models.KindCourse]),
	}
	stats.Totals.Add(stats.Quran)
	stats.Totals.Add(stats.Academic)
	stats.Totals.Add(stats.Course)
	return stats
}

func attendanceOf(counts kindStatusCounts, kinds ...models.Kind) float64 {
	var completed, terminal int
	for _, kind := range kinds {
		byStatus := counts[kind]
		completed += byStatus[models.SessionStatusCompleted]
		terminal += byStatus[models.SessionStatusCompleted] + byStatus[models.SessionStatusCancelled]
	}
	return AttendanceRate(completed, terminal)
}

func attendanceByKind(counts kindStatusCounts) map[models.Kind]float64 {
	rates := make(map[models.Kind]float64, len(models.AllKinds()))
	for _, kind := range models.AllKinds() {
		rates[kind] = attendanceOf(counts, kind)
	}
	return rates
}

func statusTotal(counts kindStatusCounts, status models.SessionStatus) int {
	total := 0
	for _, byStatus := range counts {
		total += byStatus[status]
	}
	return total
}

func isActiveAggregate(row models.SubscriptionAggregate) bool {
	status, _ := SubscriptionStatusOf(row.Status)
	return status == models.SubscriptionStatusActive
}

func subscriptionStatistics(aggregates kindAggregates) dto.SubscriptionStatistics {
	var stats dto.SubscriptionStatistics
	for _, row := range aggregates[models.KindQuran] {
		stats.Quran.Total += row.Count
		if isActiveAggregate(row) {
			stats.Quran.Active += row.Count
			stats.Quran.SessionsRemaining += row.SessionsRemaining
			stats.Quran.SessionsUsed += row.SessionsUsed
		}
	}
	for _, row := range aggregates[models.KindAcademic] {
		stats.Academic.Total += row.Count
		if isActiveAggregate(row) {
			stats.Academic.Active += row.Count
			stats.Academic.SessionsRemaining += row.SessionsRemaining
			stats.Academic.SessionsCompleted += row.SessionsUsed
		}
	}
	for _, row := range aggregates[models.KindCourse] {
		stats.Course.Total += row.Count
		if !isActiveAggregate(row) {
			continue
		}
		stats.Course.Active += row.Count
		stats.Course.TotalLessonsCompleted += row.SessionsUsed
		switch row.CourseType {
		case models.CourseTypeRecorded:
			stats.Course.RecordedCourses += row.Count
		case models.CourseTypeInteractive:
			stats.Course.InteractiveCourses += row.Count
		}
	}
	stats.Totals.Total = stats.Quran.Total + stats.Academic.Total + stats.Course.Total
	stats.Totals.Active = stats.Quran.Active + stats.Academic.Active + stats.Course.Active
	return stats
}

func progressStatistics(quran *models.QuranProgress, aggregates kindAggregates) dto.ProgressStatistics {
	var progress dto.ProgressStatistics
	if quran != nil {
		_, percent := ProgressOf(quran.SessionsUsed, quran.TotalSessions)
		progress.Quran = dto.QuranProgressStats{
			CurrentSurah:      quran.CurrentSurah,
			MemorizationLevel: quran.MemorizationLevel,
			SessionsCompleted: quran.SessionsUsed,
			TotalSessions:     quran.TotalSessions,
			ProgressPercent:   percent,
		}
	}
	for _, row := range aggregates[models.KindAcademic] {
		if !isActiveAggregate(row) {
			continue
		}
		progress.Academic.SubjectsCount += row.Count
		progress.Academic.SessionsCompleted += row.SessionsUsed
		progress.Academic.SessionsScheduled += row.SessionsScheduled
	}
	var gradeTotal float64
	var graded int
	for _, row := range aggregates[models.KindCourse] {
		if !isActiveAggregate(row) {
			continue
		}
		switch row.CourseType {
		case models.CourseTypeRecorded:
			recorded := &progress.Courses.Recorded
			recorded.Enrolled += row.Count
			recorded.CompletedLessons += row.SessionsUsed
			recorded.TotalLessons += row.SessionsTotal
			recorded.WatchTimeMinutes += row.WatchTimeMinutes
		case models.CourseTypeInteractive:
			interactive := &progress.Courses.Interactive
			interactive.Enrolled += row.Count
			interactive.AttendanceCount += row.AttendanceCount
			gradeTotal += row.GradeTotal
			graded += row.GradedCount
		}
	}
	if graded > 0 {
		avg := roundOneDecimal(gradeTotal / float64(graded))
		progress.Courses.Interactive.AverageGrade = &avg
	}
	return progress
}
