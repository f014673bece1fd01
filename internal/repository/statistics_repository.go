package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/models"
)

// StatisticsRepository runs grouped counting queries for a single learner.
// Nothing here materializes full rows.
type StatisticsRepository struct {
	db *sqlx.DB
}

// NewStatisticsRepository instantiates the repository.
func NewStatisticsRepository(db *sqlx.DB) *StatisticsRepository {
	return &StatisticsRepository{db: db}
}

// SessionStatusCounts groups one kind's sessions of the learner by lower-cased
// stored status, optionally inside a scheduled_at window.
func (r *StatisticsRepository) SessionStatusCounts(ctx context.Context, kind models.Kind, query models.StatusCountQuery) ([]models.StatusCount, error) {
	var builder strings.Builder
	args := []interface{}{query.TenantID, query.LearnerID}
	alias := "s"
	switch kind {
	case models.KindQuran:
		alias = "qs"
		builder.WriteString(`SELECT LOWER(qs.status) AS status, COUNT(*) AS count
        FROM quran_sessions qs
        WHERE qs.deleted_at IS NULL AND qs.academy_id = $1
        AND (qs.student_id = $2 OR EXISTS (SELECT 1 FROM quran_circle_students cs WHERE cs.circle_id = qs.circle_id AND cs.student_id = $2))`)
	case models.KindAcademic:
		builder.WriteString(`SELECT LOWER(s.status) AS status, COUNT(*) AS count
        FROM academic_sessions s
        WHERE s.deleted_at IS NULL AND s.academy_id = $1 AND s.student_id = $2`)
	case models.KindCourse:
		builder.WriteString(`SELECT LOWER(s.status) AS status, COUNT(*) AS count
        FROM interactive_course_sessions s
        JOIN interactive_courses c ON c.id = s.course_id AND c.deleted_at IS NULL
        WHERE s.deleted_at IS NULL AND c.academy_id = $1
        AND EXISTS (SELECT 1 FROM interactive_course_enrollments e WHERE e.course_id = c.id AND e.student_id = $2 AND e.enrollment_status = 'enrolled')`)
	default:
		return nil, fmt.Errorf("count sessions: unknown kind %q", kind)
	}
	if query.From != nil {
		args = append(args, *query.From)
		builder.WriteString(fmt.Sprintf(" AND %s.scheduled_at >= $%d", alias, len(args)))
	}
	if query.To != nil {
		args = append(args, *query.To)
		builder.WriteString(fmt.Sprintf(" AND %s.scheduled_at <= $%d", alias, len(args)))
	}
	builder.WriteString(fmt.Sprintf(" GROUP BY LOWER(%s.status)", alias))

	var counts []models.StatusCount
	if err := r.db.SelectContext(ctx, &counts, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("count %s sessions: %w", kind, err)
	}
	return counts, nil
}

const quranSubscriptionAggregate = `SELECT LOWER(s.status) AS status, '' AS course_type, COUNT(*) AS count,
        COALESCE(SUM(s.total_sessions), 0) AS sessions_total,
        COALESCE(SUM(s.sessions_used), 0) AS sessions_used,
        COALESCE(SUM(GREATEST(COALESCE(s.total_sessions, 0) - COALESCE(s.sessions_used, 0), 0)), 0) AS sessions_remaining,
        0 AS sessions_scheduled, 0 AS attendance_count, 0 AS watch_time_minutes, 0 AS grade_total, 0 AS graded_count
        FROM quran_subscriptions s
        WHERE s.deleted_at IS NULL AND s.academy_id = $1 AND s.student_id = $2
        GROUP BY LOWER(s.status)`

const academicSubscriptionAggregate = `SELECT LOWER(s.status) AS status, '' AS course_type, COUNT(*) AS count,
        COALESCE(SUM(s.total_sessions), 0) AS sessions_total,
        COALESCE(SUM(s.total_sessions_completed), 0) AS sessions_used,
        COALESCE(SUM(GREATEST(COALESCE(s.total_sessions, 0) - COALESCE(s.total_sessions_completed, 0), 0)), 0) AS sessions_remaining,
        COALESCE(SUM(s.total_sessions_scheduled), 0) AS sessions_scheduled,
        0 AS attendance_count, 0 AS watch_time_minutes, 0 AS grade_total, 0 AS graded_count
        FROM academic_subscriptions s
        WHERE s.deleted_at IS NULL AND s.academy_id = $1 AND s.student_id = $2
        GROUP BY LOWER(s.status)`

const courseSubscriptionAggregate = `SELECT LOWER(s.status) AS status, COALESCE(s.course_type, '') AS course_type, COUNT(*) AS count,
        COALESCE(SUM(s.total_lessons), 0) AS sessions_total,
        COALESCE(SUM(s.completed_lessons), 0) AS sessions_used,
        COALESCE(SUM(GREATEST(COALESCE(s.total_lessons, 0) - COALESCE(s.completed_lessons, 0), 0)), 0) AS sessions_remaining,
        0 AS sessions_scheduled,
        COALESCE(SUM(s.attendance_count), 0) AS attendance_count,
        COALESCE(SUM(s.watch_time_minutes), 0) AS watch_time_minutes,
        COALESCE(SUM(s.final_grade), 0) AS grade_total,
        COUNT(s.final_grade) AS graded_count
        FROM course_subscriptions s
        WHERE s.deleted_at IS NULL AND s.academy_id = $1 AND s.student_id = $2
        GROUP BY LOWER(s.status), COALESCE(s.course_type, '')`

// SubscriptionAggregates rolls one kind's subscriptions of the learner up by
// status (and course type for courses).
func (r *StatisticsRepository) SubscriptionAggregates(ctx context.Context, kind models.Kind, tenantID, learnerID string) ([]models.SubscriptionAggregate, error) {
	var query string
	switch kind {
	case models.KindQuran:
		query = quranSubscriptionAggregate
	case models.KindAcademic:
		query = academicSubscriptionAggregate
	case models.KindCourse:
		query = courseSubscriptionAggregate
	default:
		return nil, fmt.Errorf("aggregate subscriptions: unknown kind %q", kind)
	}
	var rows []models.SubscriptionAggregate
	if err := r.db.SelectContext(ctx, &rows, query, tenantID, learnerID); err != nil {
		return nil, fmt.Errorf("aggregate %s subscriptions: %w", kind, err)
	}
	return rows, nil
}

// QuranProgress returns the newest active recitation subscription snapshot, or
// nil when the learner has none.
func (r *StatisticsRepository) QuranProgress(ctx context.Context, tenantID, learnerID string) (*models.QuranProgress, error) {
	const query = `SELECT s.current_surah, s.memorization_level, COALESCE(s.sessions_used, 0) AS sessions_used, COALESCE(s.total_sessions, 0) AS total_sessions
        FROM quran_subscriptions s
        WHERE s.deleted_at IS NULL AND s.academy_id = $1 AND s.student_id = $2 AND LOWER(s.status) = 'active'
        ORDER BY s.created_at DESC LIMIT 1`
	var progress models.QuranProgress
	if err := r.db.GetContext(ctx, &progress, query, tenantID, learnerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get quran progress: %w", err)
	}
	return &progress, nil
}
