package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/models"
)

// SubscriptionRepository reads the three subscription tables.
type SubscriptionRepository struct {
	db *sqlx.DB
}

// NewSubscriptionRepository instantiates the repository.
func NewSubscriptionRepository(db *sqlx.DB) *SubscriptionRepository {
	return &SubscriptionRepository{db: db}
}

const quranSubscriptionSelect = `SELECT s.id, s.academy_id, s.student_id, st.name AS student_name, s.status, s.subscription_type,
        p.name AS package_name, c.name AS circle_name, ic.name AS individual_circle_name, t.name AS teacher_name, t.avatar_url AS teacher_avatar,
        s.memorization_level, s.current_surah, s.is_trial_active, s.total_sessions, s.sessions_used,
        s.start_date, s.end_date, s.total_price, s.currency, s.created_at
        FROM quran_subscriptions s
        LEFT JOIN users st ON st.id = s.student_id
        LEFT JOIN users t ON t.id = s.quran_teacher_id
        LEFT JOIN quran_packages p ON p.id = s.package_id
        LEFT JOIN quran_circles c ON c.id = s.circle_id
        LEFT JOIN quran_individual_circles ic ON ic.id = s.individual_circle_id
        WHERE s.deleted_at IS NULL`

const academicSubscriptionSelect = `SELECT s.id, s.academy_id, s.student_id, st.name AS student_name, s.status, s.subject_name, s.grade_level_name,
        l.name AS lesson_name, t.name AS teacher_name, t.avatar_url AS teacher_avatar, s.sessions_per_week, s.weeks_total,
        s.total_sessions, s.total_sessions_completed, s.total_sessions_scheduled, s.has_trial_session, s.trial_session_used,
        s.start_date, s.end_date, s.total_price, s.currency, s.created_at
        FROM academic_subscriptions s
        LEFT JOIN users st ON st.id = s.student_id
        LEFT JOIN academic_teacher_profiles tp ON tp.id = s.academic_teacher_id
        LEFT JOIN users t ON t.id = tp.user_id
        LEFT JOIN academic_individual_lessons l ON l.id = s.lesson_id
        WHERE s.deleted_at IS NULL`

const courseSubscriptionSelect = `SELECT s.id, s.academy_id, s.student_id, st.name AS student_name, s.status, s.course_type,
        COALESCE(rc.title, ic.title) AS course_title, COALESCE(it.name, rt.name) AS teacher_name, it.avatar_url AS teacher_avatar,
        s.total_lessons, s.completed_lessons, s.lifetime_access, s.attendance_count, s.final_grade, s.quiz_passed,
        s.start_date, s.end_date, s.price_paid, s.currency, s.created_at
        FROM course_subscriptions s
        LEFT JOIN users st ON st.id = s.student_id
        LEFT JOIN recorded_courses rc ON rc.id = s.recorded_course_id
        LEFT JOIN users rt ON rt.id = rc.teacher_id
        LEFT JOIN interactive_courses ic ON ic.id = s.interactive_course_id
        LEFT JOIN academic_teacher_profiles tp ON tp.id = ic.assigned_teacher_id
        LEFT JOIN users it ON it.id = tp.user_id
        WHERE s.deleted_at IS NULL`

// QuranSubscriptions lists recitation subscriptions of the given learners.
func (r *SubscriptionRepository) QuranSubscriptions(ctx context.Context, query models.SubscriptionQuery) ([]models.QuranSubscription, error) {
	sqlText, args := scopeSubscriptions(quranSubscriptionSelect, query)
	var rows []models.QuranSubscription
	if err := r.db.SelectContext(ctx, &rows, sqlText, args...); err != nil {
		return nil, fmt.Errorf("list quran subscriptions: %w", err)
	}
	return rows, nil
}

// AcademicSubscriptions lists private lesson subscriptions of the given learners.
func (r *SubscriptionRepository) AcademicSubscriptions(ctx context.Context, query models.SubscriptionQuery) ([]models.AcademicSubscription, error) {
	sqlText, args := scopeSubscriptions(academicSubscriptionSelect, query)
	var rows []models.AcademicSubscription
	if err := r.db.SelectContext(ctx, &rows, sqlText, args...); err != nil {
		return nil, fmt.Errorf("list academic subscriptions: %w", err)
	}
	return rows, nil
}

// CourseSubscriptions lists course enrolments of the given learners.
func (r *SubscriptionRepository) CourseSubscriptions(ctx context.Context, query models.SubscriptionQuery) ([]models.CourseSubscription, error) {
	sqlText, args := scopeSubscriptions(courseSubscriptionSelect, query)
	var rows []models.CourseSubscription
	if err := r.db.SelectContext(ctx, &rows, sqlText, args...); err != nil {
		return nil, fmt.Errorf("list course subscriptions: %w", err)
	}
	return rows, nil
}

// GetByID loads one subscription of the given kind. It returns sql.ErrNoRows
// when nothing matches.
func (r *SubscriptionRepository) GetByID(ctx context.Context, kind models.Kind, id string) (models.SubscriptionRecord, error) {
	var (
		record models.SubscriptionRecord
		err    error
	)
	switch kind {
	case models.KindQuran:
		var row models.QuranSubscription
		err = r.db.GetContext(ctx, &row, quranSubscriptionSelect+" AND s.id = $1", id)
		record = &row
	case models.KindAcademic:
		var row models.AcademicSubscription
		err = r.db.GetContext(ctx, &row, academicSubscriptionSelect+" AND s.id = $1", id)
		record = &row
	case models.KindCourse:
		var row models.CourseSubscription
		err = r.db.GetContext(ctx, &row, courseSubscriptionSelect+" AND s.id = $1", id)
		record = &row
	default:
		return nil, sql.ErrNoRows
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("get %s subscription: %w", kind, err)
	}
	return record, nil
}

func scopeSubscriptions(base string, query models.SubscriptionQuery) (string, []interface{}) {
	var builder strings.Builder
	builder.WriteString(base)
	args := []interface{}{query.TenantID, pq.Array(query.LearnerIDs)}
	builder.WriteString(" AND s.academy_id = $1 AND s.student_id = ANY($2)")
	if len(query.Statuses) > 0 {
		args = append(args, pq.Array(query.Statuses))
		builder.WriteString(fmt.Sprintf(" AND LOWER(s.status) = ANY($%d)", len(args)))
	}
	builder.WriteString(" ORDER BY s.created_at DESC")
	return builder.String(), args
}
