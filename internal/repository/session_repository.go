package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/models"
)

// SessionRepository reads the three session tables. Every query honours soft
// deletes and the tenant scope.
type SessionRepository struct {
	db *sqlx.DB
}

// NewSessionRepository instantiates the repository.
func NewSessionRepository(db *sqlx.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const quranSessionSelect = `SELECT qs.id, qs.academy_id, qs.session_code, qs.session_type, qs.status, qs.scheduled_at, qs.duration_minutes,
        qs.student_id, st.name AS student_name, qs.quran_teacher_id, t.name AS teacher_name, t.avatar_url AS teacher_avatar,
        c.name AS circle_name, ic.name AS individual_circle_name, qs.meeting_link, qs.meeting_room_name, qs.created_at
        FROM quran_sessions qs
        LEFT JOIN users st ON st.id = qs.student_id
        LEFT JOIN users t ON t.id = qs.quran_teacher_id
        LEFT JOIN quran_circles c ON c.id = qs.circle_id
        LEFT JOIN quran_individual_circles ic ON ic.id = qs.individual_circle_id
        WHERE qs.deleted_at IS NULL`

const academicSessionSelect = `SELECT s.id, s.academy_id, s.session_code, s.status, s.scheduled_at, s.duration_minutes,
        s.student_id, st.name AS student_name, tp.user_id AS teacher_user_id, t.name AS teacher_name, t.avatar_url AS teacher_avatar,
        l.name AS lesson_name, l.subject AS subject, s.meeting_link, s.meeting_room_name, s.created_at
        FROM academic_sessions s
        LEFT JOIN users st ON st.id = s.student_id
        LEFT JOIN academic_teacher_profiles tp ON tp.id = s.academic_teacher_id
        LEFT JOIN users t ON t.id = tp.user_id
        LEFT JOIN academic_individual_lessons l ON l.id = s.academic_individual_lesson_id
        WHERE s.deleted_at IS NULL`

const courseSessionSelect = `SELECT s.id, c.academy_id, s.course_id, c.title AS course_title, s.title, s.session_code, s.session_number,
        s.status, s.scheduled_at, s.duration_minutes, tp.user_id AS teacher_user_id, t.name AS teacher_name, t.avatar_url AS teacher_avatar,
        (SELECT COUNT(*) FROM interactive_course_enrollments ce WHERE ce.course_id = c.id) AS enrollments_count,
        s.meeting_link, s.meeting_room_name, s.created_at
        FROM interactive_course_sessions s
        JOIN interactive_courses c ON c.id = s.course_id AND c.deleted_at IS NULL
        LEFT JOIN academic_teacher_profiles tp ON tp.id = c.assigned_teacher_id
        LEFT JOIN users t ON t.id = tp.user_id
        WHERE s.deleted_at IS NULL`

// QuranSessions lists recitation sessions. Learners match directly or through
// group circle membership; instructors match on the teacher column.
func (r *SessionRepository) QuranSessions(ctx context.Context, query models.SessionQuery) ([]models.QuranSession, error) {
	var builder strings.Builder
	builder.WriteString(quranSessionSelect)
	args := []interface{}{query.TenantID}
	builder.WriteString(" AND qs.academy_id = $1")
	if len(query.LearnerIDs) > 0 {
		args = append(args, pq.Array(query.LearnerIDs))
		builder.WriteString(fmt.Sprintf(" AND (qs.student_id = ANY($%d) OR EXISTS (SELECT 1 FROM quran_circle_students cs WHERE cs.circle_id = qs.circle_id AND cs.student_id = ANY($%d)))", len(args), len(args)))
	}
	if query.InstructorID != "" {
		args = append(args, query.InstructorID)
		builder.WriteString(fmt.Sprintf(" AND qs.quran_teacher_id = $%d", len(args)))
	}
	args = appendSessionWindow(&builder, args, "qs", query)
	builder.WriteString(" ORDER BY qs.scheduled_at ASC NULLS LAST")

	var rows []models.QuranSession
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list quran sessions: %w", err)
	}
	return rows, nil
}

// AcademicSessions lists private lesson sessions. Instructors resolve through
// the teacher profile's user.
func (r *SessionRepository) AcademicSessions(ctx context.Context, query models.SessionQuery) ([]models.AcademicSession, error) {
	var builder strings.Builder
	builder.WriteString(academicSessionSelect)
	args := []interface{}{query.TenantID}
	builder.WriteString(" AND s.academy_id = $1")
	if len(query.LearnerIDs) > 0 {
		args = append(args, pq.Array(query.LearnerIDs))
		builder.WriteString(fmt.Sprintf(" AND s.student_id = ANY($%d)", len(args)))
	}
	if query.InstructorID != "" {
		args = append(args, query.InstructorID)
		builder.WriteString(fmt.Sprintf(" AND tp.user_id = $%d", len(args)))
	}
	args = appendSessionWindow(&builder, args, "s", query)
	builder.WriteString(" ORDER BY s.scheduled_at ASC NULLS LAST")

	var rows []models.AcademicSession
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list academic sessions: %w", err)
	}
	return rows, nil
}

// CourseSessions lists interactive course sessions. Learners match through an
// enrolled course enrolment; instructors through the course's assigned teacher.
func (r *SessionRepository) CourseSessions(ctx context.Context, query models.SessionQuery) ([]models.CourseSession, error) {
	var builder strings.Builder
	builder.WriteString(courseSessionSelect)
	args := []interface{}{query.TenantID}
	builder.WriteString(" AND c.academy_id = $1")
	if len(query.LearnerIDs) > 0 {
		args = append(args, pq.Array(query.LearnerIDs))
		builder.WriteString(fmt.Sprintf(" AND EXISTS (SELECT 1 FROM interactive_course_enrollments e WHERE e.course_id = c.id AND e.student_id = ANY($%d) AND e.enrollment_status = 'enrolled')", len(args)))
	}
	if query.InstructorID != "" {
		args = append(args, query.InstructorID)
		builder.WriteString(fmt.Sprintf(" AND tp.user_id = $%d", len(args)))
	}
	args = appendSessionWindow(&builder, args, "s", query)
	builder.WriteString(" ORDER BY s.scheduled_at ASC NULLS LAST")

	var rows []models.CourseSession
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list course sessions: %w", err)
	}
	return rows, nil
}

func appendSessionWindow(builder *strings.Builder, args []interface{}, alias string, query models.SessionQuery) []interface{} {
	if len(query.Statuses) > 0 {
		args = append(args, pq.Array(query.Statuses))
		builder.WriteString(fmt.Sprintf(" AND LOWER(%s.status) = ANY($%d)", alias, len(args)))
	}
	if query.From != nil {
		args = append(args, *query.From)
		builder.WriteString(fmt.Sprintf(" AND %s.scheduled_at >= $%d", alias, len(args)))
	}
	if query.To != nil {
		args = append(args, *query.To)
		builder.WriteString(fmt.Sprintf(" AND %s.scheduled_at <= $%d", alias, len(args)))
	}
	return args
}
