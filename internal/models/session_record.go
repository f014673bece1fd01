package models

import "time"

// SessionStatus is the shared lifecycle state of every session kind.
type SessionStatus string

const (
	SessionStatusUnscheduled SessionStatus = "unscheduled"
	SessionStatusScheduled   SessionStatus = "scheduled"
	SessionStatusReady       SessionStatus = "ready"
	SessionStatusOngoing     SessionStatus = "ongoing"
	SessionStatusCompleted   SessionStatus = "completed"
	SessionStatusCancelled   SessionStatus = "cancelled"
)

// AllSessionStatuses lists the six statuses in lifecycle order.
func AllSessionStatuses() []SessionStatus {
	return []SessionStatus{
		SessionStatusUnscheduled,
		SessionStatusScheduled,
		SessionStatusReady,
		SessionStatusOngoing,
		SessionStatusCompleted,
		SessionStatusCancelled,
	}
}

// Valid reports whether s is one of the six shared statuses.
func (s SessionStatus) Valid() bool {
	for _, known := range AllSessionStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether the status no longer changes.
func (s SessionStatus) Terminal() bool {
	return s == SessionStatusCompleted || s == SessionStatusCancelled
}

// SessionRecord is a session row of one of the three kinds. The set of
// implementations is closed: QuranSession, AcademicSession and CourseSession.
type SessionRecord interface {
	SessionKind() Kind
	sessionRecord()
}

// QuranSession is a recitation session joined with its circle and teacher.
type QuranSession struct {
	ID                   string     `db:"id" json:"id"`
	AcademyID            string     `db:"academy_id" json:"academy_id"`
	SessionCode          *string    `db:"session_code" json:"session_code,omitempty"`
	SessionType          string     `db:"session_type" json:"session_type"`
	Status               string     `db:"status" json:"status"`
	ScheduledAt          *time.Time `db:"scheduled_at" json:"scheduled_at,omitempty"`
	DurationMinutes      *int       `db:"duration_minutes" json:"duration_minutes,omitempty"`
	StudentID            *string    `db:"student_id" json:"student_id,omitempty"`
	StudentName          *string    `db:"student_name" json:"student_name,omitempty"`
	TeacherID            *string    `db:"quran_teacher_id" json:"quran_teacher_id,omitempty"`
	TeacherName          *string    `db:"teacher_name" json:"teacher_name,omitempty"`
	TeacherAvatar        *string    `db:"teacher_avatar" json:"teacher_avatar,omitempty"`
	CircleName           *string    `db:"circle_name" json:"circle_name,omitempty"`
	IndividualCircleName *string    `db:"individual_circle_name" json:"individual_circle_name,omitempty"`
	MeetingLink          *string    `db:"meeting_link" json:"meeting_link,omitempty"`
	MeetingRoomName      *string    `db:"meeting_room_name" json:"meeting_room_name,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
}

// AcademicSession is a private lesson session joined with its lesson and teacher profile.
type AcademicSession struct {
	ID              string     `db:"id" json:"id"`
	AcademyID       string     `db:"academy_id" json:"academy_id"`
	SessionCode     *string    `db:"session_code" json:"session_code,omitempty"`
	Status          string     `db:"status" json:"status"`
	ScheduledAt     *time.Time `db:"scheduled_at" json:"scheduled_at,omitempty"`
	DurationMinutes *int       `db:"duration_minutes" json:"duration_minutes,omitempty"`
	StudentID       *string    `db:"student_id" json:"student_id,omitempty"`
	StudentName     *string    `db:"student_name" json:"student_name,omitempty"`
	TeacherUserID   *string    `db:"teacher_user_id" json:"teacher_user_id,omitempty"`
	TeacherName     *string    `db:"teacher_name" json:"teacher_name,omitempty"`
	TeacherAvatar   *string    `db:"teacher_avatar" json:"teacher_avatar,omitempty"`
	LessonName      *string    `db:"lesson_name" json:"lesson_name,omitempty"`
	Subject         *string    `db:"subject" json:"subject,omitempty"`
	MeetingLink     *string    `db:"meeting_link" json:"meeting_link,omitempty"`
	MeetingRoomName *string    `db:"meeting_room_name" json:"meeting_room_name,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
}

// CourseSession is an interactive course session joined with its course.
// Learners reach it through course enrolments, never a direct student column.
type CourseSession struct {
	ID               string     `db:"id" json:"id"`
	AcademyID        string     `db:"academy_id" json:"academy_id"`
	CourseID         string     `db:"course_id" json:"course_id"`
	CourseTitle      *string    `db:"course_title" json:"course_title,omitempty"`
	Title            *string    `db:"title" json:"title,omitempty"`
	SessionCode      *string    `db:"session_code" json:"session_code,omitempty"`
	SessionNumber    *int       `db:"session_number" json:"session_number,omitempty"`
	Status           string     `db:"status" json:"status"`
	ScheduledAt      *time.Time `db:"scheduled_at" json:"scheduled_at,omitempty"`
	DurationMinutes  *int       `db:"duration_minutes" json:"duration_minutes,omitempty"`
	TeacherUserID    *string    `db:"teacher_user_id" json:"teacher_user_id,omitempty"`
	TeacherName      *string    `db:"teacher_name" json:"teacher_name,omitempty"`
	TeacherAvatar    *string    `db:"teacher_avatar" json:"teacher_avatar,omitempty"`
	EnrollmentsCount int        `db:"enrollments_count" json:"enrollments_count"`
	MeetingLink      *string    `db:"meeting_link" json:"meeting_link,omitempty"`
	MeetingRoomName  *string    `db:"meeting_room_name" json:"meeting_room_name,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

func (*QuranSession) SessionKind() Kind    { return KindQuran }
func (*AcademicSession) SessionKind() Kind { return KindAcademic }
func (*CourseSession) SessionKind() Kind   { return KindCourse }

func (*QuranSession) sessionRecord()    {}
func (*AcademicSession) sessionRecord() {}
func (*CourseSession) sessionRecord()   {}

// SessionQuery scopes a per-kind session fetch. Exactly one of LearnerIDs or
// InstructorID is set by callers.
type SessionQuery struct {
	TenantID     string
	LearnerIDs   []string
	InstructorID string
	Statuses     []string
	From         *time.Time
	To           *time.Time
}
