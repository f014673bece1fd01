package models

import "time"

// SubscriptionStatus is the shared state of every subscription kind. Each kind
// only uses a subset.
type SubscriptionStatus string

const (
	SubscriptionStatusPending   SubscriptionStatus = "pending"
	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusPaused    SubscriptionStatus = "paused"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusEnrolled  SubscriptionStatus = "enrolled"
	SubscriptionStatusCompleted SubscriptionStatus = "completed"
)

// AllSubscriptionStatuses lists every subscription status.
func AllSubscriptionStatuses() []SubscriptionStatus {
	return []SubscriptionStatus{
		SubscriptionStatusPending,
		SubscriptionStatusActive,
		SubscriptionStatusPaused,
		SubscriptionStatusCancelled,
		SubscriptionStatusEnrolled,
		SubscriptionStatusCompleted,
	}
}

// Valid reports whether s is a known subscription status.
func (s SubscriptionStatus) Valid() bool {
	for _, known := range AllSubscriptionStatuses() {
		if s == known {
			return true
		}
	}
	return false
}

// Course types carried by course subscriptions.
const (
	CourseTypeRecorded    = "recorded"
	CourseTypeInteractive = "interactive"
)

// SubscriptionRecord is a subscription row of one of the three kinds. The set
// of implementations is closed: QuranSubscription, AcademicSubscription and
// CourseSubscription.
type SubscriptionRecord interface {
	SubscriptionKind() Kind
	subscriptionRecord()
}

// QuranSubscription is a recitation package subscription.
type QuranSubscription struct {
	ID                   string     `db:"id" json:"id"`
	AcademyID            string     `db:"academy_id" json:"academy_id"`
	StudentID            string     `db:"student_id" json:"student_id"`
	StudentName          *string    `db:"student_name" json:"student_name,omitempty"`
	Status               string     `db:"status" json:"status"`
	SubscriptionType     string     `db:"subscription_type" json:"subscription_type"`
	PackageName          *string    `db:"package_name" json:"package_name,omitempty"`
	CircleName           *string    `db:"circle_name" json:"circle_name,omitempty"`
	IndividualCircleName *string    `db:"individual_circle_name" json:"individual_circle_name,omitempty"`
	TeacherName          *string    `db:"teacher_name" json:"teacher_name,omitempty"`
	TeacherAvatar        *string    `db:"teacher_avatar" json:"teacher_avatar,omitempty"`
	MemorizationLevel    *string    `db:"memorization_level" json:"memorization_level,omitempty"`
	CurrentSurah         *int       `db:"current_surah" json:"current_surah,omitempty"`
	IsTrialActive        bool       `db:"is_trial_active" json:"is_trial_active"`
	TotalSessions        *int       `db:"total_sessions" json:"total_sessions,omitempty"`
	SessionsUsed         *int       `db:"sessions_used" json:"sessions_used,omitempty"`
	StartDate            *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate              *time.Time `db:"end_date" json:"end_date,omitempty"`
	TotalPrice           *float64   `db:"total_price" json:"total_price,omitempty"`
	Currency             *string    `db:"currency" json:"currency,omitempty"`
	CreatedAt            time.Time  `db:"created_at" json:"created_at"`
}

// AcademicSubscription is a private lesson subscription.
type AcademicSubscription struct {
	ID                     string     `db:"id" json:"id"`
	AcademyID              string     `db:"academy_id" json:"academy_id"`
	StudentID              string     `db:"student_id" json:"student_id"`
	StudentName            *string    `db:"student_name" json:"student_name,omitempty"`
	Status                 string     `db:"status" json:"status"`
	SubjectName            *string    `db:"subject_name" json:"subject_name,omitempty"`
	GradeLevelName         *string    `db:"grade_level_name" json:"grade_level_name,omitempty"`
	LessonName             *string    `db:"lesson_name" json:"lesson_name,omitempty"`
	TeacherName            *string    `db:"teacher_name" json:"teacher_name,omitempty"`
	TeacherAvatar          *string    `db:"teacher_avatar" json:"teacher_avatar,omitempty"`
	SessionsPerWeek        *int       `db:"sessions_per_week" json:"sessions_per_week,omitempty"`
	WeeksTotal             *int       `db:"weeks_total" json:"weeks_total,omitempty"`
	TotalSessions          *int       `db:"total_sessions" json:"total_sessions,omitempty"`
	TotalSessionsCompleted *int       `db:"total_sessions_completed" json:"total_sessions_completed,omitempty"`
	TotalSessionsScheduled *int       `db:"total_sessions_scheduled" json:"total_sessions_scheduled,omitempty"`
	HasTrialSession        bool       `db:"has_trial_session" json:"has_trial_session"`
	TrialSessionUsed       bool       `db:"trial_session_used" json:"trial_session_used"`
	StartDate              *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate                *time.Time `db:"end_date" json:"end_date,omitempty"`
	TotalPrice             *float64   `db:"total_price" json:"total_price,omitempty"`
	Currency               *string    `db:"currency" json:"currency,omitempty"`
	CreatedAt              time.Time  `db:"created_at" json:"created_at"`
}

// CourseSubscription is an enrolment in a recorded or interactive course.
type CourseSubscription struct {
	ID               string     `db:"id" json:"id"`
	AcademyID        string     `db:"academy_id" json:"academy_id"`
	StudentID        string     `db:"student_id" json:"student_id"`
	StudentName      *string    `db:"student_name" json:"student_name,omitempty"`
	Status           string     `db:"status" json:"status"`
	CourseType       string     `db:"course_type" json:"course_type"`
	CourseTitle      *string    `db:"course_title" json:"course_title,omitempty"`
	TeacherName      *string    `db:"teacher_name" json:"teacher_name,omitempty"`
	TeacherAvatar    *string    `db:"teacher_avatar" json:"teacher_avatar,omitempty"`
	TotalLessons     *int       `db:"total_lessons" json:"total_lessons,omitempty"`
	CompletedLessons *int       `db:"completed_lessons" json:"completed_lessons,omitempty"`
	LifetimeAccess   bool       `db:"lifetime_access" json:"lifetime_access"`
	AttendanceCount  int        `db:"attendance_count" json:"attendance_count"`
	FinalGrade       *float64   `db:"final_grade" json:"final_grade,omitempty"`
	QuizPassed       bool       `db:"quiz_passed" json:"quiz_passed"`
	StartDate        *time.Time `db:"start_date" json:"start_date,omitempty"`
	EndDate          *time.Time `db:"end_date" json:"end_date,omitempty"`
	PricePaid        *float64   `db:"price_paid" json:"price_paid,omitempty"`
	Currency         *string    `db:"currency" json:"currency,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

func (*QuranSubscription) SubscriptionKind() Kind    { return KindQuran }
func (*AcademicSubscription) SubscriptionKind() Kind { return KindAcademic }
func (*CourseSubscription) SubscriptionKind() Kind   { return KindCourse }

func (*QuranSubscription) subscriptionRecord()    {}
func (*AcademicSubscription) subscriptionRecord() {}
func (*CourseSubscription) subscriptionRecord()   {}

// SubscriptionQuery scopes a per-kind subscription fetch.
type SubscriptionQuery struct {
	TenantID   string
	LearnerIDs []string
	Statuses   []string
}
