package dto

import (
	"time"

	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/models"
)

// StudentStatistics is the composite statistics report for one learner.
type StudentStatistics struct {
	Sessions      SessionStatistics      `json:"sessions"`
	Subscriptions SubscriptionStatistics `json:"subscriptions"`
	Attendance    AttendanceStatistics   `json:"attendance"`
	Progress      ProgressStatistics     `json:"progress"`
	CalculatedAt  time.Time              `json:"calculated_at"`
}

// SessionCounts folds grouped status counts. Scheduled includes ongoing sessions.
type SessionCounts struct {
	Scheduled int `json:"scheduled"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
	Total     int `json:"total"`
}

// Add accumulates other into c.
func (c *SessionCounts) Add(other SessionCounts) {
	c.Scheduled += other.Scheduled
	c.Completed += other.Completed
	c.Cancelled += other.Cancelled
	c.Total += other.Total
}

// SessionStatistics holds per-kind session counts.
type SessionStatistics struct {
	Quran    SessionCounts `json:"quran"`
	Academic SessionCounts `json:"academic"`
	Course   SessionCounts `json:"course"`
	Totals   SessionCounts `json:"totals"`
}

// QuranSubscriptionStats summarises recitation subscriptions.
type QuranSubscriptionStats struct {
	Total             int `json:"total"`
	Active            int `json:"active"`
	SessionsRemaining int `json:"sessions_remaining"`
	SessionsUsed      int `json:"sessions_used"`
}

// AcademicSubscriptionStats summarises private lesson subscriptions.
type AcademicSubscriptionStats struct {
	Total             int `json:"total"`
	Active            int `json:"active"`
	SessionsRemaining int `json:"sessions_remaining"`
	SessionsCompleted int `json:"sessions_completed"`
}

// CourseSubscriptionStats summarises course enrolments.
type CourseSubscriptionStats struct {
	Total                 int `json:"total"`
	Active                int `json:"active"`
	RecordedCourses       int `json:"recorded_courses"`
	InteractiveCourses    int `json:"interactive_courses"`
	TotalLessonsCompleted int `json:"total_lessons_completed"`
}

// SubscriptionTotals are the cross-kind subscription counts.
type SubscriptionTotals struct {
	Active int `json:"active"`
	Total  int `json:"total"`
}

// SubscriptionStatistics holds per-kind subscription rollups.
type SubscriptionStatistics struct {
	Quran    QuranSubscriptionStats    `json:"quran"`
	Academic AcademicSubscriptionStats `json:"academic"`
	Course   CourseSubscriptionStats   `json:"course"`
	Totals   SubscriptionTotals        `json:"totals"`
}

// AttendanceStatistics holds attendance rates in percent, one decimal.
type AttendanceStatistics struct {
	OverallRate float64                 `json:"overall_rate"`
	ByKind      map[models.Kind]float64 `json:"by_kind"`
	ThisWeek    float64                 `json:"this_week"`
	ThisMonth   float64                 `json:"this_month"`
}

// QuranProgressStats describes the current active recitation subscription.
type QuranProgressStats struct {
	CurrentSurah      *int    `json:"current_surah"`
	MemorizationLevel *string `json:"memorization_level"`
	SessionsCompleted int     `json:"sessions_completed"`
	TotalSessions     int     `json:"total_sessions"`
	ProgressPercent   float64 `json:"progress_percent"`
}

// AcademicProgressStats sums active private lesson subscriptions.
type AcademicProgressStats struct {
	SubjectsCount     int `json:"subjects_count"`
	SessionsCompleted int `json:"sessions_completed"`
	SessionsScheduled int `json:"sessions_scheduled"`
}

// RecordedCourseProgress sums active recorded course enrolments.
type RecordedCourseProgress struct {
	Enrolled         int `json:"enrolled"`
	CompletedLessons int `json:"completed_lessons"`
	TotalLessons     int `json:"total_lessons"`
	WatchTimeMinutes int `json:"watch_time_minutes"`
}

// InteractiveCourseProgress sums active interactive course enrolments.
type InteractiveCourseProgress struct {
	Enrolled        int      `json:"enrolled"`
	AttendanceCount int      `json:"attendance_count"`
	AverageGrade    *float64 `json:"average_grade"`
}

// CourseProgressStats splits course progress by course type.
type CourseProgressStats struct {
	Recorded    RecordedCourseProgress    `json:"recorded_courses"`
	Interactive InteractiveCourseProgress `json:"interactive_courses"`
}

// ProgressStatistics holds per-kind learning progress.
type ProgressStatistics struct {
	Quran    QuranProgressStats    `json:"quran"`
	Academic AcademicProgressStats `json:"academic"`
	Courses  CourseProgressStats   `json:"courses"`
}

// DashboardOverview is the light dashboard composite.
type DashboardOverview struct {
	ActiveSubscriptions        int     `json:"active_subscriptions"`
	UpcomingSessions           int     `json:"upcoming_sessions"`
	CompletedSessionsThisMonth int     `json:"completed_sessions_this_month"`
	OverallAttendanceRate      float64 `json:"overall_attendance_rate"`
	SessionsRemaining          int     `json:"sessions_remaining"`
}
