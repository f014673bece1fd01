package models

import "time"

// StatusCountQuery scopes a grouped status count for one learner.
type StatusCountQuery struct {
	TenantID  string
	LearnerID string
	From      *time.Time
	To        *time.Time
}

// StatusCount is one row of a GROUP BY status count.
type StatusCount struct {
	Status string `db:"status"`
	Count  int    `db:"count"`
}

// SubscriptionAggregate is one row of a grouped subscription rollup. Columns a
// kind does not track are zero.
type SubscriptionAggregate struct {
	Status            string  `db:"status"`
	CourseType        string  `db:"course_type"`
	Count             int     `db:"count"`
	SessionsTotal     int     `db:"sessions_total"`
	SessionsUsed      int     `db:"sessions_used"`
	SessionsRemaining int     `db:"sessions_remaining"`
	SessionsScheduled int     `db:"sessions_scheduled"`
	AttendanceCount   int     `db:"attendance_count"`
	WatchTimeMinutes  int     `db:"watch_time_minutes"`
	GradeTotal        float64 `db:"grade_total"`
	GradedCount       int     `db:"graded_count"`
}

// QuranProgress is the snapshot of the learner's current active recitation subscription.
type QuranProgress struct {
	CurrentSurah      *int    `db:"current_surah"`
	MemorizationLevel *string `db:"memorization_level"`
	SessionsUsed      int     `db:"sessions_used"`
	TotalSessions     int     `db:"total_sessions"`
}
