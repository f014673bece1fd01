package service

import (
	"math"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/dto"
	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/models"
)

const (
	defaultKindColor = "#6B7280"
	calendarText     = "#ffffff"

	joinOpensBefore = 15 * time.Minute
	joinClosesAfter = 60 * time.Minute

	defaultAcademicWeeks = 4
)

var sessionStatusTable = map[string]models.SessionStatus{
	"unscheduled": models.SessionStatusUnscheduled,
	"pending":     models.SessionStatusUnscheduled,
	"scheduled":   models.SessionStatusScheduled,
	"ready":       models.SessionStatusReady,
	"ongoing":     models.SessionStatusOngoing,
	"live":        models.SessionStatusOngoing,
	"in_progress": models.SessionStatusOngoing,
	"completed":   models.SessionStatusCompleted,
	"done":        models.SessionStatusCompleted,
	"finished":    models.SessionStatusCompleted,
	"cancelled":   models.SessionStatusCancelled,
	"canceled":    models.SessionStatusCancelled,
	"absent":      models.SessionStatusCancelled,
	"missed":      models.SessionStatusCancelled,
}

var subscriptionStatusTable = map[string]models.SubscriptionStatus{
	"pending":   models.SubscriptionStatusPending,
	"active":    models.SubscriptionStatusActive,
	"paused":    models.SubscriptionStatusPaused,
	"suspended": models.SubscriptionStatusPaused,
	"cancelled": models.SubscriptionStatusCancelled,
	"canceled":  models.SubscriptionStatusCancelled,
	"expired":   models.SubscriptionStatusCancelled,
	"enrolled":  models.SubscriptionStatusEnrolled,
	"completed": models.SubscriptionStatusCompleted,
	"finished":  models.SubscriptionStatusCompleted,
}

var sessionStatusLabels = map[models.SessionStatus]string{
	models.SessionStatusUnscheduled: "Unscheduled",
	models.SessionStatusScheduled:   "Scheduled",
	models.SessionStatusReady:       "Ready",
	models.SessionStatusOngoing:     "Ongoing",
	models.SessionStatusCompleted:   "Completed",
	models.SessionStatusCancelled:   "Cancelled",
}

var subscriptionStatusLabels = map[models.SubscriptionStatus]string{
	models.SubscriptionStatusPending:   "Pending",
	models.SubscriptionStatusActive:    "Active",
	models.SubscriptionStatusPaused:    "Paused",
	models.SubscriptionStatusCancelled: "Cancelled",
	models.SubscriptionStatusEnrolled:  "Enrolled",
	models.SubscriptionStatusCompleted: "Completed",
}

var subscriptionStatusColors = map[models.SubscriptionStatus]string{
	models.SubscriptionStatusPending:   "warning",
	models.SubscriptionStatusActive:    "success",
	models.SubscriptionStatusPaused:    "gray",
	models.SubscriptionStatusCancelled: "danger",
	models.SubscriptionStatusEnrolled:  "info",
	models.SubscriptionStatusCompleted: "primary",
}

// SessionStatusOf maps a stored status string onto the shared enumeration. The
// boolean is false when the value is unknown and the Unscheduled fallback was used.
func SessionStatusOf(raw string) (models.SessionStatus, bool) {
	status, ok := sessionStatusTable[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return models.SessionStatusUnscheduled, false
	}
	return status, true
}

// SubscriptionStatusOf maps a stored status string onto the shared enumeration.
// Unknown values fall back to Pending.
func SubscriptionStatusOf(raw string) (models.SubscriptionStatus, bool) {
	status, ok := subscriptionStatusTable[strings.ToLower(strings.TrimSpace(raw))]
	if !ok {
		return models.SubscriptionStatusPending, false
	}
	return status, true
}

// sessionStatusValues lists every stored spelling that maps onto status, so a
// store filter matches legacy rows too.
func sessionStatusValues(status models.SessionStatus) []string {
	values := make([]string, 0, 4)
	for raw, mapped := range sessionStatusTable {
		if mapped == status {
			values = append(values, raw)
		}
	}
	sort.Strings(values)
	return values
}

func subscriptionStatusValues(status models.SubscriptionStatus) []string {
	values := make([]string, 0, 3)
	for raw, mapped := range subscriptionStatusTable {
		if mapped == status {
			values = append(values, raw)
		}
	}
	sort.Strings(values)
	return values
}

// ClassifySession reports the kind and normalized status of a session record.
func ClassifySession(record models.SessionRecord) (models.Kind, models.SessionStatus, bool) {
	switch r := record.(type) {
	case *models.QuranSession:
		status, ok := SessionStatusOf(r.Status)
		return models.KindQuran, status, ok
	case *models.AcademicSession:
		status, ok := SessionStatusOf(r.Status)
		return models.KindAcademic, status, ok
	case *models.CourseSession:
		status, ok := SessionStatusOf(r.Status)
		return models.KindCourse, status, ok
	default:
		return "", models.SessionStatusUnscheduled, false
	}
}

// ClassifySubscription reports the kind and normalized status of a subscription record.
func ClassifySubscription(record models.SubscriptionRecord) (models.Kind, models.SubscriptionStatus, bool) {
	switch r := record.(type) {
	case *models.QuranSubscription:
		status, ok := SubscriptionStatusOf(r.Status)
		return models.KindQuran, status, ok
	case *models.AcademicSubscription:
		status, ok := SubscriptionStatusOf(r.Status)
		return models.KindAcademic, status, ok
	case *models.CourseSubscription:
		status, ok := SubscriptionStatusOf(r.Status)
		return models.KindCourse, status, ok
	default:
		return "", models.SubscriptionStatusPending, false
	}
}

// ColorOf returns the display color of a kind.
func ColorOf(kind models.Kind) string {
	switch kind {
	case models.KindQuran:
		return "#10B981"
	case models.KindAcademic:
		return "#3B82F6"
	case models.KindCourse:
		return "#8B5CF6"
	default:
		return defaultKindColor
	}
}

// IconOf returns the icon name of a kind.
func IconOf(kind models.Kind) string {
	switch kind {
	case models.KindQuran:
		return "heroicon-o-book-open"
	case models.KindAcademic:
		return "heroicon-o-academic-cap"
	case models.KindCourse:
		return "heroicon-o-play-circle"
	default:
		return "heroicon-o-calendar"
	}
}

// SessionKindLabel returns the human label of a session kind.
func SessionKindLabel(kind models.Kind) string {
	switch kind {
	case models.KindQuran:
		return "Quran Session"
	case models.KindAcademic:
		return "Academic Session"
	case models.KindCourse:
		return "Interactive Course Session"
	default:
		return "Session"
	}
}

// SubscriptionKindLabel returns the human label of a subscription kind.
func SubscriptionKindLabel(kind models.Kind) string {
	switch kind {
	case models.KindQuran:
		return "Quran Subscription"
	case models.KindAcademic:
		return "Academic Subscription"
	case models.KindCourse:
		return "Course Subscription"
	default:
		return "Subscription"
	}
}

// SessionTitleOf derives a display title; titles are never stored.
func SessionTitleOf(record models.SessionRecord) string {
	switch r := record.(type) {
	case *models.QuranSession:
		return firstNonEmpty(SessionKindLabel(models.KindQuran), r.IndividualCircleName, r.CircleName, r.SessionCode)
	case *models.AcademicSession:
		return firstNonEmpty(SessionKindLabel(models.KindAcademic), r.Subject, r.SessionCode)
	case *models.CourseSession:
		return firstNonEmpty(SessionKindLabel(models.KindCourse), r.CourseTitle, r.Title)
	default:
		return SessionKindLabel("")
	}
}

// SessionInstructorNameOf returns the display name of the session's instructor.
func SessionInstructorNameOf(record models.SessionRecord) *string {
	switch r := record.(type) {
	case *models.QuranSession:
		return r.TeacherName
	case *models.AcademicSession:
		return r.TeacherName
	case *models.CourseSession:
		return r.TeacherName
	default:
		return nil
	}
}

// SubscriptionTitleOf derives a display title for a subscription.
func SubscriptionTitleOf(record models.SubscriptionRecord) string {
	switch r := record.(type) {
	case *models.QuranSubscription:
		return firstNonEmpty(SubscriptionKindLabel(models.KindQuran), r.PackageName, r.IndividualCircleName, r.CircleName)
	case *models.AcademicSubscription:
		return firstNonEmpty(SubscriptionKindLabel(models.KindAcademic), r.LessonName, r.SubjectName)
	case *models.CourseSubscription:
		return firstNonEmpty(SubscriptionKindLabel(models.KindCourse), r.CourseTitle)
	default:
		return SubscriptionKindLabel("")
	}
}

// SubscriptionInstructorNameOf returns the display name of the subscription's instructor.
func SubscriptionInstructorNameOf(record models.SubscriptionRecord) *string {
	switch r := record.(type) {
	case *models.QuranSubscription:
		return r.TeacherName
	case *models.AcademicSubscription:
		return r.TeacherName
	case *models.CourseSubscription:
		return r.TeacherName
	default:
		return nil
	}
}

// CanJoin reports whether a session is joinable at now: ongoing sessions always
// are, scheduled ones from 15 minutes before until 60 minutes after the start.
func CanJoin(status models.SessionStatus, scheduledAt *time.Time, now time.Time) bool {
	switch status {
	case models.SessionStatusOngoing:
		return true
	case models.SessionStatusScheduled:
		if scheduledAt == nil {
			return false
		}
		untilStart := scheduledAt.Sub(now)
		return untilStart <= joinOpensBefore && untilStart >= -joinClosesAfter
	default:
		return false
	}
}

// SubscriptionProgress returns the kind-aware used and total session counts.
func SubscriptionProgress(record models.SubscriptionRecord) (used, total int) {
	switch r := record.(type) {
	case *models.QuranSubscription:
		return intValue(r.SessionsUsed), intValue(r.TotalSessions)
	case *models.AcademicSubscription:
		total = intValue(r.TotalSessions)
		if r.TotalSessions == nil {
			weeks := intValue(r.WeeksTotal)
			if weeks <= 0 {
				weeks = defaultAcademicWeeks
			}
			total = intValue(r.SessionsPerWeek) * weeks
		}
		return intValue(r.TotalSessionsCompleted), total
	case *models.CourseSubscription:
		return intValue(r.CompletedLessons), intValue(r.TotalLessons)
	default:
		return 0, 0
	}
}

// ProgressOf returns the remaining count and the percentage used, bounded to
// [0, 100]. A non-positive total always yields zero progress.
func ProgressOf(used, total int) (remaining int, percent float64) {
	if total <= 0 {
		return 0, 0
	}
	if used < 0 {
		used = 0
	}
	remaining = total - used
	if remaining < 0 {
		remaining = 0
	}
	percent = roundOneDecimal(100 * float64(used) / float64(total))
	if percent > 100 {
		percent = 100
	}
	return remaining, percent
}

// AttendanceRate is completed over terminal sessions in percent, or 0 when no
// session has resolved.
func AttendanceRate(completed, terminal int) float64 {
	if terminal <= 0 {
		return 0
	}
	return roundOneDecimal(100 * float64(completed) / float64(terminal))
}

// DaysRemaining returns the whole days until end, never negative.
func DaysRemaining(end *time.Time, now time.Time) *int {
	if end == nil {
		return nil
	}
	days := int(end.Sub(now).Hours() / 24)
	if days < 0 {
		days = 0
	}
	return &days
}

// IsExpiringSoon reports whether end falls within window of now. Subscriptions
// without an end date never expire.
func IsExpiringSoon(end *time.Time, now time.Time, window time.Duration) bool {
	if end == nil {
		return false
	}
	return end.Sub(now) <= window
}

func subscriptionCanAccess(status models.SubscriptionStatus) bool {
	return status == models.SubscriptionStatusActive || status == models.SubscriptionStatusEnrolled
}

func subscriptionCanRenew(status models.SubscriptionStatus) bool {
	return status == models.SubscriptionStatusCancelled || status == models.SubscriptionStatusCompleted
}

// RecordClassifier turns source records into normalized views. Unmapped status
// strings are logged and degraded, never returned as errors.
type RecordClassifier struct {
	logger          *zap.Logger
	metrics         *MetricsService
	defaultCurrency string
	expiryWindow    time.Duration
}

// NewRecordClassifier constructs a classifier.
func NewRecordClassifier(logger *zap.Logger, metrics *MetricsService, defaultCurrency string, expiryWindow time.Duration) *RecordClassifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	defaultCurrency = strings.ToUpper(strings.TrimSpace(defaultCurrency))
	if defaultCurrency == "" {
		defaultCurrency = "SAR"
	}
	if expiryWindow <= 0 {
		expiryWindow = 7 * 24 * time.Hour
	}
	return &RecordClassifier{logger: logger, metrics: metrics, defaultCurrency: defaultCurrency, expiryWindow: expiryWindow}
}

// NormalizeSession maps any session record onto the shared view.
func (c *RecordClassifier) NormalizeSession(record models.SessionRecord, now time.Time) dto.NormalizedSession {
	kind, status, ok := ClassifySession(record)
	view := dto.NormalizedSession{
		Kind:           kind,
		KindLabel:      SessionKindLabel(kind),
		Title:          SessionTitleOf(record),
		Status:         status,
		StatusLabel:    sessionStatusLabels[status],
		InstructorName: SessionInstructorNameOf(record),
		Color:          ColorOf(kind),
		Icon:           IconOf(kind),
		Source:         record,
	}

	var raw string
	switch r := record.(type) {
	case *models.QuranSession:
		raw = r.Status
		view.ID = r.ID
		view.TenantID = r.AcademyID
		view.SessionCode = r.SessionCode
		view.ScheduledAt = utcPtr(r.ScheduledAt)
		view.DurationMinutes = intOrDefault(r.DurationMinutes, 30)
		view.InstructorAvatar = r.TeacherAvatar
		view.LearnerID = r.StudentID
		view.LearnerName = r.StudentName
		view.MeetingLink = r.MeetingLink
		view.MeetingRoomName = r.MeetingRoomName
		view.CreatedAt = r.CreatedAt.UTC()
		circle := r.CircleName
		if circle == nil {
			circle = r.IndividualCircleName
		}
		view.Context = map[string]any{
			"circle_name": circle,
			"circle_type": r.SessionType,
			"is_group":    r.SessionType == "circle" || r.SessionType == "group",
		}
	case *models.AcademicSession:
		raw = r.Status
		view.ID = r.ID
		view.TenantID = r.AcademyID
		view.SessionCode = r.SessionCode
		view.ScheduledAt = utcPtr(r.ScheduledAt)
		view.DurationMinutes = intOrDefault(r.DurationMinutes, 60)
		view.InstructorAvatar = r.TeacherAvatar
		view.LearnerID = r.StudentID
		view.LearnerName = r.StudentName
		view.MeetingLink = r.MeetingLink
		view.MeetingRoomName = r.MeetingRoomName
		view.CreatedAt = r.CreatedAt.UTC()
		view.Context = map[string]any{
			"lesson_name": r.LessonName,
			"subject":     r.Subject,
		}
	case *models.CourseSession:
		raw = r.Status
		view.ID = r.ID
		view.TenantID = r.AcademyID
		view.SessionCode = r.SessionCode
		view.ScheduledAt = utcPtr(r.ScheduledAt)
		view.DurationMinutes = intOrDefault(r.DurationMinutes, 60)
		view.InstructorAvatar = r.TeacherAvatar
		view.MeetingLink = r.MeetingLink
		view.MeetingRoomName = r.MeetingRoomName
		view.CreatedAt = r.CreatedAt.UTC()
		view.Context = map[string]any{
			"course_id":        r.CourseID,
			"course_title":     r.CourseTitle,
			"session_number":   r.SessionNumber,
			"enrollment_count": r.EnrollmentsCount,
		}
	}
	if view.Context == nil {
		view.Context = map[string]any{}
	}
	if !ok {
		c.metrics.RecordUnmappedStatus("session", string(kind))
		c.logger.Warn("unmapped session status",
			zap.String("kind", string(kind)),
			zap.String("id", view.ID),
			zap.String("status", raw),
			zap.String("fallback", string(status)),
		)
	}
	view.CanJoin = CanJoin(view.Status, view.ScheduledAt, now)
	return view
}

// NormalizeSubscription maps any subscription record onto the shared view.
func (c *RecordClassifier) NormalizeSubscription(record models.SubscriptionRecord, now time.Time) dto.NormalizedSubscription {
	kind, status, ok := ClassifySubscription(record)
	used, total := SubscriptionProgress(record)
	remaining, percent := ProgressOf(used, total)
	view := dto.NormalizedSubscription{
		Kind:              kind,
		KindLabel:         SubscriptionKindLabel(kind),
		Title:             SubscriptionTitleOf(record),
		Status:            status,
		StatusLabel:       subscriptionStatusLabels[status],
		StatusColor:       subscriptionStatusColors[status],
		IsActive:          status == models.SubscriptionStatusActive,
		CanAccess:         subscriptionCanAccess(status),
		CanRenew:          subscriptionCanRenew(status),
		SessionsTotal:     total,
		SessionsUsed:      used,
		SessionsRemaining: remaining,
		ProgressPercent:   percent,
		InstructorName:    SubscriptionInstructorNameOf(record),
		Currency:          c.defaultCurrency,
		Color:             ColorOf(kind),
		Icon:              IconOf(kind),
		Source:            record,
	}
	if view.SessionsUsed < 0 {
		view.SessionsUsed = 0
	}

	var raw string
	var currency *string
	switch r := record.(type) {
	case *models.QuranSubscription:
		raw = r.Status
		view.ID = r.ID
		view.TenantID = r.AcademyID
		view.LearnerID = r.StudentID
		view.LearnerName = r.StudentName
		view.InstructorAvatar = r.TeacherAvatar
		view.StartDate = utcPtr(r.StartDate)
		view.EndDate = utcPtr(r.EndDate)
		view.Price = floatValue(r.TotalPrice)
		view.CreatedAt = r.CreatedAt.UTC()
		currency = r.Currency
		circle := r.CircleName
		if circle == nil {
			circle = r.IndividualCircleName
		}
		view.Context = map[string]any{
			"subscription_type":  r.SubscriptionType,
			"is_individual":      r.SubscriptionType == "individual",
			"circle_name":        circle,
			"package_name":       r.PackageName,
			"memorization_level": r.MemorizationLevel,
			"has_trial":          r.IsTrialActive,
		}
	case *models.AcademicSubscription:
		raw = r.Status
		view.ID = r.ID
		view.TenantID = r.AcademyID
		view.LearnerID = r.StudentID
		view.LearnerName = r.StudentName
		view.InstructorAvatar = r.TeacherAvatar
		view.StartDate = utcPtr(r.StartDate)
		view.EndDate = utcPtr(r.EndDate)
		view.Price = floatValue(r.TotalPrice)
		view.CreatedAt = r.CreatedAt.UTC()
		currency = r.Currency
		view.Context = map[string]any{
			"subject_name":      r.SubjectName,
			"grade_level":       r.GradeLevelName,
			"sessions_per_week": r.SessionsPerWeek,
			"has_trial":         r.HasTrialSession,
			"trial_used":        r.TrialSessionUsed,
		}
	case *models.CourseSubscription:
		raw = r.Status
		view.ID = r.ID
		view.TenantID = r.AcademyID
		view.LearnerID = r.StudentID
		view.LearnerName = r.StudentName
		view.InstructorAvatar = r.TeacherAvatar
		view.StartDate = utcPtr(r.StartDate)
		view.EndDate = utcPtr(r.EndDate)
		view.Price = floatValue(r.PricePaid)
		view.CreatedAt = r.CreatedAt.UTC()
		currency = r.Currency
		view.Context = map[string]any{
			"course_type":      r.CourseType,
			"is_recorded":      r.CourseType == models.CourseTypeRecorded,
			"is_interactive":   r.CourseType == models.CourseTypeInteractive,
			"lifetime_access":  r.LifetimeAccess,
			"attendance_count": r.AttendanceCount,
			"final_grade":      r.FinalGrade,
			"quiz_passed":      r.QuizPassed,
		}
	}
	if view.Context == nil {
		view.Context = map[string]any{}
	}
	if currency != nil && *currency != "" {
		view.Currency = strings.ToUpper(*currency)
	}
	view.DaysRemaining = DaysRemaining(view.EndDate, now)
	view.IsExpiringSoon = IsExpiringSoon(view.EndDate, now, c.expiryWindow)
	if !ok {
		c.metrics.RecordUnmappedStatus("subscription", string(kind))
		c.logger.Warn("unmapped subscription status",
			zap.String("kind", string(kind)),
			zap.String("id", view.ID),
			zap.String("status", raw),
			zap.String("fallback", string(status)),
		)
	}
	return view
}

// ToCalendarEvent projects a normalized session onto a calendar event.
func ToCalendarEvent(session dto.NormalizedSession) dto.CalendarEvent {
	event := dto.CalendarEvent{
		ID:              string(session.Kind) + "_" + session.ID,
		Title:           session.Title,
		Start:           session.ScheduledAt,
		BackgroundColor: session.Color,
		BorderColor:     session.Color,
		TextColor:       calendarText,
		ExtendedProps: dto.CalendarEventDetail{
			Kind:        session.Kind,
			KindLabel:   session.KindLabel,
			SessionID:   session.ID,
			SessionCode: session.SessionCode,
			Instructor:  session.InstructorName,
			Learner:     session.LearnerName,
			Status:      session.Status,
			StatusLabel: session.StatusLabel,
			MeetingLink: session.MeetingLink,
			CanJoin:     session.CanJoin,
			Context:     session.Context,
		},
	}
	if session.ScheduledAt != nil {
		end := session.ScheduledAt.Add(time.Duration(session.DurationMinutes) * time.Minute)
		event.End = &end
	}
	return event
}

func roundOneDecimal(v float64) float64 {
	return math.Round(v*10) / 10
}

func firstNonEmpty(fallback string, values ...*string) string {
	for _, v := range values {
		if v != nil && strings.TrimSpace(*v) != "" {
			return *v
		}
	}
	return fallback
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func intValue(v *int) int {
	if v == nil {
		return 0
	}
	return *v
}

func intOrDefault(v *int, fallback int) int {
	if v == nil || *v <= 0 {
		return fallback
	}
	return *v
}

func floatValue(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
