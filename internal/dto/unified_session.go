package dto

import (
	"time"

	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/models"
)

// NormalizedSession is the kind-independent view of a session.
type NormalizedSession struct {
	ID               string               `json:"id"`
	Kind             models.Kind          `json:"kind"`
	KindLabel        string               `json:"kind_label"`
	TenantID         string               `json:"tenant_id"`
	SessionCode      *string              `json:"session_code"`
	Title            string               `json:"title"`
	ScheduledAt      *time.Time           `json:"scheduled_at"`
	DurationMinutes  int                  `json:"duration_minutes"`
	Status           models.SessionStatus `json:"status"`
	StatusLabel      string               `json:"status_label"`
	InstructorName   *string              `json:"instructor_name"`
	InstructorAvatar *string              `json:"instructor_avatar"`
	LearnerID        *string              `json:"learner_id"`
	LearnerName      *string              `json:"learner_name"`
	MeetingLink      *string              `json:"meeting_link"`
	MeetingRoomName  *string              `json:"meeting_room_name"`
	CanJoin          bool                 `json:"can_join"`
	Color            string               `json:"color"`
	Icon             string               `json:"icon"`
	Context          map[string]any       `json:"context"`
	CreatedAt        time.Time            `json:"created_at"`
	Source           models.SessionRecord `json:"-"`
}

// CalendarEvent is the calendar widget projection of a NormalizedSession.
type CalendarEvent struct {
	ID              string              `json:"id"`
	Title           string              `json:"title"`
	Start           *time.Time          `json:"start"`
	End             *time.Time          `json:"end"`
	BackgroundColor string              `json:"backgroundColor"`
	BorderColor     string              `json:"borderColor"`
	TextColor       string              `json:"textColor"`
	ExtendedProps   CalendarEventDetail `json:"extendedProps"`
}

// CalendarEventDetail mirrors the normalized fields a calendar popover needs.
type CalendarEventDetail struct {
	Kind        models.Kind          `json:"type"`
	KindLabel   string               `json:"type_label"`
	SessionID   string               `json:"session_id"`
	SessionCode *string              `json:"session_code"`
	Instructor  *string              `json:"teacher"`
	Learner     *string              `json:"student"`
	Status      models.SessionStatus `json:"status"`
	StatusLabel string               `json:"status_label"`
	MeetingLink *string              `json:"meeting_link"`
	CanJoin     bool                 `json:"can_join"`
	Context     map[string]any       `json:"context"`
}
