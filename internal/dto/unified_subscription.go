package dto

import (
	"time"

	"github.com/abdelrahman-hamdy/itqan-platform-sub033/internal/models"
)

// NormalizedSubscription is the kind-independent view of a subscription or
// course enrolment.
type NormalizedSubscription struct {
	ID                string                    `json:"id"`
	Kind              models.Kind               `json:"kind"`
	KindLabel         string                    `json:"kind_label"`
	TenantID          string                    `json:"tenant_id"`
	Title             string                    `json:"title"`
	Status            models.SubscriptionStatus `json:"status"`
	StatusLabel       string                    `json:"status_label"`
	StatusColor       string                    `json:"status_color"`
	IsActive          bool                      `json:"is_active"`
	CanAccess         bool                      `json:"can_access"`
	CanRenew          bool                      `json:"can_renew"`
	StartDate         *time.Time                `json:"start_date"`
	EndDate           *time.Time                `json:"end_date"`
	DaysRemaining     *int                      `json:"days_remaining"`
	IsExpiringSoon    bool                      `json:"is_expiring_soon"`
	SessionsTotal     int                       `json:"sessions_total"`
	SessionsUsed      int                       `json:"sessions_used"`
	SessionsRemaining int                       `json:"sessions_remaining"`
	ProgressPercent   float64                   `json:"progress_percent"`
	LearnerID         string                    `json:"learner_id"`
	LearnerName       *string                   `json:"learner_name"`
	InstructorName    *string                   `json:"instructor_name"`
	InstructorAvatar  *string                   `json:"instructor_avatar"`
	Price             float64                   `json:"price"`
	Currency          string                    `json:"currency"`
	Context           map[string]any            `json:"context"`
	Color             string                    `json:"color"`
	Icon              string                    `json:"icon"`
	CreatedAt         time.Time                 `json:"created_at"`
	Source            models.SubscriptionRecord `json:"-"`
}

// KindSubscriptionCount holds the per-kind totals of a summary.
type KindSubscriptionCount struct {
	Total  int `json:"total"`
	Active int `json:"active"`
}

// SubscriptionSummary is the dashboard rollup of a learner's subscriptions.
type SubscriptionSummary struct {
	TotalSubscriptions     int                                   `json:"total_subscriptions"`
	ActiveSubscriptions    int                                   `json:"active_subscriptions"`
	ByKind                 map[models.Kind]KindSubscriptionCount `json:"by_kind"`
	TotalSessionsRemaining int                                   `json:"total_sessions_remaining"`
	TotalSessionsUsed      int                                   `json:"total_sessions_used"`
	ExpiringSoon           int                                   `json:"expiring_soon"`
}

// GroupedSubscriptions splits a learner's subscriptions by kind.
type GroupedSubscriptions struct {
	Quran    []NormalizedSubscription `json:"quran"`
	Academic []NormalizedSubscription `json:"academic"`
	Course   []NormalizedSubscription `json:"course"`
}
