package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrInvalidNotificationType = errors.New("model: invalid notification type")
	ErrInvalidPriority         = errors.New("model: invalid notification priority")
	ErrVariantMismatch         = errors.New("model: notification details do not match type")
)

type NotificationType string

const (
	NotificationMilestone NotificationType = "milestone"
	NotificationDeadline  NotificationType = "deadline"
	NotificationStreak    NotificationType = "streak"
	NotificationSummary   NotificationType = "summary"
	NotificationReminder  NotificationType = "reminder"
)

func (t NotificationType) IsValid() bool {
	switch t {
	case NotificationMilestone, NotificationDeadline, NotificationStreak, NotificationSummary, NotificationReminder:
		return true
	default:
		return false
	}
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

func (p Priority) IsValid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	default:
		return false
	}
}

type DeadlineLevel string

const (
	DeadlineInfo    DeadlineLevel = "info"
	DeadlineWarning DeadlineLevel = "warning"
	DeadlineUrgent  DeadlineLevel = "urgent"
)

type StreakType string

const (
	StreakDaily   StreakType = "daily"
	StreakWeekly  StreakType = "weekly"
	StreakMonthly StreakType = "monthly"
)

// Noun is the singular calendar unit the streak counts.
func (s StreakType) Noun() string {
	switch s {
	case StreakWeekly:
		return "week"
	case StreakMonthly:
		return "month"
	default:
		return "day"
	}
}

type SummaryPeriod string

const (
	SummaryDaily   SummaryPeriod = "daily"
	SummaryWeekly  SummaryPeriod = "weekly"
	SummaryMonthly SummaryPeriod = "monthly"
	SummaryNever   SummaryPeriod = "never"
)

func (p SummaryPeriod) IsValid() bool {
	switch p {
	case SummaryDaily, SummaryWeekly, SummaryMonthly, SummaryNever:
		return true
	default:
		return false
	}
}

type ReminderKind string

const (
	ReminderGoalCheckIn    ReminderKind = "goal_check_in"
	ReminderMissedRun      ReminderKind = "missed_run"
	ReminderWeeklyPlanning ReminderKind = "weekly_planning"
)

type MilestoneDetails struct {
	Percentage   int     `json:"percentage"`
	CurrentValue float64 `json:"currentValue"`
	TargetValue  float64 `json:"targetValue"`
	Unit         string  `json:"unit"`
}

type DeadlineDetails struct {
	DaysRemaining int           `json:"daysRemaining"`
	Level         DeadlineLevel `json:"level"`
	CurrentValue  float64       `json:"currentValue"`
	TargetValue   float64       `json:"targetValue"`
	Unit          string        `json:"unit"`
}

type StreakDetails struct {
	Count       int        `json:"count"`
	StreakType  StreakType `json:"streakType"`
	IsNewRecord bool       `json:"isNewRecord"`
}

type SummaryDetails struct {
	Period          SummaryPeriod `json:"period"`
	CompletedGoals  int           `json:"completedGoals"`
	TotalGoals      int           `json:"totalGoals"`
	AverageProgress float64       `json:"averageProgress"`
	TopGoal         string        `json:"topGoal,omitempty"`
}

type ReminderDetails struct {
	Kind ReminderKind `json:"kind"`
}

// Notification is a sum type discriminated by Type: exactly the details
// pointer matching Type is set.
type Notification struct {
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Priority  Priority         `json:"priority"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Read      bool             `json:"read"`
	Dismissed bool             `json:"dismissed"`
	Icon      string           `json:"icon"`
	Color     string           `json:"color"`
	GoalID    string           `json:"goalId,omitempty"`

	Milestone *MilestoneDetails `json:"milestone,omitempty"`
	Deadline  *DeadlineDetails  `json:"deadline,omitempty"`
	Streak    *StreakDetails    `json:"streak,omitempty"`
	Summary   *SummaryDetails   `json:"summary,omitempty"`
	Reminder  *ReminderDetails  `json:"reminder,omitempty"`
}

func (n Notification) Validate() error {
	if strings.TrimSpace(n.ID) == "" {
		return errors.New("model: notification id is required")
	}
	if !n.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidNotificationType, n.Type)
	}
	if !n.Priority.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPriority, n.Priority)
	}
	if n.Timestamp.IsZero() {
		return errors.New("model: notification timestamp is required")
	}
	set := 0
	for _, present := range []bool{n.Milestone != nil, n.Deadline != nil, n.Streak != nil, n.Summary != nil, n.Reminder != nil} {
		if present {
			set++
		}
	}
	if set != 1 || !n.detailsMatchType() {
		return fmt.Errorf("%w: %q", ErrVariantMismatch, n.Type)
	}
	return nil
}

func (n Notification) detailsMatchType() bool {
	switch n.Type {
	case NotificationMilestone:
		return n.Milestone != nil
	case NotificationDeadline:
		return n.Deadline != nil
	case NotificationStreak:
		return n.Streak != nil
	case NotificationSummary:
		return n.Summary != nil
	case NotificationReminder:
		return n.Reminder != nil
	default:
		return false
	}
}

// Tag is the platform de-duplication key: type plus goal id, or "general".
func (n Notification) Tag() string {
	scope := n.GoalID
	if scope == "" {
		scope = "general"
	}
	return string(n.Type) + "-" + scope
}
