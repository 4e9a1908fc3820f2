package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var ErrInvalidClock = errors.New("model: invalid time of day")

type QuietHours struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Start   string `json:"start" yaml:"start"`
	End     string `json:"end" yaml:"end"`
}

type Preferences struct {
	EnableMilestones        bool          `json:"enableMilestones" yaml:"enable_milestones"`
	EnableDeadlineReminders bool          `json:"enableDeadlineReminders" yaml:"enable_deadline_reminders"`
	EnableStreaks           bool          `json:"enableStreaks" yaml:"enable_streaks"`
	EnableSummaries         bool          `json:"enableSummaries" yaml:"enable_summaries"`
	EnableReminders         bool          `json:"enableReminders" yaml:"enable_reminders"`
	EnablePlatform          bool          `json:"enablePlatform" yaml:"enable_platform"`
	DeadlineReminderDays    []int         `json:"deadlineReminderDays" yaml:"deadline_reminder_days"`
	MorningReminderTime     string        `json:"morningReminderTime" yaml:"morning_reminder_time"`
	EveningReminderTime     string        `json:"eveningReminderTime" yaml:"evening_reminder_time"`
	SummaryFrequency        SummaryPeriod `json:"summaryFrequency" yaml:"summary_frequency"`
	SoundEnabled            bool          `json:"soundEnabled" yaml:"sound_enabled"`
	QuietHours              QuietHours    `json:"quietHours" yaml:"quiet_hours"`
}

func DefaultPreferences() Preferences {
	return Preferences{
		EnableMilestones:        true,
		EnableDeadlineReminders: true,
		EnableStreaks:           true,
		EnableSummaries:         true,
		EnableReminders:         true,
		EnablePlatform:          true,
		DeadlineReminderDays:    []int{7, 3, 1},
		MorningReminderTime:     "08:00",
		EveningReminderTime:     "19:00",
		SummaryFrequency:        SummaryWeekly,
		SoundEnabled:            true,
		QuietHours: QuietHours{
			Enabled: false,
			Start:   "22:00",
			End:     "08:00",
		},
	}
}

// TypeEnabled reports the per-type toggle for t.
func (p Preferences) TypeEnabled(t NotificationType) bool {
	switch t {
	case NotificationMilestone:
		return p.EnableMilestones
	case NotificationDeadline:
		return p.EnableDeadlineReminders
	case NotificationStreak:
		return p.EnableStreaks
	case NotificationSummary:
		return p.EnableSummaries
	case NotificationReminder:
		return p.EnableReminders
	default:
		return false
	}
}

func (p Preferences) Validate() error {
	for _, d := range p.DeadlineReminderDays {
		if d < 0 {
			return fmt.Errorf("model: deadline reminder offset must not be negative: %d", d)
		}
	}
	for _, v := range []string{p.MorningReminderTime, p.EveningReminderTime, p.QuietHours.Start, p.QuietHours.End} {
		if _, err := ParseClock(v); err != nil {
			return err
		}
	}
	if !p.SummaryFrequency.IsValid() {
		return fmt.Errorf("model: invalid summary frequency: %q", p.SummaryFrequency)
	}
	return nil
}

// PreferencesPatch carries a partial update; nil fields are left untouched.
type PreferencesPatch struct {
	EnableMilestones        *bool          `json:"enableMilestones,omitempty" yaml:"enable_milestones,omitempty"`
	EnableDeadlineReminders *bool          `json:"enableDeadlineReminders,omitempty" yaml:"enable_deadline_reminders,omitempty"`
	EnableStreaks           *bool          `json:"enableStreaks,omitempty" yaml:"enable_streaks,omitempty"`
	EnableSummaries         *bool          `json:"enableSummaries,omitempty" yaml:"enable_summaries,omitempty"`
	EnableReminders         *bool          `json:"enableReminders,omitempty" yaml:"enable_reminders,omitempty"`
	EnablePlatform          *bool          `json:"enablePlatform,omitempty" yaml:"enable_platform,omitempty"`
	DeadlineReminderDays    []int          `json:"deadlineReminderDays,omitempty" yaml:"deadline_reminder_days,omitempty"`
	MorningReminderTime     *string        `json:"morningReminderTime,omitempty" yaml:"morning_reminder_time,omitempty"`
	EveningReminderTime     *string        `json:"eveningReminderTime,omitempty" yaml:"evening_reminder_time,omitempty"`
	SummaryFrequency        *SummaryPeriod `json:"summaryFrequency,omitempty" yaml:"summary_frequency,omitempty"`
	SoundEnabled            *bool          `json:"soundEnabled,omitempty" yaml:"sound_enabled,omitempty"`
	QuietHours              *QuietHours    `json:"quietHours,omitempty" yaml:"quiet_hours,omitempty"`
}

// Apply returns p with every non-nil field of patch merged in.
func (patch PreferencesPatch) Apply(p Preferences) Preferences {
	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	setBool(&p.EnableMilestones, patch.EnableMilestones)
	setBool(&p.EnableDeadlineReminders, patch.EnableDeadlineReminders)
	setBool(&p.EnableStreaks, patch.EnableStreaks)
	setBool(&p.EnableSummaries, patch.EnableSummaries)
	setBool(&p.EnableReminders, patch.EnableReminders)
	setBool(&p.EnablePlatform, patch.EnablePlatform)
	setBool(&p.SoundEnabled, patch.SoundEnabled)
	if patch.DeadlineReminderDays != nil {
		p.DeadlineReminderDays = append([]int(nil), patch.DeadlineReminderDays...)
	}
	if patch.MorningReminderTime != nil {
		p.MorningReminderTime = *patch.MorningReminderTime
	}
	if patch.EveningReminderTime != nil {
		p.EveningReminderTime = *patch.EveningReminderTime
	}
	if patch.SummaryFrequency != nil {
		p.SummaryFrequency = *patch.SummaryFrequency
	}
	if patch.QuietHours != nil {
		p.QuietHours = *patch.QuietHours
	}
	return p
}

// ParseClock parses "HH:MM" into minutes after midnight.
func ParseClock(v string) (int, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(v), ":")
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, v)
	}
	hh, err := strconv.Atoi(h)
	if err != nil || hh < 0 || hh > 23 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, v)
	}
	mm, err := strconv.Atoi(m)
	if err != nil || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidClock, v)
	}
	return hh*60 + mm, nil
}
