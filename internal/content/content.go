// Package content renders detected events into notification text. Every
// function is pure.
package content

import (
	"math"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sandeepkv93/runtrack/internal/model"
)

type Content struct {
	Title   string
	Message string
	Icon    string
}

var lang = language.English

func printer() *message.Printer {
	return message.NewPrinter(lang)
}

func titleCase(s string) string {
	return cases.Title(lang).String(s)
}

func Milestone(goalTitle string, pct int, current, target float64, unit string) Content {
	p := printer()
	progress := p.Sprintf("%.1f/%.1f %s", current, target, unit)

	icon := "📈"
	switch pct {
	case 25:
		icon = "🎯"
	case 50:
		icon = "🔥"
	case 75:
		icon = "⚡"
	case 100:
		icon = "🏆"
	}

	if pct >= 100 {
		return Content{
			Title:   "Goal Complete!",
			Message: p.Sprintf("You completed %q! %s", goalTitle, progress),
			Icon:    icon,
		}
	}
	return Content{
		Title:   p.Sprintf("%d%% Milestone Reached!", pct),
		Message: p.Sprintf("You're %d%% of the way to %q (%s). Keep it up!", pct, goalTitle, progress),
		Icon:    icon,
	}
}

func Deadline(goalTitle string, daysRemaining int, current, target float64, unit string) Content {
	p := printer()
	pct := 0
	if target > 0 {
		pct = int(math.Round(current / target * 100))
	}
	status := p.Sprintf("%q is %d%% complete (%.1f/%.1f %s).", goalTitle, pct, current, target, unit)

	switch {
	case daysRemaining < 0:
		return Content{Title: "Goal Overdue", Message: status + " The end date has passed.", Icon: "⌛"}
	case daysRemaining == 0:
		return Content{Title: "Goal Due Today!", Message: status + " Today is the last day.", Icon: "⏰"}
	case daysRemaining == 1:
		return Content{Title: "Goal Due Tomorrow", Message: status + " One day left to finish strong.", Icon: "⚠️"}
	case daysRemaining <= 3:
		return Content{
			Title:   p.Sprintf("Deadline in %d Days", daysRemaining),
			Message: status + " The finish line is close.",
			Icon:    "📅",
		}
	default:
		return Content{
			Title:   p.Sprintf("%d Days Left", daysRemaining),
			Message: status + " Plenty of time to stay on track.",
			Icon:    "🗓️",
		}
	}
}

var streakIcons = []struct {
	min  int
	icon string
}{
	{30, "👑"},
	{21, "🌟"},
	{14, "💪"},
	{7, "⚡"},
	{3, "🔥"},
}

func Streak(count int, streakType model.StreakType, goalTitle string) Content {
	p := printer()
	icon := "🏃"
	for _, s := range streakIcons {
		if count >= s.min {
			icon = s.icon
			break
		}
	}

	noun := streakType.Noun()
	plural := noun
	if count != 1 {
		plural += "s"
	}

	msg := p.Sprintf("You've run %d consecutive %s", count, plural)
	if goalTitle != "" {
		msg += p.Sprintf(" for %q", goalTitle)
	}
	return Content{
		Title:   p.Sprintf("%d-%s Streak!", count, titleCase(noun)),
		Message: msg + ". Keep the momentum going!",
		Icon:    icon,
	}
}

func Summary(period model.SummaryPeriod, completed, total int, avgProgress float64, topGoal string) Content {
	p := printer()
	rate := 0
	if total > 0 {
		rate = int(math.Round(float64(completed) / float64(total) * 100))
	}
	msg := p.Sprintf("You completed %d of %d goals (%d%%). Average progress: %.0f%%.", completed, total, rate, avgProgress)
	if topGoal != "" {
		msg += p.Sprintf(" Top performer: %q.", topGoal)
	}
	return Content{
		Title:   titleCase(string(period)) + " Summary",
		Message: msg,
		Icon:    "📊",
	}
}

var reminders = map[model.ReminderKind]Content{
	model.ReminderGoalCheckIn: {
		Title:   "Time to Check In",
		Message: "Take a moment to review your running goals for today.",
		Icon:    "🏃",
	},
	model.ReminderMissedRun: {
		Title:   "No Run Logged Today",
		Message: "There's still time to get a run in and keep your streak alive.",
		Icon:    "👟",
	},
	model.ReminderWeeklyPlanning: {
		Title:   "Plan Your Week",
		Message: "Sketch out your runs for the week ahead.",
		Icon:    "🗓️",
	},
}

var genericReminder = Content{
	Title:   "Running Reminder",
	Message: "Don't forget about your running goals.",
	Icon:    "🔔",
}

func Reminder(kind model.ReminderKind) Content {
	if c, ok := reminders[kind]; ok {
		return c
	}
	return genericReminder
}
