package views

import (
	"fmt"
	"strings"
)

type GoalRowData struct {
	ID            string
	Icon          string
	Title         string
	Type          string
	ProgressView  string
	Percent       float64
	Current       float64
	Target        float64
	Unit          string
	DaysRemaining int
	NextMilestone int
	Completed     bool
}

type GoalsPanelData struct {
	Goals      []GoalRowData
	SelectedID string
}

type RunsPanelData struct {
	TableView     string
	CurrentStreak int
	LongestStreak int
	TotalKm       float64
}

type NotificationRowData struct {
	ID       string
	Icon     string
	ColorDot string
	Title    string
	Message  string
	Priority string
	When     string
	Read     bool
}

type NotificationsPanelData struct {
	Items      []NotificationRowData
	Unread     int
	SelectedID string
}

type StatsData struct {
	TotalGoals      int
	ActiveGoals     int
	CompletedGoals  int
	CompletionRate  float64
	AverageProgress float64
	TopPerformer    string
	TopProgress     float64
	Struggling      []string
	BehindSchedule  int
	Suggestions     []string
	CurrentStreak   int
	LongestStreak   int
}

type HelpPanelData struct {
	CurrentView string
	Bindings    []string
	HelpView    string
}

type PreferencesData struct {
	Enabled    []string
	Disabled   []string
	QuietHours string
	Platform   string
}

func RenderGoalsPanel(data GoalsPanelData) string {
	var b strings.Builder
	b.WriteString("goals:\n")
	b.WriteString("actions: [j/k]move [x]delete [/]goal <type> <target> <unit> <days> <title>\n")
	if len(data.Goals) == 0 {
		b.WriteString("\n(no goals yet)")
		return b.String()
	}
	for _, g := range data.Goals {
		cursor := " "
		if g.ID == data.SelectedID {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("\n%s %s %s [%s]\n", cursor, g.Icon, g.Title, g.Type))
		b.WriteString(fmt.Sprintf("  %s %.0f%%\n", g.ProgressView, g.Percent))
		b.WriteString(fmt.Sprintf("  %.1f/%.1f %s", g.Current, g.Target, g.Unit))
		switch {
		case g.Completed:
			b.WriteString(" | completed")
		case g.DaysRemaining < 0:
			b.WriteString(fmt.Sprintf(" | overdue by %d day(s)", -g.DaysRemaining))
		default:
			b.WriteString(fmt.Sprintf(" | %d day(s) left", g.DaysRemaining))
		}
		if g.NextMilestone > 0 && !g.Completed {
			b.WriteString(fmt.Sprintf(" | next: %d%%", g.NextMilestone))
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderRunsPanel(data RunsPanelData) string {
	var b strings.Builder
	b.WriteString("runs:\n")
	b.WriteString(fmt.Sprintf("streak: %d day(s) | best: %d | total: %.1f km\n", data.CurrentStreak, data.LongestStreak, data.TotalKm))
	b.WriteString("actions: [/]log <km> [minutes] [notes]\n")
	b.WriteString(data.TableView)
	return strings.TrimSpace(b.String())
}

func RenderNotificationsPanel(data NotificationsPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("notifications: %d unread\n", data.Unread))
	b.WriteString("actions: [j/k]move [r]read [R]read all [d]dismiss [C]clear all\n")
	if len(data.Items) == 0 {
		b.WriteString("\n(nothing to show)")
		return b.String()
	}
	for _, n := range data.Items {
		cursor := " "
		if n.ID == data.SelectedID {
			cursor = ">"
		}
		marker := "*"
		if n.Read {
			marker = " "
		}
		b.WriteString(fmt.Sprintf("\n%s%s %s %s %s (%s, %s)\n", cursor, marker, n.ColorDot, n.Icon, n.Title, strings.ToUpper(n.Priority), n.When))
		if n.Message != "" {
			b.WriteString("    " + n.Message + "\n")
		}
	}
	return strings.TrimSpace(b.String())
}

// StatsMarkdown renders goal analytics as a markdown document.
func StatsMarkdown(data StatsData) string {
	var b strings.Builder
	b.WriteString("# Goal statistics\n\n")
	b.WriteString("| Metric | Value |\n|---|---|\n")
	b.WriteString(fmt.Sprintf("| Total goals | %d |\n", data.TotalGoals))
	b.WriteString(fmt.Sprintf("| Active | %d |\n", data.ActiveGoals))
	b.WriteString(fmt.Sprintf("| Completed | %d (%.0f%%) |\n", data.CompletedGoals, data.CompletionRate))
	b.WriteString(fmt.Sprintf("| Average progress | %.0f%% |\n", data.AverageProgress))
	b.WriteString(fmt.Sprintf("| Behind schedule | %d |\n", data.BehindSchedule))
	b.WriteString(fmt.Sprintf("| Streak | %d day(s), best %d |\n", data.CurrentStreak, data.LongestStreak))
	if data.TopPerformer != "" {
		b.WriteString(fmt.Sprintf("\n**Top performer:** %s (%.0f%%)\n", data.TopPerformer, data.TopProgress))
	}
	if len(data.Struggling) > 0 {
		b.WriteString("\n## Needs attention\n\n")
		for _, s := range data.Struggling {
			b.WriteString("- " + s + "\n")
		}
	}
	if len(data.Suggestions) > 0 {
		b.WriteString("\n## Suggestions\n\n")
		for _, s := range data.Suggestions {
			b.WriteString("- " + s + "\n")
		}
	}
	return b.String()
}

func RenderPreferences(data PreferencesData) string {
	var b strings.Builder
	b.WriteString("preferences:\n")
	b.WriteString("on:  " + joinOrDash(data.Enabled) + "\n")
	b.WriteString("off: " + joinOrDash(data.Disabled) + "\n")
	b.WriteString("quiet: " + data.QuietHours + "\n")
	b.WriteString("platform: " + data.Platform)
	return b.String()
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command:\n%s", inputView)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\n%s view:\n%s\n%s",
		strings.ToLower(data.CurrentView),
		strings.Join(data.Bindings, "\n"),
		data.HelpView,
	)
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}
