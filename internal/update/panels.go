package update

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/runtrack/internal/detect"
	"github.com/sandeepkv93/runtrack/internal/model"
	"github.com/sandeepkv93/runtrack/internal/notify"
	"github.com/sandeepkv93/runtrack/internal/tracker"
	"github.com/sandeepkv93/runtrack/internal/views"
)

func (m *Model) initBubbleComponents() {
	m.goalProgress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(40))

	cols := []table.Column{
		{Title: "Date", Width: 12},
		{Title: "Km", Width: 7},
		{Title: "Time", Width: 8},
		{Title: "Pace", Width: 8},
		{Title: "Notes", Width: 24},
	}
	m.runTable = table.New(table.WithColumns(cols), table.WithRows([]table.Row{}), table.WithFocused(true), table.WithHeight(12))

	m.commandInput = textinput.New()
	m.commandInput.Prompt = "/"
	m.commandInput.CharLimit = 256
	m.commandInput.Width = 40

	m.helpModel = help.New()
	m.statsViewport = viewport.New(70, 20)
}

// reload pulls goals, runs and the notification queue from the service.
func (m *Model) reload() {
	if m.service == nil {
		return
	}
	ov, err := m.service.Overview(m.ctx)
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), Severity: notify.SeverityError}
		return
	}
	m.Overview = ov
	engine := m.service.Engine()
	m.Notifications = engine.Notifications()
	m.Unread = engine.UnreadCount()
	m.GoalCursor = clampCursor(m.GoalCursor, len(ov.Goals))
	m.NoteCursor = clampCursor(m.NoteCursor, len(m.Notifications))
	m.syncBubbleData()
}

func (m *Model) syncBubbleData() {
	rows := make([]table.Row, 0, len(m.Overview.Runs))
	for _, r := range m.Overview.Runs {
		pace := "-"
		if p := r.PaceMinPerKm(); p > 0 {
			pace = formatPace(p)
		}
		rows = append(rows, table.Row{
			r.Date.Format("2006-01-02"),
			fmt.Sprintf("%.2f", r.DistanceKm),
			formatDuration(int(r.Duration.Seconds())),
			pace,
			r.Notes,
		})
	}
	m.runTable.SetRows(rows)

	m.commandInput.SetValue(m.Palette.Input)
	if m.Palette.Active {
		m.commandInput.Focus()
	}

	m.statsViewport.SetContent(views.RenderMarkdown(views.StatsMarkdown(StatsData(m.Overview))))
}

// StatsData flattens an overview into the stats screen payload.
func StatsData(ov tracker.Overview) views.StatsData {
	st := ov.Stats
	data := views.StatsData{
		TotalGoals:      st.TotalGoals,
		ActiveGoals:     st.ActiveGoals,
		CompletedGoals:  st.CompletedGoals,
		CompletionRate:  st.CompletionRate(),
		AverageProgress: st.AverageProgress,
		BehindSchedule:  st.BehindSchedule,
		Suggestions:     st.Suggestions,
		CurrentStreak:   ov.Streak.CurrentStreak,
		LongestStreak:   ov.Streak.LongestStreak,
	}
	if st.TopPerformer != nil {
		data.TopPerformer = st.TopPerformer.Title
		data.TopProgress = st.TopPerformer.ProgressPercentage
	}
	for _, s := range st.Struggling {
		data.Struggling = append(data.Struggling, fmt.Sprintf("%s (%.0f%% done, %.0f%% of time used)", s.Title, s.ProgressPercentage, s.TimeElapsedPercentage))
	}
	return data
}

func (m Model) renderGoalsView() string {
	rows := make([]views.GoalRowData, 0, len(m.Overview.Goals))
	for _, g := range m.Overview.Goals {
		p := m.Overview.Progress[g.ID]
		next, _ := detect.NextMilestone(p.ProgressPercentage)
		rows = append(rows, views.GoalRowData{
			ID:            g.ID,
			Icon:          g.Icon,
			Title:         g.Title,
			Type:          string(g.Type),
			ProgressView:  m.goalProgress.ViewAs(p.DisplayPercentage() / 100),
			Percent:       p.DisplayPercentage(),
			Current:       g.CurrentValue,
			Target:        g.TargetValue,
			Unit:          g.TargetUnit,
			DaysRemaining: p.DaysRemaining,
			NextMilestone: next,
			Completed:     g.IsCompleted,
		})
	}
	data := views.GoalsPanelData{Goals: rows}
	if g, ok := m.selectedGoal(); ok {
		data.SelectedID = g.ID
	}
	return views.RenderGoalsPanel(data)
}

func (m Model) renderRunsView() string {
	total := 0.0
	for _, r := range m.Overview.Runs {
		total += r.DistanceKm
	}
	return views.RenderRunsPanel(views.RunsPanelData{
		TableView:     m.runTable.View(),
		CurrentStreak: m.Overview.Streak.CurrentStreak,
		LongestStreak: m.Overview.Streak.LongestStreak,
		TotalKm:       total,
	})
}

func (m Model) renderNotificationsView() string {
	items := make([]views.NotificationRowData, 0, len(m.Notifications))
	for _, n := range m.Notifications {
		items = append(items, views.NotificationRowData{
			ID:       n.ID,
			Icon:     n.Icon,
			ColorDot: views.ColorDot(n.Color),
			Title:    n.Title,
			Message:  n.Message,
			Priority: string(n.Priority),
			When:     n.Timestamp.Format("Jan 02 15:04"),
			Read:     n.Read,
		})
	}
	data := views.NotificationsPanelData{Items: items, Unread: m.Unread}
	if n, ok := m.selectedNotification(); ok {
		data.SelectedID = n.ID
	}
	return views.RenderNotificationsPanel(data)
}

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.commandInput.View())
}

func (m Model) renderPreferences() string {
	if m.service == nil || m.CurrentView != ViewNotifications {
		return ""
	}
	engine := m.service.Engine()
	return views.RenderPreferences(PreferencesData(engine.Preferences(m.ctx), engine.PlatformName()))
}

// PreferencesData splits preference switches into enabled and disabled names.
func PreferencesData(prefs model.Preferences, platform string) views.PreferencesData {
	var on, off []string
	for _, t := range []struct {
		name    string
		enabled bool
	}{
		{"milestones", prefs.EnableMilestones},
		{"deadlines", prefs.EnableDeadlineReminders},
		{"streaks", prefs.EnableStreaks},
		{"summaries", prefs.EnableSummaries},
		{"reminders", prefs.EnableReminders},
		{"platform", prefs.EnablePlatform},
		{"sound", prefs.SoundEnabled},
	} {
		if t.enabled {
			on = append(on, t.name)
		} else {
			off = append(off, t.name)
		}
	}
	quiet := "off"
	if prefs.QuietHours.Enabled {
		quiet = prefs.QuietHours.Start + "-" + prefs.QuietHours.End
	}
	return views.PreferencesData{
		Enabled:    on,
		Disabled:   off,
		QuietHours: quiet,
		Platform:   platform,
	}
}

func (m Model) handleGoalsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		m.GoalCursor = clampCursor(m.GoalCursor+1, len(m.Overview.Goals))
	case "k", "up":
		m.GoalCursor = clampCursor(m.GoalCursor-1, len(m.Overview.Goals))
	case "x":
		g, ok := m.selectedGoal()
		if !ok {
			return m, nil
		}
		if err := m.service.DeleteGoal(m.ctx, g.ID); err != nil {
			return m, m.setStatus(fmt.Sprintf("delete failed: %v", err), notify.SeverityError)
		}
		m.reload()
		return m, m.setStatus(fmt.Sprintf("deleted goal: %s", g.Title), notify.SeverityInfo)
	}
	return m, nil
}

func (m Model) handleNotificationsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	engine := m.service.Engine()
	switch msg.String() {
	case "j", "down":
		m.NoteCursor = clampCursor(m.NoteCursor+1, len(m.Notifications))
		return m, nil
	case "k", "up":
		m.NoteCursor = clampCursor(m.NoteCursor-1, len(m.Notifications))
		return m, nil
	case "r":
		if n, ok := m.selectedNotification(); ok {
			engine.MarkAsRead(m.ctx, n.ID)
		}
	case "R":
		engine.MarkAllAsRead(m.ctx)
	case "d":
		if n, ok := m.selectedNotification(); ok {
			engine.DismissNotification(m.ctx, n.ID)
		}
	case "C":
		engine.ClearAllNotifications(m.ctx)
		m.reload()
		return m, m.setStatus("notifications cleared", notify.SeverityInfo)
	default:
		return m, nil
	}
	m.reload()
	return m, nil
}

func (m Model) selectedGoal() (model.Goal, bool) {
	if m.GoalCursor < 0 || m.GoalCursor >= len(m.Overview.Goals) {
		return model.Goal{}, false
	}
	return m.Overview.Goals[m.GoalCursor], true
}

func (m Model) selectedNotification() (model.Notification, bool) {
	if m.NoteCursor < 0 || m.NoteCursor >= len(m.Notifications) {
		return model.Notification{}, false
	}
	return m.Notifications[m.NoteCursor], true
}

func joinSections(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n\n")
}
