package update

import (
	"fmt"
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/runtrack/internal/notify"
	"github.com/sandeepkv93/runtrack/internal/views"
)

func (m Model) Init() tea.Cmd {
	var cmds []tea.Cmd
	if m.Scheduler != nil {
		cmds = append(cmds, waitForEventCmd(m.Scheduler.C()))
	}
	if m.toasts != nil {
		cmds = append(cmds, waitForToastCmd(m.toasts.C()))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			return m.handlePaletteKey(typed)
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			m.commandInput.SetValue("")
			m.commandInput.Focus()
			return m, nil
		case m.Keys.Goals:
			m.CurrentView = ViewGoals
			return m, nil
		case m.Keys.Runs:
			m.CurrentView = ViewRuns
			return m, nil
		case m.Keys.Notifications:
			m.CurrentView = ViewNotifications
			return m, nil
		case m.Keys.Stats:
			m.CurrentView = ViewStats
			return m, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			return m, nil
		case "esc":
			m.statusSeq++
			m.Status = StatusBar{}
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
		switch m.CurrentView {
		case ViewGoals:
			return m.handleGoalsKey(typed)
		case ViewNotifications:
			return m.handleNotificationsKey(typed)
		case ViewStats:
			var cmd tea.Cmd
			m.statsViewport, cmd = m.statsViewport.Update(typed)
			return m, cmd
		}
	case SwitchViewMsg:
		if isKnownView(typed.View) {
			m.CurrentView = typed.View
		}
		return m, nil
	case SetStatusMsg:
		severity := notify.SeverityInfo
		if typed.IsError {
			severity = notify.SeverityError
		}
		return m, m.setStatus(typed.Text, severity)
	case ToastMsg:
		var next tea.Cmd
		if m.toasts != nil {
			next = waitForToastCmd(m.toasts.C())
		}
		return m, tea.Batch(m.setStatus(typed.Toast.Message, typed.Toast.Severity), next)
	case ClearStatusMsg:
		if typed.Seq == m.statusSeq {
			m.Status = StatusBar{}
		}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			return m, m.setStatus(typed.Err.Error(), notify.SeverityError)
		}
		return m, nil
	case SchedulerEventMsg:
		cmd := m.handleSchedulerEvent(typed.Event)
		if m.Scheduler != nil {
			return m, tea.Batch(cmd, waitForEventCmd(m.Scheduler.C()))
		}
		return m, cmd
	case RefreshMsg:
		m.reload()
		return m, nil
	}

	return m, nil
}

func (m Model) View() string {
	left := ""
	switch m.CurrentView {
	case ViewGoals:
		left = m.renderGoalsView()
	case ViewRuns:
		left = m.renderRunsView()
	case ViewNotifications:
		left = m.renderNotificationsView()
	case ViewStats:
		left = m.statsViewport.View()
	}
	right := joinSections(m.renderCommandPalette(), m.renderHelpIfVisible(), m.renderPreferences())

	tabs := make([]string, 0, len(allViews))
	for i, v := range allViews {
		tabs = append(tabs, fmt.Sprintf("%d %s", i+1, v))
	}

	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("runtrack | %s | unread: %d", m.service.Engine().Now().Format("Mon 02 Jan 15:04"), m.Unread),
		Tabs:       tabs,
		ActiveTab:  slices.Index(allViews, m.CurrentView),
		LeftPane:   left,
		RightPane:  right,
		StatusLine: m.Status.Text,
		Severity:   string(m.Status.Severity),
		Footer: fmt.Sprintf("keys: %s goals | %s runs | %s notifications | %s stats | / cmd | %s help | %s quit",
			m.Keys.Goals, m.Keys.Runs, m.Keys.Notifications, m.Keys.Stats, m.Keys.Help, m.Keys.Quit),
	})
}

// setStatus shows text until the toast duration elapses or a newer status
// replaces it.
func (m *Model) setStatus(text string, severity notify.Severity) tea.Cmd {
	m.statusSeq++
	m.Status = StatusBar{Text: text, Severity: severity}
	seq := m.statusSeq
	return tea.Tick(m.toastDuration, func(time.Time) tea.Msg { return ClearStatusMsg{Seq: seq} })
}

func isKnownView(v View) bool {
	return slices.Contains(allViews, v)
}
