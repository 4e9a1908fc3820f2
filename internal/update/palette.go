package update

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/runtrack/internal/commands"
	"github.com/sandeepkv93/runtrack/internal/model"
	"github.com/sandeepkv93/runtrack/internal/notify"
	"github.com/sandeepkv93/runtrack/internal/scheduler"
	"github.com/sandeepkv93/runtrack/internal/tracker"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closePalette()
		return m, nil
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		return m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
		return m, cmd
	}
}

func (m *Model) closePalette() {
	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	m.commandInput.Blur()
}

func (m Model) executePaletteCommand() (tea.Model, tea.Cmd) {
	raw := strings.TrimSpace(m.Palette.Input)
	m.closePalette()

	cmd, err := commands.Parse(raw)
	if err != nil {
		return m, m.setStatus(err.Error(), notify.SeverityError)
	}

	engine := m.service.Engine()
	res, err := commands.Execute(cmd, commands.Handlers{
		Log: func(a commands.LogArgs) (commands.Result, error) {
			_, accepted, err := m.service.LogRun(m.ctx, a.DistanceKm, a.Duration, a.Notes)
			if err != nil {
				return commands.Result{}, err
			}
			m.CurrentView = ViewRuns
			return commands.Result{Message: fmt.Sprintf("logged %.2f km (%d new notification(s))", a.DistanceKm, len(accepted))}, nil
		},
		Goal: func(a commands.GoalArgs) (commands.Result, error) {
			g, err := m.service.AddGoal(m.ctx, tracker.GoalInput{
				Title:  a.Title,
				Type:   a.Type,
				Target: a.Target,
				Unit:   a.Unit,
				Days:   a.Days,
			})
			if err != nil {
				return commands.Result{}, err
			}
			m.CurrentView = ViewGoals
			return commands.Result{Message: fmt.Sprintf("added goal: %s (due %s)", g.Title, g.EndDate.Format("Jan 02"))}, nil
		},
		Quiet: func(a commands.QuietArgs) (commands.Result, error) {
			q := a.Apply(engine.Preferences(m.ctx).QuietHours)
			if _, err := engine.UpdatePreferences(m.ctx, model.PreferencesPatch{QuietHours: &q}); err != nil {
				return commands.Result{}, err
			}
			if !q.Enabled {
				return commands.Result{Message: "quiet hours off"}, nil
			}
			return commands.Result{Message: fmt.Sprintf("quiet hours %s-%s", q.Start, q.End)}, nil
		},
		Toggle: func(a commands.ToggleArgs) (commands.Result, error) {
			if _, err := engine.UpdatePreferences(m.ctx, a.Patch()); err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("%s %s", a.Feature, onOff(a.On))}, nil
		},
		Check: func() (commands.Result, error) {
			accepted, err := m.service.Check(m.ctx)
			if err != nil {
				return commands.Result{}, err
			}
			return commands.Result{Message: fmt.Sprintf("check complete: %d new notification(s)", len(accepted))}, nil
		},
		Remind: func(a commands.RemindArgs) (commands.Result, error) {
			if _, err := engine.UpdatePreferences(m.ctx, a.Patch()); err != nil {
				return commands.Result{}, err
			}
			kind := scheduler.EventMorning
			if a.Evening {
				kind = scheduler.EventEvening
			}
			m.rescheduleReminder(kind)
			return commands.Result{Message: fmt.Sprintf("%s reminder at %s", kind, a.At)}, nil
		},
	})
	m.reload()
	if err != nil {
		m.LastError = err
		return m, m.setStatus(err.Error(), notify.SeverityError)
	}
	return m, m.setStatus(res.Message, notify.SeverityInfo)
}
