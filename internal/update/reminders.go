package update

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sandeepkv93/runtrack/internal/notify"
	"github.com/sandeepkv93/runtrack/internal/scheduler"
)

// scheduleInitial queues an immediate check plus the next morning and evening
// reminders.
func (m *Model) scheduleInitial() {
	if m.Scheduler == nil || m.service == nil {
		return
	}
	now := m.service.Engine().Now()
	m.schedule(scheduler.EventCheck, now)
	m.scheduleNext(scheduler.EventMorning, now)
	m.scheduleNext(scheduler.EventEvening, now)
}

func (m *Model) handleSchedulerEvent(ev scheduler.Event) tea.Cmd {
	if m.service == nil {
		return nil
	}
	var err error
	switch ev.Kind {
	case scheduler.EventCheck:
		_, err = m.service.Check(m.ctx)
	case scheduler.EventMorning:
		_, _, err = m.service.Reminder(m.ctx, false)
	case scheduler.EventEvening:
		_, _, err = m.service.Reminder(m.ctx, true)
	}
	m.scheduleNext(ev.Kind, m.service.Engine().Now())
	m.reload()
	if err != nil {
		m.LastError = err
		return m.setStatus(fmt.Sprintf("%s failed: %v", ev.Kind, err), notify.SeverityError)
	}
	return nil
}

// scheduleNext books the following occurrence of kind. Reminder times are
// re-read from preferences each time.
func (m *Model) scheduleNext(kind scheduler.EventKind, now time.Time) {
	switch kind {
	case scheduler.EventCheck:
		m.schedule(kind, now.Add(m.checkInterval))
	case scheduler.EventMorning, scheduler.EventEvening:
		prefs := m.service.Engine().Preferences(m.ctx)
		clock := prefs.MorningReminderTime
		if kind == scheduler.EventEvening {
			clock = prefs.EveningReminderTime
		}
		at, err := scheduler.NextDailyAt(now, clock)
		if err != nil {
			m.Status = StatusBar{Text: fmt.Sprintf("%s reminder not scheduled: %v", kind, err), Severity: notify.SeverityError}
			return
		}
		m.schedule(kind, at)
	}
}

// rescheduleReminder drops the pending occurrence of kind and books it again
// from the current preferences.
func (m *Model) rescheduleReminder(kind scheduler.EventKind) {
	if m.Scheduler == nil {
		return
	}
	m.Scheduler.CancelKind(kind)
	m.scheduleNext(kind, m.service.Engine().Now())
}

func (m *Model) schedule(kind scheduler.EventKind, at time.Time) {
	if m.Scheduler == nil {
		return
	}
	ev := scheduler.Event{ID: fmt.Sprintf("%s-%d", kind, at.Unix()), Kind: kind, TriggerAt: at}
	if err := m.Scheduler.Schedule(ev); err != nil {
		m.Status = StatusBar{Text: fmt.Sprintf("schedule failed: %v", err), Severity: notify.SeverityError}
	}
}

func waitForEventCmd(ch <-chan scheduler.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return nil
		}
		return SchedulerEventMsg{Event: ev}
	}
}

func waitForToastCmd(ch <-chan Toast) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		t, ok := <-ch
		if !ok {
			return nil
		}
		return ToastMsg{Toast: t}
	}
}
