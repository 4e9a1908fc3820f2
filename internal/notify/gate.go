package notify

import (
	"log/slog"
	"time"

	"github.com/sandeepkv93/runtrack/internal/model"
)

type Verdict string

const (
	VerdictAccept     Verdict = "accept"
	VerdictDisabled   Verdict = "disabled"
	VerdictQuietHours Verdict = "quiet_hours"
)

// Gate is the single place a candidate notification is accepted or rejected.
type Gate struct {
	now func() time.Time
	loc *time.Location
	log *slog.Logger
}

func NewGate(now func() time.Time, loc *time.Location, log *slog.Logger) Gate {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = slog.Default()
	}
	return Gate{now: now, loc: loc, log: log}
}

func (g Gate) Evaluate(n model.Notification, prefs model.Preferences) Verdict {
	if !prefs.TypeEnabled(n.Type) {
		return VerdictDisabled
	}
	if n.Priority != model.PriorityUrgent && g.inQuietHours(prefs.QuietHours) {
		return VerdictQuietHours
	}
	return VerdictAccept
}

func (g Gate) Allow(n model.Notification, prefs model.Preferences) bool {
	return g.Evaluate(n, prefs) == VerdictAccept
}

func (g Gate) inQuietHours(q model.QuietHours) bool {
	if !q.Enabled {
		return false
	}
	in, err := InQuietHours(q, g.now().In(g.loc))
	if err != nil {
		g.log.Warn("quiet hours ignored", "start", q.Start, "end", q.End, "error", err)
		return false
	}
	return in
}

// InQuietHours reports whether at's local time of day falls inside the
// window, both ends inclusive at minute granularity. A window whose start is
// after its end wraps past midnight. The Enabled flag is not consulted.
func InQuietHours(q model.QuietHours, at time.Time) (bool, error) {
	start, err := model.ParseClock(q.Start)
	if err != nil {
		return false, err
	}
	end, err := model.ParseClock(q.End)
	if err != nil {
		return false, err
	}
	now := at.Hour()*60 + at.Minute()
	if start > end {
		return now >= start || now <= end, nil
	}
	return now >= start && now <= end, nil
}
