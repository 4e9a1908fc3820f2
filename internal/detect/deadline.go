package detect

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/sandeepkv93/runtrack/internal/model"
	"github.com/sandeepkv93/runtrack/internal/storage"
)

// DueTodayOffset is the sentinel offset for a goal ending today. It fires
// whether or not it appears in the configured offsets.
const DueTodayOffset = 0

type DeadlineCheckResult struct {
	ShouldNotify      bool
	DaysRemaining     int
	IsUrgent          bool
	NotificationLevel model.DeadlineLevel
	// Offset is the reminder offset that fired; meaningful only with ShouldNotify.
	Offset int
}

// DeadlineDetector fires at most one reminder per offset per calendar day.
type DeadlineDetector struct {
	kv  storage.KV
	now func() time.Time
	loc *time.Location
	log *slog.Logger
	mu  sync.Mutex
}

func NewDeadlineDetector(kv storage.KV, now func() time.Time, loc *time.Location, log *slog.Logger) *DeadlineDetector {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = slog.Default()
	}
	return &DeadlineDetector{kv: kv, now: now, loc: loc, log: log}
}

func deadlineKey(goalID string) string {
	return "deadlines:" + goalID
}

// DeadlineLevelFor maps days remaining to a severity.
func DeadlineLevelFor(daysRemaining int) model.DeadlineLevel {
	switch {
	case daysRemaining <= 1:
		return model.DeadlineUrgent
	case daysRemaining <= 3:
		return model.DeadlineWarning
	default:
		return model.DeadlineInfo
	}
}

func (d *DeadlineDetector) Check(ctx context.Context, goal model.Goal, progress model.GoalProgress, offsets []int) DeadlineCheckResult {
	days := progress.DaysRemaining
	level := DeadlineLevelFor(days)
	out := DeadlineCheckResult{
		DaysRemaining:     days,
		IsUrgent:          level == model.DeadlineUrgent,
		NotificationLevel: level,
	}
	if goal.IsCompleted || days < 0 {
		return out
	}

	offset := days
	if days != DueTodayOffset && !slices.Contains(offsets, days) {
		return out
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	state := map[int]string{}
	if _, err := storage.GetJSON(ctx, d.kv, deadlineKey(goal.ID), &state); err != nil {
		d.log.Warn("deadline state unreadable, starting empty", "key", deadlineKey(goal.ID), "error", err)
		state = map[int]string{}
	}

	now := d.now().In(d.loc)
	if last, ok := state[offset]; ok {
		if at, err := time.Parse(time.RFC3339, last); err == nil && sameDay(at.In(d.loc), now) {
			return out
		}
	}

	state[offset] = now.Format(time.RFC3339)
	if err := storage.SetJSON(ctx, d.kv, deadlineKey(goal.ID), state); err != nil {
		d.log.Warn("deadline state not saved", "key", deadlineKey(goal.ID), "error", err)
	}
	out.ShouldNotify = true
	out.Offset = offset
	return out
}

// Reset forgets every recorded reminder for goalID.
func (d *DeadlineDetector) Reset(ctx context.Context, goalID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.kv.Delete(ctx, deadlineKey(goalID)); err != nil {
		d.log.Warn("deadline state not cleared", "key", deadlineKey(goalID), "error", err)
	}
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
