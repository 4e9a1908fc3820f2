package detect

import (
	"context"
	"testing"
	"time"

	"github.com/sandeepkv93/runtrack/internal/model"
	"github.com/sandeepkv93/runtrack/internal/storage"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func TestDeadlineFiresOncePerCalendarDay(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 10, 24, 0, 5, 0, 0, time.UTC)}
	d := NewDeadlineDetector(storage.NewMemoryKV(), clock.Now, time.UTC, nil)
	g := distanceGoal(45)
	progress := model.GoalProgress{GoalID: g.ID, DaysRemaining: 7}
	offsets := []int{7, 3, 1}

	first := d.Check(ctx, g, progress, offsets)
	if !first.ShouldNotify || first.Offset != 7 || first.NotificationLevel != model.DeadlineInfo {
		t.Fatalf("expected info reminder at offset 7, got %#v", first)
	}

	clock.now = time.Date(2026, 10, 24, 23, 59, 0, 0, time.UTC)
	if again := d.Check(ctx, g, progress, offsets); again.ShouldNotify {
		t.Fatalf("expected no second reminder on the same day, got %#v", again)
	}

	clock.now = time.Date(2026, 10, 25, 0, 1, 0, 0, time.UTC)
	if next := d.Check(ctx, g, progress, offsets); !next.ShouldNotify {
		t.Fatalf("expected reminder to fire again on a new calendar day")
	}
}

func TestDeadlineUsesConfiguredLocation(t *testing.T) {
	ctx := context.Background()
	loc := time.FixedZone("UTC-5", -5*60*60)
	clock := &fakeClock{now: time.Date(2026, 10, 24, 20, 0, 0, 0, loc)}
	d := NewDeadlineDetector(storage.NewMemoryKV(), clock.Now, loc, nil)
	g := distanceGoal(45)
	progress := model.GoalProgress{GoalID: g.ID, DaysRemaining: 3}

	if !d.Check(ctx, g, progress, []int{3}).ShouldNotify {
		t.Fatalf("expected first reminder")
	}
	// 03:00 UTC on the 25th is still the 24th locally.
	clock.now = time.Date(2026, 10, 25, 3, 0, 0, 0, time.UTC)
	if d.Check(ctx, g, progress, []int{3}).ShouldNotify {
		t.Fatalf("expected same local day to suppress the reminder")
	}
}

func TestDeadlineSentinelAndOffsets(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 10, 31, 9, 0, 0, 0, time.UTC)}
	d := NewDeadlineDetector(storage.NewMemoryKV(), clock.Now, time.UTC, nil)
	g := distanceGoal(90)

	due := d.Check(ctx, g, model.GoalProgress{DaysRemaining: 0}, []int{7})
	if !due.ShouldNotify || due.Offset != DueTodayOffset || !due.IsUrgent {
		t.Fatalf("expected urgent due-today reminder, got %#v", due)
	}
	if d.Check(ctx, g, model.GoalProgress{DaysRemaining: 0}, []int{7}).ShouldNotify {
		t.Fatalf("expected due-today reminder once per day")
	}

	miss := d.Check(ctx, g, model.GoalProgress{DaysRemaining: 5}, []int{7, 3, 1})
	if miss.ShouldNotify || miss.DaysRemaining != 5 {
		t.Fatalf("expected no reminder for unconfigured offset, got %#v", miss)
	}

	if d.Check(ctx, g, model.GoalProgress{DaysRemaining: -2}, []int{7, 3, 1}).ShouldNotify {
		t.Fatalf("expected no reminder for overdue goals")
	}

	g.Complete(clock.now)
	if d.Check(ctx, g, model.GoalProgress{DaysRemaining: 3}, []int{3}).ShouldNotify {
		t.Fatalf("expected completed goal to be skipped")
	}
}

func TestDeadlineResetAllowsRefire(t *testing.T) {
	ctx := context.Background()
	clock := &fakeClock{now: time.Date(2026, 10, 30, 9, 0, 0, 0, time.UTC)}
	d := NewDeadlineDetector(storage.NewMemoryKV(), clock.Now, time.UTC, nil)
	g := distanceGoal(10)
	progress := model.GoalProgress{DaysRemaining: 1}

	if !d.Check(ctx, g, progress, []int{1}).ShouldNotify {
		t.Fatalf("expected first reminder")
	}
	d.Reset(ctx, g.ID)
	if !d.Check(ctx, g, progress, []int{1}).ShouldNotify {
		t.Fatalf("expected reminder after reset")
	}
}

func TestDeadlineLevelFor(t *testing.T) {
	tests := []struct {
		days int
		want model.DeadlineLevel
	}{
		{0, model.DeadlineUrgent},
		{1, model.DeadlineUrgent},
		{2, model.DeadlineWarning},
		{3, model.DeadlineWarning},
		{4, model.DeadlineInfo},
		{7, model.DeadlineInfo},
	}
	for _, tc := range tests {
		if got := DeadlineLevelFor(tc.days); got != tc.want {
			t.Fatalf("days %d: expected %s, got %s", tc.days, tc.want, got)
		}
	}
}
