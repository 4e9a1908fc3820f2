package model

import (
	"errors"
	"testing"
	"time"
)

func testGoal() Goal {
	return Goal{
		ID:          "goal-1",
		Title:       "October 100k",
		Type:        GoalTypeDistance,
		TargetValue: 100,
		TargetUnit:  "km",
		StartDate:   time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC),
		IsActive:    true,
	}
}

func TestGoalValidateSuccess(t *testing.T) {
	if err := testGoal().Validate(); err != nil {
		t.Fatalf("expected valid goal, got error: %v", err)
	}
}

func TestGoalValidateInvalidFields(t *testing.T) {
	g := testGoal()
	g.Type = GoalType("swim")
	if err := g.Validate(); !errors.Is(err, ErrInvalidGoalType) {
		t.Fatalf("expected ErrInvalidGoalType, got: %v", err)
	}

	g = testGoal()
	g.TargetValue = 0
	if err := g.Validate(); !errors.Is(err, ErrInvalidTarget) {
		t.Fatalf("expected ErrInvalidTarget, got: %v", err)
	}

	g = testGoal()
	g.IsCompleted = true
	err := g.Validate()
	if err == nil || err.Error() != "model: completed_at is required when goal is completed" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestComputeProgressDistance(t *testing.T) {
	g := testGoal()
	g.CurrentValue = 45
	now := time.Date(2026, 10, 24, 18, 30, 0, 0, time.UTC)

	p := ComputeProgress(g, now)
	if p.ProgressPercentage != 45 {
		t.Fatalf("expected 45%%, got %v", p.ProgressPercentage)
	}
	if p.RemainingValue != 55 {
		t.Fatalf("expected 55 remaining, got %v", p.RemainingValue)
	}
	if p.DaysRemaining != 7 {
		t.Fatalf("expected 7 days remaining, got %d", p.DaysRemaining)
	}
}

func TestComputeProgressOverdueAndOvershoot(t *testing.T) {
	g := testGoal()
	g.CurrentValue = 130
	now := time.Date(2026, 11, 2, 9, 0, 0, 0, time.UTC)

	p := ComputeProgress(g, now)
	if p.DaysRemaining != -2 {
		t.Fatalf("expected -2 days remaining, got %d", p.DaysRemaining)
	}
	if p.ProgressPercentage != 130 || p.DisplayPercentage() != 100 {
		t.Fatalf("expected raw 130 and display 100, got %v / %v", p.ProgressPercentage, p.DisplayPercentage())
	}
	if p.RemainingValue != 0 {
		t.Fatalf("expected no remaining value, got %v", p.RemainingValue)
	}
}

func TestComputeProgressPaceLowerIsBetter(t *testing.T) {
	g := testGoal()
	g.Type = GoalTypePace
	g.TargetValue = 5
	g.CurrentValue = 6.25

	p := ComputeProgress(g, time.Date(2026, 10, 10, 0, 0, 0, 0, time.UTC))
	if p.ProgressPercentage != 80 {
		t.Fatalf("expected 80%%, got %v", p.ProgressPercentage)
	}
	if p.RemainingValue != 1.25 {
		t.Fatalf("expected 1.25 remaining, got %v", p.RemainingValue)
	}
}

func TestValueFromRuns(t *testing.T) {
	runs := []Run{
		{ID: "r0", Date: time.Date(2026, 9, 30, 7, 0, 0, 0, time.UTC), DistanceKm: 50, Duration: 5 * time.Hour},
		{ID: "r1", Date: time.Date(2026, 10, 2, 7, 0, 0, 0, time.UTC), DistanceKm: 10, Duration: 60 * time.Minute},
		{ID: "r2", Date: time.Date(2026, 10, 5, 7, 0, 0, 0, time.UTC), DistanceKm: 5, Duration: 25 * time.Minute},
		{ID: "r3", Date: time.Date(2026, 10, 31, 20, 0, 0, 0, time.UTC), DistanceKm: 21, Duration: 120 * time.Minute},
	}
	cases := []struct {
		goalType GoalType
		want     float64
	}{
		{GoalTypeDistance, 36},
		{GoalTypeTime, 205},
		{GoalTypeFrequency, 3},
		{GoalTypeLongestRun, 21},
		{GoalTypePace, 5},
	}
	for _, tc := range cases {
		g := testGoal()
		g.Type = tc.goalType
		if got := g.ValueFromRuns(runs); got != tc.want {
			t.Fatalf("%s: got %v want %v", tc.goalType, got, tc.want)
		}
	}
}

func TestValueFromRunsKeepsFrozenValue(t *testing.T) {
	g := testGoal()
	g.CurrentValue = 100
	g.Complete(time.Date(2026, 10, 20, 0, 0, 0, 0, time.UTC))
	g.Complete(time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC))

	runs := []Run{{ID: "r1", Date: time.Date(2026, 10, 22, 7, 0, 0, 0, time.UTC), DistanceKm: 10}}
	if got := g.ValueFromRuns(runs); got != 100 {
		t.Fatalf("expected frozen value 100, got %v", got)
	}
	if g.CompletedAt.Day() != 20 {
		t.Fatalf("expected first completion timestamp kept, got %v", g.CompletedAt)
	}
}

func TestTimeElapsedPercentage(t *testing.T) {
	g := testGoal()
	if got := g.TimeElapsedPercentage(time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)); got != 0 {
		t.Fatalf("expected 0 before start, got %v", got)
	}
	if got := g.TimeElapsedPercentage(time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC)); got != 50 {
		t.Fatalf("expected 50 at midpoint, got %v", got)
	}
	if got := g.TimeElapsedPercentage(time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)); got != 100 {
		t.Fatalf("expected 100 after end, got %v", got)
	}
}

func TestParseRunDates(t *testing.T) {
	got := ParseRunDates([]string{"2026-10-18", "bad", "2026-10-17T06:30:00Z"}, time.UTC)
	if len(got) != 2 {
		t.Fatalf("expected 2 parsed dates, got %d", len(got))
	}
	if got[1].Format(time.DateOnly) != "2026-10-17" {
		t.Fatalf("unexpected second date: %s", got[1])
	}
}

func TestGoalSyncCompletesAtTarget(t *testing.T) {
	g := testGoal()
	now := time.Date(2026, 10, 20, 9, 0, 0, 0, time.UTC)
	runs := []Run{
		{ID: "r1", Date: time.Date(2026, 10, 5, 7, 0, 0, 0, time.UTC), DistanceKm: 60},
		{ID: "r2", Date: time.Date(2026, 10, 19, 7, 0, 0, 0, time.UTC), DistanceKm: 20},
	}

	synced, changed := g.Sync(runs, now)
	if !changed || synced.CurrentValue != 80 || synced.IsCompleted {
		t.Fatalf("unexpected sync result: %#v changed=%v", synced, changed)
	}

	runs = append(runs, Run{ID: "r3", Date: now, DistanceKm: 25})
	synced, changed = synced.Sync(runs, now)
	if !changed || !synced.IsCompleted || synced.CompletedAt == nil || synced.CurrentValue != 105 {
		t.Fatalf("expected completion, got %#v", synced)
	}

	runs = append(runs, Run{ID: "r4", Date: now, DistanceKm: 10})
	if again, changed := synced.Sync(runs, now); changed || again.CurrentValue != 105 {
		t.Fatalf("expected completed goal to stay frozen, got %#v", again)
	}
}
