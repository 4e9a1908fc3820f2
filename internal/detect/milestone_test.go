package detect

import (
	"context"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/sandeepkv93/runtrack/internal/model"
	"github.com/sandeepkv93/runtrack/internal/storage"
)

var checkTime = time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

func distanceGoal(current float64) model.Goal {
	return model.Goal{
		ID:           "goal-100k",
		Title:        "October 100k",
		Type:         model.GoalTypeDistance,
		TargetValue:  100,
		TargetUnit:   "km",
		StartDate:    time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		EndDate:      time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC),
		CurrentValue: current,
		IsActive:     true,
	}
}

func TestMilestoneScenarioFiresOncePerBoundary(t *testing.T) {
	ctx := context.Background()
	d := NewMilestoneDetector(storage.NewMemoryKV(), nil)

	steps := []struct {
		current float64
		want    []int
	}{
		{20, nil},
		{30, []int{25}},
		{55, []int{50}},
		{80, []int{75}},
		{100, []int{100}},
		{100, nil},
		{60, nil},
		{100, nil},
	}
	for i, step := range steps {
		g := distanceGoal(step.current)
		res := d.Check(ctx, g, model.ComputeProgress(g, checkTime))
		if !slices.Equal(res.NewMilestones, step.want) {
			t.Fatalf("step %d (current=%v): expected %v, got %v", i, step.current, step.want, res.NewMilestones)
		}
		if res.HasNewMilestones != (len(step.want) > 0) {
			t.Fatalf("step %d: HasNewMilestones mismatch", i)
		}
	}
	if got := d.Achieved(ctx, "goal-100k"); !slices.Equal(got, Thresholds) {
		t.Fatalf("expected all thresholds achieved, got %v", got)
	}
}

func TestMilestoneExactThresholdsFromScratch(t *testing.T) {
	tests := []struct {
		pct  float64
		want []int
	}{
		{0, nil},
		{25, []int{25}},
		{50, []int{25, 50}},
		{75, []int{25, 50, 75}},
		{100, []int{25, 50, 75, 100}},
	}
	for _, tc := range tests {
		d := NewMilestoneDetector(storage.NewMemoryKV(), nil)
		g := distanceGoal(tc.pct)
		progress := model.GoalProgress{GoalID: g.ID, ProgressPercentage: tc.pct}

		first := d.Check(context.Background(), g, progress)
		if !slices.Equal(first.NewMilestones, tc.want) {
			t.Fatalf("pct %v: expected %v, got %v", tc.pct, tc.want, first.NewMilestones)
		}
		second := d.Check(context.Background(), g, progress)
		if len(second.NewMilestones) != 0 {
			t.Fatalf("pct %v: expected no repeat, got %v", tc.pct, second.NewMilestones)
		}
	}
}

func TestMilestoneSetIsMonotonic(t *testing.T) {
	ctx := context.Background()
	d := NewMilestoneDetector(storage.NewMemoryKV(), nil)
	g := distanceGoal(0)

	var prev []int
	for _, pct := range []float64{10, 60, 20, 0, 80, 40, 130, 5} {
		d.Check(ctx, g, model.GoalProgress{GoalID: g.ID, ProgressPercentage: pct})
		got := d.Achieved(ctx, g.ID)
		for _, t0 := range prev {
			if !slices.Contains(got, t0) {
				t.Fatalf("threshold %d revoked after pct %v: %v", t0, pct, got)
			}
		}
		prev = got
	}
}

func TestMilestoneNextAndProgressToNext(t *testing.T) {
	d := NewMilestoneDetector(storage.NewMemoryKV(), nil)
	g := distanceGoal(0)

	res := d.Check(context.Background(), g, model.GoalProgress{ProgressPercentage: 30})
	if res.NextMilestone != 50 || res.ProgressToNextMilestone != 20 {
		t.Fatalf("expected next 50 at 20%%, got %d at %v", res.NextMilestone, res.ProgressToNextMilestone)
	}

	res = d.Check(context.Background(), g, model.GoalProgress{ProgressPercentage: 10})
	if res.NextMilestone != 25 || res.ProgressToNextMilestone != 40 {
		t.Fatalf("expected next 25 at 40%%, got %d at %v", res.NextMilestone, res.ProgressToNextMilestone)
	}

	res = d.Check(context.Background(), g, model.GoalProgress{ProgressPercentage: 140})
	if res.NextMilestone != 0 || res.ProgressToNextMilestone != 100 {
		t.Fatalf("expected no next milestone, got %d at %v", res.NextMilestone, res.ProgressToNextMilestone)
	}
}

func TestMilestoneResetAndCorruptState(t *testing.T) {
	ctx := context.Background()
	kv := storage.NewMemoryKV()
	d := NewMilestoneDetector(kv, nil)
	g := distanceGoal(0)

	d.Check(ctx, g, model.GoalProgress{ProgressPercentage: 60})
	d.Reset(ctx, g.ID)
	res := d.Check(ctx, g, model.GoalProgress{ProgressPercentage: 60})
	if !slices.Equal(res.NewMilestones, []int{25, 50}) {
		t.Fatalf("expected milestones to re-fire after reset, got %v", res.NewMilestones)
	}

	_ = kv.Set(ctx, milestoneKey("broken"), "not-json")
	res = d.Check(ctx, model.Goal{ID: "broken"}, model.GoalProgress{ProgressPercentage: 26})
	if !slices.Equal(res.NewMilestones, []int{25}) {
		t.Fatalf("expected corrupt state to degrade to empty, got %v", res.NewMilestones)
	}
}

func TestNextMilestone(t *testing.T) {
	tests := []struct {
		pct      float64
		wantNext int
		wantTo   float64
	}{
		{0, 25, 0},
		{37.5, 50, 50},
		{99.9, 100, 99.6},
		{100, 0, 100},
		{-4, 25, 0},
	}
	for _, tc := range tests {
		next, to := NextMilestone(tc.pct)
		if next != tc.wantNext || math.Abs(to-tc.wantTo) > 0.001 {
			t.Fatalf("NextMilestone(%v) = %d, %v; want %d, %v", tc.pct, next, to, tc.wantNext, tc.wantTo)
		}
	}
}
