package detect

import (
	"strings"
	"testing"
	"time"

	"github.com/sandeepkv93/runtrack/internal/model"
)

func TestCalculateGoalStats(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC)
	done := time.Date(2026, 9, 30, 0, 0, 0, 0, time.UTC)

	goals := []model.Goal{
		{ID: "g1", Title: "100k", Type: model.GoalTypeDistance, TargetValue: 100, CurrentValue: 80, StartDate: start, EndDate: end, IsActive: true},
		{ID: "g2", Title: "20 runs", Type: model.GoalTypeFrequency, TargetValue: 20, CurrentValue: 2, StartDate: start, EndDate: end, IsActive: true},
		{ID: "g3", Title: "September 50k", Type: model.GoalTypeDistance, TargetValue: 50, CurrentValue: 50, StartDate: start.AddDate(0, -1, 0), EndDate: done, IsCompleted: true, CompletedAt: &done},
		{ID: "g4", Title: "Archived", Type: model.GoalTypeTime, TargetValue: 10, StartDate: start, EndDate: end},
	}

	stats := CalculateGoalStats(goals, nil, now)
	if stats.TotalGoals != 3 || stats.CompletedGoals != 1 || stats.ActiveGoals != 2 {
		t.Fatalf("unexpected counts: %#v", stats)
	}
	if stats.AverageProgress != 45 {
		t.Fatalf("expected average 45, got %v", stats.AverageProgress)
	}
	if stats.TopPerformer == nil || stats.TopPerformer.GoalID != "g1" {
		t.Fatalf("expected g1 as top performer, got %#v", stats.TopPerformer)
	}
	if len(stats.Struggling) != 1 || stats.Struggling[0].GoalID != "g2" {
		t.Fatalf("expected g2 struggling, got %#v", stats.Struggling)
	}
	if stats.BehindSchedule != 1 {
		t.Fatalf("expected one goal behind schedule, got %d", stats.BehindSchedule)
	}
	if len(stats.Suggestions) != 1 || !strings.Contains(stats.Suggestions[0], "1 goal is behind schedule") {
		t.Fatalf("unexpected suggestions: %v", stats.Suggestions)
	}
	if rate := stats.CompletionRate(); rate < 33.3 || rate > 33.4 {
		t.Fatalf("unexpected completion rate %v", rate)
	}
}

func TestCalculateGoalStatsSuggestionBands(t *testing.T) {
	now := time.Date(2026, 10, 2, 0, 0, 0, 0, time.UTC)
	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 12, 31, 0, 0, 0, 0, time.UTC)

	low := []model.Goal{
		{ID: "a", Type: model.GoalTypeDistance, TargetValue: 100, CurrentValue: 5, StartDate: start, EndDate: end, IsActive: true},
		{ID: "b", Type: model.GoalTypeDistance, TargetValue: 100, CurrentValue: 10, StartDate: start, EndDate: end, IsActive: true},
	}
	stats := CalculateGoalStats(low, nil, now)
	joined := strings.Join(stats.Suggestions, "\n")
	if !strings.Contains(joined, "Average progress is low") || !strings.Contains(joined, "share one type") {
		t.Fatalf("expected low band and diversity suggestions, got %v", stats.Suggestions)
	}

	high := map[string]model.GoalProgress{"a": {ProgressPercentage: 150}, "b": {ProgressPercentage: 90}}
	stats = CalculateGoalStats(low, high, now)
	if stats.AverageProgress != 95 {
		t.Fatalf("expected clamped average 95, got %v", stats.AverageProgress)
	}
	if !strings.Contains(strings.Join(stats.Suggestions, "\n"), "more ambitious") {
		t.Fatalf("expected high band suggestion, got %v", stats.Suggestions)
	}

	empty := CalculateGoalStats(nil, nil, now)
	if empty.TotalGoals != 0 || empty.CompletionRate() != 0 || len(empty.Suggestions) != 0 {
		t.Fatalf("expected empty stats, got %#v", empty)
	}
}
