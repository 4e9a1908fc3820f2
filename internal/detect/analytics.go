package detect

import (
	"fmt"
	"time"

	"github.com/sandeepkv93/runtrack/internal/model"
)

type GoalSnapshot struct {
	GoalID                string
	Title                 string
	Type                  model.GoalType
	ProgressPercentage    float64
	TimeElapsedPercentage float64
}

type GoalStats struct {
	TotalGoals      int
	ActiveGoals     int
	CompletedGoals  int
	AverageProgress float64
	TopPerformer    *GoalSnapshot
	Struggling      []GoalSnapshot
	BehindSchedule  int
	Suggestions     []string
}

// CompletionRate is completed/total as a percentage, 0 without goals.
func (s GoalStats) CompletionRate() float64 {
	if s.TotalGoals == 0 {
		return 0
	}
	return float64(s.CompletedGoals) / float64(s.TotalGoals) * 100
}

// CalculateGoalStats aggregates active and completed goals. Progress missing
// from progresses is computed from the goal at now.
func CalculateGoalStats(goals []model.Goal, progresses map[string]model.GoalProgress, now time.Time) GoalStats {
	var stats GoalStats
	var sum float64
	types := map[model.GoalType]struct{}{}

	for _, g := range goals {
		if !g.IsActive && !g.IsCompleted {
			continue
		}
		stats.TotalGoals++
		types[g.Type] = struct{}{}
		if g.IsCompleted {
			stats.CompletedGoals++
			continue
		}

		p, ok := progresses[g.ID]
		if !ok {
			p = model.ComputeProgress(g, now)
		}
		snap := GoalSnapshot{
			GoalID:                g.ID,
			Title:                 g.Title,
			Type:                  g.Type,
			ProgressPercentage:    p.DisplayPercentage(),
			TimeElapsedPercentage: g.TimeElapsedPercentage(now),
		}
		stats.ActiveGoals++
		sum += snap.ProgressPercentage

		if stats.TopPerformer == nil || snap.ProgressPercentage > stats.TopPerformer.ProgressPercentage {
			top := snap
			stats.TopPerformer = &top
		}
		if snap.ProgressPercentage < 25 && snap.TimeElapsedPercentage > 50 {
			stats.Struggling = append(stats.Struggling, snap)
		}
		if snap.ProgressPercentage < snap.TimeElapsedPercentage-10 {
			stats.BehindSchedule++
		}
	}

	if stats.ActiveGoals > 0 {
		stats.AverageProgress = sum / float64(stats.ActiveGoals)
	}
	stats.Suggestions = suggestions(stats, types)
	return stats
}

func suggestions(stats GoalStats, types map[model.GoalType]struct{}) []string {
	var out []string
	if stats.BehindSchedule > 0 {
		noun := "goal is"
		if stats.BehindSchedule > 1 {
			noun = "goals are"
		}
		out = append(out, fmt.Sprintf("%d %s behind schedule. An extra easy run this week would help close the gap.", stats.BehindSchedule, noun))
	}
	if stats.ActiveGoals > 0 {
		switch {
		case stats.AverageProgress < 30:
			out = append(out, "Average progress is low. Try breaking your goals into smaller weekly targets.")
		case stats.AverageProgress > 80:
			out = append(out, "You're ahead on most goals. Consider setting a more ambitious target.")
		}
	}
	if stats.TotalGoals > 1 && len(types) == 1 {
		out = append(out, "All your goals share one type. Mixing in a pace or frequency goal adds variety.")
	}
	return out
}
