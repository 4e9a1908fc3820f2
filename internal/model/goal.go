package model

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"
)

var (
	ErrInvalidGoalType = errors.New("model: invalid goal type")
	ErrInvalidTarget   = errors.New("model: invalid goal target")
)

type GoalType string

const (
	GoalTypeDistance   GoalType = "distance"
	GoalTypePace       GoalType = "pace"
	GoalTypeTime       GoalType = "time"
	GoalTypeFrequency  GoalType = "frequency"
	GoalTypeLongestRun GoalType = "longest_run"
)

func (g GoalType) IsValid() bool {
	switch g {
	case GoalTypeDistance, GoalTypePace, GoalTypeTime, GoalTypeFrequency, GoalTypeLongestRun:
		return true
	default:
		return false
	}
}

// DefaultUnit is the unit ValueFromRuns reports for the goal type.
func (g GoalType) DefaultUnit() string {
	switch g {
	case GoalTypeDistance, GoalTypeLongestRun:
		return "km"
	case GoalTypePace:
		return "min/km"
	case GoalTypeTime:
		return "min"
	case GoalTypeFrequency:
		return "runs"
	default:
		return ""
	}
}

type Goal struct {
	ID           string
	Title        string
	Type         GoalType
	TargetValue  float64
	TargetUnit   string
	StartDate    time.Time
	EndDate      time.Time
	CurrentValue float64
	IsActive     bool
	IsCompleted  bool
	CompletedAt  *time.Time
	Color        string
	Icon         string
}

func (g Goal) Validate() error {
	if strings.TrimSpace(g.ID) == "" {
		return errors.New("model: goal id is required")
	}
	if strings.TrimSpace(g.Title) == "" {
		return errors.New("model: goal title is required")
	}
	if !g.Type.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidGoalType, g.Type)
	}
	if g.TargetValue <= 0 || math.IsNaN(g.TargetValue) || math.IsInf(g.TargetValue, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidTarget, g.TargetValue)
	}
	if g.CurrentValue < 0 {
		return errors.New("model: goal current value must not be negative")
	}
	if g.StartDate.IsZero() || g.EndDate.IsZero() {
		return errors.New("model: goal start and end dates are required")
	}
	if g.EndDate.Before(g.StartDate) {
		return errors.New("model: goal end date is before start date")
	}
	if g.IsCompleted && g.CompletedAt == nil {
		return errors.New("model: completed_at is required when goal is completed")
	}
	if !g.IsCompleted && g.CompletedAt != nil {
		return errors.New("model: completed_at must be nil when goal is not completed")
	}
	return nil
}

// Complete freezes the goal's current value at at.
func (g *Goal) Complete(at time.Time) {
	if g.IsCompleted {
		return
	}
	g.IsCompleted = true
	stamp := at
	g.CompletedAt = &stamp
}

// ValueFromRuns derives the goal's current value from the runs that fall
// inside its date window. Completed goals keep their frozen value.
func (g Goal) ValueFromRuns(runs []Run) float64 {
	if g.IsCompleted {
		return g.CurrentValue
	}
	start := startOfDay(g.StartDate)
	end := startOfDay(g.EndDate).AddDate(0, 0, 1)

	var sum, best float64
	count := 0
	for _, r := range runs {
		if r.Date.Before(start) || !r.Date.Before(end) {
			continue
		}
		count++
		switch g.Type {
		case GoalTypeDistance:
			sum += r.DistanceKm
		case GoalTypeTime:
			sum += r.Duration.Minutes()
		case GoalTypeLongestRun:
			if r.DistanceKm > best {
				best = r.DistanceKm
			}
		case GoalTypePace:
			pace := r.PaceMinPerKm()
			if pace > 0 && (best == 0 || pace < best) {
				best = pace
			}
		}
	}

	switch g.Type {
	case GoalTypeDistance, GoalTypeTime:
		return sum
	case GoalTypeFrequency:
		return float64(count)
	default:
		return best
	}
}

// Sync recomputes the current value from runs and completes the goal once it
// reaches its target. It reports whether the goal changed.
func (g Goal) Sync(runs []Run, now time.Time) (Goal, bool) {
	if g.IsCompleted {
		return g, false
	}
	value := g.ValueFromRuns(runs)
	changed := value != g.CurrentValue
	g.CurrentValue = value
	if ComputeProgress(g, now).ProgressPercentage >= 100 {
		g.Complete(now)
		changed = true
	}
	return g, changed
}

type GoalProgress struct {
	GoalID             string
	CurrentValue       float64
	RemainingValue     float64
	ProgressPercentage float64
	DaysRemaining      int
}

// DisplayPercentage clamps the raw percentage to [0,100].
func (p GoalProgress) DisplayPercentage() float64 {
	return ClampPercent(p.ProgressPercentage)
}

// ComputeProgress derives progress for g as observed at now. Today is now's
// calendar date; the end date is read as a calendar date.
func ComputeProgress(g Goal, now time.Time) GoalProgress {
	out := GoalProgress{
		GoalID:        g.ID,
		CurrentValue:  g.CurrentValue,
		DaysRemaining: DaysBetween(now, g.EndDate),
	}

	if g.Type == GoalTypePace {
		// lower pace is better
		if g.CurrentValue > 0 && g.TargetValue > 0 {
			out.ProgressPercentage = g.TargetValue / g.CurrentValue * 100
		}
		out.RemainingValue = math.Max(g.CurrentValue-g.TargetValue, 0)
		if g.CurrentValue == 0 {
			out.RemainingValue = 0
		}
		return out
	}

	if g.TargetValue > 0 {
		out.ProgressPercentage = g.CurrentValue / g.TargetValue * 100
	}
	out.RemainingValue = math.Max(g.TargetValue-g.CurrentValue, 0)
	return out
}

// TimeElapsedPercentage reports how much of the goal window has passed at now,
// clamped to [0,100].
func (g Goal) TimeElapsedPercentage(now time.Time) float64 {
	total := g.EndDate.Sub(g.StartDate)
	if total <= 0 {
		if now.Before(g.StartDate) {
			return 0
		}
		return 100
	}
	return ClampPercent(float64(now.Sub(g.StartDate)) / float64(total) * 100)
}

func ClampPercent(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// DaysBetween counts calendar days from a's date to b's date, each read in
// its own location.
func DaysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	da := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	db := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
