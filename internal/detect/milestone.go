package detect

import (
	"context"
	"log/slog"
	"math"
	"slices"
	"sync"

	"github.com/sandeepkv93/runtrack/internal/model"
	"github.com/sandeepkv93/runtrack/internal/storage"
)

// Thresholds are the fixed milestone percentages.
var Thresholds = []int{25, 50, 75, 100}

type MilestoneCheckResult struct {
	NewMilestones    []int
	HasNewMilestones bool
	// NextMilestone is 0 once every threshold is behind the current progress.
	NextMilestone           int
	ProgressToNextMilestone float64
}

// MilestoneDetector tracks which thresholds each goal has already crossed.
// Achieved thresholds are never revoked.
type MilestoneDetector struct {
	kv  storage.KV
	log *slog.Logger
	mu  sync.Mutex
}

func NewMilestoneDetector(kv storage.KV, log *slog.Logger) *MilestoneDetector {
	if log == nil {
		log = slog.Default()
	}
	return &MilestoneDetector{kv: kv, log: log}
}

func milestoneKey(goalID string) string {
	return "milestones:" + goalID
}

func (d *MilestoneDetector) Check(ctx context.Context, goal model.Goal, progress model.GoalProgress) MilestoneCheckResult {
	pct := progress.ProgressPercentage
	if math.IsNaN(pct) || pct < 0 {
		pct = 0
	}
	currentPct := int(math.Floor(math.Min(pct, math.MaxInt32)))

	d.mu.Lock()
	defer d.mu.Unlock()

	achieved := d.load(ctx, goal.ID)
	var fresh []int
	for _, t := range Thresholds {
		if currentPct >= t && !slices.Contains(achieved, t) {
			fresh = append(fresh, t)
		}
	}
	if len(fresh) > 0 {
		merged := append(slices.Clone(achieved), fresh...)
		slices.Sort(merged)
		if err := storage.SetJSON(ctx, d.kv, milestoneKey(goal.ID), merged); err != nil {
			d.log.Warn("milestone state not saved", "key", milestoneKey(goal.ID), "error", err)
		}
	}

	next, toNext := NextMilestone(pct)

	return MilestoneCheckResult{
		NewMilestones:           fresh,
		HasNewMilestones:        len(fresh) > 0,
		NextMilestone:           next,
		ProgressToNextMilestone: toNext,
	}
}

// NextMilestone returns the first threshold above pct and the progress made
// from the previous threshold towards it. Past the last threshold it returns
// 0 and 100.
func NextMilestone(pct float64) (int, float64) {
	if math.IsNaN(pct) || pct < 0 {
		pct = 0
	}
	currentPct := int(math.Floor(math.Min(pct, math.MaxInt32)))
	next, prev := 0, 0
	for _, t := range Thresholds {
		if t > currentPct {
			next = t
			break
		}
		prev = t
	}
	if next == 0 {
		return 0, 100
	}
	return next, model.ClampPercent((pct - float64(prev)) / float64(next-prev) * 100)
}

// Achieved returns the thresholds already recorded for goalID, ascending.
func (d *MilestoneDetector) Achieved(ctx context.Context, goalID string) []int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.load(ctx, goalID)
}

// Reset forgets the goal's achieved thresholds.
func (d *MilestoneDetector) Reset(ctx context.Context, goalID string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.kv.Delete(ctx, milestoneKey(goalID)); err != nil {
		d.log.Warn("milestone state not cleared", "key", milestoneKey(goalID), "error", err)
	}
}

func (d *MilestoneDetector) load(ctx context.Context, goalID string) []int {
	var achieved []int
	if _, err := storage.GetJSON(ctx, d.kv, milestoneKey(goalID), &achieved); err != nil {
		d.log.Warn("milestone state unreadable, starting empty", "key", milestoneKey(goalID), "error", err)
		return nil
	}
	return achieved
}
