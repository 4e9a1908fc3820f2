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

// CelebrationStreaks are the streak lengths worth celebrating.
var CelebrationStreaks = []int{3, 7, 14, 21, 30, 60, 90, 180, 365}

const streakKey = "streak"

type StreakInfo struct {
	CurrentStreak   int              `json:"currentStreak"`
	LongestStreak   int              `json:"longestStreak"`
	StreakType      model.StreakType `json:"streakType"`
	IsNewRecord     bool             `json:"isNewRecord"`
	ShouldCelebrate bool             `json:"shouldCelebrate"`
}

// CalculateStreak recomputes streaks from scratch. Dates are reduced to
// calendar days in now's location; several runs on one day count once. The
// current streak must end today.
func CalculateStreak(dates []time.Time, now time.Time, previousLongest int) StreakInfo {
	info := StreakInfo{StreakType: model.StreakDaily}
	loc := now.Location()

	days := make([]time.Time, 0, len(dates))
	for _, d := range dates {
		if d.IsZero() {
			continue
		}
		days = append(days, dayOf(d.In(loc)))
	}
	if len(days) == 0 {
		return info
	}
	slices.SortFunc(days, func(a, b time.Time) int { return b.Compare(a) })
	days = slices.CompactFunc(days, func(a, b time.Time) bool { return a.Equal(b) })

	today := dayOf(now)
	for i, d := range days {
		if !d.Equal(today.AddDate(0, 0, -i)) {
			break
		}
		info.CurrentStreak++
	}

	longest, run := 1, 1
	for i := len(days) - 2; i >= 0; i-- {
		if dayGap(days[i+1], days[i]) == 1 {
			run++
		} else {
			run = 1
		}
		longest = max(longest, run)
	}
	info.LongestStreak = max(longest, info.CurrentStreak)

	info.IsNewRecord = info.CurrentStreak > previousLongest
	info.ShouldCelebrate = slices.Contains(CelebrationStreaks, info.CurrentStreak)
	return info
}

// ShouldNotifyStreak decides whether next is worth announcing given the last
// stored snapshot prev (nil when none exists). The weekly-multiple rule is a
// heuristic and may repeat after a streak resets and regrows.
func ShouldNotifyStreak(next StreakInfo, prev *StreakInfo) bool {
	if prev == nil {
		return next.ShouldCelebrate
	}
	if next.IsNewRecord || next.ShouldCelebrate {
		return true
	}
	return next.CurrentStreak > prev.CurrentStreak && next.CurrentStreak%7 == 0
}

// StreakDetector keeps the last known StreakInfo so successive checks can be
// compared.
type StreakDetector struct {
	kv  storage.KV
	log *slog.Logger
	mu  sync.Mutex
}

func NewStreakDetector(kv storage.KV, log *slog.Logger) *StreakDetector {
	if log == nil {
		log = slog.Default()
	}
	return &StreakDetector{kv: kv, log: log}
}

// Check computes the streak as of now and reports whether it should be
// announced. Unchanged streaks are never announced twice.
func (d *StreakDetector) Check(ctx context.Context, dates []time.Time, now time.Time) (StreakInfo, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	prev := d.load(ctx)
	previousLongest := 0
	if prev != nil {
		previousLongest = prev.LongestStreak
	}
	info := CalculateStreak(dates, now, previousLongest)

	if prev != nil && prev.CurrentStreak == info.CurrentStreak && prev.LongestStreak == info.LongestStreak {
		return info, false
	}
	notify := info.CurrentStreak > 0 && ShouldNotifyStreak(info, prev)
	if err := storage.SetJSON(ctx, d.kv, streakKey, info); err != nil {
		d.log.Warn("streak snapshot not saved", "key", streakKey, "error", err)
	}
	return info, notify
}

// Snapshot returns the last stored StreakInfo, or nil.
func (d *StreakDetector) Snapshot(ctx context.Context) *StreakInfo {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.load(ctx)
}

func (d *StreakDetector) load(ctx context.Context) *StreakInfo {
	var snap StreakInfo
	ok, err := storage.GetJSON(ctx, d.kv, streakKey, &snap)
	if err != nil {
		d.log.Warn("streak snapshot unreadable, ignoring", "key", streakKey, "error", err)
		return nil
	}
	if !ok {
		return nil
	}
	return &snap
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func dayGap(earlier, later time.Time) int {
	return model.DaysBetween(earlier, later)
}
