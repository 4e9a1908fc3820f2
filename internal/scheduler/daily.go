package scheduler

import (
	"time"

	"github.com/sandeepkv93/runtrack/internal/model"
)

// NextDailyAt returns the next occurrence of clock ("HH:MM") strictly after
// now, in now's location.
func NextDailyAt(now time.Time, clock string) (time.Time, error) {
	minutes, err := model.ParseClock(clock)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := now.Date()
	next := time.Date(y, m, d, minutes/60, minutes%60, 0, 0, now.Location())
	if !next.After(now) {
		next = time.Date(y, m, d+1, minutes/60, minutes%60, 0, 0, now.Location())
	}
	return next, nil
}
