package model

import (
	"errors"
	"strings"
	"time"
)

type Run struct {
	ID         string
	Date       time.Time
	DistanceKm float64
	Duration   time.Duration
	Notes      string
}

func (r Run) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("model: run id is required")
	}
	if r.Date.IsZero() {
		return errors.New("model: run date is required")
	}
	if r.DistanceKm < 0 {
		return errors.New("model: run distance must not be negative")
	}
	if r.Duration < 0 {
		return errors.New("model: run duration must not be negative")
	}
	return nil
}

// PaceMinPerKm returns minutes per kilometre, or 0 when either side is unknown.
func (r Run) PaceMinPerKm() float64 {
	if r.DistanceKm <= 0 || r.Duration <= 0 {
		return 0
	}
	return r.Duration.Minutes() / r.DistanceKm
}

// RunDates extracts the run dates, one per run.
func RunDates(runs []Run) []time.Time {
	out := make([]time.Time, 0, len(runs))
	for _, r := range runs {
		out = append(out, r.Date)
	}
	return out
}

// ParseRunDates parses ISO calendar dates (2006-01-02) in loc. Unparseable
// entries are skipped.
func ParseRunDates(values []string, loc *time.Location) []time.Time {
	if loc == nil {
		loc = time.Local
	}
	out := make([]time.Time, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if len(v) > len(time.DateOnly) {
			v = v[:len(time.DateOnly)]
		}
		d, err := time.ParseInLocation(time.DateOnly, v, loc)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	return out
}
