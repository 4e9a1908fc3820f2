package update

import (
	"fmt"
	"math"
)

func formatDuration(totalSec int) string {
	if totalSec <= 0 {
		return "-"
	}
	h := totalSec / 3600
	min := (totalSec % 3600) / 60
	sec := totalSec % 60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, min, sec)
	}
	return fmt.Sprintf("%02d:%02d", min, sec)
}

// formatPace renders minutes per km as m:ss.
func formatPace(minPerKm float64) string {
	whole := math.Floor(minPerKm)
	sec := int(math.Round((minPerKm - whole) * 60))
	if sec == 60 {
		whole++
		sec = 0
	}
	return fmt.Sprintf("%d:%02d", int(whole), sec)
}

func clampCursor(cursor, n int) int {
	if n <= 0 || cursor < 0 {
		return 0
	}
	if cursor >= n {
		return n - 1
	}
	return cursor
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}
