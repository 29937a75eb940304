package views

import "math"

// Pct is subset/total as a percentage in [0, 100]. A zero total counts as one
// so that Pct(0, 0) is 0 rather than undefined.
func Pct(subset, total int) float64 {
	if total < 1 {
		total = 1
	}
	if subset < 0 {
		subset = 0
	}
	p := float64(subset) / float64(total) * 100
	return math.Min(p, 100)
}

// RoundPct is Pct rounded to the nearest whole number for display.
func RoundPct(subset, total int) int {
	return int(math.Round(Pct(subset, total)))
}
