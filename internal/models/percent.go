package models

import "math"

// Percentage returns round(100*part/total) clamped to [0,100]; 0 when total is 0
func Percentage(part, total int) int {
	if total <= 0 {
		return 0
	}
	return ClampPercent(100 * float64(part) / float64(total))
}

// snapPrecision absorbs float drift so exact halves like 52.5 stay halves
const snapPrecision = 1e9

// ClampPercent rounds v half away from zero and clamps it to [0,100]
func ClampPercent(v float64) int {
	v = math.Round(v*snapPrecision) / snapPrecision
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 100 {
		return 100
	}
	return int(math.Round(v))
}
