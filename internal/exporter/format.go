package exporter

import (
	"fmt"
	"math"
)

// formatFloat formats a float64 value with exactly 2 decimal places.
// NaN is written as "n/a".
func formatFloat(f float64) string {
	if math.IsNaN(f) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", f)
}

// formatPercent formats a 0..1 share as a percentage
func formatPercent(share float64) string {
	return fmt.Sprintf("%.1f%%", share*100)
}

// formatRange labels a histogram bin
func formatRange(lower, upper float64) string {
	return formatFloat(lower) + "-" + formatFloat(upper)
}

// cellValue maps NaN to nil so the cell stays empty.
func cellValue(f float64) interface{} {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
