package utils

import (
	"fmt"
	"math"
)

// DaysPerYear is the calendar convention used for expiry conversion.
const DaysPerYear = 365.0

// DaysToYears converts calendar days to a year fraction.
func DaysToYears(days float64) float64 { return days / DaysPerYear }

// YearsToDays converts a year fraction back to calendar days.
func YearsToDays(years float64) float64 { return years * DaysPerYear }

// PercentToFraction converts 20 → 0.20.
func PercentToFraction(pct float64) float64 { return pct / 100 }

// FractionToPercent converts 0.20 → 20.
func FractionToPercent(f float64) float64 { return f * 100 }

// FormatPct formats a percentage with sign, e.g. "+2.35%" or "-0.80%".
func FormatPct(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// FormatPrice formats a price with precision scaled to its magnitude, so
// both 64123.5 and 0.000123 stay readable.
func FormatPrice(p float64) string {
	abs := math.Abs(p)
	switch {
	case abs == 0:
		return "0.00"
	case abs >= 1:
		return fmt.Sprintf("%.2f", p)
	case abs >= 0.01:
		return fmt.Sprintf("%.4f", p)
	default:
		return fmt.Sprintf("%.8f", p)
	}
}

// IsFinite reports whether f is neither NaN nor ±Inf.
func IsFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
