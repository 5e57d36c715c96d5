package retail

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Mean returns the arithmetic mean. ok is false for an empty slice.
func Mean(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs)), true
}

// Median returns the median without modifying xs. ok is false for an empty
// slice.
func Median(xs []float64) (float64, bool) {
	if len(xs) == 0 {
		return 0, false
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	n := len(s)
	if n%2 == 1 {
		return s[n/2], true
	}
	return (s[n/2-1] + s[n/2]) / 2, true
}

// MedianDecimal returns the median of decimal values.
func MedianDecimal(xs []decimal.Decimal) (decimal.Decimal, bool) {
	if len(xs) == 0 {
		return decimal.Zero, false
	}
	s := append([]decimal.Decimal(nil), xs...)
	sort.Slice(s, func(i, j int) bool { return s[i].LessThan(s[j]) })
	n := len(s)
	if n%2 == 1 {
		return s[n/2], true
	}
	return s[n/2-1].Add(s[n/2]).Div(decimal.NewFromInt(2)), true
}

// Float returns a pointer to v, for optional metrics.
func Float(v float64) *float64 { return &v }

// MeanPtr is Mean returning nil when undefined.
func MeanPtr(xs []float64) *float64 {
	if m, ok := Mean(xs); ok {
		return &m
	}
	return nil
}

// MedianPtr is Median returning nil when undefined.
func MedianPtr(xs []float64) *float64 {
	if m, ok := Median(xs); ok {
		return &m
	}
	return nil
}

// Pct returns part / whole * 100, and false when whole is zero.
func Pct(part, whole float64) (float64, bool) {
	if whole == 0 {
		return 0, false
	}
	return part / whole * 100, true
}
