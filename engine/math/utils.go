package math

import (
	"math"

	"golang.org/x/exp/constraints"
)

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// Step moves v by delta and clamps it into [low, high].
func Step[T constraints.Integer | constraints.Float](v, delta, low, high T) T {
	return Clamp(v+delta, low, high)
}

// Round rounds f to the given number of decimal places. Keeps stepped
// values such as 0.1 increments from drifting.
func Round(f float32, places int) float32 {
	p := math.Pow(10, float64(places))
	return float32(math.Round(float64(f)*p) / p)
}
