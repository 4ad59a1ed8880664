package mrf

import "gonum.org/v1/gonum/floats"

// normalize scales v in place to sum to one. A zero sum is not guarded: the
// result is NaN and spreads through later updates. CheckFinite detects it.
func normalize(v []float64) {
	floats.Scale(1/floats.Sum(v), v)
}
