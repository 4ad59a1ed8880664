package stereo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// CostVolume builds the base potential for numBeliefs candidate
// displacements, taking left as the reference image. For x >= numBeliefs-1,
// entry b of pixel (y, x) is exp(-|left(y,x) - right(y,x-b)|), the Euclidean
// distance taken over RGB. Pixels further left cannot see every displacement
// and get all ones. Every pixel's vector is normalised.
func CostVolume(left, right *Image, numBeliefs int) ([][][]float64, error) {
	if left.W != right.W || left.H != right.H {
		return nil, fmt.Errorf("left %dx%d, right %dx%d: %w", left.W, left.H, right.W, right.H, ErrSizeMismatch)
	}
	if numBeliefs < 1 {
		return nil, fmt.Errorf("stereo: numBeliefs must be positive, got %d", numBeliefs)
	}
	out := make([][][]float64, left.H)
	for y := range out {
		out[y] = make([][]float64, left.W)
		for x := range out[y] {
			cell := make([]float64, numBeliefs)
			if x < numBeliefs-1 {
				for b := range cell {
					cell[b] = 1
				}
			} else {
				l := left.At(y, x)
				for b := range cell {
					r := right.At(y, x-b)
					cell[b] = math.Exp(-math.Sqrt(sq(l[0]-r[0]) + sq(l[1]-r[1]) + sq(l[2]-r[2])))
				}
			}
			var s float64
			for _, v := range cell {
				s += v
			}
			for b := range cell {
				cell[b] /= s
			}
			out[y][x] = cell
		}
	}
	return out, nil
}

// SmoothnessTable returns the numBeliefs×numBeliefs table
// s[a][b] = max(exp(-((a-b)/sigma)^2), floor), which favours neighbouring
// pixels taking close displacements without ever ruling a jump out.
func SmoothnessTable(numBeliefs int, sigma, floor float64) *mat.Dense {
	if sigma <= 0 {
		sigma = 1
	}
	m := mat.NewDense(numBeliefs, numBeliefs, nil)
	for a := 0; a < numBeliefs; a++ {
		for b := 0; b < numBeliefs; b++ {
			d := float64(a-b) / sigma
			m.Set(a, b, math.Max(math.Exp(-d*d), floor))
		}
	}
	return m
}

func sq(v float64) float64 { return v * v }
