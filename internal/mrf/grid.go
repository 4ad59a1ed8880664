// Package mrf implements sum-product loopy belief propagation on a pairwise
// Markov random field laid out as a 2-D grid.
//
// Every cell carries five length-K channels: the messages most recently
// received from its right, upper, left and lower neighbours, plus its base
// potential. Messages from outside the grid are never computed and stay at
// the uniform value 1/K, so border cells need no special casing.
//
// A Grid is not safe for concurrent use.
package mrf

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Grid is the state container for one MRF. All storage, including the
// scratch used by updates and decoding, is allocated by New and reused.
type Grid struct {
	h, w, k int

	// data is [h][w][numChannels][k], row-major.
	data []float64
	// smooth is [k][k], row-normalised.
	smooth []float64

	// staging holds one direction pass's messages, indexed by sender cell.
	staging []float64
	// scratch holds one length-k product vector per worker.
	scratch [][]float64

	prod   []float64
	labels []int

	workers int
}

// Option configures a Grid at construction.
type Option func(*Grid)

// WithWorkers sets how many goroutines a single direction update may use to
// fill the staging buffer. Values below 1 are treated as 1.
func WithWorkers(n int) Option {
	return func(g *Grid) {
		if n < 1 {
			n = 1
		}
		g.workers = n
	}
}

// New allocates a grid of height×width cells with numBeliefs values per
// cell. Base potentials, messages and smoothness rows start uniform.
func New(height, width, numBeliefs int, opts ...Option) *Grid {
	if height < 0 || width < 0 || numBeliefs < 1 {
		panic(fmt.Sprintf("mrf: invalid grid dimensions %dx%dx%d", height, width, numBeliefs))
	}
	g := &Grid{
		h:       height,
		w:       width,
		k:       numBeliefs,
		data:    make([]float64, height*width*numChannels*numBeliefs),
		smooth:  make([]float64, numBeliefs*numBeliefs),
		staging: make([]float64, height*width*numBeliefs),
		prod:    make([]float64, numBeliefs),
		labels:  make([]int, height*width),
		workers: 1,
	}
	for _, opt := range opts {
		opt(g)
	}
	g.scratch = make([][]float64, g.workers)
	for i := range g.scratch {
		g.scratch[i] = make([]float64, numBeliefs)
	}

	uniform := 1 / float64(numBeliefs)
	for i := range g.data {
		g.data[i] = uniform
	}
	for i := range g.smooth {
		g.smooth[i] = uniform
	}
	return g
}

func (g *Grid) Height() int     { return g.h }
func (g *Grid) Width() int      { return g.w }
func (g *Grid) NumBeliefs() int { return g.k }

// Channel returns a view of channel c of cell (y, x). Writes through the
// view bypass normalisation and should be avoided.
func (g *Grid) Channel(y, x int, c Direction) []float64 {
	if y < 0 || y >= g.h || x < 0 || x >= g.w {
		panic("mrf: cell index out of range")
	}
	if c < 0 || int(c) >= numChannels {
		panic("mrf: channel out of range")
	}
	return g.vec(y, x, c)
}

// Base returns a view of the base potential of cell (y, x).
func (g *Grid) Base(y, x int) []float64 {
	return g.Channel(y, x, Base)
}

// Message returns a view of the message cell (y, x) last received from its
// neighbour in direction d.
func (g *Grid) Message(y, x int, d Direction) []float64 {
	if !d.IsMessage() {
		panic("mrf: message direction required")
	}
	return g.Channel(y, x, d)
}

// Smoothness returns a copy of the normalised smoothness table.
func (g *Grid) Smoothness() *mat.Dense {
	data := make([]float64, len(g.smooth))
	copy(data, g.smooth)
	return mat.NewDense(g.k, g.k, data)
}

// SetBasePotential normalises each cell's vector in values and stores it in
// the base channel. values must be height×width×numBeliefs; the grid is left
// untouched on error.
func (g *Grid) SetBasePotential(values [][][]float64) error {
	if len(values) != g.h {
		return fmt.Errorf("mrf: base potential has %d rows, grid has %d: %w", len(values), g.h, ErrShapeMismatch)
	}
	for y, row := range values {
		if len(row) != g.w {
			return fmt.Errorf("mrf: base potential row %d has %d columns, grid has %d: %w", y, len(row), g.w, ErrShapeMismatch)
		}
	}
	for y, row := range values {
		for x, cell := range row {
			if len(cell) != g.k {
				return fmt.Errorf("mrf: base potential at (%d,%d) has %d beliefs, grid has %d: %w", y, x, len(cell), g.k, ErrBeliefCountMismatch)
			}
		}
	}

	for y, row := range values {
		for x, cell := range row {
			dst := g.vec(y, x, Base)
			copy(dst, cell)
			normalize(dst)
		}
	}
	return nil
}

// SetSmoothness normalises each row of m and stores it as the pairwise
// compatibility table. m must be numBeliefs×numBeliefs.
func (g *Grid) SetSmoothness(m mat.Matrix) error {
	r, c := m.Dims()
	if r != g.k || c != g.k {
		return fmt.Errorf("mrf: smoothness is %dx%d, want %dx%d: %w", r, c, g.k, g.k, ErrShapeMismatch)
	}
	for a := 0; a < g.k; a++ {
		row := g.smooth[a*g.k : (a+1)*g.k]
		mat.Row(row, a, m)
		normalize(row)
	}
	return nil
}

// CheckFinite scans every channel, then the smoothness table, for NaN or
// infinite values, which appear once a normalisation has divided by a zero
// sum. It returns a *FaultError wrapping ErrNumericFault for the first one
// found.
func (g *Grid) CheckFinite() error {
	for i, v := range g.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			cell := i / (numChannels * g.k)
			return &FaultError{
				Y:       cell / g.w,
				X:       cell % g.w,
				Channel: Direction((i / g.k) % numChannels),
				Index:   i % g.k,
				Value:   v,
			}
		}
	}
	for i, v := range g.smooth {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return &FaultError{Y: i / g.k, X: i % g.k, Value: v, Smoothness: true}
		}
	}
	return nil
}

func (g *Grid) vec(y, x int, c Direction) []float64 {
	off := ((y*g.w+x)*numChannels + int(c)) * g.k
	return g.data[off : off+g.k]
}
