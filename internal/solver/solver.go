// Package solver drives stereo matching: it prepares a grid MRF from an
// image pair and runs message-passing sweeps against it.
package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/samcharles93/loopy/internal/logger"
	"github.com/samcharles93/loopy/internal/mrf"
	"github.com/samcharles93/loopy/internal/stereo"
)

const (
	DefaultNumBeliefs = 17
	DefaultSigma      = 1.0
	DefaultFloor      = 0.1
)

// Problem describes one stereo pair and how to model it.
type Problem struct {
	Left, Right *stereo.Image

	// NumBeliefs is the number of candidate displacements, 0..NumBeliefs-1.
	NumBeliefs int
	// Sigma and Floor shape the smoothness table (see stereo.SmoothnessTable).
	// A nil Floor means DefaultFloor.
	Sigma float64
	Floor *float64
	// Workers bounds the goroutines used inside a single direction update.
	Workers int
}

func (p Problem) withDefaults() Problem {
	if p.NumBeliefs <= 0 {
		p.NumBeliefs = DefaultNumBeliefs
	}
	if p.Sigma <= 0 {
		p.Sigma = DefaultSigma
	}
	floor := DefaultFloor
	if p.Floor != nil {
		floor = max(*p.Floor, 0)
	}
	p.Floor = &floor
	if p.Workers <= 0 {
		p.Workers = 1
	}
	return p
}

// Observer is notified after every sweep. The API uses it for metrics.
type Observer interface {
	ObserveSweep(elapsed time.Duration)
}

// SweepFunc is called after sweep n (1-based, counted over the session's
// lifetime) with the freshly decoded labels. The slice is only valid for the
// duration of the call. Returning an error stops the run.
type SweepFunc func(n int, labels []int) error

type Stats struct {
	Sweeps       int
	Duration     time.Duration
	SweepsPerSec float64
}

// Session owns a prepared grid and counts the sweeps run against it.
type Session struct {
	grid     *mrf.Grid
	problem  Problem
	sweeps   int
	Observer Observer
}

// NewSession builds the cost volume and smoothness table for p and loads
// them into a new grid.
func NewSession(p Problem) (*Session, error) {
	p = p.withDefaults()
	if p.Left == nil || p.Right == nil {
		return nil, fmt.Errorf("solver: image pair required")
	}
	cost, err := stereo.CostVolume(p.Left, p.Right, p.NumBeliefs)
	if err != nil {
		return nil, fmt.Errorf("cost volume: %w", err)
	}
	g := mrf.New(p.Left.H, p.Left.W, p.NumBeliefs, mrf.WithWorkers(p.Workers))
	if err := g.SetBasePotential(cost); err != nil {
		return nil, fmt.Errorf("base potential: %w", err)
	}
	if err := g.SetSmoothness(stereo.SmoothnessTable(p.NumBeliefs, p.Sigma, *p.Floor)); err != nil {
		return nil, fmt.Errorf("smoothness: %w", err)
	}
	return &Session{grid: g, problem: p}, nil
}

func (s *Session) Grid() *mrf.Grid  { return s.grid }
func (s *Session) Problem() Problem { return s.problem }
func (s *Session) Sweeps() int      { return s.sweeps }

// Labels returns a copy of the current decoded beliefs, row-major.
func (s *Session) Labels() []int {
	return append([]int(nil), s.grid.DecodeBeliefs()...)
}

// Advance runs n more sweeps. The context is checked between sweeps; a
// sweep that has started always completes. After each sweep the grid is
// checked for non-finite values.
func (s *Session) Advance(ctx context.Context, n int, onSweep SweepFunc) (Stats, error) {
	log := logger.FromContext(ctx)
	var stats Stats
	start := time.Now()
	defer func() {
		stats.Duration = time.Since(start)
		if secs := stats.Duration.Seconds(); secs > 0 {
			stats.SweepsPerSec = float64(stats.Sweeps) / secs
		}
	}()

	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		sweepStart := time.Now()
		if err := s.grid.PassSweep(); err != nil {
			return stats, err
		}
		if err := s.grid.CheckFinite(); err != nil {
			return stats, fmt.Errorf("sweep %d: %w", s.sweeps+1, err)
		}
		elapsed := time.Since(sweepStart)
		s.sweeps++
		stats.Sweeps++
		if s.Observer != nil {
			s.Observer.ObserveSweep(elapsed)
		}
		log.Debug("sweep complete", "sweep", s.sweeps, "elapsed", elapsed)

		if onSweep != nil {
			if err := onSweep(s.sweeps, s.grid.DecodeBeliefs()); err != nil {
				return stats, err
			}
		}
	}
	return stats, nil
}

// Result is the outcome of Solve.
type Result struct {
	Height, Width, NumBeliefs int
	Labels                    []int
	Stats                     Stats
}

// Solve prepares p and runs sweeps in one call.
func Solve(ctx context.Context, p Problem, sweeps int, observer Observer) (*Result, error) {
	s, err := NewSession(p)
	if err != nil {
		return nil, err
	}
	s.Observer = observer
	stats, err := s.Advance(ctx, sweeps, nil)
	if err != nil {
		return nil, err
	}
	logger.FromContext(ctx).Info("solve complete",
		"width", p.Left.W, "height", p.Left.H, "beliefs", s.problem.NumBeliefs,
		"sweeps", stats.Sweeps, "duration", stats.Duration)
	return &Result{
		Height:     p.Left.H,
		Width:      p.Left.W,
		NumBeliefs: s.problem.NumBeliefs,
		Labels:     s.Labels(),
		Stats:      stats,
	}, nil
}
