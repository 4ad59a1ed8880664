package solver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/samcharles93/loopy/internal/stereo"
)

type countingObserver struct{ n int }

func (o *countingObserver) ObserveSweep(time.Duration) { o.n++ }

func synthProblem() Problem {
	left, right := stereo.Shifted(20, 8, 2, 7)
	return Problem{Left: left, Right: right, NumBeliefs: 5}
}

func TestSolveRecoversShift(t *testing.T) {
	t.Parallel()
	obs := &countingObserver{}
	res, err := Solve(context.Background(), synthProblem(), 4, obs)
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if res.Stats.Sweeps != 4 || obs.n != 4 {
		t.Fatalf("sweeps = %d, observed %d, want 4", res.Stats.Sweeps, obs.n)
	}
	if len(res.Labels) != res.Height*res.Width {
		t.Fatalf("labels len %d", len(res.Labels))
	}
	for y := 0; y < res.Height; y++ {
		for x := res.NumBeliefs - 1; x < res.Width-2; x++ {
			if got := res.Labels[y*res.Width+x]; got != 2 {
				t.Fatalf("label at (%d,%d) = %d, want 2", y, x, got)
			}
		}
	}
}

func TestSessionAdvanceCounts(t *testing.T) {
	t.Parallel()
	s, err := NewSession(synthProblem())
	if err != nil {
		t.Fatal(err)
	}
	var seen []int
	onSweep := func(n int, labels []int) error {
		seen = append(seen, n)
		if len(labels) != 20*8 {
			t.Errorf("labels len %d", len(labels))
		}
		return nil
	}
	if _, err := s.Advance(context.Background(), 2, onSweep); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Advance(context.Background(), 3, onSweep); err != nil {
		t.Fatal(err)
	}
	if s.Sweeps() != 5 || len(seen) != 5 || seen[4] != 5 {
		t.Fatalf("sweeps %d, callbacks %v", s.Sweeps(), seen)
	}
}

func TestSessionAdvanceStops(t *testing.T) {
	t.Parallel()
	s, err := NewSession(synthProblem())
	if err != nil {
		t.Fatal(err)
	}
	stop := errors.New("stop")
	stats, err := s.Advance(context.Background(), 10, func(n int, _ []int) error {
		if n == 3 {
			return stop
		}
		return nil
	})
	if !errors.Is(err, stop) || stats.Sweeps != 3 {
		t.Fatalf("err %v after %d sweeps", err, stats.Sweeps)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	stats, err = s.Advance(ctx, 5, nil)
	if !errors.Is(err, context.Canceled) || stats.Sweeps != 0 {
		t.Fatalf("cancelled: err %v after %d sweeps", err, stats.Sweeps)
	}
}

func TestNewSessionErrors(t *testing.T) {
	t.Parallel()
	if _, err := NewSession(Problem{}); err == nil {
		t.Fatal("expected error for missing images")
	}
	_, err := NewSession(Problem{Left: stereo.NewImage(4, 4), Right: stereo.NewImage(3, 4)})
	if !errors.Is(err, stereo.ErrSizeMismatch) {
		t.Fatalf("got %v, want ErrSizeMismatch", err)
	}
}

func TestProblemDefaults(t *testing.T) {
	t.Parallel()
	zero, negative := 0.0, -1.0
	cases := []struct {
		name  string
		floor *float64
		want  float64
	}{
		{"unset", nil, DefaultFloor},
		{"explicit zero", &zero, 0},
		{"negative clamps", &negative, 0},
	}
	for _, tc := range cases {
		p := Problem{Floor: tc.floor}.withDefaults()
		if p.NumBeliefs != DefaultNumBeliefs || p.Sigma != DefaultSigma || p.Workers != 1 {
			t.Fatalf("%s: unexpected defaults %+v", tc.name, p)
		}
		if p.Floor == nil || *p.Floor != tc.want {
			t.Fatalf("%s: floor = %v, want %v", tc.name, p.Floor, tc.want)
		}
	}
}

func TestSessionAppliesDefaultFloor(t *testing.T) {
	t.Parallel()
	s, err := NewSession(synthProblem())
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	// With k=5 and sigma 1, distances 3 and 4 both fall below the floor.
	sm := s.Grid().Smoothness()
	if sm.At(0, 3) != sm.At(0, 4) || sm.At(0, 4) == 0 {
		t.Fatalf("floor not applied: s[0][3]=%v s[0][4]=%v", sm.At(0, 3), sm.At(0, 4))
	}

	zero := 0.0
	p := synthProblem()
	p.Floor = &zero
	s, err = NewSession(p)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	sm = s.Grid().Smoothness()
	if sm.At(0, 3) <= sm.At(0, 4) {
		t.Fatalf("explicit zero floor flattened the tail: s[0][3]=%v s[0][4]=%v", sm.At(0, 3), sm.At(0, 4))
	}
}
