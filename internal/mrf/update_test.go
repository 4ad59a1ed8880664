package mrf

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// referenceMessage recomputes the message (y, x) sends in direction d from
// a snapshot of the channel data, term by term.
func referenceMessage(g *Grid, data []float64, y, x int, d Direction) []float64 {
	k := g.k
	at := func(c Direction, j int) float64 {
		return data[((y*g.w+x)*numChannels+int(c))*k+j]
	}
	raw := make([]float64, k)
	for kk := 0; kk < k; kk++ {
		for j := 0; j < k; j++ {
			term := g.smooth[j*k+kk] * at(Base, j)
			for _, e := range SweepOrder {
				if e != d {
					term *= at(e, j)
				}
			}
			raw[kk] += term
		}
	}
	s := sum(raw)
	for i := range raw {
		raw[i] /= s
	}
	return raw
}

func TestUpdateDirectionInvalid(t *testing.T) {
	t.Parallel()
	g := randomGrid(t, 3, 3, 2, 1)
	before := append([]float64(nil), g.data...)
	for _, d := range []Direction{Base, Direction(5), Direction(-1), Direction(42)} {
		if err := g.UpdateDirection(d); !errors.Is(err, ErrInvalidDirection) {
			t.Fatalf("UpdateDirection(%s): got %v, want ErrInvalidDirection", d, err)
		}
	}
	for i := range before {
		if g.data[i] != before[i] {
			t.Fatal("state changed by invalid update")
		}
	}
}

func TestUpdateDirectionMatchesReference(t *testing.T) {
	t.Parallel()
	for _, d := range SweepOrder {
		t.Run(d.String(), func(t *testing.T) {
			g := randomGrid(t, 5, 6, 4, int64(10+d))
			snapshot := append([]float64(nil), g.data...)
			if err := g.UpdateDirection(d); err != nil {
				t.Fatalf("UpdateDirection: %v", err)
			}

			dy, dx := d.offset()
			into := d.Opposite()
			written := make(map[[2]int]bool)
			ys, ye, xs, xe := g.senders(d)
			for y := ys; y < ye; y++ {
				for x := xs; x < xe; x++ {
					want := referenceMessage(g, snapshot, y, x, d)
					got := g.Message(y+dy, x+dx, into)
					for i := range want {
						if math.Abs(got[i]-want[i]) > tol {
							t.Fatalf("message (%d,%d)->(%d,%d)[%d] = %v, want %v", y, x, y+dy, x+dx, i, got[i], want[i])
						}
					}
					if s := sum(got); math.Abs(s-1) > 1e-5 {
						t.Fatalf("message into (%d,%d) sums to %v", y+dy, x+dx, s)
					}
					written[[2]int{y + dy, x + dx}] = true
				}
			}

			// Everything else is bit-identical.
			for y := 0; y < g.h; y++ {
				for x := 0; x < g.w; x++ {
					for c := Right; c <= Base; c++ {
						if c == into && written[[2]int{y, x}] {
							continue
						}
						off := ((y*g.w+x)*numChannels + int(c)) * g.k
						for i, v := range g.Channel(y, x, c) {
							if v != snapshot[off+i] {
								t.Fatalf("untouched channel %s at (%d,%d) changed", c, y, x)
							}
						}
					}
				}
			}
		})
	}
}

// TestUpdateDirectionExcludesReceiverChannel works a 1x2 grid by hand. With
// identity smoothness and uniform base, the message equals the normalised
// product of the sender's incoming messages other than the one the receiver
// sent it, which sits in the sender's channel d.
func TestUpdateDirectionExcludesReceiverChannel(t *testing.T) {
	t.Parallel()
	cases := []struct {
		name         string
		d            Direction
		sender       [2]int
		receiver     [2]int
		fromReceiver []float64
		fromFarSide  []float64
		want         []float64
	}{
		{
			name:         "right",
			d:            Right,
			sender:       [2]int{0, 0},
			receiver:     [2]int{0, 1},
			fromReceiver: []float64{0.2, 0.8},
			fromFarSide:  []float64{0.9, 0.1},
			want:         []float64{0.9, 0.1},
		},
		{
			name:         "left",
			d:            Left,
			sender:       [2]int{0, 1},
			receiver:     [2]int{0, 0},
			fromReceiver: []float64{0.6, 0.4},
			fromFarSide:  []float64{0.3, 0.7},
			want:         []float64{0.3, 0.7},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			g := New(1, 2, 2)
			if err := g.SetSmoothness(mat.NewDense(2, 2, []float64{1, 0, 0, 1})); err != nil {
				t.Fatal(err)
			}
			sy, sx := tc.sender[0], tc.sender[1]
			copy(g.vec(sy, sx, tc.d), tc.fromReceiver)
			copy(g.vec(sy, sx, tc.d.Opposite()), tc.fromFarSide)

			if err := g.UpdateDirection(tc.d); err != nil {
				t.Fatalf("UpdateDirection: %v", err)
			}
			got := g.Message(tc.receiver[0], tc.receiver[1], tc.d.Opposite())
			for i := range tc.want {
				if math.Abs(got[i]-tc.want[i]) > tol {
					t.Fatalf("message = %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestUpdateDirectionBorderStaysUniform(t *testing.T) {
	t.Parallel()
	g := randomGrid(t, 4, 5, 3, 7)
	// Reset the outward-facing border channels to uniform, as after New.
	u := 1.0 / 3
	for x := 0; x < g.w; x++ {
		fill(g.vec(0, x, Up), u)
		fill(g.vec(g.h-1, x, Down), u)
	}
	for y := 0; y < g.h; y++ {
		fill(g.vec(y, 0, Left), u)
		fill(g.vec(y, g.w-1, Right), u)
	}

	for i := 0; i < 5; i++ {
		if err := g.PassSweep(); err != nil {
			t.Fatalf("PassSweep: %v", err)
		}
	}
	check := func(y, x int, d Direction) {
		for _, v := range g.Message(y, x, d) {
			if v != u {
				t.Fatalf("border message %s at (%d,%d) = %v, want %v", d, y, x, v, u)
			}
		}
	}
	for x := 0; x < g.w; x++ {
		check(0, x, Up)
		check(g.h-1, x, Down)
	}
	for y := 0; y < g.h; y++ {
		check(y, 0, Left)
		check(y, g.w-1, Right)
	}
}

func fill(v []float64, x float64) {
	for i := range v {
		v[i] = x
	}
}

func TestUpdateDirectionWorkersMatchSerial(t *testing.T) {
	t.Parallel()
	serial := randomGrid(t, 9, 7, 5, 3)
	parallel := randomGrid(t, 9, 7, 5, 3, WithWorkers(4))
	for i := 0; i < 3; i++ {
		if err := serial.PassSweep(); err != nil {
			t.Fatal(err)
		}
		if err := parallel.PassSweep(); err != nil {
			t.Fatal(err)
		}
	}
	for i := range serial.data {
		if serial.data[i] != parallel.data[i] {
			t.Fatalf("worker result differs at %d: %v vs %v", i, serial.data[i], parallel.data[i])
		}
	}
}

func TestSymmetricSweep(t *testing.T) {
	t.Parallel()
	g := New(7, 7, 3)
	if err := g.SetBasePotential(ones3(7, 7, 3)); err != nil {
		t.Fatal(err)
	}
	if err := g.SetSmoothness(onesMat(3, 3)); err != nil {
		t.Fatal(err)
	}
	if err := g.PassSweep(); err != nil {
		t.Fatal(err)
	}
	for y := 0; y < 7; y++ {
		for x := 0; x < 7; x++ {
			for _, d := range SweepOrder {
				for _, v := range g.Message(y, x, d) {
					if math.Abs(v-1.0/3) > tol {
						t.Fatalf("message %s at (%d,%d) = %v, want 1/3", d, y, x, v)
					}
				}
			}
		}
	}
	for i, label := range g.DecodeBeliefs() {
		if label != 0 {
			t.Fatalf("cell %d decoded %d, want 0", i, label)
		}
	}
}

func TestSweepsDoNotDrift(t *testing.T) {
	t.Parallel()
	g := randomGrid(t, 6, 6, 5, 99)
	for i := 0; i < 200; i++ {
		if err := g.PassSweep(); err != nil {
			t.Fatal(err)
		}
	}
	if err := g.CheckFinite(); err != nil {
		t.Fatalf("CheckFinite: %v", err)
	}
	for y := 0; y < 6; y++ {
		for x := 0; x < 6; x++ {
			for _, d := range SweepOrder {
				if s := sum(g.Message(y, x, d)); math.Abs(s-1) > 1e-5 {
					t.Fatalf("message %s at (%d,%d) sums to %v", d, y, x, s)
				}
			}
		}
	}
}

func TestDeterministic(t *testing.T) {
	t.Parallel()
	run := func() ([]float64, []int) {
		g := randomGrid(t, 5, 8, 4, 1234)
		for i := 0; i < 4; i++ {
			if err := g.PassSweep(); err != nil {
				t.Fatal(err)
			}
		}
		if err := g.UpdateDirection(Left); err != nil {
			t.Fatal(err)
		}
		labels := append([]int(nil), g.DecodeBeliefs()...)
		return append([]float64(nil), g.data...), labels
	}
	d1, l1 := run()
	d2, l2 := run()
	for i := range d1 {
		if d1[i] != d2[i] {
			t.Fatalf("state differs at %d", i)
		}
	}
	for i := range l1 {
		if l1[i] != l2[i] {
			t.Fatalf("labels differ at %d", i)
		}
	}
}

func TestDegenerateGrids(t *testing.T) {
	t.Parallel()
	for _, dims := range [][2]int{{1, 1}, {1, 5}, {5, 1}, {0, 3}} {
		g := New(dims[0], dims[1], 2, WithWorkers(3))
		if err := g.PassSweep(); err != nil {
			t.Fatalf("%v: PassSweep: %v", dims, err)
		}
		if got := len(g.DecodeBeliefs()); got != dims[0]*dims[1] {
			t.Fatalf("%v: decoded %d cells", dims, got)
		}
	}
}

func TestPassSweepNoAllocs(t *testing.T) {
	g := randomGrid(t, 8, 8, 6, 5)
	allocs := testing.AllocsPerRun(20, func() {
		_ = g.PassSweep()
		_ = g.DecodeBeliefs()
	})
	if allocs != 0 {
		t.Fatalf("unexpected allocs: %v", allocs)
	}
}

func TestOppositeAndParse(t *testing.T) {
	t.Parallel()
	pairs := map[Direction]Direction{Right: Left, Left: Right, Up: Down, Down: Up, Base: Base}
	for d, want := range pairs {
		if got := d.Opposite(); got != want {
			t.Fatalf("%s.Opposite() = %s, want %s", d, got, want)
		}
	}
	for _, name := range []string{"right", "UP", " Left ", "down", "base"} {
		if _, err := ParseDirection(name); err != nil {
			t.Fatalf("ParseDirection(%q): %v", name, err)
		}
	}
	if _, err := ParseDirection("diagonal"); !errors.Is(err, ErrInvalidDirection) {
		t.Fatalf("got %v, want ErrInvalidDirection", err)
	}
}
