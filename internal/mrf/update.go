package mrf

import (
	"fmt"
	"sync"

	"gonum.org/v1/gonum/floats"
)

// UpdateDirection runs one sum-product pass in direction d: every cell with
// a neighbour in d sends that neighbour a fresh message, which the receiver
// stores in its d.Opposite() channel.
//
// All messages are computed into the staging buffer before any is written
// back, so every read sees the state from before the call.
func (g *Grid) UpdateDirection(d Direction) error {
	if !d.IsMessage() {
		return fmt.Errorf("mrf: cannot pass messages %s: %w", d, ErrInvalidDirection)
	}
	ys, ye, xs, xe := g.senders(d)
	if ys >= ye || xs >= xe {
		return nil
	}

	g.stage(d, ys, ye, xs, xe)

	dy, dx := d.offset()
	into := d.Opposite()
	for y := ys; y < ye; y++ {
		for x := xs; x < xe; x++ {
			copy(g.vec(y+dy, x+dx, into), g.staged(y, x))
		}
	}
	return nil
}

// PassSweep updates Right, Up, Left and Down in that order.
func (g *Grid) PassSweep() error {
	for _, d := range SweepOrder {
		if err := g.UpdateDirection(d); err != nil {
			return err
		}
	}
	return nil
}

// senders returns the half-open rectangle of cells that have a neighbour in
// direction d.
func (g *Grid) senders(d Direction) (ys, ye, xs, xe int) {
	ys, ye, xs, xe = 0, g.h, 0, g.w
	switch d {
	case Right:
		xe--
	case Up:
		ys++
	case Left:
		xs++
	case Down:
		ye--
	}
	return ys, ye, xs, xe
}

// stage fills the staging buffer for every sender in the rectangle, split
// into row ranges across the configured workers.
func (g *Grid) stage(d Direction, ys, ye, xs, xe int) {
	rows := ye - ys
	workers := g.workers
	if workers > rows {
		workers = rows
	}
	if workers <= 1 {
		g.stageRows(d, ys, ye, xs, xe, g.scratch[0])
		return
	}

	chunk := (rows + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		rs := ys + w*chunk
		re := min(rs+chunk, ye)
		if rs >= re {
			break
		}
		wg.Add(1)
		go func(rs, re int, p []float64) {
			defer wg.Done()
			g.stageRows(d, rs, re, xs, xe, p)
		}(rs, re, g.scratch[w])
	}
	wg.Wait()
}

func (g *Grid) stageRows(d Direction, ys, ye, xs, xe int, p []float64) {
	for y := ys; y < ye; y++ {
		for x := xs; x < xe; x++ {
			g.message(y, x, d, p, g.staged(y, x))
		}
	}
}

// message computes the normalised message cell (y, x) sends in direction d.
//
// p[j] collects the sender's base potential times every incoming message
// except the one from the receiver (held in channel d). The raw message is
// then out[k] = sum_j smooth[j][k] * p[j].
func (g *Grid) message(y, x int, d Direction, p, out []float64) {
	copy(p, g.vec(y, x, Base))
	for _, e := range SweepOrder {
		if e == d {
			continue
		}
		floats.Mul(p, g.vec(y, x, e))
	}

	clear(out)
	for j, pj := range p {
		floats.AddScaled(out, pj, g.smooth[j*g.k:(j+1)*g.k])
	}
	normalize(out)
}

func (g *Grid) staged(y, x int) []float64 {
	off := (y*g.w + x) * g.k
	return g.staging[off : off+g.k]
}
