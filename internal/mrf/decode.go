package mrf

import "gonum.org/v1/gonum/floats"

// DecodeBeliefs returns, for every cell in row-major order, the index of the
// largest entry of the elementwise product of its five channels. Ties go to
// the lowest index.
//
// The returned slice is owned by the grid and overwritten by the next call;
// copy it, or use DecodeBeliefsGrid, to keep a result.
func (g *Grid) DecodeBeliefs() []int {
	for y := 0; y < g.h; y++ {
		for x := 0; x < g.w; x++ {
			copy(g.prod, g.vec(y, x, Right))
			for c := Up; c <= Base; c++ {
				floats.Mul(g.prod, g.vec(y, x, c))
			}
			g.labels[y*g.w+x] = floats.MaxIdx(g.prod)
		}
	}
	return g.labels
}

// DecodeBeliefsGrid decodes like DecodeBeliefs and returns a freshly
// allocated [y][x] copy.
func (g *Grid) DecodeBeliefsGrid() [][]int {
	labels := g.DecodeBeliefs()
	out := make([][]int, g.h)
	for y := range out {
		out[y] = make([]int, g.w)
		copy(out[y], labels[y*g.w:(y+1)*g.w])
	}
	return out
}
