package stereo

import "math/rand"

// Shifted builds a deterministic random-texture pair in which every right
// pixel shows the left pixel shift columns further right, so the true
// displacement of the left image is shift everywhere it is observable.
func Shifted(w, h, shift int, seed int64) (left, right *Image) {
	rng := rand.New(rand.NewSource(seed))
	left = NewImage(w, h)
	for i := range left.Pix {
		left.Pix[i] = rng.Float64()
	}
	right = NewImage(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dst := right.At(y, x)
			if x+shift < w && x+shift >= 0 {
				copy(dst, left.At(y, x+shift))
				continue
			}
			for c := range dst {
				dst[c] = rng.Float64()
			}
		}
	}
	return left, right
}
