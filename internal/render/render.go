// Package render turns decoded belief grids and smoothness tables into
// images and JSON for inspection.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"os"

	"github.com/goccy/go-json"
	xdraw "golang.org/x/image/draw"
	"gonum.org/v1/gonum/mat"
)

// Labels is a decoded belief grid in its JSON form.
type Labels struct {
	Height     int     `json:"height"`
	Width      int     `json:"width"`
	NumBeliefs int     `json:"num_beliefs"`
	Sweeps     int     `json:"sweeps"`
	Data       [][]int `json:"labels"`
}

// NewLabels copies a row-major label slice into a Labels value.
func NewLabels(labels []int, h, w, numBeliefs, sweeps int) Labels {
	data := make([][]int, h)
	for y := range data {
		data[y] = append([]int(nil), labels[y*w:(y+1)*w]...)
	}
	return Labels{Height: h, Width: w, NumBeliefs: numBeliefs, Sweeps: sweeps, Data: data}
}

// WriteJSON encodes l to w.
func WriteJSON(w io.Writer, l Labels) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(l)
}

// DisparityImage maps each label in [0, numBeliefs) to a grey level, with
// the largest label drawn white.
func DisparityImage(labels []int, h, w, numBeliefs int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, w, h))
	span := numBeliefs - 1
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var v uint8
			if span > 0 {
				v = uint8(labels[y*w+x] * 255 / span)
			}
			img.Pix[y*img.Stride+x] = v
		}
	}
	return img
}

// Heatmap renders a matrix with one pixel per entry, scaled to its own
// maximum on a blue-to-yellow ramp.
func Heatmap(m mat.Matrix) *image.RGBA {
	r, c := m.Dims()
	img := image.NewRGBA(image.Rect(0, 0, c, r))
	maxv := mat.Max(m)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			t := 0.0
			if maxv > 0 {
				t = m.At(i, j) / maxv
			}
			img.SetRGBA(j, i, ramp(t))
		}
	}
	return img
}

// Upscale enlarges img by an integer factor with nearest-neighbour
// sampling, so small grids stay readable.
func Upscale(img image.Image, factor int) image.Image {
	if factor <= 1 {
		return img
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), img, b, draw.Src, nil)
	return dst
}

// WritePNG writes img to path, replacing any existing file.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func ramp(t float64) color.RGBA {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	return color.RGBA{
		R: uint8(255 * t),
		G: uint8(255 * t * t),
		B: uint8(255 * (1 - t)),
		A: 0xff,
	}
}
