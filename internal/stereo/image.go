// Package stereo turns a rectified image pair into the inputs of a grid MRF:
// a per-pixel cost volume over candidate horizontal displacements and a
// smoothness table over displacement indices.
package stereo

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"os"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var ErrSizeMismatch = errors.New("image sizes differ")

// Image is an RGB image with float channels in [0, 1], stored row-major
// with three values per pixel.
type Image struct {
	W, H int
	Pix  []float64
}

// NewImage allocates a black w×h image.
func NewImage(w, h int) *Image {
	return &Image{W: w, H: h, Pix: make([]float64, w*h*3)}
}

// At returns a view of the RGB triple at (y, x).
func (m *Image) At(y, x int) []float64 {
	off := (y*m.W + x) * 3
	return m.Pix[off : off+3]
}

// FromImage converts any decoded image, dropping alpha.
func FromImage(src image.Image) *Image {
	rgba := toRGBA(src)
	b := rgba.Bounds()
	out := NewImage(b.Dx(), b.Dy())
	for y := 0; y < out.H; y++ {
		row := rgba.Pix[y*rgba.Stride:]
		for x := 0; x < out.W; x++ {
			px := out.At(y, x)
			px[0] = float64(row[x*4+0]) / 255
			px[1] = float64(row[x*4+1]) / 255
			px[2] = float64(row[x*4+2]) / 255
		}
	}
	return out
}

// RGBA converts back to an 8-bit image, clamping out-of-range values.
func (m *Image) RGBA() *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, m.W, m.H))
	for y := 0; y < m.H; y++ {
		for x := 0; x < m.W; x++ {
			px := m.At(y, x)
			off := y*dst.Stride + x*4
			dst.Pix[off+0] = to8(px[0])
			dst.Pix[off+1] = to8(px[1])
			dst.Pix[off+2] = to8(px[2])
			dst.Pix[off+3] = 0xff
		}
	}
	return dst
}

// Scaled returns a copy resized by factor using bilinear interpolation.
// A factor of 1 or less than or equal to 0 returns m unchanged.
func (m *Image) Scaled(factor float64) *Image {
	if factor <= 0 || factor == 1 {
		return m
	}
	w := max(1, int(float64(m.W)*factor+0.5))
	h := max(1, int(float64(m.H)*factor+0.5))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	src := m.RGBA()
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return FromImage(dst)
}

// DecodeImage decodes PNG, JPEG, GIF or WebP data.
func DecodeImage(r io.Reader) (*Image, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, err
	}
	return FromImage(img), nil
}

// DecodeSize reads only the header of PNG, JPEG, GIF or WebP data and
// returns its dimensions.
func DecodeSize(r io.Reader) (w, h int, err error) {
	cfg, _, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}

// LoadImage decodes an image file.
func LoadImage(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, err := DecodeImage(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// LoadPair loads a left/right pair, optionally rescaled, and checks that
// both have the same size.
func LoadPair(leftPath, rightPath string, scale float64) (*Image, *Image, error) {
	left, err := LoadImage(leftPath)
	if err != nil {
		return nil, nil, err
	}
	right, err := LoadImage(rightPath)
	if err != nil {
		return nil, nil, err
	}
	if left.W != right.W || left.H != right.H {
		return nil, nil, fmt.Errorf("left %dx%d, right %dx%d: %w", left.W, left.H, right.W, right.H, ErrSizeMismatch)
	}
	return left.Scaled(scale), right.Scaled(scale), nil
}

// SavePNG writes m as an 8-bit PNG.
func SavePNG(path string, m *Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	enc := png.Encoder{CompressionLevel: png.BestSpeed}
	if err := enc.Encode(f, m.RGBA()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), img, b.Min, draw.Src)
	return dst
}

func to8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
