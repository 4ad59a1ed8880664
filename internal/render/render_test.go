package render

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestDisparityImage(t *testing.T) {
	t.Parallel()
	img := DisparityImage([]int{0, 2, 4, 1}, 2, 2, 5)
	want := []uint8{0, 127, 255, 63}
	for i, v := range want {
		y, x := i/2, i%2
		if got := img.GrayAt(x, y).Y; got != v {
			t.Fatalf("pixel (%d,%d) = %d, want %d", y, x, got, v)
		}
	}

	single := DisparityImage([]int{0, 0}, 1, 2, 1)
	if single.Pix[0] != 0 || single.Pix[1] != 0 {
		t.Fatalf("single-belief image not black: %v", single.Pix)
	}
}

func TestHeatmapAndUpscale(t *testing.T) {
	t.Parallel()
	m := mat.NewDense(2, 3, []float64{0, 1, 2, 2, 1, 0})
	img := Heatmap(m)
	if b := img.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
		t.Fatalf("bounds %v", b)
	}
	if c := img.RGBAAt(2, 0); c.R != 255 || c.B != 0 {
		t.Fatalf("max entry colour %v", c)
	}
	if c := img.RGBAAt(0, 0); c.R != 0 || c.B != 255 {
		t.Fatalf("zero entry colour %v", c)
	}

	up := Upscale(img, 4)
	if b := up.Bounds(); b.Dx() != 12 || b.Dy() != 8 {
		t.Fatalf("upscaled bounds %v", b)
	}
	r0, _, b0, _ := up.At(11, 0).RGBA()
	r1, _, b1, _ := img.At(2, 0).RGBA()
	if r0 != r1 || b0 != b1 {
		t.Fatal("nearest-neighbour upscale changed colour")
	}
	if Upscale(img, 1) != img {
		t.Fatal("factor 1 should return the input")
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := NewLabels([]int{1, 2, 3, 4, 5, 6}, 2, 3, 7, 4)
	if err := WriteJSON(&buf, l); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	out := buf.String()
	for _, want := range []string{`"height": 2`, `"width": 3`, `"num_beliefs": 7`, `"sweeps": 4`, `"labels"`} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %s in %s", want, out)
		}
	}
	if l.Data[1][2] != 6 {
		t.Fatalf("labels row 1 = %v", l.Data[1])
	}
}

func TestWritePNG(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "d.png")
	if err := WritePNG(path, DisparityImage([]int{0, 1}, 1, 2, 2)); err != nil {
		t.Fatalf("WritePNG: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 2 || b.Dy() != 1 {
		t.Fatalf("bounds %v", b)
	}
}
