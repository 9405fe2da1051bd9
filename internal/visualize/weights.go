// Package visualize renders learned weights as images and plots the
// training cost curve.
package visualize

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"catnet/internal/dataset"
)

// Normalize rescales w linearly into [0, 1]. Constant input maps to 0.
func Normalize(w []float64) []float64 {
	out := make([]float64, len(w))
	if len(w) == 0 {
		return out
	}
	lo, hi := floats.Min(w), floats.Max(w)
	if hi == lo {
		return out
	}
	for i, v := range w {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}

// Channel keeps one colour channel of interleaved RGB weights. Positive
// weights are drawn in that channel scaled by the largest weight; negative
// weights are drawn in the two other channels (the complementary colour)
// scaled by the most negative weight.
func Channel(w []float64, ch int) []float64 {
	out := make([]float64, len(w))
	if ch < 0 || ch >= dataset.Channels {
		return out
	}
	var hi, lo float64
	for i := ch; i < len(w); i += dataset.Channels {
		hi = math.Max(hi, w[i])
		lo = math.Min(lo, w[i])
	}
	j, k := (ch+1)%dataset.Channels, (ch+2)%dataset.Channels
	for base := 0; base+dataset.Channels <= len(w); base += dataset.Channels {
		v := w[base+ch]
		if v > 0 {
			out[base+ch] = v / hi
			continue
		}
		if lo < 0 {
			out[base+j] = v / lo
			out[base+k] = v / lo
		}
	}
	return out
}

// Image converts interleaved RGB values in [0, 1] into an opaque image.
func Image(rgb []float64, shape dataset.Shape) (*image.NRGBA, error) {
	if len(rgb) != shape.Features() {
		return nil, errors.Errorf("visualize: %d values for a %dx%d image", len(rgb), shape.Width, shape.Height)
	}
	img := image.NewNRGBA(image.Rect(0, 0, shape.Width, shape.Height))
	for y := 0; y < shape.Height; y++ {
		for x := 0; x < shape.Width; x++ {
			i := (y*shape.Width + x) * dataset.Channels
			img.SetNRGBA(x, y, color.NRGBA{
				R: toByte(rgb[i]),
				G: toByte(rgb[i+1]),
				B: toByte(rgb[i+2]),
				A: 255,
			})
		}
	}
	return img, nil
}

// SaveNeuronWeights writes w.png (all channels) and wr.png, wg.png,
// wb.png (one channel each) into dir and returns the written paths.
func SaveNeuronWeights(dir string, w *mat.Dense, shape dataset.Shape) ([]string, error) {
	values := mat.Col(nil, 0, w)
	images := []struct {
		name string
		rgb  []float64
	}{
		{"w.png", Normalize(values)},
		{"wr.png", Channel(values, 0)},
		{"wg.png", Channel(values, 1)},
		{"wb.png", Channel(values, 2)},
	}
	paths := make([]string, 0, len(images))
	for _, im := range images {
		path := filepath.Join(dir, im.name)
		if err := writeImage(path, im.rgb, shape); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// SaveUnitWeights writes one normalized image per row of w, the weights
// feeding each unit of a first layer, as unit-NN.png.
func SaveUnitWeights(dir string, w *mat.Dense, shape dataset.Shape) ([]string, error) {
	units, _ := w.Dims()
	paths := make([]string, 0, units)
	for u := 0; u < units; u++ {
		path := filepath.Join(dir, fmt.Sprintf("unit-%02d.png", u))
		if err := writeImage(path, Normalize(mat.Row(nil, u, w)), shape); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeImage(path string, rgb []float64, shape dataset.Shape) error {
	img, err := Image(rgb, shape)
	if err != nil {
		return errors.Wrap(err, path)
	}
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create image")
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return errors.Wrapf(err, "encode %s", path)
	}
	return errors.Wrap(f.Close(), path)
}

func toByte(v float64) uint8 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(math.Round(v * 255))
}
