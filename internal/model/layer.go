package model

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// ErrShapeMismatch indicates matrices whose dimensions cannot be combined.
var ErrShapeMismatch = errors.New("shape mismatch")

// Layer is one affine transform followed by an activation.
// W is units×inputs and B is units×1.
type Layer struct {
	W   *mat.Dense
	B   *mat.Dense
	Act Activation
}

// Units returns the number of outputs of the layer.
func (l Layer) Units() int {
	r, _ := l.W.Dims()
	return r
}

// Inputs returns the number of inputs the layer expects.
func (l Layer) Inputs() int {
	_, c := l.W.Dims()
	return c
}

// InitLayers builds randomly initialised layers for the sizes in units,
// where units[0] is the input dimension. Weights are standard normal draws
// scaled by 1/sqrt(fan-in); biases start at zero.
func InitLayers(units []int, acts []Activation, rng *rand.Rand) ([]Layer, error) {
	if len(units) < 2 {
		return nil, errors.Errorf("need at least 2 layer sizes, got %d", len(units))
	}
	if len(acts) != len(units)-1 {
		return nil, errors.Errorf("got %d activations for %d layers", len(acts), len(units)-1)
	}
	for i, u := range units {
		if u <= 0 {
			return nil, errors.Errorf("units[%d] must be > 0 (got %d)", i, u)
		}
	}
	layers := make([]Layer, 0, len(units)-1)
	for l := 1; l < len(units); l++ {
		act := acts[l-1]
		if !act.Valid() {
			return nil, errors.Wrapf(ErrUnknownActivation, "layer %d: %d", l, int(act))
		}
		scale := 1 / math.Sqrt(float64(units[l-1]))
		data := make([]float64, units[l]*units[l-1])
		for i := range data {
			data[i] = rng.NormFloat64() * scale
		}
		layers = append(layers, Layer{
			W:   mat.NewDense(units[l], units[l-1], data),
			B:   mat.NewDense(units[l], 1, nil),
			Act: act,
		})
	}
	return layers, nil
}

// CheckLayers verifies that consecutive layers chain together and that
// every activation is supported. inputs is the expected sample size, or 0
// to skip that check.
func CheckLayers(layers []Layer, inputs int) error {
	if len(layers) == 0 {
		return errors.New("no layers")
	}
	prev := inputs
	for i, l := range layers {
		if l.W == nil || l.B == nil {
			return errors.Errorf("layer %d: missing parameters", i+1)
		}
		if !l.Act.Valid() {
			return errors.Wrapf(ErrUnknownActivation, "layer %d: %d", i+1, int(l.Act))
		}
		wr, wc := l.W.Dims()
		if prev > 0 && wc != prev {
			return errors.Wrapf(ErrShapeMismatch, "layer %d: weights are %dx%d, input has %d rows", i+1, wr, wc, prev)
		}
		if br, bc := l.B.Dims(); br != wr || bc != 1 {
			return errors.Wrapf(ErrShapeMismatch, "layer %d: bias is %dx%d, want %dx1", i+1, br, bc, wr)
		}
		prev = wr
	}
	return nil
}
