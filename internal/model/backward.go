package model

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DefaultEpsilon bounds output probabilities away from 0 and 1 before
// logarithms and reciprocals are taken.
const DefaultEpsilon = 1e-9

// Gradient holds dCost/dW and dCost/dB for one layer.
type Gradient struct {
	DW *mat.Dense
	DB *mat.Dense
}

// Cost returns the binary cross-entropy of the output activations a
// against labels y, averaged over samples. A non-positive eps disables
// clipping.
func Cost(a, y *mat.Dense, eps float64) (float64, error) {
	r, m := a.Dims()
	if r != 1 {
		return 0, errors.Wrapf(ErrShapeMismatch, "cost: output has %d rows, want 1", r)
	}
	labels, err := asRow(y, m)
	if err != nil {
		return 0, errors.Wrap(err, "cost")
	}
	var sum float64
	for j := 0; j < m; j++ {
		p := clip(a.At(0, j), eps)
		t := labels.At(0, j)
		sum += -t*math.Log(p) - (1-t)*math.Log(1-p)
	}
	return sum / float64(m), nil
}

// Gradients runs backpropagation of the cross-entropy cost over the cache
// produced by Forward and returns one Gradient per layer. layers is not
// modified.
func Gradients(layers []Layer, y *mat.Dense, cache Cache, eps float64) ([]Gradient, error) {
	if len(cache) != len(layers)+1 {
		return nil, errors.Wrapf(ErrShapeMismatch, "backward: cache has %d entries for %d layers", len(cache), len(layers))
	}
	out := cache[len(cache)-1].A
	r, m := out.Dims()
	if r != 1 {
		return nil, errors.Wrapf(ErrShapeMismatch, "backward: output has %d rows, want 1", r)
	}
	labels, err := asRow(y, m)
	if err != nil {
		return nil, errors.Wrap(err, "backward")
	}

	da := mat.NewDense(1, m, nil)
	da.Apply(func(_, j int, a float64) float64 {
		a = clip(a, eps)
		t := labels.At(0, j)
		return -t/a + (1-t)/(1-a)
	}, out)

	grads := make([]Gradient, len(layers))
	scale := 1 / float64(m)
	for l := len(layers) - 1; l >= 0; l-- {
		layer := layers[l]
		z, prev := cache[l+1].Z, cache[l].A
		units, inputs := layer.W.Dims()

		dz := mat.NewDense(units, m, nil)
		dA := da
		dz.Apply(func(i, j int, v float64) float64 {
			return dA.At(i, j) * layer.Act.Derivative(v)
		}, z)

		dw := mat.NewDense(units, inputs, nil)
		dw.Mul(dz, prev.T())
		dw.Scale(scale, dw)

		db := mat.NewDense(units, 1, nil)
		for i := 0; i < units; i++ {
			db.Set(i, 0, floats.Sum(dz.RawRowView(i))*scale)
		}
		grads[l] = Gradient{DW: dw, DB: db}

		if l > 0 {
			da = mat.NewDense(inputs, m, nil)
			da.Mul(layer.W.T(), dz)
		}
	}
	return grads, nil
}

// Backward computes the gradients for the cache and applies one gradient
// descent step with learning rate alpha to layers in place. All gradients
// are computed against the weights as they were before the update.
func Backward(layers []Layer, y *mat.Dense, cache Cache, alpha, eps float64) error {
	grads, err := Gradients(layers, y, cache, eps)
	if err != nil {
		return err
	}
	Apply(layers, grads, alpha)
	return nil
}

// Apply subtracts alpha times each gradient from its layer's parameters.
func Apply(layers []Layer, grads []Gradient, alpha float64) {
	for i, g := range grads {
		var step mat.Dense
		step.Scale(alpha, g.DW)
		layers[i].W.Sub(layers[i].W, &step)

		step.Reset()
		step.Scale(alpha, g.DB)
		layers[i].B.Sub(layers[i].B, &step)
	}
}

func clip(p, eps float64) float64 {
	if eps <= 0 {
		return p
	}
	return math.Min(math.Max(p, eps), 1-eps)
}

// asRow returns y as a 1×m row, reshaping a column or other layout that
// holds exactly m labels.
func asRow(y *mat.Dense, m int) (*mat.Dense, error) {
	r, c := y.Dims()
	if r*c != m {
		return nil, errors.Wrapf(ErrShapeMismatch, "labels are %dx%d, want %d values", r, c, m)
	}
	if r == 1 {
		return y, nil
	}
	data := make([]float64, 0, m)
	for i := 0; i < r; i++ {
		data = append(data, mat.Row(nil, i, y)...)
	}
	return mat.NewDense(1, m, data), nil
}
