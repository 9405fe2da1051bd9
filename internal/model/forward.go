package model

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Step holds the pre-activation Z and activation A of one layer.
// The first entry of a Cache holds the input with a nil Z.
type Step struct {
	Z *mat.Dense
	A *mat.Dense
}

// Cache records every layer's values during a forward pass for use by
// the backward pass.
type Cache []Step

// Forward propagates x (one sample per column) through layers and returns
// the final activation together with the cache.
func Forward(layers []Layer, x *mat.Dense) (*mat.Dense, Cache, error) {
	rows, m := x.Dims()
	if err := CheckLayers(layers, rows); err != nil {
		return nil, nil, errors.Wrap(err, "forward")
	}

	cache := make(Cache, 0, len(layers)+1)
	cache = append(cache, Step{A: x})

	a := x
	for _, l := range layers {
		units := l.Units()
		z := mat.NewDense(units, m, nil)
		z.Mul(l.W, a)
		b := l.B
		z.Apply(func(i, _ int, v float64) float64 { return v + b.At(i, 0) }, z)

		next := mat.NewDense(units, m, nil)
		l.Act.apply(next, z)

		cache = append(cache, Step{Z: z, A: next})
		a = next
	}
	return a, cache, nil
}
