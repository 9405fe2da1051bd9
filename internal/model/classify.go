package model

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Threshold is the output activation a sample must exceed to be labelled
// positive. An activation of exactly Threshold is negative.
const Threshold = 0.5

// Classify thresholds the predictor's output into a 1×m matrix of 0/1
// labels.
func Classify(p Predictor, x *mat.Dense) (*mat.Dense, error) {
	a, err := p.Predict(x)
	if err != nil {
		return nil, errors.Wrap(err, "classify")
	}
	r, m := a.Dims()
	if r != 1 {
		return nil, errors.Wrapf(ErrShapeMismatch, "classify: output has %d rows, want 1", r)
	}
	labels := mat.NewDense(1, m, nil)
	for j := 0; j < m; j++ {
		if a.At(0, j) > Threshold {
			labels.Set(0, j, 1)
		}
	}
	return labels, nil
}
