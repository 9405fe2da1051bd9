package model

import "gonum.org/v1/gonum/mat"

// Predictor maps a batch of column samples to output activations.
type Predictor interface {
	Predict(x *mat.Dense) (*mat.Dense, error)
}

// Model defines the minimal training functionality required by the trainer.
type Model interface {
	Predictor
	// Step runs one full-batch forward and backward pass over x and y,
	// updates the parameters in place and returns the cost measured before
	// the update.
	Step(x, y *mat.Dense) (float64, error)
}
