package model

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// DefaultNeuronRate is the gradient descent step used by the single neuron.
const DefaultNeuronRate = 0.0056

// Neuron is a single sigmoid unit over the flattened input, i.e. logistic
// regression. W is n×1.
type Neuron struct {
	W            *mat.Dense
	B            float64
	LearningRate float64
	Epsilon      float64
}

// NewNeuron returns a neuron with n zero weights and a zero bias.
func NewNeuron(n int, lr float64) (*Neuron, error) {
	if n <= 0 {
		return nil, errors.Errorf("neuron inputs must be > 0 (got %d)", n)
	}
	if lr <= 0 {
		lr = DefaultNeuronRate
	}
	return &Neuron{
		W:            mat.NewDense(n, 1, nil),
		LearningRate: lr,
		Epsilon:      DefaultEpsilon,
	}, nil
}

// Layer views the neuron as a one-unit sigmoid layer. The returned layer
// owns copies of the parameters.
func (n *Neuron) Layer() Layer {
	return Layer{
		W:   mat.DenseCopyOf(n.W.T()),
		B:   mat.NewDense(1, 1, []float64{n.B}),
		Act: Sigmoid,
	}
}

// Predict returns sigmoid(Wᵀx + b) for each column of x.
func (n *Neuron) Predict(x *mat.Dense) (*mat.Dense, error) {
	a, _, err := Forward([]Layer{n.Layer()}, x)
	return a, err
}

// Step executes one gradient descent iteration and returns the cost.
func (n *Neuron) Step(x, y *mat.Dense) (float64, error) {
	layers := []Layer{n.Layer()}
	a, cache, err := Forward(layers, x)
	if err != nil {
		return 0, err
	}
	cost, err := Cost(a, y, n.Epsilon)
	if err != nil {
		return 0, err
	}
	if err := Backward(layers, y, cache, n.LearningRate, n.Epsilon); err != nil {
		return 0, err
	}
	n.W.Copy(layers[0].W.T())
	n.B = layers[0].B.At(0, 0)
	return cost, nil
}
