package model

import (
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// DefaultNetworkRate is the gradient descent step used by the multi-layer
// network.
const DefaultNetworkRate = 0.005

// Network is a fully connected feed-forward binary classifier trained with
// full-batch gradient descent on the cross-entropy cost.
type Network struct {
	Layers       []Layer
	LearningRate float64
	Epsilon      float64
}

// NewNetwork constructs the network with random initialization from seed.
// units[0] is the input dimension and the last entry must be 1.
func NewNetwork(units []int, acts []Activation, lr float64, seed int64) (*Network, error) {
	if len(units) > 0 && units[len(units)-1] != 1 {
		return nil, errors.Errorf("output layer must have 1 unit (got %d)", units[len(units)-1])
	}
	if lr <= 0 {
		lr = DefaultNetworkRate
	}
	layers, err := InitLayers(units, acts, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, errors.Wrap(err, "init layers")
	}
	return &Network{Layers: layers, LearningRate: lr, Epsilon: DefaultEpsilon}, nil
}

// Predict returns the output activation, one probability per column of x.
func (n *Network) Predict(x *mat.Dense) (*mat.Dense, error) {
	a, _, err := Forward(n.Layers, x)
	return a, err
}

// Step executes one gradient descent iteration and returns the cost.
func (n *Network) Step(x, y *mat.Dense) (float64, error) {
	a, cache, err := Forward(n.Layers, x)
	if err != nil {
		return 0, err
	}
	cost, err := Cost(a, y, n.Epsilon)
	if err != nil {
		return 0, err
	}
	if err := Backward(n.Layers, y, cache, n.LearningRate, n.Epsilon); err != nil {
		return 0, err
	}
	return cost, nil
}
