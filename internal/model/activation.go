package model

import (
	"math"
	"strconv"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Activation identifies the nonlinearity applied after a layer's affine
// transform.
type Activation int

const (
	ReLU Activation = iota + 1
	Sigmoid
)

// ErrUnknownActivation is returned for names or values outside the
// supported set.
var ErrUnknownActivation = errors.New("unknown activation")

// ParseActivation looks up an activation by its serialized name.
func ParseActivation(name string) (Activation, error) {
	switch name {
	case "relu":
		return ReLU, nil
	case "sigmoid":
		return Sigmoid, nil
	}
	return 0, errors.Wrapf(ErrUnknownActivation, "%q", name)
}

// ParseActivations parses a list of names, one per layer.
func ParseActivations(names []string) ([]Activation, error) {
	acts := make([]Activation, len(names))
	for i, name := range names {
		a, err := ParseActivation(name)
		if err != nil {
			return nil, errors.Wrapf(err, "layer %d", i+1)
		}
		acts[i] = a
	}
	return acts, nil
}

func (a Activation) String() string {
	switch a {
	case ReLU:
		return "relu"
	case Sigmoid:
		return "sigmoid"
	}
	return "Activation(" + strconv.Itoa(int(a)) + ")"
}

// Valid reports whether a is one of the supported activations.
func (a Activation) Valid() bool {
	return a == ReLU || a == Sigmoid
}

func (a Activation) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, errors.Wrapf(ErrUnknownActivation, "%d", int(a))
	}
	return []byte(a.String()), nil
}

func (a *Activation) UnmarshalText(text []byte) error {
	v, err := ParseActivation(string(text))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// Eval computes the activation of a single pre-activation value.
func (a Activation) Eval(z float64) float64 {
	switch a {
	case ReLU:
		return relu(z)
	case Sigmoid:
		return sigmoid(z)
	}
	panic("model: eval of " + a.String())
}

// Derivative computes d/dz of the activation at z.
func (a Activation) Derivative(z float64) float64 {
	switch a {
	case ReLU:
		if z > 0 {
			return 1
		}
		return 0
	case Sigmoid:
		s := sigmoid(z)
		return s * (1 - s)
	}
	panic("model: derivative of " + a.String())
}

// apply stores the elementwise activation of z in dst.
func (a Activation) apply(dst, z *mat.Dense) {
	dst.Apply(func(_, _ int, v float64) float64 { return a.Eval(v) }, z)
}

func relu(z float64) float64 {
	return math.Max(0, z)
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
