// Package inference classifies directories of images with a trained model.
package inference

import (
	"path/filepath"

	"github.com/pkg/errors"

	"catnet/internal/dataset"
	"catnet/internal/model"
)

// Labels printed for each class.
const (
	Cat    = "cat"
	NotCat = "not"
)

// Result is the predicted label for one image file.
type Result struct {
	Path  string
	Label string
}

// Correct reports whether the prediction agrees with the label encoded in
// the file name.
func (r Result) Correct() bool {
	return (r.Label == Cat) == (dataset.LabelFor(r.Path) == 1)
}

// Name returns the base name of the image file.
func (r Result) Name() string {
	return filepath.Base(r.Path)
}

// Dir classifies every image in dir and returns one result per file in
// directory order. The predictor is only read.
func Dir(p model.Predictor, dir string, shape dataset.Shape) ([]Result, error) {
	paths, err := dataset.ListImages(dir)
	if err != nil {
		return nil, err
	}
	x, err := dataset.ReadImages(paths, shape)
	if err != nil {
		return nil, errors.Wrapf(err, "classify %s", dir)
	}
	labels, err := model.Classify(p, x)
	if err != nil {
		return nil, errors.Wrapf(err, "classify %s", dir)
	}
	results := make([]Result, len(paths))
	for j, path := range paths {
		label := NotCat
		if labels.At(0, j) == 1 {
			label = Cat
		}
		results[j] = Result{Path: path, Label: label}
	}
	return results, nil
}

// Accuracy returns the fraction of results whose prediction matches the
// file name label.
func Accuracy(results []Result) float64 {
	if len(results) == 0 {
		return 0
	}
	correct := 0
	for _, r := range results {
		if r.Correct() {
			correct++
		}
	}
	return float64(correct) / float64(len(results))
}
