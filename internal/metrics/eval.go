package metrics

import (
	"fmt"
	"io"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// DefaultOverfitGap is the train/test accuracy gap above which a model is
// reported as overfitting.
const DefaultOverfitGap = 0.02

// Accuracy returns 1 - mean(|predicted - actual|) over two label vectors
// holding the same number of values.
func Accuracy(predicted, actual mat.Matrix) (float64, error) {
	pr, pc := predicted.Dims()
	ar, ac := actual.Dims()
	if pr*pc != ar*ac || pr*pc == 0 {
		return 0, errors.Errorf("accuracy: %dx%d predictions for %dx%d labels", pr, pc, ar, ac)
	}
	p, a := values(predicted), values(actual)
	var diff float64
	for i := range p {
		diff += math.Abs(p[i] - a[i])
	}
	return 1 - diff/float64(len(p)), nil
}

// Evaluation compares train and test accuracy of one model.
type Evaluation struct {
	TrainAccuracy float64
	TestAccuracy  float64
	Gap           float64
}

// Evaluate builds an Evaluation using the given overfit gap; a
// non-positive gap selects DefaultOverfitGap.
func Evaluate(trainAcc, testAcc, gap float64) Evaluation {
	if gap <= 0 {
		gap = DefaultOverfitGap
	}
	return Evaluation{TrainAccuracy: trainAcc, TestAccuracy: testAcc, Gap: gap}
}

// Overfitting reports whether train accuracy exceeds test accuracy by
// more than the gap.
func (e Evaluation) Overfitting() bool {
	return e.TrainAccuracy-e.TestAccuracy > e.Gap
}

// Report writes the accuracies and, when overfitting, a warning line.
func (e Evaluation) Report(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "train accuracy: %.2f%%\ntest accuracy:  %.2f%%\n", 100*e.TrainAccuracy, 100*e.TestAccuracy); err != nil {
		return err
	}
	if e.Overfitting() {
		_, err := fmt.Fprintln(w, "warning: params is overfitting training set")
		return err
	}
	return nil
}

func values(m mat.Matrix) []float64 {
	r, c := m.Dims()
	out := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			out = append(out, m.At(i, j))
		}
	}
	return out
}
