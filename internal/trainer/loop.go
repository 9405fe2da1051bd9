package trainer

import (
	"context"
	"log"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"catnet/internal/metrics"
	"catnet/internal/model"
)

const defaultLogEvery = 100

// RunConfig captures the knobs required by the training loop.
type RunConfig struct {
	Iterations int
	LogEvery   int
	// Logger receives progress lines; nil uses the standard logger.
	Logger *log.Logger
}

// Run trains mdl on the full batch x, y for cfg.Iterations iterations.
// The model is updated in place and must not be used by anything else
// until Run returns. The returned history holds the cost of every
// iteration that completed.
func Run(ctx context.Context, mdl model.Model, x, y *mat.Dense, cfg RunConfig) (metrics.History, error) {
	if cfg.Iterations <= 0 {
		return nil, errors.New("trainer: iterations must be > 0")
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = defaultLogEvery
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	_, samples := x.Dims()
	history := make(metrics.History, 0, cfg.Iterations)
	var window metrics.Window

	for it := 1; it <= cfg.Iterations; it++ {
		select {
		case <-ctx.Done():
			return history, ctx.Err()
		default:
		}

		start := time.Now()
		cost, err := mdl.Step(x, y)
		if err != nil {
			return history, errors.Wrapf(err, "iteration %d", it)
		}
		window.Record(samples, time.Since(start), cost)
		history = append(history, metrics.Point{Iteration: it, Cost: cost})

		if it%cfg.LogEvery == 0 {
			snap := window.Snapshot()
			logger.Printf("iteration: %d of %d; cost: %.6f images_per_sec=%.1f compute_ms=%.2f",
				it,
				cfg.Iterations,
				snap.LastCost,
				snap.ImagesPerSec,
				snap.AvgComputeMS,
			)
		}
	}

	return history, nil
}
