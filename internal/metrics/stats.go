package metrics

import "time"

// Window accumulates timing stats across multiple iterations.
type Window struct {
	samples  int
	compute  time.Duration
	steps    int
	lastCost float64
}

// Record adds a new measurement to the window.
func (w *Window) Record(batchSize int, computeTime time.Duration, cost float64) {
	w.samples += batchSize
	w.compute += computeTime
	w.steps++
	w.lastCost = cost
}

// Snapshot returns aggregated metrics and resets the window.
func (w *Window) Snapshot() Snapshot {
	snap := Snapshot{}
	if w.compute > 0 {
		snap.ImagesPerSec = float64(w.samples) / w.compute.Seconds()
	}
	if w.steps > 0 {
		snap.AvgComputeMS = (w.compute.Seconds() * 1000) / float64(w.steps)
	}
	snap.LastCost = w.lastCost

	w.samples = 0
	w.compute = 0
	w.steps = 0
	return snap
}

// Snapshot represents loggable metrics.
type Snapshot struct {
	ImagesPerSec float64
	AvgComputeMS float64
	LastCost     float64
}

// Point is the cost observed at one training iteration.
type Point struct {
	Iteration int
	Cost      float64
}

// History is the cost curve of a training run in iteration order.
type History []Point

// Final returns the last recorded cost, or 0 for an empty history.
func (h History) Final() float64 {
	if len(h) == 0 {
		return 0
	}
	return h[len(h)-1].Cost
}
