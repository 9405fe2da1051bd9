package visualize

import (
	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"catnet/internal/metrics"
)

// Plot size of the cost curve.
const (
	plotWidth  = 6 * vg.Inch
	plotHeight = 4 * vg.Inch
)

// CostPlot builds a line plot of the cost against the iteration number.
func CostPlot(history metrics.History) (*plot.Plot, error) {
	if len(history) == 0 {
		return nil, errors.New("visualize: empty cost history")
	}
	pts := make(plotter.XYs, len(history))
	for i, p := range history {
		pts[i].X = float64(p.Iteration)
		pts[i].Y = p.Cost
	}

	p := plot.New()
	p.Title.Text = "Training cost"
	p.X.Label.Text = "iteration"
	p.Y.Label.Text = "cross-entropy"
	p.Legend.Top = true
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, errors.Wrap(err, "cost line")
	}
	line.Width = 2
	line.Color = plotutil.Color(0)
	p.Add(line)
	p.Legend.Add("training cost", line)
	return p, nil
}

// SaveCostPlot renders the cost curve to path. The image format follows
// the file extension (png, svg, pdf, ...).
func SaveCostPlot(history metrics.History, path string) error {
	p, err := CostPlot(history)
	if err != nil {
		return err
	}
	return errors.Wrapf(p.Save(plotWidth, plotHeight, path), "save %s", path)
}
