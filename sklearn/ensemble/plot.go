package ensemble

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/boostcv/pkg/errors"
)

// PlotErrors saves a chart of the per-round error and classification rate
// to path. The image format follows the file extension (.png, .svg, .pdf).
func (r *RunResult) PlotErrors(path string) error {
	if len(r.Rounds) == 0 {
		return errors.NewValueError("RunResult.PlotErrors", "no rounds to plot")
	}

	p := plot.New()
	p.Title.Text = "Boosting rounds"
	p.X.Label.Text = "Round"
	p.Y.Label.Text = "Rate"
	p.Y.Min = 0
	p.Y.Max = 1

	errPts := make(plotter.XYs, len(r.Rounds))
	accPts := make(plotter.XYs, len(r.Rounds))
	for i, rr := range r.Rounds {
		errPts[i] = plotter.XY{X: float64(rr.Round), Y: rr.Error}
		accPts[i] = plotter.XY{X: float64(rr.Round), Y: rr.ClassificationRate}
	}

	errLine, err := plotter.NewLine(errPts)
	if err != nil {
		return errors.Wrap(err, "error line")
	}
	errLine.Color = color.RGBA{R: 200, A: 255}
	errLine.Width = vg.Points(2)

	accLine, err := plotter.NewLine(accPts)
	if err != nil {
		return errors.Wrap(err, "accuracy line")
	}
	accLine.Color = color.RGBA{B: 200, A: 255}
	accLine.Width = vg.Points(2)

	p.Add(errLine, accLine, plotter.NewGrid())
	p.Legend.Add("training error", errLine)
	p.Legend.Add("classification rate", accLine)
	p.Legend.Top = true

	if err := p.Save(6*vg.Inch, 4*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}
