package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/cory-johannsen/reroll/internal/montecarlo"
)

// percentTicks labels a [0, 1] fraction axis as percentages.
type percentTicks struct{}

// Ticks implements plot.Ticker.
func (percentTicks) Ticks(min, max float64) []plot.Tick {
	ticks := plot.DefaultTicks{}.Ticks(min, max)
	for i, t := range ticks {
		if t.Label != "" {
			ticks[i].Label = fmt.Sprintf("%.0f%%", t.Value*100)
		}
	}
	return ticks
}

// WritePlot saves a normalised histogram of sim to path. The image format
// follows the file extension (png, svg, pdf...).
//
// Precondition: sim has at least one trial.
func WritePlot(path string, sim montecarlo.Simulation) error {
	h := sim.Histogram()
	if h.Total() == 0 {
		return fmt.Errorf("plotting %s: simulation has no trials", path)
	}

	xys := make(plotter.XYs, 0, h.Len()+1)
	for _, b := range h.Buckets() {
		xys = append(xys, plotter.XY{X: float64(b.Rounds), Y: float64(b.Count)})
	}
	bins := h.Max() - h.Min() + 1
	if bins == 1 {
		// a single round count still needs a bin of unit width
		xys = append(xys, plotter.XY{X: float64(h.Max() + 1), Y: 0})
		bins = 2
	}

	hist, err := plotter.NewHistogram(xys, bins)
	if err != nil {
		return fmt.Errorf("building histogram: %w", err)
	}
	hist.Normalize(1)
	hist.FillColor = color.RGBA{G: 128, A: 255}

	p := plot.New()
	p.Title.Text = Title(sim.Dice, sim.Trials)
	p.X.Label.Text = "# Tries"
	p.Y.Label.Text = "% Results"
	p.Y.Tick.Marker = percentTicks{}
	p.Add(hist)
	p.X.Min = 1

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return fmt.Errorf("saving plot %s: %w", path, err)
	}
	return nil
}
