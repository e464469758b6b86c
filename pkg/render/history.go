package render

import (
	"encoding/csv"
	"fmt"
	"image/color"
	"io"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/sherine-k/outbreak/pkg/simulation"
)

var csvHeader = []string{
	"day", "susceptible", "infected", "recovered", "deceased", "total", "new_infections", "new_deaths",
}

// WriteCSV writes one row per time point
func WriteCSV(w io.Writer, points []simulation.TimePoint) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, tp := range points {
		row := []string{
			strconv.Itoa(tp.Day),
			strconv.Itoa(tp.Susceptible),
			strconv.Itoa(tp.Infected),
			strconv.Itoa(tp.Recovered),
			strconv.Itoa(tp.Deceased),
			strconv.Itoa(tp.Total),
			strconv.Itoa(tp.NewInfections),
			strconv.Itoa(tp.NewDeaths),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row for day %d: %w", tp.Day, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// SavePopulationPlot draws the per-state counts and the daily new infections
// over the whole run and saves the plot to path. The format follows the file
// extension.
func SavePopulationPlot(path string, points []simulation.TimePoint) error {
	if len(points) < 2 {
		return fmt.Errorf("need at least 2 time points to plot, got %d", len(points))
	}

	p := plot.New()
	p.Title.Text = "Population Status Over Time"
	p.X.Label.Text = "Days"
	p.Y.Label.Text = "Population"

	for _, state := range simulation.HealthStates {
		xys := make(plotter.XYs, len(points))
		for i, tp := range points {
			xys[i].X = float64(tp.Day)
			xys[i].Y = float64(tp.Count(state))
		}

		line, err := plotter.NewLine(xys)
		if err != nil {
			return fmt.Errorf("failed to build %s line: %w", state, err)
		}
		c := StateColor(state)
		line.LineStyle.Color = color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
		line.LineStyle.Width = vg.Points(1.5)

		p.Add(line)
		p.Legend.Add(state.String(), line)
	}

	incidence := make(plotter.XYs, len(points))
	for i, tp := range points {
		incidence[i].X = float64(tp.Day)
		incidence[i].Y = float64(tp.NewInfections)
	}
	if err := plotutil.AddLinePoints(p, "new infections", incidence); err != nil {
		return fmt.Errorf("failed to add new infections: %w", err)
	}

	if err := p.Save(8*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}
