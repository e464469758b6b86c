// Package render draws simulation frames and writes them out as video, GIF,
// snapshot sheets, CSV history and summary plots.
package render

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/sherine-k/outbreak/pkg/simulation"
)

const (
	dotRadius      = 2
	minStripHeight = 100
)

var background = color.RGBA{R: 255, G: 255, B: 255, A: 255}

// StateColor returns the colour an agent in state s is drawn with.
func StateColor(s simulation.HealthState) color.RGBA {
	switch s {
	case simulation.Susceptible:
		return color.RGBA{R: 31, G: 119, B: 180, A: 255} // blue
	case simulation.Infected:
		return color.RGBA{R: 214, G: 39, B: 40, A: 255} // red
	case simulation.Recovered:
		return color.RGBA{R: 44, G: 160, B: 44, A: 255} // green
	case simulation.Deceased:
		return color.RGBA{R: 0, G: 0, B: 0, A: 255}
	default:
		return color.RGBA{R: 128, G: 128, B: 128, A: 255}
	}
}

func chartColor(s simulation.HealthState) drawing.Color {
	c := StateColor(s)
	return drawing.Color{R: c.R, G: c.G, B: c.B, A: c.A}
}

// Painter draws a frame as a scatter plot of the population above a strip
// chart of the running history.
type Painter struct {
	size        int
	stripHeight int
}

// NewPainter creates a painter whose scatter area is size x size pixels
func NewPainter(size int) *Painter {
	strip := size / 3
	if strip < minStripHeight {
		strip = minStripHeight
	}
	return &Painter{size: size, stripHeight: strip}
}

// Bounds returns the size of the images Paint produces
func (p *Painter) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.size, p.size+p.stripHeight)
}

// Paint renders frame. history holds the statistics of every day up to and
// including the frame's; the strip is left blank until it has two points.
func (p *Painter) Paint(frame simulation.Frame, history []simulation.Statistics) (*image.RGBA, error) {
	img := image.NewRGBA(p.Bounds())
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	p.drawScatter(img, frame)
	drawCaption(img, 6, 14, fmt.Sprintf("Day %d: %d infected", frame.Stats.Day, frame.Stats.Infected))

	if len(history) >= 2 {
		strip, err := p.renderStrip(history)
		if err != nil {
			return nil, err
		}
		dst := image.Rect(0, p.size, p.size, p.size+p.stripHeight)
		draw.Draw(img, dst, strip, strip.Bounds().Min, draw.Src)
	}

	return img, nil
}

func (p *Painter) drawScatter(img *image.RGBA, frame simulation.Frame) {
	if frame.Width <= 0 || frame.Height <= 0 {
		return
	}
	scaleX := float64(p.size-1) / frame.Width
	scaleY := float64(p.size-1) / frame.Height

	// Deceased first so living agents stay visible on top.
	for pass := 0; pass < 2; pass++ {
		for i := range frame.Agents {
			agent := &frame.Agents[i]
			dead := agent.State() == simulation.Deceased
			if (pass == 0) != dead {
				continue
			}
			x, y := agent.Position()
			cx := int(x * scaleX)
			cy := p.size - 1 - int(y*scaleY) // y grows upwards
			fillCircle(img, cx, cy, dotRadius, StateColor(agent.State()))
		}
	}
}

func fillCircle(img *image.RGBA, cx, cy, r int, c color.RGBA) {
	bounds := img.Bounds()
	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy > r*r {
				continue
			}
			pt := image.Pt(cx+dx, cy+dy)
			if pt.In(bounds) {
				img.SetRGBA(pt.X, pt.Y, c)
			}
		}
	}
}

func drawCaption(img *image.RGBA, x, y int, text string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

func (p *Painter) renderStrip(history []simulation.Statistics) (image.Image, error) {
	days := make([]float64, len(history))
	for i, stats := range history {
		days[i] = float64(stats.Day)
	}

	total := history[len(history)-1].Total
	if total <= 0 {
		total = 1
	}

	series := make([]chart.Series, 0, len(simulation.HealthStates))
	for _, state := range simulation.HealthStates {
		values := make([]float64, len(history))
		for i, stats := range history {
			values[i] = float64(stats.Count(state))
		}
		series = append(series, chart.ContinuousSeries{
			Name:    state.String(),
			XValues: days,
			YValues: values,
			Style: chart.Style{
				StrokeColor: chartColor(state),
				StrokeWidth: 2.0,
			},
		})
	}

	graph := chart.Chart{
		Width:  p.size,
		Height: p.stripHeight,
		XAxis: chart.XAxis{
			Style: chart.Style{FontSize: 8.0},
			Range: &chart.ContinuousRange{Min: days[0], Max: days[len(days)-1]},
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("%d", int(f))
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			Style: chart.Style{FontSize: 8.0},
			Range: &chart.ContinuousRange{Min: 0, Max: float64(total)},
		},
		Series: series,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("failed to render history chart: %w", err)
	}

	strip, err := png.Decode(buffer)
	if err != nil {
		return nil, fmt.Errorf("failed to decode history chart: %w", err)
	}
	return strip, nil
}
