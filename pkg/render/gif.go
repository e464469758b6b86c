package render

import (
	"fmt"
	"image"
	"image/color/palette"
	"image/draw"
	"image/gif"
	"os"
	"time"
)

// GIFSink collects frames and writes an animated GIF on Close
type GIFSink struct {
	path  string
	delay int
	anim  gif.GIF
}

// NewGIFSink creates a sink writing to path. interval is the time each frame
// is shown.
func NewGIFSink(path string, interval time.Duration) *GIFSink {
	// GIF delays are in hundredths of a second
	delay := int(interval / (10 * time.Millisecond))
	if delay < 1 {
		delay = 1
	}
	return &GIFSink{path: path, delay: delay}
}

func (g *GIFSink) AddFrame(_ int, img *image.RGBA) error {
	bounds := img.Bounds()
	paletted := image.NewPaletted(bounds, palette.Plan9)
	draw.Draw(paletted, bounds, img, bounds.Min, draw.Src)

	g.anim.Image = append(g.anim.Image, paletted)
	g.anim.Delay = append(g.anim.Delay, g.delay)
	return nil
}

// Close writes the animation. Nothing is written when no frame was added.
func (g *GIFSink) Close() error {
	if len(g.anim.Image) == 0 {
		return nil
	}

	f, err := os.Create(g.path)
	if err != nil {
		return fmt.Errorf("failed to create gif: %w", err)
	}
	defer f.Close()

	if err := gif.EncodeAll(f, &g.anim); err != nil {
		return fmt.Errorf("failed to encode gif: %w", err)
	}
	return nil
}
