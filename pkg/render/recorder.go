package render

import (
	"context"
	"errors"
	"image"

	"github.com/sherine-k/outbreak/pkg/simulation"
)

// Sink receives every painted frame
type Sink interface {
	AddFrame(day int, img *image.RGBA) error
	Close() error
}

// Recorder observes a simulation run, paints each day and hands the image to
// its sinks.
type Recorder struct {
	painter *Painter
	sinks   []Sink
	history []simulation.Statistics
}

// NewRecorder creates a recorder. initial is the state before the first
// simulated day and starts the history strip.
func NewRecorder(painter *Painter, initial simulation.Statistics, sinks ...Sink) *Recorder {
	return &Recorder{
		painter: painter,
		sinks:   sinks,
		history: []simulation.Statistics{initial},
	}
}

// Observe implements simulation.Observer
func (r *Recorder) Observe(_ context.Context, frame simulation.Frame) error {
	r.history = append(r.history, frame.Stats)
	if len(r.sinks) == 0 {
		return nil
	}

	img, err := r.painter.Paint(frame, r.history)
	if err != nil {
		return err
	}
	for _, sink := range r.sinks {
		if err := sink.AddFrame(frame.Stats.Day, img); err != nil {
			return err
		}
	}
	return nil
}

// History returns the statistics seen so far, oldest first
func (r *Recorder) History() []simulation.Statistics {
	return r.history
}

// Close closes every sink and reports all failures.
func (r *Recorder) Close() error {
	var errs []error
	for _, sink := range r.sinks {
		if err := sink.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
