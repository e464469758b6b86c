package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sherine-k/outbreak/pkg/config"
	"github.com/sherine-k/outbreak/pkg/render"
	"github.com/sherine-k/outbreak/pkg/simulation"
)

const defaultSnapshotSchedule = "0 0 * * 1"

// artifacts owns the files a run writes under <output dir>/<run id>
type artifacts struct {
	dir      string
	csv      bool
	plot     bool
	recorder *render.Recorder
	written  []string
}

func newArtifacts(cfg *config.Config, runID string, start time.Time, initial simulation.Statistics) (*artifacts, error) {
	a := &artifacts{
		csv:  cfg.Output.CSV,
		plot: cfg.Output.Plot,
	}
	if !cfg.Output.Enabled() {
		return a, nil
	}

	a.dir = filepath.Join(cfg.Output.Dir, runID)
	if err := os.MkdirAll(a.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	painter := render.NewPainter(cfg.Output.CanvasSize)
	var sinks []render.Sink

	if cfg.Output.Video {
		path := filepath.Join(a.dir, "simulation.avi")
		video, err := render.NewVideoSink(path, painter.Bounds(), cfg.AnimationInterval)
		if err != nil {
			return nil, a.abandon(sinks, err)
		}
		sinks = append(sinks, video)
		a.written = append(a.written, path)
	}

	if cfg.Output.GIF {
		path := filepath.Join(a.dir, "simulation.gif")
		sinks = append(sinks, render.NewGIFSink(path, cfg.AnimationInterval))
		a.written = append(a.written, path)
	}

	if cfg.Output.Snapshots {
		expr := cfg.SnapshotSchedule
		if expr == "" {
			expr = defaultSnapshotSchedule
		}
		schedule, err := render.NewDaySchedule(expr, start)
		if err != nil {
			return nil, a.abandon(sinks, err)
		}
		path := filepath.Join(a.dir, "snapshots.png")
		sinks = append(sinks, render.NewSnapshotSink(path, schedule))
		a.written = append(a.written, path)
	}

	if len(sinks) > 0 {
		a.recorder = render.NewRecorder(painter, initial, sinks...)
	}
	return a, nil
}

// finish closes the frame sinks and writes the history based outputs.
func (a *artifacts) finish(points []simulation.TimePoint) error {
	closeErr := a.close()

	var g errgroup.Group
	if a.csv {
		path := filepath.Join(a.dir, "history.csv")
		a.written = append(a.written, path)
		g.Go(func() error {
			return writeCSVFile(path, points)
		})
	}

	// A zero-day run has nothing to plot
	if a.plot && len(points) >= 2 {
		path := filepath.Join(a.dir, "population.png")
		a.written = append(a.written, path)
		g.Go(func() error {
			return render.SavePopulationPlot(path, points)
		})
	}
	writeErr := g.Wait()

	// Sinks that received nothing leave no file behind
	written := a.written[:0]
	for _, path := range a.written {
		if _, err := os.Stat(path); err == nil {
			written = append(written, path)
		}
	}
	a.written = written

	return errors.Join(closeErr, writeErr)
}

// abandon closes the sinks built so far and removes the run directory after a
// failed setup. cause is returned along with any cleanup failure.
func (a *artifacts) abandon(sinks []render.Sink, cause error) error {
	errs := []error{cause}
	for _, sink := range sinks {
		errs = append(errs, sink.Close())
	}
	if err := os.RemoveAll(a.dir); err != nil {
		errs = append(errs, fmt.Errorf("failed to remove %s: %w", a.dir, err))
	}
	return errors.Join(errs...)
}

func (a *artifacts) close() error {
	if a.recorder == nil {
		return nil
	}
	return a.recorder.Close()
}

func writeCSVFile(path string, points []simulation.TimePoint) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %w", err)
	}
	defer f.Close()

	return render.WriteCSV(f, points)
}
