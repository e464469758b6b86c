package simulation

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Frame is a point-in-time view of the simulation handed to observers after
// each day. It stays valid after later days are simulated.
type Frame struct {
	Stats  Statistics
	Agents []Agent
	Events []Event
	Width  float64
	Height float64
}

// Observer consumes one frame per simulated day.
type Observer interface {
	Observe(ctx context.Context, frame Frame) error
}

// ObserverFunc adapts a function to the Observer interface
type ObserverFunc func(ctx context.Context, frame Frame) error

func (f ObserverFunc) Observe(ctx context.Context, frame Frame) error {
	return f(ctx, frame)
}

// Runner drives a Simulator for a number of days, collecting the running
// history and feeding observers.
type Runner struct {
	sim             *Simulator
	observers       []Observer
	logger          *slog.Logger
	meter           metric.Meter
	metrics         *runMetrics
	tracer          trace.Tracer
	stopWhenExtinct bool
	timePoints      []TimePoint
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithObserver adds an observer. Observers are called in the order added.
func WithObserver(o Observer) RunnerOption {
	return func(r *Runner) {
		r.observers = append(r.observers, o)
	}
}

func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithMeter records run metrics on meter instead of the global provider.
func WithMeter(meter metric.Meter) RunnerOption {
	return func(r *Runner) {
		r.meter = meter
	}
}

// WithTracer traces runs with tracer instead of the global provider.
func WithTracer(tracer trace.Tracer) RunnerOption {
	return func(r *Runner) {
		r.tracer = tracer
	}
}

// StopWhenExtinct ends the run early once no agent is infected.
func StopWhenExtinct() RunnerOption {
	return func(r *Runner) {
		r.stopWhenExtinct = true
	}
}

// NewRunner creates a runner for sim. The current state is recorded as the
// first time point.
func NewRunner(sim *Simulator, opts ...RunnerOption) (*Runner, error) {
	if sim == nil {
		return nil, fmt.Errorf("simulator is required")
	}

	r := &Runner{sim: sim}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if r.tracer == nil {
		r.tracer = otel.Tracer(meterName)
	}

	m, err := newRunMetrics(r.meter)
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}
	r.metrics = m

	r.timePoints = []TimePoint{r.timePoint(sim.Statistics(), sim.Events())}
	return r, nil
}

// Run advances the simulation by up to days days. Cancellation is checked
// between days only; a day always completes once started.
func (r *Runner) Run(ctx context.Context, days int) error {
	ctx, span := r.tracer.Start(ctx, "simulation.run",
		trace.WithAttributes(
			attribute.Int("outbreak.days_requested", days),
			attribute.Int("outbreak.start_day", r.sim.Day()),
			attribute.Int("outbreak.population", len(r.sim.population)),
		),
	)
	defer span.End()

	err := r.run(ctx, days)

	final := r.sim.Statistics()
	span.SetAttributes(
		attribute.Int("outbreak.end_day", final.Day),
		attribute.Int("outbreak.infected", final.Infected),
		attribute.Int("outbreak.deceased", final.Deceased),
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	r.logger.Info("simulation finished",
		"day", final.Day,
		"infected", final.Infected,
		"recovered", final.Recovered,
		"deceased", final.Deceased,
	)
	return nil
}

func (r *Runner) run(ctx context.Context, days int) error {
	for i := 0; i < days; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		before := len(r.sim.events)
		r.sim.AdvanceDay()
		stats := r.sim.Statistics()
		dayEvents := r.sim.EventsSince(before)

		r.timePoints = append(r.timePoints, r.timePoint(stats, dayEvents))
		r.metrics.recordDay(ctx, stats, dayEvents)

		r.logger.Debug("day complete",
			"day", stats.Day,
			"susceptible", stats.Susceptible,
			"infected", stats.Infected,
			"recovered", stats.Recovered,
			"deceased", stats.Deceased,
		)

		frame := Frame{
			Stats:  stats,
			Agents: r.sim.Agents(),
			Events: dayEvents,
			Width:  r.sim.params.Width,
			Height: r.sim.params.Height,
		}
		for _, o := range r.observers {
			if err := o.Observe(ctx, frame); err != nil {
				return fmt.Errorf("observer failed on day %d: %w", stats.Day, err)
			}
		}

		if r.stopWhenExtinct && stats.Infected == 0 {
			r.logger.Info("no infected agents left, stopping early", "day", stats.Day)
			break
		}
	}
	return nil
}

func (r *Runner) timePoint(stats Statistics, events []Event) TimePoint {
	tp := TimePoint{Statistics: stats}
	for _, event := range events {
		switch event.Type {
		case EventTypeSeeded, EventTypeInfected:
			tp.NewInfections++
		case EventTypeDeceased:
			tp.NewDeaths++
		case EventTypeRecovered:
		}
	}
	return tp
}

// TimePoints returns the history, starting with the state before the first day
func (r *Runner) TimePoints() []TimePoint {
	return r.timePoints
}

// Simulator returns the driven simulator
func (r *Runner) Simulator() *Simulator {
	return r.sim
}
