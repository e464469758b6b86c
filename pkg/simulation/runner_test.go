package simulation_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/sherine-k/outbreak/pkg/random"
	"github.com/sherine-k/outbreak/pkg/simulation"
)

func newSeededSimulator(t *testing.T, seed int64) *simulation.Simulator {
	t.Helper()
	sim, err := simulation.NewSimulator(defaultParams(), random.NewSeeded(seed))
	require.NoError(t, err)
	sim.SeedInfection(5)
	return sim
}

func TestRunnerRecordsHistory(t *testing.T) {
	sim := newSeededSimulator(t, 11)
	runner, err := simulation.NewRunner(sim)
	require.NoError(t, err)

	require.NoError(t, runner.Run(context.Background(), 30))

	points := runner.TimePoints()
	require.Len(t, points, 31)
	for i, tp := range points {
		assert.Equal(t, i, tp.Day)
		assert.Equal(t, tp.Total, tp.Susceptible+tp.Infected+tp.Recovered+tp.Deceased)
	}
	assert.Equal(t, points[0].Infected, points[0].NewInfections, "seeded infections count on day 0")
	assert.Equal(t, sim.Statistics(), points[30].Statistics)
}

func TestRunnerFeedsObserversInOrder(t *testing.T) {
	sim := newSeededSimulator(t, 3)

	var calls []string
	var days []int
	first := simulation.ObserverFunc(func(_ context.Context, frame simulation.Frame) error {
		calls = append(calls, "first")
		days = append(days, frame.Stats.Day)
		assert.Len(t, frame.Agents, frame.Stats.Total)
		assert.Equal(t, 100.0, frame.Width)
		return nil
	})
	second := simulation.ObserverFunc(func(_ context.Context, frame simulation.Frame) error {
		calls = append(calls, "second")
		return nil
	})

	runner, err := simulation.NewRunner(sim, simulation.WithObserver(first), simulation.WithObserver(second))
	require.NoError(t, err)
	require.NoError(t, runner.Run(context.Background(), 3))

	assert.Equal(t, []int{1, 2, 3}, days)
	assert.Equal(t, []string{"first", "second", "first", "second", "first", "second"}, calls)
}

func TestRunnerFrameEventsBelongToTheDay(t *testing.T) {
	sim := newSeededSimulator(t, 8)

	seen := 0
	observer := simulation.ObserverFunc(func(_ context.Context, frame simulation.Frame) error {
		for _, event := range frame.Events {
			assert.Equal(t, frame.Stats.Day-1, event.Day)
			seen++
		}
		return nil
	})
	runner, err := simulation.NewRunner(sim, simulation.WithObserver(observer))
	require.NoError(t, err)
	require.NoError(t, runner.Run(context.Background(), 40))

	seeded := 0
	for _, event := range sim.Events() {
		if event.Type == simulation.EventTypeSeeded {
			seeded++
		}
	}
	assert.Equal(t, len(sim.Events())-seeded, seen)
}

func TestRunnerStopsOnObserverError(t *testing.T) {
	sim := newSeededSimulator(t, 3)
	boom := errors.New("disk full")
	observer := simulation.ObserverFunc(func(_ context.Context, frame simulation.Frame) error {
		if frame.Stats.Day == 2 {
			return boom
		}
		return nil
	})

	runner, err := simulation.NewRunner(sim, simulation.WithObserver(observer))
	require.NoError(t, err)

	err = runner.Run(context.Background(), 10)
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 2, sim.Day())
}

func TestRunnerHonoursCancellationBetweenDays(t *testing.T) {
	sim := newSeededSimulator(t, 3)
	ctx, cancel := context.WithCancel(context.Background())
	observer := simulation.ObserverFunc(func(_ context.Context, frame simulation.Frame) error {
		if frame.Stats.Day == 4 {
			cancel()
		}
		return nil
	})

	runner, err := simulation.NewRunner(sim, simulation.WithObserver(observer))
	require.NoError(t, err)

	err = runner.Run(ctx, 10)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 4, sim.Day(), "the day in progress completes")
}

func TestRunnerStopWhenExtinct(t *testing.T) {
	p := defaultParams()
	p.PopulationSize = 1
	p.InfectionRadius = 0
	p.Recovery = simulation.RecoveryRange{Min: 2, Max: 2}
	sim, err := simulation.NewSimulator(p, random.NewSeeded(1))
	require.NoError(t, err)
	sim.SeedInfection(1)

	runner, err := simulation.NewRunner(sim, simulation.StopWhenExtinct())
	require.NoError(t, err)
	require.NoError(t, runner.Run(context.Background(), 50))

	assert.Equal(t, 3, sim.Day())
	assert.Len(t, runner.TimePoints(), 4)
}

func TestRunnerZeroDays(t *testing.T) {
	sim := newSeededSimulator(t, 1)
	runner, err := simulation.NewRunner(sim)
	require.NoError(t, err)

	require.NoError(t, runner.Run(context.Background(), 0))
	assert.Zero(t, sim.Day())
	assert.Len(t, runner.TimePoints(), 1)
}

func TestNewRunnerRequiresSimulator(t *testing.T) {
	_, err := simulation.NewRunner(nil)
	require.Error(t, err)
}

func TestRunnerRecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	sim := newSeededSimulator(t, 21)
	runner, err := simulation.NewRunner(sim, simulation.WithMeter(provider.Meter("test")))
	require.NoError(t, err)
	require.NoError(t, runner.Run(context.Background(), 12))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	found := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			found[m.Name] = true
			switch m.Name {
			case "outbreak.days":
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				require.Len(t, sum.DataPoints, 1)
				assert.Equal(t, int64(12), sum.DataPoints[0].Value)
			case "outbreak.population":
				gauge, ok := m.Data.(metricdata.Gauge[int64])
				require.True(t, ok)
				var total int64
				for _, dp := range gauge.DataPoints {
					total += dp.Value
				}
				assert.Equal(t, int64(200), total)
			}
		}
	}
	assert.True(t, found["outbreak.days"])
	assert.True(t, found["outbreak.population"])
}

func TestSummarize(t *testing.T) {
	points := []simulation.TimePoint{
		{Statistics: simulation.Statistics{Day: 0, Susceptible: 95, Infected: 5, Total: 100}},
		{Statistics: simulation.Statistics{Day: 1, Susceptible: 80, Infected: 20, Total: 100}},
		{Statistics: simulation.Statistics{Day: 2, Susceptible: 70, Infected: 12, Recovered: 15, Deceased: 3, Total: 100}},
	}

	summary := simulation.Summarize(points)
	assert.Equal(t, 2, summary.Days)
	assert.Equal(t, 20, summary.PeakInfected)
	assert.Equal(t, 1, summary.PeakDay)
	assert.Equal(t, 30, summary.EverInfected)
	assert.InDelta(t, 0.30, summary.AttackRate, 1e-9)
	assert.InDelta(t, 3.0/18.0, summary.CaseFatalityRate, 1e-9)

	assert.Equal(t, simulation.Summary{}, simulation.Summarize(nil))
}

func spanAttributes(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	return attrs
}

func TestRunnerTracesRun(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	sim := newSeededSimulator(t, 9)
	runner, err := simulation.NewRunner(sim, simulation.WithTracer(provider.Tracer("test")))
	require.NoError(t, err)
	require.NoError(t, runner.Run(context.Background(), 6))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "simulation.run", spans[0].Name())
	assert.Equal(t, codes.Unset, spans[0].Status().Code)

	attrs := spanAttributes(spans[0])
	assert.Equal(t, int64(6), attrs["outbreak.days_requested"].AsInt64())
	assert.Equal(t, int64(0), attrs["outbreak.start_day"].AsInt64())
	assert.Equal(t, int64(6), attrs["outbreak.end_day"].AsInt64())
	assert.Equal(t, int64(defaultParams().PopulationSize), attrs["outbreak.population"].AsInt64())
	assert.Equal(t, int64(sim.Statistics().Infected), attrs["outbreak.infected"].AsInt64())
}

func TestRunnerTraceRecordsFailure(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	boom := errors.New("boom")
	observer := simulation.ObserverFunc(func(context.Context, simulation.Frame) error {
		return boom
	})

	runner, err := simulation.NewRunner(newSeededSimulator(t, 2),
		simulation.WithTracer(provider.Tracer("test")),
		simulation.WithObserver(observer),
	)
	require.NoError(t, err)
	require.ErrorIs(t, runner.Run(context.Background(), 3), boom)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, int64(1), spanAttributes(spans[0])["outbreak.end_day"].AsInt64())
}
