package simulation

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/sherine-k/outbreak/pkg/simulation"

type runMetrics struct {
	days        metric.Int64Counter
	transitions metric.Int64Counter
	population  metric.Int64Gauge
}

func newRunMetrics(meter metric.Meter) (*runMetrics, error) {
	if meter == nil {
		meter = otel.Meter(meterName)
	}

	days, err := meter.Int64Counter("outbreak.days",
		metric.WithDescription("Simulated days completed"),
		metric.WithUnit("{day}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create days counter: %w", err)
	}

	transitions, err := meter.Int64Counter("outbreak.transitions",
		metric.WithDescription("Health state transitions by event type"),
		metric.WithUnit("{agent}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create transitions counter: %w", err)
	}

	population, err := meter.Int64Gauge("outbreak.population",
		metric.WithDescription("Agents per health state at the end of the day"),
		metric.WithUnit("{agent}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create population gauge: %w", err)
	}

	return &runMetrics{days: days, transitions: transitions, population: population}, nil
}

func (m *runMetrics) recordDay(ctx context.Context, stats Statistics, events []Event) {
	m.days.Add(ctx, 1)

	perType := map[EventType]int64{}
	for _, event := range events {
		perType[event.Type]++
	}
	for eventType, n := range perType {
		m.transitions.Add(ctx, n, metric.WithAttributes(attribute.String("type", string(eventType))))
	}

	for _, state := range HealthStates {
		m.population.Record(ctx, int64(stats.Count(state)),
			metric.WithAttributes(attribute.String("state", state.String())))
	}
}
