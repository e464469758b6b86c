package simulation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sherine-k/outbreak/pkg/random"
	"github.com/sherine-k/outbreak/pkg/simulation"
)

func TestNewAgentIsSusceptible(t *testing.T) {
	a := simulation.NewAgent(7, 1.5, 2.5)

	assert.Equal(t, 7, a.ID())
	x, y := a.Position()
	assert.Equal(t, 1.5, x)
	assert.Equal(t, 2.5, y)
	assert.Equal(t, simulation.Susceptible, a.State())
	_, ok := a.InfectionDay()
	assert.False(t, ok)
	assert.Zero(t, a.RecoveryDuration())
}

func TestInfectOnlyFromSusceptible(t *testing.T) {
	a := simulation.NewAgent(0, 0, 0)

	require.True(t, a.Infect(3, 5))
	assert.Equal(t, simulation.Infected, a.State())

	// A second infection is ignored and keeps the original metadata.
	assert.False(t, a.Infect(4, 9))
	day, ok := a.InfectionDay()
	require.True(t, ok)
	assert.Equal(t, 3, day)
	assert.Equal(t, 5, a.RecoveryDuration())
}

func TestResolveWaitsForRecoveryDuration(t *testing.T) {
	a := simulation.NewAgent(0, 0, 0)
	a.Infect(3, 5)

	rng := random.NewScript(nil, nil)
	assert.False(t, a.Resolve(7, 0.5, rng))
	assert.Equal(t, simulation.Infected, a.State())
	assert.Zero(t, rng.FloatDraws(), "no draw before the infection is due")
}

func TestResolveOutcome(t *testing.T) {
	tests := []struct {
		name      string
		draw      float64
		mortality float64
		want      simulation.HealthState
	}{
		{"draw above mortality recovers", 0.7, 0.5, simulation.Recovered},
		{"draw below mortality dies", 0.1, 0.5, simulation.Deceased},
		{"draw equal to mortality recovers", 0.5, 0.5, simulation.Recovered},
		{"zero mortality always recovers", 0.0, 0.0, simulation.Recovered},
		{"full mortality always dies", 0.999, 1.0, simulation.Deceased},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := simulation.NewAgent(0, 0, 0)
			a.Infect(0, 2)
			rng := random.NewScript([]float64{tt.draw}, nil)

			require.True(t, a.Resolve(2, tt.mortality, rng))
			assert.Equal(t, tt.want, a.State())
			assert.Equal(t, 1, rng.FloatDraws())
		})
	}
}

func TestTerminalStatesNeverChange(t *testing.T) {
	for _, draw := range []float64{0.1, 0.9} {
		a := simulation.NewAgent(0, 0, 0)
		a.Infect(0, 1)
		require.True(t, a.Resolve(1, 0.5, random.NewScript([]float64{draw}, nil)))
		final := a.State()
		require.True(t, final.Terminal())

		rng := random.NewScript(nil, nil)
		assert.False(t, a.Infect(5, 1))
		assert.False(t, a.Resolve(100, 0.5, rng))
		assert.Equal(t, final, a.State())
		assert.Zero(t, rng.FloatDraws())
	}
}

func TestSusceptibleResolveIsNoop(t *testing.T) {
	a := simulation.NewAgent(0, 0, 0)
	rng := random.NewScript(nil, nil)

	assert.False(t, a.Resolve(10, 1.0, rng))
	assert.Equal(t, simulation.Susceptible, a.State())
	assert.Zero(t, rng.FloatDraws())
}

func TestHealthStateString(t *testing.T) {
	assert.Equal(t, "susceptible", simulation.Susceptible.String())
	assert.Equal(t, "infected", simulation.Infected.String())
	assert.Equal(t, "recovered", simulation.Recovered.String())
	assert.Equal(t, "deceased", simulation.Deceased.String())
	assert.Equal(t, "HealthState(9)", simulation.HealthState(9).String())
}
