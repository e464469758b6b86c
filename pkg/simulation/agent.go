package simulation

import (
	"fmt"

	"github.com/sherine-k/outbreak/pkg/random"
)

// HealthState is the disease state of an agent. Exactly one holds at any time.
type HealthState int

const (
	Susceptible HealthState = iota
	Infected
	Recovered
	Deceased
)

// HealthStates lists every state in display order.
var HealthStates = []HealthState{Susceptible, Infected, Recovered, Deceased}

func (s HealthState) String() string {
	switch s {
	case Susceptible:
		return "susceptible"
	case Infected:
		return "infected"
	case Recovered:
		return "recovered"
	case Deceased:
		return "deceased"
	default:
		return fmt.Sprintf("HealthState(%d)", int(s))
	}
}

// Terminal reports whether no further transition can leave the state.
func (s HealthState) Terminal() bool {
	switch s {
	case Recovered, Deceased:
		return true
	default:
		return false
	}
}

// Agent is one simulated individual
type Agent struct {
	id    int
	x, y  float64
	state HealthState

	// infectionDay is only meaningful once hasInfection is set.
	infectionDay     int
	hasInfection     bool
	recoveryDuration int
}

// NewAgent creates a susceptible agent at (x, y).
func NewAgent(id int, x, y float64) Agent {
	return Agent{
		id:    id,
		x:     x,
		y:     y,
		state: Susceptible,
	}
}

func (a *Agent) ID() int {
	return a.id
}

// Position returns the agent's current coordinates
func (a *Agent) Position() (x, y float64) {
	return a.x, a.y
}

func (a *Agent) State() HealthState {
	return a.state
}

// InfectionDay returns the day the agent was infected. ok is false while the
// agent has never been infected.
func (a *Agent) InfectionDay() (day int, ok bool) {
	return a.infectionDay, a.hasInfection
}

// RecoveryDuration returns the number of days the infection lasts, 0 until infected.
func (a *Agent) RecoveryDuration() int {
	return a.recoveryDuration
}

// Infect moves a susceptible agent to Infected. Any other state is left alone,
// so it is safe to call on any agent. Reports whether the transition happened.
func (a *Agent) Infect(day, recoveryDuration int) bool {
	switch a.state {
	case Susceptible:
		a.state = Infected
		a.infectionDay = day
		a.hasInfection = true
		a.recoveryDuration = recoveryDuration
		return true
	case Infected, Recovered, Deceased:
		return false
	default:
		return false
	}
}

// Resolve ends an infection that has run its course, drawing once from rng to
// pick Deceased (draw < mortality) or Recovered. Nothing is drawn when the
// infection is not due. Reports whether the agent transitioned.
func (a *Agent) Resolve(day int, mortality float64, rng random.Source) bool {
	switch a.state {
	case Infected:
		if day-a.infectionDay < a.recoveryDuration {
			return false
		}
		if rng.Float64() < mortality {
			a.state = Deceased
		} else {
			a.state = Recovered
		}
		return true
	case Susceptible, Recovered, Deceased:
		return false
	default:
		return false
	}
}

// move applies a displacement clamped to [0,width]x[0,height]. Deceased agents
// stay where they died.
func (a *Agent) move(dx, dy, width, height float64) {
	if a.state == Deceased {
		return
	}
	a.x = clampF(a.x+dx, 0, width)
	a.y = clampF(a.y+dy, 0, height)
}

// withinRadius reports whether b is strictly closer than radius.
func (a *Agent) withinRadius(b *Agent, radius float64) bool {
	dx := a.x - b.x
	dy := a.y - b.y
	return dx*dx+dy*dy < radius*radius
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
