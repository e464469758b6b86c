package simulation

import (
	"errors"
	"fmt"
	"math"

	"github.com/sherine-k/outbreak/pkg/random"
)

// ErrInvalidParameters is wrapped by every construction validation failure.
var ErrInvalidParameters = errors.New("invalid simulation parameters")

// RecoveryRange is an inclusive range of infection lengths in days
type RecoveryRange struct {
	Min int
	Max int
}

// Parameters describes the population and the disease
type Parameters struct {
	PopulationSize  int
	Width           float64
	Height          float64
	InfectionRadius float64
	InfectionRate   float64
	Recovery        RecoveryRange
	MortalityRate   float64
}

// Validate rejects parameters that would make the statistics meaningless
func (p Parameters) Validate() error {
	if p.PopulationSize < 0 {
		return fmt.Errorf("%w: population size must not be negative, got %d", ErrInvalidParameters, p.PopulationSize)
	}
	if !isExtent(p.Width) || !isExtent(p.Height) {
		return fmt.Errorf("%w: width and height must be greater than 0, got %gx%g", ErrInvalidParameters, p.Width, p.Height)
	}
	if math.IsNaN(p.InfectionRadius) || p.InfectionRadius < 0 {
		return fmt.Errorf("%w: infection radius must not be negative, got %g", ErrInvalidParameters, p.InfectionRadius)
	}
	if !isProbability(p.InfectionRate) {
		return fmt.Errorf("%w: infection rate must be within [0,1], got %g", ErrInvalidParameters, p.InfectionRate)
	}
	if !isProbability(p.MortalityRate) {
		return fmt.Errorf("%w: mortality rate must be within [0,1], got %g", ErrInvalidParameters, p.MortalityRate)
	}
	if p.Recovery.Min <= 0 || p.Recovery.Max <= 0 {
		return fmt.Errorf("%w: recovery range bounds must be greater than 0, got %d-%d", ErrInvalidParameters, p.Recovery.Min, p.Recovery.Max)
	}
	if p.Recovery.Min > p.Recovery.Max {
		return fmt.Errorf("%w: recovery range min %d exceeds max %d", ErrInvalidParameters, p.Recovery.Min, p.Recovery.Max)
	}
	return nil
}

// isExtent reports whether v is a usable side length of the area
func isExtent(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func isProbability(v float64) bool {
	// NaN fails both comparisons.
	return v >= 0 && v <= 1
}

// Simulator owns the population and advances it one day at a time
type Simulator struct {
	params     Parameters
	rng        random.Source
	population []Agent
	day        int
	events     []Event
}

// NewSimulator validates params and places the population uniformly at random.
func NewSimulator(params Parameters, rng random.Source) (*Simulator, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: random source is required", ErrInvalidParameters)
	}

	population := make([]Agent, params.PopulationSize)
	for i := range population {
		x := rng.Uniform(0, params.Width)
		y := rng.Uniform(0, params.Height)
		population[i] = NewAgent(i, x, y)
	}

	return &Simulator{
		params:     params,
		rng:        rng,
		population: population,
		events:     []Event{},
	}, nil
}

// SeedInfection picks min(count, population) agents with replacement and infects
// the ones still susceptible, so fewer than count agents may end up infected.
func (s *Simulator) SeedInfection(count int) int {
	n := len(s.population)
	picks := count
	if picks > n {
		picks = n
	}

	infected := 0
	for i := 0; i < picks; i++ {
		agent := &s.population[s.rng.Intn(n)]
		if agent.State() != Susceptible {
			continue
		}
		duration := s.rng.IntRange(s.params.Recovery.Min, s.params.Recovery.Max)
		if agent.Infect(s.day, duration) {
			infected++
			s.addEvent(Event{
				Day:      s.day,
				Type:     EventTypeSeeded,
				AgentID:  agent.ID(),
				SourceID: NoSource,
				Message:  fmt.Sprintf("Agent %d seeded with a %d day infection", agent.ID(), duration),
			})
		}
	}
	return infected
}

// AdvanceDay runs the movement, infection and resolution passes in that order
// and then increments the day counter.
func (s *Simulator) AdvanceDay() {
	s.movePopulation()
	s.spreadInfection()
	s.resolveInfections()
	s.day++
}

// movePopulation draws dx then dy in [-1,1) for every living agent in id order.
func (s *Simulator) movePopulation() {
	for i := range s.population {
		agent := &s.population[i]
		if agent.State() == Deceased {
			continue
		}
		dx := s.rng.Uniform(-1, 1)
		dy := s.rng.Uniform(-1, 1)
		agent.move(dx, dy, s.params.Width, s.params.Height)
	}
}

// spreadInfection scans every (infected, susceptible) pair. Sources are taken
// from a snapshot so agents infected today cannot transmit until tomorrow.
func (s *Simulator) spreadInfection() {
	sources := []int{}
	for i := range s.population {
		if s.population[i].State() == Infected {
			sources = append(sources, i)
		}
	}

	for _, src := range sources {
		source := &s.population[src]
		for i := range s.population {
			target := &s.population[i]
			if target.State() != Susceptible {
				continue
			}
			if !source.withinRadius(target, s.params.InfectionRadius) {
				continue
			}
			if s.rng.Float64() >= s.params.InfectionRate {
				continue
			}
			duration := s.rng.IntRange(s.params.Recovery.Min, s.params.Recovery.Max)
			if target.Infect(s.day, duration) {
				s.addEvent(Event{
					Day:      s.day,
					Type:     EventTypeInfected,
					AgentID:  target.ID(),
					SourceID: source.ID(),
					Message:  fmt.Sprintf("Agent %d infected by agent %d", target.ID(), source.ID()),
				})
			}
		}
	}
}

func (s *Simulator) resolveInfections() {
	for i := range s.population {
		agent := &s.population[i]
		if !agent.Resolve(s.day, s.params.MortalityRate, s.rng) {
			continue
		}

		infectedOn, _ := agent.InfectionDay()
		switch agent.State() {
		case Deceased:
			s.addEvent(Event{
				Day:      s.day,
				Type:     EventTypeDeceased,
				AgentID:  agent.ID(),
				SourceID: NoSource,
				Message:  fmt.Sprintf("Agent %d died after %d days infected", agent.ID(), s.day-infectedOn),
			})
		case Recovered:
			s.addEvent(Event{
				Day:      s.day,
				Type:     EventTypeRecovered,
				AgentID:  agent.ID(),
				SourceID: NoSource,
				Message:  fmt.Sprintf("Agent %d recovered after %d days infected", agent.ID(), s.day-infectedOn),
			})
		case Susceptible, Infected:
		}
	}
}

// Statistics counts the population by state. Nothing is cached.
func (s *Simulator) Statistics() Statistics {
	stats := Statistics{
		Day:   s.day,
		Total: len(s.population),
	}
	for i := range s.population {
		switch s.population[i].State() {
		case Susceptible:
			stats.Susceptible++
		case Infected:
			stats.Infected++
		case Recovered:
			stats.Recovered++
		case Deceased:
			stats.Deceased++
		}
	}
	return stats
}

// Day returns the number of completed days
func (s *Simulator) Day() int {
	return s.day
}

// Parameters returns the parameters the simulator was built with
func (s *Simulator) Parameters() Parameters {
	return s.params
}

// Agents returns a copy of the population in id order. Later days do not
// change it.
func (s *Simulator) Agents() []Agent {
	agents := make([]Agent, len(s.population))
	copy(agents, s.population)
	return agents
}

// addEvent adds an event to the event list
func (s *Simulator) addEvent(event Event) {
	s.events = append(s.events, event)
}

// Events returns a copy of all recorded events in occurrence order
func (s *Simulator) Events() []Event {
	return append([]Event(nil), s.events...)
}

// EventsSince returns a copy of the events recorded from index onwards.
func (s *Simulator) EventsSince(index int) []Event {
	if index < 0 {
		index = 0
	}
	if index >= len(s.events) {
		return nil
	}
	return append([]Event(nil), s.events[index:]...)
}
