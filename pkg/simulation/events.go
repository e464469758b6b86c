package simulation

// EventType defines the type of event in the simulation
type EventType string

const (
	EventTypeSeeded    EventType = "seeded"
	EventTypeInfected  EventType = "infected"
	EventTypeRecovered EventType = "recovered"
	EventTypeDeceased  EventType = "deceased"
)

// NoSource marks events that were not caused by another agent.
const NoSource = -1

// Event represents a single health transition
type Event struct {
	Day      int
	Type     EventType
	AgentID  int
	SourceID int
	Message  string
}

// Statistics is a point-in-time count of agents per health state
type Statistics struct {
	Day         int
	Susceptible int
	Infected    int
	Recovered   int
	Deceased    int
	Total       int
}

// Count returns the number of agents in state s.
func (s Statistics) Count(state HealthState) int {
	switch state {
	case Susceptible:
		return s.Susceptible
	case Infected:
		return s.Infected
	case Recovered:
		return s.Recovered
	case Deceased:
		return s.Deceased
	default:
		return 0
	}
}

// TimePoint represents the state at the end of a simulated day
type TimePoint struct {
	Statistics
	NewInfections int
	NewDeaths     int
}
