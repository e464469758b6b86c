package config

import (
	"time"

	"github.com/sherine-k/outbreak/pkg/simulation"
)

// Config represents the entire configuration for the outbreak simulator
type Config struct {
	Population        int           `yaml:"population"`
	Width             float64       `yaml:"width"`
	Height            float64       `yaml:"height"`
	InfectionRadius   float64       `yaml:"infectionRadius"`
	InfectionRate     float64       `yaml:"infectionRate"`
	RecoveryTimeRange RecoveryRange `yaml:"recoveryTimeRange"`
	MortalityRate     float64       `yaml:"mortalityRate"`

	InitialInfected int `yaml:"initialInfected"`
	SimulationDays  int `yaml:"simulationDays"`

	// Seed is nil when the run is seeded from the clock. Any value,
	// including 0, replays a run.
	Seed *int64 `yaml:"seed,omitempty"`

	// StartDate anchors day 0 on the calendar (YYYY-MM-DD). Empty means the
	// Monday of the current week.
	StartDate string `yaml:"startDate,omitempty"`

	// SnapshotSchedule is a 5-field cron expression selecting the days that are
	// captured into the snapshot sheet.
	SnapshotSchedule string `yaml:"snapshotSchedule,omitempty"`

	AnimationInterval time.Duration `yaml:"animationInterval"`
	StopWhenExtinct   bool          `yaml:"stopWhenExtinct,omitempty"`
	LogLevel          string        `yaml:"logLevel,omitempty"`

	Output Output `yaml:"output"`
}

// RecoveryRange is the inclusive range of days an infection lasts
type RecoveryRange struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Output selects the artifacts the renderer writes
type Output struct {
	Dir        string `yaml:"dir,omitempty"`
	Video      bool   `yaml:"video,omitempty"`
	GIF        bool   `yaml:"gif,omitempty"`
	CSV        bool   `yaml:"csv,omitempty"`
	Plot       bool   `yaml:"plot,omitempty"`
	Snapshots  bool   `yaml:"snapshots,omitempty"`
	CanvasSize int    `yaml:"canvasSize,omitempty"`
}

// Enabled reports whether any artifact is requested
func (o Output) Enabled() bool {
	return o.Video || o.GIF || o.CSV || o.Plot || o.Snapshots
}

// Parameters converts the disease and population settings for the simulator.
func (c *Config) Parameters() simulation.Parameters {
	return simulation.Parameters{
		PopulationSize:  c.Population,
		Width:           c.Width,
		Height:          c.Height,
		InfectionRadius: c.InfectionRadius,
		InfectionRate:   c.InfectionRate,
		Recovery: simulation.RecoveryRange{
			Min: c.RecoveryTimeRange.Min,
			Max: c.RecoveryTimeRange.Max,
		},
		MortalityRate: c.MortalityRate,
	}
}
