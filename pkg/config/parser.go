package config

import (
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

const dateLayout = "2006-01-02"

// Default returns the stock configuration: 200 agents on a 100x100 area.
func Default() *Config {
	return &Config{
		Population:        200,
		Width:             100,
		Height:            100,
		InfectionRadius:   3.0,
		InfectionRate:     0.5,
		RecoveryTimeRange: RecoveryRange{Min: 7, Max: 14},
		MortalityRate:     0.02,
		InitialInfected:   5,
		SimulationDays:    100,
		SnapshotSchedule:  "0 0 * * 1",
		AnimationInterval: 100 * time.Millisecond,
		LogLevel:          "info",
		Output: Output{
			Dir:        "output",
			CanvasSize: 400,
		},
	}
}

// LoadConfig loads and parses the configuration file. Keys missing from the
// file keep their default values.
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Validate configuration
	if err := Validate(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func Validate(config *Config) error {
	if config.Population <= 0 {
		return fmt.Errorf("population must be greater than 0")
	}

	if !isFinitePositive(config.Width) || !isFinitePositive(config.Height) {
		return fmt.Errorf("width and height must be finite and greater than 0")
	}

	if math.IsNaN(config.InfectionRadius) || config.InfectionRadius < 0 {
		return fmt.Errorf("infectionRadius must not be negative")
	}

	if !inUnitInterval(config.InfectionRate) {
		return fmt.Errorf("infectionRate must be between 0 and 1")
	}

	if !inUnitInterval(config.MortalityRate) {
		return fmt.Errorf("mortalityRate must be between 0 and 1")
	}

	if config.RecoveryTimeRange.Min <= 0 || config.RecoveryTimeRange.Max <= 0 {
		return fmt.Errorf("recoveryTimeRange min and max must be greater than 0")
	}

	if config.RecoveryTimeRange.Min > config.RecoveryTimeRange.Max {
		return fmt.Errorf("recoveryTimeRange min (%d) must not exceed max (%d)", config.RecoveryTimeRange.Min, config.RecoveryTimeRange.Max)
	}

	if config.InitialInfected < 0 {
		return fmt.Errorf("initialInfected must not be negative")
	}

	if config.SimulationDays < 0 {
		return fmt.Errorf("simulationDays must not be negative")
	}

	if config.AnimationInterval < 0 {
		return fmt.Errorf("animationInterval must not be negative")
	}

	if config.StartDate != "" {
		if _, err := time.ParseInLocation(dateLayout, config.StartDate, time.Local); err != nil {
			return fmt.Errorf("startDate must use the YYYY-MM-DD format: %w", err)
		}
	}

	if config.SnapshotSchedule != "" {
		if _, err := ParseSchedule(config.SnapshotSchedule); err != nil {
			return fmt.Errorf("snapshotSchedule: %w", err)
		}
	}

	if config.Output.CanvasSize <= 0 {
		return fmt.Errorf("output.canvasSize must be greater than 0")
	}

	switch strings.ToLower(config.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logLevel must be one of debug, info, warn or error")
	}

	return nil
}

func isFinitePositive(v float64) bool {
	return v > 0 && !math.IsInf(v, 1)
}

func inUnitInterval(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

// ParseSchedule parses a standard 5-field cron expression
func ParseSchedule(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cron schedule %q: %w", expr, err)
	}
	return schedule, nil
}

// Start returns the calendar date of day 0. Without a configured start date
// this is midnight on the Monday of the week containing now.
func (c *Config) Start(now time.Time) (time.Time, error) {
	if c.StartDate != "" {
		start, err := time.ParseInLocation(dateLayout, c.StartDate, now.Location())
		if err != nil {
			return time.Time{}, fmt.Errorf("failed to parse startDate: %w", err)
		}
		return start, nil
	}

	weekday := now.Weekday()
	var daysBack int
	if weekday == time.Sunday {
		daysBack = 6 // Sunday is 6 days after Monday
	} else {
		daysBack = int(weekday) - 1 // Days since Monday
	}
	lastMondayDate := now.AddDate(0, 0, -daysBack)
	return time.Date(lastMondayDate.Year(), lastMondayDate.Month(), lastMondayDate.Day(), 0, 0, 0, 0, now.Location()), nil
}
