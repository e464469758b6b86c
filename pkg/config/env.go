package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "OUTBREAK_"

// LoadDotEnv loads .env files into the environment if present. Variables that
// are already set win.
func LoadDotEnv(filenames ...string) error {
	for _, name := range filenames {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
	}
	return nil
}

// ApplyEnv overrides config values from OUTBREAK_* environment variables.
// Every malformed variable is reported.
func ApplyEnv(config *Config) error {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	collect(envInt("POPULATION", &config.Population))
	collect(envFloat("WIDTH", &config.Width))
	collect(envFloat("HEIGHT", &config.Height))
	collect(envFloat("INFECTION_RADIUS", &config.InfectionRadius))
	collect(envFloat("INFECTION_RATE", &config.InfectionRate))
	collect(envInt("MIN_RECOVERY", &config.RecoveryTimeRange.Min))
	collect(envInt("MAX_RECOVERY", &config.RecoveryTimeRange.Max))
	collect(envFloat("MORTALITY", &config.MortalityRate))
	collect(envInt("INITIAL_INFECTED", &config.InitialInfected))
	collect(envInt("DAYS", &config.SimulationDays))
	collect(envSeed("SEED", &config.Seed))
	collect(envDuration("ANIMATION_INTERVAL", &config.AnimationInterval))
	collect(envBool("STOP_WHEN_EXTINCT", &config.StopWhenExtinct))
	envStr("START_DATE", &config.StartDate)
	envStr("SNAPSHOT_SCHEDULE", &config.SnapshotSchedule)
	envStr("LOG_LEVEL", &config.LogLevel)
	envStr("OUTPUT_DIR", &config.Output.Dir)
	collect(envInt("CANVAS_SIZE", &config.Output.CanvasSize))

	return errors.Join(errs...)
}

func lookup(key string) (string, string, bool) {
	name := EnvPrefix + key
	v := os.Getenv(name)
	return name, v, v != ""
}

func envStr(key string, dst *string) {
	if _, v, ok := lookup(key); ok {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	name, v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s=%q is not a valid integer", name, v)
	}
	*dst = n
	return nil
}

func envSeed(key string, dst **int64) error {
	name, v, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fmt.Errorf("%s=%q is not a valid integer", name, v)
	}
	*dst = &n
	return nil
}

func envFloat(key string, dst *float64) error {
	name, v, ok := lookup(key)
	if !ok {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("%s=%q is not a valid number", name, v)
	}
	*dst = f
	return nil
}

func envBool(key string, dst *bool) error {
	name, v, ok := lookup(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s=%q is not a valid boolean", name, v)
	}
	*dst = b
	return nil
}

func envDuration(key string, dst *time.Duration) error {
	name, v, ok := lookup(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("%s=%q is not a valid duration", name, v)
	}
	*dst = d
	return nil
}
