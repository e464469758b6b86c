package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/sherine-k/outbreak/pkg/chart"
	"github.com/sherine-k/outbreak/pkg/config"
	"github.com/sherine-k/outbreak/pkg/random"
	"github.com/sherine-k/outbreak/pkg/simulation"
)

const defaultConfigFile = "config.yaml"

// options holds the values bound to the command line flags
type options struct {
	configFile       string
	showTimeline     bool
	timelineLimit    int
	showEventSummary bool

	population      int
	width           float64
	height          float64
	infectionRadius float64
	infectionRate   float64
	minRecovery     int
	maxRecovery     int
	mortality       float64
	initialInfected int
	days            int
	seed            int64
	stopWhenExtinct bool
	logLevel        string

	outputDir string
	video     bool
	gif       bool
	csv       bool
	plot      bool
	snapshots bool
}

var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	opts := &options{}
	cmd := &cobra.Command{
		Use:   "outbreak",
		Short: "Agent-based epidemic simulator",
		Long: `A CLI tool that simulates the spread of an infection through a population
of agents moving at random on a bounded area.

Every agent is susceptible, infected, recovered or deceased. Each day agents
move, infected agents may pass the infection to susceptible agents within the
infection radius, and infections that have run their course end in recovery
or death. The tool prints a chart of the population status over time and can
write a video, an animated GIF, a CSV history, a snapshot sheet and a summary
plot.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulation(cmd, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", defaultConfigFile, "Path to configuration file")
	flags.BoolVarP(&opts.showTimeline, "timeline", "t", false, "Show detailed timeline of events")
	flags.IntVarP(&opts.timelineLimit, "timeline-limit", "l", 50, "Limit number of timeline events to display")
	flags.BoolVarP(&opts.showEventSummary, "summary", "s", true, "Show event summary")

	flags.IntVar(&opts.population, "population", 0, "Number of agents")
	flags.Float64Var(&opts.width, "width", 0, "Width of the simulation area")
	flags.Float64Var(&opts.height, "height", 0, "Height of the simulation area")
	flags.Float64Var(&opts.infectionRadius, "infection-radius", 0, "Distance within which the infection spreads")
	flags.Float64Var(&opts.infectionRate, "infection-rate", 0, "Probability of infection per contact and day")
	flags.IntVar(&opts.minRecovery, "min-recovery", 0, "Minimum number of days an infection lasts")
	flags.IntVar(&opts.maxRecovery, "max-recovery", 0, "Maximum number of days an infection lasts")
	flags.Float64Var(&opts.mortality, "mortality", 0, "Probability that an infection ends in death")
	flags.IntVar(&opts.initialInfected, "initial-infected", 0, "Number of initially infected agents")
	flags.IntVar(&opts.days, "days", 0, "Number of days to simulate")
	flags.Int64Var(&opts.seed, "seed", 0, "Random seed (seeded from the clock when unset)")
	flags.BoolVar(&opts.stopWhenExtinct, "stop-when-extinct", false, "Stop once no agent is infected")
	flags.StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error)")

	flags.StringVar(&opts.outputDir, "output-dir", "", "Directory the run artifacts are written to")
	flags.BoolVar(&opts.video, "video", false, "Write an MJPEG video of the run")
	flags.BoolVar(&opts.gif, "gif", false, "Write an animated GIF of the run")
	flags.BoolVar(&opts.csv, "csv", false, "Write the daily population history as CSV")
	flags.BoolVar(&opts.plot, "plot", false, "Write a plot of the population over time")
	flags.BoolVar(&opts.snapshots, "snapshots", false, "Write a sheet of the days matching the snapshot schedule")

	return cmd
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// loadConfiguration builds the effective configuration: defaults, then the
// config file, then OUTBREAK_* variables, then flags set on the command line.
func loadConfiguration(cmd *cobra.Command, opts *options) (*config.Config, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(opts.configFile)
	if err != nil {
		// The default file is optional
		if !errors.Is(err, fs.ErrNotExist) || cmd.Flags().Changed("config") {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
		cfg = config.Default()
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, fmt.Errorf("invalid environment: %w", err)
	}

	applyFlags(cmd, opts, cfg)

	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func applyFlags(cmd *cobra.Command, opts *options, cfg *config.Config) {
	changed := cmd.Flags().Changed

	if changed("population") {
		cfg.Population = opts.population
	}
	if changed("width") {
		cfg.Width = opts.width
	}
	if changed("height") {
		cfg.Height = opts.height
	}
	if changed("infection-radius") {
		cfg.InfectionRadius = opts.infectionRadius
	}
	if changed("infection-rate") {
		cfg.InfectionRate = opts.infectionRate
	}
	if changed("min-recovery") {
		cfg.RecoveryTimeRange.Min = opts.minRecovery
	}
	if changed("max-recovery") {
		cfg.RecoveryTimeRange.Max = opts.maxRecovery
	}
	if changed("mortality") {
		cfg.MortalityRate = opts.mortality
	}
	if changed("initial-infected") {
		cfg.InitialInfected = opts.initialInfected
	}
	if changed("days") {
		cfg.SimulationDays = opts.days
	}
	if changed("seed") {
		seed := opts.seed
		cfg.Seed = &seed
	}
	if changed("stop-when-extinct") {
		cfg.StopWhenExtinct = opts.stopWhenExtinct
	}
	if changed("log-level") {
		cfg.LogLevel = opts.logLevel
	}
	if changed("output-dir") {
		cfg.Output.Dir = opts.outputDir
	}
	if changed("video") {
		cfg.Output.Video = opts.video
	}
	if changed("gif") {
		cfg.Output.GIF = opts.gif
	}
	if changed("csv") {
		cfg.Output.CSV = opts.csv
	}
	if changed("plot") {
		cfg.Output.Plot = opts.plot
	}
	if changed("snapshots") {
		cfg.Output.Snapshots = opts.snapshots
	}
}

func newLogger(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

func runSimulation(cmd *cobra.Command, opts *options) error {
	cfg, err := loadConfiguration(cmd, opts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var rng *random.Rand
	if cfg.Seed != nil {
		rng = random.NewSeeded(*cfg.Seed)
	} else {
		rng = random.NewFromClock()
	}

	runID := uuid.New().String()
	logger.Info("starting simulation",
		"run", runID,
		"seed", rng.Seed(),
		"population", cfg.Population,
		"area", fmt.Sprintf("%gx%g", cfg.Width, cfg.Height),
		"infectionRadius", cfg.InfectionRadius,
		"infectionRate", cfg.InfectionRate,
		"recovery", fmt.Sprintf("%d-%d", cfg.RecoveryTimeRange.Min, cfg.RecoveryTimeRange.Max),
		"mortalityRate", cfg.MortalityRate,
		"days", cfg.SimulationDays,
	)

	source := "defaults"
	if _, err := os.Stat(opts.configFile); err == nil {
		source = opts.configFile
	}
	fmt.Fprintf(out, "Loaded configuration from %s\n", source)
	fmt.Fprintf(out, "  - Population: %d (%d initially infected)\n", cfg.Population, cfg.InitialInfected)
	fmt.Fprintf(out, "  - Area: %g x %g\n", cfg.Width, cfg.Height)
	fmt.Fprintf(out, "  - Infection: radius %g, rate %s\n", cfg.InfectionRadius, chart.FormatPercent(cfg.InfectionRate))
	fmt.Fprintf(out, "  - Recovery: %d-%d days, mortality %s\n", cfg.RecoveryTimeRange.Min, cfg.RecoveryTimeRange.Max, chart.FormatPercent(cfg.MortalityRate))
	fmt.Fprintf(out, "  - Simulation Days: %d\n", cfg.SimulationDays)
	fmt.Fprintf(out, "  - Seed: %d\n\n", rng.Seed())

	start, err := cfg.Start(time.Now())
	if err != nil {
		return err
	}

	// Create and seed the simulator
	sim, err := simulation.NewSimulator(cfg.Parameters(), rng)
	if err != nil {
		return fmt.Errorf("failed to create simulator: %w", err)
	}
	sim.SeedInfection(cfg.InitialInfected)

	artifacts, err := newArtifacts(cfg, runID, start, sim.Statistics())
	if err != nil {
		return err
	}

	runnerOpts := []simulation.RunnerOption{simulation.WithLogger(logger)}
	if artifacts.recorder != nil {
		runnerOpts = append(runnerOpts, simulation.WithObserver(artifacts.recorder))
	}
	if cfg.StopWhenExtinct {
		runnerOpts = append(runnerOpts, simulation.StopWhenExtinct())
	}
	runner, err := simulation.NewRunner(sim, runnerOpts...)
	if err != nil {
		return errors.Join(fmt.Errorf("failed to create runner: %w", err), artifacts.close())
	}

	runErr := runner.Run(ctx, cfg.SimulationDays)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		_ = artifacts.close()
		return fmt.Errorf("simulation failed: %w", runErr)
	}
	if runErr != nil {
		logger.Warn("simulation interrupted", "day", sim.Day())
	}

	// Write whatever was simulated, even after an interrupt
	timePoints := runner.TimePoints()
	if err := artifacts.finish(timePoints); err != nil {
		return err
	}
	for _, path := range artifacts.written {
		logger.Info("wrote artifact", "path", path)
	}

	// Generate and display chart
	chartGen := chart.NewGenerator()
	events := sim.Events()

	fmt.Fprintln(out, chartGen.GenerateStatusChart(timePoints))

	if opts.showEventSummary {
		fmt.Fprintln(out, chartGen.GenerateEventSummary(events, timePoints))
	}

	if opts.showTimeline {
		fmt.Fprintln(out, chartGen.GenerateDetailedTimeline(events, opts.timelineLimit, start))
	}

	return runErr
}
