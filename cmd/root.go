package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	sim "github.com/inference-sim/fleetsim/sim"
	"github.com/inference-sim/fleetsim/sim/fleet"
	"github.com/inference-sim/fleetsim/sim/trace"
)

var (
	// CLI flags for the run command
	seed          int64  // Seed for the delay and fleet RNG subsystems
	endTime       int64  // Last simulated time that may still be dispatched (in ticks)
	logLevel      string // Log verbosity level
	fleetPath     string // Path to a YAML fleet spec
	numTaxis      int    // Number of taxis to synthesize when no fleet spec is given
	maxTrips      int    // Upper bound on trips per synthesized taxi
	startSpacing  int64  // Gap between start times of synthesized taxis (in ticks)
	delayMin      int64  // Lower bound of the uniform delay (in ticks)
	delayMax      int64  // Upper bound of the uniform delay (in ticks)
	delayConstant int64  // Constant delay; negative means unset
	traceLevel    string // Trace verbosity: none or events
	traceOut      string // File for the dispatched-event trace; stdout when empty
	metricsOut    string // File for Prometheus text-format metrics; skipped when empty
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "fleetsim",
	Short: "Discrete-event simulator for taxi fleets",
}

// runCmd executes the simulation using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the fleet simulation",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s", traceLevel)
		}

		if err := runSimulation(cmd, os.Stdout); err != nil {
			logrus.Fatalf("Simulation failed: %v", err)
		}

		logrus.Info("Simulation complete.")
	},
}

// runSimulation resolves the fleet, runs it, and writes the trace, the metrics
// summary and the optional metrics file. Output files are closed before it
// returns, and a failed close is reported as the run's error.
func runSimulation(cmd *cobra.Command, stdout io.Writer) (err error) {
	spec, err := resolveSpec(cmd)
	if err != nil {
		return fmt.Errorf("building fleet: %w", err)
	}
	horizon := spec.Horizon()
	if cmd.Flags().Changed("end-time") || fleetPath == "" {
		horizon = endTime
	}

	logrus.Infof("Starting simulation with %d taxis, seed=%d, end-time=%d", len(spec.Taxis), spec.Seed, horizon)

	traceW := stdout
	if traceOut != "" {
		f, err := os.Create(traceOut)
		if err != nil {
			return fmt.Errorf("creating trace file: %w", err)
		}
		defer func() {
			if cerr := f.Close(); cerr != nil && err == nil {
				err = fmt.Errorf("closing trace file: %w", cerr)
			}
		}()
		traceW = f
	}

	metrics, err := executeRun(spec, horizon, trace.TraceLevel(traceLevel), traceW)
	if err != nil {
		return err
	}
	metrics.Print(stdout)

	if metricsOut != "" {
		if err := writeMetricsFile(metricsOut, metrics); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}
	return nil
}

// resolveSpec builds the fleet from --fleet, --taxis, or the classic three-taxi
// fleet, then applies CLI overrides for seed and delay.
func resolveSpec(cmd *cobra.Command) (*fleet.Spec, error) {
	var spec *fleet.Spec
	switch {
	case fleetPath != "":
		loaded, err := fleet.LoadSpec(fleetPath)
		if err != nil {
			return nil, err
		}
		spec = loaded
	case numTaxis > 0:
		rng := sim.NewPartitionedRNG(sim.NewSimulationKey(seed))
		synthesized, err := fleet.Synthesize(rng.ForSubsystem(sim.SubsystemFleet), numTaxis, maxTrips, startSpacing)
		if err != nil {
			return nil, err
		}
		spec = synthesized
		spec.Seed = seed
	default:
		spec = fleet.Classic()
		spec.Seed = seed
	}

	if cmd.Flags().Changed("seed") {
		spec.Seed = seed
	}
	uniformFlags := cmd.Flags().Changed("delay-min") || cmd.Flags().Changed("delay-max")
	if cmd.Flags().Changed("delay-constant") && uniformFlags {
		return nil, fmt.Errorf("--delay-constant cannot be combined with --delay-min or --delay-max")
	}
	switch {
	case delayConstant >= 0:
		spec.Delay = fleet.DelaySpec{Policy: fleet.DelayConstant, Params: map[string]any{"value": delayConstant}}
	case uniformFlags:
		spec.Delay = fleet.DelaySpec{Policy: fleet.DelayUniform, Params: map[string]any{"min": delayMin, "max": delayMax}}
	}

	if err := spec.Validate(); err != nil {
		return nil, fmt.Errorf("invalid fleet spec: %w", err)
	}
	return spec, nil
}

// executeRun registers the fleet on a fresh scheduler, runs it until horizon,
// and writes the dispatched-event trace to traceW.
func executeRun(spec *fleet.Spec, horizon int64, level trace.TraceLevel, traceW io.Writer) (*sim.Metrics, error) {
	rng := sim.NewPartitionedRNG(sim.NewSimulationKey(spec.Seed))
	delay, err := fleet.NewDelayPolicy(spec.Delay, rng.ForSubsystem(sim.SubsystemDelay))
	if err != nil {
		return nil, err
	}

	metrics := sim.NewMetrics()
	st := trace.NewSimulationTrace(trace.TraceConfig{Level: level})
	scheduler := sim.NewScheduler(sim.SchedulerConfig{Delay: delay, Trace: st, Metrics: metrics})
	for _, p := range spec.Processes() {
		if err := scheduler.Register(p); err != nil {
			return nil, err
		}
	}

	report, err := scheduler.Run(horizon)
	if err != nil {
		return nil, err
	}
	if err := report.WriteTrace(traceW); err != nil {
		return nil, err
	}

	if st.Enabled() {
		summary := trace.Summarize(st)
		logrus.Infof("Trace: %d events from %d taxis, %d retired, last clock %d",
			summary.TotalDispatched, summary.UniqueProcesses, summary.RetiredCount, summary.LastClock)
	}
	return metrics, nil
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {

	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for random delays and fleet synthesis")
	runCmd.Flags().Int64Var(&endTime, "end-time", 50, "Last simulated time that may be dispatched (in ticks)")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")

	// Fleet source
	runCmd.Flags().StringVar(&fleetPath, "fleet", "", "Path to a YAML fleet spec")
	runCmd.Flags().IntVar(&numTaxis, "taxis", 0, "Number of taxis to synthesize (ignored with --fleet)")
	runCmd.Flags().IntVar(&maxTrips, "max-trips", 6, "Maximum trips per synthesized taxi")
	runCmd.Flags().Int64Var(&startSpacing, "start-spacing", 5, "Ticks between start times of synthesized taxis")

	// Delay policy overrides
	runCmd.Flags().Int64Var(&delayMin, "delay-min", sim.DefaultDelayMin, "Lower bound of the uniform delay (in ticks)")
	runCmd.Flags().Int64Var(&delayMax, "delay-max", sim.DefaultDelayMax, "Upper bound of the uniform delay (in ticks)")
	runCmd.Flags().Int64Var(&delayConstant, "delay-constant", -1, "Use a constant delay instead of the uniform one (negative = unset)")

	// Outputs
	runCmd.Flags().StringVar(&traceLevel, "trace-level", string(trace.TraceLevelEvents), "Trace verbosity (none, events)")
	runCmd.Flags().StringVar(&traceOut, "trace-out", "", "File for the event trace (default stdout)")
	runCmd.Flags().StringVar(&metricsOut, "metrics-out", "", "File for Prometheus text-format metrics")

	runCmd.MarkFlagsMutuallyExclusive("delay-constant", "delay-min")
	runCmd.MarkFlagsMutuallyExclusive("delay-constant", "delay-max")

	// Attach subcommands to `root`
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
}
