package cmd

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/fedsync/fedsync/fed"
	"github.com/fedsync/fedsync/fed/checkpoint"
	"github.com/fedsync/fedsync/fed/fom"
	"github.com/fedsync/fedsync/fed/registry"
	"github.com/fedsync/fedsync/fed/trace"
)

var (
	// CLI flags for the exchange runner
	configPath     string  // federation description file
	stopTime       int64   // exchange horizon (in ticks)
	seed           int64   // seed for the scenario driver
	logLevel       string  // log verbosity level
	traceLevel     string  // decision trace level (none, decisions)
	checkpointPath string  // write a state snapshot here after the run
	restorePath    string  // load a state snapshot before the run
	scenarioDrift  float64 // float perturbation per cycle; 0 disables the scenario driver
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "fedsync",
	Short: "Attribute-synchronization layer for distributed simulation federations",
}

// runCmd executes a federation exchange using parameters from CLI flags
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run a federation exchange",
	Run: func(cmd *cobra.Command, args []string) {
		// Set up logging
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)

		if configPath == "" {
			logrus.Fatalf("Federation description not provided. Exiting exchange.")
		}
		if !trace.IsValidTraceLevel(traceLevel) {
			logrus.Fatalf("Invalid trace level: %s", traceLevel)
		}

		configs, err := fom.LoadFederationFile(configPath)
		if err != nil {
			logrus.Fatalf("Cannot load federation description: %v", err)
		}

		members := make([]*fed.Federate, 0, len(configs))
		for _, fc := range configs {
			store, err := registry.NewStoreForConfig(fc)
			if err != nil {
				logrus.Fatalf("Cannot build variable store for %q: %v", fc.FederateName, err)
			}
			member, err := fed.NewFederate(fc, store)
			if err != nil {
				logrus.Fatalf("Cannot join federate %q: %v", fc.FederateName, err)
			}
			members = append(members, member)
		}

		exec, err := fed.NewExecutive(stopTime, seed, trace.TraceLevel(traceLevel), members)
		if err != nil {
			logrus.Fatalf("Cannot build executive: %v", err)
		}
		if scenarioDrift > 0 {
			exec.Scenario = fed.NewScenario(scenarioDrift)
		}
		if restorePath != "" {
			snap, err := checkpoint.Load(restorePath)
			if err != nil {
				logrus.Fatalf("Cannot load snapshot: %v", err)
			}
			if err := checkpoint.Restore(exec, snap); err != nil {
				logrus.Fatalf("Cannot restore snapshot: %v", err)
			}
			logrus.Infof("Restored state from %s (captured at %d ticks)", restorePath, snap.Clock)
		}

		logrus.Infof("Starting exchange: %d federates, stop=%d ticks, seed=%d",
			len(members), stopTime, seed)

		if err := exec.Run(); err != nil {
			logrus.Fatalf("Exchange failed: %v", err)
		}
		exec.Metrics.Print(exec.Clock)

		if exec.Trace.Enabled() {
			summary := trace.Summarize(exec.Trace)
			logrus.Infof("Trace: %d grants (%d held, mean slack %.1f), %d transfers completed, %d rejected",
				summary.TotalGrants, summary.HeldGrants, summary.MeanGrantSlack,
				summary.CompletedTransfers, summary.RejectedTransfers)
		}

		if checkpointPath != "" {
			if err := checkpoint.Save(checkpointPath, checkpoint.Capture(exec)); err != nil {
				logrus.Fatalf("Cannot write snapshot: %v", err)
			}
			logrus.Infof("Snapshot written to %s", checkpointPath)
		}

		logrus.Info("Exchange complete.")
	},
}

// Execute runs the CLI root command
func Execute() {
	// Tool homes and credentials may come from a local .env; absence is fine.
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	runCmd.Flags().StringVar(&configPath, "config", "", "Federation description YAML file")
	runCmd.Flags().Int64Var(&stopTime, "stop", 10000, "Exchange horizon (in ticks)")
	runCmd.Flags().Int64Var(&seed, "seed", 42, "Seed for the scenario driver")
	runCmd.Flags().StringVar(&logLevel, "log", "error", "Log level (trace, debug, info, warn, error, fatal, panic)")
	runCmd.Flags().StringVar(&traceLevel, "trace", "none", "Decision trace level (none, decisions)")
	runCmd.Flags().StringVar(&checkpointPath, "checkpoint", "", "Write a state snapshot to this file after the run")
	runCmd.Flags().StringVar(&restorePath, "restore", "", "Load a state snapshot from this file before the run")
	runCmd.Flags().Float64Var(&scenarioDrift, "drift", 0.1, "Scenario float drift per cycle (0 disables mutation)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(toolsCmd)
}
