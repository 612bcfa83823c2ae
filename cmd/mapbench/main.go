package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

var version = "0.1.0-dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mapbench",
		Short: "Mapping benchmarks for neuromorphic wafer systems",
		Long: `mapbench builds benchmark neural network topologies, hands them to a
mapping engine and records how many synapses survive placement and routing.

Results are written as JSON files into the output directory and, when a
persistent store is configured, into the result store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./mapbench.yaml when present)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")

	rootCmd.AddCommand(
		newVersionCmd(),
		newRunCmd(),
		newSweepCmd(),
		newSummarizeCmd(),
		newRunsCmd(),
		newInDegreeCmd(),
		newTopologiesCmd(),
	)
	return rootCmd
}
