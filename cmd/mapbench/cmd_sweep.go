package main

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mapbench/internal/sweep"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run every task of a benchmarks file",
		Long: `Expand a benchmarks file into the cartesian product of its argument values
and run each task.

In inprocess mode tasks share this process; in subprocess mode each task
re-invokes this binary with "run ... --json". A failing task does not stop
the others. The sweep is recorded in the result store.

Example benchmarks file:
  - model: {name: cortical_column_network}
    tasks:
      command: cortical
      arguments:
        --scale: [0.01, 0.02]
        --seed: [0, 1, 2]`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			file, _ := cmd.Flags().GetString("file")
			workers := a.cfg.Sweep.Workers
			if cmd.Flags().Changed("workers") {
				workers, _ = cmd.Flags().GetInt("workers")
			}
			mode := a.cfg.Sweep.Mode
			if cmd.Flags().Changed("mode") {
				mode, _ = cmd.Flags().GetString("mode")
			}

			if err := a.openStore(cmd.Context()); err != nil {
				return err
			}

			var executor sweep.Executor
			switch mode {
			case "inprocess":
				runner, err := a.runner()
				if err != nil {
					return err
				}
				executor = sweep.InProcess{Runner: runner, MapperDefaults: a.cfg.Mapper.Options}
			case "subprocess":
				exe, err := os.Executable()
				if err != nil {
					return fmt.Errorf("locate mapbench binary: %w", err)
				}
				executor = sweep.Subprocess{Executable: exe, Args: forwardedFlags(cmd)}
			default:
				return fmt.Errorf("unsupported sweep mode: %s", mode)
			}

			sweeper := &sweep.Sweeper{
				Executor: executor,
				Store:    a.store,
				Workers:  workers,
				Mode:     mode,
				Logger:   a.logger,
			}
			record, runErr := sweeper.Run(cmd.Context(), file)
			if record.ID == "" {
				return runErr
			}

			if a.jsonOut {
				if err := a.printJSON(record); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(a.out, "sweep %s: %s tasks, %s results, %s failures\n",
					record.ID,
					humanize.Comma(int64(record.Tasks)),
					humanize.Comma(int64(len(record.ResultIDs))),
					humanize.Comma(int64(len(record.Failures))),
				)
				for _, f := range record.Failures {
					fmt.Fprintf(a.out, "  failed: %s\n", f)
				}
			}
			if runErr != nil {
				return fmt.Errorf("%d of %d tasks failed", len(record.Failures), record.Tasks)
			}
			return nil
		},
	}

	cmd.Flags().String("file", "", "Benchmarks file (YAML or JSON)")
	cmd.Flags().Int("workers", 1, "Tasks run in parallel (default from config)")
	cmd.Flags().String("mode", "inprocess", "Execution mode: inprocess|subprocess (default from config)")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}

// forwardedFlags passes the global flags a subprocess needs to see the same
// configuration.
func forwardedFlags(cmd *cobra.Command) []string {
	var args []string
	for _, name := range []string{"config", "log-level"} {
		if value, _ := cmd.Flags().GetString(name); value != "" {
			args = append(args, "--"+name, value)
		}
	}
	return args
}
