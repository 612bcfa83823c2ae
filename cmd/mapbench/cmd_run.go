package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"mapbench/internal/experiment"
	"mapbench/internal/model"
	"mapbench/internal/results"
	"mapbench/internal/topology"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <topology>",
		Short: "Build a topology, map it and record the result",
		Long: `Build one benchmark network, hand it to the configured mapper and record
synapse loss and timing.

A mapping failure still records a result, marked failed, with placeholder
counters of 1.

Examples:
  mapbench run cortical --set scale=0.02 --set seed=3
  mapbench run random --set N=1000 --set prob=0.05 --mapper-option wafer=33
  mapbench run rbm --set N=400 --set Nhidden=100 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			sets, _ := cmd.Flags().GetStringArray("set")
			params, err := parseAssignments(sets)
			if err != nil {
				return fmt.Errorf("--set: %w", err)
			}
			optionFlags, _ := cmd.Flags().GetStringArray("mapper-option")
			options, err := parseAssignments(optionFlags)
			if err != nil {
				return fmt.Errorf("--mapper-option: %w", err)
			}
			name, _ := cmd.Flags().GetString("name")

			if err := a.openStore(cmd.Context()); err != nil {
				return err
			}
			runner, err := a.runner()
			if err != nil {
				return err
			}

			result, err := runner.Run(cmd.Context(), experiment.Request{
				Topology:       args[0],
				Params:         topology.Params(params),
				Name:           name,
				MapperDefaults: a.cfg.Mapper.Options,
				MapperOptions:  options,
			})
			if err != nil {
				return err
			}

			if a.jsonOut {
				return a.printJSON(result)
			}
			a.printResult(result)
			return nil
		},
	}

	cmd.Flags().StringArray("set", nil, "Topology parameter as key=value (repeatable)")
	cmd.Flags().String("name", "", "Model name for the result (default: the topology's model name)")
	cmd.Flags().StringArray("mapper-option", nil, "Mapping option as key=value, e.g. wafer=24 (repeatable)")

	return cmd
}

func (a *app) printResult(r model.Result) {
	status := "ok"
	if r.Failed {
		status = "FAILED: " + r.Error
	}
	synapses := measurement(r, "synapses")
	lost := measurement(r, "synapse_loss")

	fmt.Fprintf(a.out, "%s %s (%s)\n", r.Model, r.Task, status)
	fmt.Fprintf(a.out, "  id:        %s\n", r.ID)
	fmt.Fprintf(a.out, "  neurons:   %s\n", humanize.Comma(int64(measurement(r, "neurons"))))
	fmt.Fprintf(a.out, "  synapses:  %s\n", humanize.Comma(int64(synapses)))
	fmt.Fprintf(a.out, "  lost:      %s (%.2f%%)\n", humanize.Comma(int64(lost)), 100*results.RelativeLoss(lost, synapses))
	fmt.Fprintf(a.out, "  after L1:  %s\n", humanize.Comma(int64(measurement(r, "synapse_loss_after_l1"))))
	fmt.Fprintf(a.out, "  setup:     %s\n", seconds(measurement(r, "setup_time")))
	fmt.Fprintf(a.out, "  total:     %s\n", seconds(measurement(r, "total_time")))
	if a.cfg != nil && a.cfg.OutputDir != "" {
		fmt.Fprintf(a.out, "  file:      %s\n", filepath.Join(a.cfg.OutputDir, results.FileName(r.Model, r.Task)))
	}
}

func measurement(r model.Result, name string) float64 {
	v, _ := r.Measurement(name)
	return v
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second)).Round(time.Millisecond)
}
