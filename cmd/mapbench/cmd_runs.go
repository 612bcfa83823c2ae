package main

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mapbench/internal/results"
)

func newRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recorded runs, newest first",
		Long: `List recorded runs. With a persistent store the store is queried;
otherwise the run index of the output directory is read.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}
			defer a.close()

			modelName, _ := cmd.Flags().GetString("model")
			limit, _ := cmd.Flags().GetInt("limit")

			entries, err := a.listRuns(cmd, modelName)
			if err != nil {
				return err
			}
			if limit > 0 && len(entries) > limit {
				entries = entries[:limit]
			}

			if a.jsonOut {
				return a.printJSON(entries)
			}
			if len(entries) == 0 {
				fmt.Fprintln(a.out, "no runs recorded")
				return nil
			}
			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tMODEL\tTASK\tTIMESTAMP\tSTATUS")
			for _, e := range entries {
				status := "ok"
				if e.Failed {
					status = "failed"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Model, e.Task, e.Timestamp, status)
			}
			return w.Flush()
		},
	}

	cmd.Flags().String("model", "", "Only runs of this model")
	cmd.Flags().Int("limit", 20, "Maximum number of runs to list (0 for all)")

	return cmd
}

func (a *app) listRuns(cmd *cobra.Command, modelName string) ([]results.RunIndexEntry, error) {
	if !a.persistent() {
		index, err := results.ListRunIndex(a.cfg.OutputDir)
		if err != nil {
			return nil, fmt.Errorf("read run index: %w", err)
		}
		if modelName == "" {
			return index, nil
		}
		return slices.DeleteFunc(index, func(e results.RunIndexEntry) bool {
			return e.Model != modelName
		}), nil
	}

	if err := a.openStore(cmd.Context()); err != nil {
		return nil, err
	}
	stored, err := a.store.ListResults(cmd.Context(), modelName)
	if err != nil {
		return nil, err
	}
	entries := make([]results.RunIndexEntry, 0, len(stored))
	for _, r := range slices.Backward(stored) {
		entries = append(entries, results.RunIndexEntry{
			ID:        r.ID,
			Model:     r.Model,
			Task:      r.Task,
			File:      results.FileName(r.Model, r.Task),
			Timestamp: r.Timestamp,
			Failed:    r.Failed,
		})
	}
	return entries, nil
}
