package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mapbench/internal/results"
)

func newSummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize",
		Short: "Aggregate result files per model",
		Long: `Read every result file in a directory and report, per model, the relative
synapse loss of each task ordered by network size.

Failed runs are listed but left out of the mean and standard deviation.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(cmd)
			if err != nil {
				return err
			}

			dir, _ := cmd.Flags().GetString("dir")
			if dir == "" {
				dir = a.cfg.OutputDir
			}
			loaded, err := results.LoadDir(dir)
			if err != nil {
				return err
			}
			series := results.Summarize(loaded)

			if csvPath, _ := cmd.Flags().GetString("csv"); csvPath != "" {
				f, err := os.Create(csvPath)
				if err != nil {
					return fmt.Errorf("create csv: %w", err)
				}
				if err := results.WriteSummaryCSV(f, series); err != nil {
					_ = f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				a.logger.Info("summary written", "path", csvPath, "models", len(series))
			}

			if a.jsonOut {
				return a.printJSON(series)
			}
			if len(series) == 0 {
				fmt.Fprintf(a.out, "no results in %s\n", dir)
				return nil
			}
			w := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "MODEL\tTASKS\tFAILED\tMEAN LOSS\tSTD")
			for _, s := range series {
				fmt.Fprintf(w, "%s\t%d\t%d\t%.4f\t%.4f\n", s.Model, len(s.Points), s.Failures, s.MeanRelativeLoss, s.StdRelativeLoss)
			}
			return w.Flush()
		},
	}

	cmd.Flags().String("dir", "", "Directory with result files (default: output_dir)")
	cmd.Flags().String("csv", "", "Also write the per-task summary to this CSV file")

	return cmd
}
