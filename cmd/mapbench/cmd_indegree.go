package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"mapbench/internal/connectivity"
	"mapbench/internal/topology"
)

type inDegreeTable struct {
	Scale    float64     `json:"scale"`
	Labels   []string    `json:"labels"`
	InDegree [][]float64 `json:"indegree"`
}

func newInDegreeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "indegree",
		Short: "Print the cortical column in-degree table",
		Long: `Print the expected number of incoming connections per target neuron for
every pair of cortical populations, computed from the full-scale sizes and
multiplied by --scale. Rows are targets, columns are sources.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			scale, _ := cmd.Flags().GetFloat64("scale")
			if scale <= 0 {
				return fmt.Errorf("--scale must be > 0, got %v", scale)
			}
			table, err := connectivity.ComputeInDegree(topology.CorticalConnProbs, topology.CorticalSizes)
			if err != nil {
				return err
			}

			out := inDegreeTable{Scale: scale, Labels: topology.CorticalLabels}
			for _, row := range table {
				scaled := make([]float64, len(row))
				for i, k := range row {
					scaled[i] = k * scale
				}
				out.InDegree = append(out.InDegree, scaled)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				a := &app{out: cmd.OutOrStdout()}
				return a.printJSON(out)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', tabwriter.AlignRight)
			fmt.Fprint(w, "target\\source\t")
			for _, label := range out.Labels {
				fmt.Fprintf(w, "%s\t", label)
			}
			fmt.Fprintln(w)
			for t, row := range out.InDegree {
				fmt.Fprintf(w, "%s\t", out.Labels[t])
				for _, k := range row {
					fmt.Fprintf(w, "%.2f\t", k)
				}
				fmt.Fprintln(w)
			}
			return w.Flush()
		},
	}

	cmd.Flags().Float64("scale", 1, "In-degree scale (k_scale)")

	return cmd
}
