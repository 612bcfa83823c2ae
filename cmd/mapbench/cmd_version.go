package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			out := cmd.OutOrStdout()
			if jsonOut {
				a := &app{out: out}
				return a.printJSON(map[string]string{"version": version})
			}
			fmt.Fprintf(out, "mapbench version %s\n", version)
			return nil
		},
	}
}
