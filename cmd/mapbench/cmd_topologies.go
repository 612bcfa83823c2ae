package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"mapbench/internal/topology"
)

type topologyInfo struct {
	Name   string               `json:"name"`
	Model  string               `json:"model"`
	Params []topology.ParamSpec `json:"params"`
}

func newTopologiesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "topologies",
		Short: "List the available topologies and their parameters",
		RunE: func(cmd *cobra.Command, args []string) error {
			var infos []topologyInfo
			for _, name := range topology.Names() {
				b, err := topology.Lookup(name)
				if err != nil {
					return err
				}
				infos = append(infos, topologyInfo{Name: name, Model: b.Model(), Params: b.Params()})
			}

			out := cmd.OutOrStdout()
			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				a := &app{out: out}
				return a.printJSON(infos)
			}
			for _, info := range infos {
				fmt.Fprintf(out, "%s (model %s)\n", info.Name, info.Model)
				for _, p := range info.Params {
					def := p.Default
					if def == "" {
						def = "derived"
					}
					fmt.Fprintf(out, "  --%-16s %-6s default %-8s %s\n", p.Name, p.Kind, def, p.Usage)
				}
			}
			return nil
		},
	}
}
