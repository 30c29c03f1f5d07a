package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/skillgraph/internal/cli"
	"github.com/aretw0/skillgraph/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph <graph>",
	Short: "Export the graph as a Mermaid diagram",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		g, err := cli.ResolveGraph(cmd.Context(), eng, args[0])
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(g, nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
