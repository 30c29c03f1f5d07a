package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/skillgraph/internal/cli"
	"github.com/aretw0/skillgraph/internal/presentation/tui"
	"github.com/aretw0/skillgraph/internal/validator"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <graph>",
	Short: "Describe a graph's parameters, nodes and edges",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		doc, err := cli.ResolveDocument(cmd.Context(), eng, args[0])
		if err != nil {
			return err
		}
		g, err := eng.LoadDocument(doc)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		md := tui.Markdown(g, validator.Validate(doc, eng.Registry()))
		rendered, err := tui.NewRenderer(out)(md)
		if err != nil {
			return err
		}
		fmt.Fprint(out, rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}
