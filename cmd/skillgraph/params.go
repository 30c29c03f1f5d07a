package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/aretw0/skillgraph/internal/cli"
	"github.com/aretw0/skillgraph/pkg/domain"
)

var paramsCmd = &cobra.Command{
	Use:   "params <graph>",
	Short: "List a graph's parameters",
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
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tTYPE\tVALUE\tGUID")
		for _, p := range g.Parameters() {
			fmt.Fprintf(w, "%s\t%s\t%v\t%s\n", p.Name, p.Type.Name(), p.Value, p.GUID)
		}
		return w.Flush()
	},
}

var paramsSetCmd = &cobra.Command{
	Use:   "set <graph-id> name=value...",
	Short: "Update parameter values of a stored graph",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		values, err := cli.ParseAssignments(args[1:])
		if err != nil {
			return err
		}
		eng, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cmd.Context()
		g, err := eng.Load(ctx, args[0])
		if err != nil {
			return err
		}
		for name, v := range values {
			found, err := g.SetParameterValue(name, v)
			if err != nil {
				return fmt.Errorf("parameter %s: %w", name, err)
			}
			if !found {
				return fmt.Errorf("parameter %s: %w", name, domain.ErrParameterNotFound)
			}
		}
		return eng.Save(ctx, g)
	},
}

func init() {
	paramsCmd.AddCommand(paramsSetCmd)
	rootCmd.AddCommand(paramsCmd)
}
