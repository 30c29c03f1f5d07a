package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/skillgraph/internal/cli"
)

var graphsCmd = &cobra.Command{
	Use:   "graphs",
	Short: "Manage graphs in the configured store",
}

var graphsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored graph ids",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		ids, err := eng.List(cmd.Context())
		if err != nil {
			return err
		}
		for _, id := range ids {
			fmt.Fprintln(cmd.OutOrStdout(), id)
		}
		return nil
	},
}

var graphsImportCmd = &cobra.Command{
	Use:   "import <file>...",
	Short: "Load document files and save them to the store",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		for _, path := range args {
			doc, err := cli.ReadDocument(path)
			if err != nil {
				return err
			}
			g, err := eng.LoadDocument(doc)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			if err := eng.Save(cmd.Context(), g); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %s\n", g.ID)
		}
		return nil
	},
}

var graphsDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete stored graphs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		for _, id := range args {
			if err := eng.Delete(cmd.Context(), id); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	graphsCmd.AddCommand(graphsListCmd, graphsImportCmd, graphsDeleteCmd)
	rootCmd.AddCommand(graphsCmd)
}
