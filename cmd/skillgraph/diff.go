package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/skillgraph/internal/cli"
	"github.com/aretw0/skillgraph/pkg/domain"
)

var diffCmd = &cobra.Command{
	Use:   "diff <old> <new>",
	Short: "Show structural changes between two graphs",
	Long:  `Compares two documents (files or stored ids) and prints the added, removed and changed nodes, edges and parameters as JSON.`,
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		eng, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		docs := make([]*domain.GraphDocument, 2)
		for i, ref := range args {
			if docs[i], err = cli.ResolveDocument(cmd.Context(), eng, ref); err != nil {
				return err
			}
		}

		d := domain.Diff(docs[0], docs[1])
		out := cmd.OutOrStdout()
		if d.Empty() {
			fmt.Fprintln(out, "no changes")
			return nil
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(d)
	},
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
