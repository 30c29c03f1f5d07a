package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/skillgraph/internal/cli"
	"github.com/aretw0/skillgraph/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate <graph>",
	Short: "Check a graph for structural problems",
	Long:  `Reports unknown node types, dangling edges, a missing entry node and nodes the entry can never reach.`,
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
		report := validator.Validate(doc, eng.Registry())

		out := cmd.OutOrStdout()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
			return report.Err()
		}
		for _, p := range report.Problems {
			fmt.Fprintln(out, p)
		}
		if err := report.Err(); err != nil {
			return err
		}
		fmt.Fprintf(out, "%s is valid (%d warnings)\n", doc.ID, len(report.Warnings()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
	validateCmd.Flags().Bool("json", false, "Print the report as JSON")
}
