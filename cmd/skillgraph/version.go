package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/skillgraph"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of skillgraph",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "skillgraph version %s\n", skillgraph.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
