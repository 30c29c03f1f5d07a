package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/skillgraph/internal/cli"
)

var runCmd = &cobra.Command{
	Use:   "run <graph>",
	Short: "Run a skill to completion",
	Long: `Loads a graph, from a .json/.yaml file or by id from the configured store,
starts a skill at its entry node and ticks it until it finishes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := cli.RunOptions{Ref: args[0], MaxTicks: cfg.Run.MaxTicks, Interval: cfg.Run.Interval}
		flags := cmd.Flags()
		if flags.Changed("max-ticks") {
			opts.MaxTicks, _ = flags.GetInt("max-ticks")
		}
		if flags.Changed("interval") {
			opts.Interval, _ = flags.GetDuration("interval")
		}
		opts.Params, _ = flags.GetStringArray("set")
		opts.JSON, _ = flags.GetBool("json")
		opts.Save, _ = flags.GetBool("save")
		opts.Watch, _ = flags.GetBool("watch")

		eng, cleanup, err := openEngine(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		return cli.Execute(ctx, eng, opts, cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Int("max-ticks", 0, "Stop after this many ticks (0 uses the configured limit)")
	runCmd.Flags().Duration("interval", 0, "Delay between ticks")
	runCmd.Flags().StringArray("set", nil, "Override a parameter before the run (name=value)")
	runCmd.Flags().Bool("json", false, "Print the result as JSON")
	runCmd.Flags().Bool("save", false, "Save the graph with its final parameter values")
	runCmd.Flags().BoolP("watch", "w", false, "Rerun whenever the document file changes")
}
