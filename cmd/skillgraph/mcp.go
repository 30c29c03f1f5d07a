package main

import (
	"github.com/spf13/cobra"

	"github.com/aretw0/skillgraph/internal/cli"
	"github.com/aretw0/skillgraph/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp <graph>",
	Short: "Run the Model Context Protocol (MCP) server over stdio",
	Long: `Exposes one graph to MCP clients: read the document or its Mermaid diagram,
list and set parameters, and run skills. Logs go to stderr so stdout stays JSON-RPC.`,
	Args: cobra.ExactArgs(1),
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

		srv := mcp.NewServer(eng.NewWorkspace(g), mcp.WithLogger(logger))
		logger.Info("starting MCP server", "graph", g.ID, "transport", "stdio")
		if err := srv.ServeStdio(); err != nil {
			logger.Error("MCP server failed", "err", err)
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
