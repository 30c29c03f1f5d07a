package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/aretw0/skillgraph"
	"github.com/aretw0/skillgraph/internal/cli"
	"github.com/aretw0/skillgraph/internal/presentation/tui"
	httpAdapter "github.com/aretw0/skillgraph/pkg/adapters/http"
	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/graph"
	"github.com/aretw0/skillgraph/pkg/observability"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve <graph>",
	Short: "Serve one graph over HTTP for editing and running",
	Long: `Exposes the graph as a JSON API (nodes, edges, parameters, skills),
a server-sent event stream of graph changes and Prometheus metrics.
A graph id missing from the store starts as an empty graph.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		port := cfg.HTTP.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}

		eng, cleanup, err := openEngine(cmd, metrics.Hooks())
		if err != nil {
			return err
		}
		defer cleanup()

		g, err := serveGraph(cmd.Context(), eng, args[0])
		if err != nil {
			return err
		}

		srv := httpAdapter.NewServer(eng.NewWorkspace(g),
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})),
		)
		defer srv.Close()

		httpSrv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           srv.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		if quiet, _ := cmd.Flags().GetBool("quiet"); !quiet {
			tui.PrintBanner(cmd.ErrOrStderr(), skillgraph.Version)
		}

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("serving graph", "graph", g.ID, "addr", httpSrv.Addr)
			serverErrors <- httpSrv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
			logger.Info("shutting down", "signal", ctx.Signal())
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := httpSrv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				return httpSrv.Close()
			}
			return nil
		}
	},
}

// serveGraph resolves ref, falling back to a new empty graph with that id.
func serveGraph(ctx context.Context, eng *skillgraph.Engine, ref string) (*graph.Graph, error) {
	g, err := cli.ResolveGraph(ctx, eng, ref)
	if errors.Is(err, domain.ErrGraphNotFound) {
		logger.Info("graph not found, starting empty", "graph", ref)
		return eng.NewGraph(graph.WithID(ref), graph.WithName(ref)), nil
	}
	return g, err
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 0, "Port to listen on (0 uses the configured port)")
	serveCmd.Flags().BoolP("quiet", "q", false, "Skip the startup banner")
}
