package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/aretw0/skillgraph"
	"github.com/aretw0/skillgraph/internal/cli"
	"github.com/aretw0/skillgraph/internal/config"
	"github.com/aretw0/skillgraph/internal/logging"
	"github.com/aretw0/skillgraph/pkg/domain"
	"github.com/aretw0/skillgraph/pkg/observability"
)

var (
	cfg    *config.Config
	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "skillgraph",
	Short: "Skillgraph runs node-graph skills frame by frame",
	Long: `Skillgraph loads node graphs (entry, wait, log, parameter nodes and more)
and executes them as skills: every tick advances each running skill by one frame.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		applyFlags(cmd, loaded)
		if err := loaded.Validate(); err != nil {
			return err
		}

		level, err := logging.ParseLevel(loaded.Log.Level)
		if err != nil {
			return err
		}
		l, err := logging.NewWithFormat(loaded.Log.Format, level)
		if err != nil {
			return err
		}
		cfg, logger = loaded, l
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "YAML configuration file")
	pf.String("log-level", "", "Log level (debug, info, warn, error)")
	pf.String("log-format", "", "Log format (text, json)")
	pf.String("store", "", "Graph store backend (memory, file, redis, sqlite, postgres)")
	pf.String("dir", "", "Directory of the file store")
	pf.Bool("trace", false, "Print OpenTelemetry spans of skills and nodes to stderr")
}

// applyFlags lets explicitly set flags win over file and environment.
func applyFlags(cmd *cobra.Command, c *config.Config) {
	flags := cmd.Flags()
	str := func(name string, dst *string) {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}
	str("log-level", &c.Log.Level)
	str("log-format", &c.Log.Format)
	str("store", &c.Store.Backend)
	str("dir", &c.Store.Dir)
}

// openEngine builds the engine for a command. extra hooks are combined with
// the logging hooks and, with --trace, the tracing hooks. The returned
// cleanup flushes spans and closes the store.
func openEngine(cmd *cobra.Command, extra ...domain.SkillHooks) (*skillgraph.Engine, func(), error) {
	ctx := cmd.Context()
	hooks := append([]domain.SkillHooks{observability.LogHooks(logger)}, extra...)

	shutdown := func(context.Context) error { return nil }
	if trace, _ := cmd.Flags().GetBool("trace"); trace {
		exp, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, nil, fmt.Errorf("trace exporter: %w", err)
		}
		tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exp))
		hooks = append(hooks, observability.NewTracing(tp).Hooks())
		shutdown = tp.Shutdown
	}

	eng, backend, err := cli.NewEngine(ctx, cfg, logger, observability.Combine(hooks...))
	if err != nil {
		_ = shutdown(context.Background())
		return nil, nil, err
	}
	cleanup := func() {
		if err := shutdown(context.Background()); err != nil {
			logger.Warn("trace shutdown", "err", err)
		}
		backend.Close()
	}
	return eng, cleanup, nil
}
