package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	otelapi "go.opentelemetry.io/otel"

	"github.com/golovatskygroup/mcp-netlify/internal/audit"
	"github.com/golovatskygroup/mcp-netlify/internal/config"
	"github.com/golovatskygroup/mcp-netlify/internal/logging"
	"github.com/golovatskygroup/mcp-netlify/internal/netlify"
	"github.com/golovatskygroup/mcp-netlify/internal/server"
	"github.com/golovatskygroup/mcp-netlify/internal/telemetry"
	"github.com/golovatskygroup/mcp-netlify/internal/tools"
)

const instrumentationName = "github.com/golovatskygroup/mcp-netlify"

// NewServeCmd creates the "serve" subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve MCP over stdin/stdout",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd, true)
	if err != nil {
		return err
	}
	log := logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)

	d, cleanup, err := newDispatcher(cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(cmdContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := server.New(d, cmd.InOrStdin(), cmd.OutOrStdout(), server.Options{
		Version: cmd.Root().Version,
		Logger:  log,
	})
	return srv.Run(ctx)
}

// newDispatcher wires the client, registry and optional audit/telemetry
// sinks from cfg. cleanup releases whatever was opened.
func newDispatcher(cfg *config.Config, log zerolog.Logger) (*tools.Dispatcher, func(), error) {
	reg, err := tools.NewRegistry()
	if err != nil {
		return nil, nil, fmt.Errorf("build tool registry: %w", err)
	}

	opts := []tools.Option{tools.WithLogger(log)}
	cleanup := func() {}

	if cfg.Audit.Path != "" {
		store, err := audit.Open(cfg.Audit.Path)
		if err != nil {
			return nil, nil, exitError(2, "%v", err)
		}
		opts = append(opts, tools.WithRecorder(store))
		cleanup = func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close audit log")
			}
		}
		log.Info().Str("path", cfg.Audit.Path).Msg("audit log enabled")
	}

	if cfg.Telemetry.Enabled {
		obs, err := telemetry.NewObserver(
			otelapi.GetMeterProvider().Meter(instrumentationName),
			otelapi.GetTracerProvider().Tracer(instrumentationName),
		)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("init telemetry: %w", err)
		}
		opts = append(opts, tools.WithObserver(obs))
	}

	return tools.NewDispatcher(reg, netlify.NewClient(cfg), opts...), cleanup, nil
}

func cmdContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
