package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/metaschema/registry/internal/api"
	"github.com/metaschema/registry/internal/config"
	"github.com/metaschema/registry/internal/logger"
	"github.com/metaschema/registry/internal/metrics"
	"github.com/metaschema/registry/internal/tracing"
	"github.com/metaschema/registry/internal/version"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

type serveFlags struct {
	httpAddr        string
	grpcAddr        string
	metricsAddr     string
	noMetrics       bool
	shutdownTimeout time.Duration
}

func newServeCommand(g *globalFlags) *cobra.Command {
	f := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP, gRPC health and metrics servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, g, f)
		},
	}

	cmd.Flags().StringVar(&f.httpAddr, "http-addr", "", "HTTP listen address")
	cmd.Flags().StringVar(&f.grpcAddr, "grpc-addr", "", "gRPC listen address")
	cmd.Flags().StringVar(&f.metricsAddr, "metrics-addr", "", "metrics listen address")
	cmd.Flags().BoolVar(&f.noMetrics, "no-metrics", false, "disable the metrics server")
	cmd.Flags().DurationVar(&f.shutdownTimeout, "shutdown-timeout", 10*time.Second, "graceful shutdown timeout")

	return cmd
}

func (f *serveFlags) apply(cfg *config.Config) {
	if f.httpAddr != "" {
		cfg.Server.HTTPAddr = f.httpAddr
	}
	if f.grpcAddr != "" {
		cfg.Server.GRPCAddr = f.grpcAddr
	}
	if f.metricsAddr != "" {
		cfg.Metrics.Addr = f.metricsAddr
	}
	if f.noMetrics {
		cfg.Metrics.Enabled = false
	}
}

// runServe starts every server and blocks until ctx is done
func runServe(ctx context.Context, g *globalFlags, f *serveFlags) error {
	cfg, err := loadConfig(g, f.apply)
	if err != nil {
		return err
	}

	if err := logger.Init(cfg.LoggerConfig()); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.WithComponent("main")
	log.Info().Str("version", version.Get().Version).Msg("Starting metaregistry")

	provider, err := tracing.NewProvider(cfg.TracingConfig())
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	var (
		recorders     *metrics.RegistryMetrics
		metricsServer *metrics.Server
	)
	if cfg.Metrics.Enabled {
		collector := metrics.NewCollector()
		recorders = metrics.NewRegistryMetrics(collector)
		metricsServer = metrics.NewServer(cfg.Metrics.Addr, cfg.Metrics.Path, collector)
	}

	reg, err := newRegistry(cfg, recorders)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}

	server := api.NewServer(api.Config{
		HTTPAddr:     cfg.Server.HTTPAddr,
		GRPCAddr:     cfg.Server.GRPCAddr,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
	}, reg, recorders)

	if metricsServer != nil {
		if err := metricsServer.Start(ctx); err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
	}
	if err := server.Start(ctx); err != nil {
		shutdown(log, f.shutdownTimeout, metricsServer, provider, nil)
		return fmt.Errorf("failed to start API server: %w", err)
	}

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdown(log, f.shutdownTimeout, metricsServer, provider, server)

	return nil
}

func shutdown(log zerolog.Logger, timeout time.Duration, metricsServer *metrics.Server, provider *tracing.Provider, server *api.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if server != nil {
		if err := server.Stop(ctx); err != nil {
			log.Warn().Err(err).Msg("Error stopping API server")
		}
	}
	if metricsServer != nil {
		if err := metricsServer.Stop(ctx); err != nil {
			log.Warn().Err(err).Msg("Error stopping metrics server")
		}
	}
	if err := provider.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("Error shutting down tracing")
	}
}
