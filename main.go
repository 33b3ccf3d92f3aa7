package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/seconds-app/courier-bridge/internal/broker"
	"github.com/seconds-app/courier-bridge/internal/server"
	"github.com/seconds-app/courier-bridge/internal/store/memory"
	"github.com/seconds-app/courier-bridge/internal/telemetry"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
)

var version = "0.0.1"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "courier-bridge",
	Short:   "Seconds Courier Bridge - Multi-provider delivery brokering service",
	Version: version,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	// Load configuration
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Initialize telemetry
	logger, err := initLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	tracerShutdown, err := initTracer(ctx, cfg)
	if err != nil {
		logger.Warn("Failed to initialize tracer", zap.Error(err))
	} else {
		defer tracerShutdown(ctx)
	}

	// Initialize provider registry and brokering pipeline
	registry := initCourierRegistry(cfg, logger)
	metrics := telemetry.NewMetrics()
	store := memory.New()
	tracer := otel.GetTracerProvider().Tracer(cfg.ServiceName)

	orchestrator := broker.NewOrchestrator(registry, store, nil, logger, tracer)
	reconciler := broker.NewReconciler(registry, store,
		&broker.LoggingBilling{Logger: logger},
		&broker.LoggingNotifier{Logger: logger},
		logger, metrics)

	logger.Info("Starting Seconds Courier Bridge",
		zap.Int("port", cfg.Port),
		zap.String("version", cfg.Version),
		zap.Strings("providers", registry.Names()),
	)

	// Start HTTP server
	srv := server.New(server.Config{
		Port:        cfg.Port,
		GophrAPIKey: cfg.GophrAPIKey,
	}, registry, orchestrator, reconciler, logger, metrics)
	if err := srv.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
