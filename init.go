package main

import (
	"context"

	"github.com/seconds-app/courier-bridge/internal/config"
	"github.com/seconds-app/courier-bridge/internal/telemetry"
	"github.com/seconds-app/courier-bridge/pkg/courier"
	"github.com/seconds-app/courier-bridge/pkg/courier/ecofleet"
	"github.com/seconds-app/courier-bridge/pkg/courier/gophr"
	"github.com/seconds-app/courier-bridge/pkg/courier/streetstream"
	"github.com/seconds-app/courier-bridge/pkg/courier/stuart"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel"
)

func loadConfig() (*config.Config, error) {
	return config.Load()
}

func initLogger(level string) (*otelzap.Logger, error) {
	return telemetry.NewLogger(level)
}

func initTracer(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	if !cfg.OTELEnabled {
		return func(context.Context) error { return nil }, nil
	}

	_, shutdown, err := telemetry.InitTracer(ctx, cfg.OTELEndpoint, cfg.ServiceName, cfg.Version)
	return shutdown, err
}

func initCourierRegistry(cfg *config.Config, logger *otelzap.Logger) *courier.Registry {
	registry := courier.NewRegistry(logger)
	registry.SetQuoteTimeout(cfg.QuoteTimeout)

	tracer := otel.GetTracerProvider().Tracer(cfg.ServiceName)

	// Register enabled providers
	if cfg.StuartEnabled {
		registry.Register(stuart.New(stuart.Config{
			APIKey:  cfg.StuartAPIKey,
			BaseURL: cfg.StuartBaseURL,
			UseMock: cfg.StuartUseMock,
		}, logger, tracer))
	}

	if cfg.GophrEnabled {
		registry.Register(gophr.New(gophr.Config{
			APIKey:  cfg.GophrAPIKey,
			BaseURL: cfg.GophrBaseURL,
			UseMock: cfg.GophrUseMock,
		}, logger, tracer))
	}

	if cfg.StreetStreamEnabled {
		registry.Register(streetstream.New(streetstream.Config{
			Email:    cfg.StreetStreamEmail,
			Password: cfg.StreetStreamPassword,
			BaseURL:  cfg.StreetStreamBaseURL,
			UseMock:  cfg.StreetStreamUseMock,
		}, logger, tracer))
	}

	if cfg.EcofleetEnabled {
		registry.Register(ecofleet.New(ecofleet.Config{
			APIKey:  cfg.EcofleetAPIKey,
			BaseURL: cfg.EcofleetBaseURL,
			UseMock: cfg.EcofleetUseMock,
		}, logger, tracer))
	}

	return registry
}
