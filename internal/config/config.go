package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.opentelemetry.io/otel/attribute"
)

// Config holds all configuration for the service.
type Config struct {
	// Server
	Port         int           `envconfig:"PORT" default:"80"`
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"info"`
	QuoteTimeout time.Duration `envconfig:"QUOTE_TIMEOUT" default:"10s"`

	// Stuart
	StuartAPIKey  string `envconfig:"STUART_API_KEY"`
	StuartBaseURL string `envconfig:"STUART_BASE_URL" default:"https://api.stuart.com"`
	StuartEnabled bool   `envconfig:"STUART_ENABLED" default:"true"`
	StuartUseMock bool   `envconfig:"STUART_USE_MOCK" default:"false"`

	// Gophr
	GophrAPIKey  string `envconfig:"GOPHR_API_KEY"`
	GophrBaseURL string `envconfig:"GOPHR_BASE_URL" default:"https://api.gophr.com"`
	GophrEnabled bool   `envconfig:"GOPHR_ENABLED" default:"true"`
	GophrUseMock bool   `envconfig:"GOPHR_USE_MOCK" default:"false"`

	// StreetStream
	StreetStreamEmail    string `envconfig:"STREET_STREAM_EMAIL"`
	StreetStreamPassword string `envconfig:"STREET_STREAM_PASSWORD"`
	StreetStreamBaseURL  string `envconfig:"STREET_STREAM_BASE_URL" default:"https://api.streetstream.co.uk"`
	StreetStreamEnabled  bool   `envconfig:"STREET_STREAM_ENABLED" default:"true"`
	StreetStreamUseMock  bool   `envconfig:"STREET_STREAM_USE_MOCK" default:"false"`

	// Ecofleet
	EcofleetAPIKey  string `envconfig:"ECOFLEET_API_KEY"`
	EcofleetBaseURL string `envconfig:"ECOFLEET_BASE_URL" default:"https://api.ecofleet.co.uk"`
	EcofleetEnabled bool   `envconfig:"ECOFLEET_ENABLED" default:"true"`
	EcofleetUseMock bool   `envconfig:"ECOFLEET_USE_MOCK" default:"false"`

	// Telemetry
	OTELEnabled  bool   `envconfig:"OTEL_ENABLED" default:"true"`
	OTELEndpoint string `envconfig:"OTEL_ENDPOINT" default:"http://jaeger-collector.observability.svc.cluster.local:4318"`
	ServiceName  string `envconfig:"SERVICE_NAME" default:"courier-bridge"`
	Version      string `envconfig:"SERVICE_VERSION" default:"0.0.1"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return &cfg, nil
}

// Attributes returns OpenTelemetry attributes for this configuration.
func (c *Config) Attributes() []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("service.name", c.ServiceName),
		attribute.String("service.version", c.Version),
		attribute.Bool("stuart.enabled", c.StuartEnabled),
		attribute.Bool("gophr.enabled", c.GophrEnabled),
		attribute.Bool("street_stream.enabled", c.StreetStreamEnabled),
		attribute.Bool("ecofleet.enabled", c.EcofleetEnabled),
	}
}
