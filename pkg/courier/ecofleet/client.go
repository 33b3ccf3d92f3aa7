// Package ecofleet provides integration with the Ecofleet courier API.
package ecofleet

import (
	"context"
	"errors"
	"time"

	"github.com/seconds-app/courier-bridge/pkg/courier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const providerName = "ecofleet"

// statusTable maps Ecofleet's native status tokens to the canonical
// lifecycle.
var statusTable = courier.StatusMap{
	"pending":            courier.StatusNew,
	"processing":         courier.StatusPending,
	"driving_to_pickup":  courier.StatusDispatching,
	"at_pickup":          courier.StatusDispatching,
	"driving_to_dropoff": courier.StatusEnRoute,
	"at_dropoff":         courier.StatusEnRoute,
	"delivered":          courier.StatusCompleted,
	"canceled":           courier.StatusCancelled,
}

// scheduleTypes maps delivery urgency to Ecofleet schedule types.
var scheduleTypes = map[courier.DeliveryType]string{
	courier.DeliveryOnDemand: "on_demand",
	courier.DeliverySameDay:  "same_day",
	courier.DeliveryNextDay:  "next_day",
}

// Config holds Ecofleet configuration.
type Config struct {
	APIKey  string
	BaseURL string
	UseMock bool // When true, uses mock API client
}

// Client is the Ecofleet provider adapter. It implements the
// courier.Provider interface and delegates API calls to the underlying
// APIClient (mock or HTTP).
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new Ecofleet client. If cfg.UseMock is true, it uses a mock
// API client; otherwise the real HTTP API client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Timeout: 30 * time.Second,
		})
	}

	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// NewWithAPIClient creates a new Ecofleet client with a custom API client.
// This is useful for injecting mock clients in tests.
func NewWithAPIClient(cfg Config, apiClient APIClient, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return providerName
}

// TranslateStatus maps an Ecofleet status token to the canonical status.
func (c *Client) TranslateStatus(native string) courier.JobStatus {
	return statusTable.Translate(native)
}

// Quote prices a delivery against Ecofleet's rate card.
func (c *Client) Quote(ctx context.Context, req *courier.DeliveryRequest) (*courier.Quote, error) {
	c.logger.Info("Getting Ecofleet quote",
		zap.String("pickup_postcode", req.Pickup.Address.Postcode),
		zap.String("dropoff_postcode", req.Dropoff.Address.Postcode),
	)

	specs, err := courier.SpecsFor(req.VehicleCode)
	if err != nil {
		return nil, err
	}

	result, err := c.apiClient.GetQuote(ctx, buildOrderPayload(req, specs))
	if err != nil {
		c.logger.Error("Ecofleet API error", zap.Error(err))
		return nil, c.wrapError(err)
	}

	now := time.Now()
	return &courier.Quote{
		ID:         courier.NewQuoteID(),
		ProviderID: providerName,
		PriceExVAT: courier.MoneyFromFloat(result.RateCard.MinimumCost, "GBP"),
		DropoffETA: parseTime(result.ETA),
		CreatedAt:  now,
		ExpireTime: now.Add(courier.QuoteTTL),
	}, nil
}

// CreateJob submits an order to Ecofleet.
func (c *Client) CreateJob(ctx context.Context, req *courier.CreateJobRequest) (*courier.JobHandle, error) {
	c.logger.Info("Creating Ecofleet order",
		zap.String("reference", req.Reference),
	)

	result, err := c.apiClient.CreateOrder(ctx, buildOrderPayload(req.Request, req.Vehicle))
	if err != nil {
		c.logger.Error("Ecofleet API error", zap.Error(err))
		return nil, c.wrapError(err)
	}

	return &courier.JobHandle{
		ProviderJobID: result.ID,
		DeliveryFee:   courier.MoneyFromFloat(result.RateCard.MinimumCost, "GBP"),
		PickupAt:      req.Request.PickupWindow.Start,
		DropoffAt:     req.Request.DropoffWindow.Start,
	}, nil
}

// ============================================================================
// Conversion helpers: courier models -> API models
// ============================================================================

func buildOrderPayload(req *courier.DeliveryRequest, specs courier.VehicleSpec) *OrderPayload {
	description := req.PackageDescription
	if description == "" {
		description = "[]"
	}

	payload := &OrderPayload{
		Pickup:  locationToAPI(req.Pickup),
		Drops:   []Location{locationToAPI(req.Dropoff)},
		Parcel:  Parcel{Weight: specs.WeightLimitKg, Type: description},
		Schedule: Schedule{
			Type: scheduleTypes[req.DeliveryType],
		},
	}
	if req.PickupWindow.Start != nil {
		payload.Schedule.PickupWindow = req.PickupWindow.Start.Unix()
	}
	if req.DropoffWindow.Start != nil {
		payload.Schedule.DropoffWindow = req.DropoffWindow.Start.Unix()
	}
	return payload
}

func locationToAPI(w courier.Waypoint) Location {
	return Location{
		Name:         w.Contact.FullName(),
		CompanyName:  w.Contact.Company,
		AddressLine1: w.Address.FullAddress,
		City:         w.Address.City,
		Postal:       w.Address.Postcode,
		Country:      "England",
		Phone:        w.Contact.Phone,
		Email:        w.Contact.Email,
		Comment:      w.Instructions,
	}
}

// wrapError maps an API error into the canonical taxonomy.
func (c *Client) wrapError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return courier.NewProviderError(providerName, "NETWORK", err.Error()).
			WithCause(err).
			WithRetryable(true)
	}

	retryable := apiErr.StatusCode >= 500 || apiErr.StatusCode == 0

	return courier.NewProviderError(providerName, apiErr.Code, apiErr.Message).
		WithCause(apiErr).
		WithStatusCode(apiErr.StatusCode).
		WithRetryable(retryable)
}

func parseTime(value string) *time.Time {
	if value == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return nil
	}
	return &t
}

// Ensure Client implements the Provider interface
var _ courier.Provider = (*Client)(nil)
