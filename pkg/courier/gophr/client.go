// Package gophr provides integration with the Gophr courier API.
package gophr

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/seconds-app/courier-bridge/pkg/courier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const providerName = "gophr"

// statusTable maps Gophr's native status tokens to the canonical lifecycle.
var statusTable = courier.StatusMap{
	"new":                courier.StatusNew,
	"pending_acceptance": courier.StatusPending,
	"accepted":           courier.StatusDispatching,
	"at_pickup":          courier.StatusDispatching,
	"en_route":           courier.StatusEnRoute,
	"at_delivery":        courier.StatusEnRoute,
	"completed":          courier.StatusCompleted,
	"cancelled":          courier.StatusCancelled,
}

// Config holds Gophr configuration.
type Config struct {
	APIKey  string
	BaseURL string
	UseMock bool // When true, uses mock API client
}

// Client is the Gophr provider adapter. It implements the courier.Provider
// interface and delegates API calls to the underlying APIClient (mock or
// HTTP).
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new Gophr client. If cfg.UseMock is true, it uses a mock API
// client; otherwise the real HTTP API client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(cfg.BaseURL)
	}

	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// NewWithAPIClient creates a new Gophr client with a custom API client.
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

// TranslateStatus maps a Gophr status token to the canonical status.
func (c *Client) TranslateStatus(native string) courier.JobStatus {
	return statusTable.Translate(native)
}

// Quote prices a delivery with Gophr.
func (c *Client) Quote(ctx context.Context, req *courier.DeliveryRequest) (*courier.Quote, error) {
	c.logger.Info("Getting Gophr quote",
		zap.String("pickup_postcode", req.Pickup.Address.Postcode),
		zap.String("dropoff_postcode", req.Dropoff.Address.Postcode),
	)

	specs, err := courier.SpecsFor(req.VehicleCode)
	if err != nil {
		return nil, err
	}

	result, err := c.apiClient.GetQuote(ctx, buildQuoteRequest(c.config.APIKey, req, specs))
	if err != nil {
		c.logger.Error("Gophr API error", zap.Error(err))
		return nil, c.wrapError(err)
	}

	now := time.Now()
	return &courier.Quote{
		ID:         courier.NewQuoteID(),
		ProviderID: providerName,
		PriceExVAT: courier.MoneyFromFloat(result.PriceNet, "GBP"),
		DropoffETA: parseTime(result.DeliveryETA),
		CreatedAt:  now,
		ExpireTime: now.Add(courier.QuoteTTL),
	}, nil
}

// CreateJob submits a job to Gophr. Gophr creates and confirms in one call,
// with the job reference passed as external_id so webhooks echo it back.
func (c *Client) CreateJob(ctx context.Context, req *courier.CreateJobRequest) (*courier.JobHandle, error) {
	c.logger.Info("Creating Gophr job",
		zap.String("reference", req.Reference),
	)

	result, err := c.apiClient.CreateConfirmJob(ctx, buildJobRequest(c.config.APIKey, req))
	if err != nil {
		c.logger.Error("Gophr API error", zap.Error(err))
		return nil, c.wrapError(err)
	}

	return &courier.JobHandle{
		ProviderJobID: result.JobID,
		TrackingURL:   result.PublicTrackerURL,
		DeliveryFee:   courier.MoneyFromFloat(result.PriceGross, "GBP"),
		PickupAt:      parseTime(result.PickupETA),
		DropoffAt:     parseTime(result.DeliveryETA),
	}, nil
}

// ============================================================================
// Conversion helpers: courier models -> API models
// ============================================================================

func buildQuoteRequest(apiKey string, req *courier.DeliveryRequest, specs courier.VehicleSpec) *QuoteRequest {
	out := &QuoteRequest{
		APIKey:              apiKey,
		PickupAddress1:      req.Pickup.Address.FullAddress,
		PickupCity:          req.Pickup.Address.City,
		PickupPostcode:      req.Pickup.Address.Postcode,
		PickupCountryCode:   req.Pickup.Address.CountryCode,
		DeliveryAddress1:    req.Dropoff.Address.FullAddress,
		DeliveryCity:        req.Dropoff.Address.City,
		DeliveryPostcode:    req.Dropoff.Address.Postcode,
		DeliveryCountryCode: req.Dropoff.Address.CountryCode,
		SizeX:               specs.LengthCm,
		SizeY:               specs.WidthCm,
		SizeZ:               specs.HeightCm,
		Weight:              req.PackageWeightKg,
		VehicleType:         specs.GophrVehicleType,
	}
	if req.PickupWindow.Start != nil {
		out.EarliestPickupTime = req.PickupWindow.Start.Format(time.RFC3339)
	}
	if req.DropoffWindow.Start != nil {
		out.EarliestDeliveryTime = req.DropoffWindow.Start.Format(time.RFC3339)
	}
	return out
}

func buildJobRequest(apiKey string, req *courier.CreateJobRequest) *JobRequest {
	out := &JobRequest{
		QuoteRequest:         *buildQuoteRequest(apiKey, req.Request, req.Vehicle),
		ExternalID:           req.Reference,
		ReferenceNumber:      req.Reference,
		PickupPersonName:     req.Request.Pickup.Contact.FullName(),
		PickupMobileNumber:   req.Request.Pickup.Contact.Phone,
		PickupCompanyName:    req.Request.Pickup.Contact.Company,
		PickupEmail:          req.Request.Pickup.Contact.Email,
		PickupTips:           req.Request.Pickup.Instructions,
		DeliveryPersonName:   req.Request.Dropoff.Contact.FullName(),
		DeliveryMobileNumber: req.Request.Dropoff.Contact.Phone,
		DeliveryCompanyName:  req.Request.Dropoff.Contact.Company,
		DeliveryEmail:        req.Request.Dropoff.Contact.Email,
		DeliveryTips:         req.Request.Dropoff.Instructions,
	}
	if req.Request.PickupWindow.End != nil {
		out.PickupDeadline = req.Request.PickupWindow.End.Format(time.RFC3339)
	}
	if req.Request.DropoffWindow.End != nil {
		out.DropoffDeadline = req.Request.DropoffWindow.End.Format(time.RFC3339)
	}
	return out
}

// wrapError maps an API error into the canonical taxonomy. Gophr returns
// business errors inside 200 responses, so classification runs on the error
// code table rather than the HTTP status.
func (c *Client) wrapError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return courier.NewProviderError(providerName, "NETWORK", err.Error()).
			WithCause(err).
			WithRetryable(true)
	}

	statusCode := apiErr.StatusCode
	retryable := statusCode >= 500 || statusCode == 0
	if validationCodes[apiErr.Code] {
		statusCode = http.StatusBadRequest
		retryable = false
	}

	return courier.NewProviderError(providerName, apiErr.Code, apiErr.Message).
		WithCause(apiErr).
		WithStatusCode(statusCode).
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
