// Package stuart provides integration with the Stuart courier API.
package stuart

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/seconds-app/courier-bridge/pkg/courier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const providerName = "stuart"

// statusTable maps Stuart's native job and delivery status tokens to the
// canonical lifecycle.
var statusTable = courier.StatusMap{
	// job statuses
	"new":         courier.StatusNew,
	"searching":   courier.StatusPending,
	"in_progress": courier.StatusDispatching,
	"finished":    courier.StatusCompleted,
	"canceled":    courier.StatusCancelled,
	// delivery statuses
	"pending":            courier.StatusPending,
	"picking":            courier.StatusDispatching,
	"waiting_at_pickup":  courier.StatusDispatching,
	"delivering":         courier.StatusEnRoute,
	"almost_delivering":  courier.StatusEnRoute,
	"waiting_at_dropoff": courier.StatusEnRoute,
	"delivered":          courier.StatusCompleted,
	"cancelled":          courier.StatusCancelled,
}

// Config holds Stuart configuration.
type Config struct {
	APIKey  string
	BaseURL string
	UseMock bool // When true, uses mock API client
}

// Client is the Stuart provider adapter. It implements the courier.Provider
// interface and delegates API calls to the underlying APIClient (mock or
// HTTP).
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new Stuart client. If cfg.UseMock is true, it uses a mock API
// client; otherwise the real HTTP API client.
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

// NewWithAPIClient creates a new Stuart client with a custom API client.
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

// TranslateStatus maps a Stuart status token to the canonical status.
func (c *Client) TranslateStatus(native string) courier.JobStatus {
	return statusTable.Translate(native)
}

// Quote prices a delivery with Stuart. Stuart splits price and ETA across two
// endpoints, so this issues both calls against the same payload.
func (c *Client) Quote(ctx context.Context, req *courier.DeliveryRequest) (*courier.Quote, error) {
	c.logger.Info("Getting Stuart quote",
		zap.String("pickup_postcode", req.Pickup.Address.Postcode),
		zap.String("dropoff_postcode", req.Dropoff.Address.Postcode),
	)

	specs, err := courier.SpecsFor(req.VehicleCode)
	if err != nil {
		return nil, err
	}

	payload := buildJobPayload(courier.NewJobReference(), req, specs)

	pricing, err := c.apiClient.GetPricing(ctx, payload)
	if err != nil {
		c.logger.Error("Stuart API error", zap.Error(err))
		return nil, c.wrapError(err)
	}

	eta, err := c.apiClient.GetETA(ctx, payload)
	if err != nil {
		c.logger.Error("Stuart API error", zap.Error(err))
		return nil, c.wrapError(err)
	}

	now := time.Now()
	etaBase := now
	if req.PickupWindow.Start != nil {
		etaBase = *req.PickupWindow.Start
	}
	dropoffETA := etaBase.Add(time.Duration(eta.ETASeconds) * time.Second)

	return &courier.Quote{
		ID:         courier.NewQuoteID(),
		ProviderID: providerName,
		PriceExVAT: courier.MoneyFromFloat(pricing.Amount, pricing.Currency),
		DropoffETA: &dropoffETA,
		CreatedAt:  now,
		ExpireTime: now.Add(courier.QuoteTTL),
	}, nil
}

// CreateJob submits a job to Stuart.
func (c *Client) CreateJob(ctx context.Context, req *courier.CreateJobRequest) (*courier.JobHandle, error) {
	c.logger.Info("Creating Stuart job",
		zap.String("reference", req.Reference),
	)

	payload := buildJobPayload(req.Reference, req.Request, req.Vehicle)

	resp, err := c.apiClient.CreateJob(ctx, payload)
	if err != nil {
		c.logger.Error("Stuart API error", zap.Error(err))
		return nil, c.wrapError(err)
	}

	trackingURL := ""
	if len(resp.Deliveries) > 0 {
		trackingURL = resp.Deliveries[0].TrackingURL
	}

	return &courier.JobHandle{
		ProviderJobID: strconv.FormatInt(resp.ID, 10),
		TrackingURL:   trackingURL,
		DeliveryFee:   courier.MoneyFromFloat(resp.Pricing.PriceTaxIncluded, resp.Pricing.Currency),
		PickupAt:      parseTime(resp.PickupAt),
		DropoffAt:     parseTime(resp.DropoffAt),
	}, nil
}

// ============================================================================
// Conversion helpers: courier models -> API models
// ============================================================================

func buildJobPayload(reference string, req *courier.DeliveryRequest, specs courier.VehicleSpec) *JobPayload {
	job := JobDetails{
		AssignmentCode: courier.NewAssignmentCode(),
		Pickups: []Pickup{
			{
				Address: req.Pickup.Address.FullAddress,
				Comment: req.Pickup.Instructions,
				Contact: contactToAPI(req.Pickup.Contact),
			},
		},
		Dropoffs: []Dropoff{
			{
				PackageType:        specs.StuartPackageType,
				PackageDescription: req.PackageDescription,
				ClientReference:    reference,
				Address:            req.Dropoff.Address.FullAddress,
				Comment:            req.Dropoff.Instructions,
				Contact:            contactToAPI(req.Dropoff.Contact),
			},
		},
	}

	if req.PickupWindow.Start != nil {
		job.PickupAt = req.PickupWindow.Start.Format(time.RFC3339)
	}
	if req.DropoffWindow.Start != nil {
		job.Dropoffs[0].TimeWindowStart = req.DropoffWindow.Start.Format(time.RFC3339)
	}
	if req.DropoffWindow.End != nil {
		job.Dropoffs[0].TimeWindowEnd = req.DropoffWindow.End.Format(time.RFC3339)
	}

	return &JobPayload{Job: job}
}

func contactToAPI(c courier.Contact) Contact {
	return Contact{
		Firstname: c.FirstName,
		Lastname:  c.LastName,
		Phone:     c.Phone,
		Email:     c.Email,
		Company:   c.Company,
	}
}

// wrapError maps an API error into the canonical taxonomy. Stuart signals
// validation failures as 422 RECORD_INVALID or an invalid grant; anything
// else at the HTTP layer is treated as transient.
func (c *Client) wrapError(err error) error {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return courier.NewProviderError(providerName, "NETWORK", err.Error()).
			WithCause(err).
			WithRetryable(true)
	}

	retryable := apiErr.StatusCode >= 500 || apiErr.StatusCode == 0
	message := apiErr.Message
	if apiErr.ErrorCode == ErrCodeRecordInvalid {
		for field, msgs := range apiErr.Data {
			if len(msgs) > 0 {
				message = fmt.Sprintf("%s: %s", field, msgs[0])
				break
			}
		}
	}

	return courier.NewProviderError(providerName, apiErr.ErrorCode, message).
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
