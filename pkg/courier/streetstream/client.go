// Package streetstream provides integration with the StreetStream courier
// API.
package streetstream

import (
	"context"
	"errors"
	"time"

	"github.com/seconds-app/courier-bridge/pkg/courier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const providerName = "street_stream"

// statusTable maps StreetStream's native status tokens to the canonical
// lifecycle.
var statusTable = courier.StatusMap{
	"NOT_STARTED":             courier.StatusNew,
	"OFFERS_REQUESTED":        courier.StatusPending,
	"OFFER_ACCEPTED":          courier.StatusDispatching,
	"ARRIVED_AT_COLLECTION":   courier.StatusDispatching,
	"COLLECTED":               courier.StatusEnRoute,
	"ARRIVED_AT_DELIVERY":     courier.StatusEnRoute,
	"COMPLETED_SUCCESSFULLY":  courier.StatusCompleted,
	"ADMIN_CANCELLED":         courier.StatusCancelled,
	"NO_RESPONSE":             courier.StatusCancelled,
	"DELIVERY_ATTEMPT_FAILED": courier.StatusCancelled,
}

// Config holds StreetStream configuration.
type Config struct {
	Email    string
	Password string
	BaseURL  string
	UseMock  bool // When true, uses mock API client
}

// Client is the StreetStream provider adapter. It implements the
// courier.Provider interface and delegates API calls to the underlying
// APIClient (mock or HTTP).
type Client struct {
	config    Config
	apiClient APIClient
	logger    *otelzap.Logger
	tracer    trace.Tracer
}

// New creates a new StreetStream client. If cfg.UseMock is true, it uses a
// mock API client; otherwise the real HTTP API client.
func New(cfg Config, logger *otelzap.Logger, tracer trace.Tracer) *Client {
	var apiClient APIClient

	if cfg.UseMock {
		apiClient = NewMockAPIClient()
	} else {
		apiClient = NewHTTPAPIClient(HTTPAPIClientConfig{
			BaseURL:  cfg.BaseURL,
			Email:    cfg.Email,
			Password: cfg.Password,
			Timeout:  30 * time.Second,
		})
	}

	return &Client{
		config:    cfg,
		apiClient: apiClient,
		logger:    logger,
		tracer:    tracer,
	}
}

// NewWithAPIClient creates a new StreetStream client with a custom API
// client. This is useful for injecting mock clients in tests.
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

// TranslateStatus maps a StreetStream status token to the canonical status.
func (c *Client) TranslateStatus(native string) courier.JobStatus {
	return statusTable.Translate(native)
}

// Quote prices a delivery with StreetStream. The estimate endpoint returns
// cost only, so the quote carries no dropoff ETA. StreetStream assigns
// couriers by rating on request, so its quotes are rating capable.
func (c *Client) Quote(ctx context.Context, req *courier.DeliveryRequest) (*courier.Quote, error) {
	c.logger.Info("Getting StreetStream quote",
		zap.String("pickup_postcode", req.Pickup.Address.Postcode),
		zap.String("dropoff_postcode", req.Dropoff.Address.Postcode),
	)

	specs, err := courier.SpecsFor(req.VehicleCode)
	if err != nil {
		return nil, err
	}

	result, err := c.apiClient.GetEstimate(ctx, &EstimateRequest{
		StartPostcode: req.Pickup.Address.Postcode,
		EndPostcode:   req.Dropoff.Address.Postcode,
		PackageTypeID: specs.StreetPackageTypeID,
	})
	if err != nil {
		c.logger.Error("StreetStream API error", zap.Error(err))
		return nil, c.wrapError(err)
	}

	now := time.Now()
	return &courier.Quote{
		ID:            courier.NewQuoteID(),
		ProviderID:    providerName,
		PriceExVAT:    courier.MoneyFromFloat(result.EstimatedCostVatExclusive, "GBP"),
		DropoffETA:    nil,
		CreatedAt:     now,
		ExpireTime:    now.Add(courier.QuoteTTL),
		RatingCapable: true,
	}, nil
}

// CreateJob submits a point-to-point job to StreetStream. A RATING selection
// asks for the highest-rated courier; anything else takes the closest.
func (c *Client) CreateJob(ctx context.Context, req *courier.CreateJobRequest) (*courier.JobHandle, error) {
	c.logger.Info("Creating StreetStream job",
		zap.String("reference", req.Reference),
	)

	result, err := c.apiClient.CreateJob(ctx, buildJobRequest(req))
	if err != nil {
		c.logger.Error("StreetStream API error", zap.Error(err))
		return nil, c.wrapError(err)
	}

	handle := &courier.JobHandle{
		ProviderJobID: result.ID,
		DeliveryFee:   courier.MoneyFromFloat(result.JobCharge.TotalPayableWithVat, "GBP"),
	}
	if req.Request.PickupWindow.Start != nil {
		pickupAt := *req.Request.PickupWindow.Start
		dropoffAt := pickupAt.Add(time.Duration(result.EstimatedRouteTimeSeconds) * time.Second)
		handle.PickupAt = &pickupAt
		handle.DropoffAt = &dropoffAt
	}
	return handle, nil
}

// ============================================================================
// Conversion helpers: courier models -> API models
// ============================================================================

func buildJobRequest(req *courier.CreateJobRequest) *JobRequest {
	acceptance := OfferAcceptClosest
	if req.Strategy == courier.StrategyRating {
		acceptance = OfferAcceptHighestRated
	}

	now := time.Now()
	pickupFrom, pickupTo := windowOrDefault(req.Request.PickupWindow, now)
	dropoffFrom, dropoffTo := windowOrDefault(req.Request.DropoffWindow, now)

	return &JobRequest{
		OfferAcceptanceStrategy:    acceptance,
		PackageTypeID:              req.Vehicle.StreetPackageTypeID,
		JobLabel:                   req.Reference,
		InsuranceCover:             "PERSONAL",
		SubmitForQuotesImmediately: true,
		PickUp: JobPickUp{
			ContactNumber: req.Request.Pickup.Contact.Phone,
			ContactName:   req.Request.Pickup.Contact.FullName(),
			AddressOne:    req.Request.Pickup.Address.FullAddress,
			City:          req.Request.Pickup.Address.City,
			Postcode:      req.Request.Pickup.Address.Postcode,
			PickUpNotes:   req.Request.Pickup.Instructions,
			PickUpFrom:    pickupFrom,
			PickUpTo:      pickupTo,
		},
		DropOff: JobDropOff{
			ContactNumber: req.Request.Dropoff.Contact.Phone,
			ContactName:   req.Request.Dropoff.Contact.FullName(),
			AddressOne:    req.Request.Dropoff.Address.FullAddress,
			City:          req.Request.Dropoff.Address.City,
			Postcode:      req.Request.Dropoff.Address.Postcode,
			DeliveryNotes: req.Request.Dropoff.Instructions,
			ClientTag:     req.Reference,
			DropOffFrom:   dropoffFrom,
			DropOffTo:     dropoffTo,
		},
	}
}

// windowOrDefault renders a window's bounds, defaulting to an immediate
// five-minute span. StreetStream rejects open-ended windows.
func windowOrDefault(w courier.Window, now time.Time) (string, string) {
	from := now
	if w.Start != nil {
		from = *w.Start
	}
	to := from.Add(5 * time.Minute)
	if w.End != nil {
		to = *w.End
	}
	return from.Format(time.RFC3339), to.Format(time.RFC3339)
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

// Ensure Client implements the Provider interface
var _ courier.Provider = (*Client)(nil)
