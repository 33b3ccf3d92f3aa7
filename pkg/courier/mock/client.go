// Package mock provides a mock courier provider for testing.
package mock

import (
	"context"
	"fmt"
	"time"

	"github.com/seconds-app/courier-bridge/pkg/courier"
)

// Client is a mock courier provider for testing. Price, ETA and failure
// behavior are settable so registry and broker tests can stage quote sets.
type Client struct {
	name string

	// PriceExVAT is the price every quote carries.
	PriceExVAT courier.Money
	// ETAIn offsets the quote's dropoff ETA from now. Zero leaves the ETA
	// unset, like providers that do not estimate one.
	ETAIn time.Duration
	// RatingCapable marks quotes as rating capable.
	RatingCapable bool
	// QuoteErr, when set, makes Quote fail.
	QuoteErr error
	// CreateErr, when set, makes CreateJob fail.
	CreateErr error

	// CreateCalls counts CreateJob invocations.
	CreateCalls int
}

// New creates a new mock provider quoting the given price in pence.
func New(name string, pence int64) *Client {
	return &Client{
		name:       name,
		PriceExVAT: courier.Money{Amount: pence, Currency: "GBP"},
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return c.name
}

// TranslateStatus passes native tokens through unchanged.
func (c *Client) TranslateStatus(native string) courier.JobStatus {
	return courier.JobStatus(native)
}

// Quote returns a mock quote.
func (c *Client) Quote(ctx context.Context, req *courier.DeliveryRequest) (*courier.Quote, error) {
	if c.QuoteErr != nil {
		return nil, c.QuoteErr
	}

	now := time.Now()
	quote := &courier.Quote{
		ID:            courier.NewQuoteID(),
		ProviderID:    c.name,
		PriceExVAT:    c.PriceExVAT,
		CreatedAt:     now,
		ExpireTime:    now.Add(courier.QuoteTTL),
		RatingCapable: c.RatingCapable,
	}
	if c.ETAIn != 0 {
		eta := now.Add(c.ETAIn)
		quote.DropoffETA = &eta
	}
	return quote, nil
}

// CreateJob returns a mock job handle.
func (c *Client) CreateJob(ctx context.Context, req *courier.CreateJobRequest) (*courier.JobHandle, error) {
	c.CreateCalls++
	if c.CreateErr != nil {
		return nil, c.CreateErr
	}

	jobID := fmt.Sprintf("%s-job-%d", c.name, time.Now().UnixNano())
	return &courier.JobHandle{
		ProviderJobID: jobID,
		TrackingURL:   fmt.Sprintf("https://track.%s.mock/%s", c.name, jobID),
		DeliveryFee:   c.PriceExVAT,
	}, nil
}

// Ensure Client implements the Provider interface
var _ courier.Provider = (*Client)(nil)
