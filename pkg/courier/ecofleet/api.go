package ecofleet

import (
	"context"
	"fmt"
)

// APIClient defines the interface for Ecofleet API operations.
type APIClient interface {
	// GetQuote prices a prospective order against the rate card.
	// POST /api/v1/quote
	GetQuote(ctx context.Context, req *OrderPayload) (*QuoteResult, error)

	// CreateOrder submits an order.
	// POST /api/v1/order
	CreateOrder(ctx context.Context, req *OrderPayload) (*OrderResult, error)
}

// ============================================================================
// API Request/Response Types (match Ecofleet API v1 structure)
// ============================================================================

// OrderPayload is the order tree Ecofleet takes for both quoting and
// creation.
type OrderPayload struct {
	Pickup   Location   `json:"pickup"`
	Drops    []Location `json:"drops"`
	Parcel   Parcel     `json:"parcel"`
	Schedule Schedule   `json:"schedule"`
}

// Location is a pickup or drop endpoint.
type Location struct {
	Name         string `json:"name"`
	CompanyName  string `json:"company_name,omitempty"`
	AddressLine1 string `json:"address_line1"`
	City         string `json:"city"`
	Postal       string `json:"postal"`
	Country      string `json:"country"`
	Phone        string `json:"phone"`
	Email        string `json:"email,omitempty"`
	Comment      string `json:"comment,omitempty"`
}

// Parcel describes what is being carried.
type Parcel struct {
	Weight float64 `json:"weight"`
	Type   string  `json:"type"`
}

// Schedule carries the delivery urgency and optional unix-second windows.
type Schedule struct {
	Type          string `json:"type"`
	PickupWindow  int64  `json:"pickupWindow,omitempty"`
	DropoffWindow int64  `json:"dropoffWindow,omitempty"`
}

// QuoteResult is the rate-card response for a prospective order.
type QuoteResult struct {
	RateCard RateCard `json:"rate_card"`
	ETA      string   `json:"eta,omitempty"`
}

// OrderResult is the order creation response.
type OrderResult struct {
	ID       string   `json:"id"`
	Status   string   `json:"status"`
	RateCard RateCard `json:"rate_card"`
}

// RateCard is Ecofleet's pricing block.
type RateCard struct {
	MinimumCost float64 `json:"minimum_cost"`
	CostPerMile float64 `json:"cost_per_mile,omitempty"`
}

// APIError represents an error from the Ecofleet API.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d): %s", e.Code, e.StatusCode, e.Message)
}
