package streetstream

import (
	"context"
	"fmt"
)

// APIClient defines the interface for StreetStream API operations. Every
// operation authenticates itself; StreetStream has no long-lived API key,
// only short-lived session tokens issued per login.
type APIClient interface {
	// GetEstimate prices a prospective point-to-point job.
	// GET /api/estimate
	GetEstimate(ctx context.Context, req *EstimateRequest) (*EstimateResult, error)

	// CreateJob submits a point-to-point job.
	// POST /api/job/pointtopoint
	CreateJob(ctx context.Context, req *JobRequest) (*JobResult, error)
}

// ============================================================================
// API Request/Response Types (match StreetStream API structure)
// ============================================================================

// EstimateRequest is the query parameter set for the estimate endpoint.
type EstimateRequest struct {
	StartPostcode string
	EndPostcode   string
	PackageTypeID string
}

// EstimateResult is the estimate response body.
type EstimateResult struct {
	EstimatedCostVatExclusive float64 `json:"estimatedCostVatExclusive"`
	EstimatedCostVatInclusive float64 `json:"estimatedCostVatInclusive"`
}

// Offer acceptance strategies StreetStream supports for courier assignment.
const (
	OfferAcceptClosest      = "AUTO_CLOSEST_COURIER_TO_ME"
	OfferAcceptHighestRated = "AUTO_HIGHEST_RATED_COURIER"
)

// JobRequest is the point-to-point job creation body.
type JobRequest struct {
	OfferAcceptanceStrategy    string     `json:"offerAcceptanceStrategy"`
	PackageTypeID              string     `json:"packageTypeId"`
	JobLabel                   string     `json:"jobLabel"`
	InsuranceCover             string     `json:"insuranceCover"`
	SubmitForQuotesImmediately bool       `json:"submitForQuotesImmediately"`
	PickUp                     JobPickUp  `json:"pickUp"`
	DropOff                    JobDropOff `json:"dropOff"`
}

// JobPickUp is the pickup location block.
type JobPickUp struct {
	ContactNumber string `json:"contactNumber"`
	ContactName   string `json:"contactName"`
	AddressOne    string `json:"addressOne"`
	City          string `json:"city"`
	Postcode      string `json:"postcode"`
	PickUpNotes   string `json:"pickUpNotes,omitempty"`
	PickUpFrom    string `json:"pickUpFrom"`
	PickUpTo      string `json:"pickUpTo"`
}

// JobDropOff is the dropoff location block.
type JobDropOff struct {
	ContactNumber string `json:"contactNumber"`
	ContactName   string `json:"contactName"`
	AddressOne    string `json:"addressOne"`
	City          string `json:"city"`
	Postcode      string `json:"postcode"`
	DeliveryNotes string `json:"deliveryNotes,omitempty"`
	ClientTag     string `json:"clientTag,omitempty"`
	DropOffFrom   string `json:"dropOffFrom"`
	DropOffTo     string `json:"dropOffTo"`
}

// JobResult is the job creation response body. StreetStream has no public
// tracking URL and quotes route time rather than an absolute ETA.
type JobResult struct {
	ID                        string    `json:"id"`
	Status                    string    `json:"status"`
	JobCharge                 JobCharge `json:"jobCharge"`
	EstimatedRouteTimeSeconds int64     `json:"estimatedRouteTimeSeconds"`
}

// JobCharge is the payable block of a created job.
type JobCharge struct {
	TotalPayableWithVat    float64 `json:"totalPayableWithVat"`
	TotalPayableWithoutVat float64 `json:"totalPayableWithoutVat"`
}

// APIError represents an error from the StreetStream API.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (status %d): %s", e.Code, e.StatusCode, e.Message)
}

// Error codes.
const (
	ErrCodeAuthFailed = "AUTHENTICATION_FAILED"
	ErrCodeBadRequest = "BAD_REQUEST"
)
