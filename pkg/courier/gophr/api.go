package gophr

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// APIClient defines the interface for Gophr commercial API operations.
type APIClient interface {
	// GetQuote prices a prospective job.
	// POST /v1/commercial-api/get-a-quote (form encoded)
	GetQuote(ctx context.Context, req *QuoteRequest) (*QuoteResult, error)

	// CreateConfirmJob creates and confirms a job in one call.
	// POST /v1/commercial-api/create-confirm-job (form encoded)
	CreateConfirmJob(ctx context.Context, req *JobRequest) (*JobResult, error)
}

// ============================================================================
// API Request/Response Types (match Gophr commercial API v1 structure).
// Gophr takes a flat form-url-encoded parameter list, not JSON.
// ============================================================================

// QuoteRequest is the flat parameter list for get-a-quote.
type QuoteRequest struct {
	APIKey               string
	PickupAddress1       string
	PickupCity           string
	PickupPostcode       string
	PickupCountryCode    string
	DeliveryAddress1     string
	DeliveryCity         string
	DeliveryPostcode     string
	DeliveryCountryCode  string
	SizeX                float64
	SizeY                float64
	SizeZ                float64
	Weight               float64
	VehicleType          int
	EarliestPickupTime   string // ISO 8601, optional
	EarliestDeliveryTime string // ISO 8601, optional
}

// Values encodes the request as form parameters.
func (r *QuoteRequest) Values() url.Values {
	v := url.Values{}
	v.Set("api_key", r.APIKey)
	v.Set("pickup_address1", r.PickupAddress1)
	if r.PickupCity != "" {
		v.Set("pickup_city", r.PickupCity)
	}
	v.Set("pickup_postcode", r.PickupPostcode)
	v.Set("pickup_country_code", r.PickupCountryCode)
	v.Set("delivery_address1", r.DeliveryAddress1)
	if r.DeliveryCity != "" {
		v.Set("delivery_city", r.DeliveryCity)
	}
	v.Set("delivery_postcode", r.DeliveryPostcode)
	v.Set("delivery_country_code", r.DeliveryCountryCode)
	v.Set("size_x", formatFloat(r.SizeX))
	v.Set("size_y", formatFloat(r.SizeY))
	v.Set("size_z", formatFloat(r.SizeZ))
	v.Set("weight", formatFloat(r.Weight))
	v.Set("vehicle_type", strconv.Itoa(r.VehicleType))
	if r.EarliestPickupTime != "" {
		v.Set("earliest_pickup_time", r.EarliestPickupTime)
	}
	if r.EarliestDeliveryTime != "" {
		v.Set("earliest_delivery_time", r.EarliestDeliveryTime)
	}
	return v
}

// JobRequest is the flat parameter list for create-confirm-job.
type JobRequest struct {
	QuoteRequest

	ExternalID          string
	ReferenceNumber     string
	PickupPersonName    string
	PickupMobileNumber  string
	PickupCompanyName   string
	PickupEmail         string
	PickupTips          string
	DeliveryPersonName  string
	DeliveryMobileNumber string
	DeliveryCompanyName string
	DeliveryEmail       string
	DeliveryTips        string
	PickupDeadline      string // ISO 8601, optional
	DropoffDeadline     string // ISO 8601, optional
}

// Values encodes the request as form parameters.
func (r *JobRequest) Values() url.Values {
	v := r.QuoteRequest.Values()
	v.Set("external_id", r.ExternalID)
	v.Set("reference_number", r.ReferenceNumber)
	v.Set("pickup_person_name", r.PickupPersonName)
	v.Set("pickup_mobile_number", r.PickupMobileNumber)
	v.Set("pickup_company_name", r.PickupCompanyName)
	v.Set("pickup_email", r.PickupEmail)
	v.Set("pickup_tips_how_to_find", r.PickupTips)
	v.Set("delivery_person_name", r.DeliveryPersonName)
	v.Set("delivery_mobile_number", r.DeliveryMobileNumber)
	v.Set("delivery_company_name", r.DeliveryCompanyName)
	v.Set("delivery_email", r.DeliveryEmail)
	v.Set("delivery_tips_how_to_find", r.DeliveryTips)
	if r.PickupDeadline != "" {
		v.Set("pickup_deadline", r.PickupDeadline)
	}
	if r.DropoffDeadline != "" {
		v.Set("dropoff_deadline", r.DropoffDeadline)
	}
	return v
}

// QuoteResult is the data block of a successful get-a-quote response.
type QuoteResult struct {
	PriceNet    float64 `json:"price_net"`
	PriceGross  float64 `json:"price_gross"`
	DeliveryETA string  `json:"delivery_eta"`
}

// JobResult is the data block of a successful create-confirm-job response.
type JobResult struct {
	JobID            string  `json:"job_id"`
	PublicTrackerURL string  `json:"public_tracker_url"`
	PriceGross       float64 `json:"price_gross"`
	PickupETA        string  `json:"pickup_eta"`
	DeliveryETA      string  `json:"delivery_eta"`
}

// Envelope is the common Gophr response wrapper. Business errors come back
// inside a 200 response with success=false.
type Envelope struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error,omitempty"`
}

// APIError represents an error from the Gophr API.
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error codes Gophr reports for caller-fixable failures.
const (
	ErrCodeMaxDistanceExceeded    = "ERROR_MAX_DISTANCE_EXCEEDED"
	ErrCodeSameLatLng             = "ERROR_SAME_LAT_LNG"
	ErrCodeInvalidGrant           = "INVALID_GRANT"
	ErrCodeDistance               = "ERROR_DISTANCE"
	ErrCodePhoneNumber            = "ERROR_PHONE_NUMBER"
	ErrCodeDatetimeIncorrect      = "ERROR_DATETIME_INCORRECT"
	ErrCodePickupAddressMissing   = "ERROR_PICKUP_ADDRESS_MISSING"
	ErrCodeDeliveryAddressMissing = "ERROR_DELIVERY_ADDRESS_MISSING"
)

// validationCodes is the native-error table consulted once per failure in
// place of branching on each code inline.
var validationCodes = map[string]bool{
	ErrCodeMaxDistanceExceeded:    true,
	ErrCodeSameLatLng:             true,
	ErrCodeInvalidGrant:           true,
	ErrCodeDistance:               true,
	ErrCodePhoneNumber:            true,
	ErrCodeDatetimeIncorrect:      true,
	ErrCodePickupAddressMissing:   true,
	ErrCodeDeliveryAddressMissing: true,
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
