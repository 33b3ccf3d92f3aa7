package courier

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// JobStatus represents the canonical job lifecycle status, independent of any
// provider's own vocabulary.
type JobStatus string

const (
	StatusNew         JobStatus = "NEW"
	StatusPending     JobStatus = "PENDING"
	StatusDispatching JobStatus = "DISPATCHING"
	StatusEnRoute     JobStatus = "EN_ROUTE"
	StatusCompleted   JobStatus = "COMPLETED"
	StatusCancelled   JobStatus = "CANCELLED"
)

// Terminal reports whether no further status transition is allowed.
func (s JobStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// StatusMap maps a provider's native status token set to canonical statuses.
// Read-only after initialization.
type StatusMap map[string]JobStatus

// Translate returns the canonical status for a native token. Unmapped tokens
// pass through unchanged so unknown future provider states stay visible
// instead of being dropped.
func (m StatusMap) Translate(native string) JobStatus {
	if s, ok := m[native]; ok {
		return s
	}
	return JobStatus(native)
}

// DeliveryType tags how urgently a delivery must happen.
type DeliveryType string

const (
	DeliveryOnDemand DeliveryType = "ON_DEMAND"
	DeliverySameDay  DeliveryType = "SAME_DAY"
	DeliveryNextDay  DeliveryType = "NEXT_DAY"
)

// SelectionStrategy names a quote-selection policy.
type SelectionStrategy string

const (
	StrategyPrice  SelectionStrategy = "PRICE"
	StrategyETA    SelectionStrategy = "ETA"
	StrategyRating SelectionStrategy = "RATING"
)

// Money represents a monetary amount in minor units (pence, cents).
type Money struct {
	Amount   int64
	Currency string
}

// MoneyFromFloat converts a major-unit amount (e.g. 9.75) to Money.
func MoneyFromFloat(amount float64, currency string) Money {
	return Money{Amount: int64(math.Round(amount * 100)), Currency: currency}
}

// Float returns the amount in major units.
func (m Money) Float() float64 {
	return float64(m.Amount) / 100
}

func (m Money) String() string {
	return fmt.Sprintf("%.2f %s", m.Float(), m.Currency)
}

// Address represents a pickup or dropoff address.
type Address struct {
	FullAddress string
	Street      string
	City        string
	Postcode    string
	CountryCode string // ISO 3166-1 alpha-2, e.g. "GB"
}

// Contact represents the person at a pickup or dropoff point.
type Contact struct {
	FirstName string
	LastName  string
	Company   string
	Phone     string
	Email     string
}

// FullName joins first and last name for providers that take a single field.
func (c Contact) FullName() string {
	return c.FirstName + " " + c.LastName
}

// Waypoint is one leg endpoint of a delivery.
type Waypoint struct {
	Address      Address
	Contact      Contact
	Instructions string
}

// Window is an optional requested time window.
type Window struct {
	Start *time.Time
	End   *time.Time
}

// DeliveryRequest is the canonical, provider-independent delivery request.
// Transient; constructed per call, never persisted directly.
type DeliveryRequest struct {
	Pickup             Waypoint
	Dropoff            Waypoint
	PackageDescription string
	PackageWeightKg    float64
	ItemsCount         int
	PickupWindow       Window
	DropoffWindow      Window
	DeliveryType       DeliveryType
	VehicleCode        VehicleCode
}

// Quote is a priced, time-bounded offer from one provider. Immutable once
// produced; comparable across providers only because every adapter normalizes
// to the same currency and VAT-exclusive price.
type Quote struct {
	ID         string
	ProviderID string
	PriceExVAT Money
	DropoffETA *time.Time // nil when the provider does not estimate one
	CreatedAt  time.Time
	ExpireTime time.Time

	// RatingCapable marks quotes from providers that accept a
	// courier-rating driver-assignment hint at job creation.
	RatingCapable bool
}

// QuoteTTL is how long a quote may be used to create a job.
const QuoteTTL = 5 * time.Minute

// NewQuoteID returns a fresh quote identifier.
func NewQuoteID() string {
	return "quote_" + uuid.NewString()
}

// Expired reports whether the quote may no longer be used to create a job.
func (q *Quote) Expired(now time.Time) bool {
	return now.After(q.ExpireTime)
}

// CreateJobRequest carries everything an adapter needs to submit a job.
type CreateJobRequest struct {
	Reference string // client reference shared with the provider
	Request   *DeliveryRequest
	Quote     *Quote            // winning quote, when the provider consumes it
	Strategy  SelectionStrategy // forwarded to providers with assignment hints
	Vehicle   VehicleSpec
}

// JobHandle is a provider's acknowledgement of a created job.
type JobHandle struct {
	ProviderJobID string
	TrackingURL   string
	DeliveryFee   Money
	PickupAt      *time.Time
	DropoffAt     *time.Time
}

// DriverInfo is the courier assigned to a job, as reported by the provider.
type DriverInfo struct {
	Name      string
	Phone     string
	Transport string
}

// JobSpecification describes what is being delivered and where.
type JobSpecification struct {
	OrderNumber  string
	Description  string
	ItemsCount   int
	Pickup       Waypoint
	Dropoff      Waypoint
	PickupETA    *time.Time
	DropoffETA   *time.Time
	DeliveryType DeliveryType
	VehicleCode  VehicleCode
}

// SelectedConfiguration records the winning provider and, for audit and
// dispute resolution, the entire quote set it was chosen from.
type SelectedConfiguration struct {
	ProviderID     string
	ProviderJobID  string
	WinningQuoteID string
	DeliveryFee    Money
	TrackingURL    string
	Quotes         []*Quote
	CreatedAt      time.Time
}

// Job is the aggregate root for a brokered delivery.
type Job struct {
	ID            string
	Reference     string
	Status        JobStatus
	ClientID      string
	CustomerRef   string // billing customer reference
	PaymentRef    string // billing payment reference
	Specification JobSpecification
	Selected      SelectedConfiguration
	Driver        DriverInfo
	CreatedAt     time.Time
}

// EventKind distinguishes webhook event privileges.
type EventKind string

const (
	// EventStatus may transition the canonical job status.
	EventStatus EventKind = "status"
	// EventETA may only update timing and driver fields, never status.
	EventETA EventKind = "eta"
)

// Event is a provider webhook normalized to its correlation key and carried
// fields; the native status token is translated by the owning adapter.
type Event struct {
	Provider      string
	Kind          EventKind
	Reference     string // original job reference, when the provider echoes it
	ProviderJobID string // provider's own job id, otherwise
	NativeStatus  string
	Finished      bool // provider-declared completion flag, where present
	PickupETA     *time.Time
	DropoffETA    *time.Time
	Driver        DriverInfo
}
