package ecofleet_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/seconds-app/courier-bridge/pkg/courier"
	"github.com/seconds-app/courier-bridge/pkg/courier/ecofleet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestClient(mockClient *ecofleet.MockAPIClient) *ecofleet.Client {
	logger := otelzap.New(zap.NewNop())
	return ecofleet.NewWithAPIClient(ecofleet.Config{}, mockClient, logger, nil)
}

func deliveryRequest() *courier.DeliveryRequest {
	return &courier.DeliveryRequest{
		Pickup: courier.Waypoint{
			Address: courier.Address{FullAddress: "8 Queen St, Bristol", Postcode: "BS1 4QX", City: "Bristol", CountryCode: "GB"},
			Contact: courier.Contact{FirstName: "Tess", LastName: "Morley", Phone: "+447700900020", Company: "Morley Foods"},
		},
		Dropoff: courier.Waypoint{
			Address: courier.Address{FullAddress: "5 Park Row, Bristol", Postcode: "BS1 5LJ", City: "Bristol", CountryCode: "GB"},
			Contact: courier.Contact{FirstName: "Omar", LastName: "Said", Phone: "+447700900021"},
		},
		PackageWeightKg: 6,
		ItemsCount:      3,
		DeliveryType:    courier.DeliveryOnDemand,
		VehicleCode:     courier.VehicleBicycle,
	}
}

func TestClient_Quote_RateCardPricing(t *testing.T) {
	client := newTestClient(ecofleet.NewMockAPIClient())

	quote, err := client.Quote(context.Background(), deliveryRequest())

	require.NoError(t, err)
	assert.Equal(t, "ecofleet", quote.ProviderID)
	assert.Equal(t, int64(895), quote.PriceExVAT.Amount)
	assert.NotNil(t, quote.DropoffETA)
	assert.False(t, quote.RatingCapable)
}

func TestClient_Quote_BuildsOrderTree(t *testing.T) {
	mockAPI := ecofleet.NewMockAPIClient()
	var captured *ecofleet.OrderPayload
	mockAPI.OnGetQuote = func(ctx context.Context, req *ecofleet.OrderPayload) (*ecofleet.QuoteResult, error) {
		captured = req
		return &ecofleet.QuoteResult{RateCard: ecofleet.RateCard{MinimumCost: 8.95}}, nil
	}
	client := newTestClient(mockAPI)

	pickupAt := time.Date(2026, 8, 31, 11, 0, 0, 0, time.UTC)
	req := deliveryRequest()
	req.PickupWindow = courier.Window{Start: &pickupAt}

	_, err := client.Quote(context.Background(), req)
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "Tess Morley", captured.Pickup.Name)
	assert.Equal(t, "Morley Foods", captured.Pickup.CompanyName)
	assert.Equal(t, "England", captured.Pickup.Country)
	require.Len(t, captured.Drops, 1)
	assert.Equal(t, "BS1 5LJ", captured.Drops[0].Postal)
	assert.Equal(t, float64(8), captured.Parcel.Weight, "parcel weight is the vehicle capacity")
	assert.Equal(t, "[]", captured.Parcel.Type, "empty descriptions fall back to the empty list marker")
	assert.Equal(t, "on_demand", captured.Schedule.Type)
	assert.Equal(t, pickupAt.Unix(), captured.Schedule.PickupWindow)
	assert.Zero(t, captured.Schedule.DropoffWindow)
}

func TestClient_CreateJob_Success(t *testing.T) {
	client := newTestClient(ecofleet.NewMockAPIClient())
	pickupAt := time.Now().Add(30 * time.Minute)

	req := deliveryRequest()
	req.PickupWindow = courier.Window{Start: &pickupAt}

	handle, err := client.CreateJob(context.Background(), &courier.CreateJobRequest{
		Reference: "REF0000000000010",
		Request:   req,
		Vehicle:   mustSpecs(t, courier.VehicleBicycle),
	})

	require.NoError(t, err)
	assert.Equal(t, "ECO-MOCK-5001", handle.ProviderJobID)
	assert.Equal(t, int64(895), handle.DeliveryFee.Amount)
	require.NotNil(t, handle.PickupAt)
	assert.Equal(t, pickupAt, *handle.PickupAt)
}

func TestClient_CreateJob_APIErrorWrapped(t *testing.T) {
	mockAPI := ecofleet.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(mockAPI)

	_, err := client.CreateJob(context.Background(), &courier.CreateJobRequest{
		Reference: "REF0000000000011",
		Request:   deliveryRequest(),
		Vehicle:   mustSpecs(t, courier.VehicleBicycle),
	})

	require.Error(t, err)
	var provErr *courier.ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, "ecofleet", provErr.Provider)
	assert.Equal(t, "INVALID_SCHEDULE", provErr.Code)
	assert.True(t, courier.IsValidation(err))
}

func TestClient_TranslateStatus(t *testing.T) {
	client := newTestClient(ecofleet.NewMockAPIClient())

	assert.Equal(t, courier.StatusNew, client.TranslateStatus("pending"))
	assert.Equal(t, courier.StatusPending, client.TranslateStatus("processing"))
	assert.Equal(t, courier.StatusDispatching, client.TranslateStatus("driving_to_pickup"))
	assert.Equal(t, courier.StatusEnRoute, client.TranslateStatus("at_dropoff"))
	assert.Equal(t, courier.StatusCompleted, client.TranslateStatus("delivered"))
	assert.Equal(t, courier.StatusCancelled, client.TranslateStatus("canceled"))
	assert.Equal(t, courier.JobStatus("rescheduled"), client.TranslateStatus("rescheduled"))
}

func TestParseWebhook_CorrelatesByOrderID(t *testing.T) {
	hook, err := ecofleet.ParseWebhook([]byte(`{
		"orderId": "ECO-5001",
		"status": "delivered",
		"signedBy": "O. Said",
		"eta": "2026-08-31T12:30:00Z"
	}`))
	require.NoError(t, err)

	ev := hook.ToEvent()
	assert.Equal(t, "ecofleet", ev.Provider)
	assert.Equal(t, courier.EventStatus, ev.Kind)
	assert.Equal(t, "ECO-5001", ev.ProviderJobID)
	assert.Equal(t, "delivered", ev.NativeStatus)
	require.NotNil(t, ev.DropoffETA)
}

func TestParseWebhook_MissingOrderID(t *testing.T) {
	_, err := ecofleet.ParseWebhook([]byte(`{"status":"delivered"}`))
	assert.Error(t, err)
}

func mustSpecs(t *testing.T, code courier.VehicleCode) courier.VehicleSpec {
	t.Helper()
	specs, err := courier.SpecsFor(code)
	require.NoError(t, err)
	return specs
}
