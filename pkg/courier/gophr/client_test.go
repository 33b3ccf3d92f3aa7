package gophr_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/seconds-app/courier-bridge/pkg/courier"
	"github.com/seconds-app/courier-bridge/pkg/courier/gophr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestClient(mockClient *gophr.MockAPIClient) *gophr.Client {
	logger := otelzap.New(zap.NewNop())
	return gophr.NewWithAPIClient(gophr.Config{APIKey: "key-123"}, mockClient, logger, nil)
}

func deliveryRequest() *courier.DeliveryRequest {
	return &courier.DeliveryRequest{
		Pickup: courier.Waypoint{
			Address: courier.Address{FullAddress: "1 Borough Market, London", Postcode: "SE1 9AL", City: "London", CountryCode: "GB"},
			Contact: courier.Contact{FirstName: "Ada", LastName: "Fowler", Phone: "+447700900001"},
		},
		Dropoff: courier.Waypoint{
			Address: courier.Address{FullAddress: "20 Dean St, London", Postcode: "W1D 3RY", City: "London", CountryCode: "GB"},
			Contact: courier.Contact{FirstName: "Ben", LastName: "Okafor", Phone: "+447700900002"},
		},
		PackageWeightKg: 2,
		ItemsCount:      1,
		DeliveryType:    courier.DeliveryOnDemand,
		VehicleCode:     courier.VehicleBicycle,
	}
}

func TestClient_Quote_Success(t *testing.T) {
	client := newTestClient(gophr.NewMockAPIClient())

	quote, err := client.Quote(context.Background(), deliveryRequest())

	require.NoError(t, err)
	assert.Equal(t, "gophr", quote.ProviderID)
	assert.Equal(t, int64(975), quote.PriceExVAT.Amount, "quote must carry the net price")
	assert.NotNil(t, quote.DropoffETA)
	assert.False(t, quote.RatingCapable)
}

func TestClient_Quote_SendsAPIKeyAndVehicleType(t *testing.T) {
	mockAPI := gophr.NewMockAPIClient()
	var captured *gophr.QuoteRequest
	mockAPI.OnGetQuote = func(ctx context.Context, req *gophr.QuoteRequest) (*gophr.QuoteResult, error) {
		captured = req
		return &gophr.QuoteResult{PriceNet: 9.75}, nil
	}
	client := newTestClient(mockAPI)

	_, err := client.Quote(context.Background(), deliveryRequest())
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "key-123", captured.APIKey)
	assert.Equal(t, 10, captured.VehicleType)

	values := captured.Values()
	assert.Equal(t, "key-123", values.Get("api_key"))
	assert.Equal(t, "SE1 9AL", values.Get("pickup_postcode"))
	assert.Equal(t, "W1D 3RY", values.Get("delivery_postcode"))
}

func TestClient_Quote_BusinessErrorIsValidation(t *testing.T) {
	mockAPI := gophr.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(mockAPI)

	_, err := client.Quote(context.Background(), deliveryRequest())

	require.Error(t, err)
	var provErr *courier.ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, gophr.ErrCodeDistance, provErr.Code)
	assert.Equal(t, http.StatusBadRequest, provErr.StatusCode,
		"business errors inside 200 envelopes normalize to 400")
	assert.False(t, provErr.Retryable)
	assert.True(t, courier.IsValidation(err))
}

func TestClient_CreateJob_Success(t *testing.T) {
	client := newTestClient(gophr.NewMockAPIClient())

	handle, err := client.CreateJob(context.Background(), &courier.CreateJobRequest{
		Reference: "REF1234567890ABC",
		Request:   deliveryRequest(),
		Vehicle:   mustSpecs(t, courier.VehicleBicycle),
	})

	require.NoError(t, err)
	assert.Equal(t, "GPH-MOCK-100001", handle.ProviderJobID)
	assert.Contains(t, handle.TrackingURL, "gophr.com/track")
	assert.NotNil(t, handle.PickupAt)
	assert.NotNil(t, handle.DropoffAt)
}

func TestClient_CreateJob_SendsExternalID(t *testing.T) {
	mockAPI := gophr.NewMockAPIClient()
	var captured *gophr.JobRequest
	mockAPI.OnCreateConfirmJob = func(ctx context.Context, req *gophr.JobRequest) (*gophr.JobResult, error) {
		captured = req
		return &gophr.JobResult{JobID: "GPH-1"}, nil
	}
	client := newTestClient(mockAPI)

	_, err := client.CreateJob(context.Background(), &courier.CreateJobRequest{
		Reference: "REF1234567890ABC",
		Request:   deliveryRequest(),
		Vehicle:   mustSpecs(t, courier.VehicleBicycle),
	})
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "REF1234567890ABC", captured.ExternalID)
	assert.Equal(t, "Ada Fowler", captured.PickupPersonName)
	assert.Equal(t, "Ben Okafor", captured.DeliveryPersonName)
}

func TestClient_TranslateStatus(t *testing.T) {
	client := newTestClient(gophr.NewMockAPIClient())

	assert.Equal(t, courier.StatusPending, client.TranslateStatus("pending_acceptance"))
	assert.Equal(t, courier.StatusDispatching, client.TranslateStatus("at_pickup"))
	assert.Equal(t, courier.StatusEnRoute, client.TranslateStatus("en_route"))
	assert.Equal(t, courier.StatusCompleted, client.TranslateStatus("completed"))
	assert.Equal(t, courier.JobStatus("misrouted"), client.TranslateStatus("misrouted"))
}

func TestParseWebhook_StatusUpdate(t *testing.T) {
	body := []byte(`{
		"api_key": "key-123",
		"webhook_type": "status_update",
		"status": "completed",
		"external_id": "REF1234567890ABC",
		"job_id": "GPH-1",
		"finished": true,
		"courier_name": "Dee"
	}`)

	hook, err := gophr.ParseWebhook(body)
	require.NoError(t, err)
	assert.True(t, hook.Verify("key-123"))
	assert.False(t, hook.Verify("other-key"))

	ev := hook.ToEvent()
	assert.Equal(t, courier.EventStatus, ev.Kind)
	assert.Equal(t, "REF1234567890ABC", ev.Reference)
	assert.True(t, ev.Finished)
	assert.Equal(t, "Dee", ev.Driver.Name)
}

func TestParseWebhook_ETAUpdateNeverCarriesStatusKind(t *testing.T) {
	body := []byte(`{
		"api_key": "key-123",
		"webhook_type": "eta_update",
		"external_id": "REF1234567890ABC",
		"pickup_eta": "2026-08-31T10:15:00Z",
		"delivery_eta": "2026-08-31T10:45:00Z"
	}`)

	hook, err := gophr.ParseWebhook(body)
	require.NoError(t, err)

	ev := hook.ToEvent()
	assert.Equal(t, courier.EventETA, ev.Kind)
	require.NotNil(t, ev.PickupETA)
	require.NotNil(t, ev.DropoffETA)
}

func TestParseWebhook_NumericFinishedFlag(t *testing.T) {
	body := []byte(`{
		"api_key": "key-123",
		"webhook_type": "status_update",
		"status": "completed",
		"external_id": "ABC123",
		"finished": 1
	}`)

	hook, err := gophr.ParseWebhook(body)
	require.NoError(t, err, "Gophr sends finished as 0/1 as well as true/false")
	assert.True(t, hook.ToEvent().Finished)
}

func TestParseWebhook_FinishedFlagEncodings(t *testing.T) {
	cases := map[string]bool{
		`true`:    true,
		`false`:   false,
		`1`:       true,
		`0`:       false,
		`"1"`:     true,
		`"0"`:     false,
		`"true"`:  true,
		`"false"`: false,
		`null`:    false,
	}
	for raw, want := range cases {
		body := []byte(`{"webhook_type":"status_update","external_id":"ABC123","finished":` + raw + `}`)
		hook, err := gophr.ParseWebhook(body)
		require.NoError(t, err, raw)
		assert.Equal(t, want, hook.ToEvent().Finished, raw)
	}
}

func TestParseWebhook_UnknownType(t *testing.T) {
	_, err := gophr.ParseWebhook([]byte(`{"webhook_type":"invoice_update"}`))
	assert.Error(t, err)
}

func mustSpecs(t *testing.T, code courier.VehicleCode) courier.VehicleSpec {
	t.Helper()
	specs, err := courier.SpecsFor(code)
	require.NoError(t, err)
	return specs
}
