package stuart_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/seconds-app/courier-bridge/pkg/courier"
	"github.com/seconds-app/courier-bridge/pkg/courier/stuart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

func newTestClient(mockClient *stuart.MockAPIClient) *stuart.Client {
	logger := otelzap.New(zap.NewNop())
	return stuart.NewWithAPIClient(stuart.Config{}, mockClient, logger, nil)
}

func deliveryRequest() *courier.DeliveryRequest {
	return &courier.DeliveryRequest{
		Pickup: courier.Waypoint{
			Address: courier.Address{FullAddress: "1 Borough Market, London SE1 9AL", Postcode: "SE1 9AL", City: "London", CountryCode: "GB"},
			Contact: courier.Contact{FirstName: "Ada", LastName: "Fowler", Phone: "+447700900001"},
		},
		Dropoff: courier.Waypoint{
			Address: courier.Address{FullAddress: "20 Dean St, London W1D 3RY", Postcode: "W1D 3RY", City: "London", CountryCode: "GB"},
			Contact: courier.Contact{FirstName: "Ben", LastName: "Okafor", Phone: "+447700900002"},
		},
		PackageDescription: "Deli order",
		PackageWeightKg:    2,
		ItemsCount:         1,
		DeliveryType:       courier.DeliveryOnDemand,
		VehicleCode:        courier.VehicleBicycle,
	}
}

func TestClient_Quote_Success(t *testing.T) {
	client := newTestClient(stuart.NewMockAPIClient())

	quote, err := client.Quote(context.Background(), deliveryRequest())

	require.NoError(t, err)
	assert.Equal(t, "stuart", quote.ProviderID)
	assert.Equal(t, int64(1250), quote.PriceExVAT.Amount)
	assert.Equal(t, "GBP", quote.PriceExVAT.Currency)
	require.NotNil(t, quote.DropoffETA, "stuart quotes carry an ETA")
	assert.False(t, quote.RatingCapable)
	assert.WithinDuration(t, time.Now().Add(courier.QuoteTTL), quote.ExpireTime, 5*time.Second)
}

func TestClient_Quote_ETARelativeToPickupWindow(t *testing.T) {
	client := newTestClient(stuart.NewMockAPIClient())

	pickupAt := time.Now().Add(2 * time.Hour).Truncate(time.Second)
	req := deliveryRequest()
	req.PickupWindow.Start = &pickupAt

	quote, err := client.Quote(context.Background(), req)

	require.NoError(t, err)
	require.NotNil(t, quote.DropoffETA)
	assert.Equal(t, pickupAt.Add(1800*time.Second), *quote.DropoffETA)
}

func TestClient_Quote_ValidationError(t *testing.T) {
	mockAPI := stuart.NewMockAPIClient()
	mockAPI.SimulateErrors = true
	client := newTestClient(mockAPI)

	_, err := client.Quote(context.Background(), deliveryRequest())

	require.Error(t, err)
	var provErr *courier.ProviderError
	require.True(t, errors.As(err, &provErr))
	assert.Equal(t, "stuart", provErr.Provider)
	assert.Equal(t, stuart.ErrCodeRecordInvalid, provErr.Code)
	assert.False(t, provErr.Retryable)
	assert.True(t, courier.IsValidation(err))
}

func TestClient_CreateJob_Success(t *testing.T) {
	client := newTestClient(stuart.NewMockAPIClient())

	handle, err := client.CreateJob(context.Background(), &courier.CreateJobRequest{
		Reference: "REF1234567890ABC",
		Request:   deliveryRequest(),
		Vehicle:   mustSpecs(t, courier.VehicleBicycle),
	})

	require.NoError(t, err)
	assert.NotEmpty(t, handle.ProviderJobID)
	assert.Contains(t, handle.TrackingURL, "stuart.mock/track/")
	assert.Equal(t, int64(1500), handle.DeliveryFee.Amount)
	assert.NotNil(t, handle.PickupAt)
	assert.NotNil(t, handle.DropoffAt)
}

func TestClient_CreateJob_SendsReferenceAndPackageType(t *testing.T) {
	mockAPI := stuart.NewMockAPIClient()
	var captured *stuart.JobPayload
	mockAPI.OnCreateJob = func(ctx context.Context, req *stuart.JobPayload) (*stuart.JobResponse, error) {
		captured = req
		return nil, &stuart.APIError{ErrorCode: "cancelled", Message: "stop here", StatusCode: 422}
	}
	client := newTestClient(mockAPI)

	client.CreateJob(context.Background(), &courier.CreateJobRequest{
		Reference: "REF1234567890ABC",
		Request:   deliveryRequest(),
		Vehicle:   mustSpecs(t, courier.VehicleBicycle),
	})

	require.NotNil(t, captured)
	require.Len(t, captured.Job.Dropoffs, 1)
	assert.Equal(t, "REF1234567890ABC", captured.Job.Dropoffs[0].ClientReference)
	assert.Equal(t, "small", captured.Job.Dropoffs[0].PackageType)
	assert.Equal(t, byte('A'), captured.Job.AssignmentCode[0])
}

func TestClient_TranslateStatus(t *testing.T) {
	client := newTestClient(stuart.NewMockAPIClient())

	assert.Equal(t, courier.StatusPending, client.TranslateStatus("searching"))
	assert.Equal(t, courier.StatusEnRoute, client.TranslateStatus("delivering"))
	assert.Equal(t, courier.StatusCompleted, client.TranslateStatus("finished"))
	assert.Equal(t, courier.StatusCompleted, client.TranslateStatus("delivered"))
	assert.Equal(t, courier.StatusCancelled, client.TranslateStatus("canceled"))

	// Unmapped tokens pass through unchanged
	assert.Equal(t, courier.JobStatus("voided"), client.TranslateStatus("voided"))
}

func TestParseWebhook_DeliveryUpdate(t *testing.T) {
	body, err := json.Marshal(map[string]interface{}{
		"event": "delivery",
		"type":  "update",
		"data": map[string]interface{}{
			"id":               42,
			"job_id":           7,
			"status":           "delivering",
			"client_reference": "REF1234567890ABC",
			"driver": map[string]interface{}{
				"display_name":   "Sam P.",
				"phone":          "+447700900099",
				"transport_type": "bike",
			},
		},
	})
	require.NoError(t, err)

	hook, err := stuart.ParseWebhook(body)
	require.NoError(t, err)

	ev := hook.ToEvent()
	assert.Equal(t, "stuart", ev.Provider)
	assert.Equal(t, courier.EventStatus, ev.Kind)
	assert.Equal(t, "REF1234567890ABC", ev.Reference)
	assert.Equal(t, "delivering", ev.NativeStatus)
	assert.Equal(t, "Sam P.", ev.Driver.Name)
}

func TestParseWebhook_JobEventCorrelatesByJobID(t *testing.T) {
	body := []byte(`{"event":"job","type":"update","data":{"id":7,"status":"finished"}}`)

	hook, err := stuart.ParseWebhook(body)
	require.NoError(t, err)

	ev := hook.ToEvent()
	assert.Empty(t, ev.Reference)
	assert.Equal(t, "7", ev.ProviderJobID)
}

func TestParseWebhook_UnknownEvent(t *testing.T) {
	_, err := stuart.ParseWebhook([]byte(`{"event":"invoice","type":"create","data":{}}`))
	assert.Error(t, err)
}

func mustSpecs(t *testing.T, code courier.VehicleCode) courier.VehicleSpec {
	t.Helper()
	specs, err := courier.SpecsFor(code)
	require.NoError(t, err)
	return specs
}
