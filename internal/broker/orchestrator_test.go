package broker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/seconds-app/courier-bridge/internal/broker"
	"github.com/seconds-app/courier-bridge/internal/store/memory"
	"github.com/seconds-app/courier-bridge/pkg/courier"
	"github.com/seconds-app/courier-bridge/pkg/courier/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

func newOrchestrator(registry *courier.Registry, store broker.Store, distance broker.DistanceFunc) *broker.Orchestrator {
	logger := otelzap.New(zap.NewNop())
	tracer := nooptrace.NewTracerProvider().Tracer("test")
	return broker.NewOrchestrator(registry, store, distance, logger, tracer)
}

func newRegistry(providers ...courier.Provider) *courier.Registry {
	registry := courier.NewRegistry(otelzap.New(zap.NewNop()))
	for _, p := range providers {
		registry.Register(p)
	}
	return registry
}

func deliveryInput(strategy courier.SelectionStrategy) *broker.CreateDeliveryInput {
	return &broker.CreateDeliveryInput{
		ClientID:    "client-1",
		CustomerRef: "cus_123",
		PaymentRef:  "pm_456",
		Strategy:    strategy,
		Request: &courier.DeliveryRequest{
			Pickup: courier.Waypoint{
				Address: courier.Address{FullAddress: "12 Old St, London", Postcode: "EC1V 9BD", City: "London", CountryCode: "GB"},
				Contact: courier.Contact{FirstName: "Iris", LastName: "Chan", Phone: "+447700900030"},
			},
			Dropoff: courier.Waypoint{
				Address: courier.Address{FullAddress: "9 Curtain Rd, London", Postcode: "EC2A 3LT", City: "London", CountryCode: "GB"},
				Contact: courier.Contact{FirstName: "Leo", LastName: "Marsh", Phone: "+447700900031"},
			},
			PackageWeightKg: 3,
			ItemsCount:      1,
			DeliveryType:    courier.DeliveryOnDemand,
			VehicleCode:     courier.VehicleBicycle,
		},
	}
}

func TestCreateDelivery_CheapestQuoteWins(t *testing.T) {
	expensive := mock.New("alpha", 1250)
	cheapest := mock.New("beta", 975)
	middle := mock.New("gamma", 1040)
	store := memory.New()
	orch := newOrchestrator(newRegistry(expensive, cheapest, middle), store, nil)

	job, err := orch.CreateDelivery(context.Background(), deliveryInput(courier.StrategyPrice))

	require.NoError(t, err)
	assert.Equal(t, "beta", job.Selected.ProviderID)
	assert.Equal(t, int64(975), job.Selected.DeliveryFee.Amount)
	assert.Equal(t, courier.StatusNew, job.Status)
	assert.Equal(t, "0001", job.Specification.OrderNumber)
	assert.Len(t, job.Selected.Quotes, 3, "the full quote set is kept for audit")

	assert.Equal(t, 1, cheapest.CreateCalls, "only the winner is dispatched")
	assert.Zero(t, expensive.CreateCalls)
	assert.Zero(t, middle.CreateCalls)

	stored, err := store.FindJobByReference(context.Background(), job.Reference)
	require.NoError(t, err)
	assert.Equal(t, job.Selected.ProviderJobID, stored.Selected.ProviderJobID)
}

func TestCreateDelivery_ETAStrategyPicksFastest(t *testing.T) {
	slow := mock.New("alpha", 800)
	slow.ETAIn = 50 * time.Minute
	fast := mock.New("beta", 1500)
	fast.ETAIn = 20 * time.Minute
	orch := newOrchestrator(newRegistry(slow, fast), memory.New(), nil)

	job, err := orch.CreateDelivery(context.Background(), deliveryInput(courier.StrategyETA))

	require.NoError(t, err)
	assert.Equal(t, "beta", job.Selected.ProviderID)
}

func TestCreateDelivery_OrderNumbersIncrement(t *testing.T) {
	provider := mock.New("alpha", 900)
	orch := newOrchestrator(newRegistry(provider), memory.New(), nil)

	first, err := orch.CreateDelivery(context.Background(), deliveryInput(courier.StrategyPrice))
	require.NoError(t, err)
	second, err := orch.CreateDelivery(context.Background(), deliveryInput(courier.StrategyPrice))
	require.NoError(t, err)

	assert.Equal(t, "0001", first.Specification.OrderNumber)
	assert.Equal(t, "0002", second.Specification.OrderNumber)
	assert.NotEqual(t, first.Reference, second.Reference)
}

func TestCreateDelivery_NoProviders(t *testing.T) {
	orch := newOrchestrator(newRegistry(), memory.New(), nil)

	_, err := orch.CreateDelivery(context.Background(), deliveryInput(courier.StrategyPrice))

	assert.True(t, errors.Is(err, courier.ErrProviderNotFound))
}

func TestCreateDelivery_AllQuotesFail(t *testing.T) {
	broken := mock.New("alpha", 900)
	broken.QuoteErr = errors.New("upstream down")
	orch := newOrchestrator(newRegistry(broken), memory.New(), nil)

	_, err := orch.CreateDelivery(context.Background(), deliveryInput(courier.StrategyPrice))

	assert.True(t, errors.Is(err, courier.ErrNoQuotesAvailable))
}

func TestCreateDelivery_RejectionDoesNotFallBack(t *testing.T) {
	winner := mock.New("alpha", 500)
	winner.CreateErr = errors.New("no couriers available")
	runnerUp := mock.New("beta", 900)
	store := memory.New()
	orch := newOrchestrator(newRegistry(winner, runnerUp), store, nil)

	_, err := orch.CreateDelivery(context.Background(), deliveryInput(courier.StrategyPrice))

	require.Error(t, err)
	var creationErr *courier.JobCreationError
	require.True(t, errors.As(err, &creationErr))
	assert.Equal(t, "alpha", creationErr.ProviderID)
	assert.Equal(t, 1, winner.CreateCalls)
	assert.Zero(t, runnerUp.CreateCalls, "a rejected winner never falls back to the next quote")
}

func TestCreateDelivery_UpgradesVehicleForDistance(t *testing.T) {
	provider := mock.New("alpha", 900)
	distance := func(ctx context.Context, pickup, dropoff courier.Address, mode courier.TravelMode) (float64, error) {
		return 6, nil
	}
	orch := newOrchestrator(newRegistry(provider), memory.New(), distance)

	job, err := orch.CreateDelivery(context.Background(), deliveryInput(courier.StrategyPrice))

	require.NoError(t, err)
	assert.Equal(t, courier.VehicleMotorbike, job.Specification.VehicleCode,
		"a six-mile route outgrows the bicycle class")
}

func TestCreateDelivery_DistanceExceeded(t *testing.T) {
	provider := mock.New("alpha", 900)
	distance := func(ctx context.Context, pickup, dropoff courier.Address, mode courier.TravelMode) (float64, error) {
		return 500, nil
	}
	orch := newOrchestrator(newRegistry(provider), memory.New(), distance)

	_, err := orch.CreateDelivery(context.Background(), deliveryInput(courier.StrategyPrice))

	assert.True(t, errors.Is(err, courier.ErrDistanceExceeded))
	assert.Zero(t, provider.CreateCalls)
}

func TestCreateDelivery_DistanceLookupFailureIsNotFatal(t *testing.T) {
	provider := mock.New("alpha", 900)
	distance := func(ctx context.Context, pickup, dropoff courier.Address, mode courier.TravelMode) (float64, error) {
		return 0, errors.New("routing service unavailable")
	}
	orch := newOrchestrator(newRegistry(provider), memory.New(), distance)

	job, err := orch.CreateDelivery(context.Background(), deliveryInput(courier.StrategyPrice))

	require.NoError(t, err)
	assert.Equal(t, courier.VehicleBicycle, job.Specification.VehicleCode)
}
