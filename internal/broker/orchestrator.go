package broker

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/seconds-app/courier-bridge/pkg/courier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Orchestrator runs the full brokering pipeline: reference generation,
// vehicle resolution, quote aggregation, selection, and the single job
// submission attempt.
type Orchestrator struct {
	registry *courier.Registry
	store    Store
	distance DistanceFunc
	logger   *otelzap.Logger
	tracer   trace.Tracer
}

// NewOrchestrator creates a new orchestrator. distance may be nil, in which
// case vehicle distance limits are not enforced.
func NewOrchestrator(registry *courier.Registry, store Store, distance DistanceFunc, logger *otelzap.Logger, tracer trace.Tracer) *Orchestrator {
	return &Orchestrator{
		registry: registry,
		store:    store,
		distance: distance,
		logger:   logger,
		tracer:   tracer,
	}
}

// CreateDeliveryInput carries a delivery request with its billing context.
type CreateDeliveryInput struct {
	ClientID    string
	CustomerRef string
	PaymentRef  string
	Request     *courier.DeliveryRequest
	Strategy    courier.SelectionStrategy
}

// CreateDelivery brokers one delivery end to end and persists the resulting
// job. The winning provider gets exactly one CreateJob attempt; a rejection
// surfaces as a JobCreationError with no fallback to the next-best quote.
func (o *Orchestrator) CreateDelivery(ctx context.Context, in *CreateDeliveryInput) (*courier.Job, error) {
	ctx, span := o.tracer.Start(ctx, "broker.CreateDelivery")
	defer span.End()

	reference := courier.NewJobReference()
	o.logger.Info("Brokering delivery",
		zap.String("reference", reference),
		zap.String("client_id", in.ClientID),
		zap.String("strategy", string(in.Strategy)),
	)

	specs, err := o.resolveVehicle(ctx, in.Request)
	if err != nil {
		return nil, err
	}
	in.Request.VehicleCode = specs.Code

	quotes, err := o.registry.Aggregate(ctx, in.Request)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	selection, err := courier.Select(in.Strategy, quotes, now)
	if err != nil {
		return nil, err
	}
	if selection.Expired {
		return nil, fmt.Errorf("%w: quote %s", courier.ErrQuoteExpired, selection.Quote.ID)
	}
	winner := selection.Quote

	provider, err := o.registry.Get(winner.ProviderID)
	if err != nil {
		return nil, err
	}

	// Submission guard first: if the process dies mid-dispatch we refuse a
	// blind retry rather than risk a duplicate courier booking.
	first, err := o.store.MarkSubmissionAttempt(ctx, reference)
	if err != nil {
		return nil, fmt.Errorf("marking submission attempt: %w", err)
	}
	if !first {
		return nil, fmt.Errorf("%w: %s", courier.ErrJobAlreadySubmitted, reference)
	}

	handle, err := provider.CreateJob(ctx, &courier.CreateJobRequest{
		Reference: reference,
		Request:   in.Request,
		Quote:     winner,
		Strategy:  in.Strategy,
		Vehicle:   specs,
	})
	if err != nil {
		o.logger.Error("Job creation failed",
			zap.String("provider", winner.ProviderID),
			zap.String("reference", reference),
			zap.Error(err),
		)
		return nil, &courier.JobCreationError{ProviderID: winner.ProviderID, Cause: err}
	}

	seq, err := o.store.NextOrderNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("allocating order number: %w", err)
	}

	job := &courier.Job{
		ID:          uuid.NewString(),
		Reference:   reference,
		Status:      courier.StatusNew,
		ClientID:    in.ClientID,
		CustomerRef: in.CustomerRef,
		PaymentRef:  in.PaymentRef,
		Specification: courier.JobSpecification{
			OrderNumber:  courier.FormatOrderNumber(seq),
			Description:  in.Request.PackageDescription,
			ItemsCount:   in.Request.ItemsCount,
			Pickup:       in.Request.Pickup,
			Dropoff:      in.Request.Dropoff,
			PickupETA:    handle.PickupAt,
			DropoffETA:   handle.DropoffAt,
			DeliveryType: in.Request.DeliveryType,
			VehicleCode:  specs.Code,
		},
		Selected: courier.SelectedConfiguration{
			ProviderID:     winner.ProviderID,
			ProviderJobID:  handle.ProviderJobID,
			WinningQuoteID: winner.ID,
			DeliveryFee:    handle.DeliveryFee,
			TrackingURL:    handle.TrackingURL,
			Quotes:         quotes,
			CreatedAt:      now,
		},
		CreatedAt: now,
	}

	if err := o.store.CreateJob(ctx, job); err != nil {
		return nil, fmt.Errorf("persisting job %s: %w", reference, err)
	}

	o.logger.Info("Delivery brokered",
		zap.String("reference", reference),
		zap.String("provider", winner.ProviderID),
		zap.String("provider_job_id", handle.ProviderJobID),
		zap.String("order_number", job.Specification.OrderNumber),
	)
	return job, nil
}

// resolveVehicle looks up the requested vehicle class and, when the route is
// longer than that class covers, upgrades to the smallest class that does.
func (o *Orchestrator) resolveVehicle(ctx context.Context, req *courier.DeliveryRequest) (courier.VehicleSpec, error) {
	specs, err := courier.SpecsFor(req.VehicleCode)
	if err != nil {
		return courier.VehicleSpec{}, err
	}
	if o.distance == nil {
		return specs, nil
	}

	miles, err := o.distance(ctx, req.Pickup.Address, req.Dropoff.Address, specs.TravelMode)
	if err != nil {
		o.logger.Warn("Distance lookup failed, skipping distance check",
			zap.Error(err),
		)
		return specs, nil
	}
	if miles <= specs.MaxDistanceMiles {
		return specs, nil
	}

	for _, alt := range courier.AllVehicleSpecs() {
		if alt.MaxDistanceMiles >= miles && alt.WeightLimitKg >= req.PackageWeightKg {
			o.logger.Info("Upgrading vehicle for distance",
				zap.String("from", string(specs.Code)),
				zap.String("to", string(alt.Code)),
				zap.Float64("miles", miles),
			)
			return alt, nil
		}
	}
	return courier.VehicleSpec{}, fmt.Errorf("%w: %.1f miles", courier.ErrDistanceExceeded, miles)
}
