package broker

import (
	"context"
	"fmt"

	"github.com/seconds-app/courier-bridge/internal/telemetry"
	"github.com/seconds-app/courier-bridge/pkg/courier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Reconciler folds provider webhook events into stored jobs. Status events
// may transition the canonical status; ETA events only merge timing and
// driver metadata. Completion side effects run exactly once per job no
// matter how many completion events arrive.
type Reconciler struct {
	registry *courier.Registry
	store    Store
	billing  Billing
	notifier Notifier
	logger   *otelzap.Logger
	metrics  *telemetry.Metrics
}

// NewReconciler creates a new reconciler.
func NewReconciler(registry *courier.Registry, store Store, billing Billing, notifier Notifier, logger *otelzap.Logger, metrics *telemetry.Metrics) *Reconciler {
	return &Reconciler{
		registry: registry,
		store:    store,
		billing:  billing,
		notifier: notifier,
		logger:   logger,
		metrics:  metrics,
	}
}

// Apply folds one event into its job. Unknown providers and unresolvable
// jobs return errors for logging, but callers serving webhooks must still
// acknowledge the delivery to stop provider retry storms.
func (r *Reconciler) Apply(ctx context.Context, ev *courier.Event) error {
	provider, err := r.registry.Get(ev.Provider)
	if err != nil {
		return fmt.Errorf("%w: %s", courier.ErrUnknownWebhookSource, ev.Provider)
	}

	job, err := r.resolveJob(ctx, ev)
	if err != nil {
		return err
	}

	r.mergeMetadata(job, ev)

	if ev.Kind == courier.EventStatus && !job.Status.Terminal() {
		translated := provider.TranslateStatus(ev.NativeStatus)
		if ev.Finished {
			// Some providers flag completion alongside a non-terminal
			// token; the flag wins so the stored status cannot diverge
			// from the finalized state.
			translated = courier.StatusCompleted
		}
		if job.Status != translated {
			r.logger.Info("Job status transition",
				zap.String("reference", job.Reference),
				zap.String("provider", ev.Provider),
				zap.String("from", string(job.Status)),
				zap.String("to", string(translated)),
			)
			job.Status = translated
		}
	}

	if err := r.store.UpdateJob(ctx, job); err != nil {
		return fmt.Errorf("updating job %s: %w", job.Reference, err)
	}

	if r.metrics != nil {
		r.metrics.RecordWebhook(ev.Provider, string(ev.Kind))
	}

	// Side effects key off the job's effective status, not the event's
	// content: a "completed" event for a job already cancelled is a
	// metadata-only update, never a charge.
	if ev.Kind == courier.EventStatus && job.Status == courier.StatusCompleted {
		r.finalize(ctx, job)
	}
	return nil
}

// resolveJob looks the job up by whichever correlation key the provider
// sends: the echoed reference where available, otherwise the provider's own
// job id.
func (r *Reconciler) resolveJob(ctx context.Context, ev *courier.Event) (*courier.Job, error) {
	if ev.Reference != "" {
		job, err := r.store.FindJobByReference(ctx, ev.Reference)
		if err == nil {
			return job, nil
		}
	}
	if ev.ProviderJobID != "" {
		job, err := r.store.FindJobByProviderID(ctx, ev.Provider, ev.ProviderJobID)
		if err == nil {
			return job, nil
		}
	}
	return nil, fmt.Errorf("%w: provider %s reference %q provider_job_id %q",
		courier.ErrJobNotFound, ev.Provider, ev.Reference, ev.ProviderJobID)
}

// mergeMetadata folds timing and driver fields into the job. Metadata may
// merge even on terminal jobs; a late driver name or ETA correction is still
// worth keeping.
func (r *Reconciler) mergeMetadata(job *courier.Job, ev *courier.Event) {
	if ev.PickupETA != nil {
		job.Specification.PickupETA = ev.PickupETA
	}
	if ev.DropoffETA != nil {
		job.Specification.DropoffETA = ev.DropoffETA
	}
	if ev.Driver.Name != "" {
		job.Driver.Name = ev.Driver.Name
	}
	if ev.Driver.Phone != "" {
		job.Driver.Phone = ev.Driver.Phone
	}
	if ev.Driver.Transport != "" {
		job.Driver.Transport = ev.Driver.Transport
	}
}

// finalize runs the completion side effects behind the store's atomic
// test-and-set. Duplicate completion events lose the race and do nothing.
// Billing and notification failures are logged, never retried, and never
// fail the webhook.
func (r *Reconciler) finalize(ctx context.Context, job *courier.Job) {
	first, err := r.store.FinalizeIfNotAlready(ctx, job.Reference)
	if err != nil {
		r.logger.Error("Finalization check failed",
			zap.String("reference", job.Reference),
			zap.Error(err),
		)
		return
	}
	if !first {
		r.logger.Info("Duplicate completion event ignored",
			zap.String("reference", job.Reference),
		)
		return
	}

	r.logger.Info("Delivery completed",
		zap.String("reference", job.Reference),
		zap.String("order_number", job.Specification.OrderNumber),
		zap.String("provider", job.Selected.ProviderID),
	)
	if r.metrics != nil {
		r.metrics.RecordCompletion(job.Selected.ProviderID)
	}

	description := fmt.Sprintf("Order: %s Ref: %s", job.Specification.OrderNumber, job.Reference)
	if err := r.billing.ChargeCommission(ctx, job.CustomerRef, job.PaymentRef, job.Selected.DeliveryFee, description); err != nil {
		r.logger.Error("Commission charge failed",
			zap.String("reference", job.Reference),
			zap.Error(err),
		)
	}

	message := fmt.Sprintf("Your order %s has been delivered. Thanks for ordering with us.", job.Specification.OrderNumber)
	if err := r.notifier.Notify(ctx, job.Specification.Dropoff.Contact.Phone, message); err != nil {
		r.logger.Error("Completion notification failed",
			zap.String("reference", job.Reference),
			zap.Error(err),
		)
	}
}
