package broker

import (
	"context"

	"github.com/seconds-app/courier-bridge/pkg/courier"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// LoggingBilling records charges in the log only. It stands in for a real
// payment processor integration.
type LoggingBilling struct {
	Logger *otelzap.Logger
}

func (b *LoggingBilling) ChargeCommission(ctx context.Context, customerRef, paymentRef string, fee courier.Money, description string) error {
	b.Logger.Info("Commission charged",
		zap.String("customer_ref", customerRef),
		zap.String("payment_ref", paymentRef),
		zap.String("fee", fee.String()),
		zap.String("description", description),
	)
	return nil
}

// LoggingNotifier records notifications in the log only. It stands in for a
// real SMS gateway integration.
type LoggingNotifier struct {
	Logger *otelzap.Logger
}

func (n *LoggingNotifier) Notify(ctx context.Context, phone, message string) error {
	n.Logger.Info("Completion notification sent",
		zap.String("phone", phone),
		zap.String("message", message),
	)
	return nil
}

var (
	_ Billing  = (*LoggingBilling)(nil)
	_ Notifier = (*LoggingNotifier)(nil)
)
