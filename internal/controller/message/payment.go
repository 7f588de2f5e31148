package message

import (
	"context"
	"encoding/json"
	"fmt"

	"storepay/internal/domain/payment"
	"storepay/internal/messaging"
	"storepay/pkg/correlation"
	"storepay/pkg/logger"
)

// PaymentMessageController handles payment.recorded events from Kafka.
// It drives customer-facing notifications; reconciliation itself never
// waits on it.
type PaymentMessageController struct {
	logger *logger.Logger
}

// NewPaymentMessageController creates a new payment message controller.
func NewPaymentMessageController(l *logger.Logger) *PaymentMessageController {
	return &PaymentMessageController{logger: l}
}

// HandleMessage processes a single payment.recorded message.
func (c *PaymentMessageController) HandleMessage(ctx context.Context, key, value []byte) error {
	var env messaging.Envelope
	if err := json.Unmarshal(value, &env); err != nil {
		c.logger.Error("Failed to unmarshal envelope: key=%s error=%v", string(key), err)
		return fmt.Errorf("unmarshal envelope: %w", err)
	}

	c.logger.Debug("Processing payment message: event_id=%s key=%s type=%s",
		env.EventID, env.Key, env.Type)

	var event payment.PaymentRecordedEvent
	if err := json.Unmarshal(env.Payload, &event); err != nil {
		c.logger.Error("Failed to unmarshal payment event: event_id=%s error=%v", env.EventID, err)
		return fmt.Errorf("unmarshal payment event: %w", err)
	}

	c.notify(ctx, event)

	c.logger.Info("Payment event processed: event_id=%s correlation_id=%s order_id=%s provider=%s status=%s order_paid=%t",
		env.EventID, correlation.FromContext(ctx), event.OrderID, event.Provider, event.Status, event.OrderPaid)

	return nil
}

// notify is where mail or push delivery plugs in. For now the outcome is
// logged so the pipeline is observable end to end.
func (c *PaymentMessageController) notify(_ context.Context, event payment.PaymentRecordedEvent) {
	if event.OrderPaid {
		c.logger.Info("Order paid notification: order_id=%s amount=%s %s via %s",
			event.OrderID, event.Amount.String(), event.Currency, event.Provider)
		return
	}
	if event.Status == payment.PaymentFailed {
		c.logger.Info("Payment failed notification: order_id=%s transaction_id=%s via %s",
			event.OrderID, event.TransactionID, event.Provider)
	}
}
