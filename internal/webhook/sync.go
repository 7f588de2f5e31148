package webhook

import (
	"context"
	"time"

	"storepay/internal/domain/payment"
	"storepay/internal/messaging"
	"storepay/pkg/logger"
	"storepay/pkg/metrics"
)

// SyncProcessor reconciles notifications in-request and publishes a
// fire-and-forget payment.recorded event afterwards. Publishing failures are
// logged, never propagated: the reconciliation already committed.
type SyncProcessor struct {
	service   *payment.ReconcileService
	publisher messaging.Publisher // nil when eventing is disabled
	logger    *logger.Logger
}

func NewSyncProcessor(service *payment.ReconcileService, publisher messaging.Publisher, l *logger.Logger) *SyncProcessor {
	return &SyncProcessor{
		service:   service,
		publisher: publisher,
		logger:    l,
	}
}

func (p *SyncProcessor) ProcessNotification(ctx context.Context, n payment.Notification) (payment.ReconcileResult, error) {
	start := time.Now()

	result, err := p.service.Reconcile(ctx, n)
	if err != nil {
		return payment.ReconcileResult{}, err
	}

	metrics.ReconcileDuration.WithLabelValues(string(n.Provider)).Observe(time.Since(start).Seconds())

	p.publishRecorded(ctx, result)

	return result, nil
}

func (p *SyncProcessor) publishRecorded(ctx context.Context, result payment.ReconcileResult) {
	if p.publisher == nil {
		return
	}

	event := payment.PaymentRecordedEvent{
		OrderID:       result.Payment.OrderID,
		Provider:      result.Payment.Provider,
		TransactionID: result.Payment.TransactionID,
		Status:        result.Payment.Status,
		Amount:        result.Payment.Amount,
		Currency:      result.Payment.Currency,
		OrderPaid:     result.OrderPaid,
		RecordedAt:    result.Payment.CreatedAt,
	}

	envelope, err := messaging.NewEnvelope(event.OrderID, "payment.recorded", event)
	if err != nil {
		p.logger.Error("Failed to build payment event envelope: order_id=%s error=%v", event.OrderID, err)
		return
	}

	if err := p.publisher.Publish(ctx, envelope); err != nil {
		p.logger.Warn("Failed to publish payment event: order_id=%s transaction_id=%s error=%v",
			event.OrderID, event.TransactionID, err)
	}
}
