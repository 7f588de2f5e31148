package webhook

import (
	"context"

	"storepay/internal/domain/payment"
)

// Processor applies a parsed, verified notification to local state.
type Processor interface {
	ProcessNotification(ctx context.Context, n payment.Notification) (payment.ReconcileResult, error)
}
