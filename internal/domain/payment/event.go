package payment

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentRecordedEvent is published after a reconciliation commits. Consumers
// (customer notification mails, analytics) are fire-and-forget; payment
// correctness never depends on delivery.
type PaymentRecordedEvent struct {
	OrderID       string          `json:"order_id"`
	Provider      Provider        `json:"provider"`
	TransactionID string          `json:"transaction_id"`
	Status        PaymentStatus   `json:"status"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	OrderPaid     bool            `json:"order_paid"`
	RecordedAt    time.Time       `json:"recorded_at"`
}
