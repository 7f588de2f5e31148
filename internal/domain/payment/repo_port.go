package payment

import (
	"context"
	"time"

	"storepay/internal/domain/order"
)

//go:generate mockgen -source repo_port.go -destination mock_payment_repo.go -package payment

// PaymentRepo owns the payment ledger and the payment-driven order
// transition. No other code path marks an order paid.
type PaymentRepo interface {
	TxPaymentRepo
	InTransaction(ctx context.Context, fn func(repo TxPaymentRepo) error) error
}

type TxPaymentRepo interface {
	// FindPayment returns the ledger row for (provider, transactionID),
	// or nil when none exists.
	FindPayment(ctx context.Context, provider Provider, transactionID string) (*Payment, error)

	GetPayments(ctx context.Context, query *PaymentsQuery) ([]Payment, error)

	// CreatePayment inserts an append-only ledger row. Returns
	// apperror.ErrDuplicateTransaction when (provider, transaction_id)
	// already exists.
	CreatePayment(ctx context.Context, p Payment) error

	// GetOrder returns apperror.ErrOrderNotFound for unknown ids.
	GetOrder(ctx context.Context, orderID string) (order.Order, error)

	MarkOrderPaid(ctx context.Context, orderID string, paidAt time.Time) error
}
