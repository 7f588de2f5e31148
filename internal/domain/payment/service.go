package payment

import (
	"context"
	"fmt"
	"time"

	"storepay/internal/controller/apperror"

	"github.com/google/uuid"
)

// ReconcileService applies verified, non-duplicate notifications to order
// state. The ledger insert and the order transition commit or roll back
// together.
type ReconcileService struct {
	repo PaymentRepo
}

func NewReconcileService(repo PaymentRepo) *ReconcileService {
	return &ReconcileService{repo: repo}
}

// ReconcileResult reports what a reconciliation changed.
type ReconcileResult struct {
	Payment   Payment `json:"payment"`
	OrderPaid bool    `json:"order_paid"`
}

// Reconcile runs the idempotency check, ledger insert and order transition as
// a single atomic unit.
//
// Duplicate deliveries surface as apperror.ErrDuplicateTransaction: either
// the in-transaction lookup sees the earlier row, or two concurrent attempts
// race and the loser hits the (provider, transaction_id) unique constraint.
// Both roll back without side effects.
func (s *ReconcileService) Reconcile(ctx context.Context, n Notification) (ReconcileResult, error) {
	if err := n.Validate(); err != nil {
		return ReconcileResult{}, fmt.Errorf("%w: %s", apperror.ErrParseFailure, err.Error())
	}

	var result ReconcileResult
	err := s.repo.InTransaction(ctx, func(tx TxPaymentRepo) error {
		existing, err := tx.FindPayment(ctx, n.Provider, n.ProviderTransactionID)
		if err != nil {
			return fmt.Errorf("find payment: %w", err)
		}
		if existing != nil {
			return apperror.ErrDuplicateTransaction
		}

		ord, err := tx.GetOrder(ctx, n.MerchantOrderID)
		if err != nil {
			return fmt.Errorf("load order: %w", err)
		}

		entry := Payment{
			ID:            uuid.NewString(),
			OrderID:       ord.OrderID,
			Provider:      n.Provider,
			TransactionID: n.ProviderTransactionID,
			Amount:        n.Amount,
			Currency:      n.Currency,
			Status:        StatusForOutcome(n.Outcome),
			RawPayload:    n.RawPayload,
			CreatedAt:     time.Now().UTC(),
		}
		if err := tx.CreatePayment(ctx, entry); err != nil {
			return fmt.Errorf("record payment: %w", err)
		}

		if n.Outcome == OutcomeSuccess && ord.CanBePaid() {
			if err := tx.MarkOrderPaid(ctx, ord.OrderID, entry.CreatedAt); err != nil {
				return fmt.Errorf("mark order paid: %w", err)
			}
			result.OrderPaid = true
		}

		result.Payment = entry
		return nil
	})
	if err != nil {
		return ReconcileResult{}, err
	}
	return result, nil
}

// PaymentByTransaction is the ledger re-check used by the checkout
// confirmation action: browser-supplied success flags are only believed when
// a successful ledger row already exists.
func (s *ReconcileService) PaymentByTransaction(ctx context.Context, provider Provider, transactionID string) (*Payment, error) {
	p, err := s.repo.FindPayment(ctx, provider, transactionID)
	if err != nil {
		return nil, fmt.Errorf("find payment: %w", err)
	}
	return p, nil
}

func (s *ReconcileService) GetPayments(ctx context.Context, query PaymentsQuery) ([]Payment, error) {
	payments, err := s.repo.GetPayments(ctx, &query)
	if err != nil {
		return nil, fmt.Errorf("filter payments: %w", err)
	}
	return payments, nil
}
