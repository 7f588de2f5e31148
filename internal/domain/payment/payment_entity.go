package payment

import (
	"encoding/json"
	"fmt"
	"time"

	"storepay/internal/controller/apperror"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the persisted state of a ledger row.
type PaymentStatus string

const (
	PaymentSuccess PaymentStatus = "success"
	PaymentFailed  PaymentStatus = "failed"
)

// StatusForOutcome maps a notification outcome to the ledger status.
func StatusForOutcome(outcome Outcome) PaymentStatus {
	if outcome == OutcomeSuccess {
		return PaymentSuccess
	}
	return PaymentFailed
}

// Payment is an append-only ledger row. Rows are created once per distinct
// (provider, transaction id) and never updated afterwards.
type Payment struct {
	ID            string          `json:"id"`
	OrderID       string          `json:"order_id"`
	Provider      Provider        `json:"provider"`
	TransactionID string          `json:"transaction_id"`
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Status        PaymentStatus   `json:"status"`
	RawPayload    json.RawMessage `json:"raw_payload,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

type PaymentsQuery struct {
	OrderIDs  []string        `json:"order_ids" url:"order_ids,omitempty" form:"order_ids"`
	Providers []Provider      `json:"providers" url:"providers,omitempty" form:"providers"`
	Statuses  []PaymentStatus `json:"statuses" url:"statuses,omitempty" form:"statuses"`

	Limit int `json:"limit" url:"limit,omitempty" form:"limit"`
}

func (q *PaymentsQuery) Validate() error {
	if q.Limit < 0 {
		return fmt.Errorf("invalid limit: %d", q.Limit)
	}
	for _, p := range q.Providers {
		if _, err := NewProvider(string(p)); err != nil {
			return fmt.Errorf("invalid provider: %s", p)
		}
	}
	return nil
}

type PaymentsQueryBuilder struct {
	query *PaymentsQuery
}

func NewPaymentsQueryBuilder() *PaymentsQueryBuilder {
	return &PaymentsQueryBuilder{query: &PaymentsQuery{}}
}

func (b *PaymentsQueryBuilder) Build() (*PaymentsQuery, error) {
	if err := b.query.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", apperror.ErrInvalidPaymentsQuery, err.Error())
	}
	return b.query, nil
}

func (b *PaymentsQueryBuilder) WithOrderIDs(ids ...string) *PaymentsQueryBuilder {
	b.query.OrderIDs = ids
	return b
}

func (b *PaymentsQueryBuilder) WithProviders(providers ...Provider) *PaymentsQueryBuilder {
	b.query.Providers = providers
	return b
}

func (b *PaymentsQueryBuilder) WithStatuses(statuses ...PaymentStatus) *PaymentsQueryBuilder {
	b.query.Statuses = statuses
	return b
}

func (b *PaymentsQueryBuilder) WithLimit(limit int) *PaymentsQueryBuilder {
	b.query.Limit = limit
	return b
}
