package payment

import (
	"encoding/json"
	"errors"
	"slices"

	"github.com/shopspring/decimal"
)

// Provider identifies a payment gateway.
type Provider string

const (
	ProviderPaymob  Provider = "paymob"
	ProviderKashier Provider = "kashier"
	ProviderStripe  Provider = "stripe"
)

var AvailableProviders = []Provider{ProviderPaymob, ProviderKashier, ProviderStripe}

func NewProvider(raw string) (Provider, error) {
	if slices.Contains(AvailableProviders, Provider(raw)) {
		return Provider(raw), nil
	}
	return "", errors.New("invalid payment provider")
}

// Outcome is the normalized result a provider reported for a transaction.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// RawFields is the decoded provider payload used for signature canonicalization.
type RawFields map[string]any

// Notification is the canonical, provider-agnostic payment callback.
//
// ProviderTransactionID is the idempotency key: the ledger enforces that no
// two notifications with the same (provider, transaction id) produce two
// reconciliation side effects.
type Notification struct {
	Provider              Provider        `json:"provider"`
	ProviderTransactionID string          `json:"provider_transaction_id"`
	MerchantOrderID       string          `json:"merchant_order_id"`
	Amount                decimal.Decimal `json:"amount"`
	Currency              string          `json:"currency"`
	Outcome               Outcome         `json:"outcome"`
	RawPayload            json.RawMessage `json:"raw_payload,omitempty"`
	Signature             string          `json:"-"`
}

func (n *Notification) Validate() error {
	if n.ProviderTransactionID == "" {
		return errors.New("missing provider transaction id")
	}
	if n.MerchantOrderID == "" {
		return errors.New("missing merchant order id")
	}
	if _, err := NewProvider(string(n.Provider)); err != nil {
		return err
	}
	return nil
}
