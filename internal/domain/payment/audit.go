package payment

import (
	"context"
	"encoding/json"
	"time"
)

// AuditSink records every received callback, including rejected ones, with
// its raw payload for forensics. Best-effort: sink failures never affect the
// webhook response.
type AuditSink interface {
	IndexCallback(ctx context.Context, record AuditRecord) error
}

type AuditRecord struct {
	Provider        Provider        `json:"provider"`
	TransactionID   string          `json:"transaction_id,omitempty"`
	MerchantOrderID string          `json:"merchant_order_id,omitempty"`
	Result          string          `json:"result"`
	RawPayload      json.RawMessage `json:"raw_payload,omitempty"`
	ReceivedAt      time.Time       `json:"received_at"`
}
