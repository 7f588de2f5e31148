package opensearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"storepay/internal/domain/payment"

	"github.com/google/uuid"
	"github.com/opensearch-project/opensearch-go"
)

var _ payment.AuditSink = (*AuditSink)(nil)

// AuditSink indexes every received callback, raw payload included, so
// rejected and tampered notifications stay inspectable after the fact.
type AuditSink struct {
	client *opensearch.Client
	index  string
}

func NewAuditSink(ctx context.Context, urls []string, index string) (*AuditSink, error) {
	if len(urls) == 0 {
		return nil, errors.New("no OpenSearch addresses configured")
	}

	cfg := opensearch.Config{
		Addresses: urls,
		Transport: &http.Transport{
			MaxIdleConnsPerHost: 10,
		},
	}
	client, err := opensearch.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("opensearch client: %w", err)
	}

	sink := &AuditSink{client: client, index: index}

	if err := sink.ensureIndex(ctx); err != nil {
		return nil, err
	}
	return sink, nil
}

func (s *AuditSink) ensureIndex(ctx context.Context) error {
	res, err := s.client.Indices.Exists([]string{s.index}, s.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("indices.exists: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusOK {
		return nil
	}

	body := map[string]any{
		"mappings": map[string]any{
			"properties": map[string]any{
				"record_id":         map[string]any{"type": "keyword"},
				"provider":          map[string]any{"type": "keyword"},
				"transaction_id":    map[string]any{"type": "keyword"},
				"merchant_order_id": map[string]any{"type": "keyword"},
				"result":            map[string]any{"type": "keyword"},
				"received_at":       map[string]any{"type": "date"},
				"raw_payload":       map[string]any{"type": "object", "enabled": true},
			},
		},
		"settings": map[string]any{
			"number_of_replicas": 0,
		},
	}
	buf, _ := json.Marshal(body)
	cr, err := s.client.Indices.Create(
		s.index,
		s.client.Indices.Create.WithBody(bytes.NewReader(buf)),
		s.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("indices.create: %w", err)
	}
	defer cr.Body.Close()
	if cr.IsError() {
		return fmt.Errorf("indices.create error: %s", cr.String())
	}
	return nil
}

type auditDoc struct {
	RecordID        string          `json:"record_id"`
	Provider        string          `json:"provider"`
	TransactionID   string          `json:"transaction_id,omitempty"`
	MerchantOrderID string          `json:"merchant_order_id,omitempty"`
	Result          string          `json:"result"`
	RawPayload      json.RawMessage `json:"raw_payload,omitempty"`
	ReceivedAt      time.Time       `json:"received_at"`
}

func (s *AuditSink) IndexCallback(ctx context.Context, record payment.AuditRecord) error {
	recordID := uuid.NewString()
	if record.ReceivedAt.IsZero() {
		record.ReceivedAt = time.Now().UTC()
	}

	doc := auditDoc{
		RecordID:        recordID,
		Provider:        string(record.Provider),
		TransactionID:   record.TransactionID,
		MerchantOrderID: record.MerchantOrderID,
		Result:          record.Result,
		RawPayload:      record.RawPayload,
		ReceivedAt:      record.ReceivedAt.UTC(),
	}
	payload, _ := json.Marshal(doc)

	res, err := s.client.Index(
		s.index,
		bytes.NewReader(payload),
		s.client.Index.WithDocumentID(recordID),
		s.client.Index.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("index: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index error: %s", res.String())
	}
	return nil
}
