package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"storepay/internal/controller/apperror"
	"storepay/internal/domain/payment"
	"storepay/internal/provider"
	"storepay/internal/webhook"
	"storepay/pkg/logger"
	"storepay/pkg/metrics"

	"github.com/gin-gonic/gin"
	"github.com/google/go-querystring/query"
)

// WebhookHandler terminates one provider's server-to-server callbacks and
// its browser redirect. The response contract is deliberately narrow: 200
// for accepted or already-processed notifications, 403 for anything rejected
// without saying why, 500 only for transient faults worth a provider retry.
type WebhookHandler struct {
	adapter   provider.Adapter
	processor webhook.Processor
	audit     payment.AuditSink // nil when auditing is disabled
	logger    *logger.Logger

	successURL string
	errorURL   string
}

func NewWebhookHandler(
	adapter provider.Adapter,
	processor webhook.Processor,
	audit payment.AuditSink,
	l *logger.Logger,
	successURL, errorURL string,
) WebhookHandler {
	return WebhookHandler{
		adapter:    adapter,
		processor:  processor,
		audit:      audit,
		logger:     l,
		successURL: successURL,
		errorURL:   errorURL,
	}
}

// Notify handles the POST server-to-server callback. The request payload is
// snapshotted before parsing so rejections stay inspectable: a callback the
// adapter cannot even decode is still logged and indexed with what was sent.
func (h *WebhookHandler) Notify(c *gin.Context) {
	providerName := string(h.adapter.Name())
	raw := rawRequestPayload(c)

	callback, err := h.adapter.Parse(c.Request)
	if err != nil {
		result := metrics.ResultParseFailure
		if errors.Is(err, apperror.ErrMissingSignature) {
			result = metrics.ResultSignatureInvalid
		}
		h.reject(c, providerName, result, nil, raw, err)
		return
	}

	ok, err := h.adapter.Verify(callback.Fields, callback.Notification.Signature)
	if err != nil {
		h.fail(c, providerName, &callback.Notification, raw, err)
		return
	}
	if !ok {
		h.reject(c, providerName, metrics.ResultSignatureInvalid, &callback.Notification, raw,
			apperror.ErrSignatureInvalid)
		return
	}

	res, err := h.processor.ProcessNotification(c, callback.Notification)
	if err != nil {
		switch {
		case errors.Is(err, apperror.ErrDuplicateTransaction):
			h.record(c, providerName, metrics.ResultDuplicate, &callback.Notification, raw)
			c.String(http.StatusOK, "already processed")
		case errors.Is(err, apperror.ErrOrderNotFound):
			h.reject(c, providerName, metrics.ResultUnknownOrder, &callback.Notification, raw, err)
		case errors.Is(err, apperror.ErrParseFailure):
			h.reject(c, providerName, metrics.ResultParseFailure, &callback.Notification, raw, err)
		default:
			h.fail(c, providerName, &callback.Notification, raw, err)
		}
		return
	}

	h.record(c, providerName, metrics.ResultReconciled, &callback.Notification, raw)
	h.logger.Info("Webhook reconciled: provider=%s transaction_id=%s order_id=%s order_paid=%t",
		providerName, callback.Notification.ProviderTransactionID, res.Payment.OrderID, res.OrderPaid)

	c.String(http.StatusOK, "accepted")
}

// Redirect handles the GET browser-return variant. It only navigates; order
// state changes exclusively through the POST callback.
func (h *WebhookHandler) Redirect(c *gin.Context) {
	orderID, txID, success := redirectParams(h.adapter.Name(), c)

	target := h.errorURL
	status := "failed"
	if success {
		target = h.successURL
		status = "success"
	}

	values, err := query.Values(redirectQuery{
		Order:       orderID,
		Transaction: txID,
		Status:      status,
	})
	if err != nil {
		c.Redirect(http.StatusFound, target)
		return
	}

	c.Redirect(http.StatusFound, target+"?"+values.Encode())
}

type redirectQuery struct {
	Order       string `url:"order,omitempty"`
	Transaction string `url:"transaction,omitempty"`
	Status      string `url:"status"`
}

func redirectParams(p payment.Provider, c *gin.Context) (orderID, txID string, success bool) {
	switch p {
	case payment.ProviderKashier:
		return c.Query("merchantOrderId"),
			c.Query("transactionId"),
			c.Query("paymentStatus") == "SUCCESS"
	default:
		return c.Query("merchant_order_id"),
			c.Query("id"),
			c.Query("success") == "true"
	}
}

// rawRequestPayload snapshots the request body, restoring it for the adapter
// to read, and normalizes it to valid JSON so the audit document always
// marshals. Query-style callbacks with an empty body fall back to the raw
// query string.
func rawRequestPayload(c *gin.Context) json.RawMessage {
	var body []byte
	if c.Request.Body != nil {
		body, _ = io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
	}

	if len(bytes.TrimSpace(body)) == 0 {
		if q := c.Request.URL.RawQuery; q != "" {
			quoted, _ := json.Marshal(q)
			return quoted
		}
		return nil
	}
	if json.Valid(body) {
		return body
	}

	quoted, _ := json.Marshal(string(body))
	return quoted
}

// reject answers 403 with a constant body. The real reason and the payload
// stay in logs and the audit trail so callers learn nothing about which
// check failed.
func (h *WebhookHandler) reject(c *gin.Context, providerName, result string, n *payment.Notification, raw json.RawMessage, err error) {
	metrics.WebhooksTotal.WithLabelValues(providerName, result).Inc()
	h.logger.Warn("Webhook rejected: provider=%s result=%s error=%v payload=%s",
		providerName, result, err, raw)
	h.index(c, providerName, result, n, raw)

	c.String(http.StatusForbidden, "callback rejected")
}

func (h *WebhookHandler) fail(c *gin.Context, providerName string, n *payment.Notification, raw json.RawMessage, err error) {
	metrics.WebhooksTotal.WithLabelValues(providerName, metrics.ResultError).Inc()
	h.logger.Error("Webhook processing failed: provider=%s error=%v", providerName, err)
	h.index(c, providerName, metrics.ResultError, n, raw)

	c.String(http.StatusInternalServerError, "internal error")
}

func (h *WebhookHandler) record(c *gin.Context, providerName, result string, n *payment.Notification, raw json.RawMessage) {
	metrics.WebhooksTotal.WithLabelValues(providerName, result).Inc()
	h.index(c, providerName, result, n, raw)
}

func (h *WebhookHandler) index(c *gin.Context, providerName, result string, n *payment.Notification, raw json.RawMessage) {
	if h.audit == nil {
		return
	}

	record := payment.AuditRecord{
		Provider:   payment.Provider(providerName),
		Result:     result,
		RawPayload: raw,
		ReceivedAt: time.Now().UTC(),
	}
	if n != nil {
		record.TransactionID = n.ProviderTransactionID
		record.MerchantOrderID = n.MerchantOrderID
		if len(record.RawPayload) == 0 {
			record.RawPayload = n.RawPayload
		}
	}

	if err := h.audit.IndexCallback(c, record); err != nil {
		h.logger.Warn("Audit index failed: provider=%s result=%s error=%v", providerName, result, err)
	}
}
