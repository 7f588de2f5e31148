package kashier

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"storepay/internal/controller/apperror"
	"storepay/internal/domain/payment"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAPIKey = "kashier-test-key"

func sign(t *testing.T, key string, fields payment.RawFields) string {
	t.Helper()
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(signedString(fields)))
	return hex.EncodeToString(mac.Sum(nil))
}

func webhookBody(t *testing.T, hash string) string {
	t.Helper()
	return `{
		"event": "pay",
		"data": {
			"amount": "150.00",
			"currency": "EGP",
			"merchantOrderId": "order-1",
			"orderId": "OID-77",
			"orderReference": "TEST-ORD-77",
			"paymentStatus": "SUCCESS",
			"transactionId": "TX-12345",
			"transactionResponseCode": "00",
			"signatureKeys": ["paymentStatus", "amount", "transactionId", "merchantOrderId", "currency"]
		},
		"hash": "` + hash + `"
	}`
}

func TestSignedKeys(t *testing.T) {
	t.Run("should sort the payload's signatureKeys alphabetically", func(t *testing.T) {
		fields := payment.RawFields{
			"signatureKeys": []any{"paymentStatus", "amount", "transactionId"},
		}

		assert.Equal(t, []string{"amount", "paymentStatus", "transactionId"}, SignedKeys(fields))
	})

	t.Run("should fall back to the fixed list when signatureKeys is absent", func(t *testing.T) {
		keys := SignedKeys(payment.RawFields{})

		assert.Equal(t, fallbackSignatureKeys, keys)
		assert.True(t, sortedAlphabetically(keys))
	})

	t.Run("should fall back when signatureKeys holds no strings", func(t *testing.T) {
		fields := payment.RawFields{"signatureKeys": []any{1, 2}}

		assert.Equal(t, fallbackSignatureKeys, SignedKeys(fields))
	})
}

func sortedAlphabetically(keys []string) bool {
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			return false
		}
	}
	return true
}

func TestVerify(t *testing.T) {
	adapter := New(testAPIKey)

	fields := payment.RawFields{
		"amount":          "150.00",
		"currency":        "EGP",
		"merchantOrderId": "order-1",
		"paymentStatus":   "SUCCESS",
		"transactionId":   "TX-12345",
		"signatureKeys":   []any{"amount", "currency", "merchantOrderId", "paymentStatus", "transactionId"},
	}

	t.Run("should accept a matching signature", func(t *testing.T) {
		ok, err := adapter.Verify(fields, sign(t, testAPIKey, fields))

		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("should reject a signature for different values", func(t *testing.T) {
		signature := sign(t, testAPIKey, fields)

		tampered := payment.RawFields{}
		for k, v := range fields {
			tampered[k] = v
		}
		tampered["amount"] = "9150.00"

		ok, err := adapter.Verify(tampered, signature)

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("should reject a signature made with another key", func(t *testing.T) {
		ok, err := adapter.Verify(fields, sign(t, "other-key", fields))

		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("should error without an api key", func(t *testing.T) {
		_, err := New("").Verify(fields, "whatever")

		require.ErrorIs(t, err, apperror.ErrVerifierMisconfigured)
	})
}

func TestParseBody(t *testing.T) {
	adapter := New(testAPIKey)

	t.Run("should normalize a webhook body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/webhooks/kashier", strings.NewReader(webhookBody(t, "deadbeef")))

		callback, err := adapter.Parse(req)

		require.NoError(t, err)
		n := callback.Notification
		assert.Equal(t, payment.ProviderKashier, n.Provider)
		assert.Equal(t, "TX-12345", n.ProviderTransactionID)
		assert.Equal(t, "order-1", n.MerchantOrderID)
		assert.True(t, n.Amount.Equal(decimal.RequireFromString("150.00")))
		assert.Equal(t, "EGP", n.Currency)
		assert.Equal(t, payment.OutcomeSuccess, n.Outcome)
		assert.Equal(t, "deadbeef", n.Signature)
	})

	t.Run("parsed body should verify end to end", func(t *testing.T) {
		probe := httptest.NewRequest("POST", "/webhooks/kashier", strings.NewReader(webhookBody(t, "x")))
		parsed, err := adapter.Parse(probe)
		require.NoError(t, err)

		signature := sign(t, testAPIKey, parsed.Fields)
		req := httptest.NewRequest("POST", "/webhooks/kashier", strings.NewReader(webhookBody(t, signature)))

		callback, err := adapter.Parse(req)
		require.NoError(t, err)

		ok, err := adapter.Verify(callback.Fields, callback.Notification.Signature)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("should map non-success statuses to failure", func(t *testing.T) {
		body := `{"event": "pay", "data": {"amount": "10", "currency": "EGP",
			"merchantOrderId": "order-2", "paymentStatus": "FAILED", "transactionId": "TX-2"}, "hash": "h"}`
		req := httptest.NewRequest("POST", "/webhooks/kashier", strings.NewReader(body))

		callback, err := adapter.Parse(req)

		require.NoError(t, err)
		assert.Equal(t, payment.OutcomeFailure, callback.Notification.Outcome)
	})

	t.Run("should reject a body without hash", func(t *testing.T) {
		body := `{"event": "pay", "data": {"transactionId": "TX-2"}}`
		req := httptest.NewRequest("POST", "/webhooks/kashier", strings.NewReader(body))

		_, err := adapter.Parse(req)

		require.ErrorIs(t, err, apperror.ErrMissingSignature)
	})

	t.Run("should reject a malformed body", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/webhooks/kashier", strings.NewReader("nope"))

		_, err := adapter.Parse(req)

		require.ErrorIs(t, err, apperror.ErrParseFailure)
	})

	t.Run("should reject an unparseable amount", func(t *testing.T) {
		body := `{"event": "pay", "data": {"amount": "lots", "currency": "EGP",
			"merchantOrderId": "order-2", "paymentStatus": "SUCCESS", "transactionId": "TX-2"}, "hash": "h"}`
		req := httptest.NewRequest("POST", "/webhooks/kashier", strings.NewReader(body))

		_, err := adapter.Parse(req)

		require.ErrorIs(t, err, apperror.ErrParseFailure)
	})
}

func TestParseQuery(t *testing.T) {
	adapter := New(testAPIKey)

	t.Run("should normalize redirect query parameters", func(t *testing.T) {
		params := url.Values{}
		params.Set("paymentStatus", "SUCCESS")
		params.Set("merchantOrderId", "order-1")
		params.Set("transactionId", "TX-12345")
		params.Set("amount", "150.00")
		params.Set("currency", "EGP")
		params.Set("signature", "cafebabe")

		req := httptest.NewRequest("GET", "/webhooks/kashier?"+params.Encode(), nil)

		callback, err := adapter.Parse(req)

		require.NoError(t, err)
		n := callback.Notification
		assert.Equal(t, "TX-12345", n.ProviderTransactionID)
		assert.Equal(t, "order-1", n.MerchantOrderID)
		assert.Equal(t, payment.OutcomeSuccess, n.Outcome)
		assert.Equal(t, "cafebabe", n.Signature)
	})

	t.Run("should prefer the hash parameter over signature", func(t *testing.T) {
		params := url.Values{}
		params.Set("paymentStatus", "SUCCESS")
		params.Set("merchantOrderId", "order-1")
		params.Set("transactionId", "TX-12345")
		params.Set("amount", "150.00")
		params.Set("hash", "primary")
		params.Set("signature", "secondary")

		req := httptest.NewRequest("GET", "/webhooks/kashier?"+params.Encode(), nil)

		callback, err := adapter.Parse(req)

		require.NoError(t, err)
		assert.Equal(t, "primary", callback.Notification.Signature)
	})

	t.Run("should reject a query without any signature", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/webhooks/kashier?paymentStatus=SUCCESS&merchantOrderId=order-1", nil)

		_, err := adapter.Parse(req)

		require.ErrorIs(t, err, apperror.ErrMissingSignature)
	})
}
