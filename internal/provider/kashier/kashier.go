// Package kashier implements the Kashier callback adapter. Webhooks sign the
// fields named by the payload's own signatureKeys array (with a fixed
// fallback list), sorted alphabetically, values concatenated raw and
// HMAC-SHA256'd with the API key.
//
// The browser-redirect signature uses a different, undocumented scheme; the
// redirect path is treated as navigation only and never trusted to mutate
// order state.
package kashier

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"

	"storepay/internal/controller/apperror"
	"storepay/internal/domain/payment"
	"storepay/internal/provider"

	"github.com/shopspring/decimal"
)

// fallbackSignatureKeys covers payloads that omit signatureKeys.
var fallbackSignatureKeys = []string{
	"amount",
	"cardBrand",
	"cardDataToken",
	"currency",
	"maskedCard",
	"merchantOrderId",
	"orderId",
	"orderReference",
	"paymentStatus",
	"transactionId",
	"transactionResponseCode",
}

type Adapter struct {
	apiKey string
}

func New(apiKey string) *Adapter {
	return &Adapter{apiKey: apiKey}
}

func (a *Adapter) Name() payment.Provider {
	return payment.ProviderKashier
}

// Parse accepts either URL query parameters (redirect style) or a JSON body
// shaped {event, data, hash}. When the query carries no payment fields the
// body is tried as fallback.
func (a *Adapter) Parse(r *http.Request) (*provider.Callback, error) {
	query := r.URL.Query()

	if query.Get("paymentStatus") != "" || query.Get("merchantOrderId") != "" {
		return parseQuery(query)
	}
	return parseBody(r.Body)
}

// Verify computes HMAC-SHA256 over the alphabetically sorted signature field
// values and compares hex digests in constant time.
func (a *Adapter) Verify(fields payment.RawFields, signature string) (bool, error) {
	if a.apiKey == "" {
		return false, fmt.Errorf("%w: kashier api key", apperror.ErrVerifierMisconfigured)
	}
	if signature == "" {
		return false, nil
	}

	mac := hmac.New(sha256.New, []byte(a.apiKey))
	mac.Write([]byte(signedString(fields)))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature)), nil
}

// SignedKeys returns the field names covered by the signature, sorted
// alphabetically: the payload's signatureKeys when present, the fallback
// list otherwise.
func SignedKeys(fields payment.RawFields) []string {
	raw, ok := fields["signatureKeys"].([]any)
	if !ok || len(raw) == 0 {
		return fallbackSignatureKeys
	}

	keys := make([]string, 0, len(raw))
	for _, k := range raw {
		if s, ok := k.(string); ok {
			keys = append(keys, s)
		}
	}
	if len(keys) == 0 {
		return fallbackSignatureKeys
	}

	sort.Strings(keys)
	return keys
}

func signedString(fields payment.RawFields) string {
	var b strings.Builder
	for _, key := range SignedKeys(fields) {
		b.WriteString(stringify(fields[key]))
	}
	return b.String()
}

func stringify(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		if value {
			return "true"
		}
		return "false"
	case json.Number:
		return value.String()
	default:
		return fmt.Sprintf("%v", value)
	}
}

func parseQuery(query url.Values) (*provider.Callback, error) {
	signature := query.Get("hash")
	if signature == "" {
		signature = query.Get("signature")
	}
	if signature == "" {
		return nil, apperror.ErrMissingSignature
	}

	fields := payment.RawFields{}
	for key := range query {
		fields[key] = query.Get(key)
	}

	raw, _ := json.Marshal(fields)
	notification, err := buildNotification(fields, raw, signature)
	if err != nil {
		return nil, err
	}

	return &provider.Callback{Notification: notification, Fields: fields}, nil
}

func parseBody(body io.Reader) (*provider.Callback, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %s", apperror.ErrParseFailure, err.Error())
	}

	var envelope struct {
		Event string          `json:"event"`
		Data  json.RawMessage `json:"data"`
		Hash  string          `json:"hash"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode body: %s", apperror.ErrParseFailure, err.Error())
	}
	if envelope.Hash == "" {
		return nil, apperror.ErrMissingSignature
	}
	if len(envelope.Data) == 0 {
		return nil, fmt.Errorf("%w: missing data", apperror.ErrParseFailure)
	}

	decoder := json.NewDecoder(bytes.NewReader(envelope.Data))
	decoder.UseNumber()

	var fields payment.RawFields
	if err := decoder.Decode(&fields); err != nil {
		return nil, fmt.Errorf("%w: decode data: %s", apperror.ErrParseFailure, err.Error())
	}

	notification, err := buildNotification(fields, envelope.Data, envelope.Hash)
	if err != nil {
		return nil, err
	}

	return &provider.Callback{Notification: notification, Fields: fields}, nil
}

func buildNotification(fields payment.RawFields, raw json.RawMessage, signature string) (payment.Notification, error) {
	transactionID := stringify(fields["transactionId"])
	if transactionID == "" {
		return payment.Notification{}, fmt.Errorf("%w: missing transactionId", apperror.ErrParseFailure)
	}

	merchantOrderID := stringify(fields["merchantOrderId"])
	if merchantOrderID == "" {
		return payment.Notification{}, fmt.Errorf("%w: missing merchantOrderId", apperror.ErrParseFailure)
	}

	currency := stringify(fields["currency"])

	// Kashier reports amounts in the major currency unit already.
	amount, err := decimal.NewFromString(stringify(fields["amount"]))
	if err != nil {
		return payment.Notification{}, fmt.Errorf("%w: amount: %s", apperror.ErrParseFailure, err.Error())
	}

	outcome := payment.OutcomeFailure
	if strings.EqualFold(stringify(fields["paymentStatus"]), "SUCCESS") ||
		strings.EqualFold(stringify(fields["status"]), "SUCCESS") {
		outcome = payment.OutcomeSuccess
	}

	return payment.Notification{
		Provider:              payment.ProviderKashier,
		ProviderTransactionID: transactionID,
		MerchantOrderID:       merchantOrderID,
		Amount:                amount,
		Currency:              currency,
		Outcome:               outcome,
		RawPayload:            raw,
		Signature:             signature,
	}, nil
}
