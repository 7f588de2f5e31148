// Package paymob implements the Paymob transaction-callback adapter:
// HMAC-SHA512 over a fixed 20-key canonical string, hex-encoded, delivered
// as the "hmac" query parameter next to a JSON body {"obj": {...}}.
package paymob

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha512"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"storepay/internal/controller/apperror"
	"storepay/internal/domain/payment"
	"storepay/internal/provider"
)

type Adapter struct {
	secret string
}

func New(secret string) *Adapter {
	return &Adapter{secret: secret}
}

func (a *Adapter) Name() payment.Provider {
	return payment.ProviderPaymob
}

func (a *Adapter) Parse(r *http.Request) (*provider.Callback, error) {
	signature := r.URL.Query().Get("hmac")
	if signature == "" {
		return nil, apperror.ErrMissingSignature
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %s", apperror.ErrParseFailure, err.Error())
	}

	var envelope struct {
		Obj json.RawMessage `json:"obj"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode body: %s", apperror.ErrParseFailure, err.Error())
	}
	if len(envelope.Obj) == 0 {
		return nil, fmt.Errorf("%w: missing obj", apperror.ErrParseFailure)
	}

	fields, err := decodeFields(envelope.Obj)
	if err != nil {
		return nil, fmt.Errorf("%w: decode obj: %s", apperror.ErrParseFailure, err.Error())
	}

	notification, err := buildNotification(fields, envelope.Obj, signature)
	if err != nil {
		return nil, err
	}

	return &provider.Callback{
		Notification: notification,
		Fields:       fields,
	}, nil
}

// Verify compares the HMAC-SHA512 hex digest of the canonical string against
// the provided signature in constant time.
func (a *Adapter) Verify(fields payment.RawFields, signature string) (bool, error) {
	if a.secret == "" {
		return false, fmt.Errorf("%w: paymob hmac secret", apperror.ErrVerifierMisconfigured)
	}
	if signature == "" {
		return false, nil
	}

	mac := hmac.New(sha512.New, []byte(a.secret))
	mac.Write([]byte(CanonicalString(fields)))
	expected := hex.EncodeToString(mac.Sum(nil))

	return hmac.Equal([]byte(expected), []byte(signature)), nil
}

// decodeFields keeps numbers as json.Number so canonical stringification
// reproduces the exact wire text.
func decodeFields(raw json.RawMessage) (payment.RawFields, error) {
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.UseNumber()

	var fields map[string]any
	if err := decoder.Decode(&fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func buildNotification(fields payment.RawFields, raw json.RawMessage, signature string) (payment.Notification, error) {
	transactionID := stringify(fields["id"])
	if transactionID == "" {
		return payment.Notification{}, fmt.Errorf("%w: missing transaction id", apperror.ErrParseFailure)
	}

	orderObj, _ := fields["order"].(map[string]any)
	merchantOrderID := stringify(orderObj["merchant_order_id"])
	if merchantOrderID == "" {
		return payment.Notification{}, fmt.Errorf("%w: missing merchant_order_id", apperror.ErrParseFailure)
	}

	currency, _ := fields["currency"].(string)

	amountCents, err := parseAmountCents(fields["amount_cents"])
	if err != nil {
		return payment.Notification{}, fmt.Errorf("%w: amount_cents: %s", apperror.ErrParseFailure, err.Error())
	}

	outcome := payment.OutcomeFailure
	if success, _ := fields["success"].(bool); success {
		outcome = payment.OutcomeSuccess
	}

	return payment.Notification{
		Provider:              payment.ProviderPaymob,
		ProviderTransactionID: transactionID,
		MerchantOrderID:       merchantOrderID,
		Amount:                payment.FromMinorUnits(amountCents, currency),
		Currency:              currency,
		Outcome:               outcome,
		RawPayload:            raw,
		Signature:             signature,
	}, nil
}

func parseAmountCents(v any) (int64, error) {
	number, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("unexpected type %T", v)
	}
	return number.Int64()
}
