package paymob

import (
	"encoding/json"
	"strconv"
	"strings"

	"storepay/internal/domain/payment"
)

// hmacKeys is the fixed, documented key order Paymob signs transaction
// callbacks with. Dotted keys resolve into nested objects; "order" resolves
// to order.id when the payload carries the full order object.
var hmacKeys = []string{
	"amount_cents",
	"created_at",
	"currency",
	"error_occured",
	"has_parent_transaction",
	"id",
	"integration_id",
	"is_3d_secure",
	"is_auth",
	"is_capture",
	"is_refunded",
	"is_standalone_payment",
	"is_voided",
	"order",
	"owner",
	"pending",
	"source_data.pan",
	"source_data.sub_type",
	"source_data.type",
	"success",
}

// CanonicalPairs returns the ordered (key, value) pairs the HMAC is computed
// over, exposed separately from HTTP parsing so ordering is testable on its
// own.
func CanonicalPairs(fields payment.RawFields) [][2]string {
	pairs := make([][2]string, 0, len(hmacKeys))
	for _, key := range hmacKeys {
		pairs = append(pairs, [2]string{key, stringify(lookup(fields, key))})
	}
	return pairs
}

// CanonicalString concatenates the canonical values with no delimiter.
func CanonicalString(fields payment.RawFields) string {
	var b strings.Builder
	for _, pair := range CanonicalPairs(fields) {
		b.WriteString(pair[1])
	}
	return b.String()
}

func lookup(fields payment.RawFields, dottedKey string) any {
	var current any = map[string]any(fields)
	for _, part := range strings.Split(dottedKey, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		current = m[part]
	}

	// "order" arrives as a full object; the signature uses its id.
	if obj, ok := current.(map[string]any); ok {
		return obj["id"]
	}
	return current
}

func stringify(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case json.Number:
		return value.String()
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(value, 10)
	default:
		b, err := json.Marshal(value)
		if err != nil {
			return ""
		}
		return string(b)
	}
}
