// Package provider defines the payment gateway adapter contract. One adapter
// exists per gateway; adding a provider means adding an adapter, not touching
// reconciliation.
package provider

import (
	"net/http"

	"storepay/internal/domain/payment"
)

// Callback is a parsed inbound notification together with the decoded
// provider fields the signature was computed over.
type Callback struct {
	Notification payment.Notification
	Fields       payment.RawFields
}

// Adapter normalizes and authenticates one provider's wire format.
type Adapter interface {
	Name() payment.Provider

	// Parse normalizes the provider request into a canonical notification.
	// Returns apperror.ErrMissingSignature / apperror.ErrParseFailure on
	// rejected input.
	Parse(r *http.Request) (*Callback, error)

	// Verify reports whether the signature matches the payload. It is
	// deterministic and does no I/O; an error is returned only for
	// misconfiguration (missing secret), never for an invalid signature.
	Verify(fields payment.RawFields, signature string) (bool, error)
}
