// Package apperror defines sentinel errors shared between domain services and
// the HTTP layer.
package apperror

import "errors"

var (
	// ErrSignatureInvalid means the provider signature did not match the payload.
	ErrSignatureInvalid = errors.New("signature invalid")

	// ErrParseFailure means the callback payload could not be normalized.
	ErrParseFailure = errors.New("callback parse failure")

	// ErrMissingSignature means the callback carried no signature at all.
	ErrMissingSignature = errors.New("missing signature")

	// ErrDuplicateTransaction means the transaction was already reconciled.
	// Handlers acknowledge it with a success response so providers stop retrying.
	ErrDuplicateTransaction = errors.New("transaction already processed")

	// ErrOrderNotFound means a notification referenced an order that does not exist.
	ErrOrderNotFound = errors.New("order not found")

	// ErrVerifierMisconfigured means a verifier is missing its shared secret.
	ErrVerifierMisconfigured = errors.New("verifier misconfigured")

	ErrInvalidPaymentsQuery = errors.New("invalid payments query")
)
