// Package stripe implements the Stripe verification path. Stripe has no
// local signature check here: the checkout success page hands us a session
// id and we trust the provider's own TLS-authenticated answer about the
// session's payment status.
package stripe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"storepay/internal/controller/apperror"
	"storepay/internal/domain/payment"

	stripego "github.com/stripe/stripe-go/v81"
	"github.com/stripe/stripe-go/v81/client"
)

// SessionClient retrieves checkout sessions from the provider.
type SessionClient interface {
	GetSession(ctx context.Context, id string) (*stripego.CheckoutSession, error)
}

// APISessionClient is the stripe-go backed SessionClient.
type APISessionClient struct {
	api *client.API
}

func NewAPISessionClient(secretKey string, timeout time.Duration) (*APISessionClient, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("%w: stripe secret key", apperror.ErrVerifierMisconfigured)
	}

	backend := stripego.GetBackendWithConfig(stripego.APIBackend, &stripego.BackendConfig{
		HTTPClient: &http.Client{Timeout: timeout},
	})

	return &APISessionClient{
		api: client.New(secretKey, &stripego.Backends{API: backend}),
	}, nil
}

func (c *APISessionClient) GetSession(ctx context.Context, id string) (*stripego.CheckoutSession, error) {
	params := &stripego.CheckoutSessionParams{}
	params.Context = ctx
	return c.api.CheckoutSessions.Get(id, params)
}

// Adapter manufactures a canonical notification from a session lookup.
type Adapter struct {
	sessions SessionClient
}

func NewAdapter(sessions SessionClient) *Adapter {
	return &Adapter{sessions: sessions}
}

func (a *Adapter) Name() payment.Provider {
	return payment.ProviderStripe
}

// VerifySession fetches the session and maps its payment status to a
// notification. Transport failures surface as-is so callers respond with a
// retryable server error instead of a rejection.
func (a *Adapter) VerifySession(ctx context.Context, sessionID string) (payment.Notification, error) {
	if sessionID == "" {
		return payment.Notification{}, fmt.Errorf("%w: missing session id", apperror.ErrParseFailure)
	}

	sess, err := a.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return payment.Notification{}, fmt.Errorf("retrieve session: %w", err)
	}

	if sess.ClientReferenceID == "" {
		return payment.Notification{}, fmt.Errorf("%w: session has no client reference", apperror.ErrParseFailure)
	}

	outcome := payment.OutcomeFailure
	switch sess.PaymentStatus {
	case stripego.CheckoutSessionPaymentStatusPaid, stripego.CheckoutSessionPaymentStatusNoPaymentRequired:
		outcome = payment.OutcomeSuccess
	}

	currency := strings.ToUpper(string(sess.Currency))

	raw, _ := json.Marshal(map[string]any{
		"session_id":          sess.ID,
		"payment_status":      sess.PaymentStatus,
		"amount_total":        sess.AmountTotal,
		"currency":            sess.Currency,
		"client_reference_id": sess.ClientReferenceID,
	})

	return payment.Notification{
		Provider:              payment.ProviderStripe,
		ProviderTransactionID: sess.ID,
		MerchantOrderID:       sess.ClientReferenceID,
		Amount:                payment.FromMinorUnits(sess.AmountTotal, currency),
		Currency:              currency,
		Outcome:               outcome,
		RawPayload:            raw,
	}, nil
}
