package stripe

import (
	"context"
	"errors"
	"testing"

	"storepay/internal/controller/apperror"
	"storepay/internal/domain/payment"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripego "github.com/stripe/stripe-go/v81"
)

type fakeSessionClient struct {
	session *stripego.CheckoutSession
	err     error
}

func (f *fakeSessionClient) GetSession(_ context.Context, _ string) (*stripego.CheckoutSession, error) {
	return f.session, f.err
}

func TestVerifySession(t *testing.T) {
	ctx := context.Background()

	t.Run("should map a paid session to success", func(t *testing.T) {
		adapter := NewAdapter(&fakeSessionClient{session: &stripego.CheckoutSession{
			ID:                "cs_test_123",
			ClientReferenceID: "order-1",
			PaymentStatus:     stripego.CheckoutSessionPaymentStatusPaid,
			AmountTotal:       15000,
			Currency:          stripego.CurrencyEGP,
		}})

		n, err := adapter.VerifySession(ctx, "cs_test_123")

		require.NoError(t, err)
		assert.Equal(t, payment.ProviderStripe, n.Provider)
		assert.Equal(t, "cs_test_123", n.ProviderTransactionID)
		assert.Equal(t, "order-1", n.MerchantOrderID)
		assert.True(t, n.Amount.Equal(decimal.RequireFromString("150.00")))
		assert.Equal(t, "EGP", n.Currency)
		assert.Equal(t, payment.OutcomeSuccess, n.Outcome)
	})

	t.Run("should map no_payment_required to success", func(t *testing.T) {
		adapter := NewAdapter(&fakeSessionClient{session: &stripego.CheckoutSession{
			ID:                "cs_test_free",
			ClientReferenceID: "order-2",
			PaymentStatus:     stripego.CheckoutSessionPaymentStatusNoPaymentRequired,
			Currency:          stripego.CurrencyUSD,
		}})

		n, err := adapter.VerifySession(ctx, "cs_test_free")

		require.NoError(t, err)
		assert.Equal(t, payment.OutcomeSuccess, n.Outcome)
	})

	t.Run("should map an unpaid session to failure", func(t *testing.T) {
		adapter := NewAdapter(&fakeSessionClient{session: &stripego.CheckoutSession{
			ID:                "cs_test_unpaid",
			ClientReferenceID: "order-3",
			PaymentStatus:     stripego.CheckoutSessionPaymentStatusUnpaid,
			Currency:          stripego.CurrencyUSD,
		}})

		n, err := adapter.VerifySession(ctx, "cs_test_unpaid")

		require.NoError(t, err)
		assert.Equal(t, payment.OutcomeFailure, n.Outcome)
	})

	t.Run("should not scale zero-decimal currencies", func(t *testing.T) {
		adapter := NewAdapter(&fakeSessionClient{session: &stripego.CheckoutSession{
			ID:                "cs_test_jpy",
			ClientReferenceID: "order-4",
			PaymentStatus:     stripego.CheckoutSessionPaymentStatusPaid,
			AmountTotal:       1500,
			Currency:          stripego.CurrencyJPY,
		}})

		n, err := adapter.VerifySession(ctx, "cs_test_jpy")

		require.NoError(t, err)
		assert.True(t, n.Amount.Equal(decimal.NewFromInt(1500)))
	})

	t.Run("should reject an empty session id", func(t *testing.T) {
		adapter := NewAdapter(&fakeSessionClient{})

		_, err := adapter.VerifySession(ctx, "")

		require.ErrorIs(t, err, apperror.ErrParseFailure)
	})

	t.Run("should reject a session without client reference", func(t *testing.T) {
		adapter := NewAdapter(&fakeSessionClient{session: &stripego.CheckoutSession{
			ID:            "cs_test_anon",
			PaymentStatus: stripego.CheckoutSessionPaymentStatusPaid,
		}})

		_, err := adapter.VerifySession(ctx, "cs_test_anon")

		require.ErrorIs(t, err, apperror.ErrParseFailure)
	})

	t.Run("should surface transport errors unchanged", func(t *testing.T) {
		transportErr := errors.New("connection reset")
		adapter := NewAdapter(&fakeSessionClient{err: transportErr})

		_, err := adapter.VerifySession(ctx, "cs_test_123")

		require.ErrorIs(t, err, transportErr)
		assert.NotErrorIs(t, err, apperror.ErrParseFailure)
	})
}

func TestNewAPISessionClient(t *testing.T) {
	t.Run("should refuse an empty secret key", func(t *testing.T) {
		_, err := NewAPISessionClient("", 0)

		require.ErrorIs(t, err, apperror.ErrVerifierMisconfigured)
	})
}
