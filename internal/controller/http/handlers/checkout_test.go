package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"storepay/internal/controller/apperror"
	"storepay/internal/domain/payment"
	"storepay/internal/provider/stripe"
	"storepay/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripego "github.com/stripe/stripe-go/v81"
	"go.uber.org/mock/gomock"
)

type fakeSessionClient struct {
	session *stripego.CheckoutSession
	err     error
}

func (f *fakeSessionClient) GetSession(_ context.Context, _ string) (*stripego.CheckoutSession, error) {
	return f.session, f.err
}

func paidSession() *stripego.CheckoutSession {
	return &stripego.CheckoutSession{
		ID:                "cs_test_123",
		ClientReferenceID: "order-1",
		PaymentStatus:     stripego.CheckoutSessionPaymentStatusPaid,
		AmountTotal:       15000,
		Currency:          stripego.CurrencyEGP,
	}
}

func serveConfirm(t *testing.T, handler CheckoutHandler, target string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.POST("/checkout/confirm", handler.Confirm)

	req := httptest.NewRequest("POST", target, nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func decodeConfirm(t *testing.T, rec *httptest.ResponseRecorder) confirmResponse {
	t.Helper()
	var resp confirmResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestConfirm(t *testing.T) {
	l := logger.New("error")

	t.Run("should settle a stripe session against the provider", func(t *testing.T) {
		stripeAdapter := stripe.NewAdapter(&fakeSessionClient{session: paidSession()})
		processor := &stubProcessor{result: payment.ReconcileResult{
			Payment: payment.Payment{
				OrderID:       "order-1",
				TransactionID: "cs_test_123",
				Status:        payment.PaymentSuccess,
			},
			OrderPaid: true,
		}}
		handler := NewCheckoutHandler(stripeAdapter, nil, processor, l)

		rec := serveConfirm(t, handler, "/checkout/confirm?session_id=cs_test_123")

		assert.Equal(t, http.StatusOK, rec.Code)
		resp := decodeConfirm(t, rec)
		assert.True(t, resp.Paid)
		assert.Equal(t, "order-1", resp.OrderID)
		assert.Equal(t, "stripe", resp.Method)
		require.Len(t, processor.processed, 1)
		assert.Equal(t, payment.ProviderStripe, processor.processed[0].Provider)
	})

	t.Run("should answer 503 for stripe params without a client", func(t *testing.T) {
		handler := NewCheckoutHandler(nil, nil, &stubProcessor{}, l)

		rec := serveConfirm(t, handler, "/checkout/confirm?session_id=cs_test_123")

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("should answer 403 for an unknown stripe order", func(t *testing.T) {
		stripeAdapter := stripe.NewAdapter(&fakeSessionClient{session: paidSession()})
		processor := &stubProcessor{err: apperror.ErrOrderNotFound}
		handler := NewCheckoutHandler(stripeAdapter, nil, processor, l)

		rec := serveConfirm(t, handler, "/checkout/confirm?session_id=cs_test_123")

		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("should answer 500 when the provider is unreachable", func(t *testing.T) {
		stripeAdapter := stripe.NewAdapter(&fakeSessionClient{err: assert.AnError})
		handler := NewCheckoutHandler(stripeAdapter, nil, &stubProcessor{}, l)

		rec := serveConfirm(t, handler, "/checkout/confirm?session_id=cs_test_123")

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("should believe a kashier claim only with a successful ledger row", func(t *testing.T) {
		mockRepo := payment.NewMockPaymentRepo(gomock.NewController(t))
		mockRepo.EXPECT().FindPayment(gomock.Any(), payment.ProviderKashier, "TX-9").Return(&payment.Payment{
			OrderID:       "order-1",
			Provider:      payment.ProviderKashier,
			TransactionID: "TX-9",
			Status:        payment.PaymentSuccess,
		}, nil)
		service := payment.NewReconcileService(mockRepo)
		handler := NewCheckoutHandler(nil, service, &stubProcessor{}, l)

		rec := serveConfirm(t, handler,
			"/checkout/confirm?paymentStatus=SUCCESS&merchantOrderId=order-1&transactionId=TX-9")

		assert.Equal(t, http.StatusOK, rec.Code)
		resp := decodeConfirm(t, rec)
		assert.True(t, resp.Paid)
		assert.Equal(t, "order-1", resp.OrderID)
	})

	t.Run("should read a claim with no ledger row as unpaid", func(t *testing.T) {
		mockRepo := payment.NewMockPaymentRepo(gomock.NewController(t))
		mockRepo.EXPECT().FindPayment(gomock.Any(), payment.ProviderPaymob, "TX-77").Return(nil, nil)
		service := payment.NewReconcileService(mockRepo)
		handler := NewCheckoutHandler(nil, service, &stubProcessor{}, l)

		rec := serveConfirm(t, handler,
			"/checkout/confirm?success=true&id=TX-77&merchant_order_id=order-1")

		assert.Equal(t, http.StatusOK, rec.Code)
		resp := decodeConfirm(t, rec)
		assert.False(t, resp.Paid)
	})

	t.Run("should confirm cash on delivery without verification", func(t *testing.T) {
		processor := &stubProcessor{}
		handler := NewCheckoutHandler(nil, nil, processor, l)

		rec := serveConfirm(t, handler, "/checkout/confirm")

		assert.Equal(t, http.StatusOK, rec.Code)
		resp := decodeConfirm(t, rec)
		assert.Equal(t, "cod", resp.Method)
		assert.False(t, resp.Paid)
		assert.Empty(t, processor.processed)
	})
}
