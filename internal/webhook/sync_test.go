package webhook

import (
	"context"
	"encoding/json"
	"testing"

	"storepay/internal/controller/apperror"
	"storepay/internal/domain/order"
	"storepay/internal/domain/payment"
	"storepay/internal/messaging"
	"storepay/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// mockPublisher captures the last published envelope for assertions.
type mockPublisher struct {
	lastEnvelope messaging.Envelope
	published    int
	publishErr   error
}

func (m *mockPublisher) Publish(_ context.Context, env messaging.Envelope) error {
	m.lastEnvelope = env
	m.published++
	return m.publishErr
}

func (m *mockPublisher) Close() error {
	return nil
}

func syncProcessor(t *testing.T, pub messaging.Publisher) (*SyncProcessor, *payment.MockTxPaymentRepo) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := payment.NewMockPaymentRepo(ctrl)
	tx := payment.NewMockTxPaymentRepo(ctrl)

	repo.EXPECT().InTransaction(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, fn func(payment.TxPaymentRepo) error) error {
			return fn(tx)
		},
	).AnyTimes()

	return NewSyncProcessor(payment.NewReconcileService(repo), pub, logger.New("error")), tx
}

func testNotification() payment.Notification {
	return payment.Notification{
		Provider:              payment.ProviderPaymob,
		ProviderTransactionID: "TX-1",
		MerchantOrderID:       "order-1",
		Amount:                decimal.RequireFromString("150.00"),
		Currency:              "EGP",
		Outcome:               payment.OutcomeSuccess,
	}
}

func expectSuccessfulReconcile(tx *payment.MockTxPaymentRepo) {
	pending := order.Order{OrderID: "order-1", Status: order.StatusPending}
	tx.EXPECT().FindPayment(gomock.Any(), payment.ProviderPaymob, "TX-1").Return(nil, nil)
	tx.EXPECT().GetOrder(gomock.Any(), "order-1").Return(pending, nil)
	tx.EXPECT().CreatePayment(gomock.Any(), gomock.Any()).Return(nil)
	tx.EXPECT().MarkOrderPaid(gomock.Any(), "order-1", gomock.Any()).Return(nil)
}

func TestSyncProcessor(t *testing.T) {
	t.Run("should publish payment.recorded keyed by order id", func(t *testing.T) {
		pub := &mockPublisher{}
		processor, tx := syncProcessor(t, pub)
		expectSuccessfulReconcile(tx)

		result, err := processor.ProcessNotification(context.Background(), testNotification())

		require.NoError(t, err)
		assert.True(t, result.OrderPaid)
		assert.Equal(t, 1, pub.published)
		assert.Equal(t, "order-1", pub.lastEnvelope.Key)
		assert.Equal(t, "payment.recorded", pub.lastEnvelope.Type)

		var event payment.PaymentRecordedEvent
		require.NoError(t, json.Unmarshal(pub.lastEnvelope.Payload, &event))
		assert.Equal(t, "TX-1", event.TransactionID)
		assert.True(t, event.OrderPaid)
	})

	t.Run("publish failures never fail the notification", func(t *testing.T) {
		pub := &mockPublisher{publishErr: assert.AnError}
		processor, tx := syncProcessor(t, pub)
		expectSuccessfulReconcile(tx)

		_, err := processor.ProcessNotification(context.Background(), testNotification())

		require.NoError(t, err)
	})

	t.Run("should work without a publisher", func(t *testing.T) {
		processor, tx := syncProcessor(t, nil)
		expectSuccessfulReconcile(tx)

		_, err := processor.ProcessNotification(context.Background(), testNotification())

		require.NoError(t, err)
	})

	t.Run("should not publish for rejected notifications", func(t *testing.T) {
		pub := &mockPublisher{}
		processor, tx := syncProcessor(t, pub)

		existing := &payment.Payment{ID: "pay-1"}
		tx.EXPECT().FindPayment(gomock.Any(), payment.ProviderPaymob, "TX-1").Return(existing, nil)

		_, err := processor.ProcessNotification(context.Background(), testNotification())

		require.ErrorIs(t, err, apperror.ErrDuplicateTransaction)
		assert.Equal(t, 0, pub.published)
	})
}
