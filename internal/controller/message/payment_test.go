package message

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"storepay/internal/domain/payment"
	"storepay/internal/messaging"
	"storepay/pkg/logger"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleMessage(t *testing.T) {
	controller := NewPaymentMessageController(logger.New("error"))
	ctx := context.Background()

	t.Run("should process a payment.recorded envelope", func(t *testing.T) {
		event := payment.PaymentRecordedEvent{
			OrderID:       "order-1",
			Provider:      payment.ProviderPaymob,
			TransactionID: "TX-1",
			Status:        payment.PaymentSuccess,
			Amount:        decimal.RequireFromString("150.00"),
			Currency:      "EGP",
			OrderPaid:     true,
			RecordedAt:    time.Now().UTC(),
		}
		env, err := messaging.NewEnvelope(event.OrderID, "payment.recorded", event)
		require.NoError(t, err)

		value, err := json.Marshal(env)
		require.NoError(t, err)

		err = controller.HandleMessage(ctx, []byte(event.OrderID), value)

		assert.NoError(t, err)
	})

	t.Run("should reject a malformed envelope", func(t *testing.T) {
		err := controller.HandleMessage(ctx, []byte("key"), []byte("not-json"))

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unmarshal envelope")
	})

	t.Run("should reject a malformed payload", func(t *testing.T) {
		env := messaging.Envelope{
			EventID: "evt-1",
			Key:     "order-1",
			Type:    "payment.recorded",
			Payload: []byte(`"not-an-object"`),
		}
		value, err := json.Marshal(env)
		require.NoError(t, err)

		err = controller.HandleMessage(ctx, []byte("order-1"), value)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "unmarshal payment event")
	})
}
