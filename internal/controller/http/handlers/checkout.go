package handlers

import (
	"errors"
	"net/http"

	"storepay/internal/controller/apperror"
	"storepay/internal/domain/payment"
	"storepay/internal/provider/stripe"
	"storepay/internal/webhook"
	"storepay/pkg/logger"
	"storepay/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// CheckoutHandler confirms what the customer's browser claims after it
// returns from a payment page. Browser parameters are never trusted
// directly: Stripe claims are settled against the provider API, Paymob and
// Kashier claims against the local ledger the signed webhook already wrote.
type CheckoutHandler struct {
	stripe    *stripe.Adapter // nil when Stripe is not configured
	service   *payment.ReconcileService
	processor webhook.Processor
	logger    *logger.Logger
}

func NewCheckoutHandler(
	stripeAdapter *stripe.Adapter,
	service *payment.ReconcileService,
	processor webhook.Processor,
	l *logger.Logger,
) CheckoutHandler {
	return CheckoutHandler{
		stripe:    stripeAdapter,
		service:   service,
		processor: processor,
		logger:    l,
	}
}

type confirmParams struct {
	// Stripe success page return.
	SessionID string `form:"session_id"`

	// Kashier redirect return.
	PaymentStatus   string `form:"paymentStatus"`
	MerchantOrderID string `form:"merchantOrderId"`
	TransactionID   string `form:"transactionId"`

	// Paymob redirect return.
	Success       string `form:"success"`
	PaymobTransID string `form:"id"`
	PaymobOrderID string `form:"merchant_order_id"`
}

type confirmResponse struct {
	OrderID       string `json:"order_id,omitempty"`
	Method        string `json:"method"`
	Paid          bool   `json:"paid"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// Confirm is the checkout landing action.
func (h *CheckoutHandler) Confirm(c *gin.Context) {
	var params confirmParams
	if err := c.ShouldBind(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid confirmation parameters"})
		return
	}

	switch {
	case params.SessionID != "":
		h.confirmStripe(c, params.SessionID)
	case params.PaymentStatus != "" && params.MerchantOrderID != "":
		h.confirmFromLedger(c, payment.ProviderKashier, params.MerchantOrderID, params.TransactionID)
	case params.Success != "" && params.PaymobTransID != "":
		h.confirmFromLedger(c, payment.ProviderPaymob, params.PaymobOrderID, params.PaymobTransID)
	default:
		// Cash on delivery: nothing to verify, the order stays pending.
		c.JSON(http.StatusOK, confirmResponse{Method: "cod", Paid: false})
	}
}

func (h *CheckoutHandler) confirmStripe(c *gin.Context, sessionID string) {
	if h.stripe == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "stripe not configured"})
		return
	}

	notification, err := h.stripe.VerifySession(c, sessionID)
	if err != nil {
		if errors.Is(err, apperror.ErrParseFailure) {
			metrics.WebhooksTotal.WithLabelValues(string(payment.ProviderStripe), metrics.ResultParseFailure).Inc()
			c.JSON(http.StatusForbidden, gin.H{"message": "callback rejected"})
			return
		}
		h.logger.Error("Stripe session verification failed: session_id=%s error=%v", sessionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	res, err := h.processor.ProcessNotification(c, notification)
	if err != nil {
		switch {
		case errors.Is(err, apperror.ErrDuplicateTransaction):
			// The session was already settled; answer from the ledger.
			h.confirmFromLedger(c, payment.ProviderStripe, notification.MerchantOrderID, notification.ProviderTransactionID)
		case errors.Is(err, apperror.ErrOrderNotFound), errors.Is(err, apperror.ErrParseFailure):
			metrics.WebhooksTotal.WithLabelValues(string(payment.ProviderStripe), metrics.ResultUnknownOrder).Inc()
			c.JSON(http.StatusForbidden, gin.H{"message": "callback rejected"})
		default:
			h.logger.Error("Stripe reconciliation failed: session_id=%s error=%v", sessionID, err)
			c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		}
		return
	}

	metrics.WebhooksTotal.WithLabelValues(string(payment.ProviderStripe), metrics.ResultReconciled).Inc()
	c.JSON(http.StatusOK, confirmResponse{
		OrderID:       res.Payment.OrderID,
		Method:        string(payment.ProviderStripe),
		Paid:          res.Payment.Status == payment.PaymentSuccess,
		TransactionID: res.Payment.TransactionID,
	})
}

// confirmFromLedger answers a redirect claim from the rows the signed
// webhook wrote. A claim with no successful ledger row reads as unpaid.
func (h *CheckoutHandler) confirmFromLedger(c *gin.Context, p payment.Provider, orderID, transactionID string) {
	if transactionID == "" {
		c.JSON(http.StatusOK, confirmResponse{OrderID: orderID, Method: string(p), Paid: false})
		return
	}

	entry, err := h.service.PaymentByTransaction(c, p, transactionID)
	if err != nil {
		h.logger.Error("Ledger lookup failed: provider=%s transaction_id=%s error=%v", p, transactionID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": "internal error"})
		return
	}

	resp := confirmResponse{OrderID: orderID, Method: string(p), TransactionID: transactionID}
	if entry != nil {
		resp.OrderID = entry.OrderID
		resp.Paid = entry.Status == payment.PaymentSuccess
	}

	c.JSON(http.StatusOK, resp)
}
