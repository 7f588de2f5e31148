package http

import (
	"storepay/internal/controller/http/handlers"

	"github.com/gin-gonic/gin"
)

type Router struct {
	paymob   handlers.WebhookHandler
	kashier  handlers.WebhookHandler
	checkout handlers.CheckoutHandler
	order    handlers.OrderHandler
}

func NewRouter(
	paymob handlers.WebhookHandler,
	kashier handlers.WebhookHandler,
	checkout handlers.CheckoutHandler,
	order handlers.OrderHandler,
) *Router {
	return &Router{
		paymob:   paymob,
		kashier:  kashier,
		checkout: checkout,
		order:    order,
	}
}

func (r *Router) SetUp(engine *gin.Engine) {
	engine.POST("/webhooks/paymob", r.paymob.Notify)
	engine.GET("/webhooks/paymob", r.paymob.Redirect)
	engine.POST("/webhooks/kashier", r.kashier.Notify)
	engine.GET("/webhooks/kashier", r.kashier.Redirect)

	engine.POST("/checkout/confirm", r.checkout.Confirm)

	engine.GET("/orders", r.order.Filter)
	engine.GET("/orders/:order_id", r.order.Get)
	engine.GET("/orders/:order_id/payments", r.order.GetPayments)
	engine.GET("/payments", r.order.FilterPayments)
}
