package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"storepay/internal/domain/order"
	"storepay/internal/domain/payment"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func serveOrders(t *testing.T, orderRepo order.OrderRepo, paymentRepo payment.PaymentRepo, target string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	handler := NewOrderHandler(
		order.NewOrderService(orderRepo),
		payment.NewReconcileService(paymentRepo),
	)

	engine := gin.New()
	engine.GET("/orders", handler.Filter)
	engine.GET("/orders/:order_id", handler.Get)
	engine.GET("/orders/:order_id/payments", handler.GetPayments)
	engine.GET("/payments", handler.FilterPayments)

	req := httptest.NewRequest("GET", target, nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func TestFilterOrders(t *testing.T) {
	t.Run("should translate query params into the orders filter", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := order.NewMockOrderRepo(ctrl)

		var captured *order.OrdersQuery
		repo.EXPECT().
			GetOrders(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, q *order.OrdersQuery) ([]order.Order, error) {
				captured = q
				return []order.Order{}, nil
			})

		rec := serveOrders(t, repo, nil,
			"/orders?status=pending,paid&paid=true&limit=5&page=2&sort_by=updated_at&sort_order=asc")

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, captured)
		assert.Equal(t, []order.Status{order.StatusPending, order.StatusPaid}, captured.Statuses)
		require.NotNil(t, captured.Paid)
		assert.True(t, *captured.Paid)
		require.NotNil(t, captured.Pagination)
		assert.Equal(t, order.Pagination{PageSize: 5, PageNumber: 2}, *captured.Pagination)
		require.NotNil(t, captured.SortBy)
		assert.Equal(t, "updated_at", *captured.SortBy)
		require.NotNil(t, captured.SortOrder)
		assert.Equal(t, "asc", *captured.SortOrder)
	})

	t.Run("should apply defaults when no params are given", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := order.NewMockOrderRepo(ctrl)

		var captured *order.OrdersQuery
		repo.EXPECT().
			GetOrders(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, q *order.OrdersQuery) ([]order.Order, error) {
				captured = q
				return []order.Order{}, nil
			})

		rec := serveOrders(t, repo, nil, "/orders")

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, captured)
		assert.Empty(t, captured.Statuses)
		assert.Nil(t, captured.Paid)
		assert.Equal(t, order.Pagination{PageSize: 10, PageNumber: 1}, *captured.Pagination)
		assert.Equal(t, "created_at", *captured.SortBy)
		assert.Equal(t, "desc", *captured.SortOrder)
	})

	t.Run("should answer 400 for an unknown status", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := order.NewMockOrderRepo(ctrl)

		rec := serveOrders(t, repo, nil, "/orders?status=settled")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("should answer 400 for an invalid sort order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := order.NewMockOrderRepo(ctrl)

		rec := serveOrders(t, repo, nil, "/orders?sort_order=sideways")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetOrder(t *testing.T) {
	t.Run("should answer 404 for a missing order", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := order.NewMockOrderRepo(ctrl)
		repo.EXPECT().
			GetOrders(gomock.Any(), gomock.Any()).
			Return([]order.Order{}, nil)

		rec := serveOrders(t, repo, nil, "/orders/order-404")

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestOrderPayments(t *testing.T) {
	t.Run("should query the ledger by the path order id", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := payment.NewMockPaymentRepo(ctrl)

		var captured *payment.PaymentsQuery
		repo.EXPECT().
			GetPayments(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, q *payment.PaymentsQuery) ([]payment.Payment, error) {
				captured = q
				return []payment.Payment{}, nil
			})

		rec := serveOrders(t, nil, repo, "/orders/order-1/payments")

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, captured)
		assert.Equal(t, []string{"order-1"}, captured.OrderIDs)
	})
}

func TestFilterPaymentsParams(t *testing.T) {
	t.Run("should split CSV filters into the ledger query", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := payment.NewMockPaymentRepo(ctrl)

		var captured *payment.PaymentsQuery
		repo.EXPECT().
			GetPayments(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, q *payment.PaymentsQuery) ([]payment.Payment, error) {
				captured = q
				return []payment.Payment{}, nil
			})

		rec := serveOrders(t, nil, repo,
			"/payments?order_ids=order-1,order-2&providers=paymob,kashier&statuses=success&limit=3")

		assert.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, captured)
		assert.Equal(t, []string{"order-1", "order-2"}, captured.OrderIDs)
		assert.Equal(t, []payment.Provider{payment.ProviderPaymob, payment.ProviderKashier}, captured.Providers)
		assert.Equal(t, []payment.PaymentStatus{payment.PaymentSuccess}, captured.Statuses)
		assert.Equal(t, 3, captured.Limit)
	})

	t.Run("should answer 400 for an unknown provider", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := payment.NewMockPaymentRepo(ctrl)

		rec := serveOrders(t, nil, repo, "/payments?providers=fawry")

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
