package handlers

import (
	"errors"
	"net/http"
	"strings"

	"storepay/internal/controller/apperror"
	"storepay/internal/domain/order"
	"storepay/internal/domain/payment"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orders   *order.OrderService
	payments *payment.ReconcileService
}

func NewOrderHandler(orders *order.OrderService, payments *payment.ReconcileService) OrderHandler {
	return OrderHandler{orders: orders, payments: payments}
}

func (h *OrderHandler) Get(c *gin.Context) {
	orderID := c.Param("order_id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing order_id"})
		return
	}

	res, err := h.orders.GetOrderByID(c, orderID)
	if err != nil {
		if errors.Is(err, apperror.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *OrderHandler) Filter(c *gin.Context) {
	filter, err := h.createFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.orders.GetOrders(c, *filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, res)
}

// GetPayments lists the ledger rows recorded against one order.
func (h *OrderHandler) GetPayments(c *gin.Context) {
	orderID := c.Param("order_id")
	if orderID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Missing order_id"})
		return
	}

	query, err := payment.NewPaymentsQueryBuilder().
		WithOrderIDs(orderID).
		Build()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.payments.GetPayments(c, *query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, res)
}

// FilterPayments lists ledger rows across orders.
func (h *OrderHandler) FilterPayments(c *gin.Context) {
	var params PaymentsFilterParams
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	builder := payment.NewPaymentsQueryBuilder()
	if params.OrderIDs != "" {
		builder = builder.WithOrderIDs(strings.Split(params.OrderIDs, ",")...)
	}
	if params.Providers != "" {
		providers := make([]payment.Provider, 0)
		for _, raw := range strings.Split(params.Providers, ",") {
			providers = append(providers, payment.Provider(raw))
		}
		builder = builder.WithProviders(providers...)
	}
	if params.Statuses != "" {
		statuses := make([]payment.PaymentStatus, 0)
		for _, raw := range strings.Split(params.Statuses, ",") {
			statuses = append(statuses, payment.PaymentStatus(raw))
		}
		builder = builder.WithStatuses(statuses...)
	}
	if params.Limit > 0 {
		builder = builder.WithLimit(params.Limit)
	}

	query, err := builder.Build()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := h.payments.GetPayments(c, *query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, res)
}

type PaymentsFilterParams struct {
	OrderIDs  string `form:"order_ids"`
	Providers string `form:"providers"`
	Statuses  string `form:"statuses"`
	Limit     int    `form:"limit" binding:"omitempty,min=0"`
}

func (h *OrderHandler) createFilter(c *gin.Context) (*order.OrdersQuery, error) {
	var params OrdersFilterParams
	if err := c.ShouldBindQuery(&params); err != nil {
		return nil, err
	}

	builder := order.NewOrdersQueryBuilder()

	if params.StatusArr != "" {
		statusArr := strings.Split(params.StatusArr, ",")
		statuses := make([]order.Status, len(statusArr))
		for i, v := range statusArr {
			s, err := order.NewStatus(v)
			if err != nil {
				return nil, err
			}
			statuses[i] = s
		}
		builder = builder.WithStatuses(statuses...)
	}

	if params.Paid != nil {
		builder = builder.WithPaid(*params.Paid)
	}

	if params.PageSize == 0 {
		params.PageSize = 10
	}
	if params.PageNumber == 0 {
		params.PageNumber = 1
	}
	if params.SortBy == "" {
		params.SortBy = "created_at"
	}
	if params.SortOrder == "" {
		params.SortOrder = "desc"
	}

	return builder.
		WithPagination(order.Pagination{
			PageSize:   params.PageSize,
			PageNumber: params.PageNumber,
		}).
		WithSort(params.SortBy, params.SortOrder).
		Build()
}

type OrdersFilterParams struct {
	StatusArr  string `form:"status"`
	Paid       *bool  `form:"paid"`
	PageSize   int    `form:"limit" binding:"omitempty,min=0"`
	PageNumber int    `form:"page" binding:"omitempty,min=0"`
	SortBy     string `form:"sort_by" binding:"omitempty,oneof=created_at updated_at"`
	SortOrder  string `form:"sort_order" binding:"omitempty,oneof=asc desc"`
}
