package order

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	OrderID   string          `json:"order_id"`
	Status    Status          `json:"status"`
	IsPaid    bool            `json:"is_paid"`
	Amount    decimal.Decimal `json:"amount"`
	Currency  string          `json:"currency"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

var AvailableStatuses = []Status{StatusPending, StatusPaid, StatusShipped, StatusDelivered, StatusCancelled}

func NewStatus(raw string) (Status, error) {
	if slices.Contains(AvailableStatuses, Status(raw)) {
		return Status(raw), nil
	}
	return "", errors.New("invalid order status")
}

// CanBePaid reports whether a successful payment may still transition the
// order. Only pending, unpaid orders transition; everything else is a no-op
// for the reconciler.
func (o Order) CanBePaid() bool {
	return o.Status == StatusPending && !o.IsPaid
}

type Pagination struct {
	PageSize   int
	PageNumber int
}

type OrdersQuery struct {
	IDs        []string
	Statuses   []Status
	Paid       *bool
	Pagination *Pagination
	SortBy     *string
	SortOrder  *string
}

func (o *OrdersQuery) Validate() error {
	if o.SortBy != nil && *o.SortBy != "created_at" && *o.SortBy != "updated_at" {
		return fmt.Errorf("invalid sort by: %s", *o.SortBy)
	}
	if o.SortOrder != nil && *o.SortOrder != "asc" && *o.SortOrder != "desc" {
		return fmt.Errorf("invalid sort order: %s", *o.SortOrder)
	}
	return nil
}

type OrdersQueryBuilder struct {
	query *OrdersQuery
}

func NewOrdersQueryBuilder() *OrdersQueryBuilder {
	return &OrdersQueryBuilder{
		query: &OrdersQuery{},
	}
}

func (b *OrdersQueryBuilder) Build() (*OrdersQuery, error) {
	if err := b.query.Validate(); err != nil {
		return nil, fmt.Errorf("invalid orders query: %w", err)
	}
	return b.query, nil
}

func (b *OrdersQueryBuilder) WithIDs(ids ...string) *OrdersQueryBuilder {
	b.query.IDs = ids
	return b
}

func (b *OrdersQueryBuilder) WithStatuses(statuses ...Status) *OrdersQueryBuilder {
	b.query.Statuses = statuses
	return b
}

func (b *OrdersQueryBuilder) WithPaid(paid bool) *OrdersQueryBuilder {
	b.query.Paid = &paid
	return b
}

func (b *OrdersQueryBuilder) WithSort(sortBy, sortOrder string) *OrdersQueryBuilder {
	b.query.SortBy = &sortBy
	b.query.SortOrder = &sortOrder
	return b
}

func (b *OrdersQueryBuilder) WithPagination(pagination Pagination) *OrdersQueryBuilder {
	b.query.Pagination = &pagination
	return b
}
