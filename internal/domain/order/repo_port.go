package order

import "context"

//go:generate mockgen -source repo_port.go -destination mock_order_repo.go -package order

// OrderRepo is the read side of order storage. Payment-driven mutation lives
// with the payment repository so the reconciler stays the single writer.
type OrderRepo interface {
	GetOrders(ctx context.Context, filter *OrdersQuery) ([]Order, error)
}
