package payment_repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"storepay/internal/controller/apperror"
	"storepay/internal/domain/order"
	"storepay/internal/domain/payment"
	"storepay/pkg/postgres"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PgPaymentRepo owns the payments ledger and the payment-driven order
// transition.
type PgPaymentRepo struct {
	pg *postgres.Postgres
	repo
}

func NewPgPaymentRepo(pg *postgres.Postgres) payment.PaymentRepo {
	return &PgPaymentRepo{
		pg:   pg,
		repo: repo{db: pg.Pool, builder: pg.Builder},
	}
}

func (r *PgPaymentRepo) InTransaction(ctx context.Context, fn func(repo payment.TxPaymentRepo) error) error {
	return r.pg.InTransaction(ctx, func(tx postgres.Executor) error {
		txRepo := &repo{db: tx, builder: r.pg.Builder}
		return fn(txRepo)
	})
}

type repo struct {
	db      postgres.Executor
	builder squirrel.StatementBuilderType
}

var paymentColumns = []string{"id", "order_id", "provider", "transaction_id", "amount", "currency", "status", "raw_payload", "created_at"}

func (r *repo) FindPayment(ctx context.Context, provider payment.Provider, transactionID string) (*payment.Payment, error) {
	sql, args, err := r.builder.Select(paymentColumns...).
		From("payments").
		Where(squirrel.Eq{"provider": provider, "transaction_id": transactionID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find payment query: %w", err)
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query payment: %w", err)
	}
	defer rows.Close()

	payments, err := parsePaymentRows(rows)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, nil
	}
	return &payments[0], nil
}

func (r *repo) GetPayments(ctx context.Context, query *payment.PaymentsQuery) ([]payment.Payment, error) {
	sql, args := r.buildPaymentsQuery(query)
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}
	defer rows.Close()

	return parsePaymentRows(rows)
}

func (r *repo) CreatePayment(ctx context.Context, p payment.Payment) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now().UTC()
	}

	sql, args, err := r.builder.Insert("payments").
		Columns(paymentColumns...).
		Values(p.ID, p.OrderID, p.Provider, p.TransactionID, p.Amount, p.Currency, p.Status, p.RawPayload, p.CreatedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert payment query: %w", err)
	}

	_, err = r.db.Exec(ctx, sql, args...)
	if err != nil {
		if postgres.IsPgErrorUniqueViolation(err) {
			return apperror.ErrDuplicateTransaction
		}
		return fmt.Errorf("create payment: %w", err)
	}
	return nil
}

func (r *repo) GetOrder(ctx context.Context, orderID string) (order.Order, error) {
	sql, args, err := r.builder.Select("id", "status", "is_paid", "amount", "currency", "created_at", "updated_at").
		From("orders").
		Where(squirrel.Eq{"id": orderID}).
		ToSql()
	if err != nil {
		return order.Order{}, fmt.Errorf("build get order query: %w", err)
	}

	var o order.Order
	var rawStatus string
	err = r.db.QueryRow(ctx, sql, args...).
		Scan(&o.OrderID, &rawStatus, &o.IsPaid, &o.Amount, &o.Currency, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return order.Order{}, apperror.ErrOrderNotFound
		}
		return order.Order{}, fmt.Errorf("query order: %w", err)
	}

	status, err := order.NewStatus(rawStatus)
	if err != nil {
		return order.Order{}, fmt.Errorf("invalid status in database: %w", err)
	}
	o.Status = status

	return o, nil
}

func (r *repo) MarkOrderPaid(ctx context.Context, orderID string, paidAt time.Time) error {
	sql, args, err := r.builder.Update("orders").
		Set("status", order.StatusPaid).
		Set("is_paid", true).
		Set("updated_at", paidAt).
		Where(squirrel.Eq{"id": orderID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark paid query: %w", err)
	}

	_, err = r.db.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("mark order paid: %w", err)
	}
	return nil
}

func (r *repo) buildPaymentsQuery(q *payment.PaymentsQuery) (string, []interface{}) {
	query := r.builder.Select(paymentColumns...).
		From("payments").
		OrderBy("created_at DESC")

	if len(q.OrderIDs) > 0 {
		query = query.Where(squirrel.Eq{"order_id": q.OrderIDs})
	}

	if len(q.Providers) > 0 {
		query = query.Where(squirrel.Eq{"provider": q.Providers})
	}

	if len(q.Statuses) > 0 {
		query = query.Where(squirrel.Eq{"status": q.Statuses})
	}

	if q.Limit > 0 {
		query = query.Limit(uint64(q.Limit))
	}

	sql, args, _ := query.ToSql()
	return sql, args
}

func parsePaymentRows(rows pgx.Rows) ([]payment.Payment, error) {
	var payments []payment.Payment
	for rows.Next() {
		var p payment.Payment
		var rawProvider, rawStatus string
		err := rows.Scan(&p.ID, &p.OrderID, &rawProvider, &p.TransactionID, &p.Amount, &p.Currency, &rawStatus, &p.RawPayload, &p.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan payment row: %w", err)
		}

		provider, err := payment.NewProvider(rawProvider)
		if err != nil {
			return nil, fmt.Errorf("invalid provider in database: %w", err)
		}
		p.Provider = provider
		p.Status = payment.PaymentStatus(rawStatus)

		payments = append(payments, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payment rows: %w", err)
	}

	return payments, nil
}
