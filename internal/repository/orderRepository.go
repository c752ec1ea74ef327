package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/RaikyD/einlagen-orders-service/internal/domain"
	"github.com/RaikyD/einlagen-orders-service/internal/logger"
)

var ErrOrderAlreadyExists = errors.New("order already exists")

const uniqueViolation = "23505"

type OrderRepo interface {
	AddOrder(ctx context.Context, order *domain.Order) error
	GetOrderById(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	GetOrderByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error)
	ListRecentPayloads(ctx context.Context, limit int) ([]PayloadRow, error)
}

// PayloadRow is the raw stored form used to warm the service cache.
type PayloadRow struct {
	ID        uuid.UUID
	Payload   []byte
	CreatedAt time.Time
}

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(p *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: p}
}

func (p *OrderRepository) AddOrder(ctx context.Context, o *domain.Order) error {
	payload, err := json.Marshal(o.Payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	total, err := decimal.NewFromString(o.Payload.Total)
	if err != nil {
		total = decimal.Zero
	}

	tx, err := p.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	_, err = tx.Exec(ctx,
		`INSERT INTO einlagen.orders
			(id, customer_id, kind, idempotency_key, total, payload, created_at)
		 VALUES
			($1, $2, $3, $4, $5, $6, $7)`,
		o.OrderID,
		o.CustomerID,
		string(o.Kind),
		nullable(o.IdempotencyKey),
		total,
		payload,
		o.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrOrderAlreadyExists
		}
		logger.Warn("insert order failed", "order_id", o.OrderID, "err", err)
		return fmt.Errorf("insert order: %w", err)
	}

	// billing codes are many-to-one; send them in one batch
	if len(o.Payload.BillingCodes) > 0 {
		batch := &pgx.Batch{}
		for _, bc := range o.Payload.BillingCodes {
			amount, err := decimal.NewFromString(bc.Amount)
			if err != nil {
				amount = decimal.Zero
			}
			batch.Queue(`
				INSERT INTO einlagen.order_billing_codes (order_id, code, side, amount)
				VALUES ($1, $2, $3, $4)`,
				o.OrderID, bc.Code, bc.Side, amount,
			)
		}
		br := tx.SendBatch(ctx, batch)
		if err = br.Close(); err != nil {
			return fmt.Errorf("insert billing codes: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	tx = nil
	return nil
}

const selectOrder = `
	SELECT id, customer_id, kind, COALESCE(idempotency_key, ''), payload, created_at
	FROM einlagen.orders`

func (p *OrderRepository) GetOrderById(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return p.getOne(ctx, selectOrder+` WHERE id = $1`, id)
}

func (p *OrderRepository) GetOrderByIdempotencyKey(ctx context.Context, key string) (*domain.Order, error) {
	return p.getOne(ctx, selectOrder+` WHERE idempotency_key = $1`, key)
}

// getOne returns nil, nil when no row matches.
func (p *OrderRepository) getOne(ctx context.Context, query string, arg any) (*domain.Order, error) {
	var (
		o    domain.Order
		kind string
		raw  []byte
	)
	err := p.pool.QueryRow(ctx, query, arg).Scan(&o.OrderID, &o.CustomerID, &kind, &o.IdempotencyKey, &raw, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select order: %w", err)
	}
	o.Kind = domain.OrderKind(kind)
	if err := json.Unmarshal(raw, &o.Payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	return &o, nil
}

func (p *OrderRepository) ListRecentPayloads(ctx context.Context, limit int) ([]PayloadRow, error) {
	rows, err := p.pool.Query(ctx,
		`SELECT id, payload, created_at FROM einlagen.orders ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list payloads: %w", err)
	}
	defer rows.Close()

	var out []PayloadRow
	for rows.Next() {
		var r PayloadRow
		if err := rows.Scan(&r.ID, &r.Payload, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan payload: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
