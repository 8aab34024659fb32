package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/baketrak/order-system/internal/core/domain"
	"github.com/baketrak/order-system/internal/core/ports"
)

// OrderRepository persists orders in PostgreSQL. Every status mutation
// appends a history row in the same transaction.
type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin order tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insertOrder = `
INSERT INTO orders (id, user_id, address, status, total, created_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	if _, err := tx.Exec(ctx, insertOrder,
		order.ID, order.UserID, order.Address, order.Status, order.Total, order.CreatedAt,
	); err != nil {
		return fmt.Errorf("insert order: %w", err)
	}

	const insertItem = `
INSERT INTO order_items (order_id, product_id, product_name, quantity, unit_price)
VALUES ($1, $2, $3, $4, $5)
`
	for _, item := range order.Items {
		if _, err := tx.Exec(ctx, insertItem,
			order.ID, item.ProductID, item.ProductName, item.Quantity, item.UnitPrice,
		); err != nil {
			return fmt.Errorf("insert order item: %w", err)
		}
	}

	for _, entry := range order.StatusHistory {
		if err := insertHistory(ctx, tx, order.ID, entry.Status, entry.Notes, entry.Timestamp); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	const query = `
SELECT id, user_id, courier_id, address, status, total, created_at
FROM orders WHERE id = $1
`
	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return order, nil
}

func (r *OrderRepository) List(ctx context.Context, filter ports.OrderFilter) ([]*domain.Order, error) {
	query := `
SELECT id, user_id, courier_id, address, status, total, created_at
FROM orders
`
	var (
		conds []string
		args  []any
	)
	if filter.UserID != "" {
		args = append(args, filter.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if filter.CourierID != "" {
		args = append(args, filter.CourierID)
		conds = append(conds, fmt.Sprintf("courier_id = $%d", len(args)))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	for i, cond := range conds {
		if i == 0 {
			query += "WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (r *OrderRepository) Items(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	const query = `
SELECT product_id, product_name, quantity, unit_price
FROM order_items WHERE order_id = $1
`
	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		if err := rows.Scan(&item.ProductID, &item.ProductName, &item.Quantity, &item.UnitPrice); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *OrderRepository) History(ctx context.Context, orderID string) ([]domain.StatusHistoryEntry, error) {
	const query = `
SELECT status, notes, created_at
FROM order_status_history WHERE order_id = $1
ORDER BY created_at ASC, id ASC
`
	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("order history: %w", err)
	}
	defer rows.Close()

	var entries []domain.StatusHistoryEntry
	for rows.Next() {
		var entry domain.StatusHistoryEntry
		if err := rows.Scan(&entry.Status, &entry.Notes, &entry.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, orderID string, status domain.OrderStatus, courierID, notes string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin status tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var tag pgconn.CommandTag
	if courierID != "" {
		tag, err = tx.Exec(ctx, `UPDATE orders SET status = $2, courier_id = $3 WHERE id = $1`, orderID, status, courierID)
	} else {
		tag, err = tx.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, orderID, status)
	}
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrOrderNotFound
	}

	if err := insertHistory(ctx, tx, orderID, status, notes, time.Now().UTC()); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func insertHistory(ctx context.Context, tx pgx.Tx, orderID string, status domain.OrderStatus, notes string, ts time.Time) error {
	const query = `
INSERT INTO order_status_history (order_id, status, notes, created_at)
VALUES ($1, $2, $3, $4)
`
	if _, err := tx.Exec(ctx, query, orderID, status, notes, ts); err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		o         domain.Order
		courierID *string
	)
	err := row.Scan(
		&o.ID,
		&o.UserID,
		&courierID,
		&o.Address,
		&o.Status,
		&o.Total,
		&o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if courierID != nil {
		o.CourierID = *courierID
	}
	return &o, nil
}
