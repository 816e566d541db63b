package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stockroomhq/warehouse-ops/internal/data/pgxutil"
	"github.com/stockroomhq/warehouse-ops/internal/domain/model"
)

// OrderRepo provides the order reads and the delete issued by archival.
type OrderRepo struct {
	DB *sql.DB
}

// NewOrderRepo creates a new OrderRepo instance with the given database connection.
func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{DB: db}
}

const orderColumns = `id, order_number, status, customer_id, total_amount, items, created_at, updated_at`

// FindDeliveredBefore returns delivered orders last updated before cutoff,
// oldest first, at most limit rows. Archived (deleted) orders naturally fall
// out of the selection, which is what makes re-running the scan convergent.
func (r *OrderRepo) FindDeliveredBefore(
	ctx context.Context,
	cutoff time.Time,
	limit int,
) ([]*model.Order, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE status = $1 AND updated_at < $2
		ORDER BY updated_at ASC
		LIMIT $3`

	var orders []*model.Order
	err := pgxutil.WithPgxConn(ctx, r.DB, func(pgxConn *pgx.Conn) error {
		rows, err := pgxConn.Query(ctx, query, model.OrderStatusDelivered, cutoff, limit)
		if err != nil {
			return err
		}
		orders, err = pgx.CollectRows(rows, pgx.RowToAddrOfStructByName[model.Order])
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("find delivered orders: %w", err)
	}

	return orders, nil
}

// Delete removes an order row. Called only after its archive snapshot is durable.
func (r *OrderRepo) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete order: rows affected: %w", err)
	}
	if affected == 0 {
		return ErrOrderNotFound
	}
	return nil
}

// DayStats aggregates order count and revenue for the half-open interval
// [dayStart, dayEnd).
func (r *OrderRepo) DayStats(
	ctx context.Context,
	dayStart, dayEnd time.Time,
) (*model.OrderDayStats, error) {
	query := `
		SELECT COUNT(*) AS count, COALESCE(SUM(total_amount), 0) AS revenue
		FROM orders
		WHERE created_at >= $1 AND created_at < $2`

	var stats model.OrderDayStats
	err := r.DB.QueryRowContext(ctx, query, dayStart, dayEnd).Scan(&stats.Count, &stats.Revenue)
	if err != nil {
		return nil, fmt.Errorf("order day stats: %w", err)
	}
	return &stats, nil
}

// GetByID fetches a single order.
func (r *OrderRepo) GetByID(ctx context.Context, id string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	var order model.Order
	err := pgxutil.WithPgxConn(ctx, r.DB, func(pgxConn *pgx.Conn) error {
		rows, err := pgxConn.Query(ctx, query, id)
		if err != nil {
			return err
		}
		defer rows.Close()

		order, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.Order])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	return &order, nil
}
