package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stockroomhq/warehouse-ops/internal/data/pgxutil"
	"github.com/stockroomhq/warehouse-ops/internal/domain/model"
)

// SystemLogRepo persists the one-row-per-day aggregate log.
type SystemLogRepo struct {
	DB           *sql.DB
	timeProvider TimeProvider
}

// NewSystemLogRepo creates a new SystemLogRepo instance with the given database connection.
func NewSystemLogRepo(db *sql.DB) *SystemLogRepo {
	return &SystemLogRepo{
		DB:           db,
		timeProvider: &RealTimeProvider{},
	}
}

const systemLogColumns = `id, log_date, order_count, order_revenue, receiving_count, receiving_quantity, tasks_created, tasks_completed, low_stock_count, active_user_count, created_at, updated_at`

// Upsert inserts the day's log or, when a row for the same date already
// exists, overwrites its aggregates. log_date is unique at day granularity,
// so re-running a summary converges instead of duplicating. The bool reports
// whether a new row was inserted.
func (r *SystemLogRepo) Upsert(
	ctx context.Context,
	req *model.UpsertSystemLogRequest,
) (*model.DailySystemLog, bool, error) {
	if req == nil {
		return nil, false, errors.New("upsert system log request is required")
	}
	if req.LogDate.IsZero() {
		return nil, false, errors.New("log date is required")
	}

	now := r.timeProvider.Now()
	logDate := truncateToDay(req.LogDate)

	query := `
		INSERT INTO daily_system_logs
			(id, log_date, order_count, order_revenue, receiving_count, receiving_quantity,
			 tasks_created, tasks_completed, low_stock_count, active_user_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		ON CONFLICT (log_date) DO UPDATE SET
			order_count = EXCLUDED.order_count,
			order_revenue = EXCLUDED.order_revenue,
			receiving_count = EXCLUDED.receiving_count,
			receiving_quantity = EXCLUDED.receiving_quantity,
			tasks_created = EXCLUDED.tasks_created,
			tasks_completed = EXCLUDED.tasks_completed,
			low_stock_count = EXCLUDED.low_stock_count,
			active_user_count = EXCLUDED.active_user_count,
			updated_at = EXCLUDED.updated_at
		RETURNING ` + systemLogColumns + `, (created_at = updated_at) AS inserted`

	var logRow model.DailySystemLog
	inserted := false
	err := pgxutil.WithPgxConn(ctx, r.DB, func(pgxConn *pgx.Conn) error {
		row := pgxConn.QueryRow(ctx, query,
			uuid.NewString(), logDate, req.OrderCount, req.OrderRevenue,
			req.ReceivingCount, req.ReceivingQuantity,
			req.TasksCreated, req.TasksCompleted,
			req.LowStockCount, req.ActiveUserCount, now,
		)
		return row.Scan(
			&logRow.ID, &logRow.LogDate,
			&logRow.OrderCount, &logRow.OrderRevenue,
			&logRow.ReceivingCount, &logRow.ReceivingQuantity,
			&logRow.TasksCreated, &logRow.TasksCompleted,
			&logRow.LowStockCount, &logRow.ActiveUserCount,
			&logRow.CreatedAt, &logRow.UpdatedAt,
			&inserted,
		)
	})
	if err != nil {
		return nil, false, fmt.Errorf("upsert daily system log: %w", err)
	}

	return &logRow, inserted, nil
}

// GetByDate fetches the log row for one calendar day.
func (r *SystemLogRepo) GetByDate(ctx context.Context, date time.Time) (*model.DailySystemLog, error) {
	query := `SELECT ` + systemLogColumns + ` FROM daily_system_logs WHERE log_date = $1`

	var logRow model.DailySystemLog
	err := pgxutil.WithPgxConn(ctx, r.DB, func(pgxConn *pgx.Conn) error {
		rows, err := pgxConn.Query(ctx, query, truncateToDay(date))
		if err != nil {
			return err
		}
		defer rows.Close()

		logRow, err = pgx.CollectOneRow(rows, pgx.RowToStructByName[model.DailySystemLog])
		return err
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSystemLogNotFound
		}
		return nil, fmt.Errorf("get daily system log: %w", err)
	}

	return &logRow, nil
}

// truncateToDay drops the time-of-day component, preserving the location.
func truncateToDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
