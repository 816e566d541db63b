package data

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/stockroomhq/warehouse-ops/internal/domain/model"
)

// ActivityRepo aggregates receiving and task activity for the daily summary.
// The receiving and task lifecycles themselves are owned by the request-side
// CRUD surface; this repo only reads day windows.
type ActivityRepo struct {
	DB *sql.DB
}

// NewActivityRepo creates a new ActivityRepo instance with the given database connection.
func NewActivityRepo(db *sql.DB) *ActivityRepo {
	return &ActivityRepo{DB: db}
}

// ReceivingDayStats aggregates receiving events for [dayStart, dayEnd).
func (r *ActivityRepo) ReceivingDayStats(
	ctx context.Context,
	dayStart, dayEnd time.Time,
) (*model.ReceivingDayStats, error) {
	query := `
		SELECT COUNT(*) AS count, COALESCE(SUM(quantity), 0) AS quantity
		FROM receiving_events
		WHERE received_at >= $1 AND received_at < $2`

	var stats model.ReceivingDayStats
	err := r.DB.QueryRowContext(ctx, query, dayStart, dayEnd).Scan(&stats.Count, &stats.Quantity)
	if err != nil {
		return nil, fmt.Errorf("receiving day stats: %w", err)
	}
	return &stats, nil
}

// TaskDayStats aggregates tasks created and completed within [dayStart, dayEnd).
func (r *ActivityRepo) TaskDayStats(
	ctx context.Context,
	dayStart, dayEnd time.Time,
) (*model.TaskDayStats, error) {
	query := `
		SELECT
			COUNT(*) FILTER (WHERE created_at >= $1 AND created_at < $2) AS created,
			COUNT(*) FILTER (WHERE completed_at IS NOT NULL AND completed_at >= $1 AND completed_at < $2) AS completed
		FROM tasks`

	var stats model.TaskDayStats
	err := r.DB.QueryRowContext(ctx, query, dayStart, dayEnd).Scan(&stats.Created, &stats.Completed)
	if err != nil {
		return nil, fmt.Errorf("task day stats: %w", err)
	}
	return &stats, nil
}
