package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/stockroomhq/warehouse-ops/internal/core"
	"github.com/stockroomhq/warehouse-ops/internal/data"
	"github.com/stockroomhq/warehouse-ops/internal/domain/jobs"
	"github.com/stockroomhq/warehouse-ops/internal/domain/model"
	"github.com/stockroomhq/warehouse-ops/internal/domain/realtime"
)

// activeUserWindow is the lookback used for the active-user aggregate.
const activeUserWindow = 24 * time.Hour

// DailySummaryJobOptions groups dependencies for the daily summary job.
type DailySummaryJobOptions struct {
	Orders    core.OrderRepository     // Required
	Activity  core.ActivityRepository  // Required
	Products  core.ProductRepository   // Required
	Users     core.UserRepository      // Required
	SystemLog core.SystemLogRepository // Required
	Publisher core.EventPublisher      // Required
	Logger    *slog.Logger             // Optional
	Time      data.TimeProvider        // Optional
}

// DailySummaryJob aggregates the current calendar day and upserts the
// per-day system log. A second run for the same day overwrites the first
// run's aggregates instead of inserting a new row. Either path broadcasts
// the day's headline metrics.
type DailySummaryJob struct {
	orders    core.OrderRepository
	activity  core.ActivityRepository
	products  core.ProductRepository
	users     core.UserRepository
	systemLog core.SystemLogRepository
	publisher core.EventPublisher
	logger    *slog.Logger
	time      data.TimeProvider
}

var _ core.JobUnit = (*DailySummaryJob)(nil)

// NewDailySummaryJob constructs the daily summary job.
func NewDailySummaryJob(opts DailySummaryJobOptions) (*DailySummaryJob, error) {
	switch {
	case opts.Orders == nil:
		return nil, errors.New("OrderRepository is required")
	case opts.Activity == nil:
		return nil, errors.New("ActivityRepository is required")
	case opts.Products == nil:
		return nil, errors.New("ProductRepository is required")
	case opts.Users == nil:
		return nil, errors.New("UserRepository is required")
	case opts.SystemLog == nil:
		return nil, errors.New("SystemLogRepository is required")
	case opts.Publisher == nil:
		return nil, errors.New("EventPublisher is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tp := opts.Time
	if tp == nil {
		tp = &data.RealTimeProvider{}
	}

	return &DailySummaryJob{
		orders:    opts.Orders,
		activity:  opts.Activity,
		products:  opts.Products,
		users:     opts.Users,
		systemLog: opts.SystemLog,
		publisher: opts.Publisher,
		logger:    logger.With("component", "daily_summary_job"),
		time:      tp,
	}, nil
}

// Name returns the job name.
func (j *DailySummaryJob) Name() jobs.Name {
	return jobs.NameDailySummary
}

// Execute aggregates today's activity, upserts the day's log, and
// broadcasts the headline metrics.
func (j *DailySummaryJob) Execute(ctx context.Context) (*jobs.ExecutionResult, error) {
	started := j.time.Now()
	result := jobs.NewResult(j.Name())

	dayStart := startOfDay(started)
	dayEnd := dayStart.AddDate(0, 0, 1)

	orderStats, err := j.orders.DayStats(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("order aggregates: %w", err)
	}
	receivingStats, err := j.activity.ReceivingDayStats(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("receiving aggregates: %w", err)
	}
	taskStats, err := j.activity.TaskDayStats(ctx, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("task aggregates: %w", err)
	}
	lowStockCount, err := j.products.CountLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("low stock count: %w", err)
	}
	activeUsers, err := j.users.CountActiveSince(ctx, started.Add(-activeUserWindow))
	if err != nil {
		return nil, fmt.Errorf("active user count: %w", err)
	}

	logRow, inserted, err := j.systemLog.Upsert(ctx, &model.UpsertSystemLogRequest{
		LogDate:           dayStart,
		OrderCount:        orderStats.Count,
		OrderRevenue:      orderStats.Revenue,
		ReceivingCount:    receivingStats.Count,
		ReceivingQuantity: receivingStats.Quantity,
		TasksCreated:      taskStats.Created,
		TasksCompleted:    taskStats.Completed,
		LowStockCount:     lowStockCount,
		ActiveUserCount:   activeUsers,
	})
	if err != nil {
		return nil, fmt.Errorf("persist daily log: %w", err)
	}

	if inserted {
		result.Counts["logsInserted"] = 1
	} else {
		result.Counts["logsUpdated"] = 1
	}

	j.publisher.Broadcast(ctx, realtime.EventDailySummaryGenerated, realtime.DailySummaryPayload{
		Date: dayStart.Format("2006-01-02"),
		Metrics: realtime.DailySummaryMetrics{
			OrderCount:     logRow.OrderCount,
			OrderRevenue:   logRow.OrderRevenue,
			ReceivingCount: logRow.ReceivingCount,
			TasksCompleted: logRow.TasksCompleted,
			LowStockItems:  logRow.LowStockCount,
			ActiveUsers:    logRow.ActiveUserCount,
		},
		Timestamp: j.time.Now(),
	})

	result.Duration = j.time.Now().Sub(started)
	return result, nil
}

// startOfDay returns midnight of t's calendar day in t's location.
func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
