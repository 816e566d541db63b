package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stockroomhq/warehouse-ops/internal/data"
	"github.com/stockroomhq/warehouse-ops/internal/domain/model"
	"github.com/stockroomhq/warehouse-ops/internal/domain/realtime"
)

type summaryFixture struct {
	orders    *fakeOrderRepo
	activity  *fakeActivityRepo
	products  *fakeProductRepo
	users     *fakeUserRepo
	systemLog *fakeSystemLogRepo
	publisher *recordingPublisher
	upserts   *[]*model.UpsertSystemLogRequest
	clock     *data.FixedTimeProvider
}

func newSummaryFixture(t *testing.T, now time.Time, inserted bool) (*DailySummaryJob, *summaryFixture) {
	t.Helper()

	upserts := []*model.UpsertSystemLogRequest{}
	fx := &summaryFixture{
		orders: &fakeOrderRepo{
			DayStatsFn: func(context.Context, time.Time, time.Time) (*model.OrderDayStats, error) {
				return &model.OrderDayStats{Count: 12, Revenue: 1844.20}, nil
			},
		},
		activity: &fakeActivityRepo{
			ReceivingDayStatsFn: func(context.Context, time.Time, time.Time) (*model.ReceivingDayStats, error) {
				return &model.ReceivingDayStats{Count: 4, Quantity: 250}, nil
			},
			TaskDayStatsFn: func(context.Context, time.Time, time.Time) (*model.TaskDayStats, error) {
				return &model.TaskDayStats{Created: 9, Completed: 7}, nil
			},
		},
		products: &fakeProductRepo{
			CountLowStockFn: func(context.Context) (int, error) { return 3, nil },
		},
		users: &fakeUserRepo{
			CountActiveSinceFn: func(context.Context, time.Time) (int, error) { return 15, nil },
		},
		publisher: &recordingPublisher{},
		upserts:   &upserts,
		clock:     data.NewFixedTimeProvider(now),
	}
	fx.systemLog = &fakeSystemLogRepo{
		UpsertFn: func(_ context.Context, req *model.UpsertSystemLogRequest) (*model.DailySystemLog, bool, error) {
			upserts = append(upserts, req)
			return &model.DailySystemLog{
				ID:              "log-1",
				LogDate:         req.LogDate,
				OrderCount:      req.OrderCount,
				OrderRevenue:    req.OrderRevenue,
				ReceivingCount:  req.ReceivingCount,
				TasksCompleted:  req.TasksCompleted,
				LowStockCount:   req.LowStockCount,
				ActiveUserCount: req.ActiveUserCount,
			}, inserted, nil
		},
	}

	job, err := NewDailySummaryJob(DailySummaryJobOptions{
		Orders:    fx.orders,
		Activity:  fx.activity,
		Products:  fx.products,
		Users:     fx.users,
		SystemLog: fx.systemLog,
		Publisher: fx.publisher,
		Time:      fx.clock,
	})
	require.NoError(t, err)
	return job, fx
}

func TestDailySummaryJob_AggregatesAndBroadcasts(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)
	job, fx := newSummaryFixture(t, now, true)

	result, err := job.Execute(context.Background())
	require.NoError(t, err)

	require.Len(t, *fx.upserts, 1)
	req := (*fx.upserts)[0]
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), req.LogDate)
	assert.Equal(t, 12, req.OrderCount)
	assert.InDelta(t, 1844.20, req.OrderRevenue, 0.001)
	assert.Equal(t, 4, req.ReceivingCount)
	assert.Equal(t, 250, req.ReceivingQuantity)
	assert.Equal(t, 9, req.TasksCreated)
	assert.Equal(t, 7, req.TasksCompleted)
	assert.Equal(t, 3, req.LowStockCount)
	assert.Equal(t, 15, req.ActiveUserCount)

	assert.Equal(t, 1, result.Counts["logsInserted"])

	broadcasts := fx.publisher.byEvent(realtime.EventDailySummaryGenerated)
	require.Len(t, broadcasts, 1)
	assert.Equal(t, "broadcast", broadcasts[0].Audience)

	payload, ok := broadcasts[0].Payload.(realtime.DailySummaryPayload)
	require.True(t, ok)
	assert.Equal(t, "2026-03-14", payload.Date)
	assert.Equal(t, 12, payload.Metrics.OrderCount)
	assert.Equal(t, 7, payload.Metrics.TasksCompleted)
	assert.Equal(t, 15, payload.Metrics.ActiveUsers)
}

func TestDailySummaryJob_RerunUpdatesSameDay(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)
	job, fx := newSummaryFixture(t, now, false)

	result, err := job.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Counts["logsUpdated"])
	assert.Zero(t, result.Counts["logsInserted"])
	// The rerun still broadcasts the converged metrics.
	assert.Len(t, fx.publisher.byEvent(realtime.EventDailySummaryGenerated), 1)
}

func TestDailySummaryJob_ClockDrivesTargetDay(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	job, fx := newSummaryFixture(t, now, true)

	_, err := job.Execute(context.Background())
	require.NoError(t, err)

	// A later run the same day still targets the same log row.
	fx.clock.AddTime(13 * time.Hour)
	_, err = job.Execute(context.Background())
	require.NoError(t, err)

	// Past midnight the target day rolls over.
	fx.clock.SetTime(time.Date(2026, 3, 15, 0, 1, 0, 0, time.UTC))
	_, err = job.Execute(context.Background())
	require.NoError(t, err)

	require.Len(t, *fx.upserts, 3)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), (*fx.upserts)[0].LogDate)
	assert.Equal(t, (*fx.upserts)[0].LogDate, (*fx.upserts)[1].LogDate)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC), (*fx.upserts)[2].LogDate)
}

func TestDailySummaryJob_AggregateFailureFailsRun(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)
	job, fx := newSummaryFixture(t, now, true)
	fx.orders.DayStatsFn = func(context.Context, time.Time, time.Time) (*model.OrderDayStats, error) {
		return nil, errors.New("aggregate query failed")
	}

	_, err := job.Execute(context.Background())
	require.Error(t, err)
	assert.Empty(t, fx.publisher.recorded())
}

func TestDailySummaryJob_UpsertFailureSkipsBroadcast(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)
	job, fx := newSummaryFixture(t, now, true)
	fx.systemLog.UpsertFn = func(context.Context, *model.UpsertSystemLogRequest) (*model.DailySystemLog, bool, error) {
		return nil, false, errors.New("constraint violation")
	}

	_, err := job.Execute(context.Background())
	require.Error(t, err)
	assert.Empty(t, fx.publisher.recorded())
}
