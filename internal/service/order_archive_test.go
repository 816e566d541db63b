package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stockroomhq/warehouse-ops/internal/data"
	"github.com/stockroomhq/warehouse-ops/internal/domain/model"
)

// orderStore simulates the live orders table plus the archive table keyed
// by original order id.
type orderStore struct {
	mu       sync.Mutex
	orders   []*model.Order
	archived map[string]*model.ArchivedOrder
}

func newOrderStore(orders ...*model.Order) *orderStore {
	return &orderStore{orders: orders, archived: make(map[string]*model.ArchivedOrder)}
}

func (s *orderStore) orderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{
		FindDeliveredBeforeFn: func(_ context.Context, cutoff time.Time, limit int) ([]*model.Order, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			var out []*model.Order
			for _, o := range s.orders {
				if o.Status == model.OrderStatusDelivered && o.UpdatedAt.Before(cutoff) {
					out = append(out, o)
				}
				if len(out) == limit {
					break
				}
			}
			return out, nil
		},
		DeleteFn: func(_ context.Context, id string) error {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, o := range s.orders {
				if o.ID == id {
					s.orders = append(s.orders[:i], s.orders[i+1:]...)
					return nil
				}
			}
			return data.ErrOrderNotFound
		},
	}
}

func (s *orderStore) archiveRepo() *fakeArchiveRepo {
	return &fakeArchiveRepo{
		InsertFn: func(_ context.Context, snapshot *model.ArchivedOrder) (bool, error) {
			s.mu.Lock()
			defer s.mu.Unlock()
			if _, exists := s.archived[snapshot.OriginalOrderID]; exists {
				return false, nil
			}
			s.archived[snapshot.OriginalOrderID] = snapshot
			return true, nil
		},
	}
}

func (s *orderStore) liveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func deliveredOrder(id string, updatedAt time.Time) *model.Order {
	return &model.Order{
		ID:          id,
		OrderNumber: "ORD-" + id,
		Status:      model.OrderStatusDelivered,
		TotalAmount: 99.5,
		UpdatedAt:   updatedAt,
	}
}

func newArchiveJob(t *testing.T, store *orderStore, now time.Time, batchSize int) *OrderArchiveJob {
	t.Helper()
	job, err := NewOrderArchiveJob(OrderArchiveJobOptions{
		Orders:        store.orderRepo(),
		Archive:       store.archiveRepo(),
		RetentionDays: 30,
		BatchSize:     batchSize,
		Time:          data.NewFixedTimeProvider(now),
	})
	require.NoError(t, err)
	return job
}

func TestOrderArchiveJob_ArchivesOnlyPastRetention(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 2, 0, 0, 0, time.UTC)
	store := newOrderStore(
		deliveredOrder("old-1", now.AddDate(0, 0, -45)),
		deliveredOrder("old-2", now.AddDate(0, 0, -31)),
		deliveredOrder("fresh", now.AddDate(0, 0, -5)),
		&model.Order{ID: "pending", Status: model.OrderStatusPending, UpdatedAt: now.AddDate(0, 0, -90)},
	)
	job := newArchiveJob(t, store, now, 100)

	result, err := job.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.Counts["ordersArchived"])
	assert.Equal(t, 2, store.liveCount()) // fresh + pending survive
	require.Contains(t, store.archived, "old-1")
	snap := store.archived["old-1"]
	assert.Equal(t, "ORD-old-1", snap.OrderNumber)
	assert.Equal(t, "system:order-archive", snap.ArchivedBy)
	assert.Equal(t, now, snap.ArchivedAt)
}

func TestOrderArchiveJob_NoOrdersPastRetention(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 2, 0, 0, 0, time.UTC)
	inserts, deletes := 0, 0
	orderRepo := &fakeOrderRepo{
		FindDeliveredBeforeFn: func(context.Context, time.Time, int) ([]*model.Order, error) {
			return nil, nil
		},
		DeleteFn: func(context.Context, string) error {
			deletes++
			return nil
		},
	}
	archiveRepo := &fakeArchiveRepo{
		InsertFn: func(context.Context, *model.ArchivedOrder) (bool, error) {
			inserts++
			return true, nil
		},
	}

	job, err := NewOrderArchiveJob(OrderArchiveJobOptions{
		Orders:  orderRepo,
		Archive: archiveRepo,
		Time:    data.NewFixedTimeProvider(now),
	})
	require.NoError(t, err)

	result, err := job.Execute(context.Background())
	require.NoError(t, err)

	// An empty selection is a successful zero run, not a write path.
	assert.Equal(t, 0, result.Counts["ordersArchived"])
	assert.Empty(t, result.Errors)
	assert.Zero(t, inserts)
	assert.Zero(t, deletes)
}

func TestOrderArchiveJob_DrainsAcrossBatches(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 2, 0, 0, 0, time.UTC)
	orders := make([]*model.Order, 0, 7)
	for i := 0; i < 7; i++ {
		orders = append(orders, deliveredOrder(
			"o-"+string(rune('a'+i)), now.AddDate(0, 0, -40-i)))
	}
	store := newOrderStore(orders...)
	job := newArchiveJob(t, store, now, 3)

	result, err := job.Execute(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 7, result.Counts["ordersArchived"])
	assert.Equal(t, 0, store.liveCount())
	assert.Len(t, store.archived, 7)
}

func TestOrderArchiveJob_RetryAfterPartialFailureConverges(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 2, 0, 0, 0, time.UTC)
	store := newOrderStore(deliveredOrder("o-1", now.AddDate(0, 0, -60)))

	// First attempt: the snapshot commits but the delete fails, simulating
	// a crash between the two steps.
	orderRepo := store.orderRepo()
	realDelete := orderRepo.DeleteFn
	orderRepo.DeleteFn = func(context.Context, string) error {
		return errors.New("connection lost")
	}
	job, err := NewOrderArchiveJob(OrderArchiveJobOptions{
		Orders:        orderRepo,
		Archive:       store.archiveRepo(),
		RetentionDays: 30,
		Time:          data.NewFixedTimeProvider(now),
	})
	require.NoError(t, err)

	result, err := job.Execute(context.Background())
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "o-1", result.Errors[0].EntityID)
	assert.Equal(t, 1, store.liveCount())
	assert.Len(t, store.archived, 1)

	// Retry with the delete healed: the duplicate snapshot is absorbed and
	// the leftover source row is removed.
	orderRepo.DeleteFn = realDelete
	result, err = job.Execute(context.Background())
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.Counts["ordersArchived"])
	assert.Equal(t, 0, store.liveCount())
	assert.Len(t, store.archived, 1)
}

func TestOrderArchiveJob_ConcurrentDeleteTolerated(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 2, 0, 0, 0, time.UTC)
	order := deliveredOrder("o-1", now.AddDate(0, 0, -60))

	calls := 0
	orderRepo := &fakeOrderRepo{
		FindDeliveredBeforeFn: func(context.Context, time.Time, int) ([]*model.Order, error) {
			calls++
			if calls > 1 {
				return nil, nil
			}
			return []*model.Order{order}, nil
		},
		DeleteFn: func(context.Context, string) error {
			return data.ErrOrderNotFound
		},
	}
	archiveRepo := &fakeArchiveRepo{
		InsertFn: func(context.Context, *model.ArchivedOrder) (bool, error) {
			return true, nil
		},
	}

	job, err := NewOrderArchiveJob(OrderArchiveJobOptions{
		Orders:  orderRepo,
		Archive: archiveRepo,
		Time:    data.NewFixedTimeProvider(now),
	})
	require.NoError(t, err)

	result, err := job.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, result.Counts["ordersArchived"])
	assert.Empty(t, result.Errors)
}

func TestOrderArchiveJob_WhollyFailedBatchStops(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 2, 0, 0, 0, time.UTC)
	finds := 0
	orderRepo := &fakeOrderRepo{
		FindDeliveredBeforeFn: func(context.Context, time.Time, int) ([]*model.Order, error) {
			finds++
			return []*model.Order{deliveredOrder("stuck", now.AddDate(0, 0, -60))}, nil
		},
	}
	archiveRepo := &fakeArchiveRepo{
		InsertFn: func(context.Context, *model.ArchivedOrder) (bool, error) {
			return false, errors.New("disk full")
		},
	}

	job, err := NewOrderArchiveJob(OrderArchiveJobOptions{
		Orders:  orderRepo,
		Archive: archiveRepo,
		Time:    data.NewFixedTimeProvider(now),
	})
	require.NoError(t, err)

	result, err := job.Execute(context.Background())
	require.NoError(t, err)

	// One query, one failed batch, no spin.
	assert.Equal(t, 1, finds)
	assert.Len(t, result.Errors, 1)
	assert.Equal(t, 0, result.Counts["ordersArchived"])
}

func TestOrderArchiveJob_Cutoff(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 14, 2, 0, 0, 0, time.UTC)
	job, err := NewOrderArchiveJob(OrderArchiveJobOptions{
		Orders:        &fakeOrderRepo{},
		Archive:       &fakeArchiveRepo{},
		RetentionDays: 30,
	})
	require.NoError(t, err)

	assert.Equal(t, time.Date(2026, 2, 12, 2, 0, 0, 0, time.UTC), job.Cutoff(now))
}
