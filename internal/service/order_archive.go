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
)

// archivedBySystem marks snapshots written by the scheduled job rather than
// an operator action.
const archivedBySystem = "system:order-archive"

// OrderArchiveJobOptions groups dependencies for the order archive job.
type OrderArchiveJobOptions struct {
	Orders        core.OrderRepository   // Required
	Archive       core.ArchiveRepository // Required
	RetentionDays int                    // Optional: defaults to 30
	BatchSize     int                    // Optional: defaults to 100
	Logger        *slog.Logger           // Optional
	Time          data.TimeProvider      // Optional
}

// OrderArchiveJob moves delivered orders older than the retention cutoff
// into the immutable archive. For each order the snapshot is written and
// made durable before the source row is deleted; the snapshot insert is
// idempotent on the original order id, so a retry after a crash between the
// two steps cannot duplicate.
type OrderArchiveJob struct {
	orders        core.OrderRepository
	archive       core.ArchiveRepository
	retentionDays int
	batchSize     int
	logger        *slog.Logger
	time          data.TimeProvider
}

var _ core.JobUnit = (*OrderArchiveJob)(nil)

const (
	defaultRetentionDays    = 30
	defaultArchiveBatchSize = 100
)

// NewOrderArchiveJob constructs the order archive job.
func NewOrderArchiveJob(opts OrderArchiveJobOptions) (*OrderArchiveJob, error) {
	if opts.Orders == nil {
		return nil, errors.New("OrderRepository is required")
	}
	if opts.Archive == nil {
		return nil, errors.New("ArchiveRepository is required")
	}
	retentionDays := opts.RetentionDays
	if retentionDays <= 0 {
		retentionDays = defaultRetentionDays
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultArchiveBatchSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tp := opts.Time
	if tp == nil {
		tp = &data.RealTimeProvider{}
	}

	return &OrderArchiveJob{
		orders:        opts.Orders,
		archive:       opts.Archive,
		retentionDays: retentionDays,
		batchSize:     batchSize,
		logger:        logger.With("component", "order_archive_job"),
		time:          tp,
	}, nil
}

// Name returns the job name.
func (j *OrderArchiveJob) Name() jobs.Name {
	return jobs.NameOrderArchive
}

// Execute runs one archive pass: delivered orders last updated before
// now - retentionDays, oldest first, in fixed-size batches. An order that
// fails to archive stays in the live collection and is retried next run;
// per-order failures never abort the pass.
func (j *OrderArchiveJob) Execute(ctx context.Context) (*jobs.ExecutionResult, error) {
	started := j.time.Now()
	result := jobs.NewResult(j.Name())

	cutoff := started.AddDate(0, 0, -j.retentionDays)
	archived := 0

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		orders, err := j.orders.FindDeliveredBefore(ctx, cutoff, j.batchSize)
		if err != nil {
			return nil, fmt.Errorf("find archivable orders: %w", err)
		}
		if len(orders) == 0 {
			break
		}

		progressed := 0
		for _, order := range orders {
			if archiveErr := j.archiveOne(ctx, order); archiveErr != nil {
				result.AddError(order.ID, archiveErr.Error())
				continue
			}
			archived++
			progressed++
		}

		// Archived orders disappear from the selection, so the next
		// FindDeliveredBefore naturally returns the following window.
		// If a whole batch failed, stop instead of spinning on it.
		if progressed == 0 {
			break
		}
		if len(orders) < j.batchSize {
			break
		}
	}

	result.Counts["ordersArchived"] = archived
	result.Duration = j.time.Now().Sub(started)
	return result, nil
}

// archiveOne writes the snapshot and then deletes the source row. The two
// steps are sequential, not transactional: a crash after the snapshot
// commit leaves the source in place, and the idempotent insert absorbs the
// re-archive on the next run.
func (j *OrderArchiveJob) archiveOne(ctx context.Context, order *model.Order) error {
	snapshot := model.SnapshotOf(order, archivedBySystem, j.time.Now())

	inserted, err := j.archive.Insert(ctx, snapshot)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if !inserted {
		j.logger.InfoContext(ctx, "snapshot already exists, deleting leftover source row",
			"order_id", order.ID)
	}

	if err := j.orders.Delete(ctx, order.ID); err != nil {
		if errors.Is(err, data.ErrOrderNotFound) {
			// Deleted concurrently; the archive row is what matters.
			return nil
		}
		return fmt.Errorf("delete source order: %w", err)
	}
	return nil
}

// Cutoff exposes the retention window for status reporting.
func (j *OrderArchiveJob) Cutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -j.retentionDays)
}
