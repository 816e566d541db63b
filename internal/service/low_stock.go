package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stockroomhq/warehouse-ops/internal/core"
	"github.com/stockroomhq/warehouse-ops/internal/data"
	"github.com/stockroomhq/warehouse-ops/internal/domain/jobs"
	"github.com/stockroomhq/warehouse-ops/internal/domain/model"
	"github.com/stockroomhq/warehouse-ops/internal/domain/realtime"
)

// LowStockJobOptions groups dependencies for the low-stock scan.
type LowStockJobOptions struct {
	Products      core.ProductRepository // Required
	Users         core.UserRepository    // Required
	Notifications *NotificationService   // Required
	Publisher     core.EventPublisher    // Required
	Logger        *slog.Logger           // Optional
	Time          data.TimeProvider      // Optional
}

// LowStockJob scans for products at or below their reorder threshold,
// notifies every active admin/manager once per run, and pushes one live
// alert per affected product.
type LowStockJob struct {
	products      core.ProductRepository
	users         core.UserRepository
	notifications *NotificationService
	publisher     core.EventPublisher
	logger        *slog.Logger
	time          data.TimeProvider
}

var _ core.JobUnit = (*LowStockJob)(nil)

// NewLowStockJob constructs the low-stock scan job.
func NewLowStockJob(opts LowStockJobOptions) (*LowStockJob, error) {
	if opts.Products == nil {
		return nil, errors.New("ProductRepository is required")
	}
	if opts.Users == nil {
		return nil, errors.New("UserRepository is required")
	}
	if opts.Notifications == nil {
		return nil, errors.New("NotificationService is required")
	}
	if opts.Publisher == nil {
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

	return &LowStockJob{
		products:      opts.Products,
		users:         opts.Users,
		notifications: opts.Notifications,
		publisher:     opts.Publisher,
		logger:        logger.With("component", "low_stock_job"),
		time:          tp,
	}, nil
}

// Name returns the job name.
func (j *LowStockJob) Name() jobs.Name {
	return jobs.NameLowStockScan
}

// Execute runs one scan. With no low-stock products it short-circuits to a
// zero-result success. Per-recipient notification failures are collected,
// never fatal.
func (j *LowStockJob) Execute(ctx context.Context) (*jobs.ExecutionResult, error) {
	started := j.time.Now()
	result := jobs.NewResult(j.Name())

	products, err := j.products.FindLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("find low stock products: %w", err)
	}

	result.Counts["lowStockProducts"] = len(products)
	if len(products) == 0 {
		result.Duration = j.time.Now().Sub(started)
		return result, nil
	}

	recipients, err := j.users.FindActiveByRoles(ctx, model.AdminRoles())
	if err != nil {
		return nil, fmt.Errorf("resolve alert recipients: %w", err)
	}

	metadata, err := lowStockMetadata(products)
	if err != nil {
		return nil, fmt.Errorf("build notification metadata: %w", err)
	}

	notified := 0
	for _, recipient := range recipients {
		_, createErr := j.notifications.Create(ctx, &model.CreateNotificationRequest{
			Title:       "Low stock alert",
			Message:     fmt.Sprintf("%d product(s) are at or below their minimum stock level", len(products)),
			RecipientID: recipient.ID,
			Type:        model.NotificationTypeLowStock,
			Metadata:    metadata,
		})
		if createErr != nil {
			result.AddError(recipient.ID, createErr.Error())
			continue
		}
		notified++
	}
	result.Counts["notificationsCreated"] = notified

	now := j.time.Now()
	for _, product := range products {
		j.publisher.ToAdmins(ctx, realtime.EventLowStockAlert, realtime.NewLowStockAlert(product, now))
	}
	result.Counts["alertsEmitted"] = len(products)

	result.Duration = j.time.Now().Sub(started)
	return result, nil
}

// lowStockMetadata serializes the affected products into the notification
// metadata payload.
func lowStockMetadata(products []*model.Product) (json.RawMessage, error) {
	type item struct {
		ProductID         string `json:"productId"`
		SKU               string `json:"sku"`
		Name              string `json:"name"`
		Quantity          int    `json:"quantity"`
		MinimumStockLevel int    `json:"minimumStockLevel"`
	}
	items := make([]item, 0, len(products))
	for _, p := range products {
		items = append(items, item{
			ProductID:         p.ID,
			SKU:               p.SKU,
			Name:              p.Name,
			Quantity:          p.Quantity,
			MinimumStockLevel: p.MinimumStockLevel,
		})
	}
	return json.Marshal(map[string]any{"products": items})
}
