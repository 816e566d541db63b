package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/stockroomhq/warehouse-ops/internal/core"
	"github.com/stockroomhq/warehouse-ops/internal/data"
	"github.com/stockroomhq/warehouse-ops/internal/domain/model"
	"github.com/stockroomhq/warehouse-ops/internal/domain/realtime"
)

// NotificationServiceOptions groups dependencies for NotificationService.
type NotificationServiceOptions struct {
	Repo      core.NotificationRepository // Required: notification repository
	Users     core.UserRepository         // Required: recipient validation
	Publisher core.EventPublisher         // Optional: live push on lifecycle changes
	Logger    *slog.Logger                // Optional: structured logger
	Time      data.TimeProvider           // Optional: defaults to real time
}

// NotificationService owns the lifecycle of durable notification records.
// Every mutating operation is scoped to the owning user; cross-user access
// surfaces as not-found. Lifecycle changes additionally fire a best-effort
// live event on the recipient's notification channel.
type NotificationService struct {
	repo      core.NotificationRepository
	users     core.UserRepository
	publisher core.EventPublisher
	logger    *slog.Logger
	time      data.TimeProvider
}

// NewNotificationService constructs a NotificationService.
func NewNotificationService(opts NotificationServiceOptions) (*NotificationService, error) {
	if opts.Repo == nil {
		return nil, errors.New("NotificationRepository is required")
	}
	if opts.Users == nil {
		return nil, errors.New("UserRepository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tp := opts.Time
	if tp == nil {
		tp = &data.RealTimeProvider{}
	}

	return &NotificationService{
		repo:      opts.Repo,
		users:     opts.Users,
		publisher: opts.Publisher,
		logger:    logger.With("component", "notification_service"),
		time:      tp,
	}, nil
}

// Create validates the recipient, persists the notification, and fires a
// notificationCreated event on the recipient's notification channel.
func (s *NotificationService) Create(
	ctx context.Context,
	req *model.CreateNotificationRequest,
) (*model.Notification, error) {
	if req == nil {
		return nil, errors.New("create notification request is required")
	}

	recipient, err := s.users.GetByID(ctx, req.RecipientID)
	if err != nil {
		if errors.Is(err, data.ErrUserNotFound) {
			return nil, data.ErrRecipientInvalid
		}
		return nil, fmt.Errorf("validate recipient: %w", err)
	}
	if !recipient.IsActive || recipient.IsDeleted {
		return nil, data.ErrRecipientInvalid
	}

	notification, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}

	s.pushLifecycleEvent(ctx, realtime.EventNotificationCreated, notification.RecipientID,
		realtime.NotificationEventPayload{
			NotificationID: notification.ID,
			UserID:         notification.RecipientID,
			Timestamp:      s.time.Now(),
		})

	return notification, nil
}

// ListForUser returns one page of the user's visible notifications.
func (s *NotificationService) ListForUser(
	ctx context.Context,
	userID string,
	opts model.NotificationListOptions,
) (*model.NotificationPage, error) {
	return s.repo.ListForUser(ctx, userID, opts)
}

// MarkRead marks one owned notification as read. Re-reading an already-read
// notification is a no-op that preserves the original read timestamp and
// fires no event.
func (s *NotificationService) MarkRead(
	ctx context.Context,
	id, userID string,
) (*model.Notification, error) {
	notification, changed, err := s.repo.MarkRead(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if changed {
		s.pushLifecycleEvent(ctx, realtime.EventNotificationRead, userID,
			realtime.NotificationEventPayload{
				NotificationID: notification.ID,
				UserID:         userID,
				Timestamp:      s.time.Now(),
			})
	}

	return notification, nil
}

// MarkAllRead marks every unread notification of the user and returns the
// count of rows changed. The event carries the count and fires even when
// zero rows changed, matching the read-state the client should converge to.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID string) (int, error) {
	count, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}

	s.pushLifecycleEvent(ctx, realtime.EventAllNotificationsRead, userID,
		realtime.NotificationEventPayload{
			Count:     count,
			UserID:    userID,
			Timestamp: s.time.Now(),
		})

	return count, nil
}

// SoftDelete flags one owned notification as deleted and fires a
// notificationDeleted event. There is no hard delete path.
func (s *NotificationService) SoftDelete(ctx context.Context, id, userID string) error {
	if err := s.repo.SoftDelete(ctx, id, userID); err != nil {
		return err
	}

	s.pushLifecycleEvent(ctx, realtime.EventNotificationDeleted, userID,
		realtime.NotificationEventPayload{
			NotificationID: id,
			UserID:         userID,
			Timestamp:      s.time.Now(),
		})

	return nil
}

func (s *NotificationService) pushLifecycleEvent(
	ctx context.Context,
	event, userID string,
	payload realtime.NotificationEventPayload,
) {
	if s.publisher == nil {
		return
	}
	s.publisher.ToNotificationChannel(ctx, userID, event, payload)
}
