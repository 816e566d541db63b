// Package core defines the ports between the service layer and its
// collaborators (repositories, credential verification, live transport).
// Services depend on these interfaces, never on concrete implementations.
package core

import (
	"context"
	"time"

	"github.com/stockroomhq/warehouse-ops/internal/domain/jobs"
	"github.com/stockroomhq/warehouse-ops/internal/domain/model"
	"github.com/stockroomhq/warehouse-ops/internal/domain/realtime"
)

// NotificationRepository defines the interface for notification data operations.
// All mutating operations are scoped to the owning user; a mismatch surfaces
// as a not-found error rather than leaking existence.
type NotificationRepository interface {
	Create(ctx context.Context, req *model.CreateNotificationRequest) (*model.Notification, error)
	GetByID(ctx context.Context, id string) (*model.Notification, error)
	ListForUser(ctx context.Context, userID string, opts model.NotificationListOptions) (*model.NotificationPage, error)
	// MarkRead sets read state for one owned notification. Returns the
	// updated row and whether this call changed anything (false when the
	// notification was already read).
	MarkRead(ctx context.Context, id, userID string) (*model.Notification, bool, error)
	// MarkAllRead marks every unread notification of the user and returns
	// the number of rows changed.
	MarkAllRead(ctx context.Context, userID string) (int, error)
	// SoftDelete flags one owned notification as deleted.
	SoftDelete(ctx context.Context, id, userID string) error
}

// ProductRepository defines the product reads used by the background jobs.
type ProductRepository interface {
	FindLowStock(ctx context.Context) ([]*model.Product, error)
	CountLowStock(ctx context.Context) (int, error)
}

// OrderRepository defines the order reads and the delete issued by archival.
type OrderRepository interface {
	// FindDeliveredBefore returns delivered orders last updated before
	// cutoff, oldest first, at most limit rows.
	FindDeliveredBefore(ctx context.Context, cutoff time.Time, limit int) ([]*model.Order, error)
	Delete(ctx context.Context, id string) error
	DayStats(ctx context.Context, dayStart, dayEnd time.Time) (*model.OrderDayStats, error)
}

// ArchiveRepository persists immutable order snapshots.
type ArchiveRepository interface {
	// Insert writes the snapshot. A snapshot that already exists for the
	// same original order id is a no-op; the bool reports whether a row
	// was written.
	Insert(ctx context.Context, snapshot *model.ArchivedOrder) (bool, error)
	GetByOriginalOrderID(ctx context.Context, originalOrderID string) (*model.ArchivedOrder, error)
}

// UserRepository defines the account reads and the credential clear used by
// the background jobs.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*model.User, error)
	FindActiveByRoles(ctx context.Context, roles []model.UserRole) ([]*model.User, error)
	FindWithRefreshToken(ctx context.Context, limit, offset int) ([]*model.User, error)
	ClearRefreshToken(ctx context.Context, userID string) error
	CountActiveSince(ctx context.Context, since time.Time) (int, error)
}

// SystemLogRepository persists the per-day aggregate log.
type SystemLogRepository interface {
	// Upsert inserts the day's log or updates the existing row for the
	// same date. The bool reports whether a new row was inserted.
	Upsert(ctx context.Context, req *model.UpsertSystemLogRequest) (*model.DailySystemLog, bool, error)
	GetByDate(ctx context.Context, date time.Time) (*model.DailySystemLog, error)
}

// ActivityRepository aggregates receiving and task activity per day.
type ActivityRepository interface {
	ReceivingDayStats(ctx context.Context, dayStart, dayEnd time.Time) (*model.ReceivingDayStats, error)
	TaskDayStats(ctx context.Context, dayStart, dayEnd time.Time) (*model.TaskDayStats, error)
}

// TokenVerifier checks a stored refresh credential. A nil error means the
// credential still verifies; failures carry a structured kind via
// *auth.VerificationError.
type TokenVerifier interface {
	Verify(ctx context.Context, rawToken string) error
}

// Transport forwards a named event to every connection in a room. The
// router treats publish failures as best-effort; implementations should
// return promptly.
type Transport interface {
	Publish(ctx context.Context, room realtime.Room, event string, payload any) error
}

// EventPublisher is the delivery API exposed to jobs and request-side
// collaborators. Calls never block on delivery and never return errors:
// live push is a convenience layer over durable notification rows.
type EventPublisher interface {
	ToUser(ctx context.Context, userID, event string, payload any)
	ToRole(ctx context.Context, role model.UserRole, event string, payload any)
	ToAdmins(ctx context.Context, event string, payload any)
	ToNotificationChannel(ctx context.Context, userID, event string, payload any)
	Broadcast(ctx context.Context, event string, payload any)
}

// JobUnit is one self-contained unit of recurring work. Execute must be
// idempotent or convergent: re-running with no new data produces no new
// side effects.
type JobUnit interface {
	Name() jobs.Name
	Execute(ctx context.Context) (*jobs.ExecutionResult, error)
}
