// Package service provides the business logic of the warehouse background
// core: the event router, the notification service, and the scheduled jobs.
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/stockroomhq/warehouse-ops/internal/core"
	"github.com/stockroomhq/warehouse-ops/internal/domain/model"
	"github.com/stockroomhq/warehouse-ops/internal/domain/realtime"
	"github.com/stockroomhq/warehouse-ops/internal/observability/statsd"
)

// publishTimeout caps how long one best-effort publish may hold the caller.
const publishTimeout = 2 * time.Second

// EventRouter resolves logical audiences to rooms and forwards payloads to
// the live transport. Every method is best-effort: a nil or failing
// transport logs and degrades to a no-op, because notification rows are the
// system of record and live push is a convenience on top.
//
// The transport is injected at construction; there is no package-level
// registry.
type EventRouter struct {
	transport core.Transport
	logger    *slog.Logger
	metrics   statsd.Sink
}

var _ core.EventPublisher = (*EventRouter)(nil)

// EventRouterOptions groups dependencies for the EventRouter.
type EventRouterOptions struct {
	Transport core.Transport // Optional: nil degrades every publish to a no-op
	Logger    *slog.Logger   // Optional: structured logger
	Metrics   statsd.Sink    // Optional: metrics sink
}

// NewEventRouter constructs an EventRouter.
func NewEventRouter(opts EventRouterOptions) *EventRouter {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &EventRouter{
		transport: opts.Transport,
		logger:    logger.With("component", "event_router"),
		metrics:   opts.Metrics,
	}
}

// ToUser pushes an event to one user's general channel.
func (r *EventRouter) ToUser(ctx context.Context, userID, event string, payload any) {
	r.publish(ctx, event, payload, realtime.UserRoom(userID))
}

// ToRole pushes an event to every connected user holding the role.
func (r *EventRouter) ToRole(ctx context.Context, role model.UserRole, event string, payload any) {
	r.publish(ctx, event, payload, realtime.RoleRoom(role))
}

// ToAdmins pushes an event to the admin and manager role rooms.
func (r *EventRouter) ToAdmins(ctx context.Context, event string, payload any) {
	r.publish(ctx, event, payload, realtime.AdminRooms()...)
}

// ToNotificationChannel pushes a notification lifecycle event to the user's
// dedicated notification channel.
func (r *EventRouter) ToNotificationChannel(ctx context.Context, userID, event string, payload any) {
	r.publish(ctx, event, payload, realtime.NotificationRoom(userID))
}

// Broadcast pushes an event to every connected client.
func (r *EventRouter) Broadcast(ctx context.Context, event string, payload any) {
	r.publish(ctx, event, payload, realtime.BroadcastRoom)
}

func (r *EventRouter) publish(ctx context.Context, event string, payload any, rooms ...realtime.Room) {
	if r.transport == nil {
		// Startup race: the transport may not be wired yet. Durable
		// notification rows still exist, so dropping is acceptable.
		r.logger.DebugContext(ctx, "transport not initialized, dropping event", "event", event)
		r.count("events.dropped", event)
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	for _, room := range rooms {
		if err := r.transport.Publish(ctx, room, event, payload); err != nil {
			r.logger.WarnContext(ctx, "event publish failed",
				"event", event, "room", room.String(), "error", err)
			r.count("events.failed", event)
			continue
		}
		r.count("events.published", event)
	}
}

func (r *EventRouter) count(name, event string) {
	if r.metrics == nil {
		return
	}
	r.metrics.Count(name, 1, map[string]string{"event": event})
}
