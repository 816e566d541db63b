package service

import (
	"context"
	"sync"
	"time"

	"github.com/stockroomhq/warehouse-ops/internal/core"
	"github.com/stockroomhq/warehouse-ops/internal/domain/model"
	"github.com/stockroomhq/warehouse-ops/internal/domain/realtime"
)

// Hand-rolled fakes with function fields. Each fake panics on an
// unconfigured call so a test cannot silently depend on behavior it never
// declared.

type fakeNotificationRepo struct {
	CreateFn      func(ctx context.Context, req *model.CreateNotificationRequest) (*model.Notification, error)
	GetByIDFn     func(ctx context.Context, id string) (*model.Notification, error)
	ListForUserFn func(ctx context.Context, userID string, opts model.NotificationListOptions) (*model.NotificationPage, error)
	MarkReadFn    func(ctx context.Context, id, userID string) (*model.Notification, bool, error)
	MarkAllReadFn func(ctx context.Context, userID string) (int, error)
	SoftDeleteFn  func(ctx context.Context, id, userID string) error
}

var _ core.NotificationRepository = (*fakeNotificationRepo)(nil)

func (f *fakeNotificationRepo) Create(ctx context.Context, req *model.CreateNotificationRequest) (*model.Notification, error) {
	return f.CreateFn(ctx, req)
}

func (f *fakeNotificationRepo) GetByID(ctx context.Context, id string) (*model.Notification, error) {
	return f.GetByIDFn(ctx, id)
}

func (f *fakeNotificationRepo) ListForUser(ctx context.Context, userID string, opts model.NotificationListOptions) (*model.NotificationPage, error) {
	return f.ListForUserFn(ctx, userID, opts)
}

func (f *fakeNotificationRepo) MarkRead(ctx context.Context, id, userID string) (*model.Notification, bool, error) {
	return f.MarkReadFn(ctx, id, userID)
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, userID string) (int, error) {
	return f.MarkAllReadFn(ctx, userID)
}

func (f *fakeNotificationRepo) SoftDelete(ctx context.Context, id, userID string) error {
	return f.SoftDeleteFn(ctx, id, userID)
}

type fakeUserRepo struct {
	GetByIDFn              func(ctx context.Context, id string) (*model.User, error)
	FindActiveByRolesFn    func(ctx context.Context, roles []model.UserRole) ([]*model.User, error)
	FindWithRefreshTokenFn func(ctx context.Context, limit, offset int) ([]*model.User, error)
	ClearRefreshTokenFn    func(ctx context.Context, userID string) error
	CountActiveSinceFn     func(ctx context.Context, since time.Time) (int, error)
}

var _ core.UserRepository = (*fakeUserRepo)(nil)

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return f.GetByIDFn(ctx, id)
}

func (f *fakeUserRepo) FindActiveByRoles(ctx context.Context, roles []model.UserRole) ([]*model.User, error) {
	return f.FindActiveByRolesFn(ctx, roles)
}

func (f *fakeUserRepo) FindWithRefreshToken(ctx context.Context, limit, offset int) ([]*model.User, error) {
	return f.FindWithRefreshTokenFn(ctx, limit, offset)
}

func (f *fakeUserRepo) ClearRefreshToken(ctx context.Context, userID string) error {
	return f.ClearRefreshTokenFn(ctx, userID)
}

func (f *fakeUserRepo) CountActiveSince(ctx context.Context, since time.Time) (int, error) {
	return f.CountActiveSinceFn(ctx, since)
}

type fakeProductRepo struct {
	FindLowStockFn  func(ctx context.Context) ([]*model.Product, error)
	CountLowStockFn func(ctx context.Context) (int, error)
}

var _ core.ProductRepository = (*fakeProductRepo)(nil)

func (f *fakeProductRepo) FindLowStock(ctx context.Context) ([]*model.Product, error) {
	return f.FindLowStockFn(ctx)
}

func (f *fakeProductRepo) CountLowStock(ctx context.Context) (int, error) {
	return f.CountLowStockFn(ctx)
}

type fakeOrderRepo struct {
	FindDeliveredBeforeFn func(ctx context.Context, cutoff time.Time, limit int) ([]*model.Order, error)
	DeleteFn              func(ctx context.Context, id string) error
	DayStatsFn            func(ctx context.Context, dayStart, dayEnd time.Time) (*model.OrderDayStats, error)
}

var _ core.OrderRepository = (*fakeOrderRepo)(nil)

func (f *fakeOrderRepo) FindDeliveredBefore(ctx context.Context, cutoff time.Time, limit int) ([]*model.Order, error) {
	return f.FindDeliveredBeforeFn(ctx, cutoff, limit)
}

func (f *fakeOrderRepo) Delete(ctx context.Context, id string) error {
	return f.DeleteFn(ctx, id)
}

func (f *fakeOrderRepo) DayStats(ctx context.Context, dayStart, dayEnd time.Time) (*model.OrderDayStats, error) {
	return f.DayStatsFn(ctx, dayStart, dayEnd)
}

type fakeArchiveRepo struct {
	InsertFn               func(ctx context.Context, snapshot *model.ArchivedOrder) (bool, error)
	GetByOriginalOrderIDFn func(ctx context.Context, originalOrderID string) (*model.ArchivedOrder, error)
}

var _ core.ArchiveRepository = (*fakeArchiveRepo)(nil)

func (f *fakeArchiveRepo) Insert(ctx context.Context, snapshot *model.ArchivedOrder) (bool, error) {
	return f.InsertFn(ctx, snapshot)
}

func (f *fakeArchiveRepo) GetByOriginalOrderID(ctx context.Context, originalOrderID string) (*model.ArchivedOrder, error) {
	return f.GetByOriginalOrderIDFn(ctx, originalOrderID)
}

type fakeSystemLogRepo struct {
	UpsertFn    func(ctx context.Context, req *model.UpsertSystemLogRequest) (*model.DailySystemLog, bool, error)
	GetByDateFn func(ctx context.Context, date time.Time) (*model.DailySystemLog, error)
}

var _ core.SystemLogRepository = (*fakeSystemLogRepo)(nil)

func (f *fakeSystemLogRepo) Upsert(ctx context.Context, req *model.UpsertSystemLogRequest) (*model.DailySystemLog, bool, error) {
	return f.UpsertFn(ctx, req)
}

func (f *fakeSystemLogRepo) GetByDate(ctx context.Context, date time.Time) (*model.DailySystemLog, error) {
	return f.GetByDateFn(ctx, date)
}

type fakeActivityRepo struct {
	ReceivingDayStatsFn func(ctx context.Context, dayStart, dayEnd time.Time) (*model.ReceivingDayStats, error)
	TaskDayStatsFn      func(ctx context.Context, dayStart, dayEnd time.Time) (*model.TaskDayStats, error)
}

var _ core.ActivityRepository = (*fakeActivityRepo)(nil)

func (f *fakeActivityRepo) ReceivingDayStats(ctx context.Context, dayStart, dayEnd time.Time) (*model.ReceivingDayStats, error) {
	return f.ReceivingDayStatsFn(ctx, dayStart, dayEnd)
}

func (f *fakeActivityRepo) TaskDayStats(ctx context.Context, dayStart, dayEnd time.Time) (*model.TaskDayStats, error) {
	return f.TaskDayStatsFn(ctx, dayStart, dayEnd)
}

type fakeVerifier struct {
	VerifyFn func(ctx context.Context, rawToken string) error
}

var _ core.TokenVerifier = (*fakeVerifier)(nil)

func (f *fakeVerifier) Verify(ctx context.Context, rawToken string) error {
	return f.VerifyFn(ctx, rawToken)
}

// publishedEvent records a single transport publish.
type publishedEvent struct {
	Room    realtime.Room
	Event   string
	Payload any
}

// fakeTransport records every publish and optionally fails per room.
type fakeTransport struct {
	mu     sync.Mutex
	events []publishedEvent
	FailFn func(room realtime.Room, event string) error
}

var _ core.Transport = (*fakeTransport)(nil)

func (f *fakeTransport) Publish(_ context.Context, room realtime.Room, event string, payload any) error {
	if f.FailFn != nil {
		if err := f.FailFn(room, event); err != nil {
			return err
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, publishedEvent{Room: room, Event: event, Payload: payload})
	return nil
}

func (f *fakeTransport) published() []publishedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]publishedEvent, len(f.events))
	copy(out, f.events)
	return out
}

// routedEvent records one call against the recordingPublisher.
type routedEvent struct {
	Audience string // "user", "role", "admins", "notification", "broadcast"
	Target   string // user id or role, empty for admins/broadcast
	Event    string
	Payload  any
}

// recordingPublisher captures router-level calls for job tests.
type recordingPublisher struct {
	mu     sync.Mutex
	events []routedEvent
}

var _ core.EventPublisher = (*recordingPublisher)(nil)

func (p *recordingPublisher) record(e routedEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
}

func (p *recordingPublisher) ToUser(_ context.Context, userID, event string, payload any) {
	p.record(routedEvent{Audience: "user", Target: userID, Event: event, Payload: payload})
}

func (p *recordingPublisher) ToRole(_ context.Context, role model.UserRole, event string, payload any) {
	p.record(routedEvent{Audience: "role", Target: role.String(), Event: event, Payload: payload})
}

func (p *recordingPublisher) ToAdmins(_ context.Context, event string, payload any) {
	p.record(routedEvent{Audience: "admins", Event: event, Payload: payload})
}

func (p *recordingPublisher) ToNotificationChannel(_ context.Context, userID, event string, payload any) {
	p.record(routedEvent{Audience: "notification", Target: userID, Event: event, Payload: payload})
}

func (p *recordingPublisher) Broadcast(_ context.Context, event string, payload any) {
	p.record(routedEvent{Audience: "broadcast", Event: event, Payload: payload})
}

func (p *recordingPublisher) recorded() []routedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]routedEvent, len(p.events))
	copy(out, p.events)
	return out
}

func (p *recordingPublisher) byEvent(event string) []routedEvent {
	var out []routedEvent
	for _, e := range p.recorded() {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

func strPtr(s string) *string {
	return &s
}
