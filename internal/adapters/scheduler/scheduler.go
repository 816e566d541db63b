// Package scheduler runs the calendar-triggered background jobs. It owns
// the cron engine, the per-job handle registry, and the failure boundary
// that keeps a broken job run from reaching the host process.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stockroomhq/warehouse-ops/internal/core"
	"github.com/stockroomhq/warehouse-ops/internal/domain/jobs"
	"github.com/stockroomhq/warehouse-ops/internal/observability/statsd"
)

// ErrAlreadyStarted is returned by Start when the scheduler is running.
// The call has no side effects in that case.
var ErrAlreadyStarted = errors.New("scheduler already started")

// ErrUnknownJob is returned when a definition names a job with no
// registered unit.
var ErrUnknownJob = errors.New("no job unit registered for definition")

// Options groups dependencies for the Scheduler.
type Options struct {
	Definitions []jobs.Definition // Required: one per configured job
	Units       []core.JobUnit    // Required: executable units, matched by name
	MaxRunTime  time.Duration     // Optional: per-run deadline; <=0 disables
	Logger      *slog.Logger      // Optional
	Metrics     statsd.Sink       // Optional
}

// Scheduler binds job definitions to cron triggers. One handle exists per
// job name; a fire that arrives while the same job is still running is
// skipped, so a job never overlaps itself. Different jobs run concurrently
// when their triggers coincide.
type Scheduler struct {
	definitions []jobs.Definition
	units       map[jobs.Name]core.JobUnit
	maxRunTime  time.Duration
	logger      *slog.Logger
	metrics     statsd.Sink

	mu      sync.Mutex
	cron    *cron.Cron
	handles map[jobs.Name]*Handle
	started bool
}

// New constructs a Scheduler from definitions and units.
func New(opts Options) (*Scheduler, error) {
	if len(opts.Definitions) == 0 {
		return nil, errors.New("at least one job definition is required")
	}
	units := make(map[jobs.Name]core.JobUnit, len(opts.Units))
	for _, unit := range opts.Units {
		units[unit.Name()] = unit
	}
	for _, def := range opts.Definitions {
		if _, ok := units[def.Name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownJob, def.Name)
		}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Scheduler{
		definitions: opts.Definitions,
		units:       units,
		maxRunTime:  opts.MaxRunTime,
		logger:      logger.With("component", "scheduler"),
		metrics:     opts.Metrics,
		handles:     make(map[jobs.Name]*Handle),
	}, nil
}

// Start registers every enabled definition with the cron engine and begins
// firing. Starting an already-started scheduler returns ErrAlreadyStarted
// and changes nothing.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return ErrAlreadyStarted
	}

	// All definitions share one timezone; fall back to UTC on a bad zone
	// rather than refusing to start.
	loc := time.UTC
	if tz := s.definitions[0].Timezone; tz != "" {
		parsed, err := time.LoadLocation(tz)
		if err != nil {
			s.logger.WarnContext(ctx, "invalid timezone, falling back to UTC",
				"timezone", tz, "error", err)
		} else {
			loc = parsed
		}
	}

	engine := cron.New(cron.WithLocation(loc))

	for _, def := range s.definitions {
		if !def.Enabled {
			s.logger.InfoContext(ctx, "job disabled by configuration", "job", def.Name.String())
			continue
		}

		handle, err := s.registerLocked(ctx, engine, def)
		if err != nil {
			return fmt.Errorf("register job %s: %w", def.Name, err)
		}
		s.handles[def.Name] = handle
	}

	engine.Start()
	s.cron = engine
	s.started = true

	s.logger.InfoContext(ctx, "scheduler started",
		"timezone", loc.String(), "jobs", len(s.handles))
	return nil
}

// registerLocked binds one definition to the cron engine. Duplicate
// registration of a live job name is a no-op returning the existing handle.
func (s *Scheduler) registerLocked(
	ctx context.Context,
	engine *cron.Cron,
	def jobs.Definition,
) (*Handle, error) {
	if existing, ok := s.handles[def.Name]; ok {
		return existing, nil
	}

	unit := s.units[def.Name]
	handle := newHandle(def, unit, handleDeps{
		maxRunTime: s.maxRunTime,
		logger:     s.logger,
		metrics:    s.metrics,
	})

	entryID, err := engine.AddFunc(def.Schedule, func() {
		// Detached from Start's context: a fire must outlive the caller.
		// Shutdown is handled through markStopped instead.
		handle.fire(context.WithoutCancel(ctx))
	})
	if err != nil {
		return nil, err
	}
	handle.entryID = entryID
	return handle, nil
}

// Stop halts the triggers, waits for in-flight runs to finish, and drops
// all handles. Stopping a stopped scheduler is a no-op.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	engine := s.cron
	handles := s.handles
	s.cron = nil
	s.handles = make(map[jobs.Name]*Handle)
	s.started = false
	s.mu.Unlock()

	stopCtx := engine.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "shutdown deadline reached with jobs still running")
	}
	for _, handle := range handles {
		handle.markStopped()
	}
	s.logger.InfoContext(ctx, "scheduler stopped")
}

// JobStatus describes one registered job for Status reporting.
type JobStatus struct {
	Name     jobs.Name      `json:"name"`
	Schedule string         `json:"schedule"`
	State    jobs.RunState  `json:"state"`
	NextRun  *time.Time     `json:"next_run,omitempty"`
	LastRun  *time.Time     `json:"last_run,omitempty"`
	LastErr  string         `json:"last_error,omitempty"`
	Skipped  int64          `json:"overlap_skips"`
}

// Status reports which jobs are active and when they fire next.
func (s *Scheduler) Status() []JobStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	statuses := make([]JobStatus, 0, len(s.handles))
	for _, def := range s.definitions {
		handle, ok := s.handles[def.Name]
		if !ok {
			continue
		}
		status := handle.status()
		if s.cron != nil {
			entry := s.cron.Entry(handle.entryID)
			if !entry.Next.IsZero() {
				next := entry.Next
				status.NextRun = &next
			}
		}
		statuses = append(statuses, status)
	}
	return statuses
}

// Running reports whether the scheduler has been started.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}
