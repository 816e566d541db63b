package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stockroomhq/warehouse-ops/internal/core"
	"github.com/stockroomhq/warehouse-ops/internal/domain/jobs"
	"github.com/stockroomhq/warehouse-ops/internal/observability/errors"
	"github.com/stockroomhq/warehouse-ops/internal/observability/statsd"
)

// handleDeps carries the shared scheduler dependencies into each handle.
type handleDeps struct {
	maxRunTime time.Duration
	logger     *slog.Logger
	metrics    statsd.Sink
}

// Handle is the live instance of one scheduled job. It enforces the
// single-execution guarantee: a fire that arrives while a run is in flight
// is skipped and counted, never queued.
type Handle struct {
	def     jobs.Definition
	unit    core.JobUnit
	deps    handleDeps
	entryID cron.EntryID

	running atomic.Bool
	skips   atomic.Int64
	stopped atomic.Bool

	mu      sync.Mutex
	lastRun *time.Time
	lastErr string
}

func newHandle(def jobs.Definition, unit core.JobUnit, deps handleDeps) *Handle {
	return &Handle{def: def, unit: unit, deps: deps}
}

// fire runs one execution if the handle is idle. Everything escaping the
// job body, errors and panics alike, is logged and swallowed here; a failed
// run never stops future fires.
func (h *Handle) fire(ctx context.Context) {
	if h.stopped.Load() {
		return
	}
	if !h.running.CompareAndSwap(false, true) {
		h.skips.Add(1)
		h.deps.logger.WarnContext(ctx, "skipping fire, previous run still in flight",
			"job", h.def.Name.String())
		h.count("jobs.overlap_skipped", nil)
		return
	}
	defer h.running.Store(false)

	if h.deps.maxRunTime > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.deps.maxRunTime)
		defer cancel()
	}

	started := time.Now()
	result, err := h.execute(ctx)
	elapsed := time.Since(started)

	h.mu.Lock()
	h.lastRun = &started
	h.lastErr = ""
	if err != nil {
		h.lastErr = err.Error()
	}
	h.mu.Unlock()

	tags := map[string]string{"job": h.def.Name.String()}
	if err != nil {
		tags["error_class"] = errors.Classify(err)
		h.deps.logger.ErrorContext(ctx, "job run failed",
			"job", h.def.Name.String(), "duration_ms", elapsed.Milliseconds(), "error", err)
		h.count("jobs.failed", tags)
		return
	}

	h.deps.logger.InfoContext(ctx, "job run completed", result.LogAttrs()...)
	h.count("jobs.completed", tags)
	if h.deps.metrics != nil {
		h.deps.metrics.Timing("jobs.duration", elapsed, tags)
	}
}

// execute invokes the unit with a panic barrier.
func (h *Handle) execute(ctx context.Context) (result *jobs.ExecutionResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("job panicked: %v\n%s", r, debug.Stack())
		}
	}()
	return h.unit.Execute(ctx)
}

// status returns a snapshot for Scheduler.Status.
func (h *Handle) status() JobStatus {
	state := jobs.RunStateIdle
	if h.running.Load() {
		state = jobs.RunStateRunning
	}

	h.mu.Lock()
	lastRun := h.lastRun
	lastErr := h.lastErr
	h.mu.Unlock()

	return JobStatus{
		Name:     h.def.Name,
		Schedule: h.def.Schedule,
		State:    state,
		LastRun:  lastRun,
		LastErr:  lastErr,
		Skipped:  h.skips.Load(),
	}
}

// markStopped prevents any further fires after scheduler shutdown.
func (h *Handle) markStopped() {
	h.stopped.Store(true)
}

func (h *Handle) count(name string, tags map[string]string) {
	if h.deps.metrics == nil {
		return
	}
	if tags == nil {
		tags = map[string]string{"job": h.def.Name.String()}
	}
	h.deps.metrics.Count(name, 1, tags)
}
