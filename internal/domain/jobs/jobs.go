// Package jobs contains domain types shared by the scheduled background jobs.
package jobs

import (
	"fmt"
	"time"
)

// Name identifies a scheduled job.
type Name string

const (
	NameLowStockScan Name = "low-stock-scan"
	NameTokenCleanup Name = "token-cleanup"
	NameOrderArchive Name = "order-archive"
	NameDailySummary Name = "daily-summary"
)

// String returns the string representation of the job name.
func (n Name) String() string {
	return string(n)
}

// Definition describes one scheduled job. Definitions are derived from
// configuration at process start and are immutable afterwards.
type Definition struct {
	Name     Name
	Schedule string // cron expression, five-field
	Enabled  bool
	Timezone string // IANA zone applied to the cron trigger
}

// RunState tracks the lifecycle of a single job handle between fires.
// A handle always returns to idle before the next fire is admitted.
type RunState int32

const (
	RunStateIdle RunState = iota
	RunStateRunning
)

// String returns the string representation of the run state.
func (s RunState) String() string {
	switch s {
	case RunStateIdle:
		return "idle"
	case RunStateRunning:
		return "running"
	default:
		return fmt.Sprintf("unknown(%d)", int32(s))
	}
}

// ItemError records a per-item failure inside a batch. Item failures are
// collected, never escalated to job failures.
type ItemError struct {
	EntityID string `json:"entity_id"`
	Message  string `json:"message"`
}

// ExecutionResult is produced once per job run. It is logged, never
// persisted, except where a job persists its own summary.
type ExecutionResult struct {
	Job      Name           `json:"job"`
	Success  bool           `json:"success"`
	Counts   map[string]int `json:"counts,omitempty"`
	Errors   []ItemError    `json:"errors,omitempty"`
	Duration time.Duration  `json:"duration"`
}

// NewResult returns an empty successful result for the named job.
func NewResult(name Name) *ExecutionResult {
	return &ExecutionResult{
		Job:     name,
		Success: true,
		Counts:  make(map[string]int),
	}
}

// AddError appends a per-item failure without failing the run.
func (r *ExecutionResult) AddError(entityID, message string) {
	r.Errors = append(r.Errors, ItemError{EntityID: entityID, Message: message})
}

// LogAttrs returns the result flattened into slog key/value pairs.
func (r *ExecutionResult) LogAttrs() []any {
	attrs := []any{
		"job", r.Job.String(),
		"success", r.Success,
		"duration_ms", r.Duration.Milliseconds(),
		"error_count", len(r.Errors),
	}
	for k, v := range r.Counts {
		attrs = append(attrs, k, v)
	}
	return attrs
}
