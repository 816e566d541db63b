package jobs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResult(t *testing.T) {
	t.Parallel()

	result := NewResult(NameLowStockScan)
	assert.Equal(t, NameLowStockScan, result.Job)
	assert.True(t, result.Success)
	assert.NotNil(t, result.Counts)
	assert.Empty(t, result.Errors)
}

func TestExecutionResult_AddError(t *testing.T) {
	t.Parallel()

	result := NewResult(NameTokenCleanup)
	result.AddError("u-1", "clear failed")
	result.AddError("u-2", "clear failed")

	require.Len(t, result.Errors, 2)
	assert.Equal(t, "u-1", result.Errors[0].EntityID)
	// Item errors never flip the run outcome.
	assert.True(t, result.Success)
}

func TestExecutionResult_LogAttrs(t *testing.T) {
	t.Parallel()

	result := NewResult(NameOrderArchive)
	result.Counts["ordersArchived"] = 7
	result.Duration = 1500 * time.Millisecond
	result.AddError("o-1", "snapshot failed")

	attrs := result.LogAttrs()
	assert.Contains(t, attrs, "order-archive")
	assert.Contains(t, attrs, int64(1500))
	assert.Contains(t, attrs, "ordersArchived")
	assert.Contains(t, attrs, 7)
	assert.Contains(t, attrs, 1) // error count
}

func TestRunState_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "idle", RunStateIdle.String())
	assert.Equal(t, "running", RunStateRunning.String())
	assert.Contains(t, RunState(99).String(), "unknown")
}
