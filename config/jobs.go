package config

import (
	"strings"
	"time"

	"github.com/stockroomhq/warehouse-ops/internal/domain/jobs"
)

// Default cron expressions per job. Five-field, interpreted in Timezone.
const (
	defaultLowStockCron     = "0 0 * * *"   // daily at 00:00
	defaultTokenCleanupCron = "0 */6 * * *" // every 6 hours
	defaultOrderArchiveCron = "0 2 * * *"   // daily at 02:00
	defaultDailySummaryCron = "59 23 * * *" // daily at 23:59
)

const (
	defaultRetentionDays = 30
	defaultBatchSize     = 100
	defaultMaxExecution  = 5 * time.Minute
)

// JobsConfig groups the scheduled-job toggles, calendar expressions, and
// execution budgets.
type JobsConfig struct {
	// Per-job enable toggles. All jobs are enabled by default.
	LowStockEnabled     bool `env:"JOB_LOW_STOCK_ENABLED"     envDefault:"true"`
	TokenCleanupEnabled bool `env:"JOB_TOKEN_CLEANUP_ENABLED" envDefault:"true"`
	OrderArchiveEnabled bool `env:"JOB_ORDER_ARCHIVE_ENABLED" envDefault:"true"`
	DailySummaryEnabled bool `env:"JOB_DAILY_SUMMARY_ENABLED" envDefault:"true"`

	// Calendar expressions per job.
	LowStockCron     string `env:"JOB_LOW_STOCK_CRON"     envDefault:"0 0 * * *"`
	TokenCleanupCron string `env:"JOB_TOKEN_CLEANUP_CRON" envDefault:"0 */6 * * *"`
	OrderArchiveCron string `env:"JOB_ORDER_ARCHIVE_CRON" envDefault:"0 2 * * *"`
	DailySummaryCron string `env:"JOB_DAILY_SUMMARY_CRON" envDefault:"59 23 * * *"`

	// Timezone is the IANA zone applied to all calendar triggers.
	Timezone string `env:"JOB_TIMEZONE" envDefault:"UTC"`

	// RetentionDays is the order-archive cutoff age.
	RetentionDays int `env:"JOB_RETENTION_DAYS" envDefault:"30"`

	// BatchSize bounds the per-batch fan-out of the batch-processing jobs.
	BatchSize int `env:"JOB_BATCH_SIZE" envDefault:"100"`

	// MaxExecutionTime is the per-run deadline. A run that exceeds it is
	// cancelled and treated as a job-level failure.
	MaxExecutionTime time.Duration `env:"JOB_MAX_EXECUTION_TIME" envDefault:"300s"`
}

// Sanitize clamps invalid values back to their defaults.
func (c *JobsConfig) Sanitize() {
	if strings.TrimSpace(c.LowStockCron) == "" {
		c.LowStockCron = defaultLowStockCron
	}
	if strings.TrimSpace(c.TokenCleanupCron) == "" {
		c.TokenCleanupCron = defaultTokenCleanupCron
	}
	if strings.TrimSpace(c.OrderArchiveCron) == "" {
		c.OrderArchiveCron = defaultOrderArchiveCron
	}
	if strings.TrimSpace(c.DailySummaryCron) == "" {
		c.DailySummaryCron = defaultDailySummaryCron
	}
	if strings.TrimSpace(c.Timezone) == "" {
		c.Timezone = "UTC"
	}
	if c.RetentionDays <= 0 {
		c.RetentionDays = defaultRetentionDays
	}
	if c.BatchSize <= 0 {
		c.BatchSize = defaultBatchSize
	}
	if c.MaxExecutionTime <= 0 {
		c.MaxExecutionTime = defaultMaxExecution
	}
}

// Definitions expands the config into the immutable per-job definitions the
// scheduler registers at start.
func (c *JobsConfig) Definitions() []jobs.Definition {
	return []jobs.Definition{
		{Name: jobs.NameLowStockScan, Schedule: c.LowStockCron, Enabled: c.LowStockEnabled, Timezone: c.Timezone},
		{Name: jobs.NameTokenCleanup, Schedule: c.TokenCleanupCron, Enabled: c.TokenCleanupEnabled, Timezone: c.Timezone},
		{Name: jobs.NameOrderArchive, Schedule: c.OrderArchiveCron, Enabled: c.OrderArchiveEnabled, Timezone: c.Timezone},
		{Name: jobs.NameDailySummary, Schedule: c.DailySummaryCron, Enabled: c.DailySummaryEnabled, Timezone: c.Timezone},
	}
}
