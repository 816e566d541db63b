package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stockroomhq/warehouse-ops/internal/domain/jobs"
)

func TestJobsConfig_SanitizeClampsInvalidValues(t *testing.T) {
	t.Parallel()

	cfg := JobsConfig{
		LowStockCron:     "  ",
		TokenCleanupCron: "",
		Timezone:         " ",
		RetentionDays:    -1,
		BatchSize:        0,
		MaxExecutionTime: -time.Second,
	}
	cfg.Sanitize()

	assert.Equal(t, defaultLowStockCron, cfg.LowStockCron)
	assert.Equal(t, defaultTokenCleanupCron, cfg.TokenCleanupCron)
	assert.Equal(t, "UTC", cfg.Timezone)
	assert.Equal(t, defaultRetentionDays, cfg.RetentionDays)
	assert.Equal(t, defaultBatchSize, cfg.BatchSize)
	assert.Equal(t, defaultMaxExecution, cfg.MaxExecutionTime)
}

func TestJobsConfig_SanitizeKeepsValidValues(t *testing.T) {
	t.Parallel()

	cfg := JobsConfig{
		LowStockCron:     "30 1 * * *",
		TokenCleanupCron: "0 */2 * * *",
		OrderArchiveCron: "15 3 * * *",
		DailySummaryCron: "45 23 * * *",
		Timezone:         "America/Chicago",
		RetentionDays:    90,
		BatchSize:        500,
		MaxExecutionTime: 10 * time.Minute,
	}
	cfg.Sanitize()

	assert.Equal(t, "30 1 * * *", cfg.LowStockCron)
	assert.Equal(t, "America/Chicago", cfg.Timezone)
	assert.Equal(t, 90, cfg.RetentionDays)
	assert.Equal(t, 500, cfg.BatchSize)
	assert.Equal(t, 10*time.Minute, cfg.MaxExecutionTime)
}

func TestJobsConfig_Definitions(t *testing.T) {
	t.Parallel()

	cfg := JobsConfig{
		LowStockEnabled:     true,
		TokenCleanupEnabled: false,
		OrderArchiveEnabled: true,
		DailySummaryEnabled: true,
		LowStockCron:        "0 0 * * *",
		TokenCleanupCron:    "0 */6 * * *",
		OrderArchiveCron:    "0 2 * * *",
		DailySummaryCron:    "59 23 * * *",
		Timezone:            "UTC",
	}

	defs := cfg.Definitions()
	require.Len(t, defs, 4)

	byName := map[jobs.Name]jobs.Definition{}
	for _, def := range defs {
		byName[def.Name] = def
	}

	assert.True(t, byName[jobs.NameLowStockScan].Enabled)
	assert.False(t, byName[jobs.NameTokenCleanup].Enabled)
	assert.Equal(t, "0 2 * * *", byName[jobs.NameOrderArchive].Schedule)
	assert.Equal(t, "UTC", byName[jobs.NameDailySummary].Timezone)
}

func TestAuthConfig_VerifierConfigured(t *testing.T) {
	t.Parallel()

	cfg := AuthConfig{}
	cfg.Sanitize()
	assert.False(t, cfg.VerifierConfigured())

	cfg = AuthConfig{OIDCIssuerURL: " https://issuer.example.com ", OIDCClientID: "warehouse-ops"}
	cfg.Sanitize()
	assert.True(t, cfg.VerifierConfigured())
	assert.Equal(t, "https://issuer.example.com", cfg.OIDCIssuerURL)
}
