package migrate_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stockroomhq/warehouse-ops/internal/migrate"
	"github.com/stockroomhq/warehouse-ops/internal/testutil"
)

func TestRun_AppliesOnceAndIsIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.TeardownTestDB(t, db)
	ctx := context.Background()

	// SetupTestDB already ran the migrations; this pass must change nothing.
	require.NoError(t, migrate.Run(ctx, db))

	var applied int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	assert.Equal(t, 3, applied)

	require.NoError(t, migrate.Run(ctx, db))

	var after int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM schema_migrations`).Scan(&after))
	assert.Equal(t, applied, after)
}
