package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/stockroomhq/warehouse-ops/internal/core"
	"github.com/stockroomhq/warehouse-ops/internal/data"
	"github.com/stockroomhq/warehouse-ops/internal/domain/auth"
	"github.com/stockroomhq/warehouse-ops/internal/domain/jobs"
	"github.com/stockroomhq/warehouse-ops/internal/domain/model"
)

// TokenCleanupJobOptions groups dependencies for the token cleanup job.
type TokenCleanupJobOptions struct {
	Users     core.UserRepository // Required
	Verifier  core.TokenVerifier  // Required
	BatchSize int                 // Optional: defaults to 100
	Logger    *slog.Logger        // Optional
	Time      data.TimeProvider   // Optional
}

// TokenCleanupJob walks all users holding a stored refresh credential in
// fixed-size batches and clears every credential that no longer verifies.
// A credential that still verifies is left untouched, so re-running the job
// with no new data changes nothing.
type TokenCleanupJob struct {
	users     core.UserRepository
	verifier  core.TokenVerifier
	batchSize int
	logger    *slog.Logger
	time      data.TimeProvider
}

var _ core.JobUnit = (*TokenCleanupJob)(nil)

const defaultCleanupBatchSize = 100

// NewTokenCleanupJob constructs the token cleanup job.
func NewTokenCleanupJob(opts TokenCleanupJobOptions) (*TokenCleanupJob, error) {
	if opts.Users == nil {
		return nil, errors.New("UserRepository is required")
	}
	if opts.Verifier == nil {
		return nil, errors.New("TokenVerifier is required")
	}
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = defaultCleanupBatchSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tp := opts.Time
	if tp == nil {
		tp = &data.RealTimeProvider{}
	}

	return &TokenCleanupJob{
		users:     opts.Users,
		verifier:  opts.Verifier,
		batchSize: batchSize,
		logger:    logger.With("component", "token_cleanup_job"),
		time:      tp,
	}, nil
}

// Name returns the job name.
func (j *TokenCleanupJob) Name() jobs.Name {
	return jobs.NameTokenCleanup
}

// batchOutcome aggregates what one batch did to the stored credentials.
type batchOutcome struct {
	mu      sync.Mutex
	checked int
	cleared int
	errors  []jobs.ItemError
}

// Execute runs one cleanup pass. Batches are processed strictly in
// sequence; items within a batch fan out with bounded concurrency. Per-user
// failures are collected, never fatal.
func (j *TokenCleanupJob) Execute(ctx context.Context) (*jobs.ExecutionResult, error) {
	started := j.time.Now()
	result := jobs.NewResult(j.Name())

	checked, removed := 0, 0
	offset := 0
	for {
		users, err := j.users.FindWithRefreshToken(ctx, j.batchSize, offset)
		if err != nil {
			return nil, fmt.Errorf("load users with refresh token: %w", err)
		}
		if len(users) == 0 {
			break
		}

		outcome := &batchOutcome{}
		batchErr := forEachInBatch(ctx, users, func(ctx context.Context, user *model.User) error {
			j.processUser(ctx, user, outcome)
			return nil
		})
		if batchErr != nil {
			// Only context cancellation escapes the per-item handler.
			return nil, batchErr
		}

		checked += outcome.checked
		removed += outcome.cleared
		result.Errors = append(result.Errors, outcome.errors...)

		// Cleared credentials fall out of the selection, so the window
		// only advances past the users that kept theirs.
		offset += len(users) - outcome.cleared
		if len(users) < j.batchSize {
			break
		}
	}

	result.Counts["tokensChecked"] = checked
	result.Counts["tokensRemoved"] = removed
	result.Duration = j.time.Now().Sub(started)
	return result, nil
}

func (j *TokenCleanupJob) processUser(ctx context.Context, user *model.User, outcome *batchOutcome) {
	if user.RefreshToken == nil || *user.RefreshToken == "" {
		return
	}

	verifyErr := j.verifier.Verify(ctx, *user.RefreshToken)

	outcome.mu.Lock()
	defer outcome.mu.Unlock()
	outcome.checked++

	if verifyErr == nil {
		return
	}

	var vErr *auth.VerificationError
	kind := "unknown"
	if errors.As(verifyErr, &vErr) {
		kind = vErr.Kind.String()
	}

	if clearErr := j.users.ClearRefreshToken(ctx, user.ID); clearErr != nil {
		j.logger.WarnContext(ctx, "failed to clear refresh token",
			"user_id", user.ID, "kind", kind, "error", clearErr)
		outcome.errors = append(outcome.errors, jobs.ItemError{EntityID: user.ID, Message: clearErr.Error()})
		return
	}

	j.logger.InfoContext(ctx, "cleared invalid refresh token", "user_id", user.ID, "kind", kind)
	outcome.cleared++
}
