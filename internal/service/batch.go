package service

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// defaultBatchConcurrency bounds the fan-out within one batch.
const defaultBatchConcurrency = 10

// forEachInBatch runs fn for every item with bounded concurrency and waits
// for the whole batch before returning. fn must report per-item failures
// through its own result collection; an error returned here aborts the
// remaining items, so fn should reserve errors for context cancellation.
func forEachInBatch[T any](ctx context.Context, items []T, fn func(ctx context.Context, item T) error) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(defaultBatchConcurrency)
	for _, item := range items {
		item := item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, item)
		})
	}
	return g.Wait()
}
