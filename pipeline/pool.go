// Package pipeline fans the study steps out over bounded worker pools.
//
// Steps 1 to 4 shell out to external tools through a Commander; the
// resolution extraction runs in-process. Each step finds its inputs from
// the directory layout left by the previous one.
package pipeline

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultWorkers bounds every pool when no worker count is configured.
const DefaultWorkers = 12

// ForEach runs fn on every item with at most workers calls in flight. A
// failure does not stop the other items: ForEach waits for all of them and
// returns the first error. Items not yet started when ctx is done fail with
// ctx.Err().
func ForEach[T any](ctx context.Context, workers int, items []T, fn func(context.Context, T) error) error {
	if workers < 1 {
		workers = DefaultWorkers
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for _, item := range items {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return fn(ctx, item)
		})
	}
	return g.Wait()
}
