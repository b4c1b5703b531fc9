package worker

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Pool runs chunks of work on a bounded number of goroutines.
type Pool struct {
	workers int
}

// NewPool creates a pool. workers <= 0 uses runtime.NumCPU.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

func (p *Pool) Workers() int {
	return p.workers
}

// Run calls fn once per range and waits. The first error cancels the rest.
func (p *Pool) Run(ctx context.Context, ranges []Range, fn func(context.Context, Range) error) error {
	if len(ranges) == 0 {
		return ctx.Err()
	}
	// A single chunk or a single worker runs inline.
	if len(ranges) == 1 || p.workers == 1 {
		for _, r := range ranges {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := fn(ctx, r); err != nil {
				return err
			}
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.workers)
	for _, r := range ranges {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return fn(gctx, r)
		})
	}
	return g.Wait()
}
