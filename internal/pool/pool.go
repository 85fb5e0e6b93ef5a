// Package pool provides the bounded batch worker pool used for
// per-repository metadata extraction and per-variant validation: submit a
// batch of independent units, wait for all of them, surface the first
// representative failure.
package pool

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/packsmith/packsmith/internal/errs"
)

// Pool runs batches of independent units with bounded parallelism.
type Pool struct {
	workers int
}

// New creates a pool. A non-positive worker count falls back to the number
// of available CPUs.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Pool{workers: workers}
}

// Run executes every unit, at most workers at a time, and waits for the
// whole batch to finish. The first error is returned after the batch
// completes. A panic inside a unit is recovered and reported as an
// internal "unexpected" error, so callers see one error type regardless
// of origin.
func (p *Pool) Run(ctx context.Context, units []func(context.Context) error) error {
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(p.workers)
	for _, unit := range units {
		unit := unit
		group.Go(func() (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = errs.New(errs.KindInternal, "unexpected error: %v", r)
				}
			}()
			return unit(ctx)
		})
	}
	return group.Wait()
}
