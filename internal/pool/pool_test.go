package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/packsmith/packsmith/internal/errs"
)

func TestRun_ExecutesAllUnits(t *testing.T) {
	var count atomic.Int32
	units := make([]func(context.Context) error, 20)
	for i := range units {
		units[i] = func(context.Context) error {
			count.Add(1)
			return nil
		}
	}

	require.NoError(t, New(4).Run(context.Background(), units))
	assert.Equal(t, int32(20), count.Load())
}

// TestRun_BoundsParallelism verifies that no more than the configured
// number of units ever run at once.
func TestRun_BoundsParallelism(t *testing.T) {
	const workers = 3
	var inFlight, peak atomic.Int32
	var mu sync.Mutex

	units := make([]func(context.Context) error, 12)
	for i := range units {
		units[i] = func(context.Context) error {
			current := inFlight.Add(1)
			mu.Lock()
			if current > peak.Load() {
				peak.Store(current)
			}
			mu.Unlock()
			time.Sleep(10 * time.Millisecond)
			inFlight.Add(-1)
			return nil
		}
	}

	require.NoError(t, New(workers).Run(context.Background(), units))
	assert.LessOrEqual(t, peak.Load(), int32(workers))
}

func TestRun_ReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	units := []func(context.Context) error{
		func(context.Context) error { return nil },
		func(context.Context) error { return boom },
		func(context.Context) error { return nil },
	}

	err := New(2).Run(context.Background(), units)
	assert.ErrorIs(t, err, boom)
}

func TestRun_RecoversPanics(t *testing.T) {
	units := []func(context.Context) error{
		func(context.Context) error { panic("worker exploded") },
	}

	err := New(1).Run(context.Background(), units)

	require.Error(t, err)
	assert.True(t, errs.IsKind(err, errs.KindInternal))
	assert.Contains(t, err.Error(), "worker exploded")
}

func TestRun_EmptyBatch(t *testing.T) {
	require.NoError(t, New(1).Run(context.Background(), nil))
}

func TestNew_DefaultsWorkerCount(t *testing.T) {
	assert.Greater(t, New(0).workers, 0)
	assert.Greater(t, New(-5).workers, 0)
}
