package testutil

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/devkichauhan/reliaquest/internal/employee/failure"
)

// ConcurrentResult tracks outcomes of concurrent test operations.
type ConcurrentResult struct {
	Successes int32
	Errors    int32
	ByKind    map[failure.Kind]int32 // failures carrying a failure.Kind
}

// Total returns the total number of operations executed.
func (r *ConcurrentResult) Total() int32 {
	return r.Successes + r.Errors
}

// RunConcurrent executes fn in parallel goroutines and collects results.
// Errors are also counted per failure kind when they carry one.
func RunConcurrent(goroutines int, fn func(idx int) error) *ConcurrentResult {
	successes, errs := RunConcurrentCollect(goroutines, fn)

	result := &ConcurrentResult{
		Successes: successes,
		Errors:    int32(len(errs)),
		ByKind:    make(map[failure.Kind]int32),
	}
	for _, err := range errs {
		if kind := failure.KindOf(err); kind != "" {
			result.ByKind[kind]++
		}
	}
	return result
}

// RunConcurrentCtx is RunConcurrent with a shared context.
func RunConcurrentCtx(ctx context.Context, goroutines int, fn func(ctx context.Context, idx int) error) *ConcurrentResult {
	return RunConcurrent(goroutines, func(idx int) error {
		return fn(ctx, idx)
	})
}

// RunConcurrentCollect executes fn in parallel and collects all errors.
func RunConcurrentCollect(goroutines int, fn func(idx int) error) (successes int32, errs []error) {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var successCount atomic.Int32
	collected := make([]error, 0)

	for i := range goroutines {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			if err := fn(idx); err != nil {
				mu.Lock()
				collected = append(collected, err)
				mu.Unlock()
				return
			}
			successCount.Add(1)
		}(i)
	}

	wg.Wait()
	return successCount.Load(), collected
}
