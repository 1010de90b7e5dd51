package mdblog

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"github.com/alnah/go-mdblog/internal/config"
)

// Worker sizing constants.
const (
	// MinWorkers ensures at least one renderer goroutine.
	MinWorkers = 1

	// MaxWorkers caps explicit worker counts.
	MaxWorkers = config.MaxWorkers

	// maxAutoWorkers caps the GOMAXPROCS-based default; past this point
	// file I/O dominates.
	maxAutoWorkers = 16
)

// ResolveWorkers determines the number of render workers.
// Priority: explicit workers > GOMAXPROCS-based calculation.
func ResolveWorkers(workers int) int {
	if workers > 0 {
		return min(workers, MaxWorkers)
	}

	// GOMAXPROCS is adjusted by automaxprocs for containers
	return max(MinWorkers, min(runtime.GOMAXPROCS(0), maxAutoWorkers))
}

// validateWorkers checks an explicit worker count; 0 means auto.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkers, n)
	}
	if n > MaxWorkers {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkers, n, MaxWorkers)
	}
	return nil
}

// runJobs calls fn for every index in [0, n) on at most workers goroutines.
// The first error cancels the context passed to the remaining calls;
// jobs not yet started are skipped. Returns the first error.
func runJobs(ctx context.Context, workers, n int, fn func(ctx context.Context, idx int) error) error {
	if n == 0 {
		return ctx.Err()
	}
	workers = max(MinWorkers, min(workers, n))

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		once     sync.Once
		firstErr error
	)
	jobs := make(chan int, n)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				if ctx.Err() != nil {
					continue
				}
				if err := fn(ctx, idx); err != nil {
					once.Do(func() {
						firstErr = err
						cancel()
					})
				}
			}
		}()
	}

	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}
