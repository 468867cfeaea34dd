package llm

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// DefaultMaxConcurrent bounds in-flight completion calls when no explicit
// limit is configured.
const DefaultMaxConcurrent = 5

// WorkerPoolConfig configures the completion worker pool.
type WorkerPoolConfig struct {
	MaxConcurrent int // Maximum concurrent completion calls (default: 5)
}

// DefaultWorkerPoolConfig returns sensible defaults.
func DefaultWorkerPoolConfig() WorkerPoolConfig {
	return WorkerPoolConfig{
		MaxConcurrent: DefaultMaxConcurrent,
	}
}

// WorkerPool executes completion work with bounded parallelism. A fixed set
// of worker goroutines drains a shared queue, so the number of goroutines
// never exceeds the configured limit regardless of batch size.
type WorkerPool struct {
	config WorkerPoolConfig
	logger *zap.Logger
}

// NewWorkerPool creates a new completion worker pool.
func NewWorkerPool(config WorkerPoolConfig, logger *zap.Logger) *WorkerPool {
	if config.MaxConcurrent < 1 {
		config.MaxConcurrent = DefaultMaxConcurrent
	}
	return &WorkerPool{
		config: config,
		logger: logger.Named("worker-pool"),
	}
}

// MaxConcurrent returns the pool's concurrency bound.
func (p *WorkerPool) MaxConcurrent() int {
	return p.config.MaxConcurrent
}

// WorkItem represents a unit of work to be processed.
type WorkItem[T any] struct {
	ID      string                               // For logging/tracking
	Execute func(ctx context.Context) (T, error) // The work to be executed
}

// WorkResult represents the result of a work item.
type WorkResult[T any] struct {
	ID     string
	Result T
	Err    error
}

// Process executes all work items and returns one result per item, in
// completion order (not submission order). Items are dispatched in slice
// order. Once ctx is cancelled, workers stop executing and report the
// context error for every remaining item instead of starting new calls.
func Process[T any](
	ctx context.Context,
	pool *WorkerPool,
	items []WorkItem[T],
	onProgress func(completed, total int),
) []WorkResult[T] {
	if len(items) == 0 {
		return nil
	}

	workers := pool.config.MaxConcurrent
	if workers > len(items) {
		workers = len(items)
	}

	workChan := make(chan WorkItem[T])
	resultsChan := make(chan WorkResult[T], len(items))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range workChan {
				// Cancellation check before dispatching each unit of work.
				if err := ctx.Err(); err != nil {
					var zero T
					resultsChan <- WorkResult[T]{ID: item.ID, Result: zero, Err: err}
					continue
				}

				result, err := item.Execute(ctx)
				resultsChan <- WorkResult[T]{ID: item.ID, Result: result, Err: err}
			}
		}()
	}

	go func() {
		for _, item := range items {
			workChan <- item
		}
		close(workChan)
		wg.Wait()
		close(resultsChan)
	}()

	results := make([]WorkResult[T], 0, len(items))
	completed := 0
	for result := range resultsChan {
		results = append(results, result)
		completed++
		if onProgress != nil {
			onProgress(completed, len(items))
		}
	}

	return results
}
