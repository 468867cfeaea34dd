package llm

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProcess_Success(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{MaxConcurrent: 2}, zap.NewNop())

	items := []WorkItem[string]{
		{ID: "task1", Execute: func(ctx context.Context) (string, error) { return "result1", nil }},
		{ID: "task2", Execute: func(ctx context.Context) (string, error) { return "result2", nil }},
		{ID: "task3", Execute: func(ctx context.Context) (string, error) { return "result3", nil }},
	}

	results := Process(context.Background(), pool, items, nil)
	require.Len(t, results, 3)

	resultsByID := make(map[string]string)
	for _, r := range results {
		require.NoError(t, r.Err, "task %s failed", r.ID)
		resultsByID[r.ID] = r.Result
	}
	assert.Equal(t, "result1", resultsByID["task1"])
	assert.Equal(t, "result2", resultsByID["task2"])
	assert.Equal(t, "result3", resultsByID["task3"])
}

func TestProcess_WithErrors(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{MaxConcurrent: 2}, zap.NewNop())

	expectedErr := errors.New("task failed")
	items := []WorkItem[string]{
		{ID: "task1", Execute: func(ctx context.Context) (string, error) { return "result1", nil }},
		{ID: "task2", Execute: func(ctx context.Context) (string, error) { return "", expectedErr }},
		{ID: "task3", Execute: func(ctx context.Context) (string, error) { return "result3", nil }},
	}

	results := Process(context.Background(), pool, items, nil)
	require.Len(t, results, 3)

	resultsByID := make(map[string]WorkResult[string])
	for _, r := range results {
		resultsByID[r.ID] = r
	}
	assert.NoError(t, resultsByID["task1"].Err)
	assert.ErrorIs(t, resultsByID["task2"].Err, expectedErr)
	assert.NoError(t, resultsByID["task3"].Err)
}

func TestProcess_EmptyItems(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{MaxConcurrent: 2}, zap.NewNop())

	results := Process(context.Background(), pool, []WorkItem[string]{}, nil)
	assert.Nil(t, results)
}

func TestProcess_ConcurrencyLimit(t *testing.T) {
	maxConcurrent := 2
	pool := NewWorkerPool(WorkerPoolConfig{MaxConcurrent: maxConcurrent}, zap.NewNop())

	var currentConcurrent atomic.Int32
	var maxObserved atomic.Int32

	items := make([]WorkItem[string], 10)
	for i := 0; i < 10; i++ {
		items[i] = WorkItem[string]{
			ID: fmt.Sprintf("task%d", i),
			Execute: func(ctx context.Context) (string, error) {
				current := currentConcurrent.Add(1)
				defer currentConcurrent.Add(-1)

				for {
					observed := maxObserved.Load()
					if current <= observed || maxObserved.CompareAndSwap(observed, current) {
						break
					}
				}

				time.Sleep(30 * time.Millisecond)
				return "done", nil
			},
		}
	}

	results := Process(context.Background(), pool, items, nil)
	require.Len(t, results, 10)

	assert.LessOrEqual(t, maxObserved.Load(), int32(maxConcurrent),
		"concurrency limit violated")
	assert.GreaterOrEqual(t, maxObserved.Load(), int32(2),
		"expected some concurrency")
}

func TestProcess_BoundedGoroutines(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{MaxConcurrent: 2}, zap.NewNop())

	before := runtime.NumGoroutine()

	release := make(chan struct{})
	items := make([]WorkItem[int], 200)
	for i := 0; i < 200; i++ {
		items[i] = WorkItem[int]{
			ID: fmt.Sprintf("task%d", i),
			Execute: func(ctx context.Context) (int, error) {
				<-release
				return 1, nil
			},
		}
	}

	done := make(chan []WorkResult[int])
	go func() { done <- Process(context.Background(), pool, items, nil) }()

	// Let the pool spin up; it must not have spawned one goroutine per item.
	time.Sleep(20 * time.Millisecond)
	spawned := runtime.NumGoroutine() - before
	assert.Less(t, spawned, 20, "pool spawned ~%d goroutines for 200 items", spawned)

	close(release)
	results := <-done
	assert.Len(t, results, 200)
}

func TestProcess_ContextCancellation(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{MaxConcurrent: 1}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())

	items := []WorkItem[string]{
		{ID: "task1", Execute: func(ctx context.Context) (string, error) {
			cancel()
			return "result1", nil
		}},
		{ID: "task2", Execute: func(ctx context.Context) (string, error) {
			return "result2", nil
		}},
		{ID: "task3", Execute: func(ctx context.Context) (string, error) {
			return "result3", nil
		}},
	}

	results := Process(ctx, pool, items, nil)
	require.Len(t, results, 3)

	// Everything dispatched after the cancellation must report ctx.Err()
	// without executing.
	cancelled := 0
	for _, r := range results {
		if errors.Is(r.Err, context.Canceled) {
			cancelled++
		}
	}
	assert.Equal(t, 2, cancelled)
}

func TestProcess_ProgressCallback(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{MaxConcurrent: 2}, zap.NewNop())

	items := []WorkItem[string]{
		{ID: "task1", Execute: func(ctx context.Context) (string, error) { return "result1", nil }},
		{ID: "task2", Execute: func(ctx context.Context) (string, error) { return "result2", nil }},
		{ID: "task3", Execute: func(ctx context.Context) (string, error) { return "result3", nil }},
	}

	var mu sync.Mutex
	var progress []int

	results := Process(context.Background(), pool, items, func(completed, total int) {
		mu.Lock()
		defer mu.Unlock()
		progress = append(progress, completed)
		assert.Equal(t, 3, total)
	})
	require.Len(t, results, 3)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []int{1, 2, 3}, progress)
}

func TestNewWorkerPool_ConfigDefault(t *testing.T) {
	pool := NewWorkerPool(WorkerPoolConfig{MaxConcurrent: 0}, zap.NewNop())
	assert.Equal(t, DefaultMaxConcurrent, pool.MaxConcurrent())

	pool = NewWorkerPool(WorkerPoolConfig{MaxConcurrent: -1}, zap.NewNop())
	assert.Equal(t, DefaultMaxConcurrent, pool.MaxConcurrent())
}

func TestDefaultWorkerPoolConfig(t *testing.T) {
	assert.Equal(t, DefaultMaxConcurrent, DefaultWorkerPoolConfig().MaxConcurrent)
}
