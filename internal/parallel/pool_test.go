package parallel

import (
	"errors"
	"runtime"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// =============================================================================
// Pool Creation Tests
// =============================================================================

func TestPool_Create(t *testing.T) {
	pool := NewPool(4)
	if pool.Limit() != 4 {
		t.Errorf("Limit() = %d, want 4", pool.Limit())
	}
}

func TestPool_CreateZeroLimit(t *testing.T) {
	for _, n := range []int{0, -5} {
		pool := NewPool(n)
		if expected := runtime.GOMAXPROCS(0); pool.Limit() != expected {
			t.Errorf("NewPool(%d).Limit() = %d, want %d (GOMAXPROCS)", n, pool.Limit(), expected)
		}
	}
}

// =============================================================================
// Dispatch Tests
// =============================================================================

func TestPool_RunsAllTasks(t *testing.T) {
	for _, limit := range []int{1, 2, 8} {
		pool := NewPool(limit)

		var counter atomic.Int64
		for range 100 {
			if err := pool.Go(func() error {
				counter.Add(1)
				return nil
			}); err != nil {
				t.Fatalf("limit %d: Go() error = %v", limit, err)
			}
		}
		if err := pool.Wait(); err != nil {
			t.Fatalf("limit %d: Wait() error = %v", limit, err)
		}
		if counter.Load() != 100 {
			t.Errorf("limit %d: counter = %d, want 100", limit, counter.Load())
		}
		if pool.Dispatched() != 100 {
			t.Errorf("limit %d: Dispatched() = %d, want 100", limit, pool.Dispatched())
		}
	}
}

func TestPool_SequentialRunsInline(t *testing.T) {
	pool := NewPool(1)

	var order []int
	for i := range 5 {
		_ = pool.Go(func() error {
			order = append(order, i)
			return nil
		})
		if len(order) != i+1 {
			t.Fatalf("task %d did not run before Go returned", i)
		}
	}
	if err := pool.Wait(); err != nil {
		t.Fatal(err)
	}
}

func TestPool_BoundsConcurrency(t *testing.T) {
	const limit = 3
	pool := NewPool(limit)

	var running, peak atomic.Int64
	var mu sync.Mutex
	for range 20 {
		_ = pool.Go(func() error {
			n := running.Add(1)
			mu.Lock()
			if n > peak.Load() {
				peak.Store(n)
			}
			mu.Unlock()
			time.Sleep(2 * time.Millisecond)
			running.Add(-1)
			return nil
		})
	}
	if err := pool.Wait(); err != nil {
		t.Fatal(err)
	}
	if peak.Load() > limit {
		t.Errorf("peak concurrency = %d, want <= %d", peak.Load(), limit)
	}
}

// =============================================================================
// Error Tests
// =============================================================================

func TestPool_FirstErrorWins(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")

	pool := NewPool(4)
	_ = pool.Go(func() error { return nil })
	_ = pool.Go(func() error {
		time.Sleep(5 * time.Millisecond)
		return errA
	})
	_ = pool.Go(func() error { return errB })

	if err := pool.Wait(); !errors.Is(err, errA) {
		t.Errorf("Wait() = %v, want %v (dispatch order)", err, errA)
	}
}

func TestPool_StopsDispatchAfterError(t *testing.T) {
	boom := errors.New("boom")
	pool := NewPool(1)

	_ = pool.Go(func() error { return boom })

	ran := false
	if err := pool.Go(func() error {
		ran = true
		return nil
	}); !errors.Is(err, boom) {
		t.Errorf("Go() after failure = %v, want %v", err, boom)
	}
	if ran {
		t.Error("task dispatched after a failure")
	}
	if err := pool.Wait(); !errors.Is(err, boom) {
		t.Errorf("Wait() = %v, want %v", err, boom)
	}
}

func TestPool_SaturatedGoReportsError(t *testing.T) {
	boom := errors.New("boom")
	pool := NewPool(2)

	_ = pool.Go(func() error { return boom })
	_ = pool.Go(func() error { return nil })

	// The pool is saturated, so this call waits on the failed task.
	if err := pool.Go(func() error { return nil }); !errors.Is(err, boom) {
		t.Errorf("Go() = %v, want %v", err, boom)
	}
	_ = pool.Wait()
}

func TestPool_ClosedAfterWait(t *testing.T) {
	pool := NewPool(2)
	_ = pool.Wait()
	if err := pool.Go(func() error { return nil }); !errors.Is(err, ErrPoolClosed) {
		t.Errorf("Go() after Wait = %v, want %v", err, ErrPoolClosed)
	}
}
