package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type stubResult struct {
	err error
}

func (r *stubResult) Err() error {
	return r.err
}

type stubJob struct {
	fail     bool
	executed *int32
}

func (j *stubJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.fail {
		return &stubResult{err: errors.New("job failed")}
	}
	return &stubResult{}
}

func TestNewPoolClampsWorkers(t *testing.T) {
	if p := NewPool(5); p.workers != 5 {
		t.Errorf("workers = %d, want 5", p.workers)
	}
	if p := NewPool(0); p.workers != 1 {
		t.Errorf("workers = %d for zero input, want 1", p.workers)
	}
	if p := NewPool(-3); p.workers != 1 {
		t.Errorf("workers = %d for negative input, want 1", p.workers)
	}
}

func TestPoolRunsEveryJob(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	var executed int32
	const count = 10
	go func() {
		for i := 0; i < count; i++ {
			pool.Submit(&stubJob{executed: &executed})
		}
		pool.Close()
	}()

	results := pool.Wait()

	if len(results) != count {
		t.Errorf("got %d results, want %d", len(results), count)
	}
	if n := atomic.LoadInt32(&executed); n != count {
		t.Errorf("executed %d jobs, want %d", n, count)
	}
}

type gatedJob struct {
	start    func()
	end      func()
	duration time.Duration
}

func (j *gatedJob) Execute(ctx context.Context) Result {
	if j.start != nil {
		j.start()
	}
	time.Sleep(j.duration)
	if j.end != nil {
		j.end()
	}
	return &stubResult{}
}

func TestPoolBoundsConcurrency(t *testing.T) {
	const workers = 8
	pool := NewPool(workers)
	pool.Start()

	var current, peak, completed int32
	var mu sync.Mutex

	const total = 40
	go func() {
		for i := 0; i < total; i++ {
			pool.Submit(&gatedJob{
				start: func() {
					now := atomic.AddInt32(&current, 1)
					mu.Lock()
					if now > peak {
						peak = now
					}
					mu.Unlock()
				},
				end: func() {
					atomic.AddInt32(&current, -1)
					atomic.AddInt32(&completed, 1)
				},
				duration: 10 * time.Millisecond,
			})
		}
		pool.Close()
	}()

	pool.Wait()

	if n := atomic.LoadInt32(&completed); n != total {
		t.Errorf("completed %d jobs, want %d", n, total)
	}

	mu.Lock()
	max := peak
	mu.Unlock()
	if max > workers {
		t.Errorf("peak concurrency %d exceeded %d workers", max, workers)
	}
}

func TestPoolReportsJobErrors(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	pool.Submit(&stubJob{fail: true})
	pool.Submit(&stubJob{})
	pool.Close()

	results := pool.Wait()
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}

	failed := 0
	for _, res := range results {
		if res.Err() != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("got %d failed results, want 1", failed)
	}
}

func TestPoolLargeBatchCompletes(t *testing.T) {
	// Far more jobs than the jobs+results buffers can absorb; the drain in
	// Wait must keep the workers moving while submission continues.
	pool := NewPool(2)
	pool.Start()

	var executed int32
	const count = 50
	go func() {
		for i := 0; i < count; i++ {
			pool.Submit(&stubJob{executed: &executed})
		}
		pool.Close()
	}()

	done := make(chan []Result, 1)
	go func() { done <- pool.Wait() }()

	select {
	case results := <-done:
		if len(results) != count {
			t.Errorf("got %d results, want %d", len(results), count)
		}
		if n := atomic.LoadInt32(&executed); n != count {
			t.Errorf("executed %d jobs, want %d", n, count)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("pool stalled on a batch larger than its buffers")
	}
}

func TestPoolContextCancelStopsWorkers(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPoolContext(ctx, 2)
	pool.Start()

	cancel()

	done := make(chan struct{})
	go func() {
		pool.Submit(&stubJob{})
		pool.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("workers did not stop on context cancellation")
	}
}

func TestPoolSubmitAfterShutdown(t *testing.T) {
	pool := NewPool(2)
	pool.Start()
	pool.Shutdown()

	done := make(chan struct{})
	go func() {
		pool.Submit(&stubJob{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Submit blocked after Shutdown")
	}
}

func TestPoolShutdownClosesResults(t *testing.T) {
	pool := NewPool(2)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(&gatedJob{
		start:    func() { close(started) },
		duration: 200 * time.Millisecond,
	})

	<-started
	pool.Shutdown()

	done := make(chan struct{})
	go func() {
		for range pool.results {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("results channel never closed")
	}
}
