package processor

import (
	"context"
	"sync"
	"testing"
	"time"

	"faceswap-go/internal/core/swap"
)

// blockingEngine lets tests hold jobs in flight until released.
type blockingEngine struct {
	release chan struct{}
	calls   int
	mu      sync.Mutex
}

func (e *blockingEngine) Swap(ctx context.Context, sourceData, destData []byte, opts swap.Options) (*swap.Result, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.release != nil {
		<-e.release
	}
	return testResult(), nil
}

func (e *blockingEngine) callCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.calls
}

func newTestPool(engine Engine) *WorkerPool {
	return NewWorkerPool(NewSwapProcessor(engine, &recordingRepo{}, nil))
}

func TestWorkerPoolProcessesConcurrentJobs(t *testing.T) {
	engine := &blockingEngine{}
	pool := newTestPool(engine)
	defer pool.Shutdown()

	const jobs = 16
	var wg sync.WaitGroup
	errCh := make(chan error, jobs)

	for i := 0; i < jobs; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := pool.ProcessSwap(context.Background(), &SwapRequest{
				SourceData: []byte("a"),
				DestData:   []byte("b"),
			})
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if got := engine.callCount(); got != jobs {
		t.Errorf("expected %d engine calls, got %d", jobs, got)
	}
	if active := pool.ActiveJobCount(); active != 0 {
		t.Errorf("expected no active jobs after completion, got %d", active)
	}
}

func TestWorkerPoolRespectsContextCancellation(t *testing.T) {
	engine := &blockingEngine{release: make(chan struct{})}
	pool := newTestPool(engine)
	defer pool.Shutdown()
	defer close(engine.release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := pool.ProcessSwap(ctx, &SwapRequest{
		SourceData: []byte("a"),
		DestData:   []byte("b"),
	})
	if err != context.DeadlineExceeded {
		t.Fatalf("expected DeadlineExceeded, got %v", err)
	}
}

func TestWorkerPoolSizing(t *testing.T) {
	pool := newTestPool(&blockingEngine{})
	defer pool.Shutdown()

	if pool.GetWorkerCount() < 2 {
		t.Errorf("expected at least 2 workers, got %d", pool.GetWorkerCount())
	}
	if pool.GetQueueCapacity() != pool.GetWorkerCount()*2 {
		t.Errorf("expected queue capacity %d, got %d",
			pool.GetWorkerCount()*2, pool.GetQueueCapacity())
	}
}
