package analyses

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	domain "github.com/bryanwahyu/codeguard/internal/domain/analyses"
)

func TestPoolProcessesEveryIDOnce(t *testing.T) {
	var mu sync.Mutex
	seen := map[domain.AnalysisID]int{}
	p := NewPool(3, 1, func(_ context.Context, id domain.AnalysisID) {
		mu.Lock()
		seen[id]++
		mu.Unlock()
	})
	p.Start(context.Background())

	const n = 200
	for i := 0; i < n; i++ {
		p.Enqueue(domain.AnalysisID(fmt.Sprintf("a%d", i)))
	}
	p.Stop()

	if len(seen) != n {
		t.Fatalf("processed %d distinct ids, want %d", len(seen), n)
	}
	for id, c := range seen {
		if c != 1 {
			t.Errorf("%s processed %d times", id, c)
		}
	}
}

func TestPoolEnqueueAfterStopIsDropped(t *testing.T) {
	calls := 0
	p := NewPool(1, 1, func(context.Context, domain.AnalysisID) { calls++ })
	p.Start(context.Background())
	p.Stop()
	p.Enqueue("late")
	p.Stop() // idempotent
	if calls != 0 {
		t.Fatalf("calls = %d after stop", calls)
	}
}

func TestPoolStopWithoutStart(t *testing.T) {
	calls := 0
	p := NewPool(1, 1, func(context.Context, domain.AnalysisID) { calls++ })
	p.Enqueue("a")
	p.Enqueue("b") // overflow, waits for queue space

	done := make(chan struct{})
	go func() {
		p.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop blocked on a pool that was never started")
	}
	p.Start(context.Background()) // no-op after Stop
	if calls != 0 {
		t.Fatalf("calls = %d, want 0", calls)
	}
}
