package analyses

import (
	"context"
	"sync"

	domain "github.com/bryanwahyu/codeguard/internal/domain/analyses"
	"github.com/bryanwahyu/codeguard/internal/logger"
)

// ProcessFunc handles one queued analysis.
type ProcessFunc func(ctx context.Context, id domain.AnalysisID)

// Pool is a bounded queue feeding a fixed number of workers.
// Enqueue never blocks: when the queue is full the id is handed to a
// goroutine that waits for space, so every id is still processed once.
type Pool struct {
	process ProcessFunc
	workers int
	queue   chan domain.AnalysisID

	mu       sync.RWMutex
	started  bool
	closed   bool
	overflow sync.WaitGroup
	wg       sync.WaitGroup
	stopOnce sync.Once
}

func NewPool(workers, queueSize int, process ProcessFunc) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = workers
	}
	return &Pool{
		process: process,
		workers: workers,
		queue:   make(chan domain.AnalysisID, queueSize),
	}
}

// Start launches the workers. ctx is handed to every process call.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started || p.closed {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go func(workerID int) {
			defer p.wg.Done()
			wctx := logger.WithField(ctx, "worker", workerID)
			for id := range p.queue {
				p.process(wctx, id)
			}
		}(i)
	}
}

func (p *Pool) Enqueue(id domain.AnalysisID) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		// stays pending, picked up by Recover on next start
		logger.Default().WithField(logger.FieldAnalysisID, string(id)).Warn("worker pool stopped, analysis left pending")
		return
	}
	select {
	case p.queue <- id:
	default:
		p.overflow.Add(1)
		go func() {
			defer p.overflow.Done()
			p.queue <- id
		}()
	}
}

// Stop rejects new ids, drains what was already accepted and waits for the workers.
// A pool that was never started has no one to drain the queue: its ids are
// dropped and stay pending for Recover.
func (p *Pool) Stop() {
	p.stopOnce.Do(func() {
		p.mu.Lock()
		p.closed = true
		started := p.started
		p.mu.Unlock()

		if !started {
			p.discard()
			return
		}
		p.overflow.Wait()
		close(p.queue)
		p.wg.Wait()
	})
}

// discard empties the queue until every overflow sender has delivered.
func (p *Pool) discard() {
	done := make(chan struct{})
	go func() {
		p.overflow.Wait()
		close(done)
	}()
	for {
		select {
		case <-p.queue:
		case <-done:
			close(p.queue)
			for range p.queue {
			}
			return
		}
	}
}
