package collection

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// BuildFunc rebuilds one collection.
type BuildFunc func(ctx context.Context, c *Collection)

// Rebuilder runs collection builds on a pool of background workers.
// A collection is queued at most once at a time.
type Rebuilder struct {
	workers int
	queue   chan *Collection
	build   BuildFunc
	logger  *zap.Logger

	mu      sync.Mutex
	pending map[*Collection]bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewRebuilder creates a stopped rebuilder.
func NewRebuilder(cfg Config, build BuildFunc, logger *zap.Logger) *Rebuilder {
	workers := cfg.RebuildWorkers
	if workers <= 0 {
		workers = 1
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = 64
	}
	return &Rebuilder{
		workers: workers,
		queue:   make(chan *Collection, size),
		build:   build,
		logger:  logger,
		pending: make(map[*Collection]bool),
	}
}

// Start launches the workers. They stop when ctx is done or Stop is called.
func (r *Rebuilder) Start(ctx context.Context) {
	r.mu.Lock()
	if r.cancel != nil {
		r.mu.Unlock()
		return
	}
	ctx, r.cancel = context.WithCancel(ctx)
	r.mu.Unlock()

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.work(ctx)
	}
}

// Stop cancels the workers and waits for running builds to return.
func (r *Rebuilder) Stop() {
	r.mu.Lock()
	cancel := r.cancel
	r.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	r.wg.Wait()
}

// Schedule queues c for a rebuild without blocking. It returns false when c
// is already queued or the queue is full.
func (r *Rebuilder) Schedule(c *Collection) bool {
	if c.IsEmpty() {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending[c] {
		return false
	}
	select {
	case r.queue <- c:
		r.pending[c] = true
		return true
	default:
		r.logger.Warn("Rebuild queue full", zap.String("collection", c.Name()))
		return false
	}
}

func (r *Rebuilder) work(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case c := <-r.queue:
			r.mu.Lock()
			delete(r.pending, c)
			r.mu.Unlock()

			r.build(ctx, c)
			if ctx.Err() == nil && c.State() == StateDirty {
				r.Schedule(c)
			}
		}
	}
}
