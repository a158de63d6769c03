package queue

import (
	"context"
	"errors"
	"runtime"

	"github.com/rs/zerolog"
)

const channelBuffer = 256

// ErrPoolStopped is returned by Do once the pool's context has been cancelled.
var ErrPoolStopped = errors.New("worker pool stopped")

type job struct {
	ctx  context.Context
	fn   func()
	done chan struct{}
}

// WorkerPool runs CPU-bound jobs (password hashing) on a fixed number of
// goroutines so a burst of requests cannot occupy every core.
type WorkerPool struct {
	jobs    chan job
	workers int
	stopped chan struct{}
	log     zerolog.Logger
}

// NewWorkerPool creates a pool with numWorkers workers.
// If numWorkers <= 0, runtime.NumCPU() is used.
func NewWorkerPool(numWorkers int, log zerolog.Logger) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	return &WorkerPool{
		jobs:    make(chan job, channelBuffer),
		workers: numWorkers,
		stopped: make(chan struct{}),
		log:     log,
	}
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (p *WorkerPool) Start(ctx context.Context) {
	for i := 0; i < p.workers; i++ {
		go p.runWorker(ctx, i)
	}
	go func() {
		<-ctx.Done()
		close(p.stopped)
	}()
	p.log.Debug().Int("workers", p.workers).Msg("worker pool started")
}

// Size reports the number of workers.
func (p *WorkerPool) Size() int {
	return p.workers
}

// Pending reports how many jobs are queued but not yet picked up.
func (p *WorkerPool) Pending() int {
	return len(p.jobs)
}

// Do enqueues fn and blocks until a worker has run it, ctx is cancelled or
// the pool is stopped. fn must not touch shared mutable state.
func (p *WorkerPool) Do(ctx context.Context, fn func()) error {
	j := job{ctx: ctx, fn: fn, done: make(chan struct{})}

	select {
	case p.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-p.stopped:
		return ErrPoolStopped
	}

	select {
	case <-j.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.stopped:
		return ErrPoolStopped
	}
}

func (p *WorkerPool) runWorker(ctx context.Context, id int) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-p.jobs:
			// Caller already gave up; skip the work.
			if j.ctx.Err() != nil {
				close(j.done)
				continue
			}
			j.fn()
			close(j.done)
			p.log.Trace().Int("worker_id", id).Msg("job done")
		}
	}
}
