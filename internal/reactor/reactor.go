// Package reactor implements the cooperative, single-goroutine-per-worker
// event loop that pkg/radclient is built against. No OS threads are
// pinned, but each worker's state is touched exclusively by that
// worker's goroutine, so callers never need a lock on their hot path.
package reactor

import (
	"context"
	"sync"

	"github.com/vitalvas/radqueue/pkg/log"
)

// WorkerID identifies one worker in a Reactor. It is stable for the
// lifetime of the Reactor; callers use it to route a query's completion
// back to the worker that submitted it.
type WorkerID int

// Reactor owns a fixed set of workers, started together and shut down
// together.
type Reactor struct {
	workers []*Worker
	logger  log.Logger

	wg     sync.WaitGroup
	cancel context.CancelFunc
}

// New creates a Reactor with count workers. Workers do not start running
// until Run is called.
func New(count int, logger log.Logger) *Reactor {
	if count < 1 {
		count = 1
	}
	if logger == nil {
		logger = log.NewDefaultLogger()
	}

	r := &Reactor{
		workers: make([]*Worker, count),
		logger:  logger,
	}
	for i := range r.workers {
		r.workers[i] = newWorker(WorkerID(i), logger)
	}
	return r
}

// WorkerCount returns the number of workers in the reactor.
func (r *Reactor) WorkerCount() int {
	return len(r.workers)
}

// Worker returns the worker handle for id. id must be in [0, WorkerCount).
func (r *Reactor) Worker(id WorkerID) *Worker {
	return r.workers[id]
}

// Run starts every worker's event loop. It returns immediately; workers
// run until ctx is cancelled or Shutdown is called.
func (r *Reactor) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	for _, w := range r.workers {
		r.wg.Add(1)
		go w.run(ctx, &r.wg)
	}
}

// Shutdown cancels every worker's event loop and waits for them to
// drain. Callers that need cleanup to run on each worker before it stops
// should Post a closure per worker first; Shutdown itself runs nothing
// on their behalf.
func (r *Reactor) Shutdown(ctx context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
