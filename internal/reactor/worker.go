package reactor

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/vitalvas/radqueue/pkg/log"
)

// Worker is a single cooperative event loop. All state owned by a Worker's
// caller (radclient's socket pools, slot tables, retransmit timers) must
// only be touched from inside functions run through Post or Dispatch, never
// from another goroutine directly; that is the concurrency contract
// pkg/radclient relies on.
type Worker struct {
	id     WorkerID
	inbox  chan func()
	logger log.Logger

	mu      sync.Mutex
	timers  map[*Timer]struct{}
	readers sync.WaitGroup
}

func newWorker(id WorkerID, logger log.Logger) *Worker {
	return &Worker{
		id:     id,
		inbox:  make(chan func(), 1024),
		logger: logger,
		timers: make(map[*Timer]struct{}),
	}
}

// ID returns this worker's identity.
func (w *Worker) ID() WorkerID {
	return w.id
}

func (w *Worker) run(ctx context.Context, wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		select {
		case fn := <-w.inbox:
			fn()
		case <-ctx.Done():
			w.drain()
			return
		}
	}
}

// drain runs any remaining queued work once after shutdown begins, so a
// completion posted just before Shutdown is not silently lost. It does not
// block waiting for new work.
func (w *Worker) drain() {
	for {
		select {
		case fn := <-w.inbox:
			fn()
		default:
			return
		}
	}
}

// Post enqueues fn to run on this worker's event loop. Safe to call from
// any goroutine, including this worker's own loop (it will simply run
// after whatever is currently executing).
func (w *Worker) Post(fn func()) {
	w.inbox <- fn
}

// Dispatch runs fn on worker `to`. If the caller is already executing
// inside `to`'s event loop (it is the same worker the caller was itself
// invoked from, identified by `from`), fn runs inline with no channel
// hop. Otherwise fn is queued via Post.
//
// Callers always know which worker they are currently running on (it was
// handed to them as the `from` parameter of whatever callback they're
// inside), so this never needs goroutine-local lookup.
func Dispatch(from, to *Worker, fn func()) {
	if from == to || (from != nil && to != nil && from.id == to.id) {
		fn()
		return
	}
	to.Post(fn)
}

// Timer is the cancellable handle returned by AfterFunc.
type Timer struct {
	t      *time.Timer
	worker *Worker
	mu     sync.Mutex
}

// Stop cancels the timer. It is safe to call more than once and safe to
// call after the timer has already fired.
func (h *Timer) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.t.Stop()
	h.worker.mu.Lock()
	delete(h.worker.timers, h)
	h.worker.mu.Unlock()
}

// AfterFunc schedules fn to run on w's event loop after d elapses. fn
// always executes on the worker goroutine, never on the runtime timer
// goroutine, so it may touch worker-owned state without synchronization.
func (w *Worker) AfterFunc(d time.Duration, fn func()) *Timer {
	h := &Timer{worker: w}
	h.t = time.AfterFunc(d, func() {
		w.Post(fn)
	})

	w.mu.Lock()
	w.timers[h] = struct{}{}
	w.mu.Unlock()

	return h
}

// PacketHandler is invoked on the owning worker's event loop for every
// datagram (or read error) observed on a registered connection.
type PacketHandler func(err error, src net.Addr, buf []byte, n int)

// ListenPacket starts a dedicated reader goroutine over conn and marshals
// every read onto w's event loop via onPacket. The reader goroutine exits
// when ReadFrom returns a permanent error (conn is closed), or when
// ReadFrom returns any error after ctx is cancelled; cancelling ctx does
// not by itself unblock a pending read. bufSize should be sized for the
// largest datagram the caller expects (RADIUS caps packets at 4096 bytes).
func (w *Worker) ListenPacket(ctx context.Context, conn net.PacketConn, bufSize int, onPacket PacketHandler) {
	w.readers.Add(1)
	go func() {
		defer w.readers.Done()
		buf := make([]byte, bufSize)
		for {
			n, addr, err := conn.ReadFrom(buf)
			if err != nil {
				select {
				case <-ctx.Done():
					return
				default:
				}
				// Permanent errors (closed connection) should stop the
				// reader; transient ones are reported and the loop
				// continues.
				w.Post(func() { onPacket(err, addr, nil, 0) })
				if isPermanent(err) {
					return
				}
				continue
			}

			payload := make([]byte, n)
			copy(payload, buf[:n])
			w.Post(func() { onPacket(nil, addr, payload, n) })
		}
	}()
}

func isPermanent(err error) bool {
	var netErr net.Error
	if ok := asNetError(err, &netErr); ok {
		return !netErr.Timeout()
	}
	return true
}

func asNetError(err error, target *net.Error) bool {
	ne, ok := err.(net.Error)
	if !ok {
		return false
	}
	*target = ne
	return true
}
