// Package radclient implements the asynchronous, multi-server, UDP RADIUS
// query scheduler: per-worker socket pools, 256-slot identifier tables,
// per-query retransmission state machines, and completion dispatch back to
// the worker that submitted each query.
package radclient

import (
	"context"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/vitalvas/radqueue/internal/reactor"
	"github.com/vitalvas/radqueue/pkg/log"
)

// WorkerHandle identifies the reactor worker a query is submitted to and
// whose goroutine runs that query's state machine and completion
// callback for its entire lifetime.
type WorkerHandle = reactor.WorkerID

// Client owns the server table and a fixed set of reactor workers, each
// with its own exclusive socket pools. It is safe to call Client's
// exported methods from any goroutine.
type Client struct {
	ctx    context.Context
	cancel context.CancelFunc

	settings Settings
	servers  *serverTable
	logger   log.Logger

	reactor *reactor.Reactor
	workers map[reactor.WorkerID]*workerState

	mu       sync.Mutex
	inflight map[*Query]struct{}

	closed atomic.Bool
}

// New creates a Client with settings.WorkerCount reactor workers and
// starts their event loops. The returned Client must be closed with
// Close.
func New(ctx context.Context, settings Settings) (*Client, error) {
	if settings.WorkerCount < 1 {
		settings.WorkerCount = 1
	}
	if settings.ThrSocketsMin < 1 {
		settings.ThrSocketsMin = 1
	}
	if settings.ThrSocketsMax < settings.ThrSocketsMin {
		settings.ThrSocketsMax = settings.ThrSocketsMin
	}
	if settings.ServersMax < 1 {
		return nil, fmt.Errorf("%w: ServersMax must be positive", ErrInvalidArgument)
	}

	logger := settings.Logger
	if logger == nil {
		logger = log.NewDefaultLogger()
	}
	rctx, cancel := context.WithCancel(ctx)

	c := &Client{
		ctx:      rctx,
		cancel:   cancel,
		settings: settings,
		servers:  newServerTable(settings.ServersMax),
		logger:   logger,
		reactor:  reactor.New(settings.WorkerCount, logger),
		workers:  make(map[reactor.WorkerID]*workerState, settings.WorkerCount),
		inflight: make(map[*Query]struct{}),
	}

	for i := 0; i < c.reactor.WorkerCount(); i++ {
		c.workers[reactor.WorkerID(i)] = newWorkerState(settings.ThrSocketsMin, settings.ThrSocketsMax)
	}

	c.reactor.Run(rctx)

	return c, nil
}

// WorkerCount returns the number of reactor workers backing this client.
func (c *Client) WorkerCount() int {
	return c.reactor.WorkerCount()
}

func (c *Client) workerState(w *reactor.Worker) *workerState {
	return c.workers[w.ID()]
}

// AddServer appends srv to the server table, marking it enabled. It fails
// with ErrTooManyServers once ServersMax is reached.
func (c *Client) AddServer(settings ServerSettings) (*Server, error) {
	if settings.Addr == "" {
		return nil, fmt.Errorf("%w: server address required", ErrInvalidArgument)
	}
	if len(settings.Secret) == 0 {
		return nil, fmt.Errorf("%w: shared secret required", ErrInvalidArgument)
	}

	udpAddr, err := net.ResolveUDPAddr("udp", settings.Addr)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve server address: %v", ErrInvalidArgument, err)
	}

	network := "udp4"
	if udpAddr.IP.To4() == nil {
		network = "udp6"
	}

	return c.servers.add(settings, network, udpAddr)
}

// RemoveServer removes srv from the table, preserving the relative order
// of survivors.
func (c *Client) RemoveServer(srv *Server) {
	c.servers.remove(srv)
}

// RemoveServerByAddr removes the first server whose resolved address
// matches addr.
func (c *Client) RemoveServerByAddr(addr net.Addr) {
	c.servers.removeByAddr(addr)
}

// Query submits request for delivery to worker, which owns the query's
// state machine and runs cb exactly once on completion. id selects an
// explicit RADIUS identifier or AUTO to let the scheduler choose one.
//
// request must be a complete, unsigned RFC 2865-encoded buffer (header
// plus attributes); Query attaches NAS-Identifier (if configured and
// applicable) and signs it before the first transmission. Errors
// occurring before the first send -- no enabled server, pool at capacity,
// a write failure -- are returned synchronously; every later failure is
// delivered to cb.
func (c *Client) Query(ctx context.Context, worker WorkerHandle, id QueryID, request []byte, cb CompletionFunc, udata any) (*Query, error) {
	if c.closed.Load() {
		return nil, ErrClosed
	}
	if cb == nil {
		return nil, fmt.Errorf("%w: completion callback required", ErrInvalidArgument)
	}
	if len(request) < 20 {
		return nil, fmt.Errorf("%w: request buffer shorter than RADIUS header", ErrInvalidArgument)
	}
	if id != AUTO && (id < 0 || id > 255) {
		return nil, fmt.Errorf("%w: query id out of range", ErrInvalidArgument)
	}
	if int(worker) < 0 || int(worker) >= c.reactor.WorkerCount() {
		return nil, fmt.Errorf("%w: unknown worker", ErrInvalidArgument)
	}

	req, err := attachNASIdentifier(request, c.settings.NASIdentifier)
	if err != nil {
		return nil, err
	}

	w := c.reactor.Worker(worker)

	type outcome struct {
		q   *Query
		err error
	}
	resultCh := make(chan outcome, 1)

	w.Post(func() {
		q := &Query{
			client:     c,
			worker:     w,
			cb:         cb,
			udata:      udata,
			request:    req,
			queryIDAny: id == AUTO,
			explicitID: int(id),
		}

		if sendErr := q.sendNew(); sendErr != nil {
			resultCh <- outcome{nil, sendErr}
			return
		}

		c.mu.Lock()
		c.inflight[q] = struct{}{}
		c.mu.Unlock()

		resultCh <- outcome{q, nil}
	})

	select {
	case r := <-resultCh:
		return r.q, r.err
	case <-ctx.Done():
		// The worker may still create the query after we give up; the
		// caller got an error, so it must never see the callback.
		go func() {
			if r := <-resultCh; r.q != nil {
				r.q.Cancel()
			}
		}()
		return nil, ctx.Err()
	}
}

func (c *Client) forgetQuery(q *Query) {
	c.mu.Lock()
	delete(c.inflight, q)
	c.mu.Unlock()
}

// Close broadcasts a synchronous shutdown message to every worker. Each
// worker completes its own bound queries with ErrInterrupted, then
// closes its own sockets on its own goroutine; no query outlives the
// client.
func (c *Client) Close(ctx context.Context) error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}

	var wg sync.WaitGroup
	for i := 0; i < c.reactor.WorkerCount(); i++ {
		id := reactor.WorkerID(i)
		w := c.reactor.Worker(id)
		ws := c.workers[id]

		wg.Add(1)
		w.Post(func() {
			defer wg.Done()
			c.shutdownWorker(w, ws)
		})
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	c.cancel()
	return c.reactor.Shutdown(ctx)
}

func (c *Client) shutdownWorker(w *reactor.Worker, ws *workerState) {
	c.mu.Lock()
	var mine []*Query
	for q := range c.inflight {
		if q.worker == w {
			mine = append(mine, q)
		}
	}
	c.mu.Unlock()

	for _, q := range mine {
		q.complete(nil, ErrInterrupted)
	}

	for _, s := range ws.poolV4.sockets {
		s.close()
	}
	ws.poolV4.sockets = nil

	for _, s := range ws.poolV6.sockets {
		s.close()
	}
	ws.poolV6.sockets = nil
}
