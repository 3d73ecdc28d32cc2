package radclient

import (
	"sync"
	"time"

	"github.com/vitalvas/radqueue/internal/reactor"
	"github.com/vitalvas/radqueue/pkg/crypto"
)

// QueryID is an explicit RADIUS identifier in [0,255], or the sentinel
// AUTO asking the scheduler to allocate one.
type QueryID int

// AUTO asks Client.Query to allocate an identifier instead of using an
// explicit one. It is negative so the zero value of QueryID is never
// mistaken for it -- 0 is itself a valid explicit identifier.
const AUTO QueryID = -1

// CompletionFunc is invoked exactly once per query, on the worker the
// query was submitted to, with the raw response payload and a non-nil
// err on failure. udata is the value handed to Query, opaque to the
// scheduler.
type CompletionFunc func(q *Query, response []byte, err error, udata any)

// Query is one in-flight request: owning client, current server index,
// binding to a socket slot, and the retransmission state machine. Cancel
// is safe from any goroutine; every other method and field is owned by
// the query's worker and must not be touched from elsewhere.
type Query struct {
	client *Client
	worker *reactor.Worker

	mu    sync.Mutex
	cb    CompletionFunc
	udata any

	// request is the caller's buffer (with NAS-Identifier already
	// attached, if applicable). signed is the wire form actually
	// transmitted: produced once by sign() and resent verbatim on every
	// retransmit, so the Request Authenticator never changes mid-query.
	request          []byte
	signed           []byte
	reqAuthenticator crypto.Authenticator

	explicitID int
	queryIDAny bool

	srvIdx int
	server *Server

	sock       *socket
	pool       *pool
	slotIndex  int
	generation uint64
	bound      bool

	retransCount    int
	retransTime     time.Duration
	retransDuration time.Duration

	timer *reactor.Timer

	done bool
}

// Cancel clears the completion callback and user data atomically. Any
// completion already in flight, or triggered later by a
// timeout or a (now-irrelevant) reply, still runs its unlink step but
// observes a nil callback and does nothing further -- cancellation is
// idempotent and non-blocking.
func (q *Query) Cancel() {
	q.mu.Lock()
	q.cb = nil
	q.udata = nil
	q.mu.Unlock()
}

// currentServer returns the server this query is currently addressing.
// Only ever called from the owning worker.
func (q *Query) currentServer() *Server {
	return q.server
}

// complete unlinks the query from its slot table first, then invokes
// the callback (if any) exactly once. It is idempotent; the first
// caller wins.
func (q *Query) complete(response []byte, err error) {
	if q.done {
		return
	}
	q.done = true

	q.unlink()
	if q.client != nil {
		q.client.forgetQuery(q)
	}

	q.mu.Lock()
	cb := q.cb
	udata := q.udata
	q.mu.Unlock()

	if cb == nil {
		return
	}

	// complete is only ever invoked on the worker the query was
	// submitted to; the callback must run there too. Dispatch takes the
	// inline path when both workers match and queues otherwise.
	reactor.Dispatch(q.worker, q.worker, func() {
		cb(q, response, err, udata)
	})
}

// unlink stops the retransmit timer and releases the socket slot, then
// gives the pool a chance to evict a now-drained tail socket.
func (q *Query) unlink() {
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}
	if q.bound {
		q.sock.unbind(q.slotIndex, q.generation)
		q.pool.evictIfDrained(q.sock)
		q.bound = false
	}
}
