package radclient

import (
	"context"
	"net"

	"github.com/vitalvas/radqueue/internal/reactor"
)

// maxDatagramSize bounds the receive scratch buffer; RFC 2865 caps a
// RADIUS packet at 4096 bytes.
const maxDatagramSize = 4096

// slot is one of a socket's 256 identifier-indexed entries. generation
// guards against a stale (socket, slotIndex) reference from a prior
// occupant being mistaken for the current one across the hop between
// send-path allocation and a delayed timer or datagram callback.
type slot struct {
	query      *Query
	generation uint64
}

// socket is a single bound UDP endpoint plus its 256-entry slot table.
// Every field is touched exclusively by the worker goroutine that owns
// the pool this socket belongs to; see reactor's package doc.
type socket struct {
	conn   net.PacketConn
	worker *reactor.Worker
	client *Client

	network string // "udp4" or "udp6", fixed at creation

	slots        [256]slot
	queriesCount int
	queriesIndex int // rotating cursor for AUTO identifier allocation
}

func newSocket(ctx context.Context, worker *reactor.Worker, client *Client, network string, sndBuf, rcvBuf int) (*socket, error) {
	conn, err := net.ListenPacket(network, ":0")
	if err != nil {
		return nil, err
	}

	if udpConn, ok := conn.(*net.UDPConn); ok {
		if sndBuf > 0 {
			_ = udpConn.SetWriteBuffer(sndBuf)
		}
		if rcvBuf > 0 {
			_ = udpConn.SetReadBuffer(rcvBuf)
		}
	}

	s := &socket{
		conn:    conn,
		worker:  worker,
		client:  client,
		network: network,
	}

	worker.ListenPacket(ctx, conn, maxDatagramSize, s.handleDatagram)

	return s, nil
}

func (s *socket) close() {
	_ = s.conn.Close()
}

// allocateExplicit takes slot[id] if it is free.
func (s *socket) allocateExplicit(id int) (int, bool) {
	if s.slots[id].query != nil {
		return 0, false
	}
	return id, true
}

// allocateAny scans for a free slot starting at the rotating cursor,
// wrapping once. It does not itself advance the cursor; callers do that
// after a successful allocation via advanceCursor.
func (s *socket) allocateAny() (int, bool) {
	if s.queriesCount >= 256 {
		return 0, false
	}

	for i := 0; i < 256; i++ {
		idx := (s.queriesIndex + i) % 256
		if s.slots[idx].query == nil {
			return idx, true
		}
	}
	return 0, false
}

func (s *socket) advanceCursor(afterIdx int) {
	s.queriesIndex = (afterIdx + 1) % 256
}

// bind occupies slots[idx] with q and returns the slot's generation, to be
// retained by the caller together with the socket and slot index.
func (s *socket) bind(idx int, q *Query) uint64 {
	s.slots[idx].query = q
	s.queriesCount++
	return s.slots[idx].generation
}

// unbind releases slots[idx] if its generation still matches, guarding
// against a slot that was already freed and reused. Returns true if it
// actually released the slot.
func (s *socket) unbind(idx int, generation uint64) bool {
	if s.slots[idx].generation != generation || s.slots[idx].query == nil {
		return false
	}
	s.slots[idx].query = nil
	s.slots[idx].generation++
	s.queriesCount--
	return true
}

func (s *socket) send(data []byte, addr *net.UDPAddr) error {
	n, err := s.conn.WriteTo(data, addr)
	if err != nil {
		return err
	}
	if n != len(data) {
		return errShortWrite
	}
	return nil
}

// handleDatagram is the receive path, invoked on this socket's owning
// worker for every datagram (or read error): shape check, identifier
// lookup, source-address check, authenticator verification, then
// completion. Anything that fails a check is dropped and the query's
// timer keeps running.
func (s *socket) handleDatagram(err error, src net.Addr, buf []byte, n int) {
	if err != nil {
		s.client.logger.Debugf("radclient: read error on socket: %v", err)
		return
	}

	if len(buf) < 2 {
		return
	}
	if uerr := checkShape(buf); uerr != nil {
		s.client.logger.Debugf("radclient: dropping malformed datagram from %s: %v", src, uerr)
		return
	}

	identifier := buf[1]
	sl := &s.slots[identifier]
	q := sl.query
	if q == nil {
		s.client.logger.Debugf("radclient: dropping datagram for empty slot %d from %s", identifier, src)
		return
	}

	srv := q.currentServer()
	if srv == nil || srv.Addr.String() != src.String() {
		s.client.logger.Debugf("radclient: dropping datagram with mismatched source %s for slot %d", src, identifier)
		return
	}

	if !verifyResponse(buf, q.reqAuthenticator, srv.Secret) {
		s.client.logger.Debugf("radclient: dropping datagram with bad authenticator from %s", src)
		return
	}

	payload := make([]byte, len(buf))
	copy(payload, buf)

	q.complete(payload, nil)
}
