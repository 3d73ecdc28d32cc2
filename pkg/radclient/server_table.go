package radclient

import (
	"net"
	"sync"
	"time"
)

// Server is one configured upstream RADIUS target. The fields an in-flight
// Query reads (Addr, Secret, retransmission policy) are immutable after
// AddServer; only Enabled is mutated post-construction, guarded by the
// server's own mutex.
type Server struct {
	Name string
	Addr *net.UDPAddr
	UDPNetwork string // "udp4" or "udp6", fixed at AddServer time

	Secret []byte

	RetransTimeInit    time.Duration
	RetransTimeMax     time.Duration
	RetransDurationMax time.Duration
	RetransCountMax    int

	mu      sync.Mutex
	enabled bool
}

// Enabled reports whether the server currently participates in routing.
func (s *Server) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// SetEnabled toggles routing eligibility without removing the server from
// the table, so its position (and thus other servers' relative order) is
// preserved.
func (s *Server) SetEnabled(enabled bool) {
	s.mu.Lock()
	s.enabled = enabled
	s.mu.Unlock()
}

// serverTable is the process-wide, mutex-guarded, insertion-ordered list
// of configured servers. Reads and writes are both O(n) over a small
// list, so a plain mutex serves as well as a reader-writer lock would.
type serverTable struct {
	mu      sync.Mutex
	servers []*Server
	max     int
}

func newServerTable(max int) *serverTable {
	return &serverTable{max: max}
}

// add appends a new, enabled server. Position is the default priority:
// lower index is tried first.
func (t *serverTable) add(settings ServerSettings, network string, addr *net.UDPAddr) (*Server, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.servers) >= t.max {
		return nil, ErrTooManyServers
	}

	srv := &Server{
		Name:               settings.Name,
		Addr:               addr,
		UDPNetwork:         network,
		Secret:             settings.Secret,
		RetransTimeInit:    settings.RetransTimeInit,
		RetransTimeMax:     settings.RetransTimeMax,
		RetransDurationMax: settings.RetransDurationMax,
		RetransCountMax:    settings.RetransCountMax,
		enabled:            true,
	}

	t.servers = append(t.servers, srv)
	return srv, nil
}

// remove deletes srv from the table, shifting survivors left to preserve
// their relative order. A no-op if srv is not present (already removed).
func (t *serverTable) remove(srv *Server) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.removeAt(t.indexOf(srv))
}

// removeByAddr deletes the first server whose address matches addr.
func (t *serverTable) removeByAddr(addr net.Addr) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i, srv := range t.servers {
		if srv.Addr.String() == addr.String() {
			t.removeAt(i)
			return
		}
	}
}

// indexOf returns -1 if srv is not found.
func (t *serverTable) indexOf(srv *Server) int {
	for i, s := range t.servers {
		if s == srv {
			return i
		}
	}
	return -1
}

// removeAt deletes the entry at idx. Removing the only entry yields a
// zero-length slice; there is no tail element to zero afterwards.
func (t *serverTable) removeAt(idx int) {
	if idx < 0 || idx >= len(t.servers) {
		return
	}
	t.servers = append(t.servers[:idx], t.servers[idx+1:]...)
}

// nextEnabled scans forward from fromIdx (inclusive) for the first
// enabled server. It returns the server, its resolved index, and
// ok=false if none remain.
func (t *serverTable) nextEnabled(fromIdx int) (*Server, int, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	for i := fromIdx; i < len(t.servers); i++ {
		if t.servers[i].Enabled() {
			return t.servers[i], i, true
		}
	}
	return nil, 0, false
}

func (t *serverTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.servers)
}
