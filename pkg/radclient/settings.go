package radclient

import (
	"time"

	"github.com/vitalvas/radqueue/pkg/log"
)

// Settings configures a Client. Field names follow the legacy service's
// configuration vocabulary (servers_max, thr_sockets_min/max,
// skt_snd_buf/rcv_buf, nas_identifier), the surface operators migrating
// an existing deployment will recognize.
type Settings struct {
	// ServersMax bounds the server table. AddServer fails with
	// ErrTooManyServers once reached.
	ServersMax int

	// ThrSocketsMin/ThrSocketsMax bound each worker's per-family socket
	// pool. The pool grows on identifier pressure and shrinks back down
	// to ThrSocketsMin as queries drain.
	ThrSocketsMin int
	ThrSocketsMax int

	// SktSndBuf/SktRcvBuf are best-effort OS socket buffer sizes in
	// bytes; 0 leaves the OS default untouched.
	SktSndBuf int
	SktRcvBuf int

	// NASIdentifier, if non-empty, is auto-attached to outgoing
	// Access-Request packets that do not already carry one. See
	// Client.Query.
	NASIdentifier []byte

	// WorkerCount is the number of reactor workers backing this client.
	// Each worker owns its own socket pools exclusively.
	WorkerCount int

	// Logger receives the client's diagnostics. Nil selects
	// log.NewDefaultLogger.
	Logger log.Logger
}

// ServerSettings configures one upstream RADIUS server.
type ServerSettings struct {
	// Name is diagnostic only, logged on failover; it has no effect on
	// routing.
	Name string

	Addr   string // host:port, resolved per-family on AddServer
	Secret []byte

	RetransTimeInit    time.Duration
	RetransTimeMax     time.Duration // 0 = unbounded
	RetransDurationMax time.Duration // 0 = unbounded
	RetransCountMax    int           // 0 = unbounded

	// Enabled is advisory: AddServer always marks a new server enabled
	// regardless of this field. Kept so callers may record intent when
	// building configs and toggle later via Server.SetEnabled.
	Enabled bool
}

// DefaultSettings returns conservative defaults suitable for a single
// embedder process with a handful of upstream servers.
func DefaultSettings() Settings {
	return Settings{
		ServersMax:    32,
		ThrSocketsMin: 1,
		ThrSocketsMax: 16,
		SktSndBuf:     0,
		SktRcvBuf:     0,
		WorkerCount:   1,
	}
}

// DefaultServerSettings returns the RFC 2865 §9-recommended retransmission
// policy: 1s initial interval, no per-try ceiling, no duration ceiling,
// give up after 3 tries.
func DefaultServerSettings() ServerSettings {
	return ServerSettings{
		RetransTimeInit:    time.Second,
		RetransTimeMax:     0,
		RetransDurationMax: 0,
		RetransCountMax:    3,
		Enabled:            true,
	}
}
