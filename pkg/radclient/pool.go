package radclient

import (
	"context"
	"fmt"

	"github.com/vitalvas/radqueue/internal/reactor"
)

// pool is a worker-owned, per-address-family vector of sockets, bounded
// by [min, max]. It grows when every existing socket is
// identifier-saturated and shrinks back down to min as the tail socket
// drains, preserving the stable indices of survivors during a scan.
type pool struct {
	network string // "udp4" or "udp6"
	sockets []*socket
	min     int
	max     int
}

func newPool(network string, min, max int) *pool {
	if min < 1 {
		min = 1
	}
	if max < min {
		max = min
	}
	return &pool{network: network, min: min, max: max}
}

// allocate finds a socket with a free slot matching the requested
// identifier policy, growing the pool (up to max) if none has capacity.
// explicit selects slot[id] scanning; otherwise the rotating-cursor scan
// is used and the cursor is advanced on success.
func (p *pool) allocate(ctx context.Context, client *Client, worker *reactor.Worker, explicit bool, id int) (*socket, int, error) {
	for {
		for _, s := range p.sockets {
			var idx int
			var ok bool
			if explicit {
				idx, ok = s.allocateExplicit(id)
			} else {
				idx, ok = s.allocateAny()
			}
			if ok {
				if !explicit {
					s.advanceCursor(idx)
				}
				return s, idx, nil
			}
		}

		if len(p.sockets) >= p.max {
			return nil, 0, ErrTryAgain
		}

		s, err := newSocket(ctx, worker, client, p.network, client.settings.SktSndBuf, client.settings.SktRcvBuf)
		if err != nil {
			return nil, 0, fmt.Errorf("%w: create socket: %v", ErrIO, err)
		}
		p.sockets = append(p.sockets, s)
	}
}

// evictIfDrained closes and drops s if it is the tail of the pool, has
// no bound queries, and the pool is above its minimum size. Only the
// tail is ever evicted so surviving sockets keep their indices.
func (p *pool) evictIfDrained(s *socket) {
	if s.queriesCount != 0 {
		return
	}
	if len(p.sockets) == 0 || len(p.sockets) <= p.min {
		return
	}
	tail := p.sockets[len(p.sockets)-1]
	if tail != s {
		return
	}

	tail.close()
	p.sockets = p.sockets[:len(p.sockets)-1]
}
