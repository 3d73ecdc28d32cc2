package radclient

import "fmt"

// sendNew is used both for a query's first transmission and for every
// failover hop. It resolves the next enabled server at or after
// q.srvIdx, binds a socket slot (unless already bound to a socket in the
// right family's pool), arms the retransmit timer, signs, and transmits.
func (q *Query) sendNew() error {
	srv, idx, ok := q.client.servers.nextEnabled(q.srvIdx)
	if !ok {
		return ErrConnectionRefused
	}
	q.srvIdx = idx
	q.server = srv

	ws := q.client.workerState(q.worker)
	targetPool := ws.poolFor(srv.UDPNetwork)

	if !(q.bound && q.pool == targetPool) {
		if q.bound {
			q.sock.unbind(q.slotIndex, q.generation)
			q.pool.evictIfDrained(q.sock)
			q.bound = false
		}

		sock, slotIdx, err := targetPool.allocate(q.client.ctx, q.client, q.worker, !q.queryIDAny, q.explicitID)
		if err != nil {
			return err
		}

		gen := sock.bind(slotIdx, q)
		q.sock = sock
		q.pool = targetPool
		q.slotIndex = slotIdx
		q.generation = gen
		q.bound = true
	}

	if q.queryIDAny {
		q.request[1] = byte(q.slotIndex)
	} else {
		q.request[1] = byte(q.explicitID)
	}

	// A failover hop arrives here with the previous server's timer still
	// armed; there must never be two timers for one query.
	if q.timer != nil {
		q.timer.Stop()
		q.timer = nil
	}

	q.retransTime = jitterDuration(srv.RetransTimeInit)
	q.armTimer()

	signedBytes, reqAuth, err := sign(q.request, srv.Secret)
	if err != nil {
		q.timer.Stop()
		q.timer = nil
		return err
	}
	q.signed = signedBytes
	q.reqAuthenticator = reqAuth

	if err := q.sock.send(q.signed, srv.Addr); err != nil {
		q.timer.Stop()
		q.timer = nil
		return fmt.Errorf("%w: %v", ErrIO, err)
	}

	return nil
}

// retransmit resends the already-signed buffer verbatim, reusing the
// Request Authenticator exactly as RFC 2865 §2.5 requires on retry.
func (q *Query) retransmit() error {
	if err := q.sock.send(q.signed, q.server.Addr); err != nil {
		return fmt.Errorf("%w: %v", ErrIO, err)
	}
	return nil
}

func (q *Query) armTimer() {
	q.timer = q.worker.AfterFunc(q.retransTime, q.onTimerExpiry)
}

// onTimerExpiry runs on this query's worker every time a retransmit
// deadline fires without a reply having arrived: it charges the elapsed
// interval against the server's count and duration budgets, then either
// retransmits with a doubled interval or fails over.
func (q *Query) onTimerExpiry() {
	if q.done {
		return
	}

	srv := q.server

	q.retransCount++
	q.retransDuration += q.retransTime

	if srv.RetransCountMax != 0 && q.retransCount >= srv.RetransCountMax {
		q.failover(ErrTimedOut)
		return
	}
	if srv.RetransDurationMax != 0 && q.retransDuration >= srv.RetransDurationMax {
		q.failover(ErrTimedOut)
		return
	}

	nominal := 2 * q.retransTime
	if srv.RetransTimeMax != 0 && nominal > srv.RetransTimeMax {
		nominal = srv.RetransTimeMax
	}
	next := jitterDuration(nominal)

	if srv.RetransDurationMax != 0 {
		remaining := srv.RetransDurationMax - q.retransDuration
		if next > remaining {
			next = remaining
		}
		if next < srv.RetransTimeInit {
			q.failover(ErrTimedOut)
			return
		}
	}

	q.retransTime = next
	q.armTimer()

	if err := q.retransmit(); err != nil {
		q.failover(err)
	}
}

// failover advances the server cursor strictly: a query never revisits
// an earlier server in one lifetime. It keeps trying successive enabled
// servers until one accepts the send or the table is exhausted, in which
// case the query completes with the error that drove it here (ErrTimedOut
// for budget exhaustion, the send error otherwise).
func (q *Query) failover(cause error) {
	q.client.logger.Warnf("radclient: query on worker %d failing over from server index %d (%s): %v",
		q.worker.ID(), q.srvIdx, serverName(q.server), cause)

	lastErr := cause
	for {
		q.srvIdx++
		if q.srvIdx >= q.client.servers.len() {
			q.complete(nil, lastErr)
			return
		}

		q.retransCount = 0
		q.retransDuration = 0

		if err := q.sendNew(); err != nil {
			lastErr = err
			continue
		}
		return
	}
}

func serverName(s *Server) string {
	if s == nil {
		return "<nil>"
	}
	if s.Name != "" {
		return s.Name
	}
	return s.Addr.String()
}
