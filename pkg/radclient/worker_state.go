package radclient

// workerState holds one worker's own IPv4 and IPv6 socket pools: static
// after init, never shared, and only ever touched from its owning
// reactor.Worker's goroutine.
type workerState struct {
	poolV4 *pool
	poolV6 *pool
}

func newWorkerState(min, max int) *workerState {
	return &workerState{
		poolV4: newPool("udp4", min, max),
		poolV6: newPool("udp6", min, max),
	}
}

// poolFor returns the pool matching a server's fixed address family.
func (ws *workerState) poolFor(network string) *pool {
	if network == "udp6" {
		return ws.poolV6
	}
	return ws.poolV4
}
