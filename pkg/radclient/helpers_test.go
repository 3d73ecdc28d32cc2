package radclient

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vitalvas/radqueue/pkg/crypto"
	"github.com/vitalvas/radqueue/pkg/packet"
)

// startFakeServer runs handle for every received datagram, one at a
// time, and returns the address tests should configure as the upstream
// RADIUS server.
func startFakeServer(t *testing.T, handle func(conn net.PacketConn, from net.Addr, req []byte)) *net.UDPAddr {
	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	go func() {
		buf := make([]byte, 4096)
		for {
			n, addr, err := conn.ReadFrom(buf)
			if err != nil {
				return
			}
			data := make([]byte, n)
			copy(data, buf[:n])
			handle(conn, addr, data)
		}
	}()

	return conn.LocalAddr().(*net.UDPAddr)
}

// acceptHandler replies with a valid Access-Accept for every request,
// after an optional delay.
func acceptHandler(secret []byte, delay time.Duration) func(net.PacketConn, net.Addr, []byte) {
	return func(conn net.PacketConn, from net.Addr, req []byte) {
		if delay > 0 {
			time.Sleep(delay)
		}
		resp := buildAccept(req, secret)
		_, _ = conn.WriteTo(resp, from)
	}
}

// silentHandler never responds.
func silentHandler() func(net.PacketConn, net.Addr, []byte) {
	return func(net.PacketConn, net.Addr, []byte) {}
}

func buildAccept(req []byte, secret []byte) []byte {
	reqPkt, err := packet.Decode(req)
	if err != nil {
		return nil
	}

	const length = uint16(20)
	resp := make([]byte, length)
	resp[0] = byte(packet.CodeAccessAccept)
	resp[1] = reqPkt.Identifier
	resp[2] = byte(length >> 8)
	resp[3] = byte(length)

	var reqAuth crypto.Authenticator
	copy(reqAuth[:], req[4:20])

	respAuth := crypto.CalculateResponseAuthenticator(byte(packet.CodeAccessAccept), reqPkt.Identifier, length, reqAuth, nil, secret)
	copy(resp[4:20], respAuth[:])

	return resp
}

func accessRequest(t *testing.T) []byte {
	pkt := packet.New(packet.CodeAccessRequest, 0)
	pkt.AddAttribute(packet.NewAttribute(1, []byte("testuser"))) // User-Name
	encoded, err := pkt.Encode()
	require.NoError(t, err)
	return encoded
}
