package reactor

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitalvas/radqueue/pkg/log"
)

func TestListenPacket_DeliversDatagramOnWorker(t *testing.T) {
	r := New(1, log.NewDefaultLogger())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	r.Run(ctx)

	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer conn.Close()

	w := r.Worker(0)
	received := make(chan []byte, 1)
	w.ListenPacket(ctx, conn, 2048, func(err error, src net.Addr, buf []byte, n int) {
		assert.Equal(t, w.ID(), WorkerID(0))
		if err != nil {
			return
		}
		received <- buf[:n]
	})

	sender, err := net.ListenPacket("udp4", "127.0.0.1:0")
	require.NoError(t, err)
	defer sender.Close()

	_, err = sender.WriteTo([]byte("hello"), conn.LocalAddr())
	require.NoError(t, err)

	select {
	case data := <-received:
		assert.Equal(t, "hello", string(data))
	case <-time.After(time.Second):
		t.Fatal("datagram never delivered")
	}

	require.NoError(t, r.Shutdown(context.Background()))
}
