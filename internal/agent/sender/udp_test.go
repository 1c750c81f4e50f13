package sender

import (
	"context"
	"net"
	"testing"
	"time"

	"pollcmd/internal/agent/event"
	"pollcmd/internal/eventloop"
	"pollcmd/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// fakeController answers every datagram with whatever reply returns
func fakeController(t *testing.T, reply func(req []byte) []byte) string {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	go func() {
		buf := make([]byte, 2048)
		for {
			n, addr, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			if out := reply(buf[:n]); out != nil {
				_, _ = conn.WriteToUDP(out, addr)
			}
		}
	}()

	return conn.LocalAddr().String()
}

func nextEvent(t *testing.T, q *eventloop.Queue[event.Event], wait time.Duration) (event.Event, bool) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()
	return q.Next(ctx)
}

func TestUDPSenderRoundTrip(t *testing.T) {
	received := make(chan types.ClientToServer, 1)
	addr := fakeController(t, func(req []byte) []byte {
		msg, err := types.DecodeClientToServer(req)
		if err != nil {
			return nil
		}
		received <- msg
		out, _ := types.Encode(types.NewServerToClient([]types.Command{types.NewCommand("whoami", 0)}))
		return out
	})

	q := eventloop.New[event.Event]()
	s := NewUDPSender(7, addr, time.Second, 2048, zaptest.NewLogger(t))
	assert.Equal(t, uint32(7), s.ID())

	s.Deliver(types.NewClientToServer("H1", nil), q)

	ev, ok := nextEvent(t, q, 2*time.Second)
	require.True(t, ok)
	resp, ok := ev.(event.MessageResponse)
	require.True(t, ok, "unexpected event %T", ev)
	require.Len(t, resp.Message.Commands, 1)
	assert.Equal(t, "whoami", resp.Message.Commands[0].Input)
	assert.False(t, resp.Message.Commands[0].Completed())
	assert.Equal(t, "H1", (<-received).ID)

	_, ok = nextEvent(t, q, 100*time.Millisecond)
	assert.False(t, ok, "expected exactly one event")
}

func TestUDPSenderFailures(t *testing.T) {
	testCases := []struct {
		name  string
		reply func([]byte) []byte
	}{
		{"zero-length reply", func([]byte) []byte { return []byte{} }},
		{"timeout", func([]byte) []byte { return nil }},
		{"undecodable reply", func([]byte) []byte { return []byte("not json") }},
		{"invalid utf-8 reply", func([]byte) []byte { return []byte{0xff, 0xfe} }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			addr := fakeController(t, tc.reply)

			q := eventloop.New[event.Event]()
			s := NewUDPSender(1, addr, 100*time.Millisecond, 2048, zaptest.NewLogger(t))
			s.Deliver(types.NewClientToServer("H1", nil), q)

			ev, ok := nextEvent(t, q, 2*time.Second)
			require.True(t, ok)
			failure, ok := ev.(event.MessageSendFailure)
			require.True(t, ok, "unexpected event %T", ev)
			assert.Equal(t, uint32(1), failure.SenderID)

			_, ok = nextEvent(t, q, 200*time.Millisecond)
			assert.False(t, ok, "expected exactly one event")
		})
	}
}

func TestUDPSenderBadAddress(t *testing.T) {
	q := eventloop.New[event.Event]()
	s := NewUDPSender(1, "not-an-address", time.Second, 2048, zaptest.NewLogger(t))
	s.Deliver(types.NewClientToServer("H1", nil), q)

	// Resolution fails before any goroutine starts
	assert.Equal(t, 1, q.Len())
	ev, ok := nextEvent(t, q, time.Second)
	require.True(t, ok)
	assert.IsType(t, event.MessageSendFailure{}, ev)
}
