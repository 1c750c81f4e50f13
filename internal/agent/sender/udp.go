package sender

import (
	"errors"
	"fmt"
	"net"
	"time"

	"pollcmd/internal/agent/event"
	"pollcmd/internal/eventloop"
	"pollcmd/internal/types"

	"go.uber.org/zap"
)

var errEmptyReply = errors.New("received zero-length reply")

// UDPSender delivers each message over a fresh ephemeral UDP socket and
// waits for a single reply datagram on it
type UDPSender struct {
	id         uint32
	dest       string
	timeout    time.Duration
	bufferSize int
	logger     *zap.Logger
}

// NewUDPSender creates a UDP sender for the controller at dest
func NewUDPSender(id uint32, dest string, timeout time.Duration, bufferSize int, logger *zap.Logger) *UDPSender {
	return &UDPSender{
		id:         id,
		dest:       dest,
		timeout:    timeout,
		bufferSize: bufferSize,
		logger:     logger.With(zap.Uint32("sender_id", id), zap.String("dest", dest)),
	}
}

// ID returns the sender id
func (s *UDPSender) ID() uint32 {
	return s.id
}

// Deliver binds and connects a socket, then sends and waits for the reply
// on its own goroutine
func (s *UDPSender) Deliver(msg types.ClientToServer, sink eventloop.Sink[event.Event]) {
	payload, err := types.Encode(msg)
	if err != nil {
		s.fail(sink, err)
		return
	}

	conn, err := s.dial()
	if err != nil {
		s.fail(sink, err)
		return
	}

	go s.roundTrip(conn, payload, sink)
}

func (s *UDPSender) dial() (*net.UDPConn, error) {
	raddr, err := net.ResolveUDPAddr("udp", s.dest)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve controller address: %w", err)
	}

	conn, err := net.DialUDP("udp", nil, raddr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect socket: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(s.timeout)); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to set socket timeout: %w", err)
	}
	return conn, nil
}

func (s *UDPSender) roundTrip(conn *net.UDPConn, payload []byte, sink eventloop.Sink[event.Event]) {
	defer func() {
		_ = conn.Close()
	}()

	if _, err := conn.Write(payload); err != nil {
		s.fail(sink, fmt.Errorf("failed to send: %w", err))
		return
	}

	buf := make([]byte, s.bufferSize)
	n, err := conn.Read(buf)
	if err != nil {
		s.fail(sink, fmt.Errorf("failed to receive: %w", err))
		return
	}
	if n == 0 {
		s.fail(sink, errEmptyReply)
		return
	}

	reply, err := types.DecodeServerToClient(buf[:n])
	if err != nil {
		s.fail(sink, err)
		return
	}

	s.logger.Debug("Reply received",
		zap.Int("bytes", n),
		zap.Int("commands", len(reply.Commands)))
	sink.Push(event.MessageResponse{Message: reply})
}

func (s *UDPSender) fail(sink eventloop.Sink[event.Event], err error) {
	s.logger.Warn("Message delivery failed", zap.Error(err))
	sink.Push(event.MessageSendFailure{SenderID: s.id})
}
