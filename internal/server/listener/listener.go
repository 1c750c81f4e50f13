// Package listener receives agent polls on a UDP socket and turns them into
// controller events.
package listener

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"sync"
	"time"

	"pollcmd/internal/eventloop"
	"pollcmd/internal/server/event"
	"pollcmd/internal/types"

	"go.uber.org/zap"
)

// Config represents listener configuration
type Config struct {
	Host       string
	Port       int
	PollWait   time.Duration
	BufferSize int
}

// receiver waits for and reads datagrams without blocking the caller past its wait
type receiver interface {
	// wait blocks for at most timeout and reports whether a datagram is pending
	wait(timeout time.Duration) (bool, error)
	// recv reads one pending datagram; ok is false when none is left
	recv(buf []byte) (n int, from netip.AddrPort, ok bool, err error)
}

// UDPListener binds one long-lived socket and feeds every datagram to the event loop
type UDPListener struct {
	cfg    Config
	logger *zap.Logger

	conn *net.UDPConn
	rx   receiver
	wg   sync.WaitGroup
}

// NewUDPListener creates a listener; nothing is bound until Start
func NewUDPListener(cfg Config, logger *zap.Logger) *UDPListener {
	return &UDPListener{
		cfg:    cfg,
		logger: logger,
	}
}

// Start binds the socket and runs the receive loop on its own goroutine
func (l *UDPListener) Start(ctx context.Context, sink eventloop.Sink[event.Event]) error {
	addr := net.JoinHostPort(l.cfg.Host, fmt.Sprint(l.cfg.Port))
	laddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return fmt.Errorf("failed to resolve listen address: %w", err)
	}

	conn, err := net.ListenUDP("udp", laddr)
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", addr, err)
	}

	rx, err := newReceiver(conn, l.cfg.PollWait)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("failed to set up receiver: %w", err)
	}

	l.conn = conn
	l.rx = rx

	l.logger.Info("Listening for agents", zap.String("address", conn.LocalAddr().String()))

	l.wg.Add(1)
	go l.loop(ctx, sink)
	return nil
}

// Addr returns the bound address
func (l *UDPListener) Addr() net.Addr {
	if l.conn == nil {
		return nil
	}
	return l.conn.LocalAddr()
}

// Stop closes the socket and waits for the loop to exit
func (l *UDPListener) Stop() error {
	if l.conn == nil {
		return nil
	}
	err := l.conn.Close()
	l.wg.Wait()
	return err
}

func (l *UDPListener) loop(ctx context.Context, sink eventloop.Sink[event.Event]) {
	defer l.wg.Done()

	buf := make([]byte, l.cfg.BufferSize)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		ready, err := l.rx.wait(l.cfg.PollWait)
		if err != nil {
			if isClosed(err) {
				return
			}
			l.logger.Error("Poll failed", zap.Error(err))
			continue
		}
		if !ready {
			continue
		}

		if !l.drain(buf, sink) {
			return
		}
	}
}

// drain handles every datagram already queued on the socket.
// It returns false once the socket is closed.
func (l *UDPListener) drain(buf []byte, sink eventloop.Sink[event.Event]) bool {
	for {
		n, from, ok, err := l.rx.recv(buf)
		if err != nil {
			if isClosed(err) {
				return false
			}
			l.logger.Error("Receiving failed", zap.Error(err))
			return true
		}
		if !ok {
			return true
		}

		l.logger.Debug("Datagram received",
			zap.Int("bytes", n),
			zap.String("source", from.String()))
		sink.Push(l.toEvent(buf[:n], from))
	}
}

func (l *UDPListener) toEvent(data []byte, from netip.AddrPort) event.Event {
	msg, err := types.DecodeClientToServer(data)
	if err != nil {
		l.logger.Warn("Failed to decode datagram",
			zap.String("source", from.String()),
			zap.Error(err))
		return event.DecodeError{Source: from}
	}

	return event.NewClientMessage{Message: event.ClientMessage{
		Commands: msg.Commands,
		ClientID: msg.ID,
		Source:   from,
		Reply:    &ReplyHandle{conn: l.conn, addr: from},
	}}
}
