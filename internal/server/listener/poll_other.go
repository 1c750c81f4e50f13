//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package listener

import (
	"errors"
	"net"
	"net/netip"
	"os"
	"time"
)

// deadlineReceiver approximates the bounded wait with read deadlines where poll(2) is unavailable
type deadlineReceiver struct {
	conn    *net.UDPConn
	timeout time.Duration
}

func newReceiver(conn *net.UDPConn, pollWait time.Duration) (receiver, error) {
	return &deadlineReceiver{conn: conn, timeout: pollWait}, nil
}

func (d *deadlineReceiver) wait(time.Duration) (bool, error) {
	return true, nil
}

func (d *deadlineReceiver) recv(buf []byte) (int, netip.AddrPort, bool, error) {
	if err := d.conn.SetReadDeadline(time.Now().Add(d.timeout)); err != nil {
		return 0, netip.AddrPort{}, false, err
	}
	n, from, err := d.conn.ReadFromUDPAddrPort(buf)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return 0, netip.AddrPort{}, false, nil
		}
		return 0, netip.AddrPort{}, false, err
	}
	return n, from, true, nil
}

func isClosed(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
