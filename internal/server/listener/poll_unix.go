//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package listener

import (
	"errors"
	"net"
	"net/netip"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// pollReceiver waits with poll(2) and drains with non-blocking recvfrom
type pollReceiver struct {
	raw syscall.RawConn
}

func newReceiver(conn *net.UDPConn, _ time.Duration) (receiver, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return nil, err
	}
	return &pollReceiver{raw: raw}, nil
}

func (p *pollReceiver) wait(timeout time.Duration) (bool, error) {
	var (
		count   int
		pollErr error
	)
	err := p.raw.Control(func(fd uintptr) {
		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		for {
			count, pollErr = unix.Poll(fds, int(timeout.Milliseconds()))
			if pollErr != unix.EINTR {
				return
			}
		}
	})
	if err != nil {
		return false, err
	}
	if pollErr != nil {
		return false, pollErr
	}
	return count > 0, nil
}

func (p *pollReceiver) recv(buf []byte) (int, netip.AddrPort, bool, error) {
	var (
		n       int
		from    unix.Sockaddr
		recvErr error
	)
	err := p.raw.Read(func(fd uintptr) bool {
		n, from, recvErr = unix.Recvfrom(int(fd), buf, unix.MSG_DONTWAIT)
		return true
	})
	if err != nil {
		return 0, netip.AddrPort{}, false, err
	}
	if recvErr != nil {
		if errors.Is(recvErr, unix.EAGAIN) || errors.Is(recvErr, unix.EWOULDBLOCK) || errors.Is(recvErr, unix.EINTR) {
			return 0, netip.AddrPort{}, false, nil
		}
		return 0, netip.AddrPort{}, false, recvErr
	}

	switch sa := from.(type) {
	case *unix.SockaddrInet4:
		return n, netip.AddrPortFrom(netip.AddrFrom4(sa.Addr), uint16(sa.Port)), true, nil
	case *unix.SockaddrInet6:
		return n, netip.AddrPortFrom(netip.AddrFrom16(sa.Addr), uint16(sa.Port)), true, nil
	default:
		return 0, netip.AddrPort{}, true, errors.New("datagram from unsupported address family")
	}
}

func isClosed(err error) bool {
	return errors.Is(err, net.ErrClosed)
}
