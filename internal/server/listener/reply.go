package listener

import (
	"errors"
	"fmt"
	"net"
	"net/netip"

	"pollcmd/internal/types"
)

var errAlreadyReplied = errors.New("reply already sent")

// ReplyHandle is the return path to the agent that sent one datagram.
// Send may be called once, from the controller's event loop.
type ReplyHandle struct {
	conn *net.UDPConn
	addr netip.AddrPort
	sent bool
}

// Addr returns the destination of the reply
func (h *ReplyHandle) Addr() netip.AddrPort {
	return h.addr
}

// Send encodes msg and writes it to the agent
func (h *ReplyHandle) Send(msg types.ServerToClient) error {
	if h.sent {
		return errAlreadyReplied
	}
	h.sent = true

	data, err := types.Encode(msg)
	if err != nil {
		return err
	}
	if _, err := h.conn.WriteToUDPAddrPort(data, h.addr); err != nil {
		return fmt.Errorf("failed to send reply to %s: %w", h.addr, err)
	}
	return nil
}
