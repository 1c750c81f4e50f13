// Package event defines what the controller's event loop consumes.
package event

import (
	"net/netip"

	"pollcmd/internal/server/registry"
	"pollcmd/internal/types"
)

// Event is one unit of work for the controller's consumer loop
type Event interface {
	isEvent()
}

// Replier sends the controller's answer back to the agent that polled
type Replier interface {
	Send(msg types.ServerToClient) error
}

// ClientMessage is a decoded poll together with its return path
type ClientMessage struct {
	Commands []types.Command
	ClientID string
	Source   netip.AddrPort
	Reply    Replier
}

// NewClientMessage is pushed by a listener for every decoded datagram
type NewClientMessage struct {
	Message ClientMessage
}

// NewCommand carries one operator line, possibly with its trailing newline
type NewCommand struct {
	Line string
}

// DecodeError is pushed for a datagram that could not be decoded
type DecodeError struct {
	Source netip.AddrPort
}

// QueryResult answers a Query
type QueryResult struct {
	Clients []registry.ClientView
	Found   bool
}

// Query asks the loop for a registry snapshot. An empty ClientID means all clients.
// Result must have room for one value.
type Query struct {
	ClientID string
	Result   chan<- QueryResult
}

func (NewClientMessage) isEvent() {}
func (NewCommand) isEvent()       {}
func (DecodeError) isEvent()      {}
func (Query) isEvent()            {}
