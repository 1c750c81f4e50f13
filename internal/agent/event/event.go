// Package event defines what the agent's event loop consumes.
package event

import "pollcmd/internal/types"

// Event is one unit of work for the agent's consumer loop
type Event interface {
	isEvent()
}

// CommandComplete carries a locally executed command with its output attached
type CommandComplete struct {
	Command types.Command
}

// MessageResponse carries a decoded controller reply
type MessageResponse struct {
	Message types.ServerToClient
}

// MessageSendFailure signals that one outbound poll produced no usable reply
type MessageSendFailure struct {
	SenderID uint32
}

// TimerOff is pushed by the poll timer on every tick
type TimerOff struct{}

func (CommandComplete) isEvent()    {}
func (MessageResponse) isEvent()    {}
func (MessageSendFailure) isEvent() {}
func (TimerOff) isEvent()           {}
