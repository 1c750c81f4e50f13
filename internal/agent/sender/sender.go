// Package sender decouples outbound message dispatch from the transport
// that carries it.
package sender

import (
	"math/rand/v2"

	"pollcmd/internal/agent/event"
	"pollcmd/internal/eventloop"
	"pollcmd/internal/types"

	"go.uber.org/zap"
)

// Sender delivers one outbound message and reports the outcome as an event
type Sender interface {
	// Deliver sends msg and eventually pushes exactly one MessageResponse
	// or MessageSendFailure to sink. It must not block the caller on I/O.
	Deliver(msg types.ClientToServer, sink eventloop.Sink[event.Event])
	// ID identifies the sender in logs
	ID() uint32
}

// MessageCenter picks a registered sender at random for every outbound message.
// It is owned by the agent's event loop and is not safe for concurrent use.
type MessageCenter struct {
	senders []Sender
	sink    eventloop.Sink[event.Event]
	logger  *zap.Logger
	pick    func(n int) int
}

// NewMessageCenter creates a message center reporting into sink
func NewMessageCenter(sink eventloop.Sink[event.Event], logger *zap.Logger) *MessageCenter {
	return &MessageCenter{
		sink:   sink,
		logger: logger,
		pick:   rand.IntN,
	}
}

// Add registers a sender
func (m *MessageCenter) Add(s Sender) {
	m.senders = append(m.senders, s)
	m.logger.Debug("Sender registered", zap.Uint32("sender_id", s.ID()))
}

// Len returns the number of registered senders
func (m *MessageCenter) Len() int {
	return len(m.senders)
}

// Send delegates msg to one sender chosen uniformly at random.
// With no senders registered nothing is sent and no event is pushed.
func (m *MessageCenter) Send(msg types.ClientToServer) error {
	if len(m.senders) == 0 {
		return types.ErrNoSenders
	}

	s := m.senders[m.pick(len(m.senders))]
	m.logger.Debug("Dispatching message",
		zap.Uint32("sender_id", s.ID()),
		zap.Int("commands", len(msg.Commands)))
	s.Deliver(msg, m.sink)
	return nil
}
