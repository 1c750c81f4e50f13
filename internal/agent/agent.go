// Package agent runs the agent's event loop: it owns the buffer of locally
// completed commands and is the only goroutine that touches it.
package agent

import (
	"context"
	"errors"
	"time"

	"pollcmd/internal/agent/event"
	"pollcmd/internal/eventloop"
	"pollcmd/internal/types"

	"go.uber.org/zap"
)

// Dispatcher sends an outbound poll
type Dispatcher interface {
	Send(msg types.ClientToServer) error
}

// Runner executes a command and pushes its CommandComplete to sink
type Runner interface {
	RunAsync(cmd types.Command, sink eventloop.Sink[event.Event])
}

// Agent consumes agent events in order
type Agent struct {
	id         string
	queue      *eventloop.Queue[event.Event]
	dispatcher Dispatcher
	runner     Runner
	logger     *zap.Logger

	completed []types.Command
}

// New creates an agent that reports as id
func New(id string, queue *eventloop.Queue[event.Event], dispatcher Dispatcher, runner Runner, logger *zap.Logger) *Agent {
	return &Agent{
		id:         id,
		queue:      queue,
		dispatcher: dispatcher,
		runner:     runner,
		logger:     logger,
	}
}

// ID returns the identity the agent reports
func (a *Agent) ID() string {
	return a.id
}

// Run processes events until ctx is done
func (a *Agent) Run(ctx context.Context) {
	a.logger.Info("Agent event loop started", zap.String("agent_id", a.id))
	a.queue.Run(ctx, a.handle)
	a.logger.Info("Agent event loop stopped")
}

func (a *Agent) handle(ev event.Event) {
	switch e := ev.(type) {
	case event.CommandComplete:
		a.completed = append(a.completed, e.Command)
		a.logger.Info("Command complete",
			zap.Uint64("command_id", e.Command.ID),
			zap.String("output", e.Command.OutputString()))

	case event.MessageResponse:
		for _, cmd := range e.Message.Commands {
			a.logger.Debug("Found a command",
				zap.Uint64("command_id", cmd.ID),
				zap.String("input", cmd.Input))
			a.runner.RunAsync(cmd, a.queue)
		}
		a.logger.Debug("Received a message response", zap.Int("commands", len(e.Message.Commands)))

	case event.MessageSendFailure:
		a.logger.Warn("Poll failed", zap.Uint32("sender_id", e.SenderID))

	case event.TimerOff:
		msg := types.NewClientToServer(a.id, a.drain())
		if err := a.dispatcher.Send(msg); err != nil {
			if errors.Is(err, types.ErrNoSenders) {
				a.logger.Debug("No sender available, poll skipped")
				return
			}
			a.logger.Error("Failed to dispatch poll", zap.Error(err))
		}

	default:
		a.logger.Error("Unknown event", zap.Any("event", ev))
	}
}

// drain hands over the completed buffer; each command is reported once
func (a *Agent) drain() []types.Command {
	out := a.completed
	a.completed = nil
	return out
}

// StartTimer pushes TimerOff every interval until ctx is done
func StartTimer(ctx context.Context, interval time.Duration, sink eventloop.Sink[event.Event]) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sink.Push(event.TimerOff{})
			}
		}
	}()
}
