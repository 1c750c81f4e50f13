// Package controller runs the controller's event loop. The loop is the sole
// owner of the client registry; listeners, the line reader and the operator
// API only push events.
package controller

import (
	"context"
	"strings"

	"pollcmd/internal/eventloop"
	"pollcmd/internal/server/event"
	"pollcmd/internal/server/registry"
	"pollcmd/internal/types"

	"go.uber.org/zap"
)

// DefaultClientOS is recorded for new clients; the wire protocol does not carry the platform
const DefaultClientOS = "test"

// Printer shows completed command output to the operator
type Printer interface {
	CommandOutput(clientID string, cmd types.Command)
}

// Controller consumes controller events in order
type Controller struct {
	queue    *eventloop.Queue[event.Event]
	registry *registry.Registry
	printer  Printer
	clientOS string
	logger   *zap.Logger
}

// New creates a controller with an empty registry
func New(queue *eventloop.Queue[event.Event], printer Printer, clientOS string, logger *zap.Logger) *Controller {
	if clientOS == "" {
		clientOS = DefaultClientOS
	}
	return &Controller{
		queue:    queue,
		registry: registry.New(logger.Named("registry")),
		printer:  printer,
		clientOS: clientOS,
		logger:   logger,
	}
}

// Run processes events until ctx is done
func (c *Controller) Run(ctx context.Context) {
	c.logger.Info("Controller event loop started")
	c.queue.Run(ctx, c.handle)
	c.logger.Info("Controller event loop stopped")
}

// ParseLine strips the trailing newline from an operator line and rejects
// lines of one byte or less
func ParseLine(line string) (string, error) {
	line = strings.TrimSuffix(line, "\n")
	line = strings.TrimSuffix(line, "\r")
	if len(line) <= 1 {
		return "", types.ErrEmptyCommand
	}
	return line, nil
}

func (c *Controller) handle(ev event.Event) {
	switch e := ev.(type) {
	case event.NewClientMessage:
		c.handleClientMessage(e.Message)

	case event.NewCommand:
		line, err := ParseLine(e.Line)
		if err != nil {
			c.logger.Debug("Ignoring operator line", zap.String("line", e.Line))
			return
		}
		n := c.registry.NewCommand(line)
		c.logger.Info("Command issued", zap.String("input", line), zap.Int("clients", n))

	case event.DecodeError:
		c.logger.Error("An error occurred when decoding an incoming message",
			zap.String("source", e.Source.String()))

	case event.Query:
		e.Result <- c.query(e.ClientID)

	default:
		c.logger.Error("Unknown event", zap.Any("event", ev))
	}
}

func (c *Controller) handleClientMessage(msg event.ClientMessage) {
	c.logger.Debug("New client message",
		zap.String("client_id", msg.ClientID),
		zap.String("source", msg.Source.String()),
		zap.Int("commands", len(msg.Commands)))

	if !c.registry.HasClient(msg.ClientID) {
		c.registry.AddClient(msg.ClientID, msg.Source.Addr().Unmap(), c.clientOS)
	}

	for _, cmd := range msg.Commands {
		c.printer.CommandOutput(msg.ClientID, cmd)
	}

	c.registry.Touch(msg.ClientID)
	c.registry.FinishedCommands(msg.ClientID, msg.Commands)

	// The registry is fully updated before the reply is built
	pending, ok := c.registry.UnfinishedCommands(msg.ClientID)
	if !ok {
		pending = []types.Command{}
	}

	if msg.Reply == nil {
		return
	}
	if err := msg.Reply.Send(types.NewServerToClient(pending)); err != nil {
		c.logger.Error("Failed to reply to client",
			zap.String("client_id", msg.ClientID),
			zap.Error(err))
	}
}

func (c *Controller) query(clientID string) event.QueryResult {
	if clientID == "" {
		return event.QueryResult{Clients: c.registry.Snapshot(), Found: true}
	}
	view, ok := c.registry.Client(clientID)
	if !ok {
		return event.QueryResult{}
	}
	return event.QueryResult{Clients: []registry.ClientView{view}, Found: true}
}
