// Package registry tracks known agents and the commands issued to each.
//
// A Registry is owned by the controller's event loop and is not safe for
// concurrent use; other goroutines read it through the loop.
package registry

import (
	"net/netip"
	"sort"
	"time"

	"pollcmd/internal/types"

	"go.uber.org/zap"
)

// CommandResult is the controller's record of one issued command
type CommandResult struct {
	Input  string
	Output *string
	ID     uint64
	// Sent and Received are reserved; nothing sets them yet
	Sent     time.Time
	Received time.Time
}

func (c *CommandResult) command() types.Command {
	return types.Command{Input: c.Input, Output: c.Output, ID: c.ID}
}

// Client is one registered agent
type Client struct {
	ID          string
	IP          netip.Addr
	OS          string
	LastCheckup time.Time

	commands map[uint64]*CommandResult
	// nextID only grows, so ids stay unique even if records are ever purged
	nextID uint64
}

func (c *Client) addCommand(input string) uint64 {
	id := c.nextID
	c.nextID++
	c.commands[id] = &CommandResult{Input: input, ID: id}
	return id
}

func (c *Client) commandsComplete(cmds []types.Command) int {
	marked := 0
	for _, cmd := range cmds {
		rec, ok := c.commands[cmd.ID]
		if !ok || cmd.Output == nil {
			continue
		}
		output := *cmd.Output
		rec.Output = &output
		marked++
	}
	return marked
}

func (c *Client) unfinished() []types.Command {
	out := make([]types.Command, 0)
	for _, rec := range c.commands {
		if rec.Output == nil {
			out = append(out, types.NewCommand(rec.Input, rec.ID))
		}
	}
	return out
}

// Registry maps agent ids to clients
type Registry struct {
	clients map[string]*Client
	now     func() time.Time
	logger  *zap.Logger
}

// New creates an empty registry
func New(logger *zap.Logger) *Registry {
	return &Registry{
		clients: make(map[string]*Client),
		now:     time.Now,
		logger:  logger,
	}
}

// AddClient registers an agent
func (r *Registry) AddClient(id string, ip netip.Addr, os string) {
	r.clients[id] = &Client{
		ID:          id,
		IP:          ip,
		OS:          os,
		LastCheckup: r.now(),
		commands:    make(map[uint64]*CommandResult),
	}
	r.logger.Info("Client added",
		zap.String("client_id", id),
		zap.String("ip", ip.String()))
}

// HasClient reports whether id is registered
func (r *Registry) HasClient(id string) bool {
	_, ok := r.clients[id]
	return ok
}

// Len returns the number of registered clients
func (r *Registry) Len() int {
	return len(r.clients)
}

// Touch refreshes a client's last checkup time
func (r *Registry) Touch(id string) {
	if c, ok := r.clients[id]; ok {
		c.LastCheckup = r.now()
	}
}

// FinishedCommands attaches reported outputs. Unknown clients, unknown ids and
// reports without output are ignored; a repeated report overwrites the output.
func (r *Registry) FinishedCommands(id string, cmds []types.Command) int {
	c, ok := r.clients[id]
	if !ok {
		return 0
	}
	return c.commandsComplete(cmds)
}

// UnfinishedCommands returns every pending command of a client in no
// particular order; false means the client is unknown
func (r *Registry) UnfinishedCommands(id string) ([]types.Command, bool) {
	c, ok := r.clients[id]
	if !ok {
		return nil, false
	}
	return c.unfinished(), true
}

// NewCommand issues input to every registered client and returns how many received it
func (r *Registry) NewCommand(input string) int {
	for _, c := range r.clients {
		id := c.addCommand(input)
		r.logger.Debug("Command queued",
			zap.String("client_id", c.ID),
			zap.Uint64("command_id", id),
			zap.String("input", input))
	}
	return len(r.clients)
}

// CommandView is a read-only copy of a command record
type CommandView struct {
	ID     uint64              `json:"id"`
	Input  string              `json:"input"`
	Output *string             `json:"output"`
	Status types.CommandStatus `json:"status"`
}

// ClientView is a read-only copy of a client
type ClientView struct {
	ID           string        `json:"id"`
	IP           string        `json:"ip"`
	OS           string        `json:"os"`
	LastCheckup  time.Time     `json:"last_checkup"`
	SinceCheckup time.Duration `json:"since_checkup"`
	Pending      int           `json:"pending"`
	Commands     []CommandView `json:"commands"`
}

// Client returns a copy of one client
func (r *Registry) Client(id string) (ClientView, bool) {
	c, ok := r.clients[id]
	if !ok {
		return ClientView{}, false
	}
	return r.view(c), true
}

// Snapshot returns copies of all clients ordered by id
func (r *Registry) Snapshot() []ClientView {
	out := make([]ClientView, 0, len(r.clients))
	for _, c := range r.clients {
		out = append(out, r.view(c))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (r *Registry) view(c *Client) ClientView {
	v := ClientView{
		ID:           c.ID,
		IP:           c.IP.String(),
		OS:           c.OS,
		LastCheckup:  c.LastCheckup,
		SinceCheckup: r.now().Sub(c.LastCheckup),
		Commands:     make([]CommandView, 0, len(c.commands)),
	}
	for _, rec := range c.commands {
		cmd := rec.command()
		var output *string
		if cmd.Output != nil {
			s := *cmd.Output
			output = &s
		}
		v.Commands = append(v.Commands, CommandView{
			ID:     cmd.ID,
			Input:  cmd.Input,
			Output: output,
			Status: cmd.Status(),
		})
		if !cmd.Completed() {
			v.Pending++
		}
	}
	sort.Slice(v.Commands, func(i, j int) bool { return v.Commands[i].ID < v.Commands[j].ID })
	return v
}
