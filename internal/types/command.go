package types

// Command represents one shell instruction and its eventual captured result
type Command struct {
	Input  string  `json:"input"`
	Output *string `json:"output"`
	ID     uint64  `json:"id"`
}

// NewCommand creates a pending command
func NewCommand(input string, id uint64) Command {
	return Command{Input: input, ID: id}
}

// SetOutput attaches the captured result
func (c *Command) SetOutput(output string) {
	c.Output = &output
}

// Completed reports whether output has been attached
func (c Command) Completed() bool {
	return c.Output != nil
}

// OutputString returns the output or an empty string while pending
func (c Command) OutputString() string {
	if c.Output == nil {
		return ""
	}
	return *c.Output
}

// CommandStatus represents command lifecycle state
type CommandStatus string

const (
	CommandStatusPending  CommandStatus = "pending"
	CommandStatusComplete CommandStatus = "complete"
)

// Status derives the lifecycle state from the output
func (c Command) Status() CommandStatus {
	if c.Completed() {
		return CommandStatusComplete
	}
	return CommandStatusPending
}

// ClientToServer is the envelope an agent sends on every poll
type ClientToServer struct {
	Commands []Command `json:"commands"`
	ID       string    `json:"id"`
}

// NewClientToServer wraps completed commands for the given agent identity
func NewClientToServer(id string, commands []Command) ClientToServer {
	return ClientToServer{ID: id, Commands: commands}
}

// ServerToClient is the envelope a controller sends in reply to a poll
type ServerToClient struct {
	Commands []Command `json:"commands"`
}

// NewServerToClient wraps commands still owed to an agent
func NewServerToClient(commands []Command) ServerToClient {
	return ServerToClient{Commands: commands}
}
