// Package console prints reported command output for the operator.
package console

import (
	"fmt"
	"io"
	"strings"

	"pollcmd/internal/types"

	"github.com/fatih/color"
)

// Console writes command results to the operator's terminal
type Console struct {
	out    io.Writer
	header *color.Color
	input  *color.Color
}

// New creates a console writing to out
func New(out io.Writer, colored bool) *Console {
	c := &Console{
		out:    out,
		header: color.New(color.FgCyan, color.Bold),
		input:  color.New(color.FgYellow),
	}
	if colored {
		c.header.EnableColor()
		c.input.EnableColor()
	} else {
		c.header.DisableColor()
		c.input.DisableColor()
	}
	return c
}

// CommandOutput prints one completed command
func (c *Console) CommandOutput(clientID string, cmd types.Command) {
	if !cmd.Completed() {
		return
	}
	_, _ = fmt.Fprintf(c.out, "%s %s\n%s\n",
		c.header.Sprintf("[%s #%d]", clientID, cmd.ID),
		c.input.Sprint(cmd.Input),
		strings.TrimRight(cmd.OutputString(), "\n"))
}
