// Package executor runs received command lines as local processes.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"pollcmd/internal/agent/event"
	"pollcmd/internal/eventloop"
	"pollcmd/internal/types"

	"go.uber.org/zap"
)

// Parse splits a command line on single spaces into the program and its arguments.
// It reports false when the program token is empty.
func Parse(line string) (string, []string, bool) {
	parts := strings.Split(line, " ")
	if parts[0] == "" {
		return "", nil, false
	}
	return parts[0], parts[1:], true
}

// Executor runs commands and captures their status and output
type Executor struct {
	timeout time.Duration
	logger  *zap.Logger
}

// New creates an executor; timeout of zero means commands run unbounded
func New(timeout time.Duration, logger *zap.Logger) *Executor {
	return &Executor{
		timeout: timeout,
		logger:  logger,
	}
}

// Run executes cmd and returns it with the captured result attached.
// Failures to spawn or nonzero exits are reported in the output text.
func (e *Executor) Run(ctx context.Context, cmd types.Command) types.Command {
	e.logger.Info("Running command",
		zap.Uint64("command_id", cmd.ID),
		zap.String("input", cmd.Input))

	name, args, ok := Parse(cmd.Input)
	if !ok {
		cmd.SetOutput("")
		return cmd
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	proc := exec.CommandContext(ctx, name, args...)
	proc.Stdout = &stdout
	proc.Stderr = &stderr

	err := proc.Run()
	if proc.ProcessState == nil {
		cmd.SetOutput(fmt.Sprintf("status: command failed! %v", err))
		return cmd
	}

	cmd.SetOutput(fmt.Sprintf("status: %s \n %s %s",
		proc.ProcessState.String(),
		strings.ToValidUTF8(stdout.String(), "�"),
		strings.ToValidUTF8(stderr.String(), "�")))
	return cmd
}

// RunAsync runs cmd on its own goroutine and pushes one CommandComplete when done
func (e *Executor) RunAsync(cmd types.Command, sink eventloop.Sink[event.Event]) {
	go func() {
		done := e.Run(context.Background(), cmd)
		sink.Push(event.CommandComplete{Command: done})
	}()
}
