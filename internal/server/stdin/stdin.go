// Package stdin feeds operator input lines to the controller.
package stdin

import (
	"bufio"
	"errors"
	"io"

	"pollcmd/internal/eventloop"
	"pollcmd/internal/server/event"

	"go.uber.org/zap"
)

// ReadLines pushes one NewCommand per line read from r, newline included.
// It returns when r is exhausted or fails.
func ReadLines(r io.Reader, sink eventloop.Sink[event.Event], logger *zap.Logger) {
	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			sink.Push(event.NewCommand{Line: line})
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				logger.Error("Could not read from stdin", zap.Error(err))
			} else {
				logger.Debug("Input closed")
			}
			return
		}
	}
}

// Start runs ReadLines on its own goroutine
func Start(r io.Reader, sink eventloop.Sink[event.Event], logger *zap.Logger) {
	go ReadLines(r, sink, logger)
}
