package agent

import (
	"context"
	"sync"
	"testing"
	"time"

	"pollcmd/internal/agent/event"
	"pollcmd/internal/eventloop"
	"pollcmd/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeDispatcher struct {
	mu   sync.Mutex
	sent []types.ClientToServer
	err  error
}

func (f *fakeDispatcher) Send(msg types.ClientToServer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeDispatcher) messages() []types.ClientToServer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.ClientToServer(nil), f.sent...)
}

// echoRunner completes every command with "ran <input>"
type echoRunner struct {
	mu  sync.Mutex
	ran []types.Command
}

func (r *echoRunner) RunAsync(cmd types.Command, sink eventloop.Sink[event.Event]) {
	r.mu.Lock()
	r.ran = append(r.ran, cmd)
	r.mu.Unlock()

	go func() {
		cmd.SetOutput("ran " + cmd.Input)
		sink.Push(event.CommandComplete{Command: cmd})
	}()
}

func newTestAgent(t *testing.T) (*Agent, *eventloop.Queue[event.Event], *fakeDispatcher, *echoRunner) {
	q := eventloop.New[event.Event]()
	d := &fakeDispatcher{}
	r := &echoRunner{}
	return New("H1", q, d, r, zaptest.NewLogger(t)), q, d, r
}

func completed(input string, id uint64, output string) types.Command {
	cmd := types.NewCommand(input, id)
	cmd.SetOutput(output)
	return cmd
}

func TestTimerOffSendsEmptyPoll(t *testing.T) {
	a, _, d, _ := newTestAgent(t)
	assert.Equal(t, "H1", a.ID())

	a.handle(event.TimerOff{})

	sent := d.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "H1", sent[0].ID)
	assert.Empty(t, sent[0].Commands)
}

func TestTimerOffDrainsCompletedOnce(t *testing.T) {
	a, _, d, _ := newTestAgent(t)

	first := completed("whoami", 0, "root")
	second := completed("pwd", 1, "/")
	a.handle(event.CommandComplete{Command: first})
	a.handle(event.CommandComplete{Command: second})
	a.handle(event.TimerOff{})
	a.handle(event.TimerOff{})

	sent := d.messages()
	require.Len(t, sent, 2)
	assert.Equal(t, []types.Command{first, second}, sent[0].Commands)
	assert.Empty(t, sent[1].Commands)
}

func TestSendFailureDoesNotDispatch(t *testing.T) {
	a, _, d, _ := newTestAgent(t)

	a.handle(event.MessageSendFailure{SenderID: 1})
	assert.Empty(t, d.messages())
}

func TestNoSendersIsNotFatal(t *testing.T) {
	a, _, d, _ := newTestAgent(t)
	d.err = types.ErrNoSenders

	a.handle(event.CommandComplete{Command: completed("id", 0, "uid=0")})
	a.handle(event.TimerOff{})
	assert.Empty(t, d.messages())
}

func TestResponseRunsEveryCommand(t *testing.T) {
	a, q, d, r := newTestAgent(t)

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		a.Run(ctx)
		close(stopped)
	}()
	defer func() {
		cancel()
		<-stopped
	}()

	q.Push(event.MessageResponse{Message: types.NewServerToClient([]types.Command{
		types.NewCommand("whoami", 0),
		types.NewCommand("uname -a", 1),
	})})

	// Keep ticking until both results have been reported
	require.Eventually(t, func() bool {
		q.Push(event.TimerOff{})
		reported := 0
		for _, msg := range d.messages() {
			reported += len(msg.Commands)
		}
		return reported == 2
	}, 2*time.Second, 10*time.Millisecond)

	r.mu.Lock()
	assert.Len(t, r.ran, 2)
	r.mu.Unlock()

	outputs := map[uint64]string{}
	for _, msg := range d.messages() {
		for _, cmd := range msg.Commands {
			_, dup := outputs[cmd.ID]
			assert.False(t, dup, "command %d reported twice", cmd.ID)
			outputs[cmd.ID] = cmd.OutputString()
		}
	}
	assert.Equal(t, map[uint64]string{0: "ran whoami", 1: "ran uname -a"}, outputs)
}

func TestStartTimer(t *testing.T) {
	q := eventloop.New[event.Event]()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	StartTimer(ctx, 10*time.Millisecond, q)

	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	for i := 0; i < 3; i++ {
		ev, ok := q.Next(waitCtx)
		require.True(t, ok)
		assert.IsType(t, event.TimerOff{}, ev)
	}
}
