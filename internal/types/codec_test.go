package types

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

// TestEnvelopeRoundTrip tests that decoding an encoded envelope yields the same message
func TestEnvelopeRoundTrip(t *testing.T) {
	t.Run("ClientToServer", func(t *testing.T) {
		msgs := []ClientToServer{
			{ID: "H1", Commands: []Command{}},
			{ID: "H1", Commands: []Command{{Input: "whoami", Output: strPtr("root\n"), ID: 0}}},
			{ID: "", Commands: []Command{
				{Input: "ls -a", Output: nil, ID: 3},
				{Input: "pwd", Output: strPtr(""), ID: 7},
			}},
		}
		for _, msg := range msgs {
			data, err := Encode(msg)
			require.NoError(t, err)

			got, err := DecodeClientToServer(data)
			require.NoError(t, err)
			assert.Equal(t, msg, got)
		}
	})

	t.Run("ServerToClient", func(t *testing.T) {
		msgs := []ServerToClient{
			{Commands: []Command{}},
			{Commands: []Command{{Input: "whoami", ID: 0}}},
			{Commands: []Command{{Input: "uname -a", ID: 1}, {Input: "id", Output: strPtr("uid=0"), ID: 2}}},
		}
		for _, msg := range msgs {
			data, err := Encode(msg)
			require.NoError(t, err)

			got, err := DecodeServerToClient(data)
			require.NoError(t, err)
			assert.Equal(t, msg, got)
		}
	})
}

func TestEncodeWireFormat(t *testing.T) {
	data, err := Encode(NewClientToServer("H1", nil))
	require.NoError(t, err)
	assert.JSONEq(t, `{"commands":[],"id":"H1"}`, string(data))

	data, err = Encode(NewServerToClient([]Command{NewCommand("whoami", 0)}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"commands":[{"input":"whoami","output":null,"id":0}]}`, string(data))
}

func TestDecodeErrors(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
		kind DecodeErrorKind
	}{
		{"invalid utf-8", []byte{0xff, 0xfe, 0xfd}, DecodeErrorText},
		{"not json", []byte("hello"), DecodeErrorStructure},
		{"wrong shape", []byte(`{"commands":"nope","id":"H1"}`), DecodeErrorStructure},
		{"negative id", []byte(`{"commands":[{"input":"ls","output":null,"id":-1}],"id":"H1"}`), DecodeErrorStructure},
		{"truncated", []byte(`{"commands":[{"input":"ls"`), DecodeErrorStructure},
		{"null envelope", []byte(`null`), DecodeErrorStructure},
		{"empty object", []byte(`{}`), DecodeErrorStructure},
		{"missing id", []byte(`{"commands":[]}`), DecodeErrorStructure},
		{"missing commands", []byte(`{"id":"H1"}`), DecodeErrorStructure},
		{"null commands", []byte(`{"commands":null,"id":"H1"}`), DecodeErrorStructure},
		{"null id", []byte(`{"commands":[],"id":null}`), DecodeErrorStructure},
		{"command missing input and id", []byte(`{"commands":[{"output":null}],"id":"H1"}`), DecodeErrorStructure},
		{"command missing id", []byte(`{"commands":[{"input":"ls","output":null}],"id":"H1"}`), DecodeErrorStructure},
		{"command is null", []byte(`{"commands":[null],"id":"H1"}`), DecodeErrorStructure},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeClientToServer(tc.data)
			require.Error(t, err)

			var decodeErr *DecodeError
			require.True(t, errors.As(err, &decodeErr))
			assert.Equal(t, tc.kind, decodeErr.Kind)
		})
	}
}

func TestDecodeServerToClientRequiresCommands(t *testing.T) {
	for _, data := range []string{`null`, `{}`, `{"commands":[{"id":1}]}`} {
		_, err := DecodeServerToClient([]byte(data))
		var decodeErr *DecodeError
		require.True(t, errors.As(err, &decodeErr), data)
		assert.Equal(t, DecodeErrorStructure, decodeErr.Kind, data)
	}
}

func TestDecodeAllowsAbsentOutput(t *testing.T) {
	msg, err := DecodeClientToServer([]byte(`{"commands":[{"input":"ls","id":2}],"id":"H1"}`))
	require.NoError(t, err)
	require.Len(t, msg.Commands, 1)
	assert.Nil(t, msg.Commands[0].Output)
	assert.Equal(t, uint64(2), msg.Commands[0].ID)

	msg, err = DecodeClientToServer([]byte(`{"commands":[],"id":""}`))
	require.NoError(t, err)
	assert.Equal(t, "", msg.ID)
	assert.NotNil(t, msg.Commands)
}

func TestDecodeToleratesUnknownFields(t *testing.T) {
	msg, err := DecodeServerToClient([]byte(`{"commands":[{"input":"id","output":null,"id":4,"extra":true}],"version":2}`))
	require.NoError(t, err)
	require.Len(t, msg.Commands, 1)
	assert.Equal(t, uint64(4), msg.Commands[0].ID)
	assert.False(t, msg.Commands[0].Completed())
}

func TestCommandLifecycle(t *testing.T) {
	cmd := NewCommand("whoami", 2)
	assert.False(t, cmd.Completed())
	assert.Equal(t, CommandStatusPending, cmd.Status())
	assert.Equal(t, "", cmd.OutputString())

	cmd.SetOutput("root")
	assert.True(t, cmd.Completed())
	assert.Equal(t, CommandStatusComplete, cmd.Status())
	assert.Equal(t, "root", cmd.OutputString())
}
