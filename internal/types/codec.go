package types

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Envelope is any top-level message carried on the wire
type Envelope interface {
	ClientToServer | ServerToClient
}

// DecodeErrorKind distinguishes the layer at which decoding failed
type DecodeErrorKind int

const (
	// DecodeErrorText means the payload is not valid UTF-8 text
	DecodeErrorText DecodeErrorKind = iota + 1
	// DecodeErrorStructure means the text is not a valid envelope
	DecodeErrorStructure
)

// String returns the kind name
func (k DecodeErrorKind) String() string {
	switch k {
	case DecodeErrorText:
		return "text"
	case DecodeErrorStructure:
		return "structure"
	default:
		return "unknown"
	}
}

// DecodeError is returned when an inbound payload cannot be decoded
type DecodeError struct {
	Kind DecodeErrorKind
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Kind, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Encode serializes an envelope to its JSON wire form
func Encode[T Envelope](msg T) ([]byte, error) {
	// Empty command lists go out as [] rather than null
	switch m := any(&msg).(type) {
	case *ClientToServer:
		if m.Commands == nil {
			m.Commands = []Command{}
		}
	case *ServerToClient:
		if m.Commands == nil {
			m.Commands = []Command{}
		}
	}

	data, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode message: %w", err)
	}
	return data, nil
}

// wireCommand mirrors Command with every field optional so that absent
// required fields can be told apart from zero values
type wireCommand struct {
	Input  *string `json:"input"`
	Output *string `json:"output"`
	ID     *uint64 `json:"id"`
}

type wireClientToServer struct {
	Commands *[]*wireCommand `json:"commands"`
	ID       *string         `json:"id"`
}

type wireServerToClient struct {
	Commands *[]*wireCommand `json:"commands"`
}

// DecodeClientToServer parses an agent poll. Every field except a
// command's output is required.
func DecodeClientToServer(data []byte) (ClientToServer, error) {
	var wire wireClientToServer
	if err := decode(data, &wire); err != nil {
		return ClientToServer{}, err
	}
	if wire.ID == nil {
		return ClientToServer{}, missingField("id")
	}
	cmds, err := commandsFromWire(wire.Commands)
	if err != nil {
		return ClientToServer{}, err
	}
	return ClientToServer{Commands: cmds, ID: *wire.ID}, nil
}

// DecodeServerToClient parses a controller reply
func DecodeServerToClient(data []byte) (ServerToClient, error) {
	var wire wireServerToClient
	if err := decode(data, &wire); err != nil {
		return ServerToClient{}, err
	}
	cmds, err := commandsFromWire(wire.Commands)
	if err != nil {
		return ServerToClient{}, err
	}
	return ServerToClient{Commands: cmds}, nil
}

func commandsFromWire(wire *[]*wireCommand) ([]Command, error) {
	if wire == nil {
		return nil, missingField("commands")
	}
	cmds := make([]Command, 0, len(*wire))
	for i, wc := range *wire {
		switch {
		case wc == nil:
			return nil, &DecodeError{Kind: DecodeErrorStructure, Err: fmt.Errorf("commands[%d] is null", i)}
		case wc.Input == nil:
			return nil, missingField(fmt.Sprintf("commands[%d].input", i))
		case wc.ID == nil:
			return nil, missingField(fmt.Sprintf("commands[%d].id", i))
		}
		cmds = append(cmds, Command{Input: *wc.Input, Output: wc.Output, ID: *wc.ID})
	}
	return cmds, nil
}

func missingField(name string) *DecodeError {
	return &DecodeError{Kind: DecodeErrorStructure, Err: fmt.Errorf("missing field %q", name)}
}

func decode(data []byte, v any) error {
	if !utf8.Valid(data) {
		return &DecodeError{Kind: DecodeErrorText, Err: fmt.Errorf("payload of %d bytes is not valid utf-8", len(data))}
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &DecodeError{Kind: DecodeErrorStructure, Err: err}
	}
	return nil
}
