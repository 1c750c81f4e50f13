package types

import "errors"

var (
	ErrClientNotFound = errors.New("client not found")
	ErrEmptyCommand   = errors.New("command line is empty")
	ErrNoSenders      = errors.New("no senders registered")
)
