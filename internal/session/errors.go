package session

import "errors"

var (
	ErrConfiguration    = errors.New("session is not configured")
	ErrInvalidOperation = errors.New("operation not allowed in current phase")
	ErrInvalidChoice    = errors.New("choice index out of range")
	ErrClosed           = errors.New("session is closed")
)

// User-facing failure messages.
const (
	MsgLoadFailed  = "Failed to load questions. Check server."
	MsgNoQuestions = "No questions available."
)
