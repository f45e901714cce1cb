package generator

import (
	"errors"
	"fmt"
)

var (
	ErrTransport        = errors.New("generator transport failure")
	ErrEmptyOrMalformed = errors.New("generator returned empty or malformed quiz")
)

// Kind classifies a fetch failure.
type Kind int

const (
	KindTransport Kind = iota + 1
	KindEmptyOrMalformed
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindEmptyOrMalformed:
		return "empty_or_malformed"
	default:
		return "unknown"
	}
}

// FetchError is returned by Fetcher.Fetch for every failure.
type FetchError struct {
	Kind       Kind
	Message    string // human readable cause
	StatusCode int    // HTTP status, zero when no response was received
	Body       string // raw response body for EmptyOrMalformed
	Err        error  // underlying error, if any
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch quiz (%s): %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("fetch quiz (%s): %s", e.Kind, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is lets callers match on ErrTransport and ErrEmptyOrMalformed.
func (e *FetchError) Is(target error) bool {
	switch target {
	case ErrTransport:
		return e.Kind == KindTransport
	case ErrEmptyOrMalformed:
		return e.Kind == KindEmptyOrMalformed
	}
	return false
}

func transportError(msg string, status int, err error) *FetchError {
	return &FetchError{Kind: KindTransport, Message: msg, StatusCode: status, Err: err}
}

func malformedError(msg string, body []byte, err error) *FetchError {
	return &FetchError{Kind: KindEmptyOrMalformed, Message: msg, Body: string(body), Err: err}
}
