package chatterbox

import (
	"errors"
	"fmt"
)

// ErrorCode represents a categorized error type.
type ErrorCode int

const (
	ErrorUnknown ErrorCode = iota

	// Stream errors
	ErrorConnection
	ErrorDisconnected
	ErrorStreamClosed
	ErrorServer

	// Client-side errors
	ErrorSerialization
	ErrorUnknownEvent
	ErrorMalformedCommand
	ErrorInvalidConfig
	ErrorTransport
	ErrorClosed
)

// String returns the string representation of an ErrorCode.
func (e ErrorCode) String() string {
	switch e {
	case ErrorUnknown:
		return "unknown"
	case ErrorConnection:
		return "connection_error"
	case ErrorDisconnected:
		return "disconnected"
	case ErrorStreamClosed:
		return "stream_closed"
	case ErrorServer:
		return "server_error"
	case ErrorSerialization:
		return "serialization_error"
	case ErrorUnknownEvent:
		return "unknown_event"
	case ErrorMalformedCommand:
		return "malformed_command"
	case ErrorInvalidConfig:
		return "invalid_config"
	case ErrorTransport:
		return "transport_error"
	case ErrorClosed:
		return "closed"
	default:
		return fmt.Sprintf("unknown_code_%d", e)
	}
}

// ChatError is a structured error with code and context.
type ChatError struct {
	Code    ErrorCode
	Message string
	Wrapped error
}

// Error implements the error interface.
func (e *ChatError) Error() string {
	if e.Wrapped != nil {
		return fmt.Sprintf("%s: %s (wrapped: %v)", e.Code, e.Message, e.Wrapped)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the wrapped error for errors.Unwrap support.
func (e *ChatError) Unwrap() error {
	return e.Wrapped
}

// Is matches any *ChatError with the same code.
func (e *ChatError) Is(target error) bool {
	t, ok := target.(*ChatError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewError creates a new ChatError with the given code and message.
func NewError(code ErrorCode, message string) *ChatError {
	return &ChatError{
		Code:    code,
		Message: message,
	}
}

// WrapError wraps an existing error with a ChatError.
func WrapError(code ErrorCode, message string, err error) *ChatError {
	return &ChatError{
		Code:    code,
		Message: message,
		Wrapped: err,
	}
}

// Sentinels for errors.Is comparisons.
var (
	ErrMalformedCommand = NewError(ErrorMalformedCommand, "malformed command")
	ErrClosed           = NewError(ErrorClosed, "session closed")
	ErrInvalidConfig    = NewError(ErrorInvalidConfig, "invalid config")
	ErrUnknownEvent     = NewError(ErrorUnknownEvent, "unknown event")
	ErrOutboxFull       = NewError(ErrorTransport, "outbox full")
)

// ParseError reports a slash command whose arguments do not fit its verb.
type ParseError struct {
	Verb  string
	Input string
	Usage string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed /%s command %q: usage %s", e.Verb, e.Input, e.Usage)
}

// Unwrap lets errors.Is(err, ErrMalformedCommand) match.
func (e *ParseError) Unwrap() error {
	return ErrMalformedCommand
}

// IsConnectionError checks if an error is a connection-related error.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var ce *ChatError
	if !errors.As(err, &ce) {
		return false
	}
	return ce.Code == ErrorConnection || ce.Code == ErrorDisconnected || ce.Code == ErrorStreamClosed
}
