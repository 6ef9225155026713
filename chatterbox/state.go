package chatterbox

// ConnectionState represents the current state of the event stream.
type ConnectionState int

const (
	// StateConnecting means a subscription is being opened.
	StateConnecting ConnectionState = iota

	// StateReady means the stream is open and delivering events.
	StateReady

	// StateError means the stream reported a recoverable error.
	StateError

	// StateDisconnected means the stream closed; a reconnect follows.
	StateDisconnected

	// StateClosed means the session has been explicitly closed.
	StateClosed
)

// String returns the status label, also used as the indicator class.
func (s ConnectionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateError:
		return "error"
	case StateDisconnected:
		return "disconnected"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// StateEvent represents a state change event.
type StateEvent struct {
	OldState ConnectionState
	NewState ConnectionState
	Error    error // Optional error that caused the state change
}
