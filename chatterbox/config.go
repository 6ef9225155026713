package chatterbox

import "time"

// Config controls how a session talks to its room.
type Config struct {
	// RoomURL is where commands are posted, and the event stream unless
	// StreamURL is set.
	RoomURL string
	// StreamURL overrides the stream endpoint; a ws:// or wss:// URL
	// selects the WebSocket subscriber.
	StreamURL string
	// CSRFToken is sent as X-CSRFToken when the cookie jar has no
	// csrftoken cookie for the room.
	CSRFToken string

	KeepaliveInterval time.Duration
	ReconnectDelay    time.Duration // 0 reconnects immediately
	RequestTimeout    time.Duration
	MaxLogEntries     int
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		KeepaliveInterval: 30 * time.Second,
		RequestTimeout:    10 * time.Second,
		MaxLogEntries:     1000,
	}
}

func (c Config) streamURL() string {
	if c.StreamURL != "" {
		return c.StreamURL
	}
	return c.RoomURL
}

func (c Config) validate() error {
	if c.RoomURL == "" {
		return WrapError(ErrorInvalidConfig, "empty room URL", ErrInvalidConfig)
	}
	if c.KeepaliveInterval < 0 || c.ReconnectDelay < 0 {
		return WrapError(ErrorInvalidConfig, "negative interval", ErrInvalidConfig)
	}
	return nil
}
