package chatterbox

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/coder/websocket"

	"github.com/vovakirdan/chatterbox-sdk/chatterbox-sdk-go/chatterbox/internal"
)

// Subscriber opens event stream subscriptions.
type Subscriber interface {
	// Subscribe starts a subscription and returns without waiting for the
	// stream. It delivers an "open" frame once connected and ends with a
	// Closed error frame if the stream goes away.
	Subscribe(ctx context.Context, streamURL string) (Subscription, error)
}

// Subscription is one live event stream. Close releases it and waits for
// its reader to exit; no frame is delivered after Close returns.
type Subscription interface {
	Frames() <-chan Frame
	Close() error
}

// NewSubscriber picks the subscriber for the stream URL scheme.
func NewSubscriber(streamURL string, client *http.Client) (Subscriber, error) {
	u, err := url.Parse(streamURL)
	if err != nil {
		return nil, WrapError(ErrorInvalidConfig, "parse stream URL", err)
	}
	switch u.Scheme {
	case "http", "https":
		return &SSESubscriber{Client: client}, nil
	case "ws", "wss":
		return &WebSocketSubscriber{Client: client}, nil
	default:
		return nil, NewError(ErrorInvalidConfig, fmt.Sprintf("unsupported stream scheme %q", u.Scheme))
	}
}

type subscription struct {
	frames chan Frame
	cancel context.CancelFunc
	done   chan struct{}
}

func startSubscription(ctx context.Context, run func(ctx context.Context, s *subscription)) *subscription {
	ctx, cancel := context.WithCancel(ctx)
	s := &subscription{
		frames: make(chan Frame, 16),
		cancel: cancel,
		done:   make(chan struct{}),
	}
	go func() {
		defer close(s.done)
		defer close(s.frames)
		run(ctx, s)
	}()
	return s
}

func (s *subscription) Frames() <-chan Frame { return s.frames }

func (s *subscription) Close() error {
	s.cancel()
	<-s.done
	return nil
}

func (s *subscription) emit(ctx context.Context, f Frame) bool {
	select {
	case s.frames <- f:
		return true
	case <-ctx.Done():
		return false
	}
}

func (s *subscription) closed(ctx context.Context, err error) {
	if ctx.Err() != nil {
		return
	}
	if err == nil {
		err = io.EOF
	}
	s.emit(ctx, Frame{Name: EventError.String(), Err: err, Closed: true})
}

// SSESubscriber reads a text/event-stream over HTTP.
type SSESubscriber struct {
	// Client must not set a Timeout; the stream is long-lived.
	Client *http.Client
}

func (sub *SSESubscriber) Subscribe(ctx context.Context, streamURL string) (Subscription, error) {
	client := sub.Client
	if client == nil {
		client = &http.Client{}
	}
	req, err := http.NewRequest(http.MethodGet, streamURL, http.NoBody)
	if err != nil {
		return nil, WrapError(ErrorInvalidConfig, "create stream request", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	return startSubscription(ctx, func(ctx context.Context, s *subscription) {
		resp, err := client.Do(req.WithContext(ctx))
		if err != nil {
			s.closed(ctx, WrapError(ErrorConnection, "open event stream", err))
			return
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			s.closed(ctx, NewError(ErrorConnection, "event stream status "+resp.Status))
			return
		}
		if !s.emit(ctx, Frame{Name: EventOpen.String()}) {
			return
		}
		err = internal.ReadEvents(resp.Body, func(name string, data []byte) bool {
			return s.emit(ctx, Frame{Name: name, Data: data})
		})
		s.closed(ctx, WrapError(ErrorStreamClosed, "event stream ended", err))
	}), nil
}

// WebSocketSubscriber reads {"event","data"} JSON frames over a WebSocket.
type WebSocketSubscriber struct {
	Client           *http.Client
	HandshakeTimeout time.Duration
	ReadTimeout      time.Duration
}

func (sub *WebSocketSubscriber) Subscribe(ctx context.Context, streamURL string) (Subscription, error) {
	if _, err := url.Parse(streamURL); err != nil {
		return nil, WrapError(ErrorInvalidConfig, "parse stream URL", err)
	}

	return startSubscription(ctx, func(ctx context.Context, s *subscription) {
		dialCtx := ctx
		if sub.HandshakeTimeout > 0 {
			var cancel context.CancelFunc
			dialCtx, cancel = context.WithTimeout(ctx, sub.HandshakeTimeout)
			defer cancel()
		}
		ws, _, err := websocket.Dial(dialCtx, streamURL, &websocket.DialOptions{HTTPClient: sub.Client})
		if err != nil {
			s.closed(ctx, WrapError(ErrorConnection, "dial event stream", err))
			return
		}
		conn := internal.NewConn(ws, sub.ReadTimeout)
		defer func() { _ = conn.Close(websocket.StatusNormalClosure, "client close") }()

		if !s.emit(ctx, Frame{Name: EventOpen.String()}) {
			return
		}
		for {
			f, err := conn.Read(ctx)
			if err != nil {
				s.closed(ctx, WrapError(ErrorStreamClosed, "event stream ended", err))
				return
			}
			if !s.emit(ctx, Frame{Name: f.Event, Data: f.Data}) {
				return
			}
		}
	}), nil
}
