package chatterbox

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

// Session drives one room: it owns the event stream subscription, turns
// events into rendering actions, reconnects when the stream closes and
// keeps the roster fresh. All state transitions run on the Run goroutine.
type Session struct {
	id         string
	cfg        Config
	transport  Transport
	subscriber Subscriber
	renderer   Renderer
	clock      clock.Clock
	logger     Logger
	metrics    *Metrics

	outbox chan Command

	mu      sync.RWMutex
	state   ConnectionState
	nicks   []string
	onState func(StateEvent)
	onError func(error)

	runMu   sync.Mutex
	running bool
	closed  bool
	cancel  context.CancelFunc
	done    chan struct{}

	// owned by the Run goroutine
	loopCtx context.Context
	sub     Subscription
	retry   <-chan time.Time
}

// NewSession constructs a session. Use DefaultConfig() as a starting point
// and set RoomURL.
func NewSession(cfg Config, transport Transport, subscriber Subscriber, renderer Renderer) (*Session, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if transport == nil || subscriber == nil || renderer == nil {
		return nil, WrapError(ErrorInvalidConfig, "transport, subscriber and renderer are required", ErrInvalidConfig)
	}
	return &Session{
		id:         uuid.NewString(),
		cfg:        cfg,
		transport:  timeoutTransport{Transport: transport, timeout: cfg.RequestTimeout},
		subscriber: subscriber,
		renderer:   renderer,
		clock:      clock.New(),
		logger:     noopLogger{},
		outbox:     make(chan Command, 64),
		state:      StateConnecting,
	}, nil
}

// ID returns the session identifier used in logs.
func (s *Session) ID() string { return s.id }

// SetLogger overrides logger (optional).
func (s *Session) SetLogger(l Logger) {
	if l == nil {
		return
	}
	s.logger = l
}

// SetClock overrides the clock driving keepalive and reconnect delays.
func (s *Session) SetClock(c clock.Clock) {
	if c == nil {
		return
	}
	s.clock = c
}

// SetMetrics attaches collectors created by NewMetrics.
func (s *Session) SetMetrics(m *Metrics) { s.metrics = m }

// OnStateChanged registers callback for connection state changes.
func (s *Session) OnStateChanged(fn func(StateEvent)) {
	s.mu.Lock()
	s.onState = fn
	s.mu.Unlock()
}

// OnError registers callback for stream, decode and send errors.
func (s *Session) OnError(fn func(error)) {
	s.mu.Lock()
	s.onError = fn
	s.mu.Unlock()
}

// State returns the current connection state.
func (s *Session) State() ConnectionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Nicks returns the nick set from the latest names event.
func (s *Session) Nicks() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.nicks...)
}

// Complete applies nick completion to an input value.
func (s *Session) Complete(value string) (string, bool) {
	return CompleteNick(value, s.Nicks())
}

// Submit parses a line of input and queues the resulting command.
// Empty input is ignored. Malformed slash commands return a *ParseError.
func (s *Session) Submit(ctx context.Context, text string) error {
	cmd, err := ParseCommand(text)
	if err != nil || cmd == nil {
		return err
	}
	return s.Send(ctx, *cmd)
}

// Send queues a command for delivery. It never waits for the backend;
// when the outbox is full it returns ErrOutboxFull.
func (s *Session) Send(ctx context.Context, cmd Command) error {
	s.runMu.Lock()
	closed := s.closed
	s.runMu.Unlock()
	if closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if !s.enqueue(cmd) {
		return ErrOutboxFull
	}
	return nil
}

// Run connects and processes events until ctx is cancelled or Close is
// called.
func (s *Session) Run(ctx context.Context) error {
	s.runMu.Lock()
	if s.closed {
		s.runMu.Unlock()
		return ErrClosed
	}
	if s.running {
		s.runMu.Unlock()
		return NewError(ErrorUnknown, "session already running")
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.running = true
	s.cancel = cancel
	s.done = make(chan struct{})
	s.runMu.Unlock()
	defer close(s.done)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.writeLoop(runCtx)
	}()

	var keepalive <-chan time.Time
	if s.cfg.KeepaliveInterval > 0 {
		ticker := s.clock.Ticker(s.cfg.KeepaliveInterval)
		defer ticker.Stop()
		keepalive = ticker.C
	}

	s.logger.Info("session started", s.fields(map[string]any{"room": s.cfg.RoomURL}))
	s.loopCtx = runCtx
	s.connect()

	for {
		var frames <-chan Frame
		if s.sub != nil {
			frames = s.sub.Frames()
		}
		select {
		case <-runCtx.Done():
			s.dispose()
			cancel()
			wg.Wait()
			s.runMu.Lock()
			s.closed = true
			s.runMu.Unlock()
			s.setState(StateClosed, nil)
			s.logger.Info("session stopped", s.fields(nil))
			return ctx.Err()
		case f, ok := <-frames:
			if !ok {
				if runCtx.Err() == nil {
					s.handleStreamError(NewError(ErrorStreamClosed, "subscription ended"), true)
				}
				continue
			}
			s.handleFrame(f)
		case <-keepalive:
			s.enqueue(Command{Mode: ModeNames})
		case <-s.retry:
			s.retry = nil
			s.connect()
		}
	}
}

// Close stops the session, releasing the subscription and keepalive.
func (s *Session) Close() error {
	s.runMu.Lock()
	s.closed = true
	cancel, done, running := s.cancel, s.done, s.running
	s.runMu.Unlock()
	if !running {
		return nil
	}
	cancel()
	<-done
	return nil
}

func (s *Session) handleFrame(f Frame) {
	kind, err := dispatch(s, f)
	if errors.Is(err, ErrUnknownEvent) {
		s.logger.Debug("unknown event ignored", s.fields(map[string]any{"event": f.Name}))
		return
	}
	if err != nil {
		s.logger.Warn("event dropped", s.fields(map[string]any{"event": f.Name, "error": err.Error()}))
		s.fireError(err)
		s.setState(StateError, err)
		return
	}
	s.metrics.observeEvent(kind)
}

// connect replaces any current subscription with a new one.
func (s *Session) connect() {
	s.dispose()
	s.setState(StateConnecting, nil)
	sub, err := s.subscriber.Subscribe(s.loopCtx, s.cfg.streamURL())
	if err != nil {
		s.logger.Error("subscribe failed", s.fields(map[string]any{"error": err.Error()}))
		s.fireError(err)
		s.setState(StateError, err)
		return
	}
	s.sub = sub
}

func (s *Session) dispose() {
	if s.sub == nil {
		return
	}
	_ = s.sub.Close()
	s.sub = nil
}

func (s *Session) handleOpen() {
	s.setState(StateReady, nil)
	s.enqueue(Command{Mode: ModeNames})
	s.enqueue(Command{Mode: ModeTopic})
}

func (s *Session) handleStreamError(err error, closed bool) {
	s.fireError(err)
	if !closed {
		s.setState(StateError, err)
		return
	}
	s.setState(StateDisconnected, err)
	s.dispose()
	s.metrics.observeReconnect()
	s.logger.Warn("stream closed, reconnecting", s.fields(map[string]any{
		"error": err.Error(),
		"delay": s.cfg.ReconnectDelay.String(),
	}))
	if s.cfg.ReconnectDelay > 0 {
		s.retry = s.clock.After(s.cfg.ReconnectDelay)
		return
	}
	s.connect()
}

func (s *Session) handleEntry(ev Event, kind TemplateKind) {
	s.renderer.AppendEntry(ev, kind)
}

func (s *Session) handleJoin(ev Event) {
	s.enqueue(Command{Mode: ModeNames})
	s.renderer.AppendEntry(ev, TemplateJoin)
}

func (s *Session) handleNick(ev Event) {
	s.enqueue(Command{Mode: ModeNames})
	s.renderer.AppendEntry(ev, TemplateNick)
}

func (s *Session) handleTopic(ev Event) {
	s.renderer.RenderTopic(ev.Message)
}

func (s *Session) handleNames(ev Event) {
	nicks := append([]string(nil), ev.Names...)
	s.mu.Lock()
	s.nicks = nicks
	s.mu.Unlock()
	s.renderer.RenderNickList(nicks)
}

// enqueue hands cmd to the writer without waiting. When the outbox is
// full, as with a hung backend, the command is dropped.
func (s *Session) enqueue(cmd Command) bool {
	select {
	case s.outbox <- cmd:
		return true
	default:
		s.metrics.observeDropped(cmd.Mode)
		s.logger.Warn("outbox full, command dropped", s.fields(map[string]any{"mode": string(cmd.Mode)}))
		return false
	}
}

func (s *Session) writeLoop(ctx context.Context) {
	for {
		select {
		case cmd := <-s.outbox:
			err := s.transport.Send(ctx, cmd)
			s.metrics.observeCommand(cmd.Mode, err)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Warn("send failed", s.fields(map[string]any{"mode": string(cmd.Mode), "error": err.Error()}))
				continue
			}
			s.logger.Debug("command sent", s.fields(map[string]any{"mode": string(cmd.Mode)}))
		case <-ctx.Done():
			return
		}
	}
}

func (s *Session) setState(next ConnectionState, err error) {
	s.mu.Lock()
	old := s.state
	if old == next {
		s.mu.Unlock()
		return
	}
	s.state = next
	fn := s.onState
	s.mu.Unlock()

	s.metrics.observeState(old, next)
	s.logger.Debug("state changed", s.fields(map[string]any{"from": old.String(), "to": next.String()}))
	if fn != nil {
		fn(StateEvent{OldState: old, NewState: next, Error: err})
	}
}

func (s *Session) fireError(err error) {
	s.mu.RLock()
	fn := s.onError
	s.mu.RUnlock()
	if fn != nil && err != nil {
		fn(err)
	}
}

func (s *Session) fields(extra map[string]any) map[string]any {
	f := map[string]any{"session": s.id}
	for k, v := range extra {
		f[k] = v
	}
	return f
}
