package chatterbox

import (
	"encoding/json"
	"net/url"
)

// Mode selects how the backend treats a posted command.
type Mode string

const (
	ModeMessage Mode = "message"
	ModeAction  Mode = "action"
	ModeNick    Mode = "nick"
	ModeNames   Mode = "names"
	ModeMsg     Mode = "msg"
	ModeTopic   Mode = "topic"
)

// Command is one outbound action built from a line of input.
type Command struct {
	Mode    Mode
	Message string
	Extras  map[string]string
}

// Form encodes the command as form fields. Extras never override
// mode or message.
func (c Command) Form() url.Values {
	form := url.Values{}
	for k, v := range c.Extras {
		form.Set(k, v)
	}
	form.Set("message", c.Message)
	form.Set("mode", string(c.Mode))
	return form
}

// EventKind is the closed set of events a session reacts to.
type EventKind int

const (
	EventOpen EventKind = iota
	EventError
	EventAction
	EventMessage
	EventNote
	EventJoin
	EventNick
	EventMsg
	EventTopic
	EventNames
)

var eventKindNames = [...]string{
	EventOpen:    "open",
	EventError:   "error",
	EventAction:  "action",
	EventMessage: "message",
	EventNote:    "note",
	EventJoin:    "join",
	EventNick:    "nick",
	EventMsg:     "msg",
	EventTopic:   "topic",
	EventNames:   "names",
}

// String returns the wire name of the kind.
func (k EventKind) String() string {
	if k < 0 || int(k) >= len(eventKindNames) {
		return "unknown"
	}
	return eventKindNames[k]
}

// ParseEventKind maps a wire event name to its kind.
func ParseEventKind(name string) (EventKind, bool) {
	for i, n := range eventKindNames {
		if n == name {
			return EventKind(i), true
		}
	}
	return 0, false
}

// Event is one decoded inbound event.
type Event struct {
	Kind    EventKind
	When    string
	Sender  string
	Message string
	Names   []string
	Target  string
}

// Frame is a raw event as delivered by a subscription.
type Frame struct {
	Name string
	Data []byte
	// Err is set on error frames. Closed reports that the underlying
	// stream is gone and nothing more will arrive on it.
	Err    error
	Closed bool
}

type payload struct {
	When    string          `json:"when,omitempty"`
	Sender  string          `json:"sender,omitempty"`
	Message json.RawMessage `json:"message"`
	Target  string          `json:"target,omitempty"`
}

// DecodeEvent turns a named frame payload into an Event. Open frames carry
// no payload. Names outside EventKind return an error matching
// ErrUnknownEvent.
func DecodeEvent(name string, data []byte) (Event, error) {
	kind, ok := ParseEventKind(name)
	if !ok {
		return Event{}, NewError(ErrorUnknownEvent, "unknown event "+name)
	}
	ev := Event{Kind: kind}
	if kind == EventOpen || len(data) == 0 {
		return ev, nil
	}

	var p payload
	if err := json.Unmarshal(data, &p); err != nil {
		return Event{}, WrapError(ErrorSerialization, "failed to unmarshal "+name+" event", err)
	}
	ev.When = p.When
	ev.Sender = p.Sender
	ev.Target = p.Target
	if len(p.Message) == 0 || string(p.Message) == "null" {
		return ev, nil
	}
	if kind == EventNames {
		if err := json.Unmarshal(p.Message, &ev.Names); err != nil {
			return Event{}, WrapError(ErrorSerialization, "names event message is not a list", err)
		}
		if ev.Names == nil {
			ev.Names = []string{}
		}
		return ev, nil
	}
	if err := json.Unmarshal(p.Message, &ev.Message); err != nil {
		return Event{}, WrapError(ErrorSerialization, name+" event message is not a string", err)
	}
	return ev, nil
}
