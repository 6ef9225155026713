package chatterbox

import (
	"encoding/json"
	"fmt"
)

// handler reacts to decoded events, one method per event family.
type handler interface {
	handleOpen()
	handleStreamError(err error, closed bool)
	handleEntry(ev Event, kind TemplateKind)
	handleJoin(ev Event)
	handleNick(ev Event)
	handleTopic(ev Event)
	handleNames(ev Event)
}

// dispatch decodes f, routes it to h and returns the kind handled.
// Every EventKind has a case; a kind without one is an error.
func dispatch(h handler, f Frame) (EventKind, error) {
	if f.Err != nil {
		h.handleStreamError(f.Err, f.Closed)
		return EventError, nil
	}

	ev, err := DecodeEvent(f.Name, f.Data)
	if err != nil {
		return 0, err
	}

	switch ev.Kind {
	case EventOpen:
		h.handleOpen()
	case EventError:
		h.handleStreamError(serverError(f.Data), f.Closed)
	case EventAction:
		h.handleEntry(ev, TemplateAction)
	case EventMessage:
		h.handleEntry(ev, TemplateMessage)
	case EventNote:
		h.handleEntry(ev, TemplateNote)
	case EventJoin:
		h.handleJoin(ev)
	case EventNick:
		h.handleNick(ev)
	case EventMsg:
		h.handleEntry(ev, TemplateMsg)
	case EventTopic:
		h.handleTopic(ev)
	case EventNames:
		h.handleNames(ev)
	default:
		return ev.Kind, NewError(ErrorUnknown, fmt.Sprintf("no handler for event kind %d", ev.Kind))
	}
	return ev.Kind, nil
}

// serverError describes an error event pushed by the server.
func serverError(data []byte) error {
	var p struct {
		Message string `json:"message"`
	}
	if len(data) > 0 && json.Unmarshal(data, &p) == nil && p.Message != "" {
		return NewError(ErrorServer, p.Message)
	}
	return NewError(ErrorServer, "server reported an error")
}
