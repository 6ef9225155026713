package chatterbox

import (
	"errors"
	"reflect"
	"testing"
)

type recordingHandler struct {
	calls   []string
	entries []TemplateKind
	events  []Event
	errs    []error
	closed  []bool
}

func (h *recordingHandler) handleOpen() { h.calls = append(h.calls, "open") }
func (h *recordingHandler) handleStreamError(err error, closed bool) {
	h.calls = append(h.calls, "error")
	h.errs = append(h.errs, err)
	h.closed = append(h.closed, closed)
}
func (h *recordingHandler) handleEntry(ev Event, kind TemplateKind) {
	h.calls = append(h.calls, "entry")
	h.entries = append(h.entries, kind)
	h.events = append(h.events, ev)
}
func (h *recordingHandler) handleJoin(ev Event) {
	h.calls = append(h.calls, "join")
	h.events = append(h.events, ev)
}
func (h *recordingHandler) handleNick(ev Event) {
	h.calls = append(h.calls, "nick")
	h.events = append(h.events, ev)
}
func (h *recordingHandler) handleTopic(ev Event) {
	h.calls = append(h.calls, "topic")
	h.events = append(h.events, ev)
}
func (h *recordingHandler) handleNames(ev Event) {
	h.calls = append(h.calls, "names")
	h.events = append(h.events, ev)
}

func TestDispatchEveryKind(t *testing.T) {
	for i := range eventKindNames {
		kind := EventKind(i)
		var h recordingHandler
		data := []byte(`{"message":"x"}`)
		if kind == EventNames {
			data = []byte(`{"message":["x"]}`)
		}
		got, err := dispatch(&h, Frame{Name: kind.String(), Data: data})
		if err != nil {
			t.Fatalf("kind %s: unexpected error %v", kind, err)
		}
		if got != kind {
			t.Fatalf("kind %s: dispatch reported %s", kind, got)
		}
		if len(h.calls) != 1 {
			t.Fatalf("kind %s: expected one handler call, got %v", kind, h.calls)
		}
	}
}

func TestDispatchEntries(t *testing.T) {
	var h recordingHandler
	frames := []Frame{
		{Name: "action", Data: []byte(`{"sender":"bob","message":"waves"}`)},
		{Name: "message", Data: []byte(`{"sender":"bob","message":"hi"}`)},
		{Name: "note", Data: []byte(`{"message":"heads up"}`)},
		{Name: "msg", Data: []byte(`{"sender":"bob","target":"alice","message":"psst"}`)},
	}
	for _, f := range frames {
		if _, err := dispatch(&h, f); err != nil {
			t.Fatalf("dispatch %s: %v", f.Name, err)
		}
	}
	want := []TemplateKind{TemplateAction, TemplateMessage, TemplateNote, TemplateMsg}
	if !reflect.DeepEqual(h.entries, want) {
		t.Fatalf("unexpected templates: %v", h.entries)
	}
	if h.events[3].Target != "alice" || h.events[3].Sender != "bob" {
		t.Fatalf("unexpected msg event: %+v", h.events[3])
	}
}

func TestDispatchNames(t *testing.T) {
	var h recordingHandler
	if _, err := dispatch(&h, Frame{Name: "names", Data: []byte(`{"message":["x","y","z"]}`)}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !reflect.DeepEqual(h.events[0].Names, []string{"x", "y", "z"}) {
		t.Fatalf("unexpected names: %v", h.events[0].Names)
	}
}

func TestDispatchStreamError(t *testing.T) {
	var h recordingHandler
	cause := errors.New("eof")
	if _, err := dispatch(&h, Frame{Name: "error", Err: cause, Closed: true}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if _, err := dispatch(&h, Frame{Name: "error", Data: []byte(`{"message":"overloaded"}`)}); err != nil {
		t.Fatalf("dispatch: %v", err)
	}
	if !reflect.DeepEqual(h.closed, []bool{true, false}) {
		t.Fatalf("unexpected closed flags: %v", h.closed)
	}
	if !errors.Is(h.errs[0], cause) {
		t.Fatalf("expected stream cause, got %v", h.errs[0])
	}
	var ce *ChatError
	if !errors.As(h.errs[1], &ce) || ce.Code != ErrorServer || ce.Message != "overloaded" {
		t.Fatalf("unexpected server error: %v", h.errs[1])
	}
}

func TestDispatchDecodeErrors(t *testing.T) {
	var h recordingHandler
	bad := []Frame{
		{Name: "message", Data: []byte(`{not json`)},
		{Name: "names", Data: []byte(`{"message":"not-a-list"}`)},
		{Name: "message", Data: []byte(`{"message":["list"]}`)},
	}
	for _, f := range bad {
		_, err := dispatch(&h, f)
		var ce *ChatError
		if !errors.As(err, &ce) || ce.Code != ErrorSerialization {
			t.Fatalf("frame %s %s: expected serialization error, got %v", f.Name, f.Data, err)
		}
	}
	if len(h.calls) != 0 {
		t.Fatalf("handlers must not run on decode errors: %v", h.calls)
	}
}

func TestDispatchUnknownEvent(t *testing.T) {
	var h recordingHandler
	_, err := dispatch(&h, Frame{Name: "alert", Data: []byte(`{"sender":"Notice","message":"Nick in use!"}`)})
	if !errors.Is(err, ErrUnknownEvent) {
		t.Fatalf("expected unknown event error, got %v", err)
	}
	if errors.Is(err, NewError(ErrorSerialization, "")) {
		t.Fatalf("unknown event must not be a serialization error")
	}
	if len(h.calls) != 0 {
		t.Fatalf("handlers must not run on unknown events: %v", h.calls)
	}
}
