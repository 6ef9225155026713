package chatterbox

import (
	"errors"
	"reflect"
	"testing"
)

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		mode    Mode
		message string
		extras  map[string]string
	}{
		{in: "hello world", mode: ModeMessage, message: "hello world"},
		{in: "  leading space", mode: ModeMessage, message: "  leading space"},
		{in: "/", mode: ModeMessage, message: "/"},
		{in: "/ spaced", mode: ModeMessage, message: "/ spaced"},
		{in: "/me dances", mode: ModeAction, message: "dances"},
		{in: "/me's", mode: ModeAction, message: "'s"},
		{in: "/nick Bob extra", mode: ModeNick, message: "Bob"},
		{in: "/names", mode: ModeNames, message: ""},
		{in: "/names ignored text", mode: ModeNames, message: ""},
		{in: "/msg alice hello there", mode: ModeMsg, message: "hello there", extras: map[string]string{"target": "alice"}},
		{in: "/msg jean-luc engage", mode: ModeMsg, message: "engage", extras: map[string]string{"target": "jean-luc"}},
		{in: "/topic", mode: ModeTopic, message: ""},
		{in: "/topic New Topic", mode: ModeTopic, message: "New Topic"},
		{in: "/dance wildly", mode: ModeMessage, message: "/dance wildly"},
	}

	for _, tt := range tests {
		cmd, err := ParseCommand(tt.in)
		if err != nil {
			t.Fatalf("ParseCommand(%q): unexpected error %v", tt.in, err)
		}
		if cmd == nil {
			t.Fatalf("ParseCommand(%q): expected command", tt.in)
		}
		if cmd.Mode != tt.mode || cmd.Message != tt.message {
			t.Fatalf("ParseCommand(%q) = %s %q, want %s %q", tt.in, cmd.Mode, cmd.Message, tt.mode, tt.message)
		}
		if len(cmd.Extras) != 0 || len(tt.extras) != 0 {
			if !reflect.DeepEqual(cmd.Extras, tt.extras) {
				t.Fatalf("ParseCommand(%q) extras = %v, want %v", tt.in, cmd.Extras, tt.extras)
			}
		}
	}
}

func TestParseCommandBareVerbs(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"/me", "/nick", "/msg"} {
		cmd, err := ParseCommand(in)
		if cmd != nil || !errors.Is(err, ErrMalformedCommand) {
			t.Fatalf("ParseCommand(%q) = %+v, %v; want malformed command error", in, cmd, err)
		}
	}
}

func TestParseCommandEmpty(t *testing.T) {
	t.Parallel()

	cmd, err := ParseCommand("")
	if err != nil || cmd != nil {
		t.Fatalf("expected no command, got %+v, %v", cmd, err)
	}
}

func TestParseCommandMalformed(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"/msg alice", "/msg", "/me", "/nick", "/nick !!"} {
		cmd, err := ParseCommand(in)
		if cmd != nil {
			t.Fatalf("ParseCommand(%q): expected no command, got %+v", in, cmd)
		}
		if !errors.Is(err, ErrMalformedCommand) {
			t.Fatalf("ParseCommand(%q): expected malformed command error, got %v", in, err)
		}
		var pe *ParseError
		if !errors.As(err, &pe) || pe.Input != in {
			t.Fatalf("ParseCommand(%q): expected *ParseError, got %v", in, err)
		}
	}
}

func TestCommandForm(t *testing.T) {
	t.Parallel()

	cmd := Command{
		Mode:    ModeMsg,
		Message: "hi & bye",
		Extras:  map[string]string{"target": "alice", "mode": "message"},
	}
	form := cmd.Form()
	if form.Get("mode") != "msg" || form.Get("message") != "hi & bye" || form.Get("target") != "alice" {
		t.Fatalf("unexpected form: %v", form)
	}
	if got := form.Encode(); got != "message=hi+%26+bye&mode=msg&target=alice" {
		t.Fatalf("unexpected encoding: %s", got)
	}
}
