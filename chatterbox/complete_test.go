package chatterbox

import "testing"

func TestCompleteNick(t *testing.T) {
	t.Parallel()

	nicks := []string{"Alice", "Bob", "alfred"}
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{in: "al", want: "Alice: ", ok: true},
		{in: "AL", want: "Alice: ", ok: true},
		{in: "hi al", want: "hi Alice ", ok: true},
		{in: "hi b", want: "hi Bob ", ok: true},
		{in: "alf", want: "alfred: ", ok: true},
		{in: "hi zed", want: "hi zed", ok: false},
		{in: "hi ", want: "hi ", ok: false},
		{in: "", want: "", ok: false},
		{in: "what?", want: "what?", ok: false},
	}
	for _, tt := range tests {
		got, ok := CompleteNick(tt.in, nicks)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("CompleteNick(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestCompleteNickEmptySet(t *testing.T) {
	t.Parallel()

	if got, ok := CompleteNick("al", nil); ok || got != "al" {
		t.Fatalf("expected unchanged input, got %q %v", got, ok)
	}
}
