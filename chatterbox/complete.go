package chatterbox

import (
	"regexp"
	"strings"
)

var trailingWord = regexp.MustCompile(`(\w+)$`)

// CompleteNick completes the trailing word of value against nicks, taking
// the first case-insensitive prefix match in order. A nick that fills the
// whole field is followed by ": ", otherwise by a space. ok is false when
// value is returned unchanged.
func CompleteNick(value string, nicks []string) (string, bool) {
	m := trailingWord.FindStringSubmatch(value)
	if m == nil {
		return value, false
	}
	prefix := strings.ToLower(m[1])
	for _, nick := range nicks {
		if !strings.HasPrefix(strings.ToLower(nick), prefix) {
			continue
		}
		completed := value[:len(value)-len(m[1])] + nick
		if len(completed) == len(nick) {
			return completed + ": ", true
		}
		return completed + " ", true
	}
	return value, false
}
