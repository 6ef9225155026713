package chatterbox

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Renderer receives the rendering actions a session derives from events.
type Renderer interface {
	AppendEntry(ev Event, kind TemplateKind)
	RenderTopic(text string)
	RenderNickList(nicks []string)
}

// Entry is one rendered line of the message log.
type Entry struct {
	Kind  TemplateKind
	Event Event
	HTML  string
}

// Log is a bounded message log with topic and nick panels. It is safe for
// concurrent use; views read it from their own goroutine.
type Log struct {
	mu       sync.RWMutex
	clock    clock.Clock
	max      int
	entries  []Entry
	topic    string
	nicks    []string
	nickHTML string
	onChange func()
}

// NewLog returns a log holding at most max entries. A nil clock uses
// the wall clock.
func NewLog(max int, clk clock.Clock) *Log {
	if max <= 0 {
		max = DefaultConfig().MaxLogEntries
	}
	if clk == nil {
		clk = clock.New()
	}
	return &Log{clock: clk, max: max}
}

// OnChange registers fn to run after every update, outside the lock.
// Views use it to redraw and scroll to the newest entry.
func (l *Log) OnChange(fn func()) {
	l.mu.Lock()
	l.onChange = fn
	l.mu.Unlock()
}

// AppendEntry renders ev with the template for kind and appends it,
// evicting the oldest entries beyond the bound.
func (l *Log) AppendEntry(ev Event, kind TemplateKind) {
	if ev.When == "" {
		ev.When = clockTime(l.clock.Now())
	}
	tmpl, ok := Templates[kind]
	if !ok {
		tmpl = Templates[TemplateMessage]
	}
	html := Interpolate(tmpl, map[string]string{
		"mode":    string(kind),
		"when":    ev.When,
		"sender":  ev.Sender,
		"message": ev.Message,
		"target":  ev.Target,
	})

	l.mu.Lock()
	l.entries = append(l.entries, Entry{Kind: kind, Event: ev, HTML: html})
	if over := len(l.entries) - l.max; over > 0 {
		copy(l.entries, l.entries[over:])
		l.entries = l.entries[:l.max]
	}
	fn := l.onChange
	l.mu.Unlock()

	if fn != nil {
		fn()
	}
}

// RenderTopic replaces the topic verbatim. Topic markup is trusted.
func (l *Log) RenderTopic(text string) {
	l.mu.Lock()
	l.topic = text
	fn := l.onChange
	l.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// RenderNickList replaces the nick panel, one item per nick in order.
func (l *Log) RenderNickList(nicks []string) {
	items := make([]string, len(nicks))
	for i, n := range nicks {
		items[i] = "<li>" + n + "</li>"
	}

	l.mu.Lock()
	l.nicks = append([]string(nil), nicks...)
	l.nickHTML = strings.Join(items, "\n")
	fn := l.onChange
	l.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Entries returns a copy of the log, oldest first.
func (l *Log) Entries() []Entry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]Entry(nil), l.entries...)
}

// Len returns the number of entries held.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// HTML returns the concatenated log markup.
func (l *Log) HTML() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var b strings.Builder
	for _, e := range l.entries {
		b.WriteString(e.HTML)
	}
	return b.String()
}

// Topic returns the current topic.
func (l *Log) Topic() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.topic
}

// Nicks returns the nicks last rendered.
func (l *Log) Nicks() []string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]string(nil), l.nicks...)
}

// NickListHTML returns the nick panel markup.
func (l *Log) NickListHTML() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.nickHTML
}

// clockTime formats t as H:mm:ss, hour unpadded.
func clockTime(t time.Time) string {
	return fmt.Sprintf("%d:%02d:%02d", t.Hour(), t.Minute(), t.Second())
}
