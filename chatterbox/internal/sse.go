package internal

import (
	"bufio"
	"io"
	"strings"
)

// ReadEvents parses a text/event-stream body and calls fn for each
// dispatched event. Events without an event field are named "message".
// It returns nil on EOF, fn's refusal, or the read error otherwise.
func ReadEvents(r io.Reader, fn func(name string, data []byte) bool) error {
	reader := bufio.NewReader(r)
	var (
		eventType string
		dataLines []string
	)

	dispatch := func() bool {
		if len(dataLines) == 0 {
			eventType = ""
			return true
		}
		name := eventType
		if name == "" {
			name = "message"
		}
		raw := strings.Join(dataLines, "\n")
		dataLines = dataLines[:0]
		eventType = ""
		return fn(name, []byte(raw))
	}

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		line = strings.TrimRight(line, "\r\n")
		switch {
		case line == "":
			if !dispatch() {
				return nil
			}
		case strings.HasPrefix(line, ":"):
			// comment / heartbeat
		case strings.HasPrefix(line, "event:"):
			eventType = fieldValue(line, "event:")
		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, fieldValue(line, "data:"))
		}
	}
}

func fieldValue(line, field string) string {
	return strings.TrimPrefix(line[len(field):], " ")
}
