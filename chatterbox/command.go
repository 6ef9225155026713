package chatterbox

import "regexp"

var (
	slashPattern = regexp.MustCompile(`^/(\w+)\s?(.*)$`)
	nickPattern  = regexp.MustCompile(`^(\w+)`)
	msgPattern   = regexp.MustCompile(`([-\w]+)\s+(.+)`)
)

// ParseCommand turns a line of input into a Command. Empty input yields
// a nil command and nil error. Unknown slash verbs are sent literally.
// A bare "/me" or "/nick", or "/msg" without a target and text, is not
// sent as plain text: it returns a *ParseError matching ErrMalformedCommand.
func ParseCommand(text string) (*Command, error) {
	if text == "" {
		return nil, nil
	}

	m := slashPattern.FindStringSubmatch(text)
	if m == nil {
		return &Command{Mode: ModeMessage, Message: text}, nil
	}
	verb, rest := m[1], m[2]

	switch verb {
	case "nick":
		w := nickPattern.FindStringSubmatch(rest)
		if w == nil {
			return nil, &ParseError{Verb: verb, Input: text, Usage: "/nick <name>"}
		}
		return &Command{Mode: ModeNick, Message: w[1]}, nil
	case "me":
		if rest == "" {
			return nil, &ParseError{Verb: verb, Input: text, Usage: "/me <text>"}
		}
		return &Command{Mode: ModeAction, Message: rest}, nil
	case "names":
		return &Command{Mode: ModeNames}, nil
	case "msg":
		w := msgPattern.FindStringSubmatch(rest)
		if w == nil {
			return nil, &ParseError{Verb: verb, Input: text, Usage: "/msg <target> <text>"}
		}
		return &Command{
			Mode:    ModeMsg,
			Message: w[2],
			Extras:  map[string]string{"target": w[1]},
		}, nil
	case "topic":
		return &Command{Mode: ModeTopic, Message: rest}, nil
	default:
		return &Command{Mode: ModeMessage, Message: text}, nil
	}
}
