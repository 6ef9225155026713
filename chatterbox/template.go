package chatterbox

import "regexp"

// TemplateKind names a log entry template.
type TemplateKind string

const (
	TemplateMessage TemplateKind = "message"
	TemplateAction  TemplateKind = "action"
	TemplateNote    TemplateKind = "note"
	TemplateJoin    TemplateKind = "join"
	TemplateNick    TemplateKind = "nick"
	TemplateMsg     TemplateKind = "msg"
)

// Templates maps each kind to its HTML fragment. Kinds without an entry,
// such as note, fall back to the message template.
var Templates = map[TemplateKind]string{
	TemplateMessage: `<div class="message {mode}"><time>{when}</time><span>{sender}</span><p>{message}</p></div>`,
	TemplateAction:  `<div class="message action"><time>{when}</time><p><i>{sender}</i> {message}</p></div>`,
	TemplateJoin:    `<div class="message join"><time>{when}</time><p><i>{message}</i></p></div>`,
	TemplateNick:    `<div class="message nick"><time>{when}</time><p><i>{message}</i></p></div>`,
	TemplateMsg:     `<div class="message msg"><time>{when}</time><span><i>{sender}</i> &rArr; <i>{target}</i></span><p><em>{message}</em></p></div>`,
}

var placeholder = regexp.MustCompile(`\{(\w+)\}`)

// Interpolate replaces {name} placeholders in tmpl with values from data.
// Unknown names become empty.
func Interpolate(tmpl string, data map[string]string) string {
	return placeholder.ReplaceAllStringFunc(tmpl, func(match string) string {
		return data[match[1:len(match)-1]]
	})
}
