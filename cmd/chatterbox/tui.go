package main

import (
	"context"
	"errors"
	"html"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/microcosm-cc/bluemonday"

	"github.com/vovakirdan/chatterbox-sdk/chatterbox-sdk-go/chatterbox"
)

var (
	accent      = lipgloss.Color("#5EEAD4")
	muted       = lipgloss.Color("#9CA3AF")
	borderColor = lipgloss.Color("#374151")
	nickWidth   = 18

	stateColors = map[chatterbox.ConnectionState]lipgloss.Color{
		chatterbox.StateConnecting:   lipgloss.Color("#EAB308"),
		chatterbox.StateReady:        accent,
		chatterbox.StateError:        lipgloss.Color("#EF4444"),
		chatterbox.StateDisconnected: lipgloss.Color("#F97316"),
		chatterbox.StateClosed:       muted,
	}

	topicStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			Padding(0, 1)

	logBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	nickBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor).
			Width(nickWidth)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder())

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#1F2937")).
			Foreground(muted).
			Padding(0, 1)

	whenStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FDE68A"))
	senderStyle = lipgloss.NewStyle().Bold(true)
	italicStyle = lipgloss.NewStyle().Italic(true).Foreground(muted)
	msgStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A78BFA"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
)

// text strips markup from server-supplied strings before they reach the
// terminal.
var text = bluemonday.StrictPolicy()

type (
	logChangedMsg struct{}
	stateMsg      chatterbox.StateEvent
	errMsg        struct{ err error }
)

type chatSession interface {
	Complete(value string) (string, bool)
	Submit(ctx context.Context, text string) error
}

type model struct {
	ctx     context.Context
	session chatSession
	log     *chatterbox.Log
	room    string

	width, height int
	chat          viewport.Model
	nicks         viewport.Model
	input         textinput.Model

	state  chatterbox.ConnectionState
	notice string
}

func newModel(ctx context.Context, session chatSession, log *chatterbox.Log, room string) model {
	inp := textinput.New()
	inp.Placeholder = "Say something, or /me, /nick, /msg, /topic, /names"
	inp.Prompt = "> "
	inp.Focus()

	m := model{
		ctx:     ctx,
		session: session,
		log:     log,
		room:    room,
		chat:    viewport.New(80, 20),
		nicks:   viewport.New(nickWidth, 20),
		input:   inp,
		state:   chatterbox.StateConnecting,
	}
	m.refresh()
	return m
}

func (m model) Init() tea.Cmd {
	return textinput.Blink
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refresh()
		return m, nil

	case logChangedMsg:
		m.refresh()
		return m, nil

	case stateMsg:
		m.state = msg.NewState
		if msg.NewState == chatterbox.StateReady {
			m.notice = ""
		}
		return m, nil

	case errMsg:
		m.notice = msg.err.Error()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "tab":
			if v, ok := m.session.Complete(m.input.Value()); ok {
				m.input.SetValue(v)
				m.input.CursorEnd()
			}
			return m, nil
		case "enter":
			m.submit()
			return m, nil
		case "pgup", "pgdown":
			var cmd tea.Cmd
			m.chat, cmd = m.chat.Update(msg)
			return m, cmd
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *model) submit() {
	if err := m.session.Submit(m.ctx, m.input.Value()); err != nil {
		var perr *chatterbox.ParseError
		if errors.As(err, &perr) {
			m.notice = "usage: " + perr.Usage
			return
		}
		m.notice = err.Error()
		return
	}
	m.input.Reset()
	m.notice = ""
}

func (m *model) resize(width, height int) {
	m.width, m.height = width, height

	// topic line, input box (3 rows), status bar
	avail := height - 1 - 3 - 1
	m.chat.Width = max(20, width-nickWidth-4)
	m.chat.Height = max(1, avail-2)
	m.nicks.Width = nickWidth
	m.nicks.Height = max(1, avail-2)
	m.input.Width = max(10, width-6)
}

func (m *model) refresh() {
	entries := m.log.Entries()
	lines := make([]string, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, formatEntry(e))
	}
	m.chat.SetContent(strings.Join(lines, "\n"))
	m.chat.GotoBottom()

	var b strings.Builder
	for _, n := range m.log.Nicks() {
		b.WriteString(plain(n))
		b.WriteByte('\n')
	}
	m.nicks.SetContent(b.String())
}

func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Connecting..."
	}

	topic := topicStyle.Width(m.width).Render(plain(m.log.Topic()))
	row := lipgloss.JoinHorizontal(lipgloss.Top,
		logBoxStyle.Width(m.chat.Width).Height(m.chat.Height).Render(m.chat.View()),
		nickBoxStyle.Height(m.nicks.Height).Render(m.nicks.View()),
	)
	input := inputBoxStyle.
		BorderForeground(stateColor(m.state)).
		Width(m.width - 2).
		Render(m.input.View())

	return lipgloss.JoinVertical(lipgloss.Left, topic, row, input, m.statusBar())
}

func (m model) statusBar() string {
	status := m.state.String() + " " + m.room
	if m.notice != "" {
		status += "  " + noticeStyle.Render(m.notice)
	}
	return statusBarStyle.Width(m.width).Render(status)
}

func stateColor(s chatterbox.ConnectionState) lipgloss.Color {
	if c, ok := stateColors[s]; ok {
		return c
	}
	return borderColor
}

// formatEntry renders one log entry as a terminal line.
func formatEntry(e chatterbox.Entry) string {
	ev := e.Event
	when := whenStyle.Render(ev.When)
	switch e.Kind {
	case chatterbox.TemplateAction:
		return when + " " + italicStyle.Render(plain(ev.Sender)) + " " + plain(ev.Message)
	case chatterbox.TemplateJoin, chatterbox.TemplateNick:
		return when + " " + italicStyle.Render(plain(ev.Message))
	case chatterbox.TemplateMsg:
		return when + " " + msgStyle.Render(plain(ev.Sender)+" => "+plain(ev.Target)) + " " + msgStyle.Render(plain(ev.Message))
	default:
		return when + " " + senderStyle.Render(plain(ev.Sender)) + " " + plain(ev.Message)
	}
}

// plain reduces a server string to text.
func plain(s string) string {
	return html.UnescapeString(text.Sanitize(s))
}
