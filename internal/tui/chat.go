// Package tui provides an interactive console chat against the assistant.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dream-ai/bp-assistant/internal/chat"
	"github.com/dream-ai/bp-assistant/internal/llm"
)

const thinking = "Thinking..."

// Turner answers one chat message
type Turner interface {
	Turn(ctx context.Context, req chat.Request) (string, error)
}

// Message is one entry of the transcript
type Message struct {
	Role    string
	Content string
	Err     bool
}

// replyMsg carries the answer of a finished turn back into the update loop
type replyMsg struct {
	text string
	err  error
}

// ChatModel is the bubbletea model for the console chat
type ChatModel struct {
	turner Turner
	userID string
	ctx    context.Context
	styles *Styles

	input    textinput.Model
	messages []Message
	loading  bool
	width    int
	height   int
}

// NewChatModel creates a chat view that sends messages as userID
func NewChatModel(turner Turner, userID string, s *Styles) *ChatModel {
	if s == nil {
		s = DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Ask about your blood pressure monitor..."
	ti.Prompt = "> "
	ti.CharLimit = 1000
	ti.Width = 76
	ti.Focus()

	return &ChatModel{
		turner: turner,
		userID: userID,
		ctx:    context.Background(),
		styles: s,
		input:  ti,
		width:  80,
		height: 24,
	}
}

// WithContext sets the context passed to every turn
func (m *ChatModel) WithContext(ctx context.Context) *ChatModel {
	m.ctx = ctx
	return m
}

// Messages returns the transcript so far
func (m *ChatModel) Messages() []Message {
	return m.messages
}

// Loading reports whether a turn is in flight
func (m *ChatModel) Loading() bool {
	return m.loading
}

func (m *ChatModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.input.Width = max(msg.Width-4, 10)
		return m, nil

	case tea.KeyMsg:
		//nolint:exhaustive // only a few keys are special
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, m.send()
		}

	case replyMsg:
		m.handleReply(msg)
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// send starts a turn for the current input
func (m *ChatModel) send() tea.Cmd {
	text := strings.TrimSpace(m.input.Value())
	if text == "" || m.loading {
		return nil
	}

	m.input.SetValue("")
	m.loading = true
	m.messages = append(m.messages,
		Message{Role: "user", Content: text},
		Message{Role: "assistant", Content: thinking},
	)

	turner, ctx, userID := m.turner, m.ctx, m.userID
	return func() tea.Msg {
		if turner == nil {
			return replyMsg{err: fmt.Errorf("chat is not configured")}
		}
		answer, err := turner.Turn(ctx, chat.Request{Message: text, UserID: userID})
		return replyMsg{text: answer, err: err}
	}
}

func (m *ChatModel) handleReply(msg replyMsg) {
	m.loading = false
	if len(m.messages) == 0 {
		return
	}

	last := &m.messages[len(m.messages)-1]
	switch {
	case msg.err == nil:
		last.Content = msg.text
	case llm.IsRateLimited(msg.err):
		last.Content = "Quota exhausted, please try again in about 30 seconds."
		last.Err = true
	default:
		last.Content = fmt.Sprintf("Error: %v", msg.err)
		last.Err = true
	}
}

func (m *ChatModel) View() string {
	var lines []string
	for _, msg := range m.messages {
		switch {
		case msg.Role == "user":
			lines = append(lines, m.styles.User.Render("You: "+msg.Content))
		case msg.Err:
			lines = append(lines, m.styles.Error.Render("AI: "+msg.Content))
		case msg.Content == thinking:
			lines = append(lines, m.styles.Muted.Render("AI: "+msg.Content))
		default:
			lines = append(lines, m.styles.Assistant.Render("AI: "+formatMarkdown(msg.Content, m.styles)))
		}
		lines = append(lines, "")
	}

	// keep the newest lines on screen
	transcript := strings.Join(lines, "\n")
	if avail := m.height - 6; avail > 0 {
		all := strings.Split(transcript, "\n")
		if len(all) > avail {
			transcript = strings.Join(all[len(all)-avail:], "\n")
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.styles.Title.Render("Blood Pressure Monitor Assistant"),
		transcript,
		m.styles.Input.Render(m.input.View()),
		m.styles.Muted.Render("enter: send  esc: quit"),
	)
}

// Run starts the console chat and blocks until the user quits
func Run(ctx context.Context, turner Turner, userID string) error {
	model := NewChatModel(turner, userID, nil).WithContext(ctx)
	_, err := tea.NewProgram(model, tea.WithContext(ctx), tea.WithAltScreen()).Run()
	return err
}
