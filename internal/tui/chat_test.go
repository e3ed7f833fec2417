package tui

import (
	"context"
	"errors"
	"fmt"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dream-ai/bp-assistant/internal/chat"
	"github.com/dream-ai/bp-assistant/internal/llm"
)

// MockTurner implements Turner for testing.
type MockTurner struct {
	TurnFunc func(ctx context.Context, req chat.Request) (string, error)
	requests []chat.Request
}

func (m *MockTurner) Turn(ctx context.Context, req chat.Request) (string, error) {
	m.requests = append(m.requests, req)
	if m.TurnFunc != nil {
		return m.TurnFunc(ctx, req)
	}
	return "ok", nil
}

func typeText(t *testing.T, m *ChatModel, text string) *ChatModel {
	t.Helper()
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
	return updated.(*ChatModel)
}

func pressEnter(t *testing.T, m *ChatModel) (*ChatModel, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(*ChatModel), cmd
}

func TestNewChatModel(t *testing.T) {
	m := NewChatModel(nil, "u1", nil)

	require.NotNil(t, m)
	assert.NotNil(t, m.styles)
	assert.Empty(t, m.Messages())
	assert.False(t, m.Loading())
	assert.NotNil(t, m.Init())
}

func TestChatModel_SendAndReply(t *testing.T) {
	turner := &MockTurner{TurnFunc: func(context.Context, chat.Request) (string, error) {
		return "E1 means the cuff is too loose.", nil
	}}
	m := NewChatModel(turner, "u1", nil)

	m = typeText(t, m, "What does E1 mean?")
	m, cmd := pressEnter(t, m)
	require.NotNil(t, cmd)
	assert.True(t, m.Loading())
	require.Len(t, m.Messages(), 2)
	assert.Equal(t, "What does E1 mean?", m.Messages()[0].Content)
	assert.Equal(t, thinking, m.Messages()[1].Content)
	assert.Empty(t, m.input.Value())

	updated, _ := m.Update(cmd())
	m = updated.(*ChatModel)
	assert.False(t, m.Loading())
	assert.Equal(t, "E1 means the cuff is too loose.", m.Messages()[1].Content)
	assert.Equal(t, []chat.Request{{Message: "What does E1 mean?", UserID: "u1"}}, turner.requests)
	assert.Contains(t, m.View(), "cuff is too loose")
}

func TestChatModel_IgnoresBlankAndConcurrentSends(t *testing.T) {
	m := NewChatModel(&MockTurner{}, "u1", nil)

	m, cmd := pressEnter(t, m)
	assert.Nil(t, cmd)
	assert.Empty(t, m.Messages())

	m = typeText(t, m, "first")
	m, cmd = pressEnter(t, m)
	require.NotNil(t, cmd)

	m = typeText(t, m, "second")
	_, cmd = pressEnter(t, m)
	assert.Nil(t, cmd, "no new turn while one is in flight")
}

func TestChatModel_Errors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"rate limited", fmt.Errorf("%w: 429", llm.ErrRateLimited), "Quota exhausted"},
		{"other", errors.New("boom"), "Error: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewChatModel(&MockTurner{TurnFunc: func(context.Context, chat.Request) (string, error) {
				return "", tt.err
			}}, "u1", nil)

			m = typeText(t, m, "hi")
			m, cmd := pressEnter(t, m)
			updated, _ := m.Update(cmd())
			m = updated.(*ChatModel)

			last := m.Messages()[1]
			assert.True(t, last.Err)
			assert.Contains(t, last.Content, tt.want)
		})
	}
}

func TestChatModel_Quit(t *testing.T) {
	m := NewChatModel(nil, "u1", nil)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestChatModel_WindowSize(t *testing.T) {
	m := NewChatModel(nil, "u1", nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = updated.(*ChatModel)
	assert.Equal(t, 120, m.width)
	assert.Equal(t, 116, m.input.Width)
}

func TestFormatMarkdown(t *testing.T) {
	s := DefaultStyles()

	out := formatMarkdown("## Errors\n- **E1** cuff loose\nplain", s)
	assert.Contains(t, out, "Errors")
	assert.NotContains(t, out, "##")
	assert.NotContains(t, out, "**")
	assert.Contains(t, out, "•")
	assert.Contains(t, out, "plain")

	assert.Equal(t, "no markup", processBold("no markup", s))
}
