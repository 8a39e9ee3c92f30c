package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziyi233/mirai-tui/adapter"
)

type fakeChats map[string]adapter.ChatInfo

func (f fakeChats) GetChatType(id string) string { return f[id].Type }
func (f fakeChats) GetChatName(id string) string { return f[id].Name }

type fakeSender struct {
	sent []string
	err  error
}

func (s *fakeSender) SendText(chatID, chatType, text string) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, chatID+"/"+chatType+"/"+text)
	return nil
}

type fakeHistory map[string][]adapter.ChatMessage

func (h fakeHistory) GetMessages(chatID string, limit int) ([]adapter.ChatMessage, error) {
	msgs := h[chatID]
	if len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	return msgs, nil
}

func newTestModel(sender *fakeSender) *Model {
	chats := fakeChats{"100": {ID: "100", Name: "测试群", Type: adapter.ChatGroup}}
	history := fakeHistory{"100": {
		{ChatID: "100", SenderName: "a", Content: "1"},
		{ChatID: "100", SenderName: "b", Content: "2"},
		{ChatID: "100", SenderName: "c", Content: "3"},
	}}
	m := New(chats, sender, history, 2)
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 24})
	return m
}

func TestSwitchChatLoadsHistory(t *testing.T) {
	m := newTestModel(&fakeSender{})
	m.Update(ActiveChatChangedMsg{ID: "100", Name: "ignored"})

	assert.Equal(t, "Chat with 测试群", m.headerText)
	require.Len(t, m.messages, 2)
	assert.Equal(t, "3", m.messages[1].Content)

	m.Update(ActiveChatChangedMsg{ID: "200", Name: "陌生人"})
	assert.Equal(t, "Chat with 陌生人", m.headerText)
	assert.Empty(t, m.messages)
}

func TestIncomingMessagesOnlyForActiveChat(t *testing.T) {
	m := newTestModel(&fakeSender{})
	m.Update(ActiveChatChangedMsg{ID: "100"})

	m.Update(adapter.ChatMessage{ChatID: "100", SenderName: "d", Content: "4"})
	m.Update(adapter.ChatMessage{ChatID: "999", SenderName: "e", Content: "elsewhere"})

	require.Len(t, m.messages, 3)
	assert.Equal(t, "4", m.messages[2].Content)
}

func TestEnterSendsInput(t *testing.T) {
	sender := &fakeSender{}
	m := newTestModel(sender)
	m.Update(ActiveChatChangedMsg{ID: "100"})
	m.textInput.SetValue("你好")

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, []string{"100/group/你好"}, sender.sent)
	assert.Empty(t, m.textInput.Value())
	last := m.messages[len(m.messages)-1]
	assert.Equal(t, adapter.SelfName, last.SenderName)
	assert.Equal(t, "你好", last.Content)
}

func TestEnterReportsSendError(t *testing.T) {
	m := newTestModel(&fakeSender{err: errors.New("mirai error 5: 指定对象不存在")})
	m.Update(ActiveChatChangedMsg{ID: "100"})
	m.textInput.SetValue("x")

	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	assert.Equal(t, "Error sending: mirai error 5: 指定对象不存在", m.statusText)
	assert.Equal(t, "x", m.textInput.Value())
}

func TestEnterWithoutActiveChat(t *testing.T) {
	sender := &fakeSender{}
	m := newTestModel(sender)
	m.textInput.SetValue("x")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Empty(t, sender.sent)
}

func TestEventNotice(t *testing.T) {
	m := newTestModel(&fakeSender{})
	m.Update(EventNoticeMsg{Type: "GroupRecallEvent", Summary: "5 撤回了一条消息"})
	assert.Equal(t, "[GroupRecallEvent] 5 撤回了一条消息", m.eventText)
	assert.Contains(t, m.View(), "5 撤回了一条消息")
}

func TestViewBeforeResize(t *testing.T) {
	m := New(fakeChats{}, &fakeSender{}, fakeHistory{}, 0)
	assert.Equal(t, "Initializing...", m.View())
	assert.Equal(t, 50, m.historyLimit)
}
