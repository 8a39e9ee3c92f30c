package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ziyi233/mirai-tui/adapter"
)

var (
	headerStyle     = lipgloss.NewStyle().Background(lipgloss.Color("62")).Foreground(lipgloss.Color("230")).Padding(0, 1)
	statusStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Padding(0, 1)
	eventStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Padding(0, 1)
	leftMsgStyle    = lipgloss.NewStyle().PaddingLeft(2)
	rightMsgStyle   = lipgloss.NewStyle().PaddingRight(2).Align(lipgloss.Right)
	senderStyle     = lipgloss.NewStyle().Bold(true)
	selfSenderStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
)

// ChatState 提供会话名称和类型，由 daemon 的缓存实现
type ChatState interface {
	GetChatType(chatID string) string
	GetChatName(chatID string) string
}

// Sender 向会话发送纯文本
type Sender interface {
	SendText(chatID, chatType, text string) error
}

// History 读取会话历史
type History interface {
	GetMessages(chatID string, limit int) ([]adapter.ChatMessage, error)
}

// Model represents the state of the TUI.
type Model struct {
	state        ChatState
	sender       Sender
	history      History
	historyLimit int

	viewport   viewport.Model
	textInput  textinput.Model
	headerText string
	statusText string
	eventText  string
	activeChat string
	messages   []adapter.ChatMessage
	ready      bool
}

// ActiveChatChangedMsg is a message to notify the TUI that the active chat has changed.
type ActiveChatChangedMsg struct {
	ID   string
	Name string
}

// CachesPopulatedMsg is a message to notify the TUI that the caches are populated.
type CachesPopulatedMsg struct{}

// EventNoticeMsg 是一条非聊天消息的推送摘要，显示在状态栏上方
type EventNoticeMsg struct {
	Type    string
	Summary string
}

func New(state ChatState, sender Sender, history History, historyLimit int) *Model {
	ti := textinput.New()
	ti.Placeholder = "Send a message..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 20

	if historyLimit <= 0 {
		historyLimit = 50
	}
	return &Model{
		state:        state,
		sender:       sender,
		history:      history,
		historyLimit: historyLimit,
		textInput:    ti,
		headerText:   "No Active Chat",
		statusText:   "Ready. Press Ctrl+C to quit.",
	}
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := headerStyle.GetVerticalFrameSize() + 1
		statusHeight := statusStyle.GetVerticalFrameSize() + 1
		eventHeight := 1
		inputHeight := 1

		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - headerHeight - statusHeight - eventHeight - inputHeight
		m.textInput.Width = msg.Width - 2
		headerStyle = headerStyle.Width(msg.Width)
		statusStyle = statusStyle.Width(msg.Width)
		rightMsgStyle = rightMsgStyle.Width(m.viewport.Width)
		m.ready = true
		m.updateViewportContent()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			m.sendInput()
		}

	case CachesPopulatedMsg:
		if m.activeChat != "" {
			if name := m.state.GetChatName(m.activeChat); name != "" {
				m.headerText = fmt.Sprintf("Chat with %s", name)
			}
		}

	case ActiveChatChangedMsg:
		m.switchChat(msg)

	case EventNoticeMsg:
		m.eventText = fmt.Sprintf("[%s] %s", msg.Type, msg.Summary)

	case adapter.ChatMessage:
		if msg.ChatID == m.activeChat {
			m.messages = append(m.messages, msg)
			m.updateViewportContent()
			m.viewport.GotoBottom()
		}
		return m, nil
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	m.textInput, cmd = m.textInput.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) sendInput() {
	text := m.textInput.Value()
	if m.activeChat == "" || text == "" {
		return
	}
	chatType := m.state.GetChatType(m.activeChat)
	if chatType == "" {
		m.statusText = "Error: Unknown chat type."
		return
	}
	if err := m.sender.SendText(m.activeChat, chatType, text); err != nil {
		m.statusText = fmt.Sprintf("Error sending: %v", err)
		return
	}
	m.messages = append(m.messages, adapter.ChatMessage{
		ChatID:     m.activeChat,
		ChatType:   chatType,
		SenderName: adapter.SelfName,
		Content:    text,
		Time:       time.Now(),
	})
	m.updateViewportContent()
	m.viewport.GotoBottom()
	m.textInput.Reset()
}

func (m *Model) switchChat(msg ActiveChatChangedMsg) {
	m.activeChat = msg.ID
	name := m.state.GetChatName(msg.ID)
	if name == "" {
		name = msg.Name
	}
	if name == "" {
		name = msg.ID
	}
	m.headerText = fmt.Sprintf("Chat with %s", name)
	m.messages = nil
	history, err := m.history.GetMessages(m.activeChat, m.historyLimit)
	if err != nil {
		m.statusText = fmt.Sprintf("Error loading history: %v", err)
	} else {
		m.messages = history
	}
	m.updateViewportContent()
	m.viewport.GotoBottom()
}

func (m *Model) View() string {
	if !m.ready {
		return "Initializing..."
	}
	return fmt.Sprintf("%s\n%s\n%s\n%s\n%s",
		headerStyle.Render(m.headerText),
		m.viewport.View(),
		eventStyle.Render(m.eventText),
		m.textInput.View(),
		statusStyle.Render(m.statusText),
	)
}

func (m *Model) updateViewportContent() {
	var content strings.Builder
	for _, msg := range m.messages {
		sender, style := senderStyle.Render(msg.SenderName), leftMsgStyle
		if msg.SenderName == adapter.SelfName {
			sender, style = selfSenderStyle.Render(msg.SenderName), rightMsgStyle
		}
		stamp := msg.Time.Format("15:04")
		content.WriteString(style.Render(fmt.Sprintf("%s %s\n%s", sender, stamp, msg.Content)) + "\n")
	}
	m.viewport.SetContent(content.String())
}
