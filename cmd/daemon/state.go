package main

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/ziyi233/mirai-tui/adapter"
	"github.com/ziyi233/mirai-tui/mirai"
)

const sendTimeout = 15 * time.Second

type AppState struct {
	sync.RWMutex
	ActiveChatID string
	Session      mirai.Session
	ChatTypes    map[string]string // chatID -> chatType
	ChatNames    map[string]string // chatID -> chat name
	TempGroups   map[string]int64  // 临时会话成员 -> 所在群
}

func NewAppState(session mirai.Session) *AppState {
	return &AppState{
		Session:    session,
		ChatTypes:  make(map[string]string),
		ChatNames:  make(map[string]string),
		TempGroups: make(map[string]int64),
	}
}

func (s *AppState) GetChatType(chatID string) string {
	s.RLock()
	defer s.RUnlock()
	return s.ChatTypes[chatID]
}

func (s *AppState) GetChatName(chatID string) string {
	s.RLock()
	defer s.RUnlock()
	return s.ChatNames[chatID]
}

func (s *AppState) ActiveChat() string {
	s.RLock()
	defer s.RUnlock()
	return s.ActiveChatID
}

func (s *AppState) SetActiveChat(id string) {
	s.Lock()
	s.ActiveChatID = id
	s.Unlock()
}

// ReplaceChats 用新的好友和群列表替换缓存。
// 通过消息发现的临时会话和陌生人不在列表里，刷新后仍然保留。
func (s *AppState) ReplaceChats(friends, groups []adapter.ChatInfo) {
	s.Lock()
	defer s.Unlock()
	types := make(map[string]string, len(friends)+len(groups))
	names := make(map[string]string, len(friends)+len(groups))
	for id, t := range s.ChatTypes {
		if t == adapter.ChatTemp || t == adapter.ChatStranger {
			types[id] = t
			names[id] = s.ChatNames[id]
		}
	}
	for _, f := range friends {
		types[f.ID] = adapter.ChatPrivate
		names[f.ID] = f.Name
	}
	for _, g := range groups {
		types[g.ID] = adapter.ChatGroup
		names[g.ID] = g.Name
	}
	s.ChatTypes = types
	s.ChatNames = names
}

// Observe 记录收到消息的会话，让不在列表中的临时会话和陌生人也能显示，临时会话还能回复
func (s *AppState) Observe(env mirai.Envelope, msg adapter.ChatMessage) {
	s.Lock()
	defer s.Unlock()
	if _, ok := s.ChatTypes[msg.ChatID]; !ok {
		s.ChatTypes[msg.ChatID] = msg.ChatType
		s.ChatNames[msg.ChatID] = msg.SenderName
	}
	switch e := env.(type) {
	case *mirai.TempMessage:
		s.TempGroups[msg.ChatID] = e.Sender.Group.ID
	case *mirai.TempSyncMessage:
		s.TempGroups[msg.ChatID] = e.Subject.Group.ID
	}
}

// Contact 根据会话 id 和类型找到发送对象
func (s *AppState) Contact(chatID, chatType string) (mirai.Contact, error) {
	id, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat id %q: %w", chatID, err)
	}
	switch chatType {
	case adapter.ChatGroup:
		return mirai.Group(id), nil
	case adapter.ChatPrivate:
		return mirai.Friend(id), nil
	case adapter.ChatTemp:
		s.RLock()
		group, ok := s.TempGroups[chatID]
		s.RUnlock()
		if !ok {
			return nil, fmt.Errorf("unknown group for temp chat %s", chatID)
		}
		return mirai.Group(group).Member(id), nil
	case adapter.ChatStranger:
		return nil, fmt.Errorf("cannot send to stranger %s", chatID)
	default:
		return nil, fmt.Errorf("unknown chat type %q", chatType)
	}
}

// Send 发送一条消息并返回消息句柄
func (s *AppState) Send(ctx context.Context, chatID, chatType string, msg mirai.OutgoingMessage) (mirai.MessageHandle, error) {
	contact, err := s.Contact(chatID, chatType)
	if err != nil {
		return mirai.MessageHandle{}, err
	}
	h, err := contact.SendMessage(ctx, s.Session, msg)
	sentMessages.WithLabelValues(chatType, resultLabel(err)).Inc()
	return h, err
}

// SendText 实现 tui.Sender
func (s *AppState) SendText(chatID, chatType, text string) error {
	ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
	defer cancel()
	_, err := s.Send(ctx, chatID, chatType, mirai.NewMessage(text))
	return err
}
