package adapter

import (
	"strconv"
	"time"

	"github.com/ziyi233/mirai-tui/mirai"
)

const (
	ChatGroup    = "group"
	ChatPrivate  = "private"
	ChatTemp     = "temp"
	ChatStranger = "stranger" // 只能接收，mirai-api-http 没有给陌生人发消息的接口
)

// SelfName 是 bot 自己发出的消息显示的发送者
const SelfName = "You"

// ChatMessage 是一条消息的扁平视图，用于存档和 TUI 显示
type ChatMessage struct {
	ChatID     string    // 群号或 QQ 号
	ChatType   string    // ChatGroup / ChatPrivate / ChatTemp / ChatStranger
	SenderID   string    // 发送者 QQ 号，同步消息为 bot 自己
	SenderName string    // 发送者昵称或群名片
	Content    string    // 纯文本摘要
	Time       time.Time // 消息时间，缺失时为接收时间
}

// ChatInfo 代表一个聊天会话（私聊或群聊），用于在 TUI 左侧列表显示
type ChatInfo struct {
	ID        string
	Name      string
	Type      string
	LatestMsg string
}

func id(v int64) string { return strconv.FormatInt(v, 10) }

// FromEnvelope 把推送转换为 ChatMessage；事件和其他客户端消息返回 false
func FromEnvelope(env mirai.Envelope, self int64) (ChatMessage, bool) {
	var m ChatMessage
	switch e := env.(type) {
	case *mirai.FriendMessage:
		m = ChatMessage{ChatID: id(e.Sender.ID), ChatType: ChatPrivate, SenderID: id(e.Sender.ID), SenderName: e.Sender.Nickname}
	case *mirai.FriendSyncMessage:
		m = ChatMessage{ChatID: id(e.Subject.ID), ChatType: ChatPrivate, SenderID: id(self), SenderName: SelfName}
	case *mirai.StrangerMessage:
		m = ChatMessage{ChatID: id(e.Sender.ID), ChatType: ChatStranger, SenderID: id(e.Sender.ID), SenderName: e.Sender.Nickname}
	case *mirai.StrangerSyncMessage:
		m = ChatMessage{ChatID: id(e.Subject.ID), ChatType: ChatStranger, SenderID: id(self), SenderName: SelfName}
	case *mirai.GroupMessage:
		m = ChatMessage{ChatID: id(e.Sender.Group.ID), ChatType: ChatGroup, SenderID: id(e.Sender.ID), SenderName: e.Sender.MemberName}
	case *mirai.GroupSyncMessage:
		m = ChatMessage{ChatID: id(e.Subject.ID), ChatType: ChatGroup, SenderID: id(self), SenderName: SelfName}
	case *mirai.TempMessage:
		m = ChatMessage{ChatID: id(e.Sender.ID), ChatType: ChatTemp, SenderID: id(e.Sender.ID), SenderName: e.Sender.MemberName}
	case *mirai.TempSyncMessage:
		m = ChatMessage{ChatID: id(e.Subject.ID), ChatType: ChatTemp, SenderID: id(self), SenderName: SelfName}
	default:
		return ChatMessage{}, false
	}
	msg := env.(mirai.Message)
	m.Content = mirai.Summarize(msg.Nodes())
	if t, ok := msg.Time(); ok {
		m.Time = t
	} else {
		m.Time = time.Now()
	}
	return m, true
}

// ChatsFromRoster 把好友和群列表转换为 TUI 的会话列表
func ChatsFromRoster(friends []mirai.FriendDetails, groups []mirai.GroupDetails) (fs []ChatInfo, gs []ChatInfo) {
	for _, f := range friends {
		name := f.Nickname
		if f.Remark != "" {
			name = f.Remark
		}
		fs = append(fs, ChatInfo{ID: id(f.ID), Name: name, Type: ChatPrivate})
	}
	for _, g := range groups {
		gs = append(gs, ChatInfo{ID: id(g.ID), Name: g.Name, Type: ChatGroup})
	}
	return fs, gs
}
