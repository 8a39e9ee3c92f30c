package mirai

import "time"

// Envelope 是推送过来的一条消息或事件，Type 返回其线上的 type 标签。
type Envelope interface {
	Type() string
}

// Message 是各种来源的聊天消息共有的读取接口
type Message interface {
	Envelope
	ID() (int32, bool)
	TimeSecs() (int32, bool)
	Time() (time.Time, bool)
	Quote() Quote
	Nodes() []IncomingNode
	// Handle 用于回复、撤回；消息没有 id 或者来自其他客户端时返回 false
	Handle() (MessageHandle, bool)
	message()
}

// MessageBody 提供消息链的通用访问方法，嵌入到每种消息中。
type MessageBody struct {
	Chain MessageChain `json:"messageChain"`
}

func (b MessageBody) ID() (int32, bool)       { return b.Chain.ID() }
func (b MessageBody) TimeSecs() (int32, bool) { return b.Chain.TimeSecs() }
func (b MessageBody) Time() (time.Time, bool) { return b.Chain.Time() }
func (b MessageBody) Quote() Quote            { return b.Chain.Quote() }
func (b MessageBody) Nodes() []IncomingNode   { return b.Chain.Nodes() }

func (b MessageBody) handleIn(context int64) (MessageHandle, bool) {
	id, ok := b.Chain.ID()
	if !ok {
		return MessageHandle{}, false
	}
	return MessageRef(id, context), true
}

type FriendMessage struct {
	Sender FriendDetails `json:"sender"`
	MessageBody
}

func (m *FriendMessage) Type() string                  { return "FriendMessage" }
func (m *FriendMessage) Context() FriendDetails        { return m.Sender }
func (m *FriendMessage) Handle() (MessageHandle, bool) { return m.handleIn(m.Sender.ID) }

// FriendSyncMessage 是 bot 账号在其他客户端发给好友的消息
type FriendSyncMessage struct {
	Subject FriendDetails `json:"subject"`
	MessageBody
}

func (m *FriendSyncMessage) Type() string                  { return "FriendSyncMessage" }
func (m *FriendSyncMessage) Context() FriendDetails        { return m.Subject }
func (m *FriendSyncMessage) Handle() (MessageHandle, bool) { return m.handleIn(m.Subject.ID) }

type GroupMessage struct {
	Sender MemberDetails `json:"sender"`
	MessageBody
}

func (m *GroupMessage) Type() string                  { return "GroupMessage" }
func (m *GroupMessage) Context() GroupDetails         { return m.Sender.Group }
func (m *GroupMessage) Handle() (MessageHandle, bool) { return m.handleIn(m.Sender.Group.ID) }

type GroupSyncMessage struct {
	Subject GroupDetails `json:"subject"`
	MessageBody
}

func (m *GroupSyncMessage) Type() string                  { return "GroupSyncMessage" }
func (m *GroupSyncMessage) Context() GroupDetails         { return m.Subject }
func (m *GroupSyncMessage) Handle() (MessageHandle, bool) { return m.handleIn(m.Subject.ID) }

// TempMessage 群临时会话消息，上下文是发送者本人
type TempMessage struct {
	Sender MemberDetails `json:"sender"`
	MessageBody
}

func (m *TempMessage) Type() string                  { return "TempMessage" }
func (m *TempMessage) Context() MemberDetails        { return m.Sender }
func (m *TempMessage) Handle() (MessageHandle, bool) { return m.handleIn(m.Sender.ID) }

type TempSyncMessage struct {
	Subject MemberDetails `json:"subject"`
	MessageBody
}

func (m *TempSyncMessage) Type() string                  { return "TempSyncMessage" }
func (m *TempSyncMessage) Context() MemberDetails        { return m.Subject }
func (m *TempSyncMessage) Handle() (MessageHandle, bool) { return m.handleIn(m.Subject.ID) }

type StrangerMessage struct {
	Sender StrangerDetails `json:"sender"`
	MessageBody
}

func (m *StrangerMessage) Type() string                  { return "StrangerMessage" }
func (m *StrangerMessage) Context() StrangerDetails      { return m.Sender }
func (m *StrangerMessage) Handle() (MessageHandle, bool) { return m.handleIn(m.Sender.ID) }

type StrangerSyncMessage struct {
	Subject StrangerDetails `json:"subject"`
	MessageBody
}

func (m *StrangerSyncMessage) Type() string                  { return "StrangerSyncMessage" }
func (m *StrangerSyncMessage) Context() StrangerDetails      { return m.Subject }
func (m *StrangerSyncMessage) Handle() (MessageHandle, bool) { return m.handleIn(m.Subject.ID) }

type OtherClientMessage struct {
	Sender OtherClientDetails `json:"sender"`
	MessageBody
}

func (m *OtherClientMessage) Type() string               { return "OtherClientMessage" }
func (m *OtherClientMessage) Context() OtherClientDetails { return m.Sender }

// Handle 其他客户端的消息无法被引用或撤回
func (m *OtherClientMessage) Handle() (MessageHandle, bool) { return MessageHandle{}, false }

func (*FriendMessage) message()       {}
func (*FriendSyncMessage) message()   {}
func (*GroupMessage) message()        {}
func (*GroupSyncMessage) message()    {}
func (*TempMessage) message()         {}
func (*TempSyncMessage) message()     {}
func (*StrangerMessage) message()     {}
func (*StrangerSyncMessage) message() {}
func (*OtherClientMessage) message()  {}
