package mirai

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// MessageChain 是收到的消息链。Source 和 Quote 两种伪节点在解码时被提取出来，
// 不会出现在 Nodes() 中。
type MessageChain struct {
	id       int32
	timeSecs int32
	hasTime  bool
	quote    Quote
	nodes    []IncomingNode
}

func (c *MessageChain) UnmarshalJSON(data []byte) error {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return fmt.Errorf("decode message chain: %w", err)
	}
	var chain MessageChain
	for _, raw := range raws {
		tag, err := peekType(raw)
		if err != nil {
			return err
		}
		switch tag {
		case "Source":
			if chain.hasTime {
				return errors.New("duplicate `Source`")
			}
			var src struct {
				ID   int32 `json:"id"`
				Time int32 `json:"time"`
			}
			if err := json.Unmarshal(raw, &src); err != nil {
				return fmt.Errorf("decode Source node: %w", err)
			}
			chain.id = src.ID
			chain.timeSecs = src.Time
			chain.hasTime = true
		case "Quote":
			if chain.quote != nil {
				return errors.New("duplicate `Quote`")
			}
			q, err := decodeQuote(raw)
			if err != nil {
				return err
			}
			chain.quote = q
		default:
			node, err := decodeIncomingNode(tag, raw)
			if err != nil {
				return err
			}
			chain.nodes = append(chain.nodes, node)
		}
	}
	*c = chain
	return nil
}

// ID 返回消息 id；id 为 0 时视为不存在
func (c MessageChain) ID() (int32, bool) { return c.id, c.id != 0 }

func (c MessageChain) TimeSecs() (int32, bool) { return c.timeSecs, c.hasTime }

func (c MessageChain) Time() (time.Time, bool) {
	if !c.hasTime {
		return time.Time{}, false
	}
	return unixTime(int64(c.timeSecs)), true
}

func (c MessageChain) Quote() Quote { return c.quote }

func (c MessageChain) Nodes() []IncomingNode { return c.nodes }

// Quote 是被回复的消息。群聊引用和私聊引用只能通过 groupId 是否为 0 区分。
type Quote interface {
	ID() (int32, bool)
	Nodes() []IncomingNode
	Handle() (MessageHandle, bool)
	quote()
}

type QuotedGroupMessage struct {
	GroupID   int64
	SenderID  int64
	MessageID int32
	Chain     []IncomingNode
}

func (q *QuotedGroupMessage) ID() (int32, bool)     { return q.MessageID, q.MessageID != 0 }
func (q *QuotedGroupMessage) Nodes() []IncomingNode { return q.Chain }
func (q *QuotedGroupMessage) Context() GroupHandle  { return Group(q.GroupID) }
func (q *QuotedGroupMessage) Sender() MemberHandle  { return q.Context().Member(q.SenderID) }

func (q *QuotedGroupMessage) Handle() (MessageHandle, bool) {
	if q.MessageID == 0 {
		return MessageHandle{}, false
	}
	return MessageRef(q.MessageID, q.GroupID), true
}

type QuotedUserMessage struct {
	ReceiverID int64
	SenderID   int64
	MessageID  int32
	Chain      []IncomingNode
}

func (q *QuotedUserMessage) ID() (int32, bool)     { return q.MessageID, q.MessageID != 0 }
func (q *QuotedUserMessage) Nodes() []IncomingNode { return q.Chain }
func (q *QuotedUserMessage) Receiver() UserHandle  { return User(q.ReceiverID) }
func (q *QuotedUserMessage) Sender() UserHandle    { return User(q.SenderID) }

func (q *QuotedUserMessage) Handle() (MessageHandle, bool) {
	if q.MessageID == 0 {
		return MessageHandle{}, false
	}
	return MessageRef(q.MessageID, q.SenderID), true
}

func (*QuotedGroupMessage) quote() {}
func (*QuotedUserMessage) quote()  {}

func decodeQuote(raw []byte) (Quote, error) {
	var q struct {
		ID       int32        `json:"id"`
		SenderID int64        `json:"senderId"`
		TargetID int64        `json:"targetId"`
		GroupID  int64        `json:"groupId"`
		Origin   MessageChain `json:"origin"`
	}
	if err := json.Unmarshal(raw, &q); err != nil {
		return nil, fmt.Errorf("decode Quote node: %w", err)
	}
	if q.GroupID == 0 {
		return &QuotedUserMessage{
			ReceiverID: q.TargetID,
			SenderID:   q.SenderID,
			MessageID:  q.ID,
			Chain:      q.Origin.nodes,
		}, nil
	}
	return &QuotedGroupMessage{
		GroupID:   q.TargetID,
		SenderID:  q.SenderID,
		MessageID: q.ID,
		Chain:     q.Origin.nodes,
	}, nil
}

// OutgoingMessage 是要发送的消息：可选的回复 id 加上消息链
type OutgoingMessage struct {
	QuoteID *int32         `json:"quote,omitempty"`
	Chain   []OutgoingNode `json:"messageChain"`
}

// NewMessage 组装一条消息。字符串、[]byte 和 fmt.Stringer 会转换为 Plain 节点。
func NewMessage(parts ...any) OutgoingMessage {
	chain := make([]OutgoingNode, 0, len(parts))
	for _, p := range parts {
		chain = append(chain, ToNode(p))
	}
	return OutgoingMessage{Chain: chain}
}

// ToNode 把任意值转换为发送节点
func ToNode(v any) OutgoingNode {
	switch x := v.(type) {
	case OutgoingNode:
		return x
	case string:
		return Plain(x)
	case []byte:
		return Plain(string(x))
	case fmt.Stringer:
		return Plain(x.String())
	default:
		return Plain(fmt.Sprint(x))
	}
}

// Quote 回复指定消息
func (m OutgoingMessage) Quote(msg MessageHandle) OutgoingMessage {
	return m.QuoteMessageID(msg.ID)
}

func (m OutgoingMessage) QuoteMessageID(id int32) OutgoingMessage {
	m.QuoteID = &id
	return m
}
