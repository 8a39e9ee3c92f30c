package mirai

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// requireFields 检查 JSON 对象中的必需字段，null 与缺失同样视为缺失
func requireFields(data []byte, names ...string) error {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	for _, name := range names {
		v, ok := obj[name]
		if !ok || bytes.Equal(bytes.TrimSpace(v), []byte("null")) {
			return fmt.Errorf("missing field `%s`", name)
		}
	}
	return nil
}

func decodeAs[T any, P interface {
	*T
	Envelope
}](data []byte) (Envelope, error) {
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return P(&v), nil
}

// strict 在解码前先检查必需字段；可选字段（operator、invitor 等）不列出
func strict(decode func([]byte) (Envelope, error), fields ...string) func([]byte) (Envelope, error) {
	return func(data []byte) (Envelope, error) {
		if err := requireFields(data, fields...); err != nil {
			return nil, err
		}
		return decode(data)
	}
}

var envelopeDecoders = map[string]func([]byte) (Envelope, error){
	"FriendMessage":       strict(decodeAs[FriendMessage], "sender", "messageChain"),
	"FriendSyncMessage":   strict(decodeAs[FriendSyncMessage], "subject", "messageChain"),
	"GroupMessage":        strict(decodeAs[GroupMessage], "sender", "messageChain"),
	"GroupSyncMessage":    strict(decodeAs[GroupSyncMessage], "subject", "messageChain"),
	"TempMessage":         strict(decodeAs[TempMessage], "sender", "messageChain"),
	"TempSyncMessage":     strict(decodeAs[TempSyncMessage], "subject", "messageChain"),
	"StrangerMessage":     strict(decodeAs[StrangerMessage], "sender", "messageChain"),
	"StrangerSyncMessage": strict(decodeAs[StrangerSyncMessage], "subject", "messageChain"),
	"OtherClientMessage":  strict(decodeAs[OtherClientMessage], "sender", "messageChain"),

	"BotOnlineEvent":                  strict(decodeAs[BotOnline], "qq"),
	"BotOfflineEventActive":           strict(decodeAs[BotOfflineActive], "qq"),
	"BotOfflineEventForce":            strict(decodeAs[BotOfflineForced], "qq", "title", "message"),
	"BotOfflineEventDropped":          strict(decodeAs[BotOfflineDropped], "qq"),
	"BotReloginEvent":                 strict(decodeAs[BotRelogin], "qq"),
	"GroupRecallEvent":                strict(decodeAs[GroupMessageRecall], "authorId", "messageId", "time", "group"),
	"FriendRecallEvent":               strict(decodeAs[FriendMessageRecall], "authorId", "messageId", "time"),
	"BotGroupPermissionChangeEvent":   strict(decodeAs[BotPermissionChange], "origin", "current", "group"),
	"BotMuteEvent":                    strict(decodeAs[BotMute], "durationSeconds", "operator"),
	"BotUnmuteEvent":                  strict(decodeAs[BotUnmute], "operator"),
	"BotJoinGroupEvent":               strict(decodeAs[BotJoinGroup], "group"),
	"BotLeaveEventActive":             strict(decodeAs[BotLeaveGroupActive], "group"),
	"BotLeaveEventKick":               strict(decodeAs[BotLeaveGroupKicked], "group", "operator"),
	"BotLeaveEventDisband":            strict(decodeAs[BotLeaveGroupDisband], "group", "operator"),
	"GroupNameChangeEvent":            strict(decodeAs[GroupNameChange], "origin", "current", "group"),
	"GroupMuteAllEvent":               strict(decodeAs[GroupMuteAll], "origin", "current", "group"),
	"GroupAllowAnonymousChatEvent":    strict(decodeAs[GroupAllowAnonymousChat], "origin", "current", "group"),
	"GroupAllowConfessTalkEvent":      strict(decodeAs[GroupAllowConfessTalk], "origin", "current", "group", "isByBot"),
	"GroupAllowMemberInviteEvent":     strict(decodeAs[GroupAllowMemberInvite], "origin", "current", "group"),
	"MemberJoinEvent":                 strict(decodeAs[MemberJoin], "member"),
	"MemberLeaveEventKick":            strict(decodeAs[MemberLeaveKicked], "member"),
	"MemberLeaveEventQuit":            strict(decodeAs[MemberLeaveActive], "member"),
	"MemberCardChangeEvent":           strict(decodeAs[MemberNameChange], "origin", "current", "member"),
	"MemberSpecialTitleChangeEvent":   strict(decodeAs[MemberSpecialTitleChange], "origin", "current", "member"),
	"MemberPermissionChangeEvent":     strict(decodeAs[MemberPermissionChange], "origin", "current", "member"),
	"MemberMuteEvent":                 strict(decodeAs[MemberMute], "durationSeconds", "member"),
	"MemberUnmuteEvent":               strict(decodeAs[MemberUnmute], "member"),
	"NewFriendRequestEvent":           strict(decodeAs[NewFriendRequest], "eventId", "fromId", "groupId", "nick", "message"),
	"MemberJoinRequestEvent":          strict(decodeAs[MemberJoinRequest], "eventId", "fromId", "groupId", "groupName", "nick", "message"),
	"BotInvitedJoinGroupRequestEvent": strict(decodeAs[BotInvitedJoinGroupRequest], "eventId", "fromId", "groupId", "groupName", "nick"),
	"NudgeEvent":                      decodeNudge,
	"FriendInputStatusChangedEvent":   strict(decodeAs[FriendTyping], "friend", "inputting"),
	"FriendNickChangedEvent":          strict(decodeAs[FriendNicknameChange], "friend", "from", "to"),
	"MemberHonorChangeEvent":          strict(decodeAs[MemberHonorChange], "member", "action", "honor"),
	"OtherClientOnlineEvent":          strict(decodeAs[OtherClientOnline], "client"),
	"OtherClientOfflineEvent":         strict(decodeAs[OtherClientOffline], "client"),
	"CommandExecutedEvent":            strict(decodeAs[CommandExecuted], "name", "args"),
	"FriendAddEvent":                  strict(decodeAs[FriendAdd], "friend", "stranger"),
	"FriendDeleteEvent":               strict(decodeAs[FriendDelete], "friend"),
}

// DecodeEnvelope 根据 type 标签把一条推送解码为 Message 或 Event
func DecodeEnvelope(data []byte) (Envelope, error) {
	tag, err := peekType(data)
	if err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	decode, ok := envelopeDecoders[tag]
	if !ok {
		return nil, fmt.Errorf("unknown envelope type %q", tag)
	}
	env, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", tag, err)
	}
	return env, nil
}

// DecodeEnvelopes 解码一个 JSON 数组，任意一条失败则整体失败
func DecodeEnvelopes(data []byte) ([]Envelope, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode envelope list: %w", err)
	}
	out := make([]Envelope, 0, len(raws))
	for _, raw := range raws {
		env, err := DecodeEnvelope(raw)
		if err != nil {
			return nil, err
		}
		out = append(out, env)
	}
	return out, nil
}

// DecodeMessage 解码一条必须是聊天消息的推送
func DecodeMessage(data []byte) (Message, error) {
	env, err := DecodeEnvelope(data)
	if err != nil {
		return nil, err
	}
	msg, ok := env.(Message)
	if !ok {
		return nil, fmt.Errorf("expected a message, got %s", env.Type())
	}
	return msg, nil
}

// 戳一戳的具体类型由 subject.kind 决定：先解出全部原始字段，再按 kind 构造。
type rawNudge struct {
	FromID  int64           `json:"fromId"`
	Target  int64           `json:"target"`
	Subject json.RawMessage `json:"subject"`
	Action  string          `json:"action"`
	Suffix  string          `json:"suffix"`
}

func decodeNudge(data []byte) (Envelope, error) {
	if err := requireFields(data, "fromId", "target", "subject", "action", "suffix"); err != nil {
		return nil, err
	}
	var raw rawNudge
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	var kind struct {
		Kind SubjectKind `json:"kind"`
	}
	if err := json.Unmarshal(raw.Subject, &kind); err != nil {
		return nil, fmt.Errorf("decode nudge subject: %w", err)
	}
	if err := requireFields(raw.Subject, "id"); err != nil {
		return nil, fmt.Errorf("decode nudge subject: %w", err)
	}
	switch kind.Kind {
	case SubjectFriend:
		var subject FriendDetails
		if err := json.Unmarshal(raw.Subject, &subject); err != nil {
			return nil, err
		}
		return &FriendNudge{Context: subject, FromID: raw.FromID, ToID: raw.Target, Action: raw.Action, Suffix: raw.Suffix}, nil
	case SubjectGroup:
		// 戳一戳的群 subject 只有 id 和 kind，不要求 permission
		type plain GroupDetails
		var subject plain
		if err := json.Unmarshal(raw.Subject, &subject); err != nil {
			return nil, err
		}
		return &GroupNudge{Context: GroupDetails(subject), FromID: raw.FromID, ToID: raw.Target, Action: raw.Action, Suffix: raw.Suffix}, nil
	case SubjectStranger:
		var subject StrangerDetails
		if err := json.Unmarshal(raw.Subject, &subject); err != nil {
			return nil, err
		}
		return &StrangerNudge{Context: subject, FromID: raw.FromID, ToID: raw.Target, Action: raw.Action, Suffix: raw.Suffix}, nil
	default:
		return nil, fmt.Errorf("unknown nudge subject kind %q", kind.Kind)
	}
}
