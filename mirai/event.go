package mirai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Event 是除聊天消息外的所有推送
type Event interface {
	Envelope
	event()
}

// ---- Bot 自身 ----

type BotOnline struct {
	ID int64 `json:"qq"`
}

type BotOfflineActive struct {
	ID int64 `json:"qq"`
}

// BotOfflineForced 被挤下线
type BotOfflineForced struct {
	ID      int64  `json:"qq"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

type BotOfflineDropped struct {
	ID int64 `json:"qq"`
}

type BotRelogin struct {
	ID int64 `json:"qq"`
}

type BotMute struct {
	DurationSecs int32         `json:"durationSeconds"`
	Operator     MemberDetails `json:"operator"`
}

func (e *BotMute) Duration() time.Duration { return time.Duration(e.DurationSecs) * time.Second }

type BotUnmute struct {
	Operator MemberDetails `json:"operator"`
}

type BotJoinGroup struct {
	Group   GroupDetails   `json:"group"`
	Inviter *MemberDetails `json:"invitor"`
}

type BotLeaveGroupActive struct {
	Group GroupDetails `json:"group"`
}

type BotLeaveGroupKicked struct {
	Group    GroupDetails  `json:"group"`
	Operator MemberDetails `json:"operator"`
}

type BotLeaveGroupDisband struct {
	Group    GroupDetails  `json:"group"`
	Operator MemberDetails `json:"operator"`
}

type BotPermissionChange struct {
	Group    GroupDetails     `json:"group"`
	Original MemberPermission `json:"origin"`
	Current  MemberPermission `json:"current"`
}

// ---- 撤回 ----

type FriendMessageRecall struct {
	MessageID int32 `json:"messageId"`
	SenderID  int64 `json:"authorId"`
	TimeSecs  int64 `json:"time"`
}

// Message 被撤回的消息，id 为 0 时不存在
func (e *FriendMessageRecall) Message() (MessageHandle, bool) {
	if e.MessageID == 0 {
		return MessageHandle{}, false
	}
	return MessageRef(e.MessageID, e.SenderID), true
}

func (e *FriendMessageRecall) Sender() FriendHandle { return Friend(e.SenderID) }
func (e *FriendMessageRecall) Time() time.Time      { return unixTime(e.TimeSecs) }

type GroupMessageRecall struct {
	MessageID int32          `json:"messageId"`
	Context   GroupDetails   `json:"group"`
	SenderID  int64          `json:"authorId"`
	TimeSecs  int64          `json:"time"`
	Operator  *MemberDetails `json:"operator"`
}

func (e *GroupMessageRecall) Message() (MessageHandle, bool) {
	if e.MessageID == 0 {
		return MessageHandle{}, false
	}
	return MessageRef(e.MessageID, e.Context.ID), true
}

func (e *GroupMessageRecall) Sender() MemberHandle { return Group(e.Context.ID).Member(e.SenderID) }
func (e *GroupMessageRecall) Time() time.Time      { return unixTime(e.TimeSecs) }

// IsOperatorMissing 没有 operator 表示操作者是 bot 自己
func (e *GroupMessageRecall) IsOperatorMissing() bool { return e.Operator == nil }

// ---- 戳一戳 ----

type FriendNudge struct {
	Context FriendDetails
	FromID  int64
	ToID    int64
	Action  string
	Suffix  string
}

func (e *FriendNudge) From() FriendHandle { return Friend(e.FromID) }
func (e *FriendNudge) To() FriendHandle   { return Friend(e.ToID) }

type GroupNudge struct {
	Context GroupDetails
	FromID  int64
	ToID    int64
	Action  string
	Suffix  string
}

func (e *GroupNudge) From() MemberHandle { return Group(e.Context.ID).Member(e.FromID) }
func (e *GroupNudge) To() MemberHandle   { return Group(e.Context.ID).Member(e.ToID) }

type StrangerNudge struct {
	Context StrangerDetails
	FromID  int64
	ToID    int64
	Action  string
	Suffix  string
}

func (e *StrangerNudge) From() StrangerHandle { return Stranger(e.FromID) }
func (e *StrangerNudge) To() StrangerHandle   { return Stranger(e.ToID) }

// ---- 好友 ----

type FriendAdd struct {
	Friend      FriendDetails `json:"friend"`
	WasStranger bool          `json:"stranger"`
}

type FriendDelete struct {
	Friend FriendDetails `json:"friend"`
}

type FriendNicknameChange struct {
	Friend   FriendDetails `json:"friend"`
	Original string        `json:"from"`
	Current  string        `json:"to"`
}

// FriendTyping 好友输入状态改变
type FriendTyping struct {
	Friend FriendDetails `json:"friend"`
	Typing bool          `json:"inputting"`
}

// ---- 群 ----

type GroupNameChange struct {
	Group    GroupDetails   `json:"group"`
	Original string         `json:"origin"`
	Current  string         `json:"current"`
	Operator *MemberDetails `json:"operator"`
}

func (e *GroupNameChange) IsOperatorMissing() bool { return e.Operator == nil }

type GroupMuteAll struct {
	Group    GroupDetails   `json:"group"`
	Original bool           `json:"origin"`
	Current  bool           `json:"current"`
	Operator *MemberDetails `json:"operator"`
}

func (e *GroupMuteAll) IsOperatorMissing() bool { return e.Operator == nil }

type GroupAllowAnonymousChat struct {
	Group    GroupDetails   `json:"group"`
	Original bool           `json:"origin"`
	Current  bool           `json:"current"`
	Operator *MemberDetails `json:"operator"`
}

func (e *GroupAllowAnonymousChat) IsOperatorMissing() bool { return e.Operator == nil }

// GroupAllowConfessTalk 坦白说开关。这个事件没有 operator 字段，由 isByBot 直接给出。
type GroupAllowConfessTalk struct {
	Group    GroupDetails `json:"group"`
	Original bool         `json:"origin"`
	Current  bool         `json:"current"`
	IsByBot  bool         `json:"isByBot"`
}

type GroupAllowMemberInvite struct {
	Group    GroupDetails   `json:"group"`
	Original bool           `json:"origin"`
	Current  bool           `json:"current"`
	Operator *MemberDetails `json:"operator"`
}

func (e *GroupAllowMemberInvite) IsOperatorMissing() bool { return e.Operator == nil }

// ---- 群成员 ----

type MemberMute struct {
	Member       MemberDetails  `json:"member"`
	DurationSecs int32          `json:"durationSeconds"`
	Operator     *MemberDetails `json:"operator"`
}

func (e *MemberMute) Duration() time.Duration { return time.Duration(e.DurationSecs) * time.Second }
func (e *MemberMute) IsOperatorMissing() bool { return e.Operator == nil }

type MemberUnmute struct {
	Member   MemberDetails  `json:"member"`
	Operator *MemberDetails `json:"operator"`
}

func (e *MemberUnmute) IsOperatorMissing() bool { return e.Operator == nil }

type MemberJoin struct {
	Member  MemberDetails  `json:"member"`
	Inviter *MemberDetails `json:"invitor"`
}

type MemberLeaveActive struct {
	Member MemberDetails `json:"member"`
}

type MemberLeaveKicked struct {
	Member   MemberDetails  `json:"member"`
	Operator *MemberDetails `json:"operator"`
}

func (e *MemberLeaveKicked) IsOperatorMissing() bool { return e.Operator == nil }

// MemberNameChange 群名片修改
type MemberNameChange struct {
	Member   MemberDetails `json:"member"`
	Original string        `json:"origin"`
	Current  string        `json:"current"`
}

type MemberSpecialTitleChange struct {
	Member   MemberDetails `json:"member"`
	Original string        `json:"origin"`
	Current  string        `json:"current"`
}

type MemberPermissionChange struct {
	Member   MemberDetails    `json:"member"`
	Original MemberPermission `json:"origin"`
	Current  MemberPermission `json:"current"`
}

type MemberHonorChange struct {
	Member MemberDetails `json:"member"`
	Action HonorAction   `json:"action"`
	Honor  GroupHonor    `json:"honor"`
}

// ---- 其他客户端 ----

type OtherClientOnline struct {
	Client OtherClientDetails `json:"client"`
}

type OtherClientOffline struct {
	Client OtherClientDetails `json:"client"`
}

// ---- 申请 ----

type NewFriendRequest struct {
	EventID      int64  `json:"eventId"`
	FromID       int64  `json:"fromId"`
	FromNickname string `json:"nick"`
	GroupID      int64  `json:"groupId"`
	Message      string `json:"message"`
}

func (e *NewFriendRequest) From() UserHandle { return User(e.FromID) }

// Group 通过群添加好友时的来源群，groupId 为 0 时不存在
func (e *NewFriendRequest) Group() (GroupHandle, bool) {
	if e.GroupID == 0 {
		return GroupHandle{}, false
	}
	return Group(e.GroupID), true
}

func (e *NewFriendRequest) Accept(ctx context.Context, s Session) error {
	return e.respond(ctx, s, NewFriendAccept)
}

func (e *NewFriendRequest) Reject(ctx context.Context, s Session, block bool) error {
	if block {
		return e.respond(ctx, s, NewFriendRejectAndBlock)
	}
	return e.respond(ctx, s, NewFriendReject)
}

func (e *NewFriendRequest) respond(ctx context.Context, s Session, op NewFriendRequestOperation) error {
	return s.HandleNewFriendRequest(ctx, HandleNewFriendRequestArgs{EventID: e.EventID, FromID: e.FromID, Operation: op})
}

type MemberJoinRequest struct {
	EventID      int64  `json:"eventId"`
	FromID       int64  `json:"fromId"`
	FromNickname string `json:"nick"`
	GroupID      int64  `json:"groupId"`
	GroupName    string `json:"groupName"`
	InviterID    *int64 `json:"invitorId"`
	Message      string `json:"message"`
}

func (e *MemberJoinRequest) From() UserHandle   { return User(e.FromID) }
func (e *MemberJoinRequest) Group() GroupHandle { return Group(e.GroupID) }

func (e *MemberJoinRequest) Inviter() (MemberHandle, bool) {
	if e.InviterID == nil {
		return MemberHandle{}, false
	}
	return e.Group().Member(*e.InviterID), true
}

func (e *MemberJoinRequest) Accept(ctx context.Context, s Session) error {
	return e.respond(ctx, s, MemberJoinAccept, "")
}

// Reject 拒绝入群申请，message 会发送给申请人
func (e *MemberJoinRequest) Reject(ctx context.Context, s Session, message string, block bool) error {
	if block {
		return e.respond(ctx, s, MemberJoinRejectAndBlock, message)
	}
	return e.respond(ctx, s, MemberJoinReject, message)
}

func (e *MemberJoinRequest) Ignore(ctx context.Context, s Session, block bool) error {
	if block {
		return e.respond(ctx, s, MemberJoinIgnoreAndBlock, "")
	}
	return e.respond(ctx, s, MemberJoinIgnore, "")
}

func (e *MemberJoinRequest) respond(ctx context.Context, s Session, op MemberJoinRequestOperation, message string) error {
	return s.HandleMemberJoinRequest(ctx, HandleMemberJoinRequestArgs{
		EventID:   e.EventID,
		FromID:    e.FromID,
		GroupID:   e.GroupID,
		Operation: op,
		Message:   message,
	})
}

type BotInvitedJoinGroupRequest struct {
	EventID      int64  `json:"eventId"`
	FromID       int64  `json:"fromId"`
	FromNickname string `json:"nick"`
	GroupID      int64  `json:"groupId"`
	GroupName    string `json:"groupName"`
}

func (e *BotInvitedJoinGroupRequest) From() UserHandle   { return User(e.FromID) }
func (e *BotInvitedJoinGroupRequest) Group() GroupHandle { return Group(e.GroupID) }

func (e *BotInvitedJoinGroupRequest) Accept(ctx context.Context, s Session) error {
	return e.respond(ctx, s, BotInvitedAccept)
}

func (e *BotInvitedJoinGroupRequest) Ignore(ctx context.Context, s Session) error {
	return e.respond(ctx, s, BotInvitedIgnore)
}

func (e *BotInvitedJoinGroupRequest) respond(ctx context.Context, s Session, op BotInvitedJoinGroupRequestOperation) error {
	return s.HandleBotInvitedJoinGroupRequest(ctx, HandleBotInvitedJoinGroupRequestArgs{
		EventID:   e.EventID,
		FromID:    e.FromID,
		GroupID:   e.GroupID,
		Operation: op,
	})
}

// ---- 指令 ----

type CommandExecuted struct {
	Name   string
	Args   []IncomingNode
	Source CommandSource
}

var errAmbiguousCommandSource = errors.New("at most one of `friend` and `member` can be present")

func (e *CommandExecuted) UnmarshalJSON(data []byte) error {
	var raw struct {
		Name   string         `json:"name"`
		Args   MessageChain   `json:"args"`
		Friend *FriendDetails `json:"friend"`
		Member *MemberDetails `json:"member"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode CommandExecutedEvent: %w", err)
	}
	source, err := commandSource(raw.Friend, raw.Member)
	if err != nil {
		return err
	}
	*e = CommandExecuted{Name: raw.Name, Args: raw.Args.Nodes(), Source: source}
	return nil
}

// CommandSource 指令的执行者：好友、群成员或控制台
type CommandSource interface {
	commandSource()
}

type FriendSource struct {
	Friend FriendDetails
}

type MemberSource struct {
	Member MemberDetails
}

// ConsoleSource 指令来自控制台
type ConsoleSource struct{}

func (FriendSource) commandSource()  {}
func (MemberSource) commandSource()  {}
func (ConsoleSource) commandSource() {}

func commandSource(friend *FriendDetails, member *MemberDetails) (CommandSource, error) {
	switch {
	case friend != nil && member != nil:
		return nil, errAmbiguousCommandSource
	case friend != nil:
		return FriendSource{Friend: *friend}, nil
	case member != nil:
		return MemberSource{Member: *member}, nil
	default:
		return ConsoleSource{}, nil
	}
}

func (*BotOnline) Type() string                  { return "BotOnlineEvent" }
func (*BotOfflineActive) Type() string           { return "BotOfflineEventActive" }
func (*BotOfflineForced) Type() string           { return "BotOfflineEventForce" }
func (*BotOfflineDropped) Type() string          { return "BotOfflineEventDropped" }
func (*BotRelogin) Type() string                 { return "BotReloginEvent" }
func (*BotMute) Type() string                    { return "BotMuteEvent" }
func (*BotUnmute) Type() string                  { return "BotUnmuteEvent" }
func (*BotJoinGroup) Type() string               { return "BotJoinGroupEvent" }
func (*BotLeaveGroupActive) Type() string        { return "BotLeaveEventActive" }
func (*BotLeaveGroupKicked) Type() string        { return "BotLeaveEventKick" }
func (*BotLeaveGroupDisband) Type() string       { return "BotLeaveEventDisband" }
func (*BotPermissionChange) Type() string        { return "BotGroupPermissionChangeEvent" }
func (*FriendMessageRecall) Type() string        { return "FriendRecallEvent" }
func (*GroupMessageRecall) Type() string         { return "GroupRecallEvent" }
func (*FriendNudge) Type() string                { return "NudgeEvent" }
func (*GroupNudge) Type() string                 { return "NudgeEvent" }
func (*StrangerNudge) Type() string              { return "NudgeEvent" }
func (*FriendAdd) Type() string                  { return "FriendAddEvent" }
func (*FriendDelete) Type() string               { return "FriendDeleteEvent" }
func (*FriendNicknameChange) Type() string       { return "FriendNickChangedEvent" }
func (*FriendTyping) Type() string               { return "FriendInputStatusChangedEvent" }
func (*GroupNameChange) Type() string            { return "GroupNameChangeEvent" }
func (*GroupMuteAll) Type() string               { return "GroupMuteAllEvent" }
func (*GroupAllowAnonymousChat) Type() string    { return "GroupAllowAnonymousChatEvent" }
func (*GroupAllowConfessTalk) Type() string      { return "GroupAllowConfessTalkEvent" }
func (*GroupAllowMemberInvite) Type() string     { return "GroupAllowMemberInviteEvent" }
func (*MemberMute) Type() string                 { return "MemberMuteEvent" }
func (*MemberUnmute) Type() string               { return "MemberUnmuteEvent" }
func (*MemberJoin) Type() string                 { return "MemberJoinEvent" }
func (*MemberLeaveActive) Type() string          { return "MemberLeaveEventQuit" }
func (*MemberLeaveKicked) Type() string          { return "MemberLeaveEventKick" }
func (*MemberNameChange) Type() string           { return "MemberCardChangeEvent" }
func (*MemberSpecialTitleChange) Type() string   { return "MemberSpecialTitleChangeEvent" }
func (*MemberPermissionChange) Type() string     { return "MemberPermissionChangeEvent" }
func (*MemberHonorChange) Type() string          { return "MemberHonorChangeEvent" }
func (*OtherClientOnline) Type() string          { return "OtherClientOnlineEvent" }
func (*OtherClientOffline) Type() string         { return "OtherClientOfflineEvent" }
func (*NewFriendRequest) Type() string           { return "NewFriendRequestEvent" }
func (*MemberJoinRequest) Type() string          { return "MemberJoinRequestEvent" }
func (*BotInvitedJoinGroupRequest) Type() string { return "BotInvitedJoinGroupRequestEvent" }
func (*CommandExecuted) Type() string            { return "CommandExecutedEvent" }

func (*BotOnline) event()                  {}
func (*BotOfflineActive) event()           {}
func (*BotOfflineForced) event()           {}
func (*BotOfflineDropped) event()          {}
func (*BotRelogin) event()                 {}
func (*BotMute) event()                    {}
func (*BotUnmute) event()                  {}
func (*BotJoinGroup) event()               {}
func (*BotLeaveGroupActive) event()        {}
func (*BotLeaveGroupKicked) event()        {}
func (*BotLeaveGroupDisband) event()       {}
func (*BotPermissionChange) event()        {}
func (*FriendMessageRecall) event()        {}
func (*GroupMessageRecall) event()         {}
func (*FriendNudge) event()                {}
func (*GroupNudge) event()                 {}
func (*StrangerNudge) event()              {}
func (*FriendAdd) event()                  {}
func (*FriendDelete) event()               {}
func (*FriendNicknameChange) event()       {}
func (*FriendTyping) event()               {}
func (*GroupNameChange) event()            {}
func (*GroupMuteAll) event()               {}
func (*GroupAllowAnonymousChat) event()    {}
func (*GroupAllowConfessTalk) event()      {}
func (*GroupAllowMemberInvite) event()     {}
func (*MemberMute) event()                 {}
func (*MemberUnmute) event()               {}
func (*MemberJoin) event()                 {}
func (*MemberLeaveActive) event()          {}
func (*MemberLeaveKicked) event()          {}
func (*MemberNameChange) event()           {}
func (*MemberSpecialTitleChange) event()   {}
func (*MemberPermissionChange) event()     {}
func (*MemberHonorChange) event()          {}
func (*OtherClientOnline) event()          {}
func (*OtherClientOffline) event()         {}
func (*NewFriendRequest) event()           {}
func (*MemberJoinRequest) event()          {}
func (*BotInvitedJoinGroupRequest) event() {}
func (*CommandExecuted) event()            {}
