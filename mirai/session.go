package mirai

import (
	"context"
	"io"
)

// Gateway 不需要认证即可调用的接口
type Gateway interface {
	About(ctx context.Context) (AboutResult, error)
	BotList(ctx context.Context) ([]int64, error)
}

// Session 是一个已认证会话提供的全部操作。
// 句柄和事件上的方法都通过它发出请求，实现可以被多个 goroutine 同时使用。
type Session interface {
	// 消息
	MessageFromID(ctx context.Context, args MessageIDArgs) (Message, error)
	SendFriendMessage(ctx context.Context, args SendMessageArgs) (int32, error)
	SendGroupMessage(ctx context.Context, args SendMessageArgs) (int32, error)
	SendTempMessage(ctx context.Context, args SendTempMessageArgs) (int32, error)
	SendOtherClientMessage(ctx context.Context, args SendMessageArgs) (int32, error)
	UploadImage(ctx context.Context, kind MediaType, image FileUpload) (ImageInfo, error)
	UploadVoice(ctx context.Context, kind MediaType, voice FileUpload) (VoiceInfo, error)
	Recall(ctx context.Context, args MessageIDArgs) error
	Nudge(ctx context.Context, args NudgeArgs) error
	RoamingMessages(ctx context.Context, args RoamingMessagesArgs) ([]Message, error)

	// 申请处理
	HandleNewFriendRequest(ctx context.Context, args HandleNewFriendRequestArgs) error
	HandleMemberJoinRequest(ctx context.Context, args HandleMemberJoinRequestArgs) error
	HandleBotInvitedJoinGroupRequest(ctx context.Context, args HandleBotInvitedJoinGroupRequestArgs) error

	// 列表与资料
	FriendList(ctx context.Context) ([]FriendDetails, error)
	GroupList(ctx context.Context) ([]GroupDetails, error)
	MemberList(ctx context.Context, args TargetArgs) ([]MemberDetails, error)
	LatestMemberList(ctx context.Context, args MultiMemberArgs) ([]MemberDetails, error)
	BotProfile(ctx context.Context) (Profile, error)
	FriendProfile(ctx context.Context, args TargetArgs) (Profile, error)
	MemberProfile(ctx context.Context, args MemberArgs) (Profile, error)
	UserProfile(ctx context.Context, args TargetArgs) (Profile, error)

	// 好友与群管理
	DeleteFriend(ctx context.Context, args TargetArgs) error
	MuteAll(ctx context.Context, args TargetArgs) error
	UnmuteAll(ctx context.Context, args TargetArgs) error
	Mute(ctx context.Context, args MuteArgs) error
	Unmute(ctx context.Context, args MemberArgs) error
	Kick(ctx context.Context, args KickArgs) error
	Quit(ctx context.Context, args TargetArgs) error
	SetEssence(ctx context.Context, args MessageIDArgs) error
	GroupConfig(ctx context.Context, args TargetArgs) (GroupConfig, error)
	UpdateGroupConfig(ctx context.Context, args UpdateGroupConfigArgs) error
	MemberInfo(ctx context.Context, args MemberArgs) (MemberInfo, error)
	UpdateMemberInfo(ctx context.Context, args UpdateMemberInfoArgs) error
	ModifyMemberAdmin(ctx context.Context, args ModifyMemberAdminArgs) error

	SessionInfo(ctx context.Context) (SessionInfo, error)

	// 群文件
	ListFile(ctx context.Context, args ListFileArgs) ([]FileDetails, error)
	FileInfo(ctx context.Context, args GetFileInfoArgs) (FileDetails, error)
	MkDir(ctx context.Context, args MkDirArgs) (FileDetails, error)
	UploadFile(ctx context.Context, group int64, path, name string, file io.Reader) (FileDetails, error)
	DeleteFile(ctx context.Context, args FileArgs) error
	MoveFile(ctx context.Context, args MoveFileArgs) error
	RenameFile(ctx context.Context, args RenameFileArgs) error

	// 指令
	ExecuteCommand(ctx context.Context, args ExecuteCommandArgs) error
	RegisterCommand(ctx context.Context, cmd Command) error

	// 群公告
	ListAnnouncement(ctx context.Context, args ListAnnouncementArgs) ([]AnnouncementDetails, error)
	PublishAnnouncement(ctx context.Context, args PublishAnnouncementArgs) (AnnouncementDetails, error)
	DeleteAnnouncement(ctx context.Context, args AnnouncementArgs) error
}
