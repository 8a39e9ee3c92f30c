package mirai

import (
	"context"
	"fmt"
	"io"
)

// 句柄只包含定位一个对象所需的 id，不缓存任何状态，可以直接比较。
// 所有操作都交给传入的 Session 完成。

func User(id int64) UserHandle               { return UserHandle{ID: id} }
func Friend(id int64) FriendHandle           { return FriendHandle{ID: id} }
func Stranger(id int64) StrangerHandle       { return StrangerHandle{ID: id} }
func Group(id int64) GroupHandle             { return GroupHandle{ID: id} }
func OtherClient(id int64) OtherClientHandle { return OtherClientHandle{ID: id} }

func MessageRef(id int32, contextID int64) MessageHandle {
	return MessageHandle{ID: id, Context: contextID}
}

// UserLike 是所有以 QQ 号标识的句柄
type UserLike interface {
	UserID() int64
}

func AsUser(u UserLike) UserHandle         { return User(u.UserID()) }
func AsFriend(u UserLike) FriendHandle     { return Friend(u.UserID()) }
func AsStranger(u UserLike) StrangerHandle { return Stranger(u.UserID()) }

func AsMember(u UserLike, group GroupHandle) MemberHandle {
	return MemberHandle{ID: u.UserID(), Group: group}
}

func AvatarURL(u UserLike) string {
	return fmt.Sprintf("https://q1.qlogo.cn/g?b=qq&nk=%d&s=640", u.UserID())
}

// Contact 是可以发消息的对象：好友、群、群成员（临时会话）
type Contact interface {
	SendMessage(ctx context.Context, s Session, msg OutgoingMessage) (MessageHandle, error)
	UploadImage(ctx context.Context, s Session, image FileUpload) (ImageInfo, error)
	UploadVoice(ctx context.Context, s Session, voice FileUpload) (VoiceInfo, error)
}

var (
	_ Contact = FriendHandle{}
	_ Contact = GroupHandle{}
	_ Contact = MemberHandle{}
)

// ---- Bot ----

// Self 返回当前会话绑定的 bot 账号
func Self(ctx context.Context, s Session) (UserDetails, error) {
	info, err := s.SessionInfo(ctx)
	if err != nil {
		return UserDetails{}, err
	}
	return info.QQ, nil
}

func Friends(ctx context.Context, s Session) ([]FriendDetails, error) { return s.FriendList(ctx) }

func Groups(ctx context.Context, s Session) ([]GroupDetails, error) { return s.GroupList(ctx) }

func BotProfile(ctx context.Context, s Session) (Profile, error) { return s.BotProfile(ctx) }

func ExecuteCommand(ctx context.Context, s Session, command ...OutgoingNode) error {
	return s.ExecuteCommand(ctx, ExecuteCommandArgs{Command: command})
}

func RegisterCommand(ctx context.Context, s Session, cmd Command) error {
	return s.RegisterCommand(ctx, cmd)
}

// ---- User ----

type UserHandle struct {
	ID int64
}

func (h UserHandle) UserID() int64 { return h.ID }

func (h UserHandle) Profile(ctx context.Context, s Session) (Profile, error) {
	return s.UserProfile(ctx, TargetArgs{Target: h.ID})
}

// ---- Friend ----

type FriendHandle struct {
	ID int64
}

func (h FriendHandle) UserID() int64 { return h.ID }

func (h FriendHandle) SendMessage(ctx context.Context, s Session, msg OutgoingMessage) (MessageHandle, error) {
	id, err := s.SendFriendMessage(ctx, SendMessageArgs{Target: h.ID, OutgoingMessage: msg})
	if err != nil {
		return MessageHandle{}, err
	}
	return MessageRef(id, h.ID), nil
}

func (h FriendHandle) UploadImage(ctx context.Context, s Session, image FileUpload) (ImageInfo, error) {
	return s.UploadImage(ctx, MediaFriend, image)
}

func (h FriendHandle) UploadVoice(ctx context.Context, s Session, voice FileUpload) (VoiceInfo, error) {
	return s.UploadVoice(ctx, MediaFriend, voice)
}

func (h FriendHandle) Nudge(ctx context.Context, s Session, target UserLike) error {
	return s.Nudge(ctx, NudgeArgs{Target: target.UserID(), Subject: h.ID, Kind: SubjectFriend})
}

func (h FriendHandle) RoamingMessages(ctx context.Context, s Session, start, end int64) ([]Message, error) {
	return s.RoamingMessages(ctx, RoamingMessagesArgs{TimeStart: start, TimeEnd: end, QQ: h.ID})
}

func (h FriendHandle) Profile(ctx context.Context, s Session) (Profile, error) {
	return s.FriendProfile(ctx, TargetArgs{Target: h.ID})
}

// Delete 删除好友
func (h FriendHandle) Delete(ctx context.Context, s Session) error {
	return s.DeleteFriend(ctx, TargetArgs{Target: h.ID})
}

// ---- Stranger ----

type StrangerHandle struct {
	ID int64
}

func (h StrangerHandle) UserID() int64 { return h.ID }

func (h StrangerHandle) Nudge(ctx context.Context, s Session, target UserLike) error {
	return s.Nudge(ctx, NudgeArgs{Target: target.UserID(), Subject: h.ID, Kind: SubjectStranger})
}

func (h StrangerHandle) Profile(ctx context.Context, s Session) (Profile, error) {
	return AsUser(h).Profile(ctx, s)
}

// ---- Group ----

type GroupHandle struct {
	ID int64
}

func (h GroupHandle) Member(id int64) MemberHandle { return MemberHandle{ID: id, Group: h} }

func (h GroupHandle) File(id string) FileHandle { return FileHandle{ID: id, Group: h} }

// FilesRoot 群文件根目录
func (h GroupHandle) FilesRoot() FileHandle { return h.File("") }

func (h GroupHandle) Announcement(fid string) AnnouncementHandle {
	return AnnouncementHandle{ID: fid, Group: h}
}

func (h GroupHandle) Members(ctx context.Context, s Session) ([]MemberDetails, error) {
	return s.MemberList(ctx, TargetArgs{Target: h.ID})
}

// RefreshMembers 从服务器重新拉取成员资料，ids 为空时刷新全部成员
func (h GroupHandle) RefreshMembers(ctx context.Context, s Session, ids ...int64) ([]MemberDetails, error) {
	return s.LatestMemberList(ctx, MultiMemberArgs{Target: h.ID, MemberIDs: ids})
}

func (h GroupHandle) SendMessage(ctx context.Context, s Session, msg OutgoingMessage) (MessageHandle, error) {
	id, err := s.SendGroupMessage(ctx, SendMessageArgs{Target: h.ID, OutgoingMessage: msg})
	if err != nil {
		return MessageHandle{}, err
	}
	return MessageRef(id, h.ID), nil
}

func (h GroupHandle) UploadImage(ctx context.Context, s Session, image FileUpload) (ImageInfo, error) {
	return s.UploadImage(ctx, MediaGroup, image)
}

func (h GroupHandle) UploadVoice(ctx context.Context, s Session, voice FileUpload) (VoiceInfo, error) {
	return s.UploadVoice(ctx, MediaGroup, voice)
}

func (h GroupHandle) Nudge(ctx context.Context, s Session, target UserLike) error {
	return s.Nudge(ctx, NudgeArgs{Target: target.UserID(), Subject: h.ID, Kind: SubjectGroup})
}

func (h GroupHandle) RoamingMessages(ctx context.Context, s Session, start, end int64) ([]Message, error) {
	return s.RoamingMessages(ctx, RoamingMessagesArgs{TimeStart: start, TimeEnd: end, Group: h.ID})
}

func (h GroupHandle) MuteAll(ctx context.Context, s Session) error {
	return s.MuteAll(ctx, TargetArgs{Target: h.ID})
}

func (h GroupHandle) UnmuteAll(ctx context.Context, s Session) error {
	return s.UnmuteAll(ctx, TargetArgs{Target: h.ID})
}

// Quit 退出群聊
func (h GroupHandle) Quit(ctx context.Context, s Session) error {
	return s.Quit(ctx, TargetArgs{Target: h.ID})
}

func (h GroupHandle) Config(ctx context.Context, s Session) (GroupConfig, error) {
	return s.GroupConfig(ctx, TargetArgs{Target: h.ID})
}

func (h GroupHandle) UpdateConfig(ctx context.Context, s Session, update GroupConfigUpdate) error {
	return s.UpdateGroupConfig(ctx, UpdateGroupConfigArgs{Target: h.ID, Config: update})
}

func dirLocator(path string) FileLocator {
	if path == "" {
		return FilesRoot()
	}
	return FileByPath(path)
}

// ListFiles 列出 path 下的文件，path 为空时列出根目录。size 为 nil 表示不限制数量。
func (h GroupHandle) ListFiles(ctx context.Context, s Session, path string, offset int32, size *int32, download bool) ([]FileDetails, error) {
	return s.ListFile(ctx, ListFileArgs{
		FileLocator:      dirLocator(path),
		Target:           h.ID,
		Offset:           offset,
		Size:             size,
		WithDownloadInfo: download,
	})
}

func (h GroupHandle) FileInfo(ctx context.Context, s Session, path string, download bool) (FileDetails, error) {
	return s.FileInfo(ctx, GetFileInfoArgs{FileLocator: FileByPath(path), Target: h.ID, WithDownloadInfo: download})
}

func (h GroupHandle) MakeDirectory(ctx context.Context, s Session, path, name string) (FileDetails, error) {
	return s.MkDir(ctx, MkDirArgs{FileLocator: dirLocator(path), Target: h.ID, DirectoryName: name})
}

func (h GroupHandle) UploadFile(ctx context.Context, s Session, path, name string, file io.Reader) (FileDetails, error) {
	return s.UploadFile(ctx, h.ID, path, name, file)
}

func (h GroupHandle) DeleteFile(ctx context.Context, s Session, path string) error {
	return s.DeleteFile(ctx, FileArgs{FileLocator: FileByPath(path), Target: h.ID})
}

func (h GroupHandle) MoveFile(ctx context.Context, s Session, path string, newParent FileHandle) error {
	return s.MoveFile(ctx, NewMoveFileArgs(FileByPath(path), h.ID, FileByID(newParent.ID)))
}

func (h GroupHandle) MoveFileToPath(ctx context.Context, s Session, path, newParentPath string) error {
	return s.MoveFile(ctx, NewMoveFileArgs(FileByPath(path), h.ID, FileByPath(newParentPath)))
}

func (h GroupHandle) RenameFile(ctx context.Context, s Session, path, newName string) error {
	return s.RenameFile(ctx, RenameFileArgs{FileLocator: FileByPath(path), Target: h.ID, RenameTo: newName})
}

func (h GroupHandle) ListAnnouncements(ctx context.Context, s Session, offset int32, size *int32) ([]AnnouncementDetails, error) {
	return s.ListAnnouncement(ctx, ListAnnouncementArgs{ID: h.ID, Offset: offset, Size: size})
}

func (h GroupHandle) PublishAnnouncement(ctx context.Context, s Session, a Announcement) (AnnouncementDetails, error) {
	return s.PublishAnnouncement(ctx, PublishAnnouncementArgs{Target: h.ID, Announcement: a})
}

// ---- Member ----

type MemberHandle struct {
	ID    int64
	Group GroupHandle
}

func (h MemberHandle) UserID() int64 { return h.ID }

// Resolve 获取成员的详细资料
func (h MemberHandle) Resolve(ctx context.Context, s Session) (MemberInfo, error) {
	return s.MemberInfo(ctx, MemberArgs{Target: h.Group.ID, MemberID: h.ID})
}

// SendMessage 发送临时会话消息
func (h MemberHandle) SendMessage(ctx context.Context, s Session, msg OutgoingMessage) (MessageHandle, error) {
	id, err := s.SendTempMessage(ctx, SendTempMessageArgs{QQ: h.ID, Group: h.Group.ID, OutgoingMessage: msg})
	if err != nil {
		return MessageHandle{}, err
	}
	return MessageRef(id, h.ID), nil
}

func (h MemberHandle) UploadImage(ctx context.Context, s Session, image FileUpload) (ImageInfo, error) {
	return s.UploadImage(ctx, MediaTemp, image)
}

func (h MemberHandle) UploadVoice(ctx context.Context, s Session, voice FileUpload) (VoiceInfo, error) {
	return s.UploadVoice(ctx, MediaTemp, voice)
}

func (h MemberHandle) Profile(ctx context.Context, s Session) (Profile, error) {
	return AsUser(h).Profile(ctx, s)
}

func (h MemberHandle) Mute(ctx context.Context, s Session, seconds int32) error {
	return s.Mute(ctx, MuteArgs{Target: h.Group.ID, MemberID: h.ID, Time: seconds})
}

func (h MemberHandle) Unmute(ctx context.Context, s Session) error {
	return s.Unmute(ctx, MemberArgs{Target: h.Group.ID, MemberID: h.ID})
}

func (h MemberHandle) Kick(ctx context.Context, s Session, message string, block bool) error {
	return s.Kick(ctx, KickArgs{Target: h.Group.ID, MemberID: h.ID, Block: block, Msg: message})
}

func (h MemberHandle) UpdateInfo(ctx context.Context, s Session, info MemberInfoUpdate) error {
	return s.UpdateMemberInfo(ctx, UpdateMemberInfoArgs{Target: h.Group.ID, MemberID: h.ID, Info: info})
}

func (h MemberHandle) SetAdmin(ctx context.Context, s Session, admin bool) error {
	return s.ModifyMemberAdmin(ctx, ModifyMemberAdminArgs{Target: h.Group.ID, MemberID: h.ID, Assign: admin})
}

// ---- File ----

type FileHandle struct {
	ID    string
	Group GroupHandle
}

func (h FileHandle) Resolve(ctx context.Context, s Session, download bool) (FileDetails, error) {
	return s.FileInfo(ctx, GetFileInfoArgs{FileLocator: FileByID(h.ID), Target: h.Group.ID, WithDownloadInfo: download})
}

func (h FileHandle) List(ctx context.Context, s Session, offset int32, size *int32, download bool) ([]FileDetails, error) {
	return s.ListFile(ctx, ListFileArgs{
		FileLocator:      FileByID(h.ID),
		Target:           h.Group.ID,
		Offset:           offset,
		Size:             size,
		WithDownloadInfo: download,
	})
}

func (h FileHandle) Delete(ctx context.Context, s Session) error {
	return s.DeleteFile(ctx, FileArgs{FileLocator: FileByID(h.ID), Target: h.Group.ID})
}

func (h FileHandle) Move(ctx context.Context, s Session, newParent FileHandle) error {
	return s.MoveFile(ctx, NewMoveFileArgs(FileByID(h.ID), h.Group.ID, FileByID(newParent.ID)))
}

func (h FileHandle) MoveToPath(ctx context.Context, s Session, newParentPath string) error {
	return s.MoveFile(ctx, NewMoveFileArgs(FileByID(h.ID), h.Group.ID, FileByPath(newParentPath)))
}

func (h FileHandle) Rename(ctx context.Context, s Session, newName string) error {
	return s.RenameFile(ctx, RenameFileArgs{FileLocator: FileByID(h.ID), Target: h.Group.ID, RenameTo: newName})
}

// ---- Announcement ----

type AnnouncementHandle struct {
	ID    string
	Group GroupHandle
}

func (h AnnouncementHandle) Delete(ctx context.Context, s Session) error {
	return s.DeleteAnnouncement(ctx, AnnouncementArgs{ID: h.Group.ID, FID: h.ID})
}

// ---- OtherClient ----

type OtherClientHandle struct {
	ID int64
}

// ---- Message ----

// MessageHandle 定位一条消息：消息 id 加上所在的上下文（好友/群/成员的 id）
type MessageHandle struct {
	ID      int32
	Context int64
}

func (h MessageHandle) Resolve(ctx context.Context, s Session) (Message, error) {
	return s.MessageFromID(ctx, MessageIDArgs{Target: h.Context, MessageID: h.ID})
}

func (h MessageHandle) Recall(ctx context.Context, s Session) error {
	return s.Recall(ctx, MessageIDArgs{Target: h.Context, MessageID: h.ID})
}

func (h MessageHandle) SetEssence(ctx context.Context, s Session) error {
	return s.SetEssence(ctx, MessageIDArgs{Target: h.Context, MessageID: h.ID})
}
