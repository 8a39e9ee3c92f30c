package mirai

import (
	"encoding/json"
	"io"
)

// 会话接口的参数结构体，字段名与 mirai-api-http 保持一致（lowerCamel），未设置的可选字段不输出。

type VerifyArgs struct {
	VerifyKey string `json:"verifyKey"`
}

type VerifyResult struct {
	Session string `json:"session"`
}

type BindArgs struct {
	QQ int64 `json:"qq"`
}

type TargetArgs struct {
	Target int64 `json:"target"`
}

type NudgeArgs struct {
	Target  int64       `json:"target"`
	Subject int64       `json:"subject"`
	Kind    SubjectKind `json:"kind"`
}

type SendMessageArgs struct {
	Target int64 `json:"target"`
	OutgoingMessage
}

type SendTempMessageArgs struct {
	QQ    int64 `json:"qq"`
	Group int64 `json:"group"`
	OutgoingMessage
}

type SendMessageResult struct {
	MessageID int32 `json:"messageId"`
}

// ID 返回发送成功的消息 id。messageId 为 -1 表示消息被服务器拒绝。
func (r SendMessageResult) ID() (int32, error) {
	if r.MessageID == -1 {
		return 0, &RemoteError{Code: 500, Message: "message was rejected"}
	}
	return r.MessageID, nil
}

type MessageIDArgs struct {
	Target    int64 `json:"target"`
	MessageID int32 `json:"messageId"`
}

// RoamingMessagesArgs 中 QQ 与 Group 只会设置其中一个
type RoamingMessagesArgs struct {
	TimeStart int64 `json:"timeStart"`
	TimeEnd   int64 `json:"timeEnd"`
	QQ        int64 `json:"qq,omitempty"`
	Group     int64 `json:"group,omitempty"`
}

type NewFriendRequestOperation int32

const (
	NewFriendAccept         NewFriendRequestOperation = 0
	NewFriendReject         NewFriendRequestOperation = 1
	NewFriendRejectAndBlock NewFriendRequestOperation = 2
)

type MemberJoinRequestOperation int32

const (
	MemberJoinAccept         MemberJoinRequestOperation = 0
	MemberJoinReject         MemberJoinRequestOperation = 1
	MemberJoinIgnore         MemberJoinRequestOperation = 2
	MemberJoinRejectAndBlock MemberJoinRequestOperation = 3
	MemberJoinIgnoreAndBlock MemberJoinRequestOperation = 4
)

type BotInvitedJoinGroupRequestOperation int32

const (
	BotInvitedAccept BotInvitedJoinGroupRequestOperation = 0
	BotInvitedIgnore BotInvitedJoinGroupRequestOperation = 1
)

// requestResponse 是三种申请处理接口共用的请求体
type requestResponse struct {
	EventID int64  `json:"eventId"`
	FromID  int64  `json:"fromId"`
	GroupID int64  `json:"groupId"`
	Operate int32  `json:"operate"`
	Message string `json:"message"`
}

type HandleNewFriendRequestArgs struct {
	EventID   int64
	FromID    int64
	Operation NewFriendRequestOperation
}

func (a HandleNewFriendRequestArgs) MarshalJSON() ([]byte, error) {
	return json.Marshal(requestResponse{EventID: a.EventID, FromID: a.FromID, Operate: int32(a.Operation)})
}

type HandleMemberJoinRequestArgs struct {
	EventID   int64
	FromID    int64
	GroupID   int64
	Operation MemberJoinRequestOperation
	Message   string
}

func (a HandleMemberJoinRequestArgs) MarshalJSON() ([]byte, error) {
	return json.Marshal(requestResponse{
		EventID: a.EventID,
		FromID:  a.FromID,
		GroupID: a.GroupID,
		Operate: int32(a.Operation),
		Message: a.Message,
	})
}

type HandleBotInvitedJoinGroupRequestArgs struct {
	EventID   int64
	FromID    int64
	GroupID   int64
	Operation BotInvitedJoinGroupRequestOperation
}

func (a HandleBotInvitedJoinGroupRequestArgs) MarshalJSON() ([]byte, error) {
	return json.Marshal(requestResponse{
		EventID: a.EventID,
		FromID:  a.FromID,
		GroupID: a.GroupID,
		Operate: int32(a.Operation),
	})
}

type MuteArgs struct {
	Target   int64 `json:"target"`
	MemberID int64 `json:"memberId"`
	Time     int32 `json:"time"`
}

type KickArgs struct {
	Target   int64  `json:"target"`
	MemberID int64  `json:"memberId"`
	Block    bool   `json:"block,omitempty"`
	Msg      string `json:"msg,omitempty"`
}

type ModifyMemberAdminArgs struct {
	Target   int64 `json:"target"`
	MemberID int64 `json:"memberId"`
	Assign   bool  `json:"assign"`
}

type UpdateGroupConfigArgs struct {
	Target int64             `json:"target"`
	Config GroupConfigUpdate `json:"config"`
}

type MemberArgs struct {
	Target   int64 `json:"target"`
	MemberID int64 `json:"memberId"`
}

// MultiMemberArgs 编码为重复的查询参数：target=..&memberIds=..&memberIds=..
type MultiMemberArgs struct {
	Target    int64   `json:"target"`
	MemberIDs []int64 `json:"memberIds"`
}

type UpdateMemberInfoArgs struct {
	Target   int64            `json:"target"`
	MemberID int64            `json:"memberId"`
	Info     MemberInfoUpdate `json:"info"`
}

// FileLocator 用 id 或路径定位群文件。字段不导出，只能由 FileByID / FileByPath / FilesRoot 构造，
// 所以编码后 id 和 path 至多出现一个。空 id 表示根目录。
type FileLocator struct {
	id   string
	path *string
}

func FileByID(id string) FileLocator { return FileLocator{id: id} }

func FileByPath(path string) FileLocator { return FileLocator{path: &path} }

func FilesRoot() FileLocator { return FileLocator{} }

// field 返回 locator 对应的键值，根目录什么都不输出
func (l FileLocator) field() (key, value string, ok bool) {
	switch {
	case l.path != nil:
		return "path", *l.path, true
	case l.id != "":
		return "id", l.id, true
	}
	return "", "", false
}

// marshalWith 编码 v（不含 locator 的其余字段），再把 locator 的键平铺进同一个对象
func (l FileLocator) marshalWith(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	key, value, ok := l.field()
	if !ok {
		return data, nil
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	fields[key] = encoded
	return json.Marshal(fields)
}

type FileArgs struct {
	FileLocator
	Target int64 `json:"target"`
}

func (a FileArgs) MarshalJSON() ([]byte, error) {
	type plain FileArgs
	return a.FileLocator.marshalWith(plain(a))
}

type ListFileArgs struct {
	FileLocator
	Target           int64  `json:"target"`
	Offset           int32  `json:"offset,omitempty"`
	Size             *int32 `json:"size,omitempty"`
	WithDownloadInfo bool   `json:"withDownloadInfo,omitempty"`
}

func (a ListFileArgs) MarshalJSON() ([]byte, error) {
	type plain ListFileArgs
	return a.FileLocator.marshalWith(plain(a))
}

type GetFileInfoArgs struct {
	FileLocator
	Target           int64 `json:"target"`
	WithDownloadInfo bool  `json:"withDownloadInfo,omitempty"`
}

func (a GetFileInfoArgs) MarshalJSON() ([]byte, error) {
	type plain GetFileInfoArgs
	return a.FileLocator.marshalWith(plain(a))
}

type MkDirArgs struct {
	FileLocator
	Target        int64  `json:"target"`
	DirectoryName string `json:"directoryName"`
}

func (a MkDirArgs) MarshalJSON() ([]byte, error) {
	type plain MkDirArgs
	return a.FileLocator.marshalWith(plain(a))
}

type RenameFileArgs struct {
	FileLocator
	Target   int64  `json:"target"`
	RenameTo string `json:"renameTo"`
}

func (a RenameFileArgs) MarshalJSON() ([]byte, error) {
	type plain RenameFileArgs
	return a.FileLocator.marshalWith(plain(a))
}

// MoveFileArgs 的目标位置同样是 id 或路径二选一，分别编码为 moveTo / moveToPath。
type MoveFileArgs struct {
	FileLocator
	Target     int64   `json:"target"`
	MoveTo     *string `json:"moveTo,omitempty"`
	MoveToPath *string `json:"moveToPath,omitempty"`
}

func (a MoveFileArgs) MarshalJSON() ([]byte, error) {
	type plain MoveFileArgs
	return a.FileLocator.marshalWith(plain(a))
}

// NewMoveFileArgs 根据目标 locator 的形式选择 moveTo 或 moveToPath
func NewMoveFileArgs(file FileLocator, target int64, dest FileLocator) MoveFileArgs {
	args := MoveFileArgs{FileLocator: file, Target: target}
	if dest.path != nil {
		args.MoveToPath = dest.path
	} else {
		id := dest.id
		args.MoveTo = &id
	}
	return args
}

type ExecuteCommandArgs struct {
	Command []OutgoingNode `json:"command"`
}

type ListAnnouncementArgs struct {
	ID     int64  `json:"id"`
	Offset int32  `json:"offset,omitempty"`
	Size   *int32 `json:"size,omitempty"`
}

type AnnouncementArgs struct {
	ID  int64  `json:"id"`
	FID string `json:"fid"`
}

type PublishAnnouncementArgs struct {
	Target int64 `json:"target"`
	Announcement
}

type CountArgs struct {
	Count *int32 `json:"count,omitempty"`
}

// FileUpload 是上传的内容：远程 URL 或者本地数据，二选一。
type FileUpload struct {
	URL    string
	Reader io.Reader
}

func UploadURL(url string) FileUpload { return FileUpload{URL: url} }

func UploadReader(r io.Reader) FileUpload { return FileUpload{Reader: r} }
