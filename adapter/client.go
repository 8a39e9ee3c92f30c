package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/ziyi233/mirai-tui/mirai"
)

// transport 负责把一次调用送到 mirai-api-http 并取回原始响应体。
// GET 的参数编码为查询字符串，POST 的参数编码为 JSON 请求体。
type transport interface {
	call(ctx context.Context, method, path string, args any) ([]byte, error)
	upload(ctx context.Context, path string, parts []formPart) ([]byte, error)
	Close() error
}

// formPart 是 multipart 表单中的一项，file 不为 nil 时作为文件上传
type formPart struct {
	name     string
	value    string
	file     io.Reader
	filename string
}

// Client 是已认证的会话，实现 mirai.Session。HTTP 与 websocket 共用这一套接口映射。
type Client struct {
	t          transport
	sessionKey string
	limiter    *rate.Limiter
}

var _ mirai.Session = (*Client)(nil)

func newClient(t transport, sessionKey string, o *options) *Client {
	return &Client{t: t, sessionKey: sessionKey, limiter: o.limiter}
}

// SessionKey 当前会话的 key
func (c *Client) SessionKey() string { return c.sessionKey }

func (c *Client) Close() error { return c.t.Close() }

func (c *Client) do(ctx context.Context, method, path string, args any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}
	return c.t.call(ctx, method, path, args)
}

// validate 先检查 {code, msg} 错误结构，再把整个响应体解码到 out（out 为 nil 时只检查错误）
func (c *Client) validate(ctx context.Context, method, path string, args, out any) error {
	body, err := c.do(ctx, method, path, args)
	if err != nil {
		return err
	}
	return decodeBody(path, body, out)
}

// data 解码 {data: T} 中的 data
func (c *Client) data(ctx context.Context, method, path string, args, out any) error {
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.validate(ctx, method, path, args, &wrapper); err != nil {
		return err
	}
	if err := json.Unmarshal(wrapper.Data, out); err != nil {
		return &DecodeError{Op: path, Err: err}
	}
	return nil
}

func (c *Client) send(ctx context.Context, path string, args any) (int32, error) {
	var result mirai.SendMessageResult
	if err := c.validate(ctx, http.MethodPost, path, args, &result); err != nil {
		return 0, err
	}
	return result.ID()
}

func (c *Client) uploadForm(ctx context.Context, path string, parts []formPart, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return err
		}
	}
	body, err := c.t.upload(ctx, path, parts)
	if err != nil {
		return err
	}
	return decodeBody(path, body, out)
}

func decodeBody(op string, body []byte, out any) error {
	if !json.Valid(body) {
		return &DecodeError{Op: op, Err: errors.New("response is not valid json")}
	}
	if err := mirai.CheckRemoteError(body); err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{Op: op, Err: err}
	}
	return nil
}

func decodeMessages(op string, raws []json.RawMessage) ([]mirai.Message, error) {
	out := make([]mirai.Message, 0, len(raws))
	for _, raw := range raws {
		msg, err := mirai.DecodeMessage(raw)
		if err != nil {
			return nil, &DecodeError{Op: op, Err: err}
		}
		out = append(out, msg)
	}
	return out, nil
}

// ---- 认证与消息队列 ----

func (c *Client) Bind(ctx context.Context, qq int64) error {
	return c.validate(ctx, http.MethodPost, "bind", mirai.BindArgs{QQ: qq}, nil)
}

func (c *Client) Release(ctx context.Context, qq int64) error {
	return c.validate(ctx, http.MethodPost, "release", mirai.BindArgs{QQ: qq}, nil)
}

// CountMessage 队列中未读取的推送数量
func (c *Client) CountMessage(ctx context.Context) (int32, error) {
	var n int32
	err := c.data(ctx, http.MethodGet, "countMessage", nil, &n)
	return n, err
}

func (c *Client) queue(ctx context.Context, path string, args mirai.CountArgs) ([]mirai.Envelope, error) {
	var raws []json.RawMessage
	if err := c.data(ctx, http.MethodGet, path, args, &raws); err != nil {
		return nil, err
	}
	out := make([]mirai.Envelope, 0, len(raws))
	for _, raw := range raws {
		env, err := mirai.DecodeEnvelope(raw)
		if err != nil {
			return nil, &DecodeError{Op: path, Err: err}
		}
		out = append(out, env)
	}
	return out, nil
}

// FetchMessage 按时间顺序取出并移除队列头部的推送
func (c *Client) FetchMessage(ctx context.Context, args mirai.CountArgs) ([]mirai.Envelope, error) {
	return c.queue(ctx, "fetchMessage", args)
}

func (c *Client) FetchLatestMessage(ctx context.Context, args mirai.CountArgs) ([]mirai.Envelope, error) {
	return c.queue(ctx, "fetchLatestMessage", args)
}

// PeekMessage 与 FetchMessage 相同但不移除
func (c *Client) PeekMessage(ctx context.Context, args mirai.CountArgs) ([]mirai.Envelope, error) {
	return c.queue(ctx, "peekMessage", args)
}

func (c *Client) PeekLatestMessage(ctx context.Context, args mirai.CountArgs) ([]mirai.Envelope, error) {
	return c.queue(ctx, "peekLatestMessage", args)
}

// ---- 消息 ----

func (c *Client) MessageFromID(ctx context.Context, args mirai.MessageIDArgs) (mirai.Message, error) {
	var raw json.RawMessage
	if err := c.data(ctx, http.MethodGet, "messageFromId", args, &raw); err != nil {
		return nil, err
	}
	msg, err := mirai.DecodeMessage(raw)
	if err != nil {
		return nil, &DecodeError{Op: "messageFromId", Err: err}
	}
	return msg, nil
}

func (c *Client) SendFriendMessage(ctx context.Context, args mirai.SendMessageArgs) (int32, error) {
	return c.send(ctx, "sendFriendMessage", args)
}

func (c *Client) SendGroupMessage(ctx context.Context, args mirai.SendMessageArgs) (int32, error) {
	return c.send(ctx, "sendGroupMessage", args)
}

func (c *Client) SendTempMessage(ctx context.Context, args mirai.SendTempMessageArgs) (int32, error) {
	return c.send(ctx, "sendTempMessage", args)
}

func (c *Client) SendOtherClientMessage(ctx context.Context, args mirai.SendMessageArgs) (int32, error) {
	return c.send(ctx, "sendOtherClientMessage", args)
}

func mediaParts(kind mirai.MediaType, field string, up mirai.FileUpload) []formPart {
	parts := []formPart{{name: "type", value: string(kind)}}
	if up.Reader != nil {
		return append(parts, formPart{name: field, file: up.Reader, filename: field})
	}
	return append(parts, formPart{name: "url", value: up.URL})
}

func (c *Client) UploadImage(ctx context.Context, kind mirai.MediaType, image mirai.FileUpload) (mirai.ImageInfo, error) {
	var info mirai.ImageInfo
	err := c.uploadForm(ctx, "uploadImage", mediaParts(kind, "img", image), &info)
	return info, err
}

func (c *Client) UploadVoice(ctx context.Context, kind mirai.MediaType, voice mirai.FileUpload) (mirai.VoiceInfo, error) {
	var info mirai.VoiceInfo
	err := c.uploadForm(ctx, "uploadVoice", mediaParts(kind, "voice", voice), &info)
	return info, err
}

func (c *Client) Recall(ctx context.Context, args mirai.MessageIDArgs) error {
	return c.validate(ctx, http.MethodPost, "recall", args, nil)
}

func (c *Client) Nudge(ctx context.Context, args mirai.NudgeArgs) error {
	return c.validate(ctx, http.MethodPost, "sendNudge", args, nil)
}

func (c *Client) RoamingMessages(ctx context.Context, args mirai.RoamingMessagesArgs) ([]mirai.Message, error) {
	var raws []json.RawMessage
	if err := c.data(ctx, http.MethodPost, "roamingMessages", args, &raws); err != nil {
		return nil, err
	}
	return decodeMessages("roamingMessages", raws)
}

// ---- 申请处理 ----

func (c *Client) HandleNewFriendRequest(ctx context.Context, args mirai.HandleNewFriendRequestArgs) error {
	return c.validate(ctx, http.MethodPost, "resp/newFriendRequestEvent", args, nil)
}

func (c *Client) HandleMemberJoinRequest(ctx context.Context, args mirai.HandleMemberJoinRequestArgs) error {
	return c.validate(ctx, http.MethodPost, "resp/memberJoinRequestEvent", args, nil)
}

func (c *Client) HandleBotInvitedJoinGroupRequest(ctx context.Context, args mirai.HandleBotInvitedJoinGroupRequestArgs) error {
	return c.validate(ctx, http.MethodPost, "resp/botInvitedJoinGroupRequestEvent", args, nil)
}

// ---- 列表与资料 ----

func (c *Client) FriendList(ctx context.Context) ([]mirai.FriendDetails, error) {
	var out []mirai.FriendDetails
	err := c.data(ctx, http.MethodGet, "friendList", nil, &out)
	return out, err
}

func (c *Client) GroupList(ctx context.Context) ([]mirai.GroupDetails, error) {
	var out []mirai.GroupDetails
	err := c.data(ctx, http.MethodGet, "groupList", nil, &out)
	return out, err
}

func (c *Client) MemberList(ctx context.Context, args mirai.TargetArgs) ([]mirai.MemberDetails, error) {
	var out []mirai.MemberDetails
	err := c.data(ctx, http.MethodGet, "memberList", args, &out)
	return out, err
}

func (c *Client) LatestMemberList(ctx context.Context, args mirai.MultiMemberArgs) ([]mirai.MemberDetails, error) {
	var out []mirai.MemberDetails
	err := c.data(ctx, http.MethodGet, "latestMemberList", args, &out)
	return out, err
}

func (c *Client) BotProfile(ctx context.Context) (mirai.Profile, error) {
	var out mirai.Profile
	err := c.validate(ctx, http.MethodGet, "botProfile", nil, &out)
	return out, err
}

func (c *Client) FriendProfile(ctx context.Context, args mirai.TargetArgs) (mirai.Profile, error) {
	var out mirai.Profile
	err := c.validate(ctx, http.MethodGet, "friendProfile", args, &out)
	return out, err
}

func (c *Client) MemberProfile(ctx context.Context, args mirai.MemberArgs) (mirai.Profile, error) {
	var out mirai.Profile
	err := c.validate(ctx, http.MethodGet, "memberProfile", args, &out)
	return out, err
}

func (c *Client) UserProfile(ctx context.Context, args mirai.TargetArgs) (mirai.Profile, error) {
	var out mirai.Profile
	err := c.validate(ctx, http.MethodGet, "userProfile", args, &out)
	return out, err
}

// ---- 好友与群管理 ----

func (c *Client) DeleteFriend(ctx context.Context, args mirai.TargetArgs) error {
	return c.validate(ctx, http.MethodPost, "deleteFriend", args, nil)
}

func (c *Client) MuteAll(ctx context.Context, args mirai.TargetArgs) error {
	return c.validate(ctx, http.MethodPost, "muteAll", args, nil)
}

func (c *Client) UnmuteAll(ctx context.Context, args mirai.TargetArgs) error {
	return c.validate(ctx, http.MethodPost, "unmuteAll", args, nil)
}

func (c *Client) Mute(ctx context.Context, args mirai.MuteArgs) error {
	return c.validate(ctx, http.MethodPost, "mute", args, nil)
}

func (c *Client) Unmute(ctx context.Context, args mirai.MemberArgs) error {
	return c.validate(ctx, http.MethodPost, "unmute", args, nil)
}

func (c *Client) Kick(ctx context.Context, args mirai.KickArgs) error {
	return c.validate(ctx, http.MethodPost, "kick", args, nil)
}

func (c *Client) Quit(ctx context.Context, args mirai.TargetArgs) error {
	return c.validate(ctx, http.MethodPost, "quit", args, nil)
}

func (c *Client) SetEssence(ctx context.Context, args mirai.MessageIDArgs) error {
	return c.validate(ctx, http.MethodPost, "setEssence", args, nil)
}

func (c *Client) GroupConfig(ctx context.Context, args mirai.TargetArgs) (mirai.GroupConfig, error) {
	var out mirai.GroupConfig
	err := c.validate(ctx, http.MethodGet, "groupConfig", args, &out)
	return out, err
}

func (c *Client) UpdateGroupConfig(ctx context.Context, args mirai.UpdateGroupConfigArgs) error {
	return c.validate(ctx, http.MethodPost, "groupConfig", args, nil)
}

func (c *Client) MemberInfo(ctx context.Context, args mirai.MemberArgs) (mirai.MemberInfo, error) {
	var out mirai.MemberInfo
	err := c.validate(ctx, http.MethodGet, "memberInfo", args, &out)
	return out, err
}

func (c *Client) UpdateMemberInfo(ctx context.Context, args mirai.UpdateMemberInfoArgs) error {
	return c.validate(ctx, http.MethodPost, "memberInfo", args, nil)
}

func (c *Client) ModifyMemberAdmin(ctx context.Context, args mirai.ModifyMemberAdminArgs) error {
	return c.validate(ctx, http.MethodPost, "memberAdmin", args, nil)
}

func (c *Client) SessionInfo(ctx context.Context) (mirai.SessionInfo, error) {
	var out mirai.SessionInfo
	err := c.data(ctx, http.MethodGet, "sessionInfo", nil, &out)
	return out, err
}

// ---- 群文件 ----

func (c *Client) ListFile(ctx context.Context, args mirai.ListFileArgs) ([]mirai.FileDetails, error) {
	var out []mirai.FileDetails
	err := c.data(ctx, http.MethodGet, "file/list", args, &out)
	return out, err
}

func (c *Client) FileInfo(ctx context.Context, args mirai.GetFileInfoArgs) (mirai.FileDetails, error) {
	var out mirai.FileDetails
	err := c.data(ctx, http.MethodGet, "file/info", args, &out)
	return out, err
}

func (c *Client) MkDir(ctx context.Context, args mirai.MkDirArgs) (mirai.FileDetails, error) {
	var out mirai.FileDetails
	err := c.data(ctx, http.MethodPost, "file/mkdir", args, &out)
	return out, err
}

func (c *Client) UploadFile(ctx context.Context, group int64, path, name string, file io.Reader) (mirai.FileDetails, error) {
	parts := []formPart{
		{name: "path", value: path},
		{name: "type", value: "group"},
		{name: "target", value: formatID(group)},
		{name: "file", file: file, filename: name},
	}
	var wrapper struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.uploadForm(ctx, "file/upload", parts, &wrapper); err != nil {
		return mirai.FileDetails{}, err
	}
	var out mirai.FileDetails
	if err := json.Unmarshal(wrapper.Data, &out); err != nil {
		return mirai.FileDetails{}, &DecodeError{Op: "file/upload", Err: err}
	}
	return out, nil
}

func (c *Client) DeleteFile(ctx context.Context, args mirai.FileArgs) error {
	return c.validate(ctx, http.MethodPost, "file/delete", args, nil)
}

func (c *Client) MoveFile(ctx context.Context, args mirai.MoveFileArgs) error {
	return c.validate(ctx, http.MethodPost, "file/move", args, nil)
}

func (c *Client) RenameFile(ctx context.Context, args mirai.RenameFileArgs) error {
	return c.validate(ctx, http.MethodPost, "file/rename", args, nil)
}

// ---- 指令 ----

func (c *Client) ExecuteCommand(ctx context.Context, args mirai.ExecuteCommandArgs) error {
	return c.validate(ctx, http.MethodPost, "cmd/execute", args, nil)
}

func (c *Client) RegisterCommand(ctx context.Context, cmd mirai.Command) error {
	return c.validate(ctx, http.MethodPost, "cmd/register", cmd, nil)
}

// ---- 群公告 ----

func (c *Client) ListAnnouncement(ctx context.Context, args mirai.ListAnnouncementArgs) ([]mirai.AnnouncementDetails, error) {
	var out []mirai.AnnouncementDetails
	err := c.data(ctx, http.MethodGet, "anno/list", args, &out)
	return out, err
}

func (c *Client) PublishAnnouncement(ctx context.Context, args mirai.PublishAnnouncementArgs) (mirai.AnnouncementDetails, error) {
	var out mirai.AnnouncementDetails
	err := c.data(ctx, http.MethodPost, "anno/publish", args, &out)
	return out, err
}

func (c *Client) DeleteAnnouncement(ctx context.Context, args mirai.AnnouncementArgs) error {
	return c.validate(ctx, http.MethodPost, "anno/delete", args, nil)
}
