package mirai

import (
	"encoding/json"
	"errors"
	"time"
)

func unixTime(secs int64) time.Time {
	return time.Unix(secs, 0)
}

// UserDetails 好友/陌生人的基本资料
type UserDetails struct {
	ID       int64  `json:"id"`
	Nickname string `json:"nickname"`
	Remark   string `json:"remark"`
}

func (d UserDetails) Handle() UserHandle { return User(d.ID) }

func (d *UserDetails) UnmarshalJSON(data []byte) error {
	if err := requireFields(data, "id"); err != nil {
		return err
	}
	type plain UserDetails
	return json.Unmarshal(data, (*plain)(d))
}

type FriendDetails UserDetails

func (d FriendDetails) Handle() FriendHandle { return Friend(d.ID) }

func (d *FriendDetails) UnmarshalJSON(data []byte) error {
	return (*UserDetails)(d).UnmarshalJSON(data)
}

type StrangerDetails UserDetails

func (d StrangerDetails) Handle() StrangerHandle { return Stranger(d.ID) }

func (d *StrangerDetails) UnmarshalJSON(data []byte) error {
	return (*UserDetails)(d).UnmarshalJSON(data)
}

type GroupDetails struct {
	ID         int64            `json:"id"`
	Name       string           `json:"name"`
	Permission MemberPermission `json:"permission"`
}

func (d GroupDetails) Handle() GroupHandle { return Group(d.ID) }

func (d *GroupDetails) UnmarshalJSON(data []byte) error {
	if err := requireFields(data, "id", "permission"); err != nil {
		return err
	}
	type plain GroupDetails
	return json.Unmarshal(data, (*plain)(d))
}

type MemberDetails struct {
	ID                    int64            `json:"id"`
	MemberName            string           `json:"memberName"`
	SpecialTitle          string           `json:"specialTitle"`
	Permission            MemberPermission `json:"permission"`
	JoinTimestamp         int32            `json:"joinTimestamp"`
	LastSpeakTimestamp    int32            `json:"lastSpeakTimestamp"`
	MuteTimeRemainingSecs int32            `json:"muteTimeRemaining"`
	Group                 GroupDetails     `json:"group"`
}

func (d MemberDetails) Handle() MemberHandle { return d.Group.Handle().Member(d.ID) }

// 成员缺少 permission 或 group 时无法定位，直接拒绝
func (d *MemberDetails) UnmarshalJSON(data []byte) error {
	if err := requireFields(data, "id", "permission", "group"); err != nil {
		return err
	}
	type plain MemberDetails
	return json.Unmarshal(data, (*plain)(d))
}

func (d MemberDetails) JoinTime() time.Time { return unixTime(int64(d.JoinTimestamp)) }

func (d MemberDetails) LastSpeakTime() time.Time { return unixTime(int64(d.LastSpeakTimestamp)) }

func (d MemberDetails) MuteTimeRemaining() time.Duration {
	return time.Duration(d.MuteTimeRemainingSecs) * time.Second
}

type MemberActivity struct {
	Rank        int32        `json:"rank"`
	Points      int32        `json:"point"`
	Honors      []GroupHonor `json:"honors"`
	Temperature int32        `json:"temperature"`
}

// MemberInfo 是 memberInfo 接口返回的资料，成员字段平铺在顶层。
type MemberInfo struct {
	MemberDetails
	Activity MemberActivity `json:"active"`
}

// 嵌入的 MemberDetails 带有 UnmarshalJSON，需要单独解出 active
func (m *MemberInfo) UnmarshalJSON(data []byte) error {
	if err := m.MemberDetails.UnmarshalJSON(data); err != nil {
		return err
	}
	var rest struct {
		Activity MemberActivity `json:"active"`
	}
	if err := json.Unmarshal(data, &rest); err != nil {
		return err
	}
	m.Activity = rest.Activity
	return nil
}

type OtherClientDetails struct {
	ID       int64  `json:"id"`
	Platform string `json:"platform"`
}

func (d OtherClientDetails) Handle() OtherClientHandle { return OtherClient(d.ID) }

func (d *OtherClientDetails) UnmarshalJSON(data []byte) error {
	if err := requireFields(data, "id"); err != nil {
		return err
	}
	type plain OtherClientDetails
	return json.Unmarshal(data, (*plain)(d))
}

type Profile struct {
	Nickname string `json:"nickname"`
	Email    string `json:"email"`
	Age      int32  `json:"age"`
	Level    int32  `json:"level"`
	Sign     string `json:"sign"`
	Sex      Sex    `json:"sex"`
}

type GroupConfig struct {
	Name              string `json:"name"`
	ConfessTalk       bool   `json:"confessTalk"`
	AllowMemberInvite bool   `json:"allowMemberInvite"`
	AutoApprove       bool   `json:"autoApprove"`
	AnonymousChat     bool   `json:"anonymousChat"`
	MuteAll           bool   `json:"muteAll"`
}

type ImageInfo struct {
	ImageID string `json:"imageId"`
	URL     string `json:"url"`
}

type VoiceInfo struct {
	VoiceID string `json:"voiceId"`
}

type AboutResult struct {
	Version string `json:"version"`
}

type SessionInfo struct {
	QQ UserDetails `json:"qq"`
}

type FileDownloadInfo struct {
	URL string `json:"url"`
}

// FileMetadata 只有文件才有，目录没有。
type FileMetadata struct {
	Size               int64
	SHA1               string
	MD5                string
	UploaderID         int64
	UploadTimeSecs     int64
	LastModifyTimeSecs int64
	DownloadInfo       *FileDownloadInfo
}

func (m FileMetadata) Uploader(group GroupHandle) MemberHandle { return group.Member(m.UploaderID) }

func (m FileMetadata) UploadTime() time.Time { return unixTime(m.UploadTimeSecs) }

func (m FileMetadata) LastModifyTime() time.Time { return unixTime(m.LastModifyTimeSecs) }

type FileDetails struct {
	ID     string
	Name   string
	Path   string
	Parent *FileDetails
	// Metadata 为 nil 表示这是一个目录
	Metadata *FileMetadata
	Group    GroupDetails
}

var errNotFileOrDirectory = errors.New("expected a file or a directory")

func (d *FileDetails) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID             string            `json:"id"`
		Name           string            `json:"name"`
		Path           string            `json:"path"`
		Parent         *FileDetails      `json:"parent"`
		Contact        GroupDetails      `json:"contact"`
		IsFile         bool              `json:"isFile"`
		IsDirectory    bool              `json:"isDirectory"`
		Size           int64             `json:"size"`
		SHA1           *string           `json:"sha1"`
		MD5            *string           `json:"md5"`
		UploaderID     *int64            `json:"uploaderId"`
		UploadTime     *int64            `json:"uploadTime"`
		LastModifyTime *int64            `json:"lastModifyTime"`
		DownloadInfo   *FileDownloadInfo `json:"downloadInfo"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*d = FileDetails{ID: raw.ID, Name: raw.Name, Path: raw.Path, Parent: raw.Parent, Group: raw.Contact}
	switch {
	case raw.IsFile && !raw.IsDirectory && raw.SHA1 != nil && raw.MD5 != nil &&
		raw.UploaderID != nil && raw.UploadTime != nil && raw.LastModifyTime != nil:
		d.Metadata = &FileMetadata{
			Size:               raw.Size,
			SHA1:               *raw.SHA1,
			MD5:                *raw.MD5,
			UploaderID:         *raw.UploaderID,
			UploadTimeSecs:     *raw.UploadTime,
			LastModifyTimeSecs: *raw.LastModifyTime,
			DownloadInfo:       raw.DownloadInfo,
		}
	case !raw.IsFile && raw.IsDirectory && raw.Size == 0 && raw.SHA1 == nil && raw.MD5 == nil &&
		raw.UploaderID == nil && raw.UploadTime == nil && raw.LastModifyTime == nil && raw.DownloadInfo == nil:
	default:
		return errNotFileOrDirectory
	}
	return nil
}

func (d FileDetails) IsDirectory() bool { return d.Metadata == nil }

func (d FileDetails) Handle() FileHandle { return d.Group.Handle().File(d.ID) }

// Uploader 目录没有上传者
func (d FileDetails) Uploader() (MemberHandle, bool) {
	if d.Metadata == nil {
		return MemberHandle{}, false
	}
	return d.Metadata.Uploader(d.Group.Handle()), true
}

type AnnouncementDetails struct {
	ID                  string       `json:"fid"`
	Content             string       `json:"content"`
	PublisherID         int64        `json:"senderId"`
	PublicationTimeSecs int64        `json:"publicationTime"`
	ConfirmedCount      int32        `json:"confirmedMembersCount"`
	AllConfirmed        bool         `json:"allConfirmed"`
	Group               GroupDetails `json:"group"`
}

func (d AnnouncementDetails) Handle() AnnouncementHandle {
	return d.Group.Handle().Announcement(d.ID)
}

func (d AnnouncementDetails) PublicationTime() time.Time { return unixTime(d.PublicationTimeSecs) }
