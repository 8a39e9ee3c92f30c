package mirai

import (
	"encoding/json"
	"fmt"
)

// MemberPermission 群成员权限
type MemberPermission string

const (
	PermissionMember        MemberPermission = "MEMBER"
	PermissionAdministrator MemberPermission = "ADMINISTRATOR"
	PermissionOwner         MemberPermission = "OWNER"
)

func (p *MemberPermission) UnmarshalJSON(data []byte) error {
	s, err := decodeEnum(data, "permission",
		string(PermissionMember), string(PermissionAdministrator), string(PermissionOwner))
	if err != nil {
		return err
	}
	*p = MemberPermission(s)
	return nil
}

// Sex 资料卡性别
type Sex string

const (
	SexMale    Sex = "MALE"
	SexFemale  Sex = "FEMALE"
	SexUnknown Sex = "UNKNOWN"
)

func (s *Sex) UnmarshalJSON(data []byte) error {
	v, err := decodeEnum(data, "sex", string(SexMale), string(SexFemale), string(SexUnknown))
	if err != nil {
		return err
	}
	*s = Sex(v)
	return nil
}

// GroupHonor 群荣誉，线上使用中文名称。未识别的名称统一归为 HonorUnknown。
type GroupHonor string

const (
	HonorTalkative GroupHonor = "龙王"
	HonorPerformer GroupHonor = "群聊之火"
	HonorLegend    GroupHonor = "群聊炽焰"
	HonorEmotion   GroupHonor = "冒尖小春笋"
	HonorBronze    GroupHonor = "快乐源泉"
	HonorSilver    GroupHonor = "学术新星"
	HonorGolden    GroupHonor = "至尊学神"
	HonorWhirlwind GroupHonor = "一笔当先"
	HonorRicher    GroupHonor = "壕礼皇冠"
	HonorRedPacket GroupHonor = "善财福禄寿"
	HonorUnknown   GroupHonor = "未知群荣誉"
)

var knownHonors = map[GroupHonor]bool{
	HonorTalkative: true, HonorPerformer: true, HonorLegend: true, HonorEmotion: true,
	HonorBronze: true, HonorSilver: true, HonorGolden: true, HonorWhirlwind: true,
	HonorRicher: true, HonorRedPacket: true, HonorUnknown: true,
}

func (h *GroupHonor) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if knownHonors[GroupHonor(s)] {
		*h = GroupHonor(s)
	} else {
		*h = HonorUnknown
	}
	return nil
}

// ImageType 图片格式。未识别的格式归为 ImageUnknown。
type ImageType string

const (
	ImagePNG     ImageType = "PNG"
	ImageBMP     ImageType = "BMP"
	ImageJPG     ImageType = "JPG"
	ImageGIF     ImageType = "GIF"
	ImageAPNG    ImageType = "APNG"
	ImageUnknown ImageType = "UNKNOWN"
)

func (t *ImageType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch ImageType(s) {
	case ImagePNG, ImageBMP, ImageJPG, ImageGIF, ImageAPNG:
		*t = ImageType(s)
	default:
		*t = ImageUnknown
	}
	return nil
}

// HonorAction 群荣誉变化的方向
type HonorAction string

const (
	HonorAchieve HonorAction = "achieve"
	HonorLose    HonorAction = "lose"
)

func (a *HonorAction) UnmarshalJSON(data []byte) error {
	s, err := decodeEnum(data, "honor action", string(HonorAchieve), string(HonorLose))
	if err != nil {
		return err
	}
	*a = HonorAction(s)
	return nil
}

// SubjectKind 戳一戳所在的上下文类型
type SubjectKind string

const (
	SubjectFriend   SubjectKind = "Friend"
	SubjectGroup    SubjectKind = "Group"
	SubjectStranger SubjectKind = "Stranger"
)

// MediaType 上传图片/语音时的目标类型
type MediaType string

const (
	MediaFriend MediaType = "Friend"
	MediaGroup  MediaType = "Group"
	MediaTemp   MediaType = "Temp"
)

func decodeEnum(data []byte, what string, allowed ...string) (string, error) {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", err
	}
	for _, a := range allowed {
		if s == a {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown %s %q", what, s)
}
