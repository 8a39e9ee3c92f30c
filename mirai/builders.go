package mirai

// GroupConfigUpdate 只包含需要修改的群设置
type GroupConfigUpdate struct {
	Name              *string `json:"name,omitempty"`
	AllowMemberInvite *bool   `json:"allowMemberInvite,omitempty"`
}

func (u GroupConfigUpdate) WithName(name string) GroupConfigUpdate {
	u.Name = &name
	return u
}

func (u GroupConfigUpdate) WithAllowMemberInvite(allow bool) GroupConfigUpdate {
	u.AllowMemberInvite = &allow
	return u
}

type MemberInfoUpdate struct {
	Name         *string `json:"name,omitempty"`
	SpecialTitle *string `json:"specialTitle,omitempty"`
}

func (u MemberInfoUpdate) WithName(name string) MemberInfoUpdate {
	u.Name = &name
	return u
}

func (u MemberInfoUpdate) WithSpecialTitle(title string) MemberInfoUpdate {
	u.SpecialTitle = &title
	return u
}

// Announcement 待发布的群公告。图片最多设置一种来源。
type Announcement struct {
	Content             string `json:"content"`
	SendToNewMember     bool   `json:"sendToNewMember,omitempty"`
	Pinned              bool   `json:"pinned,omitempty"`
	ShowEditCard        bool   `json:"showEditCard,omitempty"`
	ShowPopup           bool   `json:"showPopup,omitempty"`
	RequireConfirmation bool   `json:"requireConfirmation,omitempty"`
	ImageURL            string `json:"imageUrl,omitempty"`
	ImagePath           string `json:"imagePath,omitempty"`
	ImageBase64         string `json:"imageBase64,omitempty"`
}

func NewAnnouncement(content string) Announcement {
	return Announcement{Content: content}
}

// AnnouncementImage 公告图片的来源
type AnnouncementImage struct {
	kind  string
	value string
}

func AnnouncementImageURL(url string) AnnouncementImage  { return AnnouncementImage{"url", url} }
func AnnouncementImagePath(p string) AnnouncementImage   { return AnnouncementImage{"path", p} }
func AnnouncementImageBase64(b string) AnnouncementImage { return AnnouncementImage{"base64", b} }

func (a Announcement) WithImage(img AnnouncementImage) Announcement {
	a.ImageURL, a.ImagePath, a.ImageBase64 = "", "", ""
	switch img.kind {
	case "url":
		a.ImageURL = img.value
	case "path":
		a.ImagePath = img.value
	case "base64":
		a.ImageBase64 = img.value
	}
	return a
}

// Command 注册到 mirai console 的指令
type Command struct {
	Name        string   `json:"name"`
	Alias       []string `json:"alias,omitempty"`
	Usage       *string  `json:"usage,omitempty"`
	Description *string  `json:"description,omitempty"`
}

func NewCommand(name string, alias ...string) Command {
	return Command{Name: name, Alias: alias}
}

func (c Command) WithUsage(usage string) Command {
	c.Usage = &usage
	return c
}

func (c Command) WithDescription(desc string) Command {
	c.Description = &desc
	return c
}
