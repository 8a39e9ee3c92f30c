package mirai

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// IncomingNode 是收到的消息链中的一个节点
type IncomingNode interface {
	incomingNode()
}

// OutgoingNode 是要发送的消息链中的一个节点，编码时带上 "type" 标签。
type OutgoingNode interface {
	json.Marshaler
	outgoingNode()
}

// --- 收发通用的节点 ---

type AtNode struct {
	Target int64 `json:"target"`
}

func At(target int64) AtNode { return AtNode{Target: target} }

func (n AtNode) TargetUser() UserHandle { return User(n.Target) }

type AtAllNode struct{}

func AtAll() AtAllNode { return AtAllNode{} }

type PlainNode struct {
	Text string `json:"text"`
}

func Plain(text string) PlainNode { return PlainNode{Text: text} }

type XMLNode struct {
	XML string `json:"xml"`
}

type AppNode struct {
	Content string `json:"content"`
}

type PokeNode struct {
	Name string `json:"name"`
}

type DiceNode struct {
	Value int32 `json:"value"`
}

type MusicShareNode struct {
	Kind       string `json:"kind"`
	Title      string `json:"title"`
	Summary    string `json:"summary"`
	JumpURL    string `json:"jumpUrl"`
	PictureURL string `json:"pictureUrl"`
	MusicURL   string `json:"musicUrl"`
	Brief      string `json:"brief"`
}

// --- 只会收到的节点 ---

type IncomingFaceNode struct {
	FaceID      int32  `json:"faceId"`
	Name        string `json:"name"`
	IsSuperFace bool   `json:"isSuperFace"`
}

type IncomingImageNode struct {
	ImageID   string    `json:"imageId"`
	URL       string    `json:"url"`
	Width     int32     `json:"width"`
	Height    int32     `json:"height"`
	Size      int64     `json:"size"`
	ImageType ImageType `json:"imageType"`
	IsEmoji   bool      `json:"isEmoji"`
}

type IncomingVoiceNode struct {
	VoiceID    string `json:"voiceId"`
	URL        string `json:"url"`
	LengthSecs int64  `json:"length"`
}

func (n IncomingVoiceNode) Length() time.Duration { return time.Duration(n.LengthSecs) * time.Second }

type MarketFaceNode struct {
	ID   int32  `json:"id"`
	Name string `json:"name"`
}

// FileNode 的 id 解码后总是以 "/" 开头
type FileNode struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Size int64  `json:"size"`
}

func (n *FileNode) UnmarshalJSON(data []byte) error {
	type plain FileNode
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	p.ID = normalizeFileID(p.ID)
	*n = FileNode(p)
	return nil
}

func normalizeFileID(id string) string {
	if strings.HasPrefix(id, "/") {
		return id
	}
	return "/" + id
}

func (n FileNode) File(group GroupHandle) FileHandle { return group.File(n.ID) }

type ShortVideoNode struct {
	VideoID string  `json:"videoId"`
	Name    string  `json:"filename"`
	Size    int64   `json:"fileSize"`
	Format  string  `json:"fileFormat"`
	URL     *string `json:"videoUrl"`
	MD5     string  `json:"fileMd5"`
}

type IncomingForwardNode struct {
	Messages []IncomingForwardedMessage `json:"nodeList"`
}

// IncomingForwardedMessage 是合并转发中的一条消息
type IncomingForwardedMessage struct {
	SenderID   int64
	SenderName string
	Time       int32
	Quote      Quote
	Nodes      []IncomingNode
}

func (m *IncomingForwardedMessage) UnmarshalJSON(data []byte) error {
	var raw struct {
		SenderID   int64        `json:"senderId"`
		Time       int32        `json:"time"`
		SenderName string       `json:"senderName"`
		Chain      MessageChain `json:"messageChain"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*m = IncomingForwardedMessage{
		SenderID:   raw.SenderID,
		SenderName: raw.SenderName,
		Time:       raw.Time,
		Quote:      raw.Chain.quote,
		Nodes:      raw.Chain.nodes,
	}
	return nil
}

func (m IncomingForwardedMessage) Sender() UserHandle { return User(m.SenderID) }

// --- 只会发送的节点 ---

// OutgoingFaceNode 用表情 id 或名称发送表情，二者编码在同一层。
type OutgoingFaceNode struct {
	ID          *int32
	Name        string
	IsSuperFace bool
}

func FaceByID(id int32) OutgoingFaceNode { return OutgoingFaceNode{ID: &id} }

func FaceByName(name string) OutgoingFaceNode { return OutgoingFaceNode{Name: name} }

func (n OutgoingFaceNode) Super(super bool) OutgoingFaceNode {
	n.IsSuperFace = super
	return n
}

// MediaSource 图片/语音的来源，发送时只能选一种
type MediaSource int

const (
	SourceID MediaSource = iota
	SourceURL
	SourcePath
	SourceBase64
)

type OutgoingImageNode struct {
	Source MediaSource
	Value  string
}

func ImageByID(id string) OutgoingImageNode    { return OutgoingImageNode{SourceID, id} }
func ImageByURL(url string) OutgoingImageNode  { return OutgoingImageNode{SourceURL, url} }
func ImageByPath(p string) OutgoingImageNode   { return OutgoingImageNode{SourcePath, p} }
func ImageByBase64(b string) OutgoingImageNode { return OutgoingImageNode{SourceBase64, b} }

type OutgoingVoiceNode struct {
	Source MediaSource
	Value  string
}

func VoiceByID(id string) OutgoingVoiceNode    { return OutgoingVoiceNode{SourceID, id} }
func VoiceByURL(url string) OutgoingVoiceNode  { return OutgoingVoiceNode{SourceURL, url} }
func VoiceByPath(p string) OutgoingVoiceNode   { return OutgoingVoiceNode{SourcePath, p} }
func VoiceByBase64(b string) OutgoingVoiceNode { return OutgoingVoiceNode{SourceBase64, b} }

type JSONNode struct {
	JSON string `json:"json"`
}

type MiraiCodeNode struct {
	Code string `json:"code"`
}

type OutgoingForwardNode struct {
	Messages []ForwardedMessage `json:"nodeList"`
	Display  *ForwardDisplay    `json:"display,omitempty"`
}

func Forward(display *ForwardDisplay, messages ...ForwardedMessage) OutgoingForwardNode {
	return OutgoingForwardNode{Messages: messages, Display: display}
}

type ForwardDisplay struct {
	Brief   *string  `json:"brief,omitempty"`
	Preview []string `json:"preview,omitempty"`
	Source  *string  `json:"source,omitempty"`
	Summary *string  `json:"summary,omitempty"`
	Title   *string  `json:"title,omitempty"`
}

// ForwardedMessage 是合并转发中的一条：引用已有消息，或者自定义发送者和内容。
type ForwardedMessage interface {
	json.Marshaler
	forwardedMessage()
}

type RefForwardedMessage struct {
	ID      int32
	Context *int64
}

// ForwardRef 按消息句柄引用一条消息
func ForwardRef(m MessageHandle) RefForwardedMessage {
	ctx := m.Context
	return RefForwardedMessage{ID: m.ID, Context: &ctx}
}

// ForwardRefID 只按消息 id 引用
func ForwardRefID(id int32) RefForwardedMessage { return RefForwardedMessage{ID: id} }

func (m RefForwardedMessage) MarshalJSON() ([]byte, error) {
	if m.Context != nil {
		return json.Marshal(struct {
			Ref MessageIDArgs `json:"messageRef"`
		}{MessageIDArgs{Target: *m.Context, MessageID: m.ID}})
	}
	return json.Marshal(struct {
		ID int32 `json:"messageId"`
	}{m.ID})
}

type CustomForwardedMessage struct {
	SenderID   int64          `json:"senderId"`
	Time       *int32         `json:"time,omitempty"`
	SenderName string         `json:"senderName"`
	Nodes      []OutgoingNode `json:"messageChain"`
}

func (m CustomForwardedMessage) MarshalJSON() ([]byte, error) {
	type plain CustomForwardedMessage
	p := plain(m)
	if p.Nodes == nil {
		p.Nodes = []OutgoingNode{}
	}
	return json.Marshal(p)
}

func (RefForwardedMessage) forwardedMessage()    {}
func (CustomForwardedMessage) forwardedMessage() {}

// --- 编码 ---

// tagged 把节点编码为对象后在最前面插入 "type" 字段
func tagged(tag string, v any) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	head := `{"type":` + strconv.Quote(tag)
	if len(body) < 2 || body[0] != '{' {
		return nil, fmt.Errorf("node %s did not encode to an object", tag)
	}
	if string(body) == "{}" {
		return []byte(head + "}"), nil
	}
	return append([]byte(head+","), body[1:]...), nil
}

func (n AtNode) MarshalJSON() ([]byte, error) {
	type plain AtNode
	return tagged("At", plain(n))
}

func (n AtAllNode) MarshalJSON() ([]byte, error) { return tagged("AtAll", struct{}{}) }

func (n PlainNode) MarshalJSON() ([]byte, error) {
	type plain PlainNode
	return tagged("Plain", plain(n))
}

func (n XMLNode) MarshalJSON() ([]byte, error) {
	type plain XMLNode
	return tagged("Xml", plain(n))
}

func (n AppNode) MarshalJSON() ([]byte, error) {
	type plain AppNode
	return tagged("App", plain(n))
}

func (n PokeNode) MarshalJSON() ([]byte, error) {
	type plain PokeNode
	return tagged("Poke", plain(n))
}

func (n DiceNode) MarshalJSON() ([]byte, error) {
	type plain DiceNode
	return tagged("Dice", plain(n))
}

func (n MusicShareNode) MarshalJSON() ([]byte, error) {
	type plain MusicShareNode
	return tagged("MusicShare", plain(n))
}

func (n JSONNode) MarshalJSON() ([]byte, error) {
	type plain JSONNode
	return tagged("Json", plain(n))
}

func (n MiraiCodeNode) MarshalJSON() ([]byte, error) {
	type plain MiraiCodeNode
	return tagged("MiraiCode", plain(n))
}

func (n OutgoingFaceNode) MarshalJSON() ([]byte, error) {
	if n.ID != nil {
		return tagged("Face", struct {
			FaceID      int32 `json:"faceId"`
			IsSuperFace bool  `json:"isSuperFace"`
		}{*n.ID, n.IsSuperFace})
	}
	return tagged("Face", struct {
		Name        string `json:"name"`
		IsSuperFace bool   `json:"isSuperFace"`
	}{n.Name, n.IsSuperFace})
}

func mediaField(prefix string, src MediaSource) string {
	switch src {
	case SourceURL:
		return "url"
	case SourcePath:
		return "path"
	case SourceBase64:
		return "base64"
	default:
		return prefix + "Id"
	}
}

func (n OutgoingImageNode) MarshalJSON() ([]byte, error) {
	return tagged("Image", map[string]string{mediaField("image", n.Source): n.Value})
}

func (n OutgoingVoiceNode) MarshalJSON() ([]byte, error) {
	return tagged("Voice", map[string]string{mediaField("voice", n.Source): n.Value})
}

func (n OutgoingForwardNode) MarshalJSON() ([]byte, error) {
	type plain OutgoingForwardNode
	p := plain(n)
	if p.Messages == nil {
		p.Messages = []ForwardedMessage{}
	}
	return tagged("Forward", p)
}

func (AtNode) incomingNode()              {}
func (AtAllNode) incomingNode()           {}
func (PlainNode) incomingNode()           {}
func (XMLNode) incomingNode()             {}
func (AppNode) incomingNode()             {}
func (PokeNode) incomingNode()            {}
func (DiceNode) incomingNode()            {}
func (MusicShareNode) incomingNode()      {}
func (IncomingFaceNode) incomingNode()    {}
func (IncomingImageNode) incomingNode()   {}
func (IncomingVoiceNode) incomingNode()   {}
func (MarketFaceNode) incomingNode()      {}
func (FileNode) incomingNode()            {}
func (ShortVideoNode) incomingNode()      {}
func (IncomingForwardNode) incomingNode() {}

func (AtNode) outgoingNode()              {}
func (AtAllNode) outgoingNode()           {}
func (PlainNode) outgoingNode()           {}
func (XMLNode) outgoingNode()             {}
func (AppNode) outgoingNode()             {}
func (PokeNode) outgoingNode()            {}
func (DiceNode) outgoingNode()            {}
func (MusicShareNode) outgoingNode()      {}
func (OutgoingFaceNode) outgoingNode()    {}
func (OutgoingImageNode) outgoingNode()   {}
func (OutgoingVoiceNode) outgoingNode()   {}
func (JSONNode) outgoingNode()            {}
func (MiraiCodeNode) outgoingNode()       {}
func (OutgoingForwardNode) outgoingNode() {}

// --- 解码 ---

type typeTag struct {
	Type string `json:"type"`
}

func peekType(data []byte) (string, error) {
	var t typeTag
	if err := json.Unmarshal(data, &t); err != nil {
		return "", err
	}
	if t.Type == "" {
		return "", fmt.Errorf("missing field `type`")
	}
	return t.Type, nil
}

func decodeNode[T IncomingNode](data []byte) (IncomingNode, error) {
	var n T
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return n, nil
}

var incomingNodeDecoders = map[string]func([]byte) (IncomingNode, error){
	"At":         decodeNode[AtNode],
	"AtAll":      decodeNode[AtAllNode],
	"Face":       decodeNode[IncomingFaceNode],
	"Plain":      decodeNode[PlainNode],
	"Image":      decodeNode[IncomingImageNode],
	"Voice":      decodeNode[IncomingVoiceNode],
	"Xml":        decodeNode[XMLNode],
	"App":        decodeNode[AppNode],
	"Poke":       decodeNode[PokeNode],
	"Dice":       decodeNode[DiceNode],
	"MarketFace": decodeNode[MarketFaceNode],
	"MusicShare": decodeNode[MusicShareNode],
	"Forward":    decodeNode[IncomingForwardNode],
	"File":       decodeNode[FileNode],
	"ShortVideo": decodeNode[ShortVideoNode],
}

func decodeIncomingNode(tag string, data []byte) (IncomingNode, error) {
	decode, ok := incomingNodeDecoders[tag]
	if !ok {
		return nil, fmt.Errorf("unknown message node type %q", tag)
	}
	node, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s node: %w", tag, err)
	}
	return node, nil
}
