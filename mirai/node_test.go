package mirai

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encode(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return string(data)
}

func TestToOutgoingRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   IncomingNode
		want string
	}{
		{"plain", Plain("hello"), `{"type":"Plain","text":"hello"}`},
		{"at", At(123), `{"type":"At","target":123}`},
		{"at all", AtAll(), `{"type":"AtAll"}`},
		{"xml", XMLNode{XML: "<a/>"}, `{"type":"Xml","xml":"<a/>"}`},
		{"app", AppNode{Content: "{}"}, `{"type":"App","content":"{}"}`},
		{"poke", PokeNode{Name: "ChuoYiChuo"}, `{"type":"Poke","name":"ChuoYiChuo"}`},
		{"dice", DiceNode{Value: 6}, `{"type":"Dice","value":6}`},
		{
			"face keeps id and super flag",
			IncomingFaceNode{FaceID: 14, Name: "微笑", IsSuperFace: true},
			`{"type":"Face","faceId":14,"isSuperFace":true}`,
		},
		{
			"image becomes an id reference",
			IncomingImageNode{ImageID: "{01E9451B-70ED-EAE3-B37C-101F1EEBF5B5}.mirai", URL: "https://example.com/a.png", ImageType: ImagePNG},
			`{"type":"Image","imageId":"{01E9451B-70ED-EAE3-B37C-101F1EEBF5B5}.mirai"}`,
		},
		{
			"music share",
			MusicShareNode{Kind: "NeteaseCloudMusic", Title: "t", Summary: "s", JumpURL: "j", PictureURL: "p", MusicURL: "m", Brief: "b"},
			`{"type":"MusicShare","kind":"NeteaseCloudMusic","title":"t","summary":"s","jumpUrl":"j","pictureUrl":"p","musicUrl":"m","brief":"b"}`,
		},
		{
			"forward keeps sender and time",
			IncomingForwardNode{Messages: []IncomingForwardedMessage{
				{SenderID: 1, SenderName: "a", Time: 100, Nodes: []IncomingNode{Plain("x")}},
			}},
			`{"type":"Forward","nodeList":[{"senderId":1,"time":100,"senderName":"a","messageChain":[{"type":"Plain","text":"x"}]}]}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ToOutgoing(tt.in)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, encode(t, out))
		})
	}
}

func TestToOutgoingUnrepresentable(t *testing.T) {
	tests := []struct {
		name string
		in   IncomingNode
	}{
		{"voice", IncomingVoiceNode{VoiceID: "v"}},
		{"market face", MarketFaceNode{ID: 1, Name: "m"}},
		{"file", FileNode{ID: "/f", Name: "f"}},
		{"short video", ShortVideoNode{VideoID: "sv"}},
		{
			"voice nested in forward",
			IncomingForwardNode{Messages: []IncomingForwardedMessage{
				{SenderID: 1, Nodes: []IncomingNode{Plain("ok")}},
				{SenderID: 2, Nodes: []IncomingNode{Plain("before"), IncomingVoiceNode{VoiceID: "v"}}},
			}},
		},
		{
			"file nested two levels deep",
			IncomingForwardNode{Messages: []IncomingForwardedMessage{
				{SenderID: 1, Nodes: []IncomingNode{IncomingForwardNode{Messages: []IncomingForwardedMessage{
					{SenderID: 3, Nodes: []IncomingNode{FileNode{ID: "/x"}}},
				}}}},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := ToOutgoing(tt.in)
			assert.Nil(t, out)
			assert.True(t, errors.Is(err, ErrUnrepresentable), "got %v", err)
		})
	}
}

func TestToOutgoingChainStopsAtFirstFailure(t *testing.T) {
	_, err := ToOutgoingChain([]IncomingNode{Plain("a"), MarketFaceNode{ID: 1}, Plain("b")})
	assert.ErrorIs(t, err, ErrUnrepresentable)

	out, err := ToOutgoingChain([]IncomingNode{Plain("a"), At(1)})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}

func TestOutgoingFaceEncoding(t *testing.T) {
	assert.JSONEq(t, `{"type":"Face","faceId":1,"isSuperFace":false}`, encode(t, FaceByID(1)))
	assert.JSONEq(t, `{"type":"Face","name":"微笑","isSuperFace":true}`, encode(t, FaceByName("微笑").Super(true)))
}

func TestOutgoingMediaEncoding(t *testing.T) {
	tests := []struct {
		node OutgoingNode
		want string
	}{
		{ImageByID("i"), `{"type":"Image","imageId":"i"}`},
		{ImageByURL("u"), `{"type":"Image","url":"u"}`},
		{ImageByPath("p"), `{"type":"Image","path":"p"}`},
		{ImageByBase64("b"), `{"type":"Image","base64":"b"}`},
		{VoiceByID("i"), `{"type":"Voice","voiceId":"i"}`},
		{VoiceByURL("u"), `{"type":"Voice","url":"u"}`},
		{VoiceByPath("p"), `{"type":"Voice","path":"p"}`},
		{VoiceByBase64("b"), `{"type":"Voice","base64":"b"}`},
	}
	for _, tt := range tests {
		assert.JSONEq(t, tt.want, encode(t, tt.node))
	}
}

func TestForwardEncoding(t *testing.T) {
	title := "聊天记录"
	fwd := Forward(&ForwardDisplay{Title: &title},
		ForwardRef(MessageRef(7, 42)),
		ForwardRefID(8),
		CustomForwardedMessage{SenderID: 1, SenderName: "a"},
	)
	assert.JSONEq(t, `{
		"type": "Forward",
		"display": {"title": "聊天记录"},
		"nodeList": [
			{"messageRef": {"target": 42, "messageId": 7}},
			{"messageId": 8},
			{"senderId": 1, "senderName": "a", "messageChain": []}
		]
	}`, encode(t, fwd))

	assert.JSONEq(t, `{"type":"Forward","nodeList":[]}`, encode(t, Forward(nil)))
}

func TestNewMessageCoercesToPlain(t *testing.T) {
	msg := NewMessage("hi ", At(1), []byte("raw")).QuoteMessageID(9)
	assert.JSONEq(t, `{
		"quote": 9,
		"messageChain": [
			{"type": "Plain", "text": "hi "},
			{"type": "At", "target": 1},
			{"type": "Plain", "text": "raw"}
		]
	}`, encode(t, msg))

	assert.JSONEq(t, `{"messageChain":[{"type":"Plain","text":"x"}]}`, encode(t, NewMessage("x")))
}

func TestFileNodeIDNormalization(t *testing.T) {
	for _, id := range []string{"abc", "/abc"} {
		var chain MessageChain
		require.NoError(t, json.Unmarshal([]byte(`[{"type":"File","id":"`+id+`","name":"a.txt","size":3}]`), &chain))
		require.Len(t, chain.Nodes(), 1)
		assert.Equal(t, FileNode{ID: "/abc", Name: "a.txt", Size: 3}, chain.Nodes()[0])
	}

	var once FileNode
	require.NoError(t, json.Unmarshal([]byte(`{"id":"x"}`), &once))
	var twice FileNode
	require.NoError(t, json.Unmarshal([]byte(`{"id":"`+once.ID+`"}`), &twice))
	assert.Equal(t, once.ID, twice.ID)
}

func TestIncomingNodeDecoding(t *testing.T) {
	var chain MessageChain
	err := json.Unmarshal([]byte(`[
		{"type":"Face","faceId":1,"name":"惊讶","isSuperFace":false},
		{"type":"Image","imageId":"i","url":"u","width":1,"height":2,"size":3,"imageType":"WEBP","isEmoji":false},
		{"type":"Voice","voiceId":"v","url":"u","length":5},
		{"type":"ShortVideo","videoId":"sv","filename":"a.mp4","fileSize":10,"fileFormat":"mp4","videoUrl":null,"fileMd5":"m"}
	]`), &chain)
	require.NoError(t, err)
	require.Len(t, chain.Nodes(), 4)

	img := chain.Nodes()[1].(IncomingImageNode)
	assert.Equal(t, ImageUnknown, img.ImageType)
	voice := chain.Nodes()[2].(IncomingVoiceNode)
	assert.Equal(t, int64(5), voice.LengthSecs)
	assert.Nil(t, chain.Nodes()[3].(ShortVideoNode).URL)
}

func TestUnknownNodeTypeIsAnError(t *testing.T) {
	var chain MessageChain
	err := json.Unmarshal([]byte(`[{"type":"Sticker","id":1}]`), &chain)
	assert.ErrorContains(t, err, `unknown message node type "Sticker"`)

	err = json.Unmarshal([]byte(`[{"text":"no tag"}]`), &chain)
	assert.ErrorContains(t, err, "missing field `type`")
}
