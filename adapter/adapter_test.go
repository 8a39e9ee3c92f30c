package adapter

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziyi233/mirai-tui/mirai"
)

const chain = `"messageChain":[{"type":"Source","id":5,"time":1700000000},{"type":"Plain","text":"你好 "},{"type":"At","target":2}]`

func TestFromEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    ChatMessage
	}{
		{
			name:    "friend",
			payload: `{"type":"FriendMessage","sender":{"id":1,"nickname":"阿明","remark":""},` + chain + `}`,
			want:    ChatMessage{ChatID: "1", ChatType: ChatPrivate, SenderID: "1", SenderName: "阿明"},
		},
		{
			name:    "group",
			payload: `{"type":"GroupMessage","sender":{"id":3,"memberName":"群友","permission":"MEMBER","group":{"id":100,"name":"g","permission":"MEMBER"}},` + chain + `}`,
			want:    ChatMessage{ChatID: "100", ChatType: ChatGroup, SenderID: "3", SenderName: "群友"},
		},
		{
			name:    "temp",
			payload: `{"type":"TempMessage","sender":{"id":3,"memberName":"群友","permission":"MEMBER","group":{"id":100,"name":"g","permission":"MEMBER"}},` + chain + `}`,
			want:    ChatMessage{ChatID: "3", ChatType: ChatTemp, SenderID: "3", SenderName: "群友"},
		},
		{
			name:    "group sync",
			payload: `{"type":"GroupSyncMessage","subject":{"id":100,"name":"g","permission":"MEMBER"},` + chain + `}`,
			want:    ChatMessage{ChatID: "100", ChatType: ChatGroup, SenderID: "999", SenderName: SelfName},
		},
		{
			name:    "friend sync",
			payload: `{"type":"FriendSyncMessage","subject":{"id":1,"nickname":"阿明","remark":""},` + chain + `}`,
			want:    ChatMessage{ChatID: "1", ChatType: ChatPrivate, SenderID: "999", SenderName: SelfName},
		},
		{
			name:    "stranger",
			payload: `{"type":"StrangerMessage","sender":{"id":8,"nickname":"路人","remark":""},` + chain + `}`,
			want:    ChatMessage{ChatID: "8", ChatType: ChatStranger, SenderID: "8", SenderName: "路人"},
		},
		{
			name:    "stranger sync",
			payload: `{"type":"StrangerSyncMessage","subject":{"id":8,"nickname":"路人","remark":""},` + chain + `}`,
			want:    ChatMessage{ChatID: "8", ChatType: ChatStranger, SenderID: "999", SenderName: SelfName},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, err := mirai.DecodeEnvelope([]byte(tt.payload))
			require.NoError(t, err)
			got, ok := FromEnvelope(env, 999)
			require.True(t, ok)
			want := tt.want
			want.Content = "你好 @2"
			want.Time = time.Unix(1700000000, 0)
			assert.Equal(t, want, got)
		})
	}
}

func TestFromEnvelopeIgnoresEvents(t *testing.T) {
	for _, payload := range []string{
		`{"type":"BotOnlineEvent","qq":1}`,
		`{"type":"OtherClientMessage","sender":{"id":1,"platform":"MOBILE"},` + chain + `}`,
	} {
		env, err := mirai.DecodeEnvelope([]byte(payload))
		require.NoError(t, err)
		_, ok := FromEnvelope(env, 1)
		assert.False(t, ok, payload)
	}
}

func TestFromEnvelopeWithoutSource(t *testing.T) {
	env, err := mirai.DecodeEnvelope([]byte(`{"type":"FriendMessage","sender":{"id":1,"nickname":"a","remark":""},"messageChain":[{"type":"Plain","text":"x"}]}`))
	require.NoError(t, err)

	before := time.Now()
	got, ok := FromEnvelope(env, 1)
	require.True(t, ok)
	assert.False(t, got.Time.Before(before))
}

func TestChatsFromRoster(t *testing.T) {
	friends := []mirai.FriendDetails{
		{ID: 1, Nickname: "nick", Remark: ""},
		{ID: 2, Nickname: "nick2", Remark: "备注"},
	}
	groups := []mirai.GroupDetails{{ID: 100, Name: "测试群"}}

	fs, gs := ChatsFromRoster(friends, groups)
	assert.Equal(t, []ChatInfo{
		{ID: "1", Name: "nick", Type: ChatPrivate},
		{ID: "2", Name: "备注", Type: ChatPrivate},
	}, fs)
	assert.Equal(t, []ChatInfo{{ID: "100", Name: "测试群", Type: ChatGroup}}, gs)

	fs, gs = ChatsFromRoster(nil, nil)
	assert.Empty(t, fs)
	assert.Empty(t, gs)
}
