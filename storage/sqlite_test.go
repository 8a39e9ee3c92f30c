package storage

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziyi233/mirai-tui/adapter"
	"github.com/ziyi233/mirai-tui/mirai"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMessagesNewestLimitInOrder(t *testing.T) {
	s := newTestStore(t)
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, text := range []string{"一", "二", "三", "四"} {
		require.NoError(t, s.AddMessage(&adapter.ChatMessage{
			ChatID: "100", ChatType: adapter.ChatGroup, SenderID: "1", SenderName: "a",
			Content: text, Time: base.Add(time.Duration(i) * time.Minute),
		}))
	}
	require.NoError(t, s.AddMessage(&adapter.ChatMessage{ChatID: "200", ChatType: adapter.ChatPrivate, Content: "other", Time: base}))

	msgs, err := s.GetMessages("100", 3)
	require.NoError(t, err)
	require.Len(t, msgs, 3)
	var contents []string
	for _, m := range msgs {
		contents = append(contents, m.Content)
	}
	assert.Equal(t, []string{"二", "三", "四"}, contents)
	assert.Equal(t, base.Add(3*time.Minute).Unix(), msgs[2].Time.Unix())
	assert.Equal(t, adapter.ChatGroup, msgs[0].ChatType)

	msgs, err = s.GetMessages("300", 10)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestEnvelopeArchive(t *testing.T) {
	s := newTestStore(t)
	now := time.Now().UTC()
	envs := []mirai.Envelope{
		&mirai.BotOnline{ID: 1},
		&mirai.GroupMessageRecall{SenderID: 5},
		&mirai.BotOfflineActive{ID: 1},
	}
	for _, env := range envs {
		require.NoError(t, s.AddEnvelope(env, now))
	}

	recs, err := s.RecentEnvelopes(2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	assert.Equal(t, "GroupRecallEvent", recs[0].Type)
	assert.Equal(t, "5 撤回了一条消息", recs[0].Summary)
	assert.Equal(t, "BotOfflineEventActive", recs[1].Type)
	assert.Less(t, recs[0].ID, recs[1].ID)
	assert.Equal(t, now.Unix(), recs[1].Received.Unix())
}

func TestNewStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reopen.db")
	s, err := NewStore(path)
	require.NoError(t, err)
	require.NoError(t, s.AddMessage(&adapter.ChatMessage{ChatID: "1", ChatType: adapter.ChatPrivate, Content: "x", Time: time.Now()}))
	require.NoError(t, s.Close())

	s, err = NewStore(path)
	require.NoError(t, err)
	defer s.Close()
	msgs, err := s.GetMessages("1", 10)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}
