package pump

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziyi233/mirai-tui/mirai"
)

func TestWebhookServeHTTP(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		body       string
		wantStatus int
		wantEvent  bool
	}{
		{"event", http.MethodPost, `{"type":"BotOnlineEvent","qq":1}`, http.StatusNoContent, true},
		{"message", http.MethodPost, `{"type":"FriendMessage","sender":{"id":1,"nickname":"a","remark":""},"messageChain":[{"type":"Plain","text":"x"}]}`, http.StatusNoContent, true},
		{"invalid json", http.MethodPost, `{"type":`, http.StatusBadRequest, false},
		{"unknown type", http.MethodPost, `{"type":"Nope"}`, http.StatusBadRequest, false},
		{"message without sender", http.MethodPost, `{"type":"FriendMessage","messageChain":[]}`, http.StatusBadRequest, false},
		{"get", http.MethodGet, ``, http.StatusBadRequest, false},
		{"too large", http.MethodPost, `{"type":"BotOnlineEvent","pad":"` + strings.Repeat("x", MaxWebhookBody) + `"}`, http.StatusBadRequest, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			var errCount int
			hook := NewWebhook(ctx, func(error) { errCount++ })

			rec := httptest.NewRecorder()
			hook.ServeHTTP(rec, httptest.NewRequest(tt.method, "/", strings.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code)
			hook.Close()
			var got []mirai.Envelope
			for env := range hook.Events() {
				got = append(got, env)
			}
			if tt.wantEvent {
				assert.Len(t, got, 1)
				assert.Zero(t, errCount)
			} else {
				assert.Empty(t, got)
				assert.Equal(t, 1, errCount)
			}
		})
	}
}

func TestWebhookPreservesOrder(t *testing.T) {
	hook := NewWebhook(context.Background(), nil)
	srv := httptest.NewServer(hook)
	defer srv.Close()

	for _, qq := range []string{"1", "2", "3"} {
		resp, err := http.Post(srv.URL, "application/json", strings.NewReader(`{"type":"BotOnlineEvent","qq":`+qq+`}`))
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	}
	hook.Close()

	var ids []int64
	for env := range hook.Events() {
		ids = append(ids, env.(*mirai.BotOnline).ID)
	}
	assert.Equal(t, []int64{1, 2, 3}, ids)
}

func TestListenWebhook(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var mu sync.Mutex
	var errs []error
	events, addr, err := ListenWebhook(ctx, "127.0.0.1:0", func(err error) {
		mu.Lock()
		defer mu.Unlock()
		errs = append(errs, err)
	})
	require.NoError(t, err)

	resp, err := http.Post("http://"+addr.String()+"/", "application/json", strings.NewReader(`{"type":"BotOfflineEventActive","qq":5}`))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	assert.Equal(t, &mirai.BotOfflineActive{ID: 5}, receive(t, events))

	cancel()
	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(2 * time.Second):
		t.Fatal("webhook output was not closed")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Empty(t, errs)
}

func TestListenWebhookAddressInUse(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_, addr, err := ListenWebhook(ctx, "127.0.0.1:0", nil)
	require.NoError(t, err)

	_, _, err = ListenWebhook(ctx, addr.String(), nil)
	assert.ErrorContains(t, err, "listen webhook")
}
