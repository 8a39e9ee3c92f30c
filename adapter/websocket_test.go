package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ziyi233/mirai-tui/mirai"
)

// wsServer 模拟 /all 通道：握手后推送 events，然后对每个请求调用 reply
type wsServer struct {
	handshake string
	events    []string
	reply     func(req wsRequest) string

	mu       sync.Mutex
	query    map[string]string
	requests []wsRequest
}

func (s *wsServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	upgrader := websocket.Upgrader{}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()
	s.mu.Lock()
	s.query = map[string]string{"path": r.URL.Path, "verifyKey": r.URL.Query().Get("verifyKey"), "qq": r.URL.Query().Get("qq")}
	s.mu.Unlock()

	if err := conn.WriteMessage(websocket.TextMessage, []byte(s.handshake)); err != nil {
		return
	}
	for _, ev := range s.events {
		conn.WriteMessage(websocket.TextMessage, []byte(`{"syncId":"-1","data":`+ev+`}`))
	}
	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var req wsRequest
		if err := json.Unmarshal(payload, &req); err != nil {
			return
		}
		s.mu.Lock()
		s.requests = append(s.requests, req)
		s.mu.Unlock()
		if s.reply == nil {
			continue
		}
		data := s.reply(req)
		conn.WriteMessage(websocket.TextMessage, []byte(`{"syncId":"`+req.SyncID+`","data":`+data+`}`))
	}
}

func (s *wsServer) lastRequest() wsRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

const okHandshake = `{"syncId":"","data":{"code":0,"session":"WS_SESSION"}}`

func dialTest(t *testing.T, s *wsServer, opts ...Option) *WebSocketSession {
	t.Helper()
	srv := httptest.NewServer(s)
	t.Cleanup(srv.Close)
	endpoint := "ws" + strings.TrimPrefix(srv.URL, "http")
	ws, err := DialWebSocket(context.Background(), endpoint, "KEY", 123, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { ws.Close() })
	return ws
}

func TestWebSocketHandshake(t *testing.T) {
	s := &wsServer{handshake: okHandshake}
	ws := dialTest(t, s)

	assert.Equal(t, "WS_SESSION", ws.SessionKey())
	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Equal(t, map[string]string{"path": "/all", "verifyKey": "KEY", "qq": "123"}, s.query)
}

func TestWebSocketHandshakeRejected(t *testing.T) {
	s := &wsServer{handshake: `{"syncId":"","data":{"code":1,"msg":"Auth Key错误"}}`}
	srv := httptest.NewServer(s)
	defer srv.Close()

	_, err := DialWebSocket(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http"), "bad", 1)
	var remote *mirai.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, 1, remote.Code)
}

func TestWebSocketRequestReply(t *testing.T) {
	s := &wsServer{
		handshake: okHandshake,
		reply: func(req wsRequest) string {
			switch req.Command {
			case "sendGroupMessage":
				return `{"code":0,"msg":"success","messageId":77}`
			case "groupConfig":
				return `{"name":"g","announcement":"","confessTalk":false,"allowMemberInvite":true,"autoApprove":false,"anonymousChat":false,"muteAll":false}`
			case "file_delete":
				return `{"code":0,"msg":"success"}`
			default:
				return `{"code":3,"msg":"无效session"}`
			}
		},
	}
	ws := dialTest(t, s)
	ctx := context.Background()

	h, err := mirai.Group(9).SendMessage(ctx, ws, mirai.NewMessage("hi"))
	require.NoError(t, err)
	assert.Equal(t, mirai.MessageRef(77, 9), h)
	req := s.lastRequest()
	assert.Empty(t, req.SubCommand)
	content, _ := json.Marshal(req.Content)
	assert.JSONEq(t, `{"target":9,"messageChain":[{"type":"Plain","text":"hi"}]}`, string(content))

	cfg, err := mirai.Group(9).Config(ctx, ws)
	require.NoError(t, err)
	assert.True(t, cfg.AllowMemberInvite)
	assert.Equal(t, "get", s.lastRequest().SubCommand)

	require.NoError(t, mirai.Group(9).DeleteFile(ctx, ws, "/a"))
	assert.Equal(t, "file_delete", s.lastRequest().Command)

	_, err = ws.FriendList(ctx)
	var remote *mirai.RemoteError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, 3, remote.Code)
}

func TestWebSocketEvents(t *testing.T) {
	var mu sync.Mutex
	var errs []error
	s := &wsServer{
		handshake: okHandshake,
		events: []string{
			`{"type":"BotOnlineEvent","qq":123}`,
			`{"type":"NotARealEvent"}`,
			`{"type":"FriendMessage","sender":{"id":1,"nickname":"a","remark":""},"messageChain":[{"type":"Source","id":5,"time":1},{"type":"Plain","text":"hi"}]}`,
		},
	}
	ws := dialTest(t, s, WithErrorHandler(func(err error) {
		mu.Lock()
		defer mu.Unlock()
		errs = append(errs, err)
	}))

	var got []mirai.Envelope
	for len(got) < 2 {
		select {
		case env := <-ws.Events():
			got = append(got, env)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d events", len(got))
		}
	}
	assert.IsType(t, &mirai.BotOnline{}, got[0])
	assert.IsType(t, &mirai.FriendMessage{}, got[1])

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, errs, 1)
	var decodeErr *DecodeError
	require.ErrorAs(t, errs[0], &decodeErr)
	assert.Equal(t, "event", decodeErr.Op)
}

func TestWebSocketClose(t *testing.T) {
	ws := dialTest(t, &wsServer{handshake: okHandshake})
	require.NoError(t, ws.Close())

	select {
	case <-ws.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("listener did not stop")
	}
	assert.Eventually(t, func() bool {
		_, ok := <-ws.Events()
		return !ok
	}, 2*time.Second, 10*time.Millisecond)

	_, err := ws.GroupList(context.Background())
	var transportErr *TransportError
	assert.ErrorAs(t, err, &transportErr)
}

func TestWebSocketRequestTimeout(t *testing.T) {
	ws := dialTest(t, &wsServer{handshake: okHandshake}, WithRequestTimeout(50*time.Millisecond))

	_, err := ws.BotProfile(context.Background())
	var transportErr *TransportError
	require.ErrorAs(t, err, &transportErr)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestWebSocketUploadUnsupported(t *testing.T) {
	ws := dialTest(t, &wsServer{handshake: okHandshake})

	_, err := mirai.Friend(1).UploadImage(context.Background(), ws, mirai.UploadURL("https://example.com/a.png"))
	assert.ErrorIs(t, err, ErrUnsupported)
	_, err = mirai.Group(1).UploadFile(context.Background(), ws, "", "a.txt", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestSubCommand(t *testing.T) {
	assert.Equal(t, "get", subCommand(http.MethodGet, "memberInfo"))
	assert.Equal(t, "update", subCommand(http.MethodPost, "memberInfo"))
	assert.Equal(t, "update", subCommand(http.MethodPost, "groupConfig"))
	assert.Empty(t, subCommand(http.MethodGet, "friendList"))
}
