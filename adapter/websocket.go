package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/ziyi233/mirai-tui/mirai"
	"github.com/ziyi233/mirai-tui/pump"
)

// eventSyncID 是服务端主动推送的帧使用的 syncId
const eventSyncID = "-1"

var errConnClosed = errors.New("websocket connection closed")

// mirai-api-http websocket 的请求帧
type wsRequest struct {
	SyncID     string `json:"syncId"`
	Command    string `json:"command"`
	SubCommand string `json:"subCommand,omitempty"`
	Content    any    `json:"content,omitempty"`
}

type wsFrame struct {
	SyncID string          `json:"syncId"`
	Data   json.RawMessage `json:"data"`
}

// WebSocketSession 是通过 /all 通道建立的会话，同时承载请求响应和事件推送。
type WebSocketSession struct {
	*Client
	conn *wsTransport
}

// DialWebSocket 连接 {endpoint}/all 并完成认证。返回的会话在 Close 之前一直接收事件。
func DialWebSocket(ctx context.Context, endpoint, verifyKey string, qq int64, opts ...Option) (*WebSocketSession, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	u, err := url.Parse(strings.TrimSuffix(endpoint, "/") + "/all")
	if err != nil {
		return nil, fmt.Errorf("parse websocket url %q: %w", endpoint, err)
	}
	q := u.Query()
	q.Set("verifyKey", verifyKey)
	q.Set("qq", formatID(qq))
	u.RawQuery = q.Encode()

	conn, _, err := o.dialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, &TransportError{Op: "dial", Err: err}
	}
	session, err := handshake(conn)
	if err != nil {
		conn.Close()
		return nil, err
	}
	log.Printf("WebSocket: connected to %s, session %s", u.Host, session)

	queueCtx, cancel := context.WithCancel(context.Background())
	t := &wsTransport{
		conn:    conn,
		timeout: o.requestTimeout,
		onError: o.onError,
		events:  pump.NewQueue[mirai.Envelope](queueCtx),
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go t.listen()
	return &WebSocketSession{Client: newClient(t, session, &o), conn: t}, nil
}

// Events 推送的消息与事件，连接断开并且全部读完后关闭
func (s *WebSocketSession) Events() <-chan mirai.Envelope { return s.conn.events.Out() }

// Done 在连接断开后关闭
func (s *WebSocketSession) Done() <-chan struct{} { return s.conn.done }

func handshake(conn *websocket.Conn) (string, error) {
	_, payload, err := conn.ReadMessage()
	if err != nil {
		return "", &TransportError{Op: "handshake", Err: err}
	}
	var frame wsFrame
	if err := json.Unmarshal(payload, &frame); err != nil {
		return "", &DecodeError{Op: "handshake", Err: err}
	}
	if err := mirai.CheckRemoteError(frame.Data); err != nil {
		return "", err
	}
	var result mirai.VerifyResult
	if err := json.Unmarshal(frame.Data, &result); err != nil {
		return "", &DecodeError{Op: "handshake", Err: err}
	}
	if result.Session == "" {
		return "", &DecodeError{Op: "handshake", Err: errors.New("missing field `session`")}
	}
	return result.Session, nil
}

type wsTransport struct {
	conn             *websocket.Conn
	writeMutex       sync.Mutex
	responseChannels sync.Map
	syncCounter      int64
	timeout          time.Duration
	onError          func(error)

	events    *pump.Queue[mirai.Envelope]
	cancel    context.CancelFunc
	done      chan struct{}
	closeOnce sync.Once
}

func (t *wsTransport) listen() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("FATAL: Panic in websocket listener: %v\n%s", r, debug.Stack())
		}
		t.events.Close()
		close(t.done)
	}()
	for {
		_, payload, err := t.conn.ReadMessage()
		if err != nil {
			log.Printf("WebSocket: read error: %v. Listener is shutting down.", err)
			return
		}
		var frame wsFrame
		if err := json.Unmarshal(payload, &frame); err != nil {
			t.onError(&DecodeError{Op: "frame", Err: err})
			continue
		}
		if frame.SyncID == eventSyncID {
			env, err := mirai.DecodeEnvelope(frame.Data)
			if err != nil {
				t.onError(&DecodeError{Op: "event", Err: err})
				continue
			}
			t.events.Push(env)
			continue
		}
		if ch, ok := t.responseChannels.Load(frame.SyncID); ok {
			select {
			case ch.(chan []byte) <- frame.Data:
			default:
			}
		}
	}
}

// subCommand groupConfig 与 memberInfo 在 websocket 中用 get/update 区分读写
func subCommand(method, path string) string {
	if path != "groupConfig" && path != "memberInfo" {
		return ""
	}
	if method == http.MethodGet {
		return "get"
	}
	return "update"
}

func (t *wsTransport) send(req wsRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	t.writeMutex.Lock()
	defer t.writeMutex.Unlock()
	return t.conn.WriteMessage(websocket.TextMessage, payload)
}

func (t *wsTransport) call(ctx context.Context, method, path string, args any) ([]byte, error) {
	syncID := strconv.FormatInt(atomic.AddInt64(&t.syncCounter, 1), 10)
	respChan := make(chan []byte, 1)
	t.responseChannels.Store(syncID, respChan)
	defer t.responseChannels.Delete(syncID)

	req := wsRequest{
		SyncID:     syncID,
		Command:    strings.ReplaceAll(path, "/", "_"),
		SubCommand: subCommand(method, path),
		Content:    args,
	}
	if err := t.send(req); err != nil {
		return nil, &TransportError{Op: path, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	select {
	case data := <-respChan:
		return data, nil
	case <-t.done:
		return nil, &TransportError{Op: path, Err: errConnClosed}
	case <-ctx.Done():
		return nil, &TransportError{Op: path, Err: fmt.Errorf("request timed out: %w", ctx.Err())}
	}
}

func (t *wsTransport) upload(context.Context, string, []formPart) ([]byte, error) {
	return nil, ErrUnsupported
}

func (t *wsTransport) Close() error {
	var err error
	t.closeOnce.Do(func() {
		t.cancel()
		err = t.conn.Close()
	})
	return err
}
