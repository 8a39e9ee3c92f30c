package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/ziyi233/mirai-tui/mirai"
)

type options struct {
	httpClient     *http.Client
	limiter        *rate.Limiter
	dialer         *websocket.Dialer
	requestTimeout time.Duration
	onError        func(error)
}

func defaultOptions() options {
	return options{
		httpClient:     http.DefaultClient,
		dialer:         websocket.DefaultDialer,
		requestTimeout: 10 * time.Second,
		onError:        func(error) {},
	}
}

type Option func(*options)

// WithHTTPClient 替换默认的 http.Client
func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithRateLimit 限制请求频率，每次请求前等待令牌
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(o *options) { o.limiter = rate.NewLimiter(limit, burst) }
}

func WithDialer(d *websocket.Dialer) Option {
	return func(o *options) { o.dialer = d }
}

// WithRequestTimeout websocket 请求等待响应的最长时间
func WithRequestTimeout(d time.Duration) Option {
	return func(o *options) { o.requestTimeout = d }
}

// WithErrorHandler 接收 websocket 推送解码失败等后台错误
func WithErrorHandler(fn func(error)) Option {
	return func(o *options) { o.onError = fn }
}

// HTTPAdapter 是未认证的 HTTP 入口，可以查询服务信息并创建会话。
type HTTPAdapter struct {
	base      *url.URL
	verifyKey string
	opts      options
	gateway   *Client
}

var _ mirai.Gateway = (*HTTPAdapter)(nil)

func NewHTTPAdapter(endpoint, verifyKey string, opts ...Option) (*HTTPAdapter, error) {
	base, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("endpoint %q must be http or https", endpoint)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	a := &HTTPAdapter{base: base, verifyKey: verifyKey, opts: o}
	a.gateway = newClient(&httpTransport{base: base, client: o.httpClient}, "", &o)
	return a, nil
}

func (a *HTTPAdapter) About(ctx context.Context) (mirai.AboutResult, error) {
	var out mirai.AboutResult
	err := a.gateway.data(ctx, http.MethodGet, "about", nil, &out)
	return out, err
}

func (a *HTTPAdapter) BotList(ctx context.Context) ([]int64, error) {
	var out []int64
	err := a.gateway.data(ctx, http.MethodGet, "botList", nil, &out)
	return out, err
}

// Verify 认证并返回新会话，之后的请求都带上 sessionKey 头。
// 会话在调用 Bind 之前不能收发消息。
func (a *HTTPAdapter) Verify(ctx context.Context) (*Client, error) {
	var result mirai.VerifyResult
	if err := a.gateway.validate(ctx, http.MethodPost, "verify", mirai.VerifyArgs{VerifyKey: a.verifyKey}, &result); err != nil {
		return nil, err
	}
	t := &httpTransport{base: a.base, client: a.opts.httpClient, sessionKey: result.Session}
	return newClient(t, result.Session, &a.opts), nil
}

type httpTransport struct {
	base       *url.URL
	client     *http.Client
	sessionKey string
}

func (t *httpTransport) resolve(path string) *url.URL {
	return t.base.ResolveReference(&url.URL{Path: path})
}

func (t *httpTransport) call(ctx context.Context, method, path string, args any) ([]byte, error) {
	u := t.resolve(path)
	var body io.Reader
	if method == http.MethodGet {
		q, err := encodeQuery(args)
		if err != nil {
			return nil, fmt.Errorf("encode %s query: %w", path, err)
		}
		u.RawQuery = q.Encode()
	} else if args != nil {
		b, err := json.Marshal(args)
		if err != nil {
			return nil, fmt.Errorf("encode %s body: %w", path, err)
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, &TransportError{Op: path, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return t.fetch(req, path)
}

func (t *httpTransport) upload(ctx context.Context, path string, parts []formPart) ([]byte, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, p := range parts {
		if p.file == nil {
			if err := w.WriteField(p.name, p.value); err != nil {
				return nil, err
			}
			continue
		}
		fw, err := w.CreateFormFile(p.name, p.filename)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(fw, p.file); err != nil {
			return nil, fmt.Errorf("read upload %s: %w", p.name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.resolve(path).String(), &buf)
	if err != nil {
		return nil, &TransportError{Op: path, Err: err}
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return t.fetch(req, path)
}

func (t *httpTransport) fetch(req *http.Request, op string) ([]byte, error) {
	if t.sessionKey != "" {
		req.Header.Set("sessionKey", t.sessionKey)
	}
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	return b, nil
}

func (t *httpTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

// encodeQuery 把参数结构按 JSON 字段名展开为查询字符串，数组展开为重复的键。
func encodeQuery(args any) (url.Values, error) {
	q := url.Values{}
	if args == nil {
		return q, nil
	}
	b, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return nil, err
	}
	for k, raw := range fields {
		if len(raw) > 0 && raw[0] == '[' {
			var items []json.RawMessage
			if err := json.Unmarshal(raw, &items); err != nil {
				return nil, err
			}
			for _, item := range items {
				if v, ok := scalar(item); ok {
					q.Add(k, v)
				}
			}
			continue
		}
		if v, ok := scalar(raw); ok {
			q.Set(k, v)
		}
	}
	return q, nil
}

func scalar(raw json.RawMessage) (string, bool) {
	s := string(raw)
	switch {
	case s == "null":
		return "", false
	case strings.HasPrefix(s, `"`):
		var v string
		if err := json.Unmarshal(raw, &v); err != nil {
			return "", false
		}
		return v, true
	default:
		return s, true
	}
}

func formatID(id int64) string { return strconv.FormatInt(id, 10) }
