package pump

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/ziyi233/mirai-tui/mirai"
)

// MaxWebhookBody 单次推送请求体的上限
const MaxWebhookBody = 64 << 10

const shutdownTimeout = 5 * time.Second

// Webhook 接收 mirai-api-http 以 POST 方式推送的事件。
// 成功入队返回 204，请求体无法解码时调用 onError 并返回 400。
type Webhook struct {
	queue   *Queue[mirai.Envelope]
	onError func(error)
}

func NewWebhook(ctx context.Context, onError func(error)) *Webhook {
	if onError == nil {
		onError = func(error) {}
	}
	return &Webhook{queue: NewQueue[mirai.Envelope](ctx), onError: onError}
}

func (h *Webhook) Events() <-chan mirai.Envelope { return h.queue.Out() }

// Close 停止接收，已入队的推送仍会送出
func (h *Webhook) Close() { h.queue.Close() }

func (h *Webhook) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.onError(fmt.Errorf("webhook: unexpected method %s", r.Method))
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxWebhookBody))
	if err != nil {
		h.onError(fmt.Errorf("read webhook body: %w", err))
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	env, err := mirai.DecodeEnvelope(body)
	if err != nil {
		h.onError(err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	h.queue.Push(env)
	w.WriteHeader(http.StatusNoContent)
}

// ListenWebhook 在 addr 上启动 webhook 服务。监听失败会直接返回错误；
// ctx 结束后服务器在超时内关闭，正在处理的请求可以完成，然后输出关闭。
func ListenWebhook(ctx context.Context, addr string, onError func(error)) (<-chan mirai.Envelope, net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, nil, fmt.Errorf("listen webhook on %s: %w", addr, err)
	}
	hook := NewWebhook(ctx, onError)
	srv := &http.Server{
		Handler:           hook,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			hook.onError(fmt.Errorf("serve webhook: %w", err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			hook.onError(fmt.Errorf("shutdown webhook: %w", err))
		}
		hook.Close()
	}()
	return hook.Events(), ln.Addr(), nil
}
