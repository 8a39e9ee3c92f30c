package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ziyi233/mirai-tui/adapter"
	"github.com/ziyi233/mirai-tui/config"
	"github.com/ziyi233/mirai-tui/mirai"
	"github.com/ziyi233/mirai-tui/pump"
	"github.com/ziyi233/mirai-tui/storage"
	"github.com/ziyi233/mirai-tui/tui"
)

const configPath = "config.yml"

func main() {
	f, err := os.OpenFile("daemon.log", os.O_RDWR|os.O_CREATE|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("error opening file: %v", err)
	}
	defer f.Close()
	log.SetOutput(f)

	var cfg *config.Config
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// 没有配置文件时进入交互式向导
		cfg, err = createConfigWizard()
		if err != nil {
			log.Fatalf("Could not create configuration: %v", err)
		}
	} else {
		cfg, err = config.LoadConfig(configPath)
		if err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("%v", err)
	}
}

// onPumpError 记录事件源上报的错误，事件源自己不打日志
func onPumpError(err error) {
	pumpErrors.Inc()
	log.Printf("event source: %v", err)
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.NewStore(cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("init db: %w", err)
	}
	defer store.Close()

	session, gateway, events, closeSession, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSession()

	state := NewAppState(session)
	p := tea.NewProgram(tui.New(state, state, store, cfg.TUI.MessageHistoryLimit), tea.WithAltScreen(), tea.WithContext(ctx))

	go populateCaches(ctx, state, p)
	go dispatch(ctx, cfg, events, state, store, p)

	ctl := &controlServer{state: state, gateway: gateway, ui: p}
	srv := &http.Server{Addr: cfg.ControlAddr, Handler: ctl.routes()}
	go func() {
		log.Printf("Control server listening on %s", cfg.ControlAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Control server failed: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Println("TUI is running. Press Ctrl+C to exit.")
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}

// connect 按配置的传输方式建立会话，返回会话、网关（websocket 下为 nil）和推送流
func connect(ctx context.Context, cfg *config.Config) (mirai.Session, mirai.Gateway, <-chan mirai.Envelope, func(), error) {
	limit := adapter.WithRateLimit(rate.Limit(cfg.RateLimit.RPS), cfg.RateLimit.Burst)

	if cfg.Transport == config.TransportWebSocket {
		ws, err := adapter.DialWebSocket(ctx, cfg.WebSocketURL, cfg.VerifyKey, cfg.QQ, limit, adapter.WithErrorHandler(onPumpError))
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("connect websocket: %w", err)
		}
		log.Printf("Connected to %s over websocket", cfg.WebSocketURL)
		return ws, nil, ws.Events(), func() { ws.Close() }, nil
	}

	gw, err := adapter.NewHTTPAdapter(cfg.Endpoint, cfg.VerifyKey, limit)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	client, err := gw.Verify(ctx)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("verify: %w", err)
	}
	if err := client.Bind(ctx, cfg.QQ); err != nil {
		client.Close()
		return nil, nil, nil, nil, fmt.Errorf("bind %d: %w", cfg.QQ, err)
	}
	closeFn := func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Release(releaseCtx, cfg.QQ); err != nil {
			log.Printf("release session: %v", err)
		}
		client.Close()
	}

	var events <-chan mirai.Envelope
	switch cfg.Transport {
	case config.TransportWebhook:
		var addr net.Addr
		events, addr, err = pump.ListenWebhook(ctx, cfg.Webhook.Addr, onPumpError)
		if err != nil {
			closeFn()
			return nil, nil, nil, nil, fmt.Errorf("webhook: %w", err)
		}
		log.Printf("Webhook listening on %s", addr)
	default:
		opts := pump.DefaultPollOptions()
		if cfg.Poll.Interval > 0 {
			opts.Interval = cfg.Poll.Interval
		}
		if cfg.Poll.Buffer > 0 {
			opts.Buffer = cfg.Poll.Buffer
		}
		opts.BatchSize = cfg.Poll.BatchSize
		events = pump.Poll(ctx, client, opts, onPumpError)
	}
	log.Printf("Session bound to %d via %s (%s)", cfg.QQ, cfg.Endpoint, cfg.Transport)
	return client, gw, events, closeFn, nil
}

// dispatch 把推送存档并转发给 TUI
func dispatch(ctx context.Context, cfg *config.Config, events <-chan mirai.Envelope, state *AppState, store *storage.Store, p *tea.Program) {
	for env := range events {
		receivedEnvelopes.WithLabelValues(env.Type()).Inc()
		if err := store.AddEnvelope(env, time.Now()); err != nil {
			log.Printf("archive %s: %v", env.Type(), err)
		}

		msg, ok := adapter.FromEnvelope(env, cfg.QQ)
		if !ok {
			p.Send(tui.EventNoticeMsg{Type: env.Type(), Summary: mirai.SummarizeEnvelope(env)})
			continue
		}
		state.Observe(env, msg)
		if err := store.AddMessage(&msg); err != nil {
			log.Printf("store message: %v", err)
		}
		p.Send(msg)

		if cfg.AutoReplyPing {
			autoReply(ctx, state, env)
		}
	}
	log.Println("Event source closed.")
}

func autoReply(ctx context.Context, state *AppState, env mirai.Envelope) {
	fm, ok := env.(*mirai.FriendMessage)
	if !ok || strings.TrimSpace(mirai.Summarize(fm.Nodes())) != "ping" {
		return
	}
	h, ok := fm.Handle()
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	_, err := state.Send(ctx, strconv.FormatInt(fm.Sender.ID, 10), adapter.ChatPrivate, mirai.NewMessage("pong").Quote(h))
	if err != nil {
		log.Printf("auto reply to %d: %v", fm.Sender.ID, err)
	}
}

// fetchChats 同时拉取好友和群列表
func fetchChats(ctx context.Context, s mirai.Session) (friends, groups []adapter.ChatInfo, err error) {
	var (
		fs []mirai.FriendDetails
		gs []mirai.GroupDetails
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		fs, err = mirai.Friends(ctx, s)
		return err
	})
	g.Go(func() (err error) {
		gs, err = mirai.Groups(ctx, s)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	friends, groups = adapter.ChatsFromRoster(fs, gs)
	return friends, groups, nil
}

// populateCaches 在后台拉取好友和群列表，失败时每 10 秒重试
func populateCaches(ctx context.Context, state *AppState, p *tea.Program) {
	log.Println("Starting background cache population...")
	var (
		friends, groups []adapter.ChatInfo
		err             error
	)
	for {
		friends, groups, err = fetchChats(ctx, state.Session)
		if err == nil {
			break
		}
		log.Printf("Failed to get chat lists: %v. Retrying in 10 seconds...", err)
		select {
		case <-ctx.Done():
			return
		case <-time.After(10 * time.Second):
		}
	}

	state.ReplaceChats(friends, groups)
	log.Printf("Caches populated successfully with %d friends and %d groups.", len(friends), len(groups))
	p.Send(tui.CachesPopulatedMsg{})
}

func createConfigWizard() (*config.Config, error) {
	reader := bufio.NewReader(os.Stdin)
	prompt := func(label string) string {
		fmt.Print(label)
		s, _ := reader.ReadString('\n')
		return strings.TrimSpace(s)
	}

	fmt.Println("--- Mirai TUI Setup ---")
	fmt.Printf("%s not found. Let's create one.\n", configPath)

	cfg := config.Default()
	if endpoint := prompt(fmt.Sprintf("Enter mirai-api-http endpoint (default %s): ", cfg.Endpoint)); endpoint != "" {
		cfg.Endpoint = endpoint
	}
	cfg.VerifyKey = prompt("Enter verify key (if any, otherwise press Enter): ")
	qq, err := strconv.ParseInt(prompt("Enter bot QQ number: "), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid QQ number: %w", err)
	}
	cfg.QQ = qq
	if t := prompt("Transport [poll/webhook/websocket] (default poll): "); t != "" {
		cfg.Transport = t
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Save(configPath); err != nil {
		return nil, err
	}
	fmt.Printf("%s created successfully.\n", configPath)
	return cfg, nil
}
