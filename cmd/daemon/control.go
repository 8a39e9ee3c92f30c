package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ziyi233/mirai-tui/adapter"
	"github.com/ziyi233/mirai-tui/mirai"
	"github.com/ziyi233/mirai-tui/tui"
)

// notifier 是 *tea.Program 中控制接口用到的部分
type notifier interface {
	Send(msg tea.Msg)
}

type controlServer struct {
	state   *AppState
	gateway mirai.Gateway // websocket 传输时为 nil
	ui      notifier
}

// corsMiddleware 为所有响应添加 CORS 头
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length")
		if r.Method == http.MethodOptions {
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (c *controlServer) routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/set_active_chat", c.setActiveChat).Methods(http.MethodPost)
	r.HandleFunc("/send_message", c.sendMessage).Methods(http.MethodPost)
	r.HandleFunc("/get_chats", c.getChats).Methods(http.MethodGet)
	r.HandleFunc("/recall/{id}", c.recall).Methods(http.MethodPost)
	r.HandleFunc("/about", c.about).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	// 预检请求不匹配任何路由，所以 CORS 包在路由外面
	return corsMiddleware(r)
}

func (c *controlServer) setActiveChat(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	name := r.URL.Query().Get("name")
	if id == "" {
		http.Error(w, "missing chat id", http.StatusBadRequest)
		return
	}
	if name == "" {
		name = id
	}
	c.state.SetActiveChat(id)
	c.ui.Send(tui.ActiveChatChangedMsg{ID: id, Name: name})

	fmt.Fprintf(w, "Active chat set to %s (%s)\n", id, name)
	log.Printf("Switched active chat to %s (%s)", id, name)
}

func (c *controlServer) sendMessage(w http.ResponseWriter, r *http.Request) {
	activeID := c.state.ActiveChat()
	if activeID == "" {
		http.Error(w, "No active chat set. Please set one via /set_active_chat", http.StatusBadRequest)
		return
	}
	chatType := c.state.GetChatType(activeID)
	if chatType == "" {
		http.Error(w, fmt.Sprintf("Could not determine chat type for ID %s. Cache may be stale.", activeID), http.StatusInternalServerError)
		return
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), sendTimeout)
	defer cancel()
	h, err := c.state.Send(ctx, activeID, chatType, mirai.NewMessage(string(body)))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	c.ui.Send(adapter.ChatMessage{
		ChatID:     activeID,
		ChatType:   chatType,
		SenderName: adapter.SelfName,
		Content:    string(body),
		Time:       time.Now(),
	})
	fmt.Fprintf(w, "Message %d sent to %s (%s)\n", h.ID, activeID, chatType)
}

func (c *controlServer) getChats(w http.ResponseWriter, r *http.Request) {
	friends, groups, err := fetchChats(r.Context(), c.state.Session)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	c.state.ReplaceChats(friends, groups)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(append(groups, friends...))
}

// recall 撤回当前会话中的一条消息
func (c *controlServer) recall(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		http.Error(w, "invalid message id", http.StatusBadRequest)
		return
	}
	target, err := strconv.ParseInt(c.state.ActiveChat(), 10, 64)
	if err != nil {
		http.Error(w, "No active chat set. Please set one via /set_active_chat", http.StatusBadRequest)
		return
	}
	if err := mirai.MessageRef(int32(id), target).Recall(r.Context(), c.state.Session); err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	fmt.Fprintf(w, "Message %d recalled\n", id)
}

type aboutResponse struct {
	Version string            `json:"version,omitempty"`
	Bots    []int64           `json:"bots,omitempty"`
	Self    mirai.UserDetails `json:"self"`
}

func (c *controlServer) about(w http.ResponseWriter, r *http.Request) {
	var resp aboutResponse
	self, err := mirai.Self(r.Context(), c.state.Session)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	resp.Self = self
	if c.gateway != nil {
		about, err := c.gateway.About(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
		resp.Version = about.Version
		if resp.Bots, err = c.gateway.BotList(r.Context()); err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
