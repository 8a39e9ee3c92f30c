package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ziyi233/mirai-tui/adapter"
)

var apiBaseURL = "http://127.0.0.1:9090"

// post 发送请求并把守护进程的回复原样输出
func post(path, contentType string, body io.Reader) error {
	resp, err := http.Post(apiBaseURL+path, contentType, body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	_, err = io.Copy(os.Stdout, resp.Body)
	return err
}

func get(path string, out any) error {
	resp, err := http.Get(apiBaseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		msg, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(msg)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func main() {
	rootCmd := &cobra.Command{Use: "mirai", SilenceUsage: true}
	rootCmd.PersistentFlags().StringVar(&apiBaseURL, "addr", apiBaseURL, "守护进程控制接口地址")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "列出所有好友和群聊",
		RunE: func(cmd *cobra.Command, args []string) error {
			var chats []adapter.ChatInfo
			if err := get("/get_chats", &chats); err != nil {
				return err
			}
			fmt.Println("--- 群聊 / 好友 ---")
			for _, chat := range chats {
				fmt.Printf("类型: %-7s | ID: %-12s | 名称: %s\n", chat.Type, chat.ID, chat.Name)
			}
			return nil
		},
	}

	useCmd := &cobra.Command{
		Use:   "use [ID] [名称]",
		Short: "切换当前聊天窗口",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q := url.Values{"id": {args[0]}}
			if len(args) > 1 {
				q.Set("name", args[1])
			}
			return post("/set_active_chat?"+q.Encode(), "", nil)
		},
	}

	sendCmd := &cobra.Command{
		Use:   "send [消息...]",
		Short: "向当前窗口发送消息",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message := strings.Join(args, " ")
			return post("/send_message", "text/plain", bytes.NewBufferString(message))
		},
	}

	recallCmd := &cobra.Command{
		Use:   "recall [消息ID]",
		Short: "撤回当前窗口中的一条消息",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return post("/recall/"+url.PathEscape(args[0]), "", nil)
		},
	}

	aboutCmd := &cobra.Command{
		Use:   "about",
		Short: "显示 bot 和 mirai-api-http 的信息",
		RunE: func(cmd *cobra.Command, args []string) error {
			var info struct {
				Version string  `json:"version"`
				Bots    []int64 `json:"bots"`
				Self    struct {
					ID       int64  `json:"id"`
					Nickname string `json:"nickname"`
				} `json:"self"`
			}
			if err := get("/about", &info); err != nil {
				return err
			}
			fmt.Printf("Bot: %s (%d)\n", info.Self.Nickname, info.Self.ID)
			if info.Version != "" {
				fmt.Printf("mirai-api-http: %s\n", info.Version)
			}
			if len(info.Bots) > 0 {
				fmt.Printf("在线账号: %v\n", info.Bots)
			}
			return nil
		},
	}

	rootCmd.AddCommand(listCmd, useCmd, sendCmd, recallCmd, aboutCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
