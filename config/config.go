package config

import (
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	TransportPoll      = "poll"
	TransportWebhook   = "webhook"
	TransportWebSocket = "websocket"
)

type PollConfig struct {
	Interval  time.Duration `yaml:"interval"`
	BatchSize int64         `yaml:"batchSize"`
	Buffer    int           `yaml:"buffer"`
}

type WebhookConfig struct {
	Addr string `yaml:"addr" env:"MIRAI_WEBHOOK_ADDR"`
}

type RateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type Config struct {
	Endpoint     string          `yaml:"endpoint" env:"MIRAI_ENDPOINT"`
	VerifyKey    string          `yaml:"verifyKey" env:"MIRAI_VERIFY_KEY"`
	QQ           int64           `yaml:"qq" env:"MIRAI_QQ"`
	Transport    string          `yaml:"transport" env:"MIRAI_TRANSPORT"`
	Poll         PollConfig      `yaml:"poll"`
	Webhook      WebhookConfig   `yaml:"webhook"`
	WebSocketURL string          `yaml:"webSocketUrl"`
	RateLimit    RateLimitConfig `yaml:"rateLimit"`
	DatabasePath string          `yaml:"databasePath" env:"MIRAI_DB_PATH"`
	ControlAddr  string          `yaml:"controlAddr"`
	// AutoReplyPing 好友发送 ping 时自动回复 pong
	AutoReplyPing bool `yaml:"autoReplyPing"`
	TUI           struct {
		MessageHistoryLimit int `yaml:"messageHistoryLimit"`
	} `yaml:"tui"`
}

// Default 返回没有配置文件时使用的默认配置
func Default() *Config {
	cfg := &Config{
		Endpoint:     "http://127.0.0.1:8080",
		Transport:    TransportPoll,
		Poll:         PollConfig{Interval: 50 * time.Millisecond, Buffer: 1},
		Webhook:      WebhookConfig{Addr: "127.0.0.1:8081"},
		WebSocketURL: "ws://127.0.0.1:8080",
		RateLimit:    RateLimitConfig{RPS: 10, Burst: 5},
		DatabasePath: "mirai.db",
		ControlAddr:  "127.0.0.1:9090",
	}
	cfg.TUI.MessageHistoryLimit = 50
	return cfg
}

// LoadConfig 依次应用默认值、配置文件、.env 和环境变量
func LoadConfig(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		// 读不到文件不是错误，继续使用默认配置
		log.Printf("警告: 无法读取配置文件 '%s'。将使用默认设置。错误: %v", path, err)
	} else {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		log.Printf("成功从 '%s' 加载配置。", path)
	}

	_ = godotenv.Load(".env")
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	switch c.Transport {
	case TransportPoll, TransportWebhook, TransportWebSocket:
	default:
		errs = append(errs, fmt.Errorf("unknown transport %q", c.Transport))
	}
	if c.QQ == 0 {
		errs = append(errs, errors.New("qq is required"))
	}
	if c.Transport == TransportWebhook && c.Webhook.Addr == "" {
		errs = append(errs, errors.New("webhook.addr is required for the webhook transport"))
	}
	// fetchMessage 的 count 是 int32
	if c.Poll.BatchSize < 0 || c.Poll.BatchSize > math.MaxInt32 {
		errs = append(errs, fmt.Errorf("poll.batchSize must be between 0 and %d, got %d", math.MaxInt32, c.Poll.BatchSize))
	}
	// rps 为 0 的限流器会拒绝所有请求
	if c.RateLimit.RPS <= 0 {
		errs = append(errs, fmt.Errorf("rateLimit.rps must be positive, got %v", c.RateLimit.RPS))
	}
	if c.RateLimit.Burst <= 0 {
		errs = append(errs, fmt.Errorf("rateLimit.burst must be positive, got %d", c.RateLimit.Burst))
	}
	return errors.Join(errs...)
}

// Save 把配置写回 YAML 文件
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
