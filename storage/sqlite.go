package storage

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	// 纯 Go 的驱动，注册为 "sqlite"
	_ "modernc.org/sqlite"

	"github.com/ziyi233/mirai-tui/adapter"
	"github.com/ziyi233/mirai-tui/mirai"
)

type Store struct {
	db *sql.DB
}

// EnvelopeRecord 是存档中的一条推送
type EnvelopeRecord struct {
	ID       int64
	Type     string
	Summary  string
	Received time.Time
}

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	"id" INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
	"chat_id" TEXT NOT NULL,
	"chat_type" TEXT NOT NULL,
	"sender_id" TEXT,
	"sender_name" TEXT,
	"content" TEXT,
	"timestamp" DATETIME
);
CREATE INDEX IF NOT EXISTS messages_chat ON messages(chat_id, timestamp);
CREATE TABLE IF NOT EXISTS envelopes (
	"id" INTEGER NOT NULL PRIMARY KEY AUTOINCREMENT,
	"type" TEXT NOT NULL,
	"summary" TEXT,
	"received" DATETIME
);`

// NewStore 打开（必要时创建）数据库
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	log.Printf("Database %s initialized.", dbPath)
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) AddMessage(msg *adapter.ChatMessage) error {
	_, err := s.db.Exec(
		`INSERT INTO messages(chat_id, chat_type, sender_id, sender_name, content, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
		msg.ChatID, msg.ChatType, msg.SenderID, msg.SenderName, msg.Content, msg.Time,
	)
	return err
}

// GetMessages 返回某个会话最近的 limit 条消息，按时间正序
func (s *Store) GetMessages(chatID string, limit int) ([]adapter.ChatMessage, error) {
	rows, err := s.db.Query(
		`SELECT chat_id, chat_type, sender_id, sender_name, content, timestamp FROM messages WHERE chat_id = ? ORDER BY timestamp DESC, id DESC LIMIT ?`,
		chatID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []adapter.ChatMessage
	for rows.Next() {
		var msg adapter.ChatMessage
		if err := rows.Scan(&msg.ChatID, &msg.ChatType, &msg.SenderID, &msg.SenderName, &msg.Content, &msg.Time); err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// AddEnvelope 记录一条推送（消息或事件）的类型和摘要
func (s *Store) AddEnvelope(env mirai.Envelope, received time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO envelopes(type, summary, received) VALUES (?, ?, ?)`,
		env.Type(), mirai.SummarizeEnvelope(env), received,
	)
	return err
}

// RecentEnvelopes 最近的 limit 条推送，按接收顺序
func (s *Store) RecentEnvelopes(limit int) ([]EnvelopeRecord, error) {
	rows, err := s.db.Query(`SELECT id, type, summary, received FROM envelopes ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EnvelopeRecord
	for rows.Next() {
		var r EnvelopeRecord
		if err := rows.Scan(&r.ID, &r.Type, &r.Summary, &r.Received); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}
