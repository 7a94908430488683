package chat

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"lexrag/internal/rag/schema"
)

// MessageRecord is the wire form of a message. Timestamps travel as
// RFC3339 strings so records stay readable and portable.
type MessageRecord struct {
	Role      string                  `json:"role" bson:"role"`
	Content   string                  `json:"content" bson:"content"`
	Sources   []schema.SourceCitation `json:"sources" bson:"sources"`
	Timestamp string                  `json:"timestamp" bson:"timestamp"`
}

// MetaRecord is the wire form of session metadata.
type MetaRecord struct {
	Topic         string `json:"topic" bson:"topic"`
	QuestionCount int    `json:"question_count" bson:"question_count"`
	DocumentCount int    `json:"document_count" bson:"document_count"`
}

// SessionRecord is the wire form of a full session, used for both file
// export and the Mongo archive.
type SessionRecord struct {
	SessionID string          `json:"session_id" bson:"_id"`
	Title     string          `json:"title" bson:"title"`
	Messages  []MessageRecord `json:"messages" bson:"messages"`
	CreatedAt string          `json:"created_at" bson:"created_at"`
	UpdatedAt string          `json:"updated_at" bson:"updated_at"`
	Metadata  MetaRecord      `json:"metadata" bson:"metadata"`
}

// Record converts a session to its wire form.
func (s *Session) Record() SessionRecord {
	messages := make([]MessageRecord, 0, len(s.Messages))
	for _, msg := range s.Messages {
		sources := msg.Sources
		if sources == nil {
			sources = []schema.SourceCitation{}
		}
		messages = append(messages, MessageRecord{
			Role:      string(msg.Role),
			Content:   msg.Content,
			Sources:   sources,
			Timestamp: msg.Timestamp.Format(time.RFC3339),
		})
	}
	return SessionRecord{
		SessionID: s.ID,
		Title:     s.Title,
		Messages:  messages,
		CreatedAt: s.CreatedAt.Format(time.RFC3339),
		UpdatedAt: s.UpdatedAt.Format(time.RFC3339),
		Metadata: MetaRecord{
			Topic:         s.Meta.Topic,
			QuestionCount: s.Meta.QuestionCount,
			DocumentCount: s.Meta.DocumentCount,
		},
	}
}

// SessionFromRecord rebuilds a session from its wire form. Unparseable
// timestamps fall back to the current time rather than failing the load.
func SessionFromRecord(rec SessionRecord) *Session {
	session := &Session{
		ID:        rec.SessionID,
		Title:     rec.Title,
		Messages:  make([]Message, 0, len(rec.Messages)),
		CreatedAt: parseTime(rec.CreatedAt),
		UpdatedAt: parseTime(rec.UpdatedAt),
		Meta: SessionMeta{
			Topic:         rec.Metadata.Topic,
			QuestionCount: rec.Metadata.QuestionCount,
			DocumentCount: rec.Metadata.DocumentCount,
		},
	}
	for _, msg := range rec.Messages {
		sources := msg.Sources
		if sources == nil {
			sources = []schema.SourceCitation{}
		}
		session.Messages = append(session.Messages, Message{
			Role:      Role(msg.Role),
			Content:   msg.Content,
			Sources:   sources,
			Timestamp: parseTime(msg.Timestamp),
		})
	}
	return session
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Now()
	}
	return t
}

// SaveFile writes a session's record to a JSON file.
func (s *Session) SaveFile(path string) error {
	data, err := json.MarshalIndent(s.Record(), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode session '%s': %w", s.ID, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

// LoadFile reads a session record from a JSON file.
func LoadFile(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}
	var rec SessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode session file: %w", err)
	}
	return SessionFromRecord(rec), nil
}
