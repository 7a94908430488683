package chat

import (
	"time"

	"lexrag/internal/rag/schema"
)

// Role identifies who produced a message. The set is closed; anything
// else is rejected at the API boundary.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAssistant, RoleSystem:
		return true
	}
	return false
}

// Message is one turn in a conversation. Assistant messages may carry
// the citations their answer was grounded on.
type Message struct {
	Role      Role                    `json:"role"`
	Content   string                  `json:"content"`
	Sources   []schema.SourceCitation `json:"sources"`
	Timestamp time.Time               `json:"timestamp"`
}

// SessionMeta is the running statistics of a session.
type SessionMeta struct {
	Topic         string `json:"topic"`
	QuestionCount int    `json:"question_count"`
	DocumentCount int    `json:"document_count"`
}

// Session is a conversation with its history and metadata. Sessions are
// mutated only through the Store, which serializes access.
type Session struct {
	ID        string      `json:"session_id"`
	Title     string      `json:"title"`
	Messages  []Message   `json:"messages"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	Meta      SessionMeta `json:"metadata"`
}

// NewSession creates an empty session. An empty title defaults to
// "New Chat".
func NewSession(id, title string) *Session {
	if title == "" {
		title = "New Chat"
	}
	now := time.Now()
	return &Session{
		ID:        id,
		Title:     title,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// LastUserMessage returns the content of the most recent user turn, or
// "" when there is none.
func (s *Session) LastUserMessage() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == RoleUser {
			return s.Messages[i].Content
		}
	}
	return ""
}

// RecentMessages returns up to max trailing messages for LLM context.
func (s *Session) RecentMessages(max int) []Message {
	if max <= 0 || len(s.Messages) <= max {
		return s.Messages
	}
	return s.Messages[len(s.Messages)-max:]
}

// QAPair is one resolved question and answer from a session.
type QAPair struct {
	Question   string                  `json:"question"`
	Answer     string                  `json:"answer"`
	Sources    []schema.SourceCitation `json:"sources"`
	Confidence float64                 `json:"confidence"`
	Timestamp  time.Time               `json:"timestamp"`
}

// QAPairs walks the history and pairs each user turn with the assistant
// turn that follows it. Unanswered questions are omitted.
func (s *Session) QAPairs() []QAPair {
	var pairs []QAPair
	for i := 0; i < len(s.Messages)-1; i++ {
		if s.Messages[i].Role != RoleUser || s.Messages[i+1].Role != RoleAssistant {
			continue
		}
		pairs = append(pairs, QAPair{
			Question:  s.Messages[i].Content,
			Answer:    s.Messages[i+1].Content,
			Sources:   s.Messages[i+1].Sources,
			Timestamp: s.Messages[i+1].Timestamp,
		})
	}
	return pairs
}

// clone returns a deep copy so callers can read a snapshot without
// holding the store's locks.
func (s *Session) clone() *Session {
	out := *s
	out.Messages = make([]Message, len(s.Messages))
	copy(out.Messages, s.Messages)
	for i := range out.Messages {
		if s.Messages[i].Sources != nil {
			out.Messages[i].Sources = make([]schema.SourceCitation, len(s.Messages[i].Sources))
			copy(out.Messages[i].Sources, s.Messages[i].Sources)
		}
	}
	return &out
}
