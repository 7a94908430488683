package chat

import (
	"sort"
	"sync"
	"time"

	"lexrag/internal/rag/schema"
)

// Store holds the live sessions of the process. A map-level RWMutex
// guards membership and a per-session mutex serializes appends, so
// concurrent turns on different sessions never contend.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

type sessionEntry struct {
	mu      sync.Mutex
	session *Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*sessionEntry)}
}

// Create registers a new session. Creating an existing ID replaces the
// old session outright.
func (st *Store) Create(id, title string) *Session {
	session := NewSession(id, title)
	st.mu.Lock()
	st.sessions[id] = &sessionEntry{session: session}
	st.mu.Unlock()
	return session.clone()
}

// Put installs an already-built session, replacing any existing one
// with the same ID. Used when restoring from the archive.
func (st *Store) Put(session *Session) {
	st.mu.Lock()
	st.sessions[session.ID] = &sessionEntry{session: session.clone()}
	st.mu.Unlock()
}

// Get returns a deep-copy snapshot of a session, or nil when absent.
func (st *Store) Get(id string) *Session {
	entry := st.entry(id)
	if entry == nil {
		return nil
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	return entry.session.clone()
}

// Exists reports whether a session is present.
func (st *Store) Exists(id string) bool {
	return st.entry(id) != nil
}

// AppendUser adds a user turn and bumps the question count. It reports
// false when the session does not exist.
func (st *Store) AppendUser(id, content string) bool {
	entry := st.entry(id)
	if entry == nil {
		return false
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.session.Messages = append(entry.session.Messages, Message{
		Role:      RoleUser,
		Content:   content,
		Sources:   []schema.SourceCitation{},
		Timestamp: time.Now(),
	})
	entry.session.Meta.QuestionCount++
	entry.session.UpdatedAt = time.Now()
	return true
}

// AppendAssistant adds an assistant turn with its source citations. It
// reports false when the session does not exist.
func (st *Store) AppendAssistant(id, content string, sources []schema.SourceCitation) bool {
	entry := st.entry(id)
	if entry == nil {
		return false
	}
	if sources == nil {
		sources = []schema.SourceCitation{}
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	entry.session.Messages = append(entry.session.Messages, Message{
		Role:      RoleAssistant,
		Content:   content,
		Sources:   sources,
		Timestamp: time.Now(),
	})
	entry.session.UpdatedAt = time.Now()
	return true
}

// Delete removes a session and reports whether it existed.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return false
	}
	delete(st.sessions, id)
	return true
}

// SessionInfo is the listing view of a session.
type SessionInfo struct {
	ID            string    `json:"session_id"`
	Title         string    `json:"title"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	MessageCount  int       `json:"message_count"`
	QuestionCount int       `json:"question_count"`
}

// List returns every session's summary, most recently updated first.
func (st *Store) List() []SessionInfo {
	st.mu.RLock()
	entries := make([]*sessionEntry, 0, len(st.sessions))
	for _, entry := range st.sessions {
		entries = append(entries, entry)
	}
	st.mu.RUnlock()

	infos := make([]SessionInfo, 0, len(entries))
	for _, entry := range entries {
		entry.mu.Lock()
		s := entry.session
		infos = append(infos, SessionInfo{
			ID:            s.ID,
			Title:         s.Title,
			CreatedAt:     s.CreatedAt,
			UpdatedAt:     s.UpdatedAt,
			MessageCount:  len(s.Messages),
			QuestionCount: s.Meta.QuestionCount,
		})
		entry.mu.Unlock()
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].UpdatedAt.After(infos[j].UpdatedAt)
	})
	return infos
}

func (st *Store) entry(id string) *sessionEntry {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return st.sessions[id]
}
