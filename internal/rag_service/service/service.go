package service

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"lexrag/internal/chat"
	"lexrag/internal/config"
	"lexrag/internal/rag/interfaces"
	"lexrag/internal/rag/loaders"
	"lexrag/internal/rag/pipeline"
	"lexrag/internal/rag/schema"
	"lexrag/pkg/logger"
)

// docsPerChunkEstimate is the assumed average chunks per document, used
// only for the rough document total on the status endpoint.
const docsPerChunkEstimate = 50

// Service is the application layer of the legal document assistant. It
// owns the ingestion and retrieval pipelines, the live session store
// and the optional session archive, and exposes the operations the HTTP
// handlers and CLI commands call.
type Service struct {
	log       *logger.Logger
	cfg       *config.AppConfig
	store     interfaces.VectorStore
	indexer   *pipeline.Indexer
	retriever *pipeline.Retriever
	composer  *pipeline.Composer
	sessions  *chat.Store
	archive   chat.Archive
}

// New assembles the Service. archive may be nil; sessions then live only
// in memory.
func New(
	cfg *config.AppConfig,
	store interfaces.VectorStore,
	indexer *pipeline.Indexer,
	retriever *pipeline.Retriever,
	composer *pipeline.Composer,
	archive chat.Archive,
	log *logger.Logger,
) *Service {
	return &Service{
		log:       log,
		cfg:       cfg,
		store:     store,
		indexer:   indexer,
		retriever: retriever,
		composer:  composer,
		sessions:  chat.NewStore(),
		archive:   archive,
	}
}

// Status reports store connectivity and corpus size. The document total
// is an estimate from the chunk count, not an exact figure.
type Status struct {
	Status         string `json:"status"`
	StoreConnected bool   `json:"store_connected"`
	TotalDocuments int64  `json:"total_documents"`
	TotalChunks    int64  `json:"total_chunks"`
}

// Status returns the current system status.
func (s *Service) Status(ctx context.Context) Status {
	chunks, err := s.store.Count(ctx)
	if err != nil {
		s.log.Error(fmt.Sprintf("Failed to count chunks: %v", err))
		return Status{Status: "disconnected"}
	}

	docs := int64(0)
	if chunks > 0 {
		docs = chunks / docsPerChunkEstimate
		if docs < 1 {
			docs = 1
		}
	}
	return Status{
		Status:         "ready",
		StoreConnected: true,
		TotalDocuments: docs,
		TotalChunks:    chunks,
	}
}

// UploadResult reports the outcome of a document upload.
type UploadResult struct {
	Filename    string `json:"filename"`
	ChunksAdded int    `json:"chunks_added"`
}

// Upload saves a PDF into the upload directory and ingests it. Uploads
// carry the "User Upload" source label and the current year.
func (s *Service) Upload(ctx context.Context, filename string, data []byte) (*UploadResult, error) {
	if !strings.HasSuffix(strings.ToLower(filename), ".pdf") {
		return nil, fmt.Errorf("only PDF files are supported")
	}

	if err := os.MkdirAll(s.cfg.Server.UploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	path := filepath.Join(s.cfg.Server.UploadDir, filepath.Base(filename))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to save uploaded file: %w", err)
	}

	loader := loaders.ForPath(path)
	doc, err := loader.Load(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract text from PDF: %w", err)
	}
	doc.Source = "User Upload"
	doc.Year = fmt.Sprintf("%d", time.Now().Year())

	added, err := s.indexer.IndexDocument(ctx, doc)
	if err != nil {
		return nil, err
	}
	s.log.Info(fmt.Sprintf("Uploaded %s: %d chunks added", doc.Filename, added))
	return &UploadResult{Filename: doc.Filename, ChunksAdded: added}, nil
}

// IngestDirectory loads and indexes every supported document under dir.
// It returns total chunks added and the paths that failed to load.
func (s *Service) IngestDirectory(ctx context.Context, dir, source, year string) (int, []string, error) {
	docs, failed, err := loaders.LoadDirectory(ctx, dir, source, year)
	if err != nil {
		return 0, nil, err
	}
	total, failedDocs := s.indexer.IndexAll(ctx, docs)
	failed = append(failed, failedDocs...)
	return total, failed, nil
}

// QueryResult is a ranked answer set, optionally with generated prose.
type QueryResult struct {
	Question     string                  `json:"question"`
	Results      []schema.RankedResult   `json:"results"`
	AIAnswer     string                  `json:"ai_answer,omitempty"`
	TotalResults int                     `json:"total_results"`
	Citations    []schema.SourceCitation `json:"source_citations"`
}

// Query retrieves relevant chunks for a question and optionally
// generates an answer grounded on them.
func (s *Service) Query(ctx context.Context, question string, numResults int, withAnswer bool) (*QueryResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question cannot be empty")
	}
	if numResults <= 0 {
		numResults = s.cfg.Chat.TopK
	}

	retrieved, err := s.retriever.Search(ctx, question, numResults)
	if err != nil {
		return nil, err
	}

	out := &QueryResult{
		Question:     question,
		Results:      retrieved.Results,
		TotalResults: len(retrieved.Results),
		Citations:    retrieved.Citations,
	}
	if withAnswer && len(retrieved.Results) > 0 {
		answer, err := s.composer.Answer(ctx, question, retrieved.Results)
		if err != nil {
			return nil, err
		}
		out.AIAnswer = answer
	}
	return out, nil
}

// ChatResult is one conversational turn's outcome.
type ChatResult struct {
	Response string                   `json:"response"`
	Sources  []schema.SourceCitation  `json:"sources"`
	History  []interfaces.ChatMessage `json:"chat_history"`
}

// Chat answers the latest user turn of a stateless conversation. The
// caller supplies the full history; retrieval is driven by the last
// user message.
func (s *Service) Chat(ctx context.Context, messages []interfaces.ChatMessage, numResults int) (*ChatResult, error) {
	if len(messages) == 0 {
		return nil, fmt.Errorf("no messages provided")
	}

	question := ""
	for i := len(messages) - 1; i >= 0; i-- {
		if strings.EqualFold(messages[i].Role, "user") {
			question = strings.TrimSpace(messages[i].Content)
			break
		}
	}
	if question == "" {
		return nil, fmt.Errorf("no user message found")
	}
	if numResults <= 0 {
		numResults = s.cfg.Chat.TopK
	}

	retrieved, err := s.retriever.Search(ctx, question, numResults)
	if err != nil {
		return nil, err
	}

	window := messages
	if max := s.cfg.Chat.MaxContextMessages; max > 0 && len(window) > max {
		window = window[len(window)-max:]
	}

	response := "No response generated"
	if len(retrieved.Results) > 0 {
		response, err = s.composer.ChatAnswer(ctx, window, retrieved.Results)
		if err != nil {
			return nil, err
		}
	}

	history := append([]interfaces.ChatMessage{}, messages...)
	history = append(history, interfaces.ChatMessage{Role: "assistant", Content: response})
	return &ChatResult{
		Response: response,
		Sources:  retrieved.Citations,
		History:  history,
	}, nil
}

// QAResult is a session-tracked answer with its citations and aggregate
// confidence.
type QAResult struct {
	SessionID  string                  `json:"session_id"`
	Question   string                  `json:"question"`
	Answer     string                  `json:"answer"`
	Sources    []schema.SourceCitation `json:"sources"`
	Confidence float64                 `json:"confidence"`
}

// QA answers a question inside a session, creating or restoring the
// session as needed and recording both turns.
func (s *Service) QA(ctx context.Context, sessionID, question string, numResults int) (*QAResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("question cannot be empty")
	}
	if sessionID == "" {
		sessionID = uuid.New().String()
	}
	if numResults <= 0 {
		numResults = s.cfg.Chat.TopK
	}

	if !s.sessions.Exists(sessionID) {
		if restored := s.restoreSession(ctx, sessionID); !restored {
			s.sessions.Create(sessionID, "Legal Q&A")
		}
	}
	s.sessions.AppendUser(sessionID, question)

	retrieved, err := s.retriever.Search(ctx, question, numResults)
	if err != nil {
		return nil, err
	}

	answer := "Unable to generate answer from available documents"
	confidence := 0.0
	if len(retrieved.Results) > 0 {
		answer, err = s.composer.QAAnswer(ctx, question, retrieved.Results)
		if err != nil {
			return nil, err
		}
		confidence = math.Round(retrieved.Confidence*100) / 100
		s.sessions.AppendAssistant(sessionID, answer, retrieved.Citations)
	}

	s.archiveSession(ctx, sessionID)
	return &QAResult{
		SessionID:  sessionID,
		Question:   question,
		Answer:     answer,
		Sources:    retrieved.Citations,
		Confidence: confidence,
	}, nil
}

// CreateSession starts a new session with a generated ID.
func (s *Service) CreateSession(ctx context.Context, title string) *chat.Session {
	session := s.sessions.Create(uuid.New().String(), title)
	s.archiveSession(ctx, session.ID)
	return session
}

// GetSession returns a session snapshot, restoring it from the archive
// when it is not live. Returns nil when unknown.
func (s *Service) GetSession(ctx context.Context, id string) *chat.Session {
	if session := s.sessions.Get(id); session != nil {
		return session
	}
	if s.restoreSession(ctx, id) {
		return s.sessions.Get(id)
	}
	return nil
}

// ListSessions returns summaries of the live sessions, most recently
// updated first.
func (s *Service) ListSessions() []chat.SessionInfo {
	return s.sessions.List()
}

// DeleteSession removes a session from memory and the archive. It
// reports whether the session existed.
func (s *Service) DeleteSession(ctx context.Context, id string) bool {
	existed := s.sessions.Delete(id)
	if s.archive != nil {
		if err := s.archive.Delete(ctx, id); err != nil {
			s.log.Warn(fmt.Sprintf("Failed to delete archived session %s: %v", id, err))
		}
	}
	return existed
}

// SessionSummary is the condensed view of one session.
type SessionSummary struct {
	SessionID     string    `json:"session_id"`
	Title         string    `json:"title"`
	MessageCount  int       `json:"message_count"`
	QuestionCount int       `json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	LastMessage   string    `json:"last_message,omitempty"`
}

// SessionSummary returns the condensed view of a session, or nil when
// unknown.
func (s *Service) SessionSummary(ctx context.Context, id string) *SessionSummary {
	session := s.GetSession(ctx, id)
	if session == nil {
		return nil
	}
	out := &SessionSummary{
		SessionID:     session.ID,
		Title:         session.Title,
		MessageCount:  len(session.Messages),
		QuestionCount: session.Meta.QuestionCount,
		CreatedAt:     session.CreatedAt,
		UpdatedAt:     session.UpdatedAt,
	}
	if n := len(session.Messages); n > 0 {
		out.LastMessage = session.Messages[n-1].Content
	}
	return out
}

// DocumentInfo describes one stored document file.
type DocumentInfo struct {
	Filename   string    `json:"filename"`
	SizeBytes  int64     `json:"size_bytes"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// ListDocuments lists the PDF files in the upload directory.
func (s *Service) ListDocuments() ([]DocumentInfo, error) {
	entries, err := os.ReadDir(s.cfg.Server.UploadDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []DocumentInfo{}, nil
		}
		return nil, fmt.Errorf("failed to read upload directory: %w", err)
	}

	docs := make([]DocumentInfo, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".pdf") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		docs = append(docs, DocumentInfo{
			Filename:   entry.Name(),
			SizeBytes:  info.Size(),
			UploadedAt: info.ModTime(),
		})
	}
	return docs, nil
}

// DeleteDocument removes a document's chunks from the store and its
// file from disk. It returns the number of chunks deleted.
func (s *Service) DeleteDocument(ctx context.Context, filename string) (int, error) {
	path := filepath.Join(s.cfg.Server.UploadDir, filepath.Base(filename))
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return 0, os.ErrNotExist
		}
		return 0, fmt.Errorf("failed to stat document: %w", err)
	}

	deleted, err := s.store.DeleteByFilename(ctx, filename)
	if err != nil {
		s.log.Warn(fmt.Sprintf("Failed to delete chunks for %s: %v", filename, err))
	}
	if err := os.Remove(path); err != nil {
		return deleted, fmt.Errorf("failed to remove document file: %w", err)
	}
	return deleted, nil
}

// CleanupResult reports orphaned chunk removal.
type CleanupResult struct {
	OrphanedFiles []string `json:"orphaned_files"`
	ChunksDeleted int      `json:"chunks_deleted"`
}

// CleanupOrphanedChunks removes chunks whose source file no longer
// exists in the upload directory.
func (s *Service) CleanupOrphanedChunks(ctx context.Context) (*CleanupResult, error) {
	onDisk := make(map[string]bool)
	if docs, err := s.ListDocuments(); err == nil {
		for _, doc := range docs {
			onDisk[doc.Filename] = true
		}
	}

	stored, err := s.store.ListFilenames(ctx)
	if err != nil {
		return nil, err
	}

	out := &CleanupResult{OrphanedFiles: []string{}}
	for _, filename := range stored {
		if onDisk[filename] {
			continue
		}
		deleted, err := s.store.DeleteByFilename(ctx, filename)
		if err != nil {
			s.log.Warn(fmt.Sprintf("Failed to clean up chunks for %s: %v", filename, err))
			continue
		}
		out.OrphanedFiles = append(out.OrphanedFiles, filename)
		out.ChunksDeleted += deleted
	}
	if out.ChunksDeleted > 0 {
		s.log.Info(fmt.Sprintf("Cleaned up %d orphaned chunks from %d files", out.ChunksDeleted, len(out.OrphanedFiles)))
	}
	return out, nil
}

// restoreSession pulls a session out of the archive into the live
// store. Returns false when the archive is absent or has no record.
func (s *Service) restoreSession(ctx context.Context, id string) bool {
	if s.archive == nil {
		return false
	}
	rec, err := s.archive.Load(ctx, id)
	if err != nil {
		s.log.Warn(fmt.Sprintf("Failed to load archived session %s: %v", id, err))
		return false
	}
	if rec == nil {
		return false
	}
	s.sessions.Put(chat.SessionFromRecord(*rec))
	return true
}

// archiveSession saves a live session's record, best effort.
func (s *Service) archiveSession(ctx context.Context, id string) {
	if s.archive == nil {
		return
	}
	session := s.sessions.Get(id)
	if session == nil {
		return
	}
	if err := s.archive.Save(ctx, session.Record()); err != nil {
		s.log.Warn(fmt.Sprintf("Failed to archive session %s: %v", id, err))
	}
}
