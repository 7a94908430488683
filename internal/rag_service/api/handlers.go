package api

import (
	"errors"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"lexrag/internal/rag/interfaces"
	"lexrag/internal/rag/pipeline"
	"lexrag/internal/rag_service/service"
	"lexrag/pkg/logger"
)

// API provides the HTTP handlers of the legal document assistant.
type API struct {
	service *service.Service
	logger  *logger.Logger
}

// NewAPI creates a new API handler.
func NewAPI(svc *service.Service, log *logger.Logger) *API {
	return &API{service: svc, logger: log}
}

// HealthHandler reports liveness.
func (a *API) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "Legal RAG API",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// StatusHandler reports store connectivity and corpus size.
func (a *API) StatusHandler(c *gin.Context) {
	c.JSON(http.StatusOK, a.service.Status(c.Request.Context()))
}

// UploadHandler accepts a PDF upload and ingests it.
func (a *API) UploadHandler(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read uploaded file"})
		return
	}

	result, err := a.service.Upload(c.Request.Context(), fileHeader.Filename, data)
	if err != nil {
		a.logger.Warn("Upload failed: " + err.Error())
		c.JSON(statusForError(err), gin.H{"error": messageForError(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"filename":     result.Filename,
		"status":       "success",
		"message":      "Successfully uploaded and processed " + result.Filename,
		"chunks_added": result.ChunksAdded,
	})
}

// ListDocumentsHandler lists the uploaded documents.
func (a *API) ListDocumentsHandler(c *gin.Context) {
	docs, err := a.service.ListDocuments()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list documents"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"documents": docs, "total": len(docs)})
}

// DeleteDocumentHandler removes a document and its stored chunks.
func (a *API) DeleteDocumentHandler(c *gin.Context) {
	filename := c.Param("filename")

	deleted, err := a.service.DeleteDocument(c.Request.Context(), filename)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete document"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":         "success",
		"message":        "Deleted " + filename + " and its chunks from database",
		"chunks_deleted": deleted,
	})
}

// CleanupHandler removes chunks for documents no longer on disk.
func (a *API) CleanupHandler(c *gin.Context) {
	result, err := a.service.CleanupOrphanedChunks(c.Request.Context())
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": "Cleanup failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":         "success",
		"message":        "Cleaned up " + strconv.Itoa(result.ChunksDeleted) + " orphaned chunks",
		"orphaned_files": result.OrphanedFiles,
		"chunks_deleted": result.ChunksDeleted,
	})
}

// QueryHandler runs a one-shot retrieval query.
func (a *API) QueryHandler(c *gin.Context) {
	var payload struct {
		Question   string `json:"question"`
		NumResults int    `json:"num_results"`
		UseAIAns   *bool  `json:"use_ai_answer"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	withAnswer := true
	if payload.UseAIAns != nil {
		withAnswer = *payload.UseAIAns
	}

	result, err := a.service.Query(c.Request.Context(), payload.Question, payload.NumResults, withAnswer)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": messageForError(err)})
		return
	}
	c.JSON(http.StatusOK, result)
}

// ChatHandler answers the latest turn of a stateless conversation.
func (a *API) ChatHandler(c *gin.Context) {
	var payload struct {
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
		NumResults int `json:"num_results"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	messages := make([]interfaces.ChatMessage, 0, len(payload.Messages))
	for _, msg := range payload.Messages {
		messages = append(messages, interfaces.ChatMessage{Role: msg.Role, Content: msg.Content})
	}

	result, err := a.service.Chat(c.Request.Context(), messages, payload.NumResults)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": messageForError(err)})
		return
	}
	c.JSON(http.StatusOK, result)
}

// QAHandler answers a question inside a tracked session.
func (a *API) QAHandler(c *gin.Context) {
	var payload struct {
		Question   string `json:"question"`
		SessionID  string `json:"session_id"`
		NumResults int    `json:"num_results"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request payload"})
		return
	}

	result, err := a.service.QA(c.Request.Context(), payload.SessionID, payload.Question, payload.NumResults)
	if err != nil {
		c.JSON(statusForError(err), gin.H{"error": messageForError(err)})
		return
	}
	c.JSON(http.StatusOK, result)
}

// CreateSessionHandler starts a new chat session.
func (a *API) CreateSessionHandler(c *gin.Context) {
	var payload struct {
		Title string `json:"title"`
	}
	// An empty body means a default title.
	_ = c.ShouldBindJSON(&payload)

	session := a.service.CreateSession(c.Request.Context(), payload.Title)
	c.JSON(http.StatusOK, gin.H{
		"session_id":     session.ID,
		"title":          session.Title,
		"created_at":     session.CreatedAt,
		"updated_at":     session.UpdatedAt,
		"message_count":  0,
		"question_count": 0,
	})
}

// ListSessionsHandler lists the live sessions.
func (a *API) ListSessionsHandler(c *gin.Context) {
	sessions := a.service.ListSessions()
	c.JSON(http.StatusOK, gin.H{"sessions": sessions, "total": len(sessions)})
}

// GetSessionHandler returns a session's full history.
func (a *API) GetSessionHandler(c *gin.Context) {
	session := a.service.GetSession(c.Request.Context(), c.Param("id"))
	if session == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session_id": session.ID,
		"title":      session.Title,
		"messages":   session.Messages,
		"metadata":   session.Meta,
	})
}

// SessionSummaryHandler returns a session's condensed view.
func (a *API) SessionSummaryHandler(c *gin.Context) {
	summary := a.service.SessionSummary(c.Request.Context(), c.Param("id"))
	if summary == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, summary)
}

// DeleteSessionHandler removes a session.
func (a *API) DeleteSessionHandler(c *gin.Context) {
	id := c.Param("id")
	if !a.service.DeleteSession(c.Request.Context(), id) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"message": "Session " + id + " deleted",
	})
}

// statusForError maps pipeline stage failures to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, pipeline.ErrEmbedding),
		errors.Is(err, pipeline.ErrVectorStore),
		errors.Is(err, pipeline.ErrGeneration):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

// messageForError names the failed pipeline stage without leaking
// provider detail; other errors pass through as-is.
func messageForError(err error) string {
	switch {
	case errors.Is(err, pipeline.ErrEmbedding):
		return pipeline.ErrEmbedding.Error()
	case errors.Is(err, pipeline.ErrVectorStore):
		return pipeline.ErrVectorStore.Error()
	case errors.Is(err, pipeline.ErrGeneration):
		return pipeline.ErrGeneration.Error()
	default:
		return err.Error()
	}
}
