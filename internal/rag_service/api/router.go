package api

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers all routes of the legal document assistant.
// The surface mirrors the four concerns of the service: system health,
// document management, retrieval and chat sessions.
func RegisterRoutes(router *gin.Engine, a *API) {
	router.GET("/health", a.HealthHandler)
	router.GET("/status", a.StatusHandler)

	router.POST("/upload", a.UploadHandler)
	router.GET("/documents", a.ListDocumentsHandler)
	router.DELETE("/documents/:filename", a.DeleteDocumentHandler)
	router.POST("/cleanup-orphaned-chunks", a.CleanupHandler)

	router.POST("/query", a.QueryHandler)
	router.POST("/chat", a.ChatHandler)
	router.POST("/qa", a.QAHandler)

	sessions := router.Group("/sessions")
	{
		sessions.POST("", a.CreateSessionHandler)
		sessions.GET("", a.ListSessionsHandler)
		sessions.GET("/:id", a.GetSessionHandler)
		sessions.GET("/:id/summary", a.SessionSummaryHandler)
		sessions.DELETE("/:id", a.DeleteSessionHandler)
	}
}
