package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"lexrag/internal/chat"
	"lexrag/internal/config"
	"lexrag/internal/database/milvus"
	"lexrag/internal/database/mongo"
	"lexrag/internal/embedding"
	"lexrag/internal/llm"
	"lexrag/internal/rag/chunker"
	"lexrag/internal/rag/metadata"
	"lexrag/internal/rag/pipeline"
	"lexrag/internal/rag/storages/vectorstore"
	"lexrag/internal/rag_service/api"
	"lexrag/internal/rag_service/service"
	"lexrag/pkg/logger"
)

// qaTemperature is the lower sampling temperature of the focused Q&A
// path; query and chat use the configured value.
const qaTemperature = 0.2

func main() {
	cfg, err := config.LoadConfig("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	appLogger := logger.New("RAGService")
	appLogger.Info("Starting legal RAG service...")

	ctx := context.Background()

	milvusClient, err := milvus.GetClient(ctx, &cfg.Databases.Milvus)
	if err != nil {
		log.Fatalf("Failed to connect to Milvus: %v", err)
	}

	store, err := vectorstore.NewMilvusStore(milvusClient, appLogger)
	if err != nil {
		log.Fatalf("Failed to create vector store: %v", err)
	}
	if err := store.EnsureCollection(ctx); err != nil {
		log.Fatalf("Failed to prepare collection: %v", err)
	}

	embedder, err := embedding.NewClient(cfg.Embedding)
	if err != nil {
		log.Fatalf("Failed to create embedding client: %v", err)
	}

	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to create LLM client: %v", err)
	}
	qaCfg := cfg.LLM.OpenAI
	qaCfg.Temperature = qaTemperature
	qaLLM, err := llm.NewOpenAIClient(qaCfg)
	if err != nil {
		log.Fatalf("Failed to create Q&A LLM client: %v", err)
	}

	var archive chat.Archive
	if cfg.Databases.MongoDB.Address != "" {
		mongoClient, err := mongo.GetClient(&cfg.Databases.MongoDB)
		if err != nil {
			appLogger.Warn(fmt.Sprintf("MongoDB unavailable, sessions will not be persisted: %v", err))
		} else {
			archive = chat.NewMongoArchive(
				mongoClient.Database(cfg.Databases.MongoDB.Database),
				cfg.Databases.MongoDB.Collection,
			)
			appLogger.Info("Session archive connected")
		}
	}

	indexer := pipeline.NewIndexer(
		chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap, cfg.Chunking.MinChunkSize),
		metadata.NewExtractor(),
		embedder,
		store,
		appLogger,
	)
	retriever := pipeline.NewRetriever(embedder, store)
	composer := pipeline.NewComposer(llmClient, qaLLM)

	svc := service.New(cfg, store, indexer, retriever, composer, archive, appLogger)

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.RegisterRoutes(router, api.NewAPI(svc, appLogger))

	server := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: router,
	}
	go func() {
		appLogger.Info(fmt.Sprintf("HTTP server listening at %s", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error(fmt.Sprintf("HTTP shutdown error: %v", err))
	}
	milvusClient.Close()
	if archive != nil {
		if err := mongo.Close(shutdownCtx); err != nil {
			appLogger.Error(fmt.Sprintf("MongoDB close error: %v", err))
		}
	}
	appLogger.Info("Server gracefully stopped")
}
