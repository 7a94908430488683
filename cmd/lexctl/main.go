package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lexrag/internal/config"
	"lexrag/internal/database/milvus"
	"lexrag/internal/embedding"
	"lexrag/internal/llm"
	"lexrag/internal/rag/chunker"
	"lexrag/internal/rag/interfaces"
	"lexrag/internal/rag/metadata"
	"lexrag/internal/rag/pipeline"
	"lexrag/internal/rag/storages/vectorstore"
	"lexrag/pkg/logger"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "lexctl",
	Short: "Manage and query the legal document corpus",
	Long:  `A command-line interface for ingesting legal case documents, querying the corpus and resetting the vector collection.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "config/config.yaml", "path to the config file")
}

// toolkit bundles the backend components the commands share. The CLI
// talks to Milvus directly rather than going through the HTTP API.
type toolkit struct {
	cfg       *config.AppConfig
	log       *logger.Logger
	client    *milvus.MilvusClient
	store     *vectorstore.MilvusStore
	embedder  interfaces.EmbeddingModel
	llm       interfaces.LLM
	indexer   *pipeline.Indexer
	retriever *pipeline.Retriever
	composer  *pipeline.Composer
}

func newToolkit(ctx context.Context) (*toolkit, error) {
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	log := logger.New("lexctl")

	client, err := milvus.GetClient(ctx, &cfg.Databases.Milvus)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Milvus: %w", err)
	}

	store, err := vectorstore.NewMilvusStore(client, log)
	if err != nil {
		return nil, err
	}

	embedder, err := embedding.NewClient(cfg.Embedding)
	if err != nil {
		return nil, err
	}
	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		return nil, err
	}

	return &toolkit{
		cfg:      cfg,
		log:      log,
		client:   client,
		store:    store,
		embedder: embedder,
		llm:      llmClient,
		indexer: pipeline.NewIndexer(
			chunker.New(cfg.Chunking.Size, cfg.Chunking.Overlap, cfg.Chunking.MinChunkSize),
			metadata.NewExtractor(),
			embedder,
			store,
			log,
		),
		retriever: pipeline.NewRetriever(embedder, store),
		composer:  pipeline.NewComposer(llmClient, nil),
	}, nil
}

func (t *toolkit) close() {
	t.client.Close()
}
