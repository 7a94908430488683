package interfaces

import (
	"context"

	"lexrag/internal/rag/schema"
)

// Loader is the interface for loading a document from a source file and
// converting it into a Document with its full extracted text.
type Loader interface {
	Load(ctx context.Context, path string) (*schema.Document, error)
}

// VectorStore is the interface the core requires of the external vector
// database. Distance in search hits is a non-negative float where smaller
// means more similar.
type VectorStore interface {
	// Insert stores one chunk record with its embedding.
	Insert(ctx context.Context, record schema.ChunkRecord, vector []float32) error
	// NearVector returns up to limit hits ordered best-similarity-first.
	NearVector(ctx context.Context, vector []float32, limit int) ([]schema.SearchHit, error)
	// DeleteByFilename removes every chunk of a document and reports how
	// many were deleted.
	DeleteByFilename(ctx context.Context, filename string) (int, error)
	// ListFilenames returns the distinct document filenames in the store.
	ListFilenames(ctx context.Context) ([]string, error)
	// Count returns the total number of stored chunks.
	Count(ctx context.Context) (int64, error)
}

// EmbeddingModel is the interface for a text embedding provider. Embed
// must return vectors of a fixed dimensionality for chunks and queries
// alike.
type EmbeddingModel interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ChatMessage is one turn handed to the language model.
type ChatMessage struct {
	Role    string
	Content string
}

// LLM is the interface for a language model that composes prose from a
// system prompt and a message sequence. The returned text is treated as
// opaque; the core never parses structure out of it.
type LLM interface {
	Complete(ctx context.Context, systemPrompt string, messages []ChatMessage) (string, error)
}
