package pipeline

import "errors"

// Stage sentinels. Callers wrap provider errors with these so the HTTP
// layer can report which stage failed without leaking provider detail.
var (
	// ErrEmbedding marks a failure while embedding text.
	ErrEmbedding = errors.New("embedding failed")
	// ErrVectorStore marks a failure while talking to the vector store.
	ErrVectorStore = errors.New("vector store operation failed")
	// ErrGeneration marks a failure while generating an answer.
	ErrGeneration = errors.New("answer generation failed")
)
