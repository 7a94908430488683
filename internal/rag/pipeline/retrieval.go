package pipeline

import (
	"context"
	"fmt"

	"lexrag/internal/rag/interfaces"
	"lexrag/internal/rag/schema"
)

// Retriever answers similarity queries: it embeds the question, searches
// the vector store and ranks the hits with relevance scores, citations
// and an aggregate confidence.
type Retriever struct {
	embedder interfaces.EmbeddingModel
	store    interfaces.VectorStore
}

// NewRetriever assembles the retrieval pipeline.
func NewRetriever(embedder interfaces.EmbeddingModel, store interfaces.VectorStore) *Retriever {
	return &Retriever{embedder: embedder, store: store}
}

// RetrievalResult is a ranked answer set for one question.
type RetrievalResult struct {
	Results    []schema.RankedResult   `json:"results"`
	Citations  []schema.SourceCitation `json:"source_citations"`
	Confidence float64                 `json:"confidence"`
}

// Search retrieves the limit most similar chunks for a question.
func (r *Retriever) Search(ctx context.Context, question string, limit int) (*RetrievalResult, error) {
	vector, err := r.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}

	hits, err := r.store.NearVector(ctx, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrVectorStore, err)
	}

	return Rank(hits), nil
}

// Rank converts raw hits into ranked results, preserving the store's
// ordering. Relevance is 1 - distance and is not clamped; out-of-range
// values are honest signals of poor matches. Confidence is the mean
// relevance, 0.0 when there are no hits.
func Rank(hits []schema.SearchHit) *RetrievalResult {
	out := &RetrievalResult{
		Results:   make([]schema.RankedResult, 0, len(hits)),
		Citations: make([]schema.SourceCitation, 0, len(hits)),
	}

	sum := 0.0
	for i, hit := range hits {
		score := 1 - hit.Distance
		sum += score

		out.Results = append(out.Results, schema.RankedResult{
			ChunkRecord:    hit.Record,
			RelevanceScore: score,
		})
		out.Citations = append(out.Citations, schema.SourceCitation{
			Ordinal:        i + 1,
			Filename:       hit.Record.Filename,
			Filepath:       hit.Record.Filepath,
			ChunkIndex:     hit.Record.ChunkIndex,
			CaseName:       hit.Record.CaseName,
			RelevanceScore: score,
			SourceLocation: SourceLocation(hit.Record),
		})
	}

	if len(hits) > 0 {
		out.Confidence = sum / float64(len(hits))
	}
	return out
}

// SourceLocation renders a chunk's stable address for citations.
func SourceLocation(record schema.ChunkRecord) string {
	return fmt.Sprintf("%s:chunk_%d", record.Filename, record.ChunkIndex)
}
