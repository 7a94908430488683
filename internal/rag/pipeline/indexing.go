package pipeline

import (
	"context"
	"fmt"

	"lexrag/internal/rag/chunker"
	"lexrag/internal/rag/interfaces"
	"lexrag/internal/rag/metadata"
	"lexrag/internal/rag/schema"
	"lexrag/pkg/logger"
)

// insertBatchSize bounds how many chunks are embedded and inserted per
// progress report.
const insertBatchSize = 25

// Indexer turns documents into stored, searchable chunk records. Case
// metadata is extracted once per document and replicated onto every
// chunk record so each search hit is self-describing.
type Indexer struct {
	log       *logger.Logger
	chunker   *chunker.Chunker
	extractor *metadata.Extractor
	embedder  interfaces.EmbeddingModel
	store     interfaces.VectorStore
}

// NewIndexer assembles the indexing pipeline.
func NewIndexer(c *chunker.Chunker, e *metadata.Extractor, embedder interfaces.EmbeddingModel, store interfaces.VectorStore, log *logger.Logger) *Indexer {
	return &Indexer{
		log:       log,
		chunker:   c,
		extractor: e,
		embedder:  embedder,
		store:     store,
	}
}

// IndexDocument chunks, embeds and stores one document. A chunk whose
// embedding fails is skipped and the rest of the document still lands;
// the returned count is the number of chunks actually stored.
func (ix *Indexer) IndexDocument(ctx context.Context, doc *schema.Document) (int, error) {
	md := ix.extractor.Extract(doc.Text, doc.Filename)
	chunks := ix.chunker.Split(doc.ID, doc.Text)
	if len(chunks) == 0 {
		ix.log.Warn(fmt.Sprintf("No chunks produced for %s", doc.Filename))
		return 0, nil
	}

	added := 0
	for batchStart := 0; batchStart < len(chunks); batchStart += insertBatchSize {
		batchEnd := batchStart + insertBatchSize
		if batchEnd > len(chunks) {
			batchEnd = len(chunks)
		}

		for _, chunk := range chunks[batchStart:batchEnd] {
			vector, err := ix.embedder.Embed(ctx, chunk.Text)
			if err != nil {
				if ctx.Err() != nil {
					return added, fmt.Errorf("%w: %v", ErrEmbedding, err)
				}
				ix.log.WithPayload(map[string]interface{}{
					"filename":    doc.Filename,
					"chunk_index": chunk.Index,
				}).Warn(fmt.Sprintf("Skipping chunk, embedding failed: %v", err))
				continue
			}

			record := NewChunkRecord(doc, chunk, md)
			if err := ix.store.Insert(ctx, record, vector); err != nil {
				return added, fmt.Errorf("%w: %v", ErrVectorStore, err)
			}
			added++
		}

		ix.log.Info(fmt.Sprintf("Indexed %d/%d chunks of %s", batchEnd, len(chunks), doc.Filename))
	}

	return added, nil
}

// IndexAll indexes a set of documents, continuing past per-document
// failures. It returns the total chunks stored and the filenames that
// failed entirely.
func (ix *Indexer) IndexAll(ctx context.Context, docs []*schema.Document) (int, []string) {
	total := 0
	var failed []string
	for _, doc := range docs {
		n, err := ix.IndexDocument(ctx, doc)
		total += n
		if err != nil {
			ix.log.Error(fmt.Sprintf("Failed to index %s: %v", doc.Filename, err))
			failed = append(failed, doc.Filename)
			if ctx.Err() != nil {
				break
			}
		}
	}
	return total, failed
}

// NewChunkRecord flattens a chunk and its document's metadata into the
// unit the vector store persists.
func NewChunkRecord(doc *schema.Document, chunk schema.Chunk, md schema.ExtractedMetadata) schema.ChunkRecord {
	return schema.ChunkRecord{
		Text:          chunk.Text,
		Filename:      doc.Filename,
		Filepath:      doc.Filepath,
		Source:        doc.Source,
		Year:          doc.Year,
		ChunkIndex:    chunk.Index,
		CaseName:      md.CaseName,
		CaseNumber:    md.CaseNumber,
		Court:         md.Court,
		Judges:        md.Judges,
		JudgmentDate:  md.JudgmentDate,
		Citations:     md.Citations,
		SubjectMatter: md.SubjectMatter,
	}
}
