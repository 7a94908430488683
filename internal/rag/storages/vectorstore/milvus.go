package vectorstore

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"

	"lexrag/internal/database/milvus"
	"lexrag/internal/rag/interfaces"
	"lexrag/internal/rag/schema"
	"lexrag/pkg/logger"
)

// Collection field names for the legal document chunks.
const (
	FieldID            = "id"
	FieldEmbedding     = "embedding"
	FieldText          = "text"
	FieldFilename      = "filename"
	FieldFilepath      = "filepath"
	FieldSource        = "source"
	FieldYear          = "year"
	FieldChunkIndex    = "chunk_index"
	FieldCaseName      = "case_name"
	FieldCaseNumber    = "case_number"
	FieldCourt         = "court"
	FieldJudges        = "judges"
	FieldJudgmentDate  = "judgment_date"
	FieldCitations     = "citations"
	FieldSubjectMatter = "subject_matter"
)

// outputFields is every stored property except the vector itself.
var outputFields = []string{
	FieldText, FieldFilename, FieldFilepath, FieldSource, FieldYear,
	FieldChunkIndex, FieldCaseName, FieldCaseNumber, FieldCourt,
	FieldJudges, FieldJudgmentDate, FieldCitations, FieldSubjectMatter,
}

// MilvusStore adapts the Milvus client to the VectorStore interface for
// legal document chunks. List-valued metadata (judges, citations, subject
// matter) is stored JSON-encoded in VarChar columns; records whose lists
// fail to decode come back with empty lists, never an error.
//
// The collection index uses the COSINE metric. Milvus reports cosine
// similarity (higher is better); the adapter converts each score to a
// distance of 1 - score so smaller always means more similar, matching
// the contract hits are consumed under.
type MilvusStore struct {
	log        *logger.Logger
	client     client.Client
	collection string
	dim        int
}

// NewMilvusStore creates a MilvusStore bound to a collection.
func NewMilvusStore(milvusClient *milvus.MilvusClient, log *logger.Logger) (*MilvusStore, error) {
	if milvusClient == nil || milvusClient.Client == nil {
		return nil, fmt.Errorf("milvus client is not initialized")
	}
	return &MilvusStore{
		log:        log,
		client:     milvusClient.Client,
		collection: milvusClient.Config.Collection,
		dim:        milvusClient.Config.Dim,
	}, nil
}

// EnsureCollection creates and indexes the collection when absent, then
// loads it for querying.
func (s *MilvusStore) EnsureCollection(ctx context.Context) error {
	exists, err := s.client.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if !exists {
		collSchema := entity.NewSchema().
			WithName(s.collection).
			WithDescription("Chunked legal case documents with extracted case metadata").
			WithField(entity.NewField().WithName(FieldID).WithDataType(entity.FieldTypeVarChar).WithMaxLength(64).WithIsPrimaryKey(true)).
			WithField(entity.NewField().WithName(FieldEmbedding).WithDataType(entity.FieldTypeFloatVector).WithDim(int64(s.dim))).
			WithField(entity.NewField().WithName(FieldText).WithDataType(entity.FieldTypeVarChar).WithMaxLength(65535)).
			WithField(entity.NewField().WithName(FieldFilename).WithDataType(entity.FieldTypeVarChar).WithMaxLength(1024)).
			WithField(entity.NewField().WithName(FieldFilepath).WithDataType(entity.FieldTypeVarChar).WithMaxLength(2048)).
			WithField(entity.NewField().WithName(FieldSource).WithDataType(entity.FieldTypeVarChar).WithMaxLength(256)).
			WithField(entity.NewField().WithName(FieldYear).WithDataType(entity.FieldTypeVarChar).WithMaxLength(16)).
			WithField(entity.NewField().WithName(FieldChunkIndex).WithDataType(entity.FieldTypeInt64)).
			WithField(entity.NewField().WithName(FieldCaseName).WithDataType(entity.FieldTypeVarChar).WithMaxLength(1024)).
			WithField(entity.NewField().WithName(FieldCaseNumber).WithDataType(entity.FieldTypeVarChar).WithMaxLength(256)).
			WithField(entity.NewField().WithName(FieldCourt).WithDataType(entity.FieldTypeVarChar).WithMaxLength(512)).
			WithField(entity.NewField().WithName(FieldJudges).WithDataType(entity.FieldTypeVarChar).WithMaxLength(2048)).
			WithField(entity.NewField().WithName(FieldJudgmentDate).WithDataType(entity.FieldTypeVarChar).WithMaxLength(128)).
			WithField(entity.NewField().WithName(FieldCitations).WithDataType(entity.FieldTypeVarChar).WithMaxLength(2048)).
			WithField(entity.NewField().WithName(FieldSubjectMatter).WithDataType(entity.FieldTypeVarChar).WithMaxLength(1024))

		if err := s.client.CreateCollection(ctx, collSchema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("failed to create collection '%s': %w", s.collection, err)
		}

		idx, err := entity.NewIndexIvfFlat(entity.COSINE, 128)
		if err != nil {
			return fmt.Errorf("failed to build index: %w", err)
		}
		if err := s.client.CreateIndex(ctx, s.collection, FieldEmbedding, idx, false); err != nil {
			return fmt.Errorf("failed to create index on '%s': %w", FieldEmbedding, err)
		}
		s.log.Info(fmt.Sprintf("Created collection: %s", s.collection))
	}

	if err := s.client.LoadCollection(ctx, s.collection, false); err != nil {
		return fmt.Errorf("failed to load collection '%s': %w", s.collection, err)
	}
	return nil
}

// Drop removes the collection entirely. Used by the reset command.
func (s *MilvusStore) Drop(ctx context.Context) error {
	exists, err := s.client.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}
	if !exists {
		return nil
	}
	if err := s.client.DropCollection(ctx, s.collection); err != nil {
		return fmt.Errorf("failed to drop collection '%s': %w", s.collection, err)
	}
	s.log.Info(fmt.Sprintf("Dropped collection: %s", s.collection))
	return nil
}

// Insert stores one chunk record with its embedding.
func (s *MilvusStore) Insert(ctx context.Context, record schema.ChunkRecord, vector []float32) error {
	cols := []entity.Column{
		entity.NewColumnVarChar(FieldID, []string{uuid.New().String()}),
		entity.NewColumnFloatVector(FieldEmbedding, len(vector), [][]float32{vector}),
		entity.NewColumnVarChar(FieldText, []string{record.Text}),
		entity.NewColumnVarChar(FieldFilename, []string{record.Filename}),
		entity.NewColumnVarChar(FieldFilepath, []string{record.Filepath}),
		entity.NewColumnVarChar(FieldSource, []string{record.Source}),
		entity.NewColumnVarChar(FieldYear, []string{record.Year}),
		entity.NewColumnInt64(FieldChunkIndex, []int64{int64(record.ChunkIndex)}),
		entity.NewColumnVarChar(FieldCaseName, []string{record.CaseName}),
		entity.NewColumnVarChar(FieldCaseNumber, []string{record.CaseNumber}),
		entity.NewColumnVarChar(FieldCourt, []string{record.Court}),
		entity.NewColumnVarChar(FieldJudges, []string{encodeList(record.Judges)}),
		entity.NewColumnVarChar(FieldJudgmentDate, []string{record.JudgmentDate}),
		entity.NewColumnVarChar(FieldCitations, []string{encodeList(record.Citations)}),
		entity.NewColumnVarChar(FieldSubjectMatter, []string{encodeList(record.SubjectMatter)}),
	}

	if _, err := s.client.Insert(ctx, s.collection, "", cols...); err != nil {
		return fmt.Errorf("failed to insert chunk into Milvus: %w", err)
	}
	return nil
}

// NearVector performs a similarity search and returns hits in the order
// Milvus ranks them, best similarity first.
func (s *MilvusStore) NearVector(ctx context.Context, vector []float32, limit int) ([]schema.SearchHit, error) {
	sp, err := entity.NewIndexIvfFlatSearchParam(10)
	if err != nil {
		return nil, fmt.Errorf("failed to build search params: %w", err)
	}

	results, err := s.client.Search(
		ctx, s.collection, nil, "", outputFields,
		[]entity.Vector{entity.FloatVector(vector)},
		FieldEmbedding, entity.COSINE, limit, sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search in Milvus: %w", err)
	}

	var hits []schema.SearchHit
	for _, res := range results {
		fields := newFieldReader(res.Fields)
		for i := 0; i < res.ResultCount; i++ {
			record := schema.ChunkRecord{
				Text:          fields.str(FieldText, i),
				Filename:      fields.str(FieldFilename, i),
				Filepath:      fields.str(FieldFilepath, i),
				Source:        fields.str(FieldSource, i),
				Year:          fields.str(FieldYear, i),
				ChunkIndex:    fields.intVal(FieldChunkIndex, i),
				CaseName:      fields.str(FieldCaseName, i),
				CaseNumber:    fields.str(FieldCaseNumber, i),
				Court:         fields.str(FieldCourt, i),
				Judges:        decodeList(fields.str(FieldJudges, i)),
				JudgmentDate:  fields.str(FieldJudgmentDate, i),
				Citations:     decodeList(fields.str(FieldCitations, i)),
				SubjectMatter: decodeList(fields.str(FieldSubjectMatter, i)),
			}
			hits = append(hits, schema.SearchHit{
				Record: record,
				// COSINE scores are similarities; convert to a distance
				// so smaller always means more similar.
				Distance: 1 - float64(res.Scores[i]),
			})
		}
	}
	return hits, nil
}

// DeleteByFilename removes every chunk belonging to a document and
// reports how many were deleted.
func (s *MilvusStore) DeleteByFilename(ctx context.Context, filename string) (int, error) {
	expr := filenameExpr(filename)

	rs, err := s.client.Query(ctx, s.collection, nil, expr, []string{FieldID})
	if err != nil {
		return 0, fmt.Errorf("failed to query chunks for '%s': %w", filename, err)
	}
	count := 0
	for _, col := range rs {
		if col.Name() == FieldID {
			count = col.Len()
		}
	}
	if count == 0 {
		return 0, nil
	}

	if err := s.client.Delete(ctx, s.collection, "", expr); err != nil {
		return 0, fmt.Errorf("failed to delete chunks for '%s': %w", filename, err)
	}
	s.log.Info(fmt.Sprintf("Deleted %d chunks for file: %s", count, filename))
	return count, nil
}

// ListFilenames returns the distinct document filenames in the store,
// sorted for stable output.
func (s *MilvusStore) ListFilenames(ctx context.Context) ([]string, error) {
	rs, err := s.client.Query(ctx, s.collection, nil,
		fmt.Sprintf("%s >= 0", FieldChunkIndex), []string{FieldFilename},
		client.WithLimit(10000))
	if err != nil {
		return nil, fmt.Errorf("failed to list filenames: %w", err)
	}

	seen := make(map[string]bool)
	var filenames []string
	for _, col := range rs {
		vc, ok := col.(*entity.ColumnVarChar)
		if !ok || vc.Name() != FieldFilename {
			continue
		}
		for _, name := range vc.Data() {
			if name != "" && !seen[name] {
				seen[name] = true
				filenames = append(filenames, name)
			}
		}
	}
	sort.Strings(filenames)
	return filenames, nil
}

// Count returns the total number of stored chunks.
func (s *MilvusStore) Count(ctx context.Context) (int64, error) {
	stats, err := s.client.GetCollectionStatistics(ctx, s.collection)
	if err != nil {
		return 0, fmt.Errorf("failed to get collection statistics: %w", err)
	}
	n, err := strconv.ParseInt(stats["row_count"], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("unexpected row_count %q: %w", stats["row_count"], err)
	}
	return n, nil
}

// fieldReader indexes search result columns by name.
type fieldReader struct {
	cols map[string]entity.Column
}

func newFieldReader(cols []entity.Column) *fieldReader {
	m := make(map[string]entity.Column, len(cols))
	for _, c := range cols {
		m[c.Name()] = c
	}
	return &fieldReader{cols: m}
}

// str reads a VarChar cell, defaulting to "" when the column is missing
// or has an unexpected type.
func (r *fieldReader) str(name string, i int) string {
	col, ok := r.cols[name].(*entity.ColumnVarChar)
	if !ok {
		return ""
	}
	data := col.Data()
	if i >= len(data) {
		return ""
	}
	return data[i]
}

// intVal reads an Int64 cell, defaulting to 0.
func (r *fieldReader) intVal(name string, i int) int {
	col, ok := r.cols[name].(*entity.ColumnInt64)
	if !ok {
		return 0
	}
	data := col.Data()
	if i >= len(data) {
		return 0
	}
	return int(data[i])
}

// encodeList stores a string list as JSON in a VarChar column.
func encodeList(values []string) string {
	if len(values) == 0 {
		return "[]"
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// decodeList restores a JSON-encoded string list, defaulting to empty on
// malformed data.
func decodeList(encoded string) []string {
	if encoded == "" {
		return []string{}
	}
	var values []string
	if err := json.Unmarshal([]byte(encoded), &values); err != nil {
		return []string{}
	}
	return values
}

// filenameExpr builds an equality filter expression on the filename field.
func filenameExpr(filename string) string {
	escaped := strings.ReplaceAll(filename, `"`, `\"`)
	return fmt.Sprintf(`%s == "%s"`, FieldFilename, escaped)
}

// compile-time check to ensure MilvusStore implements the VectorStore interface
var _ interfaces.VectorStore = (*MilvusStore)(nil)
