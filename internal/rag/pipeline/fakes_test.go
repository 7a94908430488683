package pipeline

import (
	"context"
	"fmt"
	"strings"

	"lexrag/internal/rag/interfaces"
	"lexrag/internal/rag/schema"
)

// fakeEmbedder returns a fixed vector, or fails for texts containing a
// trigger substring.
type fakeEmbedder struct {
	failOn string
	calls  int
}

func (f *fakeEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	f.calls++
	if f.failOn != "" && strings.Contains(text, f.failOn) {
		return nil, fmt.Errorf("embedding rejected")
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

// fakeStore records inserts and replays canned search hits.
type fakeStore struct {
	inserted []schema.ChunkRecord
	hits     []schema.SearchHit
	insertErr error
}

func (f *fakeStore) Insert(_ context.Context, record schema.ChunkRecord, _ []float32) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, record)
	return nil
}

func (f *fakeStore) NearVector(_ context.Context, _ []float32, limit int) ([]schema.SearchHit, error) {
	if limit < len(f.hits) {
		return f.hits[:limit], nil
	}
	return f.hits, nil
}

func (f *fakeStore) DeleteByFilename(_ context.Context, filename string) (int, error) {
	n := 0
	kept := f.inserted[:0]
	for _, r := range f.inserted {
		if r.Filename == filename {
			n++
			continue
		}
		kept = append(kept, r)
	}
	f.inserted = kept
	return n, nil
}

func (f *fakeStore) ListFilenames(_ context.Context) ([]string, error) {
	seen := map[string]bool{}
	var names []string
	for _, r := range f.inserted {
		if !seen[r.Filename] {
			seen[r.Filename] = true
			names = append(names, r.Filename)
		}
	}
	return names, nil
}

func (f *fakeStore) Count(_ context.Context) (int64, error) {
	return int64(len(f.inserted)), nil
}

// fakeLLM captures the prompt and messages it was handed and returns a
// canned answer.
type fakeLLM struct {
	answer     string
	gotSystem  string
	gotMessages []interfaces.ChatMessage
}

func (f *fakeLLM) Complete(_ context.Context, systemPrompt string, messages []interfaces.ChatMessage) (string, error) {
	f.gotSystem = systemPrompt
	f.gotMessages = messages
	return f.answer, nil
}

func hit(filename string, chunkIndex int, distance float64) schema.SearchHit {
	return schema.SearchHit{
		Record: schema.ChunkRecord{
			Text:       fmt.Sprintf("chunk %d of %s", chunkIndex, filename),
			Filename:   filename,
			Filepath:   "/data/" + filename,
			ChunkIndex: chunkIndex,
			CaseName:   "State vs Rahman",
		},
		Distance: distance,
	}
}
