package loaders

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"lexrag/internal/rag/interfaces"
	"lexrag/internal/rag/schema"
)

// ForPath picks a loader by file extension, defaulting to plain text.
func ForPath(path string) interfaces.Loader {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return NewPdfLoader()
	default:
		return NewTxtLoader()
	}
}

// LoadDirectory loads every PDF in a directory, labelling each document
// with the given source and year. Files that fail to load are skipped;
// their paths are returned so the caller can report them.
func LoadDirectory(ctx context.Context, dir, source, year string) ([]*schema.Document, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, err
	}

	var docs []*schema.Document
	var failed []string
	loader := NewPdfLoader()
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		doc, err := loader.Load(ctx, path)
		if err != nil {
			failed = append(failed, path)
			continue
		}
		doc.Source = source
		doc.Year = year
		docs = append(docs, doc)
	}
	return docs, failed, nil
}
