package loaders

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"lexrag/internal/rag/interfaces"
	"lexrag/internal/rag/schema"
)

// TxtLoader implements the Loader interface for plain text files.
type TxtLoader struct{}

// NewTxtLoader creates a new TxtLoader.
func NewTxtLoader() *TxtLoader {
	return &TxtLoader{}
}

// Load reads a text file and returns it as a single Document.
func (l *TxtLoader) Load(ctx context.Context, path string) (*schema.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return &schema.Document{
		ID:       uuid.New().String(),
		Filename: filepath.Base(path),
		Filepath: path,
		Text:     string(content),
	}, nil
}

// compile-time check to ensure TxtLoader implements the Loader interface
var _ interfaces.Loader = (*TxtLoader)(nil)
