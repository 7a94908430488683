package loaders

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/ledongthuc/pdf"

	"lexrag/internal/rag/interfaces"
	"lexrag/internal/rag/schema"
)

// PdfLoader implements the Loader interface for legal case PDFs. It
// extracts plain text page by page; pages that yield no text are skipped
// rather than failing the document.
type PdfLoader struct{}

// NewPdfLoader creates a new PdfLoader.
func NewPdfLoader() *PdfLoader {
	return &PdfLoader{}
}

// Load reads a PDF file and returns a single Document whose text carries
// "--- Page N ---" markers between pages, preserving page attribution
// through chunking.
func (l *PdfLoader) Load(ctx context.Context, path string) (*schema.Document, error) {
	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf '%s': %w", path, err)
	}
	defer f.Close()

	var sb strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		pageText, err := page.GetPlainText(nil)
		if err != nil || pageText == "" {
			continue
		}
		sb.WriteString(fmt.Sprintf("\n--- Page %d ---\n", i))
		sb.WriteString(pageText)
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("pdf '%s' contains no extractable text", path)
	}

	return &schema.Document{
		ID:       uuid.New().String(),
		Filename: filepath.Base(path),
		Filepath: path,
		Text:     text,
	}, nil
}

// compile-time check to ensure PdfLoader implements the Loader interface
var _ interfaces.Loader = (*PdfLoader)(nil)
