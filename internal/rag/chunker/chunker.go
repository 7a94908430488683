package chunker

import (
	"strings"
	"unicode"

	"lexrag/internal/rag/schema"
)

// Chunker splits long legal text into overlapping chunks sized for
// independent embedding and retrieval. Splitting prefers legal structure
// over hard cuts: paragraph breaks first, then numbered section or
// sub-section markers, then sentence boundaries.
//
// Chunker holds no state; it is safe for concurrent use on independent
// inputs. Overlap must stay below Size or the window cannot advance.
type Chunker struct {
	Size         int
	Overlap      int
	MinChunkSize int
}

// New creates a Chunker with the given window parameters.
func New(size, overlap, minChunkSize int) *Chunker {
	return &Chunker{
		Size:         size,
		Overlap:      overlap,
		MinChunkSize: minChunkSize,
	}
}

// span is a kept window before being wrapped into a schema.Chunk.
type span struct {
	offset int
	text   string
}

// Split chunks a document's text and returns the ordered chunk sequence.
// Chunk indices are zero-based positions among the kept chunks, which is
// what citations later render as "filename:chunk_<index>".
func (c *Chunker) Split(documentID, text string) []schema.Chunk {
	spans := splitSpans(text, c.Size, c.Overlap, c.MinChunkSize)
	chunks := make([]schema.Chunk, 0, len(spans))
	for i, s := range spans {
		chunks = append(chunks, schema.Chunk{
			DocumentID:  documentID,
			Index:       i,
			Text:        s.text,
			StartOffset: s.offset,
		})
	}
	return chunks
}

// SplitText is the pure form of Split, returning only the chunk texts.
func SplitText(text string, size, overlap, minChunkSize int) []string {
	spans := splitSpans(text, size, overlap, minChunkSize)
	out := make([]string, 0, len(spans))
	for _, s := range spans {
		out = append(out, s.text)
	}
	return out
}

// splitSpans advances a window of length size over the text. When the
// window's right edge is not the end of the text, it searches backward for
// the best break point: a paragraph break, the start of a bracketed
// numbered section or parenthesized sub-section marker, or a sentence
// boundary. A candidate offset is only valid beyond 0.4*size, which keeps
// premature breaks from producing pathologically short chunks and also
// keeps the window moving forward. Among valid candidates the largest
// offset wins; with none, the window is cut hard at size.
//
// Each span is trimmed of surrounding whitespace and kept only when the
// trimmed length reaches minChunkSize. Short leading or trailing fragments
// below that threshold are silently dropped; that loss is intentional.
func splitSpans(text string, size, overlap, minChunkSize int) []span {
	var spans []span
	length := len(text)
	start := 0

	for start < length {
		// end may overrun the text; the overrun value still drives the
		// next window's start so the tail is not re-emitted.
		end := start + size
		limit := end
		if limit > length {
			limit = length
		}
		window := text[start:limit]

		if end < length {
			paragraph := strings.LastIndex(window, "\n\n")
			candidates := []int{
				paragraph,
				strings.LastIndex(window, "\n["), // numbered section like [23]
				strings.LastIndex(window, "\n("), // sub-section like (a)
				strings.LastIndex(window, ". "),
				strings.LastIndex(window, ".\n"),
			}

			best := -1
			for _, b := range candidates {
				if float64(b) > 0.4*float64(size) && b > best {
					best = b
				}
			}

			if best >= 0 {
				if best == paragraph {
					// keep both newline characters inside the chunk
					end = start + best + 2
				} else {
					end = start + best + 1
				}
				window = text[start:end]
			}
		}

		trimmed := strings.TrimSpace(window)
		if len(trimmed) >= minChunkSize {
			lead := len(window) - len(strings.TrimLeftFunc(window, unicode.IsSpace))
			spans = append(spans, span{offset: start + lead, text: trimmed})
		}

		start = end - overlap
	}

	return spans
}
