package schema

// Document is a source document as produced by a loader, before chunking.
// Identity is the filename; uniqueness is enforced by the vector store on
// re-ingestion, not here.
type Document struct {
	ID       string
	Filename string
	Filepath string
	Text     string
	Source   string // source label, e.g. "SCOB 2015" or "User Upload"
	Year     string
}

// Chunk is a bounded, overlapping substring of a document's text. It is
// the unit of embedding and retrieval. Index is the zero-based position of
// the chunk within its document and is what citations display as
// "filename:chunk_<index>".
type Chunk struct {
	DocumentID  string
	Index       int
	Text        string
	StartOffset int
}

// ExtractedMetadata holds the structured case attributes derived from a
// document's text. Every field is best-effort; a zero value means the
// extractor found nothing, never that something was fabricated.
type ExtractedMetadata struct {
	CaseName      string   `json:"case_name"`
	CaseNumber    string   `json:"case_number"`
	Court         string   `json:"court"`
	Judges        []string `json:"judges"`
	JudgmentDate  string   `json:"judgment_date"`
	Citations     []string `json:"citations"`
	SubjectMatter []string `json:"subject_matter"`
}

// ChunkRecord is the flattened unit stored alongside a vector: the chunk
// text plus document and case metadata, one field per store column.
type ChunkRecord struct {
	Text          string   `json:"text"`
	Filename      string   `json:"filename"`
	Filepath      string   `json:"filepath"`
	Source        string   `json:"source"`
	Year          string   `json:"year"`
	ChunkIndex    int      `json:"chunk_index"`
	CaseName      string   `json:"case_name"`
	CaseNumber    string   `json:"case_number"`
	Court         string   `json:"court"`
	Judges        []string `json:"judges"`
	JudgmentDate  string   `json:"judgment_date"`
	Citations     []string `json:"citations"`
	SubjectMatter []string `json:"subject_matter"`
}

// SearchHit is a raw similarity result from the vector store. Distance is
// the store's metric where smaller means more similar (cosine-derived,
// typically in [0, 2]).
type SearchHit struct {
	Record   ChunkRecord
	Distance float64
}

// RankedResult augments a SearchHit with its relevance score. The score is
// 1 - distance and is deliberately not clamped: values outside [0, 1]
// signal low-confidence hits, not errors.
type RankedResult struct {
	ChunkRecord
	RelevanceScore float64 `json:"relevance_score"`
}

// SourceCitation ties a ranked result back to its originating document and
// chunk position. Ordinal is the 1-based rank among returned hits and
// SourceLocation renders as "<filename>:chunk_<chunk_index>".
type SourceCitation struct {
	Ordinal        int     `json:"id" bson:"id"`
	Filename       string  `json:"filename" bson:"filename"`
	Filepath       string  `json:"filepath" bson:"filepath"`
	ChunkIndex     int     `json:"chunk_index" bson:"chunk_index"`
	CaseName       string  `json:"case_name,omitempty" bson:"case_name,omitempty"`
	RelevanceScore float64 `json:"relevance_score" bson:"relevance_score"`
	SourceLocation string  `json:"source_location" bson:"source_location"`
}
