package chat

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"lexrag/internal/rag/schema"
)

func sampleSession() *Session {
	s := NewSession("s1", "Writ petition research")
	s.CreatedAt = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	s.UpdatedAt = time.Date(2024, 3, 1, 10, 5, 0, 0, time.UTC)
	s.Meta = SessionMeta{Topic: "Writ", QuestionCount: 1, DocumentCount: 2}
	s.Messages = []Message{
		{
			Role:      RoleUser,
			Content:   "what is the scope of article 102?",
			Sources:   []schema.SourceCitation{},
			Timestamp: time.Date(2024, 3, 1, 10, 1, 0, 0, time.UTC),
		},
		{
			Role:    RoleAssistant,
			Content: "Article 102 empowers the High Court Division...",
			Sources: []schema.SourceCitation{
				{Ordinal: 1, Filename: "scob_12.pdf", ChunkIndex: 4, RelevanceScore: 0.82, SourceLocation: "scob_12.pdf:chunk_4"},
			},
			Timestamp: time.Date(2024, 3, 1, 10, 2, 0, 0, time.UTC),
		},
	}
	return s
}

func TestRecordRoundTrip(t *testing.T) {
	original := sampleSession()
	restored := SessionFromRecord(original.Record())

	if restored.ID != original.ID || restored.Title != original.Title {
		t.Errorf("identity changed: %q/%q", restored.ID, restored.Title)
	}
	if !restored.CreatedAt.Equal(original.CreatedAt) || !restored.UpdatedAt.Equal(original.UpdatedAt) {
		t.Errorf("timestamps changed: %v / %v", restored.CreatedAt, restored.UpdatedAt)
	}
	if restored.Meta != original.Meta {
		t.Errorf("metadata changed: %+v", restored.Meta)
	}
	if len(restored.Messages) != len(original.Messages) {
		t.Fatalf("message count = %d, want %d", len(restored.Messages), len(original.Messages))
	}
	for i := range restored.Messages {
		if restored.Messages[i].Role != original.Messages[i].Role {
			t.Errorf("message %d role = %q", i, restored.Messages[i].Role)
		}
		if restored.Messages[i].Content != original.Messages[i].Content {
			t.Errorf("message %d content changed", i)
		}
	}
	sources := restored.Messages[1].Sources
	if len(sources) != 1 || sources[0].SourceLocation != "scob_12.pdf:chunk_4" {
		t.Errorf("assistant sources lost: %+v", sources)
	}
}

func TestRecordTimestampFormat(t *testing.T) {
	rec := sampleSession().Record()
	if _, err := time.Parse(time.RFC3339, rec.CreatedAt); err != nil {
		t.Errorf("created_at is not RFC3339: %q", rec.CreatedAt)
	}
	if _, err := time.Parse(time.RFC3339, rec.Messages[0].Timestamp); err != nil {
		t.Errorf("message timestamp is not RFC3339: %q", rec.Messages[0].Timestamp)
	}
}

func TestSessionFromRecordBadTimestamp(t *testing.T) {
	rec := sampleSession().Record()
	rec.CreatedAt = "not a timestamp"

	restored := SessionFromRecord(rec)
	if restored.CreatedAt.IsZero() {
		t.Error("bad timestamp produced a zero time instead of a fallback")
	}
}

func TestSaveAndLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	original := sampleSession()

	if err := original.SaveFile(path); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}
	restored, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if restored.ID != original.ID || len(restored.Messages) != 2 {
		t.Errorf("restored session %q with %d messages", restored.ID, len(restored.Messages))
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("expected an error for a missing file")
	}
}

func TestLoadFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(path); err == nil {
		t.Error("expected an error for malformed JSON")
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleUser, RoleAssistant, RoleSystem} {
		if !r.Valid() {
			t.Errorf("%q reported invalid", r)
		}
	}
	if Role("moderator").Valid() {
		t.Error("unknown role reported valid")
	}
}
