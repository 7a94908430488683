package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: "lexrag"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Chunking.Size != 1500 || cfg.Chunking.Overlap != 300 || cfg.Chunking.MinChunkSize != 200 {
		t.Errorf("chunking defaults = %+v", cfg.Chunking)
	}
	if cfg.Chat.TopK != 5 || cfg.Chat.MaxContextMessages != 10 {
		t.Errorf("chat defaults = %+v", cfg.Chat)
	}
	if cfg.LLM.OpenAI.Model != "gpt-4o-mini" {
		t.Errorf("llm model default = %q", cfg.LLM.OpenAI.Model)
	}
	if cfg.Embedding.OpenAI.Model != "text-embedding-3-small" {
		t.Errorf("embedding model default = %q", cfg.Embedding.OpenAI.Model)
	}
	if cfg.Databases.Milvus.Collection != "legal_documents" || cfg.Databases.Milvus.Dim != 1536 {
		t.Errorf("milvus defaults = %+v", cfg.Databases.Milvus)
	}
	if cfg.Server.Address != ":8000" {
		t.Errorf("server address default = %q", cfg.Server.Address)
	}
}

func TestLoadConfigExplicitValues(t *testing.T) {
	path := writeConfig(t, `
chunking:
  size: 800
  overlap: 100
  minChunkSize: 50
chat:
  topK: 8
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Chunking.Size != 800 || cfg.Chunking.Overlap != 100 || cfg.Chunking.MinChunkSize != 50 {
		t.Errorf("chunking = %+v", cfg.Chunking)
	}
	if cfg.Chat.TopK != 8 {
		t.Errorf("topK = %d, want 8", cfg.Chat.TopK)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("MILVUS_ADDRESS", "milvus.internal:19530")

	path := writeConfig(t, `
databases:
  milvus:
    address: "localhost:19530"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.LLM.OpenAI.APIKey != "sk-test" || cfg.Embedding.OpenAI.APIKey != "sk-test" {
		t.Error("OPENAI_API_KEY was not applied to both providers")
	}
	if cfg.Databases.Milvus.Address != "milvus.internal:19530" {
		t.Errorf("milvus address = %q", cfg.Databases.Milvus.Address)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("expected an error for a missing config file")
	}
}

func TestLoadConfigMalformedYaml(t *testing.T) {
	path := writeConfig(t, "chunking: [not a map")
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected an error for malformed yaml")
	}
}
