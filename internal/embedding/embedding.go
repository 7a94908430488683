package embedding

import (
	"fmt"

	"lexrag/internal/config"
	"lexrag/internal/rag/interfaces"
)

// NewClient is a factory that builds the embedding provider selected in
// the configuration.
func NewClient(cfg config.EmbeddingConfig) (interfaces.EmbeddingModel, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIModel(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Provider)
	}
}
