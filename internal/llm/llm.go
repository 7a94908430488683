package llm

import (
	"fmt"

	"lexrag/internal/config"
	"lexrag/internal/rag/interfaces"
)

// NewClient is a factory that builds the chat-completion provider
// selected in the configuration. A missing API key is not an error here;
// the caller decides whether answer composition is optional.
func NewClient(cfg config.LLMConfig) (interfaces.LLM, error) {
	switch cfg.Provider {
	case "openai", "":
		return NewOpenAIClient(cfg.OpenAI)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
