package llmprovider

import (
	"fmt"

	"github.com/janhq/support-api/internal/config"
	"github.com/janhq/support-api/internal/domain/llm"
)

// New returns the completion provider selected by LLM_PROVIDER.
func New(cfg *config.Config) (llm.Provider, error) {
	switch cfg.LLMProvider {
	case "ollama":
		return NewOllamaClient(cfg.LLMBaseURL, cfg.LLMModel, cfg.LLMTimeout), nil
	case "openai":
		return NewOpenAIClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout), nil
	default:
		return nil, fmt.Errorf("unsupported llm provider %q", cfg.LLMProvider)
	}
}
