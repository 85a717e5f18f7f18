package pipeline

import (
	"fmt"

	"github.com/dgallion1/wikiqa/internal/config"
	"github.com/dgallion1/wikiqa/internal/extract"
)

// NewCompleter builds the completion client selected by cfg.LLMBackend.
func NewCompleter(cfg config.Config) (extract.Completer, error) {
	switch cfg.LLMBackend {
	case config.BackendOpenAI:
		return extract.NewOpenAIClient(extract.OpenAIConfig{
			BaseURL:       cfg.ClientURL,
			APIKey:        cfg.OpenAIAPIKey,
			Model:         cfg.LLMModel,
			ContextWindow: cfg.ContextWindow,
			Structured:    cfg.StructuredOutput,
		})
	case config.BackendAnthropic:
		return extract.NewClaudeClient(cfg.AnthropicAPIKey, cfg.AnthropicModel,
			extract.WithClaudeContextWindow(cfg.ContextWindow)), nil
	default:
		return nil, fmt.Errorf("unknown llm backend %q", cfg.LLMBackend)
	}
}
