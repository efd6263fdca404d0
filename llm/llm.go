// Package llm generates portfolio critiques and rewrites with a hosted
// language model.
package llm

import (
	"context"
	"fmt"

	"github.com/use-agent/folio/config"
)

// Providers accepted by config.LLMConfig.Provider.
const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Generator produces text for a single prompt. Implementations return
// *models.ScrapeError values with the LLM_* codes.
type Generator interface {
	Generate(ctx context.Context, prompt string, maxTokens int) (string, error)
	Close() error
}

// New builds the Generator selected by cfg.Provider.
func New(ctx context.Context, cfg config.LLMConfig) (Generator, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("llm: no API key configured")
	}
	switch cfg.Provider {
	case ProviderOpenAI, "":
		return NewOpenAI(cfg, nil), nil
	case ProviderGemini:
		return NewGemini(ctx, cfg)
	default:
		return nil, fmt.Errorf("llm: unknown provider %q", cfg.Provider)
	}
}
