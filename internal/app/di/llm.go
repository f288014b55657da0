package di

import (
	"context"
	"fmt"

	"github.com/Kaligetsagency/aifx/internal/feature/analysis/adapters/gemini"
	"github.com/Kaligetsagency/aifx/internal/feature/analysis/adapters/openai"
	"github.com/Kaligetsagency/aifx/internal/feature/analysis/usecase"
	"github.com/Kaligetsagency/aifx/internal/platform/config"
	infrahttp "github.com/Kaligetsagency/aifx/internal/platform/http"
)

// NewCompletionClient creates the completion client selected by llm.provider.
func NewCompletionClient(ctx context.Context, cfg config.LLMConfig) (usecase.CompletionClient, error) {
	temperature := float32(cfg.Temperature)
	switch cfg.Provider {
	case "gemini":
		c, err := gemini.NewGeminiClient(ctx, gemini.Config{
			APIKey:      cfg.APIKey,
			Model:       cfg.Model,
			BaseURL:     cfg.BaseURL,
			Timeout:     cfg.Timeout,
			Temperature: &temperature,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case "openai":
		return openai.NewChatClient(openai.Config{
			APIKey:      cfg.APIKey,
			BaseURL:     cfg.BaseURL,
			Model:       cfg.Model,
			Temperature: &temperature,
		}, infrahttp.NewHTTPClient(cfg.Timeout)), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}
