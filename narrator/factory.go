package narrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nathoo/nocturne/config"
)

// FromConfig builds the narrator for the configured provider. The config
// must already be validated.
func FromConfig(ctx context.Context, cfg config.Config, log *zap.Logger) (Narrator, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("provider", cfg.Provider))
	switch cfg.Provider {
	case config.ProviderAzure:
		return NewAzure(cfg.Azure.Endpoint, cfg.Azure.APIKey, cfg.Azure.APIVersion, cfg.Model,
			WithTimeout(cfg.Timeout), WithLogger(log)), nil
	case config.ProviderOpenAI:
		return NewOpenAI(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey, cfg.Model,
			WithTimeout(cfg.Timeout), WithLogger(log)), nil
	case config.ProviderGemini:
		model := cfg.Model
		if model == config.Default().Model {
			model = DefaultGeminiModel
		}
		return NewGemini(ctx, cfg.Gemini.APIKey, GeminiOptions{Model: model, Logger: log})
	}
	return nil, fmt.Errorf("unknown provider %q", cfg.Provider)
}
