package translation

import (
	"context"
	"fmt"

	"tradepost/internal/config"
)

// FromConfig builds the default chain: the configured external provider
// followed by the built-in dictionary. The returned closer releases the
// external client.
func FromConfig(ctx context.Context, cfg *config.Config) (*Translator, func() error, error) {
	noop := func() error { return nil }

	switch cfg.TranslationProvider {
	case config.TranslationProviderGemini:
		gemini, err := NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.TranslationTimeout)
		if err != nil {
			return nil, noop, err
		}
		return New(gemini, NewDictionary()), gemini.Close, nil
	case config.TranslationProviderNone, "":
		return New(NoopProvider{}, NewDictionary()), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown translation provider %q", cfg.TranslationProvider)
	}
}
