// Package translation renders chat messages into the reader's language.
//
// A Translator asks an ordered chain of providers for a translation and falls
// back to a visible placeholder, so callers always get displayable text and
// never an error.
package translation

import (
	"context"
	"fmt"
	"strings"

	"tradepost/internal/models"
	"tradepost/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

// Provider names reported in Result.Provider.
const (
	ProviderIdentity    = "identity"
	ProviderPlaceholder = "placeholder"
)

// Result is the outcome of a translation request.
type Result struct {
	Original       string `json:"original"`
	Translated     string `json:"translated"`
	SourceLanguage string `json:"source_language"`
	TargetLanguage string `json:"target_language"`
	Provider       string `json:"provider"`
}

// Provider is one translation source. ok=false means "no answer"; failures
// are handled inside the provider and never returned.
type Provider interface {
	Name() string
	Translate(ctx context.Context, text, source, target string) (string, bool)
}

// Translator runs providers in order until one answers.
type Translator struct {
	providers []Provider
}

// New returns a Translator consulting providers in the given order.
func New(providers ...Provider) *Translator {
	chain := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			chain = append(chain, p)
		}
	}
	return &Translator{providers: chain}
}

// NormalizeLanguage trims and lowercases a tag; empty becomes the default language.
func NormalizeLanguage(tag string) string {
	tag = strings.ToLower(strings.TrimSpace(tag))
	if tag == "" {
		return models.DefaultLanguage
	}
	return tag
}

// Placeholder is the text shown when no provider could translate.
func Placeholder(text, target string) string {
	return fmt.Sprintf("[translation unavailable → %s] %s", target, text)
}

// Translate converts text from source to target language.
func (t *Translator) Translate(ctx context.Context, text, source, target string) Result {
	source = NormalizeLanguage(source)
	target = NormalizeLanguage(target)

	res := Result{
		Original:       text,
		SourceLanguage: source,
		TargetLanguage: target,
	}

	if source == target {
		res.Translated = text
		res.Provider = ProviderIdentity
		observability.TranslationResults.WithLabelValues(res.Provider).Inc()
		return res
	}

	for _, p := range t.providers {
		if out, ok := attempt(ctx, p, text, source, target); ok {
			res.Translated = out
			res.Provider = p.Name()
			observability.TranslationResults.WithLabelValues(res.Provider).Inc()
			return res
		}
	}

	res.Translated = Placeholder(text, target)
	res.Provider = ProviderPlaceholder
	observability.TranslationResults.WithLabelValues(res.Provider).Inc()
	return res
}

func attempt(ctx context.Context, p Provider, text, source, target string) (string, bool) {
	span, ctx := observability.NewSpan(ctx, "translation."+p.Name(),
		attribute.String("translation.source", source),
		attribute.String("translation.target", target),
	)
	defer span.End()

	out, ok := p.Translate(ctx, text, source, target)
	if !ok || out == "" {
		observability.TranslationProviderFailures.WithLabelValues(p.Name()).Inc()
		span.AddAttributes(attribute.Bool("translation.hit", false))
		return "", false
	}
	span.AddAttributes(attribute.Bool("translation.hit", true))
	return out, true
}

// NoopProvider never answers. It stands in for the external service when none
// is configured.
type NoopProvider struct{}

func (NoopProvider) Name() string { return "none" }

func (NoopProvider) Translate(context.Context, string, string, string) (string, bool) {
	return "", false
}
