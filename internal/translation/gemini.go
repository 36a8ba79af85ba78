package translation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"tradepost/internal/middleware"
	"tradepost/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model name is configured.
const DefaultGeminiModel = "gemini-2.0-flash-001"

type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiProvider translates through the Gemini generative API.
type GeminiProvider struct {
	client  *genai.Client
	model   generator
	timeout time.Duration
}

// NewGeminiProvider dials Gemini with apiKey. Close releases the client.
func NewGeminiProvider(ctx context.Context, apiKey, modelName string, timeout time.Duration) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini: %w", err)
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)
	model.ResponseMIMEType = "text/plain"

	return &GeminiProvider{client: client, model: model, timeout: timeout}, nil
}

func (g *GeminiProvider) Name() string { return "gemini" }

// Close releases the underlying client.
func (g *GeminiProvider) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func languageLabel(tag string) string {
	if name, ok := models.SupportedLanguages[tag]; ok {
		return fmt.Sprintf("%s (%s)", name, tag)
	}
	return tag
}

func translationPrompt(text, source, target string) string {
	return fmt.Sprintf(`Translate the chat message below from %s to %s.
Reply with the translated message only, without quotes or explanations.

%s`, languageLabel(source), languageLabel(target), text)
}

func (g *GeminiProvider) Translate(ctx context.Context, text, source, target string) (string, bool) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	resp, err := g.model.GenerateContent(ctx, genai.Text(translationPrompt(text, source, target)))
	if err != nil {
		middleware.Logger.DebugContext(ctx, "gemini translation failed",
			slog.String("source", source),
			slog.String("target", target),
			slog.String("error", err.Error()),
		)
		return "", false
	}

	out := firstText(resp)
	if out == "" {
		middleware.Logger.DebugContext(ctx, "gemini returned no text", slog.String("target", target))
		return "", false
	}
	return out, true
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	content := resp.Candidates[0].Content
	if content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range content.Parts {
		if t, ok := part.(genai.Text); ok {
			b.WriteString(string(t))
		}
	}
	return strings.TrimSpace(b.String())
}
