package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/use-agent/folio/config"
	"github.com/use-agent/folio/models"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// DefaultGeminiModel is used when the configured model is an OpenAI-style
// name the Gemini API would reject.
const DefaultGeminiModel = "gemini-1.5-flash"

// Gemini implements Generator for Google Gemini.
type Gemini struct {
	client      *genai.Client
	model       string
	temperature float32
}

// NewGemini creates a Gemini client authenticated with cfg.APIKey.
func NewGemini(ctx context.Context, cfg config.LLMConfig) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := cfg.Model
	if !strings.HasPrefix(model, "gemini") {
		model = DefaultGeminiModel
	}
	return &Gemini{client: client, model: model, temperature: float32(cfg.Temperature)}, nil
}

// Generate sends prompt with the writer system instruction.
func (g *Gemini) Generate(ctx context.Context, prompt string, maxTokens int) (string, error) {
	model := g.client.GenerativeModel(g.model)
	model.SetTemperature(g.temperature)
	if maxTokens > 0 {
		model.SetMaxOutputTokens(int32(maxTokens))
	}
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(SystemPrompt)}}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", classifyGeminiError(err)
	}
	text, err := textFromResponse(resp)
	if err != nil {
		return "", models.NewScrapeError(models.ErrCodeLLMFailure, err.Error(), nil)
	}
	return strings.TrimSpace(text), nil
}

// Close releases the underlying connection.
func (g *Gemini) Close() error {
	if g.client != nil {
		return g.client.Close()
	}
	return nil
}

func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates in response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no content in response")
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("no text parts in response")
	}
	return strings.Join(parts, ""), nil
}

func classifyGeminiError(err error) *models.ScrapeError {
	switch status.Code(err) {
	case codes.Unauthenticated, codes.PermissionDenied:
		return models.NewScrapeError(models.ErrCodeLLMAuthFailure, "Gemini rejected the API key", err)
	case codes.ResourceExhausted:
		return models.NewScrapeError(models.ErrCodeLLMRateLimited, "Gemini quota exhausted", err)
	default:
		return models.NewScrapeError(models.ErrCodeLLMFailure, "Gemini request failed", err)
	}
}
