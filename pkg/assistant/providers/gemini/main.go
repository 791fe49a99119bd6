package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/xpanvictor/aigreeter/internal/config"
	"github.com/xpanvictor/aigreeter/pkg/assistant"
	"google.golang.org/api/option"
)

// GeminiProvider annotates images with a Gemini multimodal model.
type GeminiProvider struct {
	client    *genai.Client
	modelName string
	maxTokens int32
}

var _ assistant.Annotator = (*GeminiProvider)(nil)

// New creates a new GeminiProvider instance.
func New(ctx context.Context, cfg *config.Settings) (*GeminiProvider, error) {
	if cfg.Providers.Gemini.APIKey == "" {
		return nil, fmt.Errorf("gemini: %w", assistant.ErrNotConfigured)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.Providers.Gemini.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini API client: %w", err)
	}

	return &GeminiProvider{
		client:    client,
		modelName: cfg.Providers.Gemini.Model,
		maxTokens: int32(cfg.Vision.MaxTokens),
	}, nil
}

// Annotate implements assistant.Annotator.
func (gp *GeminiProvider) Annotate(ctx context.Context, img assistant.Image, prompt string) (string, error) {
	if gp.client == nil {
		return "", fmt.Errorf("gemini client is not initialized")
	}

	model := gp.client.GenerativeModel(gp.modelName)
	if gp.maxTokens > 0 {
		model.SetMaxOutputTokens(gp.maxTokens)
	}

	resp, err := model.GenerateContent(ctx, genai.ImageData(imageFormat(img.MIMEType), img.Data), genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini vision: %w", err)
	}
	return collectText(resp), nil
}

func (gp *GeminiProvider) Close() error {
	if gp.client == nil {
		return nil
	}
	return gp.client.Close()
}

// imageFormat maps a MIME type to the short form genai.ImageData expects.
func imageFormat(mime string) string {
	format := strings.TrimPrefix(mime, "image/")
	if format == "" || format == mime {
		return "jpeg"
	}
	return format
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
		break
	}
	return strings.TrimSpace(sb.String())
}
