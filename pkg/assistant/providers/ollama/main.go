package ollama

import (
	"context"
	"fmt"
	"strings"

	"github.com/ollama/ollama/api"
	"github.com/presbrey/ollamafarm"
	"github.com/xpanvictor/aigreeter/internal/config"
	"github.com/xpanvictor/aigreeter/pkg/assistant"
)

// OllamaProvider answers chat turns from the first online server of a
// farm of self-hosted Ollama instances.
type OllamaProvider struct {
	ollamafarm *ollamafarm.Farm
	model      string
}

var _ assistant.ChatResponder = (*OllamaProvider)(nil)

func New(cfg *config.Settings) (*OllamaProvider, error) {
	if len(cfg.Providers.Ollama.URLs) == 0 {
		return nil, fmt.Errorf("ollama: %w", assistant.ErrNotConfigured)
	}
	farm := ollamafarm.New()

	registered := 0
	for _, url := range cfg.Providers.Ollama.URLs {
		if err := farm.RegisterURL(url, nil); err != nil {
			continue
		}
		registered++
	}
	if registered == 0 {
		return nil, fmt.Errorf("ollama: no usable server in %v: %w", cfg.Providers.Ollama.URLs, assistant.ErrNotConfigured)
	}

	return &OllamaProvider{
		ollamafarm: farm,
		model:      cfg.Providers.Ollama.Model,
	}, nil
}

// Respond implements assistant.ChatResponder.
func (o *OllamaProvider) Respond(ctx context.Context, msgs []assistant.Message) (string, error) {
	ollama := o.ollamafarm.First(&ollamafarm.Where{Offline: false})
	if ollama == nil {
		return "", fmt.Errorf("no online ollama server for model %s", o.model)
	}

	stream := false
	req := &api.ChatRequest{
		Model:    o.model,
		Messages: toOllamaMessages(msgs),
		Stream:   &stream,
	}

	var sb strings.Builder
	err := ollama.Client().Chat(ctx, req, func(resp api.ChatResponse) error {
		sb.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	return strings.TrimSpace(sb.String()), nil
}

func toOllamaMessages(msgs []assistant.Message) []api.Message {
	out := make([]api.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, api.Message{Role: string(m.Role), Content: m.Content})
	}
	return out
}
