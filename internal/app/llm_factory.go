package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/xpanvictor/aigreeter/internal/config"
	"github.com/xpanvictor/aigreeter/pkg/Logger"
	"github.com/xpanvictor/aigreeter/pkg/assistant"
	"github.com/xpanvictor/aigreeter/pkg/assistant/providers/gemini"
	"github.com/xpanvictor/aigreeter/pkg/assistant/providers/ollama"
	"github.com/xpanvictor/aigreeter/pkg/assistant/providers/piper"
	"github.com/xpanvictor/aigreeter/pkg/assistant/providers/whisper"
)

// Providers holds the model clients built once at startup. A nil field
// means the capability is not configured; handlers answer 500 for it.
type Providers struct {
	Annotator   assistant.Annotator
	Responder   assistant.ChatResponder
	Transcriber assistant.Transcriber
	Synthesizer assistant.Synthesizer

	closers []func() error
}

// Close releases provider clients that hold connections.
func (p *Providers) Close() error {
	var errs []error
	for _, closeFn := range p.closers {
		errs = append(errs, closeFn())
	}
	return errors.Join(errs...)
}

// ProviderFactory picks a backend per capability from configuration.
type ProviderFactory struct {
	config *config.Settings
	logger *Logger.Logger
}

func NewProviderFactory(cfg *config.Settings, logger *Logger.Logger) *ProviderFactory {
	return &ProviderFactory{
		config: cfg,
		logger: logger,
	}
}

// CreateProviders builds every configured backend. Missing credentials are
// logged, not fatal: the realtime bridge and other routes keep working.
func (f *ProviderFactory) CreateProviders(ctx context.Context) (*Providers, error) {
	p := &Providers{}

	openai, err := assistant.NewOpenAIAssistant(f.config)
	if errors.Is(err, assistant.ErrNotConfigured) {
		f.logger.Warnf("OpenAI API key not set; OpenAI backed vision, chat and speech are disabled")
	} else if err != nil {
		return nil, fmt.Errorf("failed to create OpenAI client: %w", err)
	}

	if err := f.setupAnnotator(ctx, p, openai); err != nil {
		return nil, err
	}
	if err := f.setupResponder(p, openai); err != nil {
		return nil, err
	}
	if err := f.setupSpeech(p, openai); err != nil {
		return nil, err
	}

	f.logger.Infof("providers ready: vision=%s chat=%s stt=%s tts=%s",
		f.config.Vision.Provider, f.config.Chat.Provider, f.config.Speech.STTProvider, f.config.Speech.TTSProvider)
	return p, nil
}

func (f *ProviderFactory) setupAnnotator(ctx context.Context, p *Providers, openai *assistant.OpenAIAssistant) error {
	switch f.config.Vision.Provider {
	case "gemini":
		gp, err := gemini.New(ctx, f.config)
		if errors.Is(err, assistant.ErrNotConfigured) {
			f.logger.Warnf("Gemini API key not set; /vision is disabled")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to create Gemini annotator: %w", err)
		}
		p.Annotator = gp
		p.closers = append(p.closers, gp.Close)
	case "openai", "":
		if openai != nil {
			p.Annotator = openai
		}
	default:
		return fmt.Errorf("unknown vision provider %q", f.config.Vision.Provider)
	}
	return nil
}

func (f *ProviderFactory) setupResponder(p *Providers, openai *assistant.OpenAIAssistant) error {
	switch f.config.Chat.Provider {
	case "ollama":
		op, err := ollama.New(f.config)
		if errors.Is(err, assistant.ErrNotConfigured) {
			f.logger.Warnf("no Ollama servers configured; /chat is disabled")
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to create Ollama responder: %w", err)
		}
		p.Responder = op
	case "openai", "":
		if openai != nil {
			p.Responder = openai
		}
	default:
		return fmt.Errorf("unknown chat provider %q", f.config.Chat.Provider)
	}
	return nil
}

func (f *ProviderFactory) setupSpeech(p *Providers, openai *assistant.OpenAIAssistant) error {
	switch f.config.Speech.STTProvider {
	case "whisper":
		wp, err := whisper.New(f.config)
		if errors.Is(err, assistant.ErrNotConfigured) {
			f.logger.Warnf("whisper url not set; /speech-to-text is disabled")
		} else if err != nil {
			return fmt.Errorf("failed to create whisper transcriber: %w", err)
		} else {
			p.Transcriber = wp
		}
	case "openai", "":
		if openai != nil {
			p.Transcriber = openai
		}
	default:
		return fmt.Errorf("unknown stt provider %q", f.config.Speech.STTProvider)
	}

	switch f.config.Speech.TTSProvider {
	case "piper":
		pp, err := piper.New(f.config)
		if errors.Is(err, assistant.ErrNotConfigured) {
			f.logger.Warnf("piper url not set; /text-to-speech is disabled")
		} else if err != nil {
			return fmt.Errorf("failed to create piper synthesizer: %w", err)
		} else {
			p.Synthesizer = pp
		}
	case "openai", "":
		if openai != nil {
			p.Synthesizer = openai
		}
	default:
		return fmt.Errorf("unknown tts provider %q", f.config.Speech.TTSProvider)
	}
	return nil
}
