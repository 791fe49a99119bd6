package assistant

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/xpanvictor/aigreeter/internal/config"
)

// OpenAIAssistant covers every HTTP provider call the greeter makes. One
// instance is built at startup and shared.
type OpenAIAssistant struct {
	client openai.Client

	visionModel     string
	visionMaxTokens int64
	chatModel       string
	chatMaxTokens   int64
	temperature     float64
	sttModel        string
	ttsModel        string
	ttsVoice        string
}

var (
	_ Annotator     = (*OpenAIAssistant)(nil)
	_ Transcriber   = (*OpenAIAssistant)(nil)
	_ ChatResponder = (*OpenAIAssistant)(nil)
	_ Synthesizer   = (*OpenAIAssistant)(nil)
)

func NewOpenAIAssistant(cfg *config.Settings) (*OpenAIAssistant, error) {
	if cfg.Providers.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("openai: %w", ErrNotConfigured)
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.Providers.OpenAI.APIKey)}
	if cfg.Providers.OpenAI.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.Providers.OpenAI.BaseURL))
	}

	return &OpenAIAssistant{
		client:          openai.NewClient(opts...),
		visionModel:     cfg.Vision.Model,
		visionMaxTokens: int64(cfg.Vision.MaxTokens),
		chatModel:       cfg.Chat.Model,
		chatMaxTokens:   int64(cfg.Chat.MaxTokens),
		temperature:     cfg.Chat.Temperature,
		sttModel:        cfg.Speech.STTModel,
		ttsModel:        cfg.Speech.TTSModel,
		ttsVoice:        cfg.Speech.TTSVoice,
	}, nil
}

// Annotate implements Annotator.
func (o *OpenAIAssistant) Annotate(ctx context.Context, img Image, prompt string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.visionModel),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(prompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: img.DataURL(),
				}),
			}),
		},
	}
	if o.visionMaxTokens > 0 {
		params.MaxTokens = openai.Int(o.visionMaxTokens)
	}

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai vision: %w", err)
	}
	return firstChoice(completion), nil
}

// Respond implements ChatResponder.
func (o *OpenAIAssistant) Respond(ctx context.Context, msgs []Message) (string, error) {
	converted := make([]openai.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, msg := range msgs {
		converted = append(converted, convertToOpenaiMsg(msg))
	}

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.chatModel),
		Messages:    converted,
		Temperature: openai.Float(o.temperature),
	}
	if o.chatMaxTokens > 0 {
		params.MaxTokens = openai.Int(o.chatMaxTokens)
	}

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	return firstChoice(completion), nil
}

// Transcribe implements Transcriber.
func (o *OpenAIAssistant) Transcribe(ctx context.Context, audio Audio) (string, error) {
	mime := audio.MIMEType
	if mime == "" {
		mime = "application/octet-stream"
	}
	transcription, err := o.client.Audio.Transcriptions.New(ctx, openai.AudioTranscriptionNewParams{
		File:  openai.File(bytes.NewReader(audio.Data), audio.Filename, mime),
		Model: openai.AudioModel(o.sttModel),
	})
	if err != nil {
		return "", fmt.Errorf("openai transcription: %w", err)
	}
	return strings.TrimSpace(transcription.Text), nil
}

// Synthesize implements Synthesizer.
func (o *OpenAIAssistant) Synthesize(ctx context.Context, text string) (io.ReadCloser, string, error) {
	res, err := o.client.Audio.Speech.New(ctx, openai.AudioSpeechNewParams{
		Input:          text,
		Model:          openai.SpeechModel(o.ttsModel),
		Voice:          openai.AudioSpeechNewParamsVoice(o.ttsVoice),
		ResponseFormat: openai.AudioSpeechNewParamsResponseFormatMP3,
	})
	if err != nil {
		return nil, "", fmt.Errorf("openai speech: %w", err)
	}
	return res.Body, "audio/mpeg", nil
}

func firstChoice(completion *openai.ChatCompletion) string {
	if completion == nil || len(completion.Choices) == 0 {
		return ""
	}
	return strings.TrimSpace(completion.Choices[0].Message.Content)
}

func convertToOpenaiMsg(msg Message) openai.ChatCompletionMessageParamUnion {
	switch msg.Role {
	case ASSISTANT:
		return openai.AssistantMessage(msg.Content)
	case SYSTEM:
		return openai.SystemMessage(msg.Content)
	}
	return openai.UserMessage(msg.Content)
}
