package speech

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/xpanvictor/aigreeter/pkg/Logger"
	"github.com/xpanvictor/aigreeter/pkg/assistant"
	"github.com/xpanvictor/aigreeter/pkg/io/stt"
)

var (
	ErrEmptyAudio = errors.New("missing audio data or session id")
	ErrEmptyText  = errors.New("missing text")
)

type SpeechService interface {
	// Transcribe uploads one recorded utterance. Raw PCM16 is wrapped into
	// WAV at sampleRate first.
	Transcribe(ctx context.Context, sessionID string, audio []byte, contentType string, sampleRate int) (string, error)
	// Synthesize returns an audio stream; the caller closes it.
	Synthesize(ctx context.Context, text string) (io.ReadCloser, string, error)
}

type speechService struct {
	transcriber assistant.Transcriber
	synthesizer assistant.Synthesizer
	logger      *Logger.Logger
}

func NewSpeechService(
	transcriber assistant.Transcriber,
	synthesizer assistant.Synthesizer,
	logger *Logger.Logger,
) SpeechService {
	return &speechService{
		transcriber: transcriber,
		synthesizer: synthesizer,
		logger:      logger,
	}
}

// Transcribe implements SpeechService.
func (s *speechService) Transcribe(ctx context.Context, sessionID string, audio []byte, contentType string, sampleRate int) (string, error) {
	if len(audio) == 0 || sessionID == "" {
		return "", ErrEmptyAudio
	}
	if s.transcriber == nil {
		return "", assistant.ErrNotConfigured
	}

	upload := assistant.Audio{
		Data:     audio,
		Filename: stt.FilenameFor(contentType),
		MIMEType: stt.MediaType(contentType),
	}
	if stt.IsRawPCM(contentType) {
		wav, err := stt.PCM16ToWAV(audio, sampleRate)
		if err != nil {
			return "", fmt.Errorf("wrap pcm: %w", err)
		}
		upload = assistant.Audio{Data: wav, Filename: "audio.wav", MIMEType: "audio/wav"}
	}
	if upload.MIMEType == "" {
		upload.MIMEType = "audio/webm"
	}

	text, err := s.transcriber.Transcribe(ctx, upload)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	s.logger.Debugf("transcribed %d bytes for session %s", len(audio), sessionID)
	return text, nil
}

// Synthesize implements SpeechService.
func (s *speechService) Synthesize(ctx context.Context, text string) (io.ReadCloser, string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, "", ErrEmptyText
	}
	if s.synthesizer == nil {
		return nil, "", assistant.ErrNotConfigured
	}
	body, contentType, err := s.synthesizer.Synthesize(ctx, text)
	if err != nil {
		return nil, "", fmt.Errorf("synthesize: %w", err)
	}
	return body, contentType, nil
}
