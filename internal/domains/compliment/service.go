package compliment

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/xpanvictor/aigreeter/internal/constants/prompts"
	"github.com/xpanvictor/aigreeter/pkg/Logger"
	"github.com/xpanvictor/aigreeter/pkg/assistant"
)

// ComplimentService turns camera frames into compliments and hands them to
// whoever is bridging the same session.
type ComplimentService interface {
	// Annotate decodes a base64 image, asks the annotator for a compliment
	// and stores it under the session id. Nothing is stored on failure.
	Annotate(ctx context.Context, sessionID, imageBase64 string) (string, error)
	// Store writes a compliment directly, bypassing the annotator.
	Store(ctx context.Context, sessionID, text string) error
	// Pending reads the stored compliment without consuming it.
	Pending(ctx context.Context, sessionID string) (string, bool, error)
	// Clear deletes the stored compliment; absent keys are fine.
	Clear(ctx context.Context, sessionID string) error
	// Subscribe signals whenever a compliment is stored for sessionID by
	// this process. The returned func releases the subscription.
	Subscribe(sessionID string) (<-chan struct{}, func())
}

type complimentService struct {
	repository Repository
	annotator  assistant.Annotator
	ttl        time.Duration
	prompt     string
	notifier   *notifier
	logger     *Logger.Logger
}

func NewComplimentService(
	repository Repository,
	annotator assistant.Annotator,
	ttl time.Duration,
	logger *Logger.Logger,
) ComplimentService {
	return &complimentService{
		repository: repository,
		annotator:  annotator,
		ttl:        ttl,
		prompt:     prompts.VISION_PROMPT.GetCurrentPrompt().Text(),
		notifier:   newNotifier(),
		logger:     logger,
	}
}

// Annotate implements ComplimentService.
func (s *complimentService) Annotate(ctx context.Context, sessionID, imageBase64 string) (string, error) {
	if sessionID == "" {
		return "", ErrMissingSession
	}
	img, err := DecodeImage(imageBase64)
	if err != nil {
		return "", err
	}
	if s.repository == nil {
		return "", ErrStoreNotConfigured
	}
	if s.annotator == nil {
		return "", assistant.ErrNotConfigured
	}

	text, err := s.annotator.Annotate(ctx, img, s.prompt)
	if err != nil {
		return "", fmt.Errorf("annotate image: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		text = DefaultCompliment
	}

	if err := s.Store(ctx, sessionID, text); err != nil {
		return "", err
	}
	return text, nil
}

// Store implements ComplimentService.
func (s *complimentService) Store(ctx context.Context, sessionID, text string) error {
	if sessionID == "" {
		return ErrMissingSession
	}
	if s.repository == nil {
		return ErrStoreNotConfigured
	}
	if err := s.repository.Put(ctx, sessionID, text, s.ttl); err != nil {
		return fmt.Errorf("store compliment: %w", err)
	}
	s.logger.Debugf("stored compliment for session %s (ttl %s)", sessionID, s.ttl)
	s.notifier.notify(sessionID)
	return nil
}

// Pending implements ComplimentService.
func (s *complimentService) Pending(ctx context.Context, sessionID string) (string, bool, error) {
	if s.repository == nil {
		return "", false, ErrStoreNotConfigured
	}
	return s.repository.Get(ctx, sessionID)
}

// Clear implements ComplimentService.
func (s *complimentService) Clear(ctx context.Context, sessionID string) error {
	if s.repository == nil {
		return ErrStoreNotConfigured
	}
	return s.repository.Delete(ctx, sessionID)
}

// Subscribe implements ComplimentService.
func (s *complimentService) Subscribe(sessionID string) (<-chan struct{}, func()) {
	return s.notifier.subscribe(sessionID)
}

// DecodeImage accepts raw base64 or a data URL and sniffs the MIME type.
func DecodeImage(raw string) (assistant.Image, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "data:") {
		if i := strings.Index(raw, ","); i >= 0 {
			raw = raw[i+1:]
		}
	}
	if raw == "" {
		return assistant.Image{}, ErrEmptyImage
	}

	data, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(raw, "="))
		if err != nil {
			return assistant.Image{}, ErrInvalidImage
		}
	}
	if len(data) == 0 {
		return assistant.Image{}, ErrEmptyImage
	}

	mime := http.DetectContentType(data)
	if !strings.HasPrefix(mime, "image/") {
		mime = "image/jpeg"
	}
	return assistant.Image{Data: data, MIMEType: mime}, nil
}
