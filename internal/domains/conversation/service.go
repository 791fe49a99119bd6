package conversation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xpanvictor/aigreeter/internal/constants/prompts"
	"github.com/xpanvictor/aigreeter/pkg/Logger"
	"github.com/xpanvictor/aigreeter/pkg/assistant"
)

var ErrEmptyMessage = errors.New("missing text or session id")

// FallbackReply is returned when the model produces no text.
const FallbackReply = "I'm sorry, I didn't understand that."

// ComplimentReader is the read side of the session store.
type ComplimentReader interface {
	Pending(ctx context.Context, sessionID string) (string, bool, error)
}

// ConversationService answers single text turns for the non-realtime
// voice loop.
type ConversationService interface {
	Reply(ctx context.Context, sessionID, text string) (string, error)
}

type conversationService struct {
	responder   assistant.ChatResponder
	compliments ComplimentReader
	logger      *Logger.Logger
}

func NewConversationService(
	responder assistant.ChatResponder,
	compliments ComplimentReader,
	logger *Logger.Logger,
) ConversationService {
	return &conversationService{
		responder:   responder,
		compliments: compliments,
		logger:      logger,
	}
}

// Reply implements ConversationService. A pending compliment is folded
// into the system prompt but left in the store for the realtime bridge.
func (s *conversationService) Reply(ctx context.Context, sessionID, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" || sessionID == "" {
		return "", ErrEmptyMessage
	}
	if s.responder == nil {
		return "", assistant.ErrNotConfigured
	}

	msgs := []assistant.Message{
		{Role: assistant.SYSTEM, Content: s.systemPrompt(ctx, sessionID)},
		{Role: assistant.USER, Content: text},
	}

	reply, err := s.responder.Respond(ctx, msgs)
	if err != nil {
		return "", fmt.Errorf("chat reply: %w", err)
	}
	if reply == "" {
		return FallbackReply, nil
	}
	return reply, nil
}

func (s *conversationService) systemPrompt(ctx context.Context, sessionID string) string {
	system := prompts.CHAT_PROMPT.GetCurrentPrompt().Text()
	if s.compliments == nil {
		return system
	}
	compliment, ok, err := s.compliments.Pending(ctx, sessionID)
	if err != nil {
		s.logger.Warnf("reading compliment for session %s: %v", sessionID, err)
		return system
	}
	if ok && compliment != "" {
		system += prompts.ComplimentSuffix + compliment
	}
	return system
}
