package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/xpanvictor/aigreeter/internal/domains/conversation"
	"github.com/xpanvictor/aigreeter/pkg/Logger"
	"github.com/xpanvictor/aigreeter/pkg/utils"
)

type ChatHandler struct {
	convoService conversation.ConversationService
	logger       *Logger.Logger
}

func NewChatHandler(
	convoService conversation.ConversationService,
	logger *Logger.Logger,
) *ChatHandler {
	return &ChatHandler{
		convoService: convoService,
		logger:       logger,
	}
}

// Chat answers a text message, aware of the session's pending compliment.
// @Summary Chat with the greeter
// @Description Replies to a text message. The session's pending compliment, if any, is added to the system prompt
// @Tags Conversation
// @Accept json
// @Produce json
// @Param request body ChatRequest true "Message and session id"
// @Success 200 {object} ChatResponse
// @Failure 400 {object} ErrorResponse "Missing text or session ID"
// @Failure 500 {object} ErrorResponse "Failed to get AI response"
// @Router /chat [post]
func (h *ChatHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}
	sessionID := utils.FirstNonEmpty(req.SessionID, ExtractSessionID(c))

	reply, err := h.convoService.Reply(c.Request.Context(), sessionID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, conversation.ErrEmptyMessage):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing text or session ID"})
		case isConfigError(err):
			respondConfigError(c, err)
		default:
			h.logger.Errorf("chat error for session %s: %v", sessionID, err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "Failed to get AI response",
				Details: err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, ChatResponse{Success: true, Response: reply})
}
