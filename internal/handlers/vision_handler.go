package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xpanvictor/aigreeter/internal/config"
	"github.com/xpanvictor/aigreeter/internal/domains/compliment"
	"github.com/xpanvictor/aigreeter/pkg/Logger"
)

// MockCompliment is what /vision-simple stores.
const MockCompliment = "You look great today! This is a test response."

type VisionHandler struct {
	complimentService compliment.ComplimentService
	config            config.VisionConfig
	keyPrefix         string
	logger            *Logger.Logger
}

func NewVisionHandler(
	complimentService compliment.ComplimentService,
	cfg *config.Settings,
	logger *Logger.Logger,
) *VisionHandler {
	return &VisionHandler{
		complimentService: complimentService,
		config:            cfg.Vision,
		keyPrefix:         cfg.Store.KeyPrefix,
		logger:            logger,
	}
}

// Annotate turns a camera frame into a compliment for the session.
// @Summary Annotate a camera frame
// @Description Accepts a base64 image (data URL prefix tolerated), asks the vision model for a short compliment and stores it for the session's realtime bridge
// @Tags Vision
// @Accept plain
// @Produce json
// @Param x-session-id header string true "Client session id"
// @Param image body string true "Base64 encoded image"
// @Success 204 "Compliment stored"
// @Success 200 {object} VisionResponse "Compliment stored (respond_with_compliment enabled)"
// @Failure 400 {object} ErrorResponse "Missing image or sessionId"
// @Failure 500 {object} ErrorResponse "Failed to process image"
// @Router /vision [post]
func (h *VisionHandler) Annotate(c *gin.Context) {
	image, sessionID, ok := h.bindImage(c)
	if !ok {
		return
	}

	text, err := h.complimentService.Annotate(c.Request.Context(), sessionID, image)
	if err != nil {
		switch {
		case errors.Is(err, compliment.ErrMissingSession), errors.Is(err, compliment.ErrEmptyImage):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing image or sessionId"})
		case errors.Is(err, compliment.ErrInvalidImage):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid image encoding"})
		case isConfigError(err):
			h.logger.Errorf("vision not configured: %v", err)
			respondConfigError(c, err)
		default:
			h.logger.Errorf("vision error for session %s: %v", sessionID, err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "Failed to process image",
				Details: err.Error(),
			})
		}
		return
	}

	h.logger.Infof("stored compliment for session %s", sessionID)
	if h.config.RespondWithCompliment {
		c.JSON(http.StatusOK, VisionResponse{Success: true, Compliment: text})
		return
	}
	c.Status(http.StatusNoContent)
}

// AnnotateMock stores a fixed compliment without calling a provider.
// @Summary Store a mock compliment
// @Description Debug only. Validates the image like /vision but stores a fixed compliment
// @Tags Vision
// @Accept plain
// @Produce json
// @Param x-session-id header string true "Client session id"
// @Param image body string true "Base64 encoded image"
// @Success 200 {object} VisionDebugResponse
// @Failure 400 {object} ErrorResponse "Missing image or sessionId"
// @Failure 500 {object} ErrorResponse "Server configuration error"
// @Router /vision-simple [post]
func (h *VisionHandler) AnnotateMock(c *gin.Context) {
	image, sessionID, ok := h.bindImage(c)
	if !ok {
		return
	}

	img, err := compliment.DecodeImage(image)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid image encoding"})
		return
	}

	if err := h.complimentService.Store(c.Request.Context(), sessionID, MockCompliment); err != nil {
		if isConfigError(err) {
			respondConfigError(c, err)
			return
		}
		h.logger.Errorf("mock vision store error: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to process image", Details: err.Error()})
		return
	}

	c.JSON(http.StatusOK, VisionDebugResponse{
		Success:    true,
		Compliment: MockCompliment,
		Debug: VisionDebugInfo{
			SessionID:  sessionID,
			Key:        compliment.Key(h.keyPrefix, sessionID),
			ImageBytes: len(img.Data),
			TTL:        h.config.ComplimentTTL.String(),
		},
	})
}

func (h *VisionHandler) bindImage(c *gin.Context) (string, string, bool) {
	body, err := readBody(c, h.config.MaxImageBytes)
	if err != nil {
		if errors.Is(err, errBodyTooLarge) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Image too large"})
			return "", "", false
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request data", Details: err.Error()})
		return "", "", false
	}

	image := strings.TrimSpace(string(body))
	sessionID := ExtractSessionID(c)
	if image == "" || sessionID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing image or sessionId"})
		return "", "", false
	}
	return image, sessionID, true
}
