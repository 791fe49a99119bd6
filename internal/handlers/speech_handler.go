package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/xpanvictor/aigreeter/internal/config"
	"github.com/xpanvictor/aigreeter/internal/domains/speech"
	"github.com/xpanvictor/aigreeter/pkg/Logger"
)

type SpeechHandler struct {
	speechService speech.SpeechService
	config        config.SpeechConfig
	logger        *Logger.Logger
}

func NewSpeechHandler(
	speechService speech.SpeechService,
	cfg *config.Settings,
	logger *Logger.Logger,
) *SpeechHandler {
	return &SpeechHandler{
		speechService: speechService,
		config:        cfg.Speech,
		logger:        logger,
	}
}

// SpeechToText transcribes an uploaded clip.
// @Summary Transcribe audio
// @Description Transcribes raw audio. audio/pcm and audio/l16 bodies are wrapped as 16-bit mono WAV before upload
// @Tags Speech
// @Accept octet-stream
// @Produce json
// @Param x-session-id header string true "Client session id"
// @Param sampleRate query int false "Sample rate of raw PCM bodies"
// @Param audio body string true "Audio bytes"
// @Success 200 {object} TranscriptionResponse
// @Failure 400 {object} ErrorResponse "Missing audio data or session ID"
// @Failure 500 {object} ErrorResponse "Failed to transcribe audio"
// @Router /speech-to-text [post]
func (h *SpeechHandler) SpeechToText(c *gin.Context) {
	audio, err := readBody(c, h.config.MaxAudioBytes)
	if err != nil {
		if errors.Is(err, errBodyTooLarge) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Audio too large"})
			return
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request data", Details: err.Error()})
		return
	}

	sampleRate := h.config.PCMSampleRate
	if raw := c.Query("sampleRate"); raw != "" {
		rate, err := strconv.Atoi(raw)
		if err != nil || rate <= 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid sampleRate"})
			return
		}
		sampleRate = rate
	}

	sessionID := ExtractSessionID(c)
	text, err := h.speechService.Transcribe(c.Request.Context(), sessionID, audio, c.ContentType(), sampleRate)
	if err != nil {
		switch {
		case errors.Is(err, speech.ErrEmptyAudio):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing audio data or session ID"})
		case isConfigError(err):
			respondConfigError(c, err)
		default:
			h.logger.Errorf("transcription error for session %s: %v", sessionID, err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "Failed to transcribe audio",
				Details: err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, TranscriptionResponse{Success: true, Text: text})
}

// TextToSpeech synthesizes speech for the given text.
// @Summary Synthesize speech
// @Description Returns mp3 audio for the given text
// @Tags Speech
// @Accept json
// @Produce audio/mpeg
// @Param request body TTSRequest true "Text to speak"
// @Success 200 {file} binary "audio/mpeg"
// @Failure 400 {object} ErrorResponse "Missing text"
// @Failure 500 {object} ErrorResponse "Failed to generate speech"
// @Router /text-to-speech [post]
func (h *SpeechHandler) TextToSpeech(c *gin.Context) {
	var req TTSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Invalid request data",
			Details: err.Error(),
		})
		return
	}

	body, contentType, err := h.speechService.Synthesize(c.Request.Context(), req.Text)
	if err != nil {
		switch {
		case errors.Is(err, speech.ErrEmptyText):
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing text"})
		case isConfigError(err):
			respondConfigError(c, err)
		default:
			h.logger.Errorf("tts error: %v", err)
			c.JSON(http.StatusInternalServerError, ErrorResponse{
				Error:   "Failed to generate speech",
				Details: err.Error(),
			})
		}
		return
	}
	defer body.Close()

	c.Header("Content-Type", contentType)
	c.Header("Cache-Control", "no-cache")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, body); err != nil {
		h.logger.Warnf("streaming tts audio: %v", err)
	}
}
