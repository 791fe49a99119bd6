package whisper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/tidwall/gjson"
	"github.com/xpanvictor/aigreeter/internal/config"
	"github.com/xpanvictor/aigreeter/pkg/assistant"
)

// WhisperProvider transcribes through a self-hosted whisper ASR
// webservice (POST /asr, multipart field audio_file).
type WhisperProvider struct {
	baseURL    string
	language   string
	httpClient *http.Client
}

var _ assistant.Transcriber = (*WhisperProvider)(nil)

func New(cfg *config.Settings) (*WhisperProvider, error) {
	base := strings.TrimRight(cfg.Providers.Whisper.URL, "/")
	if base == "" {
		return nil, fmt.Errorf("whisper: %w", assistant.ErrNotConfigured)
	}
	timeout := cfg.Providers.Whisper.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &WhisperProvider{
		baseURL:    base,
		language:   cfg.Providers.Whisper.Language,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Transcribe implements assistant.Transcriber.
func (w *WhisperProvider) Transcribe(ctx context.Context, audio assistant.Audio) (string, error) {
	if len(audio.Data) == 0 {
		return "", fmt.Errorf("whisper: no audio provided")
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	filename := audio.Filename
	if filename == "" {
		filename = "audio.wav"
	}
	part, err := writer.CreateFormFile("audio_file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(audio.Data); err != nil {
		return "", fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	q := url.Values{}
	q.Set("encode", "true")
	q.Set("task", "transcribe")
	q.Set("output", "json")
	if w.language != "" {
		q.Set("language", w.language)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.baseURL+"/asr?"+q.Encode(), &body)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("whisper service returned status %d: %s", resp.StatusCode, string(responseBody))
	}

	// some deployments answer plain text despite output=json
	if text := gjson.GetBytes(responseBody, "text"); gjson.ValidBytes(responseBody) && text.Exists() {
		return strings.TrimSpace(text.String()), nil
	}
	return strings.TrimSpace(string(responseBody)), nil
}
