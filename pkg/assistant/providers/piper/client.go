package piper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/xpanvictor/aigreeter/internal/config"
	"github.com/xpanvictor/aigreeter/pkg/assistant"
)

// PiperProvider synthesizes speech on a self-hosted piper server
// (rhasspy/wyoming-piper HTTP API). Output is WAV, not mp3.
type PiperProvider struct {
	baseURL string // e.g. "http://tts-piper:5000"
	voice   string
	client  *http.Client
}

var _ assistant.Synthesizer = (*PiperProvider)(nil)

func New(cfg *config.Settings) (*PiperProvider, error) {
	base := strings.TrimRight(cfg.Providers.Piper.URL, "/")
	if base == "" {
		return nil, fmt.Errorf("piper: %w", assistant.ErrNotConfigured)
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("piper: invalid url %q: %w", base, err)
	}
	timeout := cfg.Providers.Piper.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &PiperProvider{
		baseURL: base,
		voice:   cfg.Providers.Piper.Voice,
		// covers reading the body too; clips are short
		client: &http.Client{Timeout: timeout},
	}, nil
}

// Synthesize implements assistant.Synthesizer. The caller closes the body.
func (p *PiperProvider) Synthesize(ctx context.Context, text string) (io.ReadCloser, string, error) {
	if text == "" {
		return nil, "", fmt.Errorf("piper: empty text")
	}

	u, err := url.Parse(p.baseURL + "/api/text-to-speech")
	if err != nil {
		return nil, "", err
	}
	q := u.Query()
	q.Set("text", text)
	if p.voice != "" {
		q.Set("voice", p.voice)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, "", err
	}
	req.Header.Set("Accept", "audio/wav")

	start := time.Now()
	resp, err := p.client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("piper request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		resp.Body.Close()
		return nil, "", fmt.Errorf("piper http %d: %s (dur=%s)", resp.StatusCode, string(b), time.Since(start))
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "audio/wav"
	}
	return resp.Body, contentType, nil
}
