package realtime

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

type DialConfig struct {
	URL              string
	APIKey           string
	HandshakeTimeout time.Duration
}

// Dial opens a private upstream socket authenticated with the API key.
func Dial(ctx context.Context, cfg DialConfig) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: cfg.HandshakeTimeout,
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+cfg.APIKey)
	header.Set("OpenAI-Beta", "realtime=v1")

	conn, resp, err := dialer.DialContext(ctx, cfg.URL, header)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dial realtime upstream: %w (status %d)", err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dial realtime upstream: %w", err)
	}
	return conn, nil
}
