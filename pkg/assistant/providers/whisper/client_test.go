package whisper

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xpanvictor/aigreeter/internal/config"
	"github.com/xpanvictor/aigreeter/pkg/assistant"
)

func newProvider(t *testing.T, handler http.HandlerFunc) *WhisperProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.Settings{}
	cfg.Providers.Whisper = config.WhisperConfig{URL: srv.URL + "/", Language: "en"}
	p, err := New(cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return p
}

func TestNewRequiresURL(t *testing.T) {
	if _, err := New(&config.Settings{}); !errors.Is(err, assistant.ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}

func TestTranscribeJSON(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/asr" || r.URL.Query().Get("language") != "en" {
			t.Errorf("Unexpected request %s", r.URL)
		}
		file, header, err := r.FormFile("audio_file")
		if err != nil {
			t.Errorf("missing audio_file: %v", err)
			return
		}
		data, _ := io.ReadAll(file)
		if header.Filename != "audio.webm" || string(data) != "clip" {
			t.Errorf("Unexpected upload %s %q", header.Filename, data)
		}
		_, _ = w.Write([]byte(`{"text":" hello there ","language":"en"}`))
	})

	text, err := p.Transcribe(context.Background(), assistant.Audio{Data: []byte("clip"), Filename: "audio.webm"})
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if text != "hello there" {
		t.Errorf("Expected trimmed text, got %q", text)
	}
}

func TestTranscribePlainText(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("plain words\n"))
	})

	text, err := p.Transcribe(context.Background(), assistant.Audio{Data: []byte("clip")})
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if text != "plain words" {
		t.Errorf("Expected plain text, got %q", text)
	}
}

func TestTranscribeServerError(t *testing.T) {
	p := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model loading", http.StatusServiceUnavailable)
	})

	if _, err := p.Transcribe(context.Background(), assistant.Audio{Data: []byte("clip")}); err == nil {
		t.Error("Expected error on 503")
	}
}
