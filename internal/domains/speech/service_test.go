package speech

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/xpanvictor/aigreeter/pkg/Logger"
	"github.com/xpanvictor/aigreeter/pkg/assistant"
)

type fakeTranscriber struct {
	got assistant.Audio
}

func (f *fakeTranscriber) Transcribe(_ context.Context, a assistant.Audio) (string, error) {
	f.got = a
	return "hello world", nil
}

type fakeSynthesizer struct{}

func (fakeSynthesizer) Synthesize(context.Context, string) (io.ReadCloser, string, error) {
	return io.NopCloser(bytes.NewReader([]byte("ID3"))), "audio/mpeg", nil
}

func TestTranscribeWebm(t *testing.T) {
	tr := &fakeTranscriber{}
	svc := NewSpeechService(tr, nil, Logger.NewNop())

	text, err := svc.Transcribe(context.Background(), "s1", []byte{0x1a, 0x45, 0xdf, 0xa3}, "audio/webm;codecs=opus", 24000)
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if text != "hello world" {
		t.Errorf("Unexpected text %q", text)
	}
	if tr.got.Filename != "audio.webm" || tr.got.MIMEType != "audio/webm" {
		t.Errorf("Unexpected upload: %s %s", tr.got.Filename, tr.got.MIMEType)
	}
}

func TestTranscribeWrapsPCM(t *testing.T) {
	tr := &fakeTranscriber{}
	svc := NewSpeechService(tr, nil, Logger.NewNop())

	if _, err := svc.Transcribe(context.Background(), "s1", make([]byte, 480), "audio/pcm", 24000); err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if tr.got.Filename != "audio.wav" || !bytes.HasPrefix(tr.got.Data, []byte("RIFF")) {
		t.Errorf("Expected a wav upload, got %s (%d bytes)", tr.got.Filename, len(tr.got.Data))
	}
}

func TestSpeechValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewSpeechService(&fakeTranscriber{}, fakeSynthesizer{}, Logger.NewNop())

	if _, err := svc.Transcribe(ctx, "", []byte{1}, "audio/webm", 0); !errors.Is(err, ErrEmptyAudio) {
		t.Errorf("Expected ErrEmptyAudio without session, got %v", err)
	}
	if _, err := svc.Transcribe(ctx, "s1", nil, "audio/webm", 0); !errors.Is(err, ErrEmptyAudio) {
		t.Errorf("Expected ErrEmptyAudio without audio, got %v", err)
	}
	if _, _, err := svc.Synthesize(ctx, " "); !errors.Is(err, ErrEmptyText) {
		t.Errorf("Expected ErrEmptyText, got %v", err)
	}

	body, ct, err := svc.Synthesize(ctx, "hi")
	if err != nil {
		t.Fatalf("Synthesize failed: %v", err)
	}
	defer body.Close()
	if ct != "audio/mpeg" {
		t.Errorf("Expected audio/mpeg, got %q", ct)
	}

	unconfigured := NewSpeechService(nil, nil, Logger.NewNop())
	if _, err := unconfigured.Transcribe(ctx, "s1", []byte{1}, "audio/webm", 0); !errors.Is(err, assistant.ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
	if _, _, err := unconfigured.Synthesize(ctx, "hi"); !errors.Is(err, assistant.ErrNotConfigured) {
		t.Errorf("Expected ErrNotConfigured, got %v", err)
	}
}
