package assistant

import (
	"context"
	"encoding/base64"
	"errors"
	"io"
)

// ErrNotConfigured is returned when a provider has no credential or no
// reachable server.
var ErrNotConfigured = errors.New("provider not configured")

type Role string

const (
	USER      Role = "user"
	ASSISTANT Role = "assistant"
	SYSTEM    Role = "system"
)

type Message struct {
	Role    Role
	Content string
}

// Image is a decoded picture plus its MIME type.
type Image struct {
	Data     []byte
	MIMEType string
}

func (i Image) DataURL() string {
	mime := i.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Audio is an uploaded recording. Filename carries the extension providers
// use to pick a decoder.
type Audio struct {
	Data     []byte
	Filename string
	MIMEType string
}

// Annotator turns an image into a short piece of text.
type Annotator interface {
	Annotate(ctx context.Context, img Image, prompt string) (string, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audio Audio) (string, error)
}

type ChatResponder interface {
	Respond(ctx context.Context, msgs []Message) (string, error)
}

// Synthesizer returns an audio stream and its content type. Callers close
// the stream.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) (io.ReadCloser, string, error)
}
