// Package realtime speaks the subset of the OpenAI Realtime websocket
// protocol the greeter needs. Outbound events are typed; inbound events are
// classified by their "type" field and everything unknown stays opaque.
package realtime

import (
	"encoding/base64"
	"errors"

	"github.com/tidwall/gjson"
)

const (
	TypeSessionUpdate          = "session.update"
	TypeInputAudioBufferAppend = "input_audio_buffer.append"
	TypeConversationItemCreate = "conversation.item.create"
	TypeResponseAudioDelta     = "response.audio.delta"
	TypeError                  = "error"

	AudioFormatPCM16 = "pcm16"
)

var ErrEmptyDelta = errors.New("audio delta is empty")

// Outbound events.

type Transcription struct {
	Model string `json:"model"`
}

type SessionConfig struct {
	Modalities              []string       `json:"modalities"`
	Instructions            string         `json:"instructions"`
	Voice                   string         `json:"voice"`
	InputAudioFormat        string         `json:"input_audio_format"`
	OutputAudioFormat       string         `json:"output_audio_format"`
	InputAudioTranscription *Transcription `json:"input_audio_transcription,omitempty"`
}

type SessionUpdate struct {
	Type    string        `json:"type"`
	Session SessionConfig `json:"session"`
}

func NewSessionUpdate(instructions, voice, transcriptionModel string) SessionUpdate {
	cfg := SessionConfig{
		Modalities:        []string{"text", "audio"},
		Instructions:      instructions,
		Voice:             voice,
		InputAudioFormat:  AudioFormatPCM16,
		OutputAudioFormat: AudioFormatPCM16,
	}
	if transcriptionModel != "" {
		cfg.InputAudioTranscription = &Transcription{Model: transcriptionModel}
	}
	return SessionUpdate{Type: TypeSessionUpdate, Session: cfg}
}

type InputAudioBufferAppend struct {
	Type  string `json:"type"`
	Audio string `json:"audio"`
}

// AppendAudio wraps raw PCM16 bytes for the upstream input buffer.
func AppendAudio(pcm []byte) InputAudioBufferAppend {
	return InputAudioBufferAppend{
		Type:  TypeInputAudioBufferAppend,
		Audio: base64.StdEncoding.EncodeToString(pcm),
	}
}

type ContentPart struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Item struct {
	Type    string        `json:"type"`
	Role    string        `json:"role"`
	Content []ContentPart `json:"content"`
}

type ConversationItemCreate struct {
	Type string `json:"type"`
	Item Item   `json:"item"`
}

// SystemMessage adds a system text item to the live conversation.
func SystemMessage(text string) ConversationItemCreate {
	return ConversationItemCreate{
		Type: TypeConversationItemCreate,
		Item: Item{
			Type:    "message",
			Role:    "system",
			Content: []ContentPart{{Type: "text", Text: text}},
		},
	}
}

// Inbound events.

type Event interface {
	EventType() string
	Payload() []byte
}

// AudioDelta is a chunk of synthesized PCM16 audio.
type AudioDelta struct {
	Raw        []byte
	ResponseID string
	ItemID     string
	Delta      string
}

func (e AudioDelta) EventType() string { return TypeResponseAudioDelta }
func (e AudioDelta) Payload() []byte   { return e.Raw }

func (e AudioDelta) Decode() ([]byte, error) {
	if e.Delta == "" {
		return nil, ErrEmptyDelta
	}
	return base64.StdEncoding.DecodeString(e.Delta)
}

type ErrorEvent struct {
	Raw     []byte
	Code    string
	Message string
}

func (e ErrorEvent) EventType() string { return TypeError }
func (e ErrorEvent) Payload() []byte   { return e.Raw }

// Opaque is any event the greeter does not interpret.
type Opaque struct {
	Type string
	Raw  []byte
}

func (e Opaque) EventType() string { return e.Type }
func (e Opaque) Payload() []byte   { return e.Raw }

// Parse classifies an inbound text frame. It never fails: malformed or
// unknown payloads come back as Opaque with an empty or unknown type.
func Parse(data []byte) Event {
	if !gjson.ValidBytes(data) {
		return Opaque{Raw: data}
	}
	fields := gjson.GetManyBytes(data, "type", "delta", "response_id", "item_id", "error.code", "error.message")
	switch t := fields[0].String(); t {
	case TypeResponseAudioDelta:
		if fields[1].String() == "" {
			return Opaque{Type: t, Raw: data}
		}
		return AudioDelta{
			Raw:        data,
			Delta:      fields[1].String(),
			ResponseID: fields[2].String(),
			ItemID:     fields[3].String(),
		}
	case TypeError:
		return ErrorEvent{Raw: data, Code: fields[4].String(), Message: fields[5].String()}
	default:
		return Opaque{Type: t, Raw: data}
	}
}
