package realtime

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"testing"
)

func TestAppendAudioEncodesBase64(t *testing.T) {
	pcm := []byte{0x00, 0x01, 0xfe, 0xff}

	data, err := json.Marshal(AppendAudio(pcm))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	want := `{"type":"input_audio_buffer.append","audio":"AAH+/w=="}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}
}

func TestSystemMessageShape(t *testing.T) {
	data, err := json.Marshal(SystemMessage("Vision context: You have a great smile!"))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	want := `{"type":"conversation.item.create","item":{"type":"message","role":"system","content":[{"type":"text","text":"Vision context: You have a great smile!"}]}}`
	if string(data) != want {
		t.Errorf("Expected %s, got %s", want, data)
	}
}

func TestSessionUpdate(t *testing.T) {
	update := NewSessionUpdate("be nice", "alloy", "whisper-1")
	data, err := json.Marshal(update)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded["type"] != "session.update" {
		t.Errorf("Expected session.update, got %v", decoded["type"])
	}
	session := decoded["session"].(map[string]any)
	if session["voice"] != "alloy" || session["instructions"] != "be nice" {
		t.Errorf("Unexpected session: %v", session)
	}
	if session["input_audio_format"] != "pcm16" || session["output_audio_format"] != "pcm16" {
		t.Errorf("Expected pcm16 formats, got %v", session)
	}
	modalities := session["modalities"].([]any)
	if len(modalities) != 2 || modalities[0] != "text" || modalities[1] != "audio" {
		t.Errorf("Unexpected modalities: %v", modalities)
	}
	transcription := session["input_audio_transcription"].(map[string]any)
	if transcription["model"] != "whisper-1" {
		t.Errorf("Expected whisper-1 transcription, got %v", transcription)
	}
}

func TestParseAudioDelta(t *testing.T) {
	pcm := []byte{1, 2, 3, 4, 5, 6}
	raw := []byte(`{"type":"response.audio.delta","response_id":"resp_1","item_id":"item_1","delta":"` +
		base64.StdEncoding.EncodeToString(pcm) + `"}`)

	ev, ok := Parse(raw).(AudioDelta)
	if !ok {
		t.Fatalf("Expected AudioDelta, got %T", Parse(raw))
	}
	if ev.ResponseID != "resp_1" || ev.ItemID != "item_1" {
		t.Errorf("Unexpected ids: %+v", ev)
	}
	decoded, err := ev.Decode()
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(decoded, pcm) {
		t.Errorf("Expected %v, got %v", pcm, decoded)
	}
}

func TestParseFallsBackToOpaque(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		wantType string
	}{
		{"unknown type", `{"type":"response.text.delta","delta":"hi"}`, "response.text.delta"},
		{"audio delta without delta", `{"type":"response.audio.delta"}`, "response.audio.delta"},
		{"no type", `{"hello":"world"}`, ""},
		{"not json", `not json at all`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Parse([]byte(tt.raw))
			op, ok := ev.(Opaque)
			if !ok {
				t.Fatalf("Expected Opaque, got %T", ev)
			}
			if op.Type != tt.wantType {
				t.Errorf("Expected type %q, got %q", tt.wantType, op.Type)
			}
			if string(op.Payload()) != tt.raw {
				t.Errorf("Payload must be preserved verbatim")
			}
		})
	}
}

func TestParseError(t *testing.T) {
	ev := Parse([]byte(`{"type":"error","error":{"code":"invalid_api_key","message":"bad key"}}`))
	errEv, ok := ev.(ErrorEvent)
	if !ok {
		t.Fatalf("Expected ErrorEvent, got %T", ev)
	}
	if errEv.Code != "invalid_api_key" || errEv.Message != "bad key" {
		t.Errorf("Unexpected error event: %+v", errEv)
	}
}
