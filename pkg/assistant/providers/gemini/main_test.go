package gemini

import (
	"testing"

	"github.com/google/generative-ai-go/genai"
)

func TestImageFormat(t *testing.T) {
	tests := map[string]string{
		"image/png":  "png",
		"image/jpeg": "jpeg",
		"":           "jpeg",
		"text/plain": "jpeg",
	}
	for in, want := range tests {
		if got := imageFormat(in); got != want {
			t.Errorf("imageFormat(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCollectTextUsesFirstCandidate(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text(" Love the "), genai.Text("scarf! ")}}},
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("ignored")}}},
		},
	}
	if got := collectText(resp); got != "Love the scarf!" {
		t.Errorf("Expected first candidate text, got %q", got)
	}
	if got := collectText(nil); got != "" {
		t.Errorf("Expected empty text for nil response, got %q", got)
	}
}
