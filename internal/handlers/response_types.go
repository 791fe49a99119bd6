package handlers

// Response wrapper types for Swagger documentation

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error" example:"Something went wrong"`
	Details string `json:"details,omitempty" example:"Validation error details"`
}

// VisionResponse is returned by /vision when compliments are echoed back.
type VisionResponse struct {
	Success    bool   `json:"success" example:"true"`
	Compliment string `json:"compliment" example:"That jacket really suits you!"`
}

// VisionDebugInfo describes what /vision-simple did.
type VisionDebugInfo struct {
	SessionID  string `json:"sessionId" example:"abc123"`
	Key        string `json:"key" example:"vision:abc123"`
	ImageBytes int    `json:"imageBytes" example:"18234"`
	TTL        string `json:"ttl" example:"1m0s"`
}

// VisionDebugResponse is returned by /vision-simple.
type VisionDebugResponse struct {
	Success    bool            `json:"success" example:"true"`
	Compliment string          `json:"compliment" example:"You look great today! This is a test response."`
	Debug      VisionDebugInfo `json:"debug"`
}

// TranscriptionResponse is returned by /speech-to-text.
type TranscriptionResponse struct {
	Success bool   `json:"success" example:"true"`
	Text    string `json:"text" example:"Hello there"`
}

// ChatRequest is the body accepted by /chat.
type ChatRequest struct {
	Text      string `json:"text" example:"Hi, how do I look?"`
	SessionID string `json:"sessionId" example:"abc123"`
}

// ChatResponse is returned by /chat.
type ChatResponse struct {
	Success  bool   `json:"success" example:"true"`
	Response string `json:"response" example:"You look fantastic, and that smile is contagious!"`
}

// TTSRequest is the body accepted by /text-to-speech.
type TTSRequest struct {
	Text string `json:"text" example:"Welcome in!"`
}

// TestResponse is returned by /test.
type TestResponse struct {
	Message   string `json:"message" example:"Test function is working!"`
	Timestamp string `json:"timestamp" example:"2025-01-01T12:00:00Z"`
}

// HealthResponse is returned by /health.
type HealthResponse struct {
	Status        string `json:"status" example:"ok"`
	ActiveBridges int    `json:"activeBridges" example:"2"`
}
