package websocket

import (
	"time"

	"github.com/google/uuid"
)

// Close reasons sent with close code 1000 to the surviving side.
const (
	ReasonClientDisconnected   = "Client disconnected"
	ReasonClientError          = "Client error"
	ReasonUpstreamDisconnected = "Upstream disconnected"
	ReasonUpstreamError        = "Upstream error"
	ReasonUpstreamUnavailable  = "Upstream unavailable"
	ReasonServerShutdown       = "Server shutting down"
)

// ErrorMessage is the best-effort event sent to the browser before the
// bridge closes on an upstream failure.
type ErrorMessage struct {
	Type  string      `json:"type"`
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message string `json:"message"`
}

func newErrorMessage(message string) ErrorMessage {
	return ErrorMessage{Type: "error", Error: ErrorDetail{Message: message}}
}

// BridgeStats is a snapshot of one live bridge.
type BridgeStats struct {
	ID              uuid.UUID `json:"id"`
	SessionID       string    `json:"sessionId"`
	State           string    `json:"state"`
	ConnectedAt     time.Time `json:"connectedAt"`
	ClientFrames    int64     `json:"clientFrames"`
	UpstreamFrames  int64     `json:"upstreamFrames"`
	DroppedFrames   int64     `json:"droppedFrames"`
	InjectedContext int64     `json:"injectedContext"`
}

// Stats summarises every live bridge.
type Stats struct {
	ActiveBridges int           `json:"activeBridges"`
	Bridges       []BridgeStats `json:"bridges"`
}
