// Package docs holds the swagger document served at /swagger. Regenerate with
// `swag init -g cmd/api/main.go` after changing handler annotations.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/vision": {
            "post": {
                "description": "Accepts a base64 image (data URL prefix tolerated), asks the vision model for a short compliment and stores it for the session's realtime bridge",
                "consumes": ["text/plain"],
                "produces": ["application/json"],
                "tags": ["Vision"],
                "summary": "Annotate a camera frame",
                "parameters": [
                    {"type": "string", "description": "Client session id", "name": "x-session-id", "in": "header", "required": true},
                    {"description": "Base64 encoded image", "name": "image", "in": "body", "required": true, "schema": {"type": "string"}}
                ],
                "responses": {
                    "200": {"description": "Compliment stored (respond_with_compliment enabled)", "schema": {"$ref": "#/definitions/handlers.VisionResponse"}},
                    "204": {"description": "Compliment stored"},
                    "400": {"description": "Missing image or sessionId", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Failed to process image", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/speech-to-text": {
            "post": {
                "description": "Transcribes raw audio. audio/pcm and audio/l16 bodies are wrapped as 16-bit mono WAV before upload",
                "consumes": ["application/octet-stream"],
                "produces": ["application/json"],
                "tags": ["Speech"],
                "summary": "Transcribe audio",
                "parameters": [
                    {"type": "string", "description": "Client session id", "name": "x-session-id", "in": "header", "required": true},
                    {"type": "integer", "description": "Sample rate of raw PCM bodies", "name": "sampleRate", "in": "query"},
                    {"description": "Audio bytes", "name": "audio", "in": "body", "required": true, "schema": {"type": "string"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.TranscriptionResponse"}},
                    "400": {"description": "Missing audio data or session ID", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Failed to transcribe audio", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/chat": {
            "post": {
                "description": "Replies to a text message. The session's pending compliment, if any, is added to the system prompt",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Conversation"],
                "summary": "Chat with the greeter",
                "parameters": [
                    {"description": "Message and session id", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.ChatRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.ChatResponse"}},
                    "400": {"description": "Missing text or session ID", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Failed to get AI response", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/text-to-speech": {
            "post": {
                "description": "Returns mp3 audio for the given text",
                "consumes": ["application/json"],
                "produces": ["audio/mpeg"],
                "tags": ["Speech"],
                "summary": "Synthesize speech",
                "parameters": [
                    {"description": "Text to speak", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.TTSRequest"}}
                ],
                "responses": {
                    "200": {"description": "audio/mpeg", "schema": {"type": "file"}},
                    "400": {"description": "Missing text", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}},
                    "500": {"description": "Failed to generate speech", "schema": {"$ref": "#/definitions/handlers.ErrorResponse"}}
                }
            }
        },
        "/test": {
            "get": {
                "description": "Returns a fixed message and the server time",
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Test endpoint",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.TestResponse"}}}
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.HealthResponse"}}}
            }
        },
        "/ws": {
            "get": {
                "description": "Upgrades to a WebSocket relayed to the realtime voice service. Binary frames are PCM16 audio; text frames are forwarded verbatim.",
                "tags": ["Realtime"],
                "summary": "Realtime voice bridge",
                "parameters": [
                    {"type": "string", "description": "Client session id shared with /vision", "name": "sessionId", "in": "query", "required": true}
                ],
                "responses": {
                    "101": {"description": "Switching Protocols"},
                    "400": {"description": "Missing sessionId"},
                    "426": {"description": "Expected WebSocket upgrade"},
                    "500": {"description": "Server configuration error"}
                }
            }
        },
        "/ws/stats": {
            "get": {
                "description": "Lists live realtime bridges with relay counters",
                "produces": ["application/json"],
                "tags": ["Realtime"],
                "summary": "Bridge statistics",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/websocket.Stats"}}}
            }
        },
        "/ws/stats/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Realtime"],
                "summary": "Single bridge statistics",
                "parameters": [
                    {"type": "string", "description": "Bridge connection id", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/websocket.BridgeStats"}},
                    "400": {"description": "Invalid bridge id"},
                    "404": {"description": "Bridge not found"}
                }
            }
        }
    },
    "definitions": {
        "handlers.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "Something went wrong"},
                "details": {"type": "string", "example": "Validation error details"}
            }
        },
        "handlers.VisionResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "compliment": {"type": "string", "example": "That jacket really suits you!"}
            }
        },
        "handlers.TranscriptionResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "text": {"type": "string", "example": "Hello there"}
            }
        },
        "handlers.ChatRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string", "example": "Hi, how do I look?"},
                "sessionId": {"type": "string", "example": "abc123"}
            }
        },
        "handlers.ChatResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "response": {"type": "string", "example": "You look fantastic, and that smile is contagious!"}
            }
        },
        "handlers.TTSRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string", "example": "Welcome in!"}
            }
        },
        "handlers.TestResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string", "example": "Test function is working!"},
                "timestamp": {"type": "string", "example": "2025-01-01T12:00:00Z"}
            }
        },
        "handlers.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"},
                "activeBridges": {"type": "integer", "example": 2}
            }
        },
        "websocket.BridgeStats": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "sessionId": {"type": "string"},
                "state": {"type": "string"},
                "connectedAt": {"type": "string"},
                "clientFrames": {"type": "integer"},
                "upstreamFrames": {"type": "integer"},
                "droppedFrames": {"type": "integer"},
                "injectedContext": {"type": "integer"}
            }
        },
        "websocket.Stats": {
            "type": "object",
            "properties": {
                "activeBridges": {"type": "integer"},
                "bridges": {"type": "array", "items": {"$ref": "#/definitions/websocket.BridgeStats"}}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "AI Greeter API",
	Description:      "Realtime voice greeter with vision compliments.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
