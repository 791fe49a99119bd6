package stt

import (
	"mime"
	"strings"
)

// DefaultFilename is used for uploads whose container cannot be told from
// the content type; browsers record webm/opus by default.
const DefaultFilename = "audio.webm"

var extensions = map[string]string{
	"audio/webm":  "webm",
	"video/webm":  "webm",
	"audio/ogg":   "ogg",
	"audio/mpeg":  "mp3",
	"audio/mp3":   "mp3",
	"audio/mp4":   "mp4",
	"audio/m4a":   "m4a",
	"audio/x-m4a": "m4a",
	"audio/wav":   "wav",
	"audio/x-wav": "wav",
	"audio/wave":  "wav",
	"audio/flac":  "flac",
}

// MediaType strips parameters such as codecs or rate from a content type.
func MediaType(contentType string) string {
	mt, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mt
}

// IsRawPCM reports whether the upload is headerless 16-bit PCM that needs
// wrapping before a transcription service will accept it.
func IsRawPCM(contentType string) bool {
	switch MediaType(contentType) {
	case "audio/pcm", "audio/l16", "audio/x-pcm", "audio/raw":
		return true
	}
	return false
}

// FilenameFor picks an upload filename whose extension matches the
// container.
func FilenameFor(contentType string) string {
	if ext, ok := extensions[MediaType(contentType)]; ok {
		return "audio." + ext
	}
	return DefaultFilename
}
