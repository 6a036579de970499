// Package stt turns recorded PCM audio into text.
package stt

import (
	"context"
	"fmt"
	"strings"
)

// Transcriber converts a mono 16-bit PCM buffer to text.
type Transcriber interface {
	Transcribe(ctx context.Context, pcm []int16, sampleRate int) (string, error)
}

// TranscriptionError wraps an engine failure.
type TranscriptionError struct {
	Engine string
	Err    error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("%s transcription failed: %v", e.Engine, e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// joinSegments trims each part and joins the non-empty ones with spaces.
func joinSegments(parts []string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// normalizeLanguage maps "auto" to the empty string, which both engines
// treat as auto-detect.
func normalizeLanguage(lang string) string {
	if strings.EqualFold(lang, "auto") {
		return ""
	}
	return lang
}
