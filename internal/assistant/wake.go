// Package assistant runs the wake, listen, think and speak loop.
package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/agalue/eve/internal/audio"
	"github.com/agalue/eve/internal/stt"
	"github.com/agalue/eve/internal/trigger"
)

// Wake says why the listener returned.
type Wake struct {
	Transcript string // text of the window that matched, may be empty
	Manual     bool   // push-to-talk rather than the wake phrase
}

// WakeConfig holds the wake detection parameters.
type WakeConfig struct {
	Phrase       string
	Window       time.Duration
	PollInterval time.Duration
}

// WakeListener transcribes short windows until it hears the wake phrase or
// the manual trigger is held.
type WakeListener struct {
	src         audio.Source
	transcriber stt.Transcriber
	flag        *trigger.Flag
	phrase      string
	window      time.Duration
	poll        time.Duration
}

// NewWakeListener creates a listener. flag may be nil when push-to-talk is off.
func NewWakeListener(src audio.Source, transcriber stt.Transcriber, flag *trigger.Flag, cfg WakeConfig) *WakeListener {
	return &WakeListener{
		src:         src,
		transcriber: transcriber,
		flag:        flag,
		phrase:      strings.ToLower(strings.TrimSpace(cfg.Phrase)),
		window:      cfg.Window,
		poll:        cfg.PollInterval,
	}
}

// Listen blocks until a wake event, a capture failure or cancellation.
// The trigger flag is read once per window, after its transcription.
func (w *WakeListener) Listen(ctx context.Context) (Wake, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Wake{}, err
		}

		frame, err := w.src.CaptureFrame(ctx, w.window)
		if err != nil {
			return Wake{}, fmt.Errorf("capturing wake window: %w", err)
		}

		text := w.transcribe(ctx, frame)
		if w.phrase != "" && strings.Contains(strings.ToLower(text), w.phrase) {
			log.Info().Str("heard", text).Msg("🗣️ Wake word detected")
			return Wake{Transcript: text}, nil
		}
		if w.flag.IsSet() {
			log.Info().Msg("🗣️ Push-to-talk")
			return Wake{Transcript: text, Manual: true}, nil
		}
		if text != "" {
			log.Debug().Str("heard", text).Msg("Wake word not found, ignoring")
		}

		select {
		case <-ctx.Done():
			return Wake{}, ctx.Err()
		case <-time.After(w.poll):
		}
	}
}

// transcribe treats any recognition failure as silence.
func (w *WakeListener) transcribe(ctx context.Context, frame audio.Frame) string {
	if frame.Empty() {
		return ""
	}
	text, err := w.transcriber.Transcribe(ctx, frame.Samples, frame.SampleRate)
	if err != nil {
		var te *stt.TranscriptionError
		if errors.As(err, &te) {
			log.Debug().Err(err).Msg("Wake window not transcribed")
		} else {
			log.Warn().Err(err).Msg("Wake window not transcribed")
		}
		return ""
	}
	return strings.TrimSpace(text)
}
