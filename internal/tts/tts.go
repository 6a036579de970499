// Package tts speaks text through a synthesis engine and the audio output.
package tts

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/agalue/eve/internal/audio"
)

// Speaker says text out loud and returns once playback has finished.
type Speaker interface {
	Speak(ctx context.Context, text string) error
}

// Player plays a buffer to completion.
type Player interface {
	Play(ctx context.Context, buf audio.Buffer) error
}

// SynthesisError wraps a synthesis or playback failure.
type SynthesisError struct {
	Engine string
	Err    error
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("%s synthesis failed: %v", e.Engine, e.Err)
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// SplitSentences breaks text at '.', '!', '?' and newlines so the first
// sentence can play while later ones are still being generated.
func SplitSentences(text string) []string {
	var (
		out []string
		cur strings.Builder
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			out = append(out, s)
		}
		cur.Reset()
	}
	for _, r := range text {
		cur.WriteRune(r)
		switch r {
		case '.', '!', '?', '\n':
			flush()
		}
	}
	flush()
	return out
}

// speakSentences synthesizes and plays text one sentence at a time. When
// outputPath is set the concatenated audio is also written as WAV.
func speakSentences(ctx context.Context, engine, text string, synth func(string) (audio.Buffer, error), player Player, outputPath string) error {
	sentences := SplitSentences(text)
	if len(sentences) == 0 {
		return &SynthesisError{Engine: engine, Err: fmt.Errorf("empty text")}
	}

	var all audio.Buffer
	for _, sentence := range sentences {
		buf, err := synth(sentence)
		if err != nil {
			return &SynthesisError{Engine: engine, Err: err}
		}
		log.Debug().Str("sentence", sentence).Dur("audio", buf.Duration()).Msg("🎵 Generated speech")

		if outputPath != "" {
			all.SampleRate = buf.SampleRate
			all.Samples = append(all.Samples, buf.Samples...)
		}
		if player != nil {
			if err := player.Play(ctx, buf); err != nil {
				return &SynthesisError{Engine: engine, Err: fmt.Errorf("playback: %w", err)}
			}
		}
	}

	if outputPath != "" {
		if err := audio.WriteWAVFile(outputPath, all); err != nil {
			return &SynthesisError{Engine: engine, Err: err}
		}
	}
	return nil
}
