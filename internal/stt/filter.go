package stt

import (
	"context"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/agalue/eve/internal/audio"
)

// SpeechFilter drops non-speech before handing each segment to another
// engine. A buffer with no speech yields an empty transcript without
// calling the engine.
type SpeechFilter struct {
	next      Transcriber
	segmenter Segmenter
}

func NewSpeechFilter(next Transcriber, segmenter Segmenter) *SpeechFilter {
	return &SpeechFilter{next: next, segmenter: segmenter}
}

func (f *SpeechFilter) Transcribe(ctx context.Context, pcm []int16, sampleRate int) (string, error) {
	if len(pcm) == 0 {
		return "", nil
	}
	rate := f.segmenter.SampleRate()
	samples := audio.PCM16ToFloat(pcm)
	if sampleRate != rate {
		samples = audio.Resample(samples, sampleRate, rate)
	}

	segments, err := f.segmenter.Segments(samples)
	if err != nil {
		return "", &TranscriptionError{Engine: "silero", Err: err}
	}
	log.Debug().Int("segments", len(segments)).Msg("[STT] speech filter")

	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		text, err := f.next.Transcribe(ctx, audio.FloatToPCM16(seg), rate)
		if err != nil {
			return "", err
		}
		parts = append(parts, text)
	}
	return joinSegments(parts), nil
}

// Close closes the wrapped engine.
func (f *SpeechFilter) Close() error {
	if c, ok := f.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
