package stt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go/pkg/whisper"
	"github.com/rs/zerolog/log"

	"github.com/agalue/eve/internal/audio"
)

// WhisperCPP transcribes with a GGML model through the whisper.cpp bindings.
// The model is shared; a context is created per call.
type WhisperCPP struct {
	mu       sync.Mutex
	model    whisper.Model
	language string
	threads  int
}

// NewWhisperCPP loads the model at path. language may be "auto".
func NewWhisperCPP(path, language string, threads int) (*WhisperCPP, error) {
	if path == "" {
		return nil, errors.New("whisper.cpp model path is empty")
	}
	model, err := whisper.New(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load whisper.cpp model %q: %w", path, err)
	}
	return &WhisperCPP{model: model, language: language, threads: threads}, nil
}

func (w *WhisperCPP) Transcribe(ctx context.Context, pcm []int16, sampleRate int) (string, error) {
	if len(pcm) == 0 {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.model == nil {
		return "", &TranscriptionError{Engine: "whisper.cpp", Err: errors.New("model closed")}
	}

	samples := audio.PCM16ToFloat(pcm)
	if sampleRate != whisper.SampleRate {
		samples = audio.Resample(samples, sampleRate, whisper.SampleRate)
	}

	wctx, err := w.model.NewContext()
	if err != nil {
		return "", &TranscriptionError{Engine: "whisper.cpp", Err: err}
	}
	if w.language != "" {
		if err := wctx.SetLanguage(w.language); err != nil {
			log.Warn().Err(err).Str("language", w.language).Msg("whisper.cpp: language not supported, using default")
		}
	}
	if w.threads > 0 {
		wctx.SetThreads(uint(w.threads))
	}

	if err := wctx.Process(samples, nil, nil, nil); err != nil {
		return "", &TranscriptionError{Engine: "whisper.cpp", Err: err}
	}

	var parts []string
	for {
		seg, err := wctx.NextSegment()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", &TranscriptionError{Engine: "whisper.cpp", Err: err}
		}
		parts = append(parts, seg.Text)
	}
	return joinSegments(parts), nil
}

// Close frees the model.
func (w *WhisperCPP) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.model == nil {
		return nil
	}
	err := w.model.Close()
	w.model = nil
	return err
}
