package stt

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/agalue/eve/internal/audio"
	"github.com/agalue/eve/internal/sherpa"
)

// SherpaConfig configures the sherpa-onnx Whisper transcriber.
type SherpaConfig struct {
	WhisperEncoder string
	WhisperDecoder string
	WhisperTokens  string
	Language       string // "auto" detects
	Provider       string // cpu, cuda, coreml
	Threads        int
	SampleRate     int
	Verbose        bool

	// VADFilter runs Silero VAD first and decodes only speech segments.
	VADFilter          bool
	VADModel           string
	VADThreshold       float32
	VADSilenceDuration float32
	VADThreads         int
}

// Sherpa transcribes with Whisper through sherpa-onnx.
type Sherpa struct {
	mu         sync.Mutex
	recognizer *sherpa.OfflineRecognizer
	segmenter  Segmenter
	sampleRate int
	verbose    bool
}

// NewSherpa loads the Whisper model.
func NewSherpa(cfg *SherpaConfig) (*Sherpa, error) {
	rc := &sherpa.OfflineRecognizerConfig{}
	rc.ModelConfig.Whisper.Encoder = cfg.WhisperEncoder
	rc.ModelConfig.Whisper.Decoder = cfg.WhisperDecoder
	rc.ModelConfig.Whisper.Language = normalizeLanguage(cfg.Language)
	rc.ModelConfig.Whisper.Task = "transcribe"
	rc.ModelConfig.Whisper.TailPaddings = -1
	rc.ModelConfig.Tokens = cfg.WhisperTokens
	rc.ModelConfig.NumThreads = cfg.Threads
	rc.ModelConfig.Provider = cfg.Provider
	rc.DecodingMethod = "greedy_search"
	if cfg.Verbose {
		rc.ModelConfig.Debug = 1
	}

	recognizer := sherpa.NewOfflineRecognizer(rc)
	if recognizer == nil {
		return nil, errors.New("failed to create offline recognizer")
	}

	s := &Sherpa{recognizer: recognizer, sampleRate: cfg.SampleRate, verbose: cfg.Verbose}
	if cfg.VADFilter {
		s.segmenter = NewSilero(SileroConfig{
			Model:           cfg.VADModel,
			Threshold:       cfg.VADThreshold,
			SilenceDuration: cfg.VADSilenceDuration,
			SampleRate:      cfg.SampleRate,
			Threads:         cfg.VADThreads,
		})
	}
	return s, nil
}

// Transcribe decodes pcm. With the VAD filter enabled, non-speech is dropped
// first and an all-silent buffer yields an empty string.
func (s *Sherpa) Transcribe(ctx context.Context, pcm []int16, sampleRate int) (string, error) {
	if len(pcm) == 0 {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recognizer == nil {
		return "", &TranscriptionError{Engine: "sherpa", Err: errors.New("recognizer closed")}
	}

	samples := audio.PCM16ToFloat(pcm)
	if sampleRate != s.sampleRate {
		samples = audio.Resample(samples, sampleRate, s.sampleRate)
	}

	start := time.Now()
	segments := [][]float32{samples}
	if s.segmenter != nil {
		var err error
		if segments, err = s.segmenter.Segments(samples); err != nil {
			return "", &TranscriptionError{Engine: "sherpa", Err: err}
		}
	}

	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		text, err := s.decode(seg)
		if err != nil {
			return "", &TranscriptionError{Engine: "sherpa", Err: err}
		}
		parts = append(parts, text)
	}

	text := joinSegments(parts)
	log.Debug().
		Int("segments", len(segments)).
		Dur("took", time.Since(start)).
		Str("text", text).
		Msg("[STT] transcribed")
	return text, nil
}

func (s *Sherpa) decode(samples []float32) (string, error) {
	if s.verbose {
		log.Debug().Float64("seconds", float64(len(samples))/float64(s.sampleRate)).Msg("[STT] decoding segment")
	}
	stream := sherpa.NewOfflineStream(s.recognizer)
	if stream == nil {
		return "", fmt.Errorf("failed to create offline stream")
	}
	defer sherpa.DeleteOfflineStream(stream)

	stream.AcceptWaveform(s.sampleRate, samples)
	s.recognizer.Decode(stream)
	return stream.GetResult().Text, nil
}

// Close releases the recognizer.
func (s *Sherpa) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.recognizer != nil {
		sherpa.DeleteOfflineRecognizer(s.recognizer)
		s.recognizer = nil
	}
	return nil
}
