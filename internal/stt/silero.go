package stt

import (
	"errors"

	"github.com/agalue/eve/internal/sherpa"
)

// Silero VAD parameters for the speech filter.
const (
	// vadMinSpeechDuration lets short answers like "yes" through.
	vadMinSpeechDuration = 0.1

	// vadMaxSpeechDuration forces segmentation of long utterances.
	vadMaxSpeechDuration = 30.0

	// vadWindowSize is 32 ms at 16 kHz.
	vadWindowSize = 512

	// vadBufferSeconds covers the longest command plus margin.
	vadBufferSeconds = 60.0
)

// Segmenter splits a buffer into its speech segments.
type Segmenter interface {
	Segments(samples []float32) ([][]float32, error)
	SampleRate() int
}

// SileroConfig configures the Silero speech segmenter.
type SileroConfig struct {
	Model           string
	Threshold       float32
	SilenceDuration float32 // seconds of silence that close a segment
	SampleRate      int
	Threads         int
}

// Silero finds speech with the Silero VAD model through sherpa-onnx.
type Silero struct {
	cfg *sherpa.VadModelConfig
}

func NewSilero(cfg SileroConfig) *Silero {
	vc := &sherpa.VadModelConfig{}
	vc.SileroVad.Model = cfg.Model
	vc.SileroVad.Threshold = cfg.Threshold
	vc.SileroVad.MinSilenceDuration = cfg.SilenceDuration
	vc.SileroVad.MinSpeechDuration = vadMinSpeechDuration
	vc.SileroVad.MaxSpeechDuration = vadMaxSpeechDuration
	vc.SileroVad.WindowSize = vadWindowSize
	vc.SampleRate = cfg.SampleRate
	vc.NumThreads = cfg.Threads
	return &Silero{cfg: vc}
}

func (s *Silero) SampleRate() int { return s.cfg.SampleRate }

// Segments runs the detector over the whole buffer. A detector is built per
// call so no state leaks between captures.
func (s *Silero) Segments(samples []float32) ([][]float32, error) {
	vad := sherpa.NewVoiceActivityDetector(s.cfg, vadBufferSeconds)
	if vad == nil {
		return nil, errors.New("failed to create VAD")
	}
	defer sherpa.DeleteVoiceActivityDetector(vad)

	var segments [][]float32
	drain := func() {
		for !vad.IsEmpty() {
			seg := vad.Front()
			vad.Pop()
			if len(seg.Samples) > 0 {
				segments = append(segments, append([]float32(nil), seg.Samples...))
			}
		}
	}
	for off := 0; off < len(samples); off += vadWindowSize {
		end := min(off+vadWindowSize, len(samples))
		vad.AcceptWaveform(samples[off:end])
		drain()
	}
	vad.Flush()
	drain()
	return segments, nil
}
