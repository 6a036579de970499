// Package vad classifies PCM frames as speech or silence.
package vad

import (
	"fmt"
	"time"

	"github.com/agalue/eve/internal/audio"
)

// Gate decides whether a single frame contains speech. Results depend only on
// the frame and, for calibrated gates, the current baseline.
type Gate interface {
	IsVoice(frame audio.Frame) (bool, error)
}

// Calibrator is a Gate that needs a silent reference capture before use.
// Calibrated gates keep every frame after calibration, not just the ones
// after speech starts.
type Calibrator interface {
	Gate
	Calibrate(frame audio.Frame) (baseline float64, err error)
}

// InvalidFrameError reports a frame the gate cannot classify.
type InvalidFrameError struct {
	Samples    int
	SampleRate int
	Reason     string
}

func (e *InvalidFrameError) Error() string {
	return fmt.Sprintf("invalid frame (%d samples at %d Hz): %s", e.Samples, e.SampleRate, e.Reason)
}

// Strategy names a gate implementation.
type Strategy string

const (
	StrategyWebRTC Strategy = "webrtc"
	StrategyEnergy Strategy = "energy"
)

// Config selects and tunes a gate.
type Config struct {
	Strategy       Strategy
	Aggressiveness int     // webrtc: 0 (least) to 3 (most aggressive)
	VoiceBoost     float64 // energy: baseline multiplier
	NoiseFloorAdd  float64 // energy: constant added to the scaled baseline
}

// New builds the gate named by cfg.Strategy.
func New(cfg Config) (Gate, error) {
	switch cfg.Strategy {
	case StrategyWebRTC, "":
		return NewWebRTC(cfg.Aggressiveness)
	case StrategyEnergy:
		return NewEnergy(cfg.VoiceBoost, cfg.NoiseFloorAdd), nil
	default:
		return nil, fmt.Errorf("unknown vad strategy %q", cfg.Strategy)
	}
}

// FrameDuration is the capture frame size each strategy works best with.
func FrameDuration(s Strategy) time.Duration {
	if s == StrategyEnergy {
		return 200 * time.Millisecond
	}
	return 30 * time.Millisecond
}
