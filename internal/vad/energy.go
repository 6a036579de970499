package vad

import (
	"github.com/agalue/eve/internal/audio"
)

// DefaultBaseline stands in for a calibration capture with zero energy, which
// would otherwise make every frame look like speech.
const DefaultBaseline = 200.0

// Energy flags frames whose RMS exceeds baseline*boost + add.
type Energy struct {
	boost    float64
	add      float64
	baseline float64
}

// NewEnergy returns an energy gate calibrated to DefaultBaseline.
func NewEnergy(boost, add float64) *Energy {
	return &Energy{boost: boost, add: add, baseline: DefaultBaseline}
}

// Calibrate sets the baseline from a frame of background noise.
func (g *Energy) Calibrate(frame audio.Frame) (float64, error) {
	if frame.Empty() {
		return 0, &InvalidFrameError{SampleRate: frame.SampleRate, Reason: "empty calibration frame"}
	}
	g.baseline = frame.RMS()
	if g.baseline == 0 {
		g.baseline = DefaultBaseline
	}
	return g.baseline, nil
}

// Threshold is the RMS level a frame must exceed to count as speech.
func (g *Energy) Threshold() float64 {
	return g.baseline*g.boost + g.add
}

func (g *Energy) IsVoice(frame audio.Frame) (bool, error) {
	if frame.Empty() {
		return false, &InvalidFrameError{SampleRate: frame.SampleRate, Reason: "empty frame"}
	}
	return frame.RMS() > g.Threshold(), nil
}
