package vad

import (
	"errors"
	"testing"
	"time"

	"github.com/agalue/eve/internal/audio"
)

const rate = 16000

func TestEnergyThreshold(t *testing.T) {
	g := NewEnergy(3.0, 300.0)

	baseline, err := g.Calibrate(audio.Tone(800*time.Millisecond, rate, 100))
	if err != nil {
		t.Fatal(err)
	}
	if baseline != 100 {
		t.Fatalf("baseline = %v, want 100", baseline)
	}
	if g.Threshold() != 600 {
		t.Fatalf("threshold = %v, want 600", g.Threshold())
	}

	tests := []struct {
		amp  int16
		want bool
	}{
		{0, false},
		{599, false},
		{600, false},
		{601, true},
		{5000, true},
	}
	for _, tt := range tests {
		got, err := g.IsVoice(audio.Tone(200*time.Millisecond, rate, tt.amp))
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("IsVoice(amp %d) = %v, want %v", tt.amp, got, tt.want)
		}
	}
}

func TestEnergySilentCalibrationFallsBack(t *testing.T) {
	g := NewEnergy(3.0, 300.0)
	baseline, err := g.Calibrate(audio.Silence(800*time.Millisecond, rate))
	if err != nil {
		t.Fatal(err)
	}
	if baseline != DefaultBaseline {
		t.Errorf("baseline = %v, want %v", baseline, DefaultBaseline)
	}
	if g.Threshold() != 900 {
		t.Errorf("threshold = %v, want 900", g.Threshold())
	}
}

func TestEnergyDeterministic(t *testing.T) {
	g := NewEnergy(3.0, 300.0)
	f := audio.Tone(200*time.Millisecond, rate, 950)
	first, _ := g.IsVoice(f)
	for i := 0; i < 5; i++ {
		if got, _ := g.IsVoice(f); got != first {
			t.Fatal("result changed between calls")
		}
	}
}

func TestEnergyEmptyFrame(t *testing.T) {
	g := NewEnergy(3.0, 300.0)
	var ife *InvalidFrameError
	if _, err := g.IsVoice(audio.Frame{SampleRate: rate}); !errors.As(err, &ife) {
		t.Errorf("IsVoice(empty) err = %v", err)
	}
	if _, err := g.Calibrate(audio.Frame{}); !errors.As(err, &ife) {
		t.Errorf("Calibrate(empty) err = %v", err)
	}
}

func TestWebRTCSilence(t *testing.T) {
	g, err := NewWebRTC(2)
	if err != nil {
		t.Fatal(err)
	}
	got, err := g.IsVoice(audio.Silence(30*time.Millisecond, rate))
	if err != nil {
		t.Fatal(err)
	}
	if got {
		t.Error("silence classified as speech")
	}
}

func TestWebRTCLongFrameSplits(t *testing.T) {
	g, err := NewWebRTC(2)
	if err != nil {
		t.Fatal(err)
	}
	// 1.2 s wake window, 40 sub-frames
	if _, err := g.IsVoice(audio.Silence(1200*time.Millisecond, rate)); err != nil {
		t.Fatal(err)
	}
	// 25 ms frame uses a 20 ms sub-frame and drops the rest
	if _, err := g.IsVoice(audio.Silence(25*time.Millisecond, rate)); err != nil {
		t.Fatal(err)
	}
}

func TestWebRTCInvalidFrames(t *testing.T) {
	g, err := NewWebRTC(2)
	if err != nil {
		t.Fatal(err)
	}
	tests := []struct {
		name  string
		frame audio.Frame
	}{
		{"too short", audio.Silence(5*time.Millisecond, rate)},
		{"empty", audio.Frame{SampleRate: rate}},
		{"bad rate", audio.Silence(30*time.Millisecond, 22050)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.IsVoice(tt.frame)
			var ife *InvalidFrameError
			if !errors.As(err, &ife) {
				t.Errorf("err = %v, want InvalidFrameError", err)
			}
		})
	}
}

func TestNewStrategies(t *testing.T) {
	g, err := New(Config{Strategy: StrategyEnergy, VoiceBoost: 3, NoiseFloorAdd: 300})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := g.(Calibrator); !ok {
		t.Error("energy gate should calibrate")
	}

	g, err = New(Config{Strategy: StrategyWebRTC, Aggressiveness: 2})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := g.(Calibrator); ok {
		t.Error("webrtc gate should not calibrate")
	}

	if _, err := New(Config{Strategy: "silero"}); err == nil {
		t.Error("expected error for unknown strategy")
	}
	if _, err := New(Config{Strategy: StrategyWebRTC, Aggressiveness: 7}); err == nil {
		t.Error("expected error for aggressiveness 7")
	}
}

func TestFrameDuration(t *testing.T) {
	if FrameDuration(StrategyEnergy) != 200*time.Millisecond {
		t.Error("energy frame")
	}
	if FrameDuration(StrategyWebRTC) != 30*time.Millisecond {
		t.Error("webrtc frame")
	}
}
