package recorder

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/agalue/eve/internal/audio"
	"github.com/agalue/eve/internal/vad"
)

const (
	rate  = 16000
	frame = 30 * time.Millisecond
)

// levelGate calls anything louder than 500 RMS speech.
type levelGate struct{ calls int }

func (g *levelGate) IsVoice(f audio.Frame) (bool, error) {
	g.calls++
	return f.RMS() > 500, nil
}

func voice() audio.Frame   { return audio.Tone(frame, rate, 4000) }
func silence() audio.Frame { return audio.Silence(frame, rate) }

func repeat(f func() audio.Frame, n int) []audio.Frame {
	out := make([]audio.Frame, n)
	for i := range out {
		out[i] = f()
	}
	return out
}

func classifierConfig() Config {
	return Config{
		FrameDuration:  frame,
		SilenceTimeout: 1200 * time.Millisecond,
		MaxDuration:    15 * time.Second,
	}
}

func TestRecordContinuousSpeechHitsCap(t *testing.T) {
	src := audio.NewFakeSource(rate, repeat(voice, 1000)...)
	cfg := classifierConfig()
	r := New(src, &levelGate{}, cfg)

	utt, err := r.Record(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if utt.Cause != CauseMaxDuration {
		t.Errorf("cause = %v, want max-duration", utt.Cause)
	}
	if d := utt.Duration(); d < cfg.MaxDuration || d >= cfg.MaxDuration+frame {
		t.Errorf("duration = %v, want within [%v, %v)", d, cfg.MaxDuration, cfg.MaxDuration+frame)
	}
	if calls := len(src.Calls()); calls != 500 {
		t.Errorf("captured %d frames, want 500", calls)
	}
}

func TestRecordCapWithUnevenFrame(t *testing.T) {
	cfg := Config{FrameDuration: 70 * time.Millisecond, SilenceTimeout: time.Second, MaxDuration: time.Second}
	src := audio.NewFakeSource(rate, repeat(func() audio.Frame { return audio.Tone(70*time.Millisecond, rate, 4000) }, 100)...)
	utt, err := New(src, &levelGate{}, cfg).Record(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if d := utt.Duration(); d < time.Second || d >= time.Second+70*time.Millisecond {
		t.Errorf("duration = %v", d)
	}
}

func TestRecordAllSilenceIsEmpty(t *testing.T) {
	src := audio.NewFakeSource(rate, repeat(silence, 1000)...)
	utt, err := New(src, &levelGate{}, classifierConfig()).Record(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !utt.Empty() {
		t.Errorf("got %d samples, want none", len(utt.Samples))
	}
	if utt.Cause != CauseMaxDuration {
		t.Errorf("cause = %v, want max-duration", utt.Cause)
	}
}

func TestRecordSilenceTimeoutLength(t *testing.T) {
	tests := []struct {
		name           string
		n, m, k        int
		silenceTimeout time.Duration
	}{
		{"exact multiple", 5, 20, 100, 1200 * time.Millisecond},
		{"rounded up", 3, 7, 100, 1000 * time.Millisecond},
		{"voice first", 0, 1, 100, 90 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var frames []audio.Frame
			frames = append(frames, repeat(silence, tt.n)...)
			frames = append(frames, repeat(voice, tt.m)...)
			frames = append(frames, repeat(silence, tt.k)...)

			cfg := classifierConfig()
			cfg.SilenceTimeout = tt.silenceTimeout
			utt, err := New(audio.NewFakeSource(rate, frames...), &levelGate{}, cfg).Record(context.Background())
			if err != nil {
				t.Fatal(err)
			}

			trailing := int((tt.silenceTimeout + frame - 1) / frame)
			want := (tt.m + trailing) * audio.SamplesFor(frame, rate)
			if len(utt.Samples) != want {
				t.Errorf("len = %d, want %d", len(utt.Samples), want)
			}
			if utt.Cause != CauseSilence {
				t.Errorf("cause = %v, want silence", utt.Cause)
			}
		})
	}
}

func TestRecordPauseInsideSpeechContinues(t *testing.T) {
	var frames []audio.Frame
	frames = append(frames, repeat(voice, 10)...)
	frames = append(frames, repeat(silence, 30)...) // 900 ms, under the timeout
	frames = append(frames, repeat(voice, 10)...)
	frames = append(frames, repeat(silence, 100)...)

	utt, err := New(audio.NewFakeSource(rate, frames...), &levelGate{}, classifierConfig()).Record(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	want := (10 + 30 + 10 + 40) * audio.SamplesFor(frame, rate)
	if len(utt.Samples) != want {
		t.Errorf("len = %d, want %d", len(utt.Samples), want)
	}
}

func TestRecordEnergyKeepsAudioSinceCalibration(t *testing.T) {
	energyFrame := 200 * time.Millisecond
	frames := []audio.Frame{audio.Tone(800*time.Millisecond, rate, 100)} // calibration
	frames = append(frames, repeat(func() audio.Frame { return audio.Silence(energyFrame, rate) }, 2)...)
	frames = append(frames, repeat(func() audio.Frame { return audio.Tone(energyFrame, rate, 2000) }, 3)...)
	frames = append(frames, repeat(func() audio.Frame { return audio.Silence(energyFrame, rate) }, 20)...)

	cfg := Config{
		FrameDuration:     energyFrame,
		SilenceTimeout:    1200 * time.Millisecond,
		MaxDuration:       15 * time.Second,
		CalibrationWindow: 800 * time.Millisecond,
	}
	src := audio.NewFakeSource(rate, frames...)
	utt, err := New(src, vad.NewEnergy(3.0, 300.0), cfg).Record(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if utt.Baseline != 100 {
		t.Errorf("baseline = %v, want 100", utt.Baseline)
	}
	want := (2 + 3 + 6) * audio.SamplesFor(energyFrame, rate)
	if len(utt.Samples) != want {
		t.Errorf("len = %d, want %d", len(utt.Samples), want)
	}
	if calls := src.Calls(); calls[0] != 800*time.Millisecond {
		t.Errorf("first capture = %v, want calibration window", calls[0])
	}
}

func TestRecordEnergyNoVoiceIsEmpty(t *testing.T) {
	cfg := Config{
		FrameDuration:     200 * time.Millisecond,
		SilenceTimeout:    1200 * time.Millisecond,
		MaxDuration:       2 * time.Second,
		CalibrationWindow: 800 * time.Millisecond,
	}
	utt, err := New(audio.NewFakeSource(rate), vad.NewEnergy(3.0, 300.0), cfg).Record(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !utt.Empty() || utt.Cause != CauseMaxDuration {
		t.Errorf("got %d samples cause %v", len(utt.Samples), utt.Cause)
	}
	if utt.Baseline != vad.DefaultBaseline {
		t.Errorf("baseline = %v", utt.Baseline)
	}
}

func TestRecordPropagatesErrors(t *testing.T) {
	src := audio.NewFakeSource(rate)
	src.Err = &audio.DeviceError{Op: "capture", Err: errors.New("unplugged")}
	_, err := New(src, &levelGate{}, classifierConfig()).Record(context.Background())
	var de *audio.DeviceError
	if !errors.As(err, &de) {
		t.Errorf("err = %v, want DeviceError", err)
	}

	short := audio.NewFakeSource(rate, audio.Silence(5*time.Millisecond, rate))
	gate, err := vad.NewWebRTC(2)
	if err != nil {
		t.Fatal(err)
	}
	_, err = New(short, gate, classifierConfig()).Record(context.Background())
	var ife *vad.InvalidFrameError
	if !errors.As(err, &ife) {
		t.Errorf("err = %v, want InvalidFrameError", err)
	}
}

func TestRecordRejectsFramesWithoutDuration(t *testing.T) {
	tests := []struct {
		name  string
		frame audio.Frame
	}{
		{"no rate", audio.Frame{Samples: make([]int16, 480)}},
		{"no samples", audio.Frame{SampleRate: rate}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames := []audio.Frame{tt.frame}
			frames = append(frames, repeat(silence, 10)...)
			src := audio.NewFakeSource(rate, frames...)
			_, err := New(src, &levelGate{}, classifierConfig()).Record(context.Background())
			var ife *vad.InvalidFrameError
			if !errors.As(err, &ife) {
				t.Errorf("err = %v, want InvalidFrameError", err)
			}
		})
	}
}

func TestRecordCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r := New(audio.NewFakeSource(rate), &levelGate{}, classifierConfig())
	if _, err := r.Record(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v", err)
	}
	if r.State() != StateIdle {
		t.Errorf("state = %v after return", r.State())
	}
}

func TestStateStrings(t *testing.T) {
	for s, want := range map[State]string{
		StateIdle:           "idle",
		StateCalibrating:    "calibrating",
		StateAwaitingSpeech: "awaiting-speech",
		StateRecording:      "recording",
		StateFinalized:      "finalized",
	} {
		if s.String() != want {
			t.Errorf("%d.String() = %q", s, s.String())
		}
	}
}
