// Package recorder captures one spoken command, stopping on trailing silence
// or a hard duration cap.
package recorder

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/agalue/eve/internal/audio"
	"github.com/agalue/eve/internal/vad"
)

// State of a recording attempt.
type State int32

const (
	StateIdle State = iota
	StateCalibrating
	StateAwaitingSpeech
	StateRecording
	StateFinalized
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCalibrating:
		return "calibrating"
	case StateAwaitingSpeech:
		return "awaiting-speech"
	case StateRecording:
		return "recording"
	case StateFinalized:
		return "finalized"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Cause explains why a recording stopped.
type Cause int

const (
	CauseSilence Cause = iota + 1
	CauseMaxDuration
)

func (c Cause) String() string {
	switch c {
	case CauseSilence:
		return "silence"
	case CauseMaxDuration:
		return "max-duration"
	default:
		return "unknown"
	}
}

// Config holds the timing parameters.
type Config struct {
	FrameDuration     time.Duration
	SilenceTimeout    time.Duration
	MaxDuration       time.Duration
	CalibrationWindow time.Duration // calibrated gates only
}

// Utterance is the audio of one command.
type Utterance struct {
	Samples    []int16
	SampleRate int
	Cause      Cause
	Baseline   float64 // zero unless the gate was calibrated
}

// Empty reports whether no speech was captured.
func (u *Utterance) Empty() bool {
	return len(u.Samples) == 0
}

// Duration of the captured audio.
func (u *Utterance) Duration() time.Duration {
	return audio.Frame{Samples: u.Samples, SampleRate: u.SampleRate}.Duration()
}

// Recorder drives a Source and a Gate through one command capture per call.
type Recorder struct {
	src   audio.Source
	gate  vad.Gate
	cfg   Config
	state atomic.Int32
}

// New returns a recorder reading from src and classifying with gate.
func New(src audio.Source, gate vad.Gate, cfg Config) *Recorder {
	return &Recorder{src: src, gate: gate, cfg: cfg}
}

// State reports the current state, for diagnostics.
func (r *Recorder) State() State {
	return State(r.state.Load())
}

func (r *Recorder) setState(s State) {
	if prev := State(r.state.Swap(int32(s))); prev != s {
		log.Debug().Stringer("from", prev).Stringer("to", s).Msg("recorder state")
	}
}

// Record captures a single utterance.
//
// Elapsed time is the sum of captured frame durations. The loop ends when
// the time since the last voice frame reaches SilenceTimeout or when elapsed
// time reaches MaxDuration, whichever comes first; the cap is checked every
// frame, so continuous speech still ends within MaxDuration plus one frame.
// If no frame is ever classified as voice the utterance is empty.
func (r *Recorder) Record(ctx context.Context) (*Utterance, error) {
	defer r.setState(StateIdle)

	utt := &Utterance{}
	calibrator, keepAll := r.gate.(vad.Calibrator)
	if keepAll {
		r.setState(StateCalibrating)
		frame, err := r.src.CaptureFrame(ctx, r.cfg.CalibrationWindow)
		if err != nil {
			return nil, err
		}
		if utt.Baseline, err = calibrator.Calibrate(frame); err != nil {
			return nil, err
		}
		log.Debug().Float64("baseline", utt.Baseline).Msg("🎚️ Calibrated noise floor")
	}

	r.setState(StateAwaitingSpeech)
	var (
		buf       []int16
		started   bool
		elapsed   time.Duration
		lastVoice time.Duration
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frame, err := r.src.CaptureFrame(ctx, r.cfg.FrameDuration)
		if err != nil {
			return nil, err
		}
		if frame.Duration() <= 0 {
			return nil, &vad.InvalidFrameError{Samples: len(frame.Samples), SampleRate: frame.SampleRate, Reason: "frame has no duration"}
		}
		if utt.SampleRate == 0 {
			utt.SampleRate = frame.SampleRate
		}
		elapsed += frame.Duration()

		voice, err := r.gate.IsVoice(frame)
		if err != nil {
			return nil, err
		}
		if voice {
			if !started {
				started = true
				r.setState(StateRecording)
			}
			lastVoice = elapsed
		}
		if started || keepAll {
			buf = append(buf, frame.Samples...)
		}

		if elapsed >= r.cfg.MaxDuration {
			utt.Cause = CauseMaxDuration
			break
		}
		if started && elapsed-lastVoice >= r.cfg.SilenceTimeout {
			utt.Cause = CauseSilence
			break
		}
	}

	r.setState(StateFinalized)
	if started {
		utt.Samples = buf
	}
	log.Debug().
		Stringer("cause", utt.Cause).
		Dur("audio", utt.Duration()).
		Msg("recording finished")
	return utt, nil
}
