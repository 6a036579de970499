package vad

import (
	"fmt"

	webrtcvad "github.com/maxhawkins/go-webrtcvad"

	"github.com/agalue/eve/internal/audio"
)

// webrtcFrameMs are the sub-frame lengths the classifier accepts, longest first.
var webrtcFrameMs = []int{30, 20, 10}

// WebRTC wraps the WebRTC voice activity classifier.
type WebRTC struct {
	vad *webrtcvad.VAD
}

// NewWebRTC creates a classifier with the given aggressiveness (0-3).
func NewWebRTC(aggressiveness int) (*WebRTC, error) {
	if aggressiveness < 0 || aggressiveness > 3 {
		return nil, fmt.Errorf("vad aggressiveness %d out of range 0-3", aggressiveness)
	}
	v, err := webrtcvad.New()
	if err != nil {
		return nil, err
	}
	if err := v.SetMode(aggressiveness); err != nil {
		return nil, err
	}
	return &WebRTC{vad: v}, nil
}

// IsVoice splits the frame into the longest supported sub-frames and reports
// speech if any of them is speech. A trailing partial sub-frame is ignored.
func (g *WebRTC) IsVoice(frame audio.Frame) (bool, error) {
	switch frame.SampleRate {
	case 8000, 16000, 32000, 48000:
	default:
		return false, &InvalidFrameError{Samples: len(frame.Samples), SampleRate: frame.SampleRate, Reason: "unsupported sample rate"}
	}

	size := 0
	for _, ms := range webrtcFrameMs {
		if n := frame.SampleRate * ms / 1000; len(frame.Samples) >= n {
			size = n
			break
		}
	}
	if size == 0 {
		return false, &InvalidFrameError{Samples: len(frame.Samples), SampleRate: frame.SampleRate, Reason: "shorter than 10 ms"}
	}

	pcm := audio.PCM16Bytes(frame.Samples)
	step := size * 2
	for off := 0; off+step <= len(pcm); off += step {
		active, err := g.vad.Process(frame.SampleRate, pcm[off:off+step])
		if err != nil {
			return false, &InvalidFrameError{Samples: len(frame.Samples), SampleRate: frame.SampleRate, Reason: err.Error()}
		}
		if active {
			return true, nil
		}
	}
	return false, nil
}
