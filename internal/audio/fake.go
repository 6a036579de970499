package audio

import (
	"context"
	"errors"
	"sync"
	"time"
)

// FakeSource replays scripted frames for tests. Each call returns the next
// frame regardless of the requested duration. When the script runs out it
// keeps returning silence of the requested duration.
type FakeSource struct {
	mu         sync.Mutex
	frames     []Frame
	sampleRate int
	calls      []time.Duration
	closed     bool
	Err        error
}

// NewFakeSource returns a source that replays frames in order.
func NewFakeSource(sampleRate int, frames ...Frame) *FakeSource {
	return &FakeSource{frames: frames, sampleRate: sampleRate}
}

// Push appends more frames to the script.
func (s *FakeSource) Push(frames ...Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, frames...)
}

func (s *FakeSource) CaptureFrame(ctx context.Context, d time.Duration) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return Frame{}, &DeviceError{Op: "capture", Err: errors.New("closed")}
	}
	if s.Err != nil {
		return Frame{}, s.Err
	}
	s.calls = append(s.calls, d)
	if len(s.frames) == 0 {
		return Frame{Samples: make([]int16, SamplesFor(d, s.sampleRate)), SampleRate: s.sampleRate}, nil
	}
	f := s.frames[0]
	s.frames = s.frames[1:]
	return f, nil
}

// Calls returns the durations requested so far.
func (s *FakeSource) Calls() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.calls...)
}

func (s *FakeSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Tone returns a frame of d filled with a constant amplitude.
func Tone(d time.Duration, sampleRate int, amplitude int16) Frame {
	samples := make([]int16, SamplesFor(d, sampleRate))
	for i := range samples {
		if i%2 == 0 {
			samples[i] = amplitude
		} else {
			samples[i] = -amplitude
		}
	}
	return Frame{Samples: samples, SampleRate: sampleRate}
}

// Silence returns a zeroed frame of d.
func Silence(d time.Duration, sampleRate int) Frame {
	return Frame{Samples: make([]int16, SamplesFor(d, sampleRate)), SampleRate: sampleRate}
}
