// Package audio provides microphone capture, playback and PCM helpers.
package audio

import (
	"context"
	"fmt"
	"math"
	"time"
)

// Frame is a block of mono 16-bit PCM audio.
type Frame struct {
	Samples    []int16
	SampleRate int
}

// Empty reports whether the frame carries no audio.
func (f Frame) Empty() bool {
	return len(f.Samples) == 0
}

// Duration is derived from the sample count and rate.
func (f Frame) Duration() time.Duration {
	if f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(f.Samples)) * time.Second / time.Duration(f.SampleRate)
}

// RMS returns the root-mean-square energy of the samples in PCM units.
func (f Frame) RMS() float64 {
	return RMS(f.Samples)
}

// Source delivers fixed-duration frames from an input device.
type Source interface {
	// CaptureFrame blocks for roughly d while sampling the device.
	CaptureFrame(ctx context.Context, d time.Duration) (Frame, error)
	Close() error
}

// DeviceError reports an unavailable or misconfigured input device.
type DeviceError struct {
	Op  string
	Err error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("audio device: %s: %v", e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error { return e.Err }

// SamplesFor returns the number of samples d spans at rate.
func SamplesFor(d time.Duration, rate int) int {
	return int(int64(rate) * int64(d) / int64(time.Second))
}

// FloatToPCM16 clamps samples to [-1, 1] and scales them by 32767.
func FloatToPCM16(in []float32) []int16 {
	out := make([]int16, len(in))
	for i, s := range in {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		out[i] = int16(s * 32767)
	}
	return out
}

// PCM16ToFloat is the inverse of FloatToPCM16.
func PCM16ToFloat(in []int16) []float32 {
	out := make([]float32, len(in))
	for i, s := range in {
		out[i] = float32(s) / 32767
	}
	return out
}

// PCM16Bytes encodes samples as little-endian bytes.
func PCM16Bytes(in []int16) []byte {
	out := make([]byte, len(in)*2)
	for i, s := range in {
		out[2*i] = byte(uint16(s))
		out[2*i+1] = byte(uint16(s) >> 8)
	}
	return out
}

// RMS returns the root-mean-square of samples, or 0 for no samples.
func RMS(samples []int16) float64 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		v := float64(s)
		sum += v * v
	}
	return math.Sqrt(sum / float64(len(samples)))
}
