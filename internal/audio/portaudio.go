package audio

import (
	"context"
	"fmt"
	"time"

	"github.com/gordonklaus/portaudio"
)

// PortAudioSource captures through PortAudio, opening a blocking input stream
// for every frame.
type PortAudioSource struct {
	device     *portaudio.DeviceInfo
	sampleRate int
}

// NewPortAudioSource initializes PortAudio and resolves the input device.
// A negative index selects the default input.
func NewPortAudioSource(cfg CaptureConfig) (*PortAudioSource, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, &DeviceError{Op: "init portaudio", Err: err}
	}
	dev, err := inputDevice(cfg.DeviceIndex)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}
	return &PortAudioSource{device: dev, sampleRate: cfg.SampleRate}, nil
}

func inputDevice(index int) (*portaudio.DeviceInfo, error) {
	if index < 0 {
		dev, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, &DeviceError{Op: "default input", Err: err}
		}
		return dev, nil
	}
	devices, err := portaudio.Devices()
	if err != nil {
		return nil, &DeviceError{Op: "enumerate", Err: err}
	}
	if index >= len(devices) {
		return nil, &DeviceError{Op: "select", Err: fmt.Errorf("index %d out of range (%d devices)", index, len(devices))}
	}
	if devices[index].MaxInputChannels < 1 {
		return nil, &DeviceError{Op: "select", Err: fmt.Errorf("device %d (%s) has no inputs", index, devices[index].Name)}
	}
	return devices[index], nil
}

// CaptureFrame reads d of audio. PortAudio reads cannot be interrupted, so ctx
// is only checked before the stream opens.
func (s *PortAudioSource) CaptureFrame(ctx context.Context, d time.Duration) (Frame, error) {
	if err := ctx.Err(); err != nil {
		return Frame{}, err
	}

	buf := make([]float32, SamplesFor(d, s.sampleRate))
	params := portaudio.LowLatencyParameters(s.device, nil)
	params.Input.Channels = 1
	params.SampleRate = float64(s.sampleRate)
	params.FramesPerBuffer = len(buf)

	stream, err := portaudio.OpenStream(params, buf)
	if err != nil {
		return Frame{}, &DeviceError{Op: "open stream", Err: err}
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return Frame{}, &DeviceError{Op: "start stream", Err: err}
	}
	defer stream.Stop()

	if err := stream.Read(); err != nil {
		return Frame{}, &DeviceError{Op: "read", Err: err}
	}
	return Frame{Samples: FloatToPCM16(buf), SampleRate: s.sampleRate}, nil
}

// Close terminates PortAudio.
func (s *PortAudioSource) Close() error {
	return portaudio.Terminate()
}
