package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog/log"
)

const (
	// captureRingSlots at 32 ms periods holds about four seconds of audio.
	captureRingSlots = 128

	// captureSlotSamples bounds one device period (32 ms at 48 kHz fits).
	captureSlotSamples = 2048

	// capturePollInterval is how long CaptureFrame sleeps when the ring is
	// empty. The audio thread delivers a period every 32 ms, so this only
	// bounds the spin rate.
	capturePollInterval = time.Millisecond

	// captureIdleTimeout stops forwarding audio once no capture follows the
	// previous one within this gap. The next capture starts from a clean ring.
	captureIdleTimeout = 250 * time.Millisecond
)

type captureSlot struct {
	samples [captureSlotSamples]float32
	n       int
}

// captureRing is a lock-free single-producer single-consumer queue between
// the malgo callback and CaptureFrame.
type captureRing struct {
	slots   [captureRingSlots]captureSlot
	head    atomic.Uint64
	tail    atomic.Uint64
	dropped atomic.Uint64
}

// pushBytes decodes little-endian float32 samples straight into the next slot.
func (r *captureRing) pushBytes(data []byte) {
	head, tail := r.head.Load(), r.tail.Load()
	if head-tail >= captureRingSlots {
		if n := r.dropped.Add(1); n%100 == 0 {
			log.Warn().Uint64("chunks", n).Msg("⚠️  Capture ring full, dropping audio")
		}
		return
	}
	slot := &r.slots[head%captureRingSlots]
	n := min(len(data)/4, captureSlotSamples)
	for i := 0; i < n; i++ {
		slot.samples[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	slot.n = n
	r.head.Add(1)
}

// popInto appends the oldest chunk to dst. ok is false when the ring is empty.
func (r *captureRing) popInto(dst []float32) ([]float32, bool) {
	head, tail := r.head.Load(), r.tail.Load()
	if head == tail {
		return dst, false
	}
	slot := &r.slots[tail%captureRingSlots]
	dst = append(dst, slot.samples[:slot.n]...)
	r.tail.Add(1)
	return dst, true
}

func (r *captureRing) reset() {
	r.tail.Store(r.head.Load())
}

// CaptureConfig selects the input device and target rate.
type CaptureConfig struct {
	SampleRate  int
	DeviceIndex int // -1 selects the system default
}

// Capturer records from a miniaudio input device. The device is opened once
// but only forwards audio during a run of back-to-back CaptureFrame calls.
// After an idle gap the buffered audio is discarded, so nothing the assistant
// says through the speaker is queued for later.
type Capturer struct {
	mu               sync.Mutex
	ctx              *malgo.AllocatedContext
	device           *malgo.Device
	sampleRate       int
	deviceSampleRate int
	recording        atomic.Bool
	ring             *captureRing
	resampler        *resampler // nil when the device runs at the target rate
	chunk            []float32
	pending          []float32 // target-rate samples left over from the last frame
	lastEnd          time.Time
	idle             *time.Timer
}

// NewCapturer opens the configured input device.
func NewCapturer(cfg CaptureConfig) (*Capturer, error) {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, &DeviceError{Op: "init context", Err: err}
	}

	c := &Capturer{ctx: mctx, sampleRate: cfg.SampleRate, ring: &captureRing{}}
	if err := c.openDevice(cfg.DeviceIndex); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Capturer) openDevice(index int) error {
	infos, err := c.ctx.Devices(malgo.Capture)
	if err != nil {
		return &DeviceError{Op: "enumerate", Err: err}
	}
	if len(infos) == 0 {
		return &DeviceError{Op: "enumerate", Err: errors.New("no input devices")}
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = 1
	deviceConfig.SampleRate = uint32(c.sampleRate)
	deviceConfig.PeriodSizeInMilliseconds = 32

	if index >= 0 {
		if index >= len(infos) {
			return &DeviceError{Op: "select", Err: fmt.Errorf("index %d out of range (%d devices)", index, len(infos))}
		}
		deviceConfig.Capture.DeviceID = infos[index].ID.Pointer()
		log.Info().Int("index", index).Str("name", infos[index].Name()).Msg("🎙️  Using input device")
	}

	onRecv := func(_, input []byte, _ uint32) {
		if c.recording.Load() {
			c.ring.pushBytes(input)
		}
	}
	device, err := malgo.InitDevice(c.ctx.Context, deviceConfig, malgo.DeviceCallbacks{Data: onRecv})
	if err != nil {
		return &DeviceError{Op: "init device", Err: err}
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		return &DeviceError{Op: "start device", Err: err}
	}
	c.device = device
	c.deviceSampleRate = int(device.SampleRate())

	if c.deviceSampleRate != c.sampleRate {
		c.resampler = newResampler(c.deviceSampleRate, c.sampleRate)
		log.Info().
			Int("from", c.deviceSampleRate).
			Int("to", c.sampleRate).
			Msg("🔄 Capture resampling enabled")
	}
	return nil
}

// CaptureFrame records d of audio and returns it as 16-bit PCM at the
// configured sample rate.
func (c *Capturer) CaptureFrame(ctx context.Context, d time.Duration) (Frame, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.device == nil {
		return Frame{}, &DeviceError{Op: "capture", Err: errors.New("device closed")}
	}

	if !c.recording.Load() {
		c.ring.reset()
		c.pending = c.pending[:0]
		if c.resampler != nil {
			c.resampler.reset()
		}
		c.recording.Store(true)
	}
	defer c.scheduleIdle()

	want := SamplesFor(d, c.sampleRate)
	for len(c.pending) < want {
		var ok bool
		if c.chunk, ok = c.ring.popInto(c.chunk[:0]); ok {
			if c.resampler != nil {
				c.pending = append(c.pending, c.resampler.process(c.chunk)...)
			} else {
				c.pending = append(c.pending, c.chunk...)
			}
			continue
		}
		select {
		case <-ctx.Done():
			return Frame{}, ctx.Err()
		case <-time.After(capturePollInterval):
		}
	}

	frame := Frame{Samples: FloatToPCM16(c.pending[:want]), SampleRate: c.sampleRate}
	c.pending = append(c.pending[:0], c.pending[want:]...)
	return frame, nil
}

// scheduleIdle arms the idle stop. Called with c.mu held.
func (c *Capturer) scheduleIdle() {
	c.lastEnd = time.Now()
	if c.idle == nil {
		c.idle = time.AfterFunc(captureIdleTimeout, c.stopIfIdle)
		return
	}
	c.idle.Reset(captureIdleTimeout)
}

func (c *Capturer) stopIfIdle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if time.Since(c.lastEnd) >= captureIdleTimeout {
		c.recording.Store(false)
	}
}

// Close stops the device and releases the audio context.
func (c *Capturer) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.idle != nil {
		c.idle.Stop()
	}
	c.recording.Store(false)
	if c.device != nil {
		_ = c.device.Stop()
		c.device.Uninit()
		c.device = nil
	}
	if c.ctx != nil {
		_ = c.ctx.Uninit()
		c.ctx.Free()
		c.ctx = nil
	}
	return nil
}
