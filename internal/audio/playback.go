package audio

import (
	"context"
	"encoding/binary"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog/log"
)

// playbackRingSize holds about 22 seconds at 24 kHz.
const playbackRingSize = 1 << 19

// Buffer is floating-point mono audio ready for playback.
type Buffer struct {
	Samples    []float32
	SampleRate int
}

// Duration of the buffer at its sample rate.
func (b Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(b.Samples)) * time.Second / time.Duration(b.SampleRate)
}

type playbackRing struct {
	samples [playbackRingSize]float32
	head    atomic.Uint64
	tail    atomic.Uint64
}

func (r *playbackRing) push(samples []float32) int {
	head := r.head.Load()
	n := min(len(samples), playbackRingSize-int(head-r.tail.Load()))
	for i := 0; i < n; i++ {
		r.samples[(head+uint64(i))%playbackRingSize] = samples[i]
	}
	r.head.Add(uint64(n))
	return n
}

func (r *playbackRing) pop() (float32, bool) {
	tail := r.tail.Load()
	if r.head.Load() == tail {
		return 0, false
	}
	s := r.samples[tail%playbackRingSize]
	r.tail.Add(1)
	return s, true
}

func (r *playbackRing) empty() bool { return r.head.Load() == r.tail.Load() }

func (r *playbackRing) clear() { r.tail.Store(r.head.Load()) }

// Player plays buffers through a persistent miniaudio output device.
type Player struct {
	mu         sync.Mutex
	ctx        *malgo.AllocatedContext
	device     *malgo.Device
	deviceRate int
	ring       *playbackRing
	drained    chan struct{}
}

// NewPlayer opens the default output device. bufferMs is the device period;
// 0 selects 100 ms, which suits Bluetooth headsets.
func NewPlayer(bufferMs uint32) (*Player, error) {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, &DeviceError{Op: "init context", Err: err}
	}
	if bufferMs == 0 {
		bufferMs = 100
	}

	p := &Player{ctx: mctx, ring: &playbackRing{}, drained: make(chan struct{}, 1)}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Playback)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = 1
	deviceConfig.PeriodSizeInMilliseconds = bufferMs
	if deviceConfig.SampleRate == 0 {
		deviceConfig.SampleRate = 48000
	}

	onSend := func(output, _ []byte, frames uint32) {
		for i := 0; i < int(frames); i++ {
			s, _ := p.ring.pop()
			binary.LittleEndian.PutUint32(output[i*4:], math.Float32bits(s))
		}
		if p.ring.empty() {
			select {
			case p.drained <- struct{}{}:
			default:
			}
		}
	}

	device, err := malgo.InitDevice(mctx.Context, deviceConfig, malgo.DeviceCallbacks{Data: onSend})
	if err != nil {
		p.Close()
		return nil, &DeviceError{Op: "init playback", Err: err}
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		p.Close()
		return nil, &DeviceError{Op: "start playback", Err: err}
	}
	p.device = device
	p.deviceRate = int(device.SampleRate())

	log.Info().Int("rate", p.deviceRate).Uint32("buffer_ms", bufferMs).Msg("🔊 Playback device started")
	return p, nil
}

// Play queues the buffer and blocks until it has drained, ctx is cancelled
// or a timeout of the buffer length plus two seconds passes.
func (p *Player) Play(ctx context.Context, buf Buffer) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	samples := Resample(buf.Samples, buf.SampleRate, p.deviceRate)
	select {
	case <-p.drained:
	default:
	}
	if n := p.ring.push(samples); n < len(samples) {
		log.Warn().Int("dropped", len(samples)-n).Msg("⚠️  Playback buffer overflow")
	}

	timeout := time.NewTimer(buf.Duration() + 2*time.Second)
	defer timeout.Stop()

	for !p.ring.empty() {
		select {
		case <-ctx.Done():
			p.ring.clear()
			return ctx.Err()
		case <-timeout.C:
			log.Warn().Msg("⚠️  Playback timeout exceeded")
			p.ring.clear()
			return nil
		case <-p.drained:
		case <-time.After(50 * time.Millisecond):
		}
	}
	return nil
}

// Close stops the output device.
func (p *Player) Close() error {
	p.ring.clear()
	if p.device != nil {
		_ = p.device.Stop()
		p.device.Uninit()
		p.device = nil
	}
	if p.ctx != nil {
		_ = p.ctx.Uninit()
		p.ctx.Free()
		p.ctx = nil
	}
	return nil
}
