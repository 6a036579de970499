package tts

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/agalue/eve/internal/audio"
	"github.com/agalue/eve/internal/sherpa"
)

// KokoroConfig points at a Kokoro multi-lingual model directory.
type KokoroConfig struct {
	Model      string
	Voices     string
	Tokens     string
	DataDir    string // espeak-ng-data
	Lexicon    string // optional, comma separated
	Language   string // espeak code, e.g. "en-us"
	SpeakerID  int
	Speed      float32
	Provider   string
	Threads    int
	Verbose    bool
	OutputPath string // optional WAV copy of each reply
}

// Kokoro synthesizes speech locally with sherpa-onnx.
type Kokoro struct {
	mu         sync.Mutex
	tts        *sherpa.OfflineTts
	speakerID  int
	speed      float32
	player     Player
	outputPath string
}

// NewKokoro loads the model. player may be nil to only write OutputPath.
func NewKokoro(cfg *KokoroConfig, player Player) (*Kokoro, error) {
	tc := &sherpa.OfflineTtsConfig{}
	tc.Model.Kokoro.Model = cfg.Model
	tc.Model.Kokoro.Voices = cfg.Voices
	tc.Model.Kokoro.Tokens = cfg.Tokens
	tc.Model.Kokoro.DataDir = cfg.DataDir
	tc.Model.Kokoro.Lexicon = cfg.Lexicon
	tc.Model.Kokoro.Lang = cfg.Language
	tc.Model.Kokoro.LengthScale = 1.0 / cfg.Speed
	tc.Model.NumThreads = cfg.Threads
	tc.Model.Provider = cfg.Provider
	tc.MaxNumSentences = 1 // Kokoro only supports 1
	if cfg.Verbose {
		tc.Model.Debug = 1
	}

	t := sherpa.NewOfflineTts(tc)
	if t == nil {
		return nil, errors.New("failed to create Kokoro TTS")
	}
	return &Kokoro{
		tts:        t,
		speakerID:  cfg.SpeakerID,
		speed:      cfg.Speed,
		player:     player,
		outputPath: cfg.OutputPath,
	}, nil
}

// Synthesize renders one piece of text.
func (k *Kokoro) Synthesize(text string) (audio.Buffer, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.tts == nil {
		return audio.Buffer{}, errors.New("tts closed")
	}
	generated := k.tts.Generate(strings.TrimSpace(text), k.speakerID, k.speed)
	if generated == nil || len(generated.Samples) == 0 {
		return audio.Buffer{}, errors.New("generation produced no audio")
	}
	return audio.Buffer{Samples: generated.Samples, SampleRate: int(generated.SampleRate)}, nil
}

func (k *Kokoro) Speak(ctx context.Context, text string) error {
	return speakSentences(ctx, "kokoro", text, k.Synthesize, k.player, k.outputPath)
}

// Close releases the model.
func (k *Kokoro) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.tts != nil {
		sherpa.DeleteOfflineTts(k.tts)
		k.tts = nil
	}
	return nil
}
