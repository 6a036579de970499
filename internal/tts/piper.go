package tts

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/agalue/eve/internal/audio"
)

// PiperConfig runs the piper command line synthesizer.
type PiperConfig struct {
	Binary      string // defaults to "piper" on PATH
	Model       string // .onnx voice
	ModelConfig string // optional .onnx.json
	OutputPath  string // WAV destination; a temp file when empty
}

// Piper writes each reply to a WAV file with piper, then plays it.
type Piper struct {
	cfg    PiperConfig
	player Player
}

// NewPiper configures the engine. A binary missing from PATH only warns
// here; every Speak reports it until it is installed.
func NewPiper(cfg PiperConfig, player Player) (*Piper, error) {
	if cfg.Binary == "" {
		cfg.Binary = "piper"
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("piper: model path is empty")
	}
	if _, err := exec.LookPath(cfg.Binary); err != nil {
		log.Warn().Err(err).Str("binary", cfg.Binary).Msg("⚠️ Piper not found, replies will not be spoken")
	}
	return &Piper{cfg: cfg, player: player}, nil
}

// Synthesize runs piper on text and decodes the resulting WAV.
func (p *Piper) Synthesize(ctx context.Context, text string) (audio.Buffer, error) {
	out := p.cfg.OutputPath
	if out == "" {
		dir, err := os.MkdirTemp("", "eve-piper")
		if err != nil {
			return audio.Buffer{}, err
		}
		defer os.RemoveAll(dir)
		out = filepath.Join(dir, "reply.wav")
	}

	bin, err := exec.LookPath(p.cfg.Binary)
	if err != nil {
		return audio.Buffer{}, err
	}

	args := []string{"--model", p.cfg.Model, "--output_file", out}
	if p.cfg.ModelConfig != "" {
		args = append(args, "--config", p.cfg.ModelConfig)
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = strings.NewReader(singleLine(text) + "\n")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return audio.Buffer{}, fmt.Errorf("%w: %s", err, msg)
		}
		return audio.Buffer{}, err
	}

	buf, err := audio.ReadWAVFile(out)
	if err != nil {
		return audio.Buffer{}, fmt.Errorf("reading piper output: %w", err)
	}
	log.Debug().Str("file", out).Dur("audio", buf.Duration()).Msg("🎵 Piper wrote speech")
	return buf, nil
}

func (p *Piper) Speak(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return &SynthesisError{Engine: "piper", Err: fmt.Errorf("empty text")}
	}
	buf, err := p.Synthesize(ctx, text)
	if err != nil {
		return &SynthesisError{Engine: "piper", Err: err}
	}
	if p.player == nil {
		return nil
	}
	if err := p.player.Play(ctx, buf); err != nil {
		return &SynthesisError{Engine: "piper", Err: fmt.Errorf("playback: %w", err)}
	}
	return nil
}

// singleLine joins lines with spaces. piper speaks each input line as its
// own utterance and each one overwrites --output_file.
func singleLine(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
