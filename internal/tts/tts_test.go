package tts

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/agalue/eve/internal/audio"
)

type recordingPlayer struct {
	played []audio.Buffer
	err    error
}

func (p *recordingPlayer) Play(_ context.Context, buf audio.Buffer) error {
	p.played = append(p.played, buf)
	return p.err
}

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"It's 3 PM.", []string{"It's 3 PM."}},
		{"Hey, what's up? What can I do for you?", []string{"Hey, what's up?", "What can I do for you?"}},
		{"Line one\nline two", []string{"Line one", "line two"}},
		{"Wow! No period at the end", []string{"Wow!", "No period at the end"}},
	}
	for _, tt := range tests {
		got := SplitSentences(tt.in)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") || len(got) != len(tt.want) {
			t.Errorf("SplitSentences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSpeakSentencesPlaysEach(t *testing.T) {
	player := &recordingPlayer{}
	var asked []string
	synth := func(s string) (audio.Buffer, error) {
		asked = append(asked, s)
		return audio.Buffer{Samples: make([]float32, 2400), SampleRate: 24000}, nil
	}
	out := filepath.Join(t.TempDir(), "reply.wav")

	if err := speakSentences(context.Background(), "test", "One. Two!", synth, player, out); err != nil {
		t.Fatal(err)
	}
	if len(asked) != 2 || asked[0] != "One." || asked[1] != "Two!" {
		t.Errorf("synth calls = %q", asked)
	}
	if len(player.played) != 2 {
		t.Errorf("played %d buffers", len(player.played))
	}
	buf, err := audio.ReadWAVFile(out)
	if err != nil {
		t.Fatal(err)
	}
	if buf.Duration() != 200*time.Millisecond {
		t.Errorf("wav duration = %v", buf.Duration())
	}
}

func TestSpeakSentencesErrors(t *testing.T) {
	ok := func(string) (audio.Buffer, error) { return audio.Buffer{Samples: []float32{0}, SampleRate: 24000}, nil }
	fail := func(string) (audio.Buffer, error) { return audio.Buffer{}, errors.New("model exploded") }

	tests := []struct {
		name   string
		text   string
		synth  func(string) (audio.Buffer, error)
		player Player
	}{
		{"empty text", "  ", ok, &recordingPlayer{}},
		{"synth failure", "Hello.", fail, &recordingPlayer{}},
		{"playback failure", "Hello.", ok, &recordingPlayer{err: errors.New("no device")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := speakSentences(context.Background(), "test", tt.text, tt.synth, tt.player, "")
			var se *SynthesisError
			if !errors.As(err, &se) {
				t.Errorf("err = %v, want SynthesisError", err)
			}
		})
	}
}

func TestPiperMissingBinaryFailsSpeak(t *testing.T) {
	player := &recordingPlayer{}
	p, err := NewPiper(PiperConfig{Binary: "definitely-not-piper-binary", Model: "voice.onnx"}, player)
	if err != nil {
		t.Fatalf("NewPiper: %v", err)
	}
	err = p.Speak(context.Background(), "It's 3 PM.")
	var se *SynthesisError
	if !errors.As(err, &se) || !errors.Is(err, exec.ErrNotFound) {
		t.Errorf("err = %v", err)
	}
	if len(player.played) != 0 {
		t.Error("nothing should play")
	}
}

// fakePiper copies $EVE_TEST_WAV to the --output_file argument.
const fakePiper = `#!/bin/sh
while [ $# -gt 0 ]; do
  case "$1" in
    --output_file) out="$2"; shift ;;
  esac
  shift
done
cat > "$out.txt"
cp "$EVE_TEST_WAV" "$out"
`

func TestPiperSpeak(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "piper")
	if err := os.WriteFile(bin, []byte(fakePiper), 0o755); err != nil {
		t.Fatal(err)
	}
	fixture := filepath.Join(dir, "fixture.wav")
	if err := audio.WriteWAVFile(fixture, audio.Buffer{Samples: make([]float32, 22050), SampleRate: 22050}); err != nil {
		t.Fatal(err)
	}
	t.Setenv("EVE_TEST_WAV", fixture)

	out := filepath.Join(dir, "reply.wav")
	player := &recordingPlayer{}
	p, err := NewPiper(PiperConfig{Binary: bin, Model: "voice.onnx", OutputPath: out}, player)
	if err != nil {
		t.Fatal(err)
	}
	if err := p.Speak(context.Background(), "It's 3 PM.\nAnything else?\n\nBye."); err != nil {
		t.Fatal(err)
	}

	if len(player.played) != 1 || player.played[0].Duration() != time.Second {
		t.Fatalf("played = %+v", player.played)
	}
	stdin, err := os.ReadFile(out + ".txt")
	if err != nil {
		t.Fatal(err)
	}
	if string(stdin) != "It's 3 PM. Anything else? Bye.\n" {
		t.Errorf("piper stdin = %q", stdin)
	}
}

func TestFakeRecords(t *testing.T) {
	f := NewFake()
	_ = f.Speak(context.Background(), "a")
	_ = f.Speak(context.Background(), "b")
	if got := f.Spoken(); len(got) != 2 || got[1] != "b" {
		t.Errorf("Spoken = %q", got)
	}
}
