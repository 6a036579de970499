package assistant

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/agalue/eve/internal/recorder"
	"github.com/agalue/eve/internal/stt"
	"github.com/agalue/eve/internal/tts"
)

// Default phrases.
const (
	DefaultGreeting = "Hey, what's up? What can I do for you?"
	DefaultFallback = "I didn't catch that. Try again."
	DefaultFarewell = "Bye!"
)

// Exchange is one user command and the reply to it.
type Exchange struct {
	User  string
	Reply string
}

// Recorder captures one spoken command.
type Recorder interface {
	Record(ctx context.Context) (*recorder.Utterance, error)
}

// Responder answers a command. It never fails; *llm.Brain implements it.
type Responder interface {
	Reply(ctx context.Context, text string) string
}

// Options wires the collaborators of an Assistant.
type Options struct {
	Wake        *WakeListener
	Recorder    Recorder
	Transcriber stt.Transcriber
	Brain       Responder
	Speaker     tts.Speaker
	Console     io.Writer // defaults to stdout

	Greeting   string
	Fallback   string
	Farewell   string
	ErrorPause time.Duration

	// SettleDelay is waited after each spoken phrase so the tail still in
	// the output device is not picked up by the next capture.
	SettleDelay time.Duration
}

// Assistant holds everything a conversation needs. It is built once and
// drives one turn at a time.
type Assistant struct {
	wake        *WakeListener
	rec         Recorder
	transcriber stt.Transcriber
	brain       Responder
	speaker     tts.Speaker
	console     io.Writer

	greeting   string
	fallback   string
	farewell   string
	errorPause time.Duration
	settle     time.Duration
}

// New creates an Assistant from opts, filling in default phrases.
func New(opts Options) *Assistant {
	a := &Assistant{
		wake:        opts.Wake,
		rec:         opts.Recorder,
		transcriber: opts.Transcriber,
		brain:       opts.Brain,
		speaker:     opts.Speaker,
		console:     opts.Console,
		greeting:    orDefault(opts.Greeting, DefaultGreeting),
		fallback:    orDefault(opts.Fallback, DefaultFallback),
		farewell:    orDefault(opts.Farewell, DefaultFarewell),
		errorPause:  opts.ErrorPause,
		settle:      opts.SettleDelay,
	}
	if a.console == nil {
		a.console = os.Stdout
	}
	return a
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

// Turn greets, records a command, asks the model and speaks the answer.
// It returns a nil Exchange when nothing was understood.
func (a *Assistant) Turn(ctx context.Context) (*Exchange, error) {
	a.say(ctx, a.greeting)

	log.Info().Msg("🎙️ Listening for your command...")
	utt, err := a.rec.Record(ctx)
	if err != nil {
		return nil, fmt.Errorf("recording command: %w", err)
	}
	if utt.Empty() {
		log.Info().Stringer("cause", utt.Cause).Msg("🤷 No speech captured")
		a.say(ctx, a.fallback)
		return nil, nil
	}
	log.Debug().Dur("length", utt.Duration()).Stringer("cause", utt.Cause).Msg("Command captured")

	text, err := a.transcriber.Transcribe(ctx, utt.Samples, utt.SampleRate)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		log.Warn().Err(err).Msg("❌ Transcription failed")
		text = ""
	}
	text = strings.TrimSpace(text)
	if text == "" {
		a.say(ctx, a.fallback)
		return nil, nil
	}

	fmt.Fprintf(a.console, "You: %s\n", text)
	log.Info().Str("text", text).Msg("🧠 Processing")

	reply := a.brain.Reply(ctx, text)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	fmt.Fprintf(a.console, "Eve: %s\n", reply)

	a.say(ctx, reply)
	return &Exchange{User: text, Reply: reply}, nil
}

// say logs and skips synthesis failures. After audio was played it waits
// for the settle delay.
func (a *Assistant) say(ctx context.Context, text string) {
	if err := a.speaker.Speak(ctx, text); err != nil {
		log.Error().Err(err).Str("text", text).Msg("❌ TTS error")
		return
	}
	wait(ctx, a.settle)
}
