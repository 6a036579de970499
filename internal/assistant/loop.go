package assistant

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog/log"
)

// Run alternates wake detection and conversation turns until ctx is
// cancelled, then prints the farewell and returns nil. Failures inside a
// cycle, panics included, are logged and followed by a short pause.
func (a *Assistant) Run(ctx context.Context) error {
	log.Info().Str("wake_word", a.wake.phrase).Msg("🎙️ Listening for wake word (Ctrl+C to quit)")

	for ctx.Err() == nil {
		if err := a.cycle(ctx); err != nil {
			if ctx.Err() != nil {
				break
			}
			log.Error().Err(err).Msg("❌ Turn failed")
			wait(ctx, a.errorPause)
		}
	}

	log.Info().Msg("🛑 Shutting down...")
	fmt.Fprintln(a.console, a.farewell)
	return nil
}

func (a *Assistant) cycle(ctx context.Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Debug().Str("stack", string(debug.Stack())).Msg("Recovered panic")
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	wake, err := a.wake.Listen(ctx)
	if err != nil {
		return err
	}
	log.Debug().Bool("manual", wake.Manual).Str("heard", wake.Transcript).Msg("Woke up")

	ex, err := a.Turn(ctx)
	if err != nil {
		return err
	}
	if ex != nil {
		log.Info().Str("reply", ex.Reply).Msg("🤖 Assistant")
	}
	return nil
}

// wait sleeps for d or until ctx is done.
func wait(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
