// Package trigger implements the push-to-talk flag and its hotkey binding.
package trigger

import (
	"context"
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// Flag is the manual trigger shared between the hotkey goroutine and the
// wake loop. A nil *Flag is never set.
type Flag struct {
	v atomic.Bool
}

func (f *Flag) Set()   { f.v.Store(true) }
func (f *Flag) Clear() { f.v.Store(false) }

// IsSet reports whether the trigger is currently held.
func (f *Flag) IsSet() bool {
	return f != nil && f.v.Load()
}

// Hotkey delivers global key press and release events.
type Hotkey interface {
	Register() error
	Unregister()
	Keydown() <-chan struct{}
	Keyup() <-chan struct{}
}

// Watch registers hk and mirrors its state into flag until ctx ends.
// Key down sets the flag and key up clears it.
func Watch(ctx context.Context, hk Hotkey, flag *Flag) error {
	if err := hk.Register(); err != nil {
		return err
	}
	defer hk.Unregister()

	for {
		select {
		case <-ctx.Done():
			flag.Clear()
			return nil
		case <-hk.Keydown():
			if !flag.IsSet() {
				log.Info().Msg("🎙️  Push-to-talk pressed")
			}
			flag.Set()
		case <-hk.Keyup():
			flag.Clear()
		}
	}
}
