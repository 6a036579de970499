// Package llm sends a transcript to a chat model and returns the reply.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// Client performs one single-turn chat completion.
type Client interface {
	Complete(ctx context.Context, system, user string) (string, error)
	Name() string
}

// RemoteModelError wraps a failed request to the model endpoint.
type RemoteModelError struct {
	Provider string
	Err      error
}

func (e *RemoteModelError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

func (e *RemoteModelError) Unwrap() error { return e.Err }

// DiagnosticPrefix starts every reply produced from a failure.
const DiagnosticPrefix = "Sorry, my brain hit a snag: "

// Brain answers a user utterance. It never fails; errors become a spoken
// diagnostic so the conversation loop keeps going.
type Brain struct {
	client  Client
	system  string
	timeout time.Duration
}

// NewBrain wraps client with a system persona and a per-request deadline.
func NewBrain(client Client, system string, timeout time.Duration) *Brain {
	return &Brain{client: client, system: system, timeout: timeout}
}

// Reply returns the model answer for text, or a diagnostic sentence.
func (b *Brain) Reply(ctx context.Context, text string) string {
	if b.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.timeout)
		defer cancel()
	}

	start := time.Now()
	reply, err := b.client.Complete(ctx, b.system, text)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = &RemoteModelError{Provider: b.client.Name(), Err: errors.New("empty completion")}
	}
	if err != nil {
		log.Error().Err(err).Str("provider", b.client.Name()).Msg("❌ LLM request failed")
		return DiagnosticPrefix + err.Error()
	}

	log.Debug().Str("provider", b.client.Name()).Dur("took", time.Since(start)).Msg("🧠 LLM replied")
	return strings.TrimSpace(reply)
}
