package tts

import (
	"context"
	"sync"
)

// Fake records what it was asked to say.
type Fake struct {
	mu     sync.Mutex
	spoken []string
	Err    error
}

func NewFake() *Fake { return &Fake{} }

func (f *Fake) Speak(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spoken = append(f.spoken, text)
	return f.Err
}

// Spoken returns every text passed to Speak, in order.
func (f *Fake) Spoken() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.spoken...)
}
