package stt

import (
	"context"
	"sync"
)

// Fake returns scripted transcripts in order, then empty strings.
type Fake struct {
	mu      sync.Mutex
	results []string
	errs    []error
	calls   int
}

// NewFake returns a transcriber that yields texts in order.
func NewFake(texts ...string) *Fake {
	return &Fake{results: texts}
}

// FailNext makes the next call return err instead of a transcript.
func (f *Fake) FailNext(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs = append(f.errs, err)
}

func (f *Fake) Transcribe(ctx context.Context, _ []int16, _ int) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return "", err
	}
	if len(f.results) == 0 {
		return "", nil
	}
	text := f.results[0]
	f.results = f.results[1:]
	return text, nil
}

// Calls returns the number of Transcribe calls.
func (f *Fake) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}
