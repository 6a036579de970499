package trigger

import (
	"context"
	"errors"
	"testing"
)

func TestNilFlagNeverSet(t *testing.T) {
	var f *Flag
	if f.IsSet() {
		t.Error("nil flag reported set")
	}
}

func TestWatchMirrorsKeyState(t *testing.T) {
	hk := NewFake()
	flag := &Flag{}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, hk, flag) }()

	hk.SimKeydown()
	// Unbuffered channels: the next send only completes once the watcher
	// has looped back, so the previous event is applied.
	hk.SimKeydown()
	if !flag.IsSet() {
		t.Error("flag not set after keydown")
	}

	hk.SimKeyup()
	hk.SimKeyup()
	if flag.IsSet() {
		t.Error("flag still set after keyup")
	}

	hk.SimKeydown()
	cancel()
	if err := <-done; err != nil {
		t.Fatal(err)
	}
	if flag.IsSet() {
		t.Error("flag should clear on shutdown")
	}
	if hk.registered {
		t.Error("hotkey left registered")
	}
}

func TestWatchRegisterError(t *testing.T) {
	hk := NewFake()
	hk.RegisterFn = func() error { return errors.New("grab failed") }
	if err := Watch(context.Background(), hk, &Flag{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestParseHotkey(t *testing.T) {
	tests := []struct {
		in    string
		want  string
		fails bool
	}{
		{"f9", "f9", false},
		{"F9", "f9", false},
		{"ctrl+shift+space", "ctrl+shift+space", false},
		{" Shift + e ", "shift+e", false},
		{"ctrl+ctrl+a", "ctrl+a", false},
		{"hyper+f9", "", true},
		{"f42", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		c, err := ParseHotkey(tt.in)
		if (err != nil) != tt.fails {
			t.Errorf("ParseHotkey(%q) err = %v", tt.in, err)
			continue
		}
		if !tt.fails && c.String() != tt.want {
			t.Errorf("ParseHotkey(%q) = %q, want %q", tt.in, c, tt.want)
		}
	}
}

func TestComboHas(t *testing.T) {
	c, err := ParseHotkey("ctrl+space")
	if err != nil {
		t.Fatal(err)
	}
	if !c.Has(ModCtrl) || c.Has(ModShift) {
		t.Errorf("mods = %v", c.Mods)
	}
}
