//go:build linux

package trigger

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Reading /dev/input directly works on X11, Wayland and the console alike,
// and needs the user in the 'input' group.

const (
	evKey      = 1
	keyRelease = 0
	keyPress   = 1

	// inputEventSize is struct input_event on 64-bit Linux: a 16 byte
	// timeval, then type (2), code (2) and value (4).
	inputEventSize = 24
)

var (
	ctrlCodes  = []uint16{29, 97}
	shiftCodes = []uint16{42, 54}
)

var evdevKeys = map[string]uint16{
	"space": 57,
	"f1":    59, "f2": 60, "f3": 61, "f4": 62, "f5": 63, "f6": 64,
	"f7": 65, "f8": 66, "f9": 67, "f10": 68, "f11": 87, "f12": 88,
	"q": 16, "w": 17, "e": 18, "r": 19, "t": 20, "y": 21, "u": 22, "i": 23, "o": 24, "p": 25,
	"a": 30, "s": 31, "d": 32, "f": 33, "g": 34, "h": 35, "j": 36, "k": 37, "l": 38,
	"z": 44, "x": 45, "c": 46, "v": 47, "b": 48, "n": 49, "m": 50,
}

// comboState tracks one keyboard's view of the combination.
type comboState struct {
	key       uint16
	needCtrl  bool
	needShift bool

	ctrl, shift, held bool
}

func newComboState(c Combo) (comboState, error) {
	code, ok := evdevKeys[c.Key]
	if !ok {
		return comboState{}, fmt.Errorf("key %q not supported on this platform", c.Key)
	}
	return comboState{key: code, needCtrl: c.Has(ModCtrl), needShift: c.Has(ModShift)}, nil
}

// handle applies one key event and reports whether the combination went
// down or up. Auto-repeat events are ignored.
func (s *comboState) handle(code uint16, value int32) (down, up bool) {
	if value != keyPress && value != keyRelease {
		return false, false
	}
	pressed := value == keyPress
	switch {
	case contains(ctrlCodes, code):
		s.ctrl = pressed
	case contains(shiftCodes, code):
		s.shift = pressed
	case code == s.key:
		if pressed && !s.held && (!s.needCtrl || s.ctrl) && (!s.needShift || s.shift) {
			s.held = true
			return true, false
		}
		if !pressed && s.held {
			s.held = false
			return false, true
		}
	}
	return false, false
}

func contains(codes []uint16, code uint16) bool {
	for _, c := range codes {
		if c == code {
			return true
		}
	}
	return false
}

type evdevHotkey struct {
	state   comboState
	keydown chan struct{}
	keyup   chan struct{}
	files   []*os.File
	stop    chan struct{}
	once    sync.Once
}

// NewHotkey binds a hotkey by watching every keyboard under /dev/input.
func NewHotkey(combo string) (Hotkey, error) {
	c, err := ParseHotkey(combo)
	if err != nil {
		return nil, err
	}
	state, err := newComboState(c)
	if err != nil {
		return nil, err
	}
	return &evdevHotkey{
		state:   state,
		keydown: make(chan struct{}, 1),
		keyup:   make(chan struct{}, 1),
		stop:    make(chan struct{}),
	}, nil
}

func (h *evdevHotkey) Register() error {
	keyboards, err := findKeyboards()
	if err != nil {
		return fmt.Errorf("finding keyboards: %w", err)
	}
	if len(keyboards) == 0 {
		return errors.New("no keyboard devices found (is the user in the 'input' group?)")
	}

	for _, path := range keyboards {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		h.files = append(h.files, f)
		go h.readEvents(f, h.state)
	}
	if len(h.files) == 0 {
		return errors.New("could not open any keyboard device (run: sudo usermod -aG input $USER, then log in again)")
	}
	return nil
}

func (h *evdevHotkey) readEvents(f *os.File, state comboState) {
	buf := make([]byte, inputEventSize*16)
	for {
		n, err := f.Read(buf)
		if err != nil {
			return
		}
		for i := 0; i+inputEventSize <= n; i += inputEventSize {
			if binary.LittleEndian.Uint16(buf[i+16:]) != evKey {
				continue
			}
			code := binary.LittleEndian.Uint16(buf[i+18:])
			value := int32(binary.LittleEndian.Uint32(buf[i+20:]))
			down, up := state.handle(code, value)
			switch {
			case down:
				h.send(h.keydown)
			case up:
				h.send(h.keyup)
			}
		}
	}
}

func (h *evdevHotkey) send(ch chan struct{}) {
	select {
	case <-h.stop:
	case ch <- struct{}{}:
	default:
	}
}

func (h *evdevHotkey) Unregister() {
	h.once.Do(func() {
		close(h.stop)
		for _, f := range h.files {
			f.Close()
		}
	})
}

func (h *evdevHotkey) Keydown() <-chan struct{} { return h.keydown }
func (h *evdevHotkey) Keyup() <-chan struct{}   { return h.keyup }

func findKeyboards() ([]string, error) {
	entries, err := os.ReadDir("/dev/input")
	if err != nil {
		return nil, err
	}
	var keyboards []string
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), "event") && isKeyboard(e.Name()) {
			keyboards = append(keyboards, filepath.Join("/dev/input", e.Name()))
		}
	}
	return keyboards, nil
}

// isKeyboard checks the key capability bitmap; keyboards report far more
// keys than mice or power buttons.
func isKeyboard(event string) bool {
	data, err := os.ReadFile(filepath.Join("/sys/class/input", event, "device", "capabilities", "key"))
	if err != nil {
		return false
	}
	return len(strings.TrimSpace(string(data))) > 10
}
