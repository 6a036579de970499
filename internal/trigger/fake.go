package trigger

// FakeHotkey is a Hotkey driven by tests.
type FakeHotkey struct {
	keydown    chan struct{}
	keyup      chan struct{}
	RegisterFn func() error
	registered bool
}

func NewFake() *FakeHotkey {
	return &FakeHotkey{
		keydown: make(chan struct{}),
		keyup:   make(chan struct{}),
	}
}

func (f *FakeHotkey) Register() error {
	if f.RegisterFn != nil {
		if err := f.RegisterFn(); err != nil {
			return err
		}
	}
	f.registered = true
	return nil
}

func (f *FakeHotkey) Unregister()              { f.registered = false }
func (f *FakeHotkey) Keydown() <-chan struct{} { return f.keydown }
func (f *FakeHotkey) Keyup() <-chan struct{}   { return f.keyup }

// SimKeydown blocks until the watcher receives the press.
func (f *FakeHotkey) SimKeydown() { f.keydown <- struct{}{} }

// SimKeyup blocks until the watcher receives the release.
func (f *FakeHotkey) SimKeyup() { f.keyup <- struct{}{} }
