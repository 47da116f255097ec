package x11

import (
	"errors"
	"sync"

	"github.com/petems/hotkeyd/internal/hotkey"
)

type grab struct {
	code Keycode
	mods ModMask
}

// FakeDisplay is an in-memory Display for tests. Every known keysym gets a
// keycode; events are queued with Press and Release.
type FakeDisplay struct {
	mu      sync.Mutex
	keymap  map[Keysym]Keycode
	grabs   map[grab]bool
	foreign map[grab]bool
	queue   []Event
	closed  bool
	gone    bool
}

func NewFake() *FakeDisplay {
	f := &FakeDisplay{
		keymap:  make(map[Keysym]Keycode),
		grabs:   make(map[grab]bool),
		foreign: make(map[grab]bool),
	}
	code := Keycode(8)
	for _, c := range hotkey.Codes() {
		if sym, ok := keysyms[c]; ok {
			f.keymap[sym] = code
			code++
		}
	}
	return f
}

var errFakeClosed = errors.New("fake display closed")

func (f *FakeDisplay) GrabKey(code Keycode, mods ModMask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.gone {
		return errFakeClosed
	}
	g := grab{code, mods}
	if f.foreign[g] {
		return ErrGrabConflict
	}
	f.grabs[g] = true
	return nil
}

func (f *FakeDisplay) UngrabKey(code Keycode, mods ModMask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.gone {
		return errFakeClosed
	}
	delete(f.grabs, grab{code, mods})
	return nil
}

func (f *FakeDisplay) Keycode(sym Keysym) (Keycode, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	code, ok := f.keymap[sym]
	return code, ok
}

func (f *FakeDisplay) PollEvent() (Event, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gone {
		return Event{}, false, ErrConnectionClosed
	}
	if len(f.queue) == 0 {
		return Event{}, false, nil
	}
	ev := f.queue[0]
	f.queue = f.queue[1:]
	return ev, true, nil
}

func (f *FakeDisplay) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

// Disconnect simulates the server going away. Polls fail from now on and
// grab requests are rejected.
func (f *FakeDisplay) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gone = true
}

// KeycodeOf returns the fake keycode assigned to a key code.
func (f *FakeDisplay) KeycodeOf(c hotkey.Code) Keycode {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.keymap[keysyms[c]]
}

// Unmap drops a key from the keyboard mapping.
func (f *FakeDisplay) Unmap(c hotkey.Code) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.keymap, keysyms[c])
}

// GrabbedElsewhere marks a combination as held by another client.
func (f *FakeDisplay) GrabbedElsewhere(code Keycode, mods ModMask) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.foreign[grab{code, mods}] = true
}

func (f *FakeDisplay) Grabbed(code Keycode, mods ModMask) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.grabs[grab{code, mods}]
}

// GrabCount is the number of combinations currently grabbed.
func (f *FakeDisplay) GrabCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.grabs)
}

func (f *FakeDisplay) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *FakeDisplay) Press(code Keycode, state ModMask) {
	f.push(Event{Type: KeyPress, Keycode: code, State: state})
}

func (f *FakeDisplay) Release(code Keycode, state ModMask) {
	f.push(Event{Type: KeyRelease, Keycode: code, State: state})
}

func (f *FakeDisplay) push(ev Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, ev)
}

// Pending is the number of queued events not yet polled.
func (f *FakeDisplay) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}
