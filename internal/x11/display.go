// Package x11 is the native boundary to the X server: key grabs on the root
// window, keysym lookup and a non-blocking key event poll.
package x11

import (
	"errors"
	"fmt"
	"time"

	"github.com/jezek/xgb"
	"github.com/jezek/xgb/xproto"
	"github.com/rs/zerolog"
)

type (
	Keycode uint8
	Keysym  uint32
	ModMask uint16
)

const (
	ModMaskShift   ModMask = xproto.ModMaskShift
	ModMaskLock    ModMask = xproto.ModMaskLock
	ModMaskControl ModMask = xproto.ModMaskControl
	ModMask1       ModMask = xproto.ModMask1
	ModMask2       ModMask = xproto.ModMask2
	ModMask4       ModMask = xproto.ModMask4

	// ModMaskNumLock is where NumLock lives on practically every keymap.
	ModMaskNumLock = ModMask2

	// ModMaskRelevant is the part of an event state a hotkey can match on.
	// Lock bits are reported by the server while toggled and must be ignored.
	ModMaskRelevant = ModMaskShift | ModMaskControl | ModMask1 | ModMask4
)

// ErrGrabConflict is returned by GrabKey when another client already holds
// the exact key and modifier combination.
var ErrGrabConflict = errors.New("key combination grabbed by another client")

// ErrConnectionClosed is returned by PollEvent once the connection to the
// server is gone. It is terminal.
var ErrConnectionClosed = errors.New("X11 connection closed")

// livenessInterval is how often an idle poll checks the server is still there.
const livenessInterval = time.Second

type EventType int

const (
	KeyPress EventType = iota
	KeyRelease
)

func (t EventType) String() string {
	if t == KeyPress {
		return "press"
	}
	return "release"
}

// Event is a key event delivered to the root window.
type Event struct {
	Type    EventType
	Keycode Keycode
	State   ModMask
}

// Display is a connection to a windowing system that can grab keys globally.
// Implementations are used from a single goroutine.
type Display interface {
	GrabKey(code Keycode, mods ModMask) error
	UngrabKey(code Keycode, mods ModMask) error
	// Keycode resolves a keysym through the current keyboard mapping.
	Keycode(sym Keysym) (Keycode, bool)
	// PollEvent returns the next queued key event without blocking. ok is
	// false when the queue is empty. A non-nil err means an asynchronous
	// error was dequeued and polling may continue, unless it matches
	// ErrConnectionClosed.
	PollEvent() (ev Event, ok bool, err error)
	Close() error
}

type xgbDisplay struct {
	conn   *xgb.Conn
	root   xproto.Window
	keymap map[Keysym]Keycode
	log    zerolog.Logger

	// Held keys report one press and one release.
	repeats  repeatFilter
	lastSeen time.Time
	closed   bool
}

// Open connects to the X server named by $DISPLAY, selects key events on the
// root window and loads the keyboard mapping.
func Open(log zerolog.Logger) (Display, error) {
	conn, err := xgb.NewConn()
	if err != nil {
		return nil, fmt.Errorf("connecting to X11: %w", err)
	}

	d := &xgbDisplay{
		conn:     conn,
		root:     xproto.Setup(conn).DefaultScreen(conn).Root,
		log:      log,
		lastSeen: time.Now(),
	}
	d.repeats.next = d.pollRaw

	if err := xproto.ChangeWindowAttributesChecked(conn, d.root, xproto.CwEventMask,
		[]uint32{xproto.EventMaskKeyPress | xproto.EventMaskKeyRelease}).Check(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("selecting key events on root window: %w", err)
	}

	if err := d.loadKeymap(); err != nil {
		conn.Close()
		return nil, err
	}

	return d, nil
}

func (d *xgbDisplay) loadKeymap() error {
	setup := xproto.Setup(d.conn)
	first, last := setup.MinKeycode, setup.MaxKeycode

	km, err := xproto.GetKeyboardMapping(d.conn, first, byte(last-first+1)).Reply()
	if err != nil {
		return fmt.Errorf("getting keyboard mapping: %w", err)
	}

	per := int(km.KeysymsPerKeycode)
	if per == 0 {
		return fmt.Errorf("keyboard mapping has no keysyms")
	}
	d.keymap = make(map[Keysym]Keycode, len(km.Keysyms))
	for i, sym := range km.Keysyms {
		if sym == 0 {
			continue
		}
		// First keycode wins, like XKeysymToKeycode.
		if _, ok := d.keymap[Keysym(sym)]; !ok {
			d.keymap[Keysym(sym)] = Keycode(int(first) + i/per)
		}
	}
	return nil
}

func (d *xgbDisplay) GrabKey(code Keycode, mods ModMask) error {
	err := xproto.GrabKeyChecked(d.conn, false, d.root, uint16(mods), xproto.Keycode(code),
		xproto.GrabModeAsync, xproto.GrabModeAsync).Check()
	if err == nil {
		return nil
	}
	if _, ok := err.(xproto.AccessError); ok {
		return ErrGrabConflict
	}
	return fmt.Errorf("grabbing keycode %d (mods=%#x): %w", code, mods, err)
}

func (d *xgbDisplay) UngrabKey(code Keycode, mods ModMask) error {
	if err := xproto.UngrabKeyChecked(d.conn, xproto.Keycode(code), d.root, uint16(mods)).Check(); err != nil {
		return fmt.Errorf("ungrabbing keycode %d (mods=%#x): %w", code, mods, err)
	}
	return nil
}

func (d *xgbDisplay) Keycode(sym Keysym) (Keycode, bool) {
	code, ok := d.keymap[sym]
	return code, ok
}

func (d *xgbDisplay) PollEvent() (Event, bool, error) {
	if d.closed {
		return Event{}, false, ErrConnectionClosed
	}
	ev, ok, err := d.repeats.poll()
	if errors.Is(err, ErrConnectionClosed) {
		d.closed = true
	}
	return ev, ok, err
}

func (d *xgbDisplay) pollRaw() (rawEvent, bool, error) {
	for {
		ev, xerr := d.conn.PollForEvent()
		if xerr != nil {
			return rawEvent{}, true, fmt.Errorf("X11 error: %w", xerr)
		}
		if ev == nil {
			return rawEvent{}, false, d.checkAlive()
		}
		d.lastSeen = time.Now()

		switch e := ev.(type) {
		case xproto.KeyPressEvent:
			return rawEvent{Event{Type: KeyPress, Keycode: Keycode(e.Detail), State: ModMask(e.State)}, uint32(e.Time)}, true, nil
		case xproto.KeyReleaseEvent:
			return rawEvent{Event{Type: KeyRelease, Keycode: Keycode(e.Detail), State: ModMask(e.State)}, uint32(e.Time)}, true, nil
		case xproto.MappingNotifyEvent:
			if e.Request == xproto.MappingKeyboard {
				if err := d.loadKeymap(); err != nil {
					d.log.Warn().Err(err).Msg("Failed to reload keyboard mapping")
				}
			}
		}
		// Anything else is not ours; keep draining.
	}
}

// checkAlive does a round trip when the event queue has been quiet for a
// while. An empty queue looks the same whether the server is idle or gone.
func (d *xgbDisplay) checkAlive() error {
	if time.Since(d.lastSeen) < livenessInterval {
		return nil
	}
	d.lastSeen = time.Now()
	if _, err := xproto.GetInputFocus(d.conn).Reply(); err != nil {
		return fmt.Errorf("%w: %v", ErrConnectionClosed, err)
	}
	return nil
}

func (d *xgbDisplay) Close() error {
	d.conn.Close()
	return nil
}
