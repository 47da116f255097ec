package x11

// rawEvent is a key event as read off the wire, with its server timestamp.
type rawEvent struct {
	Event
	time uint32
}

type pollResult struct {
	ev  rawEvent
	ok  bool
	err error
}

// repeatFilter collapses the release/press pairs the server generates while
// a key is held down. Both halves of such a pair carry the same keycode and
// the same timestamp, and the press follows the release immediately.
type repeatFilter struct {
	next    func() (rawEvent, bool, error)
	stashed *pollResult
}

func (f *repeatFilter) poll() (Event, bool, error) {
	for {
		ev, ok, err := f.pull()
		if err != nil || !ok || ev.Type != KeyRelease {
			return ev.Event, ok, err
		}

		nev, nok, nerr := f.pull()
		if nerr == nil && nok && nev.Type == KeyPress && nev.Keycode == ev.Keycode && nev.time == ev.time {
			continue
		}
		if nerr != nil || nok {
			f.stashed = &pollResult{ev: nev, ok: nok, err: nerr}
		}
		return ev.Event, true, nil
	}
}

func (f *repeatFilter) pull() (rawEvent, bool, error) {
	if r := f.stashed; r != nil {
		f.stashed = nil
		return r.ev, r.ok, r.err
	}
	return f.next()
}
