package manager

import "github.com/petems/hotkeyd/internal/x11"

type entry struct {
	id      uint32
	mods    x11.ModMask
	pressed bool
}

// registry maps a keycode to the hotkeys registered on it. No two entries
// of one keycode share a modifier mask. Only the worker touches it.
type registry map[x11.Keycode][]entry

func (r registry) has(code x11.Keycode, mods x11.ModMask) bool {
	for _, e := range r[code] {
		if e.mods == mods {
			return true
		}
	}
	return false
}

func (r registry) add(code x11.Keycode, id uint32, mods x11.ModMask) {
	r[code] = append(r[code], entry{id: id, mods: mods})
}

func (r registry) remove(code x11.Keycode, mods x11.ModMask) bool {
	entries := r[code]
	for i, e := range entries {
		if e.mods == mods {
			entries = append(entries[:i], entries[i+1:]...)
			if len(entries) == 0 {
				delete(r, code)
			} else {
				r[code] = entries
			}
			return true
		}
	}
	return false
}

// find locates the entry registered under id.
func (r registry) find(id uint32) (x11.Keycode, x11.ModMask, bool) {
	for code, entries := range r {
		for _, e := range entries {
			if e.id == id {
				return code, e.mods, true
			}
		}
	}
	return 0, 0, false
}

// press marks entries whose mask equals state as pressed and returns the
// ids that were not pressed already.
func (r registry) press(code x11.Keycode, state x11.ModMask) []uint32 {
	var ids []uint32
	entries := r[code]
	for i := range entries {
		if entries[i].mods == state && !entries[i].pressed {
			entries[i].pressed = true
			ids = append(ids, entries[i].id)
		}
	}
	return ids
}

// release clears every pressed entry of the keycode regardless of
// modifiers: the physical key went up.
func (r registry) release(code x11.Keycode) []uint32 {
	var ids []uint32
	entries := r[code]
	for i := range entries {
		if entries[i].pressed {
			entries[i].pressed = false
			ids = append(ids, entries[i].id)
		}
	}
	return ids
}

func (r registry) size() int {
	n := 0
	for _, entries := range r {
		n += len(entries)
	}
	return n
}
