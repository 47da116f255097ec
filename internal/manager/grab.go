package manager

import (
	"errors"
	"fmt"

	"github.com/petems/hotkeyd/internal/hotkey"
	"github.com/petems/hotkeyd/internal/x11"
)

// A grab only matches the exact modifier state, and the server reports
// toggled NumLock and CapsLock as modifiers. Every hotkey is grabbed once per
// lock combination.
var lockVariants = [...]x11.ModMask{
	0,
	x11.ModMaskNumLock,
	x11.ModMaskLock,
	x11.ModMaskNumLock | x11.ModMaskLock,
}

// resolve translates a hotkey to its keycode and modifier mask.
func (w *worker) resolve(hk hotkey.HotKey) (x11.Keycode, x11.ModMask, error) {
	sym, ok := x11.KeysymFor(hk.Key())
	if !ok {
		return 0, 0, ErrUnsupportedKey
	}
	code, ok := w.display.Keycode(sym)
	if !ok {
		return 0, 0, fmt.Errorf("no keycode for keysym %#x", sym)
	}
	return code, x11.ModMaskFor(hk.Mods()), nil
}

func (w *worker) register(hk hotkey.HotKey) error {
	code, mods, err := w.resolve(hk)
	if errors.Is(err, ErrUnsupportedKey) {
		return &Error{Op: "register", HotKey: hk, Err: ErrUnsupportedKey, Reason: string(hk.Key())}
	}
	if err != nil {
		return &Error{Op: "register", HotKey: hk, Err: ErrFailedToRegister, Reason: err.Error()}
	}

	// Local bookkeeping decides duplicates: the server lets a client grab the
	// same combination twice.
	if w.reg.has(code, mods) {
		return &Error{Op: "register", HotKey: hk, Err: ErrAlreadyRegistered}
	}

	for _, lock := range lockVariants {
		err := w.display.GrabKey(code, mods|lock)
		if err == nil {
			continue
		}
		w.ungrabAll(code, mods)
		if errors.Is(err, x11.ErrGrabConflict) {
			w.log.Warn().Str("hotkey", hk.String()).Msg("Hotkey grabbed by another client")
			return &Error{Op: "register", HotKey: hk, Err: ErrAlreadyRegistered, Reason: err.Error()}
		}
		return &Error{Op: "register", HotKey: hk, Err: ErrFailedToRegister, Reason: err.Error()}
	}

	w.reg.add(code, hk.ID(), mods)
	w.log.Debug().
		Str("hotkey", hk.String()).
		Uint32("id", hk.ID()).
		Uint8("keycode", uint8(code)).
		Uint16("mods", uint16(mods)).
		Msg("Registered hotkey")
	return nil
}

// unregister never fails for a hotkey that is not registered. The keymap may
// have changed since registration, so the grabs are released where they were
// made rather than where the key resolves now.
func (w *worker) unregister(hk hotkey.HotKey) error {
	if code, mods, ok := w.reg.find(hk.ID()); ok {
		w.release(hk, code, mods)
		return nil
	}

	code, mods, err := w.resolve(hk)
	if errors.Is(err, ErrUnsupportedKey) {
		return &Error{Op: "unregister", HotKey: hk, Err: ErrFailedToUnregister, Reason: err.Error()}
	}
	if err == nil {
		w.ungrabAll(code, mods)
	}
	return nil
}

func (w *worker) release(hk hotkey.HotKey, code x11.Keycode, mods x11.ModMask) {
	w.ungrabAll(code, mods)
	w.reg.remove(code, mods)
	w.log.Debug().Str("hotkey", hk.String()).Uint8("keycode", uint8(code)).Msg("Unregistered hotkey")
}

func (w *worker) ungrabAll(code x11.Keycode, mods x11.ModMask) {
	for _, lock := range lockVariants {
		if err := w.display.UngrabKey(code, mods|lock); err != nil {
			w.log.Warn().Err(err).Uint8("keycode", uint8(code)).Msg("Failed to release grab")
		}
	}
}

// releaseAll drops every grab this worker holds and empties the registry.
func (w *worker) releaseAll() {
	for code, entries := range w.reg {
		for _, e := range entries {
			w.ungrabAll(code, e.mods)
		}
	}
	w.reg = make(registry)
}
