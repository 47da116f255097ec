package x11

import "github.com/petems/hotkeyd/internal/hotkey"

// keysyms maps key codes to X keysyms (X11/keysymdef.h, XF86keysym.h).
var keysyms = map[hotkey.Code]Keysym{
	hotkey.KeyA: 0x0041, hotkey.KeyB: 0x0042, hotkey.KeyC: 0x0043, hotkey.KeyD: 0x0044,
	hotkey.KeyE: 0x0045, hotkey.KeyF: 0x0046, hotkey.KeyG: 0x0047, hotkey.KeyH: 0x0048,
	hotkey.KeyI: 0x0049, hotkey.KeyJ: 0x004a, hotkey.KeyK: 0x004b, hotkey.KeyL: 0x004c,
	hotkey.KeyM: 0x004d, hotkey.KeyN: 0x004e, hotkey.KeyO: 0x004f, hotkey.KeyP: 0x0050,
	hotkey.KeyQ: 0x0051, hotkey.KeyR: 0x0052, hotkey.KeyS: 0x0053, hotkey.KeyT: 0x0054,
	hotkey.KeyU: 0x0055, hotkey.KeyV: 0x0056, hotkey.KeyW: 0x0057, hotkey.KeyX: 0x0058,
	hotkey.KeyY: 0x0059, hotkey.KeyZ: 0x005a,

	hotkey.Digit0: 0x0030, hotkey.Digit1: 0x0031, hotkey.Digit2: 0x0032, hotkey.Digit3: 0x0033,
	hotkey.Digit4: 0x0034, hotkey.Digit5: 0x0035, hotkey.Digit6: 0x0036, hotkey.Digit7: 0x0037,
	hotkey.Digit8: 0x0038, hotkey.Digit9: 0x0039,

	hotkey.Backquote:    0x0060, // grave
	hotkey.Backslash:    0x005c,
	hotkey.BracketLeft:  0x005b,
	hotkey.BracketRight: 0x005d,
	hotkey.Comma:        0x002c,
	hotkey.Equal:        0x003d,
	hotkey.Minus:        0x002d,
	hotkey.Period:       0x002e,
	hotkey.Quote:        0x0027, // apostrophe
	hotkey.Semicolon:    0x003b,
	hotkey.Slash:        0x002f,

	hotkey.Backspace:   0xff08,
	hotkey.CapsLock:    0xffe5,
	hotkey.Enter:       0xff0d,
	hotkey.Space:       0x0020,
	hotkey.Tab:         0xff09,
	hotkey.Delete:      0xffff,
	hotkey.End:         0xff57,
	hotkey.Home:        0xff50,
	hotkey.Insert:      0xff63,
	hotkey.PageDown:    0xff56,
	hotkey.PageUp:      0xff55,
	hotkey.ArrowDown:   0xff54,
	hotkey.ArrowLeft:   0xff51,
	hotkey.ArrowRight:  0xff53,
	hotkey.ArrowUp:     0xff52,
	hotkey.Escape:      0xff1b,
	hotkey.PrintScreen: 0xff61,
	hotkey.ScrollLock:  0xff14,
	hotkey.NumLock:     0xff7f,
	hotkey.Pause:       0xff13,

	hotkey.Numpad0: 0xffb0, hotkey.Numpad1: 0xffb1, hotkey.Numpad2: 0xffb2, hotkey.Numpad3: 0xffb3,
	hotkey.Numpad4: 0xffb4, hotkey.Numpad5: 0xffb5, hotkey.Numpad6: 0xffb6, hotkey.Numpad7: 0xffb7,
	hotkey.Numpad8: 0xffb8, hotkey.Numpad9: 0xffb9,
	hotkey.NumpadAdd:      0xffab,
	hotkey.NumpadDecimal:  0xffae,
	hotkey.NumpadDivide:   0xffaf,
	hotkey.NumpadEnter:    0xff8d,
	hotkey.NumpadMultiply: 0xffaa,
	hotkey.NumpadSubtract: 0xffad,

	hotkey.F1: 0xffbe, hotkey.F2: 0xffbf, hotkey.F3: 0xffc0, hotkey.F4: 0xffc1,
	hotkey.F5: 0xffc2, hotkey.F6: 0xffc3, hotkey.F7: 0xffc4, hotkey.F8: 0xffc5,
	hotkey.F9: 0xffc6, hotkey.F10: 0xffc7, hotkey.F11: 0xffc8, hotkey.F12: 0xffc9,
	hotkey.F13: 0xffca, hotkey.F14: 0xffcb, hotkey.F15: 0xffcc, hotkey.F16: 0xffcd,
	hotkey.F17: 0xffce, hotkey.F18: 0xffcf, hotkey.F19: 0xffd0, hotkey.F20: 0xffd1,
	hotkey.F21: 0xffd2, hotkey.F22: 0xffd3, hotkey.F23: 0xffd4, hotkey.F24: 0xffd5,

	hotkey.AudioVolumeDown:    0x1008ff11,
	hotkey.AudioVolumeMute:    0x1008ff12,
	hotkey.AudioVolumeUp:      0x1008ff13,
	hotkey.MediaPlay:          0x1008ff14,
	hotkey.MediaStop:          0x1008ff15,
	hotkey.MediaTrackPrevious: 0x1008ff16,
	hotkey.MediaTrackNext:     0x1008ff17,
	hotkey.MediaPause:         0x1008ff31,
}

// KeysymFor returns the keysym for a key code. Codes without an X keysym
// (Fn, NumpadEqual) report false.
func KeysymFor(code hotkey.Code) (Keysym, bool) {
	sym, ok := keysyms[code]
	return sym, ok
}

// ModMaskFor converts hotkey modifiers to the core protocol modifier mask.
// Alt is Mod1 and Super is Mod4 on standard keymaps.
func ModMaskFor(mods hotkey.Modifiers) ModMask {
	var mask ModMask
	if mods.Has(hotkey.ModShift) {
		mask |= ModMaskShift
	}
	if mods.Has(hotkey.ModControl) {
		mask |= ModMaskControl
	}
	if mods.Has(hotkey.ModAlt) {
		mask |= ModMask1
	}
	if mods.Has(hotkey.ModSuper) || mods.Has(hotkey.ModMeta) {
		mask |= ModMask4
	}
	return mask
}
