package hotkey

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyToken       = errors.New("empty hotkey token")
	ErrUnexpectedFormat = errors.New("unexpected hotkey format")
	ErrUnknownCode      = errors.New("unrecognized key code")
)

// keyAliases maps upper-cased shorthands to codes. Canonical code names are
// matched case-insensitively without needing an entry here.
var keyAliases = map[string]Code{
	"`": Backquote, "\\": Backslash, "[": BracketLeft, "]": BracketRight,
	",": Comma, "=": Equal, "-": Minus, ".": Period, "'": Quote, ";": Semicolon, "/": Slash,
	"DOWN": ArrowDown, "LEFT": ArrowLeft, "RIGHT": ArrowRight, "UP": ArrowUp,
	"ESC": Escape, "RETURN": Enter,
	"NUMADD": NumpadAdd, "NUMPADPLUS": NumpadAdd, "NUMPLUS": NumpadAdd,
	"NUMDECIMAL": NumpadDecimal, "NUMDIVIDE": NumpadDivide, "NUMENTER": NumpadEnter,
	"NUMEQUAL": NumpadEqual, "NUMMULTIPLY": NumpadMultiply, "NUMSUBTRACT": NumpadSubtract,
	"VOLUMEDOWN": AudioVolumeDown, "VOLUMEUP": AudioVolumeUp, "VOLUMEMUTE": AudioVolumeMute,
}

var codesByUpper = func() map[string]Code {
	m := make(map[string]Code, len(codes)*2)
	for _, c := range codes {
		name := strings.ToUpper(string(c))
		m[name] = c
		switch {
		case strings.HasPrefix(name, "KEY"):
			m[strings.TrimPrefix(name, "KEY")] = c
		case strings.HasPrefix(name, "DIGIT"):
			m[strings.TrimPrefix(name, "DIGIT")] = c
		case strings.HasPrefix(name, "NUMPAD") && len(name) == len("NUMPAD0"):
			m["NUM"+strings.TrimPrefix(name, "NUMPAD")] = c
		}
	}
	for alias, c := range keyAliases {
		m[alias] = c
	}
	return m
}()

// Parse reads a hotkey such as "ctrl+shift+KeyQ". Modifiers must come before
// the key: "shift+alt+KeyQ" parses, "shift+KeyQ+alt" does not.
func Parse(s string) (HotKey, error) {
	tokens := strings.Split(s, "+")
	if len(tokens) == 1 {
		key, err := ParseCode(tokens[0])
		if err != nil {
			return HotKey{}, err
		}
		return New(0, key), nil
	}

	var (
		mods Modifiers
		key  Code
	)
	for _, raw := range tokens {
		token := strings.TrimSpace(raw)
		if token == "" {
			return HotKey{}, fmt.Errorf("%w: %q", ErrEmptyToken, s)
		}
		if key != "" {
			return HotKey{}, fmt.Errorf("%w: %q", ErrUnexpectedFormat, s)
		}

		switch strings.ToUpper(token) {
		case "OPTION", "ALT":
			mods |= ModAlt
		case "CONTROL", "CTRL":
			mods |= ModControl
		case "COMMAND", "CMD", "SUPER", "META", "WIN":
			mods |= ModSuper
		case "SHIFT":
			mods |= ModShift
		case "COMMANDORCONTROL", "COMMANDORCTRL", "CMDORCTRL", "CMDORCONTROL":
			mods |= ModControl
		default:
			c, err := ParseCode(token)
			if err != nil {
				return HotKey{}, err
			}
			key = c
		}
	}
	if key == "" {
		return HotKey{}, fmt.Errorf("%w: %q has no key", ErrUnexpectedFormat, s)
	}
	return New(mods, key), nil
}

// ParseCode resolves a single key token, e.g. "KeyQ", "q" or "Esc".
func ParseCode(token string) (Code, error) {
	if c, ok := codesByUpper[strings.ToUpper(strings.TrimSpace(token))]; ok {
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCode, token)
}
