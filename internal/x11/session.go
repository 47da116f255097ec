package x11

import (
	"errors"
	"strings"
)

var ErrNoDisplay = errors.New("DISPLAY is not set: an X11 session is required")

// CheckSession verifies that an X server can be reached before the display is
// opened. It returns a warning when running under Wayland, where grabs only
// see keys typed into XWayland windows.
func CheckSession(getenv func(string) string) (warning string, err error) {
	if getenv("DISPLAY") == "" {
		return "", ErrNoDisplay
	}
	if strings.EqualFold(getenv("XDG_SESSION_TYPE"), "wayland") || getenv("WAYLAND_DISPLAY") != "" {
		return "Wayland session: hotkeys only fire while an XWayland window has focus", nil
	}
	return "", nil
}
