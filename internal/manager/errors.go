package manager

import (
	"errors"

	"github.com/petems/hotkeyd/internal/hotkey"
)

var (
	// ErrAlreadyRegistered means the combination is grabbed by another client
	// or already registered by this manager.
	ErrAlreadyRegistered = errors.New("hotkey already registered")
	// ErrFailedToRegister means the key has no keycode in the current keyboard
	// mapping or the server rejected the grab.
	ErrFailedToRegister   = errors.New("failed to register hotkey")
	ErrFailedToUnregister = errors.New("failed to unregister hotkey")
	// ErrUnsupportedKey means the key has no X11 keysym.
	ErrUnsupportedKey = errors.New("key not supported on X11")
	// ErrWorkerUnavailable means the command could not be delivered or was
	// never answered because the worker has stopped.
	ErrWorkerUnavailable = errors.New("hotkey worker unavailable")
)

// Error describes a failed operation on a single hotkey. It unwraps to one
// of the sentinel errors above.
type Error struct {
	Op     string
	HotKey hotkey.HotKey
	Err    error
	Reason string
}

func (e *Error) Error() string {
	msg := e.Op + " " + e.HotKey.String() + ": " + e.Err.Error()
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }
