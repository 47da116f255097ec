package hotkey

// Code names a physical key using the W3C UI Events code values.
type Code string

const (
	KeyA Code = "KeyA"
	KeyB Code = "KeyB"
	KeyC Code = "KeyC"
	KeyD Code = "KeyD"
	KeyE Code = "KeyE"
	KeyF Code = "KeyF"
	KeyG Code = "KeyG"
	KeyH Code = "KeyH"
	KeyI Code = "KeyI"
	KeyJ Code = "KeyJ"
	KeyK Code = "KeyK"
	KeyL Code = "KeyL"
	KeyM Code = "KeyM"
	KeyN Code = "KeyN"
	KeyO Code = "KeyO"
	KeyP Code = "KeyP"
	KeyQ Code = "KeyQ"
	KeyR Code = "KeyR"
	KeyS Code = "KeyS"
	KeyT Code = "KeyT"
	KeyU Code = "KeyU"
	KeyV Code = "KeyV"
	KeyW Code = "KeyW"
	KeyX Code = "KeyX"
	KeyY Code = "KeyY"
	KeyZ Code = "KeyZ"

	Digit0 Code = "Digit0"
	Digit1 Code = "Digit1"
	Digit2 Code = "Digit2"
	Digit3 Code = "Digit3"
	Digit4 Code = "Digit4"
	Digit5 Code = "Digit5"
	Digit6 Code = "Digit6"
	Digit7 Code = "Digit7"
	Digit8 Code = "Digit8"
	Digit9 Code = "Digit9"

	Backquote    Code = "Backquote"
	Backslash    Code = "Backslash"
	BracketLeft  Code = "BracketLeft"
	BracketRight Code = "BracketRight"
	Comma        Code = "Comma"
	Equal        Code = "Equal"
	Minus        Code = "Minus"
	Period       Code = "Period"
	Quote        Code = "Quote"
	Semicolon    Code = "Semicolon"
	Slash        Code = "Slash"

	Backspace   Code = "Backspace"
	CapsLock    Code = "CapsLock"
	Enter       Code = "Enter"
	Space       Code = "Space"
	Tab         Code = "Tab"
	Delete      Code = "Delete"
	End         Code = "End"
	Home        Code = "Home"
	Insert      Code = "Insert"
	PageDown    Code = "PageDown"
	PageUp      Code = "PageUp"
	ArrowDown   Code = "ArrowDown"
	ArrowLeft   Code = "ArrowLeft"
	ArrowRight  Code = "ArrowRight"
	ArrowUp     Code = "ArrowUp"
	Escape      Code = "Escape"
	PrintScreen Code = "PrintScreen"
	ScrollLock  Code = "ScrollLock"
	NumLock     Code = "NumLock"
	Pause       Code = "Pause"
	Fn          Code = "Fn"

	Numpad0        Code = "Numpad0"
	Numpad1        Code = "Numpad1"
	Numpad2        Code = "Numpad2"
	Numpad3        Code = "Numpad3"
	Numpad4        Code = "Numpad4"
	Numpad5        Code = "Numpad5"
	Numpad6        Code = "Numpad6"
	Numpad7        Code = "Numpad7"
	Numpad8        Code = "Numpad8"
	Numpad9        Code = "Numpad9"
	NumpadAdd      Code = "NumpadAdd"
	NumpadDecimal  Code = "NumpadDecimal"
	NumpadDivide   Code = "NumpadDivide"
	NumpadEnter    Code = "NumpadEnter"
	NumpadEqual    Code = "NumpadEqual"
	NumpadMultiply Code = "NumpadMultiply"
	NumpadSubtract Code = "NumpadSubtract"

	F1  Code = "F1"
	F2  Code = "F2"
	F3  Code = "F3"
	F4  Code = "F4"
	F5  Code = "F5"
	F6  Code = "F6"
	F7  Code = "F7"
	F8  Code = "F8"
	F9  Code = "F9"
	F10 Code = "F10"
	F11 Code = "F11"
	F12 Code = "F12"
	F13 Code = "F13"
	F14 Code = "F14"
	F15 Code = "F15"
	F16 Code = "F16"
	F17 Code = "F17"
	F18 Code = "F18"
	F19 Code = "F19"
	F20 Code = "F20"
	F21 Code = "F21"
	F22 Code = "F22"
	F23 Code = "F23"
	F24 Code = "F24"

	AudioVolumeDown    Code = "AudioVolumeDown"
	AudioVolumeMute    Code = "AudioVolumeMute"
	AudioVolumeUp      Code = "AudioVolumeUp"
	MediaPlay          Code = "MediaPlay"
	MediaPause         Code = "MediaPause"
	MediaStop          Code = "MediaStop"
	MediaTrackNext     Code = "MediaTrackNext"
	MediaTrackPrevious Code = "MediaTrackPrevious"
)

var codes = []Code{
	KeyA, KeyB, KeyC, KeyD, KeyE, KeyF, KeyG, KeyH, KeyI, KeyJ, KeyK, KeyL, KeyM, KeyN, KeyO, KeyP, KeyQ, KeyR, KeyS, KeyT, KeyU, KeyV, KeyW, KeyX, KeyY, KeyZ,
	Digit0, Digit1, Digit2, Digit3, Digit4, Digit5, Digit6, Digit7, Digit8, Digit9,
	Backquote, Backslash, BracketLeft, BracketRight, Comma, Equal, Minus, Period, Quote, Semicolon, Slash,
	Backspace, CapsLock, Enter, Space, Tab, Delete, End, Home, Insert, PageDown, PageUp, ArrowDown, ArrowLeft, ArrowRight, ArrowUp, Escape, PrintScreen, ScrollLock, NumLock, Pause, Fn,
	Numpad0, Numpad1, Numpad2, Numpad3, Numpad4, Numpad5, Numpad6, Numpad7, Numpad8, Numpad9, NumpadAdd, NumpadDecimal, NumpadDivide, NumpadEnter, NumpadEqual, NumpadMultiply, NumpadSubtract,
	F1, F2, F3, F4, F5, F6, F7, F8, F9, F10, F11, F12, F13, F14, F15, F16, F17, F18, F19, F20, F21, F22, F23, F24,
	AudioVolumeDown, AudioVolumeMute, AudioVolumeUp, MediaPlay, MediaPause, MediaStop, MediaTrackNext, MediaTrackPrevious,
}

// Codes returns every known key code.
func Codes() []Code {
	return append([]Code(nil), codes...)
}
