package action

import (
	"context"
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

var errNoClipboard = errors.New("no clipboard utility found: install xclip, xsel or wl-clipboard")

// writeClipboard is swapped out in tests; the real clipboard needs a display
// and an external utility.
var writeClipboard = func(text string) error {
	if clipboard.Unsupported {
		return errNoClipboard
	}
	return clipboard.WriteAll(text)
}

type clipboardAction struct {
	text string
}

func (a *clipboardAction) Run(ctx context.Context) error {
	if err := writeClipboard(a.text); err != nil {
		return fmt.Errorf("failed to write clipboard: %w", err)
	}
	return nil
}

func (a *clipboardAction) String() string { return "clipboard" }
