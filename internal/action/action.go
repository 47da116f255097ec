package action

import (
	"context"
	"fmt"

	"github.com/petems/hotkeyd/internal/config"
	"github.com/rs/zerolog"
)

// Action defines what a binding does when its hotkey is pressed
type Action interface {
	Run(ctx context.Context) error
	String() string
}

// New builds the action described by cfg
func New(cfg config.Action, log zerolog.Logger) (Action, error) {
	switch cfg.Type {
	case config.ActionExec:
		return &execAction{command: cfg.Command, args: cfg.Args, log: log}, nil
	case config.ActionClipboard:
		return &clipboardAction{text: cfg.Text}, nil
	case config.ActionLog, "":
		return &logAction{log: log}, nil
	default:
		return nil, fmt.Errorf("unknown action type %q", cfg.Type)
	}
}

type logAction struct {
	log zerolog.Logger
}

func (a *logAction) Run(ctx context.Context) error {
	a.log.Info().Msg("Hotkey pressed")
	return nil
}

func (a *logAction) String() string { return "log" }
