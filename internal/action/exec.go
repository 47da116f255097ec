package action

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/rs/zerolog"
)

type execAction struct {
	command string
	args    []string
	log     zerolog.Logger
}

// Run starts the command and returns without waiting for it. The process
// outlives ctx; it is reaped in the background.
func (a *execAction) Run(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	cmd := exec.Command(a.command, a.args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", a.command, err)
	}

	pid := cmd.Process.Pid
	a.log.Debug().Str("command", a.command).Int("pid", pid).Msg("Started command")
	go func() {
		if err := cmd.Wait(); err != nil {
			a.log.Warn().Err(err).Str("command", a.command).Int("pid", pid).Msg("Command exited with error")
		}
	}()
	return nil
}

func (a *execAction) String() string {
	return strings.TrimSpace("exec " + a.command + " " + strings.Join(a.args, " "))
}
