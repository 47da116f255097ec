package manager

import (
	"errors"
	"time"

	"github.com/petems/hotkeyd/internal/events"
	"github.com/petems/hotkeyd/internal/hotkey"
	"github.com/petems/hotkeyd/internal/x11"
	"github.com/rs/zerolog"
)

// worker owns the display and the registry. All of its methods run on the
// goroutine started by New.
type worker struct {
	display  x11.Display
	reg      registry
	commands <-chan command
	sink     *events.Broadcaster
	interval time.Duration
	log      zerolog.Logger
	done     chan struct{}
}

func (w *worker) run(open OpenFunc, ready chan<- error) {
	defer close(w.done)

	d, err := open(w.log)
	if err != nil {
		w.log.Error().Err(err).Msg("Failed to open display")
		ready <- err
		return
	}
	w.display = d
	ready <- nil
	w.log.Info().Dur("poll_interval", w.interval).Msg("Hotkey worker running")

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		// Service every pending event so no queue builds up between ticks.
		if err := w.drain(); err != nil {
			w.log.Error().Err(err).Msg("Lost connection to display")
			w.shutdown()
			return
		}

		select {
		case cmd := <-w.commands:
			if cmd.kind == cmdShutdown {
				w.shutdown()
				return
			}
			w.handle(cmd)
		default:
		}

		<-ticker.C
	}
}

// drain returns an error only when the display is gone for good.
func (w *worker) drain() error {
	for {
		ev, ok, err := w.display.PollEvent()
		if errors.Is(err, x11.ErrConnectionClosed) {
			return err
		}
		if err != nil {
			w.log.Warn().Err(err).Msg("X11 error")
			continue
		}
		if !ok {
			return nil
		}
		w.dispatch(ev)
	}
}

func (w *worker) dispatch(ev x11.Event) {
	switch ev.Type {
	case x11.KeyPress:
		for _, id := range w.reg.press(ev.Keycode, ev.State&x11.ModMaskRelevant) {
			w.sink.Publish(events.Event{ID: id, State: events.Pressed})
		}
	case x11.KeyRelease:
		for _, id := range w.reg.release(ev.Keycode) {
			w.sink.Publish(events.Event{ID: id, State: events.Released})
		}
	}
}

func (w *worker) handle(cmd command) {
	var err error
	switch cmd.kind {
	case cmdRegister:
		err = w.register(cmd.hotkeys[0])
	case cmdUnregister:
		err = w.unregister(cmd.hotkeys[0])
	case cmdRegisterBatch:
		err = w.batch(cmd.hotkeys, w.register)
	case cmdUnregisterBatch:
		err = w.batch(cmd.hotkeys, w.unregister)
	}
	if err != nil {
		w.log.Debug().Err(err).Str("command", cmd.kind.String()).Msg("Command failed")
	}
	cmd.reply <- err
}

// batch attempts every hotkey and joins all failures. Earlier successes are
// kept.
func (w *worker) batch(hotkeys []hotkey.HotKey, fn func(hotkey.HotKey) error) error {
	var errs []error
	for _, hk := range hotkeys {
		if err := fn(hk); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *worker) shutdown() {
	n := w.reg.size()
	w.releaseAll()
	if err := w.display.Close(); err != nil {
		w.log.Warn().Err(err).Msg("Failed to close display")
	}
	w.log.Info().Int("released", n).Msg("Hotkey worker stopped")
}
