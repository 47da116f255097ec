package app

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/petems/hotkeyd/internal/action"
	"github.com/petems/hotkeyd/internal/config"
	"github.com/petems/hotkeyd/internal/events"
	"github.com/petems/hotkeyd/internal/hotkey"
	"github.com/petems/hotkeyd/internal/manager"
	"github.com/petems/hotkeyd/internal/relay"
	"github.com/rs/zerolog"
)

// Hotkeys is the part of the hotkey manager the app drives.
type Hotkeys interface {
	RegisterAll(ctx context.Context, hotkeys []hotkey.HotKey) error
	UnregisterAll(ctx context.Context, hotkeys []hotkey.HotKey) error
}

// StatusUpdater is an interface for updating status (e.g., tray icon)
type StatusUpdater interface {
	SetIdle()
	SetPaused()
	SetError()
	SetBindings(bindings []string)
}

// Relay receives a copy of every notification for a bound hotkey.
type Relay interface {
	Broadcast(msg relay.Message)
}

type Config struct {
	Hotkeys       Hotkeys
	Events        *events.Broadcaster
	Config        *config.Config
	Logger        zerolog.Logger
	StatusUpdater StatusUpdater // Optional - can be nil
	Relay         Relay         // Optional - can be nil
	// NewAction defaults to action.New.
	NewAction func(config.Action, zerolog.Logger) (action.Action, error)
}

type binding struct {
	hk  hotkey.HotKey
	act action.Action
}

type App struct {
	hotkeys   Hotkeys
	events    *events.Broadcaster
	log       zerolog.Logger
	status    StatusUpdater
	relay     Relay
	newAction func(config.Action, zerolog.Logger) (action.Action, error)
	// Subscribed in New so notifications for bindings registered by Start
	// are queued before Run begins.
	sub       *events.Subscription

	mu       sync.Mutex
	cfg      *config.Config
	bindings map[uint32]binding
	active   map[uint32]bool
	paused   bool
}

func New(cfg Config) *App {
	if cfg.Events == nil {
		cfg.Events = events.Default()
	}
	if cfg.NewAction == nil {
		cfg.NewAction = action.New
	}
	return &App{
		hotkeys:   cfg.Hotkeys,
		events:    cfg.Events,
		log:       cfg.Logger,
		status:    cfg.StatusUpdater,
		relay:     cfg.Relay,
		newAction: cfg.NewAction,
		sub:       cfg.Events.Subscribe(events.DefaultBuffer),
		cfg:       cfg.Config,
		bindings:  make(map[uint32]binding),
		active:    make(map[uint32]bool),
	}
}

// Start registers every configured binding. Bindings that fail are logged
// and reported in the returned error; the rest stay active.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.applyLocked(ctx, a.cfg)
}

// Run dispatches hotkey notifications until ctx is done. Notifications
// published since New are handled too. Run is called at most once.
func (a *App) Run(ctx context.Context) error {
	sub := a.sub
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			if n := sub.Dropped(); n > 0 {
				a.log.Warn().Uint64("dropped", n).Msg("Hotkey events were dropped")
			}
			return nil
		case ev, ok := <-sub.C():
			if !ok {
				return nil
			}
			a.OnEvent(ctx, ev)
		}
	}
}

// OnEvent handles one notification: it is mirrored to the relay, and a press
// runs the binding's action unless the app is paused.
func (a *App) OnEvent(ctx context.Context, ev events.Event) {
	a.mu.Lock()
	b, ok := a.bindings[ev.ID]
	paused := a.paused
	a.mu.Unlock()
	if !ok {
		return
	}

	a.log.Debug().Str("hotkey", b.hk.String()).Str("state", ev.State.String()).Msg("Hotkey event")
	if a.relay != nil {
		a.relay.Broadcast(relay.Message{
			Type:   "hotkey",
			ID:     ev.ID,
			Hotkey: b.hk.String(),
			State:  ev.State.String(),
		})
	}

	if ev.State != events.Pressed || paused {
		return
	}
	if err := b.act.Run(ctx); err != nil {
		a.log.Error().Err(err).Str("hotkey", b.hk.String()).Str("action", b.act.String()).Msg("Action failed")
		if a.status != nil {
			a.status.SetError()
		}
		return
	}
	a.log.Info().Str("hotkey", b.hk.String()).Str("action", b.act.String()).Msg("Ran action")
}

// Reload switches to a new config: bindings that disappeared are
// unregistered, new ones registered, and changed actions swapped in place.
func (a *App) Reload(ctx context.Context, cfg *config.Config) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.applyLocked(ctx, cfg)
}

func (a *App) applyLocked(ctx context.Context, cfg *config.Config) error {
	next := make(map[uint32]binding, len(cfg.Bindings))
	var errs []error
	for _, bc := range cfg.Bindings {
		hk, err := bc.HotKey()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		act, err := a.newAction(bc.Action, a.log.With().Str("hotkey", hk.String()).Logger())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		next[hk.ID()] = binding{hk: hk, act: act}
	}

	var stale []hotkey.HotKey
	for id := range a.active {
		if _, keep := next[id]; !keep {
			stale = append(stale, a.bindings[id].hk)
		}
	}
	if len(stale) > 0 {
		cctx, cancel := a.callCtx(ctx)
		if err := a.hotkeys.UnregisterAll(cctx, stale); err != nil {
			errs = append(errs, err)
		}
		cancel()
		for _, hk := range stale {
			delete(a.active, hk.ID())
		}
	}

	a.cfg = cfg
	a.bindings = next
	if !a.paused {
		if err := a.registerLocked(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	err := errors.Join(errs...)
	a.reportLocked(err)
	return err
}

// registerLocked registers every binding that is not active yet.
func (a *App) registerLocked(ctx context.Context) error {
	var pending []hotkey.HotKey
	for id, b := range a.bindings {
		if !a.active[id] {
			pending = append(pending, b.hk)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	cctx, cancel := a.callCtx(ctx)
	defer cancel()
	err := a.hotkeys.RegisterAll(cctx, pending)
	failed := failedIDs(err, pending)
	for _, hk := range pending {
		if failed[hk.ID()] {
			a.log.Warn().Str("hotkey", hk.String()).Msg("Hotkey not registered")
			continue
		}
		a.active[hk.ID()] = true
	}
	a.log.Info().Int("active", len(a.active)).Int("configured", len(a.bindings)).Msg("Bindings registered")
	return err
}

// Pause unregisters every binding; Resume registers them again.
func (a *App) Pause(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.paused {
		return nil
	}
	a.paused = true

	err := a.unregisterActiveLocked(ctx)
	a.log.Info().Msg("Hotkeys paused")
	a.reportLocked(err)
	return err
}

func (a *App) Resume(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.paused {
		return nil
	}
	a.paused = false
	err := a.registerLocked(ctx)
	a.log.Info().Msg("Hotkeys resumed")
	a.reportLocked(err)
	return err
}

func (a *App) Paused() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.paused
}

// Bindings lists the configured hotkeys in canonical form, sorted.
func (a *App) Bindings() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.bindingsLocked()
}

// Active reports whether hk is currently registered.
func (a *App) Active(hk hotkey.HotKey) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.active[hk.ID()]
}

func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.unregisterActiveLocked(ctx)
}

func (a *App) unregisterActiveLocked(ctx context.Context) error {
	active := a.activeLocked()
	a.active = make(map[uint32]bool)
	if len(active) == 0 {
		return nil
	}
	cctx, cancel := a.callCtx(ctx)
	defer cancel()
	return a.hotkeys.UnregisterAll(cctx, active)
}

func (a *App) activeLocked() []hotkey.HotKey {
	out := make([]hotkey.HotKey, 0, len(a.active))
	for id := range a.active {
		out = append(out, a.bindings[id].hk)
	}
	return out
}

func (a *App) bindingsLocked() []string {
	out := make([]string, 0, len(a.bindings))
	for _, b := range a.bindings {
		out = append(out, b.hk.String())
	}
	sort.Strings(out)
	return out
}

func (a *App) reportLocked(err error) {
	if a.status == nil {
		return
	}
	a.status.SetBindings(a.bindingsLocked())
	switch {
	case err != nil:
		a.status.SetError()
	case a.paused:
		a.status.SetPaused()
	default:
		a.status.SetIdle()
	}
}

// callCtx bounds a single manager call by the configured reply timeout.
func (a *App) callCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if a.cfg == nil || a.cfg.ReplyTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, time.Duration(a.cfg.ReplyTimeout))
}

// failedIDs works out which hotkeys of a batch were not applied. Errors that
// do not name a hotkey count against the whole batch.
func failedIDs(err error, batch []hotkey.HotKey) map[uint32]bool {
	failed := make(map[uint32]bool)
	if err == nil {
		return failed
	}

	errs := []error{err}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		errs = joined.Unwrap()
	}
	for _, e := range errs {
		var herr *manager.Error
		if errors.As(e, &herr) {
			failed[herr.HotKey.ID()] = true
			continue
		}
		for _, hk := range batch {
			failed[hk.ID()] = true
		}
		break
	}
	return failed
}
