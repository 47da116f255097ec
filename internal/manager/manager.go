// Package manager runs the global hotkey engine: a single worker goroutine
// owns the X11 connection and the registration table, and Manager sends it
// commands.
package manager

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/petems/hotkeyd/internal/events"
	"github.com/petems/hotkeyd/internal/hotkey"
	"github.com/petems/hotkeyd/internal/x11"
	"github.com/rs/zerolog"
)

const (
	// DefaultPollInterval bounds the latency between a key event or a
	// command and its handling.
	DefaultPollInterval = 50 * time.Millisecond
	defaultQueueSize    = 32
)

// OpenFunc opens the display the worker runs on.
type OpenFunc func(log zerolog.Logger) (x11.Display, error)

type Options struct {
	PollInterval time.Duration
	// Broadcaster receives notifications. Defaults to events.Default().
	Broadcaster *events.Broadcaster
	Logger      zerolog.Logger
	// Open defaults to x11.Open.
	Open      OpenFunc
	QueueSize int
}

// Manager is the handle applications hold. It is safe for concurrent use;
// share the pointer rather than creating several managers.
type Manager struct {
	commands  chan command
	done      chan struct{}
	closed    atomic.Bool
	closeOnce sync.Once
}

// New starts the worker and waits until it has opened the display. It fails
// when the display cannot be opened or ctx ends first.
func New(ctx context.Context, opts Options) (*Manager, error) {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Broadcaster == nil {
		opts.Broadcaster = events.Default()
	}
	if opts.Open == nil {
		opts.Open = x11.Open
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = defaultQueueSize
	}

	m := &Manager{
		commands: make(chan command, opts.QueueSize),
		done:     make(chan struct{}),
	}
	w := &worker{
		reg:      make(registry),
		commands: m.commands,
		sink:     opts.Broadcaster,
		interval: opts.PollInterval,
		log:      opts.Logger.With().Str("component", "hotkey").Logger(),
		done:     m.done,
	}

	ready := make(chan error, 1)
	go w.run(opts.Open, ready)

	select {
	case err := <-ready:
		if err != nil {
			return nil, fmt.Errorf("starting hotkey worker: %w", err)
		}
	case <-ctx.Done():
		// The worker picks this up once the display is open.
		m.shutdown()
		return nil, ctx.Err()
	}
	return m, nil
}

// Register grabs hk globally.
func (m *Manager) Register(ctx context.Context, hk hotkey.HotKey) error {
	return m.send(ctx, cmdRegister, []hotkey.HotKey{hk})
}

func (m *Manager) Unregister(ctx context.Context, hk hotkey.HotKey) error {
	return m.send(ctx, cmdUnregister, []hotkey.HotKey{hk})
}

// RegisterAll attempts every hotkey. Hotkeys that registered stay registered
// when others fail; the returned error joins every failure.
func (m *Manager) RegisterAll(ctx context.Context, hotkeys []hotkey.HotKey) error {
	if len(hotkeys) == 0 {
		return nil
	}
	return m.send(ctx, cmdRegisterBatch, append([]hotkey.HotKey(nil), hotkeys...))
}

func (m *Manager) UnregisterAll(ctx context.Context, hotkeys []hotkey.HotKey) error {
	if len(hotkeys) == 0 {
		return nil
	}
	return m.send(ctx, cmdUnregisterBatch, append([]hotkey.HotKey(nil), hotkeys...))
}

// send delivers a command and waits for its reply. Once delivered a command
// is committed: cancelling ctx only stops the wait.
func (m *Manager) send(ctx context.Context, kind commandKind, hotkeys []hotkey.HotKey) error {
	if m.closed.Load() {
		return ErrWorkerUnavailable
	}

	cmd := newCommand(kind, hotkeys)
	select {
	case m.commands <- cmd:
	case <-m.done:
		return ErrWorkerUnavailable
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case err := <-cmd.reply:
		return err
	case <-m.done:
		// The reply may have been sent just before the worker stopped.
		select {
		case err := <-cmd.reply:
			return err
		default:
			return ErrWorkerUnavailable
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the worker, releasing every grab and the display connection.
// Later calls return immediately.
func (m *Manager) Close() error {
	m.shutdown()
	<-m.done
	return nil
}

func (m *Manager) shutdown() {
	m.closeOnce.Do(func() {
		m.closed.Store(true)
		select {
		case m.commands <- command{kind: cmdShutdown}:
		case <-m.done:
		}
	})
}

// Done is closed when the worker has stopped.
func (m *Manager) Done() <-chan struct{} { return m.done }

// Active reports whether the manager still accepts commands.
func (m *Manager) Active() bool {
	select {
	case <-m.done:
		return false
	default:
		return !m.closed.Load()
	}
}
