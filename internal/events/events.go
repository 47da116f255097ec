// Package events broadcasts hotkey press and release notifications to any
// number of subscribers without ever blocking the publisher.
package events

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

type State int

const (
	Pressed State = iota
	Released
)

func (s State) String() string {
	switch s {
	case Pressed:
		return "pressed"
	case Released:
		return "released"
	default:
		return "unknown"
	}
}

// Event reports a state change of the hotkey with the given ID.
type Event struct {
	ID    uint32 `json:"id"`
	State State  `json:"state"`
}

// DefaultBuffer is used by Subscribe when buffer <= 0.
const DefaultBuffer = 64

// Subscription receives every event published after it was created, in
// publish order. Events that do not fit the buffer are dropped.
type Subscription struct {
	id      uuid.UUID
	ch      chan Event
	b       *Broadcaster
	dropped atomic.Uint64
	once    sync.Once
}

func (s *Subscription) ID() uuid.UUID { return s.id }

func (s *Subscription) C() <-chan Event { return s.ch }

// Dropped counts events lost because the subscriber fell behind.
func (s *Subscription) Dropped() uint64 { return s.dropped.Load() }

// Close detaches the subscription and closes its channel.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.b.mu.Lock()
		delete(s.b.subs, s.id)
		s.b.mu.Unlock()
		close(s.ch)
	})
}

type Broadcaster struct {
	mu      sync.RWMutex
	subs    map[uuid.UUID]*Subscription
	handler atomic.Pointer[func(Event)]
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[uuid.UUID]*Subscription)}
}

var defaultBroadcaster = NewBroadcaster()

// Default returns the process-wide broadcaster.
func Default() *Broadcaster { return defaultBroadcaster }

func (b *Broadcaster) Subscribe(buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	s := &Subscription{
		id: uuid.New(),
		ch: make(chan Event, buffer),
		b:  b,
	}
	b.mu.Lock()
	b.subs[s.id] = s
	b.mu.Unlock()
	return s
}

// SetHandler installs a function called for every event on the publishing
// goroutine, before subscribers are served. It must return quickly. A nil
// handler removes the current one.
func (b *Broadcaster) SetHandler(fn func(Event)) {
	if fn == nil {
		b.handler.Store(nil)
		return
	}
	b.handler.Store(&fn)
}

func (b *Broadcaster) Publish(ev Event) {
	if fn := b.handler.Load(); fn != nil {
		(*fn)(ev)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, s := range b.subs {
		select {
		case s.ch <- ev:
		default:
			s.dropped.Add(1)
		}
	}
}

// Subscribers returns the number of attached subscriptions.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}
