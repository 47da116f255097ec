package events

import (
	"testing"
	"time"
)

func recv(t *testing.T, s *Subscription) Event {
	t.Helper()
	select {
	case ev := <-s.C():
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestPublishFansOut(t *testing.T) {
	b := NewBroadcaster()
	s1 := b.Subscribe(4)
	s2 := b.Subscribe(4)
	defer s1.Close()
	defer s2.Close()

	b.Publish(Event{ID: 7, State: Pressed})
	b.Publish(Event{ID: 7, State: Released})

	for _, s := range []*Subscription{s1, s2} {
		if ev := recv(t, s); ev.State != Pressed || ev.ID != 7 {
			t.Errorf("expected pressed 7, got %+v", ev)
		}
		if ev := recv(t, s); ev.State != Released {
			t.Errorf("expected released, got %+v", ev)
		}
	}
}

func TestPublishNeverBlocks(t *testing.T) {
	b := NewBroadcaster()
	s := b.Subscribe(1)
	defer s.Close()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 10; i++ {
			b.Publish(Event{ID: uint32(i)})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber")
	}
	if got := s.Dropped(); got != 9 {
		t.Errorf("expected 9 dropped events, got %d", got)
	}
	if ev := recv(t, s); ev.ID != 0 {
		t.Errorf("expected the first event to be kept, got %+v", ev)
	}
}

func TestCloseDetaches(t *testing.T) {
	b := NewBroadcaster()
	s := b.Subscribe(0)
	if b.Subscribers() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", b.Subscribers())
	}
	s.Close()
	s.Close() // should not panic

	if b.Subscribers() != 0 {
		t.Errorf("expected 0 subscribers, got %d", b.Subscribers())
	}
	if _, ok := <-s.C(); ok {
		t.Error("expected closed channel")
	}
	b.Publish(Event{ID: 1})
}

func TestSetHandler(t *testing.T) {
	b := NewBroadcaster()
	var got []Event
	b.SetHandler(func(ev Event) { got = append(got, ev) })

	b.Publish(Event{ID: 3, State: Pressed})
	b.SetHandler(nil)
	b.Publish(Event{ID: 3, State: Released})

	if len(got) != 1 || got[0].ID != 3 {
		t.Errorf("unexpected handler calls: %+v", got)
	}
}

func TestSubscriptionIDsUnique(t *testing.T) {
	b := NewBroadcaster()
	a, c := b.Subscribe(1), b.Subscribe(1)
	if a.ID() == c.ID() {
		t.Error("expected distinct subscription ids")
	}
}
