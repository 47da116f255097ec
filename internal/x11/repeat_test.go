package x11

import (
	"errors"
	"testing"

	"github.com/petems/hotkeyd/internal/hotkey"
)

type rawSource struct {
	results []pollResult
}

func (s *rawSource) next() (rawEvent, bool, error) {
	if len(s.results) == 0 {
		return rawEvent{}, false, nil
	}
	r := s.results[0]
	s.results = s.results[1:]
	return r.ev, r.ok, r.err
}

func press(code Keycode, time uint32) pollResult {
	return pollResult{ev: rawEvent{Event{Type: KeyPress, Keycode: code}, time}, ok: true}
}

func release(code Keycode, time uint32) pollResult {
	return pollResult{ev: rawEvent{Event{Type: KeyRelease, Keycode: code}, time}, ok: true}
}

func pollAll(f *repeatFilter) ([]Event, error) {
	var out []Event
	for {
		ev, ok, err := f.poll()
		if err != nil {
			return out, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, ev)
	}
}

func TestRepeatFilter(t *testing.T) {
	tests := []struct {
		name string
		raw  []pollResult
		want []EventType
	}{
		{
			name: "single tap",
			raw:  []pollResult{press(30, 100), release(30, 180)},
			want: []EventType{KeyPress, KeyRelease},
		},
		{
			name: "held key",
			raw: []pollResult{
				press(30, 100),
				release(30, 600), press(30, 600),
				release(30, 633), press(30, 633),
				release(30, 700),
			},
			want: []EventType{KeyPress, KeyRelease},
		},
		{
			name: "release then press of another key",
			raw:  []pollResult{press(30, 100), release(30, 200), press(31, 200)},
			want: []EventType{KeyPress, KeyRelease, KeyPress},
		},
		{
			name: "quick retap",
			raw:  []pollResult{press(30, 100), release(30, 150), press(30, 151), release(30, 220)},
			want: []EventType{KeyPress, KeyRelease, KeyPress, KeyRelease},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &rawSource{results: tt.raw}
			f := &repeatFilter{next: src.next}

			got, err := pollAll(f)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d events, got %d: %v", len(tt.want), len(got), got)
			}
			for i, ev := range got {
				if ev.Type != tt.want[i] {
					t.Errorf("event %d: expected %s, got %s", i, tt.want[i], ev.Type)
				}
			}
		})
	}
}

// An error read while looking past a release is delivered on the next poll.
func TestRepeatFilterKeepsErrorAfterRelease(t *testing.T) {
	src := &rawSource{results: []pollResult{
		release(30, 100),
		{err: ErrConnectionClosed},
	}}
	f := &repeatFilter{next: src.next}

	ev, ok, err := f.poll()
	if err != nil || !ok || ev.Type != KeyRelease {
		t.Fatalf("expected release, got %v ok=%v err=%v", ev, ok, err)
	}
	if _, _, err := f.poll(); !errors.Is(err, ErrConnectionClosed) {
		t.Errorf("expected ErrConnectionClosed, got %v", err)
	}
}

// A release at the end of the queue is not held back.
func TestRepeatFilterReleaseAtEndOfQueue(t *testing.T) {
	src := &rawSource{results: []pollResult{release(30, 100)}}
	f := &repeatFilter{next: src.next}

	if _, ok, _ := f.poll(); !ok {
		t.Fatal("expected the release")
	}
	src.results = append(src.results, press(30, 250))
	ev, ok, err := f.poll()
	if err != nil || !ok || ev.Type != KeyPress {
		t.Errorf("expected a later press, got %v ok=%v err=%v", ev, ok, err)
	}
}

func TestFakeDisconnect(t *testing.T) {
	f := NewFake()
	code := f.KeycodeOf(hotkey.KeyA)
	f.Press(code, 0)
	f.Disconnect()

	if _, _, err := f.PollEvent(); !errors.Is(err, ErrConnectionClosed) {
		t.Errorf("expected ErrConnectionClosed, got %v", err)
	}
	if err := f.GrabKey(code, 0); err == nil {
		t.Error("expected grab to fail after disconnect")
	}
}
