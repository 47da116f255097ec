package manager

import (
	"errors"
	"testing"

	"github.com/petems/hotkeyd/internal/events"
	"github.com/petems/hotkeyd/internal/hotkey"
	"github.com/petems/hotkeyd/internal/x11"
	"github.com/rs/zerolog"
)

func newTestWorker(t *testing.T) (*worker, *x11.FakeDisplay, *events.Subscription) {
	t.Helper()
	fake := x11.NewFake()
	b := events.NewBroadcaster()
	sub := b.Subscribe(16)
	t.Cleanup(sub.Close)
	return &worker{
		display: fake,
		reg:     make(registry),
		sink:    b,
		log:     zerolog.Nop(),
	}, fake, sub
}

// collect returns every event already delivered to sub.
func collect(sub *events.Subscription) []events.Event {
	var out []events.Event
	for {
		select {
		case ev := <-sub.C():
			out = append(out, ev)
		default:
			return out
		}
	}
}

var ctrlShiftX = hotkey.New(hotkey.ModControl|hotkey.ModShift, hotkey.KeyX)

func TestRegisterGrabsLockVariants(t *testing.T) {
	w, fake, _ := newTestWorker(t)

	if err := w.register(ctrlShiftX); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	code := fake.KeycodeOf(hotkey.KeyX)
	base := x11.ModMaskControl | x11.ModMaskShift
	for _, lock := range lockVariants {
		if !fake.Grabbed(code, base|lock) {
			t.Errorf("expected grab with mods %#x", base|lock)
		}
	}
	if fake.GrabCount() != 4 {
		t.Errorf("expected 4 grabs, got %d", fake.GrabCount())
	}
}

func TestRegisterDuplicateRejected(t *testing.T) {
	w, _, _ := newTestWorker(t)

	if err := w.register(ctrlShiftX); err != nil {
		t.Fatal(err)
	}
	err := w.register(ctrlShiftX)
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	if w.reg.size() != 1 {
		t.Errorf("expected exactly one entry, got %d", w.reg.size())
	}

	var herr *Error
	if !errors.As(err, &herr) || herr.HotKey != ctrlShiftX {
		t.Errorf("expected *Error carrying the hotkey, got %#v", err)
	}
}

func TestRegisterConflictReleasesGrabs(t *testing.T) {
	w, fake, _ := newTestWorker(t)
	code := fake.KeycodeOf(hotkey.KeyX)
	fake.GrabbedElsewhere(code, x11.ModMaskControl|x11.ModMaskShift|x11.ModMaskLock)

	err := w.register(ctrlShiftX)
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
	if fake.GrabCount() != 0 {
		t.Errorf("expected partial grabs to be released, %d left", fake.GrabCount())
	}
	if w.reg.size() != 0 {
		t.Errorf("expected empty registry, got %d", w.reg.size())
	}
}

func TestRegisterUntranslatableKeys(t *testing.T) {
	w, fake, _ := newTestWorker(t)

	err := w.register(hotkey.New(hotkey.ModControl, hotkey.Fn))
	if !errors.Is(err, ErrUnsupportedKey) {
		t.Errorf("expected ErrUnsupportedKey, got %v", err)
	}

	fake.Unmap(hotkey.F13)
	err = w.register(hotkey.New(0, hotkey.F13))
	if !errors.Is(err, ErrFailedToRegister) {
		t.Errorf("expected ErrFailedToRegister, got %v", err)
	}

	err = w.unregister(hotkey.New(hotkey.ModControl, hotkey.Fn))
	if !errors.Is(err, ErrFailedToUnregister) {
		t.Errorf("expected ErrFailedToUnregister, got %v", err)
	}
}

func TestUnregisterUnknownIsNoop(t *testing.T) {
	w, _, _ := newTestWorker(t)
	other := hotkey.New(hotkey.ModAlt, hotkey.KeyA)
	if err := w.register(other); err != nil {
		t.Fatal(err)
	}

	if err := w.unregister(ctrlShiftX); err != nil {
		t.Fatalf("unregister of unknown hotkey failed: %v", err)
	}
	if w.reg.size() != 1 {
		t.Errorf("registry changed: %d entries", w.reg.size())
	}
}

func TestRegisterUnregisterRoundTrip(t *testing.T) {
	w, fake, _ := newTestWorker(t)

	for i := 0; i < 2; i++ {
		if err := w.register(ctrlShiftX); err != nil {
			t.Fatalf("register #%d failed: %v", i+1, err)
		}
		if err := w.unregister(ctrlShiftX); err != nil {
			t.Fatalf("unregister #%d failed: %v", i+1, err)
		}
	}
	if err := w.register(ctrlShiftX); err != nil {
		t.Fatalf("final register failed: %v", err)
	}
	if fake.GrabCount() != 4 || w.reg.size() != 1 {
		t.Errorf("unexpected state: grabs=%d entries=%d", fake.GrabCount(), w.reg.size())
	}
}

// A keymap change between register and unregister must not strand the grabs.
func TestUnregisterAfterKeyUnmapped(t *testing.T) {
	w, fake, _ := newTestWorker(t)
	other := hotkey.New(hotkey.ModAlt, hotkey.KeyA)
	for _, hk := range []hotkey.HotKey{ctrlShiftX, other} {
		if err := w.register(hk); err != nil {
			t.Fatal(err)
		}
	}

	fake.Unmap(hotkey.KeyX)

	if err := w.unregister(ctrlShiftX); err != nil {
		t.Fatalf("unregister failed: %v", err)
	}
	if fake.GrabCount() != 4 || w.reg.size() != 1 {
		t.Errorf("expected only the other hotkey left, grabs=%d entries=%d", fake.GrabCount(), w.reg.size())
	}
	if _, _, ok := w.reg.find(other.ID()); !ok {
		t.Error("other hotkey was removed")
	}
	if err := w.unregister(ctrlShiftX); err != nil {
		t.Errorf("second unregister failed: %v", err)
	}
}

func TestPressDeduplicatedAndReleaseModifierAgnostic(t *testing.T) {
	w, fake, sub := newTestWorker(t)
	if err := w.register(ctrlShiftX); err != nil {
		t.Fatal(err)
	}
	code := fake.KeycodeOf(hotkey.KeyX)
	state := x11.ModMaskControl | x11.ModMaskShift

	fake.Press(code, state)
	fake.Press(code, state)
	w.drain()

	got := collect(sub)
	if len(got) != 1 || got[0].State != events.Pressed || got[0].ID != ctrlShiftX.ID() {
		t.Fatalf("expected one pressed event, got %+v", got)
	}

	// Shift let go before the key.
	fake.Release(code, x11.ModMaskControl)
	w.drain()

	got = collect(sub)
	if len(got) != 1 || got[0].State != events.Released {
		t.Fatalf("expected one released event, got %+v", got)
	}
	if w.reg.release(code) != nil {
		t.Error("expected pressed flag to be cleared")
	}
}

func TestPressWithLocksMatches(t *testing.T) {
	w, fake, sub := newTestWorker(t)
	if err := w.register(ctrlShiftX); err != nil {
		t.Fatal(err)
	}
	code := fake.KeycodeOf(hotkey.KeyX)

	fake.Press(code, x11.ModMaskControl|x11.ModMaskShift|x11.ModMaskNumLock)
	fake.Release(code, x11.ModMaskControl|x11.ModMaskShift|x11.ModMaskNumLock)
	fake.Press(code, x11.ModMaskControl|x11.ModMaskShift|x11.ModMaskLock|x11.ModMaskNumLock)
	fake.Release(code, 0)
	w.drain()

	got := collect(sub)
	want := []events.State{events.Pressed, events.Released, events.Pressed, events.Released}
	if len(got) != len(want) {
		t.Fatalf("expected %d events, got %+v", len(want), got)
	}
	for i, ev := range got {
		if ev.State != want[i] || ev.ID != ctrlShiftX.ID() {
			t.Errorf("event %d: got %+v, want %v", i, ev, want[i])
		}
	}
}

func TestPressWrongModifiersIgnored(t *testing.T) {
	w, fake, sub := newTestWorker(t)
	if err := w.register(ctrlShiftX); err != nil {
		t.Fatal(err)
	}
	code := fake.KeycodeOf(hotkey.KeyX)

	fake.Press(code, x11.ModMaskControl)
	fake.Press(code, x11.ModMaskControl|x11.ModMaskShift|x11.ModMask1)
	fake.Release(code, x11.ModMaskControl)
	fake.Press(fake.KeycodeOf(hotkey.KeyY), x11.ModMaskControl|x11.ModMaskShift)
	w.drain()

	if got := collect(sub); len(got) != 0 {
		t.Errorf("expected no events, got %+v", got)
	}
}

func TestSameKeyDifferentModifiers(t *testing.T) {
	w, fake, sub := newTestWorker(t)
	ctrlX := hotkey.New(hotkey.ModControl, hotkey.KeyX)
	if err := w.register(ctrlShiftX); err != nil {
		t.Fatal(err)
	}
	if err := w.register(ctrlX); err != nil {
		t.Fatal(err)
	}
	code := fake.KeycodeOf(hotkey.KeyX)

	fake.Press(code, x11.ModMaskControl)
	fake.Release(code, x11.ModMaskControl)
	w.drain()

	got := collect(sub)
	if len(got) != 2 || got[0].ID != ctrlX.ID() || got[1].ID != ctrlX.ID() {
		t.Errorf("expected press/release for ctrl+X only, got %+v", got)
	}
}

func TestBatchRegisterPartialApplication(t *testing.T) {
	w, _, _ := newTestWorker(t)
	valid := hotkey.New(hotkey.ModAlt, hotkey.KeyQ)
	if err := w.register(ctrlShiftX); err != nil {
		t.Fatal(err)
	}

	cmd := newCommand(cmdRegisterBatch, []hotkey.HotKey{valid, ctrlShiftX, hotkey.New(0, hotkey.Fn)})
	w.handle(cmd)
	err := <-cmd.reply

	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("expected joined error to contain ErrAlreadyRegistered, got %v", err)
	}
	if !errors.Is(err, ErrUnsupportedKey) {
		t.Errorf("expected joined error to contain ErrUnsupportedKey, got %v", err)
	}
	if !w.reg.has(w.mustResolve(t, valid)) {
		t.Error("valid hotkey should stay registered")
	}
}

func TestBatchUnregisterReportsFailures(t *testing.T) {
	w, fake, _ := newTestWorker(t)
	valid := hotkey.New(hotkey.ModAlt, hotkey.KeyQ)
	if err := w.register(valid); err != nil {
		t.Fatal(err)
	}

	cmd := newCommand(cmdUnregisterBatch, []hotkey.HotKey{hotkey.New(0, hotkey.Fn), valid})
	w.handle(cmd)
	err := <-cmd.reply

	if !errors.Is(err, ErrFailedToUnregister) {
		t.Errorf("expected ErrFailedToUnregister, got %v", err)
	}
	if w.reg.size() != 0 || fake.GrabCount() != 0 {
		t.Errorf("expected valid hotkey to be removed, entries=%d grabs=%d", w.reg.size(), fake.GrabCount())
	}
}

func TestShutdownReleasesGrabs(t *testing.T) {
	w, fake, _ := newTestWorker(t)
	for _, hk := range []hotkey.HotKey{ctrlShiftX, hotkey.New(hotkey.ModSuper, hotkey.F5)} {
		if err := w.register(hk); err != nil {
			t.Fatal(err)
		}
	}

	w.shutdown()

	if fake.GrabCount() != 0 {
		t.Errorf("expected every grab released, %d left", fake.GrabCount())
	}
	if !fake.Closed() {
		t.Error("expected display to be closed")
	}
}

func TestDrainReportsLostDisplay(t *testing.T) {
	w, fake, sub := newTestWorker(t)
	if err := w.register(ctrlShiftX); err != nil {
		t.Fatal(err)
	}

	fake.Disconnect()

	if err := w.drain(); !errors.Is(err, x11.ErrConnectionClosed) {
		t.Fatalf("expected ErrConnectionClosed, got %v", err)
	}
	if evs := collect(sub); len(evs) != 0 {
		t.Errorf("unexpected events %v", evs)
	}
}

func (w *worker) mustResolve(t *testing.T, hk hotkey.HotKey) (x11.Keycode, x11.ModMask) {
	t.Helper()
	code, mods, err := w.resolve(hk)
	if err != nil {
		t.Fatal(err)
	}
	return code, mods
}
