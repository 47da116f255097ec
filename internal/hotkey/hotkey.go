// Package hotkey describes global keyboard shortcuts: an optional set of
// modifiers plus exactly one key.
package hotkey

import (
	"hash/fnv"
	"strings"
)

// Modifiers is a bit set of shortcut modifiers.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModControl
	ModAlt
	ModSuper
	// ModMeta is accepted by New and folded into ModSuper.
	ModMeta
)

// BaseModifiers are the modifiers a HotKey can carry.
const BaseModifiers = ModShift | ModControl | ModAlt | ModSuper

// Has reports whether every bit of mod is set in m.
func (m Modifiers) Has(mod Modifiers) bool {
	return m&mod == mod
}

func (m Modifiers) String() string {
	var parts []string
	if m.Has(ModShift) {
		parts = append(parts, "shift")
	}
	if m.Has(ModControl) {
		parts = append(parts, "control")
	}
	if m.Has(ModAlt) {
		parts = append(parts, "alt")
	}
	if m.Has(ModSuper) {
		parts = append(parts, "super")
	}
	return strings.Join(parts, "+")
}

// HotKey is an immutable keyboard shortcut. Two hotkeys built from the same
// modifiers and key compare equal and share an ID.
type HotKey struct {
	mods Modifiers
	key  Code
	id   uint32
}

// New builds a hotkey. ModMeta is treated as ModSuper; bits outside
// BaseModifiers are dropped.
func New(mods Modifiers, key Code) HotKey {
	if mods.Has(ModMeta) {
		mods = mods&^ModMeta | ModSuper
	}
	hk := HotKey{mods: mods & BaseModifiers, key: key}
	hk.id = hashID(hk.String())
	return hk
}

// ID returns a stable hash of the hotkey's canonical string.
func (h HotKey) ID() uint32 { return h.id }

func (h HotKey) Mods() Modifiers { return h.mods }

func (h HotKey) Key() Code { return h.key }

// String returns the canonical form, e.g. "shift+control+KeyQ".
func (h HotKey) String() string {
	if h.mods == 0 {
		return string(h.key)
	}
	return h.mods.String() + "+" + string(h.key)
}

// Matches reports whether mods and key describe this hotkey. Modifiers other
// than the base four are ignored.
func (h HotKey) Matches(mods Modifiers, key Code) bool {
	if mods.Has(ModMeta) {
		mods = mods&^ModMeta | ModSuper
	}
	return h.mods == mods&BaseModifiers && h.key == key
}

func hashID(s string) uint32 {
	f := fnv.New32a()
	f.Write([]byte(s))
	return f.Sum32()
}
