// Package drumpad wires the pad grid to the settings store, the pattern
// accumulator and the audio engine. The Manager owns all of it and is the
// only thing the TUI and MIDI controllers talk to.
package drumpad

import (
	"strings"

	"go-drumpad/pad"
)

// Mapper turns key and pointer input into pad triggers. Keys are edge
// triggered: a key that is already down does not fire again until it is
// released.
type Mapper struct {
	held    map[string]bool
	sound   func(pad.Coord) string
	fire    func(pad.Coord, string) bool
	release func(pad.Coord)
}

// NewMapper creates a mapper. sound is read at trigger time so reassignments
// apply to the next hit.
func NewMapper(sound func(pad.Coord) string, fire func(pad.Coord, string) bool, release func(pad.Coord)) *Mapper {
	return &Mapper{
		held:    make(map[string]bool),
		sound:   sound,
		fire:    fire,
		release: release,
	}
}

// KeyDown handles a key press. Unknown keys and repeats of a held key are
// ignored. Reports whether a pad fired.
func (m *Mapper) KeyDown(key string) bool {
	key = strings.ToLower(key)
	c, ok := pad.CoordForKey(key)
	if !ok || m.held[key] {
		return false
	}
	m.held[key] = true
	return m.fire(c, m.sound(c))
}

// KeyUp releases a key. It clears the pad's light but makes no sound.
func (m *Mapper) KeyUp(key string) {
	key = strings.ToLower(key)
	c, ok := pad.CoordForKey(key)
	if !ok {
		return
	}
	delete(m.held, key)
	m.release(c)
}

// Press fires a pad directly, bypassing the key table
func (m *Mapper) Press(c pad.Coord) bool {
	if !c.Valid() {
		return false
	}
	return m.fire(c, m.sound(c))
}

// Release clears a pad pressed by pointer or grid controller
func (m *Mapper) Release(c pad.Coord) {
	if c.Valid() {
		m.release(c)
	}
}
