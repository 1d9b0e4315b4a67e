// Package pattern records triggered sounds and renders them as Strudel
// mini-notation, e.g. s("bd hh sd").bank("tr909").
package pattern

import (
	"fmt"
	"strings"
)

// DefaultCap is how many hits a pattern keeps
const DefaultCap = 16

// Placeholder is the mini-notation shown while nothing has been played
const Placeholder = "hh*4, bd sd"

// LanePrefix assigns a pattern to a persistent lane for continuous playback
const LanePrefix = "$: "

// Accumulator holds the recorded hits. The structured sequence is the source
// of truth and text is regenerated from it on every read. A hand edit, once
// set, wins over the generated text until Clear or Reset.
type Accumulator struct {
	sounds []string
	cap    int
	bank   func() string

	edited bool
	text   string
}

// New creates an accumulator that keeps the last cap hits. bank is read at
// serialization time so a bank change shows up immediately.
func New(cap int, bank func() string) *Accumulator {
	if cap <= 0 {
		cap = DefaultCap
	}
	if bank == nil {
		bank = func() string { return "" }
	}
	return &Accumulator{
		sounds: make([]string, 0, cap+1),
		cap:    cap,
		bank:   bank,
	}
}

// Append records a hit, sliding the window when it overflows
func (a *Accumulator) Append(sound string) {
	a.sounds = append(a.sounds, sound)
	if over := len(a.sounds) - a.cap; over > 0 {
		a.sounds = append(a.sounds[:0], a.sounds[over:]...)
	}
}

// Sounds returns a copy of the recorded hits, oldest first
func (a *Accumulator) Sounds() []string {
	out := make([]string, len(a.sounds))
	copy(out, a.sounds)
	return out
}

func (a *Accumulator) Len() int { return len(a.sounds) }
func (a *Accumulator) Cap() int { return a.cap }

// Serialize renders the recorded hits. An empty pattern renders the
// placeholder instead of an empty s("") call.
func (a *Accumulator) Serialize() string {
	body := Placeholder
	if len(a.sounds) > 0 {
		body = strings.Join(a.sounds, " ")
	}
	return Format(body, a.bank())
}

// Lane renders the pattern assigned to a persistent lane
func (a *Accumulator) Lane() string {
	return LanePrefix + a.Serialize()
}

// Text is what the pattern box shows and what Play evaluates
func (a *Accumulator) Text() string {
	if a.edited {
		return a.text
	}
	return a.Lane()
}

// SetText replaces the pattern box with hand-edited text. Recording keeps
// going underneath but no longer shows in Text.
func (a *Accumulator) SetText(text string) {
	if text == a.Lane() {
		a.edited = false
		a.text = ""
		return
	}
	a.edited = true
	a.text = text
}

// Edited reports whether Text is a hand edit
func (a *Accumulator) Edited() bool { return a.edited }

// Clear empties the pattern and drops any hand edit
func (a *Accumulator) Clear() {
	a.sounds = a.sounds[:0]
	a.edited = false
	a.text = ""
}

// Reset restores the example pattern
func (a *Accumulator) Reset() {
	a.Clear()
}

// Format renders a mini-notation body on a bank
func Format(body, bank string) string {
	if bank == "" {
		return fmt.Sprintf("s(%q)", body)
	}
	return fmt.Sprintf("s(%q).bank(%q)", body, bank)
}

// OneShot renders a single immediate hit, used by engines that can only
// evaluate code
func OneShot(sound, bank string) string {
	return Format(sound, bank) + ".play()"
}
