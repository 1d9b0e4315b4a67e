// Package settings holds the user-editable drum pad configuration: which
// sound each pad plays, the sample bank, and the cosmetic level sliders.
package settings

import (
	"sync"

	"go-drumpad/debug"
	"go-drumpad/pad"
)

// DefaultBank is the bank selected on first start
const DefaultBank = "tr909"

// Tempo limits in beats per minute
const (
	DefaultTempo = 120
	MinTempo     = 60
	MaxTempo     = 200
)

// Assignment maps every pad (row-major) to a sound id
type Assignment [pad.Count]string

// DefaultSounds is the factory layout, row by row
var DefaultSounds = Assignment{
	"bd", "sd", "hh", "cp",
	"hh", "bd", "sd", "rim",
	"oh", "lt", "mt", "ht",
	"clap", "cow", "ride", "crash",
}

// Banks lists the banks offered by the bank selector. SetBank accepts
// anything.
var Banks = []string{
	"tr909",
	"tr808",
	"tr707",
	"linndrum",
	"rolandcompurhythm1000",
	"akailinn",
}

// CommonSounds lists the sound ids offered by the per-pad selector
var CommonSounds = []string{
	"bd", "sd", "hh", "oh", "cp", "rim", "lt", "mt", "ht",
	"clap", "cow", "ride", "crash", "tom", "perc", "bd2", "sd2", "hc", "ho",
}

// ChangeKind says what a Change touched
type ChangeKind int

const (
	ChangeSound ChangeKind = iota
	ChangeBank
	ChangeLevels
	ChangeReset
	ChangeTempo
)

// Change is broadcast to subscribers after every mutation
type Change struct {
	Kind  ChangeKind
	Coord pad.Coord // ChangeSound only
	Sound string    // ChangeSound only
	Bank  string
}

// Store is the configuration store. Safe for concurrent use; listeners run
// on the mutating goroutine after the lock is released.
type Store struct {
	mu          sync.RWMutex
	sounds      Assignment
	bank        string
	volume      float64
	sensitivity float64
	tempo       int

	listeners []func(Change)
}

// New returns a store holding the defaults
func New() *Store {
	return &Store{
		sounds:      DefaultSounds,
		bank:        DefaultBank,
		volume:      0.8,
		sensitivity: 0.5,
		tempo:       DefaultTempo,
	}
}

// Subscribe registers fn for every future change
func (s *Store) Subscribe(fn func(Change)) {
	s.mu.Lock()
	s.listeners = append(s.listeners, fn)
	s.mu.Unlock()
}

func (s *Store) broadcast(c Change) {
	s.mu.RLock()
	ls := make([]func(Change), len(s.listeners))
	copy(ls, s.listeners)
	s.mu.RUnlock()

	for _, fn := range ls {
		fn(c)
	}
}

// Get returns the sound on c. Off-grid coordinates return "".
func (s *Store) Get(c pad.Coord) string {
	if !c.Valid() {
		return ""
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sounds[c.Index()]
}

// Set assigns sound to c. Sounds are not validated; an unknown id just fails
// at playback time.
func (s *Store) Set(c pad.Coord, sound string) {
	if !c.Valid() {
		return
	}
	s.mu.Lock()
	s.sounds[c.Index()] = sound
	bank := s.bank
	s.mu.Unlock()

	debug.Log("settings", "pad %s -> %q", pad.KeyForCoord(c), sound)
	s.broadcast(Change{Kind: ChangeSound, Coord: c, Sound: sound, Bank: bank})
}

// Bank returns the selected bank
func (s *Store) Bank() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.bank
}

// SetBank selects a bank
func (s *Store) SetBank(bank string) {
	s.mu.Lock()
	s.bank = bank
	s.mu.Unlock()

	debug.Log("settings", "bank -> %q", bank)
	s.broadcast(Change{Kind: ChangeBank, Bank: bank})
}

// Snapshot returns a copy of the whole assignment
func (s *Store) Snapshot() Assignment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sounds
}

// Volume is the master level, 0-1
func (s *Store) Volume() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.volume
}

// Sensitivity is the pad sensitivity, 0-1
func (s *Store) Sensitivity() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sensitivity
}

// SetLevels updates both sliders, clamped to 0-1
func (s *Store) SetLevels(volume, sensitivity float64) {
	s.mu.Lock()
	s.volume = clamp01(volume)
	s.sensitivity = clamp01(sensitivity)
	bank := s.bank
	s.mu.Unlock()

	s.broadcast(Change{Kind: ChangeLevels, Bank: bank})
}

// Tempo is the playback tempo in BPM
func (s *Store) Tempo() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tempo
}

// SetTempo sets the playback tempo, clamped to MinTempo-MaxTempo
func (s *Store) SetTempo(bpm int) {
	bpm = clampTempo(bpm)
	s.mu.Lock()
	s.tempo = bpm
	bank := s.bank
	s.mu.Unlock()

	debug.Log("settings", "tempo -> %d", bpm)
	s.broadcast(Change{Kind: ChangeTempo, Bank: bank})
}

// ResetToDefaults restores the factory layout and bank
func (s *Store) ResetToDefaults() {
	s.mu.Lock()
	s.sounds = DefaultSounds
	s.bank = DefaultBank
	s.mu.Unlock()

	debug.Log("settings", "reset to defaults")
	s.broadcast(Change{Kind: ChangeReset, Bank: DefaultBank})
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampTempo(bpm int) int {
	return min(max(bpm, MinTempo), MaxTempo)
}
