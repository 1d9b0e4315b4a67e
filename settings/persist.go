package settings

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go-drumpad/debug"
	"go-drumpad/pad"
)

// file is the on-disk shape of settings.json. Pads are keyed by their key
// so the file stays readable by hand.
type file struct {
	Bank        string            `json:"bank,omitempty"`
	Pads        map[string]string `json:"pads,omitempty"`
	Volume      *float64          `json:"volume,omitempty"`
	Sensitivity *float64          `json:"sensitivity,omitempty"`
	Tempo       *int              `json:"tempo,omitempty"`
}

// Load applies a settings file on top of the current state. Missing pads,
// empty sounds and unknown keys are skipped so the assignment stays total.
// Listeners are not notified.
func (s *Store) Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if f.Bank != "" {
		s.bank = f.Bank
	}
	for key, sound := range f.Pads {
		c, ok := pad.CoordForKey(key)
		if !ok || sound == "" {
			continue
		}
		s.sounds[c.Index()] = sound
	}
	if f.Volume != nil {
		s.volume = clamp01(*f.Volume)
	}
	if f.Sensitivity != nil {
		s.sensitivity = clamp01(*f.Sensitivity)
	}
	if f.Tempo != nil {
		s.tempo = clampTempo(*f.Tempo)
	}
	return nil
}

// Save writes the current state to path
func (s *Store) Save(path string) error {
	s.mu.RLock()
	vol, sens, tempo := s.volume, s.sensitivity, s.tempo
	f := file{
		Bank:        s.bank,
		Pads:        make(map[string]string, pad.Count),
		Volume:      &vol,
		Sensitivity: &sens,
		Tempo:       &tempo,
	}
	for i, sound := range s.sounds {
		f.Pads[pad.Keys[i]] = sound
	}
	s.mu.RUnlock()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Persist loads path into s if it exists and saves s back on every change.
// Both directions are best-effort: failures are logged and the store keeps
// working from memory.
func Persist(s *Store, path string) {
	if err := s.Load(path); err != nil {
		if os.IsNotExist(err) {
			debug.Log("settings", "no saved settings at %s, using defaults", path)
		} else {
			debug.Log("settings", "ignoring saved settings: %v", err)
		}
	}
	s.Subscribe(func(Change) {
		if err := s.Save(path); err != nil {
			debug.Log("settings", "save failed: %v", err)
		}
	})
}
