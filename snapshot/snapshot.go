// Package snapshot saves pattern texts so a take can be recalled later.
// Each save is one JSON file named by a random UUID.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-drumpad/config"
	"go-drumpad/debug"
)

// Snapshot is one saved pattern
type Snapshot struct {
	ID        string    `json:"id"`
	Name      string    `json:"name,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Text      string    `json:"text"`
	Sounds    []string  `json:"sounds"`
	Bank      string    `json:"bank"`
}

// Title is what a list shows for the snapshot
func (s Snapshot) Title() string {
	title := s.Timestamp.Format("01-02 15:04")
	if s.Name != "" {
		title += " " + s.Name
	}
	return title
}

// Store reads and writes snapshots in one directory
type Store struct {
	dir string
	now func() time.Time
}

// DefaultDir is <config>/patterns
func DefaultDir() (string, error) {
	dir, err := config.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "patterns"), nil
}

func New(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

func (s *Store) Dir() string { return s.dir }

func (s *Store) path(id string) string {
	return filepath.Join(s.dir, id+".json")
}

// Save writes a new snapshot and returns it
func (s *Store) Save(name, text, bank string, sounds []string) (Snapshot, error) {
	snap := Snapshot{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(name),
		Timestamp: s.now(),
		Text:      text,
		Sounds:    append([]string{}, sounds...),
		Bank:      bank,
	}
	if err := s.write(snap); err != nil {
		return Snapshot{}, err
	}
	debug.Log("snapshot", "saved %s %q", snap.ID, snap.Name)
	return snap, nil
}

func (s *Store) write(snap Snapshot) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create snapshot dir: %w", err)
	}
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path(snap.ID), data, 0644)
}

// List returns every readable snapshot, newest first. A missing directory
// is an empty list.
func (s *Store) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Snapshot{}, nil
		}
		return nil, err
	}

	snaps := []Snapshot{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		id := strings.TrimSuffix(name, ".json")
		if _, err := uuid.Parse(id); err != nil {
			continue
		}
		snap, err := s.Load(id)
		if err != nil {
			debug.Log("snapshot", "skip %s: %v", name, err)
			continue
		}
		snaps = append(snaps, snap)
	}

	sort.Slice(snaps, func(i, j int) bool {
		return snaps[i].Timestamp.After(snaps[j].Timestamp)
	})
	return snaps, nil
}

// Load reads one snapshot by id
func (s *Store) Load(id string) (Snapshot, error) {
	if _, err := uuid.Parse(id); err != nil {
		return Snapshot{}, fmt.Errorf("invalid snapshot id %q", id)
	}
	data, err := os.ReadFile(s.path(id))
	if err != nil {
		return Snapshot{}, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot %s: %w", id, err)
	}
	snap.ID = id
	return snap, nil
}

// Rename changes the name, keeping the timestamp
func (s *Store) Rename(id, name string) error {
	snap, err := s.Load(id)
	if err != nil {
		return err
	}
	snap.Name = strings.TrimSpace(name)
	return s.write(snap)
}

func (s *Store) Delete(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid snapshot id %q", id)
	}
	return os.Remove(s.path(id))
}
