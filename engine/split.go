package engine

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Split plays one-shots on one engine and evaluates patterns on another,
// e.g. local samples for instant feedback and an OSC server for loops.
type Split struct {
	Hits     Engine
	Patterns Engine
}

// NewSplit combines two engines
func NewSplit(hits, patterns Engine) *Split {
	return &Split{Hits: hits, Patterns: patterns}
}

// Init starts both engines together. The split is only as ready as its
// one-shot side; a failing pattern side is reported when used.
func (s *Split) Init(ctx context.Context) error {
	var wg sync.WaitGroup
	var hitErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		hitErr = s.Hits.Init(ctx)
	}()
	go func() {
		defer wg.Done()
		s.Patterns.Init(ctx)
	}()
	wg.Wait()
	return errors.Wrap(hitErr, "one-shot engine")
}

func (s *Split) State() State { return s.Hits.State() }

func (s *Split) Resume() error {
	if err := s.Hits.Resume(); err != nil {
		return err
	}
	return s.Patterns.Resume()
}

func (s *Split) Trigger(sound, bank string) error { return s.Hits.Trigger(sound, bank) }

func (s *Split) Evaluate(code string) error {
	switch s.Patterns.State() {
	case StateReady:
		return s.Patterns.Evaluate(code)
	case StatePending:
		return ErrNotReady
	}
	return unavailable(errors.New("pattern engine " + s.Patterns.State().String()))
}

func (s *Split) Stop() error {
	if s.Patterns.State() != StateReady {
		return nil
	}
	return s.Patterns.Stop()
}

func (s *Split) Preload(ctx context.Context, bank string, sounds []string) map[string]error {
	if p, ok := s.Hits.(Preloader); ok {
		return p.Preload(ctx, bank, sounds)
	}
	return nil
}

func (s *Split) Failed(sound, bank string) bool {
	if f, ok := s.Hits.(FailureReporter); ok {
		return f.Failed(sound, bank)
	}
	return false
}

func (s *Split) Close() error {
	err := s.Hits.Close()
	if perr := s.Patterns.Close(); err == nil {
		err = perr
	}
	return err
}
