// Package engine adapts audio/pattern back ends to the drum pad. An engine
// plays one-shot sounds, evaluates pattern text for continuous playback and
// silences it again.
package engine

import (
	"context"
	"sync"

	"go-drumpad/debug"
)

// State is what an engine can currently do
type State int

const (
	StatePending     State = iota // Init has not finished
	StateReady                    // triggers make sound
	StateSuspended                // audio blocked until Resume
	StateUnavailable              // no engine, or Init failed
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "starting"
	case StateReady:
		return "ready"
	case StateSuspended:
		return "suspended"
	case StateUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// Engine is an audio/pattern back end
type Engine interface {
	Init(ctx context.Context) error
	Trigger(sound, bank string) error
	Evaluate(code string) error
	Stop() error
	State() State
	Resume() error
	Close() error
}

// Preloader is implemented by engines that fetch sounds ahead of time. The
// returned map holds only the sounds that failed.
type Preloader interface {
	Preload(ctx context.Context, bank string, sounds []string) map[string]error
}

// FailureReporter is implemented by engines that can tell a sound will
// never play
type FailureReporter interface {
	Failed(sound, bank string) bool
}

// Adapter gates an Engine behind a single asynchronous Init. Nothing blocks
// on the engine: calls made before Init finishes fail fast with ErrNotReady.
type Adapter struct {
	eng   Engine
	once  sync.Once
	ready chan struct{}

	mu  sync.RWMutex
	err error
}

// NewAdapter wraps e. Call Start to begin initialization.
func NewAdapter(e Engine) *Adapter {
	if e == nil {
		e = Absent{}
	}
	return &Adapter{
		eng:   e,
		ready: make(chan struct{}),
	}
}

// Start runs Init once in the background and returns the Ready channel
func (a *Adapter) Start(ctx context.Context) <-chan struct{} {
	a.once.Do(func() {
		go func() {
			err := a.eng.Init(ctx)
			a.mu.Lock()
			a.err = err
			a.mu.Unlock()
			if err != nil {
				debug.Log("engine", "init failed: %v", err)
			} else {
				debug.Log("engine", "init done, state=%s", a.eng.State())
			}
			close(a.ready)
		}()
	})
	return a.ready
}

// Ready is closed once Init has returned, successfully or not
func (a *Adapter) Ready() <-chan struct{} { return a.ready }

// Err is the Init error, if any
func (a *Adapter) Err() error {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.err
}

func (a *Adapter) started() bool {
	select {
	case <-a.ready:
		return true
	default:
		return false
	}
}

// State reports Pending until Init returns, Unavailable if it failed,
// otherwise whatever the engine says
func (a *Adapter) State() State {
	if !a.started() {
		return StatePending
	}
	if a.Err() != nil {
		return StateUnavailable
	}
	return a.eng.State()
}

func (a *Adapter) gate() error {
	switch a.State() {
	case StatePending:
		return ErrNotReady
	case StateSuspended:
		return ErrAudioBlocked
	case StateUnavailable:
		return unavailable(a.Err())
	}
	return nil
}

// Trigger plays a one-shot
func (a *Adapter) Trigger(sound, bank string) error {
	if err := a.gate(); err != nil {
		return err
	}
	return a.eng.Trigger(sound, bank)
}

// Evaluate hands pattern text to the engine
func (a *Adapter) Evaluate(code string) error {
	if err := a.gate(); err != nil {
		return err
	}
	return a.eng.Evaluate(code)
}

// Stop silences continuous playback. Safe in any state.
func (a *Adapter) Stop() error {
	if !a.started() || a.Err() != nil {
		return nil
	}
	return a.eng.Stop()
}

// Resume unlocks a suspended engine
func (a *Adapter) Resume() error {
	if a.State() != StateSuspended {
		return nil
	}
	return a.eng.Resume()
}

// Preload forwards to the engine when it supports preloading
func (a *Adapter) Preload(ctx context.Context, bank string, sounds []string) map[string]error {
	p, ok := a.eng.(Preloader)
	if !ok || a.State() == StatePending || a.Err() != nil {
		return nil
	}
	return p.Preload(ctx, bank, sounds)
}

// Failed reports whether sound can never play on bank
func (a *Adapter) Failed(sound, bank string) bool {
	f, ok := a.eng.(FailureReporter)
	if !ok {
		return false
	}
	return f.Failed(sound, bank)
}

// Close releases the engine
func (a *Adapter) Close() error {
	return a.eng.Close()
}
