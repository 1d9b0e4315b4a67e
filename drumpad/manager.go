package drumpad

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go-drumpad/debug"
	"go-drumpad/engine"
	"go-drumpad/midi"
	"go-drumpad/pad"
	"go-drumpad/pattern"
	"go-drumpad/settings"
)

// DefaultPulse is how long a pad stays lit after a hit
const DefaultPulse = 120 * time.Millisecond

// Options tunes a Manager
type Options struct {
	PatternCap int
	Pulse      time.Duration
	Now        func() time.Time
}

// PadView is what a surface needs to draw one pad
type PadView struct {
	Coord    pad.Coord
	Key      string
	Sound    string
	Active   bool
	Disabled bool
}

// Manager is the application controller. It owns the pattern, the pad
// lights, the transport and the toasts, and is safe to drive from the TUI
// and MIDI controllers at once.
type Manager struct {
	store *settings.Store
	eng   *engine.Adapter

	mu        sync.Mutex
	acc       *pattern.Accumulator
	transport *pattern.Transport
	pulses    pad.Pulses
	timers    [pad.Count]*time.Timer
	mapper    *Mapper
	trigger   *Trigger
	toasts    toasts
	reported  map[string]bool // bank:sound already named in a missing-samples toast

	pulse time.Duration
	now   func() time.Time

	ctrlMu     sync.Mutex
	controller midi.Controller
	prevLEDs   map[[2]int]midi.LEDUpdate

	// Notify TUI of updates
	UpdateChan chan struct{}
}

// NewManager wires a manager around a store and an engine adapter
func NewManager(store *settings.Store, eng *engine.Adapter, opts Options) *Manager {
	if opts.Pulse <= 0 {
		opts.Pulse = DefaultPulse
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	m := &Manager{
		store:      store,
		eng:        eng,
		pulse:      opts.Pulse,
		now:        opts.Now,
		prevLEDs:   make(map[[2]int]midi.LEDUpdate),
		reported:   make(map[string]bool),
		UpdateChan: make(chan struct{}, 1),
	}
	m.acc = pattern.New(opts.PatternCap, store.Bank)
	m.transport = pattern.NewTransport(m.acc, eng)
	m.transport.Tempo = store.Tempo
	m.trigger = NewTrigger(eng, store.Bank, &m.pulses, m.acc, m.schedulePulseReset, m.noticeLocked)
	m.mapper = NewMapper(store.Get, m.trigger.Fire, m.releaseLocked)

	store.Subscribe(m.settingsChanged)
	return m
}

// Start begins engine initialization and returns at once. When the engine
// is up, the current bank is preloaded.
func (m *Manager) Start(ctx context.Context) {
	ready := m.eng.Start(ctx)
	go func() {
		select {
		case <-ready:
		case <-ctx.Done():
			return
		}
		if err := m.eng.Err(); err != nil {
			m.mu.Lock()
			// this is the one notice for a dead engine
			m.trigger.absentNoticed = true
			m.noticeLocked(LevelError, "Audio engine failed: "+engine.Message(err))
			m.mu.Unlock()
			m.notifyUpdate()
			return
		}
		debug.Log("manager", "engine %s", m.eng.State())
		m.preload(ctx)
	}()
}

// preload fetches the sounds on the pads for the current bank. Each failed
// sound is toasted once; later preloads only name sounds that newly failed.
func (m *Manager) preload(ctx context.Context) {
	bank := m.store.Bank()
	assigned := m.store.Snapshot()
	failed := m.eng.Preload(ctx, bank, assigned[:])

	m.mu.Lock()
	var names []string
	for sound, err := range failed {
		key := bank + ":" + sound
		if m.reported[key] {
			continue
		}
		m.reported[key] = true
		debug.Log("manager", "WARN %s disabled: %v", key, err)
		names = append(names, sound)
	}
	if len(names) > 0 {
		sort.Strings(names)
		m.noticeLocked(LevelWarn, "Missing samples in "+bank+": "+strings.Join(names, ", "))
	}
	m.mu.Unlock()
	m.notifyUpdate()
}

// settingsChanged runs on the store's broadcast. It must not take m.mu: the
// store is also written while m.mu is held.
func (m *Manager) settingsChanged(c settings.Change) {
	switch c.Kind {
	case settings.ChangeBank, settings.ChangeSound, settings.ChangeReset:
		select {
		case <-m.eng.Ready():
			go m.preload(context.Background())
		default:
		}
	}
	m.notifyUpdate()
}

// KeyDown handles a key press from the keyboard
func (m *Manager) KeyDown(key string) bool {
	m.mu.Lock()
	fired := m.mapper.KeyDown(key)
	m.mu.Unlock()
	m.notifyUpdate()
	return fired
}

// KeyUp handles a key release
func (m *Manager) KeyUp(key string) {
	m.mu.Lock()
	m.mapper.KeyUp(key)
	m.mu.Unlock()
	m.notifyUpdate()
}

// Press fires a pad by coordinate (mouse or grid controller)
func (m *Manager) Press(c pad.Coord) bool {
	m.mu.Lock()
	fired := m.mapper.Press(c)
	m.mu.Unlock()
	m.notifyUpdate()
	return fired
}

// Release clears a pad's light
func (m *Manager) Release(c pad.Coord) {
	m.mu.Lock()
	m.mapper.Release(c)
	m.mu.Unlock()
	m.notifyUpdate()
}

// schedulePulseReset turns c off after the pulse, replacing any reset
// still pending for it. Called with m.mu held.
func (m *Manager) schedulePulseReset(c pad.Coord, gen uint64) {
	i := c.Index()
	if t := m.timers[i]; t != nil {
		t.Stop()
	}
	m.timers[i] = time.AfterFunc(m.pulse, func() {
		m.mu.Lock()
		expired := m.pulses.Expire(c, gen)
		m.mu.Unlock()
		if expired {
			m.notifyUpdate()
		}
	})
}

func (m *Manager) releaseLocked(c pad.Coord) {
	if t := m.timers[c.Index()]; t != nil {
		t.Stop()
	}
	m.pulses.Clear(c)
}

func (m *Manager) noticeLocked(level Level, text string) {
	m.toasts.add(level, text, m.now())
	time.AfterFunc(ToastTTL, m.notifyUpdate)
}

// Notify shows a toast
func (m *Manager) Notify(level Level, text string) {
	m.mu.Lock()
	m.noticeLocked(level, text)
	m.mu.Unlock()
	m.notifyUpdate()
}

// Play evaluates the pattern text for continuous playback. Failures are
// shown as a toast and left for the user to fix.
func (m *Manager) Play() error {
	m.mu.Lock()
	defer m.notifyUpdate()
	defer m.mu.Unlock()
	if err := m.transport.Play(); err != nil {
		m.noticeLocked(LevelError, engine.Message(err))
		return err
	}
	return nil
}

// Stop silences continuous playback
func (m *Manager) Stop() {
	m.mu.Lock()
	m.transport.Stop()
	m.mu.Unlock()
	m.notifyUpdate()
}

// Clear empties the pattern
func (m *Manager) Clear() {
	m.mu.Lock()
	m.acc.Clear()
	m.mu.Unlock()
	m.notifyUpdate()
}

// Reset restores the example pattern
func (m *Manager) Reset() {
	m.mu.Lock()
	m.acc.Reset()
	m.mu.Unlock()
	m.notifyUpdate()
}

// SetEditedText makes a hand edit the pattern text. While playing the new
// text is evaluated straight away.
func (m *Manager) SetEditedText(text string) error {
	m.mu.Lock()
	m.acc.SetText(text)
	playing := m.transport.Playing()
	m.mu.Unlock()
	if playing {
		return m.Play()
	}
	m.notifyUpdate()
	return nil
}

// Unlock is the user gesture that opens a suspended audio gate
func (m *Manager) Unlock() error {
	err := m.eng.Resume()
	if err != nil {
		m.Notify(LevelError, engine.Message(err))
		return err
	}
	debug.Log("manager", "audio unlocked, engine %s", m.eng.State())
	m.notifyUpdate()
	return nil
}

// Settings writes go straight to the store; its broadcast refreshes views
// and reloads sounds.

func (m *Manager) SetBank(bank string) { m.store.SetBank(bank) }

func (m *Manager) SetSound(c pad.Coord, sound string) { m.store.Set(c, sound) }

func (m *Manager) ResetSettings() { m.store.ResetToDefaults() }

func (m *Manager) SetLevels(volume, sensitivity float64) { m.store.SetLevels(volume, sensitivity) }

// SetTempo stores bpm and re-sends a playing pattern so the change is heard
// at once
func (m *Manager) SetTempo(bpm int) {
	m.store.SetTempo(bpm)
	if m.Playing() {
		m.Play()
	}
}

// Store exposes the settings for views
func (m *Manager) Store() *settings.Store { return m.store }

// PatternText is what the pattern box shows
func (m *Manager) PatternText() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acc.Text()
}

// Serialize renders the recorded hits without the lane prefix
func (m *Manager) Serialize() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acc.Serialize()
}

// Edited reports whether the pattern text is a hand edit
func (m *Manager) Edited() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acc.Edited()
}

// Sounds returns the recorded hits, oldest first
func (m *Manager) Sounds() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.acc.Sounds()
}

func (m *Manager) Playing() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.transport.Playing()
}

func (m *Manager) EngineState() engine.State { return m.eng.State() }

// Suspended is true exactly while audio waits for Unlock
func (m *Manager) Suspended() bool { return m.eng.State() == engine.StateSuspended }

// Toasts returns the live toasts, oldest first
func (m *Manager) Toasts() []Toast {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.toasts.live(m.now())
}

// Pads returns every pad in row-major order
func (m *Manager) Pads() [pad.Count]PadView {
	bank := m.store.Bank()
	assigned := m.store.Snapshot()

	m.mu.Lock()
	defer m.mu.Unlock()
	var out [pad.Count]PadView
	for i, c := range pad.AllCoords() {
		out[i] = PadView{
			Coord:    c,
			Key:      pad.KeyForCoord(c),
			Sound:    assigned[i],
			Active:   m.pulses.Active(c),
			Disabled: m.eng.Failed(assigned[i], bank),
		}
	}
	return out
}

// Close stops playback, pending timers and the engine
func (m *Manager) Close() error {
	m.mu.Lock()
	for _, t := range m.timers {
		if t != nil {
			t.Stop()
		}
	}
	if m.transport.Playing() {
		m.transport.Stop()
	}
	m.mu.Unlock()
	return m.eng.Close()
}

// notifyUpdate refreshes LEDs and notifies TUI
func (m *Manager) notifyUpdate() {
	m.flushLEDs()
	select {
	case m.UpdateChan <- struct{}{}:
	default:
	}
}
