package drumpad

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-drumpad/engine"
	"go-drumpad/midi"
	"go-drumpad/pad"
	"go-drumpad/pattern"
	"go-drumpad/settings"
)

type fakeEngine struct {
	mu        sync.Mutex
	state     engine.State
	initErr   error
	initWait  chan struct{}
	evalErr   error
	failed    map[string]bool
	plays     []string
	evaluated []string
	stops     int
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{state: engine.StateReady, failed: map[string]bool{}}
}

func (f *fakeEngine) Init(ctx context.Context) error {
	if f.initWait != nil {
		<-f.initWait
	}
	return f.initErr
}

func (f *fakeEngine) Trigger(sound, bank string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays = append(f.plays, sound)
	return nil
}

func (f *fakeEngine) Evaluate(code string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.evalErr != nil {
		return f.evalErr
	}
	f.evaluated = append(f.evaluated, code)
	return nil
}

func (f *fakeEngine) Stop() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stops++
	return nil
}

func (f *fakeEngine) State() engine.State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

func (f *fakeEngine) Resume() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = engine.StateReady
	return nil
}

func (f *fakeEngine) Close() error { return nil }

func (f *fakeEngine) Preload(ctx context.Context, bank string, sounds []string) map[string]error {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]error{}
	for _, s := range sounds {
		if f.failed[s] {
			out[s] = errors.New("404")
		}
	}
	return out
}

func (f *fakeEngine) Failed(sound, bank string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.failed[sound]
}

func (f *fakeEngine) played() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.plays...)
}

func (f *fakeEngine) evals() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.evaluated...)
}

func newTestManager(t *testing.T, f engine.Engine, opts Options) *Manager {
	t.Helper()
	adapter := engine.NewAdapter(f)
	m := NewManager(settings.New(), adapter, opts)
	t.Cleanup(func() { m.Close() })
	return m
}

func startAndWait(t *testing.T, m *Manager) {
	t.Helper()
	m.Start(context.Background())
	select {
	case <-m.eng.Ready():
	case <-time.After(time.Second):
		t.Fatal("engine never became ready")
	}
}

func TestEachKeyTriggersOnce(t *testing.T) {
	f := newFakeEngine()
	m := newTestManager(t, f, Options{PatternCap: 32})
	startAndWait(t, m)

	for i, key := range pad.Keys {
		require.True(t, m.KeyDown(key), key)
		m.KeyUp(key)

		want := settings.DefaultSounds[i]
		plays := f.played()
		require.Len(t, plays, i+1, key)
		assert.Equal(t, want, plays[i], key)

		sounds := m.Sounds()
		require.Len(t, sounds, i+1, key)
		assert.Equal(t, want, sounds[i], key)
	}
}

func TestHeldKeyTriggersOnce(t *testing.T) {
	f := newFakeEngine()
	m := newTestManager(t, f, Options{})
	startAndWait(t, m)

	assert.True(t, m.KeyDown("w"))
	for i := 0; i < 10; i++ {
		assert.False(t, m.KeyDown("w"), "auto-repeat")
	}
	assert.Len(t, f.played(), 1)

	m.KeyUp("w")
	assert.True(t, m.KeyDown("w"))
	assert.Len(t, f.played(), 2)
	assert.Equal(t, []string{"bd", "bd"}, m.Sounds())
}

func TestUnknownKeysIgnored(t *testing.T) {
	f := newFakeEngine()
	m := newTestManager(t, f, Options{})
	startAndWait(t, m)

	for _, key := range []string{"p", "5", "enter", "", "ctrl+a"} {
		assert.False(t, m.KeyDown(key), key)
		m.KeyUp(key)
	}
	assert.Empty(t, f.played())
	assert.Empty(t, m.Sounds())
}

func TestUppercaseKeysNormalize(t *testing.T) {
	f := newFakeEngine()
	m := newTestManager(t, f, Options{})
	startAndWait(t, m)

	assert.True(t, m.KeyDown("Q"))
	assert.False(t, m.KeyDown("q"), "same key still held")
	m.KeyUp("Q")
	assert.Equal(t, []string{"hh"}, f.played())
}

func TestReassignChangesNextTrigger(t *testing.T) {
	f := newFakeEngine()
	m := newTestManager(t, f, Options{})
	startAndWait(t, m)

	m.KeyDown("1")
	m.KeyUp("1")
	m.SetSound(pad.Coord{Row: 0, Col: 0}, "cow")
	m.KeyDown("1")
	m.KeyUp("1")

	assert.Equal(t, []string{"bd", "cow"}, f.played())
	assert.Equal(t, []string{"bd", "cow"}, m.Sounds(), "past hits keep their sound")
}

func TestDefaultBootScenario(t *testing.T) {
	f := newFakeEngine()
	m := newTestManager(t, f, Options{})
	startAndWait(t, m)

	m.KeyDown("1")
	m.KeyUp("1")
	assert.Equal(t, []string{"bd"}, m.Sounds())

	m.KeyDown("q")
	m.KeyUp("q")
	assert.Equal(t, []string{"bd", "hh"}, m.Sounds())

	assert.Equal(t, `s("bd hh").bank("tr909")`, m.Serialize())
	assert.Equal(t, `$: s("bd hh").bank("tr909")`, m.PatternText())
}

func TestBankChangeShowsInPattern(t *testing.T) {
	f := newFakeEngine()
	m := newTestManager(t, f, Options{})
	startAndWait(t, m)

	m.Press(pad.Coord{Row: 0, Col: 1})
	m.SetBank("tr808")
	assert.Equal(t, `s("sd").bank("tr808")`, m.Serialize())
}

func TestTriggersWhileStartingAreSilent(t *testing.T) {
	f := newFakeEngine()
	f.initWait = make(chan struct{})
	m := newTestManager(t, f, Options{})
	m.Start(context.Background())

	assert.Equal(t, engine.StatePending, m.EngineState())
	assert.True(t, m.KeyDown("1"), "accepted while starting")
	assert.Empty(t, f.played())
	assert.Equal(t, []string{"bd"}, m.Sounds())
	assert.True(t, m.Pads()[0].Active)
	assert.Empty(t, m.Toasts(), "starting is not an error")

	close(f.initWait)
	<-m.eng.Ready()
	m.KeyUp("1")
	m.KeyDown("1")
	assert.Equal(t, []string{"bd"}, f.played())
}

func TestSuspendedAudioRefusesUntilUnlock(t *testing.T) {
	f := newFakeEngine()
	f.state = engine.StateSuspended
	m := newTestManager(t, f, Options{})
	startAndWait(t, m)

	assert.True(t, m.Suspended())
	assert.False(t, m.KeyDown("1"))
	assert.Empty(t, f.played())
	assert.Empty(t, m.Sounds(), "refused hits are not recorded")
	assert.False(t, m.Pads()[0].Active)
	m.KeyUp("1")

	require.NoError(t, m.Unlock())
	assert.False(t, m.Suspended())
	assert.True(t, m.KeyDown("1"))
	assert.Equal(t, []string{"bd"}, f.played())
}

func TestAbsentEngineNotifiesOnce(t *testing.T) {
	m := newTestManager(t, nil, Options{})
	startAndWait(t, m)

	for _, key := range []string{"1", "2", "3"} {
		assert.True(t, m.KeyDown(key))
		m.KeyUp(key)
	}
	assert.Equal(t, []string{"bd", "sd", "hh"}, m.Sounds(), "pads still record")

	toasts := m.Toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, LevelError, toasts[0].Level)
	assert.Contains(t, toasts[0].Text, "No audio engine")
}

func TestInitFailureShownOnce(t *testing.T) {
	f := newFakeEngine()
	f.initErr = errors.New("speaker busy")
	m := newTestManager(t, f, Options{})
	startAndWait(t, m)

	assert.Eventually(t, func() bool { return len(m.Toasts()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Contains(t, m.Toasts()[0].Text, "speaker busy")
	assert.Equal(t, engine.StateUnavailable, m.EngineState())

	m.KeyDown("1")
	m.KeyUp("1")
	m.KeyDown("2")
	assert.Len(t, m.Toasts(), 1, "same message is not stacked")
}

func TestFailedSoundDisablesPad(t *testing.T) {
	f := newFakeEngine()
	f.failed["cow"] = true
	m := newTestManager(t, f, Options{})
	m.SetSound(pad.Coord{Row: 3, Col: 1}, "cow")
	startAndWait(t, m)

	assert.Eventually(t, func() bool { return len(m.Toasts()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Contains(t, m.Toasts()[0].Text, "cow")

	pads := m.Pads()
	assert.True(t, pads[pad.Coord{Row: 3, Col: 1}.Index()].Disabled)
	assert.False(t, pads[0].Disabled, "other pads stay usable")

	assert.False(t, m.KeyDown("x"))
	assert.True(t, m.KeyDown("z"))
	assert.Equal(t, []string{"clap"}, f.played())
}

func TestMissingSamplesToastedOnce(t *testing.T) {
	now := time.Unix(1000, 0)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	f := newFakeEngine()
	f.failed["cow"] = true
	f.failed["perc"] = true
	m := newTestManager(t, f, Options{Now: clock})
	m.SetSound(pad.Coord{Row: 3, Col: 1}, "cow")
	startAndWait(t, m)
	assert.Eventually(t, func() bool { return len(m.Toasts()) == 1 }, time.Second, 5*time.Millisecond)

	mu.Lock()
	now = now.Add(ToastTTL + time.Millisecond)
	mu.Unlock()
	require.Empty(t, m.Toasts())

	// bank and sound edits preload again; cow has already been named
	m.SetLevels(0.5, 0.5)
	m.SetBank("tr909")
	m.SetSound(pad.Coord{Row: 3, Col: 2}, "perc")
	assert.Eventually(t, func() bool { return len(m.Toasts()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, "Missing samples in tr909: perc", m.Toasts()[0].Text)
}

func TestPulseExpiresAndKeyUpClears(t *testing.T) {
	f := newFakeEngine()
	m := newTestManager(t, f, Options{Pulse: 20 * time.Millisecond})
	startAndWait(t, m)

	m.KeyDown("a")
	idx := pad.Coord{Row: 2, Col: 0}.Index()
	assert.True(t, m.Pads()[idx].Active)
	assert.Eventually(t, func() bool { return !m.Pads()[idx].Active }, time.Second, 5*time.Millisecond)

	m.KeyUp("a")
	m.KeyDown("a")
	assert.True(t, m.Pads()[idx].Active)
	m.KeyUp("a")
	assert.False(t, m.Pads()[idx].Active, "key up clears the light")
	assert.Len(t, f.played(), 2, "key up makes no sound")
}

func TestRetriggerSupersedesPendingReset(t *testing.T) {
	f := newFakeEngine()
	m := newTestManager(t, f, Options{Pulse: 60 * time.Millisecond})
	startAndWait(t, m)

	c := pad.Coord{Row: 1, Col: 1}
	m.Press(c)
	time.Sleep(40 * time.Millisecond)
	m.Press(c)
	time.Sleep(40 * time.Millisecond)
	assert.True(t, m.Pads()[c.Index()].Active, "second hit keeps the pad lit")
	assert.Eventually(t, func() bool { return !m.Pads()[c.Index()].Active }, time.Second, 5*time.Millisecond)
}

func TestPressOffGridIgnored(t *testing.T) {
	f := newFakeEngine()
	m := newTestManager(t, f, Options{})
	startAndWait(t, m)

	assert.False(t, m.Press(pad.Coord{Row: 4, Col: 0}))
	assert.False(t, m.Press(pad.Coord{Row: 0, Col: -1}))
	assert.Empty(t, f.played())
}

func TestPlayStopClear(t *testing.T) {
	f := newFakeEngine()
	m := newTestManager(t, f, Options{})
	startAndWait(t, m)

	require.NoError(t, m.Play())
	assert.True(t, m.Playing())
	assert.Equal(t, []string{"setcpm(120/4)\n" + pattern.LanePrefix + `s("hh*4, bd sd").bank("tr909")`}, f.evals())

	m.KeyDown("1")
	m.Stop()
	assert.False(t, m.Playing())
	assert.Equal(t, 1, f.stops)

	m.Clear()
	assert.Empty(t, m.Sounds())
	assert.Equal(t, `s("hh*4, bd sd").bank("tr909")`, m.Serialize())
}

func TestBadPatternKeepsTextAndToasts(t *testing.T) {
	f := newFakeEngine()
	f.evalErr = errors.New("parse error")
	m := newTestManager(t, f, Options{})
	startAndWait(t, m)

	require.NoError(t, m.SetEditedText(`s("bd`))
	assert.Error(t, m.Play())
	assert.False(t, m.Playing())
	assert.Equal(t, `s("bd`, m.PatternText())
	require.Len(t, m.Toasts(), 1)
}

func TestHandEditWinsUntilClear(t *testing.T) {
	f := newFakeEngine()
	m := newTestManager(t, f, Options{})
	startAndWait(t, m)

	m.KeyDown("1")
	require.NoError(t, m.SetEditedText(`s("bd*2 sd")`))
	assert.True(t, m.Edited())

	m.KeyUp("1")
	m.KeyDown("1")
	assert.Equal(t, `s("bd*2 sd")`, m.PatternText(), "new hits do not overwrite the edit")
	assert.Equal(t, []string{"bd", "bd"}, m.Sounds())

	m.Clear()
	assert.False(t, m.Edited())
	assert.Equal(t, pattern.LanePrefix+`s("hh*4, bd sd").bank("tr909")`, m.PatternText())
}

func TestEditWhilePlayingReevaluates(t *testing.T) {
	f := newFakeEngine()
	m := newTestManager(t, f, Options{})
	startAndWait(t, m)

	require.NoError(t, m.Play())
	require.NoError(t, m.SetEditedText(`$: s("cp*4")`))
	evals := f.evals()
	assert.Equal(t, "setcpm(120/4)\n"+`$: s("cp*4")`, evals[len(evals)-1])
}

func TestTempoChangeWhilePlayingResends(t *testing.T) {
	f := newFakeEngine()
	m := newTestManager(t, f, Options{})
	startAndWait(t, m)

	m.SetTempo(140)
	assert.Empty(t, f.evals(), "stopped transport stays quiet")

	require.NoError(t, m.Play())
	m.SetTempo(90)
	require.Len(t, f.evals(), 2)
	assert.Equal(t, "setcpm(140/4)\n"+m.PatternText(), f.evals()[0])
	assert.Equal(t, "setcpm(90/4)\n"+m.PatternText(), f.evals()[1])
	assert.Equal(t, 90, m.Store().Tempo())
}

func TestToastsExpire(t *testing.T) {
	now := time.Unix(1000, 0)
	var mu sync.Mutex
	clock := func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		return now
	}
	m := newTestManager(t, newFakeEngine(), Options{Now: clock})

	m.Notify(LevelInfo, "saved")
	assert.Len(t, m.Toasts(), 1)

	mu.Lock()
	now = now.Add(ToastTTL + time.Millisecond)
	mu.Unlock()
	assert.Empty(t, m.Toasts())
}

func TestUpdateChanNotifies(t *testing.T) {
	m := newTestManager(t, newFakeEngine(), Options{})
	startAndWait(t, m)
	for len(m.UpdateChan) > 0 {
		<-m.UpdateChan
	}

	m.KeyDown("1")
	select {
	case <-m.UpdateChan:
	default:
		t.Fatal("no update after a hit")
	}
}

type fakeController struct {
	mu      sync.Mutex
	events  chan midi.PadEvent
	batches [][]midi.LEDUpdate
}

func (c *fakeController) ID() string { return "fake" }

func (c *fakeController) Type() midi.ControllerType { return midi.ControllerLaunchpad }

func (c *fakeController) PadEvents() <-chan midi.PadEvent { return c.events }

func (c *fakeController) Close() error { return nil }

func (c *fakeController) SetLEDBatch(u []midi.LEDUpdate) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, u)
	return nil
}

func (c *fakeController) sent() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, b := range c.batches {
		n += len(b)
	}
	return n
}

func TestControllerDrivesPads(t *testing.T) {
	f := newFakeEngine()
	m := newTestManager(t, f, Options{Pulse: time.Hour})
	startAndWait(t, m)

	ctrl := &fakeController{events: make(chan midi.PadEvent, 8)}
	m.SetController(ctrl)
	assert.Equal(t, pad.Count, ctrl.sent(), "attaching paints every pad")

	done := make(chan struct{})
	go func() {
		m.RunController(context.Background(), ctrl)
		close(done)
	}()

	// device bottom-left is the z pad
	ctrl.events <- midi.PadEvent{Row: 0, Col: 0, Velocity: 100, Down: true}
	ctrl.events <- midi.PadEvent{Row: 7, Col: 7, Velocity: 100, Down: true}
	assert.Eventually(t, func() bool { return len(f.played()) == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, []string{"clap"}, f.played())

	zIdx := pad.Coord{Row: 3, Col: 0}.Index()
	assert.True(t, m.Pads()[zIdx].Active)
	ctrl.events <- midi.PadEvent{Row: 0, Col: 0}
	assert.Eventually(t, func() bool { return !m.Pads()[zIdx].Active }, time.Second, 5*time.Millisecond)

	close(ctrl.events)
	<-done
	assert.Greater(t, ctrl.sent(), pad.Count, "lights follow the pads")
}
