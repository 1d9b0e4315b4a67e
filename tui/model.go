package tui

import (
	"context"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"go-drumpad/debug"
	"go-drumpad/drumpad"
	"go-drumpad/midi"
	"go-drumpad/pad"
	"go-drumpad/settings"
	"go-drumpad/snapshot"
	"go-drumpad/theme"
	"go-drumpad/widgets"
)

// Terminals only report key presses, so a pad key counts as released once
// it stops repeating. The first window covers the OS delay before repeats
// start; later ones only need to outlast the repeat interval.
const (
	DefaultKeyHold    = 700 * time.Millisecond
	DefaultKeyRelease = 150 * time.Millisecond
)

const (
	levelStep = 0.05
	tempoStep = 5
)

type mode int

const (
	modePads mode = iota
	modeEdit
	modeSettings
	modeSnapshots
	modeSaveName
)

// settings view rows
const (
	fieldBank = iota
	fieldPad
	fieldVolume
	fieldSensitivity
	fieldTempo
	fieldReset
	fieldCount
)

// layoutBounds holds positions measured by the last View
type layoutBounds struct {
	gridTop  int
	gridLeft int
}

// Options tunes a Model
type Options struct {
	KeyHold    time.Duration
	KeyRelease time.Duration
	Snapshots  *snapshot.Store // nil disables saved takes
}

type Model struct {
	Manager   *drumpad.Manager
	DeviceMgr *midi.DeviceManager
	Theme     *theme.Theme

	snapshots  *snapshot.Store
	keyHold    time.Duration
	keyRelease time.Duration

	// swapped out in tests
	tick     func(time.Duration, func(time.Time) tea.Msg) tea.Cmd
	copyText func(string) error

	mode   mode
	held   map[string]uint64 // pad key -> seq of its latest press or repeat
	seq    uint64
	mouse  *pad.Coord // pad under a held mouse button
	bounds *layoutBounds

	editor textarea.Model
	input  textinput.Model
	help   help.Model

	field   int
	padSel  int
	editing bool // settings text input is open

	snaps    []snapshot.Snapshot
	snapSel  int
	renaming string // id of the take being renamed in modeSaveName

	width    int
	height   int
	quitting bool
}

type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

// keyReleaseMsg fires one release window after a pad key press; it only
// releases when no newer repeat arrived
type keyReleaseMsg struct {
	key string
	seq uint64
}

func NewModel(manager *drumpad.Manager, deviceMgr *midi.DeviceManager, th *theme.Theme, opts Options) Model {
	if opts.KeyHold <= 0 {
		opts.KeyHold = DefaultKeyHold
	}
	if opts.KeyRelease <= 0 {
		opts.KeyRelease = DefaultKeyRelease
	}
	editor := textarea.New()
	editor.ShowLineNumbers = false
	editor.SetHeight(4)
	editor.SetWidth(60)

	return Model{
		Manager:    manager,
		DeviceMgr:  deviceMgr,
		Theme:      th,
		snapshots:  opts.Snapshots,
		keyHold:    opts.KeyHold,
		keyRelease: opts.KeyRelease,
		tick:       tea.Tick,
		copyText:   clipboard.WriteAll,
		held:       make(map[string]uint64),
		bounds:     &layoutBounds{},
		editor:     editor,
		input:      textinput.New(),
		help:       help.New(),
	}
}

func ListenForUpdates(manager *drumpad.Manager) tea.Cmd {
	return func() tea.Msg {
		<-manager.UpdateChan
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	if deviceMgr == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ListenForUpdates(m.Manager),
		ListenForDevices(m.DeviceMgr),
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.editor.SetWidth(max(20, msg.Width-4))
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			m.quitting = true
			m.Manager.Stop()
			return m, tea.Quit
		}
		switch m.mode {
		case modeEdit:
			return m.updateEdit(msg)
		case modeSettings:
			return m.updateSettings(msg)
		case modeSnapshots:
			return m.updateSnapshots(msg)
		case modeSaveName:
			return m.updateSaveName(msg)
		}
		return m.updatePads(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case keyReleaseMsg:
		if seq, ok := m.held[msg.key]; ok && seq == msg.seq {
			delete(m.held, msg.key)
			m.Manager.KeyUp(msg.key)
		}
		return m, nil

	case UpdateMsg:
		return m, ListenForUpdates(m.Manager)

	case DeviceEventMsg:
		m.handleDevice(midi.DeviceEvent(msg))
		return m, ListenForDevices(m.DeviceMgr)
	}

	// cursor blink and friends
	var cmd tea.Cmd
	switch m.mode {
	case modeEdit:
		m.editor, cmd = m.editor.Update(msg)
	case modeSettings, modeSaveName:
		m.input, cmd = m.input.Update(msg)
	}
	return m, cmd
}

func (m Model) updatePads(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Manager.Suspended() && key.Matches(msg, keys.Unlock) {
		m.Manager.Unlock()
		return m, nil
	}

	if msg.Type == tea.KeyRunes && len(msg.Runes) == 1 && !msg.Alt {
		k := strings.ToLower(string(msg.Runes))
		if _, ok := pad.CoordForKey(k); ok {
			return m, m.padKey(k)
		}
	}

	switch {
	case key.Matches(msg, keys.Play):
		m.Manager.Play()
	case key.Matches(msg, keys.Stop):
		m.Manager.Stop()
	case key.Matches(msg, keys.Clear):
		m.Manager.Clear()
	case key.Matches(msg, keys.Reset):
		m.Manager.Reset()
	case key.Matches(msg, keys.Edit):
		m.mode = modeEdit
		m.editor.SetValue(m.Manager.PatternText())
		return m, m.editor.Focus()
	case key.Matches(msg, keys.Settings):
		m.mode = modeSettings
		m.field = fieldBank
		m.editing = false
	case key.Matches(msg, keys.Save):
		m.mode = modeSaveName
		m.renaming = ""
		m.input = newInput("name (optional)", "")
		return m, m.input.Focus()
	case key.Matches(msg, keys.Copy):
		m.copyPattern()
	case key.Matches(msg, keys.Open):
		return m.openSnapshots()
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// padKey presses a pad and schedules its synthesized release. Terminals
// send repeats while a key is held, each one pushing the release back.
func (m *Model) padKey(k string) tea.Cmd {
	window := m.keyHold
	if _, repeat := m.held[k]; repeat {
		window = m.keyRelease
	}
	m.Manager.KeyDown(k)
	m.seq++
	seq := m.seq
	m.held[k] = seq
	return m.tick(window, func(time.Time) tea.Msg {
		return keyReleaseMsg{key: k, seq: seq}
	})
}

func (m Model) copyPattern() {
	if err := m.copyText(m.Manager.PatternText()); err != nil {
		debug.Log("tui", "copy pattern: %v", err)
		m.Manager.Notify(drumpad.LevelError, "Could not copy the pattern")
		return
	}
	m.Manager.Notify(drumpad.LevelInfo, "Pattern copied")
}

func (m Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.mode != modePads {
		return m, nil
	}
	switch msg.Action {
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		if m.Manager.Suspended() {
			m.Manager.Unlock()
			return m, nil
		}
		c, ok := m.padAt(msg.X, msg.Y)
		if !ok {
			return m, nil
		}
		m.Manager.Press(c)
		m.mouse = &c
	case tea.MouseActionRelease:
		if m.mouse != nil {
			m.Manager.Release(*m.mouse)
			m.mouse = nil
		}
	}
	return m, nil
}

func (m Model) padAt(x, y int) (pad.Coord, bool) {
	row, col, ok := widgets.PadAt(x-m.bounds.gridLeft, y-m.bounds.gridTop, pad.Size, pad.Size)
	return pad.Coord{Row: row, Col: col}, ok
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keyCommit):
		m.Manager.SetEditedText(m.editor.Value())
		m.editor.Blur()
		m.mode = modePads
		return m, nil
	case key.Matches(msg, keyCancel):
		m.editor.Blur()
		m.mode = modePads
		return m, nil
	}
	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

func (m Model) updateSettings(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	store := m.Manager.Store()
	if m.editing {
		switch {
		case key.Matches(msg, keyConfirm):
			if v := strings.TrimSpace(m.input.Value()); v != "" {
				m.commitField(v)
			}
			m.editing = false
			m.input.Blur()
		case key.Matches(msg, keyCancel):
			m.editing = false
			m.input.Blur()
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, keyCancel, keys.Settings):
		m.mode = modePads
	case key.Matches(msg, keyUp):
		m.field = (m.field + fieldCount - 1) % fieldCount
	case key.Matches(msg, keyDown):
		m.field = (m.field + 1) % fieldCount
	case key.Matches(msg, keyLeft):
		m.adjust(-1)
	case key.Matches(msg, keyRight):
		m.adjust(1)
	case key.Matches(msg, keyConfirm):
		switch m.field {
		case fieldBank:
			m.editing = true
			m.input = newInput("bank", store.Bank())
			m.input.SetSuggestions(settings.Banks)
			return m, m.input.Focus()
		case fieldPad:
			m.editing = true
			m.input = newInput("sound", store.Get(pad.CoordAt(m.padSel)))
			m.input.SetSuggestions(settings.CommonSounds)
			return m, m.input.Focus()
		case fieldTempo:
			m.editing = true
			m.input = newInput("bpm", strconv.Itoa(store.Tempo()))
			return m, m.input.Focus()
		case fieldReset:
			m.Manager.ResetSettings()
			m.Manager.Notify(drumpad.LevelInfo, "Settings reset to defaults")
		}
	}
	return m, nil
}

// commitField applies a typed settings value
func (m *Model) commitField(v string) {
	switch m.field {
	case fieldBank:
		m.Manager.SetBank(v)
	case fieldPad:
		m.Manager.SetSound(pad.CoordAt(m.padSel), v)
	case fieldTempo:
		bpm, err := strconv.Atoi(v)
		if err != nil {
			m.Manager.Notify(drumpad.LevelWarn, "Tempo must be a whole number of BPM")
			return
		}
		m.Manager.SetTempo(bpm)
	}
}

// adjust steps the selected settings row
func (m *Model) adjust(dir int) {
	store := m.Manager.Store()
	switch m.field {
	case fieldBank:
		n := len(settings.Banks)
		i := slices.Index(settings.Banks, store.Bank())
		if i < 0 && dir < 0 {
			i = 0
		}
		m.Manager.SetBank(settings.Banks[(i+dir+n)%n])
	case fieldPad:
		m.padSel = (m.padSel + dir + pad.Count) % pad.Count
	case fieldVolume:
		m.Manager.SetLevels(store.Volume()+float64(dir)*levelStep, store.Sensitivity())
	case fieldSensitivity:
		m.Manager.SetLevels(store.Volume(), store.Sensitivity()+float64(dir)*levelStep)
	case fieldTempo:
		m.Manager.SetTempo(store.Tempo() + dir*tempoStep)
	}
}

func newInput(placeholder, value string) textinput.Model {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.CharLimit = 64
	ti.Width = 24
	ti.ShowSuggestions = true
	ti.SetValue(value)
	ti.CursorEnd()
	return ti
}

func (m Model) openSnapshots() (tea.Model, tea.Cmd) {
	if m.snapshots == nil {
		m.Manager.Notify(drumpad.LevelWarn, "Saved takes are unavailable")
		return m, nil
	}
	snaps, err := m.snapshots.List()
	if err != nil {
		debug.Log("tui", "list snapshots: %v", err)
		m.Manager.Notify(drumpad.LevelError, "Could not read saved takes")
		return m, nil
	}
	m.snaps = snaps
	m.snapSel = 0
	m.mode = modeSnapshots
	return m, nil
}

func (m Model) updateSnapshots(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keyCancel, keys.Open):
		m.mode = modePads
	case key.Matches(msg, keyUp):
		m.snapSel = max(0, m.snapSel-1)
	case key.Matches(msg, keyDown):
		m.snapSel = min(len(m.snaps)-1, m.snapSel+1)
	case key.Matches(msg, keyConfirm):
		if m.snapSel >= len(m.snaps) {
			return m, nil
		}
		snap := m.snaps[m.snapSel]
		m.Manager.SetEditedText(snap.Text)
		m.Manager.Notify(drumpad.LevelInfo, "Loaded "+snap.Title())
		m.mode = modePads
	case key.Matches(msg, keyDelete):
		if m.snapSel >= len(m.snaps) {
			return m, nil
		}
		snap := m.snaps[m.snapSel]
		if err := m.snapshots.Delete(snap.ID); err != nil {
			debug.Log("tui", "delete snapshot %s: %v", snap.ID, err)
			m.Manager.Notify(drumpad.LevelError, "Could not delete "+snap.Title())
			return m, nil
		}
		m.snaps = slices.Delete(slices.Clone(m.snaps), m.snapSel, m.snapSel+1)
		m.snapSel = max(0, min(m.snapSel, len(m.snaps)-1))
	case key.Matches(msg, keyRename):
		if m.snapSel >= len(m.snaps) {
			return m, nil
		}
		snap := m.snaps[m.snapSel]
		m.renaming = snap.ID
		m.mode = modeSaveName
		m.input = newInput("new name", snap.Name)
		return m, m.input.Focus()
	}
	return m, nil
}

func (m Model) updateSaveName(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keyConfirm):
		m.mode = modePads
		m.input.Blur()
		if m.renaming != "" {
			return m.renameTake()
		}
		if m.snapshots == nil {
			m.Manager.Notify(drumpad.LevelWarn, "Saved takes are unavailable")
			return m, nil
		}
		snap, err := m.snapshots.Save(m.input.Value(), m.Manager.PatternText(), m.Manager.Store().Bank(), m.Manager.Sounds())
		if err != nil {
			debug.Log("tui", "save snapshot: %v", err)
			m.Manager.Notify(drumpad.LevelError, "Could not save take")
			return m, nil
		}
		m.Manager.Notify(drumpad.LevelInfo, "Saved "+snap.Title())
		return m, nil
	case key.Matches(msg, keyCancel):
		m.mode = modePads
		m.input.Blur()
		if m.renaming != "" {
			m.renaming = ""
			return m.openSnapshots()
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// renameTake names the selected take and goes back to the list
func (m Model) renameTake() (tea.Model, tea.Cmd) {
	id := m.renaming
	m.renaming = ""
	if err := m.snapshots.Rename(id, m.input.Value()); err != nil {
		debug.Log("tui", "rename snapshot %s: %v", id, err)
		m.Manager.Notify(drumpad.LevelError, "Could not rename take")
		return m, nil
	}
	sel := m.snapSel
	next, cmd := m.openSnapshots()
	nm := next.(Model)
	nm.snapSel = min(sel, max(0, len(nm.snaps)-1))
	return nm, cmd
}

func (m *Model) handleDevice(event midi.DeviceEvent) {
	switch event.Type {
	case midi.DeviceConnected:
		m.Manager.SetController(event.Controller)
		go m.Manager.RunController(context.Background(), event.Controller)
		m.Manager.Notify(drumpad.LevelInfo, "Connected "+event.ID)
	case midi.DeviceDisconnected:
		if c := m.Manager.Controller(); c != nil && c.ID() == event.ID {
			m.Manager.SetController(nil)
			m.Manager.Notify(drumpad.LevelWarn, "Disconnected "+event.ID)
		}
	}
}
