package engine

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-drumpad/debug"
)

// MIDIOut plays pads on an external drum machine over MIDI
type MIDIOut struct {
	PortName string // substring of the output port; empty picks the first
	Channel  uint8  // 1-16
	Kit      Kit
	Velocity func() uint8 // read per hit; nil means 100
	Gate     time.Duration

	mu    sync.RWMutex
	send  func(gomidi.Message) error
	state State

	// swapped out in tests
	open func(name string) (func(gomidi.Message) error, string, error)
}

// NewMIDIOut creates a MIDI output engine on channel (1-16) using kit
func NewMIDIOut(portName string, channel int, kit string) *MIDIOut {
	if channel < 1 || channel > 16 {
		channel = 10
	}
	return &MIDIOut{
		PortName: portName,
		Channel:  uint8(channel),
		Kit:      GetKit(kit),
		Gate:     100 * time.Millisecond,
		state:    StatePending,
		open:     openOutPort,
	}
}

func openOutPort(name string) (func(gomidi.Message) error, string, error) {
	for _, port := range gomidi.GetOutPorts() {
		if name == "" || strings.Contains(strings.ToLower(port.String()), strings.ToLower(name)) {
			send, err := gomidi.SendTo(port)
			if err != nil {
				return nil, "", err
			}
			return send, port.String(), nil
		}
	}
	return nil, "", fmt.Errorf("no MIDI output matching %q", name)
}

func (m *MIDIOut) Init(ctx context.Context) error {
	send, port, err := m.open(m.PortName)
	m.mu.Lock()
	defer m.mu.Unlock()
	if err != nil {
		m.state = StateUnavailable
		return unavailable(err)
	}
	m.send = send
	m.state = StateReady
	debug.Log("midiout", "opened %s ch=%d kit=%s", port, m.Channel, m.Kit.Name)
	return nil
}

func (m *MIDIOut) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

func (m *MIDIOut) Resume() error { return nil }

// Failed reports sounds the kit has no note for
func (m *MIDIOut) Failed(sound, bank string) bool {
	_, ok := m.Kit.Note(sound)
	return !ok
}

// Trigger sends note on, then note off after Gate
func (m *MIDIOut) Trigger(sound, bank string) error {
	note, ok := m.Kit.Note(sound)
	if !ok {
		return loadFailed(fmt.Errorf("kit %s has no note for %s", m.Kit.Name, sound), sound, bank)
	}
	m.mu.RLock()
	send := m.send
	m.mu.RUnlock()
	if send == nil {
		return ErrNotReady
	}

	vel := uint8(100)
	if m.Velocity != nil {
		vel = m.Velocity()
	}
	if vel == 0 {
		vel = 1
	}
	ch := m.Channel - 1
	if err := send(gomidi.NoteOn(ch, note, vel)); err != nil {
		return unavailable(err)
	}
	go func() {
		time.Sleep(m.Gate)
		m.noteOff(ch, note)
	}()
	debug.LogEvery(16, "midiout", "note %d vel %d (%s)", note, vel, sound)
	return nil
}

// noteOff is skipped once the port is closed; Close already silenced it
func (m *MIDIOut) noteOff(ch, note uint8) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.send == nil {
		return
	}
	if err := m.send(gomidi.NoteOff(ch, note)); err != nil {
		debug.Log("midiout", "note off %d: %v", note, err)
	}
}

func (m *MIDIOut) Evaluate(code string) error {
	return noPatterns("midi")
}

func (m *MIDIOut) Stop() error { return nil }

// Close silences every note on the channel
func (m *MIDIOut) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.send != nil {
		m.send(gomidi.ControlChange(m.Channel-1, 123, 0))
	}
	m.send = nil
	return nil
}
