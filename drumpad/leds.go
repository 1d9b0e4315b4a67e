package drumpad

import (
	"context"

	"go-drumpad/debug"
	"go-drumpad/midi"
)

// Pad light colors on grid controllers
var (
	ledIdle     = [3]uint8{40, 60, 120}
	ledActive   = [3]uint8{255, 255, 255}
	ledDisabled = [3]uint8{180, 60, 60}
	ledPlaying  = [3]uint8{0, 100, 0}
)

// SetController sets the grid controller for LED feedback; nil detaches it
func (m *Manager) SetController(c midi.Controller) {
	m.ctrlMu.Lock()
	m.controller = c
	m.prevLEDs = make(map[[2]int]midi.LEDUpdate) // diff will repaint everything
	m.ctrlMu.Unlock()
	if c != nil {
		debug.Log("ctrl", "controller %s attached", c.ID())
	}
	m.flushLEDs()
}

// Controller returns the attached grid controller, if any
func (m *Manager) Controller() midi.Controller {
	m.ctrlMu.Lock()
	defer m.ctrlMu.Unlock()
	return m.controller
}

// RunController feeds pad events from c into the manager until its event
// channel closes or ctx is done. Grid controllers report real releases.
func (m *Manager) RunController(ctx context.Context, c midi.Controller) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-c.PadEvents():
			if !ok {
				return
			}
			coord, onPad := midi.PadCoord(ev.Row, ev.Col)
			if !onPad {
				continue
			}
			if ev.Down {
				m.Press(coord)
			} else {
				m.Release(coord)
			}
		}
	}
}

// ledState renders the lights for the current pad state
func (m *Manager) ledState() []midi.LEDUpdate {
	playing := m.Playing()
	pads := m.Pads()
	out := make([]midi.LEDUpdate, 0, len(pads))
	for _, p := range pads {
		color := ledIdle
		switch {
		case p.Disabled:
			color = ledDisabled
		case p.Active:
			color = ledActive
		case playing:
			color = ledPlaying
		}
		row, col := midi.DevicePos(p.Coord)
		out = append(out, midi.LEDUpdate{Row: row, Col: col, Color: color, Channel: midi.ChannelStatic})
	}
	return out
}

// flushLEDs sends only changed lights to the controller
func (m *Manager) flushLEDs() {
	m.ctrlMu.Lock()
	defer m.ctrlMu.Unlock()
	if m.controller == nil {
		return
	}

	var updates []midi.LEDUpdate
	for _, led := range m.ledState() {
		key := [2]int{led.Row, led.Col}
		if prev, ok := m.prevLEDs[key]; !ok || prev != led {
			updates = append(updates, led)
			m.prevLEDs[key] = led
		}
	}
	if len(updates) == 0 {
		return
	}
	if err := m.controller.SetLEDBatch(updates); err != nil {
		debug.Log("led", "flush failed: %v", err)
	}
}
