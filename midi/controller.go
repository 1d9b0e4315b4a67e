package midi

import "go-drumpad/pad"

// ControllerType identifies the kind of controller
type ControllerType int

const (
	ControllerUnknown ControllerType = iota
	ControllerLaunchpad
	ControllerNotePads // pad controller sending one note per pad
)

func (t ControllerType) String() string {
	switch t {
	case ControllerLaunchpad:
		return "launchpad"
	case ControllerNotePads:
		return "note pads"
	}
	return "unknown"
}

// PadEvent is sent when a pad on a grid controller goes down or up. Row 0 is
// the bottom row of the device.
type PadEvent struct {
	Row, Col int
	Velocity uint8
	Down     bool
}

// LEDUpdate sets one pad light
type LEDUpdate struct {
	Row, Col int
	Color    [3]uint8
	Channel  uint8
}

// Controller is the interface for MIDI grid input devices
type Controller interface {
	ID() string
	Type() ControllerType

	PadEvents() <-chan PadEvent

	// SetLEDBatch lights pads; devices without lights ignore it
	SetLEDBatch(updates []LEDUpdate) error

	Close() error
}

// Channel modes for LEDUpdate.Channel
const (
	ChannelStatic uint8 = 0 // solid color
	ChannelFlash  uint8 = 1 // flashing A/B alternating
	ChannelPulse  uint8 = 2 // pulsing (fades)
)

// The drum pad occupies the lower-left 4x4 of a device grid. Device row 0 is
// at the bottom, pad row 0 (keys 1-4) at the top.

// PadCoord maps a device position to a pad, false when it is outside the 4x4
func PadCoord(row, col int) (pad.Coord, bool) {
	c := pad.Coord{Row: pad.Size - 1 - row, Col: col}
	if row < 0 || !c.Valid() {
		return pad.Coord{}, false
	}
	return c, true
}

// DevicePos maps a pad to its device position
func DevicePos(c pad.Coord) (row, col int) {
	return pad.Size - 1 - c.Row, c.Col
}
