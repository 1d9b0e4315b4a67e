package midi

import (
	"fmt"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-drumpad/debug"
)

// DefaultBaseNote is where 4x4 pad controllers (MPD, MPK, nanoPAD layouts)
// usually start: bottom-left pad, counting left to right then upward.
const DefaultBaseNote uint8 = 36

// NotePadController reads a pad controller that sends one note per pad
// and has no addressable lights
type NotePadController struct {
	id   string
	base uint8
	stop func()

	closeOnce sync.Once
	pads      chan PadEvent
}

// NewNotePadController listens on inPort for 16 notes starting at base
func NewNotePadController(id string, inPort drivers.In, base uint8) (*NotePadController, error) {
	np := &NotePadController{
		id:   id,
		base: base,
		pads: make(chan PadEvent, 32),
	}
	if inPort == nil {
		return np, nil
	}
	stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
		ev, ok := decodePadMessage(msg, np.position)
		if !ok {
			return
		}
		select {
		case np.pads <- ev:
		default:
		}
	})
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	np.stop = stop
	debug.Log("notepads", "opened %s base=%d", id, base)
	return np, nil
}

// position maps note to the device's bottom-up 4x4 layout
func (np *NotePadController) position(note uint8) (row, col int) {
	if note < np.base || note >= np.base+16 {
		return -1, -1
	}
	i := int(note - np.base)
	return i / 4, i % 4
}

func (np *NotePadController) ID() string { return np.id }

func (np *NotePadController) Type() ControllerType { return ControllerNotePads }

func (np *NotePadController) PadEvents() <-chan PadEvent { return np.pads }

// SetLEDBatch is a no-op: these controllers light their own pads
func (np *NotePadController) SetLEDBatch(updates []LEDUpdate) error { return nil }

func (np *NotePadController) Close() error {
	np.closeOnce.Do(func() {
		if np.stop != nil {
			np.stop()
		}
		close(np.pads)
	})
	return nil
}
