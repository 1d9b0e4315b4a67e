package midi

import (
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	"go-drumpad/debug"
)

var ledSendCount uint64

// Novation SysEx header; the byte after it selects the model
var novationHeader = []byte{0x00, 0x20, 0x29, 0x02}

const (
	modelX    byte = 0x0C
	modelMini byte = 0x0D
)

func modelFor(portName string) byte {
	if strings.Contains(strings.ToLower(portName), "mini") {
		return modelMini
	}
	return modelX
}

func novationSysEx(model byte, data ...byte) gomidi.Message {
	msg := append(append([]byte{}, novationHeader...), model)
	return gomidi.SysEx(append(msg, data...))
}

// LaunchpadController drives a Launchpad X or Mini MK3 in programmer mode.
// Only the lower-left 4x4 of its grid is used for pads.
type LaunchpadController struct {
	id    string
	model byte
	send  func(msg gomidi.Message) error
	stop  func()

	closeOnce sync.Once
	pads      chan PadEvent
}

// NewLaunchpadController opens the ports and switches the device to
// programmer mode. Either port may be nil.
func NewLaunchpadController(id string, inPort drivers.In, outPort drivers.Out) (*LaunchpadController, error) {
	lp := &LaunchpadController{
		id:    id,
		model: modelFor(id),
		pads:  make(chan PadEvent, 32),
	}

	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		lp.send = send
		lp.send(novationSysEx(lp.model, 0x00, 0x7F))       // programmer layout
		lp.send(novationSysEx(lp.model, 0x08, 0x7F))       // full brightness
		lp.send(novationSysEx(lp.model, 0x0A, 0x01, 0x01)) // external LED feedback
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, lp.handle)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		lp.stop = stop
	}

	debug.Log("lp", "opened %s (model %#x)", id, lp.model)
	return lp, nil
}

func (lp *LaunchpadController) handle(msg gomidi.Message, timestampms int32) {
	ev, ok := decodePadMessage(msg, noteToRowCol)
	if !ok {
		return
	}
	select {
	case lp.pads <- ev:
	default:
		debug.Log("lp", "pad event dropped: %+v", ev)
	}
}

// decodePadMessage turns note on/off into a pad event. Note on with
// velocity 0 is a release.
func decodePadMessage(msg gomidi.Message, position func(uint8) (int, int)) (PadEvent, bool) {
	var channel, note, velocity uint8
	var ev PadEvent
	switch {
	case msg.GetNoteOn(&channel, &note, &velocity):
		ev = PadEvent{Velocity: velocity, Down: velocity > 0}
	case msg.GetNoteOff(&channel, &note, &velocity):
		ev = PadEvent{Velocity: velocity}
	default:
		return ev, false
	}
	ev.Row, ev.Col = position(note)
	return ev, ev.Row >= 0
}

func (lp *LaunchpadController) ID() string { return lp.id }

func (lp *LaunchpadController) Type() ControllerType { return ControllerLaunchpad }

func (lp *LaunchpadController) PadEvents() <-chan PadEvent { return lp.pads }

// SetLEDBatch sends one note on per light; palette index is the velocity
func (lp *LaunchpadController) SetLEDBatch(updates []LEDUpdate) error {
	if lp.send == nil || len(updates) == 0 {
		return nil
	}
	for _, u := range updates {
		if err := lp.send(gomidi.NoteOn(u.Channel, rowColToNote(u.Row, u.Col), nearestPaletteColor(u.Color))); err != nil {
			return err
		}
	}
	count := atomic.AddUint64(&ledSendCount, uint64(len(updates)))
	debug.LogEvery(50, "lp-send", "led total=%d batch=%d", count, len(updates))
	return nil
}

// paletteRGB approximates a subset of the Launchpad palette: index, R, G, B
var paletteRGB = [][4]uint8{
	{0, 0, 0, 0},
	{3, 200, 200, 200},
	{5, 255, 0, 0},
	{7, 180, 60, 60},
	{9, 255, 100, 0},
	{11, 180, 80, 40},
	{13, 255, 200, 0},
	{19, 0, 100, 0},
	{21, 0, 255, 0},
	{37, 0, 200, 200},
	{43, 40, 60, 120},
	{45, 0, 100, 255},
	{49, 150, 0, 200},
	{53, 255, 80, 180},
	{78, 100, 100, 255},
	{84, 255, 150, 50},
	{97, 180, 180, 60},
	{119, 255, 255, 255},
}

// nearestPaletteColor picks the palette index closest to rgb
func nearestPaletteColor(rgb [3]uint8) uint8 {
	best, bestDist := uint8(0), -1
	for _, p := range paletteRGB {
		dr := int(rgb[0]) - int(p[1])
		dg := int(rgb[1]) - int(p[2])
		db := int(rgb[2]) - int(p[3])
		if d := dr*dr + dg*dg + db*db; bestDist < 0 || d < bestDist {
			best, bestDist = p[0], d
		}
	}
	return best
}

// Close darkens the pads and stops listening
func (lp *LaunchpadController) Close() error {
	lp.closeOnce.Do(func() {
		if lp.send != nil {
			var off []LEDUpdate
			for row := 0; row < 8; row++ {
				for col := 0; col < 8; col++ {
					off = append(off, LEDUpdate{Row: row, Col: col})
				}
			}
			lp.SetLEDBatch(off)
		}
		if lp.stop != nil {
			lp.stop()
		}
		close(lp.pads)
	})
	return nil
}

// Programmer mode numbers the 8x8 grid 11-88: tens are row+1 from the
// bottom, units col+1. Side and top buttons are not pads.

func rowColToNote(row, col int) uint8 {
	return uint8((row+1)*10 + col + 1)
}

func noteToRowCol(note uint8) (row, col int) {
	row = int(note/10) - 1
	col = int(note%10) - 1
	if row < 0 || row > 7 || col < 0 || col > 7 {
		return -1, -1
	}
	return row, col
}
