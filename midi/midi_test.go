package midi

import (
	"testing"

	"github.com/stretchr/testify/assert"
	gomidi "gitlab.com/gomidi/midi/v2"

	"go-drumpad/config"
	"go-drumpad/pad"
)

func TestPadCoordLowerLeft(t *testing.T) {
	// bottom-left of the device is the z key row
	c, ok := PadCoord(0, 0)
	assert.True(t, ok)
	assert.Equal(t, pad.Coord{Row: 3, Col: 0}, c)

	c, ok = PadCoord(3, 3)
	assert.True(t, ok)
	assert.Equal(t, pad.Coord{Row: 0, Col: 3}, c)

	for _, pos := range [][2]int{{4, 0}, {0, 4}, {7, 7}, {-1, 0}} {
		_, ok := PadCoord(pos[0], pos[1])
		assert.False(t, ok, "%v", pos)
	}

	for _, c := range pad.AllCoords() {
		row, col := DevicePos(c)
		back, ok := PadCoord(row, col)
		assert.True(t, ok)
		assert.Equal(t, c, back)
	}
}

func TestLaunchpadNotes(t *testing.T) {
	assert.Equal(t, uint8(11), rowColToNote(0, 0))
	assert.Equal(t, uint8(88), rowColToNote(7, 7))

	row, col := noteToRowCol(44)
	assert.Equal(t, 3, row)
	assert.Equal(t, 3, col)

	for _, note := range []uint8{19, 91, 5, 99} {
		row, _ := noteToRowCol(note)
		assert.Equal(t, -1, row, "note %d", note)
	}
}

func TestDecodePadMessage(t *testing.T) {
	ev, ok := decodePadMessage(gomidi.NoteOn(0, 12, 100), noteToRowCol)
	assert.True(t, ok)
	assert.Equal(t, PadEvent{Row: 0, Col: 1, Velocity: 100, Down: true}, ev)

	ev, ok = decodePadMessage(gomidi.NoteOn(0, 12, 0), noteToRowCol)
	assert.True(t, ok)
	assert.False(t, ev.Down, "zero velocity note on releases")

	ev, ok = decodePadMessage(gomidi.NoteOff(0, 12), noteToRowCol)
	assert.True(t, ok)
	assert.False(t, ev.Down)

	_, ok = decodePadMessage(gomidi.NoteOn(0, 19, 100), noteToRowCol)
	assert.False(t, ok, "side button")

	_, ok = decodePadMessage(gomidi.ControlChange(0, 91, 127), noteToRowCol)
	assert.False(t, ok)
}

func TestNotePadPositions(t *testing.T) {
	np := &NotePadController{base: DefaultBaseNote}

	row, col := np.position(36)
	assert.Equal(t, [2]int{0, 0}, [2]int{row, col})
	row, col = np.position(41)
	assert.Equal(t, [2]int{1, 1}, [2]int{row, col})
	row, col = np.position(51)
	assert.Equal(t, [2]int{3, 3}, [2]int{row, col})

	row, _ = np.position(35)
	assert.Equal(t, -1, row)
	row, _ = np.position(52)
	assert.Equal(t, -1, row)

	assert.NoError(t, np.SetLEDBatch([]LEDUpdate{{Row: 0, Col: 0}}))
	assert.NoError(t, np.Close())
	assert.NoError(t, np.Close(), "close twice")
}

func TestNearestPaletteColor(t *testing.T) {
	assert.Equal(t, uint8(0), nearestPaletteColor([3]uint8{0, 0, 0}))
	assert.Equal(t, uint8(119), nearestPaletteColor([3]uint8{250, 250, 250}))
	assert.Equal(t, uint8(5), nearestPaletteColor([3]uint8{240, 10, 10}))
	assert.Equal(t, uint8(43), nearestPaletteColor([3]uint8{40, 60, 120}))
}

func TestModelFor(t *testing.T) {
	assert.Equal(t, modelX, modelFor("Launchpad X LPX MIDI"))
	assert.Equal(t, modelMini, modelFor("Launchpad Mini MK3 LPMiniMK3 MIDI"))
}

func TestKindFor(t *testing.T) {
	dm := NewDeviceManager([]config.ControllerConfig{
		{PortName: "MPD218", Type: config.ControllerGenericGrid, AutoConnect: true},
		{PortName: "nanoPAD2", Type: config.ControllerGenericGrid, AutoConnect: false},
	})

	kind, ok := dm.kindFor("MPD218 Port A")
	assert.True(t, ok)
	assert.Equal(t, config.ControllerGenericGrid, kind)

	_, ok = dm.kindFor("nanoPAD2 PAD")
	assert.False(t, ok, "not auto-connected")

	kind, ok = dm.kindFor("Launchpad X LPX MIDI")
	assert.True(t, ok)
	assert.Equal(t, config.ControllerLaunchpadX, kind)

	_, ok = dm.kindFor("Launchpad X LPX DAW")
	assert.False(t, ok)
	_, ok = dm.kindFor("IAC Driver Bus 1")
	assert.False(t, ok)
}
