package pad

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyBindingIsBijective(t *testing.T) {
	seen := make(map[Coord]string)
	for _, k := range Keys {
		c, ok := CoordForKey(k)
		require.True(t, ok, "key %q unbound", k)
		require.True(t, c.Valid())
		_, dup := seen[c]
		require.False(t, dup, "coord %v bound twice", c)
		seen[c] = k
		assert.Equal(t, k, KeyForCoord(c))
	}
	assert.Len(t, seen, Count)
}

func TestCoordForKeyNormalizes(t *testing.T) {
	c, ok := CoordForKey("Q")
	require.True(t, ok)
	assert.Equal(t, Coord{Row: 1, Col: 0}, c)

	c, ok = CoordForKey("1")
	require.True(t, ok)
	assert.Equal(t, Coord{Row: 0, Col: 0}, c)

	_, ok = CoordForKey("p")
	assert.False(t, ok)
	_, ok = CoordForKey("")
	assert.False(t, ok)
}

func TestKeyForCoordOffGrid(t *testing.T) {
	assert.Equal(t, "", KeyForCoord(Coord{Row: 4, Col: 0}))
	assert.Equal(t, "", KeyForCoord(Coord{Row: 0, Col: -1}))
	assert.Equal(t, "v", KeyForCoord(Coord{Row: 3, Col: 3}))
}

func TestAllCoords(t *testing.T) {
	all := AllCoords()
	require.Len(t, all, Count)
	for i, c := range all {
		assert.Equal(t, i, c.Index())
	}
}

func TestPulseSupersedesPendingReset(t *testing.T) {
	var p Pulses
	c := Coord{Row: 2, Col: 1}

	first := p.Fire(c)
	second := p.Fire(c)
	assert.True(t, p.Active(c))

	// the first hit's reset lands after the second hit and must not turn it off
	assert.False(t, p.Expire(c, first))
	assert.True(t, p.Active(c))

	assert.True(t, p.Expire(c, second))
	assert.False(t, p.Active(c))
}

func TestPulseClear(t *testing.T) {
	var p Pulses
	c := Coord{Row: 0, Col: 3}
	gen := p.Fire(c)
	p.Clear(c)
	assert.False(t, p.Active(c))
	// a late reset after a clear is harmless
	assert.True(t, p.Expire(c, gen))
	assert.False(t, p.Active(c))
}

func TestPulseOffGrid(t *testing.T) {
	var p Pulses
	bad := Coord{Row: -1, Col: 0}
	assert.Zero(t, p.Fire(bad))
	assert.False(t, p.Expire(bad, 0))
	assert.False(t, p.Active(bad))
	p.Clear(bad)
}
