// Package pad defines the 4x4 pad grid, its key bindings and the transient
// per-pad light state.
package pad

import "strings"

// Size is the number of rows and columns on the pad grid
const Size = 4

// Count is the number of pads
const Count = Size * Size

// Coord identifies one pad cell. Row 0 is the top row.
type Coord struct {
	Row, Col int
}

// Valid reports whether c is on the grid
func (c Coord) Valid() bool {
	return c.Row >= 0 && c.Row < Size && c.Col >= 0 && c.Col < Size
}

// Index returns the row-major index of c (0-15)
func (c Coord) Index() int {
	return c.Row*Size + c.Col
}

// CoordAt is the inverse of Index
func CoordAt(idx int) Coord {
	return Coord{Row: idx / Size, Col: idx % Size}
}

// Keys is the key alphabet in row-major pad order. Each keyboard row drives
// one pad row, so the grid sits under the left hand.
var Keys = [Count]string{
	"1", "2", "3", "4",
	"q", "w", "e", "r",
	"a", "s", "d", "f",
	"z", "x", "c", "v",
}

var keyToCoord = func() map[string]Coord {
	m := make(map[string]Coord, Count)
	for i, k := range Keys {
		m[k] = CoordAt(i)
	}
	return m
}()

// CoordForKey resolves a raw key to its pad. Keys are lowercased first so
// shifted letters still hit.
func CoordForKey(key string) (Coord, bool) {
	c, ok := keyToCoord[strings.ToLower(key)]
	return c, ok
}

// KeyForCoord returns the key bound to c, or "" off the grid
func KeyForCoord(c Coord) string {
	if !c.Valid() {
		return ""
	}
	return Keys[c.Index()]
}

// AllCoords returns every pad in row-major order
func AllCoords() []Coord {
	out := make([]Coord, Count)
	for i := range out {
		out[i] = CoordAt(i)
	}
	return out
}
