package pad

// Pulses tracks which pads are lit. Every Fire bumps the pad's generation, so
// a reset scheduled by an older hit can tell it has been superseded.
type Pulses struct {
	gen    [Count]uint64
	active [Count]bool
}

// Fire lights c and returns the generation a later Expire must present
func (p *Pulses) Fire(c Coord) uint64 {
	if !c.Valid() {
		return 0
	}
	i := c.Index()
	p.gen[i]++
	p.active[i] = true
	return p.gen[i]
}

// Expire turns c off if gen is still the latest hit. Returns false for a
// stale reset.
func (p *Pulses) Expire(c Coord, gen uint64) bool {
	if !c.Valid() {
		return false
	}
	i := c.Index()
	if p.gen[i] != gen {
		return false
	}
	p.active[i] = false
	return true
}

// Clear turns c off regardless of pending resets
func (p *Pulses) Clear(c Coord) {
	if !c.Valid() {
		return
	}
	p.active[c.Index()] = false
}

// Active reports whether c is lit
func (p *Pulses) Active(c Coord) bool {
	if !c.Valid() {
		return false
	}
	return p.active[c.Index()]
}
