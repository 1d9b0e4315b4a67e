package pattern

import (
	"fmt"

	"go-drumpad/debug"
)

// Evaluator is the part of a pattern engine the transport drives
type Evaluator interface {
	Evaluate(code string) error
	Stop() error
}

// TempoLine sets the engine tempo to bpm, counting four beats per cycle
func TempoLine(bpm int) string { return fmt.Sprintf("setcpm(%d/4)", bpm) }

// Transport toggles continuous playback of the pattern text
type Transport struct {
	// Tempo, when set, is read on every Play and sent ahead of the pattern
	Tempo func() int

	acc     *Accumulator
	eval    Evaluator
	playing bool
}

// NewTransport wires an accumulator to an evaluator
func NewTransport(acc *Accumulator, eval Evaluator) *Transport {
	return &Transport{acc: acc, eval: eval}
}

// Play hands the current pattern text to the engine. On error the transport
// stays where it was and the text is left alone for the user to fix.
func (t *Transport) Play() error {
	code := t.acc.Text()
	if t.Tempo != nil {
		code = TempoLine(t.Tempo()) + "\n" + code
	}
	if err := t.eval.Evaluate(code); err != nil {
		debug.Log("pattern", "evaluate failed: %v (code=%q)", err, code)
		return err
	}
	t.playing = true
	debug.Log("pattern", "playing %q", code)
	return nil
}

// Stop silences continuous playback. One-shots already fired keep ringing.
func (t *Transport) Stop() error {
	err := t.eval.Stop()
	t.playing = false
	if err != nil {
		debug.Log("pattern", "stop failed: %v", err)
	}
	return err
}

// Playing reports the transport state
func (t *Transport) Playing() bool { return t.playing }
