package drumpad

import (
	"go-drumpad/debug"
	"go-drumpad/engine"
	"go-drumpad/pad"
	"go-drumpad/pattern"
)

// Player is the part of the engine adapter a trigger needs
type Player interface {
	Trigger(sound, bank string) error
	State() engine.State
	Failed(sound, bank string) bool
}

// Trigger plays a pad: sound first, then the light, then the pattern.
type Trigger struct {
	player Player
	bank   func() string
	pulses *pad.Pulses
	acc    *pattern.Accumulator

	// lit is called after a pad lights with the generation to expire
	lit func(c pad.Coord, gen uint64)
	// notice shows a message to the user
	notice func(level Level, text string)

	absentNoticed bool
}

// NewTrigger creates a trigger. lit and notice may be nil.
func NewTrigger(p Player, bank func() string, pulses *pad.Pulses, acc *pattern.Accumulator,
	lit func(pad.Coord, uint64), notice func(Level, string)) *Trigger {
	if lit == nil {
		lit = func(pad.Coord, uint64) {}
	}
	if notice == nil {
		notice = func(Level, string) {}
	}
	return &Trigger{
		player: p,
		bank:   bank,
		pulses: pulses,
		acc:    acc,
		lit:    lit,
		notice: notice,
	}
}

// Fire plays sound on pad c. It returns false when the hit was refused
// (audio locked, or the pad's sound failed to load); a refused hit is
// neither lit nor recorded. Engine errors never reach the caller.
func (t *Trigger) Fire(c pad.Coord, sound string) bool {
	bank := t.bank()

	if t.player.State() == engine.StateSuspended {
		debug.Log("trigger", "refused %s: audio locked", sound)
		return false
	}
	if t.player.Failed(sound, bank) {
		debug.Log("trigger", "WARN refused %s:%s: pad disabled", bank, sound)
		return false
	}

	if err := t.player.Trigger(sound, bank); err != nil {
		t.playFailed(err, sound, bank)
	}

	gen := t.pulses.Fire(c)
	t.lit(c, gen)
	t.acc.Append(sound)
	return true
}

func (t *Trigger) playFailed(err error, sound, bank string) {
	switch engine.KindOf(err) {
	case engine.KindNotReady:
		debug.LogEvery(8, "trigger", "%s:%s silent, engine starting", bank, sound)
	case engine.KindUnavailable:
		if !t.absentNoticed {
			t.absentNoticed = true
			t.notice(LevelError, engine.Message(err))
		}
		debug.LogEvery(8, "trigger", "%s:%s silent: %v", bank, sound, err)
	default:
		debug.Log("trigger", "WARN play %s:%s: %v", bank, sound, err)
	}
}
