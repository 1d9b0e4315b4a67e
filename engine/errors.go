package engine

import (
	"fmt"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
	"github.com/Southclaws/fault/ftag"
)

// Failure kinds. Every error leaving this package carries one.
const (
	KindNotReady     ftag.Kind = "NOT_READY"
	KindLoadFailed   ftag.Kind = "LOAD_FAILED"
	KindBadPattern   ftag.Kind = "BAD_PATTERN"
	KindAudioBlocked ftag.Kind = "AUDIO_BLOCKED"
	KindUnavailable  ftag.Kind = "UNAVAILABLE"
)

var (
	// ErrNotReady is returned while the engine is still starting
	ErrNotReady = fault.Wrap(fault.New("engine not ready"),
		ftag.With(KindNotReady),
		fmsg.WithDesc("not ready", "Audio engine is still starting"))

	// ErrAudioBlocked is returned while audio output waits for an unlock
	ErrAudioBlocked = fault.Wrap(fault.New("audio output suspended"),
		ftag.With(KindAudioBlocked),
		fmsg.WithDesc("suspended", "Audio is blocked. Press space to enable sound"))
)

func unavailable(cause error) error {
	if cause == nil {
		cause = fault.New("no engine configured")
	}
	return fault.Wrap(cause,
		ftag.With(KindUnavailable),
		fmsg.WithDesc("engine unavailable", "No audio engine. Pads will record but stay silent"))
}

func loadFailed(cause error, sound, bank string) error {
	return fault.Wrap(cause,
		ftag.With(KindLoadFailed),
		fmsg.WithDesc(fmt.Sprintf("load %s:%s", bank, sound),
			fmt.Sprintf("Missing sample: %s in %s", sound, bank)))
}

func badPattern(cause error) error {
	return fault.Wrap(cause,
		ftag.With(KindBadPattern),
		fmsg.WithDesc("bad pattern", "Pattern error: "+cause.Error()))
}

func noPatterns(name string) error {
	return fault.Wrap(fault.New(name+" cannot evaluate patterns"),
		ftag.With(KindUnavailable),
		fmsg.WithDesc("no pattern engine", "No pattern engine. Start with -engine osc or -engine split"))
}

// KindOf returns the failure kind of err, or "" when it has none
func KindOf(err error) ftag.Kind {
	if err == nil {
		return ""
	}
	switch k := ftag.Get(err); k {
	case KindNotReady, KindLoadFailed, KindBadPattern, KindAudioBlocked, KindUnavailable:
		return k
	}
	return ""
}

// Message is the text to show the user for err
func Message(err error) string {
	if err == nil {
		return ""
	}
	if issue := fmsg.GetIssue(err); issue != "" {
		return issue
	}
	return err.Error()
}
