package engine

import "context"

// Absent is the engine used when none is configured. Pads still record;
// every sound call reports the engine unavailable.
type Absent struct{}

func (Absent) Init(ctx context.Context) error { return nil }
func (Absent) Trigger(sound, bank string) error { return unavailable(nil) }
func (Absent) Evaluate(code string) error { return unavailable(nil) }
func (Absent) Stop() error { return nil }
func (Absent) State() State { return StateUnavailable }
func (Absent) Resume() error { return nil }
func (Absent) Close() error { return nil }
