package drumpad

import "time"

// Level of a toast
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// ToastTTL is how long a toast stays up
const ToastTTL = 4 * time.Second

// Toast is a transient message for the user
type Toast struct {
	ID      int
	Level   Level
	Text    string
	Expires time.Time
}

type toasts struct {
	next  int
	items []Toast
}

func (t *toasts) add(level Level, text string, now time.Time) Toast {
	t.next++
	toast := Toast{ID: t.next, Level: level, Text: text, Expires: now.Add(ToastTTL)}
	// the same message again only extends the old one
	for i, old := range t.items {
		if old.Text == text && old.Level == level {
			t.items[i].Expires = toast.Expires
			return t.items[i]
		}
	}
	t.items = append(t.items, toast)
	return toast
}

// live drops expired toasts and returns the rest, oldest first
func (t *toasts) live(now time.Time) []Toast {
	kept := t.items[:0]
	for _, toast := range t.items {
		if now.Before(toast.Expires) {
			kept = append(kept, toast)
		}
	}
	t.items = kept
	out := make([]Toast, len(kept))
	copy(out, kept)
	return out
}
