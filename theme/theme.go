// Package theme maps palette positions to the colors the TUI draws with.
package theme

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	Palette *Palette
	Symbols Symbols
}

type Symbols struct {
	PadIdle     rune // ■ ready pad
	PadActive   rune // ◉ just hit
	PadDisabled rune // × sound failed to load
	Playing     rune // ▶
	Stopped     rune // ■
	Edited      rune // ✎ pattern text is a hand edit
}

func New(palette *Palette) *Theme {
	return &Theme{
		Palette: palette,
		Symbols: Symbols{
			PadIdle:     '■',
			PadActive:   '◉',
			PadDisabled: '×',
			Playing:     '▶',
			Stopped:     '■',
			Edited:      '✎',
		},
	}
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG      = 0.0
	RoleSurface = 0.1
	RoleMuted   = 0.3
	RoleFG      = 0.9
	RoleAccent  = 0.5
	RoleActive  = 1.0
	RoleWarning = 0.7
	RoleError   = 0.6
	RoleSuccess = 0.8
)

func (t *Theme) BG() lipgloss.Color { return t.Color(RoleBG) }
func (t *Theme) Surface() lipgloss.Color { return t.Color(RoleSurface) }
func (t *Theme) FG() lipgloss.Color { return t.Color(RoleFG) }
func (t *Theme) Accent() lipgloss.Color { return t.Color(RoleAccent) }
func (t *Theme) Muted() lipgloss.Color { return t.Color(RoleMuted) }
func (t *Theme) Active() lipgloss.Color { return t.Color(RoleActive) }
func (t *Theme) Warning() lipgloss.Color { return t.Color(RoleWarning) }
func (t *Theme) Error() lipgloss.Color { return t.Color(RoleError) }
func (t *Theme) Success() lipgloss.Color { return t.Color(RoleSuccess) }

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return Hex(t.Palette.Lookup(norm))
}

// Hex converts raw RGB to a lipgloss color
func Hex(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
