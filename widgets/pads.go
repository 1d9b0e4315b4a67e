package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Pad cell geometry, border included
const (
	PadWidth  = 10
	PadHeight = 4
	PadGap    = 1
)

// PadCell is one pad as the grid draws it
type PadCell struct {
	Key      string
	Sound    string
	Active   bool
	Disabled bool
}

// PadStyles colors the pad states. A mark, when set, tags the state in the
// pad's top-right corner; the disabled mark prefixes the sound instead.
type PadStyles struct {
	Idle     lipgloss.Style
	Active   lipgloss.Style
	Disabled lipgloss.Style

	IdleMark     rune
	ActiveMark   rune
	DisabledMark rune
}

// RenderPad renders a single bordered pad: key on top, sound below
func RenderPad(cell PadCell, styles PadStyles) string {
	style, mark := styles.Idle, styles.IdleMark
	sound := cell.Sound
	switch {
	case cell.Disabled:
		style, mark = styles.Disabled, 0
		if styles.DisabledMark != 0 {
			sound = string(styles.DisabledMark) + sound
		}
	case cell.Active:
		style, mark = styles.Active, styles.ActiveMark
	}
	inner := PadWidth - 2
	top := strings.ToUpper(cell.Key)
	if mark != 0 {
		top += strings.Repeat(" ", max(1, inner-lipgloss.Width(top)-1)) + string(mark)
	}
	body := lipgloss.PlaceHorizontal(inner, lipgloss.Left, top) + "\n" +
		lipgloss.PlaceHorizontal(inner, lipgloss.Right, truncate(sound, inner))
	return style.
		Border(lipgloss.RoundedBorder()).
		Width(inner).
		Height(PadHeight - 2).
		Render(body)
}

// RenderPadGrid renders rows of pads, row 0 at the top
func RenderPadGrid(cells []PadCell, cols int, styles PadStyles) string {
	if cols <= 0 {
		return ""
	}
	gap := strings.Repeat(" ", PadGap)
	var rows []string
	for start := 0; start < len(cells); start += cols {
		end := min(start+cols, len(cells))
		var row []string
		for i, c := range cells[start:end] {
			if i > 0 {
				row = append(row, gap)
			}
			row = append(row, RenderPad(c, styles))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return strings.Join(rows, "\n")
}

// PadAt maps a position relative to the grid's top-left corner to a cell.
// Gaps between pads are not hits.
func PadAt(x, y, rows, cols int) (row, col int, ok bool) {
	if x < 0 || y < 0 {
		return 0, 0, false
	}
	stepX := PadWidth + PadGap
	col, inX := x/stepX, x%stepX
	row = y / PadHeight
	if inX >= PadWidth || col >= cols || row >= rows {
		return 0, 0, false
	}
	return row, col, true
}

// RenderSlider draws a 0-1 value as a bar of width cells
func RenderSlider(value float64, width int) string {
	value = max(0, min(1, value))
	filled := int(value*float64(width) + 0.5)
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + fmt.Sprintf(" %3.0f%%", value*100)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
