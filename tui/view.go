package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-drumpad/drumpad"
	"go-drumpad/pad"
	"go-drumpad/widgets"
)

type styles struct {
	header   lipgloss.Style
	dim      lipgloss.Style
	box      lipgloss.Style
	selected lipgloss.Style
	toast    map[drumpad.Level]lipgloss.Style
	pads     widgets.PadStyles
}

func (m Model) styles() styles {
	t := m.Theme
	return styles{
		header:   lipgloss.NewStyle().Foreground(t.Accent()).Bold(true),
		dim:      lipgloss.NewStyle().Foreground(t.Muted()),
		box:      lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Muted()).Padding(0, 1),
		selected: lipgloss.NewStyle().Foreground(t.Active()).Bold(true),
		toast: map[drumpad.Level]lipgloss.Style{
			drumpad.LevelInfo:  lipgloss.NewStyle().Foreground(t.BG()).Background(t.Success()).Padding(0, 1),
			drumpad.LevelWarn:  lipgloss.NewStyle().Foreground(t.BG()).Background(t.Warning()).Padding(0, 1),
			drumpad.LevelError: lipgloss.NewStyle().Foreground(t.FG()).Background(t.Error()).Padding(0, 1),
		},
		pads: widgets.PadStyles{
			Idle:         lipgloss.NewStyle().Foreground(t.FG()).Background(t.Surface()).BorderForeground(t.Accent()),
			Active:       lipgloss.NewStyle().Foreground(t.BG()).Background(t.Active()).BorderForeground(t.Active()),
			Disabled:     lipgloss.NewStyle().Foreground(t.Error()).BorderForeground(t.Muted()),
			IdleMark:     t.Symbols.PadIdle,
			ActiveMark:   t.Symbols.PadActive,
			DisabledMark: t.Symbols.PadDisabled,
		},
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	st := m.styles()
	if m.Manager.Suspended() {
		return m.gateView(st)
	}

	header := m.header(st)

	var side string
	switch m.mode {
	case modeSettings:
		side = m.settingsView(st)
	case modeSnapshots:
		side = m.snapshotsView(st)
	case modeSaveName:
		title := "Save take"
		if m.renaming != "" {
			title = "Rename take"
		}
		side = st.box.Render(title + "\n\n" + m.input.View() + "\n\n" + st.dim.Render("enter save  esc cancel"))
	}

	grid := widgets.RenderPadGrid(m.padCells(), pad.Size, st.pads)
	if side != "" {
		grid = lipgloss.JoinHorizontal(lipgloss.Top, grid, "  ", side)
	}

	// grid starts after the blank line, header and blank line
	m.bounds.gridTop = 1 + lipgloss.Height(header) + 1
	m.bounds.gridLeft = 0

	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(grid)
	out.WriteString("\n\n")
	out.WriteString(m.patternView(st))

	if toasts := m.toastsView(st); toasts != "" {
		out.WriteString("\n\n")
		out.WriteString(toasts)
	}

	out.WriteString("\n\n")
	out.WriteString(m.help.View(keys))
	return out.String()
}

func (m Model) header(st styles) string {
	sym := m.Theme.Symbols
	transport := fmt.Sprintf("%c STOP", sym.Stopped)
	if m.Manager.Playing() {
		transport = fmt.Sprintf("%c PLAY", sym.Playing)
	}
	store := m.Manager.Store()
	status := fmt.Sprintf("go-drumpad  %s  %d bpm  bank:%s  engine:%s",
		transport, store.Tempo(), store.Bank(), m.Manager.EngineState())
	if c := m.Manager.Controller(); c != nil {
		status += "  " + c.Type().String()
	}
	return st.header.Render(status)
}

func (m Model) padCells() []widgets.PadCell {
	views := m.Manager.Pads()
	cells := make([]widgets.PadCell, len(views))
	for i, v := range views {
		cells[i] = widgets.PadCell{
			Key:      v.Key,
			Sound:    v.Sound,
			Active:   v.Active,
			Disabled: v.Disabled,
		}
	}
	return cells
}

func (m Model) patternView(st styles) string {
	if m.mode == modeEdit {
		return st.box.Render(m.editor.View() + "\n" + st.dim.Render("ctrl+s save  esc cancel"))
	}
	title := "pattern"
	if m.Manager.Edited() {
		title = fmt.Sprintf("pattern %c edited", m.Theme.Symbols.Edited)
	}
	return st.dim.Render(title) + "\n" + st.box.Render(m.Manager.PatternText())
}

func (m Model) toastsView(st styles) string {
	var lines []string
	for _, t := range m.Manager.Toasts() {
		lines = append(lines, st.toast[t.Level].Render(t.Text))
	}
	return strings.Join(lines, "\n")
}

func (m Model) settingsView(st styles) string {
	store := m.Manager.Store()
	c := pad.CoordAt(m.padSel)

	bank := store.Bank()
	sound := fmt.Sprintf("%s → %s", strings.ToUpper(pad.KeyForCoord(c)), store.Get(c))
	tempo := fmt.Sprintf("%d bpm", store.Tempo())
	if m.editing {
		switch m.field {
		case fieldBank:
			bank = m.input.View()
		case fieldPad:
			sound = strings.ToUpper(pad.KeyForCoord(c)) + " → " + m.input.View()
		case fieldTempo:
			tempo = m.input.View()
		}
	}

	rows := []struct{ label, value string }{
		{"bank", bank},
		{"pad", sound},
		{"volume", widgets.RenderSlider(store.Volume(), 12)},
		{"sensitivity", widgets.RenderSlider(store.Sensitivity(), 12)},
		{"tempo", tempo},
		{"reset", "restore defaults"},
	}

	var lines []string
	lines = append(lines, "Settings", "")
	for i, r := range rows {
		line := fmt.Sprintf("  %-12s %s", r.label, r.value)
		if i == m.field {
			line = st.selected.Render("> " + line[2:])
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", st.dim.Render(widgets.RenderKeyHelp([]widgets.KeySection{{
		Keys: []widgets.KeyBinding{
			{Key: "↑/↓", Desc: "choose"},
			{Key: "←/→", Desc: "change"},
			{Key: "enter", Desc: "type a value"},
			{Key: "esc", Desc: "close"},
		},
	}})))
	return st.box.Render(strings.Join(lines, "\n"))
}

func (m Model) snapshotsView(st styles) string {
	lines := []string{"Saved takes", ""}
	if len(m.snaps) == 0 {
		lines = append(lines, st.dim.Render("  nothing saved yet"))
	}
	for i, s := range m.snaps {
		line := "  " + s.Title()
		if i == m.snapSel {
			line = st.selected.Render("> " + s.Title())
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", st.dim.Render("enter load  r rename  d delete  esc close"))
	return st.box.Render(strings.Join(lines, "\n"))
}

// gateView covers everything while audio waits for a gesture
func (m Model) gateView(st styles) string {
	msg := st.box.Padding(1, 4).Render(
		st.header.Render("Audio is paused") + "\n\n" +
			"Press space or click to start audio.\n" +
			st.dim.Render("ctrl+c quits"))
	if m.width == 0 || m.height == 0 {
		return "\n" + msg
	}
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, msg)
}
