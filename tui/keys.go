package tui

import "github.com/charmbracelet/bubbles/key"

func binding(help string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(keys[0], help))
}

type keyMap struct {
	Play     key.Binding
	Stop     key.Binding
	Clear    key.Binding
	Reset    key.Binding
	Edit     key.Binding
	Settings key.Binding
	Save     key.Binding
	Open     key.Binding
	Copy     key.Binding
	Unlock   key.Binding
	Help     key.Binding
	Quit     key.Binding
}

var keys = keyMap{
	Play:     binding("play", "enter"),
	Stop:     binding("stop", "esc", "."),
	Clear:    binding("clear", "backspace"),
	Reset:    binding("example", "ctrl+r"),
	Edit:     binding("edit pattern", "tab"),
	Settings: binding("settings", "ctrl+s"),
	Save:     binding("save take", "ctrl+w"),
	Open:     binding("saved takes", "ctrl+o"),
	Copy:     binding("copy pattern", "ctrl+y"),
	Unlock:   key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "start audio")),
	Help:     binding("more", "?"),
	Quit:     binding("quit", "ctrl+c"),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Stop, k.Clear, k.Edit, k.Settings, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Stop, k.Clear, k.Reset},
		{k.Edit, k.Settings, k.Save, k.Open, k.Copy},
		{k.Unlock, k.Help, k.Quit},
	}
}

// Bindings used inside the editors and lists
var (
	keyConfirm = binding("ok", "enter")
	keyCancel  = binding("back", "esc")
	keyCommit  = binding("save", "ctrl+s")
	keyUp      = binding("up", "up", "k")
	keyDown    = binding("down", "down", "j")
	keyLeft    = binding("less", "left", "h")
	keyRight   = binding("more", "right", "l")
	keyDelete  = binding("delete", "d")
	keyRename  = binding("rename", "r")
)
