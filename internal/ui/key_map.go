package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap defines the [key.Binding] set for the download workflow. The same
// physical keys mean different things per view (q quits the track list but
// cancels an in-flight run), so bindings are named for their action.
type keyMap struct {
	up       key.Binding
	down     key.Binding
	download key.Binding
	yes      key.Binding
	no       key.Binding
	cancel   key.Binding
	quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		up:       key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		down:     key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		download: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "download")),
		yes:      key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "start")),
		no:       key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "back")),
		cancel:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "cancel run")),
		quit:     key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.download, k.quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.up, k.down, k.download},
		{k.yes, k.no},
		{k.cancel, k.quit},
	}
}
