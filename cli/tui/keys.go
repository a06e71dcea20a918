package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mwantia/craftos/term"
)

// KeyMap holds the front-end shortcuts. Every other key is forwarded to
// the computer.
type KeyMap struct {
	Terminate key.Binding
	Reboot    key.Binding
	Shutdown  key.Binding
	Quit      key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Terminate: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "terminate"),
		),
		Reboot: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reboot"),
		),
		Shutdown: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "shutdown"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Terminate, k.Reboot, k.Shutdown, k.Quit}
}

func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

var specialKeys = map[tea.KeyType]int{
	tea.KeyEnter:     term.KeyEnter,
	tea.KeyBackspace: term.KeyBackspace,
	tea.KeyTab:       term.KeyTab,
	tea.KeyEsc:       term.KeyEscape,
	tea.KeyUp:        term.KeyUp,
	tea.KeyDown:      term.KeyDown,
	tea.KeyLeft:      term.KeyLeft,
	tea.KeyRight:     term.KeyRight,
	tea.KeyHome:      term.KeyHome,
	tea.KeyEnd:       term.KeyEnd,
	tea.KeyPgUp:      term.KeyPageUp,
	tea.KeyPgDown:    term.KeyPageDown,
	tea.KeyInsert:    term.KeyInsert,
	tea.KeyDelete:    term.KeyDelete,
	tea.KeyF1:        term.KeyF1,
	tea.KeyF2:        term.KeyF2,
	tea.KeyF3:        term.KeyF3,
	tea.KeyF4:        term.KeyF4,
	tea.KeyF5:        term.KeyF5,
	tea.KeyF6:        term.KeyF6,
	tea.KeyF7:        term.KeyF7,
	tea.KeyF8:        term.KeyF8,
	tea.KeyF9:        term.KeyF9,
	tea.KeyF10:       term.KeyF10,
	tea.KeyF11:       term.KeyF11,
	tea.KeyF12:       term.KeyF12,
}
