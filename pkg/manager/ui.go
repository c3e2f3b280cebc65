package manager

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// UIOptions controls the selector (Bubble Tea TUI in tui_bubble.go).
type UIOptions struct {
	// SSHCommand is the ssh program (default "ssh").
	SSHCommand string

	// ExecReplace leaves the selector on connect and hands the chosen profile back to
	// the caller, which replaces the process with ssh. Otherwise the selector runs ssh
	// as a child and returns to the list when it exits.
	ExecReplace bool

	// Record keeps a per-profile daily transcript of each session.
	Record bool

	Theme Theme
}

type keyMap struct {
	Quit    key.Binding
	Up      key.Binding
	Down    key.Binding
	Add     key.Binding
	Delete  key.Binding
	Connect key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(
		key.WithKeys("q", "Q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Add: key.NewBinding(
		key.WithKeys("a", "A"),
		key.WithHelp("a", "add"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d", "D"),
		key.WithHelp("d", "delete"),
	),
	Connect: key.NewBinding(
		key.WithKeys("c", "C", "enter"),
		key.WithHelp("c/enter", "connect"),
	),
}

// helpLine renders the key summary shown under the header.
func (k keyMap) helpLine() string {
	bindings := []key.Binding{k.Up, k.Down, k.Add, k.Delete, k.Connect, k.Quit}
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, "  ")
}

// eventForKey maps a list-mode key to a controller event.
func eventForKey(k tea.KeyMsg) EventKind {
	switch {
	case key.Matches(k, keys.Quit):
		return EventQuit
	case key.Matches(k, keys.Up):
		return EventUp
	case key.Matches(k, keys.Down):
		return EventDown
	case key.Matches(k, keys.Add):
		return EventAdd
	case key.Matches(k, keys.Delete):
		return EventDelete
	case key.Matches(k, keys.Connect):
		return EventConnect
	}
	return EventNone
}

// addPrompt is one question of the add dialog.
type addPrompt struct {
	Label       string
	Placeholder string
	Default     string
}

var addPrompts = []addPrompt{
	{Label: "Name (unique)"},
	{Label: "Host/IP"},
	{Label: "User", Placeholder: "optional"},
	{Label: "Port", Default: "22"},
	{Label: "Key file", Placeholder: "optional, e.g. ~/.ssh/id_ed25519"},
	{Label: "Note", Placeholder: "optional"},
}

// setDraftField stores the answer for prompt step i.
func setDraftField(d *Draft, i int, v string) {
	switch i {
	case 0:
		d.Name = v
	case 1:
		d.Host = v
	case 2:
		d.User = v
	case 3:
		d.Port = v
	case 4:
		d.KeyFile = v
	case 5:
		d.Note = v
	}
}
