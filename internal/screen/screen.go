package screen

import (
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
)

// Screen defines the interface for all application screens.
type Screen interface {
	// Init returns an initial command when the screen is first created.
	Init() tea.Cmd

	// Update handles messages and returns updated screen + command.
	Update(msg tea.Msg) (Screen, tea.Cmd)

	// View renders the screen content (excluding header/footer).
	View(width, height int) string

	// Title returns the screen name for the header.
	Title() string
}

// KeyBinder is implemented by screens that list their own bindings in
// the footer help.
type KeyBinder interface {
	KeyBindings() []key.Binding
}

// RefreshMsg tells the app and the screens below the active one that the
// learner's ledger changed.
type RefreshMsg struct{}

// Refresh is a command that emits RefreshMsg.
func Refresh() tea.Msg { return RefreshMsg{} }
