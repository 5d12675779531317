package components

import (
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/levelup/internal/ui/theme"
)

// PickerKeys are the bindings a Picker responds to.
var PickerKeys = struct {
	Up, Down, Choose key.Binding
}{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Choose: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "choose")),
}

// PickedMsg is sent when the user chooses an option.
type PickedMsg struct {
	ID    string
	Index int
	Value string
}

// Picker is a vertical single-choice list.
type Picker struct {
	ID       string
	Options  []string
	Hints    []string
	Selected int
}

// NewPicker creates a picker. hints, when given, are shown dimmed beside
// each option.
func NewPicker(id string, options, hints []string) Picker {
	return Picker{ID: id, Options: options, Hints: hints}
}

// Update moves the selection or emits a PickedMsg.
func (p Picker) Update(msg tea.Msg) (Picker, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok || len(p.Options) == 0 {
		return p, nil
	}

	switch {
	case key.Matches(kmsg, PickerKeys.Up):
		if p.Selected > 0 {
			p.Selected--
		}
	case key.Matches(kmsg, PickerKeys.Down):
		if p.Selected < len(p.Options)-1 {
			p.Selected++
		}
	case key.Matches(kmsg, PickerKeys.Choose):
		picked := PickedMsg{ID: p.ID, Index: p.Selected, Value: p.Options[p.Selected]}
		return p, func() tea.Msg { return picked }
	}
	return p, nil
}

// View renders the options with the selection marked.
func (p Picker) View() string {
	var b strings.Builder
	for i, opt := range p.Options {
		line := "    " + opt
		style := theme.Unselected
		if i == p.Selected {
			line = "  ▸ " + opt
			style = theme.Selected
		}
		b.WriteString(style.Render(line))
		if i < len(p.Hints) && p.Hints[i] != "" {
			b.WriteString(lipgloss.NewStyle().Foreground(theme.TextDim).Render("  " + p.Hints[i]))
		}
		b.WriteString("\n")
	}
	return b.String()
}
