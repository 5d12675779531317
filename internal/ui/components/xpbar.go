package components

import (
	"fmt"

	"charm.land/bubbles/v2/progress"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/levelup/internal/ui/theme"
	"github.com/abhisek/levelup/internal/xp"
)

// XPBar shows progress through the current level.
type XPBar struct {
	bar   progress.Model
	state xp.LevelState
}

// NewXPBar creates a bar for state.
func NewXPBar(state xp.LevelState, width int) XPBar {
	b := XPBar{
		bar: progress.New(
			progress.WithColors(theme.Secondary, theme.Primary),
			progress.WithoutPercentage(),
		),
		state: state,
	}
	b.SetWidth(width)
	return b
}

// SetWidth resizes the bar; the label takes part of width.
func (b *XPBar) SetWidth(width int) {
	w := width - lipgloss.Width(b.label()) - 2
	if w < 10 {
		w = 10
	}
	b.bar.SetWidth(w)
}

// SetState replaces the level state shown.
func (b *XPBar) SetState(state xp.LevelState) {
	b.state = state
}

func (b XPBar) label() string {
	return fmt.Sprintf("%d / %d XP", b.state.XPIntoLevel(), b.state.LevelSpan())
}

// View renders the bar followed by the XP into the level.
func (b XPBar) View() string {
	return b.bar.ViewAs(b.state.Progress()) + "  " +
		lipgloss.NewStyle().Foreground(theme.TextDim).Render(b.label())
}
