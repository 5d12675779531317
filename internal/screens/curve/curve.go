package curve

import (
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/levelup/internal/router"
	"github.com/abhisek/levelup/internal/screen"
	"github.com/abhisek/levelup/internal/ui/layout"
	"github.com/abhisek/levelup/internal/ui/theme"
	"github.com/abhisek/levelup/internal/xp"
)

// MaxLevel is the last level the table scrolls to.
const MaxLevel = 100

var keys = struct {
	Up, Down, Back key.Binding
}{
	Up:   key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "scroll up")),
	Down: key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "scroll down")),
	Back: key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "back")),
}

// CurveScreen is a scrollable table of step costs and level thresholds.
type CurveScreen struct {
	current int
	top     int
}

var _ screen.Screen = (*CurveScreen)(nil)

// New creates the table with current highlighted and scrolled into view.
func New(current int) *CurveScreen {
	top := current - 3
	if top < 1 {
		top = 1
	}
	return &CurveScreen{current: current, top: top}
}

func (s *CurveScreen) Init() tea.Cmd { return nil }

func (s *CurveScreen) Title() string { return "Level Curve" }

func (s *CurveScreen) KeyBindings() []key.Binding {
	return []key.Binding{keys.Up, keys.Down, keys.Back}
}

func (s *CurveScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	kmsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return s, nil
	}
	switch {
	case key.Matches(kmsg, keys.Up):
		if s.top > 1 {
			s.top--
		}
	case key.Matches(kmsg, keys.Down):
		if s.top < MaxLevel {
			s.top++
		}
	case key.Matches(kmsg, keys.Back):
		return s, func() tea.Msg { return router.PopScreenMsg{} }
	}
	return s, nil
}

func (s *CurveScreen) View(width, height int) string {
	rows := height - 4
	if rows < 1 {
		rows = 1
	}

	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(layout.Center(theme.Title.Render(fmt.Sprintf("%-7s %12s %14s%7s", "Level", "Step cost", "Starts at", "")), width))
	b.WriteString("\n")

	for lvl := s.top; lvl < s.top+rows && lvl <= MaxLevel; lvl++ {
		style, marker := theme.Body, ""
		if lvl == s.current {
			style, marker = theme.LevelUp, "  ◀ you"
		}
		b.WriteString(layout.Center(style.Render(Row(lvl)+fmt.Sprintf("%-7s", marker)), width))
		b.WriteString("\n")
	}
	return b.String()
}

// Row formats one table line. Level 1 is free, so its step cost is "-".
func Row(level int) string {
	step := "-"
	if level > 1 {
		step = fmt.Sprint(xp.XPRequiredForLevel(level))
	}
	return fmt.Sprintf("%-7d %12s %14d", level, step, xp.TotalXPForLevel(level))
}
