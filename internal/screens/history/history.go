package history

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/levelup/internal/router"
	"github.com/abhisek/levelup/internal/screen"
	"github.com/abhisek/levelup/internal/store"
	"github.com/abhisek/levelup/internal/ui/layout"
	"github.com/abhisek/levelup/internal/ui/theme"
	"github.com/abhisek/levelup/internal/xp"
)

// pageSize bounds how many awards are loaded.
const pageSize = 200

var keys = struct {
	Up, Down, Expand, Back key.Binding
}{
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	Expand: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "breakdown")),
	Back:   key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "back")),
}

type historyLoadedMsg struct {
	events []store.ActivityEventRecord
	err    error
}

// HistoryScreen lists a learner's awards, newest first, with an
// expandable XP breakdown per award.
type HistoryScreen struct {
	eventRepo store.EventRepo
	learner   string
	events    []store.ActivityEventRecord
	selected  int
	expanded  map[int]bool
	loaded    bool
	errMsg    string
}

var _ screen.Screen = (*HistoryScreen)(nil)
var _ screen.KeyBinder = (*HistoryScreen)(nil)

// New creates a new HistoryScreen.
func New(eventRepo store.EventRepo, learner string) *HistoryScreen {
	return &HistoryScreen{
		eventRepo: eventRepo,
		learner:   learner,
		expanded:  make(map[int]bool),
	}
}

func (s *HistoryScreen) Init() tea.Cmd {
	return func() tea.Msg {
		events, err := s.eventRepo.QueryActivityEvents(context.Background(), s.learner, store.QueryOpts{Limit: pageSize})
		return historyLoadedMsg{events: events, err: err}
	}
}

func (s *HistoryScreen) Title() string {
	return "History"
}

func (s *HistoryScreen) KeyBindings() []key.Binding {
	return []key.Binding{keys.Expand, keys.Up, keys.Down, keys.Back}
}

func (s *HistoryScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case historyLoadedMsg:
		if msg.err != nil {
			s.errMsg = msg.err.Error()
		} else {
			s.events = msg.events
		}
		s.loaded = true
		return s, nil

	case screen.RefreshMsg:
		s.expanded = make(map[int]bool)
		return s, s.Init()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Back):
			return s, func() tea.Msg { return router.PopScreenMsg{} }
		case key.Matches(msg, keys.Up):
			if s.selected > 0 {
				s.selected--
			}
		case key.Matches(msg, keys.Down):
			if s.selected < len(s.events)-1 {
				s.selected++
			}
		case key.Matches(msg, keys.Expand):
			s.expanded[s.selected] = !s.expanded[s.selected]
		}
	}
	return s, nil
}

func (s *HistoryScreen) View(width, height int) string {
	if s.errMsg != "" {
		return layout.Center(theme.ErrorText.Render("\n\nError: "+s.errMsg), width)
	}
	if !s.loaded {
		return layout.Center(theme.Hint.Render("\n\n  Loading history..."), width)
	}
	if len(s.events) == 0 {
		return layout.Center(theme.Hint.Render("\n\n  No awards yet. Log an activity!"), width)
	}

	var lines []string
	selectedLine := 0
	for i, ev := range s.events {
		if i == s.selected {
			selectedLine = len(lines)
		}
		lines = append(lines, s.renderRow(i, ev))
		if s.expanded[i] {
			lines = append(lines, renderBreakdown(ev)...)
		}
	}

	// Keep the selection visible.
	rows := height - 2
	if rows < 1 {
		rows = 1
	}
	start := 0
	if selectedLine >= rows {
		start = selectedLine - rows + 1
	}
	end := start + rows
	if end > len(lines) {
		end = len(lines)
	}

	var b strings.Builder
	b.WriteString("\n")
	for _, l := range lines[start:end] {
		b.WriteString(layout.Center(l, width))
		b.WriteString("\n")
	}
	return b.String()
}

func (s *HistoryScreen) renderRow(i int, ev store.ActivityEventRecord) string {
	act := xp.ActivityType(ev.ActivityType)
	prefix := "  "
	style := lipgloss.NewStyle().Foreground(theme.Text)
	if i == s.selected {
		prefix = "> "
		style = theme.Selected
	}
	line := fmt.Sprintf("%s%s  %s %-20s %-12s  +%d XP",
		prefix,
		ev.Timestamp.Local().Format("Jan 02, 2006 15:04"),
		act.Icon(),
		act.DisplayName(),
		xp.Difficulty(ev.Difficulty).DisplayName(),
		ev.Award,
	)
	return style.Render(line)
}

func renderBreakdown(ev store.ActivityEventRecord) []string {
	dim := lipgloss.NewStyle().Foreground(theme.TextDim)
	lines := []string{
		dim.Render(fmt.Sprintf("    %d base × %.1f quality × %.1f difficulty × %.1f streak (%d days) = %d",
			ev.BaseXP, ev.QualityMultiplier, ev.DifficultyMultiplier, ev.StreakBonus, ev.StreakDays, ev.Award)),
		dim.Render(fmt.Sprintf("    accuracy %.0f%%  speed %.0f%%  creativity %.0f%%  effort %.0f%%",
			ev.Accuracy*100, ev.Speed*100, ev.Creativity*100, ev.Effort*100)),
	}
	if ev.Material != "" || ev.Note != "" {
		lines = append(lines, dim.Italic(true).Render("    "+strings.TrimSpace(ev.Material+"  "+ev.Note)))
	}
	return lines
}
