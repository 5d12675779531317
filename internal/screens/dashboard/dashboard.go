package dashboard

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/levelup/internal/progression"
	"github.com/abhisek/levelup/internal/router"
	"github.com/abhisek/levelup/internal/screen"
	"github.com/abhisek/levelup/internal/screens/award"
	"github.com/abhisek/levelup/internal/screens/curve"
	"github.com/abhisek/levelup/internal/screens/history"
	"github.com/abhisek/levelup/internal/store"
	"github.com/abhisek/levelup/internal/ui/components"
	"github.com/abhisek/levelup/internal/ui/layout"
	"github.com/abhisek/levelup/internal/ui/theme"
	"github.com/abhisek/levelup/internal/xp"
)

// recentLimit is the number of awards listed on the dashboard.
const recentLimit = 8

type keyMap struct {
	Award   key.Binding
	Curve   key.Binding
	History key.Binding
	Refresh key.Binding
	Session key.Binding
	Quit    key.Binding
}

var keys = keyMap{
	Award:   key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "award")),
	Curve:   key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "level curve")),
	History: key.NewBinding(key.WithKeys("h"), key.WithHelp("h", "history")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Session: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new session")),
	Quit:    key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
}

type loadedMsg struct {
	state   *progression.LearnerState
	recent  []store.ActivityEventRecord
	session progression.SessionSummary
	err     error
}

// DashboardScreen shows the learner's level, XP bar, streak and recent awards.
type DashboardScreen struct {
	svc     *progression.Service
	repo    store.EventRepo
	learner string

	state   *progression.LearnerState
	recent  []store.ActivityEventRecord
	session progression.SessionSummary
	bar     components.XPBar
	err     error
}

var _ screen.Screen = (*DashboardScreen)(nil)
var _ screen.KeyBinder = (*DashboardScreen)(nil)

// New creates the dashboard for learner.
func New(svc *progression.Service, repo store.EventRepo, learner string) *DashboardScreen {
	return &DashboardScreen{
		svc:     svc,
		repo:    repo,
		learner: learner,
		bar:     components.NewXPBar(xp.ComputeLevelState(0), 40),
	}
}

func (s *DashboardScreen) Init() tea.Cmd {
	return s.load
}

func (s *DashboardScreen) load() tea.Msg {
	ctx := context.Background()
	st, err := s.svc.State(ctx, s.learner)
	if err != nil {
		return loadedMsg{err: err}
	}
	recent, err := s.repo.QueryActivityEvents(ctx, s.learner, store.QueryOpts{Limit: recentLimit})
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{state: st, recent: recent, session: s.svc.Session()}
}

func (s *DashboardScreen) Title() string {
	return "Dashboard"
}

func (s *DashboardScreen) KeyBindings() []key.Binding {
	return []key.Binding{keys.Award, keys.Curve, keys.History, keys.Refresh, keys.Session, keys.Quit}
}

func (s *DashboardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg:
		s.err = msg.err
		if msg.err == nil {
			s.state = msg.state
			s.recent = msg.recent
			s.session = msg.session
			s.bar.SetState(msg.state.Level)
		}
		return s, nil

	case screen.RefreshMsg:
		return s, s.load

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Award):
			return s, push(award.New(s.svc, s.learner))
		case key.Matches(msg, keys.Curve):
			level := 1
			if s.state != nil {
				level = s.state.Level.Level
			}
			return s, push(curve.New(level))
		case key.Matches(msg, keys.History):
			return s, push(history.New(s.repo, s.learner))
		case key.Matches(msg, keys.Refresh):
			return s, s.load
		case key.Matches(msg, keys.Session):
			s.svc.ResetSession()
			return s, s.load
		case key.Matches(msg, keys.Quit):
			return s, tea.Quit
		}
	}
	return s, nil
}

func push(sc screen.Screen) tea.Cmd {
	return func() tea.Msg { return router.PushScreenMsg{Screen: sc} }
}

func (s *DashboardScreen) View(width, height int) string {
	if s.err != nil {
		return layout.Center(theme.ErrorText.Render("\n\nError: "+s.err.Error()), width)
	}
	if s.state == nil {
		return layout.Center(theme.Hint.Render("\n\nLoading..."), width)
	}

	cw := width - 8
	if cw > 72 {
		cw = 72
	}
	s.bar.SetWidth(cw - 4)

	sections := []string{
		s.renderLevel(cw),
		s.renderStreak(cw),
		s.renderRecent(cw, height),
	}
	return lipgloss.PlaceHorizontal(width, lipgloss.Center, strings.Join(sections, "\n"))
}

func (s *DashboardScreen) renderLevel(cw int) string {
	lvl := s.state.Level
	title := theme.LevelUp.Render(fmt.Sprintf("Level %d", lvl.Level)) +
		theme.Subtitle.Render(fmt.Sprintf("   %d XP total · %d XP to level %d", lvl.TotalXP, lvl.XPToNextLevel, lvl.Level+1))
	body := title + "\n\n" + s.bar.View()
	if s.session.Awards > 0 {
		line := fmt.Sprintf("This session: +%d XP from %d award(s)", s.session.XP, s.session.Awards)
		if s.session.LevelUps > 0 {
			line += fmt.Sprintf(", %d level-up(s)", s.session.LevelUps)
		}
		body += "\n" + theme.Hint.Render(line)
	}
	return theme.Card.Width(cw).Render(body)
}

func (s *DashboardScreen) renderStreak(cw int) string {
	st := s.state
	line := lipgloss.NewStyle().Foreground(theme.StreakColor(st.Streak)).Bold(true).
		Render(fmt.Sprintf("🔥 %d-day streak", st.Streak))
	line += theme.Subtitle.Render(fmt.Sprintf("   bonus ×%.1f", xp.StreakBonus(st.Streak)))

	var note string
	switch {
	case st.NextMilestone > 0:
		note = fmt.Sprintf("%d more day(s) to the ×%.1f bonus", st.DaysToMilestone(), xp.StreakBonus(st.NextMilestone))
	default:
		note = "Top streak bonus reached!"
	}
	if !st.ActiveToday && st.Streak > 0 {
		note += " · nothing logged today yet"
	}
	return theme.Card.Width(cw).Render(line + "\n" + theme.Hint.Render(note))
}

func (s *DashboardScreen) renderRecent(cw, height int) string {
	var b strings.Builder
	b.WriteString(theme.Title.Render("Recent awards"))
	b.WriteString("\n")
	if len(s.recent) == 0 {
		b.WriteString(theme.Hint.Render("No awards yet. Press a to log an activity."))
		return theme.Card.Width(cw).Render(b.String())
	}

	rows := len(s.recent)
	if limit := height - 14; rows > limit && limit > 0 {
		rows = limit
	}
	for _, ev := range s.recent[:rows] {
		act := xp.ActivityType(ev.ActivityType)
		b.WriteString("\n")
		b.WriteString(theme.Body.Render(fmt.Sprintf("%s %-20s", act.Icon(), act.DisplayName())))
		b.WriteString(theme.Award.Render(fmt.Sprintf(" +%d XP", ev.Award)))
		b.WriteString(theme.Subtitle.Render("  " + ev.Timestamp.Local().Format("Jan 02 15:04")))
	}
	return theme.Card.Width(cw).Render(b.String())
}
