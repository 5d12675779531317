package award

import (
	"context"
	"fmt"
	"strings"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/levelup/internal/progression"
	"github.com/abhisek/levelup/internal/router"
	"github.com/abhisek/levelup/internal/screen"
	"github.com/abhisek/levelup/internal/ui/components"
	"github.com/abhisek/levelup/internal/ui/layout"
	"github.com/abhisek/levelup/internal/ui/theme"
	"github.com/abhisek/levelup/internal/xp"
)

type step int

const (
	stepActivity step = iota
	stepDifficulty
	stepAccuracy
	stepResult
)

const (
	pickActivity   = "activity"
	pickDifficulty = "difficulty"
)

var keys = struct {
	Submit, Back key.Binding
}{
	Submit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "record")),
	Back:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
}

type recordedMsg struct {
	result *progression.Result
	err    error
}

// AwardScreen walks through logging one activity: type, difficulty,
// accuracy, then shows the scored result.
type AwardScreen struct {
	svc     *progression.Service
	learner string

	step         step
	activities   components.Picker
	difficulties components.Picker
	accuracy     components.ScoreInput

	activity   xp.ActivityType
	difficulty xp.Difficulty
	busy       bool
	result     *progression.Result
	err        error
}

var _ screen.Screen = (*AwardScreen)(nil)
var _ screen.KeyBinder = (*AwardScreen)(nil)

// New creates the award flow for learner.
func New(svc *progression.Service, learner string) *AwardScreen {
	var acts, actHints []string
	for _, a := range xp.AllActivityTypes() {
		acts = append(acts, a.Icon()+" "+a.DisplayName())
		actHints = append(actHints, fmt.Sprintf("%d XP", a.BaseXP()))
	}
	var diffs, diffHints []string
	for _, d := range xp.AllDifficulties() {
		diffs = append(diffs, d.DisplayName())
		diffHints = append(diffHints, fmt.Sprintf("×%.1f", d.Multiplier()))
	}
	return &AwardScreen{
		svc:          svc,
		learner:      learner,
		activities:   components.NewPicker(pickActivity, acts, actHints),
		difficulties: components.NewPicker(pickDifficulty, diffs, diffHints),
		accuracy:     components.NewScoreInput("Accuracy", "80"),
	}
}

func (s *AwardScreen) Init() tea.Cmd { return nil }

func (s *AwardScreen) Title() string { return "Log Activity" }

func (s *AwardScreen) KeyBindings() []key.Binding {
	switch s.step {
	case stepActivity, stepDifficulty:
		return []key.Binding{components.PickerKeys.Up, components.PickerKeys.Down, components.PickerKeys.Choose, keys.Back}
	case stepAccuracy:
		return []key.Binding{keys.Submit, keys.Back}
	default:
		return []key.Binding{keys.Back}
	}
}

func (s *AwardScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case components.PickedMsg:
		switch msg.ID {
		case pickActivity:
			s.activity = xp.AllActivityTypes()[msg.Index]
			s.step = stepDifficulty
		case pickDifficulty:
			s.difficulty = xp.AllDifficulties()[msg.Index]
			s.step = stepAccuracy
			return s, s.accuracy.Init()
		}
		return s, nil

	case recordedMsg:
		s.busy = false
		s.result, s.err = msg.result, msg.err
		s.step = stepResult
		if msg.err != nil {
			return s, nil
		}
		return s, screen.Refresh

	case tea.KeyMsg:
		if key.Matches(msg, keys.Back) {
			return s, s.back()
		}
	}

	var cmd tea.Cmd
	switch s.step {
	case stepActivity:
		s.activities, cmd = s.activities.Update(msg)
	case stepDifficulty:
		s.difficulties, cmd = s.difficulties.Update(msg)
	case stepAccuracy:
		if kmsg, ok := msg.(tea.KeyMsg); ok && key.Matches(kmsg, keys.Submit) {
			return s, s.submit()
		}
		s.accuracy, cmd = s.accuracy.Update(msg)
	case stepResult:
		if kmsg, ok := msg.(tea.KeyMsg); ok && key.Matches(kmsg, keys.Submit) {
			return s, pop
		}
	}
	return s, cmd
}

func pop() tea.Msg { return router.PopScreenMsg{} }

func (s *AwardScreen) back() tea.Cmd {
	switch s.step {
	case stepDifficulty:
		s.step = stepActivity
	case stepAccuracy:
		s.step = stepDifficulty
	default:
		return pop
	}
	return nil
}

func (s *AwardScreen) submit() tea.Cmd {
	if s.busy {
		return nil
	}
	acc, err := s.accuracy.Score()
	if err != nil {
		return nil
	}
	s.busy = true
	a := progression.Activity{
		Learner:     s.learner,
		Type:        s.activity,
		Difficulty:  s.difficulty,
		Performance: xp.Performance{Accuracy: acc},
	}
	return func() tea.Msg {
		res, err := s.svc.Record(context.Background(), a)
		return recordedMsg{result: res, err: err}
	}
}

func (s *AwardScreen) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")

	switch s.step {
	case stepActivity:
		b.WriteString(theme.Title.Render("What did you do?") + "\n\n")
		b.WriteString(s.activities.View())
	case stepDifficulty:
		b.WriteString(theme.Title.Render(s.activity.Icon()+" "+s.activity.DisplayName()) + "\n\n")
		b.WriteString(theme.Subtitle.Render("How hard was it?") + "\n\n")
		b.WriteString(s.difficulties.View())
	case stepAccuracy:
		b.WriteString(theme.Title.Render(s.activity.Icon()+" "+s.activity.DisplayName()+" · "+s.difficulty.DisplayName()) + "\n\n")
		b.WriteString(s.accuracy.View() + "\n")
		if s.busy {
			b.WriteString("\n" + theme.Hint.Render("Recording..."))
		}
	case stepResult:
		b.WriteString(s.renderResult())
	}

	return layout.Center(theme.Card.Width(min(width-4, 64)).Render(b.String()), width)
}

func (s *AwardScreen) renderResult() string {
	if s.err != nil {
		return theme.ErrorText.Render("Could not record: "+s.err.Error()) + "\n"
	}
	r := s.result
	bd := r.Breakdown

	var b strings.Builder
	b.WriteString(theme.Award.Render(fmt.Sprintf("+%d XP", bd.Award)) + "\n\n")
	b.WriteString(theme.Subtitle.Render(fmt.Sprintf("%d base × %.1f quality × %.1f difficulty × %.1f streak",
		bd.BaseXP, bd.QualityMultiplier, bd.DifficultyMultiplier, bd.StreakBonus)) + "\n")
	b.WriteString(theme.Streak.Render(fmt.Sprintf("🔥 %d-day streak", r.Streak)) + "\n\n")

	if r.LeveledUp() {
		b.WriteString(theme.LevelUp.Render(fmt.Sprintf("LEVEL UP! %d → %d", r.Before.Level, r.After.Level)) + "\n")
		if r.Message != "" {
			b.WriteString(theme.Body.Render(r.Message) + "\n")
		}
	} else {
		b.WriteString(theme.Body.Render(fmt.Sprintf("Level %d · %d XP to level %d",
			r.After.Level, r.After.XPToNextLevel, r.After.Level+1)) + "\n")
	}
	b.WriteString("\n" + theme.Hint.Render("Press enter to go back"))
	return b.String()
}
