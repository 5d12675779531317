package components

import (
	"errors"
	"strconv"
	"strings"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/abhisek/levelup/internal/ui/theme"
)

// ErrScoreRange is returned for scores outside 0 to 100 percent.
var ErrScoreRange = errors.New("score must be between 0 and 100")

// ScoreInput reads a percentage score.
type ScoreInput struct {
	Model textinput.Model
	Label string
	err   error
}

// NewScoreInput creates a focused input with an optional default value.
func NewScoreInput(label, value string) ScoreInput {
	ti := textinput.New()
	ti.Placeholder = "0-100"
	ti.CharLimit = 5
	ti.SetValue(value)
	ti.Focus()
	return ScoreInput{Model: ti, Label: label}
}

// Init starts the cursor blinking.
func (s ScoreInput) Init() tea.Cmd {
	return s.Model.Focus()
}

// Update accepts digits and a decimal point; other printable keys are
// dropped.
func (s ScoreInput) Update(msg tea.Msg) (ScoreInput, tea.Cmd) {
	if kmsg, ok := msg.(tea.KeyMsg); ok {
		k := kmsg.String()
		if len(k) == 1 && (k[0] < '0' || k[0] > '9') && k != "." {
			return s, nil
		}
	}
	s.err = nil
	var cmd tea.Cmd
	s.Model, cmd = s.Model.Update(msg)
	return s, cmd
}

// Score returns the input as a fraction in [0,1]. Empty is zero.
func (s *ScoreInput) Score() (float64, error) {
	v := strings.TrimSpace(s.Model.Value())
	if v == "" {
		return 0, nil
	}
	pct, err := strconv.ParseFloat(v, 64)
	if err != nil {
		s.err = err
		return 0, err
	}
	if pct < 0 || pct > 100 {
		s.err = ErrScoreRange
		return 0, ErrScoreRange
	}
	return pct / 100, nil
}

// View renders the label, the input and any validation error.
func (s ScoreInput) View() string {
	view := lipgloss.NewStyle().Foreground(theme.Text).Bold(true).Render(s.Label) + "  " + s.Model.View() + " %"
	if s.err != nil {
		view += "  " + theme.ErrorText.Render(s.err.Error())
	}
	return view
}
