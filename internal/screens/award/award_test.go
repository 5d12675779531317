package award

import (
	"context"
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/levelup/internal/progression"
	"github.com/abhisek/levelup/internal/router"
	"github.com/abhisek/levelup/internal/screen"
	"github.com/abhisek/levelup/internal/store"
	"github.com/abhisek/levelup/internal/xp"
)

func keyPress(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func newService(t *testing.T) *progression.Service {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	st, err := store.Open("file:award_" + name + "?mode=memory&cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	svc, err := progression.NewService(st.EventRepo(), progression.Options{})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

// run feeds the message produced by cmd back into s.
func run(t *testing.T, s screen.Screen, cmd tea.Cmd) (screen.Screen, tea.Cmd) {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected a command")
	}
	return s.Update(cmd())
}

func TestAwardFlow(t *testing.T) {
	svc := newService(t)
	var s screen.Screen = New(svc, "Ana")

	if !strings.Contains(s.View(80, 24), "What did you do?") {
		t.Error("expected activity prompt")
	}

	// Material completion is first.
	s, cmd := s.Update(keyPress(tea.KeyEnter))
	s, _ = run(t, s, cmd)
	if got := s.(*AwardScreen).activity; got != xp.ActivityMaterialCompletion {
		t.Fatalf("activity = %q", got)
	}

	// Intermediate is second.
	s, _ = s.Update(keyPress(tea.KeyDown))
	s, cmd = s.Update(keyPress(tea.KeyEnter))
	s, _ = run(t, s, cmd)
	if got := s.(*AwardScreen).difficulty; got != xp.DifficultyIntermediate {
		t.Fatalf("difficulty = %q", got)
	}

	// Accept the default accuracy of 80%.
	s, cmd = s.Update(keyPress(tea.KeyEnter))
	s, cmd = run(t, s, cmd)

	as := s.(*AwardScreen)
	if as.err != nil {
		t.Fatalf("record failed: %v", as.err)
	}
	if as.result.Breakdown.Award != 130 {
		t.Errorf("award = %d, want 130", as.result.Breakdown.Award)
	}
	if !as.result.LeveledUp() {
		t.Error("130 XP should reach level 2")
	}
	if cmd == nil {
		t.Fatal("expected refresh command")
	}
	if _, ok := cmd().(screen.RefreshMsg); !ok {
		t.Error("expected RefreshMsg after recording")
	}
	if view := s.View(80, 24); !strings.Contains(view, "+130 XP") || !strings.Contains(view, "LEVEL UP") {
		t.Errorf("result view missing award: %q", view)
	}

	state, err := svc.State(context.Background(), "Ana")
	if err != nil {
		t.Fatalf("State: %v", err)
	}
	if state.Level.TotalXP != 130 {
		t.Errorf("TotalXP = %d, want 130", state.Level.TotalXP)
	}

	_, cmd = s.Update(keyPress(tea.KeyEnter))
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg from result screen")
	}
}

func TestAwardBackSteps(t *testing.T) {
	s := New(newService(t), "Ana")
	s.step = stepAccuracy

	s.Update(keyPress(tea.KeyEscape))
	if s.step != stepDifficulty {
		t.Errorf("step = %d, want difficulty", s.step)
	}
	s.Update(keyPress(tea.KeyEscape))
	if s.step != stepActivity {
		t.Errorf("step = %d, want activity", s.step)
	}

	_, cmd := s.Update(keyPress(tea.KeyEscape))
	if cmd == nil {
		t.Fatal("expected pop command")
	}
	if _, ok := cmd().(router.PopScreenMsg); !ok {
		t.Error("expected PopScreenMsg at first step")
	}
}

func TestAwardRejectsBadAccuracy(t *testing.T) {
	s := New(newService(t), "Ana")
	s.step = stepAccuracy
	s.accuracy.Model.SetValue("150")

	_, cmd := s.Update(keyPress(tea.KeyEnter))
	if cmd != nil {
		t.Error("out of range accuracy should not record")
	}
	if !strings.Contains(s.View(80, 24), "between 0 and 100") {
		t.Error("expected range error in view")
	}
}
