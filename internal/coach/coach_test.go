package coach

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/abhisek/levelup/internal/llm"
	"github.com/abhisek/levelup/internal/xp"
)

func TestLevelUpMessage_UsesModel(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockJSON(map[string]string{
		"message": "Ana, level 3 looks great on you!",
		"emoji":   "🚀",
	}))
	c := New(mock, nil)

	got := c.LevelUpMessage(context.Background(), LevelUp{
		Learner: "Ana", Level: 3, TotalXP: 264, Streak: 4, Activity: xp.ActivityProblemSolved,
	})
	if got != "🚀 Ana, level 3 looks great on you!" {
		t.Fatalf("message = %q", got)
	}

	req := mock.Calls[0]
	if req.Schema != MessageSchema {
		t.Error("request did not carry the message schema")
	}
	prompt := req.Messages[0].Content
	for _, want := range []string{"Student: Ana", "New level: 3", "streak: 4 days", "Problem Solved"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestLevelUpMessage_FallsBack(t *testing.T) {
	ev := LevelUp{Learner: "Ben", Level: 2}
	tests := []struct {
		name     string
		provider llm.Provider
	}{
		{"no provider", nil},
		{"provider error", llm.NewMockProvider(llm.MockResponse{Err: errors.New("offline")})},
		{"empty message", llm.NewMockProvider(llm.MockJSON(map[string]string{"message": "  ", "emoji": "x"}))},
		{"overlong message", llm.NewMockProvider(llm.MockJSON(map[string]string{"message": strings.Repeat("a", 300), "emoji": ""}))},
		{"not an object", llm.NewMockProvider(llm.MockResponse{Content: []byte(`"just text"`)})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := New(tt.provider, nil).LevelUpMessage(context.Background(), ev)
			if got != Fallback(ev) {
				t.Fatalf("message = %q, want fallback %q", got, Fallback(ev))
			}
		})
	}
}

func TestLevelUpMessage_NilCoach(t *testing.T) {
	var c *Coach
	if got := c.LevelUpMessage(context.Background(), LevelUp{Learner: "A", Level: 5}); got == "" {
		t.Fatal("expected fallback from nil coach")
	}
}

func TestFallback(t *testing.T) {
	if got := Fallback(LevelUp{Learner: "Ana", Level: 5}); got != "🎉 Ana reached level 5. Keep it up!" {
		t.Errorf("Fallback(5) = %q", got)
	}
	if got := Fallback(LevelUp{Learner: "Ana", Level: 6}); got != "🚀 Level 6 unlocked, Ana! Onward." {
		t.Errorf("Fallback(6) = %q", got)
	}
	if got := Fallback(LevelUp{Level: 0}); !strings.Contains(got, "You") {
		t.Errorf("Fallback with no name = %q", got)
	}
	if Fallback(LevelUp{Learner: "x", Level: 9}) != Fallback(LevelUp{Learner: "x", Level: 9}) {
		t.Error("fallback is not deterministic")
	}
}
