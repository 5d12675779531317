// Package coach writes short celebration lines for learners who level up.
package coach

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/abhisek/levelup/internal/llm"
	"github.com/abhisek/levelup/internal/xp"
)

// LevelUp describes the moment being celebrated.
type LevelUp struct {
	Learner  string
	Level    int
	TotalXP  int
	Streak   int
	Activity xp.ActivityType
}

// Coach produces level-up messages. With a provider it asks the model; it
// falls back to a built-in line whenever the model is unavailable or
// answers badly. It never returns an empty message.
type Coach struct {
	provider llm.Provider
	logger   *slog.Logger
}

// New returns a Coach. provider may be nil.
func New(provider llm.Provider, logger *slog.Logger) *Coach {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coach{provider: provider, logger: logger}
}

const maxMessageLen = 200

type messageOutput struct {
	Message string `json:"message"`
	Emoji   string `json:"emoji"`
}

// LevelUpMessage returns a one-line celebration for ev.
func (c *Coach) LevelUpMessage(ctx context.Context, ev LevelUp) string {
	if c == nil || c.provider == nil {
		return Fallback(ev)
	}

	ctx = llm.WithPurpose(ctx, llm.PurposeLevelUp)
	req := llm.UserPrompt(systemPrompt, buildPrompt(ev))
	req.Schema = MessageSchema
	req.MaxTokens = 256
	req.Temperature = 0.8

	resp, err := c.provider.Generate(ctx, req)
	if err != nil {
		c.logger.Warn("level-up message generation failed", "learner", ev.Learner, "err", err)
		return Fallback(ev)
	}

	var out messageOutput
	if err := resp.Decode(&out); err != nil {
		c.logger.Warn("level-up message decode failed", "learner", ev.Learner, "err", err)
		return Fallback(ev)
	}

	msg := strings.TrimSpace(out.Message)
	if msg == "" || len(msg) > maxMessageLen {
		return Fallback(ev)
	}
	if e := strings.TrimSpace(out.Emoji); e != "" {
		msg = e + " " + msg
	}
	return msg
}

var fallbackLines = []string{
	"🎉 %s reached level %d. Keep it up!",
	"🚀 Level %[2]d unlocked, %[1]s! Onward.",
	"⭐ %s is now level %d. Great work!",
	"🏆 Level %[2]d! Nice going, %[1]s.",
	"🌱 %s grew into level %d. Every activity counts!",
}

// Fallback returns the built-in line for ev. The choice depends only on
// the level so the same level-up always reads the same.
func Fallback(ev LevelUp) string {
	name := ev.Learner
	if name == "" {
		name = "You"
	}
	level := ev.Level
	if level < 1 {
		level = 1
	}
	return fmt.Sprintf(fallbackLines[level%len(fallbackLines)], name, level)
}
