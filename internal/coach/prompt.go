package coach

import (
	"fmt"
	"strings"

	"github.com/abhisek/levelup/internal/llm"
)

// MessageSchema constrains the model to one short line plus an emoji.
var MessageSchema = &llm.Schema{
	Name:        "level-up-message",
	Description: "A one-sentence celebration for a learner who just levelled up",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"message": map[string]any{
				"type":        "string",
				"description": "One upbeat sentence addressed to the learner, at most 20 words, no emoji",
				"minLength":   1,
			},
			"emoji": map[string]any{
				"type":        "string",
				"description": "A single emoji that fits the message",
			},
		},
		"required":             []any{"message", "emoji"},
		"additionalProperties": false,
	},
}

const systemPrompt = `You are an encouraging coach for K-12 students who earn experience points (XP) for learning.
Write a single short celebration when a student reaches a new level.
Be warm and specific to the details you are given. Do not mention points formulas, grades or test scores.
Keep language simple enough for a ten-year-old.`

func buildPrompt(ev LevelUp) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Student: %s\n", ev.Learner)
	fmt.Fprintf(&b, "New level: %d\n", ev.Level)
	fmt.Fprintf(&b, "Total XP: %d\n", ev.TotalXP)
	if ev.Streak > 1 {
		fmt.Fprintf(&b, "Current daily streak: %d days\n", ev.Streak)
	}
	if ev.Activity != "" {
		fmt.Fprintf(&b, "Activity that earned the level: %s\n", ev.Activity.DisplayName())
	}
	return b.String()
}
