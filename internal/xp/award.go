package xp

import "math"

// Performance is what was observed when the activity was scored.
// Only Accuracy feeds the quality multiplier; the other fields are kept
// with the award for reporting.
type Performance struct {
	Accuracy   float64 `json:"accuracy"`
	Speed      float64 `json:"speed"`
	Creativity float64 `json:"creativity"`
	Effort     float64 `json:"effort"`
}

// Breakdown explains how an award was computed.
type Breakdown struct {
	Activity   ActivityType
	Difficulty Difficulty
	StreakDays int

	BaseXP               int
	QualityMultiplier    float64
	DifficultyMultiplier float64
	StreakBonus          float64

	Award int
}

// ComputeAward converts one completed activity into an XP award.
func ComputeAward(activity ActivityType, perf Performance, difficulty Difficulty, consecutiveDays int) int {
	return ComputeBreakdown(activity, perf, difficulty, consecutiveDays).Award
}

// ComputeBreakdown is ComputeAward with every factor exposed.
// Negative streaks count as no streak.
func ComputeBreakdown(activity ActivityType, perf Performance, difficulty Difficulty, consecutiveDays int) Breakdown {
	if consecutiveDays < 0 {
		consecutiveDays = 0
	}

	b := Breakdown{
		Activity:             activity,
		Difficulty:           difficulty,
		StreakDays:           consecutiveDays,
		BaseXP:               activity.BaseXP(),
		QualityMultiplier:    QualityMultiplier(perf.Accuracy),
		DifficultyMultiplier: difficulty.Multiplier(),
		StreakBonus:          StreakBonus(consecutiveDays),
	}

	// Multiply left to right so rounding matches the reference figures.
	raw := float64(b.BaseXP) * b.QualityMultiplier * b.DifficultyMultiplier * b.StreakBonus
	b.Award = int(math.Round(raw))
	return b
}
