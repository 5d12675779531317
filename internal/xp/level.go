package xp

import "math"

const (
	// BaseLevelCost is the XP cost of the first step on the curve.
	BaseLevelCost = 100

	// LevelGrowth is the compounding factor applied to each step cost.
	LevelGrowth = 1.2
)

// LevelState is the derived progression for a cumulative XP total.
type LevelState struct {
	Level               int `json:"level"`
	TotalXP             int `json:"total_xp"`
	CurrentLevelStartXP int `json:"current_level_start_xp"`
	XPToNextLevel       int `json:"xp_to_next_level"`
}

// LevelSpan returns the cost of the step from Level to Level+1.
func (s LevelState) LevelSpan() int {
	return XPRequiredForLevel(s.Level + 1)
}

// XPIntoLevel returns how much XP has been earned since the level started.
func (s LevelState) XPIntoLevel() int {
	return s.TotalXP - s.CurrentLevelStartXP
}

// Progress returns the fraction of the current level completed, in [0,1).
func (s LevelState) Progress() float64 {
	span := s.LevelSpan()
	if span <= 0 {
		return 0
	}
	return float64(s.XPIntoLevel()) / float64(span)
}

// XPRequiredForLevel returns floor(100 × 1.2^(level-1)), the cost of the
// step that enters level from level-1. Levels below 1 cost nothing; costs
// too large for an int saturate at math.MaxInt.
func XPRequiredForLevel(level int) int {
	if level < 1 {
		return 0
	}
	cost := math.Floor(BaseLevelCost * math.Pow(LevelGrowth, float64(level-1)))
	if cost >= math.MaxInt {
		return math.MaxInt
	}
	return int(cost)
}

// TotalXPForLevel returns the cumulative XP at which level starts.
// Level 1 starts at zero; every later level adds its own step cost.
func TotalXPForLevel(level int) int {
	total := 0
	for l := 2; l <= level; l++ {
		cost := XPRequiredForLevel(l)
		if total > math.MaxInt-cost {
			return math.MaxInt
		}
		total += cost
	}
	return total
}

// LevelForXP returns the level reached with totalXP. Negative totals are
// treated as zero.
func LevelForXP(totalXP int) int {
	level, _ := levelAndStart(totalXP)
	return level
}

// ComputeLevelState derives the full level state from cumulative XP.
// Negative totals are treated as zero.
func ComputeLevelState(totalXP int) LevelState {
	if totalXP < 0 {
		totalXP = 0
	}
	level, start := levelAndStart(totalXP)
	next := XPRequiredForLevel(level + 1)
	return LevelState{
		Level:               level,
		TotalXP:             totalXP,
		CurrentLevelStartXP: start,
		XPToNextLevel:       next - (totalXP - start),
	}
}

// levelAndStart walks the curve one step at a time. Working on the
// remaining XP rather than a running sum keeps it free of overflow, and
// the strictly increasing step cost guarantees termination.
func levelAndStart(totalXP int) (level, start int) {
	if totalXP < 0 {
		totalXP = 0
	}
	level = 1
	remaining := totalXP
	for {
		cost := XPRequiredForLevel(level + 1)
		if cost > remaining {
			return level, totalXP - remaining
		}
		remaining -= cost
		level++
	}
}
