package xp

// Difficulty is the content tier of an activity.
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
	DifficultyExpert       Difficulty = "expert"
)

// AllDifficulties returns all tiers from easiest to hardest.
func AllDifficulties() []Difficulty {
	return []Difficulty{DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced, DifficultyExpert}
}

// Multiplier returns the XP multiplier for the tier. Unknown tiers are neutral.
func (d Difficulty) Multiplier() float64 {
	switch d {
	case DifficultyBeginner:
		return 1.0
	case DifficultyIntermediate:
		return 1.3
	case DifficultyAdvanced:
		return 1.6
	case DifficultyExpert:
		return 2.0
	default:
		return 1.0
	}
}

// Known reports whether d is one of the defined tiers.
func (d Difficulty) Known() bool {
	for _, t := range AllDifficulties() {
		if t == d {
			return true
		}
	}
	return false
}

// DisplayName returns a human-readable label for the tier.
func (d Difficulty) DisplayName() string {
	switch d {
	case DifficultyBeginner:
		return "Beginner"
	case DifficultyIntermediate:
		return "Intermediate"
	case DifficultyAdvanced:
		return "Advanced"
	case DifficultyExpert:
		return "Expert"
	default:
		return string(d)
	}
}
