package xp

// ActivityType identifies what the learner did.
type ActivityType string

const (
	ActivityMaterialCompletion ActivityType = "material-completion"
	ActivityProblemSolved      ActivityType = "problem-solved"
	ActivityConceptMastered    ActivityType = "concept-mastered"
	ActivityHelpPeer           ActivityType = "help-peer-provided"
	ActivityCreativeWork       ActivityType = "creative-work"
	ActivityReflection         ActivityType = "reflection"
)

// AllActivityTypes returns all known activity types in display order.
func AllActivityTypes() []ActivityType {
	return []ActivityType{
		ActivityMaterialCompletion,
		ActivityProblemSolved,
		ActivityConceptMastered,
		ActivityHelpPeer,
		ActivityCreativeWork,
		ActivityReflection,
	}
}

// BaseXP returns the base experience for the activity type.
// Unknown types are worth nothing.
func (a ActivityType) BaseXP() int {
	switch a {
	case ActivityMaterialCompletion:
		return 100
	case ActivityProblemSolved:
		return 25
	case ActivityConceptMastered:
		return 150
	case ActivityHelpPeer:
		return 75
	case ActivityCreativeWork:
		return 200
	case ActivityReflection:
		return 50
	default:
		return 0
	}
}

// Known reports whether a is one of the defined activity types.
func (a ActivityType) Known() bool {
	for _, t := range AllActivityTypes() {
		if t == a {
			return true
		}
	}
	return false
}

// DisplayName returns a human-readable label for the activity type.
func (a ActivityType) DisplayName() string {
	switch a {
	case ActivityMaterialCompletion:
		return "Material Completed"
	case ActivityProblemSolved:
		return "Problem Solved"
	case ActivityConceptMastered:
		return "Concept Mastered"
	case ActivityHelpPeer:
		return "Helped a Peer"
	case ActivityCreativeWork:
		return "Creative Work"
	case ActivityReflection:
		return "Reflection"
	default:
		return string(a)
	}
}

// Icon returns the display icon for the activity type.
func (a ActivityType) Icon() string {
	switch a {
	case ActivityMaterialCompletion:
		return "📘"
	case ActivityProblemSolved:
		return "✏️"
	case ActivityConceptMastered:
		return "💡"
	case ActivityHelpPeer:
		return "🤝"
	case ActivityCreativeWork:
		return "🎨"
	case ActivityReflection:
		return "🪞"
	default:
		return "✦"
	}
}
