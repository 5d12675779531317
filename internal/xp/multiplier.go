package xp

// QualityMultiplier returns the multiplier for an accuracy in [0,1].
// Values outside the range (and NaN) land in the lowest band.
func QualityMultiplier(accuracy float64) float64 {
	switch {
	case accuracy >= 0.95:
		return 1.5
	case accuracy >= 0.85:
		return 1.2
	case accuracy >= 0.70:
		return 1.0
	default:
		return 0.8
	}
}

// StreakBonus returns the multiplier for a run of consecutive active days.
func StreakBonus(consecutiveDays int) float64 {
	switch {
	case consecutiveDays >= 30:
		return 2.0
	case consecutiveDays >= 14:
		return 1.5
	case consecutiveDays >= 7:
		return 1.2
	default:
		return 1.0
	}
}

// StreakThresholds are the streak lengths at which the bonus steps up.
var StreakThresholds = []int{7, 14, 30}
